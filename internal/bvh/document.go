package bvh

import "errors"

// ErrSyntax reports BVH text the reader cannot turn into records.
var ErrSyntax = errors.New("bvh: syntax error")

// JointRecord is one ROOT or JOINT entry of the hierarchy section.
// Records are stored in file order, so the root is always record 0.
type JointRecord struct {
	Name     string
	Offset   [3]float64
	EndSite  *[3]float64
	Channels []ChannelKind
	Parent   int
	Children []int

	// ChannelOffset is the column of the joint's first channel in a motion row.
	ChannelOffset int
}

// Document holds a parsed BVH file.
type Document struct {
	Joints    []JointRecord
	Frames    int
	FrameTime float64
	Motion    [][]float64
}

// ChannelCount returns the number of columns every motion row should have.
func (d *Document) ChannelCount() int {
	n := 0
	for _, joint := range d.Joints {
		n += len(joint.Channels)
	}
	return n
}

// Sample returns the value of the given channel of a joint at a frame.
// ok is false when the motion data does not cover that position.
func (d *Document) Sample(joint, channel, frame int) (value float64, ok bool) {
	if joint < 0 || joint >= len(d.Joints) {
		return 0, false
	}
	record := d.Joints[joint]
	if channel < 0 || channel >= len(record.Channels) {
		return 0, false
	}
	if frame < 0 || frame >= len(d.Motion) {
		return 0, false
	}
	row := d.Motion[frame]
	column := record.ChannelOffset + channel
	if column >= len(row) {
		return 0, false
	}
	return row[column], true
}

// Depth returns how many ancestors a joint has.
func (d *Document) Depth(joint int) int {
	depth := 0
	for parent := d.Joints[joint].Parent; parent >= 0; parent = d.Joints[parent].Parent {
		depth++
	}
	return depth
}
