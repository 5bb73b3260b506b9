package channel

import (
	"errors"
	"fmt"

	"bvhgav/internal/bvh"
)

// ErrData reports a declared channel with no value for some frame.
var ErrData = errors.New("channel: missing sample")

// SampleSet holds, per declared channel kind, one value per frame.
type SampleSet map[bvh.ChannelKind][]float64

// Sample collects every declared channel of a joint record for all frames of doc.
func Sample(doc *bvh.Document, joint int) (SampleSet, error) {
	if joint < 0 || joint >= len(doc.Joints) {
		return nil, fmt.Errorf("%w: joint record %d does not exist", ErrData, joint)
	}
	record := doc.Joints[joint]

	set := make(SampleSet, len(record.Channels))
	for c, kind := range record.Channels {
		values := make([]float64, doc.Frames)
		for frame := 0; frame < doc.Frames; frame++ {
			v, ok := doc.Sample(joint, c, frame)
			if !ok {
				return nil, fmt.Errorf("%w: joint %q channel %s frame %d", ErrData, record.Name, kind, frame)
			}
			values[frame] = v
		}
		set[kind] = values
	}
	return set, nil
}

// HasPosition reports whether any position channel was declared.
func (s SampleSet) HasPosition() bool {
	for kind := range s {
		if kind.IsPosition() {
			return true
		}
	}
	return false
}

// Axis returns the X, Y and Z values of the position or rotation channels at a frame.
// Undeclared axes take the matching component of fallback.
func (s SampleSet) Axis(frame int, rotation bool, fallback [3]float64) [3]float64 {
	out := fallback
	for kind, values := range s {
		selected := kind.IsPosition()
		if rotation {
			selected = kind.IsRotation()
		}
		if selected {
			out[kind.Axis()] = values[frame]
		}
	}
	return out
}
