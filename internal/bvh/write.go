package bvh

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Write serializes the document as BVH text.
func (d *Document) Write(out io.Writer) error {
	writer := bufio.NewWriter(out)

	fmt.Fprint(writer, d.HierarchyString())
	fmt.Fprint(writer, d.MotionString())

	return writer.Flush()
}

// HierarchyString returns the HIERARCHY section.
func (d *Document) HierarchyString() string {
	var s strings.Builder
	s.WriteString("HIERARCHY\n")
	if len(d.Joints) == 0 {
		return s.String()
	}

	var writeJoint func(index int)
	writeJoint = func(index int) {
		joint := d.Joints[index]
		depth := d.Depth(index)
		indent := strings.Repeat("  ", depth)

		keyword := "JOINT"
		if joint.Parent < 0 {
			keyword = "ROOT"
		}
		fmt.Fprintf(&s, "%s%s %s\n", indent, keyword, joint.Name)
		fmt.Fprintf(&s, "%s{\n", indent)
		fmt.Fprintf(&s, "%s  OFFSET %s\n", indent, formatFloats(joint.Offset[:]))
		if len(joint.Channels) > 0 {
			names := make([]string, len(joint.Channels))
			for i, channel := range joint.Channels {
				names[i] = channel.String()
			}
			fmt.Fprintf(&s, "%s  CHANNELS %d %s\n", indent, len(names), strings.Join(names, " "))
		}
		for _, child := range joint.Children {
			writeJoint(child)
		}
		if joint.EndSite != nil {
			fmt.Fprintf(&s, "%s  End Site\n", indent)
			fmt.Fprintf(&s, "%s  {\n", indent)
			fmt.Fprintf(&s, "%s    OFFSET %s\n", indent, formatFloats(joint.EndSite[:]))
			fmt.Fprintf(&s, "%s  }\n", indent)
		}
		fmt.Fprintf(&s, "%s}\n", indent)
	}
	writeJoint(0)

	return s.String()
}

// MotionString returns the MOTION section.
func (d *Document) MotionString() string {
	var s strings.Builder
	s.WriteString("MOTION\n")
	fmt.Fprintf(&s, "Frames: %d\n", d.Frames)
	fmt.Fprintf(&s, "Frame Time: %s\n", strconv.FormatFloat(d.FrameTime, 'f', -1, 64))
	for _, row := range d.Motion {
		s.WriteString(formatFloats(row))
		s.WriteString("\n")
	}
	return s.String()
}

func formatFloats(values []float64) string {
	fields := make([]string, len(values))
	for i, v := range values {
		fields[i] = strconv.FormatFloat(v, 'f', -1, 64)
	}
	return strings.Join(fields, " ")
}
