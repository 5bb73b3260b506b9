package export

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strings"

	"bvhgav/internal/keyframe"
	"bvhgav/internal/skeleton"
)

// WriteJointRotations writes one row per frame: time, then w,x,y,z of every joint.
func WriteJointRotations(out io.Writer, kf *keyframe.Set) error {
	header := []string{"time"}
	for _, name := range kf.Joints {
		for _, axis := range []string{"w", "x", "y", "z"} {
			header = append(header, fmt.Sprintf("%s.%s", name, axis))
		}
	}

	writer := bufio.NewWriter(out)
	fmt.Fprintf(writer, "%s\n", strings.Join(header, ","))
	for i := 0; i < kf.Count; i++ {
		fmt.Fprintf(writer, "%10.5f", kf.Timestamp(i))
		for _, rotations := range kf.Rotations {
			q := rotations[i]
			fmt.Fprintf(writer, ",%10.5f,%10.5f,%10.5f,%10.5f", q.Real, q.Imag, q.Jmag, q.Kmag)
		}
		fmt.Fprintf(writer, "\n")
	}
	return writer.Flush()
}

// WriteResampledRotations evaluates the rotation step curves every 1/rate
// seconds over the clip and writes time, then w,x,y,z of every track.
func WriteResampledRotations(out io.Writer, tracks []keyframe.Track, rate float64) error {
	if rate <= 0 {
		return fmt.Errorf("export: sample rate must be positive, got %v", rate)
	}

	header := []string{"time"}
	duration := 0.0
	for _, track := range tracks {
		name := track.Target.Leaf()
		for _, axis := range []string{"w", "x", "y", "z"} {
			header = append(header, fmt.Sprintf("%s.%s", name, axis))
		}
		if d := track.Rotation.Duration(); d > duration {
			duration = d
		}
	}

	writer := bufio.NewWriter(out)
	fmt.Fprintf(writer, "%s\n", strings.Join(header, ","))
	samples := int(math.Floor(duration*rate+1e-9)) + 1
	for i := 0; i < samples; i++ {
		t := float64(i) / rate
		pose := keyframe.Pose(tracks, t)
		fmt.Fprintf(writer, "%10.5f", t)
		for _, track := range tracks {
			q := pose[track.Target.String()]
			fmt.Fprintf(writer, ",%10.5f,%10.5f,%10.5f,%10.5f", q.Real, q.Imag, q.Jmag, q.Kmag)
		}
		fmt.Fprintf(writer, "\n")
	}
	return writer.Flush()
}

// WriteJointPositions writes one row per frame: time, then the scaled world
// position of every joint, and of every end site when endSites is set.
func WriteJointPositions(out io.Writer, h *skeleton.Hierarchy, kf *keyframe.Set, scale float64, endSites bool) error {
	order := h.PreOrder()

	header := []string{"time"}
	for _, index := range order {
		node := &h.Nodes[index]
		names := []string{node.Name}
		if endSites && node.HasEndSegment() {
			names = append(names, skeleton.EndSiteName(node.Name))
		}
		for _, name := range names {
			for _, axis := range []string{"x", "y", "z"} {
				header = append(header, fmt.Sprintf("%s.%s", name, axis))
			}
		}
	}

	writer := bufio.NewWriter(out)
	fmt.Fprintf(writer, "%s\n", strings.Join(header, ","))
	for i := 0; i < kf.Count; i++ {
		positions := keyframe.WorldPositions(h, kf, i)
		fmt.Fprintf(writer, "%10.5f", kf.Timestamp(i))
		for _, index := range order {
			p := positions[index]
			fmt.Fprintf(writer, ",%10.5f,%10.5f,%10.5f", scale*p.X, scale*p.Y, scale*p.Z)
			if endSites && h.Nodes[index].HasEndSegment() {
				e := keyframe.EndSitePosition(h, kf, positions, index, i)
				fmt.Fprintf(writer, ",%10.5f,%10.5f,%10.5f", scale*e.X, scale*e.Y, scale*e.Z)
			}
		}
		fmt.Fprintf(writer, "\n")
	}
	return writer.Flush()
}

// WriteJointHierarchy writes joint, parent and scaled offset for every joint.
func WriteJointHierarchy(out io.Writer, h *skeleton.Hierarchy, scale float64, endSites bool) error {
	writer := bufio.NewWriter(out)

	fmt.Fprintf(writer, "joint,parent,offset.x,offset.y,offset.z\n")
	for _, index := range h.PreOrder() {
		node := &h.Nodes[index]
		parentName := ""
		if node.Parent >= 0 {
			parentName = h.Nodes[node.Parent].Name
		}
		fmt.Fprintf(writer, "%s,%s,%f,%f,%f\n", node.Name, parentName, scale*node.Offset.X, scale*node.Offset.Y, scale*node.Offset.Z)

		if endSites && node.HasEndSegment() {
			e := node.EndSite
			fmt.Fprintf(writer, "%s,%s,%f,%f,%f\n", skeleton.EndSiteName(node.Name), node.Name, scale*e.X, scale*e.Y, scale*e.Z)
		}
	}
	return writer.Flush()
}
