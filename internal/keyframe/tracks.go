package keyframe

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"bvhgav/internal/curve"
	"bvhgav/internal/skeleton"
)

// ErrUnresolvedTarget is returned when a keyframed joint is missing from the hierarchy.
var ErrUnresolvedTarget = errors.New("keyframe: joint not found in hierarchy")

// Track binds the step curves of one joint to its target path.
// Translation is nil for joints without position channels.
type Track struct {
	Target      skeleton.TargetPath
	Translation *curve.Step[r3.Vec]
	Rotation    *curve.Step[quat.Number]
}

// Tracks builds one Track per joint of kf, in kf.Joints order. A joint whose
// name repeats an earlier one is bound through its own node's path.
func Tracks(h *skeleton.Hierarchy, kf *Set) ([]Track, error) {
	tracks := make([]Track, 0, len(kf.Joints))
	for j, name := range kf.Joints {
		target, ok := h.TargetPath(name)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnresolvedTarget, name)
		}
		if j < len(kf.Nodes) {
			node := kf.Nodes[j]
			if node < 0 || node >= h.Len() || h.Nodes[node].Name != name {
				return nil, fmt.Errorf("%w: %q is not node %d", ErrUnresolvedTarget, name, node)
			}
			if first, _ := h.Find(name); first != node {
				target = h.Path(node)
			}
		}
		track := Track{Target: target}

		if samples := kf.translations(j); samples != nil {
			c, err := curve.NewStep(samples, kf.FrameTime)
			if err != nil {
				return nil, fmt.Errorf("keyframe: translation of %q: %w", name, err)
			}
			track.Translation = c
		}

		c, err := curve.NewStep(kf.rotations(j), kf.FrameTime)
		if err != nil {
			return nil, fmt.Errorf("keyframe: rotation of %q: %w", name, err)
		}
		track.Rotation = c

		tracks = append(tracks, track)
	}
	return tracks, nil
}

// Pose evaluates every track at time t, keyed by target path.
func Pose(tracks []Track, t float64) map[string]quat.Number {
	pose := make(map[string]quat.Number, len(tracks))
	for _, track := range tracks {
		pose[track.Target.String()] = track.Rotation.At(t)
	}
	return pose
}
