package keyframe

import (
	"fmt"
	"sync"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"bvhgav/internal/bvh"
	"bvhgav/internal/channel"
	"bvhgav/internal/skeleton"
)

// Set holds per-joint sampled keyframes of one clip.
type Set struct {
	FrameTime float64
	Count     int

	// Joints lists joint names in hierarchy pre-order; Joints[0] is the root.
	// Names may repeat. Nodes, Translations and Rotations are indexed like Joints.
	Joints     []string
	Nodes      []int
	RootOffset r3.Vec

	// Translations[j] is nil for joints without position channels.
	Translations [][]r3.Vec
	Rotations    [][]quat.Number
}

// Options controls Build.
type Options struct {
	// Workers is the number of goroutines sampling joints. Values below 2 run inline.
	Workers int
}

// Timestamp returns the time of frame i.
func (s *Set) Timestamp(i int) float64 {
	return float64(i) * s.FrameTime
}

// RootTranslations returns the root translation of every frame, falling back
// to the rest offset when the root has no position channels.
func (s *Set) RootTranslations() []r3.Vec {
	if len(s.Translations) > 0 && s.Translations[0] != nil {
		return s.Translations[0]
	}
	out := make([]r3.Vec, s.Count)
	for i := range out {
		out[i] = s.RootOffset
	}
	return out
}

// slots maps hierarchy node indices to joint positions in s; -1 marks nodes
// the set does not cover.
func (s *Set) slots(nodes int) []int {
	slots := make([]int, nodes)
	for i := range slots {
		slots[i] = -1
	}
	for j, node := range s.Nodes {
		if node >= 0 && node < nodes {
			slots[node] = j
		}
	}
	return slots
}

func (s *Set) translations(slot int) []r3.Vec {
	if slot < 0 || slot >= len(s.Translations) {
		return nil
	}
	return s.Translations[slot]
}

func (s *Set) rotations(slot int) []quat.Number {
	if slot < 0 || slot >= len(s.Rotations) {
		return nil
	}
	return s.Rotations[slot]
}

type jointFrames struct {
	translations []r3.Vec
	rotations    []quat.Number
	err          error
}

// Build samples every joint of h from doc and converts its Euler channels to
// unit quaternions. The first failing joint in hierarchy order decides the error.
func Build(doc *bvh.Document, h *skeleton.Hierarchy, opts Options) (*Set, error) {
	order := h.PreOrder()
	results := make([]jointFrames, len(order))

	if opts.Workers < 2 || len(order) < 2 {
		for i, index := range order {
			results[i] = buildJoint(doc, &h.Nodes[index])
		}
	} else {
		jobs := make(chan int, opts.Workers*2)
		var wg sync.WaitGroup
		for w := 0; w < opts.Workers; w++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := range jobs {
					results[i] = buildJoint(doc, &h.Nodes[order[i]])
				}
			}()
		}
		for i := range order {
			jobs <- i
		}
		close(jobs)
		wg.Wait()
	}

	set := &Set{
		FrameTime:    doc.FrameTime,
		Count:        doc.Frames,
		Joints:       make([]string, len(order)),
		Nodes:        order,
		RootOffset:   h.Root().Offset,
		Translations: make([][]r3.Vec, len(order)),
		Rotations:    make([][]quat.Number, len(order)),
	}
	for i, index := range order {
		name := h.Nodes[index].Name
		if results[i].err != nil {
			return nil, fmt.Errorf("keyframe: joint %q: %w", name, results[i].err)
		}
		set.Joints[i] = name
		set.Rotations[i] = results[i].rotations
		set.Translations[i] = results[i].translations
	}
	return set, nil
}

func buildJoint(doc *bvh.Document, node *skeleton.Node) jointFrames {
	record := doc.Joints[node.Record]

	samples, err := channel.Sample(doc, node.Record)
	if err != nil {
		return jointFrames{err: err}
	}
	order, err := channel.InferRotationOrder(record.Channels)
	if err != nil {
		return jointFrames{err: err}
	}

	out := jointFrames{rotations: make([]quat.Number, doc.Frames)}
	for frame := range out.rotations {
		out.rotations[frame] = EulerToQuat(order, samples.Axis(frame, true, [3]float64{}))
	}

	if samples.HasPosition() {
		rest := [3]float64{node.Offset.X, node.Offset.Y, node.Offset.Z}
		out.translations = make([]r3.Vec, doc.Frames)
		for frame := range out.translations {
			p := samples.Axis(frame, false, rest)
			out.translations[frame] = r3.Vec{X: p[0], Y: p[1], Z: p[2]}
		}
	}
	return out
}
