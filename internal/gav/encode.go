package gav

import (
	"fmt"

	"gonum.org/v1/gonum/num/quat"

	"bvhgav/internal/keyframe"
)

// EncodeOptions controls Encode.
type EncodeOptions struct {
	// Canonical negates quaternions with a negative scalar part before it is
	// dropped, so that DecodeReconstruct recovers them.
	Canonical bool
}

// Encode packs kf into a (J+1, F, 3) tensor: the root translation in curve 0
// and the vector part of each joint rotation, in kf.Joints order, after it.
func Encode(kf *keyframe.Set, opts EncodeOptions) (*Tensor, error) {
	if len(kf.Joints) == 0 {
		return nil, fmt.Errorf("%w: key frame set has no joints", ErrEmptyTensor)
	}

	frames := kf.Count
	root := kf.RootTranslations()
	if len(root) != frames {
		return nil, fmt.Errorf("%w: %d root translations for %d frames", ErrShapeMismatch, len(root), frames)
	}

	shape := Shape{len(kf.Joints) + 1, frames, 3}
	t := &Tensor{shape: shape, data: make([]float32, shape.Len())}

	for f, p := range root {
		t.set(0, f, [3]float32{float32(p.X), float32(p.Y), float32(p.Z)})
	}
	for j, name := range kf.Joints {
		var rotations []quat.Number
		if j < len(kf.Rotations) {
			rotations = kf.Rotations[j]
		}
		if len(rotations) != frames {
			return nil, fmt.Errorf("%w: joint %q has %d rotations for %d frames", ErrShapeMismatch, name, len(rotations), frames)
		}
		for f, q := range rotations {
			if opts.Canonical && q.Real < 0 {
				q.Imag, q.Jmag, q.Kmag = -q.Imag, -q.Jmag, -q.Kmag
			}
			t.set(j+1, f, [3]float32{float32(q.Imag), float32(q.Jmag), float32(q.Kmag)})
		}
	}
	return t, nil
}
