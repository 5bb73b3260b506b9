package gav

import (
	"fmt"
	"math"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

// DecodeMode selects how the dropped scalar part of a rotation is restored.
type DecodeMode int

const (
	// DecodeCompat reads (0, a, b, c) and normalizes it. Only rotations near
	// 180 degrees come back faithfully; a zero vector yields NaN components.
	DecodeCompat DecodeMode = iota

	// DecodeReconstruct restores w = sqrt(max(0, 1-a²-b²-c²)).
	DecodeReconstruct
)

// ParseDecodeMode accepts "compat" and "reconstruct". The empty string is compat.
func ParseDecodeMode(s string) (DecodeMode, error) {
	switch strings.ToLower(s) {
	case "", "compat":
		return DecodeCompat, nil
	case "reconstruct":
		return DecodeReconstruct, nil
	}
	return 0, fmt.Errorf("gav: unknown decode mode %q", s)
}

func (m DecodeMode) String() string {
	if m == DecodeReconstruct {
		return "reconstruct"
	}
	return "compat"
}

// Animation is a decoded tensor.
type Animation struct {
	RootPositions []mgl32.Vec3

	// JointRotations is indexed [joint][frame], joints in encoding order.
	JointRotations [][]mgl32.Quat
}

// Frames returns the number of frames.
func (a *Animation) Frames() int {
	return len(a.RootPositions)
}

// Decode unpacks a tensor produced by Encode.
func Decode(t *Tensor, mode DecodeMode) (*Animation, error) {
	if t.shape[0] < 2 {
		return nil, fmt.Errorf("%w: shape %s", ErrEmptyTensor, t.shape)
	}

	frames := t.shape[1]
	anim := &Animation{
		RootPositions:  make([]mgl32.Vec3, frames),
		JointRotations: make([][]mgl32.Quat, t.Joints()),
	}
	for f := 0; f < frames; f++ {
		anim.RootPositions[f] = mgl32.Vec3(t.At(0, f))
	}
	for j := range anim.JointRotations {
		rotations := make([]mgl32.Quat, frames)
		for f := range rotations {
			rotations[f] = decodeRotation(mgl32.Vec3(t.At(j+1, f)), mode)
		}
		anim.JointRotations[j] = rotations
	}
	return anim, nil
}

func decodeRotation(v mgl32.Vec3, mode DecodeMode) mgl32.Quat {
	if mode == DecodeReconstruct {
		w2 := 1 - v.Dot(v)
		if w2 < 0 {
			w2 = 0
		}
		return mgl32.Quat{W: float32(math.Sqrt(float64(w2))), V: v}.Normalize()
	}
	// Scaled by hand: mgl32's Normalize maps a zero quaternion to identity.
	return mgl32.Quat{W: 0, V: v.Mul(1 / v.Len())}
}
