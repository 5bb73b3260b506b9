package gav

import (
	"errors"
	"fmt"
)

var (
	// ErrShapeMismatch reports data whose length or layout does not fit a (J+1, F, 3) tensor.
	ErrShapeMismatch = errors.New("gav: data does not match tensor shape")

	// ErrEmptyTensor reports a tensor without any joint slot to decode.
	ErrEmptyTensor = errors.New("gav: tensor holds no joint curves")
)

// Shape is (curves, frames, components). Curve 0 is the root translation,
// curves 1..J are joint rotations.
type Shape [3]int

// Len returns the number of elements.
func (s Shape) Len() int {
	return s[0] * s[1] * s[2]
}

func (s Shape) String() string {
	return fmt.Sprintf("(%d, %d, %d)", s[0], s[1], s[2])
}

// Tensor is a dense row-major float32 array of shape (J+1, F, 3).
type Tensor struct {
	shape Shape
	data  []float32
}

// NewTensor wraps data without copying it.
func NewTensor(shape Shape, data []float32) (*Tensor, error) {
	if shape[0] < 0 || shape[1] < 0 || shape[2] != 3 {
		return nil, fmt.Errorf("%w: invalid shape %s", ErrShapeMismatch, shape)
	}
	if len(data) != shape.Len() {
		return nil, fmt.Errorf("%w: %d values for shape %s", ErrShapeMismatch, len(data), shape)
	}
	return &Tensor{shape: shape, data: data}, nil
}

// Shape returns the tensor shape.
func (t *Tensor) Shape() Shape { return t.shape }

// Data returns the backing slice.
func (t *Tensor) Data() []float32 { return t.data }

// Joints returns the number of joint rotation curves.
func (t *Tensor) Joints() int {
	if t.shape[0] == 0 {
		return 0
	}
	return t.shape[0] - 1
}

// Frames returns the number of frames.
func (t *Tensor) Frames() int { return t.shape[1] }

// At returns the three components stored for a curve at a frame.
func (t *Tensor) At(curve, frame int) [3]float32 {
	i := (curve*t.shape[1] + frame) * 3
	return [3]float32{t.data[i], t.data[i+1], t.data[i+2]}
}

func (t *Tensor) set(curve, frame int, v [3]float32) {
	i := (curve*t.shape[1] + frame) * 3
	t.data[i], t.data[i+1], t.data[i+2] = v[0], v[1], v[2]
}
