package channel

import (
	"errors"
	"fmt"
	"strings"

	"bvhgav/internal/bvh"
)

// ErrUnsupportedRotationOrder matches every *UnsupportedRotationOrderError.
var ErrUnsupportedRotationOrder = errors.New("channel: unsupported rotation order")

// RotationOrder is the order in which a joint's Euler rotations are applied.
type RotationOrder int

const (
	OrderXYZ RotationOrder = iota
	OrderZXY
)

// String returns "XYZ" or "ZXY".
func (o RotationOrder) String() string {
	switch o {
	case OrderXYZ:
		return "XYZ"
	case OrderZXY:
		return "ZXY"
	}
	return fmt.Sprintf("RotationOrder(%d)", int(o))
}

// Axes returns the axis indices (0=X, 1=Y, 2=Z) in application order.
func (o RotationOrder) Axes() [3]int {
	if o == OrderZXY {
		return [3]int{2, 0, 1}
	}
	return [3]int{0, 1, 2}
}

// UnsupportedRotationOrderError carries the rotation channels a joint declared.
type UnsupportedRotationOrderError struct {
	Observed []bvh.ChannelKind
}

func (e *UnsupportedRotationOrderError) Error() string {
	if len(e.Observed) == 0 {
		return "channel: unsupported rotation order: no rotation channels"
	}
	axes := make([]string, len(e.Observed))
	for i, kind := range e.Observed {
		axes[i] = kind.String()[:1]
	}
	return fmt.Sprintf("channel: unsupported rotation order %s", strings.Join(axes, ""))
}

func (e *UnsupportedRotationOrderError) Is(target error) bool {
	return target == ErrUnsupportedRotationOrder
}

var (
	xyz = []bvh.ChannelKind{bvh.RotationX, bvh.RotationY, bvh.RotationZ}
	zxy = []bvh.ChannelKind{bvh.RotationZ, bvh.RotationX, bvh.RotationY}
)

// InferRotationOrder looks at the rotation channels in declaration order,
// ignoring position channels, and accepts only XYZ and ZXY.
func InferRotationOrder(channels []bvh.ChannelKind) (RotationOrder, error) {
	var observed []bvh.ChannelKind
	for _, kind := range channels {
		if kind.IsRotation() {
			observed = append(observed, kind)
		}
	}

	switch {
	case equal(observed, xyz):
		return OrderXYZ, nil
	case equal(observed, zxy):
		return OrderZXY, nil
	}
	return 0, &UnsupportedRotationOrderError{Observed: observed}
}

func equal(a, b []bvh.ChannelKind) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
