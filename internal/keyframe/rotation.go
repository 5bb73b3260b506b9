package keyframe

import (
	"math"

	"gonum.org/v1/gonum/num/quat"

	"bvhgav/internal/channel"
)

// Deg2Rad converts degrees to radians.
func Deg2Rad(deg float64) float64 {
	return deg * math.Pi / 180
}

// EulerToQuat composes per-axis rotations, given in degrees, in the channel
// order: XYZ is Rx*Ry*Rz and ZXY is Rz*Rx*Ry.
func EulerToQuat(order channel.RotationOrder, angles [3]float64) quat.Number {
	q := quat.Number{Real: 1}
	for _, axis := range order.Axes() {
		q = quat.Mul(q, axisRotation(axis, Deg2Rad(angles[axis])))
	}
	return quat.Scale(1/quat.Abs(q), q)
}

func axisRotation(axis int, rad float64) quat.Number {
	s, c := math.Sincos(rad / 2)
	switch axis {
	case 0:
		return quat.Number{Real: c, Imag: s}
	case 1:
		return quat.Number{Real: c, Jmag: s}
	default:
		return quat.Number{Real: c, Kmag: s}
	}
}

// Rotate applies the unit quaternion q to v.
func Rotate(q quat.Number, v [3]float64) [3]float64 {
	p := quat.Mul(quat.Mul(q, quat.Number{Imag: v[0], Jmag: v[1], Kmag: v[2]}), quat.Conj(q))
	return [3]float64{p.Imag, p.Jmag, p.Kmag}
}
