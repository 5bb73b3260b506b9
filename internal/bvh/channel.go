package bvh

import (
	"fmt"
	"strings"
)

// ChannelKind is one of the six per-joint animation channels a BVH file can declare.
type ChannelKind int

const (
	PositionX ChannelKind = iota
	PositionY
	PositionZ
	RotationX
	RotationY
	RotationZ
)

var channelNames = [...]string{
	PositionX: "Xposition",
	PositionY: "Yposition",
	PositionZ: "Zposition",
	RotationX: "Xrotation",
	RotationY: "Yrotation",
	RotationZ: "Zrotation",
}

// ParseChannelKind maps a CHANNELS token such as "Zrotation" to its kind.
func ParseChannelKind(token string) (ChannelKind, error) {
	for kind, name := range channelNames {
		if strings.EqualFold(token, name) {
			return ChannelKind(kind), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown channel %q", ErrSyntax, token)
}

// String returns the BVH token for the channel.
func (k ChannelKind) String() string {
	if k < 0 || int(k) >= len(channelNames) {
		return fmt.Sprintf("ChannelKind(%d)", int(k))
	}
	return channelNames[k]
}

// IsRotation reports whether the channel carries an Euler angle.
func (k ChannelKind) IsRotation() bool {
	return k >= RotationX && k <= RotationZ
}

// IsPosition reports whether the channel carries a translation component.
func (k ChannelKind) IsPosition() bool {
	return k >= PositionX && k <= PositionZ
}

// Axis returns 0, 1 or 2 for the X, Y or Z component of the channel.
func (k ChannelKind) Axis() int {
	return int(k) % 3
}
