package curve

import (
	"errors"
	"fmt"
	"sort"
)

// ErrInsufficientSamples is returned when fewer than two samples are given.
var ErrInsufficientSamples = errors.New("curve: at least two samples are required")

// Key is one keyframe of a curve.
type Key[T any] struct {
	Time  float64
	Value T
}

// Step is a curve whose value jumps at every key and holds until the next one.
type Step[T any] struct {
	Keys []Key[T]
}

// NewStep places sample i at time i*frameDuration.
func NewStep[T any](samples []T, frameDuration float64) (*Step[T], error) {
	if len(samples) < 2 {
		return nil, fmt.Errorf("%w: got %d", ErrInsufficientSamples, len(samples))
	}
	keys := make([]Key[T], len(samples))
	for i, v := range samples {
		keys[i] = Key[T]{Time: float64(i) * frameDuration, Value: v}
	}
	return &Step[T]{Keys: keys}, nil
}

// Len returns the number of keys.
func (c *Step[T]) Len() int {
	return len(c.Keys)
}

// Duration returns the time of the last key.
func (c *Step[T]) Duration() float64 {
	return c.Keys[len(c.Keys)-1].Time
}

// At returns the value of the last key at or before t. Times before the first
// key return the first value.
func (c *Step[T]) At(t float64) T {
	i := sort.Search(len(c.Keys), func(i int) bool { return c.Keys[i].Time > t }) - 1
	if i < 0 {
		i = 0
	}
	return c.Keys[i].Value
}
