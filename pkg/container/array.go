// Package container provides the growable array and open-addressing hash map
// used by the mesh, octree and medium packages.
package container

import (
	"errors"
	"fmt"
)

// Container errors.
var (
	ErrOutOfMemory = errors.New("out of memory")
	ErrKeyExists   = errors.New("key exists")
	ErrOutOfRange  = errors.New("index out of range")
)

const arraySeedCapacity = 2

// Array is a contiguous growable buffer. Capacity starts at 2 and doubles
// whenever an append would overflow it.
type Array[T any] struct {
	data  []T
	limit int
}

// NewArray returns an empty array with no element limit.
func NewArray[T any]() *Array[T] {
	return &Array[T]{}
}

// NewArrayLimit returns an empty array that refuses to hold more than limit
// elements. Appends beyond the limit fail with ErrOutOfMemory and leave the
// array unchanged.
func NewArrayLimit[T any](limit int) *Array[T] {
	return &Array[T]{limit: limit}
}

// Len returns the number of elements.
func (a *Array[T]) Len() int { return len(a.data) }

// Cap returns the current capacity.
func (a *Array[T]) Cap() int { return cap(a.data) }

// reserve makes room for n more elements.
func (a *Array[T]) reserve(n int) error {
	need := len(a.data) + n
	if a.limit > 0 && need > a.limit {
		return fmt.Errorf("%w: array limit %d reached", ErrOutOfMemory, a.limit)
	}
	if need <= cap(a.data) {
		return nil
	}
	newCap := cap(a.data)
	if newCap == 0 {
		newCap = arraySeedCapacity
	}
	for newCap < need {
		newCap *= 2
	}
	grown := make([]T, len(a.data), newCap)
	copy(grown, a.data)
	a.data = grown
	return nil
}

// Push appends v.
func (a *Array[T]) Push(v T) error {
	if err := a.reserve(1); err != nil {
		return err
	}
	a.data = append(a.data, v)
	return nil
}

// Pop removes and returns the last element.
func (a *Array[T]) Pop() (T, bool) {
	var zero T
	if len(a.data) == 0 {
		return zero, false
	}
	last := len(a.data) - 1
	v := a.data[last]
	a.data[last] = zero
	a.data = a.data[:last]
	return v, true
}

// Back returns the last element without removing it.
func (a *Array[T]) Back() (T, bool) {
	if len(a.data) == 0 {
		var zero T
		return zero, false
	}
	return a.data[len(a.data)-1], true
}

// Get returns the element at i. It panics if i is out of range, like a slice.
func (a *Array[T]) Get(i int) T {
	return a.data[i]
}

// Set overwrites the element at i.
func (a *Array[T]) Set(i int, v T) {
	a.data[i] = v
}

// Insert places v at position i, shifting later elements up by one.
func (a *Array[T]) Insert(i int, v T) error {
	if i < 0 || i > len(a.data) {
		return fmt.Errorf("%w: insert at %d, len %d", ErrOutOfRange, i, len(a.data))
	}
	if err := a.reserve(1); err != nil {
		return err
	}
	var zero T
	a.data = append(a.data, zero)
	copy(a.data[i+1:], a.data[i:])
	a.data[i] = v
	return nil
}

// Erase removes the element at i, shifting later elements down, and returns it.
func (a *Array[T]) Erase(i int) (T, error) {
	var zero T
	if i < 0 || i >= len(a.data) {
		return zero, fmt.Errorf("%w: erase at %d, len %d", ErrOutOfRange, i, len(a.data))
	}
	v := a.data[i]
	copy(a.data[i:], a.data[i+1:])
	a.data[len(a.data)-1] = zero
	a.data = a.data[:len(a.data)-1]
	return v, nil
}

// Extend appends every element of other.
func (a *Array[T]) Extend(other *Array[T]) error {
	if other == nil || other.Len() == 0 {
		return nil
	}
	if err := a.reserve(other.Len()); err != nil {
		return err
	}
	a.data = append(a.data, other.data...)
	return nil
}

// Clear removes all elements but keeps the capacity.
func (a *Array[T]) Clear() {
	clear(a.data)
	a.data = a.data[:0]
}

// Slice returns the elements. The slice aliases the array until the next
// mutation.
func (a *Array[T]) Slice() []T {
	return a.data
}
