package cascade

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestActiveSetFIFOOrder(t *testing.T) {
	s := NewActiveSet(5)
	assert.True(t, s.Empty())
	assert.False(t, s.Full())

	for _, v := range []int{3, 1, 4} {
		s.Push(v)
	}
	assert.Equal(t, 3, s.Len())
	assert.Equal(t, 3, s.Pop())
	assert.Equal(t, 1, s.Pop())
	assert.Equal(t, 4, s.Pop())
	assert.True(t, s.Empty())
}

func TestActiveSetWrapAround(t *testing.T) {
	// Capacity 3 (4 slots); interleave pushes and pops so the indices wrap
	// several times.
	s := NewActiveSet(3)
	next := 0
	for round := 0; round < 10; round++ {
		s.Push(next)
		s.Push(next + 1)
		assert.Equal(t, next, s.Pop())
		assert.Equal(t, next+1, s.Pop())
		next += 2
	}
	assert.True(t, s.Empty())
}

func TestActiveSetFull(t *testing.T) {
	s := NewActiveSet(2)
	s.Push(0)
	s.Push(1)
	assert.True(t, s.Full())
	assert.Equal(t, 2, s.Len())
}

func TestActiveSetPushOnFullPanics(t *testing.T) {
	s := NewActiveSet(1)
	s.Push(0)
	assert.Panics(t, func() { s.Push(1) })
}

func TestActiveSetPopOnEmptyPanics(t *testing.T) {
	s := NewActiveSet(1)
	assert.Panics(t, func() { s.Pop() })
}
