package core

import (
	"math/rand"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// cellSet collects a block's cells for order-independent comparison.
func cellSet(b Block) map[Position]bool {
	set := make(map[Position]bool, b.Len())
	for p := range b.Positions() {
		set[p] = true
	}
	return set
}

func TestCanonicalShapes(t *testing.T) {
	for _, k := range Kinds() {
		t.Run(k.String(), func(t *testing.T) {
			b := NewShape(k)
			assert.Equal(t, k, b.Type())
			assert.Equal(t, 4, b.Len(), "tetromino should have four cells")
			assert.Len(t, cellSet(b), 4, "cells should be distinct")

			minPos, maxPos := b.Bounds()
			assert.Equal(t, P(0, 0), minPos, "layout should be anchored at the origin")
			assert.LessOrEqual(t, maxPos.Y, 1, "spawn layouts are at most two rows tall")
		})
	}
}

func TestKindString(t *testing.T) {
	want := []string{"I", "O", "T", "S", "Z", "J", "L"}
	for i, k := range Kinds() {
		assert.Equal(t, want[i], k.String())
	}
	assert.Equal(t, "?", Kind(42).String())
}

func TestTranslate(t *testing.T) {
	b := NewBlock(KindT, P(0, 0), P(1, 0), P(2, 0), P(1, 1))
	moved := b.Translate(P(3, 5))

	assert.Equal(t, KindT, moved.Type())
	assert.Equal(t, map[Position]bool{
		P(3, 5): true, P(4, 5): true, P(5, 5): true, P(4, 6): true,
	}, cellSet(moved))

	// The source block is untouched.
	assert.True(t, b.HasPosition(P(0, 0)))
	assert.False(t, b.HasPosition(P(3, 5)))
}

func TestTransformsDoNotAlias(t *testing.T) {
	src := []Position{P(0, 0), P(1, 0)}
	b := NewBlock(KindI, src...)
	src[0] = P(9, 9)
	assert.True(t, b.HasPosition(P(0, 0)), "NewBlock must copy its input")

	moved := b.Translate(P(0, 0))
	moved.collapseRow(0)
	assert.True(t, moved.IsEmpty())
	assert.Equal(t, 2, b.Len(), "collapsing a copy must not change the original")

	rotated := b.Rotate()
	rotated.collapseRow(5)
	assert.Equal(t, 2, b.Len())
}

func TestRotateClockwise(t *testing.T) {
	// T pointing down becomes T pointing left.
	b := NewShape(KindT)
	got := b.Rotate()
	assert.Equal(t, map[Position]bool{
		P(1, 0): true, P(1, 1): true, P(1, 2): true, P(0, 1): true,
	}, cellSet(got))

	// Horizontal I becomes vertical around its centre.
	i := NewShape(KindI).Translate(P(3, 5))
	assert.Equal(t, map[Position]bool{
		P(4, 4): true, P(4, 5): true, P(4, 6): true, P(4, 7): true,
	}, cellSet(i.Rotate()))
}

func TestRotateCycleOfFour(t *testing.T) {
	for _, k := range Kinds() {
		t.Run(k.String(), func(t *testing.T) {
			start := NewShape(k).Translate(P(5, 7))
			b := start
			for range 4 {
				b = b.Rotate()
			}
			assert.Equal(t, cellSet(start), cellSet(b))
			assert.Equal(t, k, b.Type())
		})
	}
}

func TestRotateSquareInvariant(t *testing.T) {
	o := NewShape(KindO).Translate(P(2, 2))
	assert.Equal(t, cellSet(o), cellSet(o.Rotate()))
}

func TestRotateEmptyBlock(t *testing.T) {
	b := NewBlock(KindZ)
	r := b.Rotate()
	assert.True(t, r.IsEmpty())
	assert.Equal(t, KindZ, r.Type())
}

func TestHasPositionAndCollides(t *testing.T) {
	a := NewBlock(KindO, P(0, 0), P(1, 0))
	b := NewBlock(KindS, P(1, 0), P(2, 0))
	c := NewBlock(KindZ, P(5, 5))

	assert.True(t, a.HasPosition(P(1, 0)))
	assert.False(t, a.HasPosition(P(2, 0)))
	assert.True(t, a.CollidesWith(b))
	assert.True(t, b.CollidesWith(a))
	assert.False(t, a.CollidesWith(c))
}

func TestPositionsRestartable(t *testing.T) {
	b := NewShape(KindL)
	first := slices.Collect(b.Positions())
	second := slices.Collect(b.Positions())
	assert.Equal(t, first, second, "iteration order must be stable")

	// Early exit stops the sequence.
	n := 0
	for range b.Positions() {
		n++
		if n == 2 {
			break
		}
	}
	assert.Equal(t, 2, n)
}

func TestCollapseRow(t *testing.T) {
	b := NewBlock(KindJ, P(0, 3), P(0, 4), P(1, 4), P(2, 4), P(2, 6))
	b.collapseRow(4)

	// Row 4 vanishes, rows above move down by one, rows below stay.
	assert.Equal(t, map[Position]bool{
		P(0, 4): true, P(2, 6): true,
	}, cellSet(b))
}

func TestCollapseRowCanEmptyBlock(t *testing.T) {
	b := NewBlock(KindI, P(0, 2), P(1, 2))
	b.collapseRow(2)
	assert.True(t, b.IsEmpty())
	assert.Equal(t, 0, b.Len())
}

func TestNewRandomBlockUniformKinds(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	seen := make(map[Kind]int)
	for range 700 {
		b := NewRandomBlock(rng)
		require.Equal(t, 4, b.Len())
		seen[b.Type()]++
	}
	assert.Len(t, seen, kindCount, "every kind should appear")
	for k, n := range seen {
		assert.Greater(t, n, 50, "kind %s is badly underrepresented", k)
	}
}
