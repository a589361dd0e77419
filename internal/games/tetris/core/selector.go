package core

import "math/rand"

// Selector supplies the shape of every newly spawned block.
// Returned blocks are in shape-local coordinates; the board translates them
// to the spawn position.
type Selector interface {
	Next() Block
}

// RandomSelector picks every kind with equal probability.
type RandomSelector struct {
	rng *rand.Rand
}

// NewRandomSelector creates a selector backed by a seeded source.
// The same seed always yields the same sequence of shapes.
func NewRandomSelector(seed int64) *RandomSelector {
	return &RandomSelector{rng: rand.New(rand.NewSource(seed))}
}

// Next returns a random canonical shape.
func (s *RandomSelector) Next() Block {
	return NewRandomBlock(s.rng)
}

// SequenceSelector replays a fixed list of blocks, wrapping around at the end.
type SequenceSelector struct {
	blocks []Block
	next   int
}

// NewSequenceSelector creates a selector cycling through blocks.
// It panics if no blocks are given.
func NewSequenceSelector(blocks ...Block) *SequenceSelector {
	if len(blocks) == 0 {
		panic("core: sequence selector needs at least one block")
	}
	return &SequenceSelector{blocks: blocks}
}

// NewKindSequence is a convenience for cycling through canonical shapes.
func NewKindSequence(kinds ...Kind) *SequenceSelector {
	blocks := make([]Block, len(kinds))
	for i, k := range kinds {
		blocks[i] = NewShape(k)
	}
	return NewSequenceSelector(blocks...)
}

// Next returns the next block in the sequence.
func (s *SequenceSelector) Next() Block {
	b := s.blocks[s.next]
	s.next = (s.next + 1) % len(s.blocks)
	return b
}
