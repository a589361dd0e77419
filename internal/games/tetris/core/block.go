package core

import (
	"iter"
	"math/rand"
	"slices"
)

// Block is a shape instance: a kind tag plus the grid cells it occupies.
//
// Blocks are values. Translate and Rotate return new blocks and never share
// the position slice with the receiver, so the falling block and the fixed
// blocks can never alias. The single exception is collapseRow, which the
// board applies to fixed blocks while clearing lines.
type Block struct {
	kind      Kind
	positions []Position
}

// NewBlock creates a block of the given kind occupying the given cells.
// The positions are copied.
func NewBlock(kind Kind, positions ...Position) Block {
	return Block{
		kind:      kind,
		positions: slices.Clone(positions),
	}
}

// NewShape returns the canonical layout of kind anchored at (0, 0).
func NewShape(kind Kind) Block {
	return NewBlock(kind, canonicalLayouts[kind]...)
}

// NewRandomBlock picks a kind uniformly at random and returns its canonical layout.
func NewRandomBlock(rng *rand.Rand) Block {
	return NewShape(Kind(rng.Intn(kindCount)))
}

// Type returns the shape tag of the block.
func (b Block) Type() Kind {
	return b.kind
}

// Len returns the number of occupied cells.
func (b Block) Len() int {
	return len(b.positions)
}

// IsEmpty reports whether line clearing removed every cell of the block.
func (b Block) IsEmpty() bool {
	return len(b.positions) == 0
}

// Positions yields the occupied cells in a stable order.
func (b Block) Positions() iter.Seq[Position] {
	return func(yield func(Position) bool) {
		for _, p := range b.positions {
			if !yield(p) {
				return
			}
		}
	}
}

// HasPosition reports whether the block occupies pos.
func (b Block) HasPosition(pos Position) bool {
	return slices.Contains(b.positions, pos)
}

// CollidesWith reports whether the two blocks share any cell.
func (b Block) CollidesWith(other Block) bool {
	for _, p := range b.positions {
		if other.HasPosition(p) {
			return true
		}
	}
	return false
}

// Translate returns a copy of the block moved by delta.
func (b Block) Translate(delta Position) Block {
	moved := make([]Position, len(b.positions))
	for i, p := range b.positions {
		moved[i] = p.Add(delta)
	}
	return Block{kind: b.kind, positions: moved}
}

// Bounds returns the top-left and bottom-right corners of the bounding box.
// An empty block returns two zero positions.
func (b Block) Bounds() (minPos, maxPos Position) {
	if len(b.positions) == 0 {
		return Position{}, Position{}
	}
	minPos, maxPos = b.positions[0], b.positions[0]
	for _, p := range b.positions[1:] {
		minPos.X = min(minPos.X, p.X)
		minPos.Y = min(minPos.Y, p.Y)
		maxPos.X = max(maxPos.X, p.X)
		maxPos.Y = max(maxPos.Y, p.Y)
	}
	return minPos, maxPos
}

// Rotate returns a copy of the block turned 90 degrees clockwise.
//
// The cells are rotated inside their bounding box and the box is re-anchored so
// its centre stays in place. The anchor shift uses truncated division of the
// width/height difference, which is exactly negated on the way back, so four
// rotations always restore the original cells. An O block maps onto itself.
func (b Block) Rotate() Block {
	if len(b.positions) == 0 {
		return NewBlock(b.kind)
	}

	minPos, maxPos := b.Bounds()
	w := maxPos.X - minPos.X + 1
	h := maxPos.Y - minPos.Y + 1
	originX := minPos.X + (w-h)/2
	originY := minPos.Y + (h-w)/2

	rotated := make([]Position, len(b.positions))
	for i, p := range b.positions {
		rx := p.X - minPos.X
		ry := p.Y - minPos.Y
		rotated[i] = Position{X: originX + (h - 1 - ry), Y: originY + rx}
	}
	return Block{kind: b.kind, positions: rotated}
}

// collapseRow removes every cell on row y and moves the cells above it down by
// one row. It mutates the block in place and is only used on fixed blocks
// while the board clears a full line.
func (b *Block) collapseRow(y int) {
	kept := make([]Position, 0, len(b.positions))
	for _, p := range b.positions {
		switch {
		case p.Y == y:
			continue
		case p.Y < y:
			p.Y++
		}
		kept = append(kept, p)
	}
	b.positions = kept
}
