package core

import (
	"errors"
	"fmt"
	"iter"

	"github.com/kamstrup/intmap"
)

var (
	// ErrInvalidDimensions is returned when the board width or height is not positive.
	ErrInvalidDimensions = errors.New("board dimensions must be positive")

	// ErrNilSelector is returned when no shape selector is supplied.
	ErrNilSelector = errors.New("shape selector is nil")

	// ErrBoardTooSmall is returned when the first spawned block does not fit the grid.
	ErrBoardTooSmall = errors.New("board too small for spawned block")
)

// Direction is a horizontal shift direction.
type Direction int

const (
	Left Direction = iota
	Right
)

// String returns "left" or "right".
func (d Direction) String() string {
	switch d {
	case Left:
		return "left"
	case Right:
		return "right"
	default:
		return "unknown"
	}
}

// delta returns the translation for one step in the direction.
func (d Direction) delta() Position {
	if d == Left {
		return Position{X: -1}
	}
	return Position{X: 1}
}

// State is the board's lifecycle state.
type State int

const (
	StateActive State = iota
	StateLost
)

// String returns "active" or "lost".
func (s State) String() string {
	if s == StateLost {
		return "lost"
	}
	return "active"
}

// Board owns the grid, the falling block and the fixed blocks.
//
// While the board is active the current block never overlaps a fixed block and
// never leaves the grid: every move that would break this is dropped before it
// is applied. Once lost, Tick, Shift and Rotate do nothing.
//
// A Board is not safe for concurrent use.
type Board struct {
	width    int
	height   int
	selector Selector

	current Block
	fixed   []Block
	lost    bool

	linesCleared int
	piecesPlaced int
}

// New creates an empty board and spawns the first block.
func New(width, height int, sel Selector) (*Board, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("core: new board %dx%d: %w", width, height, ErrInvalidDimensions)
	}
	if sel == nil {
		return nil, fmt.Errorf("core: new board: %w", ErrNilSelector)
	}

	b := &Board{
		width:    width,
		height:   height,
		selector: sel,
	}
	b.current = b.spawn()
	if b.IsOutOfBounds(b.current) {
		return nil, fmt.Errorf("core: new board %dx%d: %w", width, height, ErrBoardTooSmall)
	}
	return b, nil
}

// spawn takes the next shape from the selector and moves it to the spawn point.
func (b *Board) spawn() Block {
	return b.selector.Next().Translate(b.spawnOffset())
}

// spawnOffset is the horizontally centred top row.
func (b *Board) spawnOffset() Position {
	return Position{X: b.width / 2, Y: 0}
}

// Width returns the number of columns.
func (b *Board) Width() int {
	return b.width
}

// Height returns the number of rows.
func (b *Board) Height() int {
	return b.height
}

// Current returns the falling block.
func (b *Board) Current() Block {
	return b.current
}

// Fixed yields the landed blocks in the order they were fixed.
func (b *Board) Fixed() iter.Seq[Block] {
	return func(yield func(Block) bool) {
		for _, blk := range b.fixed {
			if !yield(blk) {
				return
			}
		}
	}
}

// FixedCount returns the number of fixed blocks still holding cells.
func (b *Board) FixedCount() int {
	return len(b.fixed)
}

// IsLost reports whether the game has ended.
func (b *Board) IsLost() bool {
	return b.lost
}

// State returns StateLost once a spawned block had no room, StateActive before.
func (b *Board) State() State {
	if b.lost {
		return StateLost
	}
	return StateActive
}

// LinesCleared returns how many full rows have been removed so far.
func (b *Board) LinesCleared() int {
	return b.linesCleared
}

// PiecesPlaced returns how many blocks have been fixed so far.
func (b *Board) PiecesPlaced() int {
	return b.piecesPlaced
}

// Get returns the kind of the block covering pos. The falling block wins over
// fixed blocks; among fixed blocks the earliest one wins. ok is false for an
// empty cell.
func (b *Board) Get(pos Position) (kind Kind, ok bool) {
	if b.current.HasPosition(pos) {
		return b.current.Type(), true
	}
	for _, blk := range b.fixed {
		if blk.HasPosition(pos) {
			return blk.Type(), true
		}
	}
	return 0, false
}

// Positions yields every cell of the grid in row-major order.
func (b *Board) Positions() iter.Seq[Position] {
	return func(yield func(Position) bool) {
		for y := 0; y < b.height; y++ {
			for x := 0; x < b.width; x++ {
				if !yield(Position{X: x, Y: y}) {
					return
				}
			}
		}
	}
}

// IsLineFull reports whether every column of row y is covered by a fixed block.
func (b *Board) IsLineFull(y int) bool {
	columns := intmap.New[int, struct{}](b.width)
	for _, blk := range b.fixed {
		for _, p := range blk.positions {
			if p.Y == y {
				columns.Put(p.X, struct{}{})
			}
		}
	}
	return columns.Len() == b.width
}

// IsOutOfBounds reports whether any cell of blk lies outside the grid.
func (b *Board) IsOutOfBounds(blk Block) bool {
	for _, p := range blk.positions {
		if p.X < 0 || p.X >= b.width || p.Y < 0 || p.Y >= b.height {
			return true
		}
	}
	return false
}

// IsColliding reports whether blk shares a cell with any fixed block.
func (b *Board) IsColliding(blk Block) bool {
	for _, f := range b.fixed {
		if f.CollidesWith(blk) {
			return true
		}
	}
	return false
}

// fits reports whether blk may become the current block.
func (b *Board) fits(blk Block) bool {
	return !b.IsOutOfBounds(blk) && !b.IsColliding(blk)
}

// Tick advances gravity by one row. A block that cannot move down is fixed,
// a new block is spawned, full rows are cleared, and the game is lost if the
// new block has no room.
func (b *Board) Tick() {
	if b.lost {
		return
	}

	moved := b.current.Translate(Position{Y: 1})
	if b.fits(moved) {
		b.current = moved
		return
	}

	b.fixed = append(b.fixed, b.current)
	b.piecesPlaced++
	b.current = b.spawn()
	b.removeFullLines()

	// A spawn that leaves the grid can only happen with custom shapes on a
	// tiny board; it counts as having no room as well.
	if b.IsColliding(b.current) || b.IsOutOfBounds(b.current) {
		b.lost = true
	}
}

// Shift moves the falling block one column, if there is room.
func (b *Board) Shift(dir Direction) {
	if b.lost {
		return
	}
	moved := b.current.Translate(dir.delta())
	if b.fits(moved) {
		b.current = moved
	}
}

// Rotate turns the falling block clockwise, if there is room.
func (b *Board) Rotate() {
	if b.lost {
		return
	}
	rotated := b.current.Rotate()
	if b.fits(rotated) {
		b.current = rotated
	}
}

// removeFullLines clears full rows in a single top-to-bottom pass. Clearing
// row y only moves rows above y, so rows below are still checked correctly.
func (b *Board) removeFullLines() {
	cleared := 0
	for y := 0; y < b.height; y++ {
		if b.IsLineFull(y) {
			b.removeLine(y)
			cleared++
		}
	}
	if cleared == 0 {
		return
	}
	b.linesCleared += cleared
	b.pruneEmpty()
}

// removeLine collapses row y across every fixed block, including blocks that
// only have cells above it, so the field moves down as one grid.
func (b *Board) removeLine(y int) {
	for i := range b.fixed {
		b.fixed[i].collapseRow(y)
	}
}

// pruneEmpty drops fixed blocks whose cells were all cleared.
func (b *Board) pruneEmpty() {
	kept := b.fixed[:0]
	for _, blk := range b.fixed {
		if !blk.IsEmpty() {
			kept = append(kept, blk)
		}
	}
	clear(b.fixed[len(kept):])
	b.fixed = kept
}
