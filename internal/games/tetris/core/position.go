// Package core implements the falling-block simulation: shapes, the playfield,
// gravity, collision checks and line clearing.
// It has no dependencies on the game platform so it can be tested in isolation.
package core

import "fmt"

// Position is a grid cell. X grows to the right, Y grows downward.
type Position struct {
	X, Y int
}

// P is shorthand for Position{X: x, Y: y}.
func P(x, y int) Position {
	return Position{X: x, Y: y}
}

// Add returns the position shifted by delta.
func (p Position) Add(delta Position) Position {
	return Position{X: p.X + delta.X, Y: p.Y + delta.Y}
}

// String returns "(x, y)".
func (p Position) String() string {
	return fmt.Sprintf("(%d, %d)", p.X, p.Y)
}
