package core

// Kind identifies a tetromino shape.
type Kind int

const (
	KindI Kind = iota
	KindO
	KindT
	KindS
	KindZ
	KindJ
	KindL
)

// kindCount is the number of shapes the random selector chooses from.
const kindCount = 7

// Kinds returns all shape kinds in a fixed order.
func Kinds() []Kind {
	return []Kind{KindI, KindO, KindT, KindS, KindZ, KindJ, KindL}
}

// String returns the display tag of the shape.
func (k Kind) String() string {
	switch k {
	case KindI:
		return "I"
	case KindO:
		return "O"
	case KindT:
		return "T"
	case KindS:
		return "S"
	case KindZ:
		return "Z"
	case KindJ:
		return "J"
	case KindL:
		return "L"
	default:
		return "?"
	}
}

// canonicalLayouts holds each shape in its spawn orientation, anchored at (0, 0).
// Every layout is at most two rows tall so a spawned piece starts fully on the board.
var canonicalLayouts = map[Kind][]Position{
	KindI: {{0, 0}, {1, 0}, {2, 0}, {3, 0}},
	KindO: {{0, 0}, {1, 0}, {0, 1}, {1, 1}},
	KindT: {{0, 0}, {1, 0}, {2, 0}, {1, 1}},
	KindS: {{1, 0}, {2, 0}, {0, 1}, {1, 1}},
	KindZ: {{0, 0}, {1, 0}, {1, 1}, {2, 1}},
	KindJ: {{0, 0}, {0, 1}, {1, 1}, {2, 1}},
	KindL: {{2, 0}, {0, 1}, {1, 1}, {2, 1}},
}
