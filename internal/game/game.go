package game

// PlayerMark represents the mark of a player (X, O) or an empty cell.
type PlayerMark string

const (
	// Player marks
	None    PlayerMark = ""
	PlayerX PlayerMark = "X"
	PlayerO PlayerMark = "O"

	// Board boundaries, as row-major cell indices
	BoardSize = 9
	BorderMin = 0
	BorderMax = BoardSize - 1
)

// Opponent returns the other player's mark. None has no opponent.
func (m PlayerMark) Opponent() PlayerMark {
	switch m {
	case PlayerX:
		return PlayerO
	case PlayerO:
		return PlayerX
	}
	return None
}

// Board is a 3x3 grid stored row-major: index = row*3 + col.
// It is a value type, so every assignment is a copy and a board kept in
// history can never be changed through another reference.
type Board [BoardSize]PlayerMark

// IsFull reports whether no cell is empty.
func (b Board) IsFull() bool {
	for _, cell := range b {
		if cell == None {
			return false
		}
	}
	return true
}

// Rows returns the board as three rows of three cells.
func (b Board) Rows() [3][3]PlayerMark {
	var rows [3][3]PlayerMark
	for i, cell := range b {
		rows[i/3][i%3] = cell
	}
	return rows
}

// with returns a copy of b where cell i holds mark.
func (b Board) with(i int, mark PlayerMark) Board {
	b[i] = mark
	return b
}

func inBounds(i int) bool {
	return i >= BorderMin && i <= BorderMax
}
