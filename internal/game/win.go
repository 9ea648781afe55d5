package game

// WinResult names the winner and the three cells of the completed line.
type WinResult struct {
	Player PlayerMark `json:"player"`
	Line   [3]int     `json:"line"`
}

// Contains reports whether cell i is part of the winning line.
func (w *WinResult) Contains(i int) bool {
	if w == nil {
		return false
	}
	return w.Line[0] == i || w.Line[1] == i || w.Line[2] == i
}

// winningLines is ordered by priority: rows top to bottom, columns left to
// right, then the two diagonals.
var winningLines = [8][3]int{
	{0, 1, 2}, {3, 4, 5}, {6, 7, 8},
	{0, 3, 6}, {1, 4, 7}, {2, 5, 8},
	{0, 4, 8}, {2, 4, 6},
}

// Detect returns the first completed line on the board, or nil.
// A full board without a line also yields nil; callers decide draws.
func Detect(b Board) *WinResult {
	for _, line := range winningLines {
		a := b[line[0]]
		if a != None && a == b[line[1]] && a == b[line[2]] {
			return &WinResult{Player: a, Line: line}
		}
	}
	return nil
}
