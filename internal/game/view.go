package game

import "fmt"

// Outcome is the derived phase of the game at the current step.
type Outcome int

const (
	InProgress Outcome = iota
	Won
	Drawn
)

func (o Outcome) String() string {
	switch o {
	case Won:
		return "won"
	case Drawn:
		return "drawn"
	}
	return "in_progress"
}

// Status describes the current board. For Won, Player is the winner and Win
// holds the line; for InProgress, Player is the mark to move next.
type Status struct {
	Outcome Outcome
	Player  PlayerMark
	Win     *WinResult
}

func (st Status) String() string {
	switch st.Outcome {
	case Won:
		return "Winner: " + string(st.Player)
	case Drawn:
		return "This one's a draw."
	}
	return "Next player: " + string(st.Player)
}

// Status computes the status of the current board. A win is checked before
// a draw, so a full board with a completed line is reported as won.
func (s *State) Status() Status {
	current := s.Current()
	if win := Detect(current); win != nil {
		return Status{Outcome: Won, Player: win.Player, Win: win}
	}
	if current.IsFull() {
		return Status{Outcome: Drawn}
	}
	return Status{Outcome: InProgress, Player: s.NextPlayer()}
}

// StatusText is the status line shown above the move list.
func (s *State) StatusText() string {
	return s.Status().String()
}

// Location is the 1-based column and row of a cell. Its text form is "(row, col)".
type Location struct {
	Col int `json:"col"`
	Row int `json:"row"`
}

// LocationOf converts a row-major cell index to its location.
func LocationOf(i int) Location {
	return Location{Col: i%3 + 1, Row: i/3 + 1}
}

func (l Location) String() string {
	return fmt.Sprintf("(%d, %d)", l.Row, l.Col)
}

// Location returns where the move was played. The game start has none.
func (m Move) Location() (Location, bool) {
	if !m.hasOrigin {
		return Location{}, false
	}
	return LocationOf(m.origin), true
}

// MoveDescriptor is one entry of the rendered move list.
type MoveDescriptor struct {
	Step        int       `json:"step"`
	Description string    `json:"description"`
	Location    *Location `json:"location,omitempty"`
	Label       string    `json:"label,omitempty"`
	Current     bool      `json:"current"`
}

func describe(step int) string {
	if step == 0 {
		return "Go to game start"
	}
	return fmt.Sprintf("Go to move #%d", step)
}

// Moves returns the move list in display order: history order, reversed as
// a whole when the sort is descending.
func (s *State) Moves() []MoveDescriptor {
	moves := make([]MoveDescriptor, len(s.history))
	for step, m := range s.history {
		d := MoveDescriptor{
			Step:        step,
			Description: describe(step),
			Current:     step == s.step,
		}
		if loc, ok := m.Location(); ok {
			d.Location = &loc
			d.Label = loc.String()
		}
		moves[step] = d
	}
	if !s.sortAscending {
		for i, j := 0, len(moves)-1; i < j; i, j = i+1, j-1 {
			moves[i], moves[j] = moves[j], moves[i]
		}
	}
	return moves
}

// View is everything a renderer needs to draw the game.
type View struct {
	Board         Board            `json:"board"`
	Winner        *WinResult       `json:"winner,omitempty"`
	Outcome       string           `json:"outcome"`
	Status        string           `json:"status"`
	Next          PlayerMark       `json:"next,omitempty"`
	Step          int              `json:"step"`
	SortAscending bool             `json:"sort_ascending"`
	SortIndicator string           `json:"sort_indicator"`
	Moves         []MoveDescriptor `json:"moves"`
}

// View builds the read model of the current state.
func (s *State) View() View {
	status := s.Status()
	v := View{
		Board:         s.Current(),
		Winner:        status.Win,
		Outcome:       status.Outcome.String(),
		Status:        status.String(),
		Step:          s.step,
		SortAscending: s.sortAscending,
		SortIndicator: "↓",
		Moves:         s.Moves(),
	}
	if s.sortAscending {
		v.SortIndicator = "↑"
	}
	if status.Outcome == InProgress {
		v.Next = status.Player
	}
	return v
}
