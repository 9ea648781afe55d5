package game

import (
	"errors"
	"fmt"
)

// ErrCorruptSnapshot is returned by Restore when a snapshot breaks a history invariant.
var ErrCorruptSnapshot = errors.New("corrupt snapshot")

// SnapshotMove is the serialized form of a Move.
type SnapshotMove struct {
	Board  Board `json:"board"`
	Origin *int  `json:"origin,omitempty"`
}

// Snapshot is the serialized form of a State.
type Snapshot struct {
	Moves         []SnapshotMove `json:"moves"`
	Step          int            `json:"step"`
	SortAscending bool           `json:"sort_ascending"`
}

// Snapshot captures the state for storage.
func (s *State) Snapshot() Snapshot {
	snap := Snapshot{
		Moves:         make([]SnapshotMove, len(s.history)),
		Step:          s.step,
		SortAscending: s.sortAscending,
	}
	for i, m := range s.history {
		sm := SnapshotMove{Board: m.Board}
		if origin, ok := m.Origin(); ok {
			sm.Origin = &origin
		}
		snap.Moves[i] = sm
	}
	return snap
}

// Restore rebuilds a State from a snapshot, checking that the history could
// have been produced by PlaceMark intents alone.
func Restore(snap Snapshot) (*State, error) {
	if len(snap.Moves) == 0 {
		return nil, fmt.Errorf("empty history: %w", ErrCorruptSnapshot)
	}
	root := snap.Moves[0]
	if root.Board != (Board{}) || root.Origin != nil {
		return nil, fmt.Errorf("history does not start from an empty board: %w", ErrCorruptSnapshot)
	}

	history := make([]Move, len(snap.Moves))
	for k := 1; k < len(snap.Moves); k++ {
		prev, cur := snap.Moves[k-1].Board, snap.Moves[k]
		if cur.Origin == nil || !inBounds(*cur.Origin) {
			return nil, fmt.Errorf("move %d has no valid origin: %w", k, ErrCorruptSnapshot)
		}
		if Detect(prev) != nil {
			return nil, fmt.Errorf("move %d follows a finished game: %w", k, ErrCorruptSnapshot)
		}
		i := *cur.Origin
		want := PlayerX
		if (k-1)%2 == 1 {
			want = PlayerO
		}
		if prev[i] != None || prev.with(i, want) != cur.Board {
			return nil, fmt.Errorf("move %d is not a single %s at %d: %w", k, want, i, ErrCorruptSnapshot)
		}
		history[k] = Move{Board: cur.Board, origin: i, hasOrigin: true}
	}
	if snap.Step < 0 || snap.Step >= len(history) {
		return nil, fmt.Errorf("step %d outside history of %d: %w", snap.Step, len(history), ErrCorruptSnapshot)
	}

	return &State{
		history:       history,
		step:          snap.Step,
		sortAscending: snap.SortAscending,
	}, nil
}
