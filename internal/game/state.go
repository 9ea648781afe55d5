package game

import (
	"errors"
	"fmt"
)

// Errors returned when an intent is rejected. A rejected intent never changes state.
var (
	ErrOutOfBounds    = errors.New("cell index out of bounds")
	ErrOccupied       = errors.New("cell already occupied")
	ErrGameOver       = errors.New("game already finished")
	ErrStepOutOfRange = errors.New("step out of range")
	ErrUnknownIntent  = errors.New("unknown intent")
)

// Move is one entry of the history: the board after the move and the cell
// that was filled to produce it. The first entry has no origin.
type Move struct {
	Board     Board
	origin    int
	hasOrigin bool
}

// Origin returns the index of the cell filled by this move.
func (m Move) Origin() (int, bool) {
	return m.origin, m.hasOrigin
}

// State is a game with its full, branchable history.
//
// State is owned by a single caller and is not safe for concurrent use.
type State struct {
	history       []Move
	step          int
	sortAscending bool
}

// New returns a game at the start: one empty board, X to move, moves sorted ascending.
func New() *State {
	return &State{
		history:       []Move{{}},
		sortAscending: true,
	}
}

// History returns a copy of the recorded moves.
func (s *State) History() []Move {
	history := make([]Move, len(s.history))
	copy(history, s.history)
	return history
}

// Len returns the number of history entries, including the game start.
func (s *State) Len() int {
	return len(s.history)
}

// Step returns the index of the history entry currently shown.
func (s *State) Step() int {
	return s.step
}

// Current returns the board at the current step.
func (s *State) Current() Board {
	return s.history[s.step].Board
}

// SortAscending reports whether the move list is displayed oldest first.
func (s *State) SortAscending() bool {
	return s.sortAscending
}

// NextPlayer returns the mark to be placed next. It follows the parity of the
// current step: X moves on even steps.
func (s *State) NextPlayer() PlayerMark {
	if s.step%2 == 0 {
		return PlayerX
	}
	return PlayerO
}

// Winner returns the completed line on the current board, if any.
func (s *State) Winner() *WinResult {
	return Detect(s.Current())
}

// PlaceMark fills cell i for the next player. Any history after the current
// step is discarded before the new move is appended.
func (s *State) PlaceMark(i int) error {
	if !inBounds(i) {
		return fmt.Errorf("place mark at %d: %w", i, ErrOutOfBounds)
	}
	current := s.Current()
	if current[i] != None {
		return fmt.Errorf("place mark at %d: %w", i, ErrOccupied)
	}
	if Detect(current) != nil {
		return fmt.Errorf("place mark at %d: %w", i, ErrGameOver)
	}

	next := Move{
		Board:     current.with(i, s.NextPlayer()),
		origin:    i,
		hasOrigin: true,
	}
	s.history = append(s.history[:s.step+1], next)
	s.step = len(s.history) - 1
	return nil
}

// JumpTo moves the replay pointer to step without altering history.
func (s *State) JumpTo(step int) error {
	if step < 0 || step >= len(s.history) {
		return fmt.Errorf("jump to %d of %d: %w", step, len(s.history), ErrStepOutOfRange)
	}
	s.step = step
	return nil
}

// ToggleSort flips the move list display order.
func (s *State) ToggleSort() {
	s.sortAscending = !s.sortAscending
}

// IntentKind identifies a user intent.
type IntentKind string

const (
	IntentPlaceMark  IntentKind = "place"
	IntentJumpTo     IntentKind = "jump"
	IntentToggleSort IntentKind = "toggle_sort"
)

// Intent is a user action submitted to a State.
type Intent struct {
	Kind  IntentKind
	Index int
	Step  int
}

// PlaceMarkIntent returns an intent to fill cell i.
func PlaceMarkIntent(i int) Intent { return Intent{Kind: IntentPlaceMark, Index: i} }

// JumpToIntent returns an intent to replay history at step.
func JumpToIntent(step int) Intent { return Intent{Kind: IntentJumpTo, Step: step} }

// ToggleSortIntent returns an intent to reverse the move list.
func ToggleSortIntent() Intent { return Intent{Kind: IntentToggleSort} }

func (in Intent) String() string {
	switch in.Kind {
	case IntentPlaceMark:
		return fmt.Sprintf("place(%d)", in.Index)
	case IntentJumpTo:
		return fmt.Sprintf("jump(%d)", in.Step)
	}
	return string(in.Kind)
}

// Apply dispatches an intent to the matching transition.
func (s *State) Apply(in Intent) error {
	switch in.Kind {
	case IntentPlaceMark:
		return s.PlaceMark(in.Index)
	case IntentJumpTo:
		return s.JumpTo(in.Step)
	case IntentToggleSort:
		s.ToggleSort()
		return nil
	}
	return fmt.Errorf("%q: %w", in.Kind, ErrUnknownIntent)
}
