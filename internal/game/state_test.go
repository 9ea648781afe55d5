package game

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// play applies a sequence of PlaceMark intents, failing on the first rejection.
func play(t *testing.T, s *State, cells ...int) {
	t.Helper()
	for n, i := range cells {
		require.NoError(t, s.PlaceMark(i), "move %d at cell %d", n+1, i)
	}
}

func TestNewGameInitialState(t *testing.T) {
	s := New()

	assert.Equal(t, 1, s.Len())
	assert.Equal(t, 0, s.Step())
	assert.Equal(t, Board{}, s.Current())
	assert.True(t, s.SortAscending())
	assert.Equal(t, PlayerX, s.NextPlayer())
	assert.Nil(t, s.Winner())

	_, ok := s.History()[0].Origin()
	assert.False(t, ok, "game start has no origin")
}

func TestPlaceMarkFirstMove(t *testing.T) {
	s := New()
	require.NoError(t, s.PlaceMark(4))

	assert.Equal(t, PlayerX, s.Current()[4])
	assert.Equal(t, 1, s.Step())
	assert.Equal(t, "Next player: O", s.StatusText())

	origin, ok := s.History()[1].Origin()
	assert.True(t, ok)
	assert.Equal(t, 4, origin)
}

func TestPlaceMarkRejections(t *testing.T) {
	tests := []struct {
		name    string
		setup   []int
		cell    int
		wantErr error
	}{
		{name: "negative index", cell: -1, wantErr: ErrOutOfBounds},
		{name: "index past the board", cell: 9, wantErr: ErrOutOfBounds},
		{name: "occupied cell", setup: []int{4}, cell: 4, wantErr: ErrOccupied},
		{name: "game already won", setup: []int{0, 3, 1, 4, 2}, cell: 5, wantErr: ErrGameOver},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New()
			play(t, s, tt.setup...)
			before := s.Snapshot()

			err := s.PlaceMark(tt.cell)

			require.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, before, s.Snapshot(), "rejected intent must not change state")
		})
	}
}

func TestOccupiedCheckedBeforeGameOver(t *testing.T) {
	s := New()
	play(t, s, 0, 3, 1, 4, 2)

	assert.ErrorIs(t, s.PlaceMark(0), ErrOccupied)
}

func TestTurnAlternates(t *testing.T) {
	s := New()
	play(t, s, 0, 1, 2)

	board := s.Current()
	assert.Equal(t, PlayerX, board[0])
	assert.Equal(t, PlayerO, board[1])
	assert.Equal(t, PlayerX, board[2])
	assert.Equal(t, PlayerO, s.NextPlayer())
}

func TestScenarioWinOnTopRow(t *testing.T) {
	s := New()
	play(t, s, 0, 3, 1, 4, 2)

	win := s.Winner()
	require.NotNil(t, win)
	assert.Equal(t, WinResult{Player: PlayerX, Line: [3]int{0, 1, 2}}, *win)
	assert.Equal(t, "Winner: X", s.StatusText())

	before := s.Snapshot()
	assert.ErrorIs(t, s.PlaceMark(5), ErrGameOver)
	assert.Equal(t, before, s.Snapshot())
}

func TestScenarioDraw(t *testing.T) {
	s := New()
	// X: 0 2 3 7 8, O: 1 4 5 6
	play(t, s, 0, 1, 2, 4, 3, 5, 7, 6, 8)

	assert.True(t, s.Current().IsFull())
	assert.Nil(t, s.Winner())
	assert.Equal(t, Status{Outcome: Drawn}, s.Status())
	assert.Equal(t, "This one's a draw.", s.StatusText())
}

func TestFullWinningBoardIsReportedAsWin(t *testing.T) {
	s := New()
	// X: 0 4 5 6 8, O: 1 2 3 7. X completes 0-4-8 on the ninth move.
	play(t, s, 5, 1, 6, 2, 0, 3, 4, 7, 8)

	assert.True(t, s.Current().IsFull())
	status := s.Status()
	assert.Equal(t, Won, status.Outcome)
	assert.Equal(t, PlayerX, status.Player)
	assert.Equal(t, "Winner: X", s.StatusText())
}

func TestScenarioBranchTruncatesHistory(t *testing.T) {
	s := New()
	play(t, s, 0, 1, 2)
	require.Equal(t, 4, s.Len())

	require.NoError(t, s.JumpTo(1))
	assert.Equal(t, 4, s.Len(), "jumping keeps history")
	assert.Equal(t, PlayerO, s.NextPlayer())

	require.NoError(t, s.PlaceMark(5))

	assert.Equal(t, 3, s.Len())
	assert.Equal(t, 2, s.Step())
	board := s.Current()
	assert.Equal(t, PlayerX, board[0])
	assert.Equal(t, None, board[1], "move #2 was discarded")
	assert.Equal(t, None, board[2], "move #3 was discarded")
	assert.Equal(t, PlayerO, board[5])
}

func TestScenarioJumpOutOfRange(t *testing.T) {
	s := New()
	play(t, s, 0, 1, 2)
	require.Equal(t, 4, s.Len())
	before := s.Snapshot()

	for _, step := range []int{99, 4, -1} {
		assert.ErrorIs(t, s.JumpTo(step), ErrStepOutOfRange)
		assert.Equal(t, before, s.Snapshot())
	}
}

func TestJumpToRecomputesParity(t *testing.T) {
	s := New()
	play(t, s, 0, 1, 2)

	for step, want := range []PlayerMark{PlayerX, PlayerO, PlayerX, PlayerO} {
		require.NoError(t, s.JumpTo(step))
		assert.Equal(t, want, s.NextPlayer(), "step %d", step)
	}
}

func TestJumpBackOutOfFinishedGame(t *testing.T) {
	s := New()
	play(t, s, 0, 3, 1, 4, 2)
	require.NoError(t, s.JumpTo(4))

	require.NoError(t, s.PlaceMark(5), "an earlier position is still open")
	assert.Nil(t, s.Winner())
	assert.Equal(t, 6, s.Len())
}

func TestToggleSortIsIdempotentInPairs(t *testing.T) {
	s := New()
	play(t, s, 4, 0, 8)
	original := s.Moves()

	s.ToggleSort()
	assert.False(t, s.SortAscending())
	reversed := s.Moves()
	require.Len(t, reversed, len(original))
	for i := range original {
		assert.Equal(t, original[i], reversed[len(reversed)-1-i])
	}

	s.ToggleSort()
	assert.True(t, s.SortAscending())
	assert.Equal(t, original, s.Moves())
}

func TestApply(t *testing.T) {
	s := New()

	require.NoError(t, s.Apply(PlaceMarkIntent(4)))
	require.NoError(t, s.Apply(PlaceMarkIntent(0)))
	require.NoError(t, s.Apply(JumpToIntent(1)))
	require.NoError(t, s.Apply(ToggleSortIntent()))

	assert.Equal(t, 1, s.Step())
	assert.False(t, s.SortAscending())
	assert.ErrorIs(t, s.Apply(PlaceMarkIntent(4)), ErrOccupied)
	assert.ErrorIs(t, s.Apply(JumpToIntent(3)), ErrStepOutOfRange)
	assert.ErrorIs(t, s.Apply(Intent{Kind: "undo"}), ErrUnknownIntent)
}

func TestRandomIntentSequencesKeepInvariants(t *testing.T) {
	r := rand.New(rand.NewPCG(7, 42))

	for run := 0; run < 200; run++ {
		s := New()
		for n := 0; n < 40; n++ {
			before := s.Snapshot()
			var in Intent
			switch r.IntN(3) {
			case 0:
				in = PlaceMarkIntent(r.IntN(11) - 1)
			case 1:
				in = JumpToIntent(r.IntN(s.Len()+2) - 1)
			default:
				in = ToggleSortIntent()
			}

			err := s.Apply(in)

			if err != nil {
				require.Equal(t, before, s.Snapshot(), "run %d: rejected %s changed state", run, in)
				continue
			}
			if in.Kind == IntentPlaceMark {
				require.Equal(t, before.Step+2, s.Len(), "run %d: %s", run, in)
				require.Equal(t, s.Len()-1, s.Step())
			}
			first := s.History()[0]
			_, hasOrigin := first.Origin()
			require.Equal(t, Board{}, first.Board)
			require.False(t, hasOrigin)

			_, err = Restore(s.Snapshot())
			require.NoError(t, err, "run %d: history invariants broken after %s", run, in)
		}
	}
}
