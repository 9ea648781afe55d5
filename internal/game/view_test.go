package game

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocationOf(t *testing.T) {
	tests := []struct {
		index int
		want  Location
		text  string
	}{
		{index: 0, want: Location{Col: 1, Row: 1}, text: "(1, 1)"},
		{index: 1, want: Location{Col: 2, Row: 1}, text: "(1, 2)"},
		{index: 2, want: Location{Col: 3, Row: 1}, text: "(1, 3)"},
		{index: 3, want: Location{Col: 1, Row: 2}, text: "(2, 1)"},
		{index: 4, want: Location{Col: 2, Row: 2}, text: "(2, 2)"},
		{index: 5, want: Location{Col: 3, Row: 2}, text: "(2, 3)"},
		{index: 6, want: Location{Col: 1, Row: 3}, text: "(3, 1)"},
		{index: 8, want: Location{Col: 3, Row: 3}, text: "(3, 3)"},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got := LocationOf(tt.index)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.text, got.String())
		})
	}
}

func TestMovesDescriptors(t *testing.T) {
	s := New()
	play(t, s, 4, 0)
	require.NoError(t, s.JumpTo(1))

	moves := s.Moves()

	require.Len(t, moves, 3)
	assert.Equal(t, MoveDescriptor{Step: 0, Description: "Go to game start"}, moves[0])
	assert.Equal(t, MoveDescriptor{
		Step:        1,
		Description: "Go to move #1",
		Location:    &Location{Col: 2, Row: 2},
		Label:       "(2, 2)",
		Current:     true,
	}, moves[1])
	assert.Equal(t, "Go to move #2", moves[2].Description)
	assert.Equal(t, "(1, 1)", moves[2].Label)
	assert.False(t, moves[2].Current)
}

func TestMovesDescendingReversesWholeList(t *testing.T) {
	s := New()
	play(t, s, 4, 0, 8)
	s.ToggleSort()

	moves := s.Moves()

	steps := make([]int, len(moves))
	for i, m := range moves {
		steps[i] = m.Step
	}
	assert.Equal(t, []int{3, 2, 1, 0}, steps)
	assert.True(t, moves[0].Current)
}

func TestStatusText(t *testing.T) {
	tests := []struct {
		name  string
		cells []int
		want  string
	}{
		{name: "start", want: "Next player: X"},
		{name: "after one move", cells: []int{4}, want: "Next player: O"},
		{name: "O wins", cells: []int{0, 3, 1, 4, 8, 5}, want: "Winner: O"},
		{name: "draw", cells: []int{0, 1, 2, 4, 3, 5, 7, 6, 8}, want: "This one's a draw."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New()
			play(t, s, tt.cells...)
			assert.Equal(t, tt.want, s.StatusText())
		})
	}
}

func TestView(t *testing.T) {
	s := New()
	play(t, s, 0, 3, 1, 4, 2)

	v := s.View()

	assert.Equal(t, s.Current(), v.Board)
	require.NotNil(t, v.Winner)
	assert.Equal(t, [3]int{0, 1, 2}, v.Winner.Line)
	assert.Equal(t, "won", v.Outcome)
	assert.Equal(t, "Winner: X", v.Status)
	assert.Equal(t, PlayerMark(""), v.Next)
	assert.Equal(t, 5, v.Step)
	assert.Equal(t, "↑", v.SortIndicator)
	assert.Len(t, v.Moves, 6)

	s.ToggleSort()
	assert.Equal(t, "↓", s.View().SortIndicator)
}

func TestViewJSON(t *testing.T) {
	s := New()
	play(t, s, 4)

	data, err := json.Marshal(s.View())
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "Next player: O", decoded["status"])
	assert.Equal(t, "O", decoded["next"])
	assert.Equal(t, "in_progress", decoded["outcome"])
	assert.NotContains(t, decoded, "winner")
	board := decoded["board"].([]any)
	assert.Equal(t, "X", board[4])
	assert.Equal(t, "", board[0])
}
