package main

import (
	"bytes"
	"ctchen222/tic-tac-toe-history/internal/game"
	"strings"
	"testing"

	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		want    game.Intent
		wantErr bool
	}{
		{name: "place first cell", line: "1", want: game.PlaceMarkIntent(0)},
		{name: "place last cell", line: " 9 ", want: game.PlaceMarkIntent(8)},
		{name: "jump", line: "j 3", want: game.JumpToIntent(3)},
		{name: "sort", line: "s", want: game.ToggleSortIntent()},
		{name: "jump without step", line: "j", wantErr: true},
		{name: "jump with text", line: "j x", wantErr: true},
		{name: "unknown", line: "undo", wantErr: true},
		{name: "empty", line: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseCommand(tt.line)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPlayUntilWin(t *testing.T) {
	in := strings.NewReader("1\n4\n2\n2\n5\n3\nq\n")
	var buf bytes.Buffer

	err := play(in, termenv.NewOutput(&buf, termenv.WithProfile(termenv.Ascii)))

	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "cell already occupied")
	assert.Contains(t, out, "Winner: X")
	assert.Contains(t, out, " X | X | X \n")
}

func TestPlayStopsAtEndOfInput(t *testing.T) {
	var buf bytes.Buffer
	err := play(strings.NewReader("5\n"), termenv.NewOutput(&buf, termenv.WithProfile(termenv.Ascii)))

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Next player: O")
}
