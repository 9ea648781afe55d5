// Command play runs a hot-seat game in the terminal.
package main

import (
	"bufio"
	"ctchen222/tic-tac-toe-history/internal/game"
	"ctchen222/tic-tac-toe-history/internal/render"
	"ctchen222/tic-tac-toe-history/internal/session"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/muesli/termenv"
)

const help = "1-9 place a mark, j N jump to move N, s toggle sort, q quit"

var errQuit = errors.New("quit")

// parseCommand turns one input line into an intent.
func parseCommand(line string) (game.Intent, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return game.Intent{}, fmt.Errorf("empty command")
	}

	switch fields[0] {
	case "q", "quit":
		return game.Intent{}, errQuit
	case "s", "sort":
		return game.ToggleSortIntent(), nil
	case "j", "jump":
		if len(fields) != 2 {
			return game.Intent{}, fmt.Errorf("usage: j N")
		}
		step, err := strconv.Atoi(fields[1])
		if err != nil {
			return game.Intent{}, fmt.Errorf("invalid step %q", fields[1])
		}
		return game.JumpToIntent(step), nil
	}

	cell, err := strconv.Atoi(fields[0])
	if err != nil || len(fields) != 1 {
		return game.Intent{}, fmt.Errorf("unknown command %q", line)
	}
	return game.PlaceMarkIntent(cell - 1), nil
}

func play(in io.Reader, out *termenv.Output) error {
	state := game.New()
	r := render.New(out)
	scanner := bufio.NewScanner(in)
	message := help

	for {
		out.ClearScreen()
		r.View(state.View())
		fmt.Fprintf(out, "\n%s\n> ", message)

		if !scanner.Scan() {
			return scanner.Err()
		}
		intent, err := parseCommand(scanner.Text())
		if errors.Is(err, errQuit) {
			return nil
		}
		if err != nil {
			message = err.Error()
			continue
		}
		if err := state.Apply(intent); err != nil {
			message = session.RejectionReason(err)
			continue
		}
		message = help
	}
}

func main() {
	out := termenv.NewOutput(os.Stdout)
	if err := play(os.Stdin, out); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
