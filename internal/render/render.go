// Package render draws a game view on a terminal.
package render

import (
	"ctchen222/tic-tac-toe-history/internal/game"
	"fmt"
	"strings"

	"github.com/muesli/termenv"
)

const (
	colorX   = "#4FC3F7"
	colorO   = "#FF8A65"
	colorWin = "#81C784"
)

// Renderer writes views to a termenv output. Styling is dropped when the
// output profile is Ascii.
type Renderer struct {
	out *termenv.Output
}

// New creates a renderer for out.
func New(out *termenv.Output) *Renderer {
	return &Renderer{out: out}
}

// View draws the board, the status line and the move list.
func (r *Renderer) View(v game.View) {
	fmt.Fprint(r.out, r.Board(v))
	fmt.Fprintln(r.out)
	fmt.Fprintln(r.out, r.status(v))
	fmt.Fprintln(r.out)
	fmt.Fprint(r.out, r.Moves(v))
}

// Board returns the 3x3 grid. Empty cells show the number used to fill them.
func (r *Renderer) Board(v game.View) string {
	var b strings.Builder
	for row := 0; row < 3; row++ {
		if row > 0 {
			b.WriteString("---+---+---\n")
		}
		cells := make([]string, 3)
		for col := 0; col < 3; col++ {
			cells[col] = " " + r.cell(v, row*3+col) + " "
		}
		b.WriteString(strings.Join(cells, "|"))
		b.WriteString("\n")
	}
	return b.String()
}

func (r *Renderer) cell(v game.View, i int) string {
	mark := v.Board[i]
	if mark == game.None {
		return r.out.String(fmt.Sprint(i + 1)).Faint().String()
	}

	style := r.out.String(string(mark)).Bold()
	if v.Winner.Contains(i) {
		return style.Foreground(r.out.Color(colorWin)).Reverse().String()
	}
	if mark == game.PlayerX {
		return style.Foreground(r.out.Color(colorX)).String()
	}
	return style.Foreground(r.out.Color(colorO)).String()
}

func (r *Renderer) status(v game.View) string {
	if v.Winner != nil {
		return r.out.String(v.Status).Bold().Foreground(r.out.Color(colorWin)).String()
	}
	return v.Status
}

// Moves returns the move list in display order, with the current entry
// marked and bold.
func (r *Renderer) Moves(v game.View) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Moves %s\n", v.SortIndicator)
	for _, m := range v.Moves {
		line := fmt.Sprintf("%2d. %s", m.Step, m.Description)
		if m.Label != "" {
			line += " " + m.Label
		}
		if m.Current {
			b.WriteString("> " + r.out.String(line).Bold().String())
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}
	return b.String()
}
