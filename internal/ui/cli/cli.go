// Package cli implements printing the game and training reports on the terminal.
package cli

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/charmbracelet/lipgloss"
	. "github.com/janpfeifer/utttGo/internal/state"
	"golang.org/x/term"
)

var ansiFilter = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// displayWidth of s removes its color/control sequences and returns the length of what is left.
func displayWidth(s string) int {
	return len([]rune(ansiFilter.ReplaceAllString(s, "")))
}

// UI prints boards and reports to Out.
type UI struct {
	Out   io.Writer
	color bool

	playerStyles [3]lipgloss.Style
	activeStyle  lipgloss.Style
	bannerStyle  lipgloss.Style
}

// New creates a UI printing to stdout. If color is false, no color sequences are used.
func New(color bool) *UI {
	ui := &UI{Out: os.Stdout, color: color}
	ui.playerStyles[Empty] = lipgloss.NewStyle().Faint(true)
	ui.playerStyles[PlayerX] = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	ui.playerStyles[PlayerO] = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	ui.activeStyle = lipgloss.NewStyle().Background(lipgloss.Color("236"))
	ui.bannerStyle = lipgloss.NewStyle().
		Background(lipgloss.Color("13")).
		Foreground(lipgloss.Color("0")).
		Padding(1, 2)
	return ui
}

// terminalWidth returns the width of the terminal, or 0 if Out is not a terminal.
func (ui *UI) terminalWidth() int {
	f, ok := ui.Out.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return 0
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil {
		return 0
	}
	return width
}

// printCentered prints the lines of block centered on the terminal.
func (ui *UI) printCentered(block string) {
	lines := strings.Split(block, "\n")
	blockWidth := 0
	for _, line := range lines {
		blockWidth = max(blockWidth, displayWidth(line))
	}
	indent := max((ui.terminalWidth()-blockWidth)/2, 0)
	for _, line := range lines {
		if len(line) == 0 {
			_, _ = fmt.Fprintln(ui.Out)
			continue
		}
		_, _ = fmt.Fprintf(ui.Out, "%s%s\n", strings.Repeat(" ", indent), line)
	}
}

func (ui *UI) render(style lipgloss.Style, s string) string {
	if !ui.color {
		return s
	}
	return style.Render(s)
}

// cell renders the contents of one cell, highlighting the sub-board where the next move must be played.
func (ui *UI) cell(board *Board, idx int) string {
	g := board.State()[idx]
	s := ui.render(ui.playerStyles[g], string(g.Letter()))
	sub := idx / SubBoardSize
	active := board.ActiveSubBoard()
	if !board.Decision().IsTerminal() && (active == sub || (active == AnySubBoard && board.SubBoardDecision(sub) == Ongoing)) {
		s = ui.render(ui.activeStyle, s)
	}
	return s
}

// BoardLines returns the board as 11 lines of text: 9 rows of cells with the sub-boards separated.
func (ui *UI) BoardLines(board *Board) []string {
	lines := make([]string, 0, 11)
	for row := range 9 {
		if row > 0 && row%3 == 0 {
			lines = append(lines, "------+-------+------")
		}
		var parts []string
		for col := range 9 {
			if col > 0 && col%3 == 0 {
				parts = append(parts, "|")
			}
			sub := (row/3)*3 + col/3
			cell := (row%3)*3 + col%3
			parts = append(parts, ui.cell(board, Index(sub, cell)))
		}
		lines = append(lines, strings.Join(parts, " "))
	}
	return lines
}

// PrintBoard prints the board centered, followed by whose turn it is or the decision.
func (ui *UI) PrintBoard(board *Board) {
	lines := ui.BoardLines(board)
	if board.Decision().IsTerminal() {
		lines = append(lines, "", fmt.Sprintf("Move #%d: %s", board.MoveNumber(), board.Decision()))
	} else {
		lines = append(lines, "", fmt.Sprintf("Move #%d: %s to play", board.MoveNumber(),
			ui.render(ui.playerStyles[board.NextPlayer()], string(board.NextPlayer().Letter()))))
	}
	ui.printCentered(strings.Join(lines, "\n"))
}

// PrintBanner prints the message centered, highlighted.
func (ui *UI) PrintBanner(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	_, _ = fmt.Fprintln(ui.Out)
	if ui.color {
		msg = ui.bannerStyle.Render(msg)
	} else {
		msg = fmt.Sprintf("*** %s ***", msg)
	}
	ui.printCentered(msg)
	_, _ = fmt.Fprintln(ui.Out)
}

// PrintTable prints rows of key/values, with the keys aligned.
func (ui *UI) PrintTable(rows [][2]string) {
	keyWidth := 0
	for _, row := range rows {
		keyWidth = max(keyWidth, displayWidth(row[0]))
	}
	keyStyle := lipgloss.NewStyle().Bold(true)
	for _, row := range rows {
		padding := strings.Repeat(" ", keyWidth-displayWidth(row[0]))
		_, _ = fmt.Fprintf(ui.Out, "  %s%s  %s\n", ui.render(keyStyle, row[0]), padding, row[1])
	}
}
