package app

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/kobzarvs/linetrack/internal/textbuf"
)

const maxTextWidth = 48

type styles struct {
	Title     lipgloss.Style
	Label     lipgloss.Style
	Header    lipgloss.Style
	Separator lipgloss.Style
	Number    lipgloss.Style
	Multibyte lipgloss.Style
	Text      lipgloss.Style
	Success   lipgloss.Style
	Failure   lipgloss.Style
	Dim       lipgloss.Style
}

func newStyles(color bool) *styles {
	if !color {
		plain := lipgloss.NewStyle()
		return &styles{
			Title:     plain,
			Label:     plain,
			Header:    plain,
			Separator: plain,
			Number:    plain,
			Multibyte: plain,
			Text:      plain,
			Success:   plain,
			Failure:   plain,
			Dim:       plain,
		}
	}
	return &styles{
		Title:     lipgloss.NewStyle().Bold(true),
		Label:     lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		Header:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7")),
		Separator: lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		Number:    lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
		Multibyte: lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		Text:      lipgloss.NewStyle(),
		Success:   lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true),
		Failure:   lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		Dim:       lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
	}
}

// isColorEnabled resolves "auto", "always" and "never". Auto colors only
// terminals and honors NO_COLOR.
func isColorEnabled(mode string, w io.Writer) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if f, ok := w.(*os.File); ok {
		return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return false
}

var tableColumns = []string{"LINE", "CHAR", "LEN", "BYTE", "BLEN", "MB", "TEXT"}

// lineTable renders one row per line. Numeric columns are right aligned.
func (s *styles) lineTable(lines []textbuf.Line) string {
	rows := make([][]string, len(lines))
	for i, l := range lines {
		mb := "-"
		if l.Multibyte {
			mb = "yes"
		}
		rows[i] = []string{
			strconv.Itoa(l.Index),
			strconv.Itoa(l.Position),
			strconv.Itoa(l.Length),
			strconv.Itoa(l.ByteStart),
			strconv.Itoa(l.ByteLength),
			mb,
			quoteLine(l.Text),
		}
	}

	widths := make([]int, len(tableColumns))
	for i, h := range tableColumns {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], lipgloss.Width(cell))
		}
	}

	var sb strings.Builder
	header := make([]string, len(tableColumns))
	for i, h := range tableColumns {
		header[i] = pad(h, widths[i], i < len(tableColumns)-2)
	}
	sb.WriteString(s.Header.Render(strings.Join(header, "  ")))
	sb.WriteString("\n")

	total := 2 * (len(widths) - 1)
	for _, w := range widths {
		total += w
	}
	sb.WriteString(s.Separator.Render(strings.Repeat("─", total)))
	sb.WriteString("\n")

	for _, row := range rows {
		cells := make([]string, len(row))
		for i, cell := range row {
			padded := pad(cell, widths[i], i < len(row)-2)
			switch {
			case i == len(row)-1:
				cells[i] = s.Text.Render(padded)
			case i == len(row)-2 && cell == "yes":
				cells[i] = s.Multibyte.Render(padded)
			case i < len(row)-2:
				cells[i] = s.Number.Render(padded)
			default:
				cells[i] = s.Dim.Render(padded)
			}
		}
		sb.WriteString(strings.TrimRight(strings.Join(cells, "  "), " "))
		sb.WriteString("\n")
	}
	return sb.String()
}

func (s *styles) summary(b *textbuf.Buffer) string {
	return s.Dim.Render(fmt.Sprintf("%d lines, %d chars, %d bytes, %s",
		b.LineCount(), b.CharLength(), b.Document().ByteLength(), b.Codec().Name()))
}

func pad(cell string, width int, right bool) string {
	gap := width - lipgloss.Width(cell)
	if gap <= 0 {
		return cell
	}
	if right {
		return strings.Repeat(" ", gap) + cell
	}
	return cell + strings.Repeat(" ", gap)
}

// quoteLine shows control characters and truncates long lines.
func quoteLine(text string) string {
	q := strconv.Quote(text)
	q = q[1 : len(q)-1]
	if r := []rune(q); len(r) > maxTextWidth {
		q = string(r[:maxTextWidth-1]) + "…"
	}
	return q
}
