package app

import (
	"errors"
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/kobzarvs/linetrack/internal/document"
	"github.com/kobzarvs/linetrack/internal/logger"
	"github.com/kobzarvs/linetrack/internal/script"
	"github.com/kobzarvs/linetrack/internal/textbuf"
)

// ErrDiverged reports that incremental tracking disagrees with a rebuild.
var ErrDiverged = errors.New("line index diverged from rebuild")

func newInspectCommand(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect FILE",
		Short: "Print the line table of a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := s.open(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, s.styles.Title.Render(args[0]))
			fmt.Fprint(out, s.styles.lineTable(b.Lines()))
			fmt.Fprintln(out, s.styles.summary(b))
			return nil
		},
	}
}

func newConvertCommand(s *session) *cobra.Command {
	var bytePos, charPos int

	cmd := &cobra.Command{
		Use:   "convert FILE",
		Short: "Convert between byte and character offsets",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := s.open(args[0])
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("byte") {
				if bytePos < 0 || bytePos > b.Document().ByteLength() {
					return fmt.Errorf("byte %d outside [0, %d]: %w", bytePos, b.Document().ByteLength(), document.ErrRange)
				}
				charPos = b.ByteToCharOffset(bytePos)
			} else {
				if charPos < 0 || charPos > b.CharLength() {
					return fmt.Errorf("char %d outside [0, %d]: %w", charPos, b.CharLength(), document.ErrRange)
				}
				bytePos = b.CharToByteOffset(charPos)
			}
			line := b.LineFromCharOffset(charPos)
			fmt.Fprintf(cmd.OutOrStdout(), "%s %d  %s %d  %s %d  %s %d\n",
				s.styles.Label.Render("line"), line,
				s.styles.Label.Render("column"), charPos-b.LineStart(line),
				s.styles.Label.Render("char"), charPos,
				s.styles.Label.Render("byte"), bytePos,
			)
			return nil
		},
	}

	cmd.Flags().IntVar(&bytePos, "byte", 0, "byte offset to convert")
	cmd.Flags().IntVar(&charPos, "char", 0, "character offset to convert")
	cmd.MarkFlagsMutuallyExclusive("byte", "char")
	cmd.MarkFlagsOneRequired("byte", "char")

	return cmd
}

func newReplayCommand(s *session) *cobra.Command {
	var quiet bool

	cmd := &cobra.Command{
		Use:   "replay SCRIPT",
		Short: "Apply an edit script and verify the line index",
		Long: `replay loads a TOML or YAML edit script, applies its edits one by one and
compares the incrementally maintained line index with a full rebuild.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := script.Load(args[0])
			if err != nil {
				return err
			}
			if s.encoding != "" {
				sc.Encoding = s.encoding
			}
			b, err := sc.Buffer(s.bufferOptions()...)
			if err != nil {
				return err
			}

			log := logger.Named("replay")
			err = sc.Apply(b, func(i int, e script.Edit) {
				log.Sugar().Debugw("edit", "index", i, "edit", e.String(), "lines", b.LineCount())
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if !quiet {
				fmt.Fprint(out, s.styles.lineTable(b.Lines()))
			}
			if err := verify(b); err != nil {
				fmt.Fprintln(out, s.styles.Failure.Render(err.Error()))
				return err
			}
			fmt.Fprintln(out, s.styles.Success.Render(
				fmt.Sprintf("%d edits applied, index consistent", len(sc.Edits))))
			fmt.Fprintln(out, s.styles.summary(b))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "skip the line table")

	return cmd
}

// verify compares b's line starts and multibyte flags with a fresh buffer
// built from the same bytes.
func verify(b *textbuf.Buffer) error {
	fresh := textbuf.New(document.FromBytes(b.Document().Bytes()), b.Codec())
	got := lineStarts(b)
	want := lineStarts(fresh)
	if !slices.Equal(got, want) {
		return fmt.Errorf("%w: starts %v, rebuild %v", ErrDiverged, got, want)
	}
	for i := 0; i < fresh.LineCount(); i++ {
		if b.Line(i).Multibyte != fresh.Line(i).Multibyte {
			return fmt.Errorf("%w: multibyte flag of line %d", ErrDiverged, i)
		}
	}
	return nil
}

func lineStarts(b *textbuf.Buffer) []int {
	starts := make([]int, b.LineCount()+1)
	for i := range starts {
		starts[i] = b.LineStart(i)
	}
	return starts
}
