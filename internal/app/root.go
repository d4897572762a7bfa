package app

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kobzarvs/linetrack/internal/charset"
	"github.com/kobzarvs/linetrack/internal/config"
	"github.com/kobzarvs/linetrack/internal/document"
	"github.com/kobzarvs/linetrack/internal/logger"
	"github.com/kobzarvs/linetrack/internal/textbuf"
)

// session holds what every subcommand needs after flags are parsed.
type session struct {
	cfg       config.Config
	encodings config.Encodings
	styles    *styles

	configPath string
	encoding   string
	debug      bool
	logFile    string
	color      string
}

func newRootCommand(a *App) *cobra.Command {
	s := &session{}

	rootCmd := &cobra.Command{
		Use:   "linetrack",
		Short: "Inspect line, character and byte offsets of text files",
		Long: `linetrack maps between line numbers, character offsets and byte offsets
of a text file in any ASCII compatible encoding, and replays edit scripts
to check that the incrementally maintained line index matches a rebuild.`,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return s.setup(cmd)
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			logger.Close()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&s.configPath, "config", "", "path to config file")
	rootCmd.PersistentFlags().StringVarP(&s.encoding, "encoding", "e", "", "text encoding (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&s.debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&s.logFile, "log-file", "", "write log records to this file")
	rootCmd.PersistentFlags().StringVar(&s.color, "color", "auto", "colorize output: auto, always, never")

	rootCmd.AddCommand(newInspectCommand(s))
	rootCmd.AddCommand(newConvertCommand(s))
	rootCmd.AddCommand(newReplayCommand(s))

	return rootCmd
}

func (s *session) setup(cmd *cobra.Command) error {
	var err error
	if s.configPath != "" {
		s.cfg, err = config.LoadFile(s.configPath)
	} else {
		s.cfg, err = config.Load()
	}
	if err != nil {
		return err
	}
	s.encodings, err = config.LoadEncodings()
	if err != nil {
		return err
	}

	debug := s.debug || s.cfg.Log.Debug
	logFile := s.cfg.Log.File
	if s.logFile != "" {
		logFile = s.logFile
	}
	if debug || logFile != "" {
		if err := logger.Init(debug, logFile); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
	}

	s.styles = newStyles(isColorEnabled(s.color, cmd.OutOrStdout()))
	return nil
}

// codecFor picks the encoding for path: the flag, then a file type rule,
// then the configured default.
func (s *session) codecFor(path string) (charset.Codec, error) {
	name := s.encoding
	if name == "" {
		name = s.encodings.EncodingFor(path, s.cfg.Document.Encoding)
	}
	return charset.Lookup(name)
}

func (s *session) bufferOptions() []textbuf.Option {
	return []textbuf.Option{
		textbuf.WithLogger(logger.Named("textbuf")),
		textbuf.WithLineCapacity(s.cfg.Document.LineCapacity),
	}
}

// open loads path into a buffer.
func (s *session) open(path string) (*textbuf.Buffer, error) {
	codec, err := s.codecFor(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	doc := document.New(max(s.cfg.Document.Capacity, len(data)))
	doc.SetText(data)
	logger.Debug("opened file", "path", path, "bytes", len(data), "encoding", codec.Name())
	return textbuf.New(doc, codec, s.bufferOptions()...), nil
}
