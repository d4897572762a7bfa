package app

import (
	"io"
	"os"
)

// App is the top-level runtime for linetrack.
type App struct {
	args   []string
	stdout io.Writer
	stderr io.Writer
}

func New(args []string) *App {
	return &App{args: args, stdout: os.Stdout, stderr: os.Stderr}
}

// SetOutput redirects command output.
func (a *App) SetOutput(stdout, stderr io.Writer) {
	a.stdout = stdout
	a.stderr = stderr
}

func (a *App) Run() error {
	cmd := newRootCommand(a)
	cmd.SetArgs(a.args)
	cmd.SetOut(a.stdout)
	cmd.SetErr(a.stderr)
	return cmd.Execute()
}
