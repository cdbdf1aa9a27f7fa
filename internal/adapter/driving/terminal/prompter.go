package terminal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/term"

	"github.com/ericfisherdev/signupdesk/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.PasswordPrompter = (*Prompter)(nil)

// LineReader yields input lines. It returns io.EOF once input is exhausted.
type LineReader interface {
	ReadLine() (string, error)
}

// Prompter asks for the admin password. On an interactive terminal the input
// is read without echo; otherwise the next input line is used.
type Prompter struct {
	out      io.Writer
	lines    LineReader
	fd       int
	terminal bool
}

// NewPrompter creates a Prompter. fd is the input file descriptor; pass -1
// when input is not a file.
func NewPrompter(out io.Writer, lines LineReader, fd int) *Prompter {
	return &Prompter{
		out:      out,
		lines:    lines,
		fd:       fd,
		terminal: fd >= 0 && term.IsTerminal(fd),
	}
}

// PromptPassword prints label and reads a password. End of input, an
// interrupted read, or an empty answer is a cancellation.
func (p *Prompter) PromptPassword(ctx context.Context, label string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	fmt.Fprintf(p.out, "%s ", label)

	var (
		password string
		err      error
	)
	if p.terminal {
		var raw []byte
		raw, err = term.ReadPassword(p.fd)
		fmt.Fprintln(p.out)
		password = string(raw)
	} else {
		password, err = p.lines.ReadLine()
	}

	switch {
	case errors.Is(err, io.EOF):
		return "", driven.ErrPromptCancelled
	case err != nil:
		return "", fmt.Errorf("read password: %w", err)
	}

	password = strings.TrimRight(password, "\r\n")
	if password == "" {
		return "", driven.ErrPromptCancelled
	}
	return password, nil
}
