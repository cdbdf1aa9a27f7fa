package terminal

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/kballard/go-shellquote"

	"github.com/ericfisherdev/signupdesk/internal/application"
)

const prompt = "signupdesk> "

// usageError marks input the shell rejected before any action ran.
type usageError struct {
	msg string
}

func (e *usageError) Error() string { return e.msg }

func usageErr(format string, args ...any) error {
	return &usageError{msg: fmt.Sprintf(format, args...)}
}

// command is one entry of the shell's command table.
type command struct {
	usage string
	help  string
	// async commands run on their own goroutine so the prompt stays usable
	// while the request is in flight. Synchronous commands must not call the
	// service; they hand network work to spawn instead.
	async bool
	run   func(ctx context.Context, args []string) error
}

// Shell reads commands line by line and dispatches them to the application.
type Shell struct {
	view       *application.ActivityView
	controller *application.SessionController
	screen     *Screen
	lines      LineReader
	out        io.Writer
	logger     *slog.Logger
	commands   map[string]command

	mu       sync.Mutex
	closed   bool
	inflight sync.WaitGroup
}

// NewShell creates a Shell with all required dependencies. out is normally the
// Screen itself so command output never interleaves with a render.
func NewShell(
	view *application.ActivityView,
	controller *application.SessionController,
	screen *Screen,
	lines LineReader,
	out io.Writer,
	logger *slog.Logger,
) *Shell {
	s := &Shell{
		view:       view,
		controller: controller,
		screen:     screen,
		lines:      lines,
		out:        out,
		logger:     logger,
	}
	s.commands = s.commandTable()
	return s
}

func (s *Shell) commandTable() map[string]command {
	return map[string]command{
		"help":    {usage: "help", help: "list commands", run: s.help},
		"list":    {usage: "list", help: "reload activities from the server", async: true, run: s.list},
		"show":    {usage: "show", help: "print the last loaded activities", run: s.show},
		"select":  {usage: "select <activity>", help: "choose the activity in the signup form", run: s.selectActivity},
		"email":   {usage: "email <address>", help: "set the email in the signup form", run: s.setEmail},
		"form":    {usage: "form", help: "print the signup form", run: s.printForm},
		"submit":  {usage: "submit", help: "submit the signup form", async: true, run: s.submit},
		"signup":  {usage: "signup <activity> <email>", help: "fill and submit the signup form", async: true, run: s.signup},
		"remove":  {usage: "remove #<n> | remove <activity> <email>", help: "unregister a participant (admin)", async: true, run: s.remove},
		"admin":   {usage: "admin", help: "log in or out of admin mode", run: s.admin},
		"wait":    {usage: "wait", help: "wait for pending requests to finish", run: s.wait},
		"panel":   {usage: "panel", help: "show or hide the admin panel", run: s.panel},
		"status":  {usage: "status", help: "print the admin status", run: s.status},
		"message": {usage: "message", help: "print the message on display", run: s.message},
		"quit":    {usage: "quit", help: "wait for pending requests and exit"},
		"exit":    {usage: "exit", help: "same as quit"},
	}
}

// Run renders the initial status, starts the first load in the background,
// then processes commands until quit, end of input or ctx cancellation. It
// waits for in-flight actions before returning.
func (s *Shell) Run(ctx context.Context) error {
	defer s.Wait()

	s.controller.RenderStatus()
	s.spawn(ctx, "list", s.list, nil)

	for {
		if ctx.Err() != nil {
			return nil
		}

		fmt.Fprint(s.out, prompt)
		line, err := s.lines.ReadLine()
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(s.out)
			return nil
		}
		if err != nil {
			return fmt.Errorf("read command: %w", err)
		}
		if ctx.Err() != nil {
			return nil
		}

		args, err := shellquote.Split(line)
		if err != nil {
			fmt.Fprintf(s.out, "cannot parse command: %v\n", err)
			continue
		}
		if len(args) == 0 {
			continue
		}
		if args[0] == "quit" || args[0] == "exit" {
			return nil
		}
		s.dispatch(ctx, args)
	}
}

// Wait stops accepting asynchronous actions and blocks until the ones
// already started have finished.
func (s *Shell) Wait() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.inflight.Wait()
}

func (s *Shell) dispatch(ctx context.Context, args []string) {
	cmd, ok := s.commands[args[0]]
	if !ok {
		fmt.Fprintf(s.out, "unknown command %q, type help for a list\n", args[0])
		return
	}

	if cmd.async {
		s.spawn(ctx, args[0], cmd.run, args[1:])
		return
	}
	s.execute(ctx, args[0], cmd.run, args[1:])
}

// spawn runs fn on its own goroutine, tracked by Wait. Once Wait has been
// called nothing new is started.
func (s *Shell) spawn(ctx context.Context, name string, fn func(context.Context, []string) error, args []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.inflight.Go(func() { s.execute(ctx, name, fn, args) })
}

// execute runs one command with panic recovery and a debug log line.
func (s *Shell) execute(ctx context.Context, name string, fn func(context.Context, []string) error, args []string) {
	start := time.Now()
	defer func() {
		if v := recover(); v != nil {
			s.logger.Error("panic recovered", "panic", v, "command", name)
		}
	}()

	err := fn(ctx, args)
	var usage *usageError
	if errors.As(err, &usage) {
		fmt.Fprintf(s.out, "%s\nusage: %s\n", usage.msg, s.commands[name].usage)
	}

	s.logger.Debug("command finished",
		"command", name,
		"error", err,
		"duration", time.Since(start).Round(time.Microsecond),
	)
}

func (s *Shell) help(context.Context, []string) error {
	var b strings.Builder
	for _, name := range slices.Sorted(maps.Keys(s.commands)) {
		cmd := s.commands[name]
		fmt.Fprintf(&b, "  %-40s %s\n", cmd.usage, cmd.help)
	}
	io.WriteString(s.out, b.String())
	return nil
}

func (s *Shell) list(ctx context.Context, _ []string) error {
	return s.view.Load(ctx)
}

func (s *Shell) show(context.Context, []string) error {
	s.screen.Redraw()
	return nil
}

func (s *Shell) selectActivity(_ context.Context, args []string) error {
	if len(args) != 1 {
		return usageErr("select takes one activity name")
	}
	return s.choose(args[0])
}

func (s *Shell) choose(activity string) error {
	if !s.screen.SelectActivity(activity) {
		return usageErr("unknown activity %q, choose one of: %s",
			activity, strings.Join(s.screen.Options(), ", "))
	}
	return nil
}

func (s *Shell) setEmail(_ context.Context, args []string) error {
	if len(args) != 1 {
		return usageErr("email takes one address")
	}
	s.screen.SetEmail(args[0])
	return nil
}

func (s *Shell) printForm(context.Context, []string) error {
	form := s.screen.Form()
	fmt.Fprintf(s.out, "activity: %s\nemail:    %s\n", form.Activity, form.Email)
	return nil
}

func (s *Shell) submit(ctx context.Context, _ []string) error {
	form := s.screen.Form()
	if form.Activity == "" || form.Email == "" {
		return usageErr("activity and email are required")
	}
	return s.view.Signup(ctx, form.Activity, form.Email)
}

func (s *Shell) signup(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return usageErr("signup takes an activity and an email")
	}
	if err := s.choose(args[0]); err != nil {
		return err
	}
	s.screen.SetEmail(args[1])
	return s.submit(ctx, nil)
}

func (s *Shell) remove(ctx context.Context, args []string) error {
	switch {
	case len(args) == 1 && strings.HasPrefix(args[0], "#"):
		n, err := strconv.Atoi(strings.TrimPrefix(args[0], "#"))
		if err != nil {
			return usageErr("invalid row %q", args[0])
		}
		row, ok := s.screen.Row(n)
		if !ok {
			return usageErr("no participant row %d", n)
		}
		return s.view.Unregister(ctx, row.Activity, row.Email)
	case len(args) == 2:
		return s.view.Unregister(ctx, args[0], args[1])
	default:
		return usageErr("remove takes a row number or an activity and an email")
	}
}

// admin prompts for the password here, since the prompt reads the same input
// as the shell, and leaves the login or logout request to a background step.
func (s *Shell) admin(ctx context.Context, _ []string) error {
	step, err := s.controller.PrepareToggle(ctx)
	if err != nil {
		return err
	}
	s.spawn(ctx, "admin", func(ctx context.Context, _ []string) error { return step(ctx) }, nil)
	return nil
}

// wait blocks the prompt until every request started so far has finished.
// Scripts piped into the shell use it to order dependent commands.
func (s *Shell) wait(context.Context, []string) error {
	s.inflight.Wait()
	return nil
}

func (s *Shell) panel(context.Context, []string) error {
	if !s.screen.TogglePanel() {
		fmt.Fprintln(s.out, "Admin panel hidden.")
	}
	return nil
}

func (s *Shell) status(context.Context, []string) error {
	s.controller.RenderStatus()
	if !s.screen.PanelVisible() {
		s.screen.PrintStatus()
	}
	return nil
}

func (s *Shell) message(context.Context, []string) error {
	msg, ok := s.screen.CurrentMessage()
	if !ok {
		fmt.Fprintln(s.out, "No message.")
		return nil
	}
	fmt.Fprintln(s.out, msg.Text)
	return nil
}

// NewLineReader returns a LineReader over r. The shell and the password
// prompter must share one reader so buffered input is not lost.
func NewLineReader(r io.Reader) LineReader {
	return &scannerLines{sc: bufio.NewScanner(r)}
}

type scannerLines struct {
	sc *bufio.Scanner
}

func (l *scannerLines) ReadLine() (string, error) {
	if l.sc.Scan() {
		return l.sc.Text(), nil
	}
	if err := l.sc.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}
