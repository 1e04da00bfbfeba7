// Package cli wires terminal commands to the users view-model.
package cli

import (
	"bufio"
	"context"
	"io"
	"strconv"
	"strings"
)

const helpText = "Available commands: list, name <text>, email <text>, submit, add <name> <email>, delete <id>, reload, cancel, help, exit"

// Page is the view-model surface the REPL drives.
type Page interface {
	Activate()
	Reload()
	CancelLoad()
	SetName(name string)
	SetEmail(email string)
	Submit()
	Delete(id int64)
}

// Printer is where the REPL writes its own messages.
type Printer interface {
	Print(line string)
}

// REPL reads commands and turns them into view-model intents. Commands
// return immediately; results arrive through the renderer.
type REPL struct {
	page    Page
	out     Printer
	redraw  func()
	promptW io.Writer
}

// NewREPL builds a REPL. redraw re-renders the current mirror for "list".
// When promptW is non-nil a prompt is written before each read.
func NewREPL(page Page, out Printer, redraw func(), promptW io.Writer) *REPL {
	return &REPL{page: page, out: out, redraw: redraw, promptW: promptW}
}

// Run activates the page and processes lines from in until EOF, "exit" or
// ctx cancellation. Cancellation interrupts a pending read; the reader
// goroutine is left blocked on in until it returns.
func (r *REPL) Run(ctx context.Context, in io.Reader) error {
	r.page.Activate()

	done := make(chan struct{})
	defer close(done)
	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-done:
				return
			}
		}
		scanErr <- scanner.Err()
	}()

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if r.promptW != nil {
			_, _ = io.WriteString(r.promptW, "userdesk> ")
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-scanErr:
					return err
				default:
					return nil
				}
			}
			if !r.exec(line) {
				return nil
			}
		}
	}
}

// exec handles one line and reports whether the loop should continue.
func (r *REPL) exec(line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return true
	}
	cmd, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)

	switch cmd {
	case "help":
		r.out.Print(helpText)
	case "l", "list":
		if r.redraw != nil {
			r.redraw()
		}
	case "name":
		r.page.SetName(rest)
	case "email":
		r.page.SetEmail(rest)
	case "submit":
		r.page.Submit()
	case "add":
		fields := strings.Fields(rest)
		if len(fields) < 2 {
			r.out.Print("usage: add <name> <email>")
			return true
		}
		email := fields[len(fields)-1]
		name := strings.Join(fields[:len(fields)-1], " ")
		r.page.SetName(name)
		r.page.SetEmail(email)
		r.page.Submit()
	case "delete", "rm":
		id, err := strconv.ParseInt(rest, 10, 64)
		if err != nil {
			r.out.Print("usage: delete <id>")
			return true
		}
		r.page.Delete(id)
	case "reload":
		r.page.Reload()
	case "cancel":
		r.page.CancelLoad()
	case "exit", "quit":
		r.out.Print("Bye!")
		return false
	default:
		r.out.Print("Unknown command: " + cmd)
	}
	return true
}
