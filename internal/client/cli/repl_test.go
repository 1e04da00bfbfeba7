package cli

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPage struct {
	calls []string
}

func (p *recordingPage) Activate()             { p.calls = append(p.calls, "activate") }
func (p *recordingPage) Reload()               { p.calls = append(p.calls, "reload") }
func (p *recordingPage) CancelLoad()           { p.calls = append(p.calls, "cancel") }
func (p *recordingPage) SetName(name string)   { p.calls = append(p.calls, "name="+name) }
func (p *recordingPage) SetEmail(email string) { p.calls = append(p.calls, "email="+email) }
func (p *recordingPage) Submit()               { p.calls = append(p.calls, "submit") }
func (p *recordingPage) Delete(id int64)       { p.calls = append(p.calls, "delete") }

type recordingPrinter struct {
	lines []string
}

func (p *recordingPrinter) Print(line string) { p.lines = append(p.lines, line) }

func TestRunDispatchesCommands(t *testing.T) {
	page := &recordingPage{}
	out := &recordingPrinter{}
	redraws := 0
	repl := NewREPL(page, out, func() { redraws++ }, nil)

	input := strings.Join([]string{
		"name Ann Lee",
		"email ann@x.com",
		"submit",
		"",
		"list",
		"delete 3",
		"reload",
		"exit",
		"name ignored",
	}, "\n")
	require.NoError(t, repl.Run(context.Background(), strings.NewReader(input)))

	assert.Equal(t, []string{"activate", "name=Ann Lee", "email=ann@x.com", "submit", "delete", "reload"}, page.calls)
	assert.Equal(t, 1, redraws)
	assert.Equal(t, []string{"Bye!"}, out.lines)
}

func TestAddSplitsNameAndEmail(t *testing.T) {
	page := &recordingPage{}
	repl := NewREPL(page, &recordingPrinter{}, nil, nil)

	require.NoError(t, repl.Run(context.Background(), strings.NewReader("add Ann Lee ann@x.com\n")))

	assert.Equal(t, []string{"activate", "name=Ann Lee", "email=ann@x.com", "submit"}, page.calls)
}

func TestUsageErrorsDoNotReachPage(t *testing.T) {
	page := &recordingPage{}
	out := &recordingPrinter{}
	repl := NewREPL(page, out, nil, nil)

	require.NoError(t, repl.Run(context.Background(), strings.NewReader("delete abc\nadd onlyname\nfrobnicate\n")))

	assert.Equal(t, []string{"activate"}, page.calls)
	assert.Equal(t, []string{"usage: delete <id>", "usage: add <name> <email>", "Unknown command: frobnicate"}, out.lines)
}

func TestPromptWrittenWhenInteractive(t *testing.T) {
	var prompt strings.Builder
	repl := NewREPL(&recordingPage{}, &recordingPrinter{}, nil, &prompt)

	require.NoError(t, repl.Run(context.Background(), strings.NewReader("help\n")))

	assert.Equal(t, "userdesk> userdesk> ", prompt.String())
}

func TestRunStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	repl := NewREPL(&recordingPage{}, &recordingPrinter{}, nil, nil)

	err := repl.Run(ctx, strings.NewReader("help\n"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunReturnsWhenCancelledDuringRead(t *testing.T) {
	in, w := io.Pipe()
	t.Cleanup(func() { _ = w.Close() })
	ctx, cancel := context.WithCancel(context.Background())
	repl := NewREPL(&recordingPage{}, &recordingPrinter{}, nil, nil)

	errc := make(chan error, 1)
	go func() { errc <- repl.Run(ctx, in) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-errc:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Run still blocked after cancellation")
	}
}

func TestCancelCommandCancelsLoad(t *testing.T) {
	page := &recordingPage{}
	repl := NewREPL(page, &recordingPrinter{}, nil, nil)

	require.NoError(t, repl.Run(context.Background(), strings.NewReader("reload\ncancel\n")))
	assert.Equal(t, []string{"activate", "reload", "cancel"}, page.calls)
}
