package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/term"

	"github.com/odyssey-erp/userdesk/internal/client/api"
	"github.com/odyssey-erp/userdesk/internal/client/cli"
	"github.com/odyssey-erp/userdesk/internal/client/config"
	"github.com/odyssey-erp/userdesk/internal/client/render"
	"github.com/odyssey-erp/userdesk/internal/client/scheduler"
	"github.com/odyssey-erp/userdesk/internal/client/viewmodel"
	"github.com/odyssey-erp/userdesk/internal/logging"
)

func main() {
	os.Exit(run())
}

// run wires the client and returns the process exit code. Deferred cleanup
// runs before main exits.
func run() int {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		return 2
	}

	logger := logging.New(os.Stderr, cfg.LogFormat, cfg.LogLevel, false)

	client, err := api.New(cfg.BaseURL, cfg.Timeout)
	if err != nil {
		logger.Error("build api client", slog.Any("error", err))
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	loop := scheduler.New(logger)
	defer loop.Stop()

	page := viewmodel.NewUsersPage(client, loop, logger)
	terminal := render.NewTerminal(os.Stdout)
	terminal.Bind(page)
	defer terminal.Close()

	redraw := func() {
		loop.Post(func() { terminal.Users(page.Users.Get()) })
	}

	var prompt io.Writer
	if term.IsTerminal(int(os.Stdin.Fd())) {
		prompt = os.Stdout
	}
	repl := cli.NewREPL(page, terminal, redraw, prompt)
	err = repl.Run(ctx, os.Stdin)
	switch {
	case errors.Is(err, context.Canceled):
		return 0
	case err != nil:
		logger.Error("read input", slog.Any("error", err))
		return 1
	}
	loop.Wait()
	return 0
}
