// Command codebuilder manages a small project workspace from the terminal:
// files, tabs, templates, search, a simulated shell and git, the live
// preview server and GitHub deploys.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"

	"github.com/jakoblorz/go-codebuilder/internal/cli"
)

func main() {
	if err := mainImpl(); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "codebuilder: %v\n", err)
		os.Exit(1)
	}
}

func mainImpl() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ll := &slog.LevelVar{}
	ll.Set(slog.LevelWarn)
	slog.SetDefault(slog.New(tint.NewHandler(colorable.NewColorable(os.Stderr), &tint.Options{
		Level:       ll,
		TimeFormat:  "15:04:05.000",
		NoColor:     !isatty.IsTerminal(os.Stderr.Fd()),
		ReplaceAttr: dropEmpty,
	})))

	app := cli.NewApp()
	app.LevelVar = ll
	app.Interactive = isatty.IsTerminal(os.Stdin.Fd()) && isatty.IsTerminal(os.Stdout.Fd())
	app.Color = isatty.IsTerminal(os.Stdout.Fd())

	return cli.Execute(ctx, app, os.Args[1:])
}

// dropEmpty removes attributes holding a zero value
func dropEmpty(groups []string, a slog.Attr) slog.Attr {
	skip := false
	switch t := a.Value.Any().(type) {
	case string:
		skip = t == ""
	case bool:
		skip = !t
	case uint64:
		skip = t == 0
	case int64:
		skip = t == 0
	case float64:
		skip = t == 0
	case time.Time:
		skip = t.IsZero()
	case time.Duration:
		skip = t == 0
	case nil:
		skip = true
	}
	if skip {
		return slog.Attr{}
	}
	return a
}
