// Command devapi calls the sandbox data API from the shell and can serve a
// local fake of it.
//
//	devapi [-stats] <command> [flags] [args]
//
// Configuration comes from DEVAPI_* and LOG_* environment variables.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"devapi/pkg/config"
	"devapi/pkg/logging"
	"devapi/pkg/metrics/memory"
)

const usage = `usage: devapi [-stats] <command> [flags] [args]

commands:
  create-accounts       create synthetic accounts
  accounts              list accounts (-filter key=relation:value, repeatable)
  account <id>          fetch one account
  create-transactions <accountId>
                        create transactions on an account
  transactions <accountId>
                        list an account's transactions (-filter, repeatable)
  transaction <accountId> <transactionId>
                        fetch one transaction
  sandbox               serve a local fake of the API
`

// errUsage marks errors caused by bad command-line input.
var errUsage = errors.New("usage error")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	global := flag.NewFlagSet("devapi", flag.ContinueOnError)
	global.SetOutput(stderr)
	global.Usage = func() { fmt.Fprint(stderr, usage) }
	stats := global.Bool("stats", false, "print request and cache statistics to stderr")
	if err := global.Parse(args); err != nil {
		return 2
	}
	if global.NArg() == 0 {
		global.Usage()
		return 2
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "devapi: %v\n", err)
		return 1
	}

	logger, err := logging.New(cfg.Logging, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "devapi: %v\n", err)
		return 1
	}
	defer logger.Sync()
	logging.SetGlobal(logger)

	collector := memory.NewMemoryCollector()
	app := &app{cfg: cfg, collector: collector, stdout: stdout, stderr: stderr, logger: logger.Named("cli")}

	err = app.dispatch(ctx, global.Arg(0), global.Args()[1:])
	if *stats {
		printStats(stderr, collector.Snapshot())
	}

	switch {
	case err == nil:
		return 0
	case errors.Is(err, flag.ErrHelp):
		return 0
	case errors.Is(err, errUsage):
		fmt.Fprintf(stderr, "devapi: %v\n", err)
		return 2
	default:
		app.logger.Debug("command failed", zap.String("command", global.Arg(0)), zap.Error(err))
		fmt.Fprintf(stderr, "devapi: %v\n", err)
		return 1
	}
}

func printStats(w io.Writer, snap memory.Snapshot) {
	fmt.Fprintf(w, "chain: %d hits, %d misses\n", snap.ChainHits, snap.ChainMisses)
	for name, cm := range snap.Components {
		fmt.Fprintf(w, "%s:", name)
		for key, n := range cm.Requests {
			fmt.Fprintf(w, " %s=%d", key, n)
		}
		for key, n := range cm.ErrorsByType {
			fmt.Fprintf(w, " error:%s=%d", key, n)
		}
		if cm.Hits+cm.Misses > 0 {
			fmt.Fprintf(w, " hits=%d misses=%d", cm.Hits, cm.Misses)
		}
		if cm.Sets+cm.SetErrors > 0 {
			fmt.Fprintf(w, " sets=%d set_errors=%d", cm.Sets, cm.SetErrors)
		}
		if cm.CircuitOpens > 0 {
			fmt.Fprintf(w, " circuit=%s opens=%d", cm.CircuitState, cm.CircuitOpens)
		}
		fmt.Fprintln(w)
	}
}
