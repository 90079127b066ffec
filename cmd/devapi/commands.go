package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"devapi/pkg/client"
	"devapi/pkg/config"
	"devapi/pkg/filters"
	"devapi/pkg/logging"
	"devapi/pkg/metrics/memory"
	promcollector "devapi/pkg/metrics/prometheus"
	"devapi/pkg/models"
	"devapi/pkg/sandbox"
)

type app struct {
	cfg       config.Config
	collector *memory.MemoryCollector
	stdout    io.Writer
	stderr    io.Writer
	logger    *logging.Logger
}

// filterFlag collects repeated -filter key=relation:value arguments.
type filterFlag []filters.FilterRelation

func (f *filterFlag) String() string {
	parts := make([]string, len(*f))
	for i, fr := range *f {
		parts[i] = fr.String()
	}
	return strings.Join(parts, ",")
}

func (f *filterFlag) Set(v string) error {
	key, encoded, ok := strings.Cut(v, "=")
	if !ok || key == "" {
		return fmt.Errorf("filter %q: want key=relation:value", v)
	}
	fr, err := filters.Parse(key, encoded)
	if err != nil {
		return err
	}
	*f = append(*f, fr)
	return nil
}

func (a *app) flags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	return fs
}

func (a *app) dispatch(ctx context.Context, command string, args []string) error {
	if command == "sandbox" {
		return a.runSandbox(ctx, args)
	}

	var run func(context.Context, *client.Client, []string) error
	switch command {
	case "create-accounts":
		run = a.createAccounts
	case "accounts":
		run = a.listAccounts
	case "account":
		run = a.getAccount
	case "create-transactions":
		run = a.createTransactions
	case "transactions":
		run = a.listTransactions
	case "transaction":
		run = a.getTransaction
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, command)
	}

	if err := a.cfg.RequireToken(); err != nil {
		return err
	}
	st, err := buildStack(a.cfg, a.collector)
	if err != nil {
		return err
	}
	defer st.Close()

	return run(ctx, client.New(st), args)
}

func (a *app) createAccounts(ctx context.Context, c *client.Client, args []string) error {
	fs := a.flags("create-accounts")
	quantity := fs.Int("quantity", 1, "number of accounts")
	numTransactions := fs.Int("num-transactions", 0, "transactions to create on each account")
	liveBalance := fs.Bool("live-balance", true, "report a live balance")
	balance := fs.String("balance", "", "balance override")
	creditScore := fs.Int("credit-score", 0, "credit score override")
	currency := fs.String("currency", "", "currency code override")
	productType := fs.String("product-type", "", "product type override (Credit, Debit)")
	riskScore := fs.Int("risk-score", 0, "risk score override")
	state := fs.String("state", "", "state override (open, closed, suspended, flagged)")
	creditLimit := fs.String("credit-limit", "", "credit limit override")
	if err := fs.Parse(args); err != nil {
		return usageError(err)
	}

	opts := []client.AccountOption{
		client.WithNumTransactions(*numTransactions),
		client.WithLiveBalance(*liveBalance),
	}
	var parseErr error
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "balance":
			d, err := decimal.NewFromString(*balance)
			parseErr = errors.Join(parseErr, err)
			opts = append(opts, client.WithBalance(d))
		case "credit-limit":
			d, err := decimal.NewFromString(*creditLimit)
			parseErr = errors.Join(parseErr, err)
			opts = append(opts, client.WithCreditLimit(d))
		case "credit-score":
			opts = append(opts, client.WithCreditScore(*creditScore))
		case "risk-score":
			opts = append(opts, client.WithRiskScore(*riskScore))
		case "currency":
			opts = append(opts, client.WithCurrencyCode(models.Currency(*currency)))
		case "product-type":
			opts = append(opts, client.WithProductType(models.ProductType(*productType)))
		case "state":
			opts = append(opts, client.WithState(models.AccountState(*state)))
		}
	})
	if parseErr != nil {
		return fmt.Errorf("%w: %w", errUsage, parseErr)
	}

	accounts, err := c.CreateAccounts(ctx, *quantity, opts...)
	if err != nil {
		return err
	}
	return a.printAccounts(accounts)
}

func (a *app) listAccounts(ctx context.Context, c *client.Client, args []string) error {
	fs := a.flags("accounts")
	var ff filterFlag
	fs.Var(&ff, "filter", "filter as key=relation:value (repeatable)")
	if err := fs.Parse(args); err != nil {
		return usageError(err)
	}

	accounts, err := c.GetAccounts(ctx, ff...)
	if err != nil {
		return err
	}
	return a.printAccounts(accounts)
}

func (a *app) getAccount(ctx context.Context, c *client.Client, args []string) error {
	fs := a.flags("account")
	if err := fs.Parse(args); err != nil {
		return usageError(err)
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("%w: account <id>", errUsage)
	}

	account, err := c.GetAccount(ctx, fs.Arg(0))
	if err != nil {
		return err
	}
	return a.printAccounts([]models.Account{account})
}

func (a *app) createTransactions(ctx context.Context, c *client.Client, args []string) error {
	fs := a.flags("create-transactions")
	quantity := fs.Int("quantity", 1, "number of transactions (at most 25)")
	amount := fs.String("amount", "", "amount override, e.g. 12.50")
	currency := fs.String("currency", "", "currency override")
	indicator := fs.String("indicator", "", "credit/debit indicator override (Credit, Debit)")
	emoji := fs.String("emoji", "", "emoji override")
	status := fs.String("status", "", "status override (Successful, Pending, Flagged, Declined)")
	if err := fs.Parse(args); err != nil {
		return usageError(err)
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("%w: create-transactions [flags] <accountId>", errUsage)
	}

	var opts []client.TransactionOption
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "amount":
			opts = append(opts, client.WithAmount(*amount))
		case "currency":
			opts = append(opts, client.WithCurrency(models.Currency(*currency)))
		case "indicator":
			opts = append(opts, client.WithCreditDebitIndicator(models.CreditDebitIndicator(*indicator)))
		case "emoji":
			opts = append(opts, client.WithEmoji(*emoji))
		case "status":
			opts = append(opts, client.WithStatus(models.TransactionStatus(*status)))
		}
	})

	txns, err := c.CreateTransactions(ctx, fs.Arg(0), *quantity, opts...)
	if err != nil {
		return err
	}
	return a.printTransactions(txns)
}

func (a *app) listTransactions(ctx context.Context, c *client.Client, args []string) error {
	fs := a.flags("transactions")
	var ff filterFlag
	fs.Var(&ff, "filter", "filter as key=relation:value (repeatable)")
	if err := fs.Parse(args); err != nil {
		return usageError(err)
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("%w: transactions [flags] <accountId>", errUsage)
	}

	txns, err := c.GetTransactions(ctx, fs.Arg(0), ff...)
	if err != nil {
		return err
	}
	return a.printTransactions(txns)
}

func (a *app) getTransaction(ctx context.Context, c *client.Client, args []string) error {
	fs := a.flags("transaction")
	if err := fs.Parse(args); err != nil {
		return usageError(err)
	}
	if fs.NArg() != 2 {
		return fmt.Errorf("%w: transaction <accountId> <transactionId>", errUsage)
	}

	txn, err := c.GetTransaction(ctx, fs.Arg(0), fs.Arg(1))
	if err != nil {
		return err
	}
	return a.printTransactions([]models.Transaction{txn})
}

func (a *app) runSandbox(ctx context.Context, args []string) error {
	sc := sandbox.DefaultServerConfig()
	sc.Address = a.cfg.Sandbox.Addr

	fs := a.flags("sandbox")
	fs.StringVar(&sc.Address, "addr", sc.Address, "listen address")
	fs.StringVar(&sc.Prefix, "prefix", sc.Prefix, "route prefix")
	fs.StringVar(&sc.Token, "token", "", "only accept this bearer token")
	fs.Uint64Var(&sc.Seed, "seed", 0, "generator seed (0 for random)")
	if err := fs.Parse(args); err != nil {
		return usageError(err)
	}

	sc.Registry = prometheus.NewRegistry()
	collector := promcollector.NewPrometheusCollector("devapi")
	if err := collector.Register(sc.Registry); err != nil {
		return err
	}

	srv, err := sandbox.NewServer(sc, collector)
	if err != nil {
		return err
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	a.logger.Info("shutting down sandbox", zap.Duration("timeout", a.cfg.Sandbox.ShutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Sandbox.ShutdownTimeout)
	defer cancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("sandbox shutdown: %w", err)
	}
	return <-errc
}

func (a *app) printAccounts(accounts []models.Account) error {
	env, err := models.EncodeAccounts(accounts)
	if err != nil {
		return err
	}
	return a.print(env)
}

func (a *app) printTransactions(txns []models.Transaction) error {
	env, err := models.EncodeTransactions(txns)
	if err != nil {
		return err
	}
	return a.print(env)
}

func (a *app) print(v any) error {
	enc := json.NewEncoder(a.stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func usageError(err error) error {
	if errors.Is(err, flag.ErrHelp) {
		return err
	}
	return fmt.Errorf("%w: %w", errUsage, err)
}
