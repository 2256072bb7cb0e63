package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	"github.com/invoiceflow/invoiceflow/internal/app"
	"github.com/invoiceflow/invoiceflow/internal/auth"
	"github.com/invoiceflow/invoiceflow/internal/customers"
	"github.com/invoiceflow/invoiceflow/internal/invoices"
	"github.com/invoiceflow/invoiceflow/internal/payments"
	"github.com/invoiceflow/invoiceflow/internal/settings"
	"github.com/invoiceflow/invoiceflow/internal/shared"
	"github.com/invoiceflow/invoiceflow/internal/store"
	"github.com/invoiceflow/invoiceflow/internal/users"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}
	logger := app.NewLogger(cfg)

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	rt := newRuntime(cfg)
	switch os.Args[1] {
	case "init":
		err = runInit(ctx, logger, rt)
	case "stats":
		err = runStats(ctx, rt)
	case "reconcile":
		err = runReconcile(ctx, logger, rt)
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		logger.Error(os.Args[1], slog.Any("error", err))
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: invoiceflow <init|stats|reconcile>")
	fmt.Fprintln(os.Stderr, "  init       create default settings and the demo account")
	fmt.Fprintln(os.Stderr, "  stats      print record counts and outstanding receivables")
	fmt.Fprintln(os.Stderr, "  reconcile  recompute paid/due/status for every invoice")
}

// runtime bundles the per-entity-kind stores and services, constructed
// once at process start.
type runtime struct {
	users     *store.Store[*users.User]
	customers *store.Store[*customers.Customer]
	invoices  *store.Store[*invoices.Invoice]
	payments  *store.Store[*payments.Payment]
	settings  *store.Store[*settings.CompanySettings]

	authService     *auth.Service
	settingsService *settings.Service
	paymentsService *payments.Service
}

func newRuntime(cfg *app.Config) *runtime {
	rt := &runtime{
		users:     store.New[*users.User](cfg.DataDir, "users"),
		customers: store.New[*customers.Customer](cfg.DataDir, "customers"),
		invoices:  store.New[*invoices.Invoice](cfg.DataDir, "invoices"),
		payments:  store.New[*payments.Payment](cfg.DataDir, "payments"),
		settings:  store.New[*settings.CompanySettings](cfg.DataDir, "settings"),
	}
	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	rt.authService = auth.NewService(rt.users, redisClient, cfg.SessionTTL, cfg.BcryptCost)
	rt.settingsService = settings.NewService(rt.settings)
	rt.paymentsService = payments.NewService(rt.payments, rt.invoices)
	return rt
}

func runInit(ctx context.Context, logger *slog.Logger, rt *runtime) error {
	if _, err := rt.settingsService.EnsureDefaults(ctx); err != nil {
		return err
	}
	logger.Info("company settings ready")
	demo, err := rt.authService.EnsureDemoUser(ctx)
	if err != nil {
		return err
	}
	if demo != nil {
		logger.Info("demo account ready", slog.String("email", demo.Email))
	}
	return nil
}

func runStats(ctx context.Context, rt *runtime) error {
	company, err := rt.settingsService.Get(ctx)
	if err != nil {
		return err
	}
	currency := "USD"
	if company != nil {
		currency = company.Currency
	}

	for _, c := range []struct {
		kind  string
		count func() (int, error)
	}{
		{"users", func() (int, error) { return rt.users.Count(ctx, nil) }},
		{"customers", func() (int, error) { return rt.customers.Count(ctx, nil) }},
		{"invoices", func() (int, error) { return rt.invoices.Count(ctx, nil) }},
		{"payments", func() (int, error) { return rt.payments.Count(ctx, nil) }},
	} {
		n, err := c.count()
		if err != nil {
			return err
		}
		fmt.Printf("%-10s %d\n", c.kind, n)
	}

	all, err := rt.invoices.Read(ctx)
	if err != nil {
		return err
	}
	var outstanding, collected float64
	for _, invoice := range all {
		if invoice.Status == invoices.StatusCancelled {
			continue
		}
		outstanding += invoice.AmountDue
		collected += invoice.AmountPaid
	}
	fmt.Printf("collected   %s\n", shared.FormatAmount(currency, shared.RoundCents(collected)))
	fmt.Printf("outstanding %s\n", shared.FormatAmount(currency, shared.RoundCents(outstanding)))
	return nil
}

// runReconcile re-runs payment reconciliation across every invoice. This
// is the recovery path for a payment that was written while the follow-up
// invoice update failed.
func runReconcile(ctx context.Context, logger *slog.Logger, rt *runtime) error {
	all, err := rt.invoices.Read(ctx)
	if err != nil {
		return err
	}
	failed := 0
	for _, invoice := range all {
		if _, err := rt.paymentsService.Reconcile(ctx, invoice.ID); err != nil {
			logger.Error("reconcile invoice",
				slog.String("invoice", invoice.InvoiceNumber),
				slog.Any("error", err))
			failed++
			continue
		}
	}
	logger.Info("reconcile complete", slog.Int("invoices", len(all)), slog.Int("failed", failed))
	if failed > 0 {
		return fmt.Errorf("%d of %d invoices failed to reconcile", failed, len(all))
	}
	return nil
}
