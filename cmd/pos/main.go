package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"mipastel-pos/internal/backend"
	"mipastel-pos/internal/cart"
	"mipastel-pos/internal/config"
	"mipastel-pos/internal/db"
	"mipastel-pos/internal/logger"
	"mipastel-pos/internal/order"
	"mipastel-pos/internal/pricing"
	"mipastel-pos/internal/registered"
	"mipastel-pos/internal/registrar"

	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	flush := flag.Bool("flush", false, "register every queued draft on startup")
	reportDate := flag.String("report", "", "fetch the PDF report for a date (YYYY-MM-DD) and exit")
	quote := flag.String("quote", "", "resolve a unit price as sabor:tamano:cantidad and exit")
	flag.Parse()

	cfg := config.LoadConfig()

	logger.Init(cfg.AppEnv)
	defer logger.Sync()
	zaplog := logger.L()

	client := backend.NewClient(cfg.BackendURL, zaplog)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *reportDate != "" {
		return fetchReport(ctx, client, *reportDate)
	}

	if *quote != "" {
		return printQuote(ctx, pricing.NewService(client, zaplog), *quote)
	}

	database := db.InitDB(cfg)
	defer database.Close()

	cartRepo := cart.NewRepository(database)
	cartSvc, err := cart.NewService(ctx, cartRepo, zaplog)
	if err != nil {
		return err
	}

	view := registered.NewViewModel(client, cfg.Branch, zaplog)
	reg := registrar.NewService(cartSvc, client, view, zaplog)

	zaplog.Info("pos started",
		zap.String("sucursal", cfg.Branch),
		zap.Int("pedidos_pendientes", cartSvc.Count()),
	)

	if *flush {
		summary, err := reg.RegisterAll(ctx)
		switch {
		case errors.Is(err, registrar.ErrEmptyCart):
			zaplog.Info("nothing queued to flush")
		case err != nil:
			return err
		default:
			zaplog.Info("queued drafts flushed",
				zap.Int("exitosos", summary.Succeeded),
				zap.Int("fallidos", summary.Failed),
				zap.Strings("errores", summary.Errors),
			)
		}
	}

	if err := view.Refresh(ctx); err != nil {
		zaplog.Warn("initial registered-orders load failed", zap.Error(err))
	}
	view.AutoRefresh(ctx, cfg.RefreshInterval)

	<-ctx.Done()
	zaplog.Info("pos stopped")
	return nil
}

func printQuote(ctx context.Context, svc pricing.Service, spec string) error {
	parts := strings.SplitN(spec, ":", 3)
	if len(parts) != 3 {
		return fmt.Errorf("invalid quote %q: want sabor:tamano:cantidad", spec)
	}
	quantity, err := strconv.Atoi(parts[2])
	if err != nil {
		return fmt.Errorf("invalid quantity %q: %w", parts[2], err)
	}

	q := svc.Resolve(ctx, pricing.Input{
		Flavor:   parts[0],
		Size:     parts[1],
		Quantity: quantity,
	})
	if q.Pending {
		log.Printf("%s %s: %s", parts[0], parts[1], q.Note)
		return nil
	}
	log.Printf("%s %s x%d: $%.2f c/u, total $%.2f", parts[0], parts[1], quantity, q.UnitPrice, q.Total)
	return nil
}

func fetchReport(ctx context.Context, client *backend.Client, date string) error {
	day, err := time.ParseInLocation(order.DateLayout, date, time.Local)
	if err != nil {
		return fmt.Errorf("invalid report date %q: %w", date, err)
	}

	pdf, err := client.DailyReportPDF(ctx, day)
	if err != nil {
		return err
	}

	name := fmt.Sprintf("reporte_%s.pdf", date)
	if err := os.WriteFile(name, pdf, 0o644); err != nil {
		return err
	}
	log.Printf("report written to %s (%d bytes)", name, len(pdf))
	return nil
}
