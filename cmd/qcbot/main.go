package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/carlmjohnson/versioninfo"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"github.com/qcdesk/qcbot/internal/botgw"
	"github.com/qcdesk/qcbot/internal/calltrack"
	"github.com/qcdesk/qcbot/internal/crm"
	"github.com/qcdesk/qcbot/internal/namecheck"
	"github.com/qcdesk/qcbot/internal/report"
	"github.com/qcdesk/qcbot/internal/report/sections"
	"github.com/qcdesk/qcbot/internal/slackdelivery"
	"github.com/qcdesk/qcbot/internal/timewindow"
)

type Config struct {
	DevMode bool `split_words:"true" default:"false"`

	// Upstream clients
	CRM       crm.Config
	Calls     calltrack.Config
	BotGW     botgw.Config
	NameCheck namecheck.Config

	// Delivery configuration
	Slack slackdelivery.Config

	Report report.Config

	// Schedule is a cron expression evaluated in the business time zone.
	// Empty means run once for the requested date and exit.
	Schedule string

	// HTTP configuration (metrics endpoint, daemon mode only)
	HTTPAddr string `split_words:"true" default:"127.0.0.1:5001"`
}

func main() {
	help := flag.Bool("help", false, "Show help")
	dateFlag := flag.String("date", "", "Report date, YYYY-MM-DD (default: yesterday)")
	flag.Parse()

	if *help {
		envconfig.Usage("qcbot", &Config{})
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	wg, ctx := errgroup.WithContext(ctx)

	slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		TimeFormat: time.TimeOnly,
	})))
	slog.Info("Running version", "version", versioninfo.Short())

	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			log.Fatal("Error loading .env file")
		}
	}

	var c Config
	if err := envconfig.Process("qcbot", &c); err != nil {
		log.Fatalf("error loading configuration: %v", err)
	}
	if err := validator.New().Struct(&c); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	if c.DevMode {
		slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, &tint.Options{
			Level:      slog.LevelDebug,
			TimeFormat: time.TimeOnly,
		})))
	}

	// Upstream client setup
	crmClient := crm.New(c.CRM)
	callsClient := calltrack.New(c.Calls)
	gateway := botgw.New(c.BotGW)
	checker := namecheck.New(c.NameCheck)

	// Delivery setup
	slackClient := slackdelivery.New(c.Slack)

	reportSections := []report.Section{
		sections.NewTasks(crmClient),
		sections.NewMissedCalls(callsClient, crmClient),
		sections.NewOverdue(crmClient, callsClient, nil),
		sections.NewChats(gateway),
		sections.NewNames(crmClient, checker),
	}

	run := func(ctx context.Context, date timewindow.Date) error {
		text := report.Assemble(ctx, date, c.Report.BusinessCloseHour, reportSections)
		return slackClient.Deliver(ctx, text)
	}

	if c.Schedule == "" {
		date, err := resolveDate(*dateFlag)
		if err != nil {
			log.Fatalf("error resolving report date: %v", err)
		}
		if err := run(ctx, date); err != nil {
			log.Fatalf("error delivering report: %v", err)
		}
		return
	}

	// Daemon mode: the schedule fires in the business zone and always reports
	// on the previous day.
	sched := cron.New(cron.WithLocation(timewindow.Zone))
	if _, err := sched.AddFunc(c.Schedule, func() {
		date := timewindow.DateOf(time.Now().In(timewindow.Zone).AddDate(0, 0, -1))
		if err := run(ctx, date); err != nil {
			slog.ErrorContext(ctx, "scheduled report failed", "date", date, "error", err)
		}
	}); err != nil {
		log.Fatalf("invalid schedule %q: %v", c.Schedule, err)
	}

	// HTTP server setup
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	server := &http.Server{
		BaseContext: func(listener net.Listener) context.Context { return ctx },
		Addr:        c.HTTPAddr,
		Handler:     mux,
	}

	wg.Go(func() error {
		slog.Info("Starting scheduler", "schedule", c.Schedule)
		sched.Start()
		<-ctx.Done()
		<-sched.Stop().Done()
		return nil
	})
	wg.Go(func() error {
		slog.Info("Starting HTTP server", "addr", c.HTTPAddr)
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}

		return nil
	})
	wg.Go(func() error {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

		select {
		case <-ctx.Done():
		case <-ch:
			slog.Info("Shutting down")
			cancel()

			if err := server.Shutdown(context.Background()); err != nil {
				return err
			}
		}

		return nil
	})

	if err := wg.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Printf("error running server: %v\n", err)
	}
}

func resolveDate(s string) (timewindow.Date, error) {
	if s == "" {
		return timewindow.DateOf(time.Now().In(timewindow.Zone).AddDate(0, 0, -1)), nil
	}
	t, err := time.ParseInLocation("2006-01-02", s, timewindow.Zone)
	if err != nil {
		return timewindow.Date{}, fmt.Errorf("parsing date %q: %w", s, err)
	}
	return timewindow.DateOf(t), nil
}
