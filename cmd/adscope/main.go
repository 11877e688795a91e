package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/fatih/color"
	"github.com/go-pkgz/lgr"
	"github.com/jessevdk/go-flags"
	"golang.org/x/sync/errgroup"

	"github.com/umputun/adscope/pkg/config"
	"github.com/umputun/adscope/pkg/scheduler"
	"github.com/umputun/adscope/pkg/scraper"
	"github.com/umputun/adscope/pkg/store"
	"github.com/umputun/adscope/server"
)

// Opts with all CLI options
type Opts struct {
	Config string `short:"f" long:"config" env:"CONFIG" default:"config.yml" description:"config file path"`

	// Common options
	Debug   bool `long:"dbg" env:"DEBUG" description:"debug mode"`
	Version bool `short:"V" long:"version" description:"show version info"`
	NoColor bool `long:"no-color" env:"NO_COLOR" description:"disable color output"`
}

var revision = "unknown"

func main() {
	var opts Opts
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	if opts.Version {
		fmt.Printf("Version: %s\nGolang: %s\n", revision, runtime.Version())
		os.Exit(0)
	}

	setupLog(opts.Debug)

	log.Printf("[INFO] starting adscope version %s", revision)

	ctx, cancel := context.WithCancel(context.Background())

	// handle termination signals
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan
		log.Print("[INFO] termination signal received")
		cancel()
	}()

	err := run(ctx, opts)
	cancel()

	if err != nil {
		log.Printf("[ERROR] adscope failed: %v", err)
		os.Exit(1)
	}

	log.Print("[INFO] shutdown complete")
}

// run wires the components and blocks until the context is cancelled or
// one of the loops fails
func run(ctx context.Context, opts Opts) error {
	cfg, err := config.Load(opts.Config)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	manager := config.NewManager(opts.Config, cfg)

	if cfg.LogFile != "" {
		logFile, ferr := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600) //nolint:gosec // path comes from operator config
		if ferr != nil {
			return fmt.Errorf("failed to open log file: %w", ferr)
		}
		defer logFile.Close() //nolint:errcheck // best effort on shutdown
		fileOpts := []lgr.Option{lgr.Out(logFile), lgr.Err(logFile), lgr.Msec, lgr.LevelBraces}
		if opts.Debug {
			fileOpts = append(fileOpts, lgr.Debug, lgr.StackTraceOnError)
		}
		lgr.SetupStdLogger(fileOpts...)
		lgr.Setup(fileOpts...)
	}

	st, err := store.New(ctx, store.Config{
		DSN:          cfg.Database.DSN,
		MaxOpenConns: cfg.Database.MaxOpenConns,
		MaxIdleConns: cfg.Database.MaxIdleConns,
	})
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	// closed after both loops return, the scheduler waits for the
	// in-flight cycle before that
	defer func() {
		if err := st.Close(); err != nil {
			log.Printf("[WARN] store close error: %v", err)
		}
	}()

	fetcher := scraper.NewBrowserFetcher(cfg.Browser)
	defer fetcher.Close()

	sched := scheduler.NewScheduler(scheduler.Params{
		Config:     manager,
		Store:      st,
		Fetcher:    fetcher,
		Extractor:  scraper.NewExtractor(),
		StartDelay: cfg.Poll.StartDelay,
	})
	manager.SetApplier(sched)

	srv := server.New(manager, st, revision, opts.Debug)

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error { return sched.Run(ctx) })
	group.Go(func() error { return srv.Run(ctx) })

	return group.Wait()
}

func setupLog(dbg bool, secs ...string) {
	logOpts := []lgr.Option{lgr.Out(io.Discard), lgr.Err(io.Discard)}
	if dbg {
		logOpts = []lgr.Option{lgr.Debug, lgr.Msec, lgr.LevelBraces, lgr.StackTraceOnError}
	}

	colorizer := lgr.Mapper{
		ErrorFunc:  func(s string) string { return color.New(color.FgHiRed).Sprint(s) },
		WarnFunc:   func(s string) string { return color.New(color.FgRed).Sprint(s) },
		InfoFunc:   func(s string) string { return color.New(color.FgYellow).Sprint(s) },
		DebugFunc:  func(s string) string { return color.New(color.FgWhite).Sprint(s) },
		CallerFunc: func(s string) string { return color.New(color.FgBlue).Sprint(s) },
		TimeFunc:   func(s string) string { return color.New(color.FgCyan).Sprint(s) },
	}
	logOpts = append(logOpts, lgr.Map(colorizer))
	if len(secs) > 0 {
		logOpts = append(logOpts, lgr.Secret(secs...))
	}
	lgr.SetupStdLogger(logOpts...)
	lgr.Setup(logOpts...)
}
