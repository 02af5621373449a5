package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/alecthomas/kong"

	"github.com/SandraS2611/agrimensores-sde/internal/client"
	"github.com/SandraS2611/agrimensores-sde/internal/config"
	"github.com/SandraS2611/agrimensores-sde/internal/daemon"
	"github.com/SandraS2611/agrimensores-sde/internal/docmodel"
	"github.com/SandraS2611/agrimensores-sde/internal/docx"
	derrors "github.com/SandraS2611/agrimensores-sde/internal/errors"
	"github.com/SandraS2611/agrimensores-sde/internal/progress"
	"github.com/SandraS2611/agrimensores-sde/internal/style"
	"github.com/SandraS2611/agrimensores-sde/internal/survey"
	"github.com/SandraS2611/agrimensores-sde/internal/templates"
	"github.com/SandraS2611/agrimensores-sde/internal/tui"
)

// version is set at build time via -ldflags.
var version = "dev"

var CLI struct {
	Config  string `short:"c" help:"Configuration file path" default:"memoria.yaml"`
	Verbose bool   `short:"v" help:"Enable verbose logging"`

	Serve struct{} `cmd:"" help:"Start the memoria daemon (HTTP API, inbox watcher, retention sweep)"`

	Generate struct {
		PlanID string `arg:"" help:"Plan to generate a memoria for"`
		Server string `short:"s" help:"Daemon base URL" default:"http://localhost:3001"`
		Output string `short:"o" help:"Directory where downloads land" default:"."`
	} `cmd:"" help:"Generate a memoria through the daemon, with live progress"`

	Build struct {
		Record    string `arg:"" help:"Survey record JSON file"`
		Output    string `short:"o" help:"Output DOCX path (default: Memoria_<record>.docx)"`
		Templates string `help:"Fragment override directory"`
	} `cmd:"" help:"Build a memoria DOCX locally, without a daemon"`

	Init struct {
		Force bool `help:"Overwrite existing configuration file"`
	} `cmd:"" help:"Initialize a new configuration file"`
}

func main() {
	ctx := kong.Parse(&CLI)

	var err error
	switch ctx.Command() {
	case "serve":
		err = runServe(CLI.Config)
	case "generate <plan-id>":
		err = runGenerate(CLI.Config, CLI.Generate.PlanID, CLI.Generate.Server, CLI.Generate.Output)
	case "build <record>":
		err = runBuild(CLI.Build.Record, CLI.Build.Output, CLI.Build.Templates)
	case "init":
		setupLogging(config.LoggingConfig{}, os.Stderr)
		err = config.Init(CLI.Config, CLI.Init.Force)
		if err == nil {
			slog.Info("Configuration written", slog.String("path", CLI.Config))
		}
	}

	if err != nil {
		derrors.NewCLIErrorAdapter(CLI.Verbose, slog.Default()).HandleError(err)
	}
}

// setupLogging installs the default slog handler. --verbose forces debug
// regardless of the configured level.
func setupLogging(cfg config.LoggingConfig, w io.Writer) {
	level := slog.LevelInfo
	switch config.NormalizeLogLevel(string(cfg.Level)) {
	case config.LogLevelDebug:
		level = slog.LevelDebug
	case config.LogLevelWarn:
		level = slog.LevelWarn
	case config.LogLevelError:
		level = slog.LevelError
	}
	if CLI.Verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if config.NormalizeLogFormat(string(cfg.Format)) == config.LogFormatJSON {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	slog.SetDefault(slog.New(handler))
}

func runServe(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	setupLogging(cfg.Logging, os.Stderr)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	d, err := daemon.NewDaemon(cfg, version)
	if err != nil {
		return fmt.Errorf("failed to create daemon: %w", err)
	}

	errChan := make(chan error, 1)
	go func() {
		errChan <- d.Start(ctx)
	}()

	select {
	case err := <-errChan:
		if err != nil {
			return fmt.Errorf("daemon error: %w", err)
		}
	case <-ctx.Done():
		slog.Info("Shutdown signal received, stopping daemon")
	}

	stopTimeout := cfg.Server.ShutdownTimeout
	if stopTimeout <= 0 {
		stopTimeout = 30 * time.Second
	}
	stopCtx, stopCancel := context.WithTimeout(context.Background(), stopTimeout)
	defer stopCancel()

	if err := d.Stop(stopCtx); err != nil {
		return fmt.Errorf("failed to stop daemon: %w", err)
	}
	return nil
}

func runGenerate(configPath, planID, serverURL, outputDir string) error {
	// The progress animation is tunable from the config file; a missing
	// file just means defaults.
	animation := progress.DefaultConfig()
	if cfg, err := config.Load(configPath); err == nil {
		animation = progress.Config{
			TickInterval: cfg.Progress.TickInterval,
			Step:         cfg.Progress.Step,
			Cap:          cfg.Progress.Cap,
		}
	}

	// The panel owns the terminal; logs would tear the screen apart.
	logSink := io.Discard
	setupLogging(config.LoggingConfig{}, logSink)

	app, err := tui.NewApp(tui.Config{
		PlanID:    planID,
		Client:    client.New(serverURL),
		OutputDir: outputDir,
		Animation: animation,
	})
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	return app.WithContext(ctx).Run()
}

func runBuild(recordPath, outputPath, templatesDir string) error {
	setupLogging(config.LoggingConfig{}, os.Stderr)

	record, err := survey.LoadRecord(recordPath)
	if err != nil {
		return err
	}

	set := templates.Default()
	if templatesDir != "" {
		set, err = templates.Load(templatesDir)
		if err != nil {
			return err
		}
	}

	builder := docmodel.NewBuilder(set)
	blocks := builder.Build(record)

	doc, err := style.Resolve(blocks, style.Meta{Place: record.Place})
	if err != nil {
		return err
	}

	data, err := docx.NewWriter().Write(doc)
	if err != nil {
		return err
	}

	if outputPath == "" {
		base := strings.TrimSuffix(filepath.Base(recordPath), filepath.Ext(recordPath))
		outputPath = fmt.Sprintf("Memoria_%s.docx", base)
	}
	if err := os.WriteFile(outputPath, data, 0o644); err != nil {
		return derrors.Wrap(err, derrors.CategoryStorage, "write document").
			WithContext("path", outputPath).
			Build()
	}

	slog.Info("Memoria written",
		slog.String("path", outputPath),
		slog.Int("bytes", len(data)),
		slog.String("template_version", builder.TemplateVersion()))
	return nil
}
