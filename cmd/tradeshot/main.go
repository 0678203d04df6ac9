// Command tradeshot turns trading screenshots into structured trade records.
// It OCRs an image, asks an LLM to interpret the text, normalizes the result
// and appends it to a JSONL trade log, optionally emailing an alert.
//
// Usage:
//
//	tradeshot process <image|dir> [--send-email] [--json-only|--jsonl-only] [--config config.yml]
//	tradeshot stats   [--config config.yml]
//	tradeshot search  <query> [--limit 10]
//	tradeshot clean   [--config config.yml]
//	tradeshot serve   [--addr :8080]
//
// Required environment variables (or .env file):
//
//	LLM_API_KEY; for email alerts: SMTP_USER/SMTP_PASSWORD or MAILGUN_API_KEY
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/vadiminshakov/tradeshot/config"
	"github.com/vadiminshakov/tradeshot/internal/clients"
	"github.com/vadiminshakov/tradeshot/internal/ocr"
	"github.com/vadiminshakov/tradeshot/internal/pipeline"
	"github.com/vadiminshakov/tradeshot/internal/services/extractor"
	"github.com/vadiminshakov/tradeshot/internal/services/normalizer"
	"github.com/vadiminshakov/tradeshot/internal/services/notifier"
	"github.com/vadiminshakov/tradeshot/internal/services/summarizer"
	"github.com/vadiminshakov/tradeshot/internal/storage/events"
	"github.com/vadiminshakov/tradeshot/internal/storage/tradelog"
	"github.com/vadiminshakov/tradeshot/internal/web"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	_ = godotenv.Load()

	cmd := os.Args[1]
	args := os.Args[2:]

	var err error
	switch cmd {
	case "process":
		err = runProcess(args)
	case "stats":
		err = runStats(args)
	case "search":
		err = runSearch(args)
	case "clean":
		err = runClean(args)
	case "serve":
		err = runServe(args)
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		log.Fatal(err)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: tradeshot <process|stats|search|clean|serve> [flags]")
}

type app struct {
	cfg      config.Config
	logger   *zap.Logger
	pipeline *pipeline.Pipeline
	store    *tradelog.Store
	norm     *normalizer.Normalizer
	events   *events.WALStore
}

func buildApp(cfg config.Config, withEvents bool) (*app, error) {
	logger, err := zap.NewProduction()
	if err != nil {
		return nil, err
	}

	secrets := config.LoadSecrets()

	llm := clients.NewOpenAICompatibleClient(
		cfg.LLM.APIURL, secrets.LLMAPIKey, cfg.LLM.Model,
		cfg.LLM.MaxTokens, cfg.LLM.Temperature, cfg.LLM.Timeout)

	engine := ocr.NewTesseractEngine(cfg.OCR.Binary, cfg.OCR.Languages, logger)

	notif := notifier.New(notifier.Config{
		Provider:      cfg.Email.Provider,
		SMTPHost:      cfg.Email.SMTPHost,
		SMTPPort:      cfg.Email.SMTPPort,
		SMTPUser:      secrets.SMTPUser,
		SMTPPassword:  secrets.SMTPPassword,
		From:          cfg.Email.From,
		To:            cfg.Email.To,
		SenderName:    cfg.Email.SenderName,
		MailgunDomain: cfg.Email.MailgunDomain,
		MailgunAPIKey: secrets.MailgunAPIKey,
	}, logger)

	store := tradelog.New(cfg.Store.LogPath, logger)
	outputs := tradelog.NewOutputWriter(cfg.Store.OutputDir, cfg.Store.SummariesDir, logger)
	norm := normalizer.New(logger)

	var eventStore *events.WALStore
	var sink pipeline.EventSink
	if withEvents {
		eventStore, err = events.NewWALStore(cfg.Store.EventsDir)
		if err != nil {
			return nil, err
		}
		sink = eventStore
	}

	p := pipeline.New(
		extractor.New(engine, logger),
		llm,
		norm,
		summarizer.New(llm, logger),
		notif,
		store,
		outputs,
		sink,
		logger,
	)

	return &app{
		cfg:      cfg,
		logger:   logger,
		pipeline: p,
		store:    store,
		norm:     norm,
		events:   eventStore,
	}, nil
}

func (a *app) close() {
	if a.events != nil {
		_ = a.events.Close()
	}
	_ = a.logger.Sync()
}

func runProcess(args []string) error {
	fs := flag.NewFlagSet("process", flag.ExitOnError)
	configPath := fs.String("config", "", "path to yaml config")
	sendEmail := fs.Bool("send-email", false, "send an email alert after processing")
	jsonOnly := fs.Bool("json-only", false, "besides the trade log, write only the per-trade JSON files")
	jsonlOnly := fs.Bool("jsonl-only", false, "besides the trade log, write only the daily summary")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("process needs exactly one image file or directory")
	}
	target := fs.Arg(0)

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	mode, err := tradelog.ParseSaveMode(cfg.Store.SaveMode)
	if err != nil {
		return err
	}
	switch {
	case *jsonOnly && *jsonlOnly:
		return fmt.Errorf("--json-only and --jsonl-only are mutually exclusive")
	case *jsonOnly:
		mode = tradelog.SaveModeJSON
	case *jsonlOnly:
		mode = tradelog.SaveModeJSONL
	}

	a, err := buildApp(cfg, true)
	if err != nil {
		return err
	}
	defer a.close()

	ctx, cancel := signalContext()
	defer cancel()

	opts := pipeline.Options{SendEmail: *sendEmail, SaveMode: mode}

	info, err := os.Stat(target)
	if err != nil {
		return err
	}
	if info.IsDir() {
		batch, err := a.pipeline.ProcessDir(ctx, target, opts)
		if err != nil {
			return err
		}
		return printJSON(batch)
	}

	result, err := a.pipeline.Process(ctx, target, opts)
	if err != nil {
		return err
	}
	return printJSON(result)
}

func runStats(args []string) error {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	configPath := fs.String("config", "", "path to yaml config")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	logger := zap.NewNop()
	store := tradelog.New(cfg.Store.LogPath, logger)

	stats, err := store.Stats()
	if err != nil {
		return err
	}
	return printJSON(stats)
}

func runSearch(args []string) error {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	configPath := fs.String("config", "", "path to yaml config")
	limit := fs.Int("limit", 10, "max results to return")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("search needs exactly one query string")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	store := tradelog.New(cfg.Store.LogPath, zap.NewNop())
	result, err := store.Search(fs.Arg(0), *limit)
	if err != nil {
		return err
	}
	return printJSON(result)
}

func runClean(args []string) error {
	fs := flag.NewFlagSet("clean", flag.ExitOnError)
	configPath := fs.String("config", "", "path to yaml config")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	logger, err := zap.NewProduction()
	if err != nil {
		return err
	}
	defer logger.Sync()

	store := tradelog.New(cfg.Store.LogPath, logger)
	result, err := store.Clean(normalizer.New(logger))
	if err != nil {
		return err
	}
	return printJSON(result)
}

func runServe(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	configPath := fs.String("config", "", "path to yaml config")
	addr := fs.String("addr", "", "listen address, overrides config")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if *addr != "" {
		cfg.Web.Addr = *addr
	}

	a, err := buildApp(cfg, true)
	if err != nil {
		return err
	}
	defer a.close()

	ctx, cancel := signalContext()
	defer cancel()

	a.logger.Info("starting web server", zap.String("addr", cfg.Web.Addr))
	server := web.NewServer(cfg.Web.Addr, a.pipeline, a.store, a.events)
	return server.Start(ctx)
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func printJSON(v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(b))
	return nil
}
