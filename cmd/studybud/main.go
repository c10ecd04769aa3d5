/*
 * Copyright (c) 2026 Francesco Biribo'
 *
 * Permission to use, copy, modify, and distribute this software for any purpose with or without fee is hereby granted, provided that the above copyright notice and this permission notice appear in all copies.
 *
 * THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES WITH REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR ANY SPECIAL, DIRECT, INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES WHATSOEVER RESULTING FROM LOSS OF USE, DATA OR PROFITS, WHETHER IN AN ACTION OF CONTRACT, NEGLIGENCE OR OTHER TORTIOUS ACTION, ARISING OUT OF OR IN CONNECTION WITH THE USE OR PERFORMANCE OF THIS SOFTWARE.
 */

package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"time"

	"studybud/internal"
	"studybud/internal/data"
	"studybud/internal/handler"
	"studybud/internal/metrics"
	"studybud/internal/nlog"
	"studybud/internal/server"
	"studybud/internal/service"
	"studybud/internal/view"
	"studybud/web"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/gorilla/sessions"
	"github.com/spf13/pflag"
)

const shutdownTimeout = 10 * time.Second

type options struct {
	configPath string
	port       uint16
	db         string
	stderr     bool
}

func parseFlags(args []string) (*pflag.FlagSet, *options, error) {
	opts := &options{}
	flags := pflag.NewFlagSet("studybud", pflag.ContinueOnError)
	flags.StringVarP(&opts.configPath, "config", "c", ".", "configuration file (.cfg JSON, .yaml) or folder holding a .cfg")
	flags.Uint16VarP(&opts.port, "port", "p", 0, "HTTP port, overrides http-server-port")
	flags.StringVar(&opts.db, "db", "", "SQLite file or PostgreSQL URL, overrides db-name / database-url")
	flags.BoolVar(&opts.stderr, "stderr", false, "log to stderr instead of <folder-path>/studybud.log")
	if err := flags.Parse(args); err != nil {
		return nil, nil, err
	}
	return flags, opts, nil
}

// loadConfig layers, lowest first: defaults, configuration file, .env, STUDYBUD_* variables, flags
func loadConfig(flags *pflag.FlagSet, opts *options, lookup func(string) (string, bool)) (*internal.Config, error) {
	cfg, err := internal.LoadConfig(opts.configPath)
	if errors.Is(err, fs.ErrNotExist) && !flags.Changed("config") {
		cfg, err = internal.DefaultConfig(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}

	if err := internal.LoadDotEnv(cfg.FolderPath); err != nil {
		return nil, fmt.Errorf("loading .env: %w", err)
	}
	if err := cfg.ApplyEnvOverrides(lookup); err != nil {
		return nil, err
	}

	if flags.Changed("port") {
		cfg.HTTPServerPort = opts.port
	}
	if flags.Changed("db") {
		if cfg.DBDriver == "postgres" {
			cfg.DatabaseURL = opts.db
		} else {
			cfg.DBName = opts.db
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func openLogger(cfg *internal.Config, stderr bool) (*nlog.SiteLogger, error) {
	logOpts := nlog.Options{Enabled: cfg.EnableLogging, Level: cfg.LogLevel, Format: cfg.LogFormat}
	if stderr {
		return nlog.NewSiteLogger(logOpts)
	}
	return nlog.OpenSiteLogger(cfg.FolderPath, logOpts)
}

func templateFS(cfg *internal.Config) fs.FS {
	if cfg.TemplateDirectory != "" {
		return os.DirFS(cfg.TemplateDirectory)
	}
	return web.Templates()
}

func databaseDSN(cfg *internal.Config) string {
	if cfg.DBDriver == "postgres" {
		return cfg.DatabaseURL
	}
	return cfg.DatabasePath()
}

func main() {
	flags, opts, err := parseFlags(os.Args[1:])
	if errors.Is(err, pflag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		os.Exit(2)
	}
	cfg, err := loadConfig(flags, opts, os.LookupEnv)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	siteLogger, err := openLogger(cfg, opts.stderr)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	mainLog := siteLogger.RegisterSubsystem("main")
	httpLog := siteLogger.RegisterSubsystem("http")

	db, err := data.Open(data.DBConfig{
		Driver: cfg.DBDriver,
		DSN:    databaseDSN(cfg),
		Logger: siteLogger.RegisterSubsystem("storage"),
		Debug:  cfg.LogLevel == "debug",
	})
	if err != nil {
		mainLog.Logf("FATAL: %v", err)
		siteLogger.Close()
		os.Exit(1)
	}
	storage := data.NewStorageManager(db)

	var m *metrics.Metrics
	if cfg.MetricsEnabled {
		m = metrics.New()
	}

	svc := handler.Services{
		Auth:     service.NewAuthService(storage.GetUserRepository(), cfg.BcryptCost, m, siteLogger.RegisterSubsystem("auth")),
		Rooms:    service.NewRoomService(storage.GetRoomRepository(), storage.GetMessageRepository(), m, siteLogger.RegisterSubsystem("rooms")),
		Messages: service.NewMessageService(storage.GetMessageRepository(), m, siteLogger.RegisterSubsystem("messages")),
		Listing:  service.NewListingService(storage.GetTopicRepository(), storage.GetRoomRepository(), storage.GetMessageRepository(), siteLogger.RegisterSubsystem("listing")),
		Users:    service.NewUserService(storage.GetUserRepository(), storage.GetTopicRepository(), storage.GetRoomRepository(), storage.GetMessageRepository(), siteLogger.RegisterSubsystem("users")),
	}

	cookieStore := sessions.NewCookieStore([]byte(cfg.SecretKey))
	cookieStore.Options = &sessions.Options{
		Path:     "/",
		HttpOnly: true,
		Secure:   cfg.SecureCookies,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(7 * 24 * time.Hour.Seconds()),
	}

	// Load templates and page renderer
	fsys := templateFS(cfg)
	templates, err := internal.RetrieveWebTemplates(fsys)
	if err == nil && len(templates) == 0 {
		err = fmt.Errorf("no templates found")
	}
	if err != nil {
		mainLog.Logf("FATAL: %v", err)
		os.Exit(1)
	}
	renderer, err := view.NewPageRenderer(fsys, templates)
	if err != nil {
		mainLog.Logf("FATAL: %v", err)
		os.Exit(1)
	}

	router := handler.NewRouter(svc, cookieStore, renderer, m, httpLog)
	input := server.NewInputManager(router, storage, m, httpLog)
	if err := input.Start(&server.IptConfig{
		ServerPort:     cfg.HTTPServerPort,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		GRPCHealthPort: cfg.GRPCHealthPort,
	}); err != nil {
		mainLog.Logf("FATAL: %v", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "StudyBud listening on %s\n", input.Addr())

	// A server dying on its own triggers the same shutdown as a signal
	go func() {
		if err := <-input.Err(); err != nil {
			mainLog.Logf("ERROR: Server stopped {%v}", err)
			if p, err := os.FindProcess(os.Getpid()); err == nil {
				p.Signal(os.Interrupt)
			}
		}
	}()

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		shutdownTimeout,
		map[string]gfshutdown.Operation{
			"http": func(ctx context.Context) error {
				mainLog.Logf("Graceful shutdown initiated...")
				return input.Shutdown(ctx)
			},
		},
	)

	exitCode := <-wait
	if err := storage.Close(); err != nil {
		mainLog.Logf("ERROR: Closing storage {%v}", err)
	}
	mainLog.Logf("Application exited with code: %d", exitCode)
	siteLogger.Close()
	os.Exit(exitCode)
}
