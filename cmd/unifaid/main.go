// Command unifaid is the unifai prediction service.
// It serves the prediction, explanation, chat and analytics API, a health check
// and Prometheus metrics.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/unifai/unifai/internal/api"
	"github.com/unifai/unifai/internal/archive"
	"github.com/unifai/unifai/internal/events"
	"github.com/unifai/unifai/internal/gateway"
	"github.com/unifai/unifai/internal/logging"
	"github.com/unifai/unifai/internal/metrics"
	"github.com/unifai/unifai/internal/platform"
	"github.com/unifai/unifai/internal/service"
	"github.com/unifai/unifai/internal/store"
	"github.com/unifai/unifai/pkg/config"
	"github.com/unifai/unifai/pkg/scoring"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	v := viper.New()
	var cfgFile string

	cmd := &cobra.Command{
		Use:           "unifaid",
		Short:         "Run the unifai prediction service",
		Version:       version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadServiceConfig(v, cfgFile)
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}

	f := cmd.Flags()
	f.StringVar(&cfgFile, "config", "", "Config file (default: .unifai/config.yaml in the working directory or a parent)")
	f.Int("port", 0, "Listen port")
	f.String("log-level", "", "Log level: debug, info, warn or error")
	f.String("log-format", "", "Log format: json or text")
	_ = v.BindPFlag("server.port", f.Lookup("port"))
	_ = v.BindPFlag("log.level", f.Lookup("log-level"))
	_ = v.BindPFlag("log.format", f.Lookup("log-format"))

	return cmd
}

// loadServiceConfig layers defaults, the config file, UNIFAI_* environment variables
// and flags, in increasing precedence.
func loadServiceConfig(v *viper.Viper, cfgFile string) (*config.Config, error) {
	setDefaults(v, config.DefaultConfig())

	if cfgFile == "" {
		if wd, err := os.Getwd(); err == nil {
			cfgFile = config.FindConfigFile(wd)
		}
	}
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", cfgFile, err)
		}
	}

	v.SetEnvPrefix("UNIFAI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &config.Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// setDefaults registers every key so AutomaticEnv can override it.
func setDefaults(v *viper.Viper, d *config.Config) {
	defaults := map[string]any{
		"server.port":            d.Server.Port,
		"server.api_key":         d.Server.APIKey,
		"server.cors_origin":     d.Server.CORSOrigin,
		"server.read_timeout":    d.Server.ReadTimeout,
		"server.write_timeout":   d.Server.WriteTimeout,
		"server.trusted_proxies": d.Server.TrustedProxies,
		"database.url":           d.Database.URL,
		"database.auto_migrate":  d.Database.AutoMigrate,
		"storage.backend":        d.Storage.Backend,
		"storage.local_path":     d.Storage.LocalPath,
		"storage.bucket":         d.Storage.Bucket,
		"storage.region":         d.Storage.Region,
		"storage.endpoint":       d.Storage.Endpoint,
		"storage.access_key":     d.Storage.AccessKey,
		"storage.secret_key":     d.Storage.SecretKey,
		"gateway.url":            d.Gateway.URL,
		"gateway.model":          d.Gateway.Model,
		"gateway.api_key_env":    d.Gateway.APIKeyEnv,
		"gateway.timeout":        d.Gateway.Timeout,
		"events.brokers":         d.Events.Brokers,
		"events.topic":           d.Events.Topic,
		"ratelimit.per_minute":   d.RateLimit.PerMinute,
		"ratelimit.burst":        d.RateLimit.Burst,
		"cache.explanations":     d.Cache.Explanations,
		"log.level":              d.Log.Level,
		"log.format":             d.Log.Format,
	}
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
}

func serve(ctx context.Context, cfg *config.Config) error {
	logger := logging.Init(os.Stderr, cfg.Log)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		recorder service.Recorder
		db       *sql.DB
	)
	if cfg.Database.URL != "" {
		var err error
		db, err = platform.OpenDB(ctx, cfg.Database.URL)
		if err != nil {
			return err
		}
		defer db.Close()
		if cfg.Database.AutoMigrate {
			if err := platform.AutoMigrate(db); err != nil {
				return err
			}
			logger.Info("database migrations applied")
		}
		recorder = store.NewPostgres(db)
	} else {
		logger.Warn("no database configured, predictions are kept in memory")
		recorder = store.NewMemory(0)
	}

	blobs, err := archive.New(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("archive: %w", err)
	}

	var publisher events.Publisher
	if kp := events.NewKafkaPublisher(cfg.Events); kp != nil {
		publisher = kp
	}

	m := metrics.New()
	gw := gateway.New(cfg.Gateway)
	if !gw.Configured() {
		logger.Warn("AI gateway key not set, explain and chat are disabled", "env", cfg.Gateway.APIKeyEnv)
	}

	svc := service.New(service.Options{
		Registry:  scoring.DefaultRegistry(),
		Recorder:  recorder,
		Archive:   blobs,
		Publisher: publisher,
		Gateway:   gw,
		Metrics:   m,
		Logger:    logger,
		CacheSize: cfg.Cache.Explanations,
	})
	defer func() {
		if err := svc.Close(); err != nil {
			logger.Error("closing service", "error", err)
		}
	}()

	opts := []api.Option{
		api.WithMetrics(m),
		api.WithLogger(logger),
	}
	if cfg.RateLimit.PerMinute > 0 {
		rl := api.NewRateLimiter(cfg.RateLimit.PerMinute, cfg.RateLimit.Burst)
		if err := rl.TrustProxies(cfg.Server.TrustedProxies...); err != nil {
			return err
		}
		opts = append(opts, api.WithRateLimiter(rl))
	}
	if db != nil {
		opts = append(opts, api.WithHealthCheck(db))
	}

	mux := http.NewServeMux()
	api.NewHandler(svc, opts...).RegisterRoutes(mux)

	var handler http.Handler = mux
	handler = api.APIKeyAuth(cfg.Server.APIKey)(handler)
	handler = api.CORS(cfg.Server.CORSOrigin)(handler)

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.Server.Port),
		Handler:           handler,
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.Server.WriteTimeout,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("starting unifaid", "addr", srv.Addr, "version", version,
			"storage", cfg.Storage.Backend, "events", publisher != nil)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
	return nil
}
