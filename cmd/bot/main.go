package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"darbot/internal/bot"
	"darbot/internal/config"
	"darbot/internal/database"
	"darbot/internal/events"
	"darbot/internal/metrics"
	"darbot/internal/session"
	"darbot/internal/sheets"
)

func main() {
	_ = godotenv.Load()

	output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	logger := zerolog.New(output).With().Timestamp().Logger()

	cfg, err := config.Load(os.Getenv("DARBOT_CONFIG_PATH"))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	db, err := database.New(cfg.Database.Path)
	if err != nil {
		logger.Fatal().Err(err).Msg("open db error")
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := db.SeedDefaultRooms(ctx); err != nil {
		logger.Fatal().Err(err).Msg("seed rooms error")
	}

	memory := session.NewMemoryStore(cfg.SessionTimeout())
	var sessions bot.SessionStore = memory
	var rdb *redis.Client
	if cfg.Redis.Enabled {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		primary := session.NewRedisStore(rdb, cfg.SessionTimeout())
		if err := primary.Ping(ctx); err != nil {
			logger.Warn().Err(err).Msg("redis unavailable, starting on in-memory sessions")
		}
		sessions = session.NewFailoverStore(primary, memory, &logger)
	}

	bus := events.NewEventBus()

	if cfg.Backup.Enabled {
		backup := database.NewBackupService(db.Path(), cfg.Backup, &logger)
		go backup.Start(ctx)
	}

	if cfg.Sheets.Enabled {
		sheetsSvc, err := sheets.New(ctx, cfg.Sheets, db, &logger)
		if err != nil {
			logger.Error().Err(err).Msg("sheets sync disabled")
		} else {
			bus.Subscribe(events.TypeReservationCancelled, func(ev events.Event) error {
				var p events.ReservationPayload
				if err := json.Unmarshal(ev.Payload, &p); err != nil {
					return err
				}
				return sheetsSvc.MarkCancelled(ctx, p.ReservationID)
			})
			interval := time.Duration(cfg.Sheets.SyncMinutes) * time.Minute
			go sheetsSvc.Run(ctx, interval)
		}
	}

	if cfg.Monitoring.HealthCheckPort == 0 {
		cfg.Monitoring.HealthCheckPort = 8090
	}
	go startHealthServer(ctx, cfg.Monitoring.HealthCheckPort, db, rdb, &logger)

	if cfg.Monitoring.PrometheusEnabled {
		if cfg.Monitoring.PrometheusPort == 0 {
			cfg.Monitoring.PrometheusPort = 9090
		}
		metrics.Register()
		go startMetricsServer(ctx, cfg.Monitoring.PrometheusPort, &logger)
	}

	b, err := bot.New(cfg, db, sessions, bus, &logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("create bot error")
	}

	b.StartReminders(ctx)

	logger.Info().Msg("booking bot started")
	b.Start(ctx)
}

func startHealthServer(ctx context.Context, port int, db *database.DB, rdb *redis.Client, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		ctxPing, cancel := context.WithTimeout(ctx, time.Second)
		defer cancel()
		if err := db.PingContext(ctxPing); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		if rdb != nil {
			if err := rdb.Ping(ctxPing).Err(); err != nil {
				http.Error(w, "redis not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("health server error")
	}
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
