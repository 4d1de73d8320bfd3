// agentd serves capture-the-flag agent decisions to the simulation over
// WebSocket. Each connection authenticates as one team colour; every agent
// of that team shares a belief grid through the configured store.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"github.com/JDasic01/AgentTournament/engine/agent"
	"github.com/JDasic01/AgentTournament/service/internal/config"
	"github.com/JDasic01/AgentTournament/service/internal/game"
	"github.com/JDasic01/AgentTournament/service/internal/store"
)

func main() {
	if err := run(); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	var (
		logLevel   string
		printToken string
		tokenTTL   time.Duration
	)
	flagSet := pflag.NewFlagSet("agentd", pflag.ContinueOnError)
	flagSet.StringVar(&cfg.Listen, "listen", cfg.Listen, "HTTP listen address")
	flagSet.StringVar(&cfg.Store, "store", cfg.Store, "belief store: memory, redis or postgres")
	flagSet.StringVar(&cfg.RedisAddr, "redis-addr", cfg.RedisAddr, "Redis host:port")
	flagSet.DurationVar(&cfg.RedisTTL, "redis-ttl", cfg.RedisTTL, "expiry of team state in Redis (0 keeps it)")
	flagSet.StringVar(&cfg.PostgresDSN, "postgres-dsn", cfg.PostgresDSN, "PostgreSQL connection string")
	flagSet.StringVar(&cfg.WorldFile, "world", cfg.WorldFile, "YAML file with world dimensions and symbols")
	flagSet.Uint64Var(&cfg.Seed, "seed", cfg.Seed, "seed for agent randomness (0 picks one)")
	flagSet.StringVar(&logLevel, "log-level", cfg.LogLevel.String(), "log level")
	flagSet.BoolVar(&cfg.LogJSON, "log-json", cfg.LogJSON, "log as JSON")
	flagSet.StringVar(&printToken, "print-token", "", "print a token for the given team colour and exit")
	flagSet.DurationVar(&tokenTTL, "token-ttl", 24*time.Hour, "lifetime of tokens minted by --print-token")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		return err
	}

	if cfg.LogLevel, err = logrus.ParseLevel(logLevel); err != nil {
		return fmt.Errorf("%w: --log-level: %v", config.ErrInvalid, err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.JWTSecret == "" {
		return fmt.Errorf("%w: AGENTD_JWT_SECRET is required", config.ErrInvalid)
	}

	if printToken != "" {
		tok, err := game.IssueToken([]byte(cfg.JWTSecret), printToken, tokenTTL)
		if err != nil {
			return err
		}
		fmt.Println(tok)
		return nil
	}

	setupLogging(cfg)
	log := logrus.WithField("component", "agentd")

	world, syms, err := config.LoadWorld(cfg.WorldFile)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, onDecision, cleanup, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer cleanup()

	reg := game.NewRegistry(world, syms, st, log)
	reg.Seed = cfg.Seed
	reg.OnDecision = onDecision

	mux := http.NewServeMux()
	mux.Handle("/ws", game.NewHandler(reg, []byte(cfg.JWTSecret), log))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})

	srv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.WithFields(logrus.Fields{
			"addr":  cfg.Listen,
			"store": cfg.Store,
			"world": fmt.Sprintf("%dx%d/%d", world.Width, world.Height, world.WindowSize),
		}).Info("listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
	}
	return nil
}

func setupLogging(cfg config.Config) {
	logrus.SetLevel(cfg.LogLevel)
	if cfg.LogJSON {
		logrus.SetFormatter(&logrus.JSONFormatter{})
		return
	}
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
}

// openStore builds the configured belief store. With Redis, decisions are
// also appended to a per-team action stream.
func openStore(ctx context.Context, cfg config.Config, log *logrus.Entry) (agent.Store, game.OnDecisionFunc, func(), error) {
	switch cfg.Store {
	case config.StoreRedis:
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, nil, fmt.Errorf("redis ping %s: %w", cfg.RedisAddr, err)
		}
		rs := store.NewRedisStore(client, store.WithPrefix(cfg.RedisPrefix), store.WithTTL(cfg.RedisTTL))
		return rs, actionLogger(rs, log), func() { _ = client.Close() }, nil

	case config.StorePostgres:
		pool, err := store.ConnectPostgres(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, nil, nil, err
		}
		ps := store.NewPostgresStore(pool)
		if err := ps.Migrate(ctx); err != nil {
			pool.Close()
			return nil, nil, nil, err
		}
		return ps, nil, pool.Close, nil
	}
	return agent.NewMemoryStore(), nil, func() {}, nil
}

// actionLogger publishes each decision to Redis without blocking the tick.
func actionLogger(rs *store.RedisStore, log *logrus.Entry) game.OnDecisionFunc {
	return func(key, id string, d agent.Decision) {
		rec := store.ActionRecord{
			Agent:     id,
			Action:    d.Action.String(),
			Timestamp: time.Now().UnixMilli(),
		}
		if d.HasTarget {
			rec.Role = d.Role.String()
			rec.Target = fmt.Sprintf("%d,%d", d.Target.Row, d.Target.Col)
		}
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := rs.PublishAction(ctx, key, rec); err != nil {
				log.WithError(err).WithField("agent", id).Warn("failed publishing action")
			}
		}()
	}
}
