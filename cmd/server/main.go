package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/psionman/bfg-api/internal/advisor"
	"github.com/psionman/bfg-api/internal/advisor/heuristic"
	"github.com/psionman/bfg-api/internal/advisor/remote"
	"github.com/psionman/bfg-api/internal/api"
	"github.com/psionman/bfg-api/internal/config"
	"github.com/psionman/bfg-api/internal/export"
	"github.com/psionman/bfg-api/internal/game"
	"github.com/psionman/bfg-api/internal/store"
	"github.com/psionman/bfg-api/internal/users"
	"github.com/psionman/bfg-api/internal/ws"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const version = "v1.0.0-dev"

func main() {
	var (
		showHelp    = flag.Bool("help", false, "Show help message")
		showVersion = flag.Bool("version", false, "Show version information")
		portFlag    = flag.String("port", "", "Port to listen on (overrides PORT env var)")
		envFile     = flag.String("env", ".env", "Optional env file")
		debug       = flag.Bool("debug", false, "Log at debug level")
	)
	flag.BoolVar(showHelp, "h", false, "Show help message (shorthand)")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	flag.Parse()

	if *showHelp {
		fmt.Printf(`bfg-api - bridge trainer game server

Usage: %s [options]

Options:
  -h, --help      Show this help message
  -v, --version   Show version information
  --port PORT     Port to listen on (default: 8080 or PORT env var)
  --env FILE      Env file to read first (default: .env)
  --debug         Log at debug level

Environment Variables:
  PORT                  Port to listen on (default: 8080)
  STORE                 Room store: "memory", "redis" or "sql" (default: memory)
  REDIS_ADDR            Redis address (default: localhost:6379)
  REDIS_PASSWORD        Redis password
  REDIS_DB              Redis database number (default: 0)
  DATABASE_URL          Postgres DSN for the sql store
  ADVISOR               Bid and card advisor: "heuristic" or "remote" (default: heuristic)
  ADVISOR_URL           Base URL of the remote advisor
  ADVISOR_TIMEOUT       Remote advisor timeout (default: 5s)
  EXPORT_ENABLED        Export saved boards (default: true)
  EXPORT_DIR            Directory for exported PBN files (default: ./exports)
  EXPORT_BUCKET         S3 bucket for exports; overrides EXPORT_DIR
  S3_ENDPOINT           S3-compatible endpoint
  S3_REGION             S3 region (default: auto)
  S3_ACCESS_KEY_ID      S3 access key
  S3_SECRET_ACCESS_KEY  S3 secret key
  S3_PUBLIC_URL         Base URL for exported files
  IDLE_LOGOUT           Log users out after this much inactivity (default: 1h)
  API_USER, API_PASS    Basic auth for the /bfg API
  ALLOWED_ORIGIN        Comma-separated CORS origins, or * in development
`, os.Args[0])
		return
	}

	if *showVersion {
		fmt.Printf("bfg-api %s\n", version)
		return
	}

	// zerolog setup (human-friendly console)
	zerolog.TimeFieldFormat = time.RFC3339
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})

	cfg := config.Load(*envFile)
	if *portFlag != "" {
		cfg.Port = *portFlag
	}

	ctx := context.Background()
	st, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("store", cfg.Store).Msg("open store")
	}
	defer st.Close()

	tracker := users.NewTracker(cfg.IdleLogout)
	if err := tracker.Start(cfg.IdleLogout / 4); err != nil {
		log.Fatal().Err(err).Msg("start idle sweep")
	}
	defer tracker.Stop()

	svc := game.New(st, newAdvisor(ctx, cfg), tracker)
	svc.SetVersion(version)
	if cfg.ExportEnabled {
		exp, err := newExporter(ctx, cfg)
		if err != nil {
			log.Fatal().Err(err).Msg("configure export")
		}
		svc.SetExporter(exp)
	}

	// Gin setup with custom logger (skip /socket.io noise)
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(func(c *gin.Context) {
		start := time.Now()
		c.Next()
		path := c.Request.URL.Path
		if strings.HasPrefix(path, "/socket.io") {
			return
		}
		log.Info().
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", c.Writer.Status()).
			Dur("dur", time.Since(start)).
			Msg("http")
	})

	origin := "*"
	if len(cfg.AllowedOrigins) > 0 {
		origin = cfg.AllowedOrigins[0]
	}
	sock := ws.New(svc)
	svc.SetNotifier(sock)
	io := sock.Mount(r, origin)
	defer io.Close()

	api.Register(r, svc, api.Options{
		User:           cfg.APIUser,
		Pass:           cfg.APIPass,
		AllowedOrigins: cfg.AllowedOrigins,
		Version:        version,
	})

	log.Info().Str("port", cfg.Port).Str("store", cfg.Store).Str("advisor", cfg.Advisor).Msg("listening")
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func openStore(ctx context.Context, cfg config.Config) (store.Store, error) {
	switch cfg.Store {
	case "redis":
		return store.NewRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	case "sql", "postgres":
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("STORE=%s needs DATABASE_URL", cfg.Store)
		}
		return store.NewSQL(cfg.DatabaseURL)
	case "", "memory":
		return store.NewMemory(), nil
	}
	return nil, fmt.Errorf("unknown store %q", cfg.Store)
}

// newAdvisor prefers the remote advisor when configured and falls back to
// the built-in heuristics when it fails.
func newAdvisor(ctx context.Context, cfg config.Config) advisor.Advisor {
	local := heuristic.New()
	if cfg.Advisor != "remote" || cfg.AdvisorURL == "" {
		return local
	}
	rc := remote.New(cfg.AdvisorURL, cfg.AdvisorTimeout)
	if err := rc.Ping(ctx); err != nil {
		log.Warn().Err(err).Str("url", cfg.AdvisorURL).Msg("remote advisor not reachable yet")
	}
	return advisor.WithFallback(rc, local)
}

func newExporter(ctx context.Context, cfg config.Config) (export.Exporter, error) {
	if cfg.ExportBucket == "" {
		return export.Dir{Root: cfg.ExportDir}, nil
	}
	return export.NewBucket(ctx, export.S3Config{
		Bucket:          cfg.ExportBucket,
		Endpoint:        cfg.S3Endpoint,
		Region:          cfg.S3Region,
		AccessKeyID:     cfg.S3AccessKeyID,
		SecretAccessKey: cfg.S3SecretAccessKey,
		PublicURL:       cfg.S3PublicURL,
	})
}
