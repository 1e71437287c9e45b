package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	gsessions "github.com/gin-contrib/sessions/postgres"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"lecturequiz/internal/api"
	"lecturequiz/internal/api/handlers"
	"lecturequiz/internal/config"
	"lecturequiz/internal/db"
	"lecturequiz/internal/llm"
	"lecturequiz/internal/pkg/logger"
	"lecturequiz/internal/r2"
	"lecturequiz/internal/session"
	"lecturequiz/internal/youtube"
)

const sweepInterval = 10 * time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, err := logger.New(cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	if cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	}
	if cfg.SessionSecret == "" {
		log.Warn("SESSION_SECRET is not set, using an insecure development secret")
		cfg.SessionSecret = "lecturequiz-dev-secret"
	}

	// Set up context
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Quiz state per session
	states, closeStates, err := newStateStore(ctx, cfg, log)
	if err != nil {
		log.Fatal("Failed to set up session state store", "error", err)
	}
	defer closeStates()

	// Cookie sessions
	cookieStore, sessionDB, err := newCookieStore(ctx, cfg)
	if err != nil {
		log.Fatal("Failed to set up cookie session store", "error", err)
	}
	if sessionDB != nil {
		defer sessionDB.Close()
	}
	cookieStore.Options(sessions.Options{
		Path:     "/",
		MaxAge:   int(cfg.SessionMaxAge.Seconds()),
		Secure:   cfg.Production(),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	// Model providers
	registry := llm.NewRegistry(cfg.DefaultModel, cfg.LLMTimeout)
	registry.Register(llm.ProviderGroq, llm.NewGroqClient(cfg.GroqAPIKey, ""))
	geminiClient, err := llm.NewGeminiClient(ctx, cfg.GeminiAPIKey)
	if err != nil {
		log.Fatal("Failed to initialize Gemini client", "error", err)
	}
	defer geminiClient.Close()
	registry.Register(llm.ProviderGemini, geminiClient)

	deps := handlers.Deps{
		Log:            log,
		Sessions:       states,
		Generator:      registry,
		Models:         registry.Models(),
		DefaultModel:   registry.DefaultModel(),
		Videos:         youtube.New(),
		Notifier:       handlers.NewNotifier(cfg.DiscordWebhookURL, log),
		MaxUploadBytes: cfg.MaxUploadBytes,
	}

	// Optional object storage
	r2Client, err := r2.NewClient(ctx, cfg.R2)
	if err != nil {
		log.Fatal("Failed to initialize R2 client", "error", err)
	}
	if r2Client != nil {
		deps.Objects = r2Client
		log.Info("object storage enabled", "bucket", cfg.R2.Bucket)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	api.SetupRoutes(router, handlers.NewHandler(deps), cookieStore, cfg.FrontendURL, log)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		log.Info("Server listening", "port", cfg.Port, "env", cfg.Env, "default_model", registry.DefaultModel())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", "error", err)
		}
	}()

	// Set up graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
		return
	}

	log.Info("Server exited properly")
}

// newStateStore picks Redis when REDIS_ADDR is set, otherwise an in-memory
// store swept in the background.
func newStateStore(ctx context.Context, cfg *config.Config, log *logger.Logger) (session.Store, func(), error) {
	if cfg.RedisAddr == "" {
		store := session.NewMemoryStore(cfg.SessionMaxAge)
		go func() {
			ticker := time.NewTicker(sweepInterval)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					if n := store.Sweep(); n > 0 {
						log.Debug("swept expired sessions", "count", n)
					}
				}
			}
		}()
		log.Info("session state kept in memory")
		return store, func() {}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, nil, err
	}
	log.Info("session state kept in redis", "addr", cfg.RedisAddr)
	return session.NewRedisStore(client, cfg.SessionMaxAge), func() { client.Close() }, nil
}

// newCookieStore backs cookie sessions with postgres when DATABASE_URL is
// set and with signed cookies otherwise.
func newCookieStore(ctx context.Context, cfg *config.Config) (sessions.Store, *sql.DB, error) {
	secret := []byte(cfg.SessionSecret)
	if cfg.DatabaseURL == "" {
		return cookie.NewStore(secret), nil, nil
	}
	sessionDB, err := db.OpenSessionDB(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	store, err := gsessions.NewStore(sessionDB, secret)
	if err != nil {
		sessionDB.Close()
		return nil, nil, err
	}
	return store, sessionDB, nil
}
