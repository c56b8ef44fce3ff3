package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/punchamoorthee/deckops/internal/api"
	"github.com/punchamoorthee/deckops/internal/bot"
	"github.com/punchamoorthee/deckops/internal/config"
	"github.com/punchamoorthee/deckops/internal/deck"
	"github.com/punchamoorthee/deckops/internal/flow"
	"github.com/punchamoorthee/deckops/internal/gen"
	"github.com/punchamoorthee/deckops/internal/ledger"
	"github.com/punchamoorthee/deckops/internal/store"
)

func main() {
	// Local .env is optional; deployed environments set real env vars.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger, err := buildLogger(cfg.Env)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("unable to open ledger store", zap.Error(err))
	}
	defer st.Close()

	generator, err := gen.NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		logger.Fatal("unable to build generator", zap.Error(err))
	}

	ledgerManager := ledger.NewManager(st, logger.Named("ledger"))
	catalog := deck.NewCatalog(cfg.TemplatesDir)
	renderer := deck.NewPPTX(cfg.OutputDir, catalog)

	console := bot.NewConsole(cfg.ConsoleUserID, os.Stdout)
	sessions := flow.NewSessions(cfg.SessionTTL)
	machine := flow.NewMachine(ledgerManager, sessions, generator, renderer, catalog,
		console, cfg.UnitPrice, logger.Named("flow"))
	admin := bot.NewAdmin(ledgerManager, console, cfg.AdminIDs, logger.Named("admin"))
	dispatcher := bot.NewDispatcher(machine, admin, console, logger.Named("bot"))

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: buildRouter(ledgerManager, cfg.OpsToken, logger)}
	go func() {
		logger.Info("ops server starting", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("ops server stopped", zap.Error(err))
		}
	}()

	logger.Info("bot started",
		zap.String("backend", cfg.Backend),
		zap.Int64("unit_price", cfg.UnitPrice),
		zap.Int64("console_user", cfg.ConsoleUserID))

	if err := console.Run(ctx, dispatcher, os.Stdin); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("console transport stopped", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("ops server shutdown failed", zap.Error(err))
	}
	logger.Info("bot stopped")
}

func buildLogger(env string) (*zap.Logger, error) {
	if env == "development" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func openStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (store.Store, error) {
	if cfg.Backend == config.BackendPostgres {
		return store.NewPostgres(ctx, cfg.DBSource)
	}

	st, err := store.NewJSONFile(cfg.UsersFile)
	if err != nil {
		// Read faults are non-fatal: the bot starts with an empty ledger and
		// the operator decides whether to restore from backup.
		logger.Warn("ledger state unreadable, starting empty", zap.Error(err))
	}
	return st, nil
}

func buildRouter(lm *ledger.Manager, opsToken string, logger *zap.Logger) *mux.Router {
	handler := api.NewHandler(lm, logger.Named("api"))

	r := mux.NewRouter()
	r.Handle("/metrics", promhttp.Handler())
	r.HandleFunc("/health", handler.HealthCheckHandler)

	apiV1 := r.PathPrefix("/api/v1").Subrouter()
	apiV1.Use(api.AuthMiddleware(opsToken))
	apiV1.HandleFunc("/accounts/{id}", handler.GetAccountHandler).Methods("GET")
	apiV1.HandleFunc("/accounts/{id}/credit", handler.CreditAccountHandler).Methods("POST")
	apiV1.HandleFunc("/accounts/{id}/reduce", handler.ReduceAccountHandler).Methods("POST")
	apiV1.HandleFunc("/stats", handler.StatsHandler).Methods("GET")
	return r
}
