// Package api is the ops surface: health, metrics, and the administrative
// account operations, served over HTTP.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/punchamoorthee/deckops/internal/ledger"
	"github.com/punchamoorthee/deckops/internal/models"
	"github.com/punchamoorthee/deckops/internal/store"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ops_http_requests_total",
		Help: "Total HTTP requests processed, labeled by status code",
	}, []string{"method", "endpoint", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ops_http_request_duration_seconds",
		Help:    "Latency distribution of HTTP requests",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
	}, []string{"method", "endpoint"})
)

type Handler struct {
	ledger *ledger.Manager
	logger *zap.Logger
}

func NewHandler(lm *ledger.Manager, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{ledger: lm, logger: logger}
}

func (h *Handler) HealthCheckHandler(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"}, "GET", "/health")
}

func (h *Handler) GetAccountHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "GET", "/accounts/{id}")
	if !ok {
		return
	}

	// Lookup only: the ops surface never creates accounts implicitly.
	acc, err := h.ledger.LookupAccount(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Account not found", "GET", "/accounts/{id}")
			return
		}
		h.logger.Error("account lookup failed", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Storage error", "GET", "/accounts/{id}")
		return
	}
	respondWithJSON(w, http.StatusOK, accountView(acc), "GET", "/accounts/{id}")
}

func (h *Handler) CreditAccountHandler(w http.ResponseWriter, r *http.Request) {
	timer := prometheus.NewTimer(httpRequestDuration.WithLabelValues("POST", "/accounts/{id}/credit"))
	defer timer.ObserveDuration()

	id, ok := pathID(w, r, "POST", "/accounts/{id}/credit")
	if !ok {
		return
	}

	var req models.CreditRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Malformed JSON body", "POST", "/accounts/{id}/credit")
		return
	}

	acc, err := h.ledger.Credit(r.Context(), id, req.Amount)
	if err != nil {
		h.respondLedgerError(w, err, "POST", "/accounts/{id}/credit")
		return
	}
	respondWithJSON(w, http.StatusOK, accountView(acc), "POST", "/accounts/{id}/credit")
}

func (h *Handler) ReduceAccountHandler(w http.ResponseWriter, r *http.Request) {
	timer := prometheus.NewTimer(httpRequestDuration.WithLabelValues("POST", "/accounts/{id}/reduce"))
	defer timer.ObserveDuration()

	id, ok := pathID(w, r, "POST", "/accounts/{id}/reduce")
	if !ok {
		return
	}

	var req models.ReduceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Malformed JSON body", "POST", "/accounts/{id}/reduce")
		return
	}

	acc, err := h.ledger.ForceReduce(r.Context(), id, req.Amount)
	if err != nil {
		h.respondLedgerError(w, err, "POST", "/accounts/{id}/reduce")
		return
	}
	respondWithJSON(w, http.StatusOK, accountView(acc), "POST", "/accounts/{id}/reduce")
}

func (h *Handler) StatsHandler(w http.ResponseWriter, r *http.Request) {
	stats, err := h.ledger.Statistics(r.Context())
	if err != nil {
		h.logger.Error("statistics failed", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Storage error", "GET", "/stats")
		return
	}
	respondWithJSON(w, http.StatusOK, stats, "GET", "/stats")
}

func (h *Handler) respondLedgerError(w http.ResponseWriter, err error, method, endpoint string) {
	switch {
	case errors.Is(err, ledger.ErrInvalidAmount):
		respondWithError(w, http.StatusUnprocessableEntity, "Positive amount required", method, endpoint)
	case errors.Is(err, store.ErrNotFound):
		respondWithError(w, http.StatusNotFound, "Account not found", method, endpoint)
	default:
		h.logger.Error("ledger operation failed", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Storage error", method, endpoint)
	}
}

// AuthMiddleware guards the account operations with a static bearer token.
// An empty token disables the guard (local development).
func AuthMiddleware(token string) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token != "" && r.Header.Get("Authorization") != "Bearer "+token {
				respondWithError(w, http.StatusUnauthorized, "Unauthorized", r.Method, "/api/v1")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func pathID(w http.ResponseWriter, r *http.Request, method, endpoint string) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Malformed account id", method, endpoint)
		return 0, false
	}
	return id, true
}

func accountView(acc models.Account) models.AccountResponse {
	return models.AccountResponse{
		UserID:      acc.UserID,
		Balance:     acc.Balance,
		TotalSlides: acc.TotalSlides,
		TotalSpent:  acc.TotalSpent,
	}
}

func respondWithError(w http.ResponseWriter, code int, message, method, endpoint string) {
	respondWithJSON(w, code, map[string]string{"error": message}, method, endpoint)
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}, method, endpoint string) {
	httpRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(code)).Inc()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if payload != nil {
		json.NewEncoder(w).Encode(payload)
	}
}
