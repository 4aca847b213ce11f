package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/tontinehub/tontine-admin-bfa/internal/domain"
	"github.com/tontinehub/tontine-admin-bfa/internal/reporting"

	"go.uber.org/zap"
)

// ============================================================
// Shared helper functions
// ============================================================

const (
	defaultPageSize = 20
	maxPageSize     = 100
	maxBodyBytes    = 1 << 20
)

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// mutationResponse is the result indicator every admin mutation returns,
// with the affected record attached when there is one.
type mutationResponse struct {
	domain.SuccessResponse
	Data any `json:"data,omitempty"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeMutation(w http.ResponseWriter, status int, message, id string, data any) {
	writeJSON(w, status, mutationResponse{
		SuccessResponse: domain.SuccessResponse{Success: true, Message: message, ID: id},
		Data:            data,
	})
}

// decodeJSON reads a bounded JSON body into dst. An empty body is an error.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is empty")
		}
		return errors.New("invalid request body")
	}
	return nil
}

// parseTableQuery reads ?search=&sort=&order=asc|desc&page=&page_size=.
func parseTableQuery(r *http.Request) reporting.Query {
	q := r.URL.Query()
	page, pageSize := parsePagination(r)
	return reporting.Query{
		Search:     strings.TrimSpace(q.Get("search")),
		SortKey:    q.Get("sort"),
		Descending: strings.EqualFold(q.Get("order"), "desc"),
		Page:       page,
		PageSize:   pageSize,
	}
}

func parsePagination(r *http.Request) (page, pageSize int) {
	page = 1
	pageSize = defaultPageSize
	if v := r.URL.Query().Get("page"); v != "" {
		if p, err := strconv.Atoi(v); err == nil && p > 0 {
			page = p
		}
	}
	if v := r.URL.Query().Get("page_size"); v != "" {
		if ps, err := strconv.Atoi(v); err == nil && ps > 0 {
			pageSize = min(ps, maxPageSize)
		}
	}
	return
}

// handleServiceError maps domain errors to HTTP responses.
func handleServiceError(w http.ResponseWriter, err error, logger *zap.Logger) {
	var notFound *domain.ErrNotFound
	var circuitOpen *domain.ErrCircuitOpen
	var timeout *domain.ErrTimeout
	var validation *domain.ErrValidation
	var conflict *domain.ErrConflict
	var unauthorized *domain.ErrUnauthorized
	var external *domain.ErrExternalService

	switch {
	case errors.As(err, &notFound):
		logger.Debug("not found", zap.String("error", err.Error()))
		writeError(w, http.StatusNotFound, notFound.Error())
	case errors.As(err, &circuitOpen):
		logger.Error("circuit breaker open", zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, circuitOpen.Error())
	case errors.As(err, &timeout):
		logger.Error("request timeout", zap.Error(err))
		writeError(w, http.StatusGatewayTimeout, timeout.Error())
	case errors.As(err, &validation):
		logger.Debug("validation error", zap.String("error", err.Error()))
		writeError(w, http.StatusBadRequest, validation.Error())
	case errors.As(err, &conflict):
		logger.Debug("conflict", zap.String("error", err.Error()))
		writeError(w, http.StatusConflict, conflict.Error())
	case errors.As(err, &unauthorized):
		logger.Warn("unauthorized", zap.String("error", err.Error()))
		writeError(w, http.StatusUnauthorized, unauthorized.Error())
	case errors.As(err, &external):
		logger.Error("data collaborator error", zap.Error(err))
		writeError(w, http.StatusBadGateway, "data service unavailable")
	default:
		logger.Error("unhandled error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
