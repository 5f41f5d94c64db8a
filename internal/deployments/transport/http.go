// Package transport provides HTTP handlers for the deployments domain.
package transport

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/pendergraft/mintfactory/internal/deployments/domain"
)

// Service defines the deployment service interface for HTTP transport.
type Service interface {
	Record(ctx context.Context, req domain.RecordRequest) (*domain.Deployment, error)
	Get(ctx context.Context, chainID int64, address string) (*domain.Deployment, error)
	List(ctx context.Context, filter domain.ListFilter, pagination domain.PaginationParams) (*domain.ListResult, error)
}

// Handler handles HTTP requests for deployments.
type Handler struct {
	svc Service
}

// NewHandler creates a new deployments HTTP handler.
func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterReadRoutes registers read-only deployment routes (no auth required).
func (h *Handler) RegisterReadRoutes(r chi.Router) {
	r.Get("/", h.handleList)
	r.Get("/{chainId}/{address}", h.handleGet)
}

// RegisterWriteRoutes registers write deployment routes (auth required).
func (h *Handler) RegisterWriteRoutes(r chi.Router) {
	r.Post("/", h.handleRecord)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit := 20
	if l := q.Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}

	var chainID int64
	if c := q.Get("chain_id"); c != "" {
		id, err := domain.ParseChainID(c)
		if err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
			return
		}
		chainID = id
	}

	result, err := h.svc.List(r.Context(), domain.ListFilter{
		ChainID:  chainID,
		Deployer: q.Get("deployer"),
		Standard: q.Get("standard"),
	}, domain.PaginationParams{
		Limit:  limit,
		Cursor: q.Get("cursor"),
	})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCursor) {
			writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid cursor")
			return
		}
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list deployments")
		return
	}

	data := make([]DeploymentResponse, len(result.Deployments))
	for i := range result.Deployments {
		data[i] = FromDomain(&result.Deployments[i])
	}

	writeJSON(w, http.StatusOK, DeploymentListResponse{
		Data: data,
		Pagination: Pagination{
			Limit:      limit,
			HasMore:    result.HasMore,
			NextCursor: result.NextCursor,
		},
	})
}

func (h *Handler) handleRecord(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "Request body too large")
			return
		}
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "Failed to read request body")
		return
	}

	var req domain.RecordRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON")
		return
	}

	deployment, err := h.svc.Record(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrAlreadyRecorded):
			writeError(w, http.StatusConflict, "ALREADY_EXISTS", "Deployment already recorded")
		case errors.Is(err, domain.ErrInvalidAddress),
			errors.Is(err, domain.ErrInvalidChainID),
			errors.Is(err, domain.ErrInvalidRequest):
			writeError(w, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to record deployment")
		}
		return
	}

	writeJSON(w, http.StatusCreated, FromDomain(deployment))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	chainID, err := domain.ParseChainID(chi.URLParam(r, "chainId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	deployment, err := h.svc.Get(r.Context(), chainID, chi.URLParam(r, "address"))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			writeError(w, http.StatusNotFound, "NOT_FOUND", "Deployment not found")
		case errors.Is(err, domain.ErrInvalidAddress):
			writeError(w, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to get deployment")
		}
		return
	}

	writeJSON(w, http.StatusOK, FromDomain(deployment))
}

// Helper functions

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Error: ErrorDetail{Code: code, Message: message}})
}
