// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package api serves seeded occurrence records over a read-only HTTP API.
package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cast"

	"github.com/pdiddy/occurrence-etl/pkg/types"
)

// Banner is the body of GET /.
const Banner = "occurrence-etl API is running..."

// MaxLimit caps the limit query parameter.
const MaxLimit = 10000

// Source is a read-only view of seeded records.
type Source interface {
	Datasets(ctx context.Context) ([]types.DatasetCount, error)
	Records(ctx context.Context, dataset string, limit int) ([]types.Document, error)
	Record(ctx context.Context, dataset, id string) (types.Document, error)
}

// Handler serves the record API.
type Handler struct {
	src Source
	log zerolog.Logger
}

// NewHandler returns the API wrapped in recovery, request logging and
// CORS.
func NewHandler(src Source, log zerolog.Logger) http.Handler {
	h := &Handler{src: src, log: log}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", h.Root)
	mux.HandleFunc("GET /api/datasets", h.ListDatasets)
	mux.HandleFunc("GET /api/datasets/{name}", h.ListRecords)
	mux.HandleFunc("GET /api/datasets/{name}/records/{id}", h.GetRecord)

	return Recovery(log)(Logger(log)(CORS(mux)))
}

// Root handles GET /.
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte(Banner))
}

// ListDatasets handles GET /api/datasets.
func (h *Handler) ListDatasets(w http.ResponseWriter, r *http.Request) {
	datasets, err := h.src.Datasets(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("listing datasets")
		WriteError(w, http.StatusInternalServerError, "failed to list datasets")
		return
	}
	if datasets == nil {
		datasets = []types.DatasetCount{}
	}
	WriteJSON(w, http.StatusOK, datasets)
}

// ListRecords handles GET /api/datasets/{name}?limit=N.
func (h *Handler) ListRecords(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	limit, err := parseLimit(r.URL.Query().Get("limit"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	records, err := h.src.Records(r.Context(), name, limit)
	if err != nil {
		h.log.Error().Err(err).Str("dataset", name).Msg("listing records")
		WriteError(w, http.StatusInternalServerError, "failed to list records")
		return
	}
	if records == nil {
		records = []types.Document{}
	}
	WriteJSON(w, http.StatusOK, records)
}

// GetRecord handles GET /api/datasets/{name}/records/{id}.
func (h *Handler) GetRecord(w http.ResponseWriter, r *http.Request) {
	name, id := r.PathValue("name"), r.PathValue("id")

	doc, err := h.src.Record(r.Context(), name, id)
	if errors.Is(err, types.ErrNotFound) {
		WriteError(w, http.StatusNotFound, "record not found")
		return
	}
	if err != nil {
		h.log.Error().Err(err).Str("dataset", name).Str("id", id).Msg("getting record")
		WriteError(w, http.StatusInternalServerError, "failed to get record")
		return
	}
	WriteJSON(w, http.StatusOK, doc)
}

func parseLimit(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	n, err := cast.ToIntE(raw)
	if err != nil || n < 0 {
		return 0, errors.New("limit must be a non-negative integer")
	}
	if n > MaxLimit {
		n = MaxLimit
	}
	return n, nil
}
