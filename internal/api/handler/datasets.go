// Package handler contains the HTTP request handlers.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	mw "github.com/arjunks/datahound/internal/api/middleware"
	"github.com/arjunks/datahound/internal/api/response"
	"github.com/arjunks/datahound/internal/ingest"
	"github.com/arjunks/datahound/internal/store"
	"github.com/arjunks/datahound/pkg/models"
)

const (
	maxDatasetRows  = 10000
	maxUploadBytes  = 8 << 20
	defaultPageSize = 20
	maxPageSize     = 100
)

// DatasetStore is the storage surface the dataset handlers depend on.
type DatasetStore interface {
	CreateDataset(ctx context.Context, ds *models.Dataset) error
	GetDataset(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) (*models.Dataset, error)
	ListDatasets(ctx context.Context, filter store.DatasetFilter) ([]*models.Dataset, int, error)
	DeleteDataset(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) error
}

// NewCreateDatasetHandler returns the handler for POST /api/v1/datasets.
// JSON bodies carry the rows inline; a text/csv body is parsed with the
// first record as the header and the dataset name taken from ?name=.
func NewCreateDatasetHandler(st DatasetStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID, ok := mw.GetTenantID(r)
		if !ok {
			response.Error(w, http.StatusUnauthorized, "INVALID_TOKEN", "Missing tenant", nil)
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

		var (
			name    string
			columns []string
			rows    []models.Row
		)

		switch mediaType(r) {
		case "text/csv":
			name = strings.TrimSpace(r.URL.Query().Get("name"))
			if name == "" {
				response.Error(w, http.StatusBadRequest, "INVALID_REQUEST",
					"name query parameter is required for csv uploads", nil)
				return
			}
			var err error
			columns, rows, err = ingest.CSV(r.Body)
			if err != nil {
				response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)
				return
			}
		default:
			var req struct {
				Name    string       `json:"name"`
				Columns []string     `json:"columns"`
				Rows    []models.Row `json:"rows"`
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
				return
			}
			name = strings.TrimSpace(req.Name)
			if name == "" {
				response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "name is required", nil)
				return
			}
			columns = req.Columns
			if len(columns) == 0 {
				columns = ingest.InferColumns(req.Rows)
			}
			rows = req.Rows
		}

		if len(rows) == 0 {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "dataset has no rows", nil)
			return
		}
		if len(rows) > maxDatasetRows {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST",
				"dataset exceeds the maximum of "+strconv.Itoa(maxDatasetRows)+" rows", nil)
			return
		}

		ds := &models.Dataset{
			ID:        uuid.New(),
			TenantID:  tenantID,
			Name:      name,
			Columns:   columns,
			Rows:      rows,
			RowCount:  len(rows),
			CreatedAt: time.Now().UTC(),
		}
		if err := st.CreateDataset(r.Context(), ds); err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to store dataset", nil)
			return
		}

		response.Created(w, datasetSummary(ds))
	}
}

// NewListDatasetsHandler returns the handler for GET /api/v1/datasets.
// Listings omit row payloads.
func NewListDatasetsHandler(st DatasetStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID, ok := mw.GetTenantID(r)
		if !ok {
			response.Error(w, http.StatusUnauthorized, "INVALID_TOKEN", "Missing tenant", nil)
			return
		}

		page := queryInt(r, "page", 1)
		limit := queryInt(r, "limit", defaultPageSize)
		if page < 1 {
			page = 1
		}
		if limit < 1 || limit > maxPageSize {
			limit = defaultPageSize
		}

		datasets, total, err := st.ListDatasets(r.Context(), store.DatasetFilter{
			TenantID: tenantID,
			Page:     page,
			Limit:    limit,
		})
		if err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list datasets", nil)
			return
		}

		summaries := make([]map[string]any, 0, len(datasets))
		for _, ds := range datasets {
			summaries = append(summaries, datasetSummary(ds))
		}
		response.Collection(w, summaries, response.PaginationMeta{
			Page:    page,
			Limit:   limit,
			Total:   total,
			HasNext: page*limit < total,
		})
	}
}

// NewGetDatasetHandler returns the handler for GET /api/v1/datasets/{datasetID}.
func NewGetDatasetHandler(st DatasetStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID, ok := mw.GetTenantID(r)
		if !ok {
			response.Error(w, http.StatusUnauthorized, "INVALID_TOKEN", "Missing tenant", nil)
			return
		}
		id, err := uuid.Parse(chi.URLParam(r, "datasetID"))
		if err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid dataset id", nil)
			return
		}

		ds, err := st.GetDataset(r.Context(), id, tenantID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				response.Error(w, http.StatusNotFound, "NOT_FOUND", "Dataset not found", nil)
				return
			}
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load dataset", nil)
			return
		}
		response.JSON(w, ds)
	}
}

// NewDeleteDatasetHandler returns the handler for DELETE /api/v1/datasets/{datasetID}.
func NewDeleteDatasetHandler(st DatasetStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID, ok := mw.GetTenantID(r)
		if !ok {
			response.Error(w, http.StatusUnauthorized, "INVALID_TOKEN", "Missing tenant", nil)
			return
		}
		id, err := uuid.Parse(chi.URLParam(r, "datasetID"))
		if err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid dataset id", nil)
			return
		}

		if err := st.DeleteDataset(r.Context(), id, tenantID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				response.Error(w, http.StatusNotFound, "NOT_FOUND", "Dataset not found", nil)
				return
			}
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to delete dataset", nil)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func datasetSummary(ds *models.Dataset) map[string]any {
	return map[string]any{
		"id":         ds.ID,
		"name":       ds.Name,
		"columns":    ds.Columns,
		"row_count":  ds.RowCount,
		"created_at": ds.CreatedAt,
	}
}

func mediaType(r *http.Request) string {
	ct := r.Header.Get("Content-Type")
	if ct == "" {
		return ""
	}
	mt, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return ""
	}
	return mt
}

func queryInt(r *http.Request, key string, def int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}
