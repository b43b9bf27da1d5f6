package api

import (
	"encoding/csv"
	"errors"
	"net/http"
	"os"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/iiorcrop/mandi/internal/db"
	"github.com/iiorcrop/mandi/internal/models"
)

const (
	defaultPriceLimit = 100
	maxPriceLimit     = 1000
)

// uploadPricesHandler accepts a multipart CSV upload, retains the raw
// file, and runs the ingestion pipeline against the saved copy
func (s *Server) uploadPricesHandler(w http.ResponseWriter, r *http.Request) {
	if s.pipeline == nil || s.uploads == nil {
		respondWithError(w, http.StatusServiceUnavailable, "Ingestion is not configured.")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.config.MaxUploadBytes)
	if err := r.ParseMultipartForm(1 << 20); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid multipart upload.")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "file field is required.")
		return
	}
	defer file.Close()

	savedPath, err := s.uploads.Save(header.Filename, file)
	if err != nil {
		respondWithServerError(w, err)
		return
	}

	saved, err := os.Open(savedPath)
	if err != nil {
		respondWithServerError(w, err)
		return
	}
	defer saved.Close()

	summary, err := s.pipeline.IngestCSV(r.Context(), saved, models.UploadSource)
	if err != nil {
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			respondWithError(w, http.StatusBadRequest, "Malformed CSV file.")
			return
		}
		if summary != nil && summary.Status == models.BatchPartial {
			// Partial batches are stored; report what landed
			respondWithJSON(w, http.StatusOK, summary)
			return
		}
		respondWithServerError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, summary)
}

// listPricesHandler returns price rows filtered by query parameters
func (s *Server) listPricesHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit := defaultPriceLimit
	if raw := q.Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			respondWithError(w, http.StatusBadRequest, "limit must be a positive integer.")
			return
		}
		limit = parsed
		if limit > maxPriceLimit {
			limit = maxPriceLimit
		}
	}

	filter := db.PriceFilter{
		State:    q.Get("state"),
		District: q.Get("district"),
		Market:   q.Get("market"),
		Group:    q.Get("group"),
		BatchID:  q.Get("batch"),
		Limit:    limit,
	}

	points, err := s.store.ListPrices(r.Context(), filter)
	if err != nil {
		respondWithServerError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, points)
}

// getBatchHandler returns ingestion bookkeeping for one batch
func (s *Server) getBatchHandler(w http.ResponseWriter, r *http.Request) {
	batchID := mux.Vars(r)["id"]

	batch, err := s.store.GetBatch(r.Context(), batchID)
	if err != nil {
		if err == db.ErrNotFound {
			respondWithError(w, http.StatusNotFound, "Batch not found.")
			return
		}
		respondWithServerError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, batch)
}
