package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx/types"

	"github.com/iiorcrop/mandi/internal/db"
	"github.com/iiorcrop/mandi/internal/ordering"
)

type createStaffDetailRequest struct {
	UserID string          `json:"userID"`
	Data   json.RawMessage `json:"data"`
}

type updateStaffDetailRequest struct {
	Data json.RawMessage `json:"data"`
}

type reorderRequest struct {
	Department string          `json:"department"`
	Division   string          `json:"division"`
	IDs        json.RawMessage `json:"ids"`
}

// dataObject validates that raw is a JSON object and returns it
func dataObject(raw json.RawMessage) (types.JSONText, bool) {
	if len(raw) == 0 {
		return nil, false
	}
	var obj map[string]interface{}
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, false
	}
	return types.JSONText(raw), true
}

func (s *Server) createStaffDetailHandler(w http.ResponseWriter, r *http.Request) {
	var req createStaffDetailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	if req.UserID == "" {
		respondWithError(w, http.StatusBadRequest, "userID is required.")
		return
	}
	data, ok := dataObject(req.Data)
	if !ok {
		respondWithError(w, http.StatusBadRequest, "data must be an object.")
		return
	}

	detail, err := s.store.CreateStaffDetail(r.Context(), req.UserID, data)
	if err != nil {
		respondWithServerError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, detail)
}

func (s *Server) getStaffDetailByUserHandler(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userID"]

	detail, err := s.store.GetStaffDetailByUser(r.Context(), userID)
	if err != nil {
		if err == db.ErrNotFound {
			respondWithError(w, http.StatusNotFound, "Staff detail not found.")
			return
		}
		respondWithServerError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, detail)
}

func (s *Server) listStaffDetailsHandler(w http.ResponseWriter, r *http.Request) {
	details, err := s.store.ListStaffDetails(r.Context())
	if err != nil {
		respondWithServerError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, details)
}

func (s *Server) reorderStaffDetailsHandler(w http.ResponseWriter, r *http.Request) {
	var req reorderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	if req.Department == "" {
		respondWithError(w, http.StatusBadRequest, "department is required.")
		return
	}

	var ids []string
	if err := json.Unmarshal(req.IDs, &ids); err != nil {
		respondWithError(w, http.StatusBadRequest, "ids must be an array.")
		return
	}

	placements := ordering.Assign(ids, req.Division != "")
	result, err := s.store.ReorderStaffDetails(r.Context(), placements)
	if err != nil {
		respondWithServerError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}

func (s *Server) updateStaffDetailHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req updateStaffDetailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	data, ok := dataObject(req.Data)
	if !ok {
		respondWithError(w, http.StatusBadRequest, "data must be an object.")
		return
	}

	detail, err := s.store.UpdateStaffDetailData(r.Context(), id, data)
	if err != nil {
		if err == db.ErrNotFound {
			respondWithError(w, http.StatusNotFound, "Staff detail not found.")
			return
		}
		respondWithServerError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, detail)
}

func (s *Server) deleteStaffDetailHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := s.store.DeleteStaffDetail(r.Context(), id); err != nil {
		if err == db.ErrNotFound {
			respondWithError(w, http.StatusNotFound, "Staff detail not found.")
			return
		}
		respondWithServerError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Staff detail deleted."})
}
