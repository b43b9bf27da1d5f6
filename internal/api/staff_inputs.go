package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"github.com/iiorcrop/mandi/internal/db"
	"github.com/iiorcrop/mandi/internal/models"
	"github.com/iiorcrop/mandi/internal/ordering"
)

var validate = validator.New()

type staffInputRequest struct {
	Title    string   `json:"title" validate:"required,max=50"`
	Type     string   `json:"type" validate:"required,max=30"`
	Options  []string `json:"options"`
	Required bool     `json:"required"`
}

type inputPositionsRequest struct {
	Positions []inputPosition `json:"positions"`
}

type inputPosition struct {
	ID       string `json:"_id"`
	Position int    `json:"position"`
}

// validateStaffInput runs the shared create/edit validation and returns
// a short client-facing message on failure
func validateStaffInput(req *staffInputRequest) (string, bool) {
	if err := validate.Struct(req); err != nil {
		if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
			switch errs[0].Field() {
			case "Title":
				return "Title is required and must be at most 50 characters.", false
			case "Type":
				return "Invalid input type.", false
			}
		}
		return "Invalid staff input.", false
	}

	if !models.ValidInputType(req.Type) {
		return "Invalid input type.", false
	}
	if req.Type == "dropdown" && len(req.Options) == 0 {
		return "Dropdown inputs require at least one option.", false
	}

	return "", true
}

func (req *staffInputRequest) toModel() *models.StaffInput {
	options := req.Options
	if req.Type != "dropdown" {
		options = nil
	}
	return &models.StaffInput{
		Title:     req.Title,
		InputType: req.Type,
		Options:   options,
		Required:  req.Required,
	}
}

func (s *Server) createStaffInputHandler(w http.ResponseWriter, r *http.Request) {
	var req staffInputRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	if msg, ok := validateStaffInput(&req); !ok {
		respondWithError(w, http.StatusBadRequest, msg)
		return
	}

	created, err := s.store.CreateStaffInput(r.Context(), req.toModel())
	if err != nil {
		respondWithServerError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, created)
}

func (s *Server) listStaffInputsHandler(w http.ResponseWriter, r *http.Request) {
	inputs, err := s.store.ListStaffInputs(r.Context())
	if err != nil {
		respondWithServerError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, inputs)
}

func (s *Server) updateStaffInputHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req staffInputRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	if msg, ok := validateStaffInput(&req); !ok {
		respondWithError(w, http.StatusBadRequest, msg)
		return
	}

	updated, err := s.store.UpdateStaffInput(r.Context(), id, req.toModel())
	if err != nil {
		if err == db.ErrNotFound {
			respondWithError(w, http.StatusNotFound, "Staff input not found.")
			return
		}
		respondWithServerError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, updated)
}

func (s *Server) deleteStaffInputHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := s.store.DeleteStaffInput(r.Context(), id); err != nil {
		if err == db.ErrNotFound {
			respondWithError(w, http.StatusNotFound, "Staff input not found.")
			return
		}
		respondWithServerError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Staff input deleted."})
}

func (s *Server) updateInputPositionsHandler(w http.ResponseWriter, r *http.Request) {
	var req inputPositionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	if len(req.Positions) == 0 {
		respondWithError(w, http.StatusBadRequest, "positions is required.")
		return
	}

	placements := make([]ordering.Placement, 0, len(req.Positions))
	for _, p := range req.Positions {
		if p.ID == "" {
			respondWithError(w, http.StatusBadRequest, "Every position entry requires an _id.")
			return
		}
		placements = append(placements, ordering.Placement{ID: p.ID, Position: p.Position})
	}

	result, err := s.store.UpdateInputPositions(r.Context(), placements)
	if err != nil {
		respondWithServerError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}
