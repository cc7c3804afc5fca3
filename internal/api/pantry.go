package api

import (
	"net/http"

	"tasteal/internal/pantry"
)

type pantryRequest struct {
	IngredientID int64   `json:"ingredient_id"`
	Amount       float64 `json:"amount"`
}

// handleListPantry returns the pantry grouped by ingredient type, filtered
// by the optional q name query.
func (s *Server) handleListPantry(w http.ResponseWriter, r *http.Request) {
	items, err := s.app.Pantry.List(r.Context(), callerUID(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	types, err := s.app.Catalog.ListIngredientTypes(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pantry.GroupItems(items, types, r.URL.Query().Get("q")))
}

func (s *Server) handleUpsertPantry(w http.ResponseWriter, r *http.Request) {
	var req pantryRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if _, err := s.app.Catalog.GetIngredient(r.Context(), req.IngredientID); err != nil {
		s.writeError(w, r, err)
		return
	}
	it, err := s.app.Pantry.Upsert(r.Context(), callerUID(r), req.IngredientID, req.Amount)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, it)
}

func (s *Server) handleGetPantry(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	it, err := s.app.Pantry.Get(r.Context(), callerUID(r), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, it)
}

func (s *Server) handleUpdatePantry(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req struct {
		Amount float64 `json:"amount"`
	}
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.app.Pantry.UpdateAmount(r.Context(), callerUID(r), id, req.Amount); err != nil {
		s.writeError(w, r, err)
		return
	}
	it, err := s.app.Pantry.Get(r.Context(), callerUID(r), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, it)
}

func (s *Server) handleDeletePantry(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.app.Pantry.Delete(r.Context(), callerUID(r), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
