package api

import (
	"net/http"
	"slices"
	"strconv"

	"tasteal/internal/catalog"
)

func (s *Server) handleListOccasions(w http.ResponseWriter, r *http.Request) {
	occasions, err := s.app.Catalog.ListOccasions(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, occasions)
}

func (s *Server) handleCurrentOccasions(w http.ResponseWriter, r *http.Request) {
	occasions, err := s.app.Catalog.CurrentOccasions(r.Context(), s.now())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, occasions)
}

func (s *Server) handleListIngredientTypes(w http.ResponseWriter, r *http.Request) {
	types, err := s.app.Catalog.ListIngredientTypes(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, types)
}

func (s *Server) handleListIngredients(w http.ResponseWriter, r *http.Request) {
	var typeID int64
	if raw := r.URL.Query().Get("type_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			s.writeError(w, r, badRequest("invalid type_id %q", raw))
			return
		}
		typeID = id
	}
	ings, err := s.app.Catalog.ListIngredients(r.Context(), r.URL.Query().Get("q"), typeID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ings)
}

// handleCreateIngredient adds an ingredient to the catalog, or updates the
// one with the same name. Admin only.
func (s *Server) handleCreateIngredient(w http.ResponseWriter, r *http.Request) {
	if !s.isAdmin(r) {
		s.writeError(w, r, errForbidden)
		return
	}
	var ing catalog.Ingredient
	if err := decodeJSON(r, &ing); err != nil {
		s.writeError(w, r, err)
		return
	}
	types, err := s.app.Catalog.ListIngredientTypes(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	idx := slices.IndexFunc(types, func(t catalog.IngredientType) bool { return t.ID == ing.TypeID })
	if idx < 0 {
		s.writeError(w, r, badRequest("unknown ingredient type %d", ing.TypeID))
		return
	}
	ing.ID = 0
	ing.TypeName = types[idx].Name
	if err := s.app.Catalog.UpsertIngredient(r.Context(), &ing); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, ing)
}
