package api

import (
	"bytes"
	"net/http"

	"tasteal/internal/cart"
)

type addCartRequest struct {
	RecipeID    int64 `json:"recipe_id"`
	ServingSize int   `json:"serving_size"`
}

type servingSizeRequest struct {
	ServingSize int `json:"serving_size"`
}

type personalRequest struct {
	IngredientID int64   `json:"ingredient_id"`
	Amount       float64 `json:"amount"`
	IsBought     bool    `json:"is_bought"`
}

func (s *Server) handleListCarts(w http.ResponseWriter, r *http.Request) {
	carts, err := s.app.Carts.ListByAccount(r.Context(), callerUID(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, carts)
}

// handleAddCart puts a recipe in the cart. Without a serving size the
// recipe's own is used.
func (s *Server) handleAddCart(w http.ResponseWriter, r *http.Request) {
	var req addCartRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	ref, err := s.app.Plans.RecipeRef(r.Context(), callerUID(r), req.RecipeID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.ServingSize == 0 {
		req.ServingSize = ref.ServingSize
	}
	id, err := s.app.Carts.Add(r.Context(), callerUID(r), req.RecipeID, req.ServingSize)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

func (s *Server) handleClearCarts(w http.ResponseWriter, r *http.Request) {
	if err := s.app.Carts.DeleteAll(r.Context(), callerUID(r)); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleUpdateCart(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req servingSizeRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.app.Carts.UpdateServingSize(r.Context(), callerUID(r), id, req.ServingSize); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteCart(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.app.Carts.Delete(r.Context(), callerUID(r), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListPersonal(w http.ResponseWriter, r *http.Request) {
	items, err := s.app.Carts.ListPersonal(r.Context(), callerUID(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleAddPersonal(w http.ResponseWriter, r *http.Request) {
	var req personalRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	ing, err := s.app.Catalog.GetIngredient(r.Context(), req.IngredientID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	it := cart.PersonalItem{
		AccountID:    callerUID(r),
		IngredientID: ing.ID,
		Name:         ing.Name,
		Amount:       req.Amount,
		IsBought:     req.IsBought,
	}
	if err := s.app.Carts.AddPersonal(r.Context(), &it); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, it)
}

func (s *Server) handleUpdatePersonal(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req personalRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.app.Carts.UpdatePersonal(r.Context(), callerUID(r), id, req.Amount, req.IsBought); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeletePersonal(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.app.Carts.DeletePersonal(r.Context(), callerUID(r), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGroceryList(w http.ResponseWriter, r *http.Request) {
	rows, err := s.app.Carts.GroceryList(r.Context(), callerUID(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

// handleGroceryExport renders the grocery list as a spreadsheet. The
// workbook is built in memory so a failure can still answer with JSON.
func (s *Server) handleGroceryExport(w http.ResponseWriter, r *http.Request) {
	rows, err := s.app.Carts.GroceryList(r.Context(), callerUID(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var buf bytes.Buffer
	if err := cart.ExportXLSX(rows, &buf); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="grocery.xlsx"`)
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
