package api

import (
	"net/http"

	"tasteal/internal/account"
)

type profileRequest struct {
	Name         string `json:"name"`
	Avatar       string `json:"avatar"`
	Introduction string `json:"introduction"`
	Link         string `json:"link"`
	Slogan       string `json:"slogan"`
	Quote        string `json:"quote"`
}

func (s *Server) handleGetMe(w http.ResponseWriter, r *http.Request) {
	a, err := s.app.Accounts.Get(r.Context(), callerUID(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// handleUpdateMe creates or updates the caller's public profile.
func (s *Server) handleUpdateMe(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	a := account.Account{
		UID:          callerUID(r),
		Name:         req.Name,
		Avatar:       req.Avatar,
		Introduction: req.Introduction,
		Link:         req.Link,
		Slogan:       req.Slogan,
		Quote:        req.Quote,
	}
	if err := s.app.Accounts.Upsert(r.Context(), &a); err != nil {
		s.writeError(w, r, err)
		return
	}
	saved, err := s.app.Accounts.Get(r.Context(), a.UID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func (s *Server) handleGetAccount(w http.ResponseWriter, r *http.Request) {
	a, err := s.app.Accounts.Get(r.Context(), r.PathValue("uid"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// handleAccountRecipes lists an author's recipes; private ones only for
// the author.
func (s *Server) handleAccountRecipes(w http.ResponseWriter, r *http.Request) {
	uid := r.PathValue("uid")
	cards, err := s.app.Recipes.ListByAuthor(r.Context(), uid, uid == callerUID(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cards)
}
