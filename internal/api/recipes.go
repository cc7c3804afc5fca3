package api

import (
	"net/http"
	"net/url"
	"strings"

	"tasteal/internal/app"
	"tasteal/internal/clipper"
	"tasteal/internal/recipe"
)

type recipeDetail struct {
	*recipe.Recipe
	NutritionPerServing recipe.Nutrition `json:"nutrition_per_serving"`
}

type ratingRequest struct {
	Rating float64 `json:"rating"`
}

type commentRequest struct {
	Comment string `json:"comment"`
}

type importRequest struct {
	URL     string `json:"url"`
	Save    bool   `json:"save"`
	Private bool   `json:"private"`
}

type importResponse struct {
	Draft  *clipper.Draft    `json:"draft"`
	Result *app.ImportResult `json:"result,omitempty"`
}

func (s *Server) handleListRecipes(w http.ResponseWriter, r *http.Request) {
	page, err := queryInt(r, "page", 1)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	size, err := queryInt(r, "page_size", 0)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	cards, err := s.app.Recipes.List(r.Context(), page, size)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cards)
}

func (s *Server) handleNewestRecipes(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	cards, err := s.app.Recipes.ListNewest(r.Context(), limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cards)
}

func (s *Server) handleTrendingRecipes(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	cards, err := s.app.Recipes.ListTrending(r.Context(), limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cards)
}

func (s *Server) handleSearchRecipes(w http.ResponseWriter, r *http.Request) {
	var f recipe.SearchFilter
	if err := decodeJSON(r, &f); err != nil {
		s.writeError(w, r, err)
		return
	}
	cards, err := s.app.Recipes.Search(r.Context(), f)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cards)
}

func (s *Server) handleKeywords(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	kws, err := s.app.Recipes.Keywords(r.Context(), limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, kws)
}

// handleGetRecipe serves the full recipe with its nutrition per serving.
// Private recipes are only visible to their author.
func (s *Server) handleGetRecipe(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	rec, err := s.app.Cache.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if rec.IsPrivate && rec.Author != callerUID(r) {
		s.writeError(w, r, recipe.ErrNotFound)
		return
	}
	writeJSON(w, http.StatusOK, recipeDetail{Recipe: rec, NutritionPerServing: recipe.NutritionPerServing(*rec)})
}

func (s *Server) handleCreateRecipe(w http.ResponseWriter, r *http.Request) {
	var rec recipe.Recipe
	if err := decodeJSON(r, &rec); err != nil {
		s.writeError(w, r, err)
		return
	}
	rec.ID, rec.Rating = 0, 0
	rec.Author = callerUID(r)

	id, err := s.app.Recipes.Create(r.Context(), &rec)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

func (s *Server) handleDeleteRecipe(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.app.Recipes.Delete(r.Context(), id, callerUID(r)); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.app.Cache.Invalidate(id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRateRecipe(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req ratingRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	avg, err := s.app.Recipes.Rate(r.Context(), id, callerUID(r), req.Rating)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.app.Cache.Invalidate(id)
	writeJSON(w, http.StatusOK, map[string]float64{"rating": avg})
}

func (s *Server) handleListComments(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	comments, err := s.app.Recipes.ListComments(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, comments)
}

func (s *Server) handleAddComment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req commentRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	c := recipe.Comment{RecipeID: id, AccountID: callerUID(r), Comment: req.Comment}
	if err := s.app.Recipes.AddComment(r.Context(), &c); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (s *Server) handleDeleteComment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "commentID")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.app.Recipes.DeleteComment(r.Context(), id, callerUID(r)); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleImportRecipe clips a page into a draft. With save set, the draft
// is matched against the catalog and stored under the caller.
func (s *Server) handleImportRecipe(w http.ResponseWriter, r *http.Request) {
	var req importRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	u, err := url.Parse(strings.TrimSpace(req.URL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		s.writeError(w, r, badRequest("url must be an absolute http(s) address"))
		return
	}

	draft, err := s.app.Clipper.ClipURL(r.Context(), u.String())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if !req.Save {
		writeJSON(w, http.StatusOK, importResponse{Draft: draft})
		return
	}

	res, err := s.app.Importer.Import(r.Context(), draft, callerUID(r), req.Private)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, importResponse{Draft: draft, Result: &res})
}
