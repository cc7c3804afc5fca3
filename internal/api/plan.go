package api

import (
	"net/http"
	"time"

	"tasteal/internal/account"
	"tasteal/internal/planner"
)

type addPlanItemRequest struct {
	RecipeID int64  `json:"recipe_id"`
	Date     string `json:"date"`
}

// moveRequest carries calendar days as YYYY-MM-DD keys.
type moveRequest struct {
	ID             int64  `json:"id"`
	From           string `json:"from"`
	To             string `json:"to"`
	FromIndex      int    `json:"from_index"`
	ToIndex        int    `json:"to_index"`
	AllowDuplicate bool   `json:"allow_duplicate"`
}

type recommendRequest struct {
	Profile account.Profile `json:"profile"`
	Date    string          `json:"date"`
}

type recommendResponse struct {
	account.Comparison
	Date  string             `json:"date"`
	Items []planner.PlanItem `json:"plan_items"`
}

func parseDay(key, field string) (time.Time, error) {
	t, err := planner.ParseDateKey(key)
	if err != nil {
		return time.Time{}, badRequest("%s must be a YYYY-MM-DD date", field)
	}
	return t, nil
}

// handleGetPlan returns the caller's week; week=0 is the current one.
func (s *Server) handleGetPlan(w http.ResponseWriter, r *http.Request) {
	offset, err := queryInt(r, "week", 0)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	week, err := s.app.Planner.Week(r.Context(), callerUID(r), s.now(), offset)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, week)
}

func (s *Server) handleAddPlanItem(w http.ResponseWriter, r *http.Request) {
	var req addPlanItemRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	day, err := parseDay(req.Date, "date")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	item, err := s.app.Planner.Add(r.Context(), callerUID(r), req.RecipeID, day)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (s *Server) handleRemovePlanItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.app.Planner.Remove(r.Context(), callerUID(r), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleMovePlanItem applies a drag-and-drop. A drop that would repeat a
// recipe on its destination day answers 409 unless allow_duplicate is set;
// stale or malformed drops answer 200 with status "ignored".
func (s *Server) handleMovePlanItem(w http.ResponseWriter, r *http.Request) {
	var req moveRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	from, err := parseDay(req.From, "from")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	to, err := parseDay(req.To, "to")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	mv := planner.Move{ID: req.ID, From: from, To: to, FromIndex: req.FromIndex, ToIndex: req.ToIndex}
	res, err := s.app.Planner.Move(r.Context(), callerUID(r), mv, req.AllowDuplicate)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if res.From == nil {
		res.From = []planner.PlanItem{}
	}
	if res.To == nil {
		res.To = []planner.PlanItem{}
	}
	writeJSON(w, http.StatusOK, res)
}

// handleRecommend compares the calories planned on a day with the target
// computed from the posted body profile.
func (s *Server) handleRecommend(w http.ResponseWriter, r *http.Request) {
	var req recommendRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	day := planner.Day(s.now())
	if req.Date != "" {
		d, err := parseDay(req.Date, "date")
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		day = d
	}

	target, err := account.RecommendCalories(req.Profile)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	actual, items, err := s.app.Planner.DayCalories(r.Context(), callerUID(r), day)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if items == nil {
		items = []planner.PlanItem{}
	}
	writeJSON(w, http.StatusOK, recommendResponse{
		Comparison: account.CompareDay(target, actual),
		Date:       planner.DateKey(day),
		Items:      items,
	})
}
