package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"

	"go.uber.org/zap"

	"tasteal/internal/account"
	"tasteal/internal/auth"
	"tasteal/internal/cart"
	"tasteal/internal/catalog"
	"tasteal/internal/chat"
	"tasteal/internal/clipper"
	"tasteal/internal/pantry"
	"tasteal/internal/planner"
	"tasteal/internal/recipe"
	"tasteal/internal/storage"
)

const maxJSONBody = 1 << 20

var (
	errBadRequest = errors.New("bad request")
	errForbidden  = errors.New("forbidden")
)

func badRequest(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errBadRequest, fmt.Sprintf(format, args...))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(true)
	_ = enc.Encode(v)
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, recipe.ErrNotFound),
		errors.Is(err, catalog.ErrNotFound),
		errors.Is(err, cart.ErrNotFound),
		errors.Is(err, pantry.ErrNotFound),
		errors.Is(err, account.ErrNotFound),
		errors.Is(err, chat.ErrNotFound),
		errors.Is(err, planner.ErrPlanItemNotFound),
		errors.Is(err, planner.ErrRecipeNotFound),
		errors.Is(err, cart.ErrRecipeNotFound),
		errors.Is(err, os.ErrNotExist):
		return http.StatusNotFound
	case errors.Is(err, recipe.ErrForbidden),
		errors.Is(err, chat.ErrNotParticipant),
		errors.Is(err, errForbidden):
		return http.StatusForbidden
	case errors.Is(err, planner.ErrDuplicateRecipe):
		return http.StatusConflict
	case errors.Is(err, errBadRequest),
		errors.Is(err, recipe.ErrInvalid),
		errors.Is(err, cart.ErrInvalid),
		errors.Is(err, catalog.ErrInvalid),
		errors.Is(err, pantry.ErrInvalid),
		errors.Is(err, account.ErrInvalidProfile),
		errors.Is(err, chat.ErrEmptyMessage),
		errors.Is(err, chat.ErrInvalidParticipants),
		errors.Is(err, storage.ErrInvalidPath),
		errors.Is(err, clipper.ErrNoRecipe):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders err as {"error": "..."}. Internal errors are logged
// and hidden from the client.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err))
		msg = "internal server error"
	}
	writeJSON(w, status, map[string]string{"error": msg})
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxJSONBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return badRequest("invalid json: %v", err)
	}
	return nil
}

func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, badRequest("invalid %s %q", name, r.PathValue(name))
	}
	return id, nil
}

// queryInt reads an integer query parameter, falling back to def when it
// is absent.
func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, badRequest("invalid %s %q", name, raw)
	}
	return n, nil
}

func callerUID(r *http.Request) string {
	uid, _ := auth.UID(r.Context())
	return uid
}
