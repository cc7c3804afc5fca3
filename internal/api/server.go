// Package api exposes Tasteal over HTTP.
package api

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"tasteal/internal/app"
	"tasteal/internal/auth"
)

// Server routes HTTP requests to the application components.
type Server struct {
	app    *app.App
	logger *zap.Logger
	mux    *http.ServeMux
	now    func() time.Time
}

// NewServer registers every route on a fresh mux.
func NewServer(a *app.App, logger *zap.Logger) *Server {
	s := &Server{
		app:    a,
		logger: logger.Named("api"),
		mux:    http.NewServeMux(),
		now:    time.Now,
	}
	s.routes()
	return s
}

// Mount adds an extra handler, such as the Telegram webhook.
func (s *Server) Mount(pattern string, h http.Handler) {
	s.mux.Handle(pattern, h)
}

// Handler returns the mux wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	var h http.Handler = s.mux
	h = s.app.Issuer.Middleware(h)
	h = s.withRecover(h)
	h = withCommonHeaders(h)
	return s.withRequestLog(h)
}

func (s *Server) routes() {
	m := s.mux
	authed := func(pattern string, h http.HandlerFunc) {
		m.HandleFunc(pattern, auth.Require(h))
	}

	m.HandleFunc("GET /health", s.handleHealth)
	m.HandleFunc("GET /images/{path...}", s.handleServeImage)

	// recipes
	m.HandleFunc("GET /api/recipes", s.handleListRecipes)
	m.HandleFunc("GET /api/recipes/newest", s.handleNewestRecipes)
	m.HandleFunc("GET /api/recipes/trending", s.handleTrendingRecipes)
	m.HandleFunc("POST /api/recipes/search", s.handleSearchRecipes)
	m.HandleFunc("GET /api/recipes/keywords", s.handleKeywords)
	m.HandleFunc("GET /api/recipes/{id}", s.handleGetRecipe)
	authed("POST /api/recipes", s.handleCreateRecipe)
	authed("DELETE /api/recipes/{id}", s.handleDeleteRecipe)
	authed("PUT /api/recipes/{id}/rating", s.handleRateRecipe)
	m.HandleFunc("GET /api/recipes/{id}/comments", s.handleListComments)
	authed("POST /api/recipes/{id}/comments", s.handleAddComment)
	authed("DELETE /api/recipes/{id}/comments/{commentID}", s.handleDeleteComment)
	authed("POST /api/recipes/import", s.handleImportRecipe)

	// catalog
	m.HandleFunc("GET /api/occasions", s.handleListOccasions)
	m.HandleFunc("GET /api/occasions/current", s.handleCurrentOccasions)
	m.HandleFunc("GET /api/ingredient-types", s.handleListIngredientTypes)
	m.HandleFunc("GET /api/ingredients", s.handleListIngredients)
	authed("POST /api/ingredients", s.handleCreateIngredient)

	// plan
	authed("GET /api/plan", s.handleGetPlan)
	authed("POST /api/plan/items", s.handleAddPlanItem)
	authed("DELETE /api/plan/items/{id}", s.handleRemovePlanItem)
	authed("POST /api/plan/move", s.handleMovePlanItem)
	authed("POST /api/plan/recommend", s.handleRecommend)

	// cart
	authed("GET /api/cart", s.handleListCarts)
	authed("POST /api/cart", s.handleAddCart)
	authed("DELETE /api/cart", s.handleClearCarts)
	authed("PUT /api/cart/{id}", s.handleUpdateCart)
	authed("DELETE /api/cart/{id}", s.handleDeleteCart)
	authed("GET /api/cart/personal", s.handleListPersonal)
	authed("POST /api/cart/personal", s.handleAddPersonal)
	authed("PUT /api/cart/personal/{id}", s.handleUpdatePersonal)
	authed("DELETE /api/cart/personal/{id}", s.handleDeletePersonal)
	authed("GET /api/cart/grocery", s.handleGroceryList)
	authed("GET /api/cart/grocery.xlsx", s.handleGroceryExport)

	// pantry
	authed("GET /api/pantry", s.handleListPantry)
	authed("POST /api/pantry", s.handleUpsertPantry)
	authed("GET /api/pantry/{id}", s.handleGetPantry)
	authed("PUT /api/pantry/{id}", s.handleUpdatePantry)
	authed("DELETE /api/pantry/{id}", s.handleDeletePantry)

	// accounts
	authed("GET /api/accounts/me", s.handleGetMe)
	authed("PUT /api/accounts/me", s.handleUpdateMe)
	m.HandleFunc("GET /api/accounts/{uid}", s.handleGetAccount)
	m.HandleFunc("GET /api/accounts/{uid}/recipes", s.handleAccountRecipes)

	// chats
	authed("GET /api/chats", s.handleConversations)
	authed("POST /api/chats", s.handleSendMessage)
	authed("GET /api/chats/{combinedID}/messages", s.handleMessages)

	authed("POST /api/images", s.handleUploadImage)
	authed("GET /api/admin/metrics", s.handleAdminMetrics)
}
