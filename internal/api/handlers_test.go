package api

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tasteal/internal/cart"
	"tasteal/internal/chat"
	"tasteal/internal/metrics"
	"tasteal/internal/pantry"
	"tasteal/internal/planner"
	"tasteal/internal/recipe"
	"tasteal/internal/testutil"
)

type seeded struct {
	rice, egg int64
}

func (ts *testServer) seedCatalog() seeded {
	ts.t.Helper()
	db := ts.app.DB.SQL
	grains := testutil.InsertIngredientType(ts.t, db, "Grains")
	protein := testutil.InsertIngredientType(ts.t, db, "Protein")
	return seeded{
		rice: testutil.InsertIngredient(ts.t, db, "Rice", grains, testutil.Nutrition{Calories: 130, Carbohydrates: 28}),
		egg:  testutil.InsertIngredient(ts.t, db, "Egg", protein, testutil.Nutrition{Calories: 155, Protein: 13}),
	}
}

func (ts *testServer) createRecipe(uid string, body map[string]any) int64 {
	ts.t.Helper()
	rec := ts.do(http.MethodPost, "/api/recipes", uid, body)
	require.Equal(ts.t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[map[string]int64](ts.t, rec)["id"]
}

func riceBowl(c seeded, private bool) map[string]any {
	return map[string]any{
		"name":         "Cơm trứng",
		"serving_size": 2,
		"total_time":   25,
		"is_private":   private,
		"ingredients": []map[string]any{
			{"ingredient_id": c.rice, "amount": 200},
			{"ingredient_id": c.egg, "amount": 100},
		},
		"directions": []map[string]any{{"direction": "Cook rice."}, {"direction": "Fry egg."}},
	}
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.do(http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decode[metrics.SysHealth](t, rec).Status)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestAuthentication(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodGet, "/api/plan", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "authentication required", errorOf(t, rec))

	req := httptest.NewRequest(http.MethodGet, "/api/recipes", nil)
	req.Header.Set("Authorization", "Bearer nope")
	rec = httptest.NewRecorder()
	ts.h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "invalid or expired token", errorOf(t, rec))

	assert.Equal(t, http.StatusOK, ts.do(http.MethodGet, "/api/recipes", "", nil).Code, "public routes allow anonymous callers")
}

func TestRecipes(t *testing.T) {
	ts := newTestServer(t)
	c := ts.seedCatalog()

	id := ts.createRecipe("u1", riceBowl(c, false))
	privateID := ts.createRecipe("u1", riceBowl(c, true))

	t.Run("detail with nutrition per serving", func(t *testing.T) {
		rec := ts.do(http.MethodGet, fmt.Sprintf("/api/recipes/%d", id), "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		type detailBody struct {
			recipe.Recipe
			Nutrition recipe.Nutrition `json:"nutrition_per_serving"`
		}
		detail := decode[detailBody](t, rec)
		assert.Equal(t, "u1", detail.Author)
		assert.Len(t, detail.Directions, 2)
		// (200*130/100 + 100*155/100) / 2 servings
		assert.InDelta(t, 207.5, detail.Nutrition.Calories, 0.001)
	})

	t.Run("private recipes stay with their author", func(t *testing.T) {
		path := fmt.Sprintf("/api/recipes/%d", privateID)
		assert.Equal(t, http.StatusNotFound, ts.do(http.MethodGet, path, "u2", nil).Code)
		assert.Equal(t, http.StatusOK, ts.do(http.MethodGet, path, "u1", nil).Code)

		public := decode[[]recipe.Card](t, ts.do(http.MethodGet, "/api/accounts/u1/recipes", "", nil))
		own := decode[[]recipe.Card](t, ts.do(http.MethodGet, "/api/accounts/u1/recipes", "u1", nil))
		assert.Len(t, public, 1)
		assert.Len(t, own, 2)

		plan := map[string]any{"recipe_id": privateID, "date": "2024-03-04"}
		assert.Equal(t, http.StatusNotFound, ts.do(http.MethodPost, "/api/plan/items", "u2", plan).Code)
		cartBody := map[string]any{"recipe_id": privateID, "serving_size": 2}
		assert.Equal(t, http.StatusNotFound, ts.do(http.MethodPost, "/api/cart", "u2", cartBody).Code)
	})

	t.Run("validation", func(t *testing.T) {
		rec := ts.do(http.MethodPost, "/api/recipes", "u1", map[string]any{"name": "Empty", "serving_size": 1})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, errorOf(t, rec), "ingredient")

		rec = ts.do(http.MethodPost, "/api/recipes", "u1", map[string]any{"bogus": true})
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		assert.Equal(t, http.StatusBadRequest, ts.do(http.MethodGet, "/api/recipes/abc", "", nil).Code)
		assert.Equal(t, http.StatusNotFound, ts.do(http.MethodGet, "/api/recipes/999", "", nil).Code)
	})

	t.Run("rating", func(t *testing.T) {
		path := fmt.Sprintf("/api/recipes/%d/rating", id)
		require.Equal(t, http.StatusOK, ts.do(http.MethodPut, path, "u1", map[string]any{"rating": 5}).Code)
		rec := ts.do(http.MethodPut, path, "u2", map[string]any{"rating": 2})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.InDelta(t, 3.5, decode[map[string]float64](t, rec)["rating"], 0.001)

		assert.Equal(t, http.StatusBadRequest, ts.do(http.MethodPut, path, "u2", map[string]any{"rating": 9}).Code)

		detail := decode[recipe.Recipe](t, ts.do(http.MethodGet, fmt.Sprintf("/api/recipes/%d", id), "", nil))
		assert.InDelta(t, 3.5, detail.Rating, 0.001, "rating invalidates the cached recipe")
	})

	t.Run("comments", func(t *testing.T) {
		path := fmt.Sprintf("/api/recipes/%d/comments", id)
		rec := ts.do(http.MethodPost, path, "u2", map[string]any{"comment": " Ngon quá! "})
		require.Equal(t, http.StatusCreated, rec.Code)
		c := decode[recipe.Comment](t, rec)
		assert.Equal(t, "Ngon quá!", c.Comment)

		list := decode[[]recipe.Comment](t, ts.do(http.MethodGet, path, "", nil))
		require.Len(t, list, 1)

		del := fmt.Sprintf("%s/%d", path, c.ID)
		assert.Equal(t, http.StatusForbidden, ts.do(http.MethodDelete, del, "u1", nil).Code)
		assert.Equal(t, http.StatusNoContent, ts.do(http.MethodDelete, del, "u2", nil).Code)
	})

	t.Run("listings and search", func(t *testing.T) {
		cards := decode[[]recipe.Card](t, ts.do(http.MethodGet, "/api/recipes?page=1&page_size=10", "", nil))
		assert.Len(t, cards, 1)

		rec := ts.do(http.MethodPost, "/api/recipes/search", "", map[string]any{"text": "com", "ingredient_ids": []int64{c.egg}})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, decode[[]recipe.Card](t, rec), 1)

		assert.Equal(t, http.StatusOK, ts.do(http.MethodGet, "/api/recipes/newest?limit=5", "", nil).Code)
		assert.Equal(t, http.StatusOK, ts.do(http.MethodGet, "/api/recipes/trending", "", nil).Code)
		assert.Equal(t, http.StatusOK, ts.do(http.MethodGet, "/api/recipes/keywords", "", nil).Code)
		assert.Equal(t, http.StatusBadRequest, ts.do(http.MethodGet, "/api/recipes?page=x", "", nil).Code)
	})

	t.Run("delete", func(t *testing.T) {
		path := fmt.Sprintf("/api/recipes/%d", id)
		assert.Equal(t, http.StatusForbidden, ts.do(http.MethodDelete, path, "u2", nil).Code)
		assert.Equal(t, http.StatusNoContent, ts.do(http.MethodDelete, path, "u1", nil).Code)
		assert.Equal(t, http.StatusNotFound, ts.do(http.MethodGet, path, "", nil).Code)
	})
}

func TestImportRejectsBadURL(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.do(http.MethodPost, "/api/recipes/import", "u1", map[string]any{"url": "ftp://example.com/x"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCatalog(t *testing.T) {
	ts := newTestServer(t)
	ts.seedCatalog()
	testutil.InsertOccasion(t, ts.app.DB.SQL, "Tết", 20, 80)
	testutil.InsertOccasion(t, ts.app.DB.SQL, "Trung thu", 250, 270)

	assert.Len(t, decode[[]map[string]any](t, ts.do(http.MethodGet, "/api/occasions", "", nil)), 2)

	// 6 March is day 66 of 2024
	current := decode[[]map[string]any](t, ts.do(http.MethodGet, "/api/occasions/current", "", nil))
	require.Len(t, current, 1)
	assert.Equal(t, "Tết", current[0]["name"])

	assert.Len(t, decode[[]map[string]any](t, ts.do(http.MethodGet, "/api/ingredient-types", "", nil)), 2)
	assert.Len(t, decode[[]map[string]any](t, ts.do(http.MethodGet, "/api/ingredients?q=RI", "", nil)), 1)
	assert.Equal(t, http.StatusBadRequest, ts.do(http.MethodGet, "/api/ingredients?type_id=x", "", nil).Code)
}

func TestCreateIngredient(t *testing.T) {
	ts := newTestServer(t)
	ts.seedCatalog()
	types := decode[[]map[string]any](t, ts.do(http.MethodGet, "/api/ingredient-types", "", nil))
	require.NotEmpty(t, types)
	typeID := int64(types[0]["id"].(float64))

	body := map[string]any{"name": "Tofu", "type_id": typeID, "nutrition_info": map[string]any{"calories": 76}}
	assert.Equal(t, http.StatusUnauthorized, ts.do(http.MethodPost, "/api/ingredients", "", body).Code)
	assert.Equal(t, http.StatusForbidden, ts.do(http.MethodPost, "/api/ingredients", "u1", body).Code)

	rec := ts.do(http.MethodPost, "/api/ingredients", "admin", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[map[string]any](t, rec)
	assert.NotZero(t, created["id"])
	assert.Equal(t, types[0]["name"], created["type_name"])
	assert.Equal(t, 1.0, created["ratio"])
	assert.Len(t, decode[[]map[string]any](t, ts.do(http.MethodGet, "/api/ingredients?q=tofu", "", nil)), 1)

	unknown := map[string]any{"name": "Seitan", "type_id": 999}
	assert.Equal(t, http.StatusBadRequest, ts.do(http.MethodPost, "/api/ingredients", "admin", unknown).Code)
	unnamed := map[string]any{"name": "  ", "type_id": typeID}
	assert.Equal(t, http.StatusBadRequest, ts.do(http.MethodPost, "/api/ingredients", "admin", unnamed).Code)
}

func TestPlan(t *testing.T) {
	ts := newTestServer(t)
	c := ts.seedCatalog()
	recipeID := ts.createRecipe("u1", riceBowl(c, false))

	add := func(date string) planner.PlanItem {
		rec := ts.do(http.MethodPost, "/api/plan/items", "u1", map[string]any{"recipe_id": recipeID, "date": date})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		return decode[planner.PlanItem](t, rec)
	}
	monday := add("2024-03-04")
	tuesday := add("2024-03-05")
	assert.Equal(t, 1, tuesday.Order)

	rec := ts.do(http.MethodPost, "/api/plan/items", "u1", map[string]any{"recipe_id": 999, "date": "2024-03-04"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = ts.do(http.MethodPost, "/api/plan/items", "u1", map[string]any{"recipe_id": recipeID, "date": "04/03/2024"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	week := decode[[]planner.WeekDate](t, ts.do(http.MethodGet, "/api/plan?week=0", "u1", nil))
	require.Len(t, week, 7)
	assert.Equal(t, "Monday", week[0].Label)
	assert.Len(t, week[0].PlanItems, 1)
	assert.Len(t, week[1].PlanItems, 1)
	assert.Empty(t, decode[[]planner.WeekDate](t, ts.do(http.MethodGet, "/api/plan?week=0", "u2", nil))[0].PlanItems)

	move := map[string]any{"id": tuesday.ID, "from": "2024-03-05", "to": "2024-03-04", "from_index": 0, "to_index": 0}

	t.Run("duplicate is blocked", func(t *testing.T) {
		rec := ts.do(http.MethodPost, "/api/plan/move", "u1", move)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("stale drop is ignored", func(t *testing.T) {
		stale := map[string]any{"id": tuesday.ID, "from": "2024-03-05", "to": "2024-03-04", "from_index": 3, "to_index": 0}
		rec := ts.do(http.MethodPost, "/api/plan/move", "u1", stale)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "ignored", decode[planner.MoveResult](t, rec).Status)
	})

	t.Run("confirmed duplicate is applied", func(t *testing.T) {
		move["allow_duplicate"] = true
		rec := ts.do(http.MethodPost, "/api/plan/move", "u1", move)
		require.Equal(t, http.StatusOK, rec.Code)
		res := decode[planner.MoveResult](t, rec)
		assert.Equal(t, "applied", res.Status)
		assert.Empty(t, res.From)
		require.Len(t, res.To, 2)
		assert.Equal(t, tuesday.ID, res.To[0].ID)
		assert.Equal(t, monday.ID, res.To[1].ID)
		assert.Equal(t, 2, res.To[1].Order)
	})

	t.Run("recommend", func(t *testing.T) {
		body := map[string]any{
			"date":    "2024-03-04",
			"profile": map[string]any{"weight": 60, "height": 176, "age": 30, "male": false, "rate": 1.2, "intend": "keep"},
		}
		rec := ts.do(http.MethodPost, "/api/plan/recommend", "u1", body)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		got := decode[map[string]any](t, rec)
		assert.Equal(t, "under", got["status"])
		assert.InDelta(t, 415, got["actual"], 0.001, "two servings of 207.5 kcal")
		assert.Len(t, got["plan_items"], 2)

		body["profile"] = map[string]any{"weight": 60}
		assert.Equal(t, http.StatusBadRequest, ts.do(http.MethodPost, "/api/plan/recommend", "u1", body).Code)
	})

	t.Run("remove", func(t *testing.T) {
		path := fmt.Sprintf("/api/plan/items/%d", tuesday.ID)
		assert.Equal(t, http.StatusNotFound, ts.do(http.MethodDelete, path, "u2", nil).Code)
		assert.Equal(t, http.StatusNoContent, ts.do(http.MethodDelete, path, "u1", nil).Code)

		week := decode[[]planner.WeekDate](t, ts.do(http.MethodGet, "/api/plan", "u1", nil))
		require.Len(t, week[0].PlanItems, 1)
		assert.Equal(t, 1, week[0].PlanItems[0].Order)
	})
}

func TestCartPantryAndGrocery(t *testing.T) {
	ts := newTestServer(t)
	c := ts.seedCatalog()
	recipeID := ts.createRecipe("u1", riceBowl(c, false))

	rec := ts.do(http.MethodPost, "/api/cart", "u1", map[string]any{"recipe_id": recipeID, "serving_size": 4})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	cartID := decode[map[string]int64](t, rec)["id"]
	assert.Equal(t, http.StatusNotFound, ts.do(http.MethodPost, "/api/cart", "u1", map[string]any{"recipe_id": 404}).Code)

	carts := decode[[]cart.Cart](t, ts.do(http.MethodGet, "/api/cart", "u1", nil))
	require.Len(t, carts, 1)
	assert.Equal(t, 4, carts[0].ServingSize)

	rec = ts.do(http.MethodPost, "/api/cart/personal", "u1", map[string]any{"ingredient_id": c.egg, "amount": 60})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	personal := decode[cart.PersonalItem](t, rec)
	assert.Equal(t, "Egg", personal.Name)
	assert.Equal(t, http.StatusNotFound, ts.do(http.MethodPost, "/api/cart/personal", "u1", map[string]any{"ingredient_id": 999, "amount": 1}).Code)

	rec = ts.do(http.MethodPost, "/api/pantry", "u1", map[string]any{"ingredient_id": c.rice, "amount": 150})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	stocked := decode[pantry.Item](t, rec)

	groups := decode[[]pantry.Group](t, ts.do(http.MethodGet, "/api/pantry?q=ric", "u1", nil))
	require.Len(t, groups, 2)
	assert.Equal(t, "Grains", groups[0].Type.Name)
	require.Len(t, groups[0].Items, 1)

	rows := decode[[]cart.GroceryRow](t, ts.do(http.MethodGet, "/api/cart/grocery", "u1", nil))
	byName := map[string]cart.GroceryRow{}
	for _, r := range rows {
		byName[r.Name] = r
	}
	// 200 g rice for 2 servings scaled to 4, less 150 g in the pantry
	assert.InDelta(t, 400, byName["Rice"].Required, 0.001)
	assert.InDelta(t, 250, byName["Rice"].ToBuy, 0.001)
	// 100 g egg scaled to 4 servings plus 60 g added by hand
	assert.InDelta(t, 260, byName["Egg"].Required, 0.001)

	rec = ts.do(http.MethodGet, "/api/cart/grocery.xlsx", "u1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "spreadsheetml")
	assert.True(t, strings.HasPrefix(rec.Body.String(), "PK"), "xlsx is a zip archive")

	assert.Equal(t, http.StatusNoContent, ts.do(http.MethodPut, fmt.Sprintf("/api/cart/%d", cartID), "u1", map[string]any{"serving_size": 2}).Code)
	assert.Equal(t, http.StatusBadRequest, ts.do(http.MethodPut, fmt.Sprintf("/api/cart/%d", cartID), "u1", map[string]any{"serving_size": 0}).Code)
	assert.Equal(t, http.StatusNotFound, ts.do(http.MethodPut, fmt.Sprintf("/api/cart/%d", cartID), "u2", map[string]any{"serving_size": 2}).Code)

	assert.Equal(t, http.StatusNoContent, ts.do(http.MethodPut, fmt.Sprintf("/api/cart/personal/%d", personal.ID), "u1", map[string]any{"amount": 60, "is_bought": true}).Code)
	rows = decode[[]cart.GroceryRow](t, ts.do(http.MethodGet, "/api/cart/grocery", "u1", nil))
	for _, r := range rows {
		if r.Name == "Egg" {
			assert.InDelta(t, 100, r.Required, 0.001, "bought personal items drop off the list")
		}
	}

	pantryPath := fmt.Sprintf("/api/pantry/%d", stocked.ID)
	rec = ts.do(http.MethodPut, pantryPath, "u1", map[string]any{"amount": 500})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.InDelta(t, 500, decode[pantry.Item](t, rec).Amount, 0.001)
	assert.Equal(t, http.StatusNotFound, ts.do(http.MethodGet, pantryPath, "u2", nil).Code)
	assert.Equal(t, http.StatusNoContent, ts.do(http.MethodDelete, pantryPath, "u1", nil).Code)

	assert.Equal(t, http.StatusNoContent, ts.do(http.MethodDelete, fmt.Sprintf("/api/cart/personal/%d", personal.ID), "u1", nil).Code)
	assert.Equal(t, http.StatusNoContent, ts.do(http.MethodDelete, fmt.Sprintf("/api/cart/%d", cartID), "u1", nil).Code)
	assert.Equal(t, http.StatusNoContent, ts.do(http.MethodDelete, "/api/cart", "u1", nil).Code)
	assert.Empty(t, decode[[]cart.Cart](t, ts.do(http.MethodGet, "/api/cart", "u1", nil)))
}

func TestAccounts(t *testing.T) {
	ts := newTestServer(t)

	assert.Equal(t, http.StatusNotFound, ts.do(http.MethodGet, "/api/accounts/me", "u1", nil).Code)

	rec := ts.do(http.MethodPut, "/api/accounts/me", "u1", map[string]any{"name": "Lan", "slogan": "Ăn ngon"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	got := decode[map[string]any](t, ts.do(http.MethodGet, "/api/accounts/u1", "", nil))
	assert.Equal(t, "Lan", got["name"])
	assert.NotContains(t, got, "telegram_chat_id")
}

func TestChats(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodPost, "/api/chats", "u1", map[string]any{"receiver": "u2", "text": "Chào bạn"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = ts.multipart("/api/chats", "u2", map[string]string{"receiver": "u1"}, "images", map[string][]byte{"bun.png": []byte("png-bytes")})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	msg := decode[chat.Message](t, rec)
	require.Len(t, msg.Images, 1)
	assert.True(t, strings.HasPrefix(msg.Images[0], "http://tasteal.test/images/chatImages/u2_"))

	inbox := decode[[]chat.Conversation](t, ts.do(http.MethodGet, "/api/chats", "u1", nil))
	require.Len(t, inbox, 1)
	assert.Equal(t, "u2", inbox[0].With)
	assert.False(t, inbox[0].IsRead)

	path := "/api/chats/" + chat.CombinedID("u1", "u2") + "/messages"
	msgs := decode[[]chat.Message](t, ts.do(http.MethodGet, path, "u1", nil))
	assert.Len(t, msgs, 2)
	assert.Equal(t, http.StatusForbidden, ts.do(http.MethodGet, path, "u3", nil).Code)

	assert.Equal(t, http.StatusBadRequest, ts.do(http.MethodPost, "/api/chats", "u1", map[string]any{"receiver": "u1", "text": "me"}).Code)
	assert.Equal(t, http.StatusBadRequest, ts.do(http.MethodPost, "/api/chats", "u1", map[string]any{"receiver": "u2"}).Code)
	rec = ts.multipart("/api/chats", "u1", map[string]string{"receiver": "u2"}, "images", map[string][]byte{"x.exe": []byte("MZ")})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestImages(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.multipart("/api/images", "u1", map[string]string{"folder": "avatars"}, "file", map[string][]byte{"me.JPG": []byte("jpeg-bytes")})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	up := decode[uploadResponse](t, rec)
	assert.True(t, strings.HasPrefix(up.Path, "avatars/u1_"))
	assert.True(t, strings.HasSuffix(up.Path, ".jpg"))
	assert.Equal(t, "http://tasteal.test/images/"+up.Path, up.URL)

	rec = ts.do(http.MethodGet, "/images/"+up.Path, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "jpeg-bytes", rec.Body.String())

	assert.Equal(t, http.StatusNotFound, ts.do(http.MethodGet, "/images/avatars/missing.jpg", "", nil).Code)
	assert.Equal(t, http.StatusNotFound, ts.do(http.MethodGet, "/images/avatars", "", nil).Code)

	rec = ts.multipart("/api/images", "u1", map[string]string{"folder": "../etc"}, "file", map[string][]byte{"me.jpg": []byte("x")})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminMetrics(t *testing.T) {
	ts := newTestServer(t)
	assert.Equal(t, http.StatusForbidden, ts.do(http.MethodGet, "/api/admin/metrics", "u1", nil).Code)

	rec := ts.do(http.MethodGet, "/api/admin/metrics?days=3", "admin", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[[]metrics.DailyUsage](t, rec))
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{recipe.ErrNotFound, http.StatusNotFound},
		{fmt.Errorf("wrapped: %w", pantry.ErrNotFound), http.StatusNotFound},
		{recipe.ErrForbidden, http.StatusForbidden},
		{planner.ErrDuplicateRecipe, http.StatusConflict},
		{badRequest("nope"), http.StatusBadRequest},
		{chat.ErrEmptyMessage, http.StatusBadRequest},
		{errors.New("disk on fire"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), tt.err.Error())
	}
}
