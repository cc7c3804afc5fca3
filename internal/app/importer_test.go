package app

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"tasteal/internal/catalog"
	"tasteal/internal/clipper"
	"tasteal/internal/ghost"
	"tasteal/internal/recipe"
	"tasteal/internal/testutil"
)

func TestMatchIngredients(t *testing.T) {
	catalogue := []catalog.Ingredient{
		{ID: 1, Name: "Rice"},
		{ID: 2, Name: "Rice noodles"},
		{ID: 3, Name: "Egg"},
		{ID: 4, Name: "Beef"},
		{ID: 5, Name: "Fish sauce", IsLiquid: true},
	}
	lines := []string{
		"200 g rice noodles",
		"100 g rice, washed",
		"2 eggs",
		"1 tbsp fish sauce",
		"salt to taste",
		"50 g rice",
	}

	matched, unmatched := MatchIngredients(lines, catalogue)

	type row struct {
		ID     int64
		Amount float64
	}
	var got []row
	for _, m := range matched {
		got = append(got, row{m.IngredientID, m.Amount})
	}
	want := []row{{2, 200}, {1, 150}, {3, 100}, {5, 15}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("matched mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []string{"salt to taste"}, unmatched)
	assert.True(t, matched[3].IsLiquid)
	assert.Equal(t, "200 g rice noodles", matched[0].Note)
}

type importFixture struct {
	importer *Importer
	recipes  *recipe.Repository
}

func newImportFixture(t *testing.T) importFixture {
	t.Helper()
	db := testutil.OpenDB(t)
	grains := testutil.InsertIngredientType(t, db, "Grains")
	protein := testutil.InsertIngredientType(t, db, "Protein")
	testutil.InsertIngredient(t, db, "Rice", grains, testutil.Nutrition{Calories: 130})
	testutil.InsertIngredient(t, db, "Trứng", protein, testutil.Nutrition{Calories: 155})

	recipes := recipe.NewRepository(db)
	return importFixture{
		importer: NewImporter(recipes, catalog.NewRepository(db), zap.NewNop()),
		recipes:  recipes,
	}
}

func TestImporter_Import(t *testing.T) {
	ctx := context.Background()
	f := newImportFixture(t)

	draft := &clipper.Draft{
		Name:        "Cơm chiên trứng",
		ServingSize: 2,
		TotalTime:   20,
		Ingredients: []string{"300 g rice", "2 trung", "1 tsp MSG"},
		Directions:  []string{"Scramble the eggs.", "Fry the rice."},
		SourceURL:   "https://example.com/com-chien",
	}
	res, err := f.importer.Import(ctx, draft, "u1", false)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Matched)
	assert.Equal(t, []string{"1 tsp MSG"}, res.Unmatched)

	rec, err := f.recipes.Get(ctx, res.RecipeID)
	require.NoError(t, err)
	assert.Equal(t, "u1", rec.Author)
	assert.Equal(t, "Source: https://example.com/com-chien", rec.AuthorNote)
	require.Len(t, rec.Ingredients, 2)
	require.Len(t, rec.Directions, 2)
	assert.Equal(t, 2, rec.Directions[1].Step)

	_, err = f.importer.Import(ctx, &clipper.Draft{Name: "Air", Ingredients: []string{"1 cup air"}}, "u1", false)
	assert.ErrorIs(t, err, recipe.ErrInvalid)
}

type fakeGhost struct {
	posts []ghost.Post
	err   error
}

func (f fakeGhost) FetchPosts(context.Context) ([]ghost.Post, error) {
	return f.posts, f.err
}

const ghostRecipeHTML = `<p>Our favourite.</p>
<script type="application/ld+json">
{"@type":"Recipe","name":"Egg fried rice","recipeYield":"2 servings",
 "recipeIngredient":["250 g rice","3 trứng"],"recipeInstructions":["Fry."]}
</script>`

func TestImporter_IngestGhost(t *testing.T) {
	ctx := context.Background()
	f := newImportFixture(t)
	clip := clipper.NewClipper(nil, zap.NewNop())

	client := fakeGhost{posts: []ghost.Post{
		{ID: "p1", Title: "Egg fried rice", HTML: ghostRecipeHTML, FeatureImage: "https://blog/img.jpg", Excerpt: "Quick dinner"},
		{ID: "p2", Title: "Travel notes", HTML: "<p>No food here.</p>"},
	}}

	stats, err := f.importer.IngestGhost(ctx, client, clip, "blog")
	require.NoError(t, err)
	assert.Equal(t, IngestStats{Fetched: 2, Imported: 1, Failed: 1}, stats)

	cards, err := f.recipes.ListByAuthor(ctx, "blog", true)
	require.NoError(t, err)
	require.Len(t, cards, 1)
	rec, err := f.recipes.Get(ctx, cards[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "https://blog/img.jpg", rec.Image)
	assert.Equal(t, "Quick dinner", rec.Introduction)
	assert.Equal(t, 2, rec.ServingSize)

	again, err := f.importer.IngestGhost(ctx, client, clip, "blog")
	require.NoError(t, err)
	assert.Equal(t, IngestStats{Fetched: 2, Skipped: 1, Failed: 1}, again)

	_, err = f.importer.IngestGhost(ctx, fakeGhost{err: errors.New("down")}, clip, "blog")
	assert.Error(t, err)
}
