package catalog

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tasteal/internal/testutil"
)

const sampleCatalogue = `
ingredient_types = ["Rau củ", "Thịt"]

[[ingredients]]
name = "Cà rốt"
type = "Rau củ"
calories = 41
fiber = 2.8

[[ingredients]]
name = "Thịt bò"
type = "Thịt"
calories = 250
protein = 26

[[ingredients]]
name = "Nước mắm"
type = "Gia vị"
is_liquid = true
ratio = 1.2

[[occasions]]
name = "Tết"
start_day = 20
end_day = 50
is_lunar = true

[[occasions]]
name = "Christmas"
start_day = 355
end_day = 2
`

func TestSeed(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(testutil.OpenDB(t))

	stats, err := Seed(ctx, repo, strings.NewReader(sampleCatalogue))
	require.NoError(t, err)
	assert.Equal(t, SeedStats{IngredientTypes: 3, Ingredients: 3, Occasions: 2}, stats)

	// seeding again updates in place
	_, err = Seed(ctx, repo, strings.NewReader(sampleCatalogue))
	require.NoError(t, err)

	types, err := repo.ListIngredientTypes(ctx)
	require.NoError(t, err)
	assert.Len(t, types, 3)

	ings, err := repo.ListIngredients(ctx, "", 0)
	require.NoError(t, err)
	require.Len(t, ings, 3)

	sauce, err := repo.ListIngredients(ctx, "nuoc mam", 0)
	require.NoError(t, err)
	require.Len(t, sauce, 1)
	assert.True(t, sauce[0].IsLiquid)
	assert.Equal(t, 1.2, sauce[0].Ratio)
	assert.Equal(t, "Gia vị", sauce[0].TypeName)

	beef, err := repo.GetIngredient(ctx, ings[len(ings)-1].ID)
	require.NoError(t, err)
	assert.Equal(t, "Thịt bò", beef.Name)
	assert.Equal(t, 26.0, beef.Nutrition.Protein)
	assert.Equal(t, 1.0, beef.Ratio)

	byType, err := repo.ListIngredients(ctx, "", beef.TypeID)
	require.NoError(t, err)
	assert.Len(t, byType, 1)

	_, err = repo.GetIngredient(ctx, 9999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSeed_RejectsUnknownKeys(t *testing.T) {
	repo := NewRepository(testutil.OpenDB(t))
	_, err := Seed(context.Background(), repo, strings.NewReader("[[ingredients]]\nname = \"x\"\ncolour = \"red\"\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "colour")
}

func TestCurrentOccasions(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(testutil.OpenDB(t))
	_, err := Seed(ctx, repo, strings.NewReader(sampleCatalogue))
	require.NoError(t, err)

	tests := []struct {
		name string
		date time.Time
		want []string
	}{
		{"inside range", time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC), []string{"Tết"}},
		{"wrapping range before new year", time.Date(2024, 12, 25, 0, 0, 0, 0, time.UTC), []string{"Christmas"}},
		{"wrapping range after new year", time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC), []string{"Christmas"}},
		{"no occasion", time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC), []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.CurrentOccasions(ctx, tt.date)
			require.NoError(t, err)
			names := []string{}
			for _, o := range got {
				names = append(names, o.Name)
			}
			assert.Equal(t, tt.want, names)
		})
	}
}
