package catalog

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/BurntSushi/toml"

	"tasteal/internal/recipe"
)

// Catalogue is the TOML document accepted by Seed.
type Catalogue struct {
	IngredientTypes []string         `toml:"ingredient_types"`
	Ingredients     []SeedIngredient `toml:"ingredients"`
	Occasions       []Occasion       `toml:"occasions"`
}

// SeedIngredient is an ingredient entry of a catalogue file. Type refers to an
// ingredient type by name and is created when missing.
type SeedIngredient struct {
	Name          string  `toml:"name"`
	Type          string  `toml:"type"`
	Image         string  `toml:"image"`
	IsLiquid      bool    `toml:"is_liquid"`
	Ratio         float64 `toml:"ratio"`
	Calories      float64 `toml:"calories"`
	Fat           float64 `toml:"fat"`
	Carbohydrates float64 `toml:"carbohydrates"`
	Protein       float64 `toml:"protein"`
	Fiber         float64 `toml:"fiber"`
	Sugars        float64 `toml:"sugars"`
	Sodium        float64 `toml:"sodium"`
}

// SeedStats counts what Seed wrote.
type SeedStats struct {
	IngredientTypes int
	Ingredients     int
	Occasions       int
}

// DecodeCatalogue parses a catalogue, rejecting unknown keys.
func DecodeCatalogue(r io.Reader) (*Catalogue, error) {
	var cat Catalogue
	meta, err := toml.NewDecoder(r).Decode(&cat)
	if err != nil {
		return nil, fmt.Errorf("parsing catalogue: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("unknown catalogue keys: %s", strings.Join(keys, ", "))
	}
	return &cat, nil
}

// Seed upserts every entry of a catalogue. Running it twice is harmless.
func Seed(ctx context.Context, repo *Repository, r io.Reader) (SeedStats, error) {
	var stats SeedStats
	cat, err := DecodeCatalogue(r)
	if err != nil {
		return stats, err
	}

	typeIDs := make(map[string]int64)
	ensureType := func(name string) (int64, error) {
		if id, ok := typeIDs[name]; ok {
			return id, nil
		}
		id, err := repo.EnsureIngredientType(ctx, name)
		if err != nil {
			return 0, err
		}
		typeIDs[name] = id
		stats.IngredientTypes++
		return id, nil
	}

	for _, name := range cat.IngredientTypes {
		if _, err := ensureType(name); err != nil {
			return stats, err
		}
	}

	for _, si := range cat.Ingredients {
		if si.Type == "" {
			return stats, fmt.Errorf("ingredient %q has no type", si.Name)
		}
		typeID, err := ensureType(si.Type)
		if err != nil {
			return stats, err
		}
		ing := Ingredient{
			Name:     si.Name,
			Image:    si.Image,
			TypeID:   typeID,
			IsLiquid: si.IsLiquid,
			Ratio:    si.Ratio,
			Nutrition: recipe.Nutrition{
				Calories:      si.Calories,
				Fat:           si.Fat,
				Carbohydrates: si.Carbohydrates,
				Protein:       si.Protein,
				Fiber:         si.Fiber,
				Sugars:        si.Sugars,
				Sodium:        si.Sodium,
			},
		}
		if err := repo.UpsertIngredient(ctx, &ing); err != nil {
			return stats, err
		}
		stats.Ingredients++
	}

	for i := range cat.Occasions {
		if err := repo.UpsertOccasion(ctx, &cat.Occasions[i]); err != nil {
			return stats, err
		}
		stats.Occasions++
	}
	return stats, nil
}
