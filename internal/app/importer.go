package app

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"unicode"

	"go.uber.org/zap"

	"tasteal/internal/catalog"
	"tasteal/internal/clipper"
	"tasteal/internal/ghost"
	"tasteal/internal/recipe"
	"tasteal/internal/textutil"
)

const (
	// pieceGrams is assumed for quantities given as a count ("2 eggs").
	pieceGrams = 50
	// pinchGrams is assumed when a line has no quantity ("salt to taste").
	pinchGrams = 5
)

// Importer turns clipped drafts into stored recipes by matching their
// ingredient lines against the catalog.
type Importer struct {
	recipes *recipe.Repository
	catalog *catalog.Repository
	logger  *zap.Logger
}

// ImportResult reports what happened to one draft.
type ImportResult struct {
	RecipeID  int64    `json:"recipe_id"`
	Matched   int      `json:"matched"`
	Unmatched []string `json:"unmatched"`
}

// IngestStats summarises a Ghost import run.
type IngestStats struct {
	Fetched  int
	Imported int
	Skipped  int
	Failed   int
}

func NewImporter(recipes *recipe.Repository, cat *catalog.Repository, logger *zap.Logger) *Importer {
	return &Importer{recipes: recipes, catalog: cat, logger: logger.Named("importer")}
}

// Import stores draft as a recipe owned by author. Lines that match no
// catalog ingredient are reported and left out; a draft with no matching
// line at all is rejected.
func (im *Importer) Import(ctx context.Context, draft *clipper.Draft, author string, private bool) (ImportResult, error) {
	ings, err := im.catalog.ListIngredients(ctx, "", 0)
	if err != nil {
		return ImportResult{}, err
	}
	matched, unmatched := MatchIngredients(draft.Ingredients, ings)
	if len(matched) == 0 {
		return ImportResult{Unmatched: unmatched}, fmt.Errorf("%w: no ingredient of %q is in the catalog", recipe.ErrInvalid, draft.Name)
	}

	rec := &recipe.Recipe{
		Name:         draft.Name,
		Image:        draft.Image,
		TotalTime:    draft.TotalTime,
		ActiveTime:   draft.ActiveTime,
		ServingSize:  max(draft.ServingSize, 1),
		Introduction: draft.Introduction,
		IsPrivate:    private,
		Author:       author,
		Ingredients:  matched,
	}
	if draft.SourceURL != "" {
		rec.AuthorNote = "Source: " + draft.SourceURL
	}
	for i, d := range draft.Directions {
		rec.Directions = append(rec.Directions, recipe.Direction{Step: i + 1, Direction: d})
	}

	id, err := im.recipes.Create(ctx, rec)
	if err != nil {
		return ImportResult{Unmatched: unmatched}, err
	}
	im.logger.Info("imported recipe",
		zap.Int64("recipe_id", id),
		zap.String("name", rec.Name),
		zap.Int("matched", len(matched)),
		zap.Int("unmatched", len(unmatched)))
	return ImportResult{RecipeID: id, Matched: len(matched), Unmatched: unmatched}, nil
}

// IngestGhost imports every published Ghost post that carries a recipe.
// Posts whose title the author already owns are skipped, so runs can be
// repeated.
func (im *Importer) IngestGhost(ctx context.Context, client ghost.Client, clip *clipper.Clipper, author string) (IngestStats, error) {
	var stats IngestStats

	posts, err := client.FetchPosts(ctx)
	if err != nil {
		return stats, fmt.Errorf("failed to fetch recipes from ghost: %w", err)
	}
	stats.Fetched = len(posts)

	owned, err := im.recipes.ListByAuthor(ctx, author, true)
	if err != nil {
		return stats, err
	}
	existing := make(map[string]struct{}, len(owned))
	for _, c := range owned {
		existing[textutil.Normalize(c.Name)] = struct{}{}
	}

	for _, post := range posts {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		if _, ok := existing[textutil.Normalize(post.Title)]; ok {
			stats.Skipped++
			continue
		}

		draft, err := clip.ParseHTML(ctx, strings.NewReader(post.HTML), "ghost:"+post.ID)
		if err != nil {
			im.logger.Warn("failed to parse post", zap.String("post", post.Title), zap.Error(err))
			stats.Failed++
			continue
		}
		if draft.Name == "" {
			draft.Name = post.Title
		}
		if draft.Image == "" {
			draft.Image = post.FeatureImage
		}
		if draft.Introduction == "" {
			draft.Introduction = post.Excerpt
		}

		if _, err := im.Import(ctx, draft, author, false); err != nil {
			im.logger.Warn("failed to import post", zap.String("post", post.Title), zap.Error(err))
			stats.Failed++
			continue
		}
		existing[textutil.Normalize(draft.Name)] = struct{}{}
		stats.Imported++
	}

	im.logger.Info("ghost import complete",
		zap.Int("fetched", stats.Fetched),
		zap.Int("imported", stats.Imported),
		zap.Int("skipped", stats.Skipped),
		zap.Int("failed", stats.Failed))
	return stats, nil
}

// MatchIngredients maps free-text lines onto catalog ingredients. A line
// matches the ingredient with the longest name contained in it; amounts
// for the same ingredient are summed.
func MatchIngredients(lines []string, catalogue []catalog.Ingredient) ([]recipe.Ingredient, []string) {
	type candidate struct {
		key string
		ing catalog.Ingredient
	}
	cands := make([]candidate, 0, len(catalogue))
	for _, ing := range catalogue {
		if key := words(ing.Name); key != "" {
			cands = append(cands, candidate{key: key, ing: ing})
		}
	}
	slices.SortStableFunc(cands, func(a, b candidate) int { return len(b.key) - len(a.key) })

	var (
		matched   []recipe.Ingredient
		unmatched []string
		index     = map[int64]int{}
	)
	for _, line := range lines {
		parsed := clipper.ParseIngredientLine(line)
		text := " " + words(line) + " "

		var hit *catalog.Ingredient
		for i := range cands {
			if strings.Contains(text, " "+cands[i].key+" ") || strings.Contains(text, " "+cands[i].key+"s ") {
				hit = &cands[i].ing
				break
			}
		}
		if hit == nil {
			unmatched = append(unmatched, line)
			continue
		}

		amount := parsed.Amount
		switch {
		case amount == 0:
			amount = pinchGrams
		case parsed.Unit == "":
			amount *= pieceGrams
		}

		if i, ok := index[hit.ID]; ok {
			matched[i].Amount += amount
			continue
		}
		index[hit.ID] = len(matched)
		matched = append(matched, recipe.Ingredient{
			IngredientID: hit.ID,
			Name:         hit.Name,
			Amount:       amount,
			Note:         strings.TrimSpace(line),
			IsLiquid:     hit.IsLiquid,
		})
	}
	return matched, unmatched
}

// words normalises s and collapses punctuation into single spaces.
func words(s string) string {
	return strings.Join(strings.FieldsFunc(textutil.Normalize(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}), " ")
}
