package clipper

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"tasteal/internal/llm"
)

// ErrNoRecipe is returned when a page holds no recognisable recipe.
var ErrNoRecipe = errors.New("no recipe found on page")

// maxPromptText bounds the page text sent to the model.
const maxPromptText = 20000

// Draft is a recipe read from a web page, before its ingredients are matched
// against the catalog.
type Draft struct {
	Name         string   `json:"name"`
	Introduction string   `json:"introduction"`
	Image        string   `json:"image"`
	TotalTime    int      `json:"total_time"`
	ActiveTime   int      `json:"active_time"`
	ServingSize  int      `json:"serving_size"`
	Ingredients  []string `json:"ingredients"`
	Directions   []string `json:"directions"`
	SourceURL    string   `json:"source_url"`
	ExtractedBy  string   `json:"extracted_by"`
}

// Clipper handles fetching and extracting recipes from URLs.
type Clipper struct {
	httpClient *http.Client
	textGen    llm.TextGenerator
	logger     *zap.Logger
}

// ExtractedRecipe represents the data structured by the AI.
type ExtractedRecipe struct {
	Title        string   `json:"title"`
	Introduction string   `json:"introduction"`
	Ingredients  []string `json:"ingredients"`
	Steps        []string `json:"steps"`
	PrepTime     int      `json:"prep_time_minutes"`
	TotalTime    int      `json:"total_time_minutes"`
	Servings     int      `json:"servings"`
}

// NewClipper creates a new Clipper instance. textGen may be nil, in which
// case only pages with structured data can be clipped.
func NewClipper(textGen llm.TextGenerator, logger *zap.Logger) *Clipper {
	return &Clipper{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		textGen:    textGen,
		logger:     logger.Named("clipper"),
	}
}

// ClipURL fetches the URL and extracts the recipe it shows.
func (c *Clipper) ClipURL(ctx context.Context, url string) (*Draft, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "tasteal-clipper/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch content: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch URL: status %d", resp.StatusCode)
	}
	return c.ParseHTML(ctx, io.LimitReader(resp.Body, 5<<20), url)
}

// ParseHTML extracts a recipe from an HTML document. Structured data is
// preferred; the text generator is asked only when there is none.
func (c *Clipper) ParseHTML(ctx context.Context, r io.Reader, sourceURL string) (*Draft, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse html: %w", err)
	}

	if d := fromJSONLD(doc); d != nil {
		d.SourceURL = sourceURL
		d.ExtractedBy = "json-ld"
		return d, nil
	}

	if c.textGen == nil {
		return nil, ErrNoRecipe
	}
	c.logger.Debug("no structured recipe data, asking the model", zap.String("url", sourceURL))
	d, err := c.extractWithModel(ctx, cleanText(doc))
	if err != nil {
		return nil, err
	}
	d.SourceURL = sourceURL
	d.ExtractedBy = "llm"
	return d, nil
}

func (c *Clipper) extractWithModel(ctx context.Context, content string) (*Draft, error) {
	if len(content) > maxPromptText {
		content = content[:maxPromptText]
	}
	prompt := fmt.Sprintf(`
You are a recipe extraction expert. Extract the recipe from the following page text.
Return the result strictly as a JSON object with this structure:
{
  "title": "Recipe Title",
  "introduction": "one or two sentences",
  "ingredients": ["200 g rice", "2 eggs", ...],
  "steps": ["Step 1 description", "Step 2 description", ...],
  "prep_time_minutes": 15,
  "total_time_minutes": 30,
  "servings": 4
}
If the page holds no recipe, return {"title": ""}.

Page text:
%s
`, content)

	resp, err := c.textGen.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("ai extraction failed: %w", err)
	}

	var extracted ExtractedRecipe
	if err := json.Unmarshal([]byte(stripFences(resp.Content)), &extracted); err != nil {
		return nil, fmt.Errorf("failed to parse AI response: %w", err)
	}
	if strings.TrimSpace(extracted.Title) == "" || len(extracted.Ingredients) == 0 {
		return nil, ErrNoRecipe
	}

	servings := extracted.Servings
	if servings < 1 {
		servings = 1
	}
	return &Draft{
		Name:         strings.TrimSpace(extracted.Title),
		Introduction: extracted.Introduction,
		TotalTime:    extracted.TotalTime,
		ActiveTime:   extracted.PrepTime,
		ServingSize:  servings,
		Ingredients:  extracted.Ingredients,
		Directions:   extracted.Steps,
	}, nil
}

// cleanText drops page chrome and returns the visible body text.
func cleanText(doc *goquery.Document) string {
	// Remove noise to save LLM tokens
	doc.Find("script, style, nav, footer, header, iframe, noscript, .ads, #ads").Remove()
	return strings.Join(strings.Fields(doc.Find("body").Text()), " ")
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
