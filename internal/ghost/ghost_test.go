package ghost

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"tasteal/internal/config"
)

func TestFetchPosts(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		// Mock Ghost API server with two pages
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Check that the key is in the query
			if r.URL.Query().Get("key") != "test_key" {
				t.Errorf("Expected key 'test_key', got '%s'", r.URL.Query().Get("key"))
			}

			w.WriteHeader(http.StatusOK)
			switch r.URL.Query().Get("page") {
			case "1":
				fmt.Fprintln(w, `{
					"posts": [
						{"id": "1", "title": "Phở bò", "html": "<h1>Phở</h1>", "tags": [{"name": "soup"}], "updated_at": "2023-10-27T10:00:00Z"},
						{"id": "2", "title": "Bún chả", "html": "<h1>Bún chả</h1>", "updated_at": "2023-10-28T10:00:00Z"}
					],
					"meta": {"pagination": {"page": 1, "limit": 2, "pages": 2, "total": 3, "next": 2, "prev": null}}
				}`)
			case "2":
				fmt.Fprintln(w, `{
					"posts": [{"id": "3", "title": "Gỏi cuốn", "html": "<p>rolls</p>", "updated_at": "2023-10-29T10:00:00Z"}],
					"meta": {"pagination": {"page": 2, "limit": 2, "pages": 2, "total": 3, "next": null, "prev": 1}}
				}`)
			default:
				t.Errorf("Unexpected page %q", r.URL.Query().Get("page"))
			}
		}))
		defer server.Close()

		// Create a config pointing to the test server
		cfg := &config.Config{
			GhostURL:        server.URL + "/",
			GhostContentKey: "test_key",
		}
		client := NewClient(cfg)

		posts, err := client.FetchPosts(context.Background())
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}

		if len(posts) != 3 {
			t.Fatalf("Expected 3 posts, got %d", len(posts))
		}
		if posts[0].Tags[0].Name != "soup" {
			t.Errorf("Expected tag 'soup', got %+v", posts[0].Tags)
		}
		if posts[2].Title != "Gỏi cuốn" {
			t.Errorf("Expected last post 'Gỏi cuốn', got '%s'", posts[2].Title)
		}
	})

	t.Run("ServerError", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		cfg := &config.Config{
			GhostURL:        server.URL,
			GhostContentKey: "test_key",
		}
		client := NewClient(cfg)

		_, err := client.FetchPosts(context.Background())
		if err == nil {
			t.Fatal("Expected an error for non-200 status code, got nil")
		}
	})
}
