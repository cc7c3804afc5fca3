package storage

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestImageStore(t *testing.T) {
	tempDir := t.TempDir()
	store, err := NewImageStore(filepath.Join(tempDir, "images"), "http://localhost:8080/")
	if err != nil {
		t.Fatalf("Failed to create ImageStore: %v", err)
	}

	t.Run("Save", func(t *testing.T) {
		got, err := store.Save("/recipes/../recipes/pho.jpg", strings.NewReader("jpeg bytes"))
		if err != nil {
			t.Fatalf("Failed to save image: %v", err)
		}
		if got != "recipes/pho.jpg" {
			t.Errorf("Expected cleaned path 'recipes/pho.jpg', got '%s'", got)
		}
		if _, err := os.Stat(filepath.Join(tempDir, "images", "recipes", "pho.jpg")); err != nil {
			t.Errorf("Expected file to be created: %v", err)
		}
	})

	t.Run("Open", func(t *testing.T) {
		f, err := store.Open("recipes/pho.jpg")
		if err != nil {
			t.Fatalf("Failed to open image: %v", err)
		}
		defer f.Close()
		data, _ := io.ReadAll(f)
		if string(data) != "jpeg bytes" {
			t.Errorf("Expected 'jpeg bytes', got '%s'", data)
		}
	})

	t.Run("Exists", func(t *testing.T) {
		if !store.Exists("recipes/pho.jpg") {
			t.Error("Expected image to exist")
		}
		if store.Exists("recipes") {
			t.Error("Expected a directory not to count as an image")
		}
	})

	t.Run("URL", func(t *testing.T) {
		want := "http://localhost:8080/images/recipes/pho.jpg"
		if got := store.URL("recipes/pho.jpg"); got != want {
			t.Errorf("Expected '%s', got '%s'", want, got)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		if err := store.Delete("recipes/pho.jpg"); err != nil {
			t.Fatalf("Failed to delete image: %v", err)
		}
		if store.Exists("recipes/pho.jpg") {
			t.Error("Expected image to be gone")
		}
		if err := store.Delete("recipes/pho.jpg"); err != nil {
			t.Errorf("Deleting a missing image should succeed, got %v", err)
		}
	})
}

func TestImageStore_StaysInsideBase(t *testing.T) {
	tempDir := t.TempDir()
	store, err := NewImageStore(filepath.Join(tempDir, "images"), "")
	if err != nil {
		t.Fatalf("Failed to create ImageStore: %v", err)
	}

	for _, p := range []string{"", "/", "..", "../../etc/passwd", `..\secret`} {
		got, err := store.Save(p, strings.NewReader("x"))
		if p == "../../etc/passwd" || p == `..\secret` {
			// traversal is clamped to the base directory
			if err != nil {
				t.Errorf("Save(%q) failed: %v", p, err)
				continue
			}
			if strings.Contains(got, "..") {
				t.Errorf("Save(%q) escaped the base directory: %q", p, got)
			}
			continue
		}
		if !errors.Is(err, ErrInvalidPath) {
			t.Errorf("Save(%q): expected ErrInvalidPath, got %v", p, err)
		}
	}
	if _, err := os.Stat(filepath.Join(tempDir, "etc")); !os.IsNotExist(err) {
		t.Error("Expected nothing to be written outside the base directory")
	}
}

func TestObjectName(t *testing.T) {
	a := ObjectName("chatImages", "u1", ".png")
	b := ObjectName("chatImages", "u1", "png")
	if !strings.HasPrefix(a, "chatImages/u1_") || !strings.HasSuffix(a, ".png") {
		t.Errorf("Unexpected object name %q", a)
	}
	if a == b {
		t.Error("Expected object names to be unique")
	}
}
