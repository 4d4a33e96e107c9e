package source

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"
	"github.com/google/go-cmp/cmp"
)

func TestHTTPSource_Load(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("method = %s", r.Method)
		}
		if r.URL.Path != "/api/forms/reg-1/data" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer token" {
			t.Errorf("authorization header = %q", got)
		}
		io.WriteString(w, `{"name":"Ada"}`)
	}))
	defer server.Close()

	src, err := NewHTTPSource(server.URL+"/api/", WithHeader("Authorization", "Bearer token"))
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	data, err := src.Load(context.Background(), "reg-1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff(map[string]any{"name": "Ada"}, data); diff != "" {
		t.Fatalf("data mismatch (-want +got):\n%s", diff)
	}
}

func TestHTTPSource_LoadNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	src, err := NewHTTPSource(server.URL)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if _, err := src.Load(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("load = %v, want ErrNotFound", err)
	}
}

func TestHTTPSource_Save(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("method = %s", r.Method)
		}
		if got := r.Header.Get("Content-Type"); got != "application/json" {
			t.Errorf("content type = %q", got)
		}
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		// Echo back with a server-side normalization applied.
		body["normalized"] = true
		json.NewEncoder(w).Encode(body)
	}))
	defer server.Close()

	src, err := NewHTTPSource(server.URL)
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	result, err := src.Save(context.Background(), "reg-1", map[string]any{"name": "Ada"})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	want := map[string]any{"name": "Ada", "normalized": true}
	if diff := cmp.Diff(want, result); diff != "" {
		t.Fatalf("result mismatch (-want +got):\n%s", diff)
	}
}

func TestHTTPSource_SaveServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer server.Close()

	src, err := NewHTTPSource(server.URL)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if _, err := src.Save(context.Background(), "reg-1", nil); err == nil {
		t.Fatal("expected an error for a 502 response")
	}
}

func TestHTTPSource_EmptyResponseBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	src, err := NewHTTPSource(server.URL)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	result, err := src.Save(context.Background(), "reg-1", map[string]any{"name": "Ada"})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if len(result) != 0 {
		t.Fatalf("result = %v, want empty map", result)
	}
}

func TestNewHTTPSource_RequiresBaseURL(t *testing.T) {
	if _, err := NewHTTPSource("   "); err == nil {
		t.Fatal("expected an error for a blank base url")
	}
}

func TestMemoryCache(t *testing.T) {
	cache := NewMemoryCache()
	if _, ok := cache.Get("f"); ok {
		t.Fatal("empty cache should miss")
	}

	cache.Set("f", map[string]any{"name": "Ada"})
	data, ok := cache.Get("f")
	if !ok || data["name"] != "Ada" {
		t.Fatalf("Get = %v, %v", data, ok)
	}

	// Entries are copies in both directions.
	data["name"] = "changed"
	again, _ := cache.Get("f")
	if again["name"] != "Ada" {
		t.Fatalf("cache entry aliased: %v", again)
	}

	cache.Invalidate("f")
	if _, ok := cache.Get("f"); ok {
		t.Fatal("invalidated entry should miss")
	}
}

func TestMemorySource_Normalize(t *testing.T) {
	src := NewMemorySource()
	src.Normalize = func(data map[string]any) map[string]any {
		data["version"] = 1
		return data
	}

	result, err := src.Save(context.Background(), "f", map[string]any{"name": "Ada"})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if result["version"] != 1 {
		t.Fatalf("normalization lost: %v", result)
	}

	loaded, err := src.Load(context.Background(), "f")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff(result, loaded); diff != "" {
		t.Fatalf("stored copy mismatch (-want +got):\n%s", diff)
	}
}

func TestMemorySource_LoadMissing(t *testing.T) {
	src := NewMemorySource()
	if _, err := src.Load(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("load = %v, want ErrNotFound", err)
	}
}
