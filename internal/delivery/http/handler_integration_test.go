package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/pricewatch/backend/config"
	"github.com/pricewatch/backend/internal/storage"
	"github.com/pricewatch/backend/internal/usecase"
)

// TestMain sets up test environment before running tests
func TestMain(m *testing.M) {
	// Set Gin to test mode once for all tests
	gin.SetMode(gin.TestMode)

	exitCode := m.Run()

	os.Exit(exitCode)
}

// setupTestRouter creates a test router backed by an in-memory store
func setupTestRouter(t *testing.T) *gin.Engine {
	t.Helper()

	cfg := &config.Config{
		Server: config.ServerConfig{
			Port:           "8080",
			Environment:    "test",
			AllowedOrigins: []string{"http://localhost:5173"},
		},
		RateLimit: config.RateLimitConfig{PerIP: 1000},
	}

	store, err := storage.Open(":memory:")
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	handler := NewHandler(
		store,
		usecase.NewMatchingService(store, store, usecase.MatchingConfig{}),
		usecase.NewComparisonService(store),
		usecase.NewTagService(store),
		usecase.NewScheduleService(store, store),
	)
	return SetupRouter(cfg, handler)
}

func doRequest(t *testing.T, router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, path, reader)
	if err != nil {
		t.Fatalf("building request: %v", err)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeJSON(t *testing.T, w *httptest.ResponseRecorder, dest interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), dest); err != nil {
		t.Fatalf("failed to unmarshal response %q: %v", w.Body.String(), err)
	}
}

// TestHealthCheckEndpoint tests the health check endpoint
func TestHealthCheckEndpoint(t *testing.T) {
	router := setupTestRouter(t)

	w := doRequest(t, router, "GET", "/health", "")
	if w.Code != http.StatusOK {
		t.Errorf("Status = %d, want %d", w.Code, http.StatusOK)
	}

	var response map[string]interface{}
	decodeJSON(t, w, &response)
	if response["status"] != "healthy" {
		t.Errorf("status = %v, want healthy", response["status"])
	}
	if response["service"] != "pricewatch-backend" {
		t.Errorf("service = %v, want pricewatch-backend", response["service"])
	}
}

func TestItemEndpoints(t *testing.T) {
	router := setupTestRouter(t)

	t.Run("upsert then list", func(t *testing.T) {
		w := doRequest(t, router, "POST", "/items/upsert",
			`[{"sku":"A1","name":"Hammer","barcode":"111","price":"10.00"},
			  {"sku":"A2","name":"Saw","price":"25.50"}]`)
		if w.Code != http.StatusOK {
			t.Fatalf("Status = %d, body = %s", w.Code, w.Body.String())
		}

		w = doRequest(t, router, "GET", "/items/", "")
		if w.Code != http.StatusOK {
			t.Fatalf("Status = %d, want 200", w.Code)
		}
		var items []map[string]interface{}
		decodeJSON(t, w, &items)
		if len(items) != 2 {
			t.Fatalf("items = %d, want 2", len(items))
		}
		if items[0]["sku"] != "A2" {
			t.Errorf("first item = %v, want newest (A2)", items[0]["sku"])
		}
	})

	t.Run("rejects malformed body", func(t *testing.T) {
		w := doRequest(t, router, "POST", "/items/upsert", `{"not":"a list"}`)
		if w.Code != http.StatusBadRequest {
			t.Errorf("Status = %d, want 400", w.Code)
		}
	})
}

func TestMatchEndpoints(t *testing.T) {
	router := setupTestRouter(t)

	seed := func(t *testing.T) {
		w := doRequest(t, router, "POST", "/items/upsert",
			`[{"sku":"A1","name":"Hammer","barcode":"111","price":"10.00"}]`)
		if w.Code != http.StatusOK {
			t.Fatalf("seeding items: %d %s", w.Code, w.Body.String())
		}
		w = doRequest(t, router, "POST", "/items/competitor/praktiker/upsert",
			`[{"sku":"P1","name":"Hammer","barcode":"111","price":"8.50","url":"https://example.com/p1"}]`)
		if w.Code != http.StatusOK {
			t.Fatalf("seeding competitor items: %d %s", w.Code, w.Body.String())
		}
	}
	seed(t)

	t.Run("auto match links by barcode", func(t *testing.T) {
		w := doRequest(t, router, "POST", "/match/auto/praktiker", "")
		if w.Code != http.StatusOK {
			t.Fatalf("Status = %d, body = %s", w.Code, w.Body.String())
		}
		var result map[string]interface{}
		decodeJSON(t, w, &result)
		if result["created"] != float64(1) {
			t.Errorf("created = %v, want 1", result["created"])
		}
	})

	t.Run("view shows the linked row", func(t *testing.T) {
		w := doRequest(t, router, "GET", "/match/view/praktiker", "")
		if w.Code != http.StatusOK {
			t.Fatalf("Status = %d", w.Code)
		}
		var views []map[string]interface{}
		decodeJSON(t, w, &views)
		if len(views) != 1 {
			t.Fatalf("views = %d, want 1", len(views))
		}
		if views[0]["comp_barcode"] != "111" {
			t.Errorf("comp_barcode = %v, want 111", views[0]["comp_barcode"])
		}
	})

	t.Run("manual match requires a known barcode", func(t *testing.T) {
		w := doRequest(t, router, "POST", "/match/manual_by_barcode/praktiker?item_id=1&competitor_barcode=999", "")
		if w.Code != http.StatusNotFound {
			t.Errorf("Status = %d, want 404", w.Code)
		}
	})

	t.Run("manual match rejects non-numeric item id", func(t *testing.T) {
		w := doRequest(t, router, "POST", "/match/manual_by_barcode/praktiker?item_id=abc&competitor_barcode=111", "")
		if w.Code != http.StatusBadRequest {
			t.Errorf("Status = %d, want 400", w.Code)
		}
	})

	t.Run("compare returns the decimal diff", func(t *testing.T) {
		w := doRequest(t, router, "GET", "/compare/praktiker", "")
		if w.Code != http.StatusOK {
			t.Fatalf("Status = %d", w.Code)
		}
		var rows []map[string]interface{}
		decodeJSON(t, w, &rows)
		if len(rows) != 1 {
			t.Fatalf("rows = %d, want 1", len(rows))
		}
		if rows[0]["diff"] != "-1.5" {
			t.Errorf("diff = %v, want -1.5", rows[0]["diff"])
		}
	})
}

func TestTagEndpoints(t *testing.T) {
	router := setupTestRouter(t)

	t.Run("create and list newest first", func(t *testing.T) {
		w := doRequest(t, router, "POST", "/tags/", `{"name":"hardware","email":"buy@example.com"}`)
		if w.Code != http.StatusOK {
			t.Fatalf("Status = %d, body = %s", w.Code, w.Body.String())
		}
		w = doRequest(t, router, "POST", "/tags/", `{"name":"garden"}`)
		if w.Code != http.StatusOK {
			t.Fatalf("Status = %d", w.Code)
		}

		w = doRequest(t, router, "GET", "/tags/", "")
		var tags []map[string]interface{}
		decodeJSON(t, w, &tags)
		if len(tags) != 2 {
			t.Fatalf("tags = %d, want 2", len(tags))
		}
		if tags[0]["name"] != "garden" {
			t.Errorf("first tag = %v, want newest (garden)", tags[0]["name"])
		}
		if tags[1]["email"] != "buy@example.com" {
			t.Errorf("email = %v, want buy@example.com", tags[1]["email"])
		}
	})

	t.Run("rejects empty name", func(t *testing.T) {
		w := doRequest(t, router, "POST", "/tags/", `{"name":"  "}`)
		if w.Code != http.StatusBadRequest {
			t.Errorf("Status = %d, want 400", w.Code)
		}
	})
}

func TestScheduleEndpoints(t *testing.T) {
	router := setupTestRouter(t)

	w := doRequest(t, router, "POST", "/tags/", `{"name":"hardware"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("creating tag: %d", w.Code)
	}
	var tag map[string]interface{}
	decodeJSON(t, w, &tag)
	tagID := int64(tag["id"].(float64))

	t.Run("rejects unknown tag", func(t *testing.T) {
		w := doRequest(t, router, "POST", "/schedules/?tag_id=4242&cron=0+9+*+*+*", "")
		if w.Code != http.StatusNotFound {
			t.Errorf("Status = %d, want 404", w.Code)
		}
	})

	t.Run("rejects malformed cron", func(t *testing.T) {
		w := doRequest(t, router, "POST", fmt.Sprintf("/schedules/?tag_id=%d&cron=bad+cron", tagID), "")
		if w.Code != http.StatusBadRequest {
			t.Errorf("Status = %d, want 400 (body: %s)", w.Code, w.Body.String())
		}
	})

	t.Run("creates, pauses and deletes", func(t *testing.T) {
		w := doRequest(t, router, "POST", fmt.Sprintf("/schedules/?tag_id=%d&cron=0+9+*+*+*", tagID), "")
		if w.Code != http.StatusOK {
			t.Fatalf("Status = %d, body = %s", w.Code, w.Body.String())
		}
		var created map[string]interface{}
		decodeJSON(t, w, &created)
		id := int64(created["id"].(float64))

		w = doRequest(t, router, "GET", "/schedules/", "")
		var schedules []map[string]interface{}
		decodeJSON(t, w, &schedules)
		if len(schedules) != 1 || schedules[0]["active"] != true {
			t.Fatalf("schedules = %v, want one active", schedules)
		}

		w = doRequest(t, router, "PATCH", fmt.Sprintf("/schedules/%d/active?active=false", id), "")
		if w.Code != http.StatusOK {
			t.Fatalf("pause: Status = %d", w.Code)
		}

		w = doRequest(t, router, "DELETE", fmt.Sprintf("/schedules/%d", id), "")
		if w.Code != http.StatusOK {
			t.Fatalf("delete: Status = %d", w.Code)
		}
		w = doRequest(t, router, "DELETE", fmt.Sprintf("/schedules/%d", id), "")
		if w.Code != http.StatusNotFound {
			t.Errorf("second delete: Status = %d, want 404", w.Code)
		}
	})
}

func TestCORSPreflightRequest(t *testing.T) {
	router := setupTestRouter(t)

	req, _ := http.NewRequest("OPTIONS", "/tags/", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("Status = %d, want %d", w.Code, http.StatusNoContent)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Errorf("Allow-Origin = %q, want the configured origin", got)
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	cfg := &config.Config{
		Server:    config.ServerConfig{Environment: "test"},
		RateLimit: config.RateLimitConfig{PerIP: 2},
	}
	store, err := storage.Open(":memory:")
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	handler := NewHandler(
		store,
		usecase.NewMatchingService(store, store, usecase.MatchingConfig{}),
		usecase.NewComparisonService(store),
		usecase.NewTagService(store),
		usecase.NewScheduleService(store, store),
	)
	router := SetupRouter(cfg, handler)

	var lastCode int
	for i := 0; i < 10; i++ {
		w := doRequest(t, router, "GET", "/health", "")
		lastCode = w.Code
	}
	if lastCode != http.StatusTooManyRequests {
		t.Errorf("Status after burst = %d, want 429", lastCode)
	}
}
