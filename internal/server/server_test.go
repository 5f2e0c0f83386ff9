package server

import (
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukerupert/ulpack/internal/database"
	"github.com/dukerupert/ulpack/internal/handler"
	"github.com/dukerupert/ulpack/internal/model"
)

type envelope[T any] struct {
	Data T `json:"data"`
}

type errorEnvelope struct {
	Error struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details"`
	} `json:"error"`
}

func newTestServer(t *testing.T, cfg Config) (*httptest.Server, *resty.Client) {
	t.Helper()
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv, err := New(db, cfg, logger)
	require.NoError(t, err)

	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)

	client := resty.New().
		SetBaseURL(ts.URL).
		SetTimeout(5*time.Second).
		SetHeader("Content-Type", "application/json")
	return ts, client
}

func createList(t *testing.T, client *resty.Client, title string) handler.ListDetail {
	t.Helper()
	var out envelope[handler.ListDetail]
	resp, err := client.R().
		SetBody(map[string]string{"title": title}).
		SetResult(&out).
		Post("/api/v1/lists")
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode(), resp.String())
	return out.Data
}

func TestEndToEndSummary(t *testing.T) {
	_, client := newTestServer(t, Config{})

	list := createList(t, client, "API List")
	assert.Equal(t, model.UnitGram, list.Unit)
	assert.Empty(t, list.Items)

	var detail envelope[handler.ListDetail]
	resp, err := client.R().
		SetBody(map[string]any{"name": "Tent", "category": "shelter", "weight_grams": 800, "kind": "base"}).
		SetResult(&detail).
		Post("/api/v1/lists/" + list.ID + "/items")
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode(), resp.String())
	assert.Equal(t, 800, detail.Data.Summary.BaseWeightG)
	assert.Equal(t, 800, detail.Data.Summary.TotalPackG)
	require.Len(t, detail.Data.Items, 1)
	assert.Equal(t, 1, detail.Data.Items[0].Quantity)

	resp, err = client.R().
		SetBody(map[string]any{"name": "Bars", "category": "food", "weight_grams": 120, "quantity": 2, "kind": "consumable"}).
		SetResult(&detail).
		Post("/api/v1/lists/" + list.ID + "/items")
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode(), resp.String())
	assert.Equal(t, 800, detail.Data.Summary.BaseWeightG)
	assert.Equal(t, 240, detail.Data.Summary.ConsumableWeightG)
	assert.Equal(t, 0, detail.Data.Summary.WornWeightG)
	assert.Equal(t, 1040, detail.Data.Summary.TotalPackG)
	assert.Equal(t, 1, detail.Data.Items[1].SortOrder)

	var fetched envelope[handler.ListDetail]
	resp, err = client.R().SetResult(&fetched).Get("/api/v1/lists/" + list.ID)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode())
	assert.Equal(t, detail.Data.Summary, fetched.Data.Summary)
}

func TestListsIndexNewestFirst(t *testing.T) {
	_, client := newTestServer(t, Config{})
	createList(t, client, "Older")
	createList(t, client, "Newer")

	var out envelope[[]model.PackingList]
	resp, err := client.R().SetResult(&out).Get("/api/v1/lists")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode())
	require.Len(t, out.Data, 2)
	assert.Equal(t, "Newer", out.Data[0].Title)
}

func TestValidationErrors(t *testing.T) {
	_, client := newTestServer(t, Config{})

	tests := []struct {
		name      string
		path      string
		body      any
		wantField string
	}{
		{"blank title", "/api/v1/lists", map[string]string{"title": "   "}, "title"},
		{"long title", "/api/v1/lists", map[string]string{"title": strings.Repeat("x", 101)}, "title"},
		{"malformed json", "/api/v1/lists", "{not json", "body"},
		{"zero weight", "/api/v1/gear-items", map[string]any{"name": "x", "weight_grams": 0}, "weight_grams"},
		{"bad kind", "/api/v1/gear-items", map[string]any{"name": "x", "weight_grams": 5, "kind": "carried"}, "kind"},
		{"zero quantity", "/api/v1/gear-items", map[string]any{"name": "x", "weight_grams": 5, "quantity": 0}, "quantity"},
		{"oversized weight", "/api/v1/gear-items", map[string]any{"name": "x", "weight_grams": model.MaxWeightGrams + 1}, "weight_grams"},
		{"oversized quantity", "/api/v1/gear-items", map[string]any{"name": "x", "weight_grams": 5, "quantity": model.MaxQuantity + 1}, "quantity"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var e errorEnvelope
			resp, err := client.R().SetBody(tt.body).SetError(&e).Post(tt.path)
			require.NoError(t, err)
			assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode(), resp.String())
			assert.Equal(t, "validation_error", e.Error.Code)
			assert.Contains(t, e.Error.Details, tt.wantField)
		})
	}
}

func TestOversizedItemKeepsSummaryNonNegative(t *testing.T) {
	_, client := newTestServer(t, Config{})
	list := createList(t, client, "Anvil run")

	var e errorEnvelope
	resp, err := client.R().
		SetBody(map[string]any{"name": "Anvil", "weight_grams": math.MaxInt64 / 2, "quantity": 3, "kind": "base"}).
		SetError(&e).
		Post("/api/v1/lists/" + list.ID + "/items")
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode(), resp.String())
	assert.Contains(t, e.Error.Details, "weight_grams")

	var heaviest envelope[handler.ListDetail]
	resp, err = client.R().
		SetBody(map[string]any{"name": "Anvil", "weight_grams": model.MaxWeightGrams, "quantity": model.MaxQuantity}).
		SetResult(&heaviest).
		Post("/api/v1/lists/" + list.ID + "/items")
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode(), resp.String())
	assert.Equal(t, model.MaxWeightGrams*model.MaxQuantity, heaviest.Data.Summary.TotalPackG)
	assert.Positive(t, heaviest.Data.Summary.TotalPackG)
}

func TestNotFound(t *testing.T) {
	_, client := newTestServer(t, Config{})
	list := createList(t, client, "Mine")
	other := createList(t, client, "Other")

	var created envelope[handler.ListDetail]
	_, err := client.R().
		SetBody(map[string]any{"name": "Quilt", "weight_grams": 567}).
		SetResult(&created).
		Post("/api/v1/lists/" + list.ID + "/items")
	require.NoError(t, err)
	itemID := created.Data.Items[0].ID

	tests := []struct {
		name   string
		method string
		path   string
		body   any
	}{
		{"get missing list", http.MethodGet, "/api/v1/lists/missing", nil},
		{"delete missing list", http.MethodDelete, "/api/v1/lists/missing", nil},
		{"add to missing list", http.MethodPost, "/api/v1/lists/missing/items", map[string]any{"name": "x", "weight_grams": 1}},
		{"update item via other list", http.MethodPatch, "/api/v1/lists/" + other.ID + "/items/" + itemID, map[string]any{"name": "x", "weight_grams": 1}},
		{"delete item via other list", http.MethodDelete, "/api/v1/lists/" + other.ID + "/items/" + itemID, nil},
		{"reorder with foreign item", http.MethodPut, "/api/v1/lists/" + other.ID + "/items/order", map[string]any{"item_ids": []string{itemID}}},
		{"unknown api path", http.MethodGet, "/api/v1/nope", nil},
		{"unknown share token", http.MethodGet, "/api/v1/shared/nope", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var e errorEnvelope
			req := client.R().SetError(&e)
			if tt.body != nil {
				req.SetBody(tt.body)
			}
			resp, err := req.Execute(tt.method, tt.path)
			require.NoError(t, err)
			assert.Equal(t, http.StatusNotFound, resp.StatusCode(), resp.String())
			assert.Equal(t, "not_found", e.Error.Code)
		})
	}
}

func TestShareLifecycle(t *testing.T) {
	_, client := newTestServer(t, Config{})
	list := createList(t, client, "Shared trip")
	oldToken := list.ShareToken

	var shared envelope[handler.SharedList]
	resp, err := client.R().SetResult(&shared).Get("/api/v1/shared/" + oldToken)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode())
	assert.Equal(t, "Shared trip", shared.Data.Title)
	assert.NotContains(t, resp.String(), oldToken, "public view must not expose the token")

	var regenerated envelope[handler.ListDetail]
	resp, err = client.R().SetResult(&regenerated).Post("/api/v1/lists/" + list.ID + "/share/regenerate")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode())
	newToken := regenerated.Data.ShareToken
	require.NotEqual(t, oldToken, newToken)

	resp, err = client.R().Get("/api/v1/shared/" + oldToken)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode())

	resp, err = client.R().Get("/api/v1/shared/" + newToken)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode())

	// Turning sharing off hides the list without changing the token.
	resp, err = client.R().SetBody(map[string]bool{"is_shared": false}).Patch("/api/v1/lists/" + list.ID + "/share")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode())

	resp, err = client.R().Get("/api/v1/shared/" + newToken)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode())
}

func TestSetUnit(t *testing.T) {
	_, client := newTestServer(t, Config{})
	list := createList(t, client, "Ounces")

	var out envelope[handler.ListDetail]
	resp, err := client.R().SetBody(map[string]string{"unit": "oz"}).SetResult(&out).Patch("/api/v1/lists/" + list.ID + "/unit")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode())
	assert.Equal(t, model.UnitOunce, out.Data.Unit)

	resp, err = client.R().SetBody(map[string]string{"unit": "stone"}).Patch("/api/v1/lists/" + list.ID + "/unit")
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode())
}

func TestUpdateAndDeleteList(t *testing.T) {
	_, client := newTestServer(t, Config{})
	list := createList(t, client, "Draft")

	var out envelope[handler.ListDetail]
	resp, err := client.R().
		SetBody(map[string]string{"title": "Final", "description": "Wind River High Route"}).
		SetResult(&out).
		Patch("/api/v1/lists/" + list.ID)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode())
	assert.Equal(t, "Final", out.Data.Title)
	assert.Equal(t, "Wind River High Route", out.Data.Description)

	resp, err = client.R().Delete("/api/v1/lists/" + list.ID)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode())

	resp, err = client.R().Get("/api/v1/lists/" + list.ID)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode())
}

func TestReorderItems(t *testing.T) {
	_, client := newTestServer(t, Config{})
	list := createList(t, client, "Order")

	var detail envelope[handler.ListDetail]
	for _, name := range []string{"a", "b", "c"} {
		_, err := client.R().
			SetBody(map[string]any{"name": name, "weight_grams": 10}).
			SetResult(&detail).
			Post("/api/v1/lists/" + list.ID + "/items")
		require.NoError(t, err)
	}
	ids := []string{detail.Data.Items[2].ID, detail.Data.Items[0].ID, detail.Data.Items[1].ID}

	resp, err := client.R().
		SetBody(map[string]any{"item_ids": ids}).
		SetResult(&detail).
		Put("/api/v1/lists/" + list.ID + "/items/order")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode(), resp.String())

	var names []string
	for _, item := range detail.Data.Items {
		names = append(names, item.Name)
	}
	assert.Equal(t, []string{"c", "a", "b"}, names)
}

func TestGearInventory(t *testing.T) {
	_, client := newTestServer(t, Config{})
	createList(t, client, "Trip")

	var first, second envelope[model.GearListEntry]
	resp, err := client.R().
		SetBody(map[string]any{"name": "Headlamp", "category": "electronics", "weight_grams": 30}).
		SetResult(&first).
		Post("/api/v1/gear-items")
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode(), resp.String())
	assert.Equal(t, "My Gear Inventory", first.Data.ListTitle)
	assert.Equal(t, 0, first.Data.SortOrder)

	resp, err = client.R().
		SetBody(map[string]any{"name": "Spoon", "category": "cooking", "weight_grams": 9}).
		SetResult(&second).
		Post("/api/v1/gear-items")
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode())
	assert.Equal(t, first.Data.ListID, second.Data.ListID, "inventory list is reused")
	assert.Equal(t, 1, second.Data.SortOrder)

	var lists envelope[[]model.PackingList]
	_, err = client.R().SetResult(&lists).Get("/api/v1/lists")
	require.NoError(t, err)
	inventories := 0
	for _, l := range lists.Data {
		if l.IsInventory {
			inventories++
			assert.False(t, l.IsShared)
		}
	}
	assert.Equal(t, 1, inventories)

	var feed envelope[[]model.GearListEntry]
	resp, err = client.R().SetResult(&feed).Get("/api/v1/gear-items")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode())
	require.Len(t, feed.Data, 2)
	assert.Equal(t, "Headlamp", feed.Data[0].Name)
}

func TestSharedRateLimit(t *testing.T) {
	_, client := newTestServer(t, Config{SharedRateLimit: 2, SharedRateWindow: time.Minute})

	for i := 0; i < 2; i++ {
		resp, err := client.R().Get("/api/v1/shared/unknown")
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode())
	}

	var e errorEnvelope
	resp, err := client.R().SetError(&e).Get("/api/v1/shared/unknown")
	require.NoError(t, err)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode())
	assert.Equal(t, "http_error", e.Error.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	_, client := newTestServer(t, Config{})

	resp, err := client.R().Get("/health")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode())
	assert.JSONEq(t, `{"status":"ok"}`, resp.String())

	resp, err = client.R().Get("/metrics")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode())
	assert.Contains(t, resp.String(), `ulpack_http_requests_total{method="GET",route="GET /health",status="200"} 1`)
}

func TestCORSPreflight(t *testing.T) {
	_, client := newTestServer(t, Config{AllowedOrigins: []string{"http://localhost:5173"}})

	resp, err := client.R().
		SetHeader("Origin", "http://localhost:5173").
		SetHeader("Access-Control-Request-Method", "POST").
		Options("/api/v1/lists")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode())
	assert.Equal(t, "http://localhost:5173", resp.Header().Get("Access-Control-Allow-Origin"))
}

func noRedirect(ts *httptest.Server) *http.Client {
	c := ts.Client()
	c.CheckRedirect = func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }
	return c
}

func TestWebCreateListAndItem(t *testing.T) {
	ts, _ := newTestServer(t, Config{})
	c := noRedirect(ts)

	resp, err := c.PostForm(ts.URL+"/lists", url.Values{"title": {"  "}})
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err = c.PostForm(ts.URL+"/lists", url.Values{"title": {"Web list"}})
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	location := resp.Header.Get("Location")
	require.True(t, strings.HasPrefix(location, "/lists/"), location)

	resp, err = c.PostForm(ts.URL+location+"/items", url.Values{"name": {"Pot"}, "weight_grams": {"abc"}})
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(body), "Input error")

	form := url.Values{"name": {"Pot"}, "category": {"cooking"}, "kind": {"base"}, "weight_grams": {"85"}}
	req, err := http.NewRequest(http.MethodPost, ts.URL+location+"/items", strings.NewReader(form.Encode()))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("HX-Request", "true")
	resp, err = c.Do(req)
	require.NoError(t, err)
	body, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `id="items-section"`)
	assert.Contains(t, string(body), "85 g")
	assert.NotContains(t, string(body), "<html", "HTMX requests get the partial only")

	resp, err = c.Get(ts.URL + location)
	require.NoError(t, err)
	body, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "Pot")
}

func TestWebSharedViewNotFound(t *testing.T) {
	ts, _ := newTestServer(t, Config{})

	resp, err := ts.Client().Get(ts.URL + "/s/unknown")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
