package exceptions

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"sheet-reconciler/core/database"
	"sheet-reconciler/core/reconcile"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupTestApp(t *testing.T) *fiber.App {
	t.Helper()
	db, err := database.Connect(database.Config{Driver: database.DriverSQLite, Name: ":memory:"})
	require.NoError(t, err)

	f := NewFeature(db, zap.NewNop())
	require.True(t, f.IsEnabled())

	app := fiber.New()
	require.NoError(t, f.Load(app))
	return app
}

func put(t *testing.T, app *fiber.App, body string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest("PUT", "/exceptions", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func list(t *testing.T, app *fiber.App) []reconcile.ExceptionEntry {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest("GET", "/exceptions", nil))
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)

	var entries []reconcile.ExceptionEntry
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&entries))
	return entries
}

func TestHandleSaveAndList(t *testing.T) {
	app := setupTestApp(t)

	assert.Empty(t, list(t, app))

	status, body := put(t, app, `[
		{"key": "Region | West | Status | Active", "hide": true},
		{"key": "Region | North | Owner | Alice", "comments": ["owner moved"]}
	]`)
	assert.Equal(t, 200, status)
	assert.Equal(t, float64(2), body["saved"])

	status, _ = put(t, app, `[{"key": "Region | West | Status | Active", "comments": ["reopened"]}]`)
	assert.Equal(t, 200, status)

	assert.Equal(t, []reconcile.ExceptionEntry{
		{Key: "Region | North | Owner | Alice", Comments: []string{"owner moved"}},
		{Key: "Region | West | Status | Active", Comments: []string{"reopened"}},
	}, list(t, app))
}

func TestHandleSave_BadRequest(t *testing.T) {
	app := setupTestApp(t)

	status, body := put(t, app, `{"key": "not an array"}`)
	assert.Equal(t, 400, status)
	assert.Contains(t, body["error"], "invalid body")

	status, body = put(t, app, `[{"key": "  "}]`)
	assert.Equal(t, 400, status)
	assert.Equal(t, ErrNoEntries.Error(), body["error"])
}

func TestHandleDelete(t *testing.T) {
	app := setupTestApp(t)

	put(t, app, `[{"key": "D | a | Code | 1", "hide": true}, {"key": "D | b | Code | 2", "hide": true}]`)

	resp, err := app.Test(httptest.NewRequest("DELETE", "/exceptions?key=D+%7C+a+%7C+Code+%7C+1", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, float64(1), body["deleted"])

	entries := list(t, app)
	require.Len(t, entries, 1)
	assert.Equal(t, "D | b | Code | 2", entries[0].Key)

	resp, err = app.Test(httptest.NewRequest("DELETE", "/exceptions", nil))
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)
}

func TestFeature_DisabledWithoutDatabase(t *testing.T) {
	f := NewFeature(nil, nil)
	assert.Equal(t, "exceptions", f.Name())
	assert.False(t, f.IsEnabled())
}
