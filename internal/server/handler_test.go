package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vizlink/vizlink/internal/dataset"
	"github.com/vizlink/vizlink/internal/linkgroup"
	"github.com/vizlink/vizlink/internal/render"
)

type testEnv struct {
	echo     *echo.Echo
	handler  *Handler
	registry *linkgroup.Registry
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	registry, err := linkgroup.NewRegistry(nil)
	require.NoError(t, err)

	h, err := NewHandler(&HandlerConfig{
		Registry: registry,
		Renderer: render.New(),
	})
	require.NoError(t, err)

	e := echo.New()
	h.RegisterRoutes(e)

	return &testEnv{echo: e, handler: h, registry: registry}
}

func (env *testEnv) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	env.echo.ServeHTTP(rec, req)
	return rec
}

func (env *testEnv) seedCars(t *testing.T) {
	t.Helper()

	d, err := dataset.NewBuilder("cars").
		Key("model", []string{"A", "B", "C"}).
		Numeric("cyl", []float64{4, 6, 4}).
		Numeric("mpg", []float64{30, 21, 27}).
		Categorical("origin", []string{"us", "jp", "us"}).
		Build()
	require.NoError(t, err)
	require.NoError(t, env.registry.AddDataset(d))
}

func (env *testEnv) seedGroup(t *testing.T) {
	t.Helper()

	env.seedCars(t)
	rec := env.do(t, http.MethodPost, "/v1/groups", map[string]string{
		"id":      "g1",
		"dataset": "cars",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestHandler_LoadCSVDataset(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	path := filepath.Join(t.TempDir(), "cars.csv")
	contents := "model,cyl,origin\nA,4,us\nB,6,jp\nC,4,us\n"
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))

	rec := env.do(t, http.MethodPost, "/v1/datasets", loadDatasetRequest{
		Name:      "cars",
		Source:    "csv",
		Path:      path,
		KeyColumn: "model",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	body := decodeJSON(t, rec)
	assert.Equal(t, "cars", body["name"])
	assert.EqualValues(t, 3, body["rows"])

	rec = env.do(t, http.MethodGet, "/v1/datasets", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "cars")
}

func TestHandler_LoadDatasetRejectsUnknownSource(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	rec := env.do(t, http.MethodPost, "/v1/datasets", loadDatasetRequest{
		Name:   "cars",
		Source: "parquet",
		Path:   "cars.parquet",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_DatasetSchemaAndStats(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.seedCars(t)

	t.Run("schema", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/v1/datasets/cars", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeJSON(t, rec)
		assert.Len(t, body["columns"], 4)
	})

	t.Run("numeric column summary", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/v1/datasets/cars/columns/cyl", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeJSON(t, rec)
		assert.EqualValues(t, 4, body["min"])
		assert.EqualValues(t, 6, body["max"])
	})

	t.Run("categorical column levels", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/v1/datasets/cars/columns/origin", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeJSON(t, rec)
		assert.ElementsMatch(t, []interface{}{"us", "jp"}, body["levels"])
	})

	t.Run("unknown dataset", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/v1/datasets/nope", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("unknown column", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/v1/datasets/cars/columns/nope", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandler_GroupLifecycle(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.seedGroup(t)

	rec := env.do(t, http.MethodGet, "/v1/groups/g1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeJSON(t, rec)
	assert.EqualValues(t, 3, body["visible"])
	assert.EqualValues(t, 0, body["highlighted"])

	rec = env.do(t, http.MethodDelete, "/v1/groups/g1", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = env.do(t, http.MethodGet, "/v1/groups/g1", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandler_ViewLifecycle(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.seedGroup(t)

	rec := env.do(t, http.MethodPost, "/v1/views", createViewRequest{
		Group:    "g1",
		Title:    "mpg by cyl",
		Mark:     "point",
		Channels: map[string]string{"x": "cyl", "y": "mpg", "color": "origin"},
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	viewID := decodeJSON(t, rec)["id"].(string)
	require.NotEmpty(t, viewID)

	t.Run("artifact is SVG", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/v1/views/"+viewID, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "image/svg+xml", rec.Header().Get(echo.HeaderContentType))
		assert.NotEmpty(t, rec.Header().Get("X-Artifact-Fingerprint"))
		assert.Contains(t, rec.Body.String(), "<svg")
	})

	t.Run("click interaction highlights", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, fmt.Sprintf("/v1/views/%s/interact", viewID), interactRequest{
			Kind: "click",
			Keys: []string{"A"},
		})
		require.Equal(t, http.StatusAccepted, rec.Code)

		rec = env.do(t, http.MethodGet, "/v1/groups/g1", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.EqualValues(t, 1, decodeJSON(t, rec)["highlighted"])
	})

	t.Run("brush interaction", func(t *testing.T) {
		lo, hi := 3.0, 5.0
		rec := env.do(t, http.MethodPost, fmt.Sprintf("/v1/views/%s/interact", viewID), interactRequest{
			Kind: "brush",
			XMin: &lo,
			XMax: &hi,
		})
		require.Equal(t, http.StatusAccepted, rec.Code)

		// cyl in [3,5] hits A and C.
		rec = env.do(t, http.MethodGet, "/v1/groups/g1", nil)
		assert.EqualValues(t, 2, decodeJSON(t, rec)["highlighted"])
	})

	t.Run("delete view", func(t *testing.T) {
		rec := env.do(t, http.MethodDelete, "/v1/views/"+viewID, nil)
		assert.Equal(t, http.StatusNoContent, rec.Code)

		rec = env.do(t, http.MethodGet, "/v1/views/"+viewID, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestHandler_CreateViewRejectsBadSpec(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.seedGroup(t)

	rec := env.do(t, http.MethodPost, "/v1/views", createViewRequest{
		Group:    "g1",
		Channels: map[string]string{"x": "origin", "y": "mpg"},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_WidgetLifecycle(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.seedGroup(t)

	rec := env.do(t, http.MethodPost, "/v1/widgets", createWidgetRequest{
		Group:  "g1",
		Kind:   "checkbox",
		Column: "origin",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	body := decodeJSON(t, rec)
	widgetID := body["id"].(string)
	assert.ElementsMatch(t, []interface{}{"us", "jp"}, body["options"])

	t.Run("checking narrows the group", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/v1/widgets/"+widgetID, updateWidgetRequest{
			Values: []string{"jp"},
		})
		require.Equal(t, http.StatusAccepted, rec.Code)

		rec = env.do(t, http.MethodGet, "/v1/groups/g1", nil)
		assert.EqualValues(t, 1, decodeJSON(t, rec)["visible"])
	})

	t.Run("slider bounds come from the column", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/v1/widgets", createWidgetRequest{
			Group:  "g1",
			Kind:   "slider",
			Column: "mpg",
		})
		require.Equal(t, http.StatusCreated, rec.Code)
		body := decodeJSON(t, rec)
		assert.EqualValues(t, 21, body["min"])
		assert.EqualValues(t, 30, body["max"])
	})

	t.Run("unsupported kind", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/v1/widgets", createWidgetRequest{
			Group:  "g1",
			Kind:   "dial",
			Column: "mpg",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("delete clears the filter", func(t *testing.T) {
		rec := env.do(t, http.MethodDelete, "/v1/widgets/"+widgetID, nil)
		require.Equal(t, http.StatusNoContent, rec.Code)

		rec = env.do(t, http.MethodGet, "/v1/groups/g1", nil)
		assert.EqualValues(t, 3, decodeJSON(t, rec)["visible"])
	})

	t.Run("same id can be recreated after delete", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/v1/widgets", createWidgetRequest{
			ID:     widgetID,
			Group:  "g1",
			Kind:   "checkbox",
			Column: "origin",
		})
		require.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, widgetID, decodeJSON(t, rec)["id"])
	})
}

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("valid config", func(t *testing.T) {
		env := newTestEnv(t)
		s, err := New(&Config{Address: "127.0.0.1", Port: "0", Handler: env.handler})
		require.NoError(t, err)
		assert.Equal(t, serverName, s.Name())
	})

	t.Run("missing handler", func(t *testing.T) {
		_, err := New(&Config{Port: "8080"})
		require.Error(t, err)
	})

	t.Run("missing port", func(t *testing.T) {
		env := newTestEnv(t)
		_, err := New(&Config{Handler: env.handler})
		require.Error(t, err)
	})
}
