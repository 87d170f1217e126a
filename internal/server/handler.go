package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"

	"github.com/labstack/echo/v4"
	"github.com/vizlink/vizlink/internal/chart"
	"github.com/vizlink/vizlink/internal/dataset"
	"github.com/vizlink/vizlink/internal/linkgroup"
	"github.com/vizlink/vizlink/internal/selection"
	"github.com/vizlink/vizlink/internal/view"
	"github.com/vizlink/vizlink/internal/widget"
)

// Handler owns the HTTP surface: datasets, link groups, views, and
// filter widgets. Views and widgets live here; groups and datasets live
// in the registry.
type Handler struct {
	registry *linkgroup.Registry
	renderer view.Renderer
	sink     view.Sink

	mutex   sync.Mutex
	views   map[string]*view.View
	widgets map[string]*widgetEntry
}

// widgetEntry tracks which concrete control an id resolves to.
type widgetEntry struct {
	kind     string
	group    string
	checkbox *widget.Checkbox
	slider   *widget.Slider
	sel      *widget.Select
}

type HandlerConfig struct {
	Registry *linkgroup.Registry
	Renderer view.Renderer
	// Sink is optional; when set every rendered artifact is forwarded
	// to it.
	Sink view.Sink
}

func (c *HandlerConfig) validate() error {
	var errGrp []error
	if c.Registry == nil {
		errGrp = append(errGrp, errors.New("registry is required"))
	}
	if c.Renderer == nil {
		errGrp = append(errGrp, errors.New("renderer is required"))
	}
	return errors.Join(errGrp...)
}

func NewHandler(cfg *HandlerConfig) (*Handler, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Handler{
		registry: cfg.Registry,
		renderer: cfg.Renderer,
		sink:     cfg.Sink,
		views:    make(map[string]*view.View),
		widgets:  make(map[string]*widgetEntry),
	}, nil
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	v1 := e.Group("/v1")

	v1.POST("/datasets", h.loadDataset)
	v1.GET("/datasets", h.listDatasets)
	v1.GET("/datasets/:name", h.datasetSchema)
	v1.GET("/datasets/:name/columns/:column", h.columnStats)

	v1.POST("/groups", h.createGroup)
	v1.GET("/groups/:id", h.groupState)
	v1.DELETE("/groups/:id", h.removeGroup)

	v1.POST("/views", h.createView)
	v1.GET("/views/:id", h.viewArtifact)
	v1.POST("/views/:id/interact", h.interact)
	v1.DELETE("/views/:id", h.removeView)

	v1.POST("/widgets", h.createWidget)
	v1.POST("/widgets/:id", h.updateWidget)
	v1.DELETE("/widgets/:id", h.removeWidget)
}

// httpError maps domain errors onto status codes. Validation failures
// are the caller's fault; unknown names are 404s.
func httpError(err error) *echo.HTTPError {
	switch {
	case errors.Is(err, selection.ErrInvalidPredicate),
		errors.Is(err, chart.ErrInvalidChannelMapping),
		errors.Is(err, dataset.ErrUnknownColumn),
		errors.Is(err, dataset.ErrTypeMismatch),
		errors.Is(err, dataset.ErrDuplicateKey),
		errors.Is(err, dataset.ErrRaggedColumns),
		errors.Is(err, linkgroup.ErrDuplicateDataset):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, linkgroup.ErrUnknownDataset),
		errors.Is(err, linkgroup.ErrUnknownGroup):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, linkgroup.ErrGroupClosed):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}

type loadDatasetRequest struct {
	Name      string `json:"name"`
	Source    string `json:"source"`
	Path      string `json:"path"`
	Table     string `json:"table,omitempty"`
	KeyColumn string `json:"key_column,omitempty"`
}

type columnInfo struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

type datasetResponse struct {
	Name    string       `json:"name"`
	Rows    int          `json:"rows"`
	Columns []columnInfo `json:"columns"`
}

func describeDataset(d *dataset.Dataset) datasetResponse {
	resp := datasetResponse{Name: d.Name(), Rows: d.RowCount()}
	for _, col := range d.Columns() {
		resp.Columns = append(resp.Columns, columnInfo{Name: col.Name, Type: col.Type.String()})
	}
	return resp
}

func (h *Handler) loadDataset(c echo.Context) error {
	var req loadDatasetRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	var d *dataset.Dataset
	var err error
	switch req.Source {
	case "csv":
		d, err = dataset.LoadCSV(req.Path, &dataset.CSVOptions{
			Name:      req.Name,
			KeyColumn: req.KeyColumn,
		})
	case "sqlite":
		d, err = dataset.LoadSQLite(req.Path, req.Table, &dataset.SQLiteOptions{
			Name:      req.Name,
			KeyColumn: req.KeyColumn,
		})
	default:
		return echo.NewHTTPError(http.StatusBadRequest,
			fmt.Sprintf("unsupported source %q", req.Source))
	}
	if err != nil {
		return httpError(err)
	}

	if err := h.registry.AddDataset(d); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, describeDataset(d))
}

func (h *Handler) listDatasets(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"datasets": h.registry.DatasetNames(),
	})
}

func (h *Handler) datasetSchema(c echo.Context) error {
	d, err := h.registry.Dataset(c.Param("name"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, describeDataset(d))
}

func (h *Handler) columnStats(c echo.Context) error {
	d, err := h.registry.Dataset(c.Param("name"))
	if err != nil {
		return httpError(err)
	}

	column := c.Param("column")
	colType, err := d.ColumnType(column)
	if err != nil {
		return httpError(err)
	}

	switch colType {
	case dataset.Numeric:
		summary, err := d.NumericSummary(column)
		if err != nil {
			return httpError(err)
		}
		return c.JSON(http.StatusOK, summary)
	case dataset.Categorical:
		levels, err := d.Levels(column)
		if err != nil {
			return httpError(err)
		}
		return c.JSON(http.StatusOK, map[string]interface{}{
			"column": column,
			"levels": levels,
		})
	default:
		return echo.NewHTTPError(http.StatusBadRequest,
			fmt.Sprintf("no stats for %s column %q", colType, column))
	}
}

type createGroupRequest struct {
	ID      string `json:"id"`
	Dataset string `json:"dataset"`
}

func (h *Handler) createGroup(c echo.Context) error {
	var req createGroupRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	g, err := h.registry.CreateGroup(req.Dataset, req.ID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{
		"id":      g.ID(),
		"dataset": g.Dataset().Name(),
	})
}

func (h *Handler) groupState(c echo.Context) error {
	g, err := h.registry.Group(c.Param("id"))
	if err != nil {
		return httpError(err)
	}

	sn := g.Snapshot()
	visible := g.Dataset().RowCount()
	if sn.Visible != nil {
		visible = len(sn.Visible)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"id":          g.ID(),
		"dataset":     g.Dataset().Name(),
		"version":     sn.Version,
		"visible":     visible,
		"highlighted": len(sn.Highlight),
	})
}

func (h *Handler) removeGroup(c echo.Context) error {
	if err := h.registry.RemoveGroup(c.Param("id")); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

type createViewRequest struct {
	ID         string            `json:"id,omitempty"`
	Group      string            `json:"group"`
	Title      string            `json:"title,omitempty"`
	Mark       string            `json:"mark"`
	Channels   map[string]string `json:"channels"`
	DimOpacity float64           `json:"dim_opacity,omitempty"`
	Width      int               `json:"width,omitempty"`
	Height     int               `json:"height,omitempty"`
}

func parseMark(s string) (chart.Mark, error) {
	switch s {
	case "point", "":
		return chart.MarkPoint, nil
	case "line":
		return chart.MarkLine, nil
	case "area":
		return chart.MarkArea, nil
	default:
		return chart.MarkPoint, fmt.Errorf("unsupported mark %q", s)
	}
}

func (h *Handler) createView(c echo.Context) error {
	var req createViewRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	g, err := h.registry.Group(req.Group)
	if err != nil {
		return httpError(err)
	}

	mark, err := parseMark(req.Mark)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	channels := make(map[chart.Channel]string, len(req.Channels))
	for ch, col := range req.Channels {
		channels[chart.Channel(ch)] = col
	}

	spec := chart.Spec{
		Title:    req.Title,
		Mark:     mark,
		Channels: channels,
		Style: chart.Style{
			DimOpacity: req.DimOpacity,
			Width:      req.Width,
			Height:     req.Height,
		},
	}

	v, err := view.New(&view.Config{
		ID:       req.ID,
		Spec:     spec,
		Dataset:  g.Dataset(),
		Group:    g,
		Renderer: h.renderer,
		Sink:     h.sink,
	})
	if err != nil {
		return httpError(err)
	}

	h.mutex.Lock()
	h.views[v.ID()] = v
	h.mutex.Unlock()

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"id":    v.ID(),
		"group": req.Group,
	})
}

func (h *Handler) lookupView(id string) (*view.View, error) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	v, ok := h.views[id]
	if !ok {
		return nil, echo.NewHTTPError(http.StatusNotFound, fmt.Sprintf("unknown view %q", id))
	}
	return v, nil
}

func (h *Handler) viewArtifact(c echo.Context) error {
	v, err := h.lookupView(c.Param("id"))
	if err != nil {
		return err
	}

	a, renderErr := v.Render()
	if renderErr != nil {
		return httpError(renderErr)
	}

	c.Response().Header().Set("X-Artifact-Version", strconv.FormatUint(a.Version, 10))
	c.Response().Header().Set("X-Artifact-Fingerprint", a.Fingerprint)
	return c.Blob(http.StatusOK, "image/svg+xml", a.SVG)
}

type interactRequest struct {
	Kind string   `json:"kind"`
	Keys []string `json:"keys,omitempty"`
	XMin *float64 `json:"x_min,omitempty"`
	XMax *float64 `json:"x_max,omitempty"`
	YMin *float64 `json:"y_min,omitempty"`
	YMax *float64 `json:"y_max,omitempty"`
}

func (h *Handler) interact(c echo.Context) error {
	v, err := h.lookupView(c.Param("id"))
	if err != nil {
		return err
	}

	var req interactRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ev := view.Event{Kind: view.Kind(req.Kind)}
	for _, k := range req.Keys {
		ev.Keys = append(ev.Keys, dataset.Key(k))
	}
	if req.XMin != nil && req.XMax != nil {
		ev.XMin, ev.XMax, ev.HasX = *req.XMin, *req.XMax, true
	}
	if req.YMin != nil && req.YMax != nil {
		ev.YMin, ev.YMax, ev.HasY = *req.YMin, *req.YMax, true
	}

	if err := v.Interact(ev); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusAccepted)
}

func (h *Handler) removeView(c echo.Context) error {
	id := c.Param("id")

	h.mutex.Lock()
	v, ok := h.views[id]
	delete(h.views, id)
	h.mutex.Unlock()

	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, fmt.Sprintf("unknown view %q", id))
	}
	v.Close()
	return c.NoContent(http.StatusNoContent)
}

type createWidgetRequest struct {
	ID     string `json:"id,omitempty"`
	Group  string `json:"group"`
	Kind   string `json:"kind"`
	Column string `json:"column"`
}

func (h *Handler) createWidget(c echo.Context) error {
	var req createWidgetRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	g, err := h.registry.Group(req.Group)
	if err != nil {
		return httpError(err)
	}

	entry := &widgetEntry{kind: req.Kind, group: req.Group}
	resp := map[string]interface{}{"kind": req.Kind, "column": req.Column}

	switch req.Kind {
	case "checkbox":
		w, err := widget.NewCheckbox(&widget.CheckboxConfig{
			ID:      req.ID,
			Column:  req.Column,
			Dataset: g.Dataset(),
			Group:   g,
		})
		if err != nil {
			return httpError(err)
		}
		entry.checkbox = w
		resp["id"] = w.ID()
		resp["options"] = w.Options()
	case "slider":
		w, err := widget.NewSlider(&widget.SliderConfig{
			ID:      req.ID,
			Column:  req.Column,
			Dataset: g.Dataset(),
			Group:   g,
		})
		if err != nil {
			return httpError(err)
		}
		entry.slider = w
		lo, hi := w.Range()
		resp["id"] = w.ID()
		resp["min"] = lo
		resp["max"] = hi
	case "select":
		w, err := widget.NewSelect(&widget.SelectConfig{
			ID:      req.ID,
			Column:  req.Column,
			Dataset: g.Dataset(),
			Group:   g,
		})
		if err != nil {
			return httpError(err)
		}
		entry.sel = w
		resp["id"] = w.ID()
		resp["options"] = w.Options()
	default:
		return echo.NewHTTPError(http.StatusBadRequest,
			fmt.Sprintf("unsupported widget kind %q", req.Kind))
	}

	h.mutex.Lock()
	h.widgets[resp["id"].(string)] = entry
	h.mutex.Unlock()

	return c.JSON(http.StatusCreated, resp)
}

type updateWidgetRequest struct {
	// Values drives a checkbox; an empty list clears its filter.
	Values []string `json:"values,omitempty"`
	// Min/Max drive a slider.
	Min *float64 `json:"min,omitempty"`
	Max *float64 `json:"max,omitempty"`
	// Value drives a select; empty clears.
	Value string `json:"value,omitempty"`
	// Clear resets a slider to its full bounds.
	Clear bool `json:"clear,omitempty"`
}

func (h *Handler) updateWidget(c echo.Context) error {
	id := c.Param("id")

	h.mutex.Lock()
	entry, ok := h.widgets[id]
	h.mutex.Unlock()
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, fmt.Sprintf("unknown widget %q", id))
	}

	var req updateWidgetRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	var err error
	switch entry.kind {
	case "checkbox":
		err = entry.checkbox.SetChecked(req.Values)
	case "slider":
		if req.Clear {
			err = entry.slider.ResetRange()
			break
		}
		if req.Min == nil || req.Max == nil {
			return echo.NewHTTPError(http.StatusBadRequest, "slider update requires min and max")
		}
		err = entry.slider.SetRange(*req.Min, *req.Max)
	case "select":
		err = entry.sel.SetValue(req.Value)
	}
	if err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusAccepted)
}

func (h *Handler) removeWidget(c echo.Context) error {
	id := c.Param("id")

	h.mutex.Lock()
	entry, ok := h.widgets[id]
	delete(h.widgets, id)
	h.mutex.Unlock()

	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, fmt.Sprintf("unknown widget %q", id))
	}

	// Dropping a widget also drops its filter contribution and its
	// place in the group's observer list.
	g, err := h.registry.Group(entry.group)
	if err != nil {
		return c.NoContent(http.StatusNoContent)
	}
	_ = g.Reset(id)
	g.Detach(id)
	return c.NoContent(http.StatusNoContent)
}
