package httpapi

import (
	"bytes"
	"embed"
	"errors"
	"html/template"
	"log"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weather-type-predictor/internal/weather"
)

//go:embed templates/index.html
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

type fieldView struct {
	Spec  weather.FieldSpec
	Value string
	// Min and Max are the formatted input bounds; empty for categories.
	Min string
	Max string
}

type summaryCell struct {
	Column string
	Value  string
}

type pageData struct {
	Fields     []fieldView
	Summary    []summaryCell
	Prediction string
	ExportURL  string
	ExportFile string
	Error      string
	Errors     []string
}

// form renders the input form and its summary table pre-filled with the
// default observation.
func (h *handler) form(c *fiber.Ctx) error {
	return renderPage(c, fiber.StatusOK, pageData{
		Fields:  fieldViews(defaultValue),
		Summary: summary(weather.DefaultObservation()),
	})
}

// formPredict handles a form submission. Results and failures are rendered
// inline on the same page.
func (h *handler) formPredict(c *fiber.Ctx) error {
	data := pageData{Fields: fieldViews(c.FormValue)}

	obs, err := parseObservation(c)
	if err != nil {
		data.Errors = []string{err.Error()}
		var invalid *invalidObservationError
		if errors.As(err, &invalid) {
			data.Errors = invalid.fields
		}
		return renderPage(c, fiber.StatusBadRequest, data)
	}
	data.Summary = summary(obs)

	pred, err := h.predict(c, obs)
	if err != nil {
		data.Error = err.Error()
		return renderPage(c, inferenceStatus(err), data)
	}
	data.Prediction = pred.Label

	exp, err := h.storeExport(obs, pred)
	if err != nil {
		log.Printf("ERROR: failed to generate export: %v", err)
	} else if exp != nil {
		data.ExportURL = "/exports/" + exp.ID
		data.ExportFile = exp.FileName
	}

	return renderPage(c, fiber.StatusOK, data)
}

func renderPage(c *fiber.Ctx, status int, data pageData) error {
	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to render page")
	}
	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.Status(status).Send(buf.Bytes())
}

func fieldViews(value func(key string, defaultValue ...string) string) []fieldView {
	views := make([]fieldView, len(weather.Fields))
	for i, f := range weather.Fields {
		views[i] = fieldView{
			Spec:  f,
			Value: value(f.Key, formatDefault(f.Default)),
			Min:   formatBound(f.Min),
			Max:   formatBound(f.Max),
		}
	}
	return views
}

// defaultValue has the shape of fiber.Ctx.FormValue so the initial form and
// a re-rendered submission share fieldViews.
func defaultValue(_ string, defaultValue ...string) string {
	if len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return ""
}

func formatDefault(v any) string {
	switch x := v.(type) {
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case string:
		return x
	default:
		return ""
	}
}

func formatBound(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func summary(obs weather.Observation) []summaryCell {
	rec := obs.Record()
	cells := make([]summaryCell, len(rec))
	for i, col := range rec {
		var v string
		switch x := col.Value.(type) {
		case float64:
			v = strconv.FormatFloat(x, 'f', -1, 64)
		case string:
			v = x
		}
		cells[i] = summaryCell{Column: col.Name, Value: v}
	}
	return cells
}
