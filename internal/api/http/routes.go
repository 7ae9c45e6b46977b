package httpapi

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/i474232898/weather-type-predictor/internal/export"
	"github.com/i474232898/weather-type-predictor/internal/store"
	"github.com/i474232898/weather-type-predictor/internal/weather"
)

// ExportObserver is notified of every generated export.
type ExportObserver interface {
	ObserveExport()
}

// Options carries the optional collaborators of the HTTP layer.
type Options struct {
	// Exports holds generated CSV files for later download. Without it the
	// form and API still predict but offer no download link.
	Exports *store.MemoryStore
	Metrics ExportObserver
	// PredictTimeout bounds a single prediction (0 = no limit).
	PredictTimeout time.Duration
	// Now stamps export file names; defaults to time.Now.
	Now func() time.Time
}

type handler struct {
	service *weather.Service
	opts    Options
}

// RegisterRoutes wires the HTML form and the JSON API into the Fiber app.
func RegisterRoutes(app *fiber.App, service *weather.Service, opts Options) {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	h := &handler{service: service, opts: opts}

	app.Get("/", h.form)
	app.Post("/predict", h.formPredict)
	app.Get("/exports/:id", h.download)

	v1 := app.Group("/api/v1")

	v1.Get("/schema", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"fields":  weather.Fields,
			"classes": service.Classes(),
			"model":   service.ModelName(),
		})
	})

	v1.Post("/predict", func(c *fiber.Ctx) error {
		obs, err := parseObservation(c)
		if err != nil {
			return requestFailure(c, err)
		}

		pred, err := h.predict(c, obs)
		if err != nil {
			return inferenceFailure(c, err)
		}

		resp := fiber.Map{
			"prediction":  pred.Label,
			"observation": obs,
		}
		if exp, err := h.storeExport(obs, pred); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to generate export")
		} else if exp != nil {
			resp["export_id"] = exp.ID
			resp["export_file"] = exp.FileName
			resp["export_url"] = "/exports/" + exp.ID
		}
		return c.JSON(resp)
	})

	v1.Post("/predict/export", func(c *fiber.Ctx) error {
		obs, err := parseObservation(c)
		if err != nil {
			return requestFailure(c, err)
		}

		pred, err := h.predict(c, obs)
		if err != nil {
			return inferenceFailure(c, err)
		}

		data, err := export.Marshal(export.Record{Observation: obs, Prediction: pred.Label})
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to generate export")
		}
		h.observeExport()

		c.Attachment(export.FileName(h.opts.Now()))
		c.Set(fiber.HeaderContentType, export.ContentType+"; charset=utf-8")
		return c.Send(data)
	})
}

func (h *handler) download(c *fiber.Ctx) error {
	if h.opts.Exports == nil {
		return fiber.NewError(fiber.StatusNotFound, "exports are disabled")
	}
	exp, err := h.opts.Exports.Get(c.Params("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "export not found or expired")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch export")
	}

	c.Attachment(exp.FileName)
	c.Set(fiber.HeaderContentType, exp.ContentType+"; charset=utf-8")
	return c.Send(exp.Data)
}

func (h *handler) predict(c *fiber.Ctx, obs weather.Observation) (weather.Prediction, error) {
	ctx := c.UserContext()
	if h.opts.PredictTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.opts.PredictTimeout)
		defer cancel()
	}
	return h.service.Predict(ctx, obs)
}

// storeExport renders the export for a successful prediction and keeps it
// for download. It returns nil when no store is configured.
func (h *handler) storeExport(obs weather.Observation, pred weather.Prediction) (*store.Export, error) {
	if h.opts.Exports == nil {
		return nil, nil
	}

	data, err := export.Marshal(export.Record{Observation: obs, Prediction: pred.Label})
	if err != nil {
		return nil, err
	}

	now := h.opts.Now()
	exp := store.Export{
		ID:          uuid.NewString(),
		FileName:    export.FileName(now),
		ContentType: export.ContentType,
		Data:        data,
		CreatedAt:   now,
	}
	h.opts.Exports.Save(exp)
	h.observeExport()
	return &exp, nil
}

func (h *handler) observeExport() {
	if h.opts.Metrics != nil {
		h.opts.Metrics.ObserveExport()
	}
}

// invalidObservationError lists the fields that failed domain validation.
type invalidObservationError struct {
	fields []string
}

func (e *invalidObservationError) Error() string {
	return "invalid observation: " + strings.Join(e.fields, "; ")
}

func parseObservation(c *fiber.Ctx) (weather.Observation, error) {
	var req observationRequest
	if err := c.BodyParser(&req); err != nil {
		return weather.Observation{}, fiber.NewError(fiber.StatusBadRequest, "invalid request body: "+err.Error())
	}
	if err := validate.Struct(req); err != nil {
		return weather.Observation{}, &invalidObservationError{fields: validationMessages(err)}
	}
	return req.toObservation(), nil
}

// requestFailure renders validation errors with their field list; other
// errors go to the central error handler.
func requestFailure(c *fiber.Ctx, err error) error {
	var invalid *invalidObservationError
	if errors.As(err, &invalid) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   true,
			"message": "invalid observation",
			"fields":  invalid.fields,
		})
	}
	return err
}

func inferenceFailure(c *fiber.Ctx, err error) error {
	stage, _ := weather.StageOf(err)
	return c.Status(inferenceStatus(err)).JSON(fiber.Map{
		"error":   true,
		"message": err.Error(),
		"stage":   stage,
	})
}

// inferenceStatus maps input problems to 422 and artifact problems to 500.
func inferenceStatus(err error) int {
	if errors.Is(err, weather.ErrEncoding) {
		return fiber.StatusUnprocessableEntity
	}
	return fiber.StatusInternalServerError
}
