package httpapi

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/i474232898/weather-type-predictor/internal/weather"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report fields by their JSON/form key.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// observationRequest is the body of a prediction request. Pointers make a
// missing number distinguishable from zero.
type observationRequest struct {
	WindSpeed     *float64 `json:"wind_speed" form:"wind_speed" validate:"required,gte=0,lte=100"`
	Temperature   *float64 `json:"temperature" form:"temperature" validate:"required,gte=-30,lte=50"`
	UVIndex       *float64 `json:"uv_index" form:"uv_index" validate:"required,gte=0,lte=15"`
	Precipitation *float64 `json:"precipitation_pct" form:"precipitation_pct" validate:"required,gte=0,lte=100"`
	Pressure      *float64 `json:"pressure" form:"pressure" validate:"required,gte=900,lte=1100"`
	Visibility    *float64 `json:"visibility" form:"visibility" validate:"required,gte=0,lte=50"`
	Humidity      *float64 `json:"humidity" form:"humidity" validate:"required,gte=0,lte=100"`
	Location      string   `json:"location" form:"location" validate:"required,oneof=Urban Suburban Rural"`
	Season        string   `json:"season" form:"season" validate:"required,oneof=Summer Winter Spring Autumn"`
	CloudCover    string   `json:"cloud_cover" form:"cloud_cover" validate:"required,oneof=Clear 'Partly Cloudy' Overcast"`
}

// toObservation must only be called after a successful validate.Struct.
func (r observationRequest) toObservation() weather.Observation {
	return weather.Observation{
		WindSpeed:     *r.WindSpeed,
		Temperature:   *r.Temperature,
		UVIndex:       *r.UVIndex,
		Precipitation: *r.Precipitation,
		Pressure:      *r.Pressure,
		Visibility:    *r.Visibility,
		Humidity:      *r.Humidity,
		Location:      weather.Location(r.Location),
		Season:        weather.Season(r.Season),
		CloudCover:    weather.CloudCover(r.CloudCover),
	}
}

// validationMessages flattens validator errors into one line per field.
func validationMessages(err error) []string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{err.Error()}
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		var msg string
		switch fe.Tag() {
		case "required":
			msg = "is required"
		case "gte":
			msg = "must be at least " + fe.Param()
		case "lte":
			msg = "must be at most " + fe.Param()
		case "oneof":
			msg = "must be one of " + fe.Param()
		default:
			msg = "failed " + fe.Tag() + " validation"
		}
		msgs = append(msgs, fmt.Sprintf("%s %s", fe.Field(), msg))
	}
	return msgs
}
