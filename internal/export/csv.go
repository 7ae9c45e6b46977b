// Package export renders a prediction and its inputs as a one-row CSV file
// and parses such files back.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/i474232898/weather-type-predictor/internal/weather"
)

const (
	// ColumnPrediction is the column appended to the ten input columns.
	ColumnPrediction = "Predicted Weather Type"

	// ContentType of an encoded export.
	ContentType = "text/csv"

	fileNameLayout = "20060102_150405"
)

// Record is an observation together with its predicted label.
type Record struct {
	Observation weather.Observation
	Prediction  string
}

// Header returns the export columns in order.
func Header() []string {
	return append(weather.Columns(), ColumnPrediction)
}

// FileName returns the download name for an export generated at t.
func FileName(t time.Time) string {
	return "weather_prediction_" + t.Format(fileNameLayout) + ".csv"
}

// Encode writes r as a header line plus one data row.
func Encode(w io.Writer, r Record) error {
	o := r.Observation
	row := []string{
		formatFloat(o.WindSpeed),
		formatFloat(o.Temperature),
		formatFloat(o.UVIndex),
		formatFloat(o.Precipitation),
		formatFloat(o.Pressure),
		formatFloat(o.Visibility),
		formatFloat(o.Humidity),
		string(o.Location),
		string(o.Season),
		string(o.CloudCover),
		r.Prediction,
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(Header()); err != nil {
		return fmt.Errorf("write export header: %w", err)
	}
	if err := cw.Write(row); err != nil {
		return fmt.Errorf("write export row: %w", err)
	}
	cw.Flush()
	return cw.Error()
}

// Marshal returns the encoded form of r.
func Marshal(r Record) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, r); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode parses an export produced by Encode.
func Decode(rd io.Reader) (Record, error) {
	cr := csv.NewReader(rd)
	cr.FieldsPerRecord = len(Header())

	rows, err := cr.ReadAll()
	if err != nil {
		return Record{}, fmt.Errorf("read export: %w", err)
	}
	if len(rows) != 2 {
		return Record{}, fmt.Errorf("export must have a header and exactly one row, got %d lines", len(rows))
	}
	for i, name := range Header() {
		if rows[0][i] != name {
			return Record{}, fmt.Errorf("export column %d is %q, expected %q", i, rows[0][i], name)
		}
	}

	row := rows[1]
	nums := make([]float64, 7)
	for i := range nums {
		v, err := strconv.ParseFloat(row[i], 64)
		if err != nil {
			return Record{}, fmt.Errorf("column %q: %w", rows[0][i], err)
		}
		nums[i] = v
	}

	return Record{
		Observation: weather.Observation{
			WindSpeed:     nums[0],
			Temperature:   nums[1],
			UVIndex:       nums[2],
			Precipitation: nums[3],
			Pressure:      nums[4],
			Visibility:    nums[5],
			Humidity:      nums[6],
			Location:      weather.Location(row[7]),
			Season:        weather.Season(row[8]),
			CloudCover:    weather.CloudCover(row[9]),
		},
		Prediction: row[10],
	}, nil
}

// formatFloat writes the shortest representation that parses back to v,
// keeping a decimal point on whole numbers ("10.0").
func formatFloat(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if strings.ContainsAny(s, ".NI") {
		return s
	}
	return s + ".0"
}
