package artifact

import (
	"fmt"
	"math"
	"strings"

	"github.com/i474232898/weather-type-predictor/internal/weather"
)

// Transformer kinds understood by the column transformer.
const (
	KindStandardScaler = "standard_scaler"
	KindPassthrough    = "passthrough"
	KindOneHot         = "one_hot"
	KindOrdinal        = "ordinal"
)

// Unknown-category policies.
const (
	HandleUnknownError  = "error"
	HandleUnknownIgnore = "ignore"
)

// TransformerSpec is the serialized form of one column transformer step.
type TransformerSpec struct {
	Name    string   `yaml:"name" json:"name"`
	Kind    string   `yaml:"kind" json:"kind"`
	Columns []string `yaml:"columns" json:"columns"`

	// standard_scaler
	Mean  []float64 `yaml:"mean,omitempty" json:"mean,omitempty"`
	Scale []float64 `yaml:"scale,omitempty" json:"scale,omitempty"`

	// one_hot, ordinal
	Categories    [][]string `yaml:"categories,omitempty" json:"categories,omitempty"`
	HandleUnknown string     `yaml:"handle_unknown,omitempty" json:"handle_unknown,omitempty"`
	UnknownValue  *float64   `yaml:"unknown_value,omitempty" json:"unknown_value,omitempty"`
}

// PreprocessorSpec is the serialized form of a ColumnTransformer.
type PreprocessorSpec struct {
	Transformers []TransformerSpec `yaml:"transformers" json:"transformers"`
}

// ColumnTransformer applies an ordered list of per-column encoders and
// concatenates their outputs.
type ColumnTransformer struct {
	steps []TransformerSpec
	width int
}

var _ weather.Preprocessor = (*ColumnTransformer)(nil)

// NewColumnTransformer validates spec and builds the transformer.
func NewColumnTransformer(spec PreprocessorSpec) (*ColumnTransformer, error) {
	if len(spec.Transformers) == 0 {
		return nil, fmt.Errorf("preprocessor has no transformers")
	}

	ct := &ColumnTransformer{}
	for i, step := range spec.Transformers {
		if step.Name == "" {
			step.Name = fmt.Sprintf("step%d", i)
		}
		if len(step.Columns) == 0 {
			return nil, fmt.Errorf("transformer %q has no columns", step.Name)
		}

		switch step.Kind {
		case KindStandardScaler:
			if len(step.Mean) != len(step.Columns) || len(step.Scale) != len(step.Columns) {
				return nil, fmt.Errorf("transformer %q: mean/scale must have %d entries", step.Name, len(step.Columns))
			}
			ct.width += len(step.Columns)
		case KindPassthrough:
			ct.width += len(step.Columns)
		case KindOneHot:
			if len(step.Categories) != len(step.Columns) {
				return nil, fmt.Errorf("transformer %q: categories must have %d entries", step.Name, len(step.Columns))
			}
			switch step.HandleUnknown {
			case "":
				step.HandleUnknown = HandleUnknownError
			case HandleUnknownError, HandleUnknownIgnore:
			default:
				return nil, fmt.Errorf("transformer %q: unsupported handle_unknown %q", step.Name, step.HandleUnknown)
			}
			for _, cats := range step.Categories {
				if len(cats) == 0 {
					return nil, fmt.Errorf("transformer %q: empty category list", step.Name)
				}
				ct.width += len(cats)
			}
		case KindOrdinal:
			if len(step.Categories) != len(step.Columns) {
				return nil, fmt.Errorf("transformer %q: categories must have %d entries", step.Name, len(step.Columns))
			}
			ct.width += len(step.Columns)
		default:
			return nil, fmt.Errorf("transformer %q: unsupported kind %q", step.Name, step.Kind)
		}

		ct.steps = append(ct.steps, step)
	}

	return ct, nil
}

// Width is the number of encoded features per row.
func (ct *ColumnTransformer) Width() int {
	return ct.width
}

// Transform encodes every record into one feature row.
func (ct *ColumnTransformer) Transform(records []weather.Record) ([][]float64, error) {
	out := make([][]float64, 0, len(records))
	for i, rec := range records {
		row, err := ct.transformRow(rec)
		if err != nil {
			if len(records) == 1 {
				return nil, err
			}
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		out = append(out, row)
	}
	return out, nil
}

func (ct *ColumnTransformer) transformRow(rec weather.Record) ([]float64, error) {
	row := make([]float64, 0, ct.width)

	for _, step := range ct.steps {
		for ci, col := range step.Columns {
			raw, ok := rec.Lookup(col)
			if !ok {
				return nil, fmt.Errorf("column %q is missing from the input record", col)
			}

			switch step.Kind {
			case KindStandardScaler:
				x, err := numeric(col, raw)
				if err != nil {
					return nil, err
				}
				scale := step.Scale[ci]
				if scale == 0 {
					scale = 1
				}
				row = append(row, (x-step.Mean[ci])/scale)

			case KindPassthrough:
				x, err := numeric(col, raw)
				if err != nil {
					return nil, err
				}
				row = append(row, x)

			case KindOneHot:
				v, err := categorical(col, raw)
				if err != nil {
					return nil, err
				}
				cats := step.Categories[ci]
				idx := indexOf(cats, v)
				if idx < 0 && step.HandleUnknown == HandleUnknownError {
					return nil, unknownCategory(col, v, cats)
				}
				for j := range cats {
					if j == idx {
						row = append(row, 1)
					} else {
						row = append(row, 0)
					}
				}

			case KindOrdinal:
				v, err := categorical(col, raw)
				if err != nil {
					return nil, err
				}
				cats := step.Categories[ci]
				idx := indexOf(cats, v)
				if idx < 0 {
					if step.UnknownValue == nil {
						return nil, unknownCategory(col, v, cats)
					}
					row = append(row, *step.UnknownValue)
					continue
				}
				row = append(row, float64(idx))
			}
		}
	}

	return row, nil
}

func numeric(col string, v any) (float64, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case nil:
		return math.NaN(), nil
	default:
		return 0, fmt.Errorf("column %q: expected a number, got %T", col, v)
	}
}

func categorical(col string, v any) (string, error) {
	switch x := v.(type) {
	case string:
		return x, nil
	default:
		return "", fmt.Errorf("column %q: expected a category string, got %T", col, v)
	}
}

func unknownCategory(col, value string, known []string) error {
	return fmt.Errorf("found unknown category %q in column %q (known: %s)", value, col, strings.Join(known, ", "))
}

func indexOf(values []string, v string) int {
	for i, c := range values {
		if c == v {
			return i
		}
	}
	return -1
}
