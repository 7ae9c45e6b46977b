package artifact

import (
	"fmt"

	"github.com/i474232898/weather-type-predictor/internal/weather"
)

// LabelEncoderSpec is the serialized form of a LabelEncoder.
type LabelEncoderSpec struct {
	Classes []string `yaml:"classes" json:"classes"`
}

// LabelEncoder maps class indices to the category strings they were fitted
// on, in order.
type LabelEncoder struct {
	classes []string
	index   map[string]int
}

var _ weather.LabelDecoder = (*LabelEncoder)(nil)

// NewLabelEncoder validates spec and builds the encoder.
func NewLabelEncoder(spec LabelEncoderSpec) (*LabelEncoder, error) {
	if len(spec.Classes) == 0 {
		return nil, fmt.Errorf("label encoder has no classes")
	}
	index := make(map[string]int, len(spec.Classes))
	for i, c := range spec.Classes {
		if c == "" {
			return nil, fmt.Errorf("label encoder class %d is empty", i)
		}
		if _, dup := index[c]; dup {
			return nil, fmt.Errorf("label encoder class %q is duplicated", c)
		}
		index[c] = i
	}
	classes := make([]string, len(spec.Classes))
	copy(classes, spec.Classes)
	return &LabelEncoder{classes: classes, index: index}, nil
}

// Classes returns a copy of the class list.
func (e *LabelEncoder) Classes() []string {
	out := make([]string, len(e.classes))
	copy(out, e.classes)
	return out
}

// InverseTransform maps indices back to labels.
func (e *LabelEncoder) InverseTransform(indices []int) ([]string, error) {
	out := make([]string, len(indices))
	for i, idx := range indices {
		if idx < 0 || idx >= len(e.classes) {
			return nil, fmt.Errorf("class index %d is out of range [0, %d)", idx, len(e.classes))
		}
		out[i] = e.classes[idx]
	}
	return out, nil
}

// Transform maps labels to indices.
func (e *LabelEncoder) Transform(labels []string) ([]int, error) {
	out := make([]int, len(labels))
	for i, l := range labels {
		idx, ok := e.index[l]
		if !ok {
			return nil, fmt.Errorf("label %q was not seen during fit", l)
		}
		out[i] = idx
	}
	return out, nil
}
