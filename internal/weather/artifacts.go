package weather

import (
	"context"
	"errors"
	"reflect"
)

// Preprocessor turns structured records into the encoded feature matrix the
// model expects, one row per record.
type Preprocessor interface {
	Transform(records []Record) ([][]float64, error)
}

// Model maps an encoded feature matrix to one class index per row.
type Model interface {
	Name() string
	Predict(ctx context.Context, features [][]float64) ([]int, error)
}

// LabelDecoder maps class indices back to category labels.
type LabelDecoder interface {
	InverseTransform(indices []int) ([]string, error)
	Classes() []string
}

// Artifacts bundles the three pipeline collaborators. They are loaded once
// and must not be mutated afterwards.
type Artifacts struct {
	Preprocessor Preprocessor
	Model        Model
	Labels       LabelDecoder
}

func (a Artifacts) validate() error {
	var errs []error
	if isNil(a.Preprocessor) {
		errs = append(errs, errors.New("preprocessor artifact is missing"))
	}
	if isNil(a.Model) {
		errs = append(errs, errors.New("model artifact is missing"))
	}
	if isNil(a.Labels) {
		errs = append(errs, errors.New("label encoder artifact is missing"))
	}
	return errors.Join(errs...)
}

// isNil also catches interfaces holding a nil pointer, which would only
// fail on first use.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Interface, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
