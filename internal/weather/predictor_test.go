package weather

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakePreprocessor encodes the three categorical columns as positions in
// fixed lists and passes the numeric columns through.
type fakePreprocessor struct {
	err  error
	rows int
	seen []Record
}

var fakeCategories = map[string][]string{
	ColumnLocation:   {"Rural", "Suburban", "Urban"},
	ColumnSeason:     {"Autumn", "Spring", "Summer", "Winter"},
	ColumnCloudCover: {"Clear", "Overcast", "Partly Cloudy"},
}

func (f *fakePreprocessor) Transform(records []Record) ([][]float64, error) {
	f.seen = append(f.seen, records...)
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float64, 0, len(records))
	for _, rec := range records {
		var row []float64
		for _, col := range rec {
			switch v := col.Value.(type) {
			case float64:
				row = append(row, v)
			case string:
				idx := -1
				for i, c := range fakeCategories[col.Name] {
					if c == v {
						idx = i
					}
				}
				if idx < 0 {
					return nil, fmt.Errorf("found unknown category %q in column %q", v, col.Name)
				}
				row = append(row, float64(idx))
			}
		}
		out = append(out, row)
	}
	if f.rows > 0 {
		for len(out) < f.rows {
			out = append(out, out[0])
		}
	}
	return out, nil
}

// fakeModel picks the class from the cloud cover code (last feature).
type fakeModel struct {
	err     error
	indices []int
}

func (m *fakeModel) Name() string { return "fake" }

func (m *fakeModel) Predict(_ context.Context, features [][]float64) ([]int, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.indices != nil {
		return m.indices, nil
	}
	out := make([]int, len(features))
	for i, row := range features {
		out[i] = int(row[len(row)-1])
	}
	return out, nil
}

type fakeLabels struct {
	classes []string
	err     error
}

func (l *fakeLabels) Classes() []string { return l.classes }

func (l *fakeLabels) InverseTransform(indices []int) ([]string, error) {
	if l.err != nil {
		return nil, l.err
	}
	out := make([]string, len(indices))
	for i, idx := range indices {
		if idx < 0 || idx >= len(l.classes) {
			return nil, fmt.Errorf("class index %d is out of range", idx)
		}
		out[i] = l.classes[idx]
	}
	return out, nil
}

func newFakeArtifacts() (Artifacts, *fakePreprocessor, *fakeModel, *fakeLabels) {
	pre := &fakePreprocessor{}
	model := &fakeModel{}
	labels := &fakeLabels{classes: []string{"Sunny", "Cloudy", "Rainy"}}
	return Artifacts{Preprocessor: pre, Model: model, Labels: labels}, pre, model, labels
}

func TestNewPredictorRequiresAllArtifacts(t *testing.T) {
	arts, _, _, _ := newFakeArtifacts()

	_, err := NewPredictor(Artifacts{Model: arts.Model, Labels: arts.Labels})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "preprocessor")

	_, err = NewPredictor(Artifacts{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model")
	assert.Contains(t, err.Error(), "label encoder")
}

func TestNewPredictorRejectsTypedNilArtifacts(t *testing.T) {
	arts, _, _, _ := newFakeArtifacts()

	var pre *fakePreprocessor
	_, err := NewPredictor(Artifacts{Preprocessor: pre, Model: arts.Model, Labels: arts.Labels})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "preprocessor artifact is missing")

	var model *fakeModel
	var labels *fakeLabels
	_, err = NewPredictor(Artifacts{Preprocessor: arts.Preprocessor, Model: model, Labels: labels})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model artifact is missing")
	assert.Contains(t, err.Error(), "label encoder artifact is missing")
}

func TestPredictDefaultObservation(t *testing.T) {
	arts, pre, _, _ := newFakeArtifacts()
	p, err := NewPredictor(arts)
	require.NoError(t, err)

	pred, err := p.Predict(context.Background(), DefaultObservation())
	require.NoError(t, err)
	assert.Equal(t, "Sunny", pred.Label)
	assert.Contains(t, p.Classes(), pred.Label)

	require.Len(t, pre.seen, 1)
	assert.Equal(t, Columns(), pre.seen[0].Names())
}

func TestPredictIsDeterministic(t *testing.T) {
	arts, _, _, _ := newFakeArtifacts()
	p, err := NewPredictor(arts)
	require.NoError(t, err)

	obs := DefaultObservation()
	obs.CloudCover = CloudCoverOvercast

	first, err := p.Predict(context.Background(), obs)
	require.NoError(t, err)
	second, err := p.Predict(context.Background(), obs)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestPredictAcceptsAnyFloat(t *testing.T) {
	arts, _, _, _ := newFakeArtifacts()
	p, err := NewPredictor(arts)
	require.NoError(t, err)

	for _, wind := range []float64{0.0, 100.0, -5.0, 250.0} {
		obs := DefaultObservation()
		obs.WindSpeed = wind
		_, err := p.Predict(context.Background(), obs)
		assert.NoError(t, err, "wind speed %v", wind)
	}
}

func TestPredictUnknownLocationIsEncodingError(t *testing.T) {
	arts, _, _, _ := newFakeArtifacts()
	p, err := NewPredictor(arts)
	require.NoError(t, err)

	obs := DefaultObservation()
	obs.Location = "Downtown"

	_, err = p.Predict(context.Background(), obs)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInference)
	assert.ErrorIs(t, err, ErrEncoding)
	assert.NotErrorIs(t, err, ErrPrediction)
	assert.Contains(t, err.Error(), "Downtown")

	var ie *InferenceError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, StageEncoding, ie.Stage)
}

func TestPredictStageErrors(t *testing.T) {
	boom := errors.New("boom")

	tests := []struct {
		name    string
		mutate  func(*fakePreprocessor, *fakeModel, *fakeLabels)
		stage   Stage
		target  error
		message string
	}{
		{
			name:   "preprocessor failure",
			mutate: func(p *fakePreprocessor, _ *fakeModel, _ *fakeLabels) { p.err = boom },
			stage:  StageEncoding, target: ErrEncoding, message: "boom",
		},
		{
			name:   "preprocessor returns extra rows",
			mutate: func(p *fakePreprocessor, _ *fakeModel, _ *fakeLabels) { p.rows = 2 },
			stage:  StageEncoding, target: ErrEncoding, message: "2 rows",
		},
		{
			name:   "model failure",
			mutate: func(_ *fakePreprocessor, m *fakeModel, _ *fakeLabels) { m.err = boom },
			stage:  StagePrediction, target: ErrPrediction, message: "boom",
		},
		{
			name:   "model returns no index",
			mutate: func(_ *fakePreprocessor, m *fakeModel, _ *fakeLabels) { m.indices = []int{} },
			stage:  StagePrediction, target: ErrPrediction, message: "0 class indices",
		},
		{
			name:   "index outside label set",
			mutate: func(_ *fakePreprocessor, m *fakeModel, _ *fakeLabels) { m.indices = []int{7} },
			stage:  StageDecoding, target: ErrDecoding, message: "out of range",
		},
		{
			name:   "label encoder failure",
			mutate: func(_ *fakePreprocessor, _ *fakeModel, l *fakeLabels) { l.err = boom },
			stage:  StageDecoding, target: ErrDecoding, message: "boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			arts, pre, model, labels := newFakeArtifacts()
			tt.mutate(pre, model, labels)
			p, err := NewPredictor(arts)
			require.NoError(t, err)

			pred, err := p.Predict(context.Background(), DefaultObservation())
			require.Error(t, err)
			assert.Empty(t, pred.Label)
			assert.ErrorIs(t, err, ErrInference)
			assert.ErrorIs(t, err, tt.target)
			assert.Contains(t, err.Error(), tt.message)

			stage, ok := StageOf(err)
			assert.True(t, ok)
			assert.Equal(t, tt.stage, stage)
		})
	}
}

func TestPredictUnwrapsUnderlyingError(t *testing.T) {
	arts, _, model, _ := newFakeArtifacts()
	model.err = context.DeadlineExceeded
	p, err := NewPredictor(arts)
	require.NoError(t, err)

	_, err = p.Predict(context.Background(), DefaultObservation())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.ErrorIs(t, err, ErrPrediction)
}

func TestObservationRecordOrder(t *testing.T) {
	rec := DefaultObservation().Record()
	require.Len(t, rec, 10)
	assert.Equal(t, Columns(), rec.Names())

	v, ok := rec.Lookup(ColumnCloudCover)
	require.True(t, ok)
	assert.Equal(t, "Clear", v)

	v, ok = rec.Lookup(ColumnPressure)
	require.True(t, ok)
	assert.Equal(t, 1013.0, v)

	_, ok = rec.Lookup("Dew Point")
	assert.False(t, ok)
}
