package artifact

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Two features, three classes, one tree per class. Older releases wrote
// default_left as booleans, which the first tree uses.
const threeClassModel = `{
  "learner": {
    "learner_model_param": {"base_score": "5E-1", "num_class": "3", "num_feature": "2"},
    "objective": {"name": "multi:softprob"},
    "gradient_booster": {
      "name": "gbtree",
      "model": {
        "tree_info": [0, 1, 2],
        "trees": [
          {
            "left_children": [1, -1, -1],
            "right_children": [2, -1, -1],
            "split_indices": [0, 0, 0],
            "split_conditions": [1.0, 0.8, -0.4],
            "default_left": [true, false, false]
          },
          {
            "left_children": [1, -1, -1],
            "right_children": [2, -1, -1],
            "split_indices": [1, 0, 0],
            "split_conditions": [0.5, -0.2, 0.6],
            "default_left": [0, 0, 0]
          },
          {
            "left_children": [-1],
            "right_children": [-1],
            "split_indices": [0],
            "split_conditions": [0.1],
            "default_left": [0]
          }
        ]
      }
    }
  }
}`

func TestTreeEnsemblePredict(t *testing.T) {
	m, err := ParseXGBoostJSON("test", []byte(threeClassModel))
	require.NoError(t, err)
	assert.Equal(t, 2, m.NumFeature())
	assert.Equal(t, 3, m.NumClass())

	got, err := m.Predict(context.Background(), [][]float64{
		{0, 0},   // class 0: 0.8, class 1: -0.2, class 2: 0.1
		{2, 1},   // class 0: -0.4, class 1: 0.6
		{2, 0},   // class 0: -0.4, class 1: -0.2, class 2: 0.1
		{1, 0.5}, // thresholds are strict: both go right
	})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2, 1}, got)
}

func TestTreeEnsembleMissingValueFollowsDefault(t *testing.T) {
	m, err := ParseXGBoostJSON("test", []byte(threeClassModel))
	require.NoError(t, err)

	margins, err := m.Margins([]float64{math.NaN(), math.NaN()})
	require.NoError(t, err)
	// Tree 0 defaults left (0.8), tree 1 defaults right (0.6).
	assert.InDeltaSlice(t, []float64{1.3, 1.1, 0.6}, margins, 1e-6)
}

func TestTreeEnsembleFeatureMismatch(t *testing.T) {
	m, err := ParseXGBoostJSON("test", []byte(threeClassModel))
	require.NoError(t, err)

	_, err = m.Predict(context.Background(), [][]float64{{1, 2, 3}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expects 2 features, got 3")
}

func TestTreeEnsembleComparesInFloat32(t *testing.T) {
	const model = `{
  "learner": {
    "learner_model_param": {"base_score": "5E-1", "num_class": "2", "num_feature": "1"},
    "objective": {"name": "multi:softprob"},
    "gradient_booster": {"name": "gbtree", "model": {"tree_info": [0, 1], "trees": [
      {
        "left_children": [1, -1, -1],
        "right_children": [2, -1, -1],
        "split_indices": [0, 0, 0],
        "split_conditions": [0.1, 1.0, -1.0],
        "split_type": [0, 0, 0],
        "default_left": [0, 0, 0]
      },
      {"left_children": [-1], "right_children": [-1], "split_indices": [0], "split_conditions": [0.0]}
    ]}}
  }
}`
	m, err := ParseXGBoostJSON("float32", []byte(model))
	require.NoError(t, err)

	// 0.09999999999 rounds to the float32 threshold itself, so it is not
	// below the split and goes right.
	got, err := m.Predict(context.Background(), [][]float64{{0.09999999999}, {0.09}, {0.1}})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 0, 1}, got)
}

func TestTreeEnsembleBinary(t *testing.T) {
	const binary = `{
  "learner": {
    "learner_model_param": {"base_score": "[2E-1]", "num_class": "0", "num_feature": "1"},
    "objective": {"name": "binary:logistic"},
    "gradient_booster": {"name": "gbtree", "model": {"tree_info": [0], "trees": [{
      "left_children": [1, -1, -1],
      "right_children": [2, -1, -1],
      "split_indices": [0, 0, 0],
      "split_conditions": [0.0, 0.5, 2.0],
      "default_left": [1, 0, 0]
    }]}}
  }
}`
	m, err := ParseXGBoostJSON("binary", []byte(binary))
	require.NoError(t, err)
	assert.Equal(t, 2, m.NumClass())

	// logit(0.2) is about -1.386: left leaf stays negative, right leaf wins.
	got, err := m.Predict(context.Background(), [][]float64{{-1}, {1}})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1}, got)
}

func TestTreeEnsembleHonoursContext(t *testing.T) {
	m, err := ParseXGBoostJSON("test", []byte(threeClassModel))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = m.Predict(ctx, [][]float64{{0, 0}})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParseXGBoostJSONRejectsBrokenModels(t *testing.T) {
	tests := map[string]string{
		"not json":  `{`,
		"no trees":  `{"learner": {"learner_model_param": {"num_class": "3"}, "gradient_booster": {"model": {"trees": []}}}}`,
		"gblinear":  `{"learner": {"gradient_booster": {"name": "gblinear"}}}`,
		"bad class": `{"learner": {"learner_model_param": {"num_class": "x"}}}`,
		"child cycle": `{"learner": {"learner_model_param": {"num_class": "2"}, "gradient_booster": {"model": {
			"tree_info": [0], "trees": [{"left_children": [0], "right_children": [0], "split_indices": [0], "split_conditions": [1]}]}}}}`,
		"split feature out of range": `{"learner": {"learner_model_param": {"num_class": "2", "num_feature": "1"}, "gradient_booster": {"model": {
			"tree_info": [0], "trees": [{"left_children": [1, -1, -1], "right_children": [2, -1, -1], "split_indices": [4, 0, 0], "split_conditions": [1, 0, 0]}]}}}}`,
		"tree class out of range": `{"learner": {"learner_model_param": {"num_class": "2"}, "gradient_booster": {"model": {
			"tree_info": [5], "trees": [{"left_children": [-1], "right_children": [-1], "split_indices": [0], "split_conditions": [1]}]}}}}`,
		"ragged arrays": `{"learner": {"learner_model_param": {"num_class": "2"}, "gradient_booster": {"model": {
			"tree_info": [0], "trees": [{"left_children": [-1, -1], "right_children": [-1], "split_indices": [0], "split_conditions": [1]}]}}}}`,
		"categorical split": `{"learner": {"learner_model_param": {"num_class": "2"}, "gradient_booster": {"model": {
			"tree_info": [0], "trees": [{"left_children": [1, -1, -1], "right_children": [2, -1, -1], "split_indices": [0, 0, 0], "split_conditions": [1, 0, 0], "split_type": [1, 0, 0]}]}}}}`,
		"bad default_left": `{"learner": {"learner_model_param": {"num_class": "2"}, "gradient_booster": {"model": {
			"tree_info": [0], "trees": [{"left_children": [-1], "right_children": [-1], "split_indices": [0], "split_conditions": [1], "default_left": ["yes"]}]}}}}`,
	}

	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseXGBoostJSON(name, []byte(body))
			assert.Error(t, err)
		})
	}
}

func TestParseBaseScore(t *testing.T) {
	for in, want := range map[string]float64{
		"":         0.5,
		"5E-1":     0.5,
		"[2.5E-1]": 0.25,
		" [1E-1] ": 0.1,
		"[3E-1,1]": 0.3,
	} {
		got, err := parseBaseScore(in)
		require.NoError(t, err, in)
		assert.InDelta(t, want, got, 1e-12, in)
	}

	_, err := parseBaseScore("abc")
	assert.Error(t, err)
}
