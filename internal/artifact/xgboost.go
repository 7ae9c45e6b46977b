package artifact

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/i474232898/weather-type-predictor/internal/weather"
)

// xgbModelFile mirrors the parts of the XGBoost JSON model format
// (Booster.save_model("*.json")) needed for gbtree inference.
type xgbModelFile struct {
	Learner struct {
		LearnerModelParam struct {
			BaseScore  string `json:"base_score"`
			NumClass   string `json:"num_class"`
			NumFeature string `json:"num_feature"`
		} `json:"learner_model_param"`
		Objective struct {
			Name string `json:"name"`
		} `json:"objective"`
		GradientBooster struct {
			Name  string `json:"name"`
			Model struct {
				TreeInfo []int     `json:"tree_info"`
				Trees    []xgbTree `json:"trees"`
			} `json:"model"`
		} `json:"gradient_booster"`
	} `json:"learner"`
}

type xgbTree struct {
	LeftChildren    []int      `json:"left_children"`
	RightChildren   []int      `json:"right_children"`
	SplitIndices    []int      `json:"split_indices"`
	SplitConditions []float64  `json:"split_conditions"`
	DefaultLeft     []flexBool `json:"default_left"`
	SplitType       []int      `json:"split_type"`
}

// flexBool accepts both true/false and 0/1, since XGBoost changed the
// encoding of default_left between releases.
type flexBool bool

func (b *flexBool) UnmarshalJSON(data []byte) error {
	switch string(bytes.TrimSpace(data)) {
	case "true", "1":
		*b = true
	case "false", "0", "null":
		*b = false
	default:
		return fmt.Errorf("invalid boolean %s", data)
	}
	return nil
}

// TreeEnsemble is a gradient-boosted tree classifier.
type TreeEnsemble struct {
	name       string
	numClass   int
	numFeature int
	baseMargin float64
	trees      []xgbTree
	treeClass  []int
}

var _ weather.Model = (*TreeEnsemble)(nil)

// ParseXGBoostJSON reads a model saved in XGBoost's JSON format.
func ParseXGBoostJSON(name string, data []byte) (*TreeEnsemble, error) {
	var file xgbModelFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode xgboost model: %w", err)
	}

	l := file.Learner
	if booster := l.GradientBooster.Name; booster != "" && booster != "gbtree" {
		return nil, fmt.Errorf("unsupported booster %q", booster)
	}

	numClass, err := parseIntParam("num_class", l.LearnerModelParam.NumClass)
	if err != nil {
		return nil, err
	}
	numFeature, err := parseIntParam("num_feature", l.LearnerModelParam.NumFeature)
	if err != nil {
		return nil, err
	}
	baseScore, err := parseBaseScore(l.LearnerModelParam.BaseScore)
	if err != nil {
		return nil, err
	}

	trees := l.GradientBooster.Model.Trees
	if len(trees) == 0 {
		return nil, fmt.Errorf("model has no trees")
	}

	groups := numClass
	if groups < 1 {
		groups = 1
	}

	treeClass := l.GradientBooster.Model.TreeInfo
	if len(treeClass) == 0 {
		// Round-robin over classes is how XGBoost lays out multi-class trees.
		treeClass = make([]int, len(trees))
		for i := range trees {
			treeClass[i] = i % groups
		}
	}
	if len(treeClass) != len(trees) {
		return nil, fmt.Errorf("tree_info has %d entries for %d trees", len(treeClass), len(trees))
	}

	for i, t := range trees {
		if err := t.validate(numFeature); err != nil {
			return nil, fmt.Errorf("tree %d: %w", i, err)
		}
		if treeClass[i] < 0 || treeClass[i] >= groups {
			return nil, fmt.Errorf("tree %d assigned to class %d of %d", i, treeClass[i], groups)
		}
	}

	baseMargin := baseScore
	if groups == 1 && strings.HasPrefix(l.Objective.Name, "binary:logistic") {
		baseMargin = logit(baseScore)
	}

	return &TreeEnsemble{
		name:       name,
		numClass:   groups,
		numFeature: numFeature,
		baseMargin: baseMargin,
		trees:      trees,
		treeClass:  treeClass,
	}, nil
}

// Name identifies the model in logs and health output.
func (m *TreeEnsemble) Name() string {
	return m.name
}

// NumFeature is the row width the model was trained on; 0 if unrecorded.
func (m *TreeEnsemble) NumFeature() int {
	return m.numFeature
}

// NumClass is the number of output classes; binary models report 2.
func (m *TreeEnsemble) NumClass() int {
	if m.numClass == 1 {
		return 2
	}
	return m.numClass
}

// Predict returns the arg-max class of every row.
func (m *TreeEnsemble) Predict(ctx context.Context, features [][]float64) ([]int, error) {
	out := make([]int, len(features))
	for i, row := range features {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		margins, err := m.Margins(row)
		if err != nil {
			return nil, err
		}
		if m.numClass == 1 {
			if margins[0] > 0 {
				out[i] = 1
			}
			continue
		}
		out[i] = argmax(margins)
	}
	return out, nil
}

// Margins returns the raw per-class scores of one row. Features, split
// conditions and leaf sums are float32, as in XGBoost itself.
func (m *TreeEnsemble) Margins(row []float64) ([]float64, error) {
	if m.numFeature > 0 && len(row) != m.numFeature {
		return nil, fmt.Errorf("feature shape mismatch: model expects %d features, got %d", m.numFeature, len(row))
	}

	sums := make([]float32, m.numClass)
	for c := range sums {
		sums[c] = float32(m.baseMargin)
	}
	for i := range m.trees {
		sums[m.treeClass[i]] += m.trees[i].leaf(row)
	}

	margins := make([]float64, len(sums))
	for c, v := range sums {
		margins[c] = float64(v)
	}
	return margins, nil
}

func (t *xgbTree) validate(numFeature int) error {
	n := len(t.LeftChildren)
	if n == 0 {
		return fmt.Errorf("empty tree")
	}
	if len(t.RightChildren) != n || len(t.SplitIndices) != n || len(t.SplitConditions) != n {
		return fmt.Errorf("node arrays have inconsistent lengths")
	}
	if len(t.DefaultLeft) != 0 && len(t.DefaultLeft) != n {
		return fmt.Errorf("default_left has %d entries for %d nodes", len(t.DefaultLeft), n)
	}
	if len(t.SplitType) != 0 && len(t.SplitType) != n {
		return fmt.Errorf("split_type has %d entries for %d nodes", len(t.SplitType), n)
	}
	for i := 0; i < n; i++ {
		l, r := t.LeftChildren[i], t.RightChildren[i]
		if l == -1 {
			continue
		}
		if l <= i || r <= i || l >= n || r >= n {
			return fmt.Errorf("node %d has invalid children %d/%d", i, l, r)
		}
		if idx := t.SplitIndices[i]; idx < 0 || (numFeature > 0 && idx >= numFeature) {
			return fmt.Errorf("node %d splits on feature %d", i, idx)
		}
		if len(t.SplitType) > 0 && t.SplitType[i] != 0 {
			return fmt.Errorf("node %d uses a categorical split, which is not supported", i)
		}
	}
	return nil
}

func (t *xgbTree) leaf(row []float64) float32 {
	n := 0
	for t.LeftChildren[n] != -1 {
		x := float32(math.NaN())
		if idx := t.SplitIndices[n]; idx < len(row) {
			x = float32(row[idx])
		}
		switch {
		case math.IsNaN(float64(x)):
			if len(t.DefaultLeft) > 0 && bool(t.DefaultLeft[n]) {
				n = t.LeftChildren[n]
			} else {
				n = t.RightChildren[n]
			}
		case x < float32(t.SplitConditions[n]):
			n = t.LeftChildren[n]
		default:
			n = t.RightChildren[n]
		}
	}
	return float32(t.SplitConditions[n])
}

func parseIntParam(name, s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", name, s, err)
	}
	if v < 0 {
		return 0, fmt.Errorf("invalid %s %d", name, v)
	}
	return v, nil
}

// parseBaseScore accepts "5E-1" as well as the bracketed "[5E-1]" form
// written by newer XGBoost releases.
func parseBaseScore(s string) (float64, error) {
	s = strings.Trim(strings.TrimSpace(s), "[]")
	if s == "" {
		return 0.5, nil
	}
	if i := strings.IndexByte(s, ','); i >= 0 {
		s = s[:i]
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid base_score %q: %w", s, err)
	}
	return v, nil
}

func logit(p float64) float64 {
	if p <= 0 || p >= 1 {
		return 0
	}
	return math.Log(p / (1 - p))
}

func argmax(values []float64) int {
	best := 0
	for i := 1; i < len(values); i++ {
		if values[i] > values[best] {
			best = i
		}
	}
	return best
}
