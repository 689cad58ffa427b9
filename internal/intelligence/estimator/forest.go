package estimator

import (
	"fmt"
	"math"

	"github.com/turtacn/dti-affinity/pkg/errors"
)

// leaf marks a node without children, as in scikit-learn's tree arrays.
const leaf = -1

// Tree is one regression tree in scikit-learn's flat array layout. Node 0 is
// the root; a sample goes left when x[Feature[n]] <= Threshold[n].
type Tree struct {
	ChildrenLeft  []int     `json:"children_left"`
	ChildrenRight []int     `json:"children_right"`
	Feature       []int     `json:"feature"`
	Threshold     []float64 `json:"threshold"`
	Value         []float64 `json:"value"`
}

func (t *Tree) validate(nFeatures int) error {
	n := len(t.Value)
	if n == 0 {
		return fmt.Errorf("tree has no nodes")
	}
	if len(t.ChildrenLeft) != n || len(t.ChildrenRight) != n || len(t.Feature) != n || len(t.Threshold) != n {
		return fmt.Errorf("tree arrays differ in length")
	}
	for i := 0; i < n; i++ {
		l, r := t.ChildrenLeft[i], t.ChildrenRight[i]
		if l == leaf || r == leaf {
			if l != r {
				return fmt.Errorf("node %d has one child", i)
			}
			if math.IsNaN(t.Value[i]) || math.IsInf(t.Value[i], 0) {
				return fmt.Errorf("leaf %d has non-finite value", i)
			}
			continue
		}
		// Children always follow their parent, which also rules out cycles.
		if l <= i || l >= n || r <= i || r >= n {
			return fmt.Errorf("node %d has child index out of range", i)
		}
		if f := t.Feature[i]; f < 0 || f >= nFeatures {
			return fmt.Errorf("node %d splits on feature %d outside [0, %d)", i, f, nFeatures)
		}
		if math.IsNaN(t.Threshold[i]) {
			return fmt.Errorf("node %d has NaN threshold", i)
		}
	}
	return nil
}

// predict walks one tree. Features are narrowed to float32 before the
// comparison because scikit-learn casts X to float32 when it trains and when
// it predicts, and the stored thresholds are float32 midpoints.
func (t *Tree) predict(x []float64) float64 {
	n := 0
	for t.ChildrenLeft[n] != leaf {
		if float64(float32(x[t.Feature[n]])) <= t.Threshold[n] {
			n = t.ChildrenLeft[n]
		} else {
			n = t.ChildrenRight[n]
		}
	}
	return t.Value[n]
}

// Depth returns the number of edges on the longest root-to-leaf path.
func (t *Tree) Depth() int {
	var walk func(n int) int
	walk = func(n int) int {
		if t.ChildrenLeft[n] == leaf {
			return 0
		}
		return 1 + max(walk(t.ChildrenLeft[n]), walk(t.ChildrenRight[n]))
	}
	return walk(0)
}

// RandomForest averages the outputs of its trees.
type RandomForest struct {
	trees     []Tree
	nFeatures int
	version   string
}

// NewRandomForest validates trees against nFeatures.
func NewRandomForest(trees []Tree, nFeatures int, version string) (*RandomForest, error) {
	if nFeatures <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidEstimatorArtifact, "n_features must be positive")
	}
	if len(trees) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidEstimatorArtifact, "random forest has no trees")
	}
	for i := range trees {
		if err := trees[i].validate(nFeatures); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeInvalidEstimatorArtifact, fmt.Sprintf("tree %d", i))
		}
	}
	return &RandomForest{trees: trees, nFeatures: nFeatures, version: version}, nil
}

// Estimate implements Estimator.
func (f *RandomForest) Estimate(features []float64) (float64, error) {
	if err := checkLength(features, f.nFeatures); err != nil {
		return 0, err
	}
	var sum float64
	for i := range f.trees {
		sum += f.trees[i].predict(features)
	}
	return sum / float64(len(f.trees)), nil
}

func (f *RandomForest) NumFeatures() int     { return f.nFeatures }
func (f *RandomForest) ConcurrentSafe() bool { return true }
func (f *RandomForest) Version() string      { return f.version }
func (f *RandomForest) Kind() Kind           { return KindRandomForest }

// NumTrees returns the ensemble size.
func (f *RandomForest) NumTrees() int { return len(f.trees) }
