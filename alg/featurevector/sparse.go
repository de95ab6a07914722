package featurevector

import (
	"fmt"
	"sort"
	"strings"
)

type Feature interface{}

// Sparse is a real valued feature vector. Missing keys are zero and
// zero valued keys are removed by the update operations.
type Sparse map[Feature]float64

func NewSparse() Sparse {
	return make(Sparse)
}

func (v Sparse) Copy() Sparse {
	copied := make(Sparse, len(v))
	for k, val := range v {
		copied[k] = val
	}
	return copied
}

// Inc adds amount to a single feature
func (v Sparse) Inc(f Feature, amount float64) {
	val := v[f] + amount
	if val != 0.0 {
		v[f] = val
	} else {
		delete(v, f)
	}
}

func (v Sparse) Add(other Sparse) Sparse {
	return v.Copy().UpdateAdd(other)
}

func (v Sparse) Subtract(other Sparse) Sparse {
	return v.Copy().UpdateSubtract(other)
}

func (v Sparse) UpdateAdd(other Sparse) Sparse {
	return v.UpdateScaledAdd(other, 1.0)
}

func (v Sparse) UpdateSubtract(other Sparse) Sparse {
	return v.UpdateScaledAdd(other, -1.0)
}

// UpdateScaledAdd performs v += scale * other in place
func (v Sparse) UpdateScaledAdd(other Sparse, scale float64) Sparse {
	if other == nil {
		return v
	}
	for key, otherVal := range other {
		v.Inc(key, scale*otherVal)
	}
	return v
}

func (v Sparse) UpdateScalarDivide(byValue float64) Sparse {
	if byValue == 0.0 {
		panic("Divide by 0")
	}
	for i, val := range v {
		v[i] = val / byValue
	}
	return v
}

func (v Sparse) DotProduct(other Sparse) float64 {
	vec1, vec2 := v, other
	if len(vec2) > len(vec1) {
		vec1, vec2 = vec2, vec1
	}
	var result float64
	for i, val := range vec2 {
		// vec1[i] == 0 if vec1[i] does not exist
		result += vec1[i] * val
	}
	return result
}

func (v Sparse) L2NormSquared() float64 {
	var result float64
	for _, val := range v {
		result += val * val
	}
	return result
}

// String lists one "feature value" pair per line, sorted
func (v Sparse) String() string {
	strs := make([]string, 0, len(v))
	for feat, val := range v {
		strs = append(strs, fmt.Sprintf("%v %v", feat, val))
	}
	sort.Strings(strs)
	return strings.Join(strs, "\n")
}
