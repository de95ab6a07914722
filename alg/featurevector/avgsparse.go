package featurevector

import (
	"sync"
)

// HistoryValue is a weight together with the running sum needed for
// averaging. The sum is integrated lazily: it is only brought up to date
// when the value changes or when the average is read.
type HistoryValue struct {
	Generation int
	Value      float64
	Total      float64
}

func (h *HistoryValue) IntegratedValue(generation int) float64 {
	return h.Total + float64(generation-h.Generation)*h.Value
}

func (h *HistoryValue) Add(generation int, amount float64) {
	if h.Generation < generation {
		h.Total = h.IntegratedValue(generation)
		h.Generation = generation
	}
	h.Value += amount
}

func NewHistoryValue(generation int, value float64) *HistoryValue {
	return &HistoryValue{Generation: generation, Value: value}
}

// AvgSparse is a weight vector safe for concurrent scoring while updates
// are serialized by the learner.
type AvgSparse struct {
	sync.RWMutex
	Vals map[Feature]*HistoryValue
}

func NewAvgSparse() *AvgSparse {
	return &AvgSparse{Vals: make(map[Feature]*HistoryValue)}
}

func (v *AvgSparse) Len() int {
	v.RLock()
	defer v.RUnlock()
	return len(v.Vals)
}

func (v *AvgSparse) Value(f Feature) float64 {
	v.RLock()
	defer v.RUnlock()
	if hist, exists := v.Vals[f]; exists {
		return hist.Value
	}
	return 0.0
}

// DotProduct scores a feature vector with the current (non averaged) weights
func (v *AvgSparse) DotProduct(fv Sparse) float64 {
	v.RLock()
	defer v.RUnlock()
	var result float64
	for f, val := range fv {
		if hist, exists := v.Vals[f]; exists {
			result += hist.Value * val
		}
	}
	return result
}

// UpdateScaledAdd adds scale * fv to the weights at the given generation
func (v *AvgSparse) UpdateScaledAdd(generation int, fv Sparse, scale float64) {
	v.Lock()
	defer v.Unlock()
	for f, val := range fv {
		if hist, exists := v.Vals[f]; exists {
			hist.Add(generation, scale*val)
		} else {
			v.Vals[f] = NewHistoryValue(generation, scale*val)
		}
	}
}

// Averaged returns the weights averaged over generations [0, generation)
func (v *AvgSparse) Averaged(generation int) Sparse {
	v.RLock()
	defer v.RUnlock()
	retval := make(Sparse, len(v.Vals))
	if generation <= 0 {
		for f, hist := range v.Vals {
			if hist.Value != 0.0 {
				retval[f] = hist.Value
			}
		}
		return retval
	}
	for f, hist := range v.Vals {
		if total := hist.IntegratedValue(generation); total != 0.0 {
			retval[f] = total
		}
	}
	return retval.UpdateScalarDivide(float64(generation))
}

// Weights returns a copy of the current weights
func (v *AvgSparse) Weights() Sparse {
	return v.Averaged(0)
}
