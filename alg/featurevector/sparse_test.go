package featurevector

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type SparseTest struct {
	t    *testing.T
	vec1 Sparse
	vec2 Sparse
}

func (v *SparseTest) Init() {
	v.vec1, v.vec2 = make(Sparse), make(Sparse)
	v.vec1[Feature("only1")] = 1.0
	v.vec1[Feature("a")] = 1.0
	v.vec1[Feature("b")] = 0.5
	v.vec1[Feature("c")] = -0.5

	v.vec2[Feature("a")] = 1.0
	v.vec2[Feature("b")] = 2.0
	v.vec2[Feature("only2")] = 3.0
}

func (v *SparseTest) Add() {
	vec := v.vec1.Add(v.vec2)
	assert.Equal(v.t, 1.0, vec[Feature("only1")])
	assert.Equal(v.t, 2.0, vec[Feature("a")])
	assert.Equal(v.t, 2.5, vec[Feature("b")])
	assert.Equal(v.t, -0.5, vec[Feature("c")])
	assert.Equal(v.t, 3.0, vec[Feature("only2")])
	assert.Len(v.t, v.vec1, 4, "Add must not modify the receiver")
}

func (v *SparseTest) Subtract() {
	vec := v.vec1.Subtract(v.vec2)
	assert.Equal(v.t, 1.0, vec[Feature("only1")])
	_, exists := vec[Feature("a")]
	assert.False(v.t, exists, "zero valued features are removed")
	assert.Equal(v.t, -1.5, vec[Feature("b")])
	assert.Equal(v.t, -3.0, vec[Feature("only2")])
}

func (v *SparseTest) DotProduct() {
	assert.InDelta(v.t, 2.0, v.vec1.DotProduct(v.vec2), 1e-12)
	assert.InDelta(v.t, 2.0, v.vec2.DotProduct(v.vec1), 1e-12)
}

func (v *SparseTest) UpdateScaledAdd() {
	vec := v.vec1.Copy()
	vec.UpdateScaledAdd(v.vec2, -0.25)
	assert.Equal(v.t, 0.75, vec[Feature("a")])
	_, exists := vec[Feature("b")]
	assert.False(v.t, exists, "features scaled to zero are removed")
	assert.Equal(v.t, -0.75, vec[Feature("only2")])
	assert.Len(v.t, vec, 4)
}

func (v *SparseTest) L2NormSquared() {
	assert.InDelta(v.t, 2.5, v.vec1.L2NormSquared(), 1e-12)
}

func (v *SparseTest) UpdateScalarDivide() {
	vec := v.vec1.Copy()
	vec.UpdateScalarDivide(2.0)
	assert.Equal(v.t, 0.5, vec[Feature("only1")])
	assert.Equal(v.t, -0.25, vec[Feature("c")])
	assert.Panics(v.t, func() { vec.UpdateScalarDivide(0) })
}

func TestSparse(t *testing.T) {
	test := &SparseTest{t: t}
	test.Init()
	test.Add()
	test.Subtract()
	test.DotProduct()
	test.UpdateScaledAdd()
	test.L2NormSquared()
	test.UpdateScalarDivide()
}

func TestSparseString(t *testing.T) {
	vec := Sparse{Feature("b"): -0.5, Feature("a"): 2.0}
	assert.Equal(t, "a 2\nb -0.5", vec.String())
	assert.Empty(t, NewSparse().String())
}
