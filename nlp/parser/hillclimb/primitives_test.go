package hillclimb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"segyap/nlp/types"
)

func TestIsAncestor(t *testing.T) {
	inst := simple("a", "b", "c")
	attach(inst, map[types.HeadIndex]types.HeadIndex{hi(2, 0): hi(1, 0), hi(3, 0): hi(2, 0)})

	assert.True(t, IsAncestor(inst, hi(1, 0), hi(3, 0)))
	assert.True(t, IsAncestor(inst, types.Root, hi(3, 0)))
	assert.True(t, IsAncestor(inst, hi(3, 0), hi(3, 0)), "a unit is its own ancestor")
	assert.False(t, IsAncestor(inst, hi(3, 0), hi(1, 0)))
	assert.False(t, IsAncestor(inst, hi(3, 0), types.NoHead))
}

func TestIsAncestorCycleIsFatal(t *testing.T) {
	inst := simple("a", "b")
	inst.Element(hi(1, 0)).Dep = hi(2, 0)
	inst.Element(hi(2, 0)).Dep = hi(1, 0)
	assert.Panics(t, func() { IsAncestor(inst, types.Root, hi(1, 0)) })
}

func TestIsProjective(t *testing.T) {
	// root -> a, a -> c, c -> b
	inst := simple("a", "b", "c", "d")
	attach(inst, map[types.HeadIndex]types.HeadIndex{hi(3, 0): hi(1, 0), hi(2, 0): hi(3, 0)})

	assert.True(t, IsProjective(inst, hi(3, 0), hi(4, 0)))
	assert.False(t, IsProjective(inst, hi(2, 0), hi(4, 0)), "b -> d crosses a -> c")
	assert.True(t, IsProjective(inst, hi(1, 0), hi(2, 0)))
}

func TestBottomUpOrder(t *testing.T) {
	inst := simple("a", "b", "c", "d", "e")
	attach(inst, map[types.HeadIndex]types.HeadIndex{
		hi(2, 0): hi(1, 0),
		hi(3, 0): hi(2, 0),
		hi(4, 0): hi(1, 0),
		hi(5, 0): hi(4, 0),
	})
	order := BottomUpOrder(inst)
	require.Len(t, order, inst.NumSegs()-1)

	pos := make(map[types.HeadIndex]int)
	for i, m := range order {
		_, seen := pos[m]
		require.False(t, seen, "%v listed twice", m)
		pos[m] = i
	}
	for _, m := range order {
		for h := inst.Element(m).Dep; h != types.Root; h = inst.Element(h).Dep {
			assert.Less(t, pos[m], pos[h], "%v must precede its ancestor %v", m, h)
		}
	}
}

func TestBottomUpOrderDeepChain(t *testing.T) {
	forms := make([]string, 3000)
	for i := range forms {
		forms[i] = "x"
	}
	inst := simple(forms...)
	deps := make(map[types.HeadIndex]types.HeadIndex)
	for i := 2; i <= len(forms); i++ {
		deps[hi(i, 0)] = hi(i-1, 0)
	}
	attach(inst, deps)
	order := BottomUpOrder(inst)
	assert.Equal(t, hi(len(forms), 0), order[0])
	assert.Equal(t, hi(1, 0), order[len(order)-1])
}

func TestBottomUpOrderDetachedIsFatal(t *testing.T) {
	inst := simple("a", "b")
	inst.Element(hi(2, 0)).Dep = types.NoHead
	inst.BuildChild()
	assert.Panics(t, func() { BottomUpOrder(inst) })
}
