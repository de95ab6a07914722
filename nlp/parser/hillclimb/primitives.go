package hillclimb

import (
	"fmt"

	"segyap/nlp/types"
)

const maxAncestorSteps = 10000

// IsAncestor reports whether h lies on the head path from m to the root, m
// included. A path longer than maxAncestorSteps means the heads are corrupt.
func IsAncestor(inst *types.DependencyInstance, h, m types.HeadIndex) bool {
	for steps := 0; !m.IsNone(); steps++ {
		if steps >= maxAncestorSteps {
			panic(fmt.Sprintf("hillclimb: no root above %v after %d steps", m, steps))
		}
		if h == m {
			return true
		}
		m = inst.Element(m).Dep
	}
	return false
}

// IsProjective reports whether the arc h -> m crosses no other arc
func IsProjective(inst *types.DependencyInstance, h, m types.HeadIndex) bool {
	small, large := h, m
	if m.Less(h) {
		small, large = m, h
	}
	for _, m2 := range inst.Units() {
		if m2 == h || m2 == m {
			continue
		}
		h2 := inst.Element(m2).Dep
		outside := m2.Less(small) || large.Less(m2)
		inside := small.Less(m2) && m2.Less(large)
		if outside && small.Less(h2) && h2.Less(large) {
			return false
		}
		if inside && (h2.Less(small) || large.Less(h2)) {
			return false
		}
	}
	return true
}

// BottomUpOrder lists the non-root units so that every unit comes after all
// of its descendants. Child lists must be current.
func BottomUpOrder(inst *types.DependencyInstance) []types.HeadIndex {
	n := inst.NumSegs() - 1
	order := make([]types.HeadIndex, n)
	id := n - 1

	stack := []types.HeadIndex{types.Root}
	for len(stack) > 0 {
		arg := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		children := inst.Element(arg).Child
		for _, c := range children {
			if id < 0 {
				panic("hillclimb: more units below the root than in the sentence")
			}
			order[id] = c
			id--
		}
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, children[i])
		}
	}
	if id != -1 {
		panic(fmt.Sprintf("hillclimb: %d units unreachable from the root", id+1))
	}
	return order
}
