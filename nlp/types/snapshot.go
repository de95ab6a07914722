package types

// Snapshot holds the decoded structure of an instance by value: the selected
// segmentation of each word and the POS, head and label of each selected
// element.
type Snapshot struct {
	Seg    []int
	Pos    [][]int
	Dep    [][]HeadIndex
	Label  [][]int
	Filled bool
}

// CaptureSnapshot records the current structure of inst
func CaptureSnapshot(inst *DependencyInstance) *Snapshot {
	s := new(Snapshot)
	s.Capture(inst)
	return s
}

// Capture overwrites the snapshot with the current structure of inst,
// reusing its buffers
func (s *Snapshot) Capture(inst *DependencyInstance) {
	n := len(inst.Word)
	if len(s.Seg) != n {
		s.Seg = make([]int, n)
		s.Pos = make([][]int, n)
		s.Dep = make([][]HeadIndex, n)
		s.Label = make([][]int, n)
	}
	for i := range inst.Word {
		w := &inst.Word[i]
		s.Seg[i] = w.CurrSeg
		seg := w.Seg()
		s.Pos[i] = s.Pos[i][:0]
		s.Dep[i] = s.Dep[i][:0]
		s.Label[i] = s.Label[i][:0]
		for j := range seg.Element {
			s.Pos[i] = append(s.Pos[i], seg.Element[j].CurrPos)
			s.Dep[i] = append(s.Dep[i], seg.Element[j].Dep)
			s.Label[i] = append(s.Label[i], seg.Element[j].Label)
		}
	}
	s.Filled = true
}

// Restore writes the snapshot back into inst and rebuilds its derived
// state. inst must have the same words and candidates as the captured one.
func (s *Snapshot) Restore(inst *DependencyInstance) {
	if !s.Filled {
		panic("types: restoring an empty snapshot")
	}
	if len(s.Seg) != len(inst.Word) {
		panic("types: snapshot taken from a different sentence")
	}
	for i := range inst.Word {
		w := &inst.Word[i]
		w.CurrSeg = s.Seg[i]
		seg := w.Seg()
		for j := range seg.Element {
			seg.Element[j].CurrPos = s.Pos[i][j]
			seg.Element[j].Dep = s.Dep[i][j]
			seg.Element[j].Label = s.Label[i][j]
		}
	}
	inst.ConstructConversionList()
	inst.SetOptSegPosCount()
	inst.BuildChild()
}
