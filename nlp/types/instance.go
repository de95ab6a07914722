package types

import (
	"fmt"
	"slices"
	"strings"
)

// DependencyInstance is a sentence being decoded. Word[0] is the artificial
// root, which has a single segmentation with a single element.
//
// NumSeg and Seg2Word index the elements of the selected segmentations in
// sentence order ("flat" ids): NumSeg[w] is the flat id of the first element
// of word w and Seg2Word[s] the word owning flat id s. They must be rebuilt
// with ConstructConversionList after any segmentation change.
type DependencyInstance struct {
	Word []WordInstance

	NumSeg   []int
	Seg2Word []int

	// number of words whose selected segmentation is their first candidate
	OptSegCount int
}

// NewRootWord returns the artificial root token
func NewRootWord() WordInstance {
	return WordInstance{
		Form: ROOT_TOKEN,
		CandSeg: []SegInstance{{
			Element: []SegElement{{
				Form:      ROOT_TOKEN,
				Lemma:     ROOT_TOKEN,
				CandPos:   []string{ROOT_TOKEN},
				CandPosID: []int{0},
				CandProb:  []float64{0},
				Dep:       NoHead,
				Label:     NoLabel,
			}},
			InNode: -1, OutNode: -1, DetNode: -1,
		}},
	}
}

// NewInstance builds a sentence from words, prepending the root. Every word
// starts at its first segmentation and POS candidates with all elements
// attached to the root.
func NewInstance(words ...WordInstance) *DependencyInstance {
	inst := &DependencyInstance{Word: make([]WordInstance, 0, len(words)+1)}
	inst.Word = append(inst.Word, NewRootWord())
	inst.Word = append(inst.Word, words...)
	for i := range inst.Word {
		w := &inst.Word[i]
		w.CurrSeg = 0
		for j := range w.CandSeg {
			for k := range w.CandSeg[j].Element {
				e := &w.CandSeg[j].Element[k]
				e.CurrPos = 0
				e.Label = NoLabel
				if i == 0 {
					e.Dep = NoHead
				} else {
					e.Dep = Root
				}
			}
		}
		w.BuildSegMaps()
	}
	inst.ConstructConversionList()
	inst.SetOptSegPosCount()
	inst.BuildChild()
	return inst
}

func (d *DependencyInstance) NumWord() int {
	return len(d.Word)
}

// NumSegs is the total number of elements under the selected segmentations,
// root included
func (d *DependencyInstance) NumSegs() int {
	return len(d.Seg2Word)
}

func (d *DependencyInstance) ConstructConversionList() {
	size := 0
	for i := range d.Word {
		size += d.Word[i].Seg().Size()
	}
	if len(d.NumSeg) != len(d.Word)+1 {
		d.NumSeg = make([]int, len(d.Word)+1)
	}
	if cap(d.Seg2Word) < size {
		d.Seg2Word = make([]int, size)
	}
	d.Seg2Word = d.Seg2Word[:size]

	size = 0
	for i := range d.Word {
		d.NumSeg[i] = size
		n := d.Word[i].Seg().Size()
		for j := 0; j < n; j++ {
			d.Seg2Word[size+j] = i
		}
		size += n
	}
	d.NumSeg[len(d.Word)] = size
}

func (d *DependencyInstance) SetOptSegPosCount() {
	d.OptSegCount = 0
	for i := range d.Word {
		if d.Word[i].CurrSeg == 0 {
			d.OptSegCount++
		}
		d.Word[i].SetOptPosCount()
	}
}

// UpdateSeg selects candidate segmentation seg for word, keeping OptSegCount
// current. The flat index is not rebuilt.
func (d *DependencyInstance) UpdateSeg(word, seg int) {
	w := &d.Word[word]
	if w.CurrSeg == 0 {
		d.OptSegCount--
	}
	w.CurrSeg = seg
	if seg == 0 {
		d.OptSegCount++
	}
}

func (d *DependencyInstance) WordToSeg(h HeadIndex) int {
	if h.IsNone() {
		return -1
	}
	return d.NumSeg[h.Word] + h.Seg
}

func (d *DependencyInstance) SegToWord(id int) HeadIndex {
	if id == -1 {
		return NoHead
	}
	w := d.Seg2Word[id]
	return HeadIndex{w, id - d.NumSeg[w]}
}

// SegDist is the number of flat positions between two units
func (d *DependencyInstance) SegDist(head, mod HeadIndex) int {
	dist := d.WordToSeg(head) - d.WordToSeg(mod)
	if dist < 0 {
		return -dist
	}
	return dist
}

// Element returns the element at h under the current segmentations
func (d *DependencyInstance) Element(h HeadIndex) *SegElement {
	return &d.Word[h.Word].Seg().Element[h.Seg]
}

// Units lists all elements of the selected segmentations in flat order
func (d *DependencyInstance) Units() []HeadIndex {
	units := make([]HeadIndex, 0, d.NumSegs())
	for i := range d.Word {
		n := d.Word[i].Seg().Size()
		for j := 0; j < n; j++ {
			units = append(units, HeadIndex{i, j})
		}
	}
	return units
}

// BuildChild rebuilds every child list from the heads. Unattached units are
// not listed anywhere.
func (d *DependencyInstance) BuildChild() {
	count := make([]int, d.NumSegs())
	for i := 1; i < len(d.Word); i++ {
		seg := d.Word[i].Seg()
		for j := range seg.Element {
			if h := seg.Element[j].Dep; !h.IsNone() {
				count[d.WordToSeg(h)]++
			}
		}
	}

	for i := range d.Word {
		seg := d.Word[i].Seg()
		for j := range seg.Element {
			c := count[d.NumSeg[i]+j]
			if cap(seg.Element[j].Child) < c {
				seg.Element[j].Child = make([]HeadIndex, 0, c)
			} else {
				seg.Element[j].Child = seg.Element[j].Child[:0]
			}
		}
	}

	// sentence order visit keeps each list sorted
	for i := 1; i < len(d.Word); i++ {
		seg := d.Word[i].Seg()
		for j := range seg.Element {
			if h := seg.Element[j].Dep; !h.IsNone() {
				parent := d.Element(h)
				parent.Child = append(parent.Child, HeadIndex{i, j})
			}
		}
	}
}

// UpdateChildList moves arg from the child list of oldHead to that of
// newHead. The caller must already have set the head of arg to newHead.
func (d *DependencyInstance) UpdateChildList(newHead, oldHead, arg HeadIndex) {
	if d.Element(arg).Dep != newHead {
		panic(fmt.Sprintf("types: head of %v is %v, not %v", arg, d.Element(arg).Dep, newHead))
	}
	if newHead == oldHead {
		return
	}
	if !oldHead.IsNone() {
		old := d.Element(oldHead)
		pos, found := slices.BinarySearchFunc(old.Child, arg, CompareHeads)
		if !found {
			panic(fmt.Sprintf("types: %v missing from child list of %v", arg, oldHead))
		}
		old.Child = slices.Delete(old.Child, pos, pos+1)
	}
	if !newHead.IsNone() {
		parent := d.Element(newHead)
		pos, found := slices.BinarySearchFunc(parent.Child, arg, CompareHeads)
		if found {
			panic(fmt.Sprintf("types: %v already a child of %v", arg, newHead))
		}
		parent.Child = slices.Insert(parent.Child, pos, arg)
	}
}

// Copy returns an instance with private mutable state. Candidate POS lists
// and seg maps are read-only during decoding and are shared.
func (d *DependencyInstance) Copy() *DependencyInstance {
	cp := &DependencyInstance{
		Word:        make([]WordInstance, len(d.Word)),
		NumSeg:      append([]int(nil), d.NumSeg...),
		Seg2Word:    append([]int(nil), d.Seg2Word...),
		OptSegCount: d.OptSegCount,
	}
	for i := range d.Word {
		cp.Word[i] = d.Word[i].copy()
	}
	return cp
}

// CheckTree verifies the flat index, that every non-root unit reaches the
// root and that child lists mirror the heads.
func (d *DependencyInstance) CheckTree() error {
	size := 0
	for i := range d.Word {
		if len(d.NumSeg) != len(d.Word)+1 || d.NumSeg[i] != size {
			return fmt.Errorf("%w: word %d", ErrConversion, i)
		}
		size += d.Word[i].Seg().Size()
	}
	if d.NumSegs() != size {
		return fmt.Errorf("%w: %d segments indexed, %d selected", ErrConversion, d.NumSegs(), size)
	}

	children := make(map[HeadIndex][]HeadIndex, size)
	for _, m := range d.Units() {
		if m == Root {
			continue
		}
		h := d.Element(m).Dep
		if h.IsNone() || h.Word >= len(d.Word) || h.Seg >= d.Word[h.Word].Seg().Size() {
			return fmt.Errorf("%w: %v", ErrDetached, m)
		}
		children[h] = append(children[h], m)
	}
	for _, m := range d.Units() {
		curr, steps := m, 0
		for curr != Root {
			curr = d.Element(curr).Dep
			steps++
			if curr.IsNone() || steps > size {
				return fmt.Errorf("%w: through %v", ErrCycle, m)
			}
		}
	}
	for _, h := range d.Units() {
		if !slices.Equal(children[h], d.Element(h).Child) {
			return fmt.Errorf("%w: %v lists %v, heads give %v", ErrChildList, h, d.Element(h).Child, children[h])
		}
	}
	return nil
}

func (d *DependencyInstance) String() string {
	var b strings.Builder
	for i, m := range d.Units() {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(d.Element(m).String())
	}
	return b.String()
}
