package types

import (
	"fmt"
	"unicode/utf8"
)

// SegElement is one segment of a candidate segmentation.
type SegElement struct {
	Form, Lemma     string
	FormID, LemmaID int

	// candidate POS tags, their alphabet ids and log-probabilities
	CandPos   []string
	CandPosID []int
	CandProb  []float64
	CurrPos   int

	Dep   HeadIndex
	Label int
	Child []HeadIndex
}

func (e *SegElement) CandPosNum() int {
	return len(e.CandPos)
}

// Pos returns the currently selected POS tag
func (e *SegElement) Pos() string {
	if e.CurrPos < 0 || e.CurrPos >= len(e.CandPos) {
		return ""
	}
	return e.CandPos[e.CurrPos]
}

// PosID returns the alphabet id of the selected POS tag, -1 if ids were
// never assigned.
func (e *SegElement) PosID() int {
	if e.CurrPos < 0 || e.CurrPos >= len(e.CandPosID) {
		return -1
	}
	return e.CandPosID[e.CurrPos]
}

func (e *SegElement) String() string {
	return fmt.Sprintf("%s/%s<-%v", e.Form, e.Pos(), e.Dep)
}

// SegInstance is one candidate segmentation of a word. InNode, OutNode and
// DetNode are filled by a NodePolicy and are -1 when no policy applies.
type SegInstance struct {
	Element                  []SegElement
	InNode, OutNode, DetNode int
}

func (s *SegInstance) Size() int {
	return len(s.Element)
}

// Signature joins the element forms, used to identify a segmentation
func (s *SegInstance) Signature() string {
	var sig string
	for i, e := range s.Element {
		if i > 0 {
			sig += "+"
		}
		sig += e.Form
	}
	return sig
}

// WordInstance is an input token with its candidate segmentations.
//
// InMap and OutMap translate element positions between two candidate
// segmentations old and new of the same word; both are indexed by
// MapIndex(old, new). InMap[k][j] is the element of old that element j of new
// came from, OutMap[k][i] is the element of new that element i of old maps to.
type WordInstance struct {
	Form   string
	WordID int

	CandSeg []SegInstance
	CurrSeg int

	// number of elements of the selected segmentation whose POS is the
	// first (most probable) candidate
	OptPosCount int

	InMap, OutMap [][]int
}

func (w *WordInstance) Seg() *SegInstance {
	return &w.CandSeg[w.CurrSeg]
}

func (w *WordInstance) MapIndex(oldSeg, newSeg int) int {
	return oldSeg*len(w.CandSeg) + newSeg
}

func (w *WordInstance) SetOptPosCount() {
	w.OptPosCount = 0
	seg := w.Seg()
	for i := range seg.Element {
		if seg.Element[i].CurrPos == 0 {
			w.OptPosCount++
		}
	}
}

// UpdatePos selects a POS candidate for element seg of the current
// segmentation, keeping OptPosCount current
func (w *WordInstance) UpdatePos(seg, pos int) {
	ele := &w.Seg().Element[seg]
	if ele.CurrPos == 0 {
		w.OptPosCount--
	}
	ele.CurrPos = pos
	if pos == 0 {
		w.OptPosCount++
	}
}

// BuildSegMaps computes InMap and OutMap for every ordered pair of candidate
// segmentations. Elements are laid out over the characters of the word by
// their form lengths; an element maps to the element of the other
// segmentation covering its midpoint. When the forms carry no characters the
// elements are spread evenly.
func (w *WordInstance) BuildSegMaps() {
	n := len(w.CandSeg)
	spans := make([][]float64, n)
	for i := range w.CandSeg {
		spans[i] = elementBounds(&w.CandSeg[i])
	}
	w.InMap = make([][]int, n*n)
	w.OutMap = make([][]int, n*n)
	for o := 0; o < n; o++ {
		for p := 0; p < n; p++ {
			k := w.MapIndex(o, p)
			w.OutMap[k] = projectBounds(spans[o], spans[p])
			w.InMap[k] = projectBounds(spans[p], spans[o])
		}
	}
}

// elementBounds returns the normalized cumulative end offsets of the elements
func elementBounds(seg *SegInstance) []float64 {
	size := seg.Size()
	bounds := make([]float64, size)
	total := 0
	for _, e := range seg.Element {
		total += utf8.RuneCountInString(e.Form)
	}
	acc := 0
	for i, e := range seg.Element {
		if total == 0 {
			bounds[i] = float64(i+1) / float64(size)
			continue
		}
		acc += utf8.RuneCountInString(e.Form)
		bounds[i] = float64(acc) / float64(total)
	}
	return bounds
}

// projectBounds maps each element of from to the element of to containing
// its midpoint
func projectBounds(from, to []float64) []int {
	result := make([]int, len(from))
	start := 0.0
	for i, end := range from {
		mid := (start + end) / 2
		j := 0
		for j < len(to)-1 && to[j] <= mid {
			j++
		}
		result[i] = j
		start = end
	}
	return result
}

func (w *WordInstance) copy() WordInstance {
	cp := *w
	cp.CandSeg = make([]SegInstance, len(w.CandSeg))
	for i := range w.CandSeg {
		seg := w.CandSeg[i]
		seg.Element = make([]SegElement, len(w.CandSeg[i].Element))
		for j, e := range w.CandSeg[i].Element {
			if e.Child != nil {
				e.Child = append([]HeadIndex(nil), e.Child...)
			}
			seg.Element[j] = e
		}
		cp.CandSeg[i] = seg
	}
	return cp
}
