package eval

import (
	"fmt"

	"segyap/nlp/types"
)

const (
	SegError   = "seg"
	PosError   = "pos"
	HeadError  = "head"
	LabelError = "label"
)

// Mismatch is a unit of the prediction that disagrees with the annotation
type Mismatch struct {
	Unit types.HeadIndex
	Kind string
}

func (m Mismatch) String() string {
	return fmt.Sprintf("%s error at %v", m.Kind, m.Unit)
}

func (m Mismatch) Class() string {
	return m.Kind
}

// Joint scores segmentation, tagging and attachment together. Segments of a
// word are only credited when the word is segmented as in the annotation, so
// precision and recall differ once segmentations diverge.
type Joint struct {
	Seg, Pos, Unlabeled, Labeled Total
	Sentences                    int
}

// NewJoint keeps per sentence results when detailed is set
func NewJoint(detailed bool) *Joint {
	j := &Joint{}
	if detailed {
		j.Seg.Results = []*Result{}
		j.Pos.Results = []*Result{}
		j.Unlabeled.Results = []*Result{}
		j.Labeled.Results = []*Result{}
	}
	return j
}

// sameHead tells whether two heads point at the same segment, which requires
// the head's word to be segmented alike
func sameHead(gold, pred *types.DependencyInstance, g, p types.HeadIndex) bool {
	if g != p {
		return false
	}
	if g.IsNone() || g.Word == 0 {
		return true
	}
	return gold.Word[g.Word].CurrSeg == pred.Word[p.Word].CurrSeg
}

// Add scores pred against gold; both must cover the same tokens
func (j *Joint) Add(gold, pred *types.DependencyInstance) error {
	if gold.NumWord() != pred.NumWord() {
		return fmt.Errorf("eval: %d gold tokens, %d predicted", gold.NumWord()-1, pred.NumWord()-1)
	}
	var seg, pos, uas, las Result
	for w := 1; w < gold.NumWord(); w++ {
		gw, pw := &gold.Word[w], &pred.Word[w]
		gsize, psize := gw.Seg().Size(), pw.Seg().Size()
		if gw.CurrSeg != pw.CurrSeg {
			unit := types.HeadIndex{Word: w, Seg: 0}
			for _, r := range []*Result{&seg, &pos, &uas, &las} {
				r.FP += psize
				r.FN += gsize
			}
			seg.Errors = append(seg.Errors, Mismatch{unit, SegError})
			continue
		}
		seg.TP += gsize
		for k := 0; k < gsize; k++ {
			unit := types.HeadIndex{Word: w, Seg: k}
			ge, pe := gold.Element(unit), pred.Element(unit)
			if ge.Pos() == pe.Pos() {
				pos.TP++
			} else {
				pos.FP++
				pos.FN++
				pos.Errors = append(pos.Errors, Mismatch{unit, PosError})
			}
			if !sameHead(gold, pred, ge.Dep, pe.Dep) {
				for _, r := range []*Result{&uas, &las} {
					r.FP++
					r.FN++
				}
				uas.Errors = append(uas.Errors, Mismatch{unit, HeadError})
				continue
			}
			uas.TP++
			if ge.Label == pe.Label {
				las.TP++
			} else {
				las.FP++
				las.FN++
				las.Errors = append(las.Errors, Mismatch{unit, LabelError})
			}
		}
	}
	j.Seg.Add(&seg)
	j.Pos.Add(&pos)
	j.Unlabeled.Add(&uas)
	j.Labeled.Add(&las)
	j.Sentences++
	return nil
}

// Summary holds the F1 of every measure
type Summary struct {
	Seg, Pos, Unlabeled, Labeled float64
	SegExact                     float64
}

func (j *Joint) Summary() Summary {
	return Summary{
		Seg:       j.Seg.F1(),
		Pos:       j.Pos.F1(),
		Unlabeled: j.Unlabeled.F1(),
		Labeled:   j.Labeled.F1(),
		SegExact:  j.Seg.ExactMatch(),
	}
}

func (s Summary) String() string {
	return fmt.Sprintf("seg %.4f pos %.4f uas %.4f las %.4f seg-exact %.4f",
		s.Seg, s.Pos, s.Unlabeled, s.Labeled, s.SegExact)
}
