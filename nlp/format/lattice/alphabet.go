package lattice

import (
	"segyap/nlp/types"
	"segyap/util"
)

const APPROX_ALPHABET = 1000

// Alphabets number the forms, lemmas, tags and labels seen in the input.
// Tag 0 is the root tag.
type Alphabets struct {
	Forms, Lemmas, Pos, Labels *util.EnumSet[string]
}

func NewAlphabets() *Alphabets {
	a := &Alphabets{
		Forms:  util.NewEnumSet[string](APPROX_ALPHABET),
		Lemmas: util.NewEnumSet[string](APPROX_ALPHABET),
		Pos:    util.NewEnumSet[string](64),
		Labels: util.NewEnumSet[string](64),
	}
	a.Forms.Add(types.ROOT_TOKEN)
	a.Lemmas.Add(types.ROOT_TOKEN)
	a.Pos.Add(types.ROOT_TOKEN)
	a.Labels.Add(types.ROOT_LABEL)
	return a
}

// Freeze stops the alphabets from growing; unknown values then map to -1
func (a *Alphabets) Freeze() {
	a.Forms.Freeze()
	a.Lemmas.Freeze()
	a.Pos.Freeze()
	a.Labels.Freeze()
}

func (a *Alphabets) element(form, lemma string, tags []string, probs []float64) types.SegElement {
	if lemma == "" {
		lemma = form
	}
	e := types.SegElement{
		Form:      form,
		Lemma:     lemma,
		FormID:    a.Forms.Lookup(form),
		LemmaID:   a.Lemmas.Lookup(lemma),
		CandPos:   tags,
		CandPosID: make([]int, len(tags)),
		CandProb:  probs,
		Label:     types.NoLabel,
	}
	for i, tag := range tags {
		e.CandPosID[i] = a.Pos.Lookup(tag)
	}
	return e
}
