package linear

import (
	"strconv"
	"strings"

	"segyap/alg/featurevector"
	"segyap/nlp/types"
	"segyap/util"
)

const (
	ATTRIBUTE_SEPARATOR = "|"
	TEMPLATE_PREFIX     = ":"

	// ProbFeature carries the lattice log-probability of the selected tag
	ProbFeature = "p3"

	startToken = "<s>"
	noRole     = "-"
)

// emitter receives every feature of a factor with its value
type emitter func(f featurevector.Feature, v float64)

func feat(template string, attrs ...string) featurevector.Feature {
	return featurevector.Feature(template + TEMPLATE_PREFIX + strings.Join(attrs, ATTRIBUTE_SEPARATOR))
}

func posOf(inst *types.DependencyInstance, u types.HeadIndex) string {
	if u.IsNone() {
		return startToken
	}
	return inst.Element(u).Pos()
}

func formOf(inst *types.DependencyInstance, u types.HeadIndex) string {
	return types.Normalize(inst.Element(u).Form)
}

func direction(inst *types.DependencyInstance, h, m types.HeadIndex) string {
	if inst.WordToSeg(h) < inst.WordToSeg(m) {
		return "R"
	}
	return "L"
}

func distBucket(d int) string {
	switch {
	case d <= 4:
		return strconv.Itoa(d)
	case d < 10:
		return "5"
	default:
		return "10"
	}
}

// nodeRole names the roles a node policy gave to element k, empty when no
// policy ran on the segmentation
func nodeRole(seg *types.SegInstance, k int) string {
	if seg.InNode < 0 && seg.OutNode < 0 && seg.DetNode < 0 {
		return ""
	}
	var roles []string
	if seg.InNode == k {
		roles = append(roles, "in")
	}
	if seg.OutNode == k {
		roles = append(roles, "out")
	}
	if seg.DetNode == k {
		roles = append(roles, "det")
	}
	if len(roles) == 0 {
		return noRole
	}
	return strings.Join(roles, "+")
}

func arcFeatures(inst *types.DependencyInstance, h, m types.HeadIndex, emit emitter) {
	hp, mp := posOf(inst, h), posOf(inst, m)
	hf, mf := formOf(inst, h), formOf(inst, m)
	dir := direction(inst, h, m)
	dist := distBucket(inst.SegDist(h, m))

	emit(feat("a0", hp, mp), 1)
	emit(feat("a1", hp, mp, dir, dist), 1)
	emit(feat("a2", hf, mp, dir), 1)
	emit(feat("a3", hp, mf, dir), 1)
	emit(feat("a4", hf, mf), 1)
	emit(feat("a5", dir, dist), 1)
	if h.Word == m.Word {
		emit(feat("a6", hp, mp, dir), 1)
	}
	hRole := nodeRole(inst.Word[h.Word].Seg(), h.Seg)
	mRole := nodeRole(inst.Word[m.Word].Seg(), m.Seg)
	if hRole != "" && mRole != "" {
		emit(feat("a7", hRole, mRole, hp, mp), 1)
	}
	if types.IsPunct(inst.Element(m).Form) {
		emit(feat("a8", hp, dir), 1)
	}
}

// siblingFeatures scores m following s among the children of h; s is
// NoHead for the first child
func siblingFeatures(inst *types.DependencyInstance, h, s, m types.HeadIndex, emit emitter) {
	hp, sp, mp := posOf(inst, h), posOf(inst, s), posOf(inst, m)
	emit(feat("s0", hp, sp, mp), 1)
	emit(feat("s1", sp, mp), 1)
	emit(feat("s2", hp, sp, mp, direction(inst, h, m)), 1)
}

func grandparentFeatures(inst *types.DependencyInstance, g, h, m types.HeadIndex, emit emitter) {
	gp, hp, mp := posOf(inst, g), posOf(inst, h), posOf(inst, m)
	emit(feat("g0", gp, hp, mp), 1)
	emit(feat("g1", gp, mp), 1)
	emit(feat("g2", gp, hp, mp, direction(inst, h, m)), 1)
}

func posFeatures(inst *types.DependencyInstance, m types.HeadIndex, emit emitter) {
	e := inst.Element(m)
	form, pos := formOf(inst, m), e.Pos()
	emit(feat("p0", form, pos), 1)
	emit(feat("p1", pos), 1)
	emit(feat("p2", util.Suffix(form, 2), pos), 1)
	emit(feat("p4", util.Signature(e.Form), pos), 1)
	if e.CurrPos < len(e.CandProb) {
		emit(featurevector.Feature(ProbFeature), e.CandProb[e.CurrPos])
	}
}

// bigramFeatures scores the tag at flat id against the one before it
func bigramFeatures(inst *types.DependencyInstance, id int, emit emitter) {
	prev, cur := inst.SegToWord(id-1), inst.SegToWord(id)
	emit(feat("b0", posOf(inst, prev), posOf(inst, cur)), 1)
}

func segFeatures(inst *types.DependencyInstance, word int, emit emitter) {
	w := &inst.Word[word]
	seg := w.Seg()
	sig := seg.Signature()
	emit(feat("e0", types.Normalize(w.Form), sig), 1)
	emit(feat("e1", strconv.Itoa(seg.Size())), 1)
	emit(feat("e2", sig), 1)
	if seg.DetNode >= 0 {
		emit(feat("e3", sig, "det"), 1)
	}
}
