package hillclimb

import (
	"fmt"

	"segyap/nlp/types"
)

// Epsilon is the margin by which a score must exceed another to count as
// an improvement
const Epsilon = 1e-6

func depLoss(pred, gold *types.DependencyInstance, fe FeatureExtractor, words ...int) float64 {
	if gold == nil {
		return 0
	}
	loss := 0.0
	for _, w := range words {
		loss += fe.Parameters().WordDepError(&gold.Word[w], &pred.Word[w])
	}
	return loss
}

func wordLoss(pred, gold *types.DependencyInstance, fe FeatureExtractor, word int) float64 {
	if gold == nil {
		return 0
	}
	return fe.Parameters().WordError(&gold.Word[word], &pred.Word[word])
}

// moveHead reattaches m to h keeping child lists consistent
func moveHead(pred *types.DependencyInstance, m, h types.HeadIndex) {
	ele := pred.Element(m)
	oldH := ele.Dep
	ele.Dep = h
	pred.UpdateChildList(h, oldH, m)
}

// FindOptHead moves m to its best scoring head and returns the gain, zero
// if the current head is kept
func FindOptHead(pred, gold *types.DependencyInstance, fe FeatureExtractor, cache CacheTable,
	m types.HeadIndex, projective bool) float64 {
	checkCache(pred, cache)
	pruned := fe.IsPruned(pred, cache, m)

	oldDep := pred.Element(m).Dep
	bestDep := oldDep
	bestScore := fe.PartialDepScore(pred, cache, m) + depLoss(pred, gold, fe, m.Word)
	oldScore := bestScore

	for id, h := range pred.Units() {
		if pruned[id] {
			continue
		}
		if IsAncestor(pred, m, h) || h == oldDep {
			continue
		}
		if projective && !IsProjective(pred, h, m) {
			continue
		}
		moveHead(pred, m, h)
		score := fe.PartialDepScore(pred, cache, m) + depLoss(pred, gold, fe, m.Word)
		if score > bestScore+Epsilon {
			bestScore = score
			bestDep = h
		}
	}
	moveHead(pred, m, bestDep)
	return bestScore - oldScore
}

// FindOptBigramHead jointly moves the siblings m and n to their best
// scoring common head
func FindOptBigramHead(pred, gold *types.DependencyInstance, fe FeatureExtractor, cache CacheTable,
	m, n types.HeadIndex, projective bool) float64 {
	checkCache(pred, cache)
	mPruned := fe.IsPruned(pred, cache, m)
	nPruned := fe.IsPruned(pred, cache, n)
	if len(mPruned) != len(nPruned) {
		panic("hillclimb: pruning masks differ in length")
	}

	words := []int{m.Word}
	if n.Word != m.Word {
		words = append(words, n.Word)
	}

	oldDep := pred.Element(m).Dep
	if pred.Element(n).Dep != oldDep {
		panic(fmt.Sprintf("hillclimb: %v and %v are not siblings", m, n))
	}
	bestDep := oldDep
	bestScore := fe.PartialBigramDepScore(pred, cache, m, n) + depLoss(pred, gold, fe, words...)
	oldScore := bestScore

	for id, h := range pred.Units() {
		if mPruned[id] || nPruned[id] {
			continue
		}
		if IsAncestor(pred, m, h) || IsAncestor(pred, n, h) || h == oldDep {
			continue
		}
		if projective && (!IsProjective(pred, h, m) || !IsProjective(pred, h, n)) {
			continue
		}
		moveHead(pred, m, h)
		moveHead(pred, n, h)
		score := fe.PartialBigramDepScore(pred, cache, m, n) + depLoss(pred, gold, fe, words...)
		if score > bestScore+Epsilon {
			bestScore = score
			bestDep = h
		}
	}
	moveHead(pred, m, bestDep)
	moveHead(pred, n, bestDep)
	return bestScore - oldScore
}

// FindOptPos selects the best scoring POS of m among candidates at or above
// floor. The returned cache reflects the final assignment.
func FindOptPos(pred, gold *types.DependencyInstance, fe FeatureExtractor, cache CacheTable,
	m types.HeadIndex, floor float64) (float64, CacheTable) {
	ele := pred.Element(m)
	if ele.CandPosNum() == 1 {
		return 0, cache
	}
	word := &pred.Word[m.Word]

	bestScore := fe.PartialPosScore(pred, cache, m) + wordLoss(pred, gold, fe, m.Word)
	oldScore := bestScore
	oldPos := ele.CurrPos
	bestPos := oldPos
	cachePos := oldPos

	for i := 0; i < ele.CandPosNum(); i++ {
		if i == oldPos || ele.CandProb[i] < floor {
			continue
		}
		word.UpdatePos(m.Seg, i)
		cache = fe.CacheTable(pred)
		cachePos = i
		score := fe.PartialPosScore(pred, cache, m) + wordLoss(pred, gold, fe, m.Word)
		if score > bestScore+Epsilon {
			bestScore = score
			bestPos = i
		}
	}
	word.UpdatePos(m.Seg, bestPos)
	if cachePos != bestPos {
		cache = fe.CacheTable(pred)
	}
	return bestScore - oldScore, cache
}

// segState is what a word looked like before trying other segmentations
type segState struct {
	word    int
	oldSeg  int
	heads   []types.HeadIndex
	pos     []string
	labels  []int
	related []types.HeadIndex
	parents []int
}

// captureSeg records the current segmentation of word, the heads and tags of
// its elements and the units of other words that it governs
func captureSeg(pred *types.DependencyInstance, word int) *segState {
	seg := pred.Word[word].Seg()
	s := &segState{word: word, oldSeg: pred.Word[word].CurrSeg}
	for i := range seg.Element {
		s.heads = append(s.heads, seg.Element[i].Dep)
		s.pos = append(s.pos, seg.Element[i].Pos())
		s.labels = append(s.labels, seg.Element[i].Label)
	}
	for _, u := range pred.Units() {
		if u.Word == word {
			continue
		}
		if dep := pred.Element(u).Dep; dep.Word == word {
			s.related = append(s.related, u)
			s.parents = append(s.parents, dep.Seg)
		}
	}
	return s
}

// apply switches the word to newSeg, carrying heads, tags and dependents
// over through the word's seg maps, and rebuilds the flat index and the
// child lists. The result may contain a cycle inside the word.
func (s *segState) apply(pred *types.DependencyInstance, newSeg int) {
	w := &pred.Word[s.word]
	pred.UpdateSeg(s.word, newSeg)
	k := w.MapIndex(s.oldSeg, newSeg)
	inMap, outMap := w.InMap[k], w.OutMap[k]

	seg := w.Seg()
	for j := range seg.Element {
		ele := &seg.Element[j]
		src := inMap[j]

		ele.CurrPos = 0
		for c, pos := range ele.CandPos {
			if pos == s.pos[src] {
				ele.CurrPos = c
				break
			}
		}
		ele.Label = s.labels[src]

		// an old head inside the word that collapses onto this element is
		// skipped in favor of its own head
		h := s.heads[src]
		for steps := 0; h.Word == s.word && outMap[h.Seg] == j; steps++ {
			if steps > len(s.heads) {
				panic(fmt.Sprintf("hillclimb: cyclic heads inside word %d", s.word))
			}
			h = s.heads[h.Seg]
		}
		if h.Word == s.word {
			h = types.HeadIndex{Word: s.word, Seg: outMap[h.Seg]}
		}
		ele.Dep = h
	}
	for i, u := range s.related {
		pred.Element(u).Dep = types.HeadIndex{Word: s.word, Seg: outMap[s.parents[i]]}
	}
	w.SetOptPosCount()
	pred.ConstructConversionList()
	pred.BuildChild()
}

// reachesRoot reports whether the head path from m ends at the root
func reachesRoot(pred *types.DependencyInstance, m types.HeadIndex) bool {
	limit := pred.NumSegs()
	for steps := 0; m != types.Root; steps++ {
		if m.IsNone() || steps > limit {
			return false
		}
		m = pred.Element(m).Dep
	}
	return true
}

func (s *segState) isTree(pred *types.DependencyInstance) bool {
	n := pred.Word[s.word].Seg().Size()
	for j := 0; j < n; j++ {
		if !reachesRoot(pred, types.HeadIndex{Word: s.word, Seg: j}) {
			return false
		}
	}
	return true
}

// FindOptSeg selects the best scoring segmentation of a word by whole
// sentence score, plus the word's attachment loss when gold is given. Alternatives whose carried-over heads do not form a tree
// are not considered. The returned cache reflects the final assignment.
func FindOptSeg(pred, gold *types.DependencyInstance, fe FeatureExtractor, cache CacheTable,
	word int) (float64, CacheTable) {
	w := &pred.Word[word]
	if len(w.CandSeg) == 1 {
		return 0, cache
	}

	bestScore := fe.Score(pred, cache) + depLoss(pred, gold, fe, word)
	oldScore := bestScore
	state := captureSeg(pred, word)
	bestSeg := state.oldSeg

	for i := range w.CandSeg {
		if i == state.oldSeg {
			continue
		}
		state.apply(pred, i)
		if !state.isTree(pred) {
			continue
		}
		cache = fe.CacheTable(pred)
		score := fe.Score(pred, cache) + depLoss(pred, gold, fe, word)
		if score > bestScore+Epsilon {
			bestScore = score
			bestSeg = i
		}
	}
	state.apply(pred, bestSeg)
	cache = fe.CacheTable(pred)
	return bestScore - oldScore, cache
}

func checkCache(pred *types.DependencyInstance, cache CacheTable) {
	if cache != nil && cache.NumSeg() != pred.NumSegs() {
		panic(fmt.Sprintf("hillclimb: cache built for %d segments, instance has %d", cache.NumSeg(), pred.NumSegs()))
	}
}
