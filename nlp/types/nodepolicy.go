package types

// NodePolicy decides which element of a segmentation receives the word's
// incoming arc (InNode), which one carries its outgoing arcs (OutNode) and
// which one is a determiner (DetNode). Feature extractors consult these
// indices; -1 means undecided.
type NodePolicy interface {
	SelectNodes(seg *SegInstance)
}

type NoNodePolicy struct{}

func (NoNodePolicy) SelectNodes(seg *SegInstance) {
	seg.InNode, seg.OutNode, seg.DetNode = -1, -1, -1
}

// AffixPolicy treats a leading determiner as a prefix and a trailing run of
// suffixes as clitics: the first non-determiner element is the in-node and
// the last non-suffix element is the out-node.
type AffixPolicy struct {
	Determiner string
	Suffixes   map[string]bool
}

func NewAffixPolicy(determiner string, suffixes []string) *AffixPolicy {
	p := &AffixPolicy{Determiner: determiner, Suffixes: make(map[string]bool, len(suffixes))}
	for _, s := range suffixes {
		p.Suffixes[s] = true
	}
	return p
}

func (p *AffixPolicy) SelectNodes(seg *SegInstance) {
	size := seg.Size()
	seg.DetNode = -1
	for k := 0; k < size; k++ {
		if seg.Element[k].Form == p.Determiner {
			seg.DetNode = k
			break
		}
	}

	seg.InNode = 0
	if size > 1 && seg.Element[0].Form == p.Determiner {
		seg.InNode = 1
	}

	seg.OutNode = size - 1
	for seg.OutNode >= 0 && p.Suffixes[seg.Element[seg.OutNode].Form] {
		seg.OutNode--
	}
	if seg.OutNode < 0 {
		seg.OutNode = 0
	}
}

// ApplyNodePolicy runs policy over every candidate segmentation of inst
func ApplyNodePolicy(inst *DependencyInstance, policy NodePolicy) {
	if policy == nil {
		policy = NoNodePolicy{}
	}
	for i := range inst.Word {
		for j := range inst.Word[i].CandSeg {
			policy.SelectNodes(&inst.Word[i].CandSeg[j])
		}
	}
}
