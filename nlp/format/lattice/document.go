package lattice

import (
	"cmp"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"segyap/nlp/types"
)

var ErrGold = errors.New("lattice: inconsistent gold annotation")

// Document is one sentence of a YAML lattice stream, documents separated by
// "---".
//
//	id: s1
//	tokens:
//	- form: wbyt
//	  segmentations:
//	  - - {form: w, tags: [{pos: CC, prob: -0.1}]}
//	    - {form: byt, tags: [{pos: NN}]}
//	  - - {form: wbyt, tags: [{pos: NNP, prob: -3}]}
//	  gold: {seg: 0, pos: [CC, NN], heads: [1/1, 0/0], labels: [cc, root]}
//
// Segmentations are listed from the most probable. Heads are word/segment
// pairs, word 0 being the root.
type Document struct {
	ID     string  `yaml:"id,omitempty"`
	Tokens []Token `yaml:"tokens"`
}

type Token struct {
	Form          string      `yaml:"form"`
	Segmentations [][]Segment `yaml:"segmentations"`
	Gold          *Gold       `yaml:"gold,omitempty"`
}

type Segment struct {
	Form  string `yaml:"form"`
	Lemma string `yaml:"lemma,omitempty"`
	Tags  []Tag  `yaml:"tags"`
}

// Tag is a candidate tag with its log-probability
type Tag struct {
	Pos  string  `yaml:"pos"`
	Prob float64 `yaml:"prob,omitempty"`
}

type Gold struct {
	Seg    int               `yaml:"seg"`
	Pos    []string          `yaml:"pos"`
	Heads  []types.HeadIndex `yaml:"heads"`
	Labels []string          `yaml:"labels,omitempty"`
}

// Sentence is an instance to decode, with its annotation when the input has
// one
type Sentence struct {
	ID   string
	Pred *types.DependencyInstance
	Gold *types.DependencyInstance
}

// DocumentReader decodes a stream of YAML documents into sentences
type DocumentReader struct {
	dec       *yaml.Decoder
	alphabets *Alphabets
	policy    types.NodePolicy
	read      int
}

func NewDocumentReader(r io.Reader, a *Alphabets, policy types.NodePolicy) *DocumentReader {
	return &DocumentReader{dec: yaml.NewDecoder(r), alphabets: a, policy: policy}
}

// Next returns the next sentence, io.EOF after the last one
func (r *DocumentReader) Next() (*Sentence, error) {
	var doc Document
	if err := r.dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("%w: document %d: %v", ErrFormat, r.read+1, err)
	}
	r.read++
	if doc.ID == "" {
		doc.ID = fmt.Sprintf("%d", r.read)
	}
	sent, err := doc.Sentence(r.alphabets, r.policy)
	if err != nil {
		return nil, fmt.Errorf("document %s: %w", doc.ID, err)
	}
	return sent, nil
}

// ReadDocuments decodes every sentence of r
func ReadDocuments(r io.Reader, a *Alphabets, policy types.NodePolicy) ([]*Sentence, error) {
	reader := NewDocumentReader(r, a, policy)
	var sents []*Sentence
	for {
		sent, err := reader.Next()
		if errors.Is(err, io.EOF) {
			return sents, nil
		}
		if err != nil {
			return nil, err
		}
		sents = append(sents, sent)
	}
}

func ReadDocumentsFile(filename string, a *Alphabets, policy types.NodePolicy) ([]*Sentence, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return ReadDocuments(file, a, policy)
}

func (t *Token) word(a *Alphabets) (types.WordInstance, error) {
	if len(t.Segmentations) == 0 {
		return types.WordInstance{}, fmt.Errorf("%w: token %q has no segmentation", ErrFormat, t.Form)
	}
	w := types.WordInstance{Form: t.Form, WordID: a.Forms.Lookup(t.Form)}
	for _, segments := range t.Segmentations {
		if len(segments) == 0 {
			return types.WordInstance{}, fmt.Errorf("%w: token %q has an empty segmentation", ErrFormat, t.Form)
		}
		seg := types.SegInstance{InNode: -1, OutNode: -1, DetNode: -1}
		for _, s := range segments {
			if len(s.Tags) == 0 {
				return types.WordInstance{}, fmt.Errorf("%w: segment %q of %q has no tag", ErrFormat, s.Form, t.Form)
			}
			tags := slices.Clone(s.Tags)
			slices.SortStableFunc(tags, func(x, y Tag) int { return cmp.Compare(y.Prob, x.Prob) })
			pos := make([]string, len(tags))
			probs := make([]float64, len(tags))
			for i, tag := range tags {
				pos[i], probs[i] = tag.Pos, tag.Prob
			}
			seg.Element = append(seg.Element, a.element(s.Form, s.Lemma, pos, probs))
		}
		w.CandSeg = append(w.CandSeg, seg)
	}
	return w, nil
}

// Sentence builds the instance to decode and, when every token carries a
// gold analysis, the gold instance
func (d *Document) Sentence(a *Alphabets, policy types.NodePolicy) (*Sentence, error) {
	words := make([]types.WordInstance, len(d.Tokens))
	annotated := 0
	for i := range d.Tokens {
		w, err := d.Tokens[i].word(a)
		if err != nil {
			return nil, err
		}
		words[i] = w
		if d.Tokens[i].Gold != nil {
			annotated++
		}
	}
	pred := types.NewInstance(words...)
	types.ApplyNodePolicy(pred, policy)
	sent := &Sentence{ID: d.ID, Pred: pred}

	switch annotated {
	case 0:
		return sent, nil
	case len(d.Tokens):
	default:
		return nil, fmt.Errorf("%w: %d of %d tokens annotated", ErrGold, annotated, len(d.Tokens))
	}

	gold := pred.Copy()
	for i := range d.Tokens {
		g := d.Tokens[i].Gold
		if g.Seg < 0 || g.Seg >= len(gold.Word[i+1].CandSeg) {
			return nil, fmt.Errorf("%w: token %q has no segmentation %d", ErrGold, d.Tokens[i].Form, g.Seg)
		}
		gold.UpdateSeg(i+1, g.Seg)
	}
	gold.ConstructConversionList()
	for i := range d.Tokens {
		if err := annotate(gold, i+1, d.Tokens[i].Gold, a); err != nil {
			return nil, fmt.Errorf("token %q: %w", d.Tokens[i].Form, err)
		}
	}
	gold.SetOptSegPosCount()
	gold.BuildChild()
	if err := gold.CheckTree(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrGold, err)
	}
	sent.Gold = gold
	return sent, nil
}

func annotate(gold *types.DependencyInstance, word int, g *Gold, a *Alphabets) error {
	w := &gold.Word[word]
	seg := w.Seg()
	size := seg.Size()
	if len(g.Pos) != size || len(g.Heads) != size || (g.Labels != nil && len(g.Labels) != size) {
		return fmt.Errorf("%w: segmentation %d has %d segments", ErrGold, g.Seg, size)
	}
	for j := range seg.Element {
		e := &seg.Element[j]
		pos := slices.Index(e.CandPos, g.Pos[j])
		if pos < 0 {
			return fmt.Errorf("%w: tag %s is not a candidate of %q", ErrGold, g.Pos[j], e.Form)
		}
		w.UpdatePos(j, pos)

		h := g.Heads[j]
		if h.Word < 0 || h.Word >= gold.NumWord() || h.Seg < 0 || h.Seg >= gold.Word[h.Word].Seg().Size() {
			return fmt.Errorf("%w: head %v of %q is outside the sentence", ErrGold, h, e.Form)
		}
		e.Dep = h
		if g.Labels != nil {
			e.Label = a.Labels.Lookup(g.Labels[j])
		}
	}
	return nil
}
