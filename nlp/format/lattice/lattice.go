// Package lattice reads morphological analysis lattices, either as tab
// separated edge files or as YAML sentence documents, into instances for
// the joint decoder.
package lattice

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"slices"
	"sort"
	"strconv"
	"strings"

	"segyap/nlp/types"
)

var ErrFormat = errors.New("lattice: malformed input")

type Features map[string]string

func (f Features) String() string {
	if len(f) == 0 {
		return "_"
	}
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	strs := make([]string, len(keys))
	for i, k := range keys {
		strs[i] = k + FEATURE_SEPARATOR + f[k]
	}
	return strings.Join(strs, FEATURES_SEPARATOR)
}

// Edge is one morpheme analysis spanning lattice nodes Start to End
type Edge struct {
	Start   int
	End     int
	Word    string
	Lemma   string
	CPosTag string
	PosTag  string
	Feats   Features
	FeatStr string
	Token   int
}

func (e Edge) String() string {
	lemma := e.Lemma
	if lemma == "" {
		lemma = "_"
	}
	fields := []string{
		strconv.Itoa(e.Start),
		strconv.Itoa(e.End),
		e.Word,
		lemma,
		e.CPosTag,
		e.PosTag,
		e.Feats.String(),
		strconv.Itoa(e.Token),
	}
	return strings.Join(fields, "\t")
}

// Lattice holds the edges of a sentence by start node
type Lattice map[int][]Edge

const (
	FIELD_SEPARATOR      = '\t'
	NUM_FIELDS           = 8
	FEATURES_SEPARATOR   = "|"
	FEATURE_SEPARATOR    = "="
	FEATURE_CONCAT_DELIM = ","

	// MaxSpellouts bounds the paths enumerated through one token
	MaxSpellouts = 256
)

func ParseInt(value string) (int, error) {
	if value == "_" {
		return 0, nil
	}
	i, err := strconv.ParseInt(value, 10, 0)
	return int(i), err
}

func ParseString(value string) string {
	if value == "_" {
		return ""
	}
	return value
}

func ParseFeatures(featuresStr string) (Features, error) {
	featureMap := make(Features)
	if featuresStr == "_" || featuresStr == "" {
		return featureMap, nil
	}

	for _, featureStr := range strings.Split(featuresStr, FEATURES_SEPARATOR) {
		featureKV := strings.Split(featureStr, FEATURE_SEPARATOR)
		switch len(featureKV) {
		case 1:
			featureMap[featureKV[0]] = featureKV[0]
		case 2:
			featName, featValue := featureKV[0], featureKV[1]
			if existing, exists := featureMap[featName]; exists {
				featureMap[featName] = existing + FEATURE_CONCAT_DELIM + featValue
			} else {
				featureMap[featName] = featValue
			}
		default:
			return nil, fmt.Errorf("%w: wrong number of fields in feature %q", ErrFormat, featureStr)
		}
	}
	return featureMap, nil
}

func ParseEdge(record []string) (*Edge, error) {
	if len(record) != NUM_FIELDS {
		return nil, fmt.Errorf("%w: %d fields, expected %d", ErrFormat, len(record), NUM_FIELDS)
	}
	row := &Edge{}
	var err error
	if row.Start, err = ParseInt(record[0]); err != nil {
		return nil, fmt.Errorf("%w: START field (%s): %v", ErrFormat, record[0], err)
	}
	if row.End, err = ParseInt(record[1]); err != nil {
		return nil, fmt.Errorf("%w: END field (%s): %v", ErrFormat, record[1], err)
	}
	if row.Word = ParseString(record[2]); row.Word == "" {
		return nil, fmt.Errorf("%w: empty WORD field", ErrFormat)
	}
	row.Lemma = ParseString(record[3])
	if row.CPosTag = ParseString(record[4]); row.CPosTag == "" {
		return nil, fmt.Errorf("%w: empty CPOSTAG field", ErrFormat)
	}
	if row.PosTag = ParseString(record[5]); row.PosTag == "" {
		return nil, fmt.Errorf("%w: empty POSTAG field", ErrFormat)
	}
	if row.Token, err = ParseInt(record[7]); err != nil {
		return nil, fmt.Errorf("%w: TOKEN field (%s): %v", ErrFormat, record[7], err)
	}
	if row.Feats, err = ParseFeatures(record[6]); err != nil {
		return nil, fmt.Errorf("FEATS field (%s): %w", record[6], err)
	}
	row.FeatStr = ParseString(record[6])
	return row, nil
}

// Read parses sentences of edges. A sentence starts at the first edge
// leaving node 0.
func Read(r io.Reader) ([]Lattice, error) {
	var sentences []Lattice
	reader := csv.NewReader(r)
	reader.Comma = FIELD_SEPARATOR
	reader.FieldsPerRecord = NUM_FIELDS
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}

	var (
		currentLatt          Lattice
		prevRecordFirstField string
	)
	for i, record := range records {
		// csv reader skips empty lines, so sentences are told apart by their
		// first node
		if record[0] == "0" && prevRecordFirstField != "0" {
			if currentLatt != nil {
				sentences = append(sentences, currentLatt)
			}
			currentLatt = make(Lattice)
		}
		prevRecordFirstField = record[0]
		if currentLatt == nil {
			return nil, fmt.Errorf("%w: record %d precedes the first sentence", ErrFormat, i)
		}

		edge, err := ParseEdge(record)
		if err != nil {
			return nil, fmt.Errorf("record %d of sentence %d: %w", i, len(sentences), err)
		}
		if edge.Start == edge.End {
			continue
		}
		if edge.End < edge.Start {
			return nil, fmt.Errorf("%w: record %d ends at %d before its start %d", ErrFormat, i, edge.End, edge.Start)
		}
		currentLatt[edge.Start] = append(currentLatt[edge.Start], *edge)
	}
	if currentLatt != nil {
		sentences = append(sentences, currentLatt)
	}
	return sentences, nil
}

func ReadFile(filename string) ([]Lattice, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return Read(file)
}

// Morpheme is a lattice span with every analysis sharing its form merged
// into one candidate list
type Morpheme struct {
	Start, End int
	Form       string
	Lemma      string
	Tags       []string
}

// Tokens lists the token numbers of the lattice in order
func (l Lattice) Tokens() []int {
	seen := make(map[int]bool)
	var tokens []int
	for _, edges := range l {
		for _, e := range edges {
			if !seen[e.Token] {
				seen[e.Token] = true
				tokens = append(tokens, e.Token)
			}
		}
	}
	sort.Ints(tokens)
	return tokens
}

// Spellouts enumerates the paths through the edges of token from its first
// node to its last, in edge order, at most MaxSpellouts of them
func (l Lattice) Spellouts(token int) [][]Morpheme {
	starts := make([]int, 0, len(l))
	for start := range l {
		starts = append(starts, start)
	}
	sort.Ints(starts)

	bottom, top := math.MaxInt, math.MinInt
	next := make(map[int][]*Morpheme)
	merged := make(map[[2]int]map[string]*Morpheme)
	for _, start := range starts {
		for _, e := range l[start] {
			if e.Token != token {
				continue
			}
			bottom, top = min(bottom, e.Start), max(top, e.End)
			span := [2]int{e.Start, e.End}
			if merged[span] == nil {
				merged[span] = make(map[string]*Morpheme)
			}
			m, exists := merged[span][e.Word]
			if !exists {
				m = &Morpheme{Start: e.Start, End: e.End, Form: e.Word, Lemma: e.Lemma}
				merged[span][e.Word] = m
				next[e.Start] = append(next[e.Start], m)
			}
			if !slices.Contains(m.Tags, e.CPosTag) {
				m.Tags = append(m.Tags, e.CPosTag)
			}
		}
	}
	if bottom > top {
		return nil
	}

	var (
		paths [][]Morpheme
		path  []Morpheme
		walk  func(node int)
	)
	walk = func(node int) {
		if len(paths) >= MaxSpellouts {
			return
		}
		if node == top {
			paths = append(paths, append([]Morpheme(nil), path...))
			return
		}
		for _, m := range next[node] {
			path = append(path, *m)
			walk(m.End)
			path = path[:len(path)-1]
		}
	}
	walk(bottom)
	return paths
}

// word turns the spellouts of a token into a word whose candidate tags are
// equally likely
func word(spellouts [][]Morpheme, a *Alphabets) types.WordInstance {
	var form strings.Builder
	for _, m := range spellouts[0] {
		form.WriteString(m.Form)
	}
	w := types.WordInstance{Form: form.String(), WordID: a.Forms.Lookup(form.String())}
	for _, spellout := range spellouts {
		seg := types.SegInstance{InNode: -1, OutNode: -1, DetNode: -1}
		for _, m := range spellout {
			probs := make([]float64, len(m.Tags))
			for i := range probs {
				probs[i] = -math.Log(float64(len(m.Tags)))
			}
			seg.Element = append(seg.Element, a.element(m.Form, m.Lemma, m.Tags, probs))
		}
		w.CandSeg = append(w.CandSeg, seg)
	}
	return w
}

// Sentences converts lattices into unannotated sentences
func Sentences(lattices []Lattice, a *Alphabets, policy types.NodePolicy) ([]*Sentence, error) {
	sents := make([]*Sentence, 0, len(lattices))
	for i, l := range lattices {
		tokens := l.Tokens()
		words := make([]types.WordInstance, 0, len(tokens))
		for _, token := range tokens {
			spellouts := l.Spellouts(token)
			if len(spellouts) == 0 {
				return nil, fmt.Errorf("%w: sentence %d token %d has no complete path", ErrFormat, i, token)
			}
			words = append(words, word(spellouts, a))
		}
		inst := types.NewInstance(words...)
		types.ApplyNodePolicy(inst, policy)
		sents = append(sents, &Sentence{ID: strconv.Itoa(i + 1), Pred: inst})
	}
	return sents, nil
}
