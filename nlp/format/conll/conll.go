// Package conll reads and writes CoNLL-X dependency files, one row per
// selected segment. For a description see http://ilk.uvt.nl/conll/#dataformat
package conll

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"segyap/nlp/types"
	"segyap/util"
)

var ErrFormat = errors.New("conll: malformed input")

const (
	FIELD_SEPARATOR      = '\t'
	NUM_FIELDS           = 10
	FEATURES_SEPARATOR   = "|"
	FEATURE_SEPARATOR    = "="
	FEATURE_CONCAT_DELIM = ","

	// TokenFeature holds the input token a segment belongs to
	TokenFeature = "tok"
)

type Features map[string]string

func (f Features) String() string {
	return FormatFeatures(f)
}

func FormatFeatures(feat map[string]string) string {
	if len(feat) == 0 {
		return "_"
	}
	strs := make([]string, 0, len(feat))
	for k, v := range feat {
		strs = append(strs, k+FEATURE_SEPARATOR+v)
	}
	sort.Strings(strs)
	return strings.Join(strs, FEATURES_SEPARATOR)
}

// A Row is a single parsed row of a conll data set; PHEAD and PDEPREL are
// not kept
type Row struct {
	ID      int
	Form    string
	Lemma   string
	CPosTag string
	PosTag  string
	Feats   Features
	FeatStr string
	Head    int
	DepRel  string
}

func orBlank(s string) string {
	if s == "" {
		return "_"
	}
	return s
}

func (r Row) String() string {
	fields := []string{
		strconv.Itoa(r.ID),
		r.Form,
		orBlank(r.Lemma),
		r.CPosTag,
		r.PosTag,
		FormatFeatures(r.Feats),
		strconv.Itoa(r.Head),
		orBlank(r.DepRel),
		"_",
		"_"}
	return strings.Join(fields, "\t")
}

// A Sentence is a map of Rows using their ids
type Sentence map[int]Row

type Sentences []Sentence

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
	if featuresStr == "_" || featuresStr == "" {
		return nil, nil
	}

	featureList := strings.Split(featuresStr, FEATURES_SEPARATOR)
	featureMap := make(Features, len(featureList))
	for _, featureStr := range featureList {
		featName, featValue, found := strings.Cut(featureStr, FEATURE_SEPARATOR)
		if !found || strings.Contains(featValue, FEATURE_SEPARATOR) {
			return nil, fmt.Errorf("%w: wrong number of fields for split of feature %q", ErrFormat, featureStr)
		}
		if existing, exists := featureMap[featName]; exists {
			featureMap[featName] = existing + FEATURE_CONCAT_DELIM + featValue
		} else {
			featureMap[featName] = featValue
		}
	}
	return featureMap, nil
}

// ParseRow reads one record; an empty DEPREL marks an unlabeled arc
func ParseRow(record []string) (Row, error) {
	var (
		row Row
		err error
	)
	if len(record) != NUM_FIELDS {
		return row, fmt.Errorf("%w: %d fields, expected %d", ErrFormat, len(record), NUM_FIELDS)
	}
	if row.ID, err = ParseInt(record[0]); err != nil {
		return row, fmt.Errorf("%w: ID field (%s): %v", ErrFormat, record[0], err)
	}
	if row.Form = ParseString(record[1]); row.Form == "" {
		return row, fmt.Errorf("%w: empty FORM field", ErrFormat)
	}
	row.Lemma = ParseString(record[2])
	if row.CPosTag = ParseString(record[3]); row.CPosTag == "" {
		return row, fmt.Errorf("%w: empty CPOSTAG field", ErrFormat)
	}
	if row.PosTag = ParseString(record[4]); row.PosTag == "" {
		return row, fmt.Errorf("%w: empty POSTAG field", ErrFormat)
	}
	if row.Head, err = ParseInt(record[6]); err != nil {
		return row, fmt.Errorf("%w: HEAD field (%s): %v", ErrFormat, record[6], err)
	}
	row.DepRel = ParseString(record[7])
	if row.Feats, err = ParseFeatures(record[5]); err != nil {
		return row, fmt.Errorf("FEATS field (%s): %w", record[5], err)
	}
	row.FeatStr = ParseString(record[5])
	return row, nil
}

func Read(reader io.Reader) (Sentences, error) {
	var sentences Sentences
	csvReader := csv.NewReader(reader)
	csvReader.Comma = FIELD_SEPARATOR
	csvReader.FieldsPerRecord = NUM_FIELDS
	csvReader.LazyQuotes = true

	records, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}

	var currentSent Sentence
	for i, record := range records {
		// a record with id '1' starts a sentence since the csv reader skips
		// empty lines
		if record[0] == "1" {
			if currentSent != nil {
				sentences = append(sentences, currentSent)
			}
			currentSent = make(Sentence)
		}
		if currentSent == nil {
			return nil, fmt.Errorf("%w: record %d precedes the first sentence", ErrFormat, i)
		}

		row, err := ParseRow(record)
		if err != nil {
			return nil, fmt.Errorf("record %d at statement %d: %w", i, len(sentences), err)
		}
		currentSent[row.ID] = row
	}
	if currentSent != nil {
		sentences = append(sentences, currentSent)
	}
	return sentences, nil
}

func ReadFile(filename string) (Sentences, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return Read(file)
}

// Write emits sentences separated by blank lines
func Write(writer io.Writer, sents Sentences) error {
	for _, sent := range sents {
		for i := 1; i <= len(sent); i++ {
			if _, err := io.WriteString(writer, sent[i].String()+"\n"); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(writer, "\n"); err != nil {
			return err
		}
	}
	return nil
}

func WriteFile(filename string, sents Sentences) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	if err := Write(file, sents); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// Instance2Conll lists the selected segments of inst in sentence order. Row
// ids and heads are flat segment ids, so the root is head 0. Labels are
// named through labels when it is given.
func Instance2Conll(inst *types.DependencyInstance, labels *util.EnumSet[string]) Sentence {
	sent := make(Sentence, inst.NumSegs()-1)
	for _, m := range inst.Units()[1:] {
		e := inst.Element(m)
		row := Row{
			ID:      inst.WordToSeg(m),
			Form:    e.Form,
			Lemma:   e.Lemma,
			CPosTag: e.Pos(),
			PosTag:  e.Pos(),
			Feats:   Features{TokenFeature: strconv.Itoa(m.Word)},
			Head:    inst.WordToSeg(e.Dep),
		}
		if labels != nil && e.Label >= 0 && e.Label < labels.Len() {
			row.DepRel = labels.ValueOf(e.Label)
		}
		sent[row.ID] = row
	}
	return sent
}

func Instance2ConllCorpus(corpus []*types.DependencyInstance, labels *util.EnumSet[string]) Sentences {
	sents := make(Sentences, len(corpus))
	for i, inst := range corpus {
		sents[i] = Instance2Conll(inst, labels)
	}
	return sents
}
