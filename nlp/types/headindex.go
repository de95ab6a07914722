package types

import (
	"fmt"
	"strconv"
	"strings"
)

// HeadIndex addresses a segment by its word and its position in the word's
// selected segmentation.
type HeadIndex struct {
	Word, Seg int
}

var (
	// NoHead is the head of the root and of units not yet attached
	NoHead = HeadIndex{-1, 0}
	Root   = HeadIndex{0, 0}
)

func (h HeadIndex) IsNone() bool {
	return h.Word == -1
}

func (h HeadIndex) Less(other HeadIndex) bool {
	return h.Word < other.Word || (h.Word == other.Word && h.Seg < other.Seg)
}

func CompareHeads(a, b HeadIndex) int {
	switch {
	case a.Less(b):
		return -1
	case b.Less(a):
		return 1
	default:
		return 0
	}
}

func (h HeadIndex) String() string {
	return fmt.Sprintf("%d/%d", h.Word, h.Seg)
}

// ParseHeadIndex reads the "word/seg" form written by String
func ParseHeadIndex(s string) (HeadIndex, error) {
	w, seg, found := strings.Cut(strings.TrimSpace(s), "/")
	if !found {
		return NoHead, fmt.Errorf("types: head index %q is not word/seg", s)
	}
	word, err := strconv.Atoi(w)
	if err != nil {
		return NoHead, fmt.Errorf("types: head index %q: %w", s, err)
	}
	segment, err := strconv.Atoi(seg)
	if err != nil {
		return NoHead, fmt.Errorf("types: head index %q: %w", s, err)
	}
	return HeadIndex{word, segment}, nil
}

func (h HeadIndex) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

func (h *HeadIndex) UnmarshalText(text []byte) error {
	parsed, err := ParseHeadIndex(string(text))
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}
