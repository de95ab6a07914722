// Package segmentation writes the selected segmentation of every token, one
// token per line with its segments joined by ':'.
package segmentation

import (
	"io"
	"os"
	"strings"

	"segyap/nlp/types"
)

const SEGMENT_SEPARATOR = ":"

func Write(writer io.Writer, insts []*types.DependencyInstance) error {
	var b strings.Builder
	for _, inst := range insts {
		for i := 1; i < inst.NumWord(); i++ {
			w := &inst.Word[i]
			seg := w.Seg()
			forms := make([]string, seg.Size())
			for j := range seg.Element {
				forms[j] = seg.Element[j].Form
			}
			b.WriteString(w.Form)
			b.WriteByte('\t')
			b.WriteString(strings.Join(forms, SEGMENT_SEPARATOR))
			b.WriteByte('\n')
		}
		b.WriteByte('\n')
		if _, err := io.WriteString(writer, b.String()); err != nil {
			return err
		}
		b.Reset()
	}
	return nil
}

func WriteFile(filename string, insts []*types.DependencyInstance) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	if err := Write(file, insts); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
