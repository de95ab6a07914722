// Package mapping writes decoded sentences as disambiguated lattices: the
// selected path through each lattice, one edge per segment, in the tab
// separated lattice format.
package mapping

import (
	"io"
	"os"

	"segyap/nlp/format/lattice"
	"segyap/nlp/types"
)

// Edges lists the selected segments of inst as consecutive lattice edges
func Edges(inst *types.DependencyInstance) []lattice.Edge {
	edges := make([]lattice.Edge, 0, inst.NumSegs()-1)
	curMorph := 0
	for i := 1; i < inst.NumWord(); i++ {
		seg := inst.Word[i].Seg()
		for j := range seg.Element {
			e := &seg.Element[j]
			lemma := e.Lemma
			if lemma == e.Form {
				lemma = ""
			}
			edges = append(edges, lattice.Edge{
				Start:   curMorph,
				End:     curMorph + 1,
				Word:    e.Form,
				Lemma:   lemma,
				CPosTag: e.Pos(),
				PosTag:  e.Pos(),
				Token:   i,
			})
			curMorph++
		}
	}
	return edges
}

func Write(writer io.Writer, insts []*types.DependencyInstance) error {
	for _, inst := range insts {
		for _, edge := range Edges(inst) {
			if _, err := io.WriteString(writer, edge.String()+"\n"); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(writer, "\n"); err != nil {
			return err
		}
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
