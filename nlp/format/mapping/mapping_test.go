package mapping

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"segyap/nlp/format/lattice"
	"segyap/nlp/types"
)

func elem(form, lemma string, tags ...string) types.SegElement {
	return types.SegElement{Form: form, Lemma: lemma, CandPos: tags, CandProb: make([]float64, len(tags))}
}

func decoded() *types.DependencyInstance {
	inst := types.NewInstance(
		types.WordInstance{Form: "wbyt", CandSeg: []types.SegInstance{
			{Element: []types.SegElement{elem("wbyt", "wbyt", "NNP")}},
			{Element: []types.SegElement{elem("w", "w", "CC"), elem("byt", "bit", "NN", "VB")}},
		}},
		types.WordInstance{Form: "gdwl", CandSeg: []types.SegInstance{{Element: []types.SegElement{elem("gdwl", "gdwl", "JJ")}}}},
	)
	inst.UpdateSeg(1, 1)
	inst.ConstructConversionList()
	inst.Word[1].UpdatePos(1, 1)
	return inst
}

func TestEdges(t *testing.T) {
	edges := Edges(decoded())
	require.Len(t, edges, 3)
	assert.Equal(t, "0	1	w	_	CC	CC	_	1", edges[0].String())
	assert.Equal(t, "1	2	byt	bit	VB	VB	_	1", edges[1].String())
	assert.Equal(t, "2	3	gdwl	_	JJ	JJ	_	2", edges[2].String())
}

func TestWriteReadsBackAsLattice(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, []*types.DependencyInstance{decoded(), decoded()}))

	lattices, err := lattice.Read(&buf)
	require.NoError(t, err)
	require.Len(t, lattices, 2)
	sents, err := lattice.Sentences(lattices, lattice.NewAlphabets(), nil)
	require.NoError(t, err)
	inst := sents[0].Pred
	require.Equal(t, 3, inst.NumWord())
	require.Len(t, inst.Word[1].CandSeg, 1)
	assert.Equal(t, "w+byt", inst.Word[1].Seg().Signature())
	assert.Equal(t, "VB", inst.Element(types.HeadIndex{Word: 1, Seg: 1}).Pos())
}
