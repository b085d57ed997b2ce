package bio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGC(t *testing.T) {
	tests := []struct {
		seq  string
		want float64
	}{
		{"", 0},
		{"ATAT", 0},
		{"GCGC", 1},
		{"ACGT", 0.5},
		{"acgtNN", 2.0 / 6},
	}
	for _, tt := range tests {
		t.Run(tt.seq, func(t *testing.T) {
			assert.InDelta(t, tt.want, GC(tt.seq), 1e-9)
		})
	}
}

func TestReverseComplement(t *testing.T) {
	tests := []struct {
		name    string
		seq     string
		typ     SeqType
		want    string
		wantErr bool
	}{
		{name: "dna", seq: "AACGTT", typ: DNA, want: "AACGTT"},
		{name: "dna keeps case", seq: "ACCtg", typ: DNA, want: "caGGT"},
		{name: "dna keeps N", seq: "ANG", typ: DNA, want: "CNT"},
		{name: "rna", seq: "AUGC", typ: RNA, want: "GCAU"},
		{name: "protein", seq: "MKV", typ: Protein, wantErr: true},
		{name: "auto", seq: "ACGT", typ: SeqAuto, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ReverseComplement(tt.seq, tt.typ)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReverseComplementTwiceIsIdentity(t *testing.T) {
	for _, seq := range []string{"", "A", "ACGTTGCA", "acgtNNacgt", "GATTACA"} {
		once, err := ReverseComplement(seq, DNA)
		require.NoError(t, err)
		twice, err := ReverseComplement(once, DNA)
		require.NoError(t, err)
		assert.Equal(t, seq, twice)
	}
}

func TestHomopolymer(t *testing.T) {
	tests := []struct{ seq, want string }{
		{"", ""},
		{"AAAA", "A"},
		{"AACCCGTTA", "ACGTA"},
		{"AaA", "AaA"},
	}
	for _, tt := range tests {
		t.Run(tt.seq, func(t *testing.T) {
			assert.Equal(t, tt.want, Homopolymer(tt.seq))
		})
	}
}

func TestWrap(t *testing.T) {
	tests := []struct {
		seq   string
		width int
		want  string
	}{
		{"ACGTACGT", 0, "ACGTACGT"},
		{"ACGTACGT", -1, "ACGTACGT"},
		{"ACGT", 4, "ACGT"},
		{"ACGTACGT", 3, "ACG\nTAC\nGT"},
		{"ACGTACGT", 4, "ACGT\nACGT"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Wrap(tt.seq, tt.width), "Wrap(%q, %d)", tt.seq, tt.width)
	}
}

func TestQualityTable(t *testing.T) {
	_, err := NewQualityTable(QualityAuto)
	require.Error(t, err)

	p33, err := NewQualityTable(Phred33)
	require.NoError(t, err)
	assert.InDelta(t, 40, p33.Mean("IIII"), 1e-9)
	assert.InDelta(t, 0, p33.Mean("!!!!"), 1e-9)
	assert.Equal(t, 0.0, p33.Mean(""))
	assert.Equal(t, 0.0, p33.Mean(" "), "bytes below the offset")

	p64, err := NewQualityTable(Phred64)
	require.NoError(t, err)
	assert.InDelta(t, 40, p64.Mean("hhhh"), 1e-9)

	// Mean works on probabilities, so one bad base dominates.
	assert.Less(t, p33.Mean("II#"), 10.0)
}

func TestDetectSeqType(t *testing.T) {
	tests := []struct {
		name    string
		samples []string
		want    SeqType
		wantErr bool
	}{
		{name: "dna", samples: []string{"ACGT", "NNAC"}, want: DNA},
		{name: "lower case dna", samples: []string{"acgt"}, want: DNA},
		{name: "rna", samples: []string{"ACGU"}, want: RNA},
		{name: "protein", samples: []string{"MKVLAG"}, want: Protein},
		{name: "too few bases", samples: []string{"ACAC"}, wantErr: true},
		{name: "both T and U", samples: []string{"ACTU"}, wantErr: true},
		{name: "neither T nor U", samples: []string{"ACGX"}, wantErr: true},
		{name: "empty", samples: nil, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DetectSeqType(tt.samples)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDetectQualityType(t *testing.T) {
	tests := []struct {
		name    string
		samples []string
		want    QualityType
	}{
		{"low byte", []string{"IIII", "##"}, Phred33},
		{"high byte", []string{"hhhh"}, Phred64},
		{"low wins", []string{"hhhh", "!"}, Phred33},
		{"ambiguous", []string{"@@@"}, Phred33},
		{"empty", nil, Phred33},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectQualityType(tt.samples))
		})
	}
}

func TestParseTypes(t *testing.T) {
	st, err := ParseSeqType("DNA")
	require.NoError(t, err)
	assert.Equal(t, DNA, st)
	_, err = ParseSeqType("xna")
	assert.Error(t, err)

	qt, err := ParseQualityType("64")
	require.NoError(t, err)
	assert.Equal(t, Phred64, qt)
	assert.Equal(t, 64, qt.Offset())
	assert.Equal(t, "phred64", qt.String())
	_, err = ParseQualityType("65")
	assert.Error(t, err)
}
