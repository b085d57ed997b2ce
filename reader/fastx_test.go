package reader

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vegasq/filterx/bio"
)

const fastaInput = ">r1 first read\nACGT\nAC\r\n\n>r2\nTTGCA\n>r3\ttab comment\nGGCC\n"

func TestFastaReader(t *testing.T) {
	fr, err := NewFastaReader(strings.NewReader(fastaInput), FastaOptions{})
	require.NoError(t, err)
	assert.Equal(t, bio.DNA, fr.SeqType())
	assert.Equal(t, []string{"name", "comm", "seq"}, fr.Columns())

	f, err := fr.Pull(2)
	require.NoError(t, err)
	assert.Equal(t, []any{"r1", "r2"}, values(t, f, "name"))
	assert.Equal(t, []any{"first read", nil}, values(t, f, "comm"))
	assert.Equal(t, []any{"ACGTAC", "TTGCA"}, values(t, f, "seq"))

	f, err = fr.Pull(2)
	require.NoError(t, err)
	assert.Equal(t, []any{"r3"}, values(t, f, "name"))
	assert.Equal(t, []any{"tab comment"}, values(t, f, "comm"))

	f, err = fr.Pull(2)
	require.NoError(t, err)
	assert.Equal(t, 0, f.Height())
	assert.Equal(t, 3, fr.Records())
}

func TestFastaReaderOptions(t *testing.T) {
	fr, err := NewFastaReader(strings.NewReader(fastaInput), FastaOptions{NoComment: true, Limit: 2, SeqType: bio.RNA})
	require.NoError(t, err)
	assert.Equal(t, bio.RNA, fr.SeqType())
	assert.Equal(t, []string{"name", "seq"}, fr.Columns())

	f, err := fr.Pull(10)
	require.NoError(t, err)
	assert.Equal(t, 2, f.Height())
	_, err = f.Column("comm")
	assert.Error(t, err)
}

func TestFastaSeqTypeDetection(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    bio.SeqType
		wantErr bool
	}{
		{"dna", ">a\nACGTN\n", bio.DNA, false},
		{"rna", ">a\nACGU\n", bio.RNA, false},
		{"protein", ">a\nMKVLAAGIT\n", bio.Protein, false},
		{"too few bases", ">a\nAAAA\n", bio.SeqAuto, true},
		{"empty input", "", bio.DNA, false},
		{"only first records sampled", ">a\nACGT\n>b\nACGT\n>c\nACGT\n>d\nMKVLE\n", bio.DNA, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fr, err := NewFastaReader(strings.NewReader(tt.input), FastaOptions{})
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, fr.SeqType())
		})
	}
}

func TestFastaFormatErrors(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantHint bool
	}{
		{"fastq input", "@r1\nACGT\n+\nIIII\n", true},
		{"garbage", "ACGT\n", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewFastaReader(strings.NewReader(tt.input), FastaOptions{})
			var fe *FormatError
			require.True(t, errors.As(err, &fe), "got %v", err)
			assert.Equal(t, 1, fe.Line)
			assert.Equal(t, tt.wantHint, fe.Hint != "")
		})
	}
}

const fastqInput = "@r1 c1\nACGT\n+\nIIII\n@r2\nAC\nGT\n+r2\nII\nI#\n@r3\nA\n+\n5\n"

func TestFastqReader(t *testing.T) {
	fr, err := NewFastqReader(strings.NewReader(fastqInput), FastqOptions{})
	require.NoError(t, err)
	assert.Equal(t, bio.Phred33, fr.QualityType())
	assert.Equal(t, []string{"name", "comm", "seq", "qual"}, fr.Columns())

	f, err := fr.Pull(10)
	require.NoError(t, err)
	assert.Equal(t, []any{"r1", "r2", "r3"}, values(t, f, "name"))
	assert.Equal(t, []any{"c1", nil, nil}, values(t, f, "comm"))
	assert.Equal(t, []any{"ACGT", "ACGT", "A"}, values(t, f, "seq"))
	assert.Equal(t, []any{"IIII", "III#", "5"}, values(t, f, "qual"))
}

func TestFastqReaderOptions(t *testing.T) {
	fr, err := NewFastqReader(strings.NewReader(fastqInput), FastqOptions{NoComment: true, NoQuality: true, QualityType: bio.Phred64})
	require.NoError(t, err)
	assert.Equal(t, bio.Phred64, fr.QualityType())
	assert.Equal(t, []string{"name", "seq"}, fr.Columns())
}

func TestFastqQualityDetection(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bio.QualityType
	}{
		{"low byte", "@a\nAC\n+\n#I\n", bio.Phred33},
		{"high byte", "@a\nAC\n+\nhh\n", bio.Phred64},
		{"ambiguous", "@a\nAC\n+\nII\n", bio.Phred33},
		{"empty", "", bio.Phred33},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fr, err := NewFastqReader(strings.NewReader(tt.input), FastqOptions{})
			require.NoError(t, err)
			assert.Equal(t, tt.want, fr.QualityType())
		})
	}
}

func TestFastqFormatErrors(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantHint bool
	}{
		{"fasta input", ">r1\nACGT\n", true},
		{"truncated", "@r1\nACGT\n", false},
		{"quality too long", "@r1\nAC\n+\nIII\n", false},
		{"missing quality", "@r1\nACGT\n+\nII", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewFastqReader(strings.NewReader(tt.input), FastqOptions{})
			var fe *FormatError
			require.True(t, errors.As(err, &fe), "got %v", err)
			assert.Equal(t, "fastq", fe.Format)
			assert.Equal(t, tt.wantHint, fe.Hint != "")
		})
	}
}

func TestFastxOptionsValidate(t *testing.T) {
	assert.Error(t, FastaOptions{Limit: -1}.Validate())
	assert.Error(t, FastaOptions{DetectSize: -1}.Validate())
	assert.Error(t, FastqOptions{Limit: -1}.Validate())
	assert.NoError(t, FastqOptions{}.Validate())
}
