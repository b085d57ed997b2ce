// Package bio holds sequence kinds and the per-record kernels filterx applies
// to biological sequences and quality strings.
package bio

import (
	"fmt"
	"strings"
)

// SeqType is the alphabet of a FASTA file.
type SeqType int

const (
	SeqAuto SeqType = iota
	DNA
	RNA
	Protein
)

func (t SeqType) String() string {
	switch t {
	case DNA:
		return "dna"
	case RNA:
		return "rna"
	case Protein:
		return "protein"
	default:
		return "auto"
	}
}

// ParseSeqType accepts dna, rna, protein and auto, case-insensitively.
func ParseSeqType(s string) (SeqType, error) {
	switch strings.ToLower(s) {
	case "", "auto":
		return SeqAuto, nil
	case "dna":
		return DNA, nil
	case "rna":
		return RNA, nil
	case "protein":
		return Protein, nil
	}
	return SeqAuto, fmt.Errorf("unknown sequence type %q (want dna, rna, protein or auto)", s)
}

// QualityType is the ASCII offset of a FASTQ quality string.
type QualityType int

const (
	QualityAuto QualityType = iota
	Phred33
	Phred64
)

func (q QualityType) String() string {
	switch q {
	case Phred33:
		return "phred33"
	case Phred64:
		return "phred64"
	default:
		return "auto"
	}
}

// Offset returns the ASCII value of quality score zero.
func (q QualityType) Offset() int {
	if q == Phred64 {
		return 64
	}
	return 33
}

// ParseQualityType accepts 33, 64, phred33, phred64 and auto.
func ParseQualityType(s string) (QualityType, error) {
	switch strings.ToLower(s) {
	case "", "auto":
		return QualityAuto, nil
	case "33", "phred33":
		return Phred33, nil
	case "64", "phred64":
		return Phred64, nil
	}
	return QualityAuto, fmt.Errorf("unknown quality type %q (want 33, 64 or auto)", s)
}
