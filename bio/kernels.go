package bio

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// GC returns the fraction of G and C bases in seq, or 0 for an empty sequence.
func GC(seq string) float64 {
	if len(seq) == 0 {
		return 0
	}
	n := 0
	for i := 0; i < len(seq); i++ {
		switch seq[i] {
		case 'G', 'C', 'g', 'c':
			n++
		}
	}
	return float64(n) / float64(len(seq))
}

var (
	dnaComplement = strings.NewReplacer(
		"A", "T", "T", "A", "C", "G", "G", "C",
		"a", "t", "t", "a", "c", "g", "g", "c",
	)
	rnaComplement = strings.NewReplacer(
		"A", "U", "U", "A", "C", "G", "G", "C",
		"a", "u", "u", "a", "c", "g", "g", "c",
	)
)

// ReverseComplement reverses seq and complements A/T (A/U for RNA) and C/G,
// keeping case. Other bytes are kept as they are.
func ReverseComplement(seq string, t SeqType) (string, error) {
	var r *strings.Replacer
	switch t {
	case DNA:
		r = dnaComplement
	case RNA:
		r = rnaComplement
	default:
		return "", fmt.Errorf("reverse complement is not defined for %s sequences", t)
	}
	return r.Replace(Reverse(seq)), nil
}

// Reverse reverses s byte-wise.
func Reverse(s string) string {
	b := []byte(s)
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
	return string(b)
}

// Homopolymer collapses every run of identical characters to one character.
func Homopolymer(seq string) string {
	var b strings.Builder
	b.Grow(len(seq))
	var prev rune = -1
	for _, c := range seq {
		if c != prev {
			b.WriteRune(c)
		}
		prev = c
	}
	return b.String()
}

// Wrap inserts a newline every width bytes. A width of zero or less, or a
// sequence not longer than width, is returned unchanged.
func Wrap(seq string, width int) string {
	if width <= 0 || len(seq) <= width {
		return seq
	}
	var b strings.Builder
	b.Grow(len(seq) + len(seq)/width)
	for i := 0; i < len(seq); i += width {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(seq[i:min(i+width, len(seq))])
	}
	return b.String()
}

// QualityTable maps quality characters to error probabilities for one encoding.
type QualityTable struct {
	offset int
	prob   [128]float64
}

// NewQualityTable builds the probability table for q.
func NewQualityTable(q QualityType) (*QualityTable, error) {
	if q == QualityAuto {
		return nil, errors.New("unable to detect quality type, set it explicitly")
	}
	t := &QualityTable{offset: q.Offset()}
	for c := t.offset; c < len(t.prob); c++ {
		t.prob[c] = math.Pow(10, float64(c-t.offset)/-10)
	}
	return t, nil
}

// Mean returns the mean phred score of qual, computed through error
// probabilities. It is 0 for an empty string or one with bytes outside the
// encoding range.
func (t *QualityTable) Mean(qual string) float64 {
	if len(qual) == 0 {
		return 0
	}
	sum := 0.0
	for i := 0; i < len(qual); i++ {
		c := int(qual[i])
		if c < t.offset || c >= len(t.prob) {
			return 0
		}
		sum += t.prob[c]
	}
	if sum == 0 {
		return 0
	}
	return -10 * math.Log10(sum/float64(len(qual)))
}

// DetectSeqType guesses the alphabet from sample sequences. N/n is ignored.
// More than four distinct bytes means protein; T without U is DNA and U
// without T is RNA.
func DetectSeqType(samples []string) (SeqType, error) {
	seen := make(map[byte]struct{})
	for _, s := range samples {
		for i := 0; i < len(s); i++ {
			if s[i] == 'N' || s[i] == 'n' {
				continue
			}
			seen[upper(s[i])] = struct{}{}
		}
	}
	if len(seen) > 4 {
		return Protein, nil
	}
	if len(seen) < 4 {
		return SeqAuto, fmt.Errorf("cannot detect sequence type: only %d distinct bases in the first %d records", len(seen), len(samples))
	}
	_, t := seen['T']
	_, u := seen['U']
	switch {
	case t && u:
		return SeqAuto, errors.New("cannot detect sequence type: both T and U present")
	case t:
		return DNA, nil
	case u:
		return RNA, nil
	}
	return SeqAuto, errors.New("cannot detect sequence type: neither T nor U present")
}

// DetectQualityType guesses the encoding from sample quality strings. Any
// byte below ';' implies phred33, any byte above 'J' implies phred64.
func DetectQualityType(samples []string) QualityType {
	high := false
	for _, s := range samples {
		for i := 0; i < len(s); i++ {
			switch {
			case s[i] < 59:
				return Phred33
			case s[i] > 74:
				high = true
			}
		}
	}
	if high {
		return Phred64
	}
	return Phred33
}

func upper(c byte) byte {
	if c >= 'a' && c <= 'z' {
		return c - 'a' + 'A'
	}
	return c
}
