package genome

import "strings"

// Codons accepted at the start of a coding sequence. Bacterial genes use
// alternative initiators besides ATG.
var startCodons = map[string]bool{
	"atg": true, "ctg": true, "gtg": true, "ttg": true,
}

var stopCodons = map[string]bool{
	"taa": true, "tag": true, "tga": true,
}

// AminoAcids is the alphabet used for amino-acid composition vectors.
const AminoAcids = "ACDEFGHIKLMNPQRSTVWY"

// IsStartCodon returns true if codon is ATG, CTG, GTG or TTG (any case).
func IsStartCodon(codon string) bool {
	return startCodons[strings.ToLower(codon)]
}

// IsStopCodon returns true if codon is TAA, TAG or TGA (any case).
func IsStopCodon(codon string) bool {
	return stopCodons[strings.ToLower(codon)]
}

// HasValidFrame reports whether seq is a whole number of codons.
func HasValidFrame(seq string) bool {
	return len(seq)%3 == 0
}

// HasValidStartCodon reports whether seq begins with a recognised start codon.
func HasValidStartCodon(seq string) bool {
	if len(seq) < 3 {
		return false
	}
	return IsStartCodon(seq[:3])
}

// HasValidStopCodon reports whether seq ends with a stop codon.
func HasValidStopCodon(seq string) bool {
	if len(seq) < 3 {
		return false
	}
	return IsStopCodon(seq[len(seq)-3:])
}

// HasPrematureStop reports whether any in-frame codon before the last one is
// a stop codon. A trailing partial codon is ignored.
func HasPrematureStop(seq string) bool {
	last := len(seq) - 3
	for i := 0; i+3 <= len(seq); i += 3 {
		if i >= last {
			break
		}
		if IsStopCodon(seq[i : i+3]) {
			return true
		}
	}
	return false
}

// AALengthConsistent reports whether seq encodes exactly aa plus a stop codon.
func AALengthConsistent(seq, aa string) bool {
	return len(seq) == 3*(len(aa)+1)
}

// AAComposition counts residues of aa over the AminoAcids alphabet, skipping
// the initiator residue. Residues outside the alphabet are not counted.
func AAComposition(aa string) [20]int {
	var counts [20]int
	if len(aa) < 2 {
		return counts
	}
	for _, r := range strings.ToUpper(aa[1:]) {
		if i := strings.IndexRune(AminoAcids, r); i >= 0 {
			counts[i]++
		}
	}
	return counts
}

// ReverseComplement returns the reverse complement of a DNA sequence.
func ReverseComplement(seq string) string {
	n := len(seq)
	result := make([]byte, n)
	for i := 0; i < n; i++ {
		result[i] = Complement(seq[n-1-i])
	}
	return string(result)
}

// Complement returns the complement of a single base.
func Complement(base byte) byte {
	switch base {
	case 'A':
		return 'T'
	case 'T':
		return 'A'
	case 'G':
		return 'C'
	case 'C':
		return 'G'
	case 'a':
		return 't'
	case 't':
		return 'a'
	case 'g':
		return 'c'
	case 'c':
		return 'g'
	default:
		return base
	}
}
