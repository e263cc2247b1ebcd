// Package genome provides the reference DNA sequence and strand arithmetic
// shared by the annotation readers.
package genome

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Sense values as encoded by the brin_DNA annotation column.
const (
	Forward int8 = 1
	Reverse int8 = -1
)

// SenseFromColumn maps a brin_DNA value to a strand: 1 is forward,
// anything else is reverse.
func SenseFromColumn(v int64) int8 {
	if v == 1 {
		return Forward
	}
	return Reverse
}

// Sequence is a single-chromosome DNA sequence in lowercase bases.
type Sequence struct {
	bases string
}

// NewSequence validates bases and wraps them in a Sequence.
// Input is lowercased; any character other than a, c, g or t is an error.
func NewSequence(bases string) (*Sequence, error) {
	bases = strings.ToLower(bases)
	for i := 0; i < len(bases); i++ {
		switch bases[i] {
		case 'a', 'c', 'g', 't':
		default:
			return nil, fmt.Errorf("invalid base %q at position %d", bases[i], i+1)
		}
	}
	return &Sequence{bases: bases}, nil
}

// Parse reads a DNA sequence file: the first line holds the whole sequence.
func Parse(r io.Reader) (*Sequence, error) {
	reader := bufio.NewReader(r)
	line, err := reader.ReadString('\n')
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("read dna sequence: %w", err)
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return nil, fmt.Errorf("read dna sequence: empty sequence")
	}
	return NewSequence(line)
}

// Len returns the sequence length in bases.
func (s *Sequence) Len() int64 {
	return int64(len(s.bases))
}

// Bases returns the raw sequence.
func (s *Sequence) Bases() string {
	return s.bases
}

// Span returns the bases of the 1-based inclusive span [start, end] read on
// the given strand. Coordinates are forward-normalized, so for a reverse
// strand span they number the reverse complement of the sequence.
func (s *Sequence) Span(start, end int64, sense int8) (string, error) {
	n := s.Len()
	if start < 1 || end > n || start > end {
		return "", fmt.Errorf("span [%d:%d] outside sequence of length %d", start, end, n)
	}
	if sense == Forward {
		return s.bases[start-1 : end], nil
	}
	fs, fe := Invert(start, end, n)
	return ReverseComplement(s.bases[fs-1 : fe]), nil
}

// Invert maps a span on one strand to the numbering of the other strand of a
// sequence of the given length. Applying it twice returns the input.
func Invert(start, end, length int64) (int64, int64) {
	return length - end + 1, length - start + 1
}

// Composition counts a, c, g and t (in that order) in seq, case-insensitive.
func Composition(seq string) [4]int {
	var counts [4]int
	for i := 0; i < len(seq); i++ {
		switch seq[i] {
		case 'a', 'A':
			counts[0]++
		case 'c', 'C':
			counts[1]++
		case 'g', 'G':
			counts[2]++
		case 't', 'T':
			counts[3]++
		}
	}
	return counts
}
