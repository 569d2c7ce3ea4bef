package model

import (
	"fmt"
	"strings"
)

// Genome is a fixed-length bitstring, one byte per bit holding 0 or 1.
// Operators never modify a genome in place; they return a new one.
type Genome []byte

func NewGenome(length int) Genome {
	return make(Genome, length)
}

func (g Genome) Len() int {
	return len(g)
}

func (g Genome) Bit(i int) bool {
	return g[i] != 0
}

func (g Genome) Clone() Genome {
	return append(Genome(nil), g...)
}

// Ones counts the set bits.
func (g Genome) Ones() int {
	n := 0
	for _, b := range g {
		if b != 0 {
			n++
		}
	}
	return n
}

func (g Genome) Equal(other Genome) bool {
	if len(g) != len(other) {
		return false
	}
	for i := range g {
		if g[i] != other[i] {
			return false
		}
	}
	return true
}

// Key returns a string suitable for map lookups.
func (g Genome) Key() string {
	return string(g)
}

func (g Genome) String() string {
	var b strings.Builder
	b.Grow(len(g))
	for _, bit := range g {
		if bit != 0 {
			b.WriteByte('1')
		} else {
			b.WriteByte('0')
		}
	}
	return b.String()
}

// ParseGenome reads a string of '0' and '1' characters.
func ParseGenome(s string) (Genome, error) {
	g := make(Genome, len(s))
	for i, c := range s {
		switch c {
		case '0':
		case '1':
			g[i] = 1
		default:
			return nil, fmt.Errorf("invalid genome character %q at %d", c, i)
		}
	}
	return g, nil
}
