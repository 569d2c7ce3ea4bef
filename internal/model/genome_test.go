package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenomeStringRoundTrip(t *testing.T) {
	g, err := ParseGenome("10110")
	require.NoError(t, err)
	assert.Equal(t, Genome{1, 0, 1, 1, 0}, g)
	assert.Equal(t, "10110", g.String())
	assert.Equal(t, 3, g.Ones())
	assert.True(t, g.Bit(0))
	assert.False(t, g.Bit(1))

	_, err = ParseGenome("10x")
	assert.Error(t, err)
}

func TestGenomeCloneIsIndependent(t *testing.T) {
	g := Genome{0, 1}
	c := g.Clone()
	c[0] = 1
	assert.Equal(t, Genome{0, 1}, g)
	assert.True(t, g.Equal(Genome{0, 1}))
	assert.False(t, g.Equal(c))
	assert.False(t, g.Equal(Genome{0}))
	assert.NotEqual(t, g.Key(), c.Key())
}
