package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/NatLabRockies/r2x-reeds/internal/sysmod"
)

func TestPassTable(t *testing.T) {
	tbl := passTable(sysmod.Catalogue())
	assert.Equal(t, len(sysmod.Names()), tbl.Len())

	out := tbl.String()
	for _, name := range sysmod.Names() {
		assert.Contains(t, out, name)
	}
}

func TestJoinOrDash(t *testing.T) {
	assert.Equal(t, "-", joinOrDash(nil))
	assert.Equal(t, "a, b", joinOrDash([]string{"a", "b"}))
}

func TestPassesCmd(t *testing.T) {
	assert.NoError(t, execute(t, "passes"))
}
