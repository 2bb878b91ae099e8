package channels

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voyagen/pimplecast/internal/models"
)

func TestDefaultKnownChannels(t *testing.T) {
	r := Default()
	require.Equal(t, 17, r.Len())

	id, ok := r.Lookup("МАТЧ! HD")
	assert.True(t, ok)
	assert.Equal(t, 4, id)
	assert.Equal(t, 4849, r.ID("Setanta Sports 2 HD"))
}

func TestUnknownChannel(t *testing.T) {
	r := Default()
	_, ok := r.Lookup("Some Channel HD")
	assert.False(t, ok)
	assert.Equal(t, models.UnknownChannelID, r.ID("Some Channel HD"))
}

func TestWithOverridesWithoutMutating(t *testing.T) {
	base := Default()
	extended := base.With(map[string]int{"Some Channel HD": 77, "МАТЧ! HD": 5})

	assert.Equal(t, 77, extended.ID("Some Channel HD"))
	assert.Equal(t, 5, extended.ID("МАТЧ! HD"))
	assert.Equal(t, 4, base.ID("МАТЧ! HD"))
	assert.Equal(t, models.UnknownChannelID, base.ID("Some Channel HD"))
}

func TestNewCopiesInput(t *testing.T) {
	src := map[string]int{"A": 1}
	r := New(src)
	src["A"] = 2
	assert.Equal(t, 1, r.ID("A"))
}
