package tenant

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogLookup(t *testing.T) {
	catalog := DefaultCatalog()

	pc, sc, err := catalog.Lookup("wyscout", "all")
	require.NoError(t, err)
	assert.Equal(t, 300, pc.MinimumMinutes)
	assert.Equal(t, 99, sc.DBID)
	assert.Equal(t, "Chelsea FC", sc.DefaultTeam)
	assert.ElementsMatch(t, []string{"mens", "womens", "youth"}, sc.Categories)

	_, sc, err = catalog.Lookup("wyscout", "wyscout-womens")
	require.NoError(t, err)
	assert.Equal(t, 32, sc.DBID)

	_, sc, err = catalog.Lookup("champion", "all")
	require.NoError(t, err)
	assert.Equal(t, 3, sc.DBID)
}

func TestCatalogLookupUnknownProvider(t *testing.T) {
	_, _, err := DefaultCatalog().Lookup("statsbomb", "all")
	require.ErrorIs(t, err, ErrConfiguration)
}

func TestCatalogLookupUnknownScope(t *testing.T) {
	_, _, err := DefaultCatalog().Lookup("wyscout", "everything")
	require.ErrorIs(t, err, ErrConfiguration)
}

func TestCatalogLookupUnsupportedCombination(t *testing.T) {
	// The scope exists, champion just does not offer it.
	_, _, err := DefaultCatalog().Lookup("champion", "wyscout-youth")
	require.ErrorIs(t, err, ErrValidation)
}

func TestCatalogProviders(t *testing.T) {
	assert.Equal(t, []string{"champion", "wyscout"}, DefaultCatalog().Providers())
}
