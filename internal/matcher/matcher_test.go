// file: internal/matcher/matcher_test.go
// version: 2.0.0
// guid: 8c9d0e1f-2a3b-4c5d-6e7f-8a9b0c1d2e3f

package matcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var titles = []string{
	"Sholay",
	"Deewaar",
	"Dilwale Dulhania Le Jayenge",
	"Lagaan",
	"3 Idiots",
	"Dangal",
	"Andaz Apna Apna",
	"Zindagi Na Milegi Dobara",
	"Don",
	"Gully Boy",
}

func TestNewThreshold(t *testing.T) {
	assert.Equal(t, DefaultThreshold, New(0).Threshold())
	assert.Equal(t, DefaultThreshold, New(-5).Threshold())
	assert.Equal(t, DefaultThreshold, New(101).Threshold())
	assert.Equal(t, 85, New(85).Threshold())
}

func TestResolveExactSelfMatch(t *testing.T) {
	m := New(DefaultThreshold)
	for _, title := range titles {
		got, err := m.Resolve(title, titles)
		require.NoError(t, err, title)
		assert.Equal(t, title, got.Title)
		assert.Equal(t, 100, got.Score)
	}
}

func TestResolveLowercase(t *testing.T) {
	got, err := New(DefaultThreshold).Resolve("sholay", titles)
	require.NoError(t, err)
	assert.Equal(t, "Sholay", got.Title)
	assert.Equal(t, 0, got.Index)
	assert.Equal(t, 100, got.Score)
}

func TestResolveTypo(t *testing.T) {
	got, err := New(DefaultThreshold).Resolve("shole", titles)
	require.NoError(t, err)
	assert.Equal(t, "Sholay", got.Title)
	assert.GreaterOrEqual(t, got.Score, 70)
}

func TestResolveWordOrderAndPartial(t *testing.T) {
	m := New(DefaultThreshold)

	got, err := m.Resolve("apna apna andaz", titles)
	require.NoError(t, err)
	assert.Equal(t, "Andaz Apna Apna", got.Title)

	got, err = m.Resolve("zindagi na milegi", titles)
	require.NoError(t, err)
	assert.Equal(t, "Zindagi Na Milegi Dobara", got.Title)
}

func TestResolveNotFound(t *testing.T) {
	m := New(DefaultThreshold)

	got, err := m.Resolve("xyznonexistentfilm", titles)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Less(t, got.Score, 70)

	_, err = m.Resolve("   ", titles)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = m.Resolve("Sholay", nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResolveThresholdIsConfigurable(t *testing.T) {
	got, err := New(90).Resolve("shole", titles)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "Sholay", got.Title, "best candidate is still reported")
}

func TestResolvePrefersExactCase(t *testing.T) {
	candidates := []string{"Don", "DON"}
	m := New(DefaultThreshold)

	got, err := m.Resolve("DON", candidates)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Index)

	got, err = m.Resolve("don", candidates)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Index)
}

func TestSuggest(t *testing.T) {
	m := New(DefaultThreshold)

	got := m.Suggest("shol", titles, 3)
	require.NotEmpty(t, got)
	assert.LessOrEqual(t, len(got), 3)
	assert.Equal(t, "Sholay", got[0])

	assert.Nil(t, m.Suggest("", titles, 3))
	assert.Nil(t, m.Suggest("shol", titles, 0))

	seen := map[string]bool{}
	for _, s := range m.Suggest("d", titles, 10) {
		assert.False(t, seen[s], "duplicate suggestion %q", s)
		seen[s] = true
	}
}
