package splitter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jetgrind/internal/marker"
)

func TestSplit_ShortInputIsTitle(t *testing.T) {
	res := Split("  buy milk  ")
	assert.Equal(t, "buy milk", res.Title)
	assert.Empty(t, res.Description)
	assert.Empty(t, res.Links)
}

func TestSplit_ExactlyLimitWithoutSpaces(t *testing.T) {
	in := strings.Repeat("a", CharacterLimit)
	res := Split(in)
	assert.Equal(t, in, res.Title)
	assert.Empty(t, res.Description)
}

func TestSplit_BreaksAtLastSpace(t *testing.T) {
	in := strings.Repeat("a", 55) + " " + strings.Repeat("b", 14)
	require.Len(t, in, 70)

	res := Split(in)
	assert.Equal(t, strings.Repeat("a", 55), res.Title)
	assert.Equal(t, strings.Repeat("b", 14), res.Description)
}

func TestSplit_HardSplitWithoutSpaces(t *testing.T) {
	in := strings.Repeat("x", 70)
	res := Split(in)
	assert.Equal(t, strings.Repeat("x", 60), res.Title)
	assert.Equal(t, strings.Repeat("x", 10), res.Description)
}

func TestSplit_CountsCharactersNotBytes(t *testing.T) {
	in := strings.Repeat("é", 60)
	res := Split(in)
	assert.Equal(t, in, res.Title)
	assert.Empty(t, res.Description)
}

func TestSplit_SpaceAtLimitKeepsFullTitle(t *testing.T) {
	in := strings.Repeat("a", 60) + " " + strings.Repeat("b", 3)
	res := Split(in)
	assert.Equal(t, strings.Repeat("a", 60), res.Title)
	assert.Equal(t, "bbb", res.Description)
}

func TestSplit_SingleURL(t *testing.T) {
	res := Split("  https://example.com/page  ")
	assert.Equal(t, "example.com", res.Title)
	assert.Empty(t, res.Description)
	require.Len(t, res.Links, 1)
	assert.Equal(t, "https://example.com/page", res.Links[0].URL)
	assert.Equal(t, "example.com", res.Links[0].DisplayTitle)
	assert.False(t, marker.ContainsMarkers(res.Title))
}

func TestSplit_TwoURLsKeepBoth(t *testing.T) {
	res := Split("https://a.com/docs https://b.com/page")
	require.Len(t, res.Links, 2)
	assert.Equal(t, "https://a.com/docs", res.Links[0].URL)
	assert.Equal(t, "https://b.com/page", res.Links[1].URL)
	assert.Equal(t, marker.Token(res.Links[0].ID), res.Title)
	assert.Equal(t, marker.Token(res.Links[1].ID), res.Description)
}

func TestSplit_URLsBecomeMarkers(t *testing.T) {
	res := Split("Check out https://openai.com for info")
	require.Len(t, res.Links, 1)
	assert.Equal(t, "https://openai.com", res.Links[0].URL)
	assert.Equal(t, "openai.com", res.Links[0].DisplayTitle)

	assert.LessOrEqual(t, len([]rune(res.Title)), CharacterLimit)
	assert.Len(t, marker.FindTokens(res.Title), 1)
	assert.Equal(t, "Check out "+marker.Token(res.Links[0].ID)+" for", res.Title)
	assert.Equal(t, "info", res.Description)
}

func TestSplit_LimitAppliesToMarkerText(t *testing.T) {
	long := "https://example.com/" + strings.Repeat("p", 80)
	res := Split("read " + long)
	require.Len(t, res.Links, 1)
	assert.Equal(t, "read "+marker.Token(res.Links[0].ID), res.Title)
	assert.Empty(t, res.Description)
}

func TestSplit_DedupsRepeatedURL(t *testing.T) {
	res := Split("a https://x.com b https://x.com c https://x.com")
	require.Len(t, res.Links, 1)

	all := res.Title + " " + res.Description
	occ := marker.FindTokens(all)
	require.Len(t, occ, 3)
	for _, o := range occ {
		assert.Equal(t, res.Links[0].ID, o.ID)
	}
}

func TestSplit_HardSplitNeverCutsToken(t *testing.T) {
	in := strings.Repeat("x", 20) + "https://example.com/" + strings.Repeat("y", 10)
	res := Split(in)
	require.Len(t, res.Links, 1)
	tok := marker.Token(res.Links[0].ID)

	assert.Equal(t, strings.Repeat("x", 20), res.Title)
	assert.Equal(t, tok, res.Description)
}
