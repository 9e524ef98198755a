package marker

import (
	"net/url"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jetgrind/internal/domain"
)

func mustLink(t *testing.T, raw string) domain.Link {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return domain.NewLink(u)
}

func TestToken_Format(t *testing.T) {
	id := uuid.MustParse("0f8fad5b-d9cb-469f-a165-70867728950e")
	tok := Token(id)
	assert.Equal(t, "{{link:0F8FAD5B-D9CB-469F-A165-70867728950E}}", tok)
	assert.Len(t, tok, TokenLen)

	got, ok := ParseToken(tok)
	require.True(t, ok)
	assert.Equal(t, id, got)

	_, ok = ParseToken("{{link:0f8fad5b-d9cb-469f-a165-70867728950e}} ")
	assert.False(t, ok, "trailing text is not a token")
	_, ok = ParseToken("{{link: 0f8fad5b-d9cb-469f-a165-70867728950e}}")
	assert.False(t, ok, "no internal whitespace")
}

func TestContainsMarkers(t *testing.T) {
	assert.True(t, ContainsMarkers("a {{link:00000000-0000-0000-0000-000000000000}} b"))
	assert.True(t, ContainsMarkers("{{link:abcdefab-cdef-abcd-efab-cdefabcdefab}}"))
	assert.False(t, ContainsMarkers("{{link:not-a-uuid}}"))
	assert.False(t, ContainsMarkers("{{link:00000000-0000-0000-0000-00000000000}}"))
	assert.False(t, ContainsMarkers("plain"))
}

func TestToRich_PillsAndText(t *testing.T) {
	a := mustLink(t, "https://a.com")
	b := mustLink(t, "https://b.com")
	text := "read " + Token(a.ID) + " then " + Token(b.ID)

	rich := ToRich(text, []domain.Link{b, a}, Style{Bold: true})
	require.Len(t, rich, 4)
	assert.Equal(t, Text("read ", Style{Bold: true}), rich[0])
	assert.True(t, rich[1].IsPill())
	assert.Equal(t, a.ID, rich[1].Link.ID)
	assert.Equal(t, " then ", rich[2].Text)
	assert.Equal(t, b.ID, rich[3].Link.ID)
	assert.Equal(t, "read a.com then b.com", rich.PlainText())
}

func TestToRich_CaseInsensitiveLookup(t *testing.T) {
	a := mustLink(t, "https://a.com")
	lower := "{{link:" + strings.ToLower(a.ID.String()) + "}}"

	rich := ToRich(lower, []domain.Link{a}, Style{})
	require.Len(t, rich, 1)
	assert.True(t, rich[0].IsPill())

	text, links := FromRich(rich)
	assert.Equal(t, lower, text, "decoding keeps the original spelling")
	assert.Equal(t, []domain.Link{a}, links)
}

func TestToRich_DanglingMarkerStaysLiteral(t *testing.T) {
	text := "{{link:00000000-0000-0000-0000-000000000000}}"
	rich := ToRich(text, nil, Style{})
	require.Len(t, rich, 1)
	assert.False(t, rich[0].IsPill())
	assert.Equal(t, text, rich[0].Text)

	back, links := FromRich(rich)
	assert.Equal(t, text, back)
	assert.Empty(t, links)
}

func TestRoundTrip(t *testing.T) {
	a := mustLink(t, "https://a.com")
	b := mustLink(t, "https://b.com")
	unused := mustLink(t, "https://unused.com")

	cases := []string{
		"",
		"no markers at all",
		Token(a.ID),
		Token(b.ID) + Token(a.ID),
		"x " + Token(a.ID) + " y " + Token(b.ID) + " z " + Token(a.ID) + "!",
		"unicode ünï " + Token(b.ID) + " 日本",
	}
	for _, text := range cases {
		t.Run(text, func(t *testing.T) {
			rich := ToRich(text, []domain.Link{unused, b, a}, Style{})
			got, links := FromRich(rich)
			assert.Equal(t, text, got)

			want := []domain.Link{}
			for _, id := range ReferencedIDs(text) {
				l, ok := domain.FindLink([]domain.Link{a, b}, id)
				require.True(t, ok)
				want = append(want, l)
			}
			assert.Equal(t, want, links)
		})
	}
}

func TestFromRich_CanonicalTokenForBuiltPills(t *testing.T) {
	a := mustLink(t, "https://a.com")
	text, links := FromRich(Rich{Text("go ", Style{}), Pill(a), Pill(a)})
	assert.Equal(t, "go "+Token(a.ID)+Token(a.ID), text)
	assert.Equal(t, []domain.Link{a}, links)
}

func TestEncode_DedupsRepeatedURL(t *testing.T) {
	text, links := Encode("https://x.com and https://x.com and again https://x.com")
	require.Len(t, links, 1)
	assert.Equal(t, "https://x.com", links[0].URL)

	occ := FindTokens(text)
	require.Len(t, occ, 3)
	for _, o := range occ {
		assert.Equal(t, links[0].ID, o.ID)
	}
	assert.Equal(t, Token(links[0].ID)+" and "+Token(links[0].ID)+" and again "+Token(links[0].ID), text)
}

func TestMigrateRawURLs(t *testing.T) {
	existing := mustLink(t, "https://b.com")
	existing.FaviconData = []byte{1}
	orphan := mustLink(t, "https://orphan.com")

	text, links := MigrateRawURLs("see https://a.com and https://b.com", []domain.Link{orphan, existing})
	require.Len(t, links, 3)

	assert.Equal(t, "https://a.com", links[0].URL, "new links follow text order")
	assert.Equal(t, existing, links[1], "existing link reused by URL")
	assert.Equal(t, orphan, links[2], "unreferenced link kept at the end")
	assert.Equal(t, "see "+Token(links[0].ID)+" and "+Token(existing.ID), text)
}

func TestMigrateRawURLs_NoURLIsIdentity(t *testing.T) {
	a := mustLink(t, "https://a.com")
	in := "already " + Token(a.ID)
	text, links := MigrateRawURLs(in, []domain.Link{a})
	assert.Equal(t, in, text)
	assert.Equal(t, []domain.Link{a}, links)
}

func TestMigrateRawURLs_Idempotent(t *testing.T) {
	text, links := MigrateRawURLs("one https://a.com two https://b.com/x?y=1 three https://a.com", nil)
	require.Len(t, links, 2)

	again, againLinks := MigrateRawURLs(text, links)
	assert.Equal(t, text, again)
	assert.Equal(t, links, againLinks)
}

func TestRichEditing_PillsAreAtomic(t *testing.T) {
	a := mustLink(t, "https://a.com")
	rich := ToRich("ab"+Token(a.ID)+"cd", []domain.Link{a}, Style{})
	require.Equal(t, 5, rich.Len())

	// Deleting a range that covers the pill removes it whole.
	cut := rich.Delete(1, 3)
	text, links := FromRich(cut)
	assert.Equal(t, "acd", text)
	assert.Empty(t, links)

	// Deleting around the pill leaves it intact.
	kept := rich.Delete(0, 2).Delete(1, 2)
	text, links = FromRich(kept)
	assert.Equal(t, Token(a.ID)+"d", text)
	assert.Equal(t, []domain.Link{a}, links)

	// Inserting next to a pill never splits it.
	ins := rich.InsertText(3, "XY", Style{})
	text, _ = FromRich(ins)
	assert.Equal(t, "ab"+Token(a.ID)+"XYcd", text)
}

func TestRichEditing_Paste(t *testing.T) {
	rich := Rich{Text("todo: ", Style{})}
	pasted, cursor := rich.Paste(6, "see https://a.com now", Style{})

	text, links := FromRich(pasted)
	require.Len(t, links, 1)
	assert.Equal(t, "todo: see "+Token(links[0].ID)+" now", text)
	assert.Equal(t, pasted.Len(), cursor)
}

func TestRichEditing_ConvertTypedURL(t *testing.T) {
	rich := Rich{Text("open https://a.com/x ", Style{})}
	converted, cursor, ok := rich.ConvertTypedURL(rich.Len(), Style{})
	require.True(t, ok)

	text, links := FromRich(converted)
	require.Len(t, links, 1)
	assert.Equal(t, "https://a.com/x", links[0].URL)
	assert.Equal(t, "open "+Token(links[0].ID)+" ", text)
	assert.Equal(t, 7, cursor)

	_, _, ok = Rich{Text("open thing ", Style{})}.ConvertTypedURL(11, Style{})
	assert.False(t, ok)
	_, _, ok = Rich{Text("https://a.com", Style{})}.ConvertTypedURL(13, Style{})
	assert.False(t, ok, "no terminator typed yet")
}

func TestEncodeEdit(t *testing.T) {
	a := mustLink(t, "https://a.com")
	a.FaviconData = []byte{1}
	gone := mustLink(t, "https://gone.com")

	title, desc, links := EncodeEdit("see https://a.com", "and https://b.com then "+Token(a.ID), []domain.Link{a, gone})
	require.Len(t, links, 2)
	assert.Equal(t, a, links[0], "existing link reused with its favicon")
	assert.Equal(t, "https://b.com", links[1].URL)
	assert.Equal(t, "see "+Token(a.ID), title)
	assert.Equal(t, "and "+Token(links[1].ID)+" then "+Token(a.ID), desc)

	title, desc, links = EncodeEdit("plain", "", []domain.Link{a})
	assert.Equal(t, "plain", title)
	assert.Empty(t, desc)
	assert.NotNil(t, links)
	assert.Empty(t, links)
}

func TestMigrateRawURLs_URLRightBeforeMarker(t *testing.T) {
	b := mustLink(t, "https://b.com")
	text, links := MigrateRawURLs("read https://a.com"+Token(b.ID)+" later", []domain.Link{b})
	require.Len(t, links, 2)
	assert.Equal(t, "https://a.com", links[0].URL)
	assert.Equal(t, b, links[1])
	assert.Equal(t, "read "+Token(links[0].ID)+Token(b.ID)+" later", text)
}
