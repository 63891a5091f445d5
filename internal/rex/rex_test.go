package rex

import (
	"strings"
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"
	"github.com/stretchr/testify/assert"
)

func enumerate(t *testing.T, pattern string, maxLen int) []string {
	t.Helper()
	n, err := Parse(pattern)
	if err != nil {
		t.Fatalf("Parse(%q) error: %v", pattern, err)
	}
	return NewEnumerator(n, maxLen).All()
}

func TestParseLiteral(t *testing.T) {
	n, err := Parse("abc")
	assert.NoError(t, err)
	assert.Equal(t, KindConcat, n.Kind)
	assert.Len(t, n.Children, 3)
}

func TestParseUnterminatedGroup(t *testing.T) {
	_, err := Parse("(ab")
	assert.Error(t, err)
}

func TestParseDanglingEscape(t *testing.T) {
	_, err := Parse(`ab\`)
	assert.Error(t, err)
}

func TestParseBadQuantifierRange(t *testing.T) {
	_, err := Parse(`a{3,1}`)
	assert.Error(t, err)
}

func TestEnumerateAlternation(t *testing.T) {
	got := enumerate(t, "cat|dog", 3)
	assert.Equal(t, []string{"cat", "dog"}, got)
}

func TestEnumerateClassAscending(t *testing.T) {
	got := enumerate(t, "[bca]", 1)
	assert.Equal(t, []string{"a", "b", "c"}, got)
}

func TestEnumerateDigitClass(t *testing.T) {
	got := enumerate(t, `\d`, 1)
	assert.Equal(t, 10, len(got))
	assert.Equal(t, "0", got[0])
	assert.Equal(t, "9", got[9])
}

func TestEnumerateQuantifierOrdering(t *testing.T) {
	got := enumerate(t, `\d{1,2}`, 2)
	assert.Equal(t, "0", got[0])
	assert.Equal(t, "9", got[9])
	assert.Equal(t, "00", got[10])
	assert.Equal(t, 110, len(got)) // 10 one-digit + 100 two-digit
}

func TestEnumerateConcatIsCartesianLeftOuter(t *testing.T) {
	got := enumerate(t, "[ab][xy]", 2)
	assert.Equal(t, []string{"ax", "ay", "bx", "by"}, got)
}

func TestEnumerateBoundedByMaxLen(t *testing.T) {
	got := enumerate(t, `a+`, 3)
	assert.Equal(t, []string{"a", "aa", "aaa"}, got)
}

func TestEnumerateNegatedClassExcludesListedChars(t *testing.T) {
	got := enumerate(t, "[^a-z]", 1)
	for _, s := range got {
		assert.False(t, s >= "a" && s <= "z", "negated class produced %q", s)
	}
}

func TestEnumerateGoldenSnapshot(t *testing.T) {
	got := enumerate(t, `(a|b)\d{1,2}`, 3)
	snaps.MatchSnapshot(t, strings.Join(got, "\n"))
}
