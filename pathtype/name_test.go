package pathtype

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JimSP/jimfs"
)

const (
	cafeComposed   = "Caf\u00e9"  // é as one code point
	cafeDecomposed = "Cafe\u0301" // e + combining acute accent
)

func TestNormalization_Apply(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		norm Normalization
		in   string
		want string
	}{
		{"none", None, "FooBar", "FooBar"},
		{"ascii fold", CaseFoldASCII, "FooBAR", "foobar"},
		{"ascii fold keeps non-ascii", CaseFoldASCII, "\u00c9T\u00c9", "\u00c9t\u00c9"},
		{"unicode fold", CaseFoldUnicode, "\u00c9T\u00c9", "\u00e9t\u00e9"},
		{"nfc composes", NFC, cafeDecomposed, cafeComposed},
		{"nfd decomposes", NFD, cafeComposed, cafeDecomposed},
		{"nfd with ascii fold", NFD | CaseFoldASCII, cafeComposed, "cafe\u0301"},
		{"angstrom sign", NFD | CaseFoldASCII, "\u212b", "a\u030a"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.norm.Apply(tt.in))
		})
	}
}

func TestNormalization_Idempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"", "a", "ABC", cafeComposed, cafeDecomposed, "Å", "Straße", "İstanbul", "MiXeD/..Å",
		"\u13f8", "\u13f0", "\uab70", "\u13a0", "\u13a3\uab83\u13f8",
	}
	norms := []Normalization{
		None, NFC, NFD, CaseFoldASCII, CaseFoldUnicode,
		NFC | CaseFoldASCII, NFD | CaseFoldASCII, NFC | CaseFoldUnicode, NFD | CaseFoldUnicode,
	}
	for _, n := range norms {
		for _, in := range inputs {
			once := n.Apply(in)
			assert.Equal(t, once, n.Apply(once), "%s(%q)", n, in)
		}
	}
}

func TestNormalization_CherokeeFold(t *testing.T) {
	t.Parallel()

	for _, n := range []Normalization{CaseFoldUnicode, NFC | CaseFoldUnicode, NFD | CaseFoldUnicode} {
		for _, pair := range [][2]string{{"\u13f8", "\u13f0"}, {"\uab70", "\u13a0"}, {"\uabbf", "\u13ef"}} {
			lower, upper := NewName(pair[0], n), NewName(pair[1], n)
			assert.True(t, lower.Equal(upper), "%s: %q vs %q", n, pair[0], pair[1])
			assert.Equal(t, pair[1], lower.Canonical())
		}
	}
	assert.False(t, NewName("\u13f8", CaseFoldASCII).Equal(NewName("\u13f0", CaseFoldASCII)))
}

func TestNormalization_Compose(t *testing.T) {
	t.Parallel()

	a, b, c := NFC, CaseFoldASCII, CaseFoldUnicode
	assert.Equal(t, a.Compose(b).Compose(c), a.Compose(b.Compose(c)))
	assert.Equal(t, a.Compose(b), a.Compose(b).Compose(b))
	assert.Equal(t, a.Compose(b), b.Compose(a))
	assert.Equal(t, None, None.Compose())
}

func TestNormalization_Validate(t *testing.T) {
	t.Parallel()

	assert.NoError(t, (NFC | CaseFoldUnicode).Validate())
	require.ErrorIs(t, (NFC | NFD).Validate(), jimfs.ErrConfiguration)
}

func TestParseNormalization(t *testing.T) {
	t.Parallel()

	n, err := ParseNormalization("nfd", "case_fold_ascii")
	require.NoError(t, err)
	assert.Equal(t, NFD|CaseFoldASCII, n)
	assert.Equal(t, "nfd+case_fold_ascii", n.String())

	n, err = ParseNormalization()
	require.NoError(t, err)
	assert.Equal(t, None, n)

	_, err = ParseNormalization("upper")
	require.ErrorIs(t, err, jimfs.ErrConfiguration)

	_, err = ParseNormalization("nfc", "nfd")
	require.ErrorIs(t, err, jimfs.ErrConfiguration)
}

func TestName_EqualityUsesCanonicalOnly(t *testing.T) {
	t.Parallel()

	a := NewName("Foo", CaseFoldASCII)
	b := NewName("fOO", CaseFoldASCII)
	c := NewName("Foo", None)
	d := NewName("foo", None)

	assert.True(t, a.Equal(b))
	assert.Equal(t, 0, a.Compare(b))
	assert.Equal(t, "Foo", a.String())
	assert.Equal(t, "fOO", b.String())
	assert.False(t, c.Equal(d))
	assert.Negative(t, c.Compare(d))

	keys := map[string]Name{a.Canonical(): a}
	_, ok := keys[b.Canonical()]
	assert.True(t, ok)
}

func TestName_Special(t *testing.T) {
	t.Parallel()

	assert.True(t, NewName(".", CaseFoldASCII).IsSelf())
	assert.True(t, NewName("..", None).IsParent())
	assert.False(t, NewName("...", None).IsParent())
	assert.True(t, Name{}.IsZero())
}

func TestPathType_NameUsesBothNormalizations(t *testing.T) {
	t.Parallel()

	n := OSX().Name(cafeDecomposed)
	assert.Equal(t, cafeComposed, n.String(), "display is path normalized")
	assert.Equal(t, "cafe\u0301", n.Canonical(), "canonical is lookup normalized")
	assert.True(t, n.Equal(OSX().Name("CAF\u00c9")))
}
