package pathtype

import (
	"strings"

	"github.com/cockroachdb/errors"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/JimSP/jimfs"
)

// Normalization is a set of string normalizations applied to a path segment
// to produce its canonical form. The zero value, None, leaves strings as-is.
//
// Normalizations compose by union, so composition is associative,
// commutative and idempotent.
type Normalization uint8

const (
	// NFC applies Unicode canonical composition
	NFC Normalization = 1 << iota
	// NFD applies Unicode canonical decomposition
	NFD
	// CaseFoldASCII folds only the ASCII letters A-Z
	CaseFoldASCII
	// CaseFoldUnicode applies full Unicode case folding
	CaseFoldUnicode
)

// None performs no normalization.
const None Normalization = 0

var normalizationNames = map[string]Normalization{
	"none":              None,
	"nfc":               NFC,
	"nfd":               NFD,
	"case_fold_ascii":   CaseFoldASCII,
	"case_fold_unicode": CaseFoldUnicode,
}

// ParseNormalization builds a Normalization from its config names, e.g.
// ["nfd", "case_fold_ascii"].
func ParseNormalization(names ...string) (Normalization, error) {
	var n Normalization
	for _, name := range names {
		v, ok := normalizationNames[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			return None, errors.Wrapf(jimfs.ErrConfiguration, "unknown normalization %q", name)
		}
		n = n.Compose(v)
	}
	return n, n.Validate()
}

// Compose returns the union of n and others.
func (n Normalization) Compose(others ...Normalization) Normalization {
	for _, o := range others {
		n |= o
	}
	return n
}

// Has reports whether every normalization in o is part of n.
func (n Normalization) Has(o Normalization) bool {
	return n&o == o
}

// Validate rejects contradictory combinations.
func (n Normalization) Validate() error {
	if n.Has(NFC | NFD) {
		return errors.Wrap(jimfs.ErrConfiguration, "normalization cannot be both NFC and NFD")
	}
	return nil
}

// Apply returns the canonical form of s. Unicode form is applied before and
// after case folding, so Apply(Apply(s)) == Apply(s).
func (n Normalization) Apply(s string) string {
	if n == None {
		return s
	}
	s = n.unicodeForm(s)
	switch {
	case n.Has(CaseFoldUnicode):
		// Casers are stateful; never share one between goroutines.
		s = n.unicodeForm(foldCherokee(cases.Fold().String(s)))
	case n.Has(CaseFoldASCII):
		s = n.unicodeForm(foldASCII(s))
	}
	return s
}

func (n Normalization) unicodeForm(s string) string {
	switch {
	case n.Has(NFC):
		return norm.NFC.String(s)
	case n.Has(NFD):
		return norm.NFD.String(s)
	}
	return s
}

func (n Normalization) String() string {
	if n == None {
		return "none"
	}
	parts := make([]string, 0, 4)
	for _, name := range []string{"nfc", "nfd", "case_fold_ascii", "case_fold_unicode"} {
		if n.Has(normalizationNames[name]) {
			parts = append(parts, name)
		}
	}
	return strings.Join(parts, "+")
}

// foldASCII lowercases A-Z and leaves every other rune untouched.
func foldASCII(s string) string {
	for i := 0; i < len(s); i++ {
		if c := s[i]; 'A' <= c && c <= 'Z' {
			b := []byte(s)
			for j := i; j < len(b); j++ {
				if c := b[j]; 'A' <= c && c <= 'Z' {
					b[j] = c + ('a' - 'A')
				}
			}
			return string(b)
		}
	}
	return s
}

// foldCherokee maps lowercase Cherokee letters onto their uppercase forms,
// the direction Unicode case folding uses for Cherokee. cases.Fold flips
// between the two ranges, so its output alone is not a fixed point.
func foldCherokee(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case 0x13F8 <= r && r <= 0x13FD:
			return r - 8
		case 0xAB70 <= r && r <= 0xABBF:
			return r - 0xAB70 + 0x13A0
		}
		return r
	}, s)
}
