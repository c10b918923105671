package pathtype

import (
	"fmt"
	"strings"
	"testing"

	"github.com/cockroachdb/datadriven"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JimSP/jimfs"
)

func TestPathTypeDataDriven(t *testing.T) {
	datadriven.RunTest(t, "testdata/parse", func(t *testing.T, td *datadriven.TestData) string {
		var style string
		td.ScanArgs(t, "type", &style)
		pt, err := ByName(style)
		require.NoError(t, err)

		var out strings.Builder
		for _, line := range strings.Split(td.Input, "\n") {
			res, err := pt.ParsePath(line)
			if err != nil {
				if !errors.Is(err, jimfs.ErrParse) {
					t.Fatalf("unexpected error for %q: %v", line, err)
				}
				fmt.Fprintf(&out, "%s -> parse error\n", line)
				continue
			}
			switch td.Cmd {
			case "parse":
				fmt.Fprintf(&out, "%s -> root=%s names=[%s]\n", line, res.Root, strings.Join(res.Names, "|"))
			case "uri":
				uriPath := pt.ToURIPath(res.Root, res.Names)
				back, err := pt.ParseURIPath(uriPath)
				require.NoError(t, err)
				fmt.Fprintf(&out, "%s -> %s -> %s\n", line, uriPath, pt.ToString(back.Root, back.Names))
			default:
				t.Fatalf("unknown command %q", td.Cmd)
			}
		}
		return out.String()
	})
}

func TestParsePath_EmptyIsRelativeWithNoNames(t *testing.T) {
	t.Parallel()

	for _, pt := range []PathType{Unix(), OSX(), Windows()} {
		res, err := pt.ParsePath("")
		require.NoError(t, err)
		assert.False(t, res.IsAbsolute())
		assert.Empty(t, res.Names)
	}
}

func TestParsePath_UnixRejectsNul(t *testing.T) {
	t.Parallel()

	_, err := Unix().ParsePath("foo\x00bar")
	require.ErrorIs(t, err, jimfs.ErrParse)
}

func TestToString_RoundTrip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		pt    PathType
		root  string
		names []string
	}{
		{Unix(), "/", []string{}},
		{Unix(), "/", []string{"a", "b", "c"}},
		{Unix(), "", []string{"a"}},
		{Unix(), "", []string{"..", ".", "x y"}},
		{OSX(), "/", []string{"Caf\u00e9"}},
		{Windows(), `C:\`, []string{}},
		{Windows(), `C:\`, []string{"Program Files", "app"}},
		{Windows(), `\\host\share\`, []string{"dir", "file.txt"}},
		{Windows(), "", []string{"rel", "path"}},
	}

	for _, tt := range tests {
		s := tt.pt.ToString(tt.root, tt.names)
		t.Run(tt.pt.Style()+":"+s, func(t *testing.T) {
			res, err := tt.pt.ParsePath(s)
			require.NoError(t, err)
			assert.Equal(t, tt.root, res.Root)
			assert.Equal(t, tt.names, res.Names)
		})
	}
}

func TestToString_CanonicalSeparator(t *testing.T) {
	t.Parallel()

	pt := Windows()
	res, err := pt.ParsePath("C:/a/b")
	require.NoError(t, err)
	assert.Equal(t, `C:\a\b`, pt.ToString(res.Root, res.Names))
}

func TestParseURIPath_RejectsRelative(t *testing.T) {
	t.Parallel()

	_, err := Unix().ParseURIPath("foo/bar")
	require.ErrorIs(t, err, jimfs.ErrParse)

	_, err = Windows().ParseURIPath("foo/bar")
	require.ErrorIs(t, err, jimfs.ErrParse)
}

func TestPathType_Equal(t *testing.T) {
	t.Parallel()

	assert.True(t, Unix().Equal(Unix()))
	assert.False(t, Unix().Equal(OSX()))
	assert.False(t, Unix().Equal(Windows()))
	assert.True(t, OSX().Equal(Unix().WithLookupNormalization(NFD|CaseFoldASCII).WithPathNormalization(NFC)))
}

func TestPathType_WithPathNormalizationDoesNotMutate(t *testing.T) {
	t.Parallel()

	base := Unix()
	before := base.Name("Foo")
	changed := base.WithPathNormalization(CaseFoldASCII)

	assert.Equal(t, None, base.PathNormalization())
	assert.Equal(t, "Foo", before.String())
	assert.Equal(t, "foo", changed.Name("Foo").String())
}

func TestByName(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"unix", "osx", "windows", "Windows"} {
		_, err := ByName(name)
		assert.NoError(t, err, name)
	}
	_, err := ByName("plan9")
	require.ErrorIs(t, err, jimfs.ErrConfiguration)
}

func TestPresets(t *testing.T) {
	t.Parallel()

	assert.False(t, Unix().AllowsMultipleRoots())
	assert.Equal(t, "/", Unix().Separator())
	assert.Equal(t, "", Unix().OtherSeparators())

	assert.True(t, Windows().AllowsMultipleRoots())
	assert.Equal(t, `\`, Windows().Separator())
	assert.Equal(t, "/", Windows().OtherSeparators())
	assert.Equal(t, CaseFoldASCII, Windows().LookupNormalization())

	assert.Equal(t, NFD|CaseFoldASCII, OSX().LookupNormalization())
	assert.Equal(t, NFC, OSX().PathNormalization())
}
