package pathtype

import (
	"strings"
)

var windowsSyntax = syntax{
	style:        "windows",
	parse:        parseWindows,
	toURIPath:    windowsURIPath,
	parseURIPath: parseWindowsURIPath,
}

// reserved characters that may not appear in a Windows file name
const windowsReserved = `<>:"|?*`

func parseWindows(pt PathType, s string) (ParseResult, error) {
	orig := s
	s = strings.ReplaceAll(s, "/", `\`)

	var root, rest string
	switch {
	case strings.HasPrefix(s, `\\`):
		var err error
		if root, rest, err = parseUNCRoot(orig, s); err != nil {
			return ParseResult{}, err
		}
	case len(s) >= 2 && isDriveLetter(s[0]) && s[1] == ':':
		if len(s) == 2 || s[2] != '\\' {
			return ParseResult{}, parseError(orig, "relative paths on a specific drive are not supported")
		}
		root, rest = s[:3], s[3:]
	case strings.HasPrefix(s, `\`):
		return ParseResult{}, parseError(orig, "absolute paths on the current drive are not supported")
	default:
		rest = s
	}

	if err := checkWindowsChars(orig, rest); err != nil {
		return ParseResult{}, err
	}
	return ParseResult{Root: root, Names: pt.splitNames(rest)}, nil
}

// parseUNCRoot splits `\\host\share\rest` into the root `\\host\share\` and
// the remainder.
func parseUNCRoot(orig, s string) (root, rest string, err error) {
	hostEnd := strings.IndexByte(s[2:], '\\')
	if hostEnd < 0 {
		return "", "", parseError(orig, "UNC path is missing sharename")
	}
	hostEnd += 2
	if hostEnd == 2 {
		return "", "", parseError(orig, "UNC path is missing hostname")
	}
	shareEnd := strings.IndexByte(s[hostEnd+1:], '\\')
	if shareEnd < 0 {
		shareEnd = len(s)
	} else {
		shareEnd += hostEnd + 1
	}
	if shareEnd == hostEnd+1 {
		return "", "", parseError(orig, "UNC path is missing sharename")
	}
	if err := checkWindowsChars(orig, s[2:shareEnd]); err != nil {
		return "", "", err
	}
	return s[:shareEnd] + `\`, s[shareEnd:], nil
}

func checkWindowsChars(orig, s string) error {
	for _, r := range s {
		if r < 32 || strings.ContainsRune(windowsReserved, r) {
			return parseError(orig, "illegal character")
		}
	}
	return nil
}

func isDriveLetter(c byte) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

// windowsURIPath renders "C:\" roots as "/C:/" and UNC roots as "//host/share/".
func windowsURIPath(_ PathType, root string, names []string) string {
	var b strings.Builder
	r := strings.ReplaceAll(root, `\`, "/")
	if !strings.HasPrefix(r, "//") {
		b.WriteByte('/')
	}
	b.WriteString(r)
	b.WriteString(strings.Join(names, "/"))
	return b.String()
}

func parseWindowsURIPath(pt PathType, uriPath string) (ParseResult, error) {
	p := uriPath
	if len(p) >= 3 && p[0] == '/' && isDriveLetter(p[1]) && p[2] == ':' {
		p = p[1:]
	}
	res, err := parseWindows(pt, strings.ReplaceAll(p, "/", `\`))
	if err != nil {
		return ParseResult{}, err
	}
	if !res.IsAbsolute() {
		return ParseResult{}, parseError(uriPath, "URI path must be absolute")
	}
	return res, nil
}
