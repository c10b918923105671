package pathtype

import "strings"

var unixSyntax = syntax{
	style:        "unix",
	parse:        parseUnix,
	toURIPath:    unixURIPath,
	parseURIPath: parseUnixURIPath,
}

func parseUnix(pt PathType, s string) (ParseResult, error) {
	if strings.IndexByte(s, 0) >= 0 {
		return ParseResult{}, parseError(s, "nul character not allowed")
	}
	var root string
	if strings.HasPrefix(s, "/") {
		root = "/"
	}
	return ParseResult{Root: root, Names: pt.splitNames(s)}, nil
}

func unixURIPath(_ PathType, _ string, names []string) string {
	return "/" + strings.Join(names, "/")
}

func parseUnixURIPath(pt PathType, uriPath string) (ParseResult, error) {
	if !strings.HasPrefix(uriPath, "/") {
		return ParseResult{}, parseError(uriPath, "URI path must be absolute")
	}
	return parseUnix(pt, uriPath)
}
