package srcmap

import (
	"net/url"
	"path"
	"strings"
)

// Resolve resolves input against base the way browsers resolve the entries of "sources": base
// is treated as a directory, absolute URLs are normalized and relative paths stay relative,
// keeping any leading "../" that goes above base.
func Resolve(input, base string) string {
	if base != "" && !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return resolve(input, base)
}

// StripFilename returns p up to and including its last "/".
func StripFilename(p string) string {
	if p == "" {
		return ""
	}
	return p[:strings.LastIndex(p, "/")+1]
}

func resolve(input, base string) string {
	if u, ok := absoluteURL(input); ok {
		u.Path = cleanPath(u.Path)
		return u.String()
	}
	if base != "" {
		if b, ok := absoluteURL(base); ok {
			return resolveReference(b, input)
		}
		if strings.HasPrefix(base, "//") {
			return protocolRelative(input, "https:"+base)
		}
	}
	if strings.HasPrefix(input, "//") {
		return protocolRelative(input, "https://host/")
	}
	if strings.HasPrefix(input, "/") {
		return cleanPath(input)
	}

	joined := StripFilename(cleanPath(base)) + input
	if strings.HasPrefix(base, "/") {
		return cleanPath(joined)
	}
	relative := cleanPath(joined)
	start := base
	if start == "" {
		start = input
	}
	if strings.HasPrefix(start, ".") && !strings.HasPrefix(relative, ".") {
		return "./" + relative
	}
	return relative
}

func absoluteURL(s string) (*url.URL, bool) {
	// a single letter scheme is a windows volume, not a URL
	u, err := url.Parse(s)
	if err != nil || len(u.Scheme) < 2 {
		return nil, false
	}
	return u, true
}

func resolveReference(base *url.URL, input string) string {
	ref, err := url.Parse(input)
	if err != nil {
		return base.String() + input
	}
	return base.ResolveReference(ref).String()
}

func protocolRelative(input, absoluteBase string) string {
	b, err := url.Parse(absoluteBase)
	if err != nil {
		return input
	}
	resolved := resolveReference(b, input)
	return strings.TrimPrefix(resolved, b.Scheme+":")
}

// cleanPath removes "." and ".." segments like URL normalization does: a trailing slash is
// kept and a relative path that cleans up to nothing becomes empty instead of ".".
func cleanPath(p string) string {
	if p == "" {
		return ""
	}
	trailing := strings.HasSuffix(p, "/") || strings.HasSuffix(p, "/.") || strings.HasSuffix(p, "/..") ||
		p == "." || p == ".."
	cleaned := path.Clean(p)
	if cleaned == "." {
		return ""
	}
	if trailing && !strings.HasSuffix(cleaned, "/") {
		cleaned += "/"
	}
	return cleaned
}
