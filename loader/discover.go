package loader

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"net/url"
	"strings"
)

// findSourceMappingURL returns the url of the last sourceMappingURL comment in code, in either
// the JS (`//# ...`, `//@ ...`) or the CSS (`/*# ... */`) form.
func findSourceMappingURL(code []byte) (string, bool) {
	for _, prefix := range [][]byte{[]byte("# sourceMappingURL="), []byte("@ sourceMappingURL=")} {
		index := bytes.LastIndex(code, prefix)
		if index < 2 {
			continue
		}
		start := code[index-2 : index]
		if !bytes.Equal(start, []byte("//")) && !bytes.Equal(start, []byte("/*")) {
			continue
		}
		rest := code[index+len(prefix):]
		if end := bytes.IndexAny(rest, "\r\n"); end != -1 {
			rest = rest[:end]
		}
		if bytes.Equal(start, []byte("/*")) {
			if end := bytes.Index(rest, []byte("*/")); end != -1 {
				rest = rest[:end]
			}
		}
		if u := strings.TrimSpace(string(rest)); u != "" {
			return u, true
		}
	}
	return "", false
}

// decodeDataURL returns the content of a `data:` url, base64 encoded or not.
func decodeDataURL(u string) ([]byte, error) {
	header, data, ok := strings.Cut(strings.TrimPrefix(u, "data:"), ",")
	if !ok {
		return nil, fmt.Errorf("malformed data url")
	}
	if strings.HasSuffix(header, ";base64") {
		b, err := base64.StdEncoding.DecodeString(data)
		if err != nil {
			return nil, fmt.Errorf("decoding the inline source map: %w", err)
		}
		return b, nil
	}
	s, err := url.PathUnescape(data)
	if err != nil {
		return nil, fmt.Errorf("decoding the inline source map: %w", err)
	}
	return []byte(s), nil
}
