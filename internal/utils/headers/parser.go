package headers

import (
	"fmt"
	"net/textproto"
	"strings"
)

// ParseHeaders converts "Key: Value" strings into a map with canonical keys.
// Entries without a colon or with an empty key are rejected.
func ParseHeaders(h []string) (map[string]string, error) {
	m := make(map[string]string, len(h))
	for _, hdr := range h {
		key, value, ok := strings.Cut(hdr, ":")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid header %q: expected \"Key: Value\"", hdr)
		}
		m[textproto.CanonicalMIMEHeaderKey(key)] = strings.TrimSpace(value)
	}
	return m, nil
}
