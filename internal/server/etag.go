package server

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/mcncl/jsonviewer/internal/viewer"
)

// documentTag derives an entity tag from the request body and the options
// it is parsed and rendered with.
func documentTag(data []byte, opts viewer.Options, canonical bool) string {
	h := sha256.New()
	h.Write(data)
	fmt.Fprintf(h, "\x00%+v\x00%t", opts, canonical)
	return `"` + hex.EncodeToString(h.Sum(nil)[:16]) + `"`
}

// etagMatches reports whether an If-None-Match header lists tag. The
// comparison is weak, so W/ prefixes are ignored, and "*" matches any tag.
func etagMatches(header, tag string) bool {
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "*" || strings.TrimPrefix(candidate, "W/") == strings.TrimPrefix(tag, "W/") {
			return true
		}
	}
	return false
}
