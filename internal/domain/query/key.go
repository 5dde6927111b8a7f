package query

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/goccy/go-json"
)

const (
	keyNamespace = "streams:"
	keyHashLen   = 20
)

type keyPayload struct {
	Game     string   `json:"g"`
	Keywords []string `json:"kw"`
	Tags     []string `json:"tags"`
	Limit    int      `json:"limit"`
}

// CacheKey derives a stable cache key: prefix + "streams:" + hex(sha256(payload))[:20].
// Page size is excluded since it does not change the result set.
func (q Query) CacheKey(prefix string) string {
	p := keyPayload{
		Game:     q.categoryID,
		Keywords: nonNil(q.keywords),
		Tags:     nonNil(q.tags),
		Limit:    q.limit,
	}
	// Marshal of a flat struct of strings and ints cannot fail.
	data, _ := json.Marshal(p)
	sum := sha256.Sum256(data)
	return prefix + keyNamespace + hex.EncodeToString(sum[:])[:keyHashLen]
}

func nonNil(t Terms) []string {
	if t == nil {
		return []string{}
	}
	return t
}
