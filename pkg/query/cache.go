package query

import (
	"crypto/sha1"
	"encoding/hex"
	"sort"
	"strings"
	"time"

	"github.com/whjyxl/cost-rag/backend/pkg/common"
)

const (
	defaultCacheSize = 256
	// defaultCacheTTL is how long a response stays servable from cache.
	defaultCacheTTL = 5 * time.Minute
)

// cacheKey derives a stable key from the query text and the sorted source
// IDs, so source ordering in the request does not fragment the cache.
func cacheKey(queryText string, sources []common.DataSource) string {
	ids := make([]string, 0, len(sources))
	for _, s := range sources {
		ids = append(ids, s.ID)
	}
	sort.Strings(ids)

	h := sha1.Sum([]byte(queryText + "|" + strings.Join(ids, ",")))
	return hex.EncodeToString(h[:])
}
