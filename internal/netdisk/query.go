package netdisk

import (
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// queryBuilder assembles url.Values, dropping optional values that were not
// supplied. Empty strings count as not supplied.
type queryBuilder struct {
	v url.Values
}

func newQuery() *queryBuilder {
	return &queryBuilder{v: url.Values{}}
}

func (b *queryBuilder) int(key string, n int) *queryBuilder {
	b.v.Set(key, strconv.Itoa(n))
	return b
}

func (b *queryBuilder) int64(key string, n int64) *queryBuilder {
	b.v.Set(key, strconv.FormatInt(n, 10))
	return b
}

func (b *queryBuilder) optInt(key string, n *int) *queryBuilder {
	if n != nil {
		b.int(key, *n)
	}

	return b
}

func (b *queryBuilder) optInt64(key string, n *int64) *queryBuilder {
	if n != nil {
		b.int64(key, *n)
	}

	return b
}

// optText adds a user-entered string in NFC form.
func (b *queryBuilder) optText(key string, s *string) *queryBuilder {
	if s != nil && *s != "" {
		b.v.Set(key, normalizeName(*s))
	}

	return b
}

func (b *queryBuilder) values() url.Values {
	return b.v
}

// normalizeName converts user-entered names to NFC. macOS clients submit
// NFD; the platform stores and matches names byte-for-byte.
func normalizeName(s string) string {
	return norm.NFC.String(s)
}

// maxIDsPerRequest is the platform's upper bound on ids in one request.
const maxIDsPerRequest = 100

// checkIDCount rejects empty or oversized id lists.
func checkIDCount(field string, n int) error {
	if n == 0 {
		return invalidf("%s: at least one id is required", field)
	}

	if n > maxIDsPerRequest {
		return invalidf("%s: at most %d ids per request, got %d", field, maxIDsPerRequest, n)
	}

	return nil
}

// checkIDList validates a comma-separated id list such as "1,2,3".
func checkIDList(field, list string) error {
	if strings.TrimSpace(list) == "" {
		return checkIDCount(field, 0)
	}

	parts := strings.Split(list, ",")
	for _, p := range parts {
		if _, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64); err != nil {
			return invalidf("%s: %q is not a file id", field, p)
		}
	}

	return checkIDCount(field, len(parts))
}
