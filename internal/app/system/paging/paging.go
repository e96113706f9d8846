// internal/app/system/paging/paging.go
package paging

import (
	"strconv"
	"strings"
)

// PageSize is the number of records a find returns when the caller does
// not ask for a limit.
const PageSize = 50

// MaxPageSize caps caller-supplied limits.
const MaxPageSize = 500

// LimitKey is the query parameter callers use to ask for a page size.
// "limit" is accepted as an alias.
const LimitKey = "$limit"

// Limit extracts the page size from a find query. Missing or unparsable
// values yield PageSize; values are clamped to [1, MaxPageSize].
func Limit(query map[string]string) int64 {
	raw, ok := query[LimitKey]
	if !ok {
		raw = query["limit"]
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return PageSize
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return PageSize
	}
	return clamp(n)
}

func clamp(n int) int64 {
	switch {
	case n < 1:
		return 1
	case n > MaxPageSize:
		return MaxPageSize
	}
	return int64(n)
}
