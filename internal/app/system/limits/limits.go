// internal/app/system/limits/limits.go
package limits

// Request size limits.
// These limits help prevent memory exhaustion from oversized requests.
const (
	// MaxJSONBodySize is the largest JSON body the REST transport decodes.
	MaxJSONBodySize = 1 << 20 // 1 MB

	// MaxQueryValueLength caps a single query-string value passed to services.
	MaxQueryValueLength = 512
)
