package cache

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// CostFunc estimates the memory footprint of a cached value in bytes. The
// estimate only has to be consistent, not exact, since it is compared
// against the configured memory limit which uses the same scale.
type CostFunc func(value any) int

// fallbackCost is charged for values the default heuristic cannot size.
const fallbackCost = 1024

// DefaultCost is the built-in size heuristic:
//
//	nil        8 bytes
//	bool       4 bytes
//	number     8 bytes (all widths)
//	string     2 bytes per character
//	time.Time  24 bytes
//	[]byte     its length
//	other      twice its JSON-serialized length, 1024 if unserializable
//
// Structured values pay double their serialized length to approximate the
// overhead of the decoded in-memory representation.
func DefaultCost(value any) int {
	switch v := value.(type) {
	case nil:
		return 8
	case bool:
		return 4
	case int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return 8
	case string:
		return 2 * utf8.RuneCountInString(v)
	case time.Time:
		return 24
	case []byte:
		return len(v)
	default:
		raw, err := json.Marshal(v)
		if err != nil {
			return fallbackCost
		}
		return 2 * len(raw)
	}
}

// --------------------------------------------------------------------------
// Size Parsing and Formatting
// --------------------------------------------------------------------------

var sizePattern = regexp.MustCompile(`(?i)^(\d+)\s*(B|KB|MB|GB|TB)?$`)

// ParseSize parses a human-readable memory size such as "512MB", "2 gb" or
// "1048576" (bare bytes) into a byte count. Units are powers of 1024.
func ParseSize(s string) (int64, error) {
	m := sizePattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0, fmt.Errorf("invalid memory size %q", s)
	}
	n, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid memory size %q: %w", s, err)
	}
	switch strings.ToUpper(m[2]) {
	case "", "B":
		return n, nil
	case "KB":
		return n << 10, nil
	case "MB":
		return n << 20, nil
	case "GB":
		return n << 30, nil
	default: // TB
		return n << 40, nil
	}
}

// FormatSize renders a byte count in the largest fitting unit with two
// decimal places, e.g. FormatSize(1572864) == "1.50 MB".
func FormatSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	units := []string{"KB", "MB", "GB", "TB", "PB", "EB"}
	return fmt.Sprintf("%.2f %s", float64(n)/float64(div), units[exp])
}
