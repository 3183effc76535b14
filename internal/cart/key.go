package cart

import (
	"regexp"
	"strconv"
	"strings"
)

// placeholder marks an absent size or color inside a line key. It is
// distinct from any real size or color representation.
const placeholder = "_"

var whitespaceRun = regexp.MustCompile(`\s+`)

// LineKey derives the composite identity of a cart line from the product
// and its selected variant. Equal inputs always yield equal keys; any
// differing field yields a different key. Color matching is
// case-insensitive and whitespace-insensitive (runs collapse to "-").
func LineKey(productID string, size *float64, color string) string {
	sizeKey := placeholder
	if size != nil {
		sizeKey = formatSize(*size)
	}
	colorKey := placeholder
	if trimmed := strings.TrimSpace(color); trimmed != "" {
		colorKey = whitespaceRun.ReplaceAllString(strings.ToLower(trimmed), "-")
	}
	return productID + "::" + sizeKey + "::" + colorKey
}

// formatSize renders a size with the minimal digits needed, so 42 and
// 9.5 stay "42" and "9.5".
func formatSize(size float64) string {
	return strconv.FormatFloat(size, 'f', -1, 64)
}
