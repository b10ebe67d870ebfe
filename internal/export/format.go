package export

import (
	"strings"

	"github.com/avigneron/winesync/constants"
)

// NormalizeFormat maps free-form bottle format strings to centilitres.
// Rules are checked highest capacity first, so an ambiguous string such as
// "Magnum 300cl" resolves to the larger size. Unrecognized formats map to
// the empty string.
func NormalizeFormat(raw string) string {
	if raw == "" {
		return ""
	}
	f := strings.ToLower(raw)
	switch {
	case strings.Contains(f, "jeroboam") || strings.Contains(f, "300"):
		return constants.FormatJeroboam
	case strings.Contains(f, "magnum") || strings.Contains(f, "150") || strings.Contains(f, "1.5"):
		return constants.FormatMagnum
	case strings.Contains(f, "75"):
		return constants.FormatStandard
	}
	return ""
}
