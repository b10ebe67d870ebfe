package llm

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/avigneron/winesync/internal/common"
)

// ParsePayload turns a raw completion into a sanitized OrderPayload.
//
// Cleanup before decoding: Markdown code-fence lines are stripped, then the
// substring from the first '{' to the last '}' is taken, which sheds any
// commentary the service wrapped around the JSON. The decoded value is
// guarded by the payload schema (top-level object, wines null-or-list), then
// every field is coerced to an always-present string. Sanitization is total
// and idempotent: wines null or absent becomes an empty list, never an error.
func ParsePayload(response string, logger *slog.Logger) (*OrderPayload, error) {
	if logger == nil {
		logger = slog.Default()
	}

	text := strings.TrimSpace(response)
	if strings.HasPrefix(text, "```") {
		var kept []string
		for _, line := range strings.Split(text, "\n") {
			if strings.HasPrefix(strings.TrimSpace(line), "```") {
				continue
			}
			kept = append(kept, line)
		}
		text = strings.Join(kept, "\n")
	}
	if start, end := strings.Index(text, "{"), strings.LastIndex(text, "}"); start != -1 && end > start {
		text = text[start : end+1]
	}

	raw := []byte(text)
	if err := validatePayload(raw); err != nil {
		logger.Error("llm.parse.schema_error", "error", err)
		return nil, fmt.Errorf("%w: %v", common.ErrParse, err)
	}

	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", common.ErrParse, err)
	}

	payload := &OrderPayload{
		IsWineOrder: asBool(m["is_wine_order"]),
		OrderNumber: asString(m["order_number"]),
		TotalPrice:  asString(m["total_price"]),
		Wines:       []LineItem{},
	}

	items, _ := m["wines"].([]any) // null or absent collapses to empty
	for _, it := range items {
		w, ok := it.(map[string]any)
		if !ok {
			continue
		}
		payload.Wines = append(payload.Wines, LineItem{
			Region:      asString(w["région"]),
			Appellation: asString(w["aoc"]),
			Producer:    asString(w["producteur"]),
			Vintage:     asString(w["millésime"]),
			Cuvee:       asString(w["cuvée"]),
			Color:       asString(w["couleur"]),
			Country:     asString(w["pays"]),
			Format:      asString(w["format"]),
			Quantity:    asString(w["quantité"]),
			UnitPrice:   asString(w["prix_unitaire"]),
		})
	}
	return payload, nil
}

// asString coerces a decoded JSON value to a trimmed string; null and absent
// values become "".
func asString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case float64:
		if t == float64(int64(t)) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}

func asBool(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return strings.EqualFold(strings.TrimSpace(t), "true")
	default:
		return false
	}
}
