// Package detect holds the two admission predicates of the pipeline: the
// merchant allow-list filter and the wine-order vocabulary test.
package detect

import (
	"strings"

	"github.com/avigneron/winesync/internal/entity"
)

// orderVocabulary: at least one of these must appear for text to read as a
// commercial document rather than a newsletter.
var orderVocabulary = []string{
	"devis",
	"facture",
	"commande",
	"bon de livraison",
	"invoice",
	"order",
	"quote",
	"delivery note",
	"quantité",
	"quantity",
	"prix",
	"price",
	"total",
}

// wineVocabulary: at least one of these must also appear.
var wineVocabulary = []string{
	"bouteille",
	"bottle",
	"vin",
	"wine",
	"domaine",
	"château",
	"appellation",
	"millésime",
	"vintage",
	"rouge",
	"blanc",
	"rosé",
	"red",
	"white",
}

// LooksLikeWineOrder reports whether text reads like a wine order: it must
// contain at least one order term and at least one wine term,
// case-insensitively. Either set alone is not enough, which keeps generic
// invoices and wine newsletters out.
func LooksLikeWineOrder(text string) bool {
	lower := strings.ToLower(text)
	return containsAny(lower, orderVocabulary) && containsAny(lower, wineVocabulary)
}

func containsAny(lower string, vocabulary []string) bool {
	for _, term := range vocabulary {
		if strings.Contains(lower, term) {
			return true
		}
	}
	return false
}

// Filter admits messages whose sender matches a known merchant domain. It is
// the sole gate before the costly extraction call: unknown merchants are
// dropped silently, trading recall for precision and call cost.
type Filter struct {
	domains []string
}

// NewFilter lower-cases and trims the configured domains once.
func NewFilter(domains []string) *Filter {
	lowered := make([]string, 0, len(domains))
	for _, d := range domains {
		if d = strings.ToLower(strings.TrimSpace(d)); d != "" {
			lowered = append(lowered, d)
		}
	}
	return &Filter{domains: lowered}
}

// IsCandidate reports whether the message's From header contains any
// allow-listed domain. Pure, no side effects.
func (f *Filter) IsCandidate(msg entity.Message) bool {
	from := strings.ToLower(msg.From)
	for _, d := range f.domains {
		if strings.Contains(from, d) {
			return true
		}
	}
	return false
}
