package llm

import (
	"strings"
	"unicode/utf8"
)

const (
	// MaxPromptChars bounds how much source text is embedded in the prompt.
	MaxPromptChars = 12000

	// MinTextLen is the least amount of trimmed source text worth an
	// extraction call.
	MinTextLen = 50
)

// BuildExtractionPrompt embeds at most the first MaxPromptChars of text into
// the fixed extraction template. The template is French because the target
// merchants are; the service answers with the JSON shape it specifies.
func BuildExtractionPrompt(text string) string {
	if len(text) > MaxPromptChars {
		cut := MaxPromptChars
		// Back up to a rune boundary so a multi-byte character is never split.
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		text = text[:cut]
	}

	var b strings.Builder
	b.WriteString(`Analyse cet email (peut être en HTML - ignore les balises/CSS).

ÉTAPE 1: Est-ce une VRAIE commande de vin (confirmation d'achat, facture) ?
- Si c'est une newsletter, promo, ou autre → réponds avec is_wine_order: false
- Si c'est une vraie commande → réponds avec is_wine_order: true et extrais les vins

ÉTAPE 2: Si c'est une commande, extrais pour chaque vin:
- cuvée: nom complet du vin
- producteur: domaine/château
- millésime: année
- région: région viticole
- aoc: appellation
- couleur: Rouge/Blanc/Rosé
- format: 75cl par défaut
- quantité: nombre de bouteilles
- prix_unitaire: prix unitaire

Réponds UNIQUEMENT avec ce JSON:
{
    "is_wine_order": true/false,
    "order_number": "",
    "total_price": "",
    "wines": [
        {
            "cuvée": "",
            "producteur": "",
            "millésime": "",
            "région": "",
            "aoc": "",
            "couleur": "",
            "pays": "",
            "format": "",
            "quantité": "",
            "prix_unitaire": ""
        }
    ]
}

Email:
`)
	b.WriteString(text)
	return b.String()
}
