package llm

import "context"

// LineItem is one wine entry as the extraction service returns it, keyed by
// the prompt's French vocabulary. Sanitization guarantees every field is a
// present string. The pipeline maps these onto the canonical entity fields.
type LineItem struct {
	Region      string `json:"région"`
	Appellation string `json:"aoc"`
	Producer    string `json:"producteur"`
	Vintage     string `json:"millésime"`
	Cuvee       string `json:"cuvée"`
	Color       string `json:"couleur"`
	Country     string `json:"pays"`
	Format      string `json:"format"`
	Quantity    string `json:"quantité"`
	UnitPrice   string `json:"prix_unitaire"`
}

// OrderPayload is the sanitized shape of one extraction response. The
// IsWineOrder classification is preserved here and honored by the pipeline,
// not discarded during parsing.
type OrderPayload struct {
	IsWineOrder bool       `json:"is_wine_order"`
	OrderNumber string     `json:"order_number"`
	TotalPrice  string     `json:"total_price"`
	Wines       []LineItem `json:"wines"`
}

// OrderExtractor is the interface the pipeline depends on. A nil payload
// with a nil error means the call was short-circuited (budget exhausted or
// too little text); errors are recoverable per message.
type OrderExtractor interface {
	ExtractOrder(ctx context.Context, text string, budget *Budget) (*OrderPayload, error)
}
