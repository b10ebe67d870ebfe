package entity

import "time"

// Source records which text the extraction service saw for an order.
type Source string

const (
	SourceEmail Source = "llm_email"
	SourcePDF   Source = "llm_pdf"
)

// WineLineItem is one wine entry within an order. Every field is always
// present and defaults to "" so consumers never probe for missing keys.
// Quantity and UnitPrice stay opaque text straight from the extractor.
type WineLineItem struct {
	Region      string `json:"region"`
	Appellation string `json:"appellation"`
	Producer    string `json:"producer"`
	Vintage     string `json:"vintage"`
	Cuvee       string `json:"cuvee"`
	Color       string `json:"color"`
	Country     string `json:"country"`
	Format      string `json:"format"`
	Quantity    string `json:"quantity"`
	UnitPrice   string `json:"unit_price"`
}

// WineOrder is built only when the extractor affirmatively classified the
// source text as a wine order; one per qualifying message.
type WineOrder struct {
	MessageID   string         `json:"message_id"`
	Subject     string         `json:"subject"`
	From        string         `json:"from"`
	Date        time.Time      `json:"date"`
	RawDate     string         `json:"raw_date"`
	OrderNumber string         `json:"order_number"`
	TotalPrice  string         `json:"total_price"`
	Wines       []WineLineItem `json:"wines"`
	Source      Source         `json:"source"`
}
