package pipeline

import (
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/avigneron/winesync/internal/detect"
	"github.com/avigneron/winesync/internal/entity"
	"github.com/avigneron/winesync/internal/llm"
)

// stubExtractor records the text it was handed and returns a fixed payload.
type stubExtractor struct {
	calls   int
	texts   []string
	payload *llm.OrderPayload
	err     error
}

func (s *stubExtractor) ExtractOrder(_ context.Context, text string, budget *llm.Budget) (*llm.OrderPayload, error) {
	if budget.Exhausted() {
		return nil, nil
	}
	budget.Spend()
	s.calls++
	s.texts = append(s.texts, text)
	return s.payload, s.err
}

func wineOrderPayload() *llm.OrderPayload {
	return &llm.OrderPayload{
		IsWineOrder: true,
		OrderNumber: "CMD-2041",
		TotalPrice:  "540.00",
		Wines: []llm.LineItem{{
			Cuvee:     "Les Tessons",
			Producer:  "Domaine Roulot",
			Vintage:   "2020",
			Quantity:  "6",
			UnitPrice: "90.00",
		}},
	}
}

func candidateMessage() entity.Message {
	return entity.Message{
		ID:      "42",
		Subject: "Confirmation de commande",
		From:    "Commandes <commande@idealwine.com>",
		Date:    time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		RawDate: "Sun, 01 Jun 2025 12:00:00 +0000",
		Body:    strings.Repeat("Votre commande de vin est confirmée. ", 3),
	}
}

func newTestProcessor(extractor llm.OrderExtractor, watermark time.Time) *Processor {
	filter := detect.NewFilter([]string{"idealwine.com"})
	return NewProcessor(slog.Default(), filter, extractor, llm.NewBudget(10), watermark)
}

func TestRun_RoundTrip(t *testing.T) {
	stub := &stubExtractor{payload: wineOrderPayload()}
	p := newTestProcessor(stub, time.Time{})

	orders := p.Run(context.Background(), []entity.Message{candidateMessage()})
	if len(orders) != 1 {
		t.Fatalf("orders = %d, want 1", len(orders))
	}

	order := orders[0]
	if order.MessageID != "42" || order.Subject != "Confirmation de commande" {
		t.Errorf("metadata not attached: %+v", order)
	}
	if order.OrderNumber != "CMD-2041" || order.TotalPrice != "540.00" {
		t.Errorf("order fields: %+v", order)
	}
	if order.Source != entity.SourceEmail {
		t.Errorf("Source = %q, want %q", order.Source, entity.SourceEmail)
	}
	if len(order.Wines) != 1 {
		t.Fatalf("wines = %d, want 1", len(order.Wines))
	}
	// The French quantité/prix_unitaire keys land on the canonical fields.
	if order.Wines[0].Quantity != "6" {
		t.Errorf("Quantity = %q, want %q", order.Wines[0].Quantity, "6")
	}
	if order.Wines[0].UnitPrice != "90.00" {
		t.Errorf("UnitPrice = %q, want %q", order.Wines[0].UnitPrice, "90.00")
	}
}

// A message from a non-listed domain never reaches the extractor, whatever
// its body says.
func TestRun_NonCandidateNeverExtracted(t *testing.T) {
	stub := &stubExtractor{payload: wineOrderPayload()}
	p := newTestProcessor(stub, time.Time{})

	msg := candidateMessage()
	msg.From = "promo@grandcru-deals.com"
	orders := p.Run(context.Background(), []entity.Message{msg})
	if len(orders) != 0 {
		t.Errorf("orders = %d, want 0", len(orders))
	}
	if stub.calls != 0 {
		t.Errorf("extractor calls = %d, want 0", stub.calls)
	}
}

// A PDF whose extracted text reads like a wine order beats the body; the
// recording stub sees the PDF text and the order is stamped llm_pdf.
func TestRun_PDFTextPreferred(t *testing.T) {
	stub := &stubExtractor{payload: wineOrderPayload()}
	p := newTestProcessor(stub, time.Time{})

	pdfText := "FACTURE n°2041 — Domaine Roulot, Meursault, 6 bouteilles, prix total 540 EUR"
	p.ExtractPDF = func(data []byte, _ *slog.Logger) string {
		return string(data)
	}

	msg := candidateMessage()
	msg.Body = strings.Repeat("Veuillez trouver votre facture en pièce jointe. ", 2)
	msg.Attachments = []entity.Attachment{
		{Filename: "notice.pdf", Data: []byte("conditions générales de vente")},
		{Filename: "facture.pdf", Data: []byte(pdfText)},
	}

	orders := p.Run(context.Background(), []entity.Message{msg})
	if len(orders) != 1 {
		t.Fatalf("orders = %d, want 1", len(orders))
	}
	if orders[0].Source != entity.SourcePDF {
		t.Errorf("Source = %q, want %q", orders[0].Source, entity.SourcePDF)
	}
	if len(stub.texts) != 1 || stub.texts[0] != pdfText {
		t.Errorf("extractor saw %q, want the PDF text", stub.texts)
	}
}

// When no PDF passes the wine-order test the body is used.
func TestRun_BodyWhenNoPDFMatches(t *testing.T) {
	stub := &stubExtractor{payload: wineOrderPayload()}
	p := newTestProcessor(stub, time.Time{})
	p.ExtractPDF = func(data []byte, _ *slog.Logger) string { return "" }

	msg := candidateMessage()
	msg.Attachments = []entity.Attachment{{Filename: "notice.pdf", Data: []byte("x")}}

	orders := p.Run(context.Background(), []entity.Message{msg})
	if len(orders) != 1 {
		t.Fatalf("orders = %d, want 1", len(orders))
	}
	if orders[0].Source != entity.SourceEmail {
		t.Errorf("Source = %q, want %q", orders[0].Source, entity.SourceEmail)
	}
	if stub.texts[0] != msg.Body {
		t.Errorf("extractor saw %q, want message body", stub.texts[0])
	}
}

func TestRun_NotAWineOrder(t *testing.T) {
	stub := &stubExtractor{payload: &llm.OrderPayload{IsWineOrder: false}}
	p := newTestProcessor(stub, time.Time{})

	orders := p.Run(context.Background(), []entity.Message{candidateMessage()})
	if len(orders) != 0 {
		t.Errorf("orders = %d, want 0 when is_wine_order is false", len(orders))
	}
	if stub.calls != 1 {
		t.Errorf("extractor calls = %d, want 1", stub.calls)
	}
}

func TestRun_NilExtractor(t *testing.T) {
	p := newTestProcessor(nil, time.Time{})
	orders := p.Run(context.Background(), []entity.Message{candidateMessage()})
	if len(orders) != 0 {
		t.Errorf("orders = %d, want 0 with no extractor configured", len(orders))
	}
}

// Messages dated at or before the watermark are skipped; undated messages
// are processed anyway.
func TestRun_WatermarkSkip(t *testing.T) {
	stub := &stubExtractor{payload: wineOrderPayload()}
	watermark := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	p := newTestProcessor(stub, watermark)

	older := candidateMessage()
	older.ID = "old"
	older.Date = watermark.Add(-24 * time.Hour)

	exact := candidateMessage()
	exact.ID = "exact"
	exact.Date = watermark

	newer := candidateMessage()
	newer.ID = "new"
	newer.Date = watermark.Add(24 * time.Hour)

	undated := candidateMessage()
	undated.ID = "undated"
	undated.Date = time.Time{}

	orders := p.Run(context.Background(), []entity.Message{newer, exact, older, undated})
	if len(orders) != 2 {
		t.Fatalf("orders = %d, want 2 (newer + undated)", len(orders))
	}
	if orders[0].MessageID != "new" || orders[1].MessageID != "undated" {
		t.Errorf("unexpected order ids: %q, %q", orders[0].MessageID, orders[1].MessageID)
	}
}

func TestTruncate_RuneBoundary(t *testing.T) {
	tests := []struct {
		s    string
		n    int
		want string
	}{
		{"abc", 5, "abc"},
		{"abcdef", 3, "abc"},
		{"aé", 2, "a"}, // é straddles the cut, dropped whole
		{"aé", 3, "aé"},
		{"château", 3, "ch"},
		{"", 3, ""},
	}
	for _, tt := range tests {
		if got := truncate(tt.s, tt.n); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.s, tt.n, got, tt.want)
		}
	}
}

// One failing message never aborts the run.
func TestRun_ErrorSkipsMessage(t *testing.T) {
	failing := &stubExtractor{err: context.DeadlineExceeded}
	p := newTestProcessor(failing, time.Time{})

	orders := p.Run(context.Background(), []entity.Message{candidateMessage(), candidateMessage()})
	if len(orders) != 0 {
		t.Errorf("orders = %d, want 0", len(orders))
	}
	if failing.calls != 2 {
		t.Errorf("extractor calls = %d, want 2 (run continued past the failure)", failing.calls)
	}
}
