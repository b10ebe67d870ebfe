// Package pipeline orchestrates order extraction per message: merchant
// filter, text-source selection, extraction call, and order assembly.
package pipeline

import (
	"context"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/avigneron/winesync/internal/detect"
	"github.com/avigneron/winesync/internal/entity"
	"github.com/avigneron/winesync/internal/llm"
	"github.com/avigneron/winesync/internal/pdftext"
)

// Processor turns fetched messages into wine orders. Extractor is nil when
// no credential is configured; candidate messages then yield no orders.
type Processor struct {
	Logger    *slog.Logger
	Filter    *detect.Filter
	Extractor llm.OrderExtractor
	Budget    *llm.Budget
	Watermark time.Time // zero when no previous run is recorded

	// ExtractPDF is swappable for tests; defaults to pdftext.Extract.
	ExtractPDF func(data []byte, logger *slog.Logger) string
}

func NewProcessor(logger *slog.Logger, filter *detect.Filter, extractor llm.OrderExtractor, budget *llm.Budget, watermark time.Time) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		Logger:     logger,
		Filter:     filter,
		Extractor:  extractor,
		Budget:     budget,
		Watermark:  watermark,
		ExtractPDF: pdftext.Extract,
	}
}

// Run processes messages strictly in the order the mailbox adapter returned
// them (newest first) and collects the orders found. Messages dated at or
// before the watermark are skipped; messages whose date did not parse are
// processed anyway so a bad Date header cannot hide an order. A failure on
// one message never aborts the run.
func (p *Processor) Run(ctx context.Context, msgs []entity.Message) []entity.WineOrder {
	var orders []entity.WineOrder
	for _, msg := range msgs {
		if !p.Watermark.IsZero() && !msg.Date.IsZero() && !msg.Date.After(p.Watermark) {
			p.Logger.Debug("pipeline.skip.watermark", "id", msg.ID, "date", msg.Date)
			continue
		}
		if !p.Filter.IsCandidate(msg) {
			continue
		}

		order, err := p.ProcessMessage(ctx, msg)
		if err != nil {
			p.Logger.Error("pipeline.message.error", "id", msg.ID, "error", err)
			continue
		}
		if order != nil {
			orders = append(orders, *order)
			p.Logger.Info("pipeline.order.found",
				"id", msg.ID,
				"subject", truncate(msg.Subject, 50),
				"source", order.Source,
				"wines", len(order.Wines),
			)
		}
	}
	return orders
}

// ProcessMessage extracts at most one order from a candidate message. A PDF
// attachment whose extracted text reads like a wine order beats the message
// body; attachments are scanned in order and the first match wins.
func (p *Processor) ProcessMessage(ctx context.Context, msg entity.Message) (*entity.WineOrder, error) {
	if p.Extractor == nil {
		return nil, nil
	}

	text := msg.Body
	source := entity.SourceEmail
	for _, att := range msg.Attachments {
		extracted := p.ExtractPDF(att.Data, p.Logger)
		if detect.LooksLikeWineOrder(extracted) {
			text = extracted
			source = entity.SourcePDF
			break
		}
	}

	payload, err := p.Extractor.ExtractOrder(ctx, text, p.Budget)
	if err != nil {
		return nil, err
	}
	if payload == nil || !payload.IsWineOrder {
		return nil, nil
	}

	return &entity.WineOrder{
		MessageID:   msg.ID,
		Subject:     msg.Subject,
		From:        msg.From,
		Date:        msg.Date,
		RawDate:     msg.RawDate,
		OrderNumber: payload.OrderNumber,
		TotalPrice:  payload.TotalPrice,
		Wines:       mapLineItems(payload.Wines),
		Source:      source,
	}, nil
}

// mapLineItems crosses the boundary from the extraction service's French
// keys to the canonical field names. The quantité → quantity and
// prix_unitaire → unit_price renames happen here and nowhere else.
func mapLineItems(items []llm.LineItem) []entity.WineLineItem {
	wines := make([]entity.WineLineItem, 0, len(items))
	for _, it := range items {
		wines = append(wines, entity.WineLineItem{
			Region:      it.Region,
			Appellation: it.Appellation,
			Producer:    it.Producer,
			Vintage:     it.Vintage,
			Cuvee:       it.Cuvee,
			Color:       it.Color,
			Country:     it.Country,
			Format:      it.Format,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
		})
	}
	return wines
}

// truncate cuts s to at most n bytes without splitting a multi-byte rune.
func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
