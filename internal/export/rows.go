// Package export flattens wine orders into six-column rows and appends them
// to a tabular sink: a Google Sheet worksheet or a local XLSX workbook.
package export

import (
	"context"

	"github.com/avigneron/winesync/internal/entity"
)

// Headers for the local workbook; the Google Sheet carries its own.
var columnHeaders = []string{"Region", "Appellation", "Producer", "Vintage", "Cuvée", "Format"}

// Sink is an append-only tabular destination for a batch of orders.
// AppendOrders reports whether the batch was written; an empty batch counts
// as written. Implementations log failures instead of returning errors, so a
// failed export cannot take the run down, but the false return lets the
// caller hold the watermark and retry the batch on the next run.
type Sink interface {
	AppendOrders(ctx context.Context, orders []entity.WineOrder) bool
}

// FlattenRows turns every line item of every order into one row:
// region, appellation, producer, vintage, cuvée, normalized format.
// Quantity, price, color and country stay in the structured payload only;
// the sheet schema carries six columns.
func FlattenRows(orders []entity.WineOrder) [][]string {
	var rows [][]string
	for _, order := range orders {
		for _, wine := range order.Wines {
			rows = append(rows, []string{
				wine.Region,
				wine.Appellation,
				wine.Producer,
				wine.Vintage,
				wine.Cuvee,
				NormalizeFormat(wine.Format),
			})
		}
	}
	return rows
}
