package export

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/avigneron/winesync/internal/entity"
)

// SheetsSink appends flattened wine rows to a Google Sheet worksheet,
// authorized via a service-account credential file.
type SheetsSink struct {
	SheetID            string
	Worksheet          string
	ServiceAccountFile string
	Logger             *slog.Logger
}

// AppendOrders flattens orders and appends the rows with USER_ENTERED value
// semantics, so numeric-looking strings may be coerced by the sheet.
// An empty row set performs no write and reports success. Credential and
// write failures are logged, not returned; the false result holds the
// watermark so the batch is retried next run.
func (s *SheetsSink) AppendOrders(ctx context.Context, orders []entity.WineOrder) bool {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}

	rows := FlattenRows(orders)
	if len(rows) == 0 {
		logger.Info("export.sheets.skip", "reason", "no rows to append")
		return true
	}

	srv, err := s.service(ctx)
	if err != nil {
		logger.Error("export.sheets.auth_error", "error", err)
		return false
	}

	values := make([][]interface{}, 0, len(rows))
	for _, row := range rows {
		cells := make([]interface{}, len(row))
		for i, cell := range row {
			cells[i] = cell
		}
		values = append(values, cells)
	}

	start := time.Now()
	_, err = srv.Spreadsheets.Values.
		Append(s.SheetID, s.Worksheet, &sheets.ValueRange{Values: values}).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		logger.Error("export.sheets.append_error", "error", err, "rows", len(rows))
		return false
	}
	logger.Info("export.sheets.ok",
		"rows", len(rows),
		"worksheet", s.Worksheet,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return true
}

func (s *SheetsSink) service(ctx context.Context) (*sheets.Service, error) {
	data, err := os.ReadFile(s.ServiceAccountFile)
	if err != nil {
		return nil, fmt.Errorf("read service account file: %w", err)
	}
	conf, err := google.JWTConfigFromJSON(data, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("parse service account: %w", err)
	}
	return sheets.NewService(ctx, option.WithHTTPClient(conf.Client(ctx)))
}
