package export

import (
	"context"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/avigneron/winesync/internal/entity"
)

// XLSXSink writes the same six-column rows to a local workbook. Used when no
// sheet ID is configured.
type XLSXSink struct {
	Path   string
	Logger *slog.Logger
}

const worksheetName = "Wines"

// AppendOrders appends one row per line item below the last used row of the
// workbook at Path, creating the workbook with a header row when it does not
// exist yet. An empty row set performs no write and reports success.
// Failures are logged, not returned; the false result holds the watermark so
// the batch is retried next run.
func (s *XLSXSink) AppendOrders(_ context.Context, orders []entity.WineOrder) bool {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}

	rows := FlattenRows(orders)
	if len(rows) == 0 {
		logger.Info("export.xlsx.skip", "reason", "no rows to write")
		return true
	}

	start := time.Now()

	f, err := excelize.OpenFile(s.Path)
	if err != nil {
		// Missing or unreadable workbook: start a fresh one.
		f = excelize.NewFile()
	}
	defer func() {
		_ = f.Close()
	}()

	if index, _ := f.GetSheetIndex(worksheetName); index == -1 {
		if _, err := f.NewSheet(worksheetName); err != nil {
			logger.Error("export.xlsx.sheet_error", "error", err)
			return false
		}
	}
	activeIndex, _ := f.GetSheetIndex(worksheetName)
	f.SetActiveSheet(activeIndex)

	write := func(col, row int, v any) {
		cell, _ := excelize.CoordinatesToCellName(col, row)
		_ = f.SetCellValue(worksheetName, cell, v)
	}

	existing, _ := f.GetRows(worksheetName)
	startRow := len(existing) + 1
	if startRow == 1 {
		for i, h := range columnHeaders {
			write(i+1, 1, h)
		}
		startRow = 2
	}
	for r, row := range rows {
		for c, cell := range row {
			write(c+1, startRow+r, cell)
		}
	}

	// Widen a few columns
	_ = f.SetColWidth(worksheetName, "A", "B", 22) // region, appellation
	_ = f.SetColWidth(worksheetName, "C", "C", 28) // producer
	_ = f.SetColWidth(worksheetName, "D", "D", 10) // vintage
	_ = f.SetColWidth(worksheetName, "E", "E", 36) // cuvée
	_ = f.SetColWidth(worksheetName, "F", "F", 10) // format

	if err := f.SaveAs(s.Path); err != nil {
		logger.Error("export.xlsx.write_error", "path", s.Path, "error", err)
		return false
	}
	logger.Info("export.xlsx.ok",
		"path", s.Path,
		"rows", len(rows),
		"appended_at", startRow,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return true
}
