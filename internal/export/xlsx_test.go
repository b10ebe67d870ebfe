package export

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/avigneron/winesync/internal/entity"
	"github.com/avigneron/winesync/internal/state"
)

func orderWithOneWine(cuvee string) entity.WineOrder {
	return entity.WineOrder{
		MessageID: "1",
		Wines: []entity.WineLineItem{{
			Region:   "Bourgogne",
			Producer: "Domaine Roulot",
			Cuvee:    cuvee,
			Format:   "75cl",
		}},
	}
}

func workbookRows(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer func() { _ = f.Close() }()
	rows, err := f.GetRows("Wines")
	if err != nil {
		t.Fatalf("read rows: %v", err)
	}
	return rows
}

func TestXLSXSink_AppendOrders(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wines.xlsx")
	sink := &XLSXSink{Path: path}

	if !sink.AppendOrders(context.Background(), []entity.WineOrder{orderWithOneWine("Les Tessons")}) {
		t.Fatal("AppendOrders should report success")
	}

	rows := workbookRows(t, path)
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want header + 1", len(rows))
	}
	if rows[0][0] != "Region" {
		t.Errorf("header[0] = %q, want %q", rows[0][0], "Region")
	}
	if rows[1][4] != "Les Tessons" {
		t.Errorf("cuvée cell = %q, want %q", rows[1][4], "Les Tessons")
	}
}

// A second run appends below the first run's rows instead of rewriting the
// workbook from scratch.
func TestXLSXSink_AppendsAcrossRuns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wines.xlsx")
	sink := &XLSXSink{Path: path}

	if !sink.AppendOrders(context.Background(), []entity.WineOrder{orderWithOneWine("Les Tessons")}) {
		t.Fatal("first append should report success")
	}
	if !sink.AppendOrders(context.Background(), []entity.WineOrder{orderWithOneWine("Clos de la Barre")}) {
		t.Fatal("second append should report success")
	}

	rows := workbookRows(t, path)
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want header + 2", len(rows))
	}
	if rows[1][4] != "Les Tessons" {
		t.Errorf("first run's row lost: %v", rows[1])
	}
	if rows[2][4] != "Clos de la Barre" {
		t.Errorf("second run's row missing: %v", rows[2])
	}
}

// A failed write reports false so the caller holds the watermark.
func TestXLSXSink_ReportsWriteFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "no-such-dir", "wines.xlsx")
	sink := &XLSXSink{Path: path}

	if sink.AppendOrders(context.Background(), []entity.WineOrder{orderWithOneWine("Les Tessons")}) {
		t.Error("AppendOrders should report failure when the workbook cannot be written")
	}
	if _, err := os.Stat(path); err == nil {
		t.Error("no workbook should exist after a failed write")
	}
}

// A batch whose export failed must not move the last-sync point: advancing
// it only on a true return keeps the orders eligible for the next run
// instead of silently dropping them.
func TestFailedExportHoldsWatermark(t *testing.T) {
	dir := t.TempDir()
	sink := &XLSXSink{Path: filepath.Join(dir, "no-such-dir", "wines.xlsx")}
	store := state.NewStore(filepath.Join(dir, "last_sync"), nil)

	order := orderWithOneWine("Les Tessons")
	order.Date = time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	orders := []entity.WineOrder{order}

	if sink.AppendOrders(context.Background(), orders) {
		store.Advance(orders)
	}
	if got, ok := store.Load(); ok {
		t.Errorf("watermark = %v, want none: the batch was never exported", got)
	}
}

// An empty batch is a successful no-op: nothing to write, nothing to retry.
func TestXLSXSink_EmptyBatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wines.xlsx")
	sink := &XLSXSink{Path: path}

	if !sink.AppendOrders(context.Background(), nil) {
		t.Error("an empty batch should report success")
	}
	if _, err := os.Stat(path); err == nil {
		t.Error("an empty batch should not create a workbook")
	}
}
