package sync

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/Bebin29/shpysync/core/audit"
	"github.com/Bebin29/shpysync/feature/catalog"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type priceCall struct {
	productID string
	updates   []catalog.PriceUpdate
}

type inventoryCall struct {
	locationID string
	updates    []catalog.InventoryUpdate
}

// fakeAPI is a scripted catalog API for driver tests.
type fakeAPI struct {
	products       []catalog.Product
	location       catalog.Location
	locationErr    error
	failProducts   map[string]error
	failInventory  error
	priceCalls     []priceCall
	inventoryCalls []inventoryCall
}

func (f *fakeAPI) FetchProducts(ctx context.Context) ([]catalog.Product, error) {
	return f.products, nil
}

func (f *fakeAPI) FindLocationByName(ctx context.Context, name string) (catalog.Location, error) {
	if f.locationErr != nil {
		return catalog.Location{}, f.locationErr
	}
	return f.location, nil
}

func (f *fakeAPI) UpdateVariantPrices(ctx context.Context, productID string, updates []catalog.PriceUpdate) error {
	f.priceCalls = append(f.priceCalls, priceCall{productID: productID, updates: updates})
	if err, ok := f.failProducts[productID]; ok {
		return err
	}
	return nil
}

func (f *fakeAPI) SetInventoryQuantities(ctx context.Context, locationID string, updates []catalog.InventoryUpdate) error {
	f.inventoryCalls = append(f.inventoryCalls, inventoryCall{locationID: locationID, updates: updates})
	return f.failInventory
}

type recordedBatch struct {
	kind     string
	targetID string
	size     int
	ok       bool
}

// fakeRecorder captures the audit trail.
type fakeRecorder struct {
	started  bool
	batches  []recordedBatch
	phase    string
	summary  audit.Summary
	finished bool
}

func (r *fakeRecorder) StartRun(ctx context.Context, file, location string) (string, error) {
	r.started = true
	return "run-1", nil
}

func (r *fakeRecorder) RecordBatch(ctx context.Context, runID, kind, targetID string, size int, ok bool, errText string) error {
	r.batches = append(r.batches, recordedBatch{kind: kind, targetID: targetID, size: size, ok: ok})
	return nil
}

func (r *fakeRecorder) FinishRun(ctx context.Context, runID, phase string, summary audit.Summary) error {
	r.finished = true
	r.phase = phase
	r.summary = summary
	return nil
}

func testCatalog() []catalog.Product {
	return []catalog.Product{
		{
			ID:    "p1",
			Title: "Bracket",
			Variants: []catalog.Variant{
				{ID: "v1", SKU: "X1", InventoryItemID: "i1"},
			},
		},
		{
			ID:    "p2",
			Title: "Gadget",
			Variants: []catalog.Variant{
				{ID: "v2", SKU: "G7", InventoryItemID: "i2"},
			},
		},
	}
}

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "artikel.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func simpleConfig(file string) Config {
	return Config{
		File:         file,
		Delimiter:    ";",
		SKUColumn:    "A",
		NameColumn:   "B",
		PriceColumn:  "C",
		StockColumn:  "D",
		LocationName: "Main",
	}
}

func TestRun_EndToEnd(t *testing.T) {
	// Row 1 matches by SKU, row 2 by truncated name, row 3 matches nothing.
	file := writeCSV(t, "sku;name;price;stock\n"+
		"X1;Widget;6,5;10\n"+
		";Gadget - Blau;1.234,56;5\n"+
		";Unknown Thing;9,99;1\n")

	api := &fakeAPI{products: testCatalog(), location: catalog.Location{ID: "loc1", Name: "Main"}}
	recorder := &fakeRecorder{}

	service := NewService(Params{
		API:      api,
		Config:   simpleConfig(file),
		Logger:   nil,
		Confirm:  func() bool { return true },
		Recorder: recorder,
	})

	report, err := service.Run(context.Background(), Options{})
	require.NoError(t, err)

	assert.Equal(t, PhaseDone, report.Phase)
	assert.Equal(t, 2, report.PriceAttempted)
	assert.Equal(t, 2, report.PriceSucceeded)
	assert.Equal(t, 2, report.InventoryAttempted)
	assert.Equal(t, 2, report.InventorySucceeded)
	assert.Equal(t, 1, report.SkippedRows)

	// One bulk call per product, in first-encounter order.
	require.Len(t, api.priceCalls, 2)
	assert.Equal(t, "p1", api.priceCalls[0].productID)
	assert.Equal(t, []catalog.PriceUpdate{{VariantID: "v1", Price: "6.50"}}, api.priceCalls[0].updates)
	assert.Equal(t, "p2", api.priceCalls[1].productID)
	assert.Equal(t, []catalog.PriceUpdate{{VariantID: "v2", Price: "1234.56"}}, api.priceCalls[1].updates)

	// One inventory batch against the resolved location.
	require.Len(t, api.inventoryCalls, 1)
	assert.Equal(t, "loc1", api.inventoryCalls[0].locationID)
	assert.Equal(t, []catalog.InventoryUpdate{
		{InventoryItemID: "i1", Quantity: 10},
		{InventoryItemID: "i2", Quantity: 5},
	}, api.inventoryCalls[0].updates)

	// Audit trail recorded every batch and the final counts.
	assert.True(t, recorder.started)
	assert.True(t, recorder.finished)
	assert.Equal(t, string(PhaseDone), recorder.phase)
	assert.Len(t, recorder.batches, 3)
	assert.Equal(t, 2, recorder.summary.PriceSucceeded)
}

func TestRun_DeclinedConfirmationMakesNoCalls(t *testing.T) {
	file := writeCSV(t, "sku;name;price;stock\nX1;Widget;6,5;10\n")

	api := &fakeAPI{products: testCatalog(), location: catalog.Location{ID: "loc1"}}

	service := NewService(Params{
		API:     api,
		Config:  simpleConfig(file),
		Confirm: func() bool { return false },
	})

	report, err := service.Run(context.Background(), Options{})
	require.NoError(t, err)

	assert.Equal(t, PhaseAborted, report.Phase)
	assert.Empty(t, api.priceCalls)
	assert.Empty(t, api.inventoryCalls)
}

func TestRun_DryRunStopsAtGate(t *testing.T) {
	file := writeCSV(t, "sku;name;price;stock\nX1;Widget;6,5;10\n")

	api := &fakeAPI{products: testCatalog(), location: catalog.Location{ID: "loc1"}}

	service := NewService(Params{
		API:     api,
		Config:  simpleConfig(file),
		Confirm: func() bool { t.Fatal("confirm must not be called in dry-run"); return true },
	})

	report, err := service.Run(context.Background(), Options{DryRun: true})
	require.NoError(t, err)

	assert.Equal(t, PhaseAborted, report.Phase)
	assert.Equal(t, 1, report.PriceAttempted)
	assert.Empty(t, api.priceCalls)
	assert.Empty(t, api.inventoryCalls)
}

func TestRun_EmptyCatalogAborts(t *testing.T) {
	file := writeCSV(t, "sku;name;price;stock\nX1;Widget;6,5;10\n")

	api := &fakeAPI{products: nil}

	service := NewService(Params{API: api, Config: simpleConfig(file)})

	_, err := service.Run(context.Background(), Options{})
	assert.ErrorIs(t, err, ErrEmptyCatalog)
	assert.Empty(t, api.priceCalls)
}

func TestRun_LocationNotFoundAbortsBeforeWrites(t *testing.T) {
	file := writeCSV(t, "sku;name;price;stock\nX1;Widget;6,5;10\n")

	api := &fakeAPI{products: testCatalog(), locationErr: catalog.ErrLocationNotFound}

	service := NewService(Params{API: api, Config: simpleConfig(file)})

	_, err := service.Run(context.Background(), Options{})
	assert.ErrorIs(t, err, catalog.ErrLocationNotFound)
	assert.Empty(t, api.priceCalls)
	assert.Empty(t, api.inventoryCalls)
}

func TestRun_FailedPriceBatchDoesNotStopRun(t *testing.T) {
	file := writeCSV(t, "sku;name;price;stock\n"+
		"X1;Widget;6,5;10\n"+
		"G7;Gadget;2,00;3\n")

	api := &fakeAPI{
		products:     testCatalog(),
		location:     catalog.Location{ID: "loc1"},
		failProducts: map[string]error{"p1": errors.New("productVariantsBulkUpdate failed: boom")},
	}

	service := NewService(Params{
		API:     api,
		Config:  simpleConfig(file),
		Confirm: func() bool { return true },
	})

	report, err := service.Run(context.Background(), Options{})
	require.NoError(t, err)

	assert.Equal(t, PhaseDone, report.Phase)
	assert.Equal(t, 2, report.PriceAttempted)
	assert.Equal(t, 1, report.PriceSucceeded)
	// The second product batch and the inventory write still went out.
	assert.Len(t, api.priceCalls, 2)
	assert.Len(t, api.inventoryCalls, 1)
	assert.Equal(t, 2, report.InventorySucceeded)
}

func TestRun_MissingInventoryLinkSkipsStockOnly(t *testing.T) {
	file := writeCSV(t, "sku;name;price;stock\nN1;NoLink;5,00;4\n")

	api := &fakeAPI{
		products: []catalog.Product{
			{
				ID:    "p3",
				Title: "NoLink",
				Variants: []catalog.Variant{
					{ID: "v3", SKU: "N1"},
				},
			},
		},
		location: catalog.Location{ID: "loc1"},
	}

	service := NewService(Params{
		API:     api,
		Config:  simpleConfig(file),
		Confirm: func() bool { return true },
	})

	report, err := service.Run(context.Background(), Options{})
	require.NoError(t, err)

	assert.Equal(t, 1, report.PriceAttempted)
	assert.Equal(t, 1, report.PriceSucceeded)
	assert.Zero(t, report.InventoryAttempted)
	assert.Len(t, api.priceCalls, 1)
	assert.Empty(t, api.inventoryCalls)
}

func TestRun_DuplicateRowsCoalesced(t *testing.T) {
	file := writeCSV(t, "sku;name;price;stock\n"+
		"X1;Widget;6,5;10\n"+
		"X1;Widget;7,0;12\n")

	api := &fakeAPI{products: testCatalog(), location: catalog.Location{ID: "loc1"}}

	service := NewService(Params{
		API:     api,
		Config:  simpleConfig(file),
		Confirm: func() bool { return true },
	})

	report, err := service.Run(context.Background(), Options{})
	require.NoError(t, err)

	// Attempted counts the raw rows; the write carries the coalesced set
	// with the last value winning.
	assert.Equal(t, 2, report.InventoryAttempted)
	assert.Equal(t, 1, report.DuplicateItems)
	require.Len(t, api.inventoryCalls, 1)
	assert.Equal(t, []catalog.InventoryUpdate{{InventoryItemID: "i1", Quantity: 12}}, api.inventoryCalls[0].updates)
	assert.Equal(t, 1, report.InventorySucceeded)
}

func TestRun_NoUpdatesAborts(t *testing.T) {
	file := writeCSV(t, "sku;name;price;stock\n;Unknown;1,00;1\n")

	api := &fakeAPI{products: testCatalog(), location: catalog.Location{ID: "loc1"}}

	service := NewService(Params{
		API:     api,
		Config:  simpleConfig(file),
		Confirm: func() bool { t.Fatal("confirm must not be reached"); return true },
	})

	report, err := service.Run(context.Background(), Options{})
	require.NoError(t, err)

	assert.Equal(t, PhaseAborted, report.Phase)
	assert.Equal(t, 1, report.SkippedRows)
	assert.Empty(t, api.priceCalls)
}
