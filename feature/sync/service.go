package sync

import (
	"context"
	"errors"
	"fmt"

	"github.com/Bebin29/shpysync/core/audit"
	"github.com/Bebin29/shpysync/feature/catalog"

	"go.uber.org/zap"
)

// Phase names the stages of a reconciliation run. The driver moves through
// them strictly in order; Aborted is terminal and reachable from any stage
// on a fatal precondition.
type Phase string

const (
	PhaseLoadingCatalog       Phase = "loading_catalog"
	PhaseIndexingCatalog      Phase = "indexing_catalog"
	PhaseResolvingLocation    Phase = "resolving_location"
	PhaseParsingRows          Phase = "parsing_rows"
	PhaseCoalescingUpdates    Phase = "coalescing_updates"
	PhaseAwaitingConfirmation Phase = "awaiting_confirmation"
	PhaseApplyingPrices       Phase = "applying_price_updates"
	PhaseApplyingInventory    Phase = "applying_inventory_updates"
	PhaseDone                 Phase = "done"
	PhaseAborted              Phase = "aborted"
)

// ErrEmptyCatalog aborts a run whose catalog fetch returned no products.
var ErrEmptyCatalog = errors.New("empty catalog")

// API is the catalog surface the driver needs. *catalog.Client implements
// it; tests substitute fakes.
type API interface {
	FetchProducts(ctx context.Context) ([]catalog.Product, error)
	FindLocationByName(ctx context.Context, name string) (catalog.Location, error)
	UpdateVariantPrices(ctx context.Context, productID string, updates []catalog.PriceUpdate) error
	SetInventoryQuantities(ctx context.Context, locationID string, updates []catalog.InventoryUpdate) error
}

// Recorder persists the audit trail. *audit.Store implements it.
type Recorder interface {
	StartRun(ctx context.Context, file, location string) (string, error)
	RecordBatch(ctx context.Context, runID, kind, targetID string, size int, ok bool, errText string) error
	FinishRun(ctx context.Context, runID, phase string, summary audit.Summary) error
}

// Options controls a single run.
type Options struct {
	// DryRun stops at the confirmation gate without issuing any mutation.
	DryRun bool
}

// Report is the final accounting of a run.
type Report struct {
	Phase              Phase
	PriceAttempted     int
	PriceSucceeded     int
	InventoryAttempted int
	InventorySucceeded int
	SkippedRows        int
	DuplicateItems     int
}

// Params bundles the dependencies of a Service.
type Params struct {
	API       API
	Config    Config
	BatchSize int
	Logger    *zap.Logger
	// Confirm gates the run before any mutating call. A nil Confirm
	// declines.
	Confirm func() bool
	// Recorder is optional; a nil Recorder disables the audit trail.
	Recorder Recorder
}

// Service drives a reconciliation run: load rows, fetch catalog and
// location, resolve each row, coalesce, apply batches, report counts.
type Service struct {
	api       API
	cfg       Config
	batchSize int
	logger    *zap.Logger
	confirm   func() bool
	recorder  Recorder
}

// NewService creates a reconciliation driver.
func NewService(p Params) *Service {
	logger := p.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	batchSize := p.BatchSize
	if batchSize <= 0 || batchSize > 250 {
		batchSize = 250
	}
	return &Service{
		api:       p.API,
		cfg:       p.Config,
		batchSize: batchSize,
		logger:    logger,
		confirm:   p.Confirm,
		recorder:  p.Recorder,
	}
}

// plan holds the coalesced write intents produced from the parsed rows.
type plan struct {
	// priceByProduct groups price updates by owning product; the write API
	// commits prices per product in bulk.
	priceByProduct map[string][]catalog.PriceUpdate
	// productOrder is the first-encounter order of products, so batches go
	// out deterministically.
	productOrder []string
	// inventory keeps intents in input order; coalescing happens right
	// before the writes.
	inventory []catalog.InventoryUpdate
	skipped   int
}

func (p *plan) priceCount() int {
	total := 0
	for _, updates := range p.priceByProduct {
		total += len(updates)
	}
	return total
}

// Run executes one reconciliation run end to end.
func (s *Service) Run(ctx context.Context, opts Options) (*Report, error) {
	report := &Report{Phase: PhaseAborted}

	runID := s.startAudit(ctx)
	defer func() { s.finishAudit(ctx, runID, report) }()

	cols, err := resolveColumns(s.cfg)
	if err != nil {
		return report, err
	}

	records, encoding, err := ReadRows(s.cfg.File, s.cfg.DelimiterRune())
	if err != nil {
		return report, fmt.Errorf("read rows: %w", err)
	}
	s.logger.Info("input file read",
		zap.String("file", s.cfg.File),
		zap.String("encoding", encoding),
		zap.Int("records", len(records)),
	)

	s.logger.Info("loading catalog", zap.String("phase", string(PhaseLoadingCatalog)))
	products, err := s.api.FetchProducts(ctx)
	if err != nil {
		return report, fmt.Errorf("fetch catalog: %w", err)
	}
	if len(products) == 0 {
		return report, ErrEmptyCatalog
	}

	s.logger.Info("indexing catalog", zap.String("phase", string(PhaseIndexingCatalog)), zap.Int("products", len(products)))
	index := catalog.BuildIndex(products, s.logger)
	resolver := catalog.NewResolver(index)

	s.logger.Info("resolving location", zap.String("phase", string(PhaseResolvingLocation)), zap.String("name", s.cfg.LocationName))
	location, err := s.api.FindLocationByName(ctx, s.cfg.LocationName)
	if err != nil {
		return report, fmt.Errorf("resolve location %q: %w", s.cfg.LocationName, err)
	}

	s.logger.Info("parsing rows", zap.String("phase", string(PhaseParsingRows)))
	p := s.buildPlan(records, cols, index, resolver)

	report.PriceAttempted = p.priceCount()
	report.InventoryAttempted = len(p.inventory)
	report.SkippedRows = p.skipped

	s.logger.Info("updates prepared",
		zap.Int("price_updates", report.PriceAttempted),
		zap.Int("products", len(p.productOrder)),
		zap.Int("inventory_updates", report.InventoryAttempted),
		zap.Int("rows_skipped", p.skipped),
	)

	if report.PriceAttempted == 0 && report.InventoryAttempted == 0 {
		s.logger.Info("nothing to update")
		return report, nil
	}

	s.preview(p, location)

	report.Phase = PhaseAwaitingConfirmation
	if opts.DryRun {
		s.logger.Info("dry-run mode, no changes were made")
		report.Phase = PhaseAborted
		return report, nil
	}
	if s.confirm == nil || !s.confirm() {
		s.logger.Warn("run cancelled, no changes were made")
		report.Phase = PhaseAborted
		return report, nil
	}

	report.Phase = PhaseApplyingPrices
	s.applyPrices(ctx, runID, p, report)

	report.Phase = PhaseApplyingInventory
	s.applyInventory(ctx, runID, p, location, report)

	report.Phase = PhaseDone
	s.logger.Info("run finished",
		zap.Int("prices_ok", report.PriceSucceeded),
		zap.Int("prices_attempted", report.PriceAttempted),
		zap.Int("inventory_ok", report.InventorySucceeded),
		zap.Int("inventory_attempted", report.InventoryAttempted),
	)
	return report, nil
}

// buildPlan resolves every data row into update intents. Failures are
// per-row skips with a logged reason; they never abort the run.
func (s *Service) buildPlan(records [][]string, cols columnIndexes, index *catalog.Index, resolver *catalog.Resolver) *plan {
	p := &plan{priceByProduct: make(map[string][]catalog.PriceUpdate)}

	for i, record := range records {
		if i == 0 {
			// Header line.
			continue
		}
		line := i + 1

		row := parseRow(line, record, cols)
		if row.Skip != "" {
			s.skipRow(row)
			p.skipped++
			continue
		}

		variantID, ok := resolver.Resolve(row.SKU, row.Name)
		if !ok {
			row.Skip = SkipNoMatch
			s.skipRow(row)
			p.skipped++
			continue
		}

		productID, ok := index.ProductOf(variantID)
		if !ok {
			row.Skip = SkipNoMatch
			row.Detail = "no product for variant " + variantID
			s.skipRow(row)
			p.skipped++
			continue
		}

		if _, seen := p.priceByProduct[productID]; !seen {
			p.productOrder = append(p.productOrder, productID)
		}
		p.priceByProduct[productID] = append(p.priceByProduct[productID], catalog.PriceUpdate{
			VariantID: variantID,
			Price:     row.Price,
		})

		variant, _ := index.Variant(variantID)
		if variant.InventoryItemID == "" {
			row.Skip = SkipMissingInventoryLink
			s.skipRow(row)
			continue
		}
		p.inventory = append(p.inventory, catalog.InventoryUpdate{
			InventoryItemID: variant.InventoryItemID,
			Quantity:        row.Stock,
		})
	}

	return p
}

func (s *Service) skipRow(row RowRecord) {
	s.logger.Warn("row skipped",
		zap.Int("line", row.Line),
		zap.String("reason", string(row.Skip)),
		zap.String("sku", row.SKU),
		zap.String("name", row.Name),
		zap.String("detail", row.Detail),
	)
}

// preview logs a short sample of the pending updates before the gate.
func (s *Service) preview(p *plan, location catalog.Location) {
	const maxShow = 6

	shown := 0
	for _, productID := range p.productOrder {
		for _, u := range p.priceByProduct[productID] {
			s.logger.Info("pending price update",
				zap.String("variant", u.VariantID),
				zap.String("price", u.Price),
				zap.String("product", productID),
			)
			shown++
			if shown >= maxShow {
				break
			}
		}
		if shown >= maxShow {
			break
		}
	}

	for i, u := range p.inventory {
		if i >= maxShow {
			break
		}
		s.logger.Info("pending inventory update",
			zap.String("item", u.InventoryItemID),
			zap.String("location", location.ID),
			zap.Int("quantity", u.Quantity),
		)
	}
}

// applyPrices submits one bulk call per product. A failed batch is counted
// and the run proceeds to the next product.
func (s *Service) applyPrices(ctx context.Context, runID string, p *plan, report *Report) {
	for _, productID := range p.productOrder {
		updates := p.priceByProduct[productID]
		err := s.api.UpdateVariantPrices(ctx, productID, updates)
		if err != nil {
			s.logger.Error("price batch failed",
				zap.String("product", productID),
				zap.Int("size", len(updates)),
				zap.Error(err),
			)
			s.recordBatch(ctx, runID, "price", productID, len(updates), false, err.Error())
			continue
		}
		report.PriceSucceeded += len(updates)
		s.recordBatch(ctx, runID, "price", productID, len(updates), true, "")
	}
}

// applyInventory coalesces once, then submits fixed-size batches of
// absolute quantities.
func (s *Service) applyInventory(ctx context.Context, runID string, p *plan, location catalog.Location, report *Report) {
	if len(p.inventory) == 0 {
		return
	}

	s.logger.Info("coalescing inventory updates", zap.String("phase", string(PhaseCoalescingUpdates)))
	coalesced, duplicates := CoalesceInventory(p.inventory)
	report.DuplicateItems = duplicates
	if duplicates > 0 {
		s.logger.Warn("duplicate inventory items coalesced",
			zap.Int("items_with_duplicates", duplicates),
			zap.Int("before", len(p.inventory)),
			zap.Int("after", len(coalesced)),
		)
	}

	for start := 0; start < len(coalesced); start += s.batchSize {
		end := start + s.batchSize
		if end > len(coalesced) {
			end = len(coalesced)
		}
		chunk := coalesced[start:end]

		err := s.api.SetInventoryQuantities(ctx, location.ID, chunk)
		if err != nil {
			s.logger.Error("inventory batch failed",
				zap.Int("size", len(chunk)),
				zap.Error(err),
			)
			s.recordBatch(ctx, runID, "inventory", location.ID, len(chunk), false, err.Error())
			continue
		}
		report.InventorySucceeded += len(chunk)
		s.recordBatch(ctx, runID, "inventory", location.ID, len(chunk), true, "")
	}
}

func (s *Service) startAudit(ctx context.Context) string {
	if s.recorder == nil {
		return ""
	}
	runID, err := s.recorder.StartRun(ctx, s.cfg.File, s.cfg.LocationName)
	if err != nil {
		s.logger.Warn("audit trail unavailable", zap.Error(err))
		return ""
	}
	return runID
}

func (s *Service) recordBatch(ctx context.Context, runID, kind, targetID string, size int, ok bool, errText string) {
	if s.recorder == nil || runID == "" {
		return
	}
	if err := s.recorder.RecordBatch(ctx, runID, kind, targetID, size, ok, errText); err != nil {
		s.logger.Warn("audit batch record failed", zap.Error(err))
	}
}

func (s *Service) finishAudit(ctx context.Context, runID string, report *Report) {
	if s.recorder == nil || runID == "" {
		return
	}
	err := s.recorder.FinishRun(ctx, runID, string(report.Phase), audit.Summary{
		PriceAttempted:     report.PriceAttempted,
		PriceSucceeded:     report.PriceSucceeded,
		InventoryAttempted: report.InventoryAttempted,
		InventorySucceeded: report.InventorySucceeded,
		SkippedRows:        report.SkippedRows,
	})
	if err != nil {
		s.logger.Warn("audit run record failed", zap.Error(err))
	}
}
