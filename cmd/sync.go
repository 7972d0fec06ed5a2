package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/Bebin29/shpysync/core/audit"
	"github.com/Bebin29/shpysync/core/config"
	"github.com/Bebin29/shpysync/core/logger"
	"github.com/Bebin29/shpysync/core/shopify"
	"github.com/Bebin29/shpysync/feature/catalog"
	syncfeature "github.com/Bebin29/shpysync/feature/sync"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Flags for the sync command
	syncFile     string
	syncLocation string
	syncSKUCol   string
	syncNameCol  string
	syncPriceCol string
	syncStockCol string
	syncDelim    string
	dryRunSync   bool
	yesConfirm   bool
)

// syncCmd pushes CSV prices and stock levels into the store.
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Sync prices and stock from a CSV file into Shopify",
	Long: `Sync reads a CSV price/stock export, matches each row against the
store's catalog (by SKU, then by product name), and applies the updates
via bulk mutations.

Nothing is written before an interactive confirmation (or --yes).

Examples:
  # Preview only, no writes
  shpysync sync --file artikel.csv --dry-run

  # Apply with interactive confirmation
  shpysync sync --file artikel.csv --location "Main Warehouse"

  # Apply non-interactively
  shpysync sync --file artikel.csv --yes`,
	RunE: runSync,
}

func init() {
	syncCmd.Flags().StringVar(&syncFile, "file", "", "CSV file to import (overrides CSV_FILE)")
	syncCmd.Flags().StringVar(&syncLocation, "location", "", "Inventory location name (overrides CSV_LOCATION_NAME)")
	syncCmd.Flags().StringVar(&syncSKUCol, "sku-col", "", "SKU column letter, e.g. BK")
	syncCmd.Flags().StringVar(&syncNameCol, "name-col", "", "Name column letter, e.g. C")
	syncCmd.Flags().StringVar(&syncPriceCol, "price-col", "", "Price column letter, e.g. N")
	syncCmd.Flags().StringVar(&syncStockCol, "stock-col", "", "Stock column letter, e.g. AB")
	syncCmd.Flags().StringVar(&syncDelim, "delimiter", "", "CSV field delimiter")
	syncCmd.Flags().BoolVar(&dryRunSync, "dry-run", false, "Plan and preview only, no mutations")
	syncCmd.Flags().BoolVar(&yesConfirm, "yes", false, "Auto-confirm the write phase (non-interactive)")

	RootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	// Load configuration
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applySyncFlags(cfg)

	// Initialize logger
	l, err := logger.New(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = l.Sync() }()

	if cfg.Shopify.ShopDomain == "" || cfg.Shopify.AccessToken == "" {
		return errors.New("SHOPIFY_SHOP_DOMAIN and SHOPIFY_ACCESS_TOKEN must be set")
	}
	if cfg.CSV.File == "" {
		return errors.New("no input file; set CSV_FILE or pass --file")
	}

	l.Info("Starting catalog sync",
		zap.String("file", cfg.CSV.File),
		zap.String("shop", cfg.Shopify.ShopDomain),
		zap.Bool("dry_run", dryRunSync),
	)

	// Shopify Admin API client
	api := shopify.NewClient(cfg.Shopify, &http.Client{Timeout: cfg.Shopify.Timeout()}, l)
	store := catalog.NewClient(api, l)

	// Audit trail is best-effort; a broken database never blocks the sync.
	var recorder syncfeature.Recorder
	if cfg.Audit.Enabled {
		db, err := audit.Connect(cfg.Audit)
		if err != nil {
			l.Warn("audit database unavailable, continuing without audit trail", zap.Error(err))
		} else {
			recorder = audit.NewStore(db)
		}
	}

	service := syncfeature.NewService(syncfeature.Params{
		API:       store,
		Config:    cfg.CSV,
		BatchSize: cfg.Shopify.BatchSize,
		Logger:    l,
		Confirm:   confirmWritePhase,
		Recorder:  recorder,
	})

	report, err := service.Run(ctx, syncfeature.Options{DryRun: dryRunSync})
	if err != nil {
		return err
	}

	printSyncReport(l, report)
	return nil
}

// applySyncFlags lets command-line flags override the environment config.
func applySyncFlags(cfg *config.Config) {
	if syncFile != "" {
		cfg.CSV.File = syncFile
	}
	if syncLocation != "" {
		cfg.CSV.LocationName = syncLocation
	}
	if syncSKUCol != "" {
		cfg.CSV.SKUColumn = syncSKUCol
	}
	if syncNameCol != "" {
		cfg.CSV.NameColumn = syncNameCol
	}
	if syncPriceCol != "" {
		cfg.CSV.PriceColumn = syncPriceCol
	}
	if syncStockCol != "" {
		cfg.CSV.StockColumn = syncStockCol
	}
	if syncDelim != "" {
		cfg.CSV.Delimiter = syncDelim
	}
}

// printSyncReport prints the final accounting of a run.
func printSyncReport(l *zap.Logger, report *syncfeature.Report) {
	l.Info("Sync report",
		zap.String("phase", string(report.Phase)),
		zap.String("prices", fmt.Sprintf("%d/%d", report.PriceSucceeded, report.PriceAttempted)),
		zap.String("inventory", fmt.Sprintf("%d/%d", report.InventorySucceeded, report.InventoryAttempted)),
		zap.Int("rows_skipped", report.SkippedRows),
		zap.Int("duplicates_coalesced", report.DuplicateItems),
	)
}

// confirmWritePhase prompts the user for confirmation or uses --yes flag.
func confirmWritePhase() bool {
	if yesConfirm {
		fmt.Println("\n✓ Auto-confirmed via --yes flag")
		return true
	}

	fmt.Print("\n⚠️  Type 'yes' to apply the updates above: ")
	reader := bufio.NewReader(os.Stdin)
	response, err := reader.ReadString('\n')
	if err != nil {
		return false
	}

	response = strings.TrimSpace(response)
	return response == "yes"
}
