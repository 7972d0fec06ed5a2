package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/Bebin29/shpysync/core/config"
	"github.com/Bebin29/shpysync/core/logger"
	"github.com/Bebin29/shpysync/core/shopify"
	"github.com/Bebin29/shpysync/feature/catalog"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// locationsCmd lists the store's inventory locations, to help pick the
// right CSV_LOCATION_NAME.
var locationsCmd = &cobra.Command{
	Use:   "locations",
	Short: "List the store's inventory locations",
	RunE:  runLocations,
}

func init() {
	RootCmd.AddCommand(locationsCmd)
}

func runLocations(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.LoadConfig(".")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	l, err := logger.New(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = l.Sync() }()

	if cfg.Shopify.ShopDomain == "" || cfg.Shopify.AccessToken == "" {
		return errors.New("SHOPIFY_SHOP_DOMAIN and SHOPIFY_ACCESS_TOKEN must be set")
	}

	api := shopify.NewClient(cfg.Shopify, &http.Client{Timeout: cfg.Shopify.Timeout()}, l)
	store := catalog.NewClient(api, l)

	locations, err := store.FetchLocations(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch locations: %w", err)
	}

	l.Info("Locations fetched", zap.Int("count", len(locations)))
	for _, loc := range locations {
		fmt.Printf("%s\t%s\n", loc.ID, loc.Name)
	}
	return nil
}
