// Package config provides configuration management for the sync tool.
//
// It utilizes Viper for loading configuration from environment variables
// and an optional .env file.
//
// # Configuration Structure
//
// The Config struct is the central repository for all application settings,
// divided into subsections:
//   - Shopify: shop domain, access token, API version, retry/backoff tuning
//   - CSV: input file path, delimiter, column letters, location name
//   - Log: logging level and format
//   - Audit: audit trail database settings
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Shopify.ShopDomain)
package config
