package sync

// Config holds configuration for the spreadsheet input and the target
// location. Column positions use spreadsheet letter references (A, B, ...,
// AA, AB, ...).
type Config struct {
	// File is the path to the delimited export file.
	File string `mapstructure:"file" default:""`
	// Delimiter separates columns in the export file.
	Delimiter string `mapstructure:"delimiter" default:";"`
	// SKUColumn is the letter reference of the SKU column.
	SKUColumn string `mapstructure:"sku_column" default:"BK"`
	// NameColumn is the letter reference of the product name column.
	NameColumn string `mapstructure:"name_column" default:"C"`
	// PriceColumn is the letter reference of the new price column.
	PriceColumn string `mapstructure:"price_column" default:"N"`
	// StockColumn is the letter reference of the new stock column.
	StockColumn string `mapstructure:"stock_column" default:"AB"`
	// LocationName is the exact display name of the stock location.
	LocationName string `mapstructure:"location_name" default:""`
}

// DelimiterRune returns the configured delimiter as a rune, defaulting to
// a semicolon.
func (c Config) DelimiterRune() rune {
	for _, r := range c.Delimiter {
		return r
	}
	return ';'
}
