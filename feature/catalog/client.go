package catalog

import (
	"context"
	"errors"

	"github.com/Bebin29/shpysync/core/shopify"

	"go.uber.org/zap"
)

// ErrLocationNotFound is returned when no location matches the configured
// name exactly. The caller aborts the run before any writes.
var ErrLocationNotFound = errors.New("location not found")

// maxPageSize is the hard upper bound the Admin API accepts per page.
const maxPageSize = 250

const productsQuery = `
query ListProducts($first: Int!, $after: String) {
	products(first: $first, after: $after, sortKey: ID) {
		pageInfo { hasNextPage endCursor }
		edges {
			node {
				id
				title
				variants(first: 250) {
					edges {
						node {
							id
							sku
							barcode
							price
							title
							inventoryItem { id }
						}
					}
				}
			}
		}
	}
}`

const locationsQuery = `
query ListLocations($first: Int!, $after: String) {
	locations(first: $first, after: $after) {
		pageInfo { hasNextPage endCursor }
		edges { node { id name } }
	}
}`

type pageInfo struct {
	HasNextPage bool   `json:"hasNextPage"`
	EndCursor   string `json:"endCursor"`
}

type productsQueryData struct {
	Products struct {
		PageInfo pageInfo `json:"pageInfo"`
		Edges    []struct {
			Node struct {
				ID       string `json:"id"`
				Title    string `json:"title"`
				Variants struct {
					Edges []struct {
						Node struct {
							ID            string `json:"id"`
							SKU           string `json:"sku"`
							Barcode       string `json:"barcode"`
							Price         string `json:"price"`
							Title         string `json:"title"`
							InventoryItem *struct {
								ID string `json:"id"`
							} `json:"inventoryItem"`
						} `json:"node"`
					} `json:"edges"`
				} `json:"variants"`
			} `json:"node"`
		} `json:"edges"`
	} `json:"products"`
}

type locationsQueryData struct {
	Locations struct {
		PageInfo pageInfo `json:"pageInfo"`
		Edges    []struct {
			Node struct {
				ID   string `json:"id"`
				Name string `json:"name"`
			} `json:"node"`
		} `json:"edges"`
	} `json:"locations"`
}

// Client reads and mutates the shop catalog through the GraphQL transport.
type Client struct {
	api    *shopify.Client
	logger *zap.Logger
}

// NewClient creates a catalog client on top of the transport.
func NewClient(api *shopify.Client, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{api: api, logger: logger}
}

func (c *Client) pageSize() int {
	size := c.api.Config().PageSize
	if size <= 0 || size > maxPageSize {
		return maxPageSize
	}
	return size
}

// FetchProducts loads the full product catalog via cursor pagination.
func (c *Client) FetchProducts(ctx context.Context) ([]Product, error) {
	var (
		products []Product
		after    *string
		page     int
	)

	for {
		page++
		variables := map[string]any{"first": c.pageSize()}
		if after != nil {
			variables["after"] = *after
		}

		var data productsQueryData
		if err := c.api.Execute(ctx, productsQuery, variables, &data); err != nil {
			return nil, err
		}

		c.logger.Info("products page loaded",
			zap.Int("page", page),
			zap.Int("edges", len(data.Products.Edges)),
			zap.Bool("has_next", data.Products.PageInfo.HasNextPage),
		)

		for _, edge := range data.Products.Edges {
			node := edge.Node
			product := Product{
				ID:       node.ID,
				Title:    node.Title,
				Variants: make([]Variant, 0, len(node.Variants.Edges)),
			}
			for _, vedge := range node.Variants.Edges {
				v := vedge.Node
				variant := Variant{
					ID:        v.ID,
					ProductID: node.ID,
					SKU:       v.SKU,
					Barcode:   v.Barcode,
					Title:     v.Title,
					Price:     v.Price,
				}
				if v.InventoryItem != nil {
					variant.InventoryItemID = v.InventoryItem.ID
				}
				product.Variants = append(product.Variants, variant)
			}
			products = append(products, product)
		}

		if !data.Products.PageInfo.HasNextPage {
			break
		}
		cursor := data.Products.PageInfo.EndCursor
		after = &cursor
	}

	c.logger.Info("catalog loaded", zap.Int("products", len(products)))
	return products, nil
}

// FetchLocations loads the full list of locations via cursor pagination.
func (c *Client) FetchLocations(ctx context.Context) ([]Location, error) {
	var (
		locations []Location
		after     *string
	)

	for {
		variables := map[string]any{"first": c.pageSize()}
		if after != nil {
			variables["after"] = *after
		}

		var data locationsQueryData
		if err := c.api.Execute(ctx, locationsQuery, variables, &data); err != nil {
			return nil, err
		}

		for _, edge := range data.Locations.Edges {
			locations = append(locations, Location{ID: edge.Node.ID, Name: edge.Node.Name})
		}

		if !data.Locations.PageInfo.HasNextPage {
			break
		}
		cursor := data.Locations.PageInfo.EndCursor
		after = &cursor
	}

	return locations, nil
}

// FindLocationByName scans location pages until it finds an exact name
// match, returning immediately without accumulating the full list. A scan
// that exhausts all pages yields ErrLocationNotFound.
func (c *Client) FindLocationByName(ctx context.Context, name string) (Location, error) {
	var after *string

	for {
		variables := map[string]any{"first": c.pageSize()}
		if after != nil {
			variables["after"] = *after
		}

		var data locationsQueryData
		if err := c.api.Execute(ctx, locationsQuery, variables, &data); err != nil {
			return Location{}, err
		}

		for _, edge := range data.Locations.Edges {
			if edge.Node.Name == name {
				return Location{ID: edge.Node.ID, Name: edge.Node.Name}, nil
			}
		}

		if !data.Locations.PageInfo.HasNextPage {
			return Location{}, ErrLocationNotFound
		}
		cursor := data.Locations.PageInfo.EndCursor
		after = &cursor
	}
}
