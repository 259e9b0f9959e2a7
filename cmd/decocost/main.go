// decocost CLI - decoration pricing platform
//
// Usage:
//   decocost quote --product <id> --quantity 24 [options]
//   decocost serve [--port 8080]
//   decocost catalog seed
//   decocost catalog list
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"decoration-cost/api"
	"decoration-cost/catalog"
	"decoration-cost/db/clickhouse"
	"decoration-cost/db/postgres"
	"decoration-cost/decision/pricing"
	wire "decoration-cost/pkg/api"
	"decoration-cost/pkg/platform"
)

var (
	version = "dev"
	commit  = "none"
)

func main() {
	// .env is a development convenience; missing file is fine.
	_ = godotenv.Load()

	app := &cli.App{
		Name:    "decocost",
		Usage:   "Decoration pricing platform - rule-resolution quoting for custom merchandise",
		Version: fmt.Sprintf("%s (commit: %s)", version, commit),

		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "info",
				Usage:   "Log level (debug, info, warn, error)",
				EnvVars: []string{"DECOCOST_LOG_LEVEL"},
			},
			&cli.StringFlag{
				Name:    "store",
				Value:   "memory",
				Usage:   "Catalog backend (memory, postgres)",
				EnvVars: []string{"DECOCOST_STORE"},
			},
			&cli.StringFlag{
				Name:    "postgres-dsn",
				Value:   "postgres://localhost:5432/decoration_cost?sslmode=disable",
				Usage:   "Postgres DSN for the catalog store",
				EnvVars: []string{"DECOCOST_POSTGRES_DSN"},
			},
			&cli.BoolFlag{
				Name:    "audit",
				Value:   false,
				Usage:   "Record computed quotes to the ClickHouse audit store",
				EnvVars: []string{"DECOCOST_AUDIT"},
			},
			&cli.StringFlag{
				Name:    "clickhouse-host",
				Value:   "localhost",
				Usage:   "ClickHouse host for the quote audit store",
				EnvVars: []string{"CLICKHOUSE_HOST"},
			},
			&cli.IntFlag{
				Name:    "clickhouse-port",
				Value:   9000,
				Usage:   "ClickHouse native port",
				EnvVars: []string{"CLICKHOUSE_PORT"},
			},
			&cli.StringFlag{
				Name:    "clickhouse-database",
				Value:   "decoration_cost",
				Usage:   "ClickHouse database",
				EnvVars: []string{"CLICKHOUSE_DATABASE"},
			},
			&cli.StringFlag{
				Name:    "clickhouse-user",
				Value:   "default",
				Usage:   "ClickHouse user",
				EnvVars: []string{"CLICKHOUSE_USER"},
			},
			&cli.StringFlag{
				Name:    "clickhouse-password",
				Value:   "",
				Usage:   "ClickHouse password",
				EnvVars: []string{"CLICKHOUSE_PASSWORD"},
			},
		},

		Commands: []*cli.Command{
			quoteCommand(),
			serveCommand(),
			catalogCommand(),
			auditCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// openCatalog builds the configured catalog backend. The memory backend
// comes pre-seeded with the demo catalog so quoting works out of the box.
func openCatalog(c *cli.Context) (api.CatalogStore, func(), error) {
	switch c.String("store") {
	case "postgres":
		store, err := postgres.NewStore(c.String("postgres-dsn"))
		if err != nil {
			return nil, nil, err
		}
		return store, func() { store.Close() }, nil
	default:
		store := catalog.NewMemoryStore()
		catalog.SeedDemo(store)
		return store, func() {}, nil
	}
}

func openRecorder(c *cli.Context) (*clickhouse.AuditStore, error) {
	store, err := clickhouse.NewAuditStore(&clickhouse.Config{
		Host:     c.String("clickhouse-host"),
		Port:     c.Int("clickhouse-port"),
		Database: c.String("clickhouse-database"),
		Username: c.String("clickhouse-user"),
		Password: c.String("clickhouse-password"),
	})
	if err != nil {
		return nil, err
	}
	if err := store.EnsureSchema(context.Background()); err != nil {
		store.Close()
		return nil, err
	}
	return store, nil
}

// =============================================================================
// QUOTE COMMAND
// =============================================================================

func quoteCommand() *cli.Command {
	return &cli.Command{
		Name:  "quote",
		Usage: "Price a decoration request against the catalog",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "product",
				Aliases:  []string{"p"},
				Usage:    "Decoration product ID",
				Required: true,
			},
			&cli.IntFlag{
				Name:     "quantity",
				Aliases:  []string{"q"},
				Usage:    "Order quantity",
				Required: true,
			},
			&cli.Float64Flag{
				Name:  "width",
				Usage: "Decoration width in inches",
			},
			&cli.Float64Flag{
				Name:  "height",
				Usage: "Decoration height in inches",
			},
			&cli.IntFlag{
				Name:  "colors",
				Usage: "Color count",
			},
			&cli.StringFlag{
				Name:  "artwork",
				Usage: "Artwork type (EASY_PRINTS, VECTOR, NON_VECTOR)",
			},
			&cli.StringFlag{
				Name:  "variant",
				Usage: "Variant type tag",
			},
			&cli.BoolFlag{
				Name:  "rush",
				Usage: "Request rush service",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Value:   "table",
				Usage:   "Output format (table, json)",
			},
		},
		Action: runQuote,
	}
}

func runQuote(c *cli.Context) error {
	logger := platform.InitLogger(c.String("log-level"))
	ctx := context.Background()

	store, closeStore, err := openCatalog(c)
	if err != nil {
		return fmt.Errorf("failed to open catalog store: %w", err)
	}
	defer closeStore()

	wireReq := buildWireRequest(c)
	req, err := wireReq.ToDomain()
	if err != nil {
		return err
	}

	engine := pricing.NewEngine(store).WithLogger(logger)
	result, err := engine.Calculate(ctx, req)
	if err != nil {
		return err
	}

	if c.Bool("audit") {
		recorder, err := openRecorder(c)
		if err != nil {
			return fmt.Errorf("failed to open audit store: %w", err)
		}
		defer recorder.Close()
		rec := pricing.NewAuditRecord(req, result, "cli")
		if err := recorder.RecordQuote(ctx, rec); err != nil {
			logger.Warn().Err(err).Msg("quote audit write failed")
		}
	}

	if c.String("format") == "json" {
		return outputQuoteJSON(result)
	}
	outputQuoteTable(result)
	return nil
}

func buildWireRequest(c *cli.Context) wire.QuoteRequest {
	req := wire.QuoteRequest{
		DecorationProductID: c.String("product"),
		Quantity:            c.Int("quantity"),
		RushService:         c.Bool("rush"),
	}
	if c.IsSet("width") {
		v := c.Float64("width")
		req.Width = &v
	}
	if c.IsSet("height") {
		v := c.Float64("height")
		req.Height = &v
	}
	if c.IsSet("colors") {
		v := c.Int("colors")
		req.ColorCount = &v
	}
	if c.IsSet("artwork") {
		v := c.String("artwork")
		req.ArtworkType = &v
	}
	if c.IsSet("variant") {
		v := c.String("variant")
		req.VariantType = &v
	}
	return req
}

func outputQuoteJSON(result *pricing.QuoteResult) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func outputQuoteTable(result *pricing.QuoteResult) {
	fmt.Println()
	fmt.Println("QUOTE")
	fmt.Println("-----------------------------------------------")
	for _, line := range result.Breakdown {
		marker := " "
		if !line.Included {
			marker = "*"
		}
		fmt.Printf("  %-34s %s$%s\n", line.Description, marker, line.TotalPrice.StringFixed(2))
	}
	fmt.Println("-----------------------------------------------")
	fmt.Printf("  %-34s  $%s\n", "TOTAL", result.TotalPrice.StringFixed(2))
	if result.Applied != nil {
		fmt.Printf("\n  Applied rule: min qty %d", result.Applied.MinQuantity)
		if result.Applied.MaxQuantity != nil {
			fmt.Printf("-%d", *result.Applied.MaxQuantity)
		}
		if result.Applied.SizeRange != nil {
			fmt.Printf(", size %s", *result.Applied.SizeRange)
		}
		if result.Applied.ColorCount != nil {
			fmt.Printf(", %d colors", *result.Applied.ColorCount)
		}
		fmt.Println()
	} else {
		fmt.Printf("\n  Priced from legacy flat cost model\n")
	}
	for _, w := range result.Warnings {
		fmt.Printf("  Warning: %s\n", w.Message)
	}
	if result.FeeTotal(pricing.LineEdit) != nil {
		fmt.Println("  * edit fee shown for reference, not included in total")
	}
	fmt.Println()
}

// =============================================================================
// SERVE COMMAND
// =============================================================================

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the pricing HTTP API",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Value:   8080,
				Usage:   "HTTP listen port",
				EnvVars: []string{"PORT"},
			},
		},
		Action: runServe,
	}
}

func runServe(c *cli.Context) error {
	logger := platform.InitLogger(c.String("log-level"))

	store, closeStore, err := openCatalog(c)
	if err != nil {
		return fmt.Errorf("failed to open catalog store: %w", err)
	}
	defer closeStore()

	config := api.DefaultConfig()
	config.Port = c.Int("port")

	server := api.NewServer(store, config, logger)
	if c.Bool("audit") {
		recorder, err := openRecorder(c)
		if err != nil {
			return fmt.Errorf("failed to open audit store: %w", err)
		}
		defer recorder.Close()
		server.WithRecorder(recorder)
	}

	return server.StartWithGracefulShutdown()
}

// =============================================================================
// CATALOG COMMANDS
// =============================================================================

func catalogCommand() *cli.Command {
	return &cli.Command{
		Name:  "catalog",
		Usage: "Catalog administration",
		Subcommands: []*cli.Command{
			{
				Name:   "seed",
				Usage:  "Write the demo catalog into the Postgres store",
				Action: runCatalogSeed,
			},
			{
				Name:   "list",
				Usage:  "List decoration products",
				Action: runCatalogList,
			},
		},
	}
}

func runCatalogSeed(c *cli.Context) error {
	ctx := context.Background()

	store, err := postgres.NewStore(c.String("postgres-dsn"))
	if err != nil {
		return fmt.Errorf("failed to open postgres: %w", err)
	}
	defer store.Close()

	if err := store.EnsureSchema(ctx); err != nil {
		return err
	}

	// Build the demo catalog in memory and copy it across.
	mem := catalog.NewMemoryStore()
	catalog.SeedDemo(mem)

	products, err := mem.ListProducts(ctx)
	if err != nil {
		return err
	}
	for _, p := range products {
		if err := store.UpsertProduct(ctx, p); err != nil {
			return err
		}
		buckets, err := mem.GetSizeBuckets(ctx, p.ID)
		if err != nil {
			return err
		}
		for _, b := range buckets {
			if err := store.UpsertSizeBucket(ctx, b); err != nil {
				return err
			}
		}
		records, err := mem.GetPricingRecords(ctx, p.ID)
		if err != nil {
			return err
		}
		for _, r := range records {
			if err := store.UpsertPricingRecord(ctx, r); err != nil {
				return err
			}
		}
		fmt.Printf("seeded %s (%s)\n", p.Name, p.ID)
	}
	return nil
}

// =============================================================================
// AUDIT COMMANDS
// =============================================================================

func auditCommand() *cli.Command {
	return &cli.Command{
		Name:  "audit",
		Usage: "Quote audit reporting",
		Subcommands: []*cli.Command{
			{
				Name:  "recent",
				Usage: "Show the latest quotes recorded for a product",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "product",
						Aliases:  []string{"p"},
						Usage:    "Decoration product ID",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "limit",
						Value: 20,
						Usage: "Maximum rows to show",
					},
				},
				Action: runAuditRecent,
			},
		},
	}
}

func runAuditRecent(c *cli.Context) error {
	ctx := context.Background()

	productID, err := uuid.Parse(c.String("product"))
	if err != nil {
		return fmt.Errorf("invalid product id: %w", err)
	}

	store, err := openRecorder(c)
	if err != nil {
		return fmt.Errorf("failed to open audit store: %w", err)
	}
	defer store.Close()

	quotes, err := store.RecentQuotes(ctx, productID, c.Int("limit"))
	if err != nil {
		return err
	}

	fmt.Printf("%-38s %-8s %-12s %-12s %s\n", "ID", "QTY", "TOTAL", "STRATEGY", "AT")
	for _, q := range quotes {
		fmt.Printf("%-38s %-8d $%-11s %-12s %s\n",
			q.ID, q.Quantity, q.TotalPrice, q.Strategy, q.CreatedAt.Format("2006-01-02 15:04:05"))
	}
	return nil
}

func runCatalogList(c *cli.Context) error {
	ctx := context.Background()

	store, closeStore, err := openCatalog(c)
	if err != nil {
		return fmt.Errorf("failed to open catalog store: %w", err)
	}
	defer closeStore()

	products, err := store.ListProducts(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("%-38s %-32s %-8s %s\n", "ID", "NAME", "MIN QTY", "PRICING")
	for _, p := range products {
		model := "rules"
		records, err := store.GetPricingRecords(ctx, p.ID)
		if err != nil {
			return err
		}
		if len(records) == 0 {
			model = "none"
			if p.HasLegacyCosts() {
				model = "legacy"
			}
		}
		fmt.Printf("%-38s %-32s %-8d %s\n", p.ID, p.Name, p.MinQuantity, model)
	}
	return nil
}
