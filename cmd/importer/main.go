package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"freshcart/internal/config"
	"freshcart/internal/db"
	"freshcart/internal/importer"
	"freshcart/internal/repository/product"
	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	var filePath string
	flag.StringVar(&filePath, "file", "", "Path to grocery catalog CSV")
	flag.Parse()

	if filePath == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[importer] ", log.LstdFlags|log.LUTC|log.Lshortfile)
	ctx := context.Background()

	pool, err := db.Connect(ctx, cfg.DBConnString, cfg.DBMaxConns)
	if err != nil {
		logger.Fatalf("connect db: %v", err)
	}
	defer pool.Close()

	f, err := os.Open(filePath)
	if err != nil {
		logger.Fatalf("open file: %v", err)
	}
	defer f.Close()

	imp := importer.NewCSVImporter(f, product.NewPostgres(pool, logger), ensureCategory(pool))

	start := time.Now()
	count, err := imp.Run(ctx)
	if err != nil {
		logger.Fatalf("import failed: %v", err)
	}

	fmt.Printf("Imported %d products in %s\n", count, time.Since(start).Truncate(time.Millisecond))
}

func ensureCategory(pool *pgxpool.Pool) importer.CategoryResolver {
	const q = `
INSERT INTO categories (name)
VALUES ($1)
ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
RETURNING id::text
`
	return func(ctx context.Context, name string) (string, error) {
		var id string
		if err := pool.QueryRow(ctx, q, name).Scan(&id); err != nil {
			return "", err
		}
		return id, nil
	}
}
