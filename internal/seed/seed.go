package seed

import (
	"context"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"
)

type categorySeed struct {
	Name        string
	Description string
	SortOrder   int
}

type productSeed struct {
	Category    string
	Name        string
	Description string
	PriceCents  int64
	Unit        string
	Stock       int
}

// Apply inserts demo catalog data and an admin account for manual testing.
// It is idempotent via ON CONFLICT.
func Apply(ctx context.Context, pool *pgxpool.Pool) error {
	categories := []categorySeed{
		{Name: "Fruits & Vegetables", Description: "Fresh produce picked daily", SortOrder: 1},
		{Name: "Dairy & Eggs", Description: "Milk, cheese, yogurt and eggs", SortOrder: 2},
		{Name: "Bakery", Description: "Bread and pastries baked in-store", SortOrder: 3},
		{Name: "Pantry", Description: "Staples, grains and canned goods", SortOrder: 4},
	}

	categoryIDs := make(map[string]string, len(categories))
	for _, c := range categories {
		id, err := ensureCategory(ctx, pool, c)
		if err != nil {
			return fmt.Errorf("ensure category %s: %w", c.Name, err)
		}
		categoryIDs[c.Name] = id
	}

	products := []productSeed{
		{Category: "Fruits & Vegetables", Name: "Organic Apples", Description: "Crisp organic apples", PriceCents: 299, Unit: "lb", Stock: 120},
		{Category: "Fruits & Vegetables", Name: "Bananas", Description: "Ripe bananas", PriceCents: 59, Unit: "lb", Stock: 200},
		{Category: "Fruits & Vegetables", Name: "Baby Spinach", Description: "Washed baby spinach", PriceCents: 349, Unit: "bag", Stock: 60},
		{Category: "Dairy & Eggs", Name: "Whole Milk", Description: "Grade A whole milk", PriceCents: 419, Unit: "gallon", Stock: 80},
		{Category: "Dairy & Eggs", Name: "Large Eggs", Description: "Cage-free large eggs, dozen", PriceCents: 499, Unit: "dozen", Stock: 90},
		{Category: "Bakery", Name: "Sourdough Loaf", Description: "Naturally leavened sourdough", PriceCents: 649, Unit: "each", Stock: 30},
		{Category: "Pantry", Name: "Basmati Rice", Description: "Aged basmati rice", PriceCents: 899, Unit: "2 lb bag", Stock: 50},
		{Category: "Pantry", Name: "Olive Oil", Description: "Extra virgin olive oil", PriceCents: 1299, Unit: "500 ml", Stock: 40},
	}

	for _, p := range products {
		if err := upsertProduct(ctx, pool, categoryIDs[p.Category], p); err != nil {
			return fmt.Errorf("upsert product %s: %w", p.Name, err)
		}
	}

	if err := ensureAdmin(ctx, pool); err != nil {
		return fmt.Errorf("ensure admin: %w", err)
	}
	return nil
}

func ensureCategory(ctx context.Context, pool *pgxpool.Pool, c categorySeed) (string, error) {
	const q = `
INSERT INTO categories (name, description, sort_order)
VALUES ($1, $2, $3)
ON CONFLICT (name) DO UPDATE
SET description = EXCLUDED.description,
    sort_order = EXCLUDED.sort_order
RETURNING id::text
`
	var id string
	if err := pool.QueryRow(ctx, q, c.Name, c.Description, c.SortOrder).Scan(&id); err != nil {
		return "", err
	}
	return id, nil
}

func upsertProduct(ctx context.Context, pool *pgxpool.Pool, categoryID string, p productSeed) error {
	const q = `
INSERT INTO products (category_id, name, description, price_cents, unit, stock)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (name) DO UPDATE
SET category_id = EXCLUDED.category_id,
    description = EXCLUDED.description,
    price_cents = EXCLUDED.price_cents,
    unit = EXCLUDED.unit,
    stock = EXCLUDED.stock
`
	_, err := pool.Exec(ctx, q, categoryID, p.Name, p.Description, p.PriceCents, p.Unit, p.Stock)
	return err
}

// ensureAdmin creates the bootstrap admin if no row holds its email yet.
// The password comes from SEED_ADMIN_PASSWORD; the default only suits local
// development.
func ensureAdmin(ctx context.Context, pool *pgxpool.Pool) error {
	password := os.Getenv("SEED_ADMIN_PASSWORD")
	if password == "" {
		password = "freshcart-admin"
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	const q = `
INSERT INTO users (email, password_hash, first_name, last_name, role)
VALUES ($1, $2, 'Store', 'Admin', 'admin')
ON CONFLICT (email) DO NOTHING
`
	_, err = pool.Exec(ctx, q, "admin@freshcart.local", string(hashed))
	return err
}
