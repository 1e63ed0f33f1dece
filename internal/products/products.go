package products

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/scentswap/tradepost/internal/models"
)

// ErrProductNotFound is returned when no product matches the lookup
var ErrProductNotFound = errors.New("product not found")

// Service reads the product catalog that trades reference
type Service struct {
	db *pgxpool.Pool
}

// NewService creates a new products service
func NewService(db *pgxpool.Pool) *Service {
	return &Service{db: db}
}

const productColumns = `id, name, brand, description, type, price, created_at, updated_at`

func scanProduct(row pgx.Row) (*models.Product, error) {
	var p models.Product
	err := row.Scan(
		&p.ID, &p.Name, &p.Brand, &p.Description, &p.Type,
		&p.Price, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetByID retrieves a product by ID
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, err := scanProduct(s.db.QueryRow(ctx, `
		SELECT `+productColumns+` FROM products WHERE id = $1
	`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return product, nil
}

// Search retrieves products whose name or brand matches the query, newest
// first. An empty query lists the newest products.
func (s *Service) Search(ctx context.Context, query string, limit int) ([]models.Product, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	rows, err := s.db.Query(ctx, `
		SELECT `+productColumns+` FROM products
		WHERE $1 = '' OR name ILIKE '%' || $1 || '%' OR brand ILIKE '%' || $1 || '%'
		ORDER BY created_at DESC
		LIMIT $2
	`, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search products: %w", err)
	}
	defer rows.Close()

	var prods []models.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		prods = append(prods, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate products: %w", err)
	}
	return prods, nil
}
