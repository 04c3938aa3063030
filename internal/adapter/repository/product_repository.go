package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hugohenrick/pos-joalheria/internal/domain/inventory"
	"github.com/hugohenrick/pos-joalheria/internal/domain/product"
)

// Erros específicos do repositório
var (
	ErrProductNotFound     = errors.New("produto não encontrado")
	ErrProductDuplicateSKU = errors.New("produto com mesmo SKU já existe")
	ErrProductReferenced   = errors.New("produto referenciado por vendas não pode ser excluído")
)

// ProductRepository implementa a interface product.Repository
type ProductRepository struct {
	db *pgxpool.Pool
}

// NewProductRepository cria uma nova instância de ProductRepository
func NewProductRepository(db *pgxpool.Pool) product.Repository {
	return &ProductRepository{
		db: db,
	}
}

const productColumns = `id, sku, name, category, price, stock_quantity, min_stock_level, created_at, updated_at`

// Create implementa product.Repository.Create
func (r *ProductRepository) Create(ctx context.Context, p *product.Product) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO products (
			id, sku, name, category, price, stock_quantity, min_stock_level,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		p.ID, p.SKU, p.Name, p.Category, p.Price, p.StockQuantity,
		p.MinStockLevel, p.CreatedAt, p.UpdatedAt)

	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			return ErrProductDuplicateSKU
		}
		return fmt.Errorf("erro ao criar produto: %w", err)
	}

	return nil
}

// FindByID implementa product.Repository.FindByID
func (r *ProductRepository) FindByID(ctx context.Context, id string) (*product.Product, error) {
	return r.scanProductRow(r.db.QueryRow(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = $1`, id))
}

// FindBySKU implementa product.Repository.FindBySKU
func (r *ProductRepository) FindBySKU(ctx context.Context, sku string) (*product.Product, error) {
	return r.scanProductRow(r.db.QueryRow(ctx,
		`SELECT `+productColumns+` FROM products WHERE sku = $1`, sku))
}

// List implementa product.Repository.List
func (r *ProductRepository) List(ctx context.Context, limit, offset int) ([]*product.Product, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+productColumns+` FROM products ORDER BY name ASC LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, fmt.Errorf("erro ao listar produtos: %w", err)
	}
	defer rows.Close()

	return r.scanProductRows(rows)
}

// FindByName implementa product.Repository.FindByName
func (r *ProductRepository) FindByName(ctx context.Context, name string, limit, offset int) ([]*product.Product, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+productColumns+` FROM products
		WHERE name ILIKE $1 OR sku ILIKE $1
		ORDER BY name ASC
		LIMIT $2 OFFSET $3`,
		"%"+name+"%", limit, offset)
	if err != nil {
		return nil, fmt.Errorf("erro ao buscar produtos: %w", err)
	}
	defer rows.Close()

	return r.scanProductRows(rows)
}

// FindLowStock implementa product.Repository.FindLowStock
func (r *ProductRepository) FindLowStock(ctx context.Context, limit, offset int) ([]*product.Product, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+productColumns+` FROM products
		WHERE stock_quantity <= min_stock_level
		ORDER BY stock_quantity ASC
		LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, fmt.Errorf("erro ao listar produtos com estoque baixo: %w", err)
	}
	defer rows.Close()

	return r.scanProductRows(rows)
}

// Update implementa product.Repository.Update
func (r *ProductRepository) Update(ctx context.Context, p *product.Product) error {
	result, err := r.db.Exec(ctx,
		`UPDATE products SET
			name = $1, category = $2, price = $3, min_stock_level = $4, updated_at = $5
		WHERE id = $6`,
		p.Name, p.Category, p.Price, p.MinStockLevel, p.UpdatedAt, p.ID)

	if err != nil {
		return fmt.Errorf("erro ao atualizar produto: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrProductNotFound
	}

	return nil
}

// Delete implementa product.Repository.Delete
func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.Exec(ctx, "DELETE FROM products WHERE id = $1", id)
	if err != nil {
		if strings.Contains(err.Error(), "foreign key") {
			return ErrProductReferenced
		}
		return fmt.Errorf("erro ao excluir produto: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrProductNotFound
	}

	return nil
}

// Count implementa product.Repository.Count
func (r *ProductRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM products").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("erro ao contar produtos: %w", err)
	}

	return count, nil
}

// DecrementStock implementa product.Repository.DecrementStock.
// A condição de saldo e a baixa são uma única instrução UPDATE: duas vendas
// concorrentes da última unidade nunca deixam o estoque negativo, porque o
// banco serializa as escritas na linha e a condição é reavaliada.
func (r *ProductRepository) DecrementStock(ctx context.Context, id string, quantity int, allowNegative bool) (int, error) {
	var newStock int
	err := r.db.QueryRow(ctx,
		`UPDATE products
		SET stock_quantity = stock_quantity - $2, updated_at = now()
		WHERE id = $1 AND (stock_quantity >= $2 OR $3)
		RETURNING stock_quantity`,
		id, quantity, allowNegative).Scan(&newStock)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Ou o produto não existe, ou a condição de saldo falhou
			var available int
			checkErr := r.db.QueryRow(ctx,
				"SELECT stock_quantity FROM products WHERE id = $1", id).Scan(&available)
			if checkErr != nil {
				if errors.Is(checkErr, pgx.ErrNoRows) {
					return 0, ErrProductNotFound
				}
				return 0, fmt.Errorf("erro ao verificar estoque: %w", checkErr)
			}
			return 0, &inventory.StockError{ProductID: id, Requested: quantity, Available: available}
		}
		return 0, fmt.Errorf("erro ao baixar estoque: %w", err)
	}

	return newStock, nil
}

// IncrementStock implementa product.Repository.IncrementStock
func (r *ProductRepository) IncrementStock(ctx context.Context, id string, quantity int) (int, error) {
	var newStock int
	err := r.db.QueryRow(ctx,
		`UPDATE products
		SET stock_quantity = stock_quantity + $2, updated_at = now()
		WHERE id = $1
		RETURNING stock_quantity`,
		id, quantity).Scan(&newStock)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrProductNotFound
		}
		return 0, fmt.Errorf("erro ao repor estoque: %w", err)
	}

	return newStock, nil
}

// scanProductRow lê um produto de uma consulta de linha única
func (r *ProductRepository) scanProductRow(row pgx.Row) (*product.Product, error) {
	var p product.Product
	err := row.Scan(&p.ID, &p.SKU, &p.Name, &p.Category, &p.Price,
		&p.StockQuantity, &p.MinStockLevel, &p.CreatedAt, &p.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("erro ao buscar produto: %w", err)
	}

	return &p, nil
}

// scanProductRows processa resultados de consultas que retornam múltiplos produtos
func (r *ProductRepository) scanProductRows(rows pgx.Rows) ([]*product.Product, error) {
	products := make([]*product.Product, 0)

	for rows.Next() {
		var p product.Product
		err := rows.Scan(&p.ID, &p.SKU, &p.Name, &p.Category, &p.Price,
			&p.StockQuantity, &p.MinStockLevel, &p.CreatedAt, &p.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("erro ao ler produto: %w", err)
		}
		products = append(products, &p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("erro ao ler resultados: %w", err)
	}

	return products, nil
}
