package product

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Erros de validação do produto
var (
	ErrEmptyName     = errors.New("nome do produto não pode ser vazio")
	ErrEmptySKU      = errors.New("SKU do produto não pode ser vazio")
	ErrNegativePrice = errors.New("preço do produto não pode ser negativo")
	ErrNegativeStock = errors.New("estoque inicial não pode ser negativo")
)

// Product representa um produto do catálogo da joalheria
type Product struct {
	ID            string          `json:"id"`
	SKU           string          `json:"sku"`      // Código único, visível ao usuário
	Name          string          `json:"name"`     // Nome de exibição
	Category      string          `json:"category"` // Categoria (anel, colar, brinco...)
	Price         decimal.Decimal `json:"price"`    // Preço unitário de venda
	StockQuantity int             `json:"stock_quantity"`
	MinStockLevel int             `json:"min_stock_level"` // Limiar informativo de estoque baixo
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// NewProduct cria um novo produto
func NewProduct(sku, name, category string, price decimal.Decimal, stockQuantity, minStockLevel int) (*Product, error) {
	if name == "" {
		return nil, ErrEmptyName
	}
	if sku == "" {
		return nil, ErrEmptySKU
	}
	if price.IsNegative() {
		return nil, ErrNegativePrice
	}
	if stockQuantity < 0 {
		return nil, ErrNegativeStock
	}

	now := time.Now()
	return &Product{
		ID:            uuid.New().String(),
		SKU:           sku,
		Name:          name,
		Category:      category,
		Price:         price,
		StockQuantity: stockQuantity,
		MinStockLevel: minStockLevel,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// Update atualiza os dados cadastrais do produto
func (p *Product) Update(name, category string, price decimal.Decimal, minStockLevel int) error {
	if name == "" {
		return ErrEmptyName
	}
	if price.IsNegative() {
		return ErrNegativePrice
	}

	p.Name = name
	p.Category = category
	p.Price = price
	p.MinStockLevel = minStockLevel
	p.UpdatedAt = time.Now()

	return nil
}

// IsLowStock verifica se o estoque está no limiar de alerta ou abaixo dele
func (p *Product) IsLowStock() bool {
	return p.StockQuantity <= p.MinStockLevel
}
