package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hugohenrick/pos-joalheria/internal/domain/sale"
	"github.com/hugohenrick/pos-joalheria/internal/infrastructure/database"
)

// Erros específicos do repositório. A violação de unicidade do número é
// exposta como o sentinela do domínio para que o serviço possa repetir a
// gravação com um número novo.
var (
	ErrSaleNotFound        = errors.New("documento de venda não encontrado")
	ErrSaleDuplicateNumber = sale.ErrDuplicateNumber
)

// SaleRepository implementa a interface sale.Repository
type SaleRepository struct {
	db *pgxpool.Pool
}

// NewSaleRepository cria uma nova instância de SaleRepository
func NewSaleRepository(db *pgxpool.Pool) sale.Repository {
	return &SaleRepository{
		db: db,
	}
}

const saleColumns = `id, invoice_number, document_type, customer_id, sale_date,
	memo_due_date, memo_status, converted_from_memo_id, subtotal,
	discount_percentage, discount_amount, tax_amount, total_amount,
	payment_method, payment_status, notes, created_by, created_at`

// Create implementa sale.Repository.Create
func (r *SaleRepository) Create(ctx context.Context, d *sale.SaleDocument) error {
	var customerID, memoStatus, convertedFrom, notes *string
	if d.CustomerID != "" {
		customerID = &d.CustomerID
	}
	if d.MemoStatus != "" {
		s := string(d.MemoStatus)
		memoStatus = &s
	}
	if d.ConvertedFromMemoID != "" {
		convertedFrom = &d.ConvertedFromMemoID
	}
	if d.Notes != "" {
		notes = &d.Notes
	}

	_, err := r.db.Exec(ctx,
		`INSERT INTO sales (
			id, invoice_number, document_type, customer_id, sale_date,
			memo_due_date, memo_status, converted_from_memo_id, subtotal,
			discount_percentage, discount_amount, tax_amount, total_amount,
			payment_method, payment_status, notes, created_by, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
			$15, $16, $17, $18
		)`,
		d.ID, d.InvoiceNumber, d.DocumentType, customerID, d.SaleDate,
		d.MemoDueDate, memoStatus, convertedFrom, d.Subtotal,
		d.DiscountPercentage, d.DiscountAmount, d.TaxAmount, d.TotalAmount,
		d.PaymentMethod, d.PaymentStatus, notes, d.CreatedBy, d.CreatedAt)

	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			return ErrSaleDuplicateNumber
		}
		return fmt.Errorf("erro ao criar documento de venda: %w", err)
	}

	return nil
}

// AddLineItems implementa sale.Repository.AddLineItems. Os itens são
// gravados em uma única transação: ou todos entram, ou nenhum.
func (r *SaleRepository) AddLineItems(ctx context.Context, saleID string, items []sale.SaleLineItem) error {
	batch := &pgx.Batch{}
	for _, item := range items {
		batch.Queue(
			`INSERT INTO sale_items (
				id, sale_id, product_id, product_name, sku, quantity,
				unit_price, discount_percentage, total_price
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			item.ID, saleID, item.ProductID, item.ProductName, item.SKU,
			item.Quantity, item.UnitPrice, item.DiscountPercentage, item.TotalPrice)
	}

	return database.Transaction(ctx, r.db, func(tx pgx.Tx) error {
		results := tx.SendBatch(ctx, batch)
		defer results.Close()

		for range items {
			if _, err := results.Exec(); err != nil {
				return fmt.Errorf("erro ao gravar itens da venda: %w", err)
			}
		}

		return results.Close()
	})
}

// FindByID implementa sale.Repository.FindByID
func (r *SaleRepository) FindByID(ctx context.Context, id string) (*sale.SaleDocument, error) {
	doc, err := r.scanSaleRow(r.db.QueryRow(ctx,
		`SELECT `+saleColumns+` FROM sales WHERE id = $1`, id))
	if err != nil {
		return nil, err
	}

	items, err := r.findLineItems(ctx, id)
	if err != nil {
		return nil, err
	}
	doc.Items = items

	return doc, nil
}

// FindByNumber implementa sale.Repository.FindByNumber
func (r *SaleRepository) FindByNumber(ctx context.Context, number string) (*sale.SaleDocument, error) {
	doc, err := r.scanSaleRow(r.db.QueryRow(ctx,
		`SELECT `+saleColumns+` FROM sales WHERE invoice_number = $1`, number))
	if err != nil {
		return nil, err
	}

	items, err := r.findLineItems(ctx, doc.ID)
	if err != nil {
		return nil, err
	}
	doc.Items = items

	return doc, nil
}

// List implementa sale.Repository.List
func (r *SaleRepository) List(ctx context.Context, filter sale.ListFilter, limit, offset int) ([]*sale.SaleDocument, error) {
	where, args := buildSaleFilter(filter)
	args = append(args, limit, offset)

	rows, err := r.db.Query(ctx,
		`SELECT `+saleColumns+` FROM sales `+where+
			fmt.Sprintf(` ORDER BY sale_date DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args)),
		args...)
	if err != nil {
		return nil, fmt.Errorf("erro ao listar documentos de venda: %w", err)
	}
	defer rows.Close()

	return r.scanSaleRows(rows)
}

// Count implementa sale.Repository.Count
func (r *SaleRepository) Count(ctx context.Context, filter sale.ListFilter) (int, error) {
	where, args := buildSaleFilter(filter)

	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM sales `+where, args...).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("erro ao contar documentos de venda: %w", err)
	}

	return count, nil
}

// UpdateMemoStatus implementa sale.Repository.UpdateMemoStatus
func (r *SaleRepository) UpdateMemoStatus(ctx context.Context, id string, status sale.MemoStatus) error {
	result, err := r.db.Exec(ctx,
		"UPDATE sales SET memo_status = $1 WHERE id = $2 AND document_type = 'memo'",
		status, id)

	if err != nil {
		return fmt.Errorf("erro ao atualizar status do memo: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrSaleNotFound
	}

	return nil
}

// ExistsByNumber implementa sale.Repository.ExistsByNumber
func (r *SaleRepository) ExistsByNumber(ctx context.Context, number string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM sales WHERE invoice_number = $1)",
		number).Scan(&exists)

	if err != nil {
		return false, fmt.Errorf("erro ao verificar número do documento: %w", err)
	}

	return exists, nil
}

// buildSaleFilter monta a cláusula WHERE da listagem
func buildSaleFilter(filter sale.ListFilter) (string, []interface{}) {
	conditions := make([]string, 0, 4)
	args := make([]interface{}, 0, 4)

	if filter.DocumentType != "" {
		args = append(args, filter.DocumentType)
		conditions = append(conditions, fmt.Sprintf("document_type = $%d", len(args)))
	}
	if filter.MemoStatus != "" {
		args = append(args, filter.MemoStatus)
		conditions = append(conditions, fmt.Sprintf("memo_status = $%d", len(args)))
	}
	if filter.CustomerID != "" {
		args = append(args, filter.CustomerID)
		conditions = append(conditions, fmt.Sprintf("customer_id = $%d", len(args)))
	}
	if !filter.DueBefore.IsZero() {
		args = append(args, filter.DueBefore)
		conditions = append(conditions, fmt.Sprintf(
			"memo_due_date < $%d AND memo_status IN ('pending', 'partially_returned')", len(args)))
	}

	if len(conditions) == 0 {
		return "", args
	}
	return "WHERE " + strings.Join(conditions, " AND "), args
}

// findLineItems carrega os itens de um documento
func (r *SaleRepository) findLineItems(ctx context.Context, saleID string) ([]sale.SaleLineItem, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, sale_id, product_id, product_name, sku, quantity,
			unit_price, discount_percentage, total_price
		FROM sale_items WHERE sale_id = $1
		ORDER BY id`, saleID)
	if err != nil {
		return nil, fmt.Errorf("erro ao buscar itens da venda: %w", err)
	}
	defer rows.Close()

	items := make([]sale.SaleLineItem, 0)
	for rows.Next() {
		var item sale.SaleLineItem
		err := rows.Scan(&item.ID, &item.SaleID, &item.ProductID, &item.ProductName,
			&item.SKU, &item.Quantity, &item.UnitPrice, &item.DiscountPercentage,
			&item.TotalPrice)
		if err != nil {
			return nil, fmt.Errorf("erro ao ler item da venda: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("erro ao ler resultados: %w", err)
	}

	return items, nil
}

// scanSaleRow lê um documento de uma consulta de linha única
func (r *SaleRepository) scanSaleRow(row pgx.Row) (*sale.SaleDocument, error) {
	var d sale.SaleDocument
	var customerID, memoStatus, convertedFrom, notes *string

	err := row.Scan(&d.ID, &d.InvoiceNumber, &d.DocumentType, &customerID,
		&d.SaleDate, &d.MemoDueDate, &memoStatus, &convertedFrom, &d.Subtotal,
		&d.DiscountPercentage, &d.DiscountAmount, &d.TaxAmount, &d.TotalAmount,
		&d.PaymentMethod, &d.PaymentStatus, &notes, &d.CreatedBy, &d.CreatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSaleNotFound
		}
		return nil, fmt.Errorf("erro ao buscar documento de venda: %w", err)
	}

	if customerID != nil {
		d.CustomerID = *customerID
	}
	if memoStatus != nil {
		d.MemoStatus = sale.MemoStatus(*memoStatus)
	}
	if convertedFrom != nil {
		d.ConvertedFromMemoID = *convertedFrom
	}
	if notes != nil {
		d.Notes = *notes
	}

	return &d, nil
}

// scanSaleRows processa resultados de consultas que retornam múltiplos documentos
func (r *SaleRepository) scanSaleRows(rows pgx.Rows) ([]*sale.SaleDocument, error) {
	docs := make([]*sale.SaleDocument, 0)

	for rows.Next() {
		var d sale.SaleDocument
		var customerID, memoStatus, convertedFrom, notes *string

		err := rows.Scan(&d.ID, &d.InvoiceNumber, &d.DocumentType, &customerID,
			&d.SaleDate, &d.MemoDueDate, &memoStatus, &convertedFrom, &d.Subtotal,
			&d.DiscountPercentage, &d.DiscountAmount, &d.TaxAmount, &d.TotalAmount,
			&d.PaymentMethod, &d.PaymentStatus, &notes, &d.CreatedBy, &d.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("erro ao ler documento de venda: %w", err)
		}

		if customerID != nil {
			d.CustomerID = *customerID
		}
		if memoStatus != nil {
			d.MemoStatus = sale.MemoStatus(*memoStatus)
		}
		if convertedFrom != nil {
			d.ConvertedFromMemoID = *convertedFrom
		}
		if notes != nil {
			d.Notes = *notes
		}

		docs = append(docs, &d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("erro ao ler resultados: %w", err)
	}

	return docs, nil
}
