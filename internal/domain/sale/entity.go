package sale

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Erros de validação do documento de venda
var (
	ErrEmptyItems      = errors.New("documento de venda sem itens")
	ErrMissingDueDate  = errors.New("memo sem data de vencimento")
	ErrMissingCreator  = errors.New("documento de venda sem usuário criador")
	ErrInvalidDocType  = errors.New("tipo de documento inválido")
	ErrDuplicateNumber = errors.New("documento com mesmo número já existe")
	ErrTotalsMismatch  = errors.New("total do documento não confere com os itens")
	ErrInvalidQuantity = errors.New("quantidade do item deve ser positiva")
)

// DocumentType define o tipo de documento de venda
type DocumentType string

const (
	DocumentTypeInvoice DocumentType = "invoice" // Venda faturada
	DocumentTypeMemo    DocumentType = "memo"    // Venda condicional (consignação)
)

// Prefixos dos números de documento
const (
	invoicePrefix = "INV"
	memoPrefix    = "MEM"
)

// PaymentStatus representa o estado de pagamento do documento
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusPaid      PaymentStatus = "paid"
	PaymentStatusCompleted PaymentStatus = "completed"
)

// SaleDocument representa um documento de venda (fatura ou memo) com seus itens.
// Depois de criado, apenas o status do memo transita; valores e itens são imutáveis.
type SaleDocument struct {
	ID                  string          `json:"id"`
	InvoiceNumber       string          `json:"invoice_number"`
	DocumentType        DocumentType    `json:"document_type"`
	CustomerID          string          `json:"customer_id,omitempty"`
	SaleDate            time.Time       `json:"sale_date"`
	MemoDueDate         *time.Time      `json:"memo_due_date,omitempty"`
	MemoStatus          MemoStatus      `json:"memo_status,omitempty"`
	ConvertedFromMemoID string          `json:"converted_from_memo_id,omitempty"`
	Subtotal            decimal.Decimal `json:"subtotal"`
	DiscountPercentage  decimal.Decimal `json:"discount_percentage"`
	DiscountAmount      decimal.Decimal `json:"discount_amount"`
	TaxAmount           decimal.Decimal `json:"tax_amount"`
	TotalAmount         decimal.Decimal `json:"total_amount"`
	PaymentMethod       string          `json:"payment_method"`
	PaymentStatus       PaymentStatus   `json:"payment_status"`
	Notes               string          `json:"notes,omitempty"`
	CreatedBy           string          `json:"created_by"`
	CreatedAt           time.Time       `json:"created_at"`
	Items               []SaleLineItem  `json:"items,omitempty"`
}

// SaleLineItem representa um item de um documento de venda.
// Nome, SKU e preço unitário são copiados do produto no momento da venda,
// para que o histórico não mude quando o produto for editado.
type SaleLineItem struct {
	ID                 string          `json:"id"`
	SaleID             string          `json:"sale_id"`
	ProductID          string          `json:"product_id"`
	ProductName        string          `json:"product_name"`
	SKU                string          `json:"sku"`
	Quantity           int             `json:"quantity"`
	UnitPrice          decimal.Decimal `json:"unit_price"`
	DiscountPercentage decimal.Decimal `json:"discount_percentage"`
	TotalPrice         decimal.Decimal `json:"total_price"`
}

// NewDocumentNumber gera um número de documento com o prefixo do tipo.
// O sufixo é o timestamp em milissegundos; colisões são tratadas pelo
// chamador com nova tentativa, nunca com sobrescrita.
func NewDocumentNumber(docType DocumentType, now time.Time) string {
	prefix := invoicePrefix
	if docType == DocumentTypeMemo {
		prefix = memoPrefix
	}
	return fmt.Sprintf("%s-%d", prefix, now.UnixMilli())
}

// ConvertedNumber deriva o número da fatura a partir do número do memo,
// substituindo o prefixo
func ConvertedNumber(memoNumber string) string {
	return strings.Replace(memoNumber, memoPrefix, invoicePrefix, 1)
}

// NewSaleDocument monta um documento de venda a partir do detalhamento de
// preços já calculado. Não persiste nada.
func NewSaleDocument(
	docType DocumentType,
	customerID string,
	breakdown *Breakdown,
	paymentMethod string,
	paymentStatus PaymentStatus,
	memoDueDate *time.Time,
	notes string,
	createdBy string,
	now time.Time,
) (*SaleDocument, error) {
	if docType != DocumentTypeInvoice && docType != DocumentTypeMemo {
		return nil, ErrInvalidDocType
	}
	if createdBy == "" {
		return nil, ErrMissingCreator
	}

	doc := &SaleDocument{
		ID:                 uuid.New().String(),
		InvoiceNumber:      NewDocumentNumber(docType, now),
		DocumentType:       docType,
		CustomerID:         customerID,
		SaleDate:           now,
		Subtotal:           breakdown.Subtotal,
		DiscountPercentage: breakdown.DiscountPercent,
		DiscountAmount:     breakdown.DiscountAmount,
		TaxAmount:          breakdown.TaxAmount,
		TotalAmount:        breakdown.Total,
		PaymentMethod:      paymentMethod,
		PaymentStatus:      paymentStatus,
		Notes:              notes,
		CreatedBy:          createdBy,
		CreatedAt:          now,
	}

	if docType == DocumentTypeMemo {
		if memoDueDate == nil {
			return nil, ErrMissingDueDate
		}
		doc.MemoDueDate = memoDueDate
		doc.MemoStatus = MemoStatusPending
		doc.PaymentMethod = "pending"
		doc.PaymentStatus = PaymentStatusPending
	}

	return doc, nil
}

// NewLineItem cria um item de venda copiando os campos de exibição do produto
func NewLineItem(saleID, productID, productName, sku string, quantity int, unitPrice, discountPercent, totalPrice decimal.Decimal) (*SaleLineItem, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	return &SaleLineItem{
		ID:                 uuid.New().String(),
		SaleID:             saleID,
		ProductID:          productID,
		ProductName:        productName,
		SKU:                sku,
		Quantity:           quantity,
		UnitPrice:          unitPrice,
		DiscountPercentage: discountPercent,
		TotalPrice:         totalPrice,
	}, nil
}

// IsMemo verifica se o documento é um memo
func (d *SaleDocument) IsMemo() bool {
	return d.DocumentType == DocumentTypeMemo
}

// Reconcile verifica a consistência aritmética do documento:
// TotalAmount = Subtotal - DiscountAmount + TaxAmount
func (d *SaleDocument) Reconcile() error {
	expected := d.Subtotal.Sub(d.DiscountAmount).Add(d.TaxAmount)
	if !d.TotalAmount.Equal(expected) {
		return fmt.Errorf("%w: esperado %s, registrado %s", ErrTotalsMismatch, expected, d.TotalAmount)
	}
	return nil
}
