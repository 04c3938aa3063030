package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/hugohenrick/pos-joalheria/internal/domain/sale"
	"github.com/hugohenrick/pos-joalheria/internal/service/checkout"
)

// CheckoutItemRequest representa uma linha do carrinho na requisição de checkout
type CheckoutItemRequest struct {
	ProductID       string          `json:"product_id" binding:"required"`
	Quantity        int             `json:"quantity" binding:"required,min=1"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
}

// CheckoutRequest representa a requisição de fechamento de venda ou memo
type CheckoutRequest struct {
	DocumentType    string                `json:"document_type" binding:"required,oneof=invoice memo"`
	CustomerID      string                `json:"customer_id"`
	Items           []CheckoutItemRequest `json:"items" binding:"required"`
	DiscountPercent decimal.Decimal       `json:"discount_percent"`
	TaxPercent      decimal.Decimal       `json:"tax_percent"`
	PaymentMethod   string                `json:"payment_method"`
	Notes           string                `json:"notes"`
	MemoDays        int                   `json:"memo_days"`
	SendReceipt     bool                  `json:"send_receipt"`
}

// ToCheckoutRequest converte a requisição HTTP para o serviço de checkout
func (r *CheckoutRequest) ToCheckoutRequest(actorID string) checkout.CheckoutRequest {
	items := make([]checkout.CheckoutItem, len(r.Items))
	for i, item := range r.Items {
		items[i] = checkout.CheckoutItem{
			ProductID:       item.ProductID,
			Quantity:        item.Quantity,
			DiscountPercent: item.DiscountPercent,
		}
	}

	return checkout.CheckoutRequest{
		ActorID:         actorID,
		DocumentType:    sale.DocumentType(r.DocumentType),
		CustomerID:      r.CustomerID,
		Items:           items,
		DiscountPercent: r.DiscountPercent,
		TaxPercent:      r.TaxPercent,
		PaymentMethod:   r.PaymentMethod,
		Notes:           r.Notes,
		MemoDays:        r.MemoDays,
		SendReceipt:     r.SendReceipt,
	}
}

// PreviewLineRequest representa uma linha do carrinho na prévia de preços
type PreviewLineRequest struct {
	UnitPrice       decimal.Decimal `json:"unit_price" binding:"required"`
	Quantity        int             `json:"quantity" binding:"required,min=1"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
}

// PreviewRequest representa a requisição de prévia de preços
type PreviewRequest struct {
	Lines           []PreviewLineRequest `json:"lines"`
	DiscountPercent decimal.Decimal      `json:"discount_percent"`
	TaxPercent      decimal.Decimal      `json:"tax_percent"`
}

// ToCartLines converte as linhas da prévia para o domínio
func (r *PreviewRequest) ToCartLines() []sale.CartLine {
	lines := make([]sale.CartLine, len(r.Lines))
	for i, l := range r.Lines {
		lines[i] = sale.CartLine{
			UnitPrice:       l.UnitPrice,
			Quantity:        l.Quantity,
			DiscountPercent: l.DiscountPercent,
		}
	}
	return lines
}

// BreakdownResponse representa o detalhamento de preços calculado
type BreakdownResponse struct {
	LineTotals      []decimal.Decimal `json:"line_totals"`
	Subtotal        decimal.Decimal   `json:"subtotal"`
	DiscountPercent decimal.Decimal   `json:"discount_percent"`
	DiscountAmount  decimal.Decimal   `json:"discount_amount"`
	TaxableAmount   decimal.Decimal   `json:"taxable_amount"`
	TaxPercent      decimal.Decimal   `json:"tax_percent"`
	TaxAmount       decimal.Decimal   `json:"tax_amount"`
	Total           decimal.Decimal   `json:"total"`
}

// ToBreakdownResponse converte um detalhamento do domínio para DTO
func ToBreakdownResponse(b *sale.Breakdown) *BreakdownResponse {
	return &BreakdownResponse{
		LineTotals:      b.LineTotals,
		Subtotal:        b.Subtotal,
		DiscountPercent: b.DiscountPercent,
		DiscountAmount:  b.DiscountAmount,
		TaxableAmount:   b.TaxableAmount,
		TaxPercent:      b.TaxPercent,
		TaxAmount:       b.TaxAmount,
		Total:           b.Total,
	}
}

// ReturnLineRequest representa uma linha devolvida de um memo
type ReturnLineRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
}

// ReturnRequest representa a requisição de devolução de um memo
type ReturnRequest struct {
	Lines []ReturnLineRequest `json:"lines" binding:"required,min=1"`
}

// ToReturnLines converte as linhas da devolução para o serviço
func (r *ReturnRequest) ToReturnLines() []checkout.ReturnLine {
	lines := make([]checkout.ReturnLine, len(r.Lines))
	for i, l := range r.Lines {
		lines[i] = checkout.ReturnLine{
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
		}
	}
	return lines
}

// SaleItemResponse representa um item do documento de venda
type SaleItemResponse struct {
	ID                 string          `json:"id"`
	ProductID          string          `json:"product_id"`
	ProductName        string          `json:"product_name"`
	SKU                string          `json:"sku"`
	Quantity           int             `json:"quantity"`
	UnitPrice          decimal.Decimal `json:"unit_price"`
	DiscountPercentage decimal.Decimal `json:"discount_percentage"`
	TotalPrice         decimal.Decimal `json:"total_price"`
}

// SaleResponse representa um documento de venda. Para memos o status
// retornado já considera a expiração derivada do vencimento.
type SaleResponse struct {
	ID                  string             `json:"id"`
	InvoiceNumber       string             `json:"invoice_number"`
	DocumentType        string             `json:"document_type"`
	CustomerID          string             `json:"customer_id,omitempty"`
	SaleDate            time.Time          `json:"sale_date"`
	MemoDueDate         *time.Time         `json:"memo_due_date,omitempty"`
	MemoStatus          string             `json:"memo_status,omitempty"`
	DaysRemaining       *int               `json:"days_remaining,omitempty"`
	ConvertedFromMemoID string             `json:"converted_from_memo_id,omitempty"`
	Subtotal            decimal.Decimal    `json:"subtotal"`
	DiscountPercentage  decimal.Decimal    `json:"discount_percentage"`
	DiscountAmount      decimal.Decimal    `json:"discount_amount"`
	TaxAmount           decimal.Decimal    `json:"tax_amount"`
	TotalAmount         decimal.Decimal    `json:"total_amount"`
	PaymentMethod       string             `json:"payment_method"`
	PaymentStatus       string             `json:"payment_status"`
	Notes               string             `json:"notes,omitempty"`
	CreatedBy           string             `json:"created_by"`
	CreatedAt           time.Time          `json:"created_at"`
	Items               []SaleItemResponse `json:"items,omitempty"`
}

// SaleListResponse representa a resposta de lista de documentos de venda
type SaleListResponse struct {
	Items      []SaleResponse `json:"items"`
	Total      int            `json:"total"`
	Page       int            `json:"page"`
	Size       int            `json:"size"`
	TotalPages int            `json:"total_pages"`
}

// ToSaleResponse converte um documento de venda do domínio para DTO
func ToSaleResponse(d *sale.SaleDocument) *SaleResponse {
	resp := &SaleResponse{
		ID:                  d.ID,
		InvoiceNumber:       d.InvoiceNumber,
		DocumentType:        string(d.DocumentType),
		CustomerID:          d.CustomerID,
		SaleDate:            d.SaleDate,
		MemoDueDate:         d.MemoDueDate,
		ConvertedFromMemoID: d.ConvertedFromMemoID,
		Subtotal:            d.Subtotal,
		DiscountPercentage:  d.DiscountPercentage,
		DiscountAmount:      d.DiscountAmount,
		TaxAmount:           d.TaxAmount,
		TotalAmount:         d.TotalAmount,
		PaymentMethod:       d.PaymentMethod,
		PaymentStatus:       string(d.PaymentStatus),
		Notes:               d.Notes,
		CreatedBy:           d.CreatedBy,
		CreatedAt:           d.CreatedAt,
	}

	if d.IsMemo() {
		now := time.Now()
		resp.MemoStatus = string(d.EffectiveStatus(now))
		days := d.DaysRemaining(now)
		resp.DaysRemaining = &days
	}

	for _, item := range d.Items {
		resp.Items = append(resp.Items, SaleItemResponse{
			ID:                 item.ID,
			ProductID:          item.ProductID,
			ProductName:        item.ProductName,
			SKU:                item.SKU,
			Quantity:           item.Quantity,
			UnitPrice:          item.UnitPrice,
			DiscountPercentage: item.DiscountPercentage,
			TotalPrice:         item.TotalPrice,
		})
	}

	return resp
}

// ToSaleListResponse converte uma lista de documentos do domínio para DTO
func ToSaleListResponse(sales []*sale.SaleDocument, total, page, size int) *SaleListResponse {
	items := make([]SaleResponse, len(sales))
	for i, d := range sales {
		items[i] = *ToSaleResponse(d)
	}

	return &SaleListResponse{
		Items:      items,
		Total:      total,
		Page:       page,
		Size:       size,
		TotalPages: calculateTotalPages(total, size),
	}
}
