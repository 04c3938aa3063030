package checkout

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hugohenrick/pos-joalheria/internal/domain/product"
	"github.com/hugohenrick/pos-joalheria/internal/domain/sale"
)

// buildLineItems monta os itens do documento copiando nome, SKU e preço do
// produto no momento da venda. O total de cada linha vem do detalhamento de
// preços, na mesma ordem do carrinho.
func buildLineItems(saleID string, items []CheckoutItem, products []*product.Product, breakdown *sale.Breakdown) ([]sale.SaleLineItem, error) {
	lineItems := make([]sale.SaleLineItem, 0, len(items))

	for i, item := range items {
		p := products[i]
		li, err := sale.NewLineItem(
			saleID,
			p.ID,
			p.Name,
			p.SKU,
			item.Quantity,
			p.Price,
			item.DiscountPercent,
			breakdown.LineTotals[i],
		)
		if err != nil {
			return nil, err
		}
		lineItems = append(lineItems, *li)
	}

	return lineItems, nil
}

// cloneForConversion materializa a fatura resultante da conversão de um memo.
// Número derivado por troca de prefixo, valores copiados sem recálculo,
// pagamento marcado como pago; o estoque não é tocado, porque a baixa já
// aconteceu na criação do memo.
func cloneForConversion(memo *sale.SaleDocument, actorID string, now time.Time) *sale.SaleDocument {
	invoice := &sale.SaleDocument{
		ID:                  uuid.New().String(),
		InvoiceNumber:       sale.ConvertedNumber(memo.InvoiceNumber),
		DocumentType:        sale.DocumentTypeInvoice,
		CustomerID:          memo.CustomerID,
		SaleDate:            now,
		ConvertedFromMemoID: memo.ID,
		Subtotal:            memo.Subtotal,
		DiscountPercentage:  memo.DiscountPercentage,
		DiscountAmount:      memo.DiscountAmount,
		TaxAmount:           memo.TaxAmount,
		TotalAmount:         memo.TotalAmount,
		PaymentMethod:       "cash",
		PaymentStatus:       sale.PaymentStatusPaid,
		Notes:               fmt.Sprintf("Convertido do memo %s", memo.InvoiceNumber),
		CreatedBy:           actorID,
		CreatedAt:           now,
	}

	items := make([]sale.SaleLineItem, 0, len(memo.Items))
	for _, item := range memo.Items {
		items = append(items, sale.SaleLineItem{
			ID:                 uuid.New().String(),
			SaleID:             invoice.ID,
			ProductID:          item.ProductID,
			ProductName:        item.ProductName,
			SKU:                item.SKU,
			Quantity:           item.Quantity,
			UnitPrice:          item.UnitPrice,
			DiscountPercentage: item.DiscountPercentage,
			TotalPrice:         item.TotalPrice,
		})
	}
	invoice.Items = items

	return invoice
}
