package checkout

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hugohenrick/pos-joalheria/internal/domain/product"
	"github.com/hugohenrick/pos-joalheria/internal/domain/sale"
)

// createPendingMemo fecha um memo pelo próprio serviço, para que a conversão
// parta do mesmo estado que existiria em produção
func createPendingMemo(t *testing.T, env *testEnv, p *product.Product, qty int) *sale.SaleDocument {
	t.Helper()

	cust := newTestCustomer(t)
	require.NoError(t, env.customers.Create(context.Background(), cust))

	memo, err := env.service.Checkout(context.Background(), CheckoutRequest{
		ActorID:         "vendedor-1",
		DocumentType:    sale.DocumentTypeMemo,
		CustomerID:      cust.ID,
		Items:           []CheckoutItem{{ProductID: p.ID, Quantity: qty}},
		DiscountPercent: dec("5"),
		TaxPercent:      dec("3"),
	})
	require.NoError(t, err)
	return memo
}

func TestConvertMemo(t *testing.T) {
	p := newTestProduct(t, "Anel", "450.00", 10, 0)
	env := newTestEnv(t, Config{DefaultMemoDays: 7}, p)

	memo := createPendingMemo(t, env, p, 2)
	stockAfterMemo := env.products.stockOf(p.ID)

	invoice, err := env.service.Convert(context.Background(), memo.ID, "gerente-1")
	require.NoError(t, err)

	// A fatura copia os valores do memo sem recálculo
	assert.Equal(t, sale.DocumentTypeInvoice, invoice.DocumentType)
	assert.True(t, invoice.Subtotal.Equal(memo.Subtotal))
	assert.True(t, invoice.DiscountAmount.Equal(memo.DiscountAmount))
	assert.True(t, invoice.TaxAmount.Equal(memo.TaxAmount))
	assert.True(t, invoice.TotalAmount.Equal(memo.TotalAmount))

	// Número derivado por troca de prefixo e rastreabilidade preservada
	assert.Equal(t, sale.ConvertedNumber(memo.InvoiceNumber), invoice.InvoiceNumber)
	assert.Equal(t, memo.ID, invoice.ConvertedFromMemoID)
	assert.Equal(t, "cash", invoice.PaymentMethod)
	assert.Equal(t, sale.PaymentStatusPaid, invoice.PaymentStatus)
	assert.Contains(t, invoice.Notes, memo.InvoiceNumber)

	// Itens copiados com os mesmos valores
	require.Len(t, invoice.Items, len(memo.Items))
	assert.Equal(t, memo.Items[0].ProductID, invoice.Items[0].ProductID)
	assert.True(t, invoice.Items[0].UnitPrice.Equal(memo.Items[0].UnitPrice))
	assert.Equal(t, memo.Items[0].Quantity, invoice.Items[0].Quantity)

	// O memo foi confirmado
	stored, err := env.sales.FindByID(context.Background(), memo.ID)
	require.NoError(t, err)
	assert.Equal(t, sale.MemoStatusConfirmed, stored.MemoStatus)

	// A conversão não movimenta estoque
	assert.Equal(t, stockAfterMemo, env.products.stockOf(p.ID))
}

func TestConvertMemoTwiceFails(t *testing.T) {
	p := newTestProduct(t, "Anel", "450.00", 10, 0)
	env := newTestEnv(t, Config{DefaultMemoDays: 7}, p)

	memo := createPendingMemo(t, env, p, 1)

	_, err := env.service.Convert(context.Background(), memo.ID, "gerente-1")
	require.NoError(t, err)

	docsAfterFirst := env.sales.countDocs()

	_, err = env.service.Convert(context.Background(), memo.ID, "gerente-1")
	require.Error(t, err)
	assert.ErrorIs(t, err, sale.ErrInvalidTransition)

	// A segunda tentativa não cria outra fatura
	assert.Equal(t, docsAfterFirst, env.sales.countDocs())
}

func TestConvertNumberCollisionConflict(t *testing.T) {
	// O número da fatura deriva do número do memo, então uma colisão na
	// gravação indica conversão concorrente: conflito, sem nova tentativa
	p := newTestProduct(t, "Anel", "450.00", 10, 0)
	env := newTestEnv(t, Config{DefaultMemoDays: 7}, p)
	memo := createPendingMemo(t, env, p, 1)

	env.sales.duplicateCreates = 1

	_, err := env.service.Convert(context.Background(), memo.ID, "gerente-1")
	assert.ErrorIs(t, err, ErrDuplicateNumber)

	current, ferr := env.sales.FindByID(context.Background(), memo.ID)
	require.NoError(t, ferr)
	assert.Equal(t, sale.MemoStatusPending, current.MemoStatus)
	assert.Equal(t, 1, env.sales.countDocs())
}

func TestConvertRejectsNonMemo(t *testing.T) {
	p := newTestProduct(t, "Anel", "450.00", 10, 0)
	env := newTestEnv(t, Config{}, p)

	invoice, err := env.service.Checkout(context.Background(), CheckoutRequest{
		ActorID:      "vendedor-1",
		DocumentType: sale.DocumentTypeInvoice,
		Items:        []CheckoutItem{{ProductID: p.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	_, err = env.service.Convert(context.Background(), invoice.ID, "gerente-1")
	assert.ErrorIs(t, err, sale.ErrNotAMemo)
}

func TestConvertRequiresActor(t *testing.T) {
	env := newTestEnv(t, Config{})

	_, err := env.service.Convert(context.Background(), "memo-1", "")
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestConvertReturnedMemoFails(t *testing.T) {
	p := newTestProduct(t, "Anel", "450.00", 10, 0)
	env := newTestEnv(t, Config{DefaultMemoDays: 7}, p)

	memo := createPendingMemo(t, env, p, 1)

	_, err := env.service.ProcessReturn(context.Background(), memo.ID, []ReturnLine{{ProductID: p.ID, Quantity: 1}}, "vendedor-1")
	require.NoError(t, err)

	_, err = env.service.Convert(context.Background(), memo.ID, "gerente-1")
	assert.ErrorIs(t, err, sale.ErrInvalidTransition)
}
