package sale

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDocumentNumber(t *testing.T) {
	now := time.UnixMilli(1700000000000)

	assert.Equal(t, "INV-1700000000000", NewDocumentNumber(DocumentTypeInvoice, now))
	assert.Equal(t, "MEM-1700000000000", NewDocumentNumber(DocumentTypeMemo, now))
}

func TestConvertedNumber(t *testing.T) {
	assert.Equal(t, "INV-1700000000000", ConvertedNumber("MEM-1700000000000"))

	// Apenas a primeira ocorrência do prefixo é substituída
	assert.Equal(t, "INV-MEM-1", ConvertedNumber("MEM-MEM-1"))
}

func TestNewSaleDocument(t *testing.T) {
	b, err := Calculate([]CartLine{{UnitPrice: dec("100"), Quantity: 2, DiscountPercent: dec("10")}}, dec("5"), dec("3"))
	require.NoError(t, err)

	now := time.Now()

	t.Run("fatura", func(t *testing.T) {
		doc, err := NewSaleDocument(DocumentTypeInvoice, "cliente-1", b, "card", PaymentStatusCompleted, nil, "obs", "vendedor-1", now)
		require.NoError(t, err)

		assert.NotEmpty(t, doc.ID)
		assert.Equal(t, DocumentTypeInvoice, doc.DocumentType)
		assert.Equal(t, "card", doc.PaymentMethod)
		assert.Equal(t, PaymentStatusCompleted, doc.PaymentStatus)
		assert.Empty(t, doc.MemoStatus)
		assert.Nil(t, doc.MemoDueDate)
		assert.True(t, doc.Subtotal.Equal(dec("180")))
		assert.True(t, doc.TotalAmount.Equal(dec("176.13")))
		assert.NoError(t, doc.Reconcile())
	})

	t.Run("memo força status e pagamento pendentes", func(t *testing.T) {
		due := now.AddDate(0, 0, 7)
		doc, err := NewSaleDocument(DocumentTypeMemo, "cliente-1", b, "card", PaymentStatusCompleted, &due, "", "vendedor-1", now)
		require.NoError(t, err)

		assert.Equal(t, MemoStatusPending, doc.MemoStatus)
		assert.Equal(t, "pending", doc.PaymentMethod)
		assert.Equal(t, PaymentStatusPending, doc.PaymentStatus)
		require.NotNil(t, doc.MemoDueDate)
		assert.True(t, doc.IsMemo())
	})

	t.Run("memo sem vencimento falha", func(t *testing.T) {
		_, err := NewSaleDocument(DocumentTypeMemo, "cliente-1", b, "", PaymentStatusPending, nil, "", "vendedor-1", now)
		assert.ErrorIs(t, err, ErrMissingDueDate)
	})

	t.Run("sem criador falha", func(t *testing.T) {
		_, err := NewSaleDocument(DocumentTypeInvoice, "", b, "cash", PaymentStatusCompleted, nil, "", "", now)
		assert.ErrorIs(t, err, ErrMissingCreator)
	})

	t.Run("tipo inválido falha", func(t *testing.T) {
		_, err := NewSaleDocument(DocumentType("quote"), "", b, "cash", PaymentStatusCompleted, nil, "", "vendedor-1", now)
		assert.ErrorIs(t, err, ErrInvalidDocType)
	})
}

func TestReconcileDetectsMismatch(t *testing.T) {
	b, err := Calculate([]CartLine{{UnitPrice: dec("100"), Quantity: 1}}, dec("0"), dec("0"))
	require.NoError(t, err)

	doc, err := NewSaleDocument(DocumentTypeInvoice, "", b, "cash", PaymentStatusCompleted, nil, "", "vendedor-1", time.Now())
	require.NoError(t, err)

	doc.TotalAmount = dec("99.99")
	assert.ErrorIs(t, doc.Reconcile(), ErrTotalsMismatch)
}

func TestNewLineItem(t *testing.T) {
	item, err := NewLineItem("venda-1", "produto-1", "Anel Solitário", "AN-001", 2, dec("450"), dec("10"), dec("810"))
	require.NoError(t, err)

	assert.NotEmpty(t, item.ID)
	assert.Equal(t, "venda-1", item.SaleID)
	assert.Equal(t, "Anel Solitário", item.ProductName)
	assert.Equal(t, 2, item.Quantity)

	_, err = NewLineItem("venda-1", "produto-1", "Anel", "AN-001", 0, dec("450"), dec("0"), dec("0"))
	assert.ErrorIs(t, err, ErrInvalidQuantity)
}
