package checkout

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hugohenrick/pos-joalheria/internal/domain/customer"
	"github.com/hugohenrick/pos-joalheria/internal/domain/inventory"
	"github.com/hugohenrick/pos-joalheria/internal/domain/product"
	"github.com/hugohenrick/pos-joalheria/internal/domain/sale"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type testEnv struct {
	products  *fakeProductRepo
	customers *fakeCustomerRepo
	sales     *fakeSaleRepo
	logs      *fakeLogRepo
	notifier  *fakeNotifier
	service   *Service
}

func newTestEnv(t *testing.T, cfg Config, products ...*product.Product) *testEnv {
	t.Helper()

	env := &testEnv{
		products:  newFakeProductRepo(products...),
		customers: newFakeCustomerRepo(),
		sales:     newFakeSaleRepo(),
		logs:      newFakeLogRepo(),
		notifier:  newFakeNotifier(),
	}
	env.service = NewService(env.products, env.customers, env.sales, env.logs, env.notifier, nopLogger{}, cfg)
	return env
}

func newTestProduct(t *testing.T, name string, price string, stock, minLevel int) *product.Product {
	t.Helper()
	p, err := product.NewProduct("SKU-"+name, name, "anel", dec(price), stock, minLevel)
	require.NoError(t, err)
	return p
}

func newTestCustomer(t *testing.T) *customer.Customer {
	t.Helper()
	c, err := customer.NewCustomer("Maria Silva", "11999990000", "", "")
	require.NoError(t, err)
	return c
}

func TestCheckoutInvoiceSuccess(t *testing.T) {
	p1 := newTestProduct(t, "Anel", "450.00", 10, 2)
	p2 := newTestProduct(t, "Colar", "1200.00", 5, 1)
	env := newTestEnv(t, Config{}, p1, p2)

	doc, err := env.service.Checkout(context.Background(), CheckoutRequest{
		ActorID:      "vendedor-1",
		DocumentType: sale.DocumentTypeInvoice,
		Items: []CheckoutItem{
			{ProductID: p1.ID, Quantity: 2},
			{ProductID: p2.ID, Quantity: 1, DiscountPercent: dec("10")},
		},
		DiscountPercent: dec("5"),
		TaxPercent:      dec("3"),
		PaymentMethod:   "card",
	})
	require.NoError(t, err)

	// Valores: 900 + 1080 = 1980; desconto 99; base 1881; imposto 56.43
	assert.True(t, doc.Subtotal.Equal(dec("1980")), "subtotal %s", doc.Subtotal)
	assert.True(t, doc.DiscountAmount.Equal(dec("99")))
	assert.True(t, doc.TaxAmount.Equal(dec("56.43")))
	assert.True(t, doc.TotalAmount.Equal(dec("1937.43")))
	assert.NoError(t, doc.Reconcile())

	assert.Equal(t, sale.DocumentTypeInvoice, doc.DocumentType)
	assert.Contains(t, doc.InvoiceNumber, "INV-")
	assert.Len(t, doc.Items, 2)

	// Estoque baixado e trilha registrada
	assert.Equal(t, 8, env.products.stockOf(p1.ID))
	assert.Equal(t, 4, env.products.stockOf(p2.ID))

	soldEntries := env.logs.entriesOfType(inventory.ChangeTypeSold)
	require.Len(t, soldEntries, 2)
	assert.Equal(t, -2, soldEntries[0].QuantityChange)
	assert.Equal(t, doc.ID, soldEntries[0].ReferenceID)

	// Ordem das escritas: cabeçalho antes dos itens
	require.Len(t, env.sales.writeOrder, 2)
	assert.Equal(t, "create:"+doc.ID, env.sales.writeOrder[0])
	assert.Equal(t, "items:"+doc.ID, env.sales.writeOrder[1])
}

func TestCheckoutMemo(t *testing.T) {
	p := newTestProduct(t, "Brinco", "300.00", 4, 1)
	env := newTestEnv(t, Config{DefaultMemoDays: 7}, p)

	cust := newTestCustomer(t)
	require.NoError(t, env.customers.Create(context.Background(), cust))

	doc, err := env.service.Checkout(context.Background(), CheckoutRequest{
		ActorID:      "vendedor-1",
		DocumentType: sale.DocumentTypeMemo,
		CustomerID:   cust.ID,
		Items:        []CheckoutItem{{ProductID: p.ID, Quantity: 2}},
	})
	require.NoError(t, err)

	assert.Contains(t, doc.InvoiceNumber, "MEM-")
	assert.Equal(t, sale.MemoStatusPending, doc.MemoStatus)
	assert.Equal(t, "pending", doc.PaymentMethod)
	assert.Equal(t, sale.PaymentStatusPending, doc.PaymentStatus)
	require.NotNil(t, doc.MemoDueDate)

	// Memo baixa estoque como uma venda
	assert.Equal(t, 2, env.products.stockOf(p.ID))
}

func TestCheckoutPreconditions(t *testing.T) {
	p := newTestProduct(t, "Anel", "450.00", 1, 0)
	cust := newTestCustomer(t)

	tests := []struct {
		name    string
		req     CheckoutRequest
		wantErr error
	}{
		{
			name: "sem ator autenticado",
			req: CheckoutRequest{
				DocumentType: sale.DocumentTypeInvoice,
				Items:        []CheckoutItem{{ProductID: p.ID, Quantity: 1}},
			},
			wantErr: ErrUnauthenticated,
		},
		{
			name: "carrinho vazio",
			req: CheckoutRequest{
				ActorID:      "vendedor-1",
				DocumentType: sale.DocumentTypeInvoice,
			},
			wantErr: ErrEmptyCart,
		},
		{
			name: "memo sem cliente",
			req: CheckoutRequest{
				ActorID:      "vendedor-1",
				DocumentType: sale.DocumentTypeMemo,
				Items:        []CheckoutItem{{ProductID: p.ID, Quantity: 1}},
			},
			wantErr: ErrMissingCustomer,
		},
		{
			name: "tipo de documento inválido",
			req: CheckoutRequest{
				ActorID:      "vendedor-1",
				DocumentType: sale.DocumentType("quote"),
				Items:        []CheckoutItem{{ProductID: p.ID, Quantity: 1}},
			},
			wantErr: sale.ErrInvalidDocType,
		},
		{
			name: "estoque insuficiente",
			req: CheckoutRequest{
				ActorID:      "vendedor-1",
				DocumentType: sale.DocumentTypeInvoice,
				Items:        []CheckoutItem{{ProductID: p.ID, Quantity: 5}},
			},
			wantErr: inventory.ErrInsufficientStock,
		},
		{
			name: "desconto fora do intervalo",
			req: CheckoutRequest{
				ActorID:         "vendedor-1",
				DocumentType:    sale.DocumentTypeInvoice,
				Items:           []CheckoutItem{{ProductID: p.ID, Quantity: 1}},
				DiscountPercent: dec("101"),
			},
			wantErr: sale.ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, Config{}, p)
			require.NoError(t, env.customers.Create(context.Background(), cust))

			before := env.products.stockOf(p.ID)

			_, err := env.service.Checkout(context.Background(), tt.req)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)

			// Falha de pré-condição não deixa rastro
			assert.Equal(t, 0, env.sales.countDocs())
			assert.Empty(t, env.logs.entries)
			assert.Equal(t, before, env.products.stockOf(p.ID))
		})
	}
}

func TestCheckoutInsufficientStockDetails(t *testing.T) {
	p := newTestProduct(t, "Anel", "450.00", 2, 0)
	env := newTestEnv(t, Config{}, p)

	_, err := env.service.Checkout(context.Background(), CheckoutRequest{
		ActorID:      "vendedor-1",
		DocumentType: sale.DocumentTypeInvoice,
		Items:        []CheckoutItem{{ProductID: p.ID, Quantity: 3}},
	})
	require.Error(t, err)

	var stockErr *inventory.StockError
	require.True(t, errors.As(err, &stockErr))
	assert.Equal(t, p.ID, stockErr.ProductID)
	assert.Equal(t, p.Name, stockErr.ProductName)
	assert.Equal(t, 3, stockErr.Requested)
	assert.Equal(t, 2, stockErr.Available)
}

func TestCheckoutAllowNegativeStock(t *testing.T) {
	p := newTestProduct(t, "Anel", "450.00", 1, 0)
	env := newTestEnv(t, Config{AllowNegativeStock: true}, p)

	_, err := env.service.Checkout(context.Background(), CheckoutRequest{
		ActorID:      "vendedor-1",
		DocumentType: sale.DocumentTypeInvoice,
		Items:        []CheckoutItem{{ProductID: p.ID, Quantity: 3}},
	})
	require.NoError(t, err)

	assert.Equal(t, -2, env.products.stockOf(p.ID))
}

func TestCheckoutCompensatesDecrementsOnFailure(t *testing.T) {
	p1 := newTestProduct(t, "Anel", "450.00", 5, 0)
	p2 := newTestProduct(t, "Colar", "800.00", 5, 0)
	env := newTestEnv(t, Config{}, p1, p2)

	// A segunda baixa falha depois que a primeira já foi aplicada
	env.products.failDecrement[p2.ID] = errors.New("conexão perdida")

	_, err := env.service.Checkout(context.Background(), CheckoutRequest{
		ActorID:      "vendedor-1",
		DocumentType: sale.DocumentTypeInvoice,
		Items: []CheckoutItem{
			{ProductID: p1.ID, Quantity: 2},
			{ProductID: p2.ID, Quantity: 1},
		},
	})
	require.Error(t, err)

	var storageErr *StorageError
	require.True(t, errors.As(err, &storageErr))
	assert.Equal(t, "baixa de estoque", storageErr.Step)

	// A baixa já aplicada foi compensada e registrada na trilha
	assert.Equal(t, 5, env.products.stockOf(p1.ID))
	restocks := env.logs.entriesOfType(inventory.ChangeTypeRestock)
	require.Len(t, restocks, 1)
	assert.Equal(t, p1.ID, restocks[0].ProductID)
	assert.Equal(t, 2, restocks[0].QuantityChange)
}

func TestCheckoutRetriesNumberCollisionOnInsert(t *testing.T) {
	// Uma colisão de número entre a verificação prévia e a gravação do
	// cabeçalho falha sem escrever nada: o checkout gera um número novo e
	// repete a gravação em vez de reportar falha de armazenamento.
	p := newTestProduct(t, "Anel", "450.00", 5, 0)
	env := newTestEnv(t, Config{}, p)
	env.sales.duplicateCreates = 1

	doc, err := env.service.Checkout(context.Background(), CheckoutRequest{
		ActorID:      "vendedor-1",
		DocumentType: sale.DocumentTypeInvoice,
		Items:        []CheckoutItem{{ProductID: p.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	assert.Contains(t, doc.InvoiceNumber, "INV-")
	assert.Equal(t, 1, env.sales.countDocs())
	assert.Equal(t, 4, env.products.stockOf(p.ID))
}

func TestCheckoutNumberCollisionExhausted(t *testing.T) {
	p := newTestProduct(t, "Anel", "450.00", 5, 0)
	env := newTestEnv(t, Config{}, p)
	env.sales.duplicateCreates = maxNumberAttempts

	_, err := env.service.Checkout(context.Background(), CheckoutRequest{
		ActorID:      "vendedor-1",
		DocumentType: sale.DocumentTypeInvoice,
		Items:        []CheckoutItem{{ProductID: p.ID, Quantity: 1}},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDuplicateNumber)

	// Conflito repetível pelo chamador, não falha de armazenamento
	var storageErr *StorageError
	assert.False(t, errors.As(err, &storageErr))

	assert.Equal(t, 0, env.sales.countDocs())
	assert.Equal(t, 5, env.products.stockOf(p.ID))
	assert.Empty(t, env.sales.writeOrder)
}

func TestCheckoutNotifications(t *testing.T) {
	// Estoque cai para o limiar: dispara o alerta de estoque baixo
	p := newTestProduct(t, "Anel", "450.00", 3, 2)
	env := newTestEnv(t, Config{}, p)

	cust := newTestCustomer(t)
	require.NoError(t, env.customers.Create(context.Background(), cust))

	doc, err := env.service.Checkout(context.Background(), CheckoutRequest{
		ActorID:       "vendedor-1",
		DocumentType:  sale.DocumentTypeInvoice,
		CustomerID:    cust.ID,
		Items:         []CheckoutItem{{ProductID: p.ID, Quantity: 1}},
		PaymentMethod: "cash",
		SendReceipt:   true,
	})
	require.NoError(t, err)

	require.Len(t, env.notifier.receipts, 1)
	assert.Equal(t, doc.InvoiceNumber, env.notifier.receipts[0].InvoiceNumber)
	assert.Equal(t, cust.Phone, env.notifier.receipts[0].CustomerPhone)

	require.Len(t, env.notifier.alerts, 1)
	assert.Equal(t, p.Name, env.notifier.alerts[0])
}

func TestCheckoutMemoSendsReminder(t *testing.T) {
	// Memo não gera recibo de compra: o cliente recebe o lembrete das
	// peças em aberto com a data de vencimento
	p := newTestProduct(t, "Brinco", "300.00", 5, 0)
	env := newTestEnv(t, Config{DefaultMemoDays: 7}, p)

	cust := newTestCustomer(t)
	require.NoError(t, env.customers.Create(context.Background(), cust))

	doc, err := env.service.Checkout(context.Background(), CheckoutRequest{
		ActorID:      "vendedor-1",
		DocumentType: sale.DocumentTypeMemo,
		CustomerID:   cust.ID,
		Items:        []CheckoutItem{{ProductID: p.ID, Quantity: 1}},
		SendReceipt:  true,
	})
	require.NoError(t, err)
	require.NotNil(t, doc.MemoDueDate)

	assert.Empty(t, env.notifier.receipts)
	require.Len(t, env.notifier.reminders, 1)

	reminder := env.notifier.reminders[0]
	assert.Equal(t, doc.InvoiceNumber, reminder.MemoNumber)
	assert.Equal(t, cust.Phone, reminder.CustomerPhone)
	assert.True(t, doc.MemoDueDate.Equal(reminder.DueDate))
	assert.True(t, doc.TotalAmount.Equal(reminder.TotalAmount))
}

func TestCheckoutNotificationFailureDoesNotFail(t *testing.T) {
	p := newTestProduct(t, "Anel", "450.00", 5, 0)
	env := newTestEnv(t, Config{}, p)
	env.notifier.failAll = errors.New("gateway indisponível")

	cust := newTestCustomer(t)
	require.NoError(t, env.customers.Create(context.Background(), cust))

	_, err := env.service.Checkout(context.Background(), CheckoutRequest{
		ActorID:      "vendedor-1",
		DocumentType: sale.DocumentTypeInvoice,
		CustomerID:   cust.ID,
		Items:        []CheckoutItem{{ProductID: p.ID, Quantity: 1}},
		SendReceipt:  true,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, env.sales.countDocs())
}

func TestConcurrentCheckoutLastUnit(t *testing.T) {
	// Dois checkouts disputam a última unidade: exatamente um fecha a venda,
	// o outro recebe erro de estoque insuficiente e o saldo final é zero.
	p := newTestProduct(t, "Anel", "450.00", 1, 0)
	env := newTestEnv(t, Config{}, p)

	var wg sync.WaitGroup
	results := make([]error, 2)

	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := env.service.Checkout(context.Background(), CheckoutRequest{
				ActorID:      "vendedor-1",
				DocumentType: sale.DocumentTypeInvoice,
				Items:        []CheckoutItem{{ProductID: p.ID, Quantity: 1}},
			})
			results[i] = err
		}(i)
	}
	wg.Wait()

	successes := 0
	stockFailures := 0
	for _, err := range results {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, inventory.ErrInsufficientStock):
			stockFailures++
		default:
			t.Fatalf("erro inesperado: %v", err)
		}
	}

	assert.Equal(t, 1, successes)
	assert.Equal(t, 1, stockFailures)
	assert.Equal(t, 0, env.products.stockOf(p.ID))

	// Apenas uma baixa registrada na trilha
	assert.Len(t, env.logs.entriesOfType(inventory.ChangeTypeSold), 1)
}

func TestPreview(t *testing.T) {
	env := newTestEnv(t, Config{})

	b, err := env.service.Preview([]sale.CartLine{
		{UnitPrice: dec("100"), Quantity: 2, DiscountPercent: dec("10")},
	}, dec("5"), dec("3"))
	require.NoError(t, err)

	assert.True(t, b.Subtotal.Equal(dec("180")))
	assert.True(t, b.Total.Equal(dec("176.13")))

	// A prévia não persiste nada
	assert.Equal(t, 0, env.sales.countDocs())
}

func TestMemoDueDateUsesDefault(t *testing.T) {
	p := newTestProduct(t, "Anel", "450.00", 5, 0)
	env := newTestEnv(t, Config{DefaultMemoDays: 10}, p)

	cust := newTestCustomer(t)
	require.NoError(t, env.customers.Create(context.Background(), cust))

	doc, err := env.service.Checkout(context.Background(), CheckoutRequest{
		ActorID:      "vendedor-1",
		DocumentType: sale.DocumentTypeMemo,
		CustomerID:   cust.ID,
		Items:        []CheckoutItem{{ProductID: p.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	require.NotNil(t, doc.MemoDueDate)
	expected := time.Now().AddDate(0, 0, 10)
	assert.WithinDuration(t, expected, *doc.MemoDueDate, 25*time.Hour)
}
