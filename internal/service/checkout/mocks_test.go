package checkout

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/hugohenrick/pos-joalheria/internal/domain/customer"
	"github.com/hugohenrick/pos-joalheria/internal/domain/inventory"
	"github.com/hugohenrick/pos-joalheria/internal/domain/notification"
	"github.com/hugohenrick/pos-joalheria/internal/domain/product"
	"github.com/hugohenrick/pos-joalheria/internal/domain/sale"
)

var errNotFound = errors.New("registro não encontrado")

// fakeProductRepo é um repositório de produtos em memória. O mutex reproduz a
// atomicidade da baixa condicional de estoque do banco, o que permite
// exercitar checkouts concorrentes disputando as últimas unidades.
type fakeProductRepo struct {
	mu       sync.Mutex
	products map[string]*product.Product

	decrementCalls int
	failDecrement  map[string]error
}

func newFakeProductRepo(products ...*product.Product) *fakeProductRepo {
	m := make(map[string]*product.Product, len(products))
	for _, p := range products {
		m[p.ID] = p
	}
	return &fakeProductRepo{products: m, failDecrement: make(map[string]error)}
}

func (f *fakeProductRepo) Create(ctx context.Context, p *product.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.products[p.ID] = p
	return nil
}

func (f *fakeProductRepo) FindByID(ctx context.Context, id string) (*product.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.products[id]
	if !ok {
		return nil, errNotFound
	}
	clone := *p
	return &clone, nil
}

func (f *fakeProductRepo) FindBySKU(ctx context.Context, sku string) (*product.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.products {
		if p.SKU == sku {
			clone := *p
			return &clone, nil
		}
	}
	return nil, errNotFound
}

func (f *fakeProductRepo) List(ctx context.Context, limit, offset int) ([]*product.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*product.Product, 0, len(f.products))
	for _, p := range f.products {
		clone := *p
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakeProductRepo) FindByName(ctx context.Context, name string, limit, offset int) ([]*product.Product, error) {
	return f.List(ctx, limit, offset)
}

func (f *fakeProductRepo) FindLowStock(ctx context.Context, limit, offset int) ([]*product.Product, error) {
	return f.List(ctx, limit, offset)
}

func (f *fakeProductRepo) Update(ctx context.Context, p *product.Product) error {
	return f.Create(ctx, p)
}

func (f *fakeProductRepo) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.products, id)
	return nil
}

func (f *fakeProductRepo) Count(ctx context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.products), nil
}

func (f *fakeProductRepo) DecrementStock(ctx context.Context, id string, quantity int, allowNegative bool) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.decrementCalls++

	if err, ok := f.failDecrement[id]; ok {
		return 0, err
	}

	p, ok := f.products[id]
	if !ok {
		return 0, errNotFound
	}
	if p.StockQuantity < quantity && !allowNegative {
		return 0, &inventory.StockError{ProductID: id, ProductName: p.Name, Requested: quantity, Available: p.StockQuantity}
	}

	p.StockQuantity -= quantity
	return p.StockQuantity, nil
}

func (f *fakeProductRepo) IncrementStock(ctx context.Context, id string, quantity int) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	p, ok := f.products[id]
	if !ok {
		return 0, errNotFound
	}
	p.StockQuantity += quantity
	return p.StockQuantity, nil
}

func (f *fakeProductRepo) stockOf(id string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.products[id].StockQuantity
}

// fakeCustomerRepo é um repositório de clientes em memória
type fakeCustomerRepo struct {
	customers map[string]*customer.Customer
}

func newFakeCustomerRepo(customers ...*customer.Customer) *fakeCustomerRepo {
	m := make(map[string]*customer.Customer, len(customers))
	for _, c := range customers {
		m[c.ID] = c
	}
	return &fakeCustomerRepo{customers: m}
}

func (f *fakeCustomerRepo) Create(ctx context.Context, c *customer.Customer) error {
	f.customers[c.ID] = c
	return nil
}

func (f *fakeCustomerRepo) FindByID(ctx context.Context, id string) (*customer.Customer, error) {
	c, ok := f.customers[id]
	if !ok {
		return nil, errNotFound
	}
	return c, nil
}

func (f *fakeCustomerRepo) FindByPhone(ctx context.Context, phone string) (*customer.Customer, error) {
	for _, c := range f.customers {
		if c.Phone == phone {
			return c, nil
		}
	}
	return nil, errNotFound
}

func (f *fakeCustomerRepo) FindByName(ctx context.Context, name string, limit, offset int) ([]*customer.Customer, error) {
	return nil, nil
}

func (f *fakeCustomerRepo) List(ctx context.Context, limit, offset int) ([]*customer.Customer, error) {
	return nil, nil
}

func (f *fakeCustomerRepo) Update(ctx context.Context, c *customer.Customer) error {
	f.customers[c.ID] = c
	return nil
}

func (f *fakeCustomerRepo) Delete(ctx context.Context, id string) error {
	delete(f.customers, id)
	return nil
}

func (f *fakeCustomerRepo) Count(ctx context.Context) (int, error) {
	return len(f.customers), nil
}

// fakeSaleRepo é um repositório de vendas em memória que registra a ordem das
// escritas para as asserções de sequência do checkout
type fakeSaleRepo struct {
	mu    sync.Mutex
	docs  map[string]*sale.SaleDocument
	items map[string][]sale.SaleLineItem

	writeOrder     []string
	failCreate     error
	failAddItems   error
	failUpdateMemo error

	// duplicateCreates faz as próximas N gravações de cabeçalho falharem
	// com colisão de número, imitando a restrição de unicidade do banco
	duplicateCreates int
}

func newFakeSaleRepo() *fakeSaleRepo {
	return &fakeSaleRepo{
		docs:  make(map[string]*sale.SaleDocument),
		items: make(map[string][]sale.SaleLineItem),
	}
}

func (f *fakeSaleRepo) Create(ctx context.Context, d *sale.SaleDocument) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failCreate != nil {
		return f.failCreate
	}
	if f.duplicateCreates > 0 {
		f.duplicateCreates--
		return fmt.Errorf("erro ao criar documento de venda: %w", sale.ErrDuplicateNumber)
	}
	for _, existing := range f.docs {
		if existing.InvoiceNumber == d.InvoiceNumber {
			return sale.ErrDuplicateNumber
		}
	}
	clone := *d
	f.docs[d.ID] = &clone
	f.writeOrder = append(f.writeOrder, "create:"+d.ID)
	return nil
}

func (f *fakeSaleRepo) AddLineItems(ctx context.Context, saleID string, items []sale.SaleLineItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAddItems != nil {
		return f.failAddItems
	}
	f.items[saleID] = append(f.items[saleID], items...)
	f.writeOrder = append(f.writeOrder, "items:"+saleID)
	return nil
}

func (f *fakeSaleRepo) FindByID(ctx context.Context, id string) (*sale.SaleDocument, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.docs[id]
	if !ok {
		return nil, errNotFound
	}
	clone := *d
	clone.Items = append([]sale.SaleLineItem(nil), f.items[id]...)
	return &clone, nil
}

func (f *fakeSaleRepo) FindByNumber(ctx context.Context, number string) (*sale.SaleDocument, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, d := range f.docs {
		if d.InvoiceNumber == number {
			clone := *d
			clone.Items = append([]sale.SaleLineItem(nil), f.items[d.ID]...)
			return &clone, nil
		}
	}
	return nil, errNotFound
}

func (f *fakeSaleRepo) List(ctx context.Context, filter sale.ListFilter, limit, offset int) ([]*sale.SaleDocument, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*sale.SaleDocument, 0)
	for _, d := range f.docs {
		if filter.DocumentType != "" && d.DocumentType != filter.DocumentType {
			continue
		}
		if filter.MemoStatus != "" && d.MemoStatus != filter.MemoStatus {
			continue
		}
		if filter.CustomerID != "" && d.CustomerID != filter.CustomerID {
			continue
		}
		if !filter.DueBefore.IsZero() {
			open := d.MemoStatus == sale.MemoStatusPending || d.MemoStatus == sale.MemoStatusPartiallyReturned
			if !open || d.MemoDueDate == nil || !d.MemoDueDate.Before(filter.DueBefore) {
				continue
			}
		}
		clone := *d
		out = append(out, &clone)
	}
	return out, nil
}

func (f *fakeSaleRepo) Count(ctx context.Context, filter sale.ListFilter) (int, error) {
	docs, _ := f.List(ctx, filter, 0, 0)
	return len(docs), nil
}

func (f *fakeSaleRepo) UpdateMemoStatus(ctx context.Context, id string, status sale.MemoStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failUpdateMemo != nil {
		return f.failUpdateMemo
	}
	d, ok := f.docs[id]
	if !ok {
		return errNotFound
	}
	d.MemoStatus = status
	f.writeOrder = append(f.writeOrder, "memo_status:"+id)
	return nil
}

func (f *fakeSaleRepo) ExistsByNumber(ctx context.Context, number string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, d := range f.docs {
		if d.InvoiceNumber == number {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeSaleRepo) countDocs() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.docs)
}

// fakeLogRepo acumula a trilha de auditoria de estoque em memória
type fakeLogRepo struct {
	mu         sync.Mutex
	entries    []*inventory.LogEntry
	failAppend error
}

func newFakeLogRepo() *fakeLogRepo {
	return &fakeLogRepo{}
}

func (f *fakeLogRepo) Append(ctx context.Context, entry *inventory.LogEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAppend != nil {
		return f.failAppend
	}
	f.entries = append(f.entries, entry)
	return nil
}

func (f *fakeLogRepo) FindByProduct(ctx context.Context, productID string, limit, offset int) ([]*inventory.LogEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*inventory.LogEntry, 0)
	for _, e := range f.entries {
		if e.ProductID == productID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeLogRepo) FindByReference(ctx context.Context, referenceID string) ([]*inventory.LogEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*inventory.LogEntry, 0)
	for _, e := range f.entries {
		if e.ReferenceID == referenceID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeLogRepo) entriesOfType(ct inventory.ChangeType) []*inventory.LogEntry {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*inventory.LogEntry, 0)
	for _, e := range f.entries {
		if e.ChangeType == ct {
			out = append(out, e)
		}
	}
	return out
}

// fakeNotifier registra as notificações despachadas
type fakeNotifier struct {
	mu        sync.Mutex
	receipts  []notification.Receipt
	reminders []notification.MemoReminder
	alerts    []string
	failAll   error
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{}
}

func (f *fakeNotifier) SendSaleReceipt(ctx context.Context, receipt notification.Receipt) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll != nil {
		return f.failAll
	}
	f.receipts = append(f.receipts, receipt)
	return nil
}

func (f *fakeNotifier) SendMemoReminder(ctx context.Context, reminder notification.MemoReminder) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll != nil {
		return f.failAll
	}
	f.reminders = append(f.reminders, reminder)
	return nil
}

func (f *fakeNotifier) SendLowStockAlert(ctx context.Context, productName string, currentStock, minLevel int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll != nil {
		return f.failAll
	}
	f.alerts = append(f.alerts, productName)
	return nil
}

// nopLogger descarta todas as mensagens
type nopLogger struct{}

func (nopLogger) Info(msg string, keysAndValues ...interface{})  {}
func (nopLogger) Error(msg string, keysAndValues ...interface{}) {}
func (nopLogger) Debug(msg string, keysAndValues ...interface{}) {}
func (nopLogger) Warn(msg string, keysAndValues ...interface{})  {}
