package dining

import (
	"context"
	"sync"

	"github.com/appetiteclub/apt/events"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type publishedMessage struct {
	Topic string
	Msg   []byte
}

// MockPublisher records every published message.
type MockPublisher struct {
	mu          sync.Mutex
	Messages    []publishedMessage
	PublishFunc func(ctx context.Context, topic string, msg []byte) error
}

func NewMockPublisher() *MockPublisher {
	return &MockPublisher{}
}

func (m *MockPublisher) Publish(ctx context.Context, topic string, msg []byte) error {
	if m.PublishFunc != nil {
		return m.PublishFunc(ctx, topic, msg)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Messages = append(m.Messages, publishedMessage{Topic: topic, Msg: msg})
	return nil
}

func (m *MockPublisher) Topics() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	topics := make([]string, 0, len(m.Messages))
	for _, msg := range m.Messages {
		topics = append(topics, msg.Topic)
	}
	return topics
}

type MockSubscriber struct {
	SubscribeFunc func(ctx context.Context, topic string, handler events.HandlerFunc) error
}

func NewMockSubscriber() *MockSubscriber {
	return &MockSubscriber{}
}

func (m *MockSubscriber) Subscribe(ctx context.Context, topic string, handler events.HandlerFunc) error {
	if m.SubscribeFunc != nil {
		return m.SubscribeFunc(ctx, topic, handler)
	}
	return nil
}

// MockTableRepo keeps copies so that callers only see saved state.
type MockTableRepo struct {
	mu       sync.RWMutex
	tables   map[uuid.UUID]Table
	GetFunc  func(ctx context.Context, id uuid.UUID) (*Table, error)
	SaveFunc func(ctx context.Context, table *Table) error
}

func NewMockTableRepo() *MockTableRepo {
	return &MockTableRepo{
		tables: make(map[uuid.UUID]Table),
	}
}

func (m *MockTableRepo) Create(ctx context.Context, table *Table) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.tables {
		if t.AccessToken == table.AccessToken {
			return ErrDuplicateKey
		}
	}
	m.tables[table.ID] = *table
	return nil
}

func (m *MockTableRepo) Get(ctx context.Context, id uuid.UUID) (*Table, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.tables[id]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (m *MockTableRepo) GetByToken(ctx context.Context, token string) (*Table, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, t := range m.tables {
		if t.AccessToken == token {
			found := t
			return &found, nil
		}
	}
	return nil, nil
}

func (m *MockTableRepo) List(ctx context.Context) ([]*Table, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*Table, 0, len(m.tables))
	for _, t := range m.tables {
		t := t
		result = append(result, &t)
	}
	return result, nil
}

func (m *MockTableRepo) Save(ctx context.Context, table *Table) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, table)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.tables[table.ID]
	if !ok || stored.Version != table.Version {
		return Conflict("table %s was modified by another request", table.Code)
	}
	table.Version++
	m.tables[table.ID] = *table
	return nil
}

// Stored returns the saved copy of a table.
func (m *MockTableRepo) Stored(id uuid.UUID) Table {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.tables[id]
}

type MockOrderRepo struct {
	mu         sync.RWMutex
	orders     map[uuid.UUID]Order
	CreateFunc func(ctx context.Context, order *Order) error
	SaveFunc   func(ctx context.Context, order *Order) error
}

func NewMockOrderRepo() *MockOrderRepo {
	return &MockOrderRepo{
		orders: make(map[uuid.UUID]Order),
	}
}

func (m *MockOrderRepo) Create(ctx context.Context, order *Order) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, order)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders[order.ID] = *order
	return nil
}

func (m *MockOrderRepo) Get(ctx context.Context, id uuid.UUID) (*Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, nil
	}
	return &o, nil
}

func (m *MockOrderRepo) ListByTableAndStatus(ctx context.Context, tableID uuid.UUID, statuses ...OrderStatus) ([]*Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*Order
	for _, o := range m.orders {
		if o.TableID != tableID {
			continue
		}
		if len(statuses) > 0 && !containsStatus(statuses, o.Status) {
			continue
		}
		o := o
		result = append(result, &o)
	}
	return result, nil
}

func containsStatus(statuses []OrderStatus, s OrderStatus) bool {
	for _, candidate := range statuses {
		if candidate == s {
			return true
		}
	}
	return false
}

func (m *MockOrderRepo) Save(ctx context.Context, order *Order) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, order)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.orders[order.ID]
	if !ok || stored.Version != order.Version {
		return Conflict("order %s was modified by another request", order.ID)
	}
	order.Version++
	m.orders[order.ID] = *order
	return nil
}

func (m *MockOrderRepo) Stored(id uuid.UUID) (Order, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, ok := m.orders[id]
	return o, ok
}

func (m *MockOrderRepo) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.orders)
}

type MockItemRepo struct {
	mu         sync.RWMutex
	items      map[uuid.UUID]Item
	CreateFunc func(ctx context.Context, item *Item) error
}

func NewMockItemRepo() *MockItemRepo {
	return &MockItemRepo{
		items: make(map[uuid.UUID]Item),
	}
}

func (m *MockItemRepo) Create(ctx context.Context, item *Item) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, item)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[item.ID] = *item
	return nil
}

func (m *MockItemRepo) Get(ctx context.Context, id uuid.UUID) (*Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	i, ok := m.items[id]
	if !ok {
		return nil, nil
	}
	return &i, nil
}

func (m *MockItemRepo) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]*Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*Item
	for _, i := range m.items {
		if i.OrderID == orderID {
			i := i
			result = append(result, &i)
		}
	}
	sortByPosition(result)
	return result, nil
}

func sortByPosition(items []*Item) {
	for a := 1; a < len(items); a++ {
		for b := a; b > 0 && items[b].Position < items[b-1].Position; b-- {
			items[b], items[b-1] = items[b-1], items[b]
		}
	}
}

func (m *MockItemRepo) Save(ctx context.Context, item *Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.items[item.ID]
	if !ok || stored.Version != item.Version {
		return Conflict("order item %s was modified by another request", item.ID)
	}
	item.Version++
	m.items[item.ID] = *item
	return nil
}

func (m *MockItemRepo) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, id)
	return nil
}

func (m *MockItemRepo) DeleteByOrder(ctx context.Context, orderID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, i := range m.items {
		if i.OrderID == orderID {
			delete(m.items, id)
		}
	}
	return nil
}

type MockPaymentRepo struct {
	mu       sync.RWMutex
	payments map[uuid.UUID]Payment
}

func NewMockPaymentRepo() *MockPaymentRepo {
	return &MockPaymentRepo{
		payments: make(map[uuid.UUID]Payment),
	}
}

// Create enforces one payment per order like the stores' unique index.
func (m *MockPaymentRepo) Create(ctx context.Context, payment *Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.payments[payment.OrderID]; ok {
		return ErrDuplicateKey
	}
	m.payments[payment.OrderID] = *payment
	return nil
}

func (m *MockPaymentRepo) GetByOrder(ctx context.Context, orderID uuid.UUID) (*Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.payments[orderID]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (m *MockPaymentRepo) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.payments)
}

type MockMenuLookup struct {
	items map[uuid.UUID]MenuItem
}

func NewMockMenuLookup(items ...MenuItem) *MockMenuLookup {
	m := &MockMenuLookup{items: make(map[uuid.UUID]MenuItem)}
	for _, i := range items {
		m.items[i.ID] = i
	}
	return m
}

func (m *MockMenuLookup) Find(ctx context.Context, id uuid.UUID) (*MenuItem, error) {
	i, ok := m.items[id]
	if !ok {
		return nil, nil
	}
	return &i, nil
}

func (m *MockMenuLookup) FindAll(ctx context.Context, ids []uuid.UUID) ([]MenuItem, error) {
	var found []MenuItem
	for _, id := range ids {
		if i, ok := m.items[id]; ok {
			found = append(found, i)
		}
	}
	return found, nil
}

func (m *MockMenuLookup) ListAvailable(ctx context.Context) ([]MenuItem, error) {
	var available []MenuItem
	for _, i := range m.items {
		if i.Available {
			available = append(available, i)
		}
	}
	return available, nil
}

func (m *MockMenuLookup) UpsertMenuItem(ctx context.Context, item MenuItem) error {
	m.items[item.ID] = item
	return nil
}

var (
	phoID    = uuid.MustParse("6f1c2a4e-1b57-4d8e-9a55-0c3f2b7e9d01")
	riceID   = uuid.MustParse("6f1c2a4e-1b57-4d8e-9a55-0c3f2b7e9d02")
	coffeeID = uuid.MustParse("6f1c2a4e-1b57-4d8e-9a55-0c3f2b7e9d04")
	juiceID  = uuid.MustParse("6f1c2a4e-1b57-4d8e-9a55-0c3f2b7e9d05")
)

func testMenu() *MockMenuLookup {
	return NewMockMenuLookup(
		MenuItem{ID: phoID, Name: "Beef Pho", Price: decimal.NewFromInt(45000), Available: true},
		MenuItem{ID: riceID, Name: "Broken Rice", Price: decimal.NewFromInt(40000), Available: true},
		MenuItem{ID: coffeeID, Name: "Iced Coffee", Price: decimal.NewFromInt(25000), Available: true},
		MenuItem{ID: juiceID, Name: "Sugarcane Juice", Price: decimal.NewFromInt(20000), Available: false},
	)
}

// fixture wires a Service to in-memory stores.
type fixture struct {
	service   *Service
	tables    *MockTableRepo
	orders    *MockOrderRepo
	items     *MockItemRepo
	payments  *MockPaymentRepo
	menu      *MockMenuLookup
	publisher *MockPublisher
}

func newFixture() *fixture {
	f := &fixture{
		tables:    NewMockTableRepo(),
		orders:    NewMockOrderRepo(),
		items:     NewMockItemRepo(),
		payments:  NewMockPaymentRepo(),
		menu:      testMenu(),
		publisher: NewMockPublisher(),
	}
	f.service = NewService(ServiceDeps{
		Repos: Repos{
			TableRepo:   f.tables,
			OrderRepo:   f.orders,
			ItemRepo:    f.items,
			PaymentRepo: f.payments,
		},
		Menu:      f.menu,
		Publisher: f.publisher,
	}, nil)
	return f
}

func (f *fixture) addTable(code string, status TableStatus) *Table {
	t := NewTable(code, 4)
	t.BeforeCreate()
	t.Status = status
	if err := f.tables.Create(context.Background(), t); err != nil {
		panic(err)
	}
	return t
}

// openTable seats a table through the service and returns its ACTIVE order.
func (f *fixture) openTable(code string) (*Table, uuid.UUID) {
	t := f.addTable(code, TableAvailable)
	summary, err := f.service.OpenTable(context.Background(), t.ID)
	if err != nil {
		panic(err)
	}
	return t, *summary.CurrentOrderID
}

func (f *fixture) addItem(orderID, menuID uuid.UUID, qty int) *Item {
	item, err := f.service.AddItem(context.Background(), orderID, AddItemRequest{MenuItemID: menuID, Quantity: qty})
	if err != nil {
		panic(err)
	}
	return item
}
