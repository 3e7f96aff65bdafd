package usecase

import (
	"context"
	"fmt"
	"sync"

	domain "github.com/giftnest/storefront/internal/entity"
	"github.com/giftnest/storefront/internal/payment"
)

type memCartStore struct {
	mu      sync.Mutex
	lines   map[string][]domain.CartLine
	cleared int
}

func newMemCartStore() *memCartStore {
	return &memCartStore{lines: map[string][]domain.CartLine{}}
}

func (s *memCartStore) Lines(_ context.Context, sessionID string) ([]domain.CartLine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.CartLine(nil), s.lines[sessionID]...), nil
}

func (s *memCartStore) Upsert(_ context.Context, sessionID, productID string, quantity int, mode domain.UpsertMode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, l := range s.lines[sessionID] {
		if l.ProductID == productID {
			if mode == domain.UpsertAdd {
				s.lines[sessionID][i].Quantity += quantity
			} else {
				s.lines[sessionID][i].Quantity = quantity
			}
			return nil
		}
	}
	s.lines[sessionID] = append(s.lines[sessionID], domain.CartLine{ProductID: productID, Quantity: quantity})
	return nil
}

func (s *memCartStore) Remove(_ context.Context, sessionID, productID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.lines[sessionID][:0]
	for _, l := range s.lines[sessionID] {
		if l.ProductID != productID {
			out = append(out, l)
		}
	}
	s.lines[sessionID] = out
	return nil
}

func (s *memCartStore) Clear(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.lines, sessionID)
	s.cleared++
	return nil
}

type memCatalog struct {
	mu       sync.Mutex
	products map[string]*domain.Product
}

func newMemCatalog(products ...*domain.Product) *memCatalog {
	c := &memCatalog{products: map[string]*domain.Product{}}
	for _, p := range products {
		c.products[p.ID] = p
	}
	return c
}

func (c *memCatalog) GetProduct(_ context.Context, id string) (*domain.Product, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.products[id]
	if !ok {
		return nil, fmt.Errorf("product %s not found", id)
	}
	cp := *p
	return &cp, nil
}

func (c *memCatalog) GetProducts(_ context.Context, ids []string) (map[string]*domain.Product, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]*domain.Product, len(ids))
	for _, id := range ids {
		if p, ok := c.products[id]; ok {
			cp := *p
			out[id] = &cp
		}
	}
	return out, nil
}

// memOrderRepo mirrors the transactional semantics of the MySQL repo: Create
// decrements catalog stock all-or-nothing, MarkPaid is a guarded transition.
type memOrderRepo struct {
	mu       sync.Mutex
	catalog  *memCatalog
	orders   map[string]*domain.Order
	byIntent map[string]string
}

func newMemOrderRepo(catalog *memCatalog) *memOrderRepo {
	return &memOrderRepo{catalog: catalog, orders: map[string]*domain.Order{}, byIntent: map[string]string{}}
}

func (r *memOrderRepo) Create(_ context.Context, o *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.catalog.mu.Lock()
	defer r.catalog.mu.Unlock()

	for _, it := range o.Items {
		p, ok := r.catalog.products[it.ProductID]
		if !ok || p.Stock < it.Quantity {
			avail := 0
			name := it.Name
			if ok {
				avail = p.Stock
				name = p.Name
			}
			return &InsufficientStockError{Violations: []StockViolation{{
				ProductID: it.ProductID, Name: name, Requested: it.Quantity, Available: avail,
			}}}
		}
	}
	for _, it := range o.Items {
		r.catalog.products[it.ProductID].Stock -= it.Quantity
	}
	cp := *o
	cp.Items = append([]domain.OrderItem(nil), o.Items...)
	r.orders[o.ID] = &cp
	return nil
}

func (r *memOrderRepo) GetByID(_ context.Context, id string) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, nil
	}
	cp := *o
	cp.Items = append([]domain.OrderItem(nil), o.Items...)
	return &cp, nil
}

func (r *memOrderRepo) GetByIntentID(_ context.Context, intentID string) (*domain.Order, error) {
	r.mu.Lock()
	id, ok := r.byIntent[intentID]
	r.mu.Unlock()
	if !ok {
		return nil, nil
	}
	return r.GetByID(context.Background(), id)
}

func (r *memOrderRepo) SetPaymentIntent(_ context.Context, orderID, provider, intentID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[orderID]
	if !ok {
		return ErrOrderNotFound
	}
	o.Provider = provider
	o.PaymentIntentID = intentID
	r.byIntent[intentID] = orderID
	return nil
}

func (r *memOrderRepo) MarkPaid(_ context.Context, orderID, reference string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[orderID]
	if !ok || o.Paid {
		return false, nil
	}
	o.Paid = true
	o.ProviderReference = reference
	return true, nil
}

type memIdem struct {
	mu     sync.Mutex
	locks  map[string]bool
	values map[string]string
}

func newMemIdem() *memIdem {
	return &memIdem{locks: map[string]bool{}, values: map[string]string{}}
}

func (s *memIdem) TryLock(_ context.Context, scope, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := scope + ":" + key
	if s.locks[k] {
		return false, nil
	}
	s.locks[k] = true
	return true, nil
}

func (s *memIdem) Remember(_ context.Context, scope, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[scope+":"+key] = value
	return nil
}

func (s *memIdem) Recall(_ context.Context, scope, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[scope+":"+key]
	return v, ok, nil
}

type recordingNotifier struct {
	mu   sync.Mutex
	msgs []PaymentConfirmedMsg
}

func (n *recordingNotifier) PaymentConfirmed(_ context.Context, msg PaymentConfirmedMsg) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.msgs = append(n.msgs, msg)
	return nil
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.msgs)
}

// fakeProvider exercises every capability the registry can hand out.
type fakeProvider struct {
	kind          payment.Kind
	session       *payment.Session
	initiateErr   error
	webhookFn     func(payload []byte, signature string) (*payment.Event, error)
	clientFn      func(v payment.ClientVerification) (*payment.Event, error)
	initiateCalls int
}

func (p *fakeProvider) Kind() payment.Kind { return p.kind }

func (p *fakeProvider) Method() payment.Method {
	return payment.Method{ID: string(p.kind), Name: string(p.kind)}
}

func (p *fakeProvider) Initiate(_ context.Context, _ *domain.Order) (*payment.Session, error) {
	p.initiateCalls++
	if p.initiateErr != nil {
		return nil, p.initiateErr
	}
	return p.session, nil
}

func (p *fakeProvider) WebhookHeader() string { return "X-Test-Signature" }

func (p *fakeProvider) VerifyWebhook(payload []byte, signature string) (*payment.Event, error) {
	return p.webhookFn(payload, signature)
}

func (p *fakeProvider) VerifyClient(v payment.ClientVerification) (*payment.Event, error) {
	return p.clientFn(v)
}
