package billing_test

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/caminvoice-api/internal/application/billing"
	"github.com/jhoicas/caminvoice-api/internal/domain"
	"github.com/jhoicas/caminvoice-api/internal/domain/entity"
	"github.com/jhoicas/caminvoice-api/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Almacén en memoria que implementa todos los puertos de persistencia
// ──────────────────────────────────────────────────────────────────────────────

const (
	testUserID  = "00000000-0000-0000-0000-000000000001"
	otherUserID = "00000000-0000-0000-0000-000000000009"
)

var testNow = time.Date(2025, time.June, 15, 10, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func dp(s string) *decimal.Decimal {
	v := d(s)
	return &v
}

type memStore struct {
	mu        sync.Mutex
	customers map[string]*entity.Customer
	services  map[string]*entity.ServiceType
	profiles  map[string]*entity.InstructorProfile // por user_id
	users     map[string]*entity.User
	invoices  map[string]*entity.Invoice
	items     map[string]*entity.InvoiceItem

	forceDuplicates int   // próximos inserts de factura que fallan con ErrDuplicate
	failItemCreate  error // error devuelto por el próximo insert de línea
	statusWrites    int
}

func newMemStore() *memStore {
	return &memStore{
		customers: map[string]*entity.Customer{},
		services:  map[string]*entity.ServiceType{},
		profiles:  map[string]*entity.InstructorProfile{},
		users:     map[string]*entity.User{},
		invoices:  map[string]*entity.Invoice{},
		items:     map[string]*entity.InvoiceItem{},
	}
}

func (s *memStore) addCustomer(c *entity.Customer) *entity.Customer {
	if c.UserID == "" {
		c.UserID = testUserID
	}
	if c.ClientType == "" {
		c.ClientType = entity.ClientTypeIndividual
	}
	cp := *c
	s.customers[c.ID] = &cp
	return c
}

func (s *memStore) invoiceCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.invoices)
}

func (s *memStore) itemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// snapshot / restore simulan el rollback de la transacción.
type memSnapshot struct {
	invoices map[string]entity.Invoice
	items    map[string]entity.InvoiceItem
}

func (s *memStore) snapshot() memSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := memSnapshot{invoices: map[string]entity.Invoice{}, items: map[string]entity.InvoiceItem{}}
	for k, v := range s.invoices {
		snap.invoices[k] = *v
	}
	for k, v := range s.items {
		snap.items[k] = *v
	}
	return snap
}

func (s *memStore) restore(snap memSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invoices = map[string]*entity.Invoice{}
	for k, v := range snap.invoices {
		cp := v
		s.invoices[k] = &cp
	}
	s.items = map[string]*entity.InvoiceItem{}
	for k, v := range snap.items {
		cp := v
		s.items[k] = &cp
	}
}

// RunInvoice implementa billing.InvoiceTxRunner.
func (s *memStore) RunInvoice(_ context.Context, fn func(repository.InvoiceRepository, repository.InvoiceItemRepository) error) error {
	snap := s.snapshot()
	if err := fn(memInvoiceRepo{s}, memItemRepo{s}); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

// ── Facturas ──────────────────────────────────────────────────────────────────

type memInvoiceRepo struct{ s *memStore }

func (r memInvoiceRepo) Create(_ context.Context, inv *entity.Invoice) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.forceDuplicates > 0 {
		r.s.forceDuplicates--
		return domain.ErrDuplicate
	}
	for _, other := range r.s.invoices {
		if other.UserID == inv.UserID && other.InvoiceNumber == inv.InvoiceNumber {
			return domain.ErrDuplicate
		}
	}
	cp := *inv
	cp.Customer, cp.Items = nil, nil
	r.s.invoices[inv.ID] = &cp
	return nil
}

func (r memInvoiceRepo) Update(_ context.Context, inv *entity.Invoice) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.invoices[inv.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *inv
	cp.Customer, cp.Items = nil, nil
	r.s.invoices[inv.ID] = &cp
	return nil
}

func (r memInvoiceRepo) UpdateTotals(_ context.Context, inv *entity.Invoice) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.invoices[inv.ID]
	if !ok {
		return domain.ErrNotFound
	}
	cur.Subtotal, cur.TaxAmount, cur.TotalAmount = inv.Subtotal, inv.TaxAmount, inv.TotalAmount
	cur.UpdatedAt = inv.UpdatedAt
	return nil
}

func (r memInvoiceRepo) UpdateStatus(_ context.Context, userID, id, status string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.statusWrites++
	cur, ok := r.s.invoices[id]
	if !ok || cur.UserID != userID {
		return domain.ErrNotFound
	}
	cur.Status = status
	return nil
}

func (r memInvoiceRepo) nested(inv *entity.Invoice) *entity.Invoice {
	cp := *inv
	if c, ok := r.s.customers[inv.CustomerID]; ok {
		cc := *c
		cp.Customer = &cc
	}
	cp.Items = r.s.itemsOf(inv.ID)
	return &cp
}

func (r memInvoiceRepo) GetByID(_ context.Context, userID, id string) (*entity.Invoice, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	inv, ok := r.s.invoices[id]
	if !ok || inv.UserID != userID {
		return nil, nil
	}
	return r.nested(inv), nil
}

func (r memInvoiceRepo) List(_ context.Context, userID string) ([]*entity.Invoice, error) {
	return r.filter(func(inv *entity.Invoice) bool { return inv.UserID == userID }), nil
}

func (r memInvoiceRepo) ListByCustomer(_ context.Context, userID, customerID string) ([]*entity.Invoice, error) {
	return r.filter(func(inv *entity.Invoice) bool {
		return inv.UserID == userID && inv.CustomerID == customerID
	}), nil
}

func (r memInvoiceRepo) filter(keep func(*entity.Invoice) bool) []*entity.Invoice {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*entity.Invoice{}
	for _, inv := range r.s.invoices {
		if keep(inv) {
			out = append(out, r.nested(inv))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].InvoiceDate.Equal(out[j].InvoiceDate) {
			return out[i].InvoiceNumber > out[j].InvoiceNumber
		}
		return out[i].InvoiceDate.After(out[j].InvoiceDate)
	})
	return out
}

func (r memInvoiceRepo) Delete(_ context.Context, userID, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	inv, ok := r.s.invoices[id]
	if !ok || inv.UserID != userID {
		return domain.ErrNotFound
	}
	delete(r.s.invoices, id)
	for k, it := range r.s.items {
		if it.InvoiceID == id {
			delete(r.s.items, k)
		}
	}
	return nil
}

func (r memInvoiceRepo) ListNumbersByPrefix(_ context.Context, userID, prefix string) ([]string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []string
	for _, inv := range r.s.invoices {
		if inv.UserID == userID && strings.HasPrefix(inv.InvoiceNumber, prefix) {
			out = append(out, inv.InvoiceNumber)
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(out)))
	return out, nil
}

func (r memInvoiceRepo) ExistsNumber(_ context.Context, userID, number string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, inv := range r.s.invoices {
		if inv.UserID == userID && inv.InvoiceNumber == number {
			return true, nil
		}
	}
	return false, nil
}

// ── Líneas ────────────────────────────────────────────────────────────────────

type memItemRepo struct{ s *memStore }

// itemsOf requiere el lock tomado.
func (s *memStore) itemsOf(invoiceID string) []*entity.InvoiceItem {
	out := []*entity.InvoiceItem{}
	for _, it := range s.items {
		if it.InvoiceID != invoiceID {
			continue
		}
		cp := *it
		if st, ok := s.services[it.ServiceTypeID]; ok {
			sc := *st
			cp.ServiceType = &sc
		}
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func (r memItemRepo) Create(_ context.Context, it *entity.InvoiceItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failItemCreate != nil {
		err := r.s.failItemCreate
		r.s.failItemCreate = nil
		return err
	}
	cp := *it
	cp.ServiceType = nil
	r.s.items[it.ID] = &cp
	return nil
}

func (r memItemRepo) GetByID(_ context.Context, invoiceID, id string) (*entity.InvoiceItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	it, ok := r.s.items[id]
	if !ok || it.InvoiceID != invoiceID {
		return nil, nil
	}
	cp := *it
	return &cp, nil
}

func (r memItemRepo) Update(_ context.Context, it *entity.InvoiceItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.items[it.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *it
	r.s.items[it.ID] = &cp
	return nil
}

func (r memItemRepo) Delete(_ context.Context, invoiceID, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	it, ok := r.s.items[id]
	if !ok || it.InvoiceID != invoiceID {
		return domain.ErrNotFound
	}
	delete(r.s.items, id)
	return nil
}

func (r memItemRepo) DeleteByInvoice(_ context.Context, invoiceID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for k, it := range r.s.items {
		if it.InvoiceID == invoiceID {
			delete(r.s.items, k)
		}
	}
	return nil
}

func (r memItemRepo) ListByInvoice(_ context.Context, invoiceID string) ([]*entity.InvoiceItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.itemsOf(invoiceID), nil
}

// ── Clientes ──────────────────────────────────────────────────────────────────

type memCustomerRepo struct{ s *memStore }

func (r memCustomerRepo) Create(_ context.Context, c *entity.Customer) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *c
	r.s.customers[c.ID] = &cp
	return nil
}

func (r memCustomerRepo) GetByID(_ context.Context, userID, id string) (*entity.Customer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.customers[id]
	if !ok || c.UserID != userID {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (r memCustomerRepo) List(_ context.Context, userID string) ([]*entity.Customer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*entity.Customer{}
	for _, c := range r.s.customers {
		if c.UserID == userID {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memCustomerRepo) Update(_ context.Context, c *entity.Customer) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *c
	r.s.customers[c.ID] = &cp
	return nil
}

func (r memCustomerRepo) Delete(_ context.Context, userID, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.customers[id]
	if !ok || c.UserID != userID {
		return domain.ErrNotFound
	}
	for _, inv := range r.s.invoices {
		if inv.CustomerID == id {
			return domain.ErrConflict
		}
	}
	delete(r.s.customers, id)
	return nil
}

// ── Tipos de servicio ─────────────────────────────────────────────────────────

type memServiceTypeRepo struct{ s *memStore }

func (r memServiceTypeRepo) Create(_ context.Context, st *entity.ServiceType) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *st
	r.s.services[st.ID] = &cp
	return nil
}

func (r memServiceTypeRepo) GetByID(_ context.Context, userID, id string) (*entity.ServiceType, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	st, ok := r.s.services[id]
	if !ok || st.UserID != userID {
		return nil, nil
	}
	cp := *st
	return &cp, nil
}

func (r memServiceTypeRepo) List(_ context.Context, userID string) ([]*entity.ServiceType, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*entity.ServiceType{}
	for _, st := range r.s.services {
		if st.UserID == userID {
			cp := *st
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r memServiceTypeRepo) Update(_ context.Context, st *entity.ServiceType) error {
	return r.Create(context.Background(), st)
}

func (r memServiceTypeRepo) Delete(_ context.Context, userID, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	st, ok := r.s.services[id]
	if !ok || st.UserID != userID {
		return domain.ErrNotFound
	}
	delete(r.s.services, id)
	for _, it := range r.s.items {
		if it.ServiceTypeID == id {
			it.ServiceTypeID = ""
		}
	}
	return nil
}

// ── Perfil y usuarios ─────────────────────────────────────────────────────────

type memProfileRepo struct{ s *memStore }

func (r memProfileRepo) GetByUserID(_ context.Context, userID string) (*entity.InstructorProfile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.profiles[userID]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r memProfileRepo) Create(_ context.Context, p *entity.InstructorProfile) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.profiles[p.UserID]; ok {
		return domain.ErrDuplicate
	}
	cp := *p
	r.s.profiles[p.UserID] = &cp
	return nil
}

func (r memProfileRepo) Update(_ context.Context, p *entity.InstructorProfile) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.profiles[p.UserID]; !ok {
		return domain.ErrNotFound
	}
	cp := *p
	r.s.profiles[p.UserID] = &cp
	return nil
}

func (r memProfileRepo) Upsert(_ context.Context, p *entity.InstructorProfile) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *p
	if cur, ok := r.s.profiles[p.UserID]; ok {
		cp.ID, cp.CreatedAt = cur.ID, cur.CreatedAt
		*p = cp
	}
	r.s.profiles[p.UserID] = &cp
	return nil
}

func (r memProfileRepo) Delete(_ context.Context, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.profiles[userID]; !ok {
		return domain.ErrNotFound
	}
	delete(r.s.profiles, userID)
	return nil
}

type memUserRepo struct{ s *memStore }

func (r memUserRepo) Create(_ context.Context, u *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, other := range r.s.users {
		if strings.EqualFold(other.Email, u.Email) {
			return domain.ErrEmailAlreadyExists
		}
	}
	cp := *u
	r.s.users[u.ID] = &cp
	return nil
}

func (r memUserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r memUserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

// ── Métricas ──────────────────────────────────────────────────────────────────

type recordingMetrics struct {
	mu         sync.Mutex
	created    int
	collisions int
	rendered   map[string]int
	failed     map[string]int
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{rendered: map[string]int{}, failed: map[string]int{}}
}

func (m *recordingMetrics) InvoiceCreated() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.created++
}

func (m *recordingMetrics) InvoiceNumberCollision() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.collisions++
}

func (m *recordingMetrics) PDFRendered(r string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rendered[r]++
}

func (m *recordingMetrics) PDFRenderFailed(r string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failed[r]++
}

// ── Ensamblado ────────────────────────────────────────────────────────────────

var errBoom = errors.New("boom")

type fixture struct {
	store     *memStore
	metrics   *recordingMetrics
	invoices  *billing.InvoiceUseCase
	customers *billing.CustomerUseCase
	services  *billing.ServiceTypeUseCase
	profiles  *billing.ProfileUseCase
}

func newFixture() *fixture {
	s := newMemStore()
	m := newRecordingMetrics()
	invRepo := memInvoiceRepo{s}
	numbers := billing.NewInvoiceNumberGenerator(invRepo,
		billing.NumberGeneratorConfig{MaxRetries: 3},
		billing.WithNumberClock(fixedClock),
		billing.WithNumberMetrics(m),
	)
	invoices := billing.NewInvoiceUseCase(
		s, invRepo, memCustomerRepo{s}, memServiceTypeRepo{s}, memProfileRepo{s},
		numbers,
		billing.InvoiceConfig{DefaultTaxRate: d("21"), PaymentDays: 30},
		m,
	).WithClock(fixedClock)

	s.users[testUserID] = &entity.User{ID: testUserID, Email: "marie@dupont.be", Name: "Marie Claire Dupont"}
	s.addCustomer(&entity.Customer{ID: "cust-1", FirstName: "Luc", LastName: "Martin", Email: "luc@example.com"})
	s.addCustomer(&entity.Customer{
		ID: "cust-2", ClientType: entity.ClientTypeCompany, CompanyName: "Transports SA", Email: "info@transports.be",
	})
	s.services["svc-1"] = &entity.ServiceType{
		ID: "svc-1", UserID: testUserID, Name: "Leçon 1h", Category: "lesson",
		PricingType: entity.PricingPerHour, UnitPrice: d("50"), IsActive: true,
	}

	return &fixture{
		store:     s,
		metrics:   m,
		invoices:  invoices,
		customers: billing.NewCustomerUseCase(memCustomerRepo{s}, invRepo),
		services:  billing.NewServiceTypeUseCase(memServiceTypeRepo{s}),
		profiles:  billing.NewProfileUseCase(memProfileRepo{s}, memUserRepo{s}, d("21")),
	}
}
