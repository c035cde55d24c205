package application

import (
	"context"
	"sort"
	"sync"
	"time"

	bookingDomain "github.com/bookwise/service-booking/internal/domain/booking"
	companyDomain "github.com/bookwise/service-booking/internal/domain/company"
	"github.com/bookwise/service-booking/internal/query"
	"github.com/bookwise/service-booking/pkg/domain"
	"github.com/bookwise/service-booking/pkg/kafka"
	"github.com/google/uuid"
)

// store is a shared in-memory backing for the fake repositories.
type store struct {
	mu        sync.Mutex
	companies map[uuid.UUID]*companyDomain.Company
	bookings  map[uuid.UUID]*bookingDomain.Booking

	// errs forces a failure for the named operation.
	errs map[string]error
}

func newStore() *store {
	return &store{
		companies: map[uuid.UUID]*companyDomain.Company{},
		bookings:  map[uuid.UUID]*bookingDomain.Booking{},
		errs:      map[string]error{},
	}
}

func (s *store) snapshot() (map[uuid.UUID]*companyDomain.Company, map[uuid.UUID]*bookingDomain.Booking) {
	cs := make(map[uuid.UUID]*companyDomain.Company, len(s.companies))
	for k, v := range s.companies {
		cs[k] = v
	}
	bs := make(map[uuid.UUID]*bookingDomain.Booking, len(s.bookings))
	for k, v := range s.bookings {
		bs[k] = v
	}
	return cs, bs
}

func (s *store) bookingCountFor(companyID uuid.UUID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, b := range s.bookings {
		if b.CompanyID() == companyID {
			n++
		}
	}
	return n
}

// --- company repository ---

type fakeCompanyRepo struct{ s *store }

func (r *fakeCompanyRepo) FindByID(_ context.Context, id uuid.UUID) (*companyDomain.Company, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.errs["company.find"]; err != nil {
		return nil, err
	}
	c, ok := r.s.companies[id]
	if !ok {
		return nil, domain.NewNotFoundError("company", id.String())
	}
	c.AttachBookings(r.bookingsOf(id))
	return c, nil
}

func (r *fakeCompanyRepo) Exists(_ context.Context, id uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.errs["company.exists"]; err != nil {
		return false, err
	}
	_, ok := r.s.companies[id]
	return ok, nil
}

func (r *fakeCompanyRepo) List(_ context.Context, plan *query.Plan) ([]*companyDomain.Company, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.errs["company.list"]; err != nil {
		return nil, 0, err
	}

	all := make([]*companyDomain.Company, 0, len(r.s.companies))
	for _, c := range r.s.companies {
		all = append(all, c)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt().After(all[j].CreatedAt()) })

	total := int64(len(all))
	start := plan.Offset()
	if start > len(all) {
		start = len(all)
	}
	end := start + plan.Limit
	if end > len(all) {
		end = len(all)
	}
	page := all[start:end]
	for _, c := range page {
		c.AttachBookings(r.bookingsOf(c.ID()))
	}
	return page, total, nil
}

func (r *fakeCompanyRepo) Save(_ context.Context, c *companyDomain.Company) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.errs["company.save"]; err != nil {
		return err
	}
	r.s.companies[c.ID()] = c
	return nil
}

func (r *fakeCompanyRepo) Update(_ context.Context, c *companyDomain.Company) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.companies[c.ID()]; !ok {
		return domain.NewNotFoundError("company", c.ID().String())
	}
	r.s.companies[c.ID()] = c
	return nil
}

func (r *fakeCompanyRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.errs["company.delete"]; err != nil {
		return err
	}
	if _, ok := r.s.companies[id]; !ok {
		return domain.NewNotFoundError("company", id.String())
	}
	delete(r.s.companies, id)
	return nil
}

// bookingsOf must be called with the lock held.
func (r *fakeCompanyRepo) bookingsOf(id uuid.UUID) []*bookingDomain.Booking {
	var out []*bookingDomain.Booking
	for _, b := range r.s.bookings {
		if b.CompanyID() == id {
			out = append(out, b)
		}
	}
	return out
}

// --- booking repository ---

type fakeBookingRepo struct{ s *store }

// withCompany returns a copy of b carrying its company, as the store's preload does.
func (r *fakeBookingRepo) withCompany(b *bookingDomain.Booking) *bookingDomain.Booking {
	var summary *bookingDomain.CompanySummary
	if c, ok := r.s.companies[b.CompanyID()]; ok {
		summary = &bookingDomain.CompanySummary{
			ID:          c.ID(),
			Name:        c.Name(),
			Address:     c.Address(),
			Telephone:   c.Telephone(),
			Description: c.Description(),
		}
	}
	return bookingDomain.ReconstructBooking(b.ID(), b.AppointmentDate(), b.UserID(), b.CompanyID(), b.Notes(), summary, b.CreatedAt(), b.UpdatedAt())
}

func (r *fakeBookingRepo) FindByID(_ context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.errs["booking.find"]; err != nil {
		return nil, err
	}
	b, ok := r.s.bookings[id]
	if !ok {
		return nil, domain.NewNotFoundError("booking", id.String())
	}
	// Hand out a copy so unsaved mutations do not leak into the store.
	return r.withCompany(b), nil
}

func (r *fakeBookingRepo) Find(_ context.Context, filter bookingDomain.Filter) ([]*bookingDomain.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.errs["booking.find"]; err != nil {
		return nil, err
	}
	var out []*bookingDomain.Booking
	for _, b := range r.s.bookings {
		if filter.UserID != nil && b.UserID() != *filter.UserID {
			continue
		}
		if filter.CompanyID != nil && b.CompanyID() != *filter.CompanyID {
			continue
		}
		out = append(out, r.withCompany(b))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt().After(out[j].CreatedAt()) })
	return out, nil
}

func (r *fakeBookingRepo) countByUser(userID uuid.UUID) int64 {
	var n int64
	for _, b := range r.s.bookings {
		if b.UserID() == userID {
			n++
		}
	}
	return n
}

func (r *fakeBookingRepo) CreateWithQuota(_ context.Context, b *bookingDomain.Booking, limit int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.errs["booking.create"]; err != nil {
		return err
	}
	if count := r.countByUser(b.UserID()); bookingDomain.HasReachedQuota(count, limit) {
		return domain.NewQuotaExceededError("quota reached")
	}
	r.s.bookings[b.ID()] = b
	return nil
}

func (r *fakeBookingRepo) Update(_ context.Context, b *bookingDomain.Booking) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.bookings[b.ID()]; !ok {
		return domain.NewNotFoundError("booking", b.ID().String())
	}
	r.s.bookings[b.ID()] = b
	return nil
}

func (r *fakeBookingRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.bookings[id]; !ok {
		return domain.NewNotFoundError("booking", id.String())
	}
	delete(r.s.bookings, id)
	return nil
}

func (r *fakeBookingRepo) DeleteByCompanyID(_ context.Context, companyID uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for id, b := range r.s.bookings {
		if b.CompanyID() == companyID {
			delete(r.s.bookings, id)
			n++
		}
	}
	return n, nil
}

func (r *fakeBookingRepo) DeleteByUserID(_ context.Context, userID uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.errs["booking.delete_user"]; err != nil {
		return 0, err
	}
	var n int64
	for id, b := range r.s.bookings {
		if b.UserID() == userID {
			delete(r.s.bookings, id)
			n++
		}
	}
	return n, nil
}

func (r *fakeBookingRepo) CountByCompany(_ context.Context) ([]bookingDomain.CompanyCount, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	byID := map[uuid.UUID]int64{}
	for _, b := range r.s.bookings {
		byID[b.CompanyID()]++
	}
	out := make([]bookingDomain.CompanyCount, 0, len(byID))
	for id, n := range byID {
		name := ""
		if c, ok := r.s.companies[id]; ok {
			name = c.Name()
		}
		out = append(out, bookingDomain.CompanyCount{CompanyID: id, CompanyName: name, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out, nil
}

// --- transaction runner ---

// fakeTxRunner restores the store snapshot when fn fails.
type fakeTxRunner struct{ s *store }

func (t *fakeTxRunner) Run(_ context.Context, fn func(
	companies companyDomain.CompanyRepository,
	bookings bookingDomain.BookingRepository,
) error) error {
	t.s.mu.Lock()
	cs, bs := t.s.snapshot()
	t.s.mu.Unlock()

	if err := fn(&fakeCompanyRepo{s: t.s}, &fakeBookingRepo{s: t.s}); err != nil {
		t.s.mu.Lock()
		t.s.companies, t.s.bookings = cs, bs
		t.s.mu.Unlock()
		return err
	}
	return nil
}

// --- publisher ---

type recordingPublisher struct {
	mu     sync.Mutex
	events []kafka.CloudEvent
	topics []string
	err    error
}

func (p *recordingPublisher) PublishEvent(_ context.Context, topic string, ce kafka.CloudEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, ce)
	p.topics = append(p.topics, topic)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

// --- fixtures ---

func seedCompany(s *store, name string, createdAt time.Time) *companyDomain.Company {
	c := companyDomain.Reconstruct(uuid.New(), companyDomain.Attributes{
		Name:        name,
		Address:     "1 Silom Rd",
		District:    "Bang Rak",
		Province:    "Bangkok",
		PostalCode:  "10500",
		Telephone:   "02-000-0000",
		Website:     "https://example.com",
		Description: "clinic",
	}, createdAt, createdAt)
	s.mu.Lock()
	s.companies[c.ID()] = c
	s.mu.Unlock()
	return c
}

func seedBooking(s *store, userID, companyID uuid.UUID, appt time.Time) *bookingDomain.Booking {
	now := time.Now().UTC()
	b := bookingDomain.ReconstructBooking(uuid.New(), appt, userID, companyID, "", nil, now, now)
	s.mu.Lock()
	s.bookings[b.ID()] = b
	s.mu.Unlock()
	return b
}
