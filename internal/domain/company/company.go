package company

import (
	"strings"
	"time"

	"github.com/bookwise/service-booking/internal/domain/booking"
	"github.com/google/uuid"
)

// Attributes are the client-editable fields of a company.
type Attributes struct {
	Name        string `json:"name" validate:"required,max=50"`
	Address     string `json:"address" validate:"required"`
	District    string `json:"district" validate:"required"`
	Province    string `json:"province" validate:"required"`
	PostalCode  string `json:"postalcode" validate:"required,len=5"`
	Telephone   string `json:"tel" validate:"required"`
	Website     string `json:"website" validate:"required,website"`
	Description string `json:"description" validate:"required"`
}

// Patch is a partial update; nil fields are left unchanged.
type Patch struct {
	Name        *string
	Address     *string
	District    *string
	Province    *string
	PostalCode  *string
	Telephone   *string
	Website     *string
	Description *string
}

// Company is the aggregate root for a bookable location.
type Company struct {
	id    uuid.UUID
	attrs Attributes

	// bookings is derived at read time and never persisted with the company.
	bookings []*booking.Booking

	createdAt time.Time
	updatedAt time.Time
}

// NewCompany validates attrs and creates a company.
func NewCompany(attrs Attributes) (*Company, error) {
	attrs = attrs.normalize()
	if err := Validate(attrs); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &Company{
		id:        uuid.New(),
		attrs:     attrs,
		createdAt: now,
		updatedAt: now,
	}, nil
}

// Reconstruct rebuilds a Company from persistence data (no validation).
func Reconstruct(id uuid.UUID, attrs Attributes, createdAt, updatedAt time.Time) *Company {
	return &Company{
		id:        id,
		attrs:     attrs,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}

// --- Getters ---

func (c *Company) ID() uuid.UUID                { return c.id }
func (c *Company) Name() string                 { return c.attrs.Name }
func (c *Company) Address() string              { return c.attrs.Address }
func (c *Company) District() string             { return c.attrs.District }
func (c *Company) Province() string             { return c.attrs.Province }
func (c *Company) PostalCode() string           { return c.attrs.PostalCode }
func (c *Company) Telephone() string            { return c.attrs.Telephone }
func (c *Company) Website() string              { return c.attrs.Website }
func (c *Company) Description() string          { return c.attrs.Description }
func (c *Company) Bookings() []*booking.Booking { return c.bookings }
func (c *Company) CreatedAt() time.Time         { return c.createdAt }
func (c *Company) UpdatedAt() time.Time         { return c.updatedAt }

// --- Behavior ---

// Apply merges p into the company and re-validates the result. On failure
// the company is left unchanged.
func (c *Company) Apply(p Patch) error {
	next := c.attrs
	setIf(&next.Name, p.Name)
	setIf(&next.Address, p.Address)
	setIf(&next.District, p.District)
	setIf(&next.Province, p.Province)
	setIf(&next.PostalCode, p.PostalCode)
	setIf(&next.Telephone, p.Telephone)
	setIf(&next.Website, p.Website)
	setIf(&next.Description, p.Description)
	next = next.normalize()

	if err := Validate(next); err != nil {
		return err
	}
	c.attrs = next
	c.updatedAt = time.Now().UTC()
	return nil
}

// AttachBookings sets the derived booking list.
func (c *Company) AttachBookings(bookings []*booking.Booking) {
	c.bookings = bookings
}

func (a Attributes) normalize() Attributes {
	a.Name = strings.TrimSpace(a.Name)
	a.PostalCode = strings.TrimSpace(a.PostalCode)
	a.Website = strings.TrimSpace(a.Website)
	return a
}

func setIf(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
