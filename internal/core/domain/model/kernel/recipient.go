package kernel

import (
	"errors"
	"strings"

	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

// ErrRecipientIsNotConstructed is returned when a zero-value Recipient is used.
var ErrRecipientIsNotConstructed = errs.NewValueIsRequiredError(
	"recipient must be created via NewRecipient constructor")

// Recipient is who receives a parcel and where. Driver tasks keep a copy taken
// at dispatch time so later edits to the order do not change the route.
type Recipient struct {
	name    string
	phone   string
	address string
	guard   guard.ConstructorGuard
}

// NewRecipient trims and validates the contact fields. All three are required.
func NewRecipient(name, phone, address string) (Recipient, error) {
	r := Recipient{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		r.setName(name),
		r.setPhone(phone),
		r.setAddress(address),
	); err != nil {
		return Recipient{}, err
	}

	return r, nil
}

func (r Recipient) Validate() error {
	return r.guard.Validate(ErrRecipientIsNotConstructed)
}

func (r Recipient) Name() string    { return r.name }
func (r Recipient) Phone() string   { return r.phone }
func (r Recipient) Address() string { return r.address }

func (r *Recipient) setName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errs.NewValueIsRequiredError("recipient name")
	}
	r.name = name
	return nil
}

func (r *Recipient) setPhone(phone string) error {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return errs.NewValueIsRequiredError("recipient phone")
	}
	r.phone = phone
	return nil
}

func (r *Recipient) setAddress(address string) error {
	address = strings.TrimSpace(address)
	if address == "" {
		return errs.NewValueIsRequiredError("recipient address")
	}
	r.address = address
	return nil
}
