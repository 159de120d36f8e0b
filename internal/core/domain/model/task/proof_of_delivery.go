package task

import (
	"strings"

	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

var ErrProofOfDeliveryIsNotConstructed = errs.NewValueIsRequiredError(
	"proof of delivery must be created via NewProofOfDelivery constructor")

// ProofOfDelivery holds references to the evidence captured at hand-over.
// The photo reference is mandatory; signature and notes are optional.
// Blobs live in external storage, only their references are kept here.
type ProofOfDelivery struct {
	photo     string
	signature string
	notes     string
	guard     guard.ConstructorGuard
}

func NewProofOfDelivery(photo, signature, notes string) (ProofOfDelivery, error) {
	photo = strings.TrimSpace(photo)
	if photo == "" {
		return ProofOfDelivery{}, errs.NewValueIsRequiredError("photo")
	}

	return ProofOfDelivery{
		photo:     photo,
		signature: strings.TrimSpace(signature),
		notes:     strings.TrimSpace(notes),
		guard:     guard.NewConstructorGuard(),
	}, nil
}

func (p ProofOfDelivery) Validate() error {
	return p.guard.Validate(ErrProofOfDeliveryIsNotConstructed)
}

func (p ProofOfDelivery) Photo() string {
	return p.photo
}

func (p ProofOfDelivery) Signature() string {
	return p.signature
}

func (p ProofOfDelivery) Notes() string {
	return p.notes
}
