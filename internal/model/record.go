package model

import (
	"time"

	"github.com/hospintel/hospintel_backend/pkg/constants"
)

// Kind discriminates the payload carried by a Record.
type Kind string

const (
	KindDemoRequest    Kind = "demo_request"
	KindContactInquiry Kind = "contact_inquiry"
)

// Status of a record. Records are created NEW and never updated.
type Status string

const StatusNew Status = "NEW"

// Payload is implemented by every form type a Record can carry.
type Payload interface {
	Kind() Kind
	Validate() error
}

// Record is one captured form submission.
type Record struct {
	ID             string          `json:"id"`
	Kind           Kind            `json:"kind"`
	Source         string          `json:"source"`
	Status         Status          `json:"status"`
	CreatedAt      time.Time       `json:"createdAt"`
	IdempotencyKey string          `json:"idempotencyKey,omitempty"`
	Demo           *DemoRequest    `json:"demo,omitempty"`
	Contact        *ContactInquiry `json:"contact,omitempty"`
}

// Payload returns the form carried by the record, or nil.
func (r Record) Payload() Payload {
	switch {
	case r.Demo != nil:
		return r.Demo
	case r.Contact != nil:
		return r.Contact
	default:
		return nil
	}
}

// NewRecord stamps p into a fresh NEW record. The caller supplies the id and
// clock so that id generation stays in one place.
func NewRecord(id string, p Payload, source string, now time.Time) Record {
	rec := Record{
		ID:        id,
		Kind:      p.Kind(),
		Source:    source,
		Status:    StatusNew,
		CreatedAt: now.UTC(),
	}
	switch v := p.(type) {
	case *DemoRequest:
		rec.Demo = v
	case *ContactInquiry:
		rec.Contact = v
	}
	return rec
}

// Email returns the submitter's address regardless of payload kind.
func (r Record) Email() string {
	switch {
	case r.Demo != nil:
		return r.Demo.Email
	case r.Contact != nil:
		return r.Contact.Email
	}
	return ""
}

// DisplayName returns the submitter's name regardless of payload kind.
func (r Record) DisplayName() string {
	switch {
	case r.Demo != nil:
		return r.Demo.FullName
	case r.Contact != nil:
		return r.Contact.Name
	}
	return ""
}

// Organization returns the submitter's organization, if any.
func (r Record) Organization() string {
	switch {
	case r.Demo != nil:
		return r.Demo.Organization
	case r.Contact != nil:
		return r.Contact.Organization
	}
	return ""
}

// StoreFor returns the store a kind is persisted to.
func StoreFor(k Kind) string {
	switch k {
	case KindDemoRequest:
		return constants.StoreLeads
	case KindContactInquiry:
		return constants.StoreInquiries
	default:
		return ""
	}
}

// DefaultSource is the form name stamped when the caller gives none.
func DefaultSource(k Kind) string {
	switch k {
	case KindDemoRequest:
		return "request_demo"
	case KindContactInquiry:
		return "contact"
	default:
		return "unknown"
	}
}

// Stores lists every known store name.
func Stores() []string {
	return []string{constants.StoreLeads, constants.StoreInquiries}
}

// IsStore reports whether name is a known store.
func IsStore(name string) bool {
	return name == constants.StoreLeads || name == constants.StoreInquiries
}
