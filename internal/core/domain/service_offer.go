package domain

import "time"

// OfferStatus represents the lifecycle state of a service offer.
type OfferStatus string

const (
	OfferPending  OfferStatus = "pending"
	OfferAccepted OfferStatus = "accepted"
	OfferRejected OfferStatus = "rejected"
)

// ServiceOffer is a provider's self-submitted bid against a need.
type ServiceOffer struct {
	ServiceID   string      `json:"serviceId"`
	NeedID      string      `json:"needId"`
	UserID      string      `json:"userId"`
	ServiceType string      `json:"serviceType"`
	Title       string      `json:"title"`
	Content     string      `json:"content"`
	CreateTime  time.Time   `json:"createTime"`
	UpdateTime  time.Time   `json:"updateTime"`
	Status      OfferStatus `json:"status"`
}

// Mutable reports whether the offer may still be edited, deleted, accepted
// or rejected.
func (o *ServiceOffer) Mutable() bool {
	return o.Status == OfferPending
}

// NewServiceOffer carries the caller-supplied fields of an offer.
type NewServiceOffer struct {
	NeedID      string
	ServiceType string
	Title       string
	Content     string
}

// ServiceOfferPatch enumerates the offer fields that may be updated.
type ServiceOfferPatch struct {
	ServiceType *string
	Title       *string
	Content     *string
}

// Apply copies the non-nil patch fields onto o.
func (p ServiceOfferPatch) Apply(o *ServiceOffer) {
	if p.ServiceType != nil {
		o.ServiceType = *p.ServiceType
	}
	if p.Title != nil {
		o.Title = *p.Title
	}
	if p.Content != nil {
		o.Content = *p.Content
	}
}
