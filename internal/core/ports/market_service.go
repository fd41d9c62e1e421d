package ports

import (
	"context"

	"github.com/haofuwu/service-market/internal/core/domain"
)

// NeedFilter carries the optional list criteria for needs.
type NeedFilter struct {
	OwnerID     string // empty = all owners
	Keyword     string // substring of title
	ServiceType string
	Region      string // substring of region
	Status      domain.NeedStatus
	Page        int // 1-based
	Size        int // capped by the store
}

// OfferFilter carries the optional list criteria for service offers.
type OfferFilter struct {
	OwnerID     string
	NeedID      string
	Keyword     string
	ServiceType string
	Status      domain.OfferStatus
	Page        int
	Size        int
}

// NeedPage is one page of needs and the total match count.
type NeedPage struct {
	Records []*domain.Need `json:"records"`
	Total   int            `json:"total"`
	Page    int            `json:"page"`
	Size    int            `json:"size"`
}

// OfferPage is one page of offers and the total match count.
type OfferPage struct {
	Records []*domain.ServiceOffer `json:"records"`
	Total   int                    `json:"total"`
	Page    int                    `json:"page"`
	Size    int                    `json:"size"`
}

// MarketService is the guarded CRUD surface over needs and service offers.
// Every operation receives the caller's session explicitly.
type MarketService interface {
	AddNeed(ctx context.Context, sess domain.Session, in domain.NewNeed) (*domain.Need, error)
	UpdateNeed(ctx context.Context, sess domain.Session, needID string, patch domain.NeedPatch) (*domain.Need, error)
	DeleteNeed(ctx context.Context, sess domain.Session, needID string) error
	CancelNeed(ctx context.Context, sess domain.Session, needID string) (*domain.Need, error)
	GetNeed(ctx context.Context, needID string) (*domain.Need, error)
	ListNeeds(ctx context.Context, filter NeedFilter) (*NeedPage, error)
	MyNeeds(ctx context.Context, sess domain.Session, filter NeedFilter) (*NeedPage, error)

	AddServiceOffer(ctx context.Context, sess domain.Session, in domain.NewServiceOffer) (*domain.ServiceOffer, error)
	UpdateServiceOffer(ctx context.Context, sess domain.Session, serviceID string, patch domain.ServiceOfferPatch) (*domain.ServiceOffer, error)
	DeleteServiceOffer(ctx context.Context, sess domain.Session, serviceID string) error
	AcceptServiceOffer(ctx context.Context, sess domain.Session, serviceID string) (*domain.ServiceOffer, error)
	RejectServiceOffer(ctx context.Context, sess domain.Session, serviceID string) (*domain.ServiceOffer, error)
	GetServiceOffer(ctx context.Context, serviceID string) (*domain.ServiceOffer, error)
	ListServiceOffers(ctx context.Context, filter OfferFilter) (*OfferPage, error)
	OffersForNeed(ctx context.Context, needID string) ([]*domain.ServiceOffer, error)
	MyServiceOffers(ctx context.Context, sess domain.Session) []*domain.ServiceOffer
}
