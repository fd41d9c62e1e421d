package service

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/haofuwu/service-market/internal/core/domain"
	"github.com/haofuwu/service-market/internal/core/ports"
)

// AddServiceOffer records a pending offer against an existing need and marks
// the need as responded.
func (s *MarketStore) AddServiceOffer(ctx context.Context, sess domain.Session, in domain.NewServiceOffer) (*domain.ServiceOffer, error) {
	uid, err := requireLogin(sess)
	if err != nil {
		return nil, err
	}
	if err := validateNewOffer(in); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	nIdx := indexNeed(s.needs, in.NeedID)
	if nIdx < 0 {
		return nil, domain.ErrNeedNotFound
	}
	if s.needs[nIdx].Status != domain.NeedOpen {
		return nil, fmt.Errorf("%w: need %s is not open", domain.ErrConflict, in.NeedID)
	}
	if s.hasAcceptedOffer(in.NeedID) {
		return nil, fmt.Errorf("%w: need %s already has an accepted offer", domain.ErrConflict, in.NeedID)
	}

	now := s.now().UTC()
	offer := &domain.ServiceOffer{
		ServiceID:   serviceIDPrefix + strconv.Itoa(nextID(offerIDs(s.offers), serviceIDPrefix)),
		NeedID:      in.NeedID,
		UserID:      uid,
		ServiceType: in.ServiceType,
		Title:       strings.TrimSpace(in.Title),
		Content:     in.Content,
		CreateTime:  now,
		UpdateTime:  now,
		Status:      domain.OfferPending,
	}

	nextOffers := append(cloneOffers(s.offers), offer)
	if err := saveSnapshot(ctx, s.kv, ports.KeyServiceSelfs, nextOffers); err != nil {
		return nil, err
	}
	s.offers = nextOffers

	if !s.needs[nIdx].HasResponse {
		need := s.needs[nIdx].Clone()
		need.HasResponse = true
		need.UpdateTime = now
		nextNeeds := cloneNeeds(s.needs)
		nextNeeds[nIdx] = need
		if err := s.commitNeeds(ctx, nextNeeds); err != nil {
			// The offer is stored; NewMarketStore re-derives the flag.
			s.log.Warn().Err(err).Str("need_id", in.NeedID).Msg("mark need responded failed")
		}
	}

	s.log.Info().Str("service_id", offer.ServiceID).Str("need_id", in.NeedID).Str("user_id", uid).Msg("service offer created")
	return cloneOffer(offer), nil
}

func (s *MarketStore) UpdateServiceOffer(ctx context.Context, sess domain.Session, serviceID string, patch domain.ServiceOfferPatch) (*domain.ServiceOffer, error) {
	if err := validateOfferPatch(patch); err != nil {
		return nil, err
	}
	return s.mutateOffer(ctx, sess, serviceID, offerOwner, "updated", func(o *domain.ServiceOffer) {
		patch.Apply(o)
	})
}

func (s *MarketStore) DeleteServiceOffer(ctx context.Context, sess domain.Session, serviceID string) error {
	uid, err := requireLogin(sess)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := indexOffer(s.offers, serviceID)
	if idx < 0 {
		return domain.ErrServiceOfferNotFound
	}
	cur := s.offers[idx]
	if err := authorize(sess, cur.UserID); err != nil {
		return err
	}
	if !cur.Mutable() {
		return fmt.Errorf("%w: service offer %s is %s", domain.ErrConflict, serviceID, cur.Status)
	}

	next := make([]*domain.ServiceOffer, 0, len(s.offers)-1)
	next = append(next, s.offers[:idx]...)
	next = append(next, s.offers[idx+1:]...)
	if err := saveSnapshot(ctx, s.kv, ports.KeyServiceSelfs, next); err != nil {
		return err
	}
	s.offers = next

	if nIdx := indexNeed(s.needs, cur.NeedID); nIdx >= 0 && s.needs[nIdx].HasResponse && !hasOfferFor(next, cur.NeedID) {
		need := s.needs[nIdx].Clone()
		need.HasResponse = false
		need.UpdateTime = s.now().UTC()
		nextNeeds := cloneNeeds(s.needs)
		nextNeeds[nIdx] = need
		if err := s.commitNeeds(ctx, nextNeeds); err != nil {
			return err
		}
	}

	s.log.Info().Str("service_id", serviceID).Str("user_id", uid).Msg("service offer deleted")
	return nil
}

func hasOfferFor(offers []*domain.ServiceOffer, needID string) bool {
	for _, o := range offers {
		if o.NeedID == needID {
			return true
		}
	}
	return false
}

// AcceptServiceOffer marks a pending offer accepted and rejects every other
// offer on the same need. Only the need owner or an admin may accept, and
// only while the need is open without an accepted offer.
func (s *MarketStore) AcceptServiceOffer(ctx context.Context, sess domain.Session, serviceID string) (*domain.ServiceOffer, error) {
	uid, err := requireLogin(sess)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx, err := s.decidableOffer(sess, serviceID)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	accepted := cloneOffer(s.offers[idx])
	next := cloneOffers(s.offers)
	rejected := 0
	for i, o := range next {
		if i == idx || o.NeedID != accepted.NeedID || o.Status == domain.OfferRejected {
			continue
		}
		sib := cloneOffer(o)
		sib.Status = domain.OfferRejected
		sib.UpdateTime = now
		next[i] = sib
		rejected++
	}
	accepted.Status = domain.OfferAccepted
	accepted.UpdateTime = now
	next[idx] = accepted

	if err := saveSnapshot(ctx, s.kv, ports.KeyServiceSelfs, next); err != nil {
		return nil, err
	}
	s.offers = next
	s.log.Info().
		Str("service_id", serviceID).
		Str("need_id", accepted.NeedID).
		Str("user_id", uid).
		Int("rejected_siblings", rejected).
		Msg("service offer accepted")
	return cloneOffer(accepted), nil
}

// RejectServiceOffer marks a pending offer rejected. Only the need owner or
// an admin may reject.
func (s *MarketStore) RejectServiceOffer(ctx context.Context, sess domain.Session, serviceID string) (*domain.ServiceOffer, error) {
	return s.mutateOffer(ctx, sess, serviceID, needOwner, "rejected", func(o *domain.ServiceOffer) {
		o.Status = domain.OfferRejected
	})
}

func (s *MarketStore) GetServiceOffer(_ context.Context, serviceID string) (*domain.ServiceOffer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx := indexOffer(s.offers, serviceID)
	if idx < 0 {
		return nil, domain.ErrServiceOfferNotFound
	}
	return cloneOffer(s.offers[idx]), nil
}

func (s *MarketStore) ListServiceOffers(_ context.Context, f ports.OfferFilter) (*ports.OfferPage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []*domain.ServiceOffer
	for _, o := range s.offers {
		if offerMatches(o, f) {
			matched = append(matched, cloneOffer(o))
		}
	}
	sortOffers(matched)

	page, size := normalizePage(f.Page, f.Size)
	lo, hi := pageBounds(len(matched), page, size)
	return &ports.OfferPage{Records: matched[lo:hi], Total: len(matched), Page: page, Size: size}, nil
}

// OffersForNeed returns every offer submitted against needID.
func (s *MarketStore) OffersForNeed(_ context.Context, needID string) ([]*domain.ServiceOffer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if indexNeed(s.needs, needID) < 0 {
		return nil, domain.ErrNeedNotFound
	}
	out := []*domain.ServiceOffer{}
	for _, o := range s.offers {
		if o.NeedID == needID {
			out = append(out, cloneOffer(o))
		}
	}
	sortOffers(out)
	return out, nil
}

// MyServiceOffers lists the caller's offers. Anonymous sessions get an empty
// slice.
func (s *MarketStore) MyServiceOffers(_ context.Context, sess domain.Session) []*domain.ServiceOffer {
	out := []*domain.ServiceOffer{}
	uid := sess.UserID()
	if uid == "" {
		return out
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, o := range s.offers {
		if o.UserID == uid {
			out = append(out, cloneOffer(o))
		}
	}
	sortOffers(out)
	return out
}

type offerAuthority int

const (
	offerOwner offerAuthority = iota // author of the offer
	needOwner                        // owner of the need the offer targets
)

// mutateOffer applies fn to a pending offer after checking the caller against
// the given authority, then commits the collection.
func (s *MarketStore) mutateOffer(ctx context.Context, sess domain.Session, serviceID string, who offerAuthority, verb string, fn func(*domain.ServiceOffer)) (*domain.ServiceOffer, error) {
	uid, err := requireLogin(sess)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var idx int
	if who == needOwner {
		idx, err = s.decidableOffer(sess, serviceID)
		if err != nil {
			return nil, err
		}
	} else {
		idx = indexOffer(s.offers, serviceID)
		if idx < 0 {
			return nil, domain.ErrServiceOfferNotFound
		}
		if err := authorize(sess, s.offers[idx].UserID); err != nil {
			return nil, err
		}
		if !s.offers[idx].Mutable() {
			return nil, fmt.Errorf("%w: service offer %s is %s", domain.ErrConflict, serviceID, s.offers[idx].Status)
		}
	}

	updated := cloneOffer(s.offers[idx])
	fn(updated)
	updated.UpdateTime = s.now().UTC()

	next := cloneOffers(s.offers)
	next[idx] = updated
	if err := saveSnapshot(ctx, s.kv, ports.KeyServiceSelfs, next); err != nil {
		return nil, err
	}
	s.offers = next
	s.log.Info().Str("service_id", serviceID).Str("user_id", uid).Msg("service offer " + verb)
	return cloneOffer(updated), nil
}

// decidableOffer locates a pending offer the caller may accept or reject.
// Caller holds s.mu.
func (s *MarketStore) decidableOffer(sess domain.Session, serviceID string) (int, error) {
	idx := indexOffer(s.offers, serviceID)
	if idx < 0 {
		return -1, domain.ErrServiceOfferNotFound
	}
	offer := s.offers[idx]
	nIdx := indexNeed(s.needs, offer.NeedID)
	if nIdx < 0 {
		return -1, fmt.Errorf("%w: need %s of offer %s", domain.ErrNeedNotFound, offer.NeedID, serviceID)
	}
	if err := authorize(sess, s.needs[nIdx].UserID); err != nil {
		return -1, err
	}
	if !offer.Mutable() {
		return -1, fmt.Errorf("%w: service offer %s is %s", domain.ErrConflict, serviceID, offer.Status)
	}
	if s.needs[nIdx].Status != domain.NeedOpen {
		return -1, fmt.Errorf("%w: need %s is not open", domain.ErrConflict, offer.NeedID)
	}
	if s.hasAcceptedOffer(offer.NeedID) {
		return -1, fmt.Errorf("%w: need %s already has an accepted offer", domain.ErrConflict, offer.NeedID)
	}
	return idx, nil
}

// hasAcceptedOffer reports whether needID already has an accepted offer.
// Caller holds s.mu.
func (s *MarketStore) hasAcceptedOffer(needID string) bool {
	for _, o := range s.offers {
		if o.NeedID == needID && o.Status == domain.OfferAccepted {
			return true
		}
	}
	return false
}

func indexOffer(offers []*domain.ServiceOffer, id string) int {
	for i, o := range offers {
		if o.ServiceID == id {
			return i
		}
	}
	return -1
}

func offerIDs(offers []*domain.ServiceOffer) []string {
	ids := make([]string, len(offers))
	for i, o := range offers {
		ids[i] = o.ServiceID
	}
	return ids
}

func cloneOffer(o *domain.ServiceOffer) *domain.ServiceOffer {
	c := *o
	return &c
}

func cloneOffers(offers []*domain.ServiceOffer) []*domain.ServiceOffer {
	out := make([]*domain.ServiceOffer, len(offers))
	copy(out, offers)
	return out
}

func sortOffers(offers []*domain.ServiceOffer) {
	sort.SliceStable(offers, func(i, j int) bool {
		return offers[i].CreateTime.After(offers[j].CreateTime)
	})
}

func offerMatches(o *domain.ServiceOffer, f ports.OfferFilter) bool {
	if f.OwnerID != "" && o.UserID != f.OwnerID {
		return false
	}
	if f.NeedID != "" && o.NeedID != f.NeedID {
		return false
	}
	if f.Keyword != "" && !containsFold(o.Title, f.Keyword) {
		return false
	}
	if f.ServiceType != "" && o.ServiceType != f.ServiceType {
		return false
	}
	if f.Status != "" && o.Status != f.Status {
		return false
	}
	return true
}

func validateNewOffer(in domain.NewServiceOffer) error {
	var problems []string
	if strings.TrimSpace(in.NeedID) == "" {
		problems = append(problems, "needId is required")
	}
	if strings.TrimSpace(in.Title) == "" {
		problems = append(problems, "title is required")
	}
	if !domain.ValidServiceType(in.ServiceType) {
		problems = append(problems, "serviceType is not a known category")
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", domain.ErrValidation, strings.Join(problems, "; "))
	}
	return nil
}

func validateOfferPatch(p domain.ServiceOfferPatch) error {
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return fmt.Errorf("%w: title must not be blank", domain.ErrValidation)
	}
	if p.ServiceType != nil && !domain.ValidServiceType(*p.ServiceType) {
		return fmt.Errorf("%w: serviceType is not a known category", domain.ErrValidation)
	}
	return nil
}
