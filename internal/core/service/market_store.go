package service

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/haofuwu/service-market/internal/core/domain"
	"github.com/haofuwu/service-market/internal/core/ports"
)

const (
	needIDPrefix    = "need_"
	serviceIDPrefix = "service_"

	defaultPageSize = 10
	maxPageSize     = 100
)

// MarketStore keeps needs and service offers in memory and writes the full
// snapshot of a collection after each mutation. Mutations are serialized and
// the in-memory collection is replaced only after the write succeeded.
type MarketStore struct {
	kv  ports.KVStore
	log zerolog.Logger
	now func() time.Time

	mu     sync.RWMutex
	needs  []*domain.Need
	offers []*domain.ServiceOffer
}

var _ ports.MarketService = (*MarketStore)(nil)

// NewMarketStore loads both collections from kv. When a key is absent and
// seed is true the demo data set is written in its place.
func NewMarketStore(ctx context.Context, kv ports.KVStore, seed bool, log zerolog.Logger) (*MarketStore, error) {
	s := &MarketStore{kv: kv, log: log, now: time.Now}

	found, err := loadSnapshot(ctx, kv, ports.KeyNeeds, &s.needs)
	if err != nil {
		return nil, err
	}
	if !found && seed {
		s.needs = demoNeeds()
		if err := saveSnapshot(ctx, kv, ports.KeyNeeds, s.needs); err != nil {
			return nil, err
		}
	}

	found, err = loadSnapshot(ctx, kv, ports.KeyServiceSelfs, &s.offers)
	if err != nil {
		return nil, err
	}
	if !found && seed {
		s.offers = demoOffers()
		if err := saveSnapshot(ctx, kv, ports.KeyServiceSelfs, s.offers); err != nil {
			return nil, err
		}
	}

	s.deriveResponses()
	log.Debug().Int("needs", len(s.needs)).Int("offers", len(s.offers)).Msg("market store loaded")
	return s, nil
}

// deriveResponses sets HasResponse on every need that has at least one offer.
func (s *MarketStore) deriveResponses() {
	responded := make(map[string]struct{}, len(s.offers))
	for _, o := range s.offers {
		responded[o.NeedID] = struct{}{}
	}
	for _, n := range s.needs {
		if _, ok := responded[n.NeedID]; ok {
			n.HasResponse = true
		}
	}
}

// ---------------------------------------------------------------------------
// Needs
// ---------------------------------------------------------------------------

func (s *MarketStore) AddNeed(ctx context.Context, sess domain.Session, in domain.NewNeed) (*domain.Need, error) {
	uid, err := requireLogin(sess)
	if err != nil {
		return nil, err
	}
	if err := validateNewNeed(in); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	need := &domain.Need{
		NeedID:      needIDPrefix + strconv.Itoa(nextID(needIDs(s.needs), needIDPrefix)),
		UserID:      uid,
		Region:      strings.TrimSpace(in.Region),
		ServiceType: in.ServiceType,
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		ImgURLs:     append([]string{}, in.ImgURLs...),
		VideoURL:    in.VideoURL,
		CreateTime:  now,
		UpdateTime:  now,
		Status:      domain.NeedOpen,
		HasResponse: false,
	}

	next := append(cloneNeeds(s.needs), need)
	if err := s.commitNeeds(ctx, next); err != nil {
		return nil, err
	}
	s.log.Info().Str("need_id", need.NeedID).Str("user_id", uid).Msg("need created")
	return need.Clone(), nil
}

func (s *MarketStore) UpdateNeed(ctx context.Context, sess domain.Session, needID string, patch domain.NeedPatch) (*domain.Need, error) {
	if err := validateNeedPatch(patch); err != nil {
		return nil, err
	}
	return s.mutateNeed(ctx, sess, needID, "updated", func(n *domain.Need) error {
		if !n.Mutable() {
			return fmt.Errorf("%w: need %s already has responses", domain.ErrConflict, n.NeedID)
		}
		patch.Apply(n)
		return nil
	})
}

func (s *MarketStore) DeleteNeed(ctx context.Context, sess domain.Session, needID string) error {
	uid, err := requireLogin(sess)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := indexNeed(s.needs, needID)
	if idx < 0 {
		return domain.ErrNeedNotFound
	}
	cur := s.needs[idx]
	if err := authorize(sess, cur.UserID); err != nil {
		return err
	}
	if !cur.Mutable() {
		return fmt.Errorf("%w: need %s already has responses", domain.ErrConflict, needID)
	}

	next := make([]*domain.Need, 0, len(s.needs)-1)
	next = append(next, s.needs[:idx]...)
	next = append(next, s.needs[idx+1:]...)
	if err := s.commitNeeds(ctx, next); err != nil {
		return err
	}
	s.log.Info().Str("need_id", needID).Str("user_id", uid).Msg("need deleted")
	return nil
}

func (s *MarketStore) CancelNeed(ctx context.Context, sess domain.Session, needID string) (*domain.Need, error) {
	return s.mutateNeed(ctx, sess, needID, "cancelled", func(n *domain.Need) error {
		if n.Status != domain.NeedOpen {
			return fmt.Errorf("%w: need %s is not open", domain.ErrConflict, n.NeedID)
		}
		n.Status = domain.NeedClosed
		return nil
	})
}

func (s *MarketStore) GetNeed(_ context.Context, needID string) (*domain.Need, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx := indexNeed(s.needs, needID)
	if idx < 0 {
		return nil, domain.ErrNeedNotFound
	}
	return s.needs[idx].Clone(), nil
}

func (s *MarketStore) ListNeeds(_ context.Context, f ports.NeedFilter) (*ports.NeedPage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []*domain.Need
	for _, n := range s.needs {
		if needMatches(n, f) {
			matched = append(matched, n.Clone())
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CreateTime.After(matched[j].CreateTime)
	})

	page, size := normalizePage(f.Page, f.Size)
	lo, hi := pageBounds(len(matched), page, size)
	return &ports.NeedPage{Records: matched[lo:hi], Total: len(matched), Page: page, Size: size}, nil
}

func (s *MarketStore) MyNeeds(ctx context.Context, sess domain.Session, f ports.NeedFilter) (*ports.NeedPage, error) {
	uid, err := requireLogin(sess)
	if err != nil {
		return nil, err
	}
	f.OwnerID = uid
	return s.ListNeeds(ctx, f)
}

// mutateNeed runs fn on a copy of the need after the ownership check, then
// commits the new collection.
func (s *MarketStore) mutateNeed(ctx context.Context, sess domain.Session, needID, verb string, fn func(*domain.Need) error) (*domain.Need, error) {
	uid, err := requireLogin(sess)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := indexNeed(s.needs, needID)
	if idx < 0 {
		return nil, domain.ErrNeedNotFound
	}
	if err := authorize(sess, s.needs[idx].UserID); err != nil {
		return nil, err
	}

	updated := s.needs[idx].Clone()
	if err := fn(updated); err != nil {
		return nil, err
	}
	updated.UpdateTime = s.now().UTC()

	next := cloneNeeds(s.needs)
	next[idx] = updated
	if err := s.commitNeeds(ctx, next); err != nil {
		return nil, err
	}
	s.log.Info().Str("need_id", needID).Str("user_id", uid).Msg("need " + verb)
	return updated.Clone(), nil
}

// commitNeeds persists next and swaps it in. Caller holds s.mu.
func (s *MarketStore) commitNeeds(ctx context.Context, next []*domain.Need) error {
	if err := saveSnapshot(ctx, s.kv, ports.KeyNeeds, next); err != nil {
		return err
	}
	s.needs = next
	return nil
}

// ---------------------------------------------------------------------------
// Helpers shared by both collections
// ---------------------------------------------------------------------------

func requireLogin(sess domain.Session) (string, error) {
	uid := sess.UserID()
	if uid == "" {
		return "", domain.ErrUnauthenticated
	}
	return uid, nil
}

// authorize allows the record owner and admins.
func authorize(sess domain.Session, ownerID string) error {
	if sess.IsAdmin() || sess.UserID() == ownerID {
		return nil
	}
	return domain.ErrForbidden
}

// nextID returns max(numeric suffix)+1 over ids. Ids without the prefix or
// with a non-numeric suffix are ignored.
func nextID(ids []string, prefix string) int {
	highest := 0
	for _, id := range ids {
		suffix, ok := strings.CutPrefix(id, prefix)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(suffix)
		if err != nil {
			continue
		}
		if n > highest {
			highest = n
		}
	}
	return highest + 1
}

func normalizePage(page, size int) (int, int) {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	return page, size
}

func pageBounds(total, page, size int) (int, int) {
	lo := (page - 1) * size
	if lo > total {
		lo = total
	}
	hi := lo + size
	if hi > total {
		hi = total
	}
	return lo, hi
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

func indexNeed(needs []*domain.Need, id string) int {
	for i, n := range needs {
		if n.NeedID == id {
			return i
		}
	}
	return -1
}

func needIDs(needs []*domain.Need) []string {
	ids := make([]string, len(needs))
	for i, n := range needs {
		ids[i] = n.NeedID
	}
	return ids
}

func cloneNeeds(needs []*domain.Need) []*domain.Need {
	out := make([]*domain.Need, len(needs))
	copy(out, needs)
	return out
}

func needMatches(n *domain.Need, f ports.NeedFilter) bool {
	if f.OwnerID != "" && n.UserID != f.OwnerID {
		return false
	}
	if f.Keyword != "" && !containsFold(n.Title, f.Keyword) {
		return false
	}
	if f.ServiceType != "" && n.ServiceType != f.ServiceType {
		return false
	}
	if f.Region != "" && !containsFold(n.Region, f.Region) {
		return false
	}
	if f.Status != "" && n.Status != f.Status {
		return false
	}
	return true
}

func validateNewNeed(in domain.NewNeed) error {
	var problems []string
	if strings.TrimSpace(in.Title) == "" {
		problems = append(problems, "title is required")
	}
	if strings.TrimSpace(in.Region) == "" {
		problems = append(problems, "region is required")
	}
	if !domain.ValidServiceType(in.ServiceType) {
		problems = append(problems, "serviceType is not a known category")
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", domain.ErrValidation, strings.Join(problems, "; "))
	}
	return nil
}

func validateNeedPatch(p domain.NeedPatch) error {
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return fmt.Errorf("%w: title must not be blank", domain.ErrValidation)
	}
	if p.Region != nil && strings.TrimSpace(*p.Region) == "" {
		return fmt.Errorf("%w: region must not be blank", domain.ErrValidation)
	}
	if p.ServiceType != nil && !domain.ValidServiceType(*p.ServiceType) {
		return fmt.Errorf("%w: serviceType is not a known category", domain.ErrValidation)
	}
	return nil
}

// Snapshot returns copies of both collections.
func (s *MarketStore) Snapshot() ([]*domain.Need, []*domain.ServiceOffer) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	needs := make([]*domain.Need, len(s.needs))
	for i, n := range s.needs {
		needs[i] = n.Clone()
	}
	offers := make([]*domain.ServiceOffer, len(s.offers))
	for i, o := range s.offers {
		offers[i] = cloneOffer(o)
	}
	return needs, offers
}
