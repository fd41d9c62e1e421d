package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/haofuwu/service-market/internal/core/domain"
)

// ---------------------------------------------------------------------------
// In-memory stub key-value store
// ---------------------------------------------------------------------------

var errStubWrite = errors.New("disk full")

type stubKV struct {
	data    map[string]string
	failSet map[string]bool // keys whose Set fails
	writes  int
}

func newStubKV() *stubKV {
	return &stubKV{data: map[string]string{}, failSet: map[string]bool{}}
}

func (s *stubKV) Get(_ context.Context, key string) (string, bool, error) {
	v, ok := s.data[key]
	return v, ok, nil
}

func (s *stubKV) Set(_ context.Context, key, value string) error {
	if s.failSet[key] {
		return errStubWrite
	}
	s.writes++
	s.data[key] = value
	return nil
}

func (s *stubKV) Remove(_ context.Context, key string) error {
	delete(s.data, key)
	return nil
}

// ---------------------------------------------------------------------------
// Fixtures
// ---------------------------------------------------------------------------

var testNow = time.Date(2025, 10, 15, 9, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

func newTestDirectory(t *testing.T, kv *stubKV) *UserDirectory {
	t.Helper()
	d := NewUserDirectory(kv, bcrypt.MinCost, zerolog.Nop())
	d.now = fixedClock
	if err := d.Seed(context.Background()); err != nil {
		t.Fatalf("seed users: %v", err)
	}
	return d
}

func newTestStore(t *testing.T, kv *stubKV, seed bool) *MarketStore {
	t.Helper()
	s, err := NewMarketStore(context.Background(), kv, seed, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewMarketStore: %v", err)
	}
	s.now = fixedClock
	return s
}

func sessionFor(id string, typ domain.UserType) domain.Session {
	return domain.NewSession("tok-"+id, &domain.User{UserID: id, Username: "user" + id, UserType: typ})
}

var (
	alice = sessionFor("10", domain.UserTypeRegular)
	bob   = sessionFor("11", domain.UserTypeRegular)
	admin = sessionFor("1", domain.UserTypeAdmin)
	anon  = domain.Session{}
)

func strPtr(s string) *string { return &s }

func sampleNeed() domain.NewNeed {
	return domain.NewNeed{
		Region:      "Shanghai Pudong",
		ServiceType: domain.ServiceCleaning,
		Title:       "Deep clean",
		Description: "Two bedrooms",
		ImgURLs:     []string{"https://img/1"},
	}
}
