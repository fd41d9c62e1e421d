package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/haofuwu/service-market/internal/core/domain"
	"github.com/haofuwu/service-market/internal/core/ports"
)

func TestMarketStore_SeedData(t *testing.T) {
	kv := newStubKV()
	s := newTestStore(t, kv, true)

	needs, offers := s.Snapshot()
	if len(needs) != 32 {
		t.Fatalf("expected 32 demo needs, got %d", len(needs))
	}
	if len(offers) != 3 {
		t.Fatalf("expected 3 demo offers, got %d", len(offers))
	}
	if _, ok := kv.data[ports.KeyNeeds]; !ok {
		t.Fatalf("seeded needs not persisted")
	}

	for _, n := range needs {
		if n.NeedID == "need_11" && !n.HasResponse {
			t.Fatalf("need_11 has an offer and must be marked responded")
		}
	}
}

func TestMarketStore_NoSeed(t *testing.T) {
	s := newTestStore(t, newStubKV(), false)
	needs, offers := s.Snapshot()
	if len(needs) != 0 || len(offers) != 0 {
		t.Fatalf("expected empty store, got %d needs %d offers", len(needs), len(offers))
	}
}

func TestMarketStore_ReloadsPersistedState(t *testing.T) {
	kv := newStubKV()
	s := newTestStore(t, kv, false)
	need, err := s.AddNeed(context.Background(), alice, sampleNeed())
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	reloaded := newTestStore(t, kv, true)
	got, err := reloaded.GetNeed(context.Background(), need.NeedID)
	if err != nil {
		t.Fatalf("get after reload: %v", err)
	}
	if got.Title != need.Title {
		t.Fatalf("unexpected reloaded need: %+v", got)
	}
}

func TestMarketStore_AddNeed(t *testing.T) {
	kv := newStubKV()
	s := newTestStore(t, kv, false)

	need, err := s.AddNeed(context.Background(), alice, sampleNeed())
	if err != nil {
		t.Fatalf("AddNeed: %v", err)
	}
	if need.NeedID != "need_1" {
		t.Fatalf("unexpected id: %s", need.NeedID)
	}
	if need.UserID != "10" {
		t.Fatalf("owner should come from the session, got %s", need.UserID)
	}
	if need.HasResponse {
		t.Fatalf("new need must not have responses")
	}
	if need.Status != domain.NeedOpen {
		t.Fatalf("new need must be open, got %s", need.Status)
	}
	if !need.CreateTime.Equal(testNow) || !need.UpdateTime.Equal(testNow) {
		t.Fatalf("unexpected timestamps: %v %v", need.CreateTime, need.UpdateTime)
	}

	var stored []domain.Need
	if err := json.Unmarshal([]byte(kv.data[ports.KeyNeeds]), &stored); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	if len(stored) != 1 || stored[0].NeedID != "need_1" {
		t.Fatalf("snapshot not persisted: %+v", stored)
	}
}

func TestMarketStore_AddNeed_Errors(t *testing.T) {
	s := newTestStore(t, newStubKV(), false)
	ctx := context.Background()

	if _, err := s.AddNeed(ctx, anon, sampleNeed()); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}

	bad := sampleNeed()
	bad.ServiceType = "gardening"
	if _, err := s.AddNeed(ctx, alice, bad); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestMarketStore_NextIDUsesMaxSuffix(t *testing.T) {
	kv := newStubKV()
	kv.data[ports.KeyNeeds] = `[{"needId":"need_7","userId":"10","status":"open"},{"needId":"need_bogus","userId":"10","status":"open"},{"needId":"need_3","userId":"10","status":"open"}]`
	s := newTestStore(t, kv, false)

	need, err := s.AddNeed(context.Background(), alice, sampleNeed())
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if need.NeedID != "need_8" {
		t.Fatalf("expected need_8, got %s", need.NeedID)
	}
}

func TestMarketStore_NeedLifecycle(t *testing.T) {
	s := newTestStore(t, newStubKV(), false)
	ctx := context.Background()

	need, _ := s.AddNeed(ctx, alice, sampleNeed())

	updated, err := s.UpdateNeed(ctx, alice, need.NeedID, domain.NeedPatch{Title: strPtr("Window clean")})
	if err != nil {
		t.Fatalf("update before response: %v", err)
	}
	if updated.Title != "Window clean" || updated.Region != "Shanghai Pudong" {
		t.Fatalf("patch merged incorrectly: %+v", updated)
	}

	if _, err := s.AddServiceOffer(ctx, bob, domain.NewServiceOffer{NeedID: need.NeedID, ServiceType: domain.ServiceCleaning, Title: "I can help"}); err != nil {
		t.Fatalf("add offer: %v", err)
	}
	got, _ := s.GetNeed(ctx, need.NeedID)
	if !got.HasResponse {
		t.Fatalf("need must be marked responded after an offer")
	}

	if _, err := s.UpdateNeed(ctx, alice, need.NeedID, domain.NeedPatch{Title: strPtr("x")}); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected ErrConflict updating a responded need, got %v", err)
	}
	if err := s.DeleteNeed(ctx, alice, need.NeedID); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected ErrConflict deleting a responded need, got %v", err)
	}
}

func TestMarketStore_UpdateNeed_ErrorTaxonomy(t *testing.T) {
	s := newTestStore(t, newStubKV(), false)
	ctx := context.Background()
	need, _ := s.AddNeed(ctx, alice, sampleNeed())

	tests := []struct {
		name string
		sess domain.Session
		id   string
		want error
	}{
		{"unknown id", alice, "need_99", domain.ErrNeedNotFound},
		{"anonymous", anon, need.NeedID, domain.ErrUnauthenticated},
		{"not owner", bob, need.NeedID, domain.ErrForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.UpdateNeed(ctx, tt.sess, tt.id, domain.NeedPatch{Title: strPtr("x")})
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}

	if _, err := s.UpdateNeed(ctx, admin, need.NeedID, domain.NeedPatch{Title: strPtr("by admin")}); err != nil {
		t.Fatalf("admin update: %v", err)
	}
	if _, err := s.UpdateNeed(ctx, alice, need.NeedID, domain.NeedPatch{ServiceType: strPtr("nope")}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestMarketStore_DeleteNeed(t *testing.T) {
	s := newTestStore(t, newStubKV(), false)
	ctx := context.Background()
	need, _ := s.AddNeed(ctx, alice, sampleNeed())

	if err := s.DeleteNeed(ctx, bob, need.NeedID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if err := s.DeleteNeed(ctx, alice, need.NeedID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.GetNeed(ctx, need.NeedID); !errors.Is(err, domain.ErrNeedNotFound) {
		t.Fatalf("expected ErrNeedNotFound after delete, got %v", err)
	}
	if err := s.DeleteNeed(ctx, alice, need.NeedID); !errors.Is(err, domain.ErrNeedNotFound) {
		t.Fatalf("expected ErrNeedNotFound on second delete, got %v", err)
	}
}

func TestMarketStore_CancelNeed(t *testing.T) {
	s := newTestStore(t, newStubKV(), false)
	ctx := context.Background()
	need, _ := s.AddNeed(ctx, alice, sampleNeed())

	closed, err := s.CancelNeed(ctx, alice, need.NeedID)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if closed.Status != domain.NeedClosed {
		t.Fatalf("expected closed, got %s", closed.Status)
	}
	if _, err := s.CancelNeed(ctx, alice, need.NeedID); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected ErrConflict on second cancel, got %v", err)
	}
	if _, err := s.AddServiceOffer(ctx, bob, domain.NewServiceOffer{NeedID: need.NeedID, ServiceType: domain.ServiceCleaning, Title: "late"}); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected ErrConflict offering on a closed need, got %v", err)
	}
}

func TestMarketStore_StorageFailureLeavesMemory(t *testing.T) {
	kv := newStubKV()
	s := newTestStore(t, kv, false)
	ctx := context.Background()
	need, _ := s.AddNeed(ctx, alice, sampleNeed())

	kv.failSet[ports.KeyNeeds] = true
	if _, err := s.UpdateNeed(ctx, alice, need.NeedID, domain.NeedPatch{Title: strPtr("lost")}); !errors.Is(err, domain.ErrStorage) {
		t.Fatalf("expected ErrStorage, got %v", err)
	}
	got, _ := s.GetNeed(ctx, need.NeedID)
	if got.Title != "Deep clean" {
		t.Fatalf("memory changed despite failed write: %q", got.Title)
	}
	if _, err := s.AddNeed(ctx, alice, sampleNeed()); !errors.Is(err, domain.ErrStorage) {
		t.Fatalf("expected ErrStorage on add, got %v", err)
	}
	if needs, _ := s.Snapshot(); len(needs) != 1 {
		t.Fatalf("failed add must not grow the collection, got %d", len(needs))
	}
}

func TestMarketStore_ListNeeds(t *testing.T) {
	s := newTestStore(t, newStubKV(), true)
	ctx := context.Background()

	page, err := s.ListNeeds(ctx, ports.NeedFilter{ServiceType: domain.ServiceCleaning, Page: 1, Size: 5})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if page.Total != 11 {
		t.Fatalf("expected 11 cleaning needs, got %d", page.Total)
	}
	if len(page.Records) != 5 {
		t.Fatalf("expected a page of 5, got %d", len(page.Records))
	}

	last, _ := s.ListNeeds(ctx, ports.NeedFilter{ServiceType: domain.ServiceCleaning, Page: 3, Size: 5})
	if len(last.Records) != 1 {
		t.Fatalf("expected 1 record on the last page, got %d", len(last.Records))
	}

	beyond, _ := s.ListNeeds(ctx, ports.NeedFilter{Page: 99})
	if len(beyond.Records) != 0 {
		t.Fatalf("expected empty page beyond the end")
	}

	kw, _ := s.ListNeeds(ctx, ports.NeedFilter{Keyword: "TOILET"})
	if kw.Total != 1 {
		t.Fatalf("keyword match should be case-insensitive, got %d", kw.Total)
	}

	newest, _ := s.AddNeed(ctx, alice, sampleNeed())
	all, _ := s.ListNeeds(ctx, ports.NeedFilter{})
	if all.Records[0].NeedID != newest.NeedID {
		t.Fatalf("expected newest need first, got %s", all.Records[0].NeedID)
	}

	mine, err := s.MyNeeds(ctx, alice, ports.NeedFilter{})
	if err != nil {
		t.Fatalf("my needs: %v", err)
	}
	if mine.Total != 1 {
		t.Fatalf("expected 1 need for alice, got %d", mine.Total)
	}
	if _, err := s.MyNeeds(ctx, anon, ports.NeedFilter{}); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// Service offers
// ---------------------------------------------------------------------------

func newOfferFixture(t *testing.T) (*MarketStore, *domain.Need, *domain.ServiceOffer) {
	t.Helper()
	s := newTestStore(t, newStubKV(), false)
	ctx := context.Background()
	need, err := s.AddNeed(ctx, alice, sampleNeed())
	if err != nil {
		t.Fatalf("add need: %v", err)
	}
	offer, err := s.AddServiceOffer(ctx, bob, domain.NewServiceOffer{NeedID: need.NeedID, ServiceType: domain.ServiceCleaning, Title: "Bob cleans", Content: "weekends"})
	if err != nil {
		t.Fatalf("add offer: %v", err)
	}
	return s, need, offer
}

func TestMarketStore_AddServiceOffer(t *testing.T) {
	s, need, offer := newOfferFixture(t)

	if offer.ServiceID != "service_1" || offer.Status != domain.OfferPending || offer.UserID != "11" {
		t.Fatalf("unexpected offer: %+v", offer)
	}
	if _, err := s.AddServiceOffer(context.Background(), bob, domain.NewServiceOffer{NeedID: "need_99", ServiceType: domain.ServiceCleaning, Title: "x"}); !errors.Is(err, domain.ErrNeedNotFound) {
		t.Fatalf("expected ErrNeedNotFound, got %v", err)
	}
	offers, err := s.OffersForNeed(context.Background(), need.NeedID)
	if err != nil || len(offers) != 1 {
		t.Fatalf("expected one offer for need, got %d (%v)", len(offers), err)
	}
}

func TestMarketStore_AcceptThenUpdateFails(t *testing.T) {
	s, _, offer := newOfferFixture(t)
	ctx := context.Background()

	accepted, err := s.AcceptServiceOffer(ctx, alice, offer.ServiceID)
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	if accepted.Status != domain.OfferAccepted {
		t.Fatalf("expected accepted, got %s", accepted.Status)
	}

	if _, err := s.UpdateServiceOffer(ctx, bob, offer.ServiceID, domain.ServiceOfferPatch{Title: strPtr("x")}); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected ErrConflict updating accepted offer, got %v", err)
	}
	if err := s.DeleteServiceOffer(ctx, bob, offer.ServiceID); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected ErrConflict deleting accepted offer, got %v", err)
	}
	if _, err := s.AcceptServiceOffer(ctx, alice, offer.ServiceID); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected ErrConflict accepting twice, got %v", err)
	}
}

func TestMarketStore_AcceptRejectsSiblings(t *testing.T) {
	s, need, first := newOfferFixture(t)
	ctx := context.Background()
	carol := sessionFor("12", domain.UserTypeRegular)

	second, err := s.AddServiceOffer(ctx, carol, domain.NewServiceOffer{NeedID: need.NeedID, ServiceType: domain.ServiceCleaning, Title: "Carol cleans"})
	if err != nil {
		t.Fatalf("second offer: %v", err)
	}
	if second.ServiceID != "service_2" {
		t.Fatalf("unexpected id: %s", second.ServiceID)
	}

	if _, err := s.AcceptServiceOffer(ctx, alice, second.ServiceID); err != nil {
		t.Fatalf("accept: %v", err)
	}
	got, _ := s.GetServiceOffer(ctx, first.ServiceID)
	if got.Status != domain.OfferRejected {
		t.Fatalf("expected sibling rejected, got %s", got.Status)
	}
}

func TestMarketStore_DecideOnClosedNeed(t *testing.T) {
	s, need, offer := newOfferFixture(t)
	ctx := context.Background()

	if _, err := s.CancelNeed(ctx, alice, need.NeedID); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if _, err := s.AcceptServiceOffer(ctx, alice, offer.ServiceID); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected ErrConflict accepting on a closed need, got %v", err)
	}
	if _, err := s.RejectServiceOffer(ctx, alice, offer.ServiceID); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected ErrConflict rejecting on a closed need, got %v", err)
	}
	got, _ := s.GetServiceOffer(ctx, offer.ServiceID)
	if got.Status != domain.OfferPending {
		t.Fatalf("offer must stay pending, got %s", got.Status)
	}
}

func TestMarketStore_SingleAcceptedOfferPerNeed(t *testing.T) {
	s, need, first := newOfferFixture(t)
	ctx := context.Background()
	carol := sessionFor("12", domain.UserTypeRegular)

	if _, err := s.AcceptServiceOffer(ctx, alice, first.ServiceID); err != nil {
		t.Fatalf("accept: %v", err)
	}
	if _, err := s.AddServiceOffer(ctx, carol, domain.NewServiceOffer{NeedID: need.NeedID, ServiceType: domain.ServiceCleaning, Title: "Late bid"}); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected ErrConflict offering on a need with an accepted offer, got %v", err)
	}

	offers, _ := s.OffersForNeed(ctx, need.NeedID)
	accepted := 0
	for _, o := range offers {
		if o.Status == domain.OfferAccepted {
			accepted++
		}
	}
	if accepted != 1 {
		t.Fatalf("expected exactly one accepted offer, got %d", accepted)
	}
}

func TestMarketStore_DeletingLastOfferReopensNeed(t *testing.T) {
	kv := newStubKV()
	s := newTestStore(t, kv, false)
	ctx := context.Background()

	need, _ := s.AddNeed(ctx, alice, sampleNeed())
	offer, err := s.AddServiceOffer(ctx, bob, domain.NewServiceOffer{NeedID: need.NeedID, ServiceType: domain.ServiceCleaning, Title: "Bob cleans"})
	if err != nil {
		t.Fatalf("add offer: %v", err)
	}
	if err := s.DeleteServiceOffer(ctx, bob, offer.ServiceID); err != nil {
		t.Fatalf("delete offer: %v", err)
	}

	got, _ := s.GetNeed(ctx, need.NeedID)
	if got.HasResponse {
		t.Fatalf("need without offers must not be marked responded")
	}
	if _, err := s.UpdateNeed(ctx, alice, need.NeedID, domain.NeedPatch{Title: strPtr("Deep clean")}); err != nil {
		t.Fatalf("update after last offer deleted: %v", err)
	}

	reloaded := newTestStore(t, kv, false)
	got, _ = reloaded.GetNeed(ctx, need.NeedID)
	if got.HasResponse {
		t.Fatalf("reloaded need must not be marked responded")
	}
}

func TestMarketStore_DeletingOneOfTwoOffersKeepsResponse(t *testing.T) {
	s, need, first := newOfferFixture(t)
	ctx := context.Background()
	carol := sessionFor("12", domain.UserTypeRegular)

	if _, err := s.AddServiceOffer(ctx, carol, domain.NewServiceOffer{NeedID: need.NeedID, ServiceType: domain.ServiceCleaning, Title: "Carol cleans"}); err != nil {
		t.Fatalf("second offer: %v", err)
	}
	if err := s.DeleteServiceOffer(ctx, bob, first.ServiceID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	got, _ := s.GetNeed(ctx, need.NeedID)
	if !got.HasResponse {
		t.Fatalf("need with a remaining offer must stay responded")
	}
}

func TestMarketStore_AcceptAuthority(t *testing.T) {
	s, _, offer := newOfferFixture(t)
	ctx := context.Background()

	if _, err := s.AcceptServiceOffer(ctx, bob, offer.ServiceID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("offer author must not accept their own offer, got %v", err)
	}
	if _, err := s.AcceptServiceOffer(ctx, alice, "service_99"); !errors.Is(err, domain.ErrServiceOfferNotFound) {
		t.Fatalf("expected ErrServiceOfferNotFound, got %v", err)
	}
	if _, err := s.AcceptServiceOffer(ctx, admin, offer.ServiceID); err != nil {
		t.Fatalf("admin accept: %v", err)
	}
}

func TestMarketStore_RejectServiceOffer(t *testing.T) {
	s, _, offer := newOfferFixture(t)
	ctx := context.Background()

	if _, err := s.RejectServiceOffer(ctx, bob, offer.ServiceID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	rejected, err := s.RejectServiceOffer(ctx, alice, offer.ServiceID)
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if rejected.Status != domain.OfferRejected {
		t.Fatalf("expected rejected, got %s", rejected.Status)
	}
	if _, err := s.RejectServiceOffer(ctx, alice, offer.ServiceID); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected ErrConflict rejecting twice, got %v", err)
	}
}

func TestMarketStore_UpdateAndDeleteServiceOffer(t *testing.T) {
	s, _, offer := newOfferFixture(t)
	ctx := context.Background()

	if _, err := s.UpdateServiceOffer(ctx, alice, offer.ServiceID, domain.ServiceOfferPatch{Title: strPtr("x")}); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("need owner must not edit someone else's offer, got %v", err)
	}
	updated, err := s.UpdateServiceOffer(ctx, bob, offer.ServiceID, domain.ServiceOfferPatch{Content: strPtr("evenings")})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Content != "evenings" || updated.Title != "Bob cleans" {
		t.Fatalf("patch merged incorrectly: %+v", updated)
	}

	if err := s.DeleteServiceOffer(ctx, bob, offer.ServiceID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.GetServiceOffer(ctx, offer.ServiceID); !errors.Is(err, domain.ErrServiceOfferNotFound) {
		t.Fatalf("expected ErrServiceOfferNotFound, got %v", err)
	}
}

func TestMarketStore_MyServiceOffers(t *testing.T) {
	s, _, _ := newOfferFixture(t)
	ctx := context.Background()

	if got := s.MyServiceOffers(ctx, anon); got == nil || len(got) != 0 {
		t.Fatalf("anonymous session must get an empty list, got %v", got)
	}
	if got := s.MyServiceOffers(ctx, bob); len(got) != 1 {
		t.Fatalf("expected 1 offer for bob, got %d", len(got))
	}
	if got := s.MyServiceOffers(ctx, alice); len(got) != 0 {
		t.Fatalf("expected no offers for alice, got %d", len(got))
	}
}

func TestMarketStore_ListServiceOffers(t *testing.T) {
	s := newTestStore(t, newStubKV(), true)

	page, err := s.ListServiceOffers(context.Background(), ports.OfferFilter{Status: domain.OfferPending})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if page.Total != 2 {
		t.Fatalf("expected 2 pending demo offers, got %d", page.Total)
	}
	byNeed, _ := s.ListServiceOffers(context.Background(), ports.OfferFilter{NeedID: "need_22"})
	if byNeed.Total != 1 || byNeed.Records[0].ServiceID != "service_2" {
		t.Fatalf("unexpected need filter result: %+v", byNeed.Records)
	}
}
