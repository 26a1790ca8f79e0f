package conveyancing

import (
	"testing"

	"conveyancing-server/models"
)

func uintp(v uint) *uint { return &v }

// testProperty returns a property with the full party set assigned:
// buyer 1, seller 2, buyer solicitor 10, seller solicitor 11, agent 20.
func testProperty() models.Property {
	prop := models.Property{
		BuyerID:           uintp(1),
		SellerID:          uintp(2),
		BuyerSolicitorID:  uintp(10),
		SellerSolicitorID: uintp(11),
		EstateAgentID:     uintp(20),
	}
	prop.ID = 100
	return prop
}

func TestApproveTimelineFirstApproval(t *testing.T) {
	prop := testProperty()

	if err := ApproveTimeline(&prop, 10); err != nil {
		t.Fatalf("buyer solicitor approval failed: %v", err)
	}
	if !prop.TimelineApprovedByBuyerSolicitor {
		t.Error("buyer solicitor flag not set")
	}
	if prop.TimelineApprovedBySellerSolicitor {
		t.Error("seller solicitor flag set unexpectedly")
	}
	if prop.TimelineLocked {
		t.Error("timeline locked after a single approval")
	}
}

func TestApproveTimelineSecondApprovalLocks(t *testing.T) {
	prop := testProperty()

	if err := ApproveTimeline(&prop, 10); err != nil {
		t.Fatalf("first approval failed: %v", err)
	}
	if err := ApproveTimeline(&prop, 11); err != nil {
		t.Fatalf("second approval failed: %v", err)
	}
	if !prop.TimelineLocked {
		t.Error("timeline not locked after both approvals")
	}
	if !prop.TimelineLockConsistent() {
		t.Error("lock flag inconsistent with approval flags")
	}
}

func TestApproveTimelineNonSolicitorForbidden(t *testing.T) {
	for _, actorID := range []uint{1, 2, 20, 999} {
		prop := testProperty()
		err := ApproveTimeline(&prop, actorID)
		if !IsKind(err, KindForbidden) {
			t.Errorf("actor %d: want forbidden, got %v", actorID, err)
		}
		if prop.TimelineApprovedByBuyerSolicitor || prop.TimelineApprovedBySellerSolicitor || prop.TimelineLocked {
			t.Errorf("actor %d: property mutated on forbidden approval", actorID)
		}
	}
}

func TestApproveTimelineAlreadyApproved(t *testing.T) {
	prop := testProperty()

	if err := ApproveTimeline(&prop, 10); err != nil {
		t.Fatalf("first approval failed: %v", err)
	}
	err := ApproveTimeline(&prop, 10)
	if !IsKind(err, KindAlreadyApproved) {
		t.Fatalf("want already_approved, got %v", err)
	}
	if prop.TimelineLocked {
		t.Error("double approval by one solicitor locked the timeline")
	}
}

func TestApproveTimelineAlreadyLocked(t *testing.T) {
	prop := testProperty()
	prop.TimelineApprovedByBuyerSolicitor = true
	prop.TimelineApprovedBySellerSolicitor = true
	prop.TimelineLocked = true

	err := ApproveTimeline(&prop, 10)
	if !IsKind(err, KindAlreadyLocked) {
		t.Fatalf("want already_locked, got %v", err)
	}
}

func TestUnlockTimelineClearsApprovals(t *testing.T) {
	prop := testProperty()
	prop.TimelineApprovedByBuyerSolicitor = true
	prop.TimelineApprovedBySellerSolicitor = true
	prop.TimelineLocked = true

	if err := UnlockTimeline(&prop, 11); err != nil {
		t.Fatalf("unlock failed: %v", err)
	}
	if prop.TimelineLocked || prop.TimelineApprovedByBuyerSolicitor || prop.TimelineApprovedBySellerSolicitor {
		t.Error("unlock left stale flags behind")
	}

	// The full cycle can run again from scratch.
	if err := ApproveTimeline(&prop, 10); err != nil {
		t.Fatalf("re-approval after unlock failed: %v", err)
	}
	if err := ApproveTimeline(&prop, 11); err != nil {
		t.Fatalf("re-approval after unlock failed: %v", err)
	}
	if !prop.TimelineLocked {
		t.Error("timeline did not re-lock after unlock and re-approval")
	}
}

func TestUnlockTimelineForbidden(t *testing.T) {
	prop := testProperty()
	prop.TimelineLocked = true

	for _, actorID := range []uint{1, 2, 20} {
		err := UnlockTimeline(&prop, actorID)
		if !IsKind(err, KindForbidden) {
			t.Errorf("actor %d: want forbidden, got %v", actorID, err)
		}
		if !prop.TimelineLocked {
			t.Errorf("actor %d: lock cleared by forbidden unlock", actorID)
		}
	}
}

func TestApproveTimelineOrderIndependent(t *testing.T) {
	// Locking must not depend on which solicitor signs first.
	prop := testProperty()
	if err := ApproveTimeline(&prop, 11); err != nil {
		t.Fatalf("seller solicitor first approval failed: %v", err)
	}
	if prop.TimelineLocked {
		t.Fatal("locked after one approval")
	}
	if err := ApproveTimeline(&prop, 10); err != nil {
		t.Fatalf("buyer solicitor second approval failed: %v", err)
	}
	if !prop.TimelineLocked {
		t.Fatal("not locked after both approvals")
	}
}

func TestOtherSolicitorID(t *testing.T) {
	prop := testProperty()

	if other := OtherSolicitorID(prop, 10); other == nil || *other != 11 {
		t.Errorf("buyer solicitor counterpart = %v, want 11", other)
	}
	if other := OtherSolicitorID(prop, 11); other == nil || *other != 10 {
		t.Errorf("seller solicitor counterpart = %v, want 10", other)
	}
	if other := OtherSolicitorID(prop, 20); other != nil {
		t.Errorf("agent counterpart = %v, want nil", other)
	}
}
