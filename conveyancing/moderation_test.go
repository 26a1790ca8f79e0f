package conveyancing

import (
	"testing"

	"conveyancing-server/models"
)

func pendingMessage(t *testing.T) models.Message {
	t.Helper()
	prop := testProperty()
	msg, err := NewBuyerSellerMessage(prop, 5, 1, "Can we push completion back a week?", "Could completion be moved back by a week?")
	if err != nil {
		t.Fatalf("building message failed: %v", err)
	}
	msg.ID = 7
	return msg
}

func TestNewBuyerSellerMessage(t *testing.T) {
	prop := testProperty()

	msg, err := NewBuyerSellerMessage(prop, 5, 1, "original text", "filtered text")
	if err != nil {
		t.Fatalf("buyer message failed: %v", err)
	}
	if msg.RecipientID != 2 {
		t.Errorf("recipient = %d, want seller 2", msg.RecipientID)
	}
	if msg.Status != models.MessagePending {
		t.Errorf("status = %q, want pending", msg.Status)
	}
	if !msg.IsBuyerSellerMessage {
		t.Error("message not flagged as buyer-seller")
	}
	if msg.OriginalContent != "original text" || msg.FilteredContent != "filtered text" {
		t.Error("content fields not stored verbatim")
	}
	if msg.ApprovedContent != "" {
		t.Error("approved content set before adjudication")
	}

	// Seller replies to the buyer.
	reply, err := NewBuyerSellerMessage(prop, 5, 2, "reply", "reply filtered")
	if err != nil {
		t.Fatalf("seller message failed: %v", err)
	}
	if reply.RecipientID != 1 {
		t.Errorf("reply recipient = %d, want buyer 1", reply.RecipientID)
	}
}

func TestNewBuyerSellerMessageRejectsOutsiders(t *testing.T) {
	prop := testProperty()
	for _, senderID := range []uint{10, 11, 20, 999} {
		if _, err := NewBuyerSellerMessage(prop, 5, senderID, "hi", "hi"); !IsKind(err, KindForbidden) {
			t.Errorf("sender %d: want forbidden, got %v", senderID, err)
		}
	}
}

func TestNewBuyerSellerMessageEmptyContent(t *testing.T) {
	prop := testProperty()
	if _, err := NewBuyerSellerMessage(prop, 5, 1, "", ""); !IsKind(err, KindValidation) {
		t.Errorf("want validation error, got %v", err)
	}
}

func TestApproveMessageOriginal(t *testing.T) {
	prop := testProperty()
	msg := pendingMessage(t)

	if err := ApproveMessage(&msg, VersionOriginal, prop, 20); err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if msg.Status != models.MessageApproved {
		t.Errorf("status = %q, want approved", msg.Status)
	}
	if msg.ApprovedContent != msg.OriginalContent {
		t.Errorf("approved content %q, want verbatim original %q", msg.ApprovedContent, msg.OriginalContent)
	}
	if msg.ApprovedBy == nil || *msg.ApprovedBy != 20 {
		t.Errorf("approved by = %v, want 20", msg.ApprovedBy)
	}
}

func TestApproveMessageFiltered(t *testing.T) {
	prop := testProperty()
	msg := pendingMessage(t)

	if err := ApproveMessage(&msg, VersionFiltered, prop, 20); err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if msg.ApprovedContent != msg.FilteredContent {
		t.Errorf("approved content %q, want verbatim filtered %q", msg.ApprovedContent, msg.FilteredContent)
	}
}

func TestApproveMessageOnlyAgent(t *testing.T) {
	prop := testProperty()
	for _, actorID := range []uint{1, 2, 10, 11, 999} {
		msg := pendingMessage(t)
		if err := ApproveMessage(&msg, VersionOriginal, prop, actorID); !IsKind(err, KindForbidden) {
			t.Errorf("actor %d: want forbidden, got %v", actorID, err)
		}
		if msg.Status != models.MessagePending {
			t.Errorf("actor %d: message mutated by forbidden approval", actorID)
		}
	}
}

func TestApproveMessageTerminalStates(t *testing.T) {
	prop := testProperty()

	approved := pendingMessage(t)
	if err := ApproveMessage(&approved, VersionOriginal, prop, 20); err != nil {
		t.Fatalf("setup approve failed: %v", err)
	}
	if err := ApproveMessage(&approved, VersionFiltered, prop, 20); !IsKind(err, KindInvalidTransition) {
		t.Errorf("re-approve: want invalid_transition, got %v", err)
	}
	if approved.ApprovedContent != approved.OriginalContent {
		t.Error("re-approve overwrote the delivered content")
	}

	rejected := pendingMessage(t)
	if err := RejectMessage(&rejected, prop, 20); err != nil {
		t.Fatalf("setup reject failed: %v", err)
	}
	if err := ApproveMessage(&rejected, VersionOriginal, prop, 20); !IsKind(err, KindInvalidTransition) {
		t.Errorf("approve after reject: want invalid_transition, got %v", err)
	}
}

func TestApproveMessageUnknownVersion(t *testing.T) {
	prop := testProperty()
	msg := pendingMessage(t)
	if err := ApproveMessage(&msg, MessageVersion("edited"), prop, 20); !IsKind(err, KindValidation) {
		t.Errorf("want validation error, got %v", err)
	}
}

func TestRejectMessage(t *testing.T) {
	prop := testProperty()
	msg := pendingMessage(t)

	if err := RejectMessage(&msg, prop, 20); err != nil {
		t.Fatalf("reject failed: %v", err)
	}
	if msg.Status != models.MessageRejected {
		t.Errorf("status = %q, want rejected", msg.Status)
	}
	if msg.ApprovedContent != "" {
		t.Error("rejected message carries delivered content")
	}
}

func TestProjectMessagePending(t *testing.T) {
	prop := testProperty()
	msg := pendingMessage(t)

	// Sender sees their own original.
	view, visible := ProjectMessage(msg, prop, 1)
	if !visible {
		t.Fatal("sender cannot see own pending message")
	}
	if view.Content != msg.OriginalContent || view.OriginalContent != msg.OriginalContent {
		t.Error("sender does not see the original text")
	}
	if view.FilteredContent != "" {
		t.Error("sender sees the filtered candidate")
	}

	// Agent sees both candidates.
	view, visible = ProjectMessage(msg, prop, 20)
	if !visible {
		t.Fatal("agent cannot see pending message")
	}
	if view.OriginalContent != msg.OriginalContent || view.FilteredContent != msg.FilteredContent {
		t.Error("agent does not see both candidates")
	}

	// Recipient and bystanders see nothing while pending.
	for _, viewerID := range []uint{2, 10, 11} {
		if _, visible := ProjectMessage(msg, prop, viewerID); visible {
			t.Errorf("viewer %d sees a pending message", viewerID)
		}
	}
}

func TestProjectMessageApproved(t *testing.T) {
	prop := testProperty()
	msg := pendingMessage(t)
	if err := ApproveMessage(&msg, VersionFiltered, prop, 20); err != nil {
		t.Fatalf("approve failed: %v", err)
	}

	// Recipient now sees exactly the approved content.
	view, visible := ProjectMessage(msg, prop, 2)
	if !visible {
		t.Fatal("recipient cannot see approved message")
	}
	if view.Content != msg.ApprovedContent {
		t.Errorf("recipient content = %q, want approved %q", view.Content, msg.ApprovedContent)
	}
	if view.OriginalContent != "" || view.FilteredContent != "" {
		t.Error("recipient sees undelivered candidates")
	}

	// Other parties see the delivered form only.
	view, visible = ProjectMessage(msg, prop, 10)
	if !visible {
		t.Fatal("party cannot see approved message")
	}
	if view.Content != msg.ApprovedContent || view.OriginalContent != "" {
		t.Error("bystander projection leaks candidates")
	}

	// Non-parties never see anything.
	if _, visible := ProjectMessage(msg, prop, 999); visible {
		t.Error("non-party sees an approved message")
	}
}

func TestProjectMessageRejected(t *testing.T) {
	prop := testProperty()
	msg := pendingMessage(t)
	if err := RejectMessage(&msg, prop, 20); err != nil {
		t.Fatalf("reject failed: %v", err)
	}

	if _, visible := ProjectMessage(msg, prop, 2); visible {
		t.Error("recipient sees a rejected message")
	}
	if _, visible := ProjectMessage(msg, prop, 1); !visible {
		t.Error("sender loses sight of their rejected message")
	}
	if _, visible := ProjectMessage(msg, prop, 20); !visible {
		t.Error("agent loses sight of a rejected message")
	}
}

func TestNewDirectMessage(t *testing.T) {
	prop := testProperty()
	buyer := models.User{Role: RoleBuyer}
	buyer.ID = 1
	buyerSolicitor := models.User{Role: RoleSolicitor}
	buyerSolicitor.ID = 10

	msg, err := NewDirectMessage(prop, 5, buyer, buyerSolicitor, "any update on searches?")
	if err != nil {
		t.Fatalf("direct message failed: %v", err)
	}
	if msg.Status != models.MessageApproved {
		t.Errorf("status = %q, want approved on creation", msg.Status)
	}
	if msg.ApprovedContent != "any update on searches?" {
		t.Error("direct message content not delivered verbatim")
	}
	if msg.IsBuyerSellerMessage {
		t.Error("direct message flagged as moderated traffic")
	}
}

func TestNewDirectMessageRefusesBuyerSellerPair(t *testing.T) {
	prop := testProperty()
	buyer := models.User{Role: RoleBuyer}
	buyer.ID = 1
	seller := models.User{Role: RoleSeller}
	seller.ID = 2

	if _, err := NewDirectMessage(prop, 5, buyer, seller, "hi"); !IsKind(err, KindForbidden) {
		t.Errorf("buyer->seller: want forbidden, got %v", err)
	}
	if _, err := NewDirectMessage(prop, 5, seller, buyer, "hi"); !IsKind(err, KindForbidden) {
		t.Errorf("seller->buyer: want forbidden, got %v", err)
	}
}

func TestNewDirectMessageRefusesCrossSideSolicitor(t *testing.T) {
	prop := testProperty()
	buyer := models.User{Role: RoleBuyer}
	buyer.ID = 1
	sellerSolicitor := models.User{Role: RoleSolicitor}
	sellerSolicitor.ID = 11

	// The buyer may not reach the seller's solicitor directly.
	if _, err := NewDirectMessage(prop, 5, buyer, sellerSolicitor, "hi"); !IsKind(err, KindForbidden) {
		t.Errorf("buyer->seller solicitor: want forbidden, got %v", err)
	}
}

func TestNewDirectMessageRefusesNonParties(t *testing.T) {
	prop := testProperty()
	stranger := models.User{Role: RoleBuyer}
	stranger.ID = 999
	agent := models.User{Role: RoleEstateAgent}
	agent.ID = 20

	if _, err := NewDirectMessage(prop, 5, stranger, agent, "hi"); !IsKind(err, KindForbidden) {
		t.Errorf("stranger sender: want forbidden, got %v", err)
	}
	if _, err := NewDirectMessage(prop, 5, agent, stranger, "hi"); !IsKind(err, KindForbidden) {
		t.Errorf("stranger recipient: want forbidden, got %v", err)
	}
}
