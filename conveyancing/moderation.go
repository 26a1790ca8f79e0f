package conveyancing

import (
	"time"

	"conveyancing-server/models"
)

type MessageVersion string

const (
	VersionOriginal MessageVersion = "original"
	VersionFiltered MessageVersion = "filtered"
)

// Counterpart resolves the recipient of a buyer-seller message: the buyer
// reaches the seller and vice versa. Any other sender is refused.
func Counterpart(prop models.Property, senderID uint) (uint, error) {
	isBuyer := prop.BuyerID != nil && *prop.BuyerID == senderID
	isSeller := prop.SellerID != nil && *prop.SellerID == senderID

	if !isBuyer && !isSeller {
		return 0, Forbidden("only the buyer or seller can send messages on this channel")
	}
	if isBuyer {
		if prop.SellerID == nil {
			return 0, Validation("no seller is assigned to this property")
		}
		return *prop.SellerID, nil
	}
	if prop.BuyerID == nil {
		return 0, Validation("no buyer is assigned to this property")
	}
	return *prop.BuyerID, nil
}

// NewBuyerSellerMessage builds the pending message holding both candidate
// contents. filtered is produced by the external rephrasing collaborator.
func NewBuyerSellerMessage(prop models.Property, stageID, senderID uint, original, filtered string) (models.Message, error) {
	if original == "" {
		return models.Message{}, Validation("message content is required")
	}
	recipientID, err := Counterpart(prop, senderID)
	if err != nil {
		return models.Message{}, err
	}
	return models.Message{
		PropertyID:           prop.ID,
		StageID:              stageID,
		SenderID:             senderID,
		RecipientID:          recipientID,
		OriginalContent:      original,
		FilteredContent:      filtered,
		Status:               models.MessagePending,
		IsBuyerSellerMessage: true,
	}, nil
}

// ApproveMessage releases one verbatim candidate to the recipient. Only the
// property's estate agent may adjudicate, and only once: approved and
// rejected are terminal.
func ApproveMessage(msg *models.Message, version MessageVersion, prop models.Property, actorID uint) error {
	if prop.EstateAgentID == nil || *prop.EstateAgentID != actorID {
		return Forbidden("only the estate agent can approve messages")
	}
	if msg.Status != models.MessagePending {
		return InvalidTransition("message is already %s", msg.Status)
	}
	switch version {
	case VersionOriginal:
		msg.ApprovedContent = msg.OriginalContent
	case VersionFiltered:
		msg.ApprovedContent = msg.FilteredContent
	default:
		return Validation("version must be %q or %q", VersionOriginal, VersionFiltered)
	}
	msg.Status = models.MessageApproved
	msg.ApprovedBy = &actorID
	return nil
}

// RejectMessage drops a pending message. Content fields are kept for the
// sender and agent but are never delivered.
func RejectMessage(msg *models.Message, prop models.Property, actorID uint) error {
	if prop.EstateAgentID == nil || *prop.EstateAgentID != actorID {
		return Forbidden("only the estate agent can reject messages")
	}
	if msg.Status != models.MessagePending {
		return InvalidTransition("message is already %s", msg.Status)
	}
	msg.Status = models.MessageRejected
	return nil
}

// MessageView is the read-side projection of a message for one viewer. The
// content fields a viewer must not see are blanked here, server-side, rather
// than trusted to the client.
type MessageView struct {
	ID                   uint      `json:"id"`
	PropertyID           uint      `json:"propertyID"`
	StageID              uint      `json:"stageID"`
	SenderID             uint      `json:"senderID"`
	RecipientID          uint      `json:"recipientID"`
	Content              string    `json:"content"`
	OriginalContent      string    `json:"originalContent,omitempty"`
	FilteredContent      string    `json:"filteredContent,omitempty"`
	ApprovedContent      string    `json:"approvedContent,omitempty"`
	Status               string    `json:"status"`
	Timestamp            time.Time `json:"timestamp"`
	IsBuyerSellerMessage bool      `json:"isBuyerSellerMessage"`
}

// ProjectMessage applies the visibility rule for one viewer. The second
// return value is false when the viewer may not see the message at all.
//
//   - Sender: always sees their own original, whatever the status.
//   - Estate agent: sees original and filtered candidates, and the outcome.
//   - Recipient: sees nothing until approval, then only the approved content.
//   - Anyone else on the property: approved traffic only (delivered form).
func ProjectMessage(msg models.Message, prop models.Property, viewerID uint) (MessageView, bool) {
	view := MessageView{
		ID:                   msg.ID,
		PropertyID:           msg.PropertyID,
		StageID:              msg.StageID,
		SenderID:             msg.SenderID,
		RecipientID:          msg.RecipientID,
		Status:               msg.Status,
		Timestamp:            msg.CreatedAt,
		IsBuyerSellerMessage: msg.IsBuyerSellerMessage,
	}

	isSender := msg.SenderID == viewerID
	isAgent := prop.EstateAgentID != nil && *prop.EstateAgentID == viewerID

	switch {
	case isAgent:
		view.OriginalContent = msg.OriginalContent
		view.FilteredContent = msg.FilteredContent
		view.ApprovedContent = msg.ApprovedContent
		view.Content = msg.OriginalContent
		if msg.Status == models.MessageApproved {
			view.Content = msg.ApprovedContent
		}
		return view, true
	case isSender:
		view.OriginalContent = msg.OriginalContent
		view.Content = msg.OriginalContent
		if msg.Status == models.MessageApproved {
			view.ApprovedContent = msg.ApprovedContent
		}
		return view, true
	case msg.RecipientID == viewerID:
		if msg.Status != models.MessageApproved {
			return MessageView{}, false
		}
		view.ApprovedContent = msg.ApprovedContent
		view.Content = msg.ApprovedContent
		return view, true
	default:
		if msg.Status != models.MessageApproved || !prop.IsParty(viewerID) {
			return MessageView{}, false
		}
		view.ApprovedContent = msg.ApprovedContent
		view.Content = msg.ApprovedContent
		return view, true
	}
}

// NewDirectMessage builds an unmoderated message between two permitted
// non-buyer-seller parties. It is created already approved: the access
// policy, not the moderation gate, protects this path. Buyer<->seller pairs
// are pushed to the moderated channel.
func NewDirectMessage(prop models.Property, stageID uint, sender models.User, recipient models.User, content string) (models.Message, error) {
	if content == "" {
		return models.Message{}, Validation("message content is required")
	}

	senderRole := ResolvePropertyRole(sender.ID, sender.Role, prop)
	recipientRole := ResolvePropertyRole(recipient.ID, recipient.Role, prop)
	if senderRole == PropertyRoleNone {
		return models.Message{}, Forbidden("sender holds no role on this property")
	}
	if recipientRole == PropertyRoleNone {
		return models.Message{}, Forbidden("recipient holds no role on this property")
	}

	buyerSellerPair := (senderRole == PropertyRoleBuyer && recipientRole == PropertyRoleSeller) ||
		(senderRole == PropertyRoleSeller && recipientRole == PropertyRoleBuyer)
	if buyerSellerPair {
		return models.Message{}, Forbidden("buyer-seller messages must go through agent moderation")
	}
	if !CanMessage(senderRole, recipientRole) {
		return models.Message{}, Forbidden("a %s may not message a %s directly", senderRole, recipientRole)
	}

	return models.Message{
		PropertyID:           prop.ID,
		StageID:              stageID,
		SenderID:             sender.ID,
		RecipientID:          recipient.ID,
		OriginalContent:      content,
		ApprovedContent:      content,
		Status:               models.MessageApproved,
		IsBuyerSellerMessage: false,
	}, nil
}
