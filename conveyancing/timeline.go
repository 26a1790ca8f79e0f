package conveyancing

import (
	"conveyancing-server/models"
)

// ApproveTimeline records one solicitor's sign-off on the property timeline.
// When the second approval lands, the timeline locks in the same mutation so
// no caller can observe both flags true with the lock still clear. The caller
// must hold a row lock on the property and persist it in the same
// transaction.
func ApproveTimeline(prop *models.Property, actorID uint) error {
	isBuyerSolicitor := prop.BuyerSolicitorID != nil && *prop.BuyerSolicitorID == actorID
	isSellerSolicitor := prop.SellerSolicitorID != nil && *prop.SellerSolicitorID == actorID

	if !isBuyerSolicitor && !isSellerSolicitor {
		return Forbidden("only solicitors assigned to this property can approve the timeline")
	}
	if prop.TimelineLocked {
		return AlreadyLocked("timeline is already locked and cannot be modified")
	}
	if isBuyerSolicitor && prop.TimelineApprovedByBuyerSolicitor {
		return AlreadyApproved("buyer solicitor has already approved the timeline")
	}
	if isSellerSolicitor && prop.TimelineApprovedBySellerSolicitor {
		return AlreadyApproved("seller solicitor has already approved the timeline")
	}

	if isBuyerSolicitor {
		prop.TimelineApprovedByBuyerSolicitor = true
	} else {
		prop.TimelineApprovedBySellerSolicitor = true
	}
	if prop.TimelineApprovedByBuyerSolicitor && prop.TimelineApprovedBySellerSolicitor {
		prop.TimelineLocked = true
	}
	return nil
}

// UnlockTimeline reopens a timeline for renegotiation. Both approval flags
// are cleared unconditionally so a stale single-party approval cannot survive
// the unlock.
func UnlockTimeline(prop *models.Property, actorID uint) error {
	isBuyerSolicitor := prop.BuyerSolicitorID != nil && *prop.BuyerSolicitorID == actorID
	isSellerSolicitor := prop.SellerSolicitorID != nil && *prop.SellerSolicitorID == actorID

	if !isBuyerSolicitor && !isSellerSolicitor {
		return Forbidden("only assigned solicitors can unlock the timeline")
	}

	prop.TimelineLocked = false
	prop.TimelineApprovedByBuyerSolicitor = false
	prop.TimelineApprovedBySellerSolicitor = false
	return nil
}

// OtherSolicitorID returns the counterpart solicitor for approval-comment
// notifications, or nil if the actor is not one of the two solicitors.
func OtherSolicitorID(prop models.Property, actorID uint) *uint {
	if prop.BuyerSolicitorID != nil && *prop.BuyerSolicitorID == actorID {
		return prop.SellerSolicitorID
	}
	if prop.SellerSolicitorID != nil && *prop.SellerSolicitorID == actorID {
		return prop.BuyerSolicitorID
	}
	return nil
}
