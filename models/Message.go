package models

import (
	"gorm.io/gorm"
)

const (
	MessagePending  = "pending"
	MessageApproved = "approved"
	MessageRejected = "rejected"
)

// Message covers both flows: moderated buyer-seller messages (both content
// candidates held until the estate agent adjudicates) and direct messages
// between other permitted parties, which are created already approved.
type Message struct {
	gorm.Model
	PropertyID  uint `json:"propertyID" gorm:"index;not null"`
	StageID     uint `json:"stageID" gorm:"index"`
	SenderID    uint `json:"senderID" gorm:"not null"`
	RecipientID uint `json:"recipientID" gorm:"not null"`

	OriginalContent string `json:"originalContent" gorm:"type:text"`
	FilteredContent string `json:"filteredContent" gorm:"type:text"`
	ApprovedContent string `json:"approvedContent" gorm:"type:text"`

	Status     string `json:"status" gorm:"type:varchar(20);default:'pending';not null;index"` // pending, approved, rejected
	ApprovedBy *uint  `json:"approvedBy"`

	IsBuyerSellerMessage bool `json:"isBuyerSellerMessage" gorm:"default:false;not null"`
}
