package models

import (
	"time"

	"gorm.io/gorm"
)

type Property struct {
	gorm.Model
	Address        string     `json:"address"`
	Postcode       string     `json:"postcode"`
	Price          float64    `json:"price"`
	Status         string     `json:"status" gorm:"type:varchar(20);default:'available';index"` // available, under_offer, sold, withdrawn
	PropertyType   string     `json:"propertyType"`                                             // house, flat, bungalow
	Bedrooms       int        `json:"bedrooms"`
	Bathrooms      int        `json:"bathrooms"`
	Tenure         string     `json:"tenure"` // freehold, leasehold
	CompletionDate *time.Time `json:"completionDate"`

	// Transaction parties, each nullable until assigned
	BuyerID           *uint `json:"buyerID" gorm:"index"`
	SellerID          *uint `json:"sellerID" gorm:"index"`
	BuyerSolicitorID  *uint `json:"buyerSolicitorID" gorm:"index"`
	SellerSolicitorID *uint `json:"sellerSolicitorID" gorm:"index"`
	EstateAgentID     *uint `json:"estateAgentID" gorm:"index"`

	// Collaborative timeline governance. TimelineLocked is persisted for
	// query efficiency but only ever written in the same transaction as the
	// two approval flags.
	TimelineApprovedByBuyerSolicitor  bool `json:"timelineApprovedByBuyerSolicitor" gorm:"default:false;not null"`
	TimelineApprovedBySellerSolicitor bool `json:"timelineApprovedBySellerSolicitor" gorm:"default:false;not null"`
	TimelineLocked                    bool `json:"timelineLocked" gorm:"default:false;not null"`

	Stages []PropertyStage `json:"stages,omitempty" gorm:"foreignKey:PropertyID"`
}

// IsParty reports whether the user holds any role on this transaction.
func (p *Property) IsParty(userID uint) bool {
	for _, id := range []*uint{p.BuyerID, p.SellerID, p.BuyerSolicitorID, p.SellerSolicitorID, p.EstateAgentID} {
		if id != nil && *id == userID {
			return true
		}
	}
	return false
}

// TimelineLockConsistent reports the invariant: locked iff both solicitors
// have approved.
func (p *Property) TimelineLockConsistent() bool {
	return p.TimelineLocked == (p.TimelineApprovedByBuyerSolicitor && p.TimelineApprovedBySellerSolicitor)
}
