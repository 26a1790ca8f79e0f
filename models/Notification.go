package models

import (
	"gorm.io/gorm"
)

type Notification struct {
	gorm.Model
	UserID     uint   `json:"userID" gorm:"index;not null"`
	PropertyID *uint  `json:"propertyID" gorm:"index"`
	Message    string `json:"message" gorm:"type:text;not null"`
	Type       string `json:"type" gorm:"type:varchar(32);default:'system';not null"` // stage_completed, document_uploaded, timeline_approval, message, delivered, system
	Read       bool   `json:"read" gorm:"default:false;not null"`
}
