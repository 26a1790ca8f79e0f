package models

import (
	"time"

	"gorm.io/gorm"
)

// Stage statuses set programmatically. "delayed" and "waiting" exist in the
// display vocabulary only and are never written here.
const (
	StagePending    = "pending"
	StageInProgress = "in-progress"
	StageCompleted  = "completed"
)

type PropertyStage struct {
	gorm.Model
	PropertyID      uint       `json:"propertyID" gorm:"index;not null"`
	Stage           string     `json:"stage" gorm:"not null"` // e.g. "Offer Accepted"
	Description     string     `json:"description"`
	Status          string     `json:"status" gorm:"type:varchar(20);default:'pending';not null"`
	StageOrder      int        `json:"order" gorm:"column:stage_order;not null;default:0"`
	ResponsibleRole string     `json:"responsibleRole"`
	StartDate       *time.Time `json:"startDate"`
	DueDate         *time.Time `json:"dueDate"`
	CompletionDate  *time.Time `json:"completionDate"`
	IsDraft         bool       `json:"isDraft" gorm:"default:false;not null"`
}
