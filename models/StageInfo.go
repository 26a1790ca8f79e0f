package models

import (
	"gorm.io/gorm"
)

// StageInfo caches a per-role plain-English explanation of a conveyancing
// stage, unique per (stage, role).
type StageInfo struct {
	gorm.Model
	Stage       string `json:"stage" gorm:"uniqueIndex:idx_stage_role;not null"`
	Role        string `json:"role" gorm:"uniqueIndex:idx_stage_role;type:varchar(20);not null"` // buyer or seller
	Explanation string `json:"explanation" gorm:"type:text;not null"`
}
