package models

import (
	"gorm.io/gorm"
)

// Closed document-type vocabulary for conveyancing paperwork.
const (
	DocProofOfID            = "proof_of_id"
	DocProofOfAddress       = "proof_of_address"
	DocSourceOfFunds        = "source_of_funds"
	DocTitleDeeds           = "title_deeds"
	DocEPC                  = "epc"
	DocDraftContract        = "draft_contract"
	DocLocalAuthoritySearch = "local_authority_search"
	DocWaterSearch          = "water_search"
	DocEnvironmentalSearch  = "environmental_search"
	DocSurveyReport         = "survey_report"
	DocMortgageOffer        = "mortgage_offer"
	DocContract             = "contract"
	DocCompletionStatement  = "completion_statement"
	DocTransferDeed         = "transfer_deed"
	DocOther                = "other"
)

// Document is the metadata row for a file held in the external document
// store, keyed by property and document type.
type Document struct {
	gorm.Model
	PropertyID       uint   `json:"propertyID" gorm:"index;not null"`
	DocumentType     string `json:"documentType" gorm:"type:varchar(40);index;not null"`
	OriginalFilename string `json:"originalFilename"`
	StorageURL       string `json:"storageURL" gorm:"size:512"`
	UploadedBy       uint   `json:"uploadedBy" gorm:"index;not null"`
	ReviewStatus     string `json:"reviewStatus" gorm:"type:varchar(20);default:'pending'"` // pending, approved, denied
	ReviewedByID     *uint  `json:"reviewedByID"`
}
