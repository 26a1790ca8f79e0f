package routes

import (
	"io"

	"github.com/kataras/iris/v12"

	"conveyancing-server/models"
	"conveyancing-server/services"
	"conveyancing-server/storage"
	"conveyancing-server/utils"
)

var documentLabels = map[string]string{
	models.DocProofOfID:            "Proof of ID",
	models.DocProofOfAddress:       "Proof of Address",
	models.DocSourceOfFunds:        "Source of Funds",
	models.DocTitleDeeds:           "Title Deeds",
	models.DocEPC:                  "Energy Performance Certificate",
	models.DocDraftContract:        "Draft Contract",
	models.DocLocalAuthoritySearch: "Local Authority Search",
	models.DocWaterSearch:          "Water & Drainage Search",
	models.DocEnvironmentalSearch:  "Environmental Search",
	models.DocSurveyReport:         "Survey Report",
	models.DocMortgageOffer:        "Mortgage Offer",
	models.DocContract:             "Contract",
	models.DocCompletionStatement:  "Completion Statement",
	models.DocTransferDeed:         "Transfer Deed",
	models.DocOther:                "Document",
}

// UploadDocument stores a conveyancing document against the property and
// notifies the other parties. Expects multipart form data with a "file"
// field and a "document_type" field.
func UploadDocument(ctx iris.Context) {
	property, claims, ok := loadPropertyForParty(ctx)
	if !ok {
		return
	}

	documentType := ctx.FormValue("document_type")
	label, known := documentLabels[documentType]
	if !known {
		utils.CreateError(iris.StatusBadRequest, "Validation Error", "Unknown document type.", ctx)
		return
	}

	file, header, err := ctx.FormFile("file")
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Validation Error", "A file is required.", ctx)
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	storageURL := storage.UploadDocument(content, property.ID, documentType)
	if storageURL == "" {
		utils.CreateInternalServerError(ctx)
		return
	}

	document := models.Document{
		PropertyID:       property.ID,
		DocumentType:     documentType,
		OriginalFilename: header.Filename,
		StorageURL:       storageURL,
		UploadedBy:       claims.ID,
		ReviewStatus:     "pending",
	}
	if err := storage.DB.Create(&document).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	var actor models.User
	if err := storage.DB.First(&actor, claims.ID).Error; err == nil {
		services.NewNotificationService().DocumentUploaded(property, label, actor)
	}

	utils.Audit(ctx, "document.upload", "document", document.ID, nil, document)
	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(document)
}

func GetPropertyDocuments(ctx iris.Context) {
	property, _, ok := loadPropertyForParty(ctx)
	if !ok {
		return
	}

	var documents []models.Document
	if err := storage.DB.Where("property_id = ?", property.ID).
		Order("created_at DESC").Find(&documents).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	ctx.JSON(documents)
}
