package routes

import (
	"strings"

	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"

	"conveyancing-server/conveyancing"
	"conveyancing-server/models"
	"conveyancing-server/services"
	"conveyancing-server/storage"
	"conveyancing-server/utils"
)

func CreateProperty(ctx iris.Context) {
	var input CreatePropertyInput
	err := ctx.ReadJSON(&input)
	if err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	claims := jwt.Get(ctx).(*utils.AccessToken)
	if claims.Role != conveyancing.RoleEstateAgent {
		utils.CreateError(iris.StatusForbidden, "Forbidden", "Only estate agents can create a property.", ctx)
		return
	}

	// Every assigned party must exist and hold the role its slot requires.
	assignments := []struct {
		id    *uint
		roles []string
		slot  string
	}{
		{input.BuyerID, []string{conveyancing.RoleBuyer}, "buyer"},
		{input.SellerID, []string{conveyancing.RoleSeller}, "seller"},
		{input.BuyerSolicitorID, []string{conveyancing.RoleSolicitor}, "buyer solicitor"},
		{input.SellerSolicitorID, []string{conveyancing.RoleSolicitor}, "seller solicitor"},
		{input.EstateAgentID, []string{conveyancing.RoleEstateAgent}, "estate agent"},
	}
	for _, assignment := range assignments {
		if assignment.id == nil {
			continue
		}
		var user models.User
		if err := storage.DB.First(&user, *assignment.id).Error; err != nil {
			utils.CreateError(iris.StatusBadRequest, "Validation Error", "Assigned "+assignment.slot+" does not exist.", ctx)
			return
		}
		validRole := false
		for _, role := range assignment.roles {
			if user.Role == role {
				validRole = true
			}
		}
		if !validRole {
			utils.CreateError(iris.StatusBadRequest, "Validation Error", "User "+user.Email+" does not have a valid role for the "+assignment.slot+" assignment.", ctx)
			return
		}
	}

	status := "available"
	if input.Status != "" {
		status = strings.ToLower(input.Status)
		switch status {
		case "available", "under_offer", "sold", "withdrawn":
		default:
			utils.CreateError(iris.StatusBadRequest, "Validation Error", "Invalid status. Must be one of: available, under_offer, sold, withdrawn.", ctx)
			return
		}
	}

	property := models.Property{
		Address:           input.Address,
		Postcode:          input.Postcode,
		Price:             input.Price,
		Status:            status,
		PropertyType:      input.PropertyType,
		Bedrooms:          input.Bedrooms,
		Bathrooms:         input.Bathrooms,
		Tenure:            input.Tenure,
		BuyerID:           input.BuyerID,
		SellerID:          input.SellerID,
		BuyerSolicitorID:  input.BuyerSolicitorID,
		SellerSolicitorID: input.SellerSolicitorID,
		EstateAgentID:     input.EstateAgentID,
	}

	if err := storage.DB.Create(&property).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	// Seed the fixed conveyancing sequence and placeholder stage info.
	stages := conveyancing.SeedStages(property.ID)
	if err := storage.DB.Create(&stages).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	stageInfo := services.NewStageInfoService()
	for _, stage := range stages {
		stageInfo.SeedPlaceholder(stage.Stage)
	}

	property.Stages = stages
	ctx.JSON(property)
}

// GetUserProperties lists properties where the caller holds any party role.
func GetUserProperties(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)

	var properties []models.Property
	query := storage.DB.Where(
		"buyer_id = ? OR seller_id = ? OR buyer_solicitor_id = ? OR seller_solicitor_id = ? OR estate_agent_id = ?",
		claims.ID, claims.ID, claims.ID, claims.ID, claims.ID,
	).Find(&properties)
	if query.Error != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(properties)
}

func GetProperty(ctx iris.Context) {
	property, _, ok := loadPropertyForParty(ctx)
	if !ok {
		return
	}
	ctx.JSON(property)
}

func UpdateProperty(ctx iris.Context) {
	property, _, ok := loadPropertyForParty(ctx)
	if !ok {
		return
	}

	var input UpdatePropertyInput
	err := ctx.ReadJSON(&input)
	if err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	if input.Address != nil {
		property.Address = *input.Address
	}
	if input.Status != nil {
		property.Status = strings.ToLower(*input.Status)
	}
	if input.PropertyType != nil {
		property.PropertyType = *input.PropertyType
	}
	if input.Bedrooms != nil {
		property.Bedrooms = *input.Bedrooms
	}
	if input.Bathrooms != nil {
		property.Bathrooms = *input.Bathrooms
	}
	if input.Price != nil {
		property.Price = *input.Price
	}
	if input.Tenure != nil {
		property.Tenure = *input.Tenure
	}
	if input.BuyerSolicitorID != nil {
		property.BuyerSolicitorID = input.BuyerSolicitorID
	}
	if input.SellerSolicitorID != nil {
		property.SellerSolicitorID = input.SellerSolicitorID
	}

	if err := storage.DB.Save(&property).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	ctx.JSON(property)
}

// DeleteProperty removes the property and all dependent rows. Only the
// assigned estate agent may do this.
func DeleteProperty(ctx iris.Context) {
	id := ctx.Params().Get("id")
	claims := jwt.Get(ctx).(*utils.AccessToken)

	var property models.Property
	if err := storage.DB.First(&property, id).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	if claims.Role != conveyancing.RoleEstateAgent || property.EstateAgentID == nil || *property.EstateAgentID != claims.ID {
		utils.CreateError(iris.StatusForbidden, "Forbidden", "Only the assigned estate agent can delete this property.", ctx)
		return
	}

	var documents []models.Document
	storage.DB.Where("property_id = ?", property.ID).Find(&documents)
	for _, document := range documents {
		storage.DeleteDocument(document.StorageURL)
	}

	storage.DB.Where("property_id = ?", property.ID).Delete(&models.PropertyStage{})
	storage.DB.Where("property_id = ?", property.ID).Delete(&models.Notification{})
	storage.DB.Where("property_id = ?", property.ID).Delete(&models.Message{})
	storage.DB.Where("property_id = ?", property.ID).Delete(&models.Document{})
	storage.DB.Delete(&property)

	utils.Audit(ctx, "property.delete", "property", property.ID, property, nil)
	ctx.JSON(iris.Map{"message": "Property and all associated data deleted successfully"})
}

// loadPropertyForParty fetches the {id} property and verifies the caller
// holds a party role on it. Access failures are reported as not found so the
// response does not leak which properties exist.
func loadPropertyForParty(ctx iris.Context) (models.Property, *utils.AccessToken, bool) {
	id := ctx.Params().Get("id")
	claims := jwt.Get(ctx).(*utils.AccessToken)

	var property models.Property
	if err := storage.DB.First(&property, id).Error; err != nil {
		utils.CreateError(iris.StatusNotFound, "Not Found", "Property not found or access denied.", ctx)
		return models.Property{}, claims, false
	}
	if !property.IsParty(claims.ID) {
		utils.CreateError(iris.StatusNotFound, "Not Found", "Property not found or access denied.", ctx)
		return models.Property{}, claims, false
	}
	return property, claims, true
}

type CreatePropertyInput struct {
	Address           string  `json:"address" validate:"required,max=512"`
	Postcode          string  `json:"postcode" validate:"required,max=16"`
	Price             float64 `json:"price" validate:"required"`
	Status            string  `json:"status"`
	PropertyType      string  `json:"propertyType"`
	Bedrooms          int     `json:"bedrooms"`
	Bathrooms         int     `json:"bathrooms"`
	Tenure            string  `json:"tenure"`
	BuyerID           *uint   `json:"buyerID" validate:"required"`
	SellerID          *uint   `json:"sellerID"`
	BuyerSolicitorID  *uint   `json:"buyerSolicitorID"`
	SellerSolicitorID *uint   `json:"sellerSolicitorID"`
	EstateAgentID     *uint   `json:"estateAgentID"`
}

type UpdatePropertyInput struct {
	Address           *string  `json:"address"`
	Status            *string  `json:"status"`
	PropertyType      *string  `json:"propertyType"`
	Bedrooms          *int     `json:"bedrooms"`
	Bathrooms         *int     `json:"bathrooms"`
	Price             *float64 `json:"price"`
	Tenure            *string  `json:"tenure"`
	BuyerSolicitorID  *uint    `json:"buyerSolicitorID"`
	SellerSolicitorID *uint    `json:"sellerSolicitorID"`
}
