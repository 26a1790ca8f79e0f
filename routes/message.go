package routes

import (
	"strconv"

	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
	"gorm.io/gorm"

	"conveyancing-server/conveyancing"
	"conveyancing-server/models"
	"conveyancing-server/services"
	"conveyancing-server/storage"
	"conveyancing-server/utils"
)

// SendBuyerSellerMessage creates a moderated message from the buyer or the
// seller to their counterpart. The original text is stored untouched next to
// an AI-filtered draft; neither is delivered until the estate agent approves
// one of them.
func SendBuyerSellerMessage(ctx iris.Context) {
	var input SendMessageInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	id := ctx.Params().Get("id")
	stageID, _ := ctx.Params().GetUint("stageID")
	claims := jwt.Get(ctx).(*utils.AccessToken)

	var property models.Property
	if err := storage.DB.First(&property, id).Error; err != nil {
		utils.CreateError(iris.StatusNotFound, "Not Found", "Property not found or access denied.", ctx)
		return
	}

	filtered := services.NewModerationService().Rephrase(input.Content)
	message, err := conveyancing.NewBuyerSellerMessage(property, uint(stageID), claims.ID, input.Content, filtered)
	if err != nil {
		utils.HandleEngineError(err, ctx)
		return
	}

	if err := storage.DB.Create(&message).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	if property.EstateAgentID != nil {
		services.NewNotificationService().Notify(*property.EstateAgentID, &property.ID,
			"A new message is awaiting your moderation.", "message")
	}

	view, _ := conveyancing.ProjectMessage(message, property, claims.ID)
	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(view)
}

// GetPropertyMessages returns the property's messages projected for the
// caller: moderation state and withheld content are filtered server side.
func GetPropertyMessages(ctx iris.Context) {
	property, claims, ok := loadPropertyForParty(ctx)
	if !ok {
		return
	}

	var messages []models.Message
	if err := storage.DB.Where("property_id = ?", property.ID).
		Order("created_at").Find(&messages).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	views := []conveyancing.MessageView{}
	for _, message := range messages {
		if view, visible := conveyancing.ProjectMessage(message, property, claims.ID); visible {
			views = append(views, view)
		}
	}
	ctx.JSON(views)
}

// GetPendingMessages lists messages awaiting moderation on properties the
// calling estate agent manages.
func GetPendingMessages(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)

	var messages []models.Message
	err := storage.DB.
		Joins("JOIN properties ON properties.id = messages.property_id").
		Where("messages.status = ? AND properties.estate_agent_id = ?", models.MessagePending, claims.ID).
		Order("messages.created_at").
		Find(&messages).Error
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(messages)
}

// GetPropertyPendingMessages lists this property's moderation queue for its
// assigned estate agent.
func GetPropertyPendingMessages(ctx iris.Context) {
	property, claims, ok := loadPropertyForParty(ctx)
	if !ok {
		return
	}
	if property.EstateAgentID == nil || *property.EstateAgentID != claims.ID {
		utils.CreateForbidden(ctx)
		return
	}

	var messages []models.Message
	if err := storage.DB.
		Where("property_id = ? AND status = ?", property.ID, models.MessagePending).
		Order("created_at").Find(&messages).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	ctx.JSON(messages)
}

// ApproveMessage delivers a pending message. The agent picks which version
// goes out; the chosen text is copied verbatim into the delivered content.
func ApproveMessage(ctx iris.Context) {
	var input ApproveMessageInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	messageID := ctx.Params().Get("messageID")
	claims := jwt.Get(ctx).(*utils.AccessToken)

	var message models.Message
	txErr := storage.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&message, messageID).Error; err != nil {
			return conveyancing.NotFound("message not found")
		}
		if pathPropertyID := ctx.Params().Get("id"); pathPropertyID != "" && pathPropertyID != intToParam(message.PropertyID) {
			return conveyancing.NotFound("message not found")
		}
		property, err := lockPropertyForParty(tx, intToParam(message.PropertyID), claims)
		if err != nil {
			return err
		}
		if err := conveyancing.ApproveMessage(&message, conveyancing.MessageVersion(input.Version), property, claims.ID); err != nil {
			return err
		}
		return tx.Save(&message).Error
	})
	if txErr != nil {
		utils.HandleEngineError(txErr, ctx)
		return
	}

	services.NewNotificationService().MessageModerated(message)
	utils.Audit(ctx, "message.approve", "message", message.ID, nil, iris.Map{"version": input.Version})
	ctx.JSON(message)
}

// RejectMessage drops a pending message. Nothing is delivered and the sender
// is not notified of the rejection.
func RejectMessage(ctx iris.Context) {
	messageID := ctx.Params().Get("messageID")
	claims := jwt.Get(ctx).(*utils.AccessToken)

	var message models.Message
	txErr := storage.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&message, messageID).Error; err != nil {
			return conveyancing.NotFound("message not found")
		}
		property, err := lockPropertyForParty(tx, intToParam(message.PropertyID), claims)
		if err != nil {
			return err
		}
		if err := conveyancing.RejectMessage(&message, property, claims.ID); err != nil {
			return err
		}
		return tx.Save(&message).Error
	})
	if txErr != nil {
		utils.HandleEngineError(txErr, ctx)
		return
	}

	utils.Audit(ctx, "message.reject", "message", message.ID, nil, nil)
	ctx.JSON(iris.Map{"message": "Message rejected"})
}

// SendDirectMessage delivers an unmoderated message between any permitted
// pair other than buyer and seller. The sender is always the authenticated
// user regardless of any id in the body.
func SendDirectMessage(ctx iris.Context) {
	var input SendDirectMessageInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	claims := jwt.Get(ctx).(*utils.AccessToken)
	if input.SenderID != 0 && input.SenderID != claims.ID {
		utils.CreateError(iris.StatusForbidden, "Forbidden", "Sender does not match the authenticated user.", ctx)
		return
	}

	var property models.Property
	if err := storage.DB.First(&property, input.PropertyID).Error; err != nil {
		utils.CreateError(iris.StatusNotFound, "Not Found", "Property not found or access denied.", ctx)
		return
	}

	var sender, recipient models.User
	if err := storage.DB.First(&sender, claims.ID).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	if err := storage.DB.First(&recipient, input.RecipientID).Error; err != nil {
		utils.CreateError(iris.StatusBadRequest, "Validation Error", "Recipient does not exist.", ctx)
		return
	}

	message, err := conveyancing.NewDirectMessage(property, input.StageID, sender, recipient, input.Content)
	if err != nil {
		utils.HandleEngineError(err, ctx)
		return
	}
	if err := storage.DB.Create(&message).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	services.NewNotificationService().Notify(recipient.ID, &property.ID,
		"You have a new message from "+sender.FirstName+" "+sender.LastName+".", "message")

	view, _ := conveyancing.ProjectMessage(message, property, claims.ID)
	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(view)
}

// GetMessageRecipients lists the users the caller may message on a property,
// per the contact policy.
func GetMessageRecipients(ctx iris.Context) {
	property, claims, ok := loadPropertyForParty(ctx)
	if !ok {
		return
	}

	partyIDs := []uint{}
	for _, id := range []*uint{property.BuyerID, property.SellerID, property.BuyerSolicitorID, property.SellerSolicitorID, property.EstateAgentID} {
		if id != nil {
			partyIDs = append(partyIDs, *id)
		}
	}

	var candidates []models.User
	if err := storage.DB.Where("id IN ?", partyIDs).Find(&candidates).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(conveyancing.AllowedRecipients(claims.ID, claims.Role, property, candidates))
}

func intToParam(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

type SendMessageInput struct {
	Content string `json:"content" validate:"required,max=4096"`
}

type ApproveMessageInput struct {
	Version string `json:"version" validate:"required,oneof=original filtered"`
}

type SendDirectMessageInput struct {
	PropertyID  uint   `json:"property_id" validate:"required"`
	StageID     uint   `json:"stage_id"`
	SenderID    uint   `json:"sender_id"`
	RecipientID uint   `json:"recipient_id" validate:"required"`
	Content     string `json:"content" validate:"required,max=4096"`
}
