package routes

import (
	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"

	"conveyancing-server/models"
	"conveyancing-server/storage"
	"conveyancing-server/utils"
)

// GetPropertyNotifications returns the caller's unread notifications for a
// property.
func GetPropertyNotifications(ctx iris.Context) {
	property, claims, ok := loadPropertyForParty(ctx)
	if !ok {
		return
	}

	var notifications []models.Notification
	if err := storage.DB.
		Where("property_id = ? AND user_id = ? AND read = ?", property.ID, claims.ID, false).
		Order("created_at DESC").Find(&notifications).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	ctx.JSON(notifications)
}

// GetAllPropertyNotifications returns the caller's full notification history
// for a property, read and unread.
func GetAllPropertyNotifications(ctx iris.Context) {
	property, claims, ok := loadPropertyForParty(ctx)
	if !ok {
		return
	}

	var notifications []models.Notification
	if err := storage.DB.
		Where("property_id = ? AND user_id = ?", property.ID, claims.ID).
		Order("created_at DESC").Find(&notifications).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	ctx.JSON(notifications)
}

func MarkNotificationRead(ctx iris.Context) {
	notificationID := ctx.Params().Get("notificationID")
	claims := jwt.Get(ctx).(*utils.AccessToken)

	var notification models.Notification
	if err := storage.DB.First(&notification, notificationID).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}
	if notification.UserID != claims.ID {
		utils.CreateForbidden(ctx)
		return
	}

	notification.Read = true
	if err := storage.DB.Save(&notification).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	ctx.JSON(notification)
}
