package routes

import (
	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
	"gorm.io/gorm"

	"conveyancing-server/conveyancing"
	"conveyancing-server/models"
	"conveyancing-server/services"
	"conveyancing-server/storage"
	"conveyancing-server/utils"
)

// ApproveTimeline records a solicitor's sign-off on the timeline. When both
// solicitors have approved, the lock flag is set in the same transaction so
// the two flags can never disagree across concurrent approvals.
func ApproveTimeline(ctx iris.Context) {
	var input ApproveTimelineInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}
	if !input.Approved {
		utils.CreateError(iris.StatusBadRequest, "Validation Error", "Approval must be affirmative; use the unlock endpoint to withdraw.", ctx)
		return
	}

	id := ctx.Params().Get("id")
	claims := jwt.Get(ctx).(*utils.AccessToken)

	var property models.Property
	txErr := storage.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		property, err = lockPropertyForParty(tx, id, claims)
		if err != nil {
			return err
		}
		if err := conveyancing.ApproveTimeline(&property, claims.ID); err != nil {
			return err
		}
		return tx.Save(&property).Error
	})
	if txErr != nil {
		utils.HandleEngineError(txErr, ctx)
		return
	}

	if other := conveyancing.OtherSolicitorID(property, claims.ID); other != nil {
		message := "The other party's solicitor has approved the timeline."
		if input.Comment != "" {
			message += " Comment: " + input.Comment
		}
		services.NewNotificationService().Notify(*other, &property.ID, message, "timeline_approval")
	}

	utils.Audit(ctx, "timeline.approve", "property", property.ID, nil, iris.Map{
		"locked": property.TimelineLocked,
	})
	ctx.JSON(property)
}

// UnlockTimeline releases the lock and clears both approvals so the
// solicitors can renegotiate the stage plan.
func UnlockTimeline(ctx iris.Context) {
	id := ctx.Params().Get("id")
	claims := jwt.Get(ctx).(*utils.AccessToken)

	var property models.Property
	txErr := storage.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		property, err = lockPropertyForParty(tx, id, claims)
		if err != nil {
			return err
		}
		if err := conveyancing.UnlockTimeline(&property, claims.ID); err != nil {
			return err
		}
		return tx.Save(&property).Error
	})
	if txErr != nil {
		utils.HandleEngineError(txErr, ctx)
		return
	}

	if other := conveyancing.OtherSolicitorID(property, claims.ID); other != nil {
		services.NewNotificationService().Notify(*other, &property.ID,
			"The timeline has been unlocked for further changes.", "timeline_approval")
	}

	utils.Audit(ctx, "timeline.unlock", "property", property.ID, nil, nil)
	ctx.JSON(property)
}

type ApproveTimelineInput struct {
	Approved bool   `json:"approved"`
	Comment  string `json:"comment" validate:"max=1024"`
}
