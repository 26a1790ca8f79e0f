package routes

import (
	"time"

	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"conveyancing-server/conveyancing"
	"conveyancing-server/models"
	"conveyancing-server/services"
	"conveyancing-server/storage"
	"conveyancing-server/utils"
)

func GetPropertyStages(ctx iris.Context) {
	property, _, ok := loadPropertyForParty(ctx)
	if !ok {
		return
	}

	var stages []models.PropertyStage
	if err := storage.DB.Where("property_id = ?", property.ID).
		Order("stage_order").Find(&stages).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	ctx.JSON(stages)
}

// CreatePropertyStage inserts a custom stage into the timeline. Solicitors
// only, and never while the timeline is locked. An explicit order shifts
// every stage at or after that position down by one; without one the stage
// is appended at the end.
func CreatePropertyStage(ctx iris.Context) {
	var input CreateStageInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	id := ctx.Params().Get("id")
	claims := jwt.Get(ctx).(*utils.AccessToken)

	var created models.PropertyStage
	txErr := storage.DB.Transaction(func(tx *gorm.DB) error {
		property, err := lockPropertyForSolicitor(tx, id, claims)
		if err != nil {
			return err
		}
		if err := conveyancing.RequireUnlocked(property); err != nil {
			return err
		}

		var count int64
		if err := tx.Model(&models.PropertyStage{}).
			Where("property_id = ?", property.ID).Count(&count).Error; err != nil {
			return err
		}

		order := int(count)
		if input.Order != nil && *input.Order >= 0 && *input.Order < int(count) {
			order = *input.Order
			if err := tx.Model(&models.PropertyStage{}).
				Where("property_id = ? AND stage_order >= ?", property.ID, order).
				UpdateColumn("stage_order", gorm.Expr("stage_order + 1")).Error; err != nil {
				return err
			}
		}

		created = models.PropertyStage{
			PropertyID:      property.ID,
			Stage:           input.Stage,
			Description:     input.Description,
			Status:          models.StagePending,
			StageOrder:      order,
			ResponsibleRole: conveyancing.NormalizeResponsibleRole(input.ResponsibleRole),
			StartDate:       input.StartDate,
			DueDate:         input.DueDate,
		}
		if err := conveyancing.ValidateNewStage(created); err != nil {
			return err
		}
		return tx.Create(&created).Error
	})
	if txErr != nil {
		utils.HandleEngineError(txErr, ctx)
		return
	}

	services.NewStageInfoService().SeedPlaceholder(created.Stage)
	utils.Audit(ctx, "stage.create", "property_stage", created.ID, nil, created)
	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(created)
}

// UpdatePropertyStage patches a stage. Structural fields (name, description,
// dates, responsible role) require an unlocked timeline; status transitions
// stay allowed after locking so work can keep moving.
func UpdatePropertyStage(ctx iris.Context) {
	var input UpdateStageInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	id := ctx.Params().Get("id")
	stageID := ctx.Params().Get("stageID")
	claims := jwt.Get(ctx).(*utils.AccessToken)

	var stage models.PropertyStage
	var completedNow bool
	var property models.Property
	var advanced *models.PropertyStage
	txErr := storage.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		property, err = lockPropertyForParty(tx, id, claims)
		if err != nil {
			return err
		}
		if err := tx.Where("property_id = ?", property.ID).
			First(&stage, stageID).Error; err != nil {
			return conveyancing.NotFound("stage not found")
		}

		if input.structural() {
			if err := conveyancing.RequireUnlocked(property); err != nil {
				return err
			}
		}

		if input.Stage != nil {
			stage.Stage = *input.Stage
		}
		if input.Description != nil {
			stage.Description = *input.Description
		}
		if input.ResponsibleRole != nil {
			role := conveyancing.NormalizeResponsibleRole(*input.ResponsibleRole)
			if !conveyancing.ValidResponsibleRole(role) {
				return conveyancing.Validation("invalid responsible role %q", *input.ResponsibleRole)
			}
			stage.ResponsibleRole = role
		}
		if input.StartDate != nil {
			stage.StartDate = input.StartDate
		}
		if input.DueDate != nil {
			stage.DueDate = input.DueDate
		}
		if input.IsDraft != nil {
			stage.IsDraft = *input.IsDraft
		}

		if input.Status != nil {
			now := time.Now()
			switch *input.Status {
			case models.StageInProgress:
				if err := conveyancing.StartStage(&stage, now); err != nil {
					return err
				}
			case models.StageCompleted:
				if err := conveyancing.CompleteStage(&stage, now); err != nil {
					return err
				}
				completedNow = true
				var siblings []models.PropertyStage
				if err := tx.Where("property_id = ?", property.ID).
					Order("stage_order").Find(&siblings).Error; err != nil {
					return err
				}
				if next := conveyancing.AdvanceNext(siblings, stage, now); next != nil {
					if err := tx.Save(next).Error; err != nil {
						return err
					}
					started := *next
					advanced = &started
				}
			case models.StagePending:
				conveyancing.RevertStage(&stage)
			default:
				return conveyancing.Validation("invalid status %q", *input.Status)
			}
		}

		return tx.Save(&stage).Error
	})
	if txErr != nil {
		utils.HandleEngineError(txErr, ctx)
		return
	}

	if completedNow {
		notifications := services.NewNotificationService()
		var actor models.User
		if err := storage.DB.First(&actor, claims.ID).Error; err == nil {
			notifications.StageCompleted(property, stage, actor)
		}
		if advanced != nil {
			notifications.StageAdvanced(property, *advanced, claims.ID)
		}
	}
	utils.Audit(ctx, "stage.update", "property_stage", stage.ID, nil, stage)
	ctx.JSON(stage)
}

func DeletePropertyStage(ctx iris.Context) {
	id := ctx.Params().Get("id")
	stageID := ctx.Params().Get("stageID")
	claims := jwt.Get(ctx).(*utils.AccessToken)

	txErr := storage.DB.Transaction(func(tx *gorm.DB) error {
		property, err := lockPropertyForSolicitor(tx, id, claims)
		if err != nil {
			return err
		}
		if err := conveyancing.RequireUnlocked(property); err != nil {
			return err
		}

		var stage models.PropertyStage
		if err := tx.Where("property_id = ?", property.ID).
			First(&stage, stageID).Error; err != nil {
			return conveyancing.NotFound("stage not found")
		}
		if err := tx.Delete(&stage).Error; err != nil {
			return err
		}
		// Close the gap left in the ordering.
		return tx.Model(&models.PropertyStage{}).
			Where("property_id = ? AND stage_order > ?", property.ID, stage.StageOrder).
			UpdateColumn("stage_order", gorm.Expr("stage_order - 1")).Error
	})
	if txErr != nil {
		utils.HandleEngineError(txErr, ctx)
		return
	}

	ctx.JSON(iris.Map{"message": "Stage deleted successfully"})
}

// ReorderPropertyStages replaces the timeline ordering with the given
// sequence of stage IDs. The set must match the existing stages exactly.
func ReorderPropertyStages(ctx iris.Context) {
	var input ReorderStagesInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	id := ctx.Params().Get("id")
	claims := jwt.Get(ctx).(*utils.AccessToken)

	var stages []models.PropertyStage
	txErr := storage.DB.Transaction(func(tx *gorm.DB) error {
		property, err := lockPropertyForSolicitor(tx, id, claims)
		if err != nil {
			return err
		}
		if err := conveyancing.RequireUnlocked(property); err != nil {
			return err
		}

		if err := tx.Where("property_id = ?", property.ID).
			Order("stage_order").Find(&stages).Error; err != nil {
			return err
		}
		if err := conveyancing.ValidateReorder(stages, input.StageIDs); err != nil {
			return err
		}

		for position, stageID := range input.StageIDs {
			if err := tx.Model(&models.PropertyStage{}).
				Where("id = ?", stageID).
				UpdateColumn("stage_order", position).Error; err != nil {
				return err
			}
		}
		return tx.Where("property_id = ?", property.ID).
			Order("stage_order").Find(&stages).Error
	})
	if txErr != nil {
		utils.HandleEngineError(txErr, ctx)
		return
	}

	utils.Audit(ctx, "stage.reorder", "property", uintParam(ctx, "id"), nil, input.StageIDs)
	ctx.JSON(stages)
}

func StartPropertyStage(ctx iris.Context) {
	stageTransition(ctx, func(stage *models.PropertyStage, now time.Time) error {
		return conveyancing.StartStage(stage, now)
	}, "stage.start", false)
}

// CompletePropertyStage marks a stage completed and moves the next pending
// stage in order to in-progress. Status transitions are permitted even on a
// locked timeline.
func CompletePropertyStage(ctx iris.Context) {
	stageTransition(ctx, func(stage *models.PropertyStage, now time.Time) error {
		return conveyancing.CompleteStage(stage, now)
	}, "stage.complete", true)
}

func stageTransition(ctx iris.Context, transition func(*models.PropertyStage, time.Time) error, action string, notifyCompletion bool) {
	id := ctx.Params().Get("id")
	stageID := ctx.Params().Get("stageID")
	claims := jwt.Get(ctx).(*utils.AccessToken)

	var stage models.PropertyStage
	var property models.Property
	var advanced *models.PropertyStage
	txErr := storage.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		property, err = lockPropertyForParty(tx, id, claims)
		if err != nil {
			return err
		}
		if err := tx.Where("property_id = ?", property.ID).
			First(&stage, stageID).Error; err != nil {
			return conveyancing.NotFound("stage not found")
		}

		now := time.Now()
		if err := transition(&stage, now); err != nil {
			return err
		}
		if err := tx.Save(&stage).Error; err != nil {
			return err
		}

		if stage.Status == models.StageCompleted {
			var siblings []models.PropertyStage
			if err := tx.Where("property_id = ?", property.ID).
				Order("stage_order").Find(&siblings).Error; err != nil {
				return err
			}
			if next := conveyancing.AdvanceNext(siblings, stage, now); next != nil {
				if err := tx.Save(next).Error; err != nil {
					return err
				}
				started := *next
				advanced = &started
			}
		}
		return nil
	})
	if txErr != nil {
		utils.HandleEngineError(txErr, ctx)
		return
	}

	if notifyCompletion {
		notifications := services.NewNotificationService()
		var actor models.User
		if err := storage.DB.First(&actor, claims.ID).Error; err == nil {
			notifications.StageCompleted(property, stage, actor)
		}
		if advanced != nil {
			notifications.StageAdvanced(property, *advanced, claims.ID)
		}
	}
	utils.Audit(ctx, action, "property_stage", stage.ID, nil, stage)
	ctx.JSON(stage)
}

// ResetPropertyStages puts every stage back to pending, clears progress
// dates and releases the timeline lock and both approvals.
func ResetPropertyStages(ctx iris.Context) {
	id := ctx.Params().Get("id")
	claims := jwt.Get(ctx).(*utils.AccessToken)

	var stages []models.PropertyStage
	txErr := storage.DB.Transaction(func(tx *gorm.DB) error {
		property, err := lockPropertyForSolicitor(tx, id, claims)
		if err != nil {
			return err
		}

		if err := tx.Model(&models.PropertyStage{}).
			Where("property_id = ?", property.ID).
			Updates(map[string]interface{}{
				"status":          models.StagePending,
				"start_date":      nil,
				"completion_date": nil,
			}).Error; err != nil {
			return err
		}

		property.TimelineLocked = false
		property.TimelineApprovedByBuyerSolicitor = false
		property.TimelineApprovedBySellerSolicitor = false
		if err := tx.Save(&property).Error; err != nil {
			return err
		}

		return tx.Where("property_id = ?", property.ID).
			Order("stage_order").Find(&stages).Error
	})
	if txErr != nil {
		utils.HandleEngineError(txErr, ctx)
		return
	}

	utils.Audit(ctx, "stage.reset", "property", uintParam(ctx, "id"), nil, nil)
	ctx.JSON(stages)
}

// lockPropertyForParty loads the property under FOR UPDATE and checks the
// caller is a party on it.
func lockPropertyForParty(tx *gorm.DB, id string, claims *utils.AccessToken) (models.Property, error) {
	var property models.Property
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&property, id).Error; err != nil {
		return property, conveyancing.NotFound("property not found or access denied")
	}
	if !property.IsParty(claims.ID) {
		return property, conveyancing.NotFound("property not found or access denied")
	}
	return property, nil
}

// lockPropertyForSolicitor additionally requires the caller to be one of the
// two assigned solicitors.
func lockPropertyForSolicitor(tx *gorm.DB, id string, claims *utils.AccessToken) (models.Property, error) {
	property, err := lockPropertyForParty(tx, id, claims)
	if err != nil {
		return property, err
	}
	role := conveyancing.ResolvePropertyRole(claims.ID, claims.Role, property)
	if role != conveyancing.PropertyRoleBuyerSolicitor && role != conveyancing.PropertyRoleSellerSolicitor {
		return property, conveyancing.Forbidden("only an assigned solicitor can modify the timeline")
	}
	return property, nil
}

func uintParam(ctx iris.Context, name string) uint {
	value, _ := ctx.Params().GetUint(name)
	return uint(value)
}

type CreateStageInput struct {
	Stage           string     `json:"stage" validate:"required,max=256"`
	Description     string     `json:"description" validate:"required"`
	ResponsibleRole string     `json:"responsible_role" validate:"required"`
	StartDate       *time.Time `json:"start_date" validate:"required"`
	DueDate         *time.Time `json:"due_date" validate:"required"`
	Order           *int       `json:"order"`
}

type UpdateStageInput struct {
	Stage           *string    `json:"stage"`
	Description     *string    `json:"description"`
	Status          *string    `json:"status"`
	ResponsibleRole *string    `json:"responsible_role"`
	StartDate       *time.Time `json:"start_date"`
	DueDate         *time.Time `json:"due_date"`
	IsDraft         *bool      `json:"is_draft"`
}

// structural reports whether the patch touches stage definition fields, which
// require an unlocked timeline. Status transitions alone are not structural.
func (in UpdateStageInput) structural() bool {
	return in.Stage != nil || in.Description != nil ||
		in.ResponsibleRole != nil || in.StartDate != nil ||
		in.DueDate != nil || in.IsDraft != nil
}

type ReorderStagesInput struct {
	StageIDs []uint `json:"stage_ids" validate:"required,min=1"`
}
