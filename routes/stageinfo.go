package routes

import (
	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"

	"conveyancing-server/conveyancing"
	"conveyancing-server/services"
	"conveyancing-server/utils"
)

// GetStageInfo returns a plain-English explanation of a conveyancing stage
// for the caller's side of the transaction. Only buyers and sellers get
// these; professionals are expected to know their own process.
func GetStageInfo(ctx iris.Context) {
	stage := ctx.URLParam("stage")
	if stage == "" {
		utils.CreateError(iris.StatusBadRequest, "Validation Error", "A stage name is required.", ctx)
		return
	}

	claims := jwt.Get(ctx).(*utils.AccessToken)
	if claims.Role != conveyancing.RoleBuyer && claims.Role != conveyancing.RoleSeller {
		utils.CreateError(iris.StatusForbidden, "Forbidden", "Stage explanations are only available to buyers and sellers.", ctx)
		return
	}

	explanation, err := services.NewStageInfoService().Explain(ctx.Request().Context(), stage, claims.Role)
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{
		"stage":       stage,
		"role":        claims.Role,
		"explanation": explanation,
	})
}
