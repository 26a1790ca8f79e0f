package utils

import (
	"strconv"

	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"

	"conveyancing-server/conveyancing"
)

// UserIDMiddleware rejects requests where the {id} path parameter does not
// match the token identity.
func UserIDMiddleware(ctx iris.Context) {
	params := ctx.Params()
	id := params.Get("id")

	claims := jwt.Get(ctx).(*AccessToken)
	userID := strconv.FormatUint(uint64(claims.ID), 10)

	if userID != id {
		ctx.StatusCode(iris.StatusForbidden)
		return
	}
	ctx.Next()
}

// UserIDFromTokenMiddleware stores the token identity in the request values
// for routes without an {id} parameter.
func UserIDFromTokenMiddleware(ctx iris.Context) {
	claims := jwt.Get(ctx).(*AccessToken)
	ctx.Values().Set("userID", claims.ID)
	ctx.Next()
}

// EstateAgentOnlyMiddleware ensures the requester holds the estate agent
// role. Per-property assignment is checked by the handlers.
func EstateAgentOnlyMiddleware(ctx iris.Context) {
	claims := jwt.Get(ctx).(*AccessToken)
	if claims.Role != conveyancing.RoleEstateAgent {
		JSONError(ctx, iris.StatusForbidden, "forbidden", "estate agent access required")
		return
	}
	ctx.Values().Set("userID", claims.ID)
	ctx.Next()
}

// SolicitorOnlyMiddleware ensures the requester holds the solicitor role.
func SolicitorOnlyMiddleware(ctx iris.Context) {
	claims := jwt.Get(ctx).(*AccessToken)
	if claims.Role != conveyancing.RoleSolicitor {
		JSONError(ctx, iris.StatusForbidden, "forbidden", "solicitor access required")
		return
	}
	ctx.Values().Set("userID", claims.ID)
	ctx.Next()
}
