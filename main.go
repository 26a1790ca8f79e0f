package main

import (
	"conveyancing-server/routes"
	"conveyancing-server/storage"
	"conveyancing-server/utils"
	"fmt"
	"log"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
)

func main() {
	// Only load .env in development
	if os.Getenv("RENDER") == "" {
		godotenv.Load()
	}

	// Initialize services
	storage.InitializeDB()
	storage.InitializeDocumentStore()
	storage.InitializeRedis()

	app := iris.New()
	app.Validator = validator.New()

	// CORS configuration
	app.AllowMethods(iris.MethodOptions)
	app.UseRouter(func(ctx iris.Context) {
		ctx.Header("Access-Control-Allow-Origin", ctx.GetHeader("Origin"))
		ctx.Header("Vary", "Origin")
		ctx.Header("Access-Control-Allow-Credentials", "true")
		ctx.Header("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Requested-With")
		ctx.Header("Access-Control-Allow-Methods", "GET,POST,PATCH,PUT,DELETE,OPTIONS")
		if ctx.Method() == iris.MethodOptions {
			ctx.StatusCode(iris.StatusNoContent)
			return
		}
		ctx.Next()
	})

	// Minimal middleware - compression only
	app.Use(iris.Compression)

	// JWT Verifiers
	accessTokenVerifier := jwt.NewVerifier(jwt.HS256, []byte(os.Getenv("ACCESS_TOKEN_SECRET")))
	accessTokenVerifier.WithDefaultBlocklist()
	accessTokenVerifierMiddleware := accessTokenVerifier.Verify(func() interface{} {
		return new(utils.AccessToken)
	})

	refreshTokenVerifier := jwt.NewVerifier(jwt.HS256, []byte(os.Getenv("REFRESH_TOKEN_SECRET")))
	refreshTokenVerifier.WithDefaultBlocklist()
	refreshTokenVerifierMiddleware := refreshTokenVerifier.Verify(func() interface{} {
		return new(jwt.Claims)
	})

	refreshTokenVerifier.Extractors = append(refreshTokenVerifier.Extractors, func(ctx iris.Context) string {
		var tokenInput utils.RefreshTokenInput
		err := ctx.ReadJSON(&tokenInput)
		if err != nil {
			return ""
		}
		return tokenInput.RefreshToken
	})

	app.Get("/health", func(ctx iris.Context) {
		ctx.JSON(iris.Map{"status": "ok"})
	})

	user := app.Party("/api/user")
	{
		user.Post("/register", routes.Register)
		user.Post("/login", routes.Login)
		user.Get("/", accessTokenVerifierMiddleware, routes.GetUsers)
		user.Patch("/{id}/pushtoken", accessTokenVerifierMiddleware, utils.UserIDMiddleware, routes.AlterPushToken)
		user.Patch("/{id}/settings/notifications", accessTokenVerifierMiddleware, utils.UserIDMiddleware, routes.AllowsNotifications)
		user.Get("/{id}", accessTokenVerifierMiddleware, utils.UserIDFromTokenMiddleware, routes.GetUser)
	}

	properties := app.Party("/api/properties", accessTokenVerifierMiddleware)
	{
		properties.Post("/", utils.EstateAgentOnlyMiddleware, routes.CreateProperty)
		properties.Get("/", routes.GetUserProperties)
		properties.Get("/{id}", routes.GetProperty)
		properties.Patch("/{id}", routes.UpdateProperty)
		properties.Delete("/{id}", utils.EstateAgentOnlyMiddleware, routes.DeleteProperty)

		// Timeline stages
		properties.Get("/{id}/stages", routes.GetPropertyStages)
		properties.Post("/{id}/stages", utils.SolicitorOnlyMiddleware, routes.CreatePropertyStage)
		properties.Patch("/{id}/stages/reorder", utils.SolicitorOnlyMiddleware, routes.ReorderPropertyStages)
		properties.Post("/{id}/reset-stages", utils.SolicitorOnlyMiddleware, routes.ResetPropertyStages)
		properties.Patch("/{id}/stages/{stageID}", routes.UpdatePropertyStage)
		properties.Delete("/{id}/stages/{stageID}", utils.SolicitorOnlyMiddleware, routes.DeletePropertyStage)
		properties.Post("/{id}/stages/{stageID}/start", routes.StartPropertyStage)
		properties.Post("/{id}/stages/{stageID}/complete", routes.CompletePropertyStage)

		// Timeline approval
		properties.Post("/{id}/timeline-approval", utils.SolicitorOnlyMiddleware, routes.ApproveTimeline)
		properties.Post("/{id}/unlock-timeline", utils.SolicitorOnlyMiddleware, routes.UnlockTimeline)

		// Moderated messaging
		properties.Post("/{id}/stages/{stageID}/messages", routes.SendBuyerSellerMessage)
		properties.Get("/{id}/messages", routes.GetPropertyMessages)
		properties.Post("/{id}/messages/{messageID}/approve", utils.EstateAgentOnlyMiddleware, routes.ApproveMessage)
		properties.Get("/{id}/pending-messages", utils.EstateAgentOnlyMiddleware, routes.GetPropertyPendingMessages)
		properties.Get("/{id}/message-recipients", routes.GetMessageRecipients)

		// Notifications
		properties.Get("/{id}/notifications", routes.GetPropertyNotifications)
		properties.Get("/{id}/notifications/all", routes.GetAllPropertyNotifications)

		// Documents
		properties.Post("/{id}/documents", routes.UploadDocument)
		properties.Get("/{id}/documents", routes.GetPropertyDocuments)
	}

	messages := app.Party("/api/messages", accessTokenVerifierMiddleware)
	{
		messages.Get("/pending", utils.EstateAgentOnlyMiddleware, routes.GetPendingMessages)
		messages.Post("/reject/{messageID}", utils.EstateAgentOnlyMiddleware, routes.RejectMessage)
		messages.Post("/send", routes.SendDirectMessage)
	}

	notifications := app.Party("/api/notifications", accessTokenVerifierMiddleware)
	{
		notifications.Patch("/{notificationID}/read", routes.MarkNotificationRead)
	}

	stageInfo := app.Party("/api/stage-info", accessTokenVerifierMiddleware)
	{
		stageInfo.Get("/", routes.GetStageInfo)
	}

	app.Post("/api/refresh", refreshTokenVerifierMiddleware, utils.RefreshToken)

	// Get port from environment
	port := os.Getenv("PORT")
	if port == "" {
		port = "4000"
	}
	addr := "0.0.0.0:" + port

	fmt.Printf("🚀 Server starting on %s\n", addr)

	if err := app.Listen(addr); err != nil {
		log.Fatalf("❌ Server failed: %v", err)
	}
}
