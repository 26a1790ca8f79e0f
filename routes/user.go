package routes

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/kataras/iris/v12"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/exp/slices"
	"gorm.io/gorm"

	"conveyancing-server/models"
	"conveyancing-server/storage"
	"conveyancing-server/utils"
)

func Register(ctx iris.Context) {
	var userInput RegisterUserInput
	err := ctx.ReadJSON(&userInput)
	if err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var newUser models.User
	userExists, userExistsErr := getAndHandleUserExists(&newUser, userInput.Email)
	if userExistsErr != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	if userExists {
		utils.CreateEmailAlreadyRegistered(ctx)
		return
	}

	hashedPassword, hashErr := hashAndSaltPassword(userInput.Password)
	if hashErr != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	newUser = models.User{
		FirstName:   userInput.FirstName,
		LastName:    userInput.LastName,
		Email:       strings.ToLower(userInput.Email),
		Password:    hashedPassword,
		PhoneNumber: userInput.PhoneNumber,
		Role:        strings.ToLower(userInput.Role),
	}

	storage.DB.Create(&newUser)

	returnUser(newUser, ctx)
}

func Login(ctx iris.Context) {
	var userInput LoginUserInput
	err := ctx.ReadJSON(&userInput)
	if err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var existingUser models.User
	errorMsg := "Invalid email or password."
	userExists, userExistsErr := getAndHandleUserExists(&existingUser, userInput.Email)
	if userExistsErr != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	if !userExists {
		utils.CreateError(iris.StatusUnauthorized, "Credentials Error", errorMsg, ctx)
		return
	}

	passwordErr := bcrypt.CompareHashAndPassword([]byte(existingUser.Password), []byte(userInput.Password))
	if passwordErr != nil {
		utils.CreateError(iris.StatusUnauthorized, "Credentials Error", errorMsg, ctx)
		return
	}

	returnUser(existingUser, ctx)
}

func GetUser(ctx iris.Context) {
	params := ctx.Params()
	id := params.Get("id")

	var user models.User
	userExists, err := getUserByID(&user, id)
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	if !userExists {
		utils.CreateNotFound(ctx)
		return
	}

	ctx.JSON(iris.Map{
		"ID":        user.ID,
		"firstName": user.FirstName,
		"lastName":  user.LastName,
		"email":     user.Email,
		"role":      user.Role,
	})
}

// GetUsers lists users, optionally filtered by role, paginated. Clients use
// this to build recipient lists, which they then narrow with the access
// policy.
func GetUsers(ctx iris.Context) {
	role := strings.ToLower(ctx.URLParamDefault("role", ""))
	page := ctx.URLParamIntDefault("page", 1)
	if page < 1 {
		page = 1
	}
	perPage := ctx.URLParamIntDefault("per_page", 50)
	if perPage < 1 || perPage > 200 {
		perPage = 50
	}

	query := storage.DB.Model(&models.User{})
	if role != "" {
		query = query.Where("role = ?", role)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	var users []models.User
	if err := query.Offset((page - 1) * perPage).Limit(perPage).
		Order("id").Find(&users).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	result := make([]iris.Map, 0, len(users))
	for _, user := range users {
		result = append(result, iris.Map{
			"ID":        user.ID,
			"firstName": user.FirstName,
			"lastName":  user.LastName,
			"email":     user.Email,
			"role":      user.Role,
		})
	}
	utils.JSONPage(ctx, result, page, perPage, total)
}

// AlterPushToken adds or removes an Expo push token on the user record.
func AlterPushToken(ctx iris.Context) {
	id := ctx.Params().Get("id")

	var user models.User
	exists, err := getUserByID(&user, id)
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	if !exists {
		utils.CreateNotFound(ctx)
		return
	}

	var req AlterPushTokenInput
	if err := ctx.ReadJSON(&req); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var tokens []string
	if user.PushTokens != nil {
		if err := json.Unmarshal(user.PushTokens, &tokens); err != nil {
			utils.CreateInternalServerError(ctx)
			return
		}
	}

	switch req.Op {
	case "add":
		if !slices.Contains(tokens, req.Token) {
			tokens = append(tokens, req.Token)
		}
	case "remove":
		kept := tokens[:0]
		for _, token := range tokens {
			if token != req.Token {
				kept = append(kept, token)
			}
		}
		tokens = kept
	}

	marshalled, marshalErr := json.Marshal(tokens)
	if marshalErr != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	user.PushTokens = marshalled

	if err := storage.DB.Save(&user).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	ctx.JSON(iris.Map{"pushTokens": tokens})
}

// AllowsNotifications toggles push delivery for the user. Disabling clears
// the stored push tokens so a re-enable starts from a clean slate.
func AllowsNotifications(ctx iris.Context) {
	id := ctx.Params().Get("id")

	var user models.User
	exists, err := getUserByID(&user, id)
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	if !exists {
		utils.CreateNotFound(ctx)
		return
	}

	var req AllowsNotificationsInput
	if err := ctx.ReadJSON(&req); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	user.AllowsNotifications = req.AllowsNotifications
	if req.AllowsNotifications != nil && !*req.AllowsNotifications {
		user.PushTokens = nil
	}

	if err := storage.DB.Save(&user).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	ctx.JSON(iris.Map{"allowsNotifications": req.AllowsNotifications})
}

func getAndHandleUserExists(user *models.User, email string) (exists bool, err error) {
	userExistsQuery := storage.DB.Where("email = ?", strings.ToLower(email)).Limit(1).Find(&user)

	if userExistsQuery.Error != nil {
		return false, userExistsQuery.Error
	}

	exists = userExistsQuery.RowsAffected > 0

	return exists, nil
}

func getUserByID(user *models.User, id string) (exists bool, err error) {
	query := storage.DB.First(&user, id)
	if query.Error != nil {
		if errors.Is(query.Error, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, query.Error
	}
	return true, nil
}

func hashAndSaltPassword(password string) (hashedPassword string, err error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

func returnUser(user models.User, ctx iris.Context) {
	tokenPair, tokenErr := utils.CreateTokenPair(user.ID)
	if tokenErr != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{
		"ID":           user.ID,
		"firstName":    user.FirstName,
		"lastName":     user.LastName,
		"email":        user.Email,
		"role":         user.Role,
		"accessToken":  string(tokenPair.AccessToken),
		"refreshToken": string(tokenPair.RefreshToken),
	})
}

type RegisterUserInput struct {
	FirstName   string `json:"firstName" validate:"required,max=256"`
	LastName    string `json:"lastName" validate:"required,max=256"`
	Email       string `json:"email" validate:"required,max=256,email"`
	Password    string `json:"password" validate:"required,min=8,max=256"`
	PhoneNumber string `json:"phoneNumber" validate:"required,max=32"`
	Role        string `json:"role" validate:"required,oneof=buyer seller solicitor estate_agent"`
}

type LoginUserInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AlterPushTokenInput struct {
	Token string `json:"token" validate:"required"`
	Op    string `json:"op" validate:"required,oneof=add remove"`
}

type AllowsNotificationsInput struct {
	AllowsNotifications *bool `json:"allowsNotifications" validate:"required"`
}
