package utils

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/kataras/iris/v12"

	"conveyancing-server/conveyancing"
)

func CreateError(statusCode int, title string, detail string, ctx iris.Context) {
	ctx.StopWithProblem(statusCode, iris.NewProblem().Title(title).Detail(detail))
}

func CreateInternalServerError(ctx iris.Context) {
	CreateError(iris.StatusInternalServerError, "Internal Server Error", "An unexpected error occurred.", ctx)
}

func CreateNotFound(ctx iris.Context) {
	CreateError(iris.StatusNotFound, "Not Found", "Resource not found.", ctx)
}

func CreateForbidden(ctx iris.Context) {
	CreateError(iris.StatusForbidden, "Forbidden", "You are not allowed to perform this action.", ctx)
}

func CreateEmailAlreadyRegistered(ctx iris.Context) {
	CreateError(iris.StatusConflict, "Conflict", "Email already registered.", ctx)
}

type validationError struct {
	ActualTag string `json:"tag"`
	Namespace string `json:"namespace"`
	Kind      string `json:"kind"`
	Type      string `json:"type"`
	Value     string `json:"value"`
	Param     string `json:"param"`
}

func wrapValidationErrors(errs validator.ValidationErrors) []validationError {
	validationErrors := make([]validationError, 0, len(errs))
	for _, validationErr := range errs {
		validationErrors = append(validationErrors, validationError{
			ActualTag: validationErr.ActualTag(),
			Namespace: validationErr.Namespace(),
			Kind:      validationErr.Kind().String(),
			Type:      validationErr.Type().String(),
			Value:     fmt.Sprintf("%v", validationErr.Value()),
			Param:     validationErr.Param(),
		})
	}
	return validationErrors
}

func HandleValidationErrors(err error, ctx iris.Context) {
	if errs, ok := err.(validator.ValidationErrors); ok {
		validationErrors := wrapValidationErrors(errs)
		ctx.StopWithProblem(
			iris.StatusBadRequest,
			iris.NewProblem().Title("Validation error").Detail("One or more fields failed validation.").Key("errors", validationErrors),
		)
		return
	}
	CreateError(iris.StatusBadRequest, "Bad Request", "Malformed request payload.", ctx)
}

// engineErrorStatus maps each workflow error kind to its HTTP status.
var engineErrorStatus = map[conveyancing.ErrorKind]int{
	conveyancing.KindValidation:        iris.StatusBadRequest,
	conveyancing.KindNotFound:          iris.StatusNotFound,
	conveyancing.KindForbidden:         iris.StatusForbidden,
	conveyancing.KindInvalidTransition: iris.StatusConflict,
	conveyancing.KindTimelineLocked:    iris.StatusConflict,
	conveyancing.KindAlreadyLocked:     iris.StatusConflict,
	conveyancing.KindAlreadyApproved:   iris.StatusConflict,
	conveyancing.KindConflict:          iris.StatusConflict,
}

// HandleEngineError renders a workflow engine error as a problem response
// carrying the machine-readable kind alongside the human message.
func HandleEngineError(err error, ctx iris.Context) {
	kind := conveyancing.KindOf(err)
	status, ok := engineErrorStatus[kind]
	if !ok {
		CreateInternalServerError(ctx)
		return
	}
	ctx.StopWithProblem(status, iris.NewProblem().
		Title(string(kind)).
		Detail(err.Error()).
		Key("kind", string(kind)))
}
