package utils

import (
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
)

func TestWrapValidationErrorsNonStringFields(t *testing.T) {
	type offerInput struct {
		Amount      float64    `validate:"required,gt=0"`
		RecipientID uint       `validate:"required"`
		MovedIn     *time.Time `validate:"required"`
		Body        string     `validate:"required,max=4"`
	}

	err := validator.New().Struct(offerInput{Amount: -5, Body: "too long"})
	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		t.Fatalf("expected validation errors, got %v", err)
	}

	wrapped := wrapValidationErrors(errs)
	if len(wrapped) != len(errs) {
		t.Fatalf("wrapped %d errors, want %d", len(wrapped), len(errs))
	}

	byField := make(map[string]validationError, len(wrapped))
	for _, w := range wrapped {
		byField[w.Namespace] = w
	}
	if got := byField["offerInput.Amount"].Value; got != "-5" {
		t.Errorf("Amount value = %q, want -5", got)
	}
	if got := byField["offerInput.RecipientID"].Value; got != "0" {
		t.Errorf("RecipientID value = %q, want 0", got)
	}
	if got := byField["offerInput.Body"].Value; got != "too long" {
		t.Errorf("Body value = %q, want the original string", got)
	}
	if byField["offerInput.MovedIn"].ActualTag != "required" {
		t.Errorf("MovedIn tag = %q, want required", byField["offerInput.MovedIn"].ActualTag)
	}
}
