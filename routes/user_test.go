package routes

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/kataras/iris/v12"
)

func buildUserTestApp() *iris.Application {
	app := iris.New()
	app.Validator = validator.New()
	app.Post("/api/user/register", Register)
	return app
}

func TestRegisterRejectsInvalidPayload(t *testing.T) {
	app := buildUserTestApp()
	if err := app.Build(); err != nil {
		t.Fatalf("building app: %v", err)
	}

	cases := []struct {
		name string
		body string
	}{
		{"empty payload", `{}`},
		{"bad email", `{"firstName":"A","lastName":"B","email":"not-an-email","password":"longenough","phoneNumber":"07700","role":"buyer"}`},
		{"unknown role", `{"firstName":"A","lastName":"B","email":"a@b.co","password":"longenough","phoneNumber":"07700","role":"barrister"}`},
		{"short password", `{"firstName":"A","lastName":"B","email":"a@b.co","password":"short","phoneNumber":"07700","role":"buyer"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/user/register", strings.NewReader(tc.body))
			req.Header.Set("Content-Type", "application/json")
			resp := httptest.NewRecorder()
			app.ServeHTTP(resp, req)
			if resp.Code != http.StatusBadRequest {
				t.Fatalf("got %d, want %d: %s", resp.Code, http.StatusBadRequest, resp.Body.String())
			}
		})
	}
}
