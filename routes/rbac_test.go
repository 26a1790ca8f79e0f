package routes

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"

	"conveyancing-server/utils"
)

// buildTestApp mounts the role-gated route groups with the real middlewares
// and stub handlers, so the RBAC layer can be exercised without a database.
func buildTestApp() *iris.Application {
	os.Setenv("ACCESS_TOKEN_SECRET", "testsecret")
	app := iris.New()

	accessTokenVerifier := jwt.NewVerifier(jwt.HS256, []byte(os.Getenv("ACCESS_TOKEN_SECRET")))
	accessTokenVerifierMiddleware := accessTokenVerifier.Verify(func() interface{} {
		return new(utils.AccessToken)
	})

	ok := func(ctx iris.Context) { ctx.JSON(iris.Map{"status": "ok"}) }

	properties := app.Party("/api/properties", accessTokenVerifierMiddleware)
	{
		properties.Post("/", utils.EstateAgentOnlyMiddleware, ok)
		properties.Post("/{id}/stages", utils.SolicitorOnlyMiddleware, ok)
		properties.Post("/{id}/timeline-approval", utils.SolicitorOnlyMiddleware, ok)
		properties.Post("/{id}/unlock-timeline", utils.SolicitorOnlyMiddleware, ok)
		properties.Post("/{id}/messages/{messageID}/approve", utils.EstateAgentOnlyMiddleware, ok)
	}
	messages := app.Party("/api/messages", accessTokenVerifierMiddleware)
	{
		messages.Get("/pending", utils.EstateAgentOnlyMiddleware, ok)
		messages.Post("/reject/{messageID}", utils.EstateAgentOnlyMiddleware, ok)
	}
	user := app.Party("/api/user", accessTokenVerifierMiddleware)
	{
		user.Patch("/{id}/pushtoken", utils.UserIDMiddleware, ok)
	}
	return app
}

func signTestToken(t *testing.T, id uint, role string) string {
	t.Helper()
	signer := jwt.NewSigner(jwt.HS256, os.Getenv("ACCESS_TOKEN_SECRET"), 0)
	token, err := signer.Sign(utils.AccessToken{ID: id, Role: role})
	if err != nil {
		t.Fatalf("signing test token: %v", err)
	}
	return string(token)
}

func TestRoleGates(t *testing.T) {
	app := buildTestApp()
	if err := app.Build(); err != nil {
		t.Fatalf("building app: %v", err)
	}

	cases := []struct {
		name   string
		method string
		path   string
		role   string
		want   int
	}{
		{"create property as agent", http.MethodPost, "/api/properties", "estate_agent", http.StatusOK},
		{"create property as buyer", http.MethodPost, "/api/properties", "buyer", http.StatusForbidden},
		{"create property as solicitor", http.MethodPost, "/api/properties", "solicitor", http.StatusForbidden},
		{"add stage as solicitor", http.MethodPost, "/api/properties/1/stages", "solicitor", http.StatusOK},
		{"add stage as seller", http.MethodPost, "/api/properties/1/stages", "seller", http.StatusForbidden},
		{"approve timeline as solicitor", http.MethodPost, "/api/properties/1/timeline-approval", "solicitor", http.StatusOK},
		{"approve timeline as agent", http.MethodPost, "/api/properties/1/timeline-approval", "estate_agent", http.StatusForbidden},
		{"unlock timeline as buyer", http.MethodPost, "/api/properties/1/unlock-timeline", "buyer", http.StatusForbidden},
		{"pending messages as agent", http.MethodGet, "/api/messages/pending", "estate_agent", http.StatusOK},
		{"pending messages as solicitor", http.MethodGet, "/api/messages/pending", "solicitor", http.StatusForbidden},
		{"approve message as buyer", http.MethodPost, "/api/properties/1/messages/1/approve", "buyer", http.StatusForbidden},
		{"reject message as seller", http.MethodPost, "/api/messages/reject/1", "seller", http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			req.Header.Set("Authorization", "Bearer "+signTestToken(t, 1, tc.role))
			resp := httptest.NewRecorder()
			app.ServeHTTP(resp, req)
			if resp.Code != tc.want {
				t.Fatalf("got %d, want %d", resp.Code, tc.want)
			}
		})
	}
}

func TestUserIDGate(t *testing.T) {
	app := buildTestApp()
	if err := app.Build(); err != nil {
		t.Fatalf("building app: %v", err)
	}

	cases := []struct {
		name    string
		tokenID uint
		path    string
		want    int
	}{
		{"own account", 7, "/api/user/7/pushtoken", http.StatusOK},
		{"someone else's account", 7, "/api/user/8/pushtoken", http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPatch, tc.path, nil)
			req.Header.Set("Authorization", "Bearer "+signTestToken(t, tc.tokenID, "buyer"))
			resp := httptest.NewRecorder()
			app.ServeHTTP(resp, req)
			if resp.Code != tc.want {
				t.Fatalf("got %d, want %d", resp.Code, tc.want)
			}
		})
	}
}

func TestForbiddenResponseShape(t *testing.T) {
	app := buildTestApp()
	if err := app.Build(); err != nil {
		t.Fatalf("building app: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/messages/pending", nil)
	req.Header.Set("Authorization", "Bearer "+signTestToken(t, 1, "buyer"))
	resp := httptest.NewRecorder()
	app.ServeHTTP(resp, req)

	if resp.Code != http.StatusForbidden {
		t.Fatalf("got %d, want %d", resp.Code, http.StatusForbidden)
	}
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding forbidden body: %v", err)
	}
	if body.Error != "forbidden" || body.Message == "" {
		t.Errorf("body = %+v, want error=forbidden with a message", body)
	}
}

func TestMissingTokenRejected(t *testing.T) {
	app := buildTestApp()
	if err := app.Build(); err != nil {
		t.Fatalf("building app: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/messages/pending", nil)
	resp := httptest.NewRecorder()
	app.ServeHTTP(resp, req)
	if resp.Code == http.StatusOK {
		t.Fatalf("expected rejection without a token, got %d", resp.Code)
	}
}
