package utils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kataras/iris/v12"
)

func TestJSONPage(t *testing.T) {
	app := iris.New()
	app.Get("/list", func(ctx iris.Context) {
		JSONPage(ctx, []string{"a", "b"}, 2, 50, 123)
	})
	if err := app.Build(); err != nil {
		t.Fatalf("building app: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/list", nil)
	resp := httptest.NewRecorder()
	app.ServeHTTP(resp, req)

	var body struct {
		Data []string `json:"data"`
		Meta PageMeta `json:"meta"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding page body: %v", err)
	}
	if len(body.Data) != 2 {
		t.Errorf("data = %v, want two rows", body.Data)
	}
	if body.Meta.Page != 2 || body.Meta.PerPage != 50 || body.Meta.Total != 123 {
		t.Errorf("meta = %+v", body.Meta)
	}
}

func TestJSONError(t *testing.T) {
	app := iris.New()
	app.Get("/boom", func(ctx iris.Context) {
		JSONError(ctx, iris.StatusForbidden, "forbidden", "no access")
	})
	if err := app.Build(); err != nil {
		t.Fatalf("building app: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	resp := httptest.NewRecorder()
	app.ServeHTTP(resp, req)

	if resp.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want %d", resp.Code, http.StatusForbidden)
	}
	var body map[string]string
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding error body: %v", err)
	}
	if body["error"] != "forbidden" || body["message"] != "no access" {
		t.Errorf("body = %v", body)
	}
}
