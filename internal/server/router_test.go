package server

import (
	"bytes"
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"

	"github.com/thermolink/thermolink/internal/hub"
)

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()

	guard, err := NewGuard(hub.New())
	if err != nil {
		t.Fatalf("创建 Guard 失败: %v", err)
	}
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	app, err := NewApp(AppOptions{Logger: logger, Guard: guard, ListenPort: 5000})
	if err != nil {
		t.Fatalf("创建应用失败: %v", err)
	}
	app.Get("/ping", func(c fiber.Ctx) error {
		return c.SendString(RequestID(c))
	})
	app.Get("/boom", func(c fiber.Ctx) error {
		return errors.New("boom")
	})
	app.Get("/panic", func(c fiber.Ctx) error {
		panic("unexpected")
	})
	return app
}

func TestRouterSetsRequestID(t *testing.T) {
	app := newTestApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/ping", nil))
	if err != nil {
		t.Fatalf("app.Test 失败: %v", err)
	}
	reqID := resp.Header.Get("X-Request-ID")
	if reqID == "" {
		t.Fatalf("缺少 X-Request-ID 头")
	}
	body, _ := io.ReadAll(resp.Body)
	if string(body) != reqID {
		t.Fatalf("RequestID 与响应头不一致: %s != %s", body, reqID)
	}
}

func TestRouterUnknownRouteReturnsJSON404(t *testing.T) {
	app := newTestApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/nothing", nil))
	if err != nil {
		t.Fatalf("app.Test 失败: %v", err)
	}
	if resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("期望 404，实际 %d", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if !bytes.Contains(body, []byte(`"not_found"`)) {
		t.Fatalf("错误体不符: %s", body)
	}
}

func TestRouterHandlerErrorsBecome500(t *testing.T) {
	app := newTestApp(t)

	for _, path := range []string{"/boom", "/panic"} {
		resp, err := app.Test(httptest.NewRequest("GET", path, nil))
		if err != nil {
			t.Fatalf("app.Test %s 失败: %v", path, err)
		}
		if resp.StatusCode != fiber.StatusInternalServerError {
			t.Fatalf("%s 期望 500，实际 %d", path, resp.StatusCode)
		}
		body, _ := io.ReadAll(resp.Body)
		if !bytes.Contains(body, []byte(`"internal_error"`)) {
			t.Fatalf("%s 错误体不符: %s", path, body)
		}
	}
}

func TestNewAppValidatesOptions(t *testing.T) {
	guard, _ := NewGuard(hub.New())
	cases := []AppOptions{
		{Guard: guard, ListenPort: 5000},
		{Logger: logrus.New(), ListenPort: 5000},
		{Logger: logrus.New(), Guard: guard},
	}
	for i, opts := range cases {
		if _, err := NewApp(opts); err == nil {
			t.Fatalf("用例 %d 应返回错误", i)
		}
	}
}
