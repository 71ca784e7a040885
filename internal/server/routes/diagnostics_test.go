package routes

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/google/go-cmp/cmp"
	"github.com/sirupsen/logrus"

	"github.com/thermolink/thermolink/internal/hub"
	"github.com/thermolink/thermolink/internal/report"
	_ "github.com/thermolink/thermolink/internal/ruleformat/yamlrules"
	"github.com/thermolink/thermolink/internal/server"
	"github.com/thermolink/thermolink/internal/thermodb"
)

func co2Ref() thermodb.Static {
	return thermodb.Static{
		Data: map[string]thermodb.Data{
			"Pc": thermodb.Property{Symbol: "Pc", Value: 7.3773, Unit: "MPa"},
			"Tc": thermodb.Property{Symbol: "Tc", Value: 304.21, Unit: "K"},
		},
	}
}

func newTestApp(t *testing.T, h *hub.Hub, withReports bool) *fiber.App {
	t.Helper()
	guard, err := server.NewGuard(h)
	if err != nil {
		t.Fatalf("创建 Guard 失败: %v", err)
	}
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	app, err := server.NewApp(server.AppOptions{Logger: logger, Guard: guard, ListenPort: 5000})
	if err != nil {
		t.Fatalf("创建应用失败: %v", err)
	}
	var store *report.Store
	if withReports {
		store, err = report.NewStore(t.TempDir())
		if err != nil {
			t.Fatalf("创建报告存储失败: %v", err)
		}
	}
	RegisterDiagnosticRoutes(app, guard, store)
	return app
}

func getJSON(t *testing.T, app *fiber.App, path string, out any) int {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest("GET", path, nil))
	if err != nil {
		t.Fatalf("请求 %s 失败: %v", path, err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("解析 %s 响应失败: %v", path, err)
		}
	}
	return resp.StatusCode
}

func TestComponentsRoute(t *testing.T) {
	h := hub.New(hub.WithFallbackRule("ALL"))
	_ = h.AddComponentWithRule("CO2", co2Ref(), hub.Rule{Data: map[string]string{"Pc": "Pc"}})
	_ = h.AddComponent("N2", co2Ref())
	app := newTestApp(t, h, false)

	var payload componentsPayload
	if code := getJSON(t, app, "/-/components", &payload); code != fiber.StatusOK {
		t.Fatalf("状态码错误: %d", code)
	}
	want := componentsPayload{
		Components: []hub.ComponentSummary{
			{Name: "CO2", Rule: hub.RuleOwn, Data: []string{"Pc"}},
			{Name: "N2", Rule: hub.RuleNone},
		},
		Fallback: "ALL",
	}
	if diff := cmp.Diff(want, payload); diff != "" {
		t.Fatalf("组分列表不符:\n%s", diff)
	}
}

func TestComponentDetailRoute(t *testing.T) {
	h := hub.New()
	_ = h.AddComponentWithRule("CO2", co2Ref(), hub.Rule{Data: map[string]string{"Pc": "Pc1"}})
	app := newTestApp(t, h, false)

	var payload componentDetailPayload
	if code := getJSON(t, app, "/-/components/CO2", &payload); code != fiber.StatusOK {
		t.Fatalf("状态码错误: %d", code)
	}
	if !payload.HasRule || payload.Rule.Data["Pc"] != "Pc1" {
		t.Fatalf("规则信息不符: %+v", payload)
	}
	if payload.Inventory == nil {
		t.Fatalf("应包含符号清单")
	}
	if payload.Document != nil {
		t.Fatalf("内存 Reference 不应输出文档信息: %+v", payload.Document)
	}
	if diff := cmp.Diff([]string{"Pc", "Tc"}, payload.Inventory.Data); diff != "" {
		t.Fatalf("符号清单不符:\n%s", diff)
	}

	if code := getJSON(t, app, "/-/components/missing", nil); code != fiber.StatusNotFound {
		t.Fatalf("未知组分应返回 404，实际 %d", code)
	}
}

func TestComponentDetailReportsDocument(t *testing.T) {
	ref, err := thermodb.NewLoader(0, 0).Load(filepath.Join("..", "..", "thermodb", "testdata", "co2.yml"))
	if err != nil {
		t.Fatalf("加载 thermodb 文档失败: %v", err)
	}
	h := hub.New()
	_ = h.AddComponent("CO2", ref)
	app := newTestApp(t, h, false)

	var payload componentDetailPayload
	if code := getJSON(t, app, "/-/components/CO2", &payload); code != fiber.StatusOK {
		t.Fatalf("状态码错误: %d", code)
	}
	if payload.Document == nil {
		t.Fatalf("文件型 Reference 应输出文档信息")
	}
	if payload.Document.Name != "CO2" || !strings.HasSuffix(payload.Document.Origin, "co2.yml") {
		t.Fatalf("文档信息不符: %+v", payload.Document)
	}
}

func TestRulesRoutes(t *testing.T) {
	h := hub.New()
	_ = h.AddRule("MeOH", hub.Rule{Equations: map[string]string{"vapor-pressure": "VaPr"}})
	app := newTestApp(t, h, false)

	var all rulesPayload
	if code := getJSON(t, app, "/-/rules", &all); code != fiber.StatusOK {
		t.Fatalf("状态码错误: %d", code)
	}
	if _, ok := all.Rules["MeOH"]; !ok {
		t.Fatalf("规则列表缺少 MeOH: %+v", all)
	}

	var rule hub.Rule
	if code := getJSON(t, app, "/-/rules/MeOH", &rule); code != fiber.StatusOK {
		t.Fatalf("状态码错误: %d", code)
	}
	if rule.Equations["vapor-pressure"] != "VaPr" {
		t.Fatalf("规则内容不符: %+v", rule)
	}
	if code := getJSON(t, app, "/-/rules/CO2", nil); code != fiber.StatusNotFound {
		t.Fatalf("未知规则应返回 404，实际 %d", code)
	}
}

func TestBuildRouteSavesAndLoadsReport(t *testing.T) {
	h := hub.New()
	_ = h.AddComponentWithRule("CO2", co2Ref(), hub.Rule{Data: map[string]string{"Pc": "Pc", "AcFa": "AcFa"}})
	app := newTestApp(t, h, true)

	var built report.Report
	if code := getJSON(t, app, "/-/build?save=latest", &built); code != fiber.StatusOK {
		t.Fatalf("状态码错误: %d", code)
	}
	if built.Status != report.StatusPartial || len(built.Unresolved) != 1 {
		t.Fatalf("报告内容不符: %+v", built)
	}

	var loaded report.Report
	if code := getJSON(t, app, "/-/reports/latest", &loaded); code != fiber.StatusOK {
		t.Fatalf("状态码错误: %d", code)
	}
	if loaded.Status != report.StatusPartial {
		t.Fatalf("读回报告不符: %+v", loaded)
	}
	if code := getJSON(t, app, "/-/reports/unknown", nil); code != fiber.StatusNotFound {
		t.Fatalf("未知报告应返回 404，实际 %d", code)
	}
}

func TestReportsListAndRemove(t *testing.T) {
	h := hub.New()
	_ = h.AddComponentWithRule("CO2", co2Ref(), hub.Rule{Data: map[string]string{"Pc": "Pc"}})
	app := newTestApp(t, h, true)

	for _, name := range []string{"b", "a"} {
		if code := getJSON(t, app, "/-/build?save="+name, nil); code != fiber.StatusOK {
			t.Fatalf("保存报告 %s 失败: %d", name, code)
		}
	}

	var listed struct {
		Reports []string `json:"reports"`
	}
	if code := getJSON(t, app, "/-/reports", &listed); code != fiber.StatusOK {
		t.Fatalf("状态码错误: %d", code)
	}
	if diff := cmp.Diff([]string{"a", "b"}, listed.Reports); diff != "" {
		t.Fatalf("报告列表不符:\n%s", diff)
	}

	resp, err := app.Test(httptest.NewRequest("DELETE", "/-/reports/a", nil))
	if err != nil {
		t.Fatalf("删除请求失败: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != fiber.StatusNoContent {
		t.Fatalf("删除应返回 204，实际 %d", resp.StatusCode)
	}

	if code := getJSON(t, app, "/-/reports", &listed); code != fiber.StatusOK {
		t.Fatalf("状态码错误: %d", code)
	}
	if diff := cmp.Diff([]string{"b"}, listed.Reports); diff != "" {
		t.Fatalf("删除后报告列表不符:\n%s", diff)
	}
	if code := getJSON(t, app, "/-/reports/a", nil); code != fiber.StatusNotFound {
		t.Fatalf("已删除报告应返回 404，实际 %d", code)
	}
}

func TestBuildRouteCollisionConflict(t *testing.T) {
	h := hub.New()
	_ = h.AddComponentWithRule("CO2", co2Ref(), hub.Rule{Data: map[string]string{"Pc": "X", "Tc": "X"}})
	app := newTestApp(t, h, false)

	var built report.Report
	if code := getJSON(t, app, "/-/build", &built); code != fiber.StatusConflict {
		t.Fatalf("冲突应返回 409，实际 %d", code)
	}
	if len(built.Collisions) != 1 {
		t.Fatalf("应包含冲突详情: %+v", built)
	}
	if code := getJSON(t, app, "/-/build?save=x", nil); code != fiber.StatusServiceUnavailable {
		t.Fatalf("未配置存储时保存应返回 503，实际 %d", code)
	}
}

func TestFormatsRoute(t *testing.T) {
	app := newTestApp(t, hub.New(), false)
	var payload struct {
		Formats []formatPayload `json:"formats"`
	}
	if code := getJSON(t, app, "/-/formats", &payload); code != fiber.StatusOK {
		t.Fatalf("状态码错误: %d", code)
	}
	found := false
	for _, f := range payload.Formats {
		if f.Key == "yaml" {
			found = true
		}
	}
	if !found {
		t.Fatalf("格式列表应包含 yaml: %+v", payload.Formats)
	}
}
