package routes

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v3"

	"github.com/thermolink/thermolink/internal/hub"
	"github.com/thermolink/thermolink/internal/report"
	"github.com/thermolink/thermolink/internal/ruleformat"
	"github.com/thermolink/thermolink/internal/server"
	"github.com/thermolink/thermolink/internal/thermodb"
)

// RegisterDiagnosticRoutes 暴露 /-/ 前缀下的只读诊断接口。reports 为 nil 时不提供报告持久化。
func RegisterDiagnosticRoutes(app *fiber.App, guard *server.Guard, reports *report.Store) {
	if app == nil || guard == nil {
		return
	}

	app.Get("/-/components", func(c fiber.Ctx) error {
		var payload componentsPayload
		_ = guard.Read(func(h *hub.Hub) error {
			payload = componentsPayload{Components: h.Summary(), Fallback: h.FallbackRule()}
			return nil
		})
		return c.JSON(payload)
	})

	app.Get("/-/components/:name", func(c fiber.Ctx) error {
		name := strings.TrimSpace(c.Params("name"))
		var payload componentDetailPayload
		err := guard.Read(func(h *hub.Hub) error {
			inv, err := h.Inspect(name)
			switch {
			case errors.Is(err, hub.ErrNotListable):
			case err != nil:
				return err
			default:
				payload.Inventory = &inv
			}
			payload.Name = name
			if ref, err := h.Component(name); err == nil {
				payload.Document = describeDocument(ref)
			}
			payload.Rule, payload.HasRule = h.Rule(name)
			for _, s := range h.Summary() {
				if s.Name == name {
					payload.Summary = s
				}
			}
			return nil
		})
		if errors.Is(err, hub.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "component_not_found"})
		}
		if err != nil {
			return err
		}
		return c.JSON(payload)
	})

	app.Get("/-/rules", func(c fiber.Ctx) error {
		payload := rulesPayload{Rules: map[string]hub.Rule{}}
		_ = guard.Read(func(h *hub.Hub) error {
			for _, name := range h.RuleNames() {
				payload.Rules[name], _ = h.Rule(name)
			}
			payload.Fallback = h.FallbackRule()
			return nil
		})
		return c.JSON(payload)
	})

	app.Get("/-/rules/:name", func(c fiber.Ctx) error {
		name := strings.TrimSpace(c.Params("name"))
		var (
			rule hub.Rule
			ok   bool
		)
		_ = guard.Read(func(h *hub.Hub) error {
			rule, ok = h.Rule(name)
			return nil
		})
		if !ok {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "rule_not_found"})
		}
		return c.JSON(rule)
	})

	app.Get("/-/build", func(c fiber.Ctx) error {
		ctx := requestContext(c)
		r := report.FromBuild(guard.Build(ctx))
		if save := strings.TrimSpace(c.Query("save")); save != "" {
			if reports == nil {
				return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "report_store_unavailable"})
			}
			if _, err := reports.Save(ctx, save, r); err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "report_save_failed", "message": err.Error()})
			}
		}
		status := fiber.StatusOK
		if r.Status == report.StatusFailed {
			status = fiber.StatusConflict
		}
		return c.Status(status).JSON(r)
	})

	app.Get("/-/reports", func(c fiber.Ctx) error {
		if reports == nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "report_store_unavailable"})
		}
		names, err := reports.List()
		if err != nil {
			return err
		}
		if names == nil {
			names = []string{}
		}
		return c.JSON(fiber.Map{"reports": names})
	})

	app.Delete("/-/reports/:name", func(c fiber.Ctx) error {
		if reports == nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "report_store_unavailable"})
		}
		if err := reports.Remove(c.Params("name")); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "report_remove_failed", "message": err.Error()})
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	app.Get("/-/reports/:name", func(c fiber.Ctx) error {
		if reports == nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "report_store_unavailable"})
		}
		r, err := reports.Load(requestContext(c), c.Params("name"))
		if errors.Is(err, report.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "report_not_found"})
		}
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "report_load_failed", "message": err.Error()})
		}
		return c.JSON(r)
	})

	app.Get("/-/formats", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{"formats": encodeFormats(ruleformat.List())})
	})
}

type componentsPayload struct {
	Components []hub.ComponentSummary `json:"components"`
	Fallback   string                 `json:"fallback_rule,omitempty"`
}

type componentDetailPayload struct {
	Name      string               `json:"name"`
	Summary   hub.ComponentSummary `json:"summary"`
	HasRule   bool                 `json:"has_rule"`
	Rule      hub.Rule             `json:"rule"`
	Inventory *hub.Inventory       `json:"inventory,omitempty"`
	Document  *documentPayload     `json:"document,omitempty"`
}

// documentPayload 描述文件型 Reference 的来源，其它 Reference 不输出。
type documentPayload struct {
	Name   string `json:"name,omitempty"`
	Origin string `json:"origin"`
}

type documentDescriber interface {
	Name() string
	Origin() string
}

func describeDocument(ref thermodb.Reference) *documentPayload {
	doc, ok := ref.(documentDescriber)
	if !ok {
		return nil
	}
	return &documentPayload{Name: doc.Name(), Origin: doc.Origin()}
}

type rulesPayload struct {
	Rules    map[string]hub.Rule `json:"rules"`
	Fallback string              `json:"fallback_rule,omitempty"`
}

type formatPayload struct {
	Key         string   `json:"key"`
	Description string   `json:"description"`
	Extensions  []string `json:"extensions"`
	Priority    int      `json:"priority"`
}

func encodeFormats(formats []ruleformat.Format) []formatPayload {
	if len(formats) == 0 {
		return nil
	}
	result := make([]formatPayload, 0, len(formats))
	for _, f := range formats {
		result = append(result, formatPayload{
			Key:         f.Key,
			Description: f.Description,
			Extensions:  append([]string(nil), f.Extensions...),
			Priority:    f.Priority,
		})
	}
	return result
}

func requestContext(c fiber.Ctx) context.Context {
	if ctx := c.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
