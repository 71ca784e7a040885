package server

import (
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/thermolink/thermolink/internal/logging"
)

// AppOptions controls how the diagnostics application is assembled.
type AppOptions struct {
	Logger     *logrus.Logger
	Guard      *Guard
	ListenPort int
}

const contextKeyRequestID = "_thermolink_request_id"

// NewApp builds a Fiber application with request IDs, panic recovery and
// JSON error bodies. Routes are attached by the caller (see routes package).
func NewApp(opts AppOptions) (*fiber.App, error) {
	if opts.Logger == nil {
		return nil, errors.New("logger is required")
	}
	if opts.Guard == nil {
		return nil, errors.New("hub guard is required")
	}
	if opts.ListenPort <= 0 {
		return nil, fmt.Errorf("invalid listen port: %d", opts.ListenPort)
	}

	app := fiber.New(fiber.Config{
		CaseSensitive: true,
		ErrorHandler:  errorHandler(opts.Logger),
	})

	app.Use(recover.New())
	app.Use(requestContextMiddleware(opts.Logger))

	return app, nil
}

// requestContextMiddleware 生成请求 ID 并记录访问日志。
func requestContextMiddleware(logger *logrus.Logger) fiber.Handler {
	return func(c fiber.Ctx) error {
		reqID := uuid.NewString()
		c.Locals(contextKeyRequestID, reqID)
		c.Set("X-Request-ID", reqID)

		started := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
		}
		logger.WithFields(logging.RequestFields(c.Method(), c.Path(), reqID, status)).
			WithField("elapsed_ms", time.Since(started).Milliseconds()).
			Debug("diagnostics request")
		return err
	}
}

func errorHandler(logger *logrus.Logger) fiber.ErrorHandler {
	return func(c fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
		}
		key := "internal_error"
		switch code {
		case fiber.StatusNotFound:
			key = "not_found"
		case fiber.StatusMethodNotAllowed:
			key = "method_not_allowed"
		}
		if code >= fiber.StatusInternalServerError {
			logger.WithFields(logrus.Fields{
				"action":     "http_error",
				"request_id": RequestID(c),
			}).WithError(err).Error("diagnostics request failed")
		}
		return c.Status(code).JSON(fiber.Map{"error": key})
	}
}

// RequestID returns the request identifier stored by the router middleware.
func RequestID(c fiber.Ctx) string {
	if value := c.Locals(contextKeyRequestID); value != nil {
		if reqID, ok := value.(string); ok {
			return reqID
		}
	}
	return ""
}
