package middleware

import (
	"fmt"
	"runtime/debug"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"taskhub/pkg/logger"
)

// RequestLogger recovers from panics in later handlers and logs every
// request with its outcome. Errors are passed to the app's ErrorHandler
// here so the logged status is the one sent to the client.
func RequestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		chainErr := nextRecovered(c)
		if chainErr != nil {
			if err := c.App().ErrorHandler(c, chainErr); err != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		fields := []zap.Field{
			zap.String("method", c.Method()),
			zap.String("url", c.OriginalURL()),
			zap.Int("status", c.Response().StatusCode()),
			zap.Duration("latency", time.Since(start)),
		}
		if chainErr != nil {
			fields = append(fields, zap.Error(chainErr))
		}
		logger.RequestLogger.Info("Incoming request", fields...)
		return nil
	}
}

func nextRecovered(c *fiber.Ctx) (err error) {
	defer func() {
		if r := recover(); r != nil {
			errMsg := fmt.Sprintf("Recovered from panic: %v", r)
			logger.ErrorLogger.Error(errMsg, zap.String("stack", string(debug.Stack())))
			err = fmt.Errorf("%s", errMsg)
		}
	}()
	return c.Next()
}
