package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const requestIDHeader = echo.HeaderXRequestID

// requestID adds a unique request ID to each request
func requestID(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		id := c.Request().Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Request().Header.Set(requestIDHeader, id)
		c.Response().Header().Set(requestIDHeader, id)
		return next(c)
	}
}

// requestLogger logs every request once it is processed
func requestLogger(log *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			status := c.Response().Status
			if err != nil {
				status = toHTTPError(err).Code
			}
			fields := []zapcore.Field{
				zap.String("request_id", c.Request().Header.Get(requestIDHeader)),
				zap.String("method", c.Request().Method),
				zap.String("path", c.Request().URL.Path),
				zap.Int("status", status),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", c.RealIP()),
			}

			switch {
			case status >= 500:
				log.Error("HTTP request failed", append(fields, zap.Error(err))...)
			case status >= 400:
				log.Warn("HTTP request rejected", fields...)
			default:
				log.Debug("HTTP request completed", fields...)
			}
			return err
		}
	}
}
