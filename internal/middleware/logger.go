package middleware

import (
    "time"

    "github.com/labstack/echo/v4"
    "go.uber.org/zap"
)

const errorKey = "request_error"

// SetError records the cause of a response the handler already wrote,
// so that RequestLogger can log it.
func SetError(c echo.Context, err error) {
    c.Set(errorKey, err)
}

// RequestLogger writes one structured line per request.  Errors come
// either from the handler's return value or from SetError.
func RequestLogger(logger *zap.Logger) echo.MiddlewareFunc {
    log := logger.Named("http")
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            start := time.Now()
            err := next(c)
            if err != nil {
                // let echo's error handler pick the status before we read it
                c.Error(err)
            } else if recorded, ok := c.Get(errorKey).(error); ok {
                err = recorded
            }
            req, res := c.Request(), c.Response()
            fields := []zap.Field{
                zap.String("method", req.Method),
                zap.String("path", req.URL.Path),
                zap.String("route", c.Path()),
                zap.Int("status", res.Status),
                zap.Duration("latency", time.Since(start)),
                zap.String("ip", c.RealIP()),
                zap.String("request_id", res.Header().Get(echo.HeaderXRequestID)),
            }
            switch {
            case res.Status >= 500:
                log.Error("request", append(fields, zap.Error(err))...)
            case res.Status >= 400:
                log.Warn("request", fields...)
            default:
                log.Info("request", fields...)
            }
            return nil
        }
    }
}
