package middleware

import (
    "time"

    "github.com/labstack/echo/v4"
    "github.com/sirupsen/logrus"
)

// ErrorKey is the echo.Context key under which handlers leave an internal
// error that was answered with a sanitised body.
const ErrorKey = "handler_error"

// RequestLogger writes one logrus entry per request.  Server errors are
// logged at error level, client errors at warn.
func RequestLogger(log logrus.FieldLogger) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            start := time.Now()
            err := next(c)
            if err != nil {
                // let the echo error handler settle the status first
                c.Error(err)
            }

            req, res := c.Request(), c.Response()
            entry := log.WithFields(logrus.Fields{
                "method":     req.Method,
                "path":       req.URL.Path,
                "route":      c.Path(),
                "status":     res.Status,
                "latency_ms": time.Since(start).Milliseconds(),
                "remote_ip":  c.RealIP(),
                "request_id": res.Header().Get(echo.HeaderXRequestID),
                "principal":  userID(c),
            })
            if err == nil {
                err, _ = c.Get(ErrorKey).(error)
            }
            if err != nil {
                entry = entry.WithError(err)
            }
            switch {
            case res.Status >= 500:
                entry.Error("request")
            case res.Status >= 400:
                entry.Warn("request")
            default:
                entry.Info("request")
            }
            return nil
        }
    }
}
