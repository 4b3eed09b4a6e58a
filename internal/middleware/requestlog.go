package middleware

import (
    "time"

    "github.com/labstack/echo/v4"
    echomw "github.com/labstack/echo/v4/middleware"
    "github.com/sirupsen/logrus"
)

// RequestLogger writes one logrus entry per request.  Server errors log at
// error level, client errors at warn.
func RequestLogger(log logrus.FieldLogger) echo.MiddlewareFunc {
    log = log.WithField("component", "http")
    return echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
        LogMethod:    true,
        LogURI:       true,
        LogStatus:    true,
        LogLatency:   true,
        LogRemoteIP:  true,
        LogRequestID: true,
        LogError:     true,
        HandleError:  true,
        LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
            entry := log.WithFields(logrus.Fields{
                "method":     v.Method,
                "uri":        v.URI,
                "status":     v.Status,
                "latency_ms": v.Latency.Milliseconds(),
                "remote_ip":  v.RemoteIP,
                "request_id": v.RequestID,
            })
            if id, ok := CustomerID(c); ok {
                entry = entry.WithField("customer_id", id)
            }
            switch {
            case v.Error != nil || v.Status >= 500:
                entry.WithError(v.Error).Error("request failed")
            case v.Status >= 400:
                entry.Warn("request rejected")
            default:
                entry.Info("request")
            }
            return nil
        },
    })
}

// Timeout bounds the request context so that database calls are cancelled
// once d has elapsed.
func Timeout(d time.Duration) echo.MiddlewareFunc {
    if d <= 0 {
        return passThrough
    }
    return echomw.ContextTimeoutWithConfig(echomw.ContextTimeoutConfig{Timeout: d})
}
