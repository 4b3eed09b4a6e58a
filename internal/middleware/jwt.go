package middleware // reusable echo middleware for authentication, throttling and caching

import (
    "net/http"
    "strings"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/travel-booking/internal/utils"
)

// Context keys set by JWTAuth.
const (
    CtxCustomerID = "customer_id"
    CtxRole       = "role"
)

// JWTAuth validates a Bearer access token and stores the customer id
// (uint64) and role (string) in the echo context.
func JWTAuth(secret string) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            auth := c.Request().Header.Get("Authorization")
            if !strings.HasPrefix(auth, "Bearer ") {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
            }
            id, err := utils.ParseAccessToken(secret, strings.TrimPrefix(auth, "Bearer "))
            if err != nil {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
            }
            c.Set(CtxCustomerID, id.CustomerID)
            c.Set(CtxRole, id.Role)
            return next(c)
        }
    }
}

// CustomerID returns the authenticated customer id, if any.
func CustomerID(c echo.Context) (uint64, bool) {
    id, ok := c.Get(CtxCustomerID).(uint64)
    return id, ok && id != 0
}

// Role returns the authenticated role or "".
func Role(c echo.Context) string {
    r, _ := c.Get(CtxRole).(string)
    return r
}
