package middleware

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/clover/pkg/context"
)

const (
	// HeaderActorID is the header key for the acting party's identifier
	HeaderActorID = "X-Actor-Id"
	// HeaderActorRole is the header key for the acting party's role
	HeaderActorRole = "X-Actor-Role"
)

// Context seeds the request context with request metadata and, when no
// token verification runs in front of it, the actor identity headers. The
// Authentication middleware overwrites actor id and role with verified
// claims when it is enabled.
func Context() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			req := c.Request()

			// get request id from header
			requestID := req.Header.Get(echo.HeaderXRequestID)
			if requestID == "" {
				requestID = uuid.New().String()
			}

			// get actor identity from headers
			actorID := req.Header.Get(HeaderActorID)
			actorRole := req.Header.Get(HeaderActorRole)

			ctx := req.Context()
			ctx = context.SetRequestID(ctx, requestID)
			ctx = context.SetMethod(ctx, req.Method)
			ctx = context.SetRoute(ctx, req.URL.Path)
			ctx = context.SetRemoteIP(ctx, c.RealIP())
			ctx = context.SetReferer(ctx, req.Referer())
			ctx = context.SetActorID(ctx, actorID)
			ctx = context.SetActorRole(ctx, actorRole)

			c.SetRequest(req.WithContext(ctx))

			return next(c)
		}
	}
}
