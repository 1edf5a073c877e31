package http

import "github.com/labstack/echo/v4"

// Handler is a route group NewServer mounts after the middleware chain.
// Routes added here see recovery, request logging, metrics and CORS.
type Handler interface {
	RegisterRoutes(e *echo.Echo)
}
