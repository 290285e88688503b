package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/account_service/internal/middleware"
)

type Deps struct {
	UserHandler  *UserHTTP
	AccessSecret []byte
}

func Register(e *echo.Echo, d *Deps) {
	e.HTTPErrorHandler = ErrorHandler()

	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	users := e.Group("/users")

	users.POST("/signup", d.UserHandler.SignUp)
	users.POST("/login", d.UserHandler.Login)
	users.POST("/token", d.UserHandler.RefreshToken)

	guard := middleware.NewAccessGuard(d.AccessSecret)

	private := users.Group("")
	private.Use(guard.RequireAuth)

	private.GET("/me", d.UserHandler.Me)
	if d.UserHandler.ES != nil {
		private.GET("/search", d.UserHandler.Search)
	}
}
