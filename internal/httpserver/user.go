package httpserver

import (
	"net/http"
	"strconv"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/account_service/internal/events"
	"github.com/Skotchmaster/account_service/internal/middleware"
	"github.com/Skotchmaster/account_service/internal/search"
	"github.com/Skotchmaster/account_service/internal/service"
	"github.com/Skotchmaster/account_service/internal/util"
	"github.com/Skotchmaster/account_service/pkg/logging"
	"github.com/Skotchmaster/account_service/pkg/tokens"
)

type UserHTTP struct {
	Svc      *service.UserService
	Producer *events.Producer
	ES       *elasticsearch.Client
}

func (h *UserHTTP) SignUp(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user_signup")

	var req struct {
		Username string `json:"username"`
		Nickname string `json:"nickname"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		l.Warn("signup_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	profile, err := h.Svc.SignUp(ctx, req.Username, req.Nickname, req.Password)
	if err != nil {
		return httpError(err)
	}

	if err := h.Producer.PublishEvent(ctx, profile.Username, map[string]interface{}{
		"type":     "user_registered",
		"username": profile.Username,
		"nickname": profile.Nickname,
	}); err != nil {
		l.Error("event_publish_error", "error", err)
	}

	if h.ES != nil {
		if err := search.IndexProfile(ctx, h.ES, search.Index, profile); err != nil {
			l.Error("profile_index_error", "error", err)
		}
	}

	return respond(c, http.StatusCreated, "account created", profile)
}

func (h *UserHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user_login")

	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		l.Warn("login_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	res, err := h.Svc.Login(ctx, req.Username, req.Password)
	if err != nil {
		return httpError(err)
	}

	if err := h.Producer.PublishEvent(ctx, req.Username, map[string]interface{}{
		"type":     "user_logged_in",
		"username": req.Username,
	}); err != nil {
		l.Error("event_publish_error", "error", err)
	}

	return respond(c, http.StatusOK, "logged in", echo.Map{
		"accessToken":  res.AccessToken,
		"refreshToken": res.RefreshToken,
	})
}

func (h *UserHTTP) RefreshToken(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user_refresh")

	var req struct {
		RefreshToken string `json:"refreshToken"`
	}
	if err := c.Bind(&req); err != nil {
		l.Warn("refresh_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	res, err := h.Svc.Refresh(ctx, req.RefreshToken)
	if err != nil {
		return httpError(err)
	}

	return respond(c, http.StatusOK, "access token renewed", echo.Map{
		"accessToken": res.AccessToken,
	})
}

// Me echoes the claims the access guard decoded, proving the token
// made it through verification.
func (h *UserHTTP) Me(c echo.Context) error {
	claims, ok := c.Get(middleware.ClaimsKey).(*tokens.Claims)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing access token")
	}

	return respond(c, http.StatusOK, "token verified", echo.Map{
		"username":  claims.Username,
		"expiresAt": claims.ExpiresAt,
	})
}

func (h *UserHTTP) Search(c echo.Context) error {
	q := c.QueryParam("q")
	if q == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "query parameter q is required")
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	size, _ := strconv.Atoi(c.QueryParam("size"))
	from, size := util.Paginate(page, size)

	total, profiles, err := search.Search(c.Request().Context(), h.ES, search.Index, q, from, size)
	if err != nil {
		logging.FromContext(c.Request().Context()).Error("profile_search_error", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal Server Error")
	}

	return respond(c, http.StatusOK, "search results", echo.Map{
		"total": total,
		"users": profiles,
	})
}
