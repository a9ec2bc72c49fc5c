package auth

import (
	"errors"
	"net/http"
	"time"

	"github.com/bhutan-travel/core/internal/middleware"
	"github.com/bhutan-travel/core/internal/modules/catalog"
	"github.com/bhutan-travel/core/internal/modules/user"
	"github.com/bhutan-travel/core/internal/pkg/response"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type LoginDTO struct {
	Username string `json:"username" form:"username" binding:"required"`
	Password string `json:"password" form:"password" binding:"required"`
}

type loginResponse struct {
	Token     string         `json:"token"`
	ExpiresAt time.Time      `json:"expires_at"`
	User      *user.Response `json:"user"`
}

type sessionResponse struct {
	User      *user.Response `json:"user"`
	SessionID string         `json:"session_id"`
}

type Handler struct {
	svc    *Service
	logger *zap.Logger
}

func NewHandler(svc *Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{svc: svc, logger: logger}
}

// RegisterRoutes mounts /auth. loginMW guards the password endpoint,
// typically with a rate limit.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc, loginMW ...gin.HandlerFunc) {
	g := rg.Group("/auth")
	login := append(append([]gin.HandlerFunc{}, loginMW...), h.login)
	g.POST("/login", login...)

	a := g.Group("", authMW)
	a.POST("/logout", h.logout)
	a.GET("/session", h.session)
	a.GET("/sessions", h.listSessions)
	a.DELETE("/sessions", h.revokeOthers)
	a.DELETE("/sessions/:id", h.revokeSession)
}

func (h *Handler) login(c *gin.Context) {
	var dto LoginDTO
	if err := c.ShouldBind(&dto); err != nil {
		response.Fail(c, http.StatusBadRequest, "Username and password are required")
		return
	}
	res, err := h.svc.Login(c.Request.Context(), dto.Username, dto.Password, c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			response.Fail(c, http.StatusUnauthorized, err.Error())
			return
		}
		catalog.WriteError(c, h.logger, err)
		return
	}
	maxAge := int(time.Until(res.ExpiresAt).Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.TokenCookie, res.Token, maxAge, "/", "", c.Request.TLS != nil, true)
	response.Done(c, http.StatusOK, "Signed in", loginResponse{
		Token:     res.Token,
		ExpiresAt: res.ExpiresAt,
		User:      user.ToResponse(res.User),
	})
}

func (h *Handler) logout(c *gin.Context) {
	if err := h.svc.Logout(c.Request.Context(), middleware.CurrentActor(c)); err != nil {
		catalog.WriteError(c, h.logger, err)
		return
	}
	c.SetCookie(middleware.TokenCookie, "", -1, "/", "", c.Request.TLS != nil, true)
	response.Done(c, http.StatusOK, "Signed out", nil)
}

func (h *Handler) session(c *gin.Context) {
	actor := middleware.CurrentActor(c)
	u, err := h.svc.Current(c.Request.Context(), actor)
	if err != nil {
		catalog.WriteError(c, h.logger, err)
		return
	}
	if u == nil {
		response.Unauthorized(c)
		return
	}
	response.OK(c, sessionResponse{User: user.ToResponse(u), SessionID: actor.SessionID})
}

func (h *Handler) listSessions(c *gin.Context) {
	actor := middleware.CurrentActor(c)
	sessions, err := h.svc.Sessions(c.Request.Context(), actor)
	if err != nil {
		catalog.WriteError(c, h.logger, err)
		return
	}
	out := make([]gin.H, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, gin.H{
			"id":         s.ID,
			"ip":         s.IP,
			"ua":         s.UA,
			"created":    s.CreatedAt,
			"last_seen":  s.UpdatedAt,
			"expires_at": s.ExpiresAt,
			"current":    s.ID == actor.SessionID,
		})
	}
	response.OK(c, out)
}

func (h *Handler) revokeSession(c *gin.Context) {
	ok, err := h.svc.RevokeSession(c.Request.Context(), middleware.CurrentActor(c), c.Param("id"))
	if err != nil {
		catalog.WriteError(c, h.logger, err)
		return
	}
	if !ok {
		response.Fail(c, http.StatusNotFound, "Not found")
		return
	}
	response.Done(c, http.StatusOK, "Session revoked", nil)
}

func (h *Handler) revokeOthers(c *gin.Context) {
	if err := h.svc.RevokeOthers(c.Request.Context(), middleware.CurrentActor(c)); err != nil {
		catalog.WriteError(c, h.logger, err)
		return
	}
	response.Done(c, http.StatusOK, "Other sessions revoked", nil)
}
