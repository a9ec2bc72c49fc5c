package user

import (
	"errors"
	"net/http"

	"github.com/bhutan-travel/core/internal/middleware"
	"github.com/bhutan-travel/core/internal/modules/catalog"
	"github.com/bhutan-travel/core/internal/pkg/pagination"
	"github.com/bhutan-travel/core/internal/pkg/response"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

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

// RegisterRoutes mounts the account admin. Every route needs a session;
// there is no self-registration.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	a := rg.Group("/users", authMW)
	a.GET("", h.list)
	a.GET("/:id", h.get)
	a.POST("", h.create)
	a.PUT("/:id", h.update)
	a.PATCH("/:id", h.update)
	a.DELETE("/:id", h.delete)
}

func (h *Handler) list(c *gin.Context) {
	rows, pag, err := h.svc.List(c.Request.Context(), c.Query("q"), pagination.FromContext(c))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	out := make([]*Response, 0, len(rows))
	for i := range rows {
		out = append(out, ToResponse(&rows[i]))
	}
	response.Paged(c, out, pag)
}

func (h *Handler) get(c *gin.Context) {
	u, err := h.svc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if u == nil {
		response.NotFound(c)
		return
	}
	response.OK(c, ToResponse(u))
}

func (h *Handler) create(c *gin.Context) {
	var dto CreateDTO
	if err := c.ShouldBind(&dto); err != nil {
		response.Fail(c, http.StatusBadRequest, err.Error())
		return
	}
	u, err := h.svc.Create(c.Request.Context(), middleware.CurrentActor(c), &dto)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Done(c, http.StatusCreated, "User created", ToResponse(u))
}

func (h *Handler) update(c *gin.Context) {
	var dto UpdateDTO
	if err := c.ShouldBind(&dto); err != nil {
		response.Fail(c, http.StatusBadRequest, err.Error())
		return
	}
	u, err := h.svc.Update(c.Request.Context(), middleware.CurrentActor(c), c.Param("id"), &dto)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Done(c, http.StatusOK, "User updated", ToResponse(u))
}

func (h *Handler) delete(c *gin.Context) {
	ok, err := h.svc.Delete(c.Request.Context(), middleware.CurrentActor(c), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	if !ok {
		response.Fail(c, http.StatusNotFound, "Not found")
		return
	}
	response.Done(c, http.StatusOK, "User deleted", nil)
}

func (h *Handler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrUsernameTaken), errors.Is(err, ErrEmailTaken):
		response.Fail(c, http.StatusConflict, err.Error())
	case errors.Is(err, ErrDeleteSelf):
		response.Fail(c, http.StatusForbidden, err.Error())
	case errors.Is(err, ErrWeakPassword):
		response.Fail(c, http.StatusBadRequest, err.Error())
	default:
		catalog.WriteError(c, h.logger, err)
	}
}
