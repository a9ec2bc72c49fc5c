package tourrequest

import (
	"errors"
	"net/http"
	"strings"

	"github.com/bhutan-travel/core/internal/middleware"
	"github.com/bhutan-travel/core/internal/models"
	"github.com/bhutan-travel/core/internal/modules/itinerary"
	"github.com/bhutan-travel/core/internal/pkg/authz"
	"github.com/bhutan-travel/core/internal/pkg/pagination"
	"github.com/bhutan-travel/core/internal/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
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

// RegisterRoutes mounts the public inquiry endpoint (behind submitMW) and
// the admin lifecycle endpoints (behind authMW).
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc, submitMW ...gin.HandlerFunc) {
	g := rg.Group("/tour-requests")
	create := append(append([]gin.HandlerFunc{}, submitMW...), h.create)
	g.POST("", create...)

	a := g.Group("", authMW)
	a.GET("", h.list)
	a.GET("/:id", h.get)
	a.PUT("/:id", h.update)
	a.PATCH("/:id", h.update)
	a.PATCH("/:id/status", h.transition)
	a.POST("/:id/status", h.transition)
	a.DELETE("/:id", h.delete)
}

func (h *Handler) create(c *gin.Context) {
	var dto CreateDTO
	if strings.HasPrefix(c.ContentType(), binding.MIMEJSON) {
		if err := c.ShouldBindJSON(&dto); err != nil {
			response.Fail(c, http.StatusBadRequest, err.Error())
			return
		}
	} else {
		if err := c.ShouldBind(&dto); err != nil {
			response.Fail(c, http.StatusBadRequest, err.Error())
			return
		}
		dto.CustomItinerary = []byte(c.PostForm("custom_itinerary"))
	}

	req, err := h.svc.Create(c.Request.Context(), &dto)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Done(c, http.StatusCreated, "Thank you! Your tour request has been received.", gin.H{"id": req.ID, "status": req.Status})
}

func (h *Handler) list(c *gin.Context) {
	q := ListQuery{Query: c.Query("q")}
	if raw := c.Query("status"); raw != "" {
		status, err := models.ParseTourRequestStatus(raw)
		if err != nil {
			response.BadRequest(c, err.Error())
			return
		}
		q.Status = status
	}
	rows, pag, err := h.svc.List(c.Request.Context(), q, pagination.FromContext(c))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Paged(c, rows, pag)
}

func (h *Handler) get(c *gin.Context) {
	req, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if req == nil {
		response.NotFound(c)
		return
	}
	response.OK(c, req)
}

func (h *Handler) update(c *gin.Context) {
	var dto UpdateDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.Fail(c, http.StatusBadRequest, err.Error())
		return
	}
	req, err := h.svc.Update(c.Request.Context(), middleware.CurrentActor(c), c.Param("id"), &dto)
	if err != nil {
		h.fail(c, err)
		return
	}
	if req == nil {
		response.Fail(c, http.StatusNotFound, ErrNotFound.Error())
		return
	}
	response.Done(c, http.StatusOK, "Tour request updated", req)
}

func (h *Handler) transition(c *gin.Context) {
	var dto TransitionDTO
	if err := c.ShouldBind(&dto); err != nil {
		response.Fail(c, http.StatusBadRequest, err.Error())
		return
	}
	target, err := models.ParseTourRequestStatus(dto.Status)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.svc.Transition(c.Request.Context(), middleware.CurrentActor(c), c.Param("id"), target)
	if err != nil {
		h.fail(c, err)
		return
	}
	msg := "Status updated to " + res.Current.String()
	if !res.Changed {
		msg = "Status already " + res.Current.String()
	}
	response.Done(c, http.StatusOK, msg, res)
}

func (h *Handler) delete(c *gin.Context) {
	ok, err := h.svc.Delete(c.Request.Context(), middleware.CurrentActor(c), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	if !ok {
		response.Fail(c, http.StatusNotFound, ErrNotFound.Error())
		return
	}
	response.Done(c, http.StatusOK, "Tour request deleted", nil)
}

func (h *Handler) fail(c *gin.Context, err error) {
	var verrs itinerary.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		response.Invalid(c, "The itinerary is not valid", verrs)
	case errors.Is(err, authz.ErrUnauthorized):
		response.Fail(c, http.StatusUnauthorized, "Unauthorized")
	case errors.Is(err, ErrNotFound):
		response.Fail(c, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrStatusConflict):
		response.Fail(c, http.StatusConflict, err.Error())
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrInvalidStatus), errors.Is(err, ErrUnknownTour):
		response.Fail(c, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error("tour request operation failed", zap.String("path", c.FullPath()), zap.Error(err))
		response.Fail(c, http.StatusInternalServerError, "Something went wrong, please try again")
	}
}
