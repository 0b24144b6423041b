package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	userapp "github.com/oksasatya/go-user-orders-api/internal/application"
	"github.com/oksasatya/go-user-orders-api/pkg/helpers"
	"github.com/oksasatya/go-user-orders-api/pkg/response"
)

const (
	msgValidationFailed = "User validation failed"
	msgUserNotFound     = "User not found"
	msgUserExists       = "User already exist!"
)

type UserHandler struct {
	Svc    *userapp.Service
	Logger *logrus.Logger
}

func NewUserHandler(svc *userapp.Service, logger *logrus.Logger) *UserHandler {
	return &UserHandler{Svc: svc, Logger: logger}
}

// Root answers the liveness probe.
func Root(c *gin.Context) {
	c.String(http.StatusOK, "Hello World!")
}

// bind decodes the JSON body into dst. An empty body decodes as an empty object.
func (h *UserHandler) bind(c *gin.Context, dst userapp.Request) bool {
	if err := c.ShouldBindJSON(dst); err != nil && !errors.Is(err, io.EOF) {
		h.respondError(c, h.Svc.DecodeError(dst, err))
		return false
	}
	return true
}

func (h *UserHandler) userID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("userId"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "userId must be a number", msgValidationFailed)
		return 0, false
	}
	return id, true
}

func (h *UserHandler) respondError(c *gin.Context, err error) {
	var verr *userapp.ValidationError
	switch {
	case errors.As(err, &verr):
		response.Error(c, http.StatusBadRequest, verr.Error(), msgValidationFailed)
	case errors.Is(err, userapp.ErrUserAlreadyExists):
		// A duplicate is answered with 200 and success=false.
		response.Error(c, http.StatusOK, msgUserExists, msgUserExists)
	case errors.Is(err, userapp.ErrUserNotFound):
		response.Error(c, http.StatusNotFound, msgUserNotFound, msgUserNotFound)
	default:
		h.respondInternal(c, err)
	}
}

func (h *UserHandler) respondInternal(c *gin.Context, err error) {
	if h.Logger != nil {
		helpers.LogError(h.Logger, "request failed", err, logrus.Fields{
			"method":     c.Request.Method,
			"path":       c.FullPath(),
			"request_id": c.GetString("request_id"),
		})
	}
	response.Error(c, http.StatusInternalServerError, "something went wrong", "internal error")
}

func (h *UserHandler) Create(c *gin.Context) {
	var req userapp.CreateUserRequest
	if !h.bind(c, &req) {
		return
	}
	u, err := h.Svc.Create(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, u, "User created successfully")
}

func (h *UserHandler) List(c *gin.Context) {
	users, err := h.Svc.List(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, users, "Users fetched successfully")
}

func (h *UserHandler) Get(c *gin.Context) {
	id, ok := h.userID(c)
	if !ok {
		return
	}
	u, err := h.Svc.Get(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, u, "user fetch successfully")
}

func (h *UserHandler) Update(c *gin.Context) {
	id, ok := h.userID(c)
	if !ok {
		return
	}
	var req userapp.UpdateUserRequest
	if !h.bind(c, &req) {
		return
	}
	u, err := h.Svc.Update(c.Request.Context(), id, req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, u, "User updated successfully")
}

func (h *UserHandler) Delete(c *gin.Context) {
	id, ok := h.userID(c)
	if !ok {
		return
	}
	n, err := h.Svc.Delete(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deletedCount": n}, "user successfully permanently delete")
}

func (h *UserHandler) Orders(c *gin.Context) {
	id, ok := h.userID(c)
	if !ok {
		return
	}
	orders, err := h.Svc.Orders(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"orders": orders}, "user's orders fetch successfully")
}

func (h *UserHandler) TotalPrice(c *gin.Context) {
	id, ok := h.userID(c)
	if !ok {
		return
	}
	total, err := h.Svc.TotalOrderPrice(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"totalOrdersPrice": total}, "user's orders total price fetch successfully")
}

// Search queries the user search index: GET /api/users/search?q=...&size=10
func (h *UserHandler) Search(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		response.Error(c, http.StatusBadRequest, "q is Required", "invalid search query")
		return
	}
	size, _ := strconv.Atoi(c.DefaultQuery("size", "10"))

	hits, err := h.Svc.SearchUsers(c.Request.Context(), q, size)
	if err != nil {
		h.respondInternal(c, err)
		return
	}
	response.Success(c, http.StatusOK, hits, "Users search results")
}
