package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	userapp "github.com/oksasatya/user-account-service/internal/application"
	"github.com/oksasatya/user-account-service/internal/domain/entity"
	"github.com/oksasatya/user-account-service/pkg/response"
	"github.com/oksasatya/user-account-service/pkg/validation"
)

// UserService is the application surface the handlers call.
type UserService interface {
	CreateUser(ctx context.Context, in userapp.CreateUserInput) (*entity.User, error)
	Authenticate(ctx context.Context, email, password string) (string, error)
	ListUsers(ctx context.Context) ([]*entity.User, error)
	UpdateUser(ctx context.Context, userID string, in userapp.UpdateUserInput) (*entity.User, error)
	DeleteUser(ctx context.Context, userID string) error
	SearchUsers(ctx context.Context, q string, size int) ([]*entity.User, error)
}

type UserHandler struct {
	Svc    UserService
	Logger *logrus.Logger
}

func NewUserHandler(svc UserService, logger *logrus.Logger) *UserHandler {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &UserHandler{Svc: svc, Logger: logger}
}

type createUserRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type authenticateRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Absent fields stay nil and are left untouched by the update.
type updateUserRequest struct {
	Password  *string `json:"password"`
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
}

// CreateUser POST /api/user
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	u, err := h.Svc.CreateUser(c.Request.Context(), userapp.CreateUserInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		h.fail(c, "create user", createStatus, err)
		return
	}
	c.JSON(http.StatusCreated, u)
}

// Authenticate POST /api/user/auth. The token is returned as the raw body.
func (h *UserHandler) Authenticate(c *gin.Context) {
	var req authenticateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	token, err := h.Svc.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.fail(c, "authenticate", authenticateStatus, err)
		return
	}
	c.String(http.StatusCreated, token)
}

// ListUsers GET /api/user
func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.Svc.ListUsers(c.Request.Context())
	if err != nil {
		h.fail(c, "list users", listStatus, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// UpdateUser PUT /api/user/:userId
func (h *UserHandler) UpdateUser(c *gin.Context) {
	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	u, err := h.Svc.UpdateUser(c.Request.Context(), c.Param("userId"), userapp.UpdateUserInput{
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		h.fail(c, "update user", updateStatus, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

// DeleteUser DELETE /api/user/:userId
func (h *UserHandler) DeleteUser(c *gin.Context) {
	if err := h.Svc.DeleteUser(c.Request.Context(), c.Param("userId")); err != nil {
		h.fail(c, "delete user", deleteStatus, err)
		return
	}
	response.Success[any](c, http.StatusOK, nil, "user deleted", nil)
}

// SearchUsers GET /api/user/search?q=&size=
func (h *UserHandler) SearchUsers(c *gin.Context) {
	size, _ := strconv.Atoi(c.Query("size"))
	users, err := h.Svc.SearchUsers(c.Request.Context(), c.Query("q"), size)
	if err != nil {
		h.fail(c, "search users", listStatus, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *UserHandler) fail(c *gin.Context, op string, statusOf func(userapp.Kind) int, err error) {
	kind := userapp.KindOf(err)
	status := statusOf(kind)
	h.Logger.WithFields(logrus.Fields{
		"op":         op,
		"kind":       kind,
		"status":     status,
		"request_id": c.GetString("request_id"),
	}).Warn("request failed")
	response.Error[any](c, status, messageFor(status), nil)
}

func createStatus(k userapp.Kind) int {
	switch k {
	case userapp.KindValidationFailure, userapp.KindInvalidEmail:
		return http.StatusBadRequest
	case userapp.KindRegistrationDisabled:
		return http.StatusForbidden
	case userapp.KindEmailExists:
		return http.StatusConflict
	case userapp.KindHashingFailure:
		return http.StatusUnprocessableEntity
	case userapp.KindDatabaseError:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// A wrong password and an unknown email look the same to the client.
func authenticateStatus(k userapp.Kind) int {
	switch k {
	case userapp.KindInvalidUser, userapp.KindValidationFailure:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func updateStatus(k userapp.Kind) int {
	switch k {
	case userapp.KindValidationFailure:
		return http.StatusBadRequest
	case userapp.KindInvalidUser:
		return http.StatusNotFound
	case userapp.KindHashingFailure:
		return http.StatusUnprocessableEntity
	case userapp.KindDatabaseError:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func deleteStatus(k userapp.Kind) int {
	switch k {
	case userapp.KindInvalidUser:
		return http.StatusNotFound
	case userapp.KindDatabaseError:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func listStatus(userapp.Kind) int {
	return http.StatusInternalServerError
}

func messageFor(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "validation failed"
	case http.StatusForbidden:
		return "user registration is disabled"
	case http.StatusNotFound:
		return "user not found"
	case http.StatusConflict:
		return "email already exists"
	case http.StatusUnprocessableEntity:
		return "unable to process password"
	case http.StatusServiceUnavailable:
		return "service unavailable"
	default:
		return "unknown error"
	}
}
