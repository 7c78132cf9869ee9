package http_user

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	http_common "github.com/scrumpoker/core/internal/delivery/http/common"
	usecase_user "github.com/scrumpoker/core/internal/usecase/user"
)

type Controller struct {
	usecase *usecase_user.Usecase
	logger  *slog.Logger
}

func New(usecase *usecase_user.Usecase) *Controller {
	return &Controller{
		usecase: usecase,
		logger:  slog.Default(),
	}
}

func (c *Controller) RegisterRoutes(router *gin.RouterGroup) {
	users := router.Group("/users")
	{
		users.POST("", c.register)
		users.GET("", c.list)
		users.GET("/check/:username", c.check)
		users.DELETE("/:username", c.remove)
	}
}

type RegisterUserRequestDTO struct {
	Username string `json:"username" binding:"required"`
}

type UserDTO struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

func (c *Controller) register(ctx *gin.Context) {
	var req RegisterUserRequestDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, http_common.Error("username is required"))
		return
	}

	user, err := c.usecase.Register(ctx, req.Username)
	if err != nil {
		c.logger.Error("failed to register user", slog.String("error", err.Error()))
		switch {
		case errors.Is(err, usecase_user.ErrInvalidUsername):
			ctx.JSON(http.StatusBadRequest, http_common.Error(err.Error()))
		case errors.Is(err, usecase_user.ErrUsernameTaken):
			ctx.JSON(http.StatusConflict, http_common.Error("username already in use"))
		default:
			ctx.JSON(http.StatusInternalServerError, http_common.Error("internal error"))
		}
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"message": "user registered",
		"user":    UserDTO{ID: user.ID, Username: user.Username},
	})
}

func (c *Controller) list(ctx *gin.Context) {
	users, err := c.usecase.List(ctx)
	if err != nil {
		c.logger.Error("failed to list users", slog.String("error", err.Error()))
		ctx.JSON(http.StatusInternalServerError, http_common.Error("internal error"))
		return
	}

	dtos := make([]UserDTO, 0, len(users))
	for _, u := range users {
		dtos = append(dtos, UserDTO{ID: u.ID, Username: u.Username})
	}
	ctx.JSON(http.StatusOK, gin.H{
		"users": dtos,
		"count": len(dtos),
	})
}

func (c *Controller) check(ctx *gin.Context) {
	username := ctx.Param("username")

	exists, err := c.usecase.Exists(ctx, username)
	if err != nil {
		c.logger.Error("failed to check user", slog.String("error", err.Error()))
		ctx.JSON(http.StatusInternalServerError, http_common.Error("internal error"))
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"exists":   exists,
		"username": username,
	})
}

func (c *Controller) remove(ctx *gin.Context) {
	username := ctx.Param("username")

	if err := c.usecase.Delete(ctx, username); err != nil {
		if errors.Is(err, usecase_user.ErrUserNotFound) {
			ctx.JSON(http.StatusNotFound, http_common.Error("user not found"))
			return
		}
		c.logger.Error("failed to delete user", slog.String("error", err.Error()))
		ctx.JSON(http.StatusInternalServerError, http_common.Error("internal error"))
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "user deleted"})
}
