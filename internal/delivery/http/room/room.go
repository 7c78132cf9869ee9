package http_room

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	qrcode "github.com/skip2/go-qrcode"

	http_common "github.com/scrumpoker/core/internal/delivery/http/common"
	"github.com/scrumpoker/core/internal/model"
	usecase_room "github.com/scrumpoker/core/internal/usecase/room"
)

type Controller struct {
	usecase   *usecase_room.Usecase
	publicURL string
	logger    *slog.Logger
}

func New(usecase *usecase_room.Usecase, publicURL string) *Controller {
	return &Controller{
		usecase:   usecase,
		publicURL: publicURL,
		logger:    slog.Default(),
	}
}

func (c *Controller) RegisterRoutes(router *gin.RouterGroup) {
	rooms := router.Group("/rooms")
	{
		rooms.POST("", c.create)
		rooms.GET("", c.list)
		rooms.GET("/:room_code", c.get)
		rooms.GET("/:room_code/qr", c.qr)
		rooms.POST("/:room_code/join", c.join)
		rooms.POST("/:room_code/leave", c.leave)
		rooms.DELETE("/:room_code", c.remove)
	}
}

type CreateRoomRequestDTO struct {
	RoomName        string `json:"roomName" binding:"required"`
	CreatedBy       string `json:"createdBy" binding:"required"`
	Username        string `json:"username"`
	MaxParticipants int    `json:"maxParticipants"`
}

type RoomSummaryDTO struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Code             string    `json:"code"`
	CreatedBy        string    `json:"createdBy"`
	CreatedAt        time.Time `json:"createdAt"`
	MaxParticipants  int       `json:"maxParticipants"`
	ParticipantCount int       `json:"participantCount"`
	Status           string    `json:"status"`
}

type RoomDetailDTO struct {
	RoomSummaryDTO
	Participants []model.Participant `json:"participants"`
	CurrentStory string              `json:"currentStory,omitempty"`
}

func summaryDTO(s model.RoomSummary) RoomSummaryDTO {
	return RoomSummaryDTO{
		ID:               s.Code,
		Name:             s.Name,
		Code:             s.Code,
		CreatedBy:        s.CreatedBy,
		CreatedAt:        s.CreatedAt,
		MaxParticipants:  s.MaxParticipants,
		ParticipantCount: s.ParticipantCount,
		Status:           string(s.Status),
	}
}

func (c *Controller) create(ctx *gin.Context) {
	var req CreateRoomRequestDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, http_common.Error("room name and creator are required"))
		return
	}

	creator := model.Participant{ID: req.CreatedBy, Username: req.Username}
	summary, err := c.usecase.Create(ctx, req.RoomName, creator, req.MaxParticipants)
	if err != nil {
		c.logger.Error("failed to create room", slog.String("error", err.Error()))
		switch {
		case errors.Is(err, usecase_room.ErrInvalidName), errors.Is(err, usecase_room.ErrMissingCreator):
			ctx.JSON(http.StatusBadRequest, http_common.Error(err.Error()))
		default:
			ctx.JSON(http.StatusInternalServerError, http_common.Error("internal error"))
		}
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"message": "room created",
		"room":    summaryDTO(summary),
	})
}

func (c *Controller) list(ctx *gin.Context) {
	summaries, err := c.usecase.List(ctx)
	if err != nil {
		c.logger.Error("failed to list rooms", slog.String("error", err.Error()))
		ctx.JSON(http.StatusInternalServerError, http_common.Error("internal error"))
		return
	}

	dtos := make([]RoomSummaryDTO, 0, len(summaries))
	for _, s := range summaries {
		dtos = append(dtos, summaryDTO(s))
	}
	ctx.JSON(http.StatusOK, gin.H{
		"rooms": dtos,
		"count": len(dtos),
	})
}

func (c *Controller) get(ctx *gin.Context) {
	code := ctx.Param("room_code")

	room, err := c.usecase.ByCode(ctx, code)
	if err != nil {
		if errors.Is(err, usecase_room.ErrRoomNotFound) {
			ctx.JSON(http.StatusNotFound, http_common.Error("room not found"))
			return
		}
		c.logger.Error("failed to get room", slog.String("error", err.Error()))
		ctx.JSON(http.StatusInternalServerError, http_common.Error("internal error"))
		return
	}

	// Vote values are deliberately absent here: they only leave the
	// store through the reveal broadcast.
	ctx.JSON(http.StatusOK, gin.H{
		"room": RoomDetailDTO{
			RoomSummaryDTO: summaryDTO(room.Summary()),
			Participants:   room.Participants,
			CurrentStory:   room.CurrentStory,
		},
	})
}

// qr renders the join link for a room as a PNG for sharing on a
// physical screen during planning.
func (c *Controller) qr(ctx *gin.Context) {
	code := ctx.Param("room_code")

	if _, err := c.usecase.ByCode(ctx, code); err != nil {
		if errors.Is(err, usecase_room.ErrRoomNotFound) {
			ctx.JSON(http.StatusNotFound, http_common.Error("room not found"))
			return
		}
		c.logger.Error("failed to get room", slog.String("error", err.Error()))
		ctx.JSON(http.StatusInternalServerError, http_common.Error("internal error"))
		return
	}

	joinURL := fmt.Sprintf("%s/join/%s", c.publicURL, code)
	png, err := qrcode.Encode(joinURL, qrcode.Medium, 256)
	if err != nil {
		c.logger.Error("failed to encode qr", slog.String("error", err.Error()))
		ctx.JSON(http.StatusInternalServerError, http_common.Error("internal error"))
		return
	}
	ctx.Data(http.StatusOK, "image/png", png)
}

type JoinRoomRequestDTO struct {
	UserID   string `json:"userId" binding:"required"`
	Username string `json:"username" binding:"required"`
}

func (c *Controller) join(ctx *gin.Context) {
	code := ctx.Param("room_code")

	var req JoinRoomRequestDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, http_common.Error("user id and username are required"))
		return
	}

	summary, err := c.usecase.Join(ctx, code, model.Participant{ID: req.UserID, Username: req.Username})
	if err != nil {
		c.logger.Error("failed to join room", slog.String("error", err.Error()), slog.String("room", code))
		switch {
		case errors.Is(err, usecase_room.ErrRoomNotFound):
			ctx.JSON(http.StatusNotFound, http_common.Error("room not found"))
		case errors.Is(err, usecase_room.ErrRoomFull):
			ctx.JSON(http.StatusConflict, http_common.Error("room is full"))
		case errors.Is(err, usecase_room.ErrAlreadyJoined):
			ctx.JSON(http.StatusConflict, http_common.Error("user is already in the room"))
		default:
			ctx.JSON(http.StatusInternalServerError, http_common.Error("internal error"))
		}
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message": "joined room",
		"room":    summaryDTO(summary),
	})
}

type LeaveRoomRequestDTO struct {
	UserID string `json:"userId" binding:"required"`
}

func (c *Controller) leave(ctx *gin.Context) {
	code := ctx.Param("room_code")

	var req LeaveRoomRequestDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, http_common.Error("user id is required"))
		return
	}

	summary, deleted, err := c.usecase.Leave(ctx, code, req.UserID)
	if err != nil {
		c.logger.Error("failed to leave room", slog.String("error", err.Error()), slog.String("room", code))
		switch {
		case errors.Is(err, usecase_room.ErrRoomNotFound):
			ctx.JSON(http.StatusNotFound, http_common.Error("room not found"))
		case errors.Is(err, usecase_room.ErrParticipantNotFound):
			ctx.JSON(http.StatusNotFound, http_common.Error("user not found in room"))
		default:
			ctx.JSON(http.StatusInternalServerError, http_common.Error("internal error"))
		}
		return
	}

	if deleted {
		ctx.JSON(http.StatusOK, gin.H{
			"message": "left room; the empty room was deleted",
		})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"message": "left room",
		"room":    summaryDTO(summary),
	})
}

type DeleteRoomRequestDTO struct {
	UserID string `json:"userId" binding:"required"`
}

func (c *Controller) remove(ctx *gin.Context) {
	code := ctx.Param("room_code")

	var req DeleteRoomRequestDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, http_common.Error("user id is required"))
		return
	}

	if err := c.usecase.Delete(ctx, code, req.UserID); err != nil {
		c.logger.Error("failed to delete room", slog.String("error", err.Error()), slog.String("room", code))
		switch {
		case errors.Is(err, usecase_room.ErrRoomNotFound):
			ctx.JSON(http.StatusNotFound, http_common.Error("room not found"))
		case errors.Is(err, usecase_room.ErrForbidden):
			ctx.JSON(http.StatusForbidden, http_common.Error("only the room creator may delete it"))
		default:
			ctx.JSON(http.StatusInternalServerError, http_common.Error("internal error"))
		}
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "room deleted"})
}
