package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campusmeet/backend/internal/app/models/dto"
	"github.com/campusmeet/backend/internal/app/services"
	"github.com/campusmeet/backend/internal/middleware"
)

// ChatController handles transcript operations
type ChatController struct {
	chatService services.ChatService
}

// NewChatController creates a new ChatController
func NewChatController(chatService services.ChatService) *ChatController {
	return &ChatController{
		chatService: chatService,
	}
}

// GetTranscript handles transcript reads
// @Summary Read a meetup transcript page
// @Description Returns one cursor page of the transcript in causal order. Only current members may read.
// @Tags chat
// @Produce json
// @Security BearerAuth
// @Param id path int true "Meetup ID"
// @Param before query int false "Entry ID cursor; the page ends just before it"
// @Param limit query int false "Page size (default: 50, max: 200)" default(50) minimum(1) maximum(200)
// @Success 200 {object} dto.ChatPageResponse "Transcript page retrieved"
// @Failure 400 {object} dto.ErrorResponse "Invalid parameters"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized: JWT token missing or invalid"
// @Failure 403 {object} dto.ErrorResponse "Caller is not a member of this meetup"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /meetups/{id}/chat [get]
func (c *ChatController) GetTranscript(ctx *gin.Context) {
	meetupID, err := parseMeetupID(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	var req dto.GetChatRequest
	if err := ctx.ShouldBindQuery(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid query parameters"),
		))
		return
	}

	resp, err := c.chatService.Transcript(ctx.Request.Context(), currentUserID(ctx), meetupID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// AppendChat handles appending a chat entry over HTTP
// @Summary Append a chat entry
// @Description Records one chat line in the meetup transcript and fans it out on the meetup channel.
// @Tags chat
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Meetup ID"
// @Param request body dto.AppendChatRequest true "Chat line"
// @Success 201 {object} dto.ChatEntryResponse "Entry appended"
// @Failure 400 {object} dto.ErrorResponse "Invalid or blank chat line"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized: JWT token missing or invalid"
// @Failure 404 {object} dto.ErrorResponse "Meetup not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /meetups/{id}/chat [post]
func (c *ChatController) AppendChat(ctx *gin.Context) {
	meetupID, err := parseMeetupID(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	var req dto.AppendChatRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid request body"),
		))
		return
	}

	resp, err := c.chatService.Append(ctx.Request.Context(), currentUserID(ctx), meetupID, req.Text)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, resp)
}
