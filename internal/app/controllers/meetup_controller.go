package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/campusmeet/backend/internal/app/models/dto"
	"github.com/campusmeet/backend/internal/app/services"
	"github.com/campusmeet/backend/internal/middleware"
	"github.com/campusmeet/backend/internal/pkg/apperrors"
)

// MeetupController handles meetup and membership operations
type MeetupController struct {
	membershipService services.MembershipService
}

// NewMeetupController creates a new MeetupController
func NewMeetupController(membershipService services.MembershipService) *MeetupController {
	return &MeetupController{
		membershipService: membershipService,
	}
}

// GetOverview handles the meetups landing state
// @Summary Get the meetup overview
// @Description A member gets their meetup in full; everyone else gets the summary list. The token is reissued either way.
// @Tags meetups
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.MeetupOverviewResponse "Overview retrieved"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized: JWT token missing or invalid"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /meetups [get]
func (c *MeetupController) GetOverview(ctx *gin.Context) {
	resp, err := c.membershipService.Overview(ctx.Request.Context(), currentUserID(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// CreateMeetup handles meetup creation
// @Summary Create a meetup
// @Description Creates a meetup and admits the caller as its first member. Callers already occupying a meetup are rejected and nothing is created.
// @Tags meetups
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateMeetupRequest true "Meetup attributes"
// @Success 201 {object} dto.SnapshotResponse "Meetup created"
// @Failure 400 {object} dto.ErrorResponse "Invalid meetup attributes"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized: JWT token missing or invalid"
// @Failure 409 {object} dto.ErrorResponse "Caller already occupies a meetup"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /meetups [post]
func (c *MeetupController) CreateMeetup(ctx *gin.Context) {
	var req dto.CreateMeetupRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid meetup attributes"),
		))
		return
	}

	resp, err := c.membershipService.CreateMeetup(ctx.Request.Context(), currentUserID(ctx), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, resp)
}

// JoinMeetup handles admission into a meetup
// @Summary Join a meetup
// @Description Admits the caller if the meetup exists, the caller is unaffiliated and a seat is free. All three are checked atomically.
// @Tags meetups
// @Produce json
// @Security BearerAuth
// @Param id path int true "Meetup ID"
// @Success 200 {object} dto.SnapshotResponse "Joined"
// @Failure 400 {object} dto.ErrorResponse "Invalid meetup ID"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized: JWT token missing or invalid"
// @Failure 404 {object} dto.ErrorResponse "Meetup not found"
// @Failure 409 {object} dto.ErrorResponse "Meetup full or caller already a member"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /meetups/{id}/join [post]
func (c *MeetupController) JoinMeetup(ctx *gin.Context) {
	meetupID, err := parseMeetupID(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	resp, err := c.membershipService.JoinMeetup(ctx.Request.Context(), currentUserID(ctx), meetupID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// LeaveMeetup handles leaving the current meetup
// @Summary Leave the current meetup
// @Description Removes the caller from their meetup. The meetup stays alive even at occupancy zero.
// @Tags meetups
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.SnapshotResponse "Left"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized: JWT token missing or invalid"
// @Failure 403 {object} dto.ErrorResponse "Caller is not a member of any meetup"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /meetups/leave [post]
func (c *MeetupController) LeaveMeetup(ctx *gin.Context) {
	resp, err := c.membershipService.LeaveMeetup(ctx.Request.Context(), currentUserID(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// GetSnapshot handles session snapshot reads
// @Summary Get the session snapshot
// @Description Returns the caller's user projection, their meetup (if any) and a fresh token.
// @Tags meetups
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.SnapshotResponse "Snapshot retrieved"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized: JWT token missing or invalid"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /session [get]
func (c *MeetupController) GetSnapshot(ctx *gin.Context) {
	resp, err := c.membershipService.Snapshot(ctx.Request.Context(), currentUserID(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

func currentUserID(ctx *gin.Context) string {
	userID, _ := ctx.Get("userID")
	id, _ := userID.(string)
	return id
}

func parseMeetupID(ctx *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.ErrBadRequest
	}
	return id, nil
}
