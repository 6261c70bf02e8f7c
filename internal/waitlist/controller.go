package waitlist

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"slotly/internal/pools"
	"slotly/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Allocator is the mutation entry point for waitlists. Satisfied by the
// allocation gateway, which serializes mutations per pool.
type Allocator interface {
	JoinWaitlist(ctx context.Context, poolID uuid.UUID, participantID int64) (*JoinResponse, error)
	LeaveWaitlist(ctx context.Context, poolID uuid.UUID, participantID int64) error
	ViewWaitlist(ctx context.Context, poolID uuid.UUID) (*ViewResponse, error)
	WaitlistStats(ctx context.Context, poolID uuid.UUID) (*StatsResponse, error)
}

type Controller struct {
	allocator Allocator
	validator *validator.Validate
}

func NewController(allocator Allocator) *Controller {
	return &Controller{
		allocator: allocator,
		validator: validator.New(),
	}
}

// Join handles POST /api/v1/waitlists/:pool_id/join
func (c *Controller) Join(ctx *gin.Context) {
	poolID, ok := c.parsePoolID(ctx)
	if !ok {
		return
	}

	var req JoinRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	if err := c.validator.Struct(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Validation failed", nil, response.FormatValidationErrors(err))
		return
	}

	result, err := c.allocator.JoinWaitlist(ctx.Request.Context(), poolID, req.ParticipantID)
	if err != nil {
		c.respondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusCreated, "Joined waitlist", result, nil)
}

// Leave handles DELETE /api/v1/waitlists/:pool_id/members/:participant_id
func (c *Controller) Leave(ctx *gin.Context) {
	poolID, ok := c.parsePoolID(ctx)
	if !ok {
		return
	}

	participantID, err := strconv.ParseInt(ctx.Param("participant_id"), 10, 64)
	if err != nil || participantID <= 0 {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid participant ID", nil, nil)
		return
	}

	if err := c.allocator.LeaveWaitlist(ctx.Request.Context(), poolID, participantID); err != nil {
		c.respondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Left waitlist", nil, nil)
}

// View handles GET /api/v1/waitlists/:pool_id
func (c *Controller) View(ctx *gin.Context) {
	poolID, ok := c.parsePoolID(ctx)
	if !ok {
		return
	}

	view, err := c.allocator.ViewWaitlist(ctx.Request.Context(), poolID)
	if err != nil {
		c.respondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Waitlist retrieved", view, nil)
}

// Stats handles GET /api/v1/waitlists/:pool_id/stats
func (c *Controller) Stats(ctx *gin.Context) {
	poolID, ok := c.parsePoolID(ctx)
	if !ok {
		return
	}

	stats, err := c.allocator.WaitlistStats(ctx.Request.Context(), poolID)
	if err != nil {
		c.respondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Waitlist stats retrieved", stats, nil)
}

func (c *Controller) parsePoolID(ctx *gin.Context) (uuid.UUID, bool) {
	poolID, err := uuid.Parse(ctx.Param("pool_id"))
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid pool ID", nil, nil)
		return uuid.Nil, false
	}
	return poolID, true
}

func (c *Controller) respondError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrAlreadyMember):
		response.RespondJSON(ctx, "error", http.StatusConflict, "Participant already holds a slot", nil, err.Error())
	case errors.Is(err, ErrFull):
		response.RespondJSON(ctx, "error", http.StatusConflict, "Waitlist is full", nil, err.Error())
	case errors.Is(err, ErrNotMember):
		response.RespondJSON(ctx, "error", http.StatusNotFound, "Participant is not on the waitlist", nil, err.Error())
	case errors.Is(err, pools.ErrPoolNotFound):
		response.RespondJSON(ctx, "error", http.StatusNotFound, "Pool not found", nil, err.Error())
	case errors.Is(err, pools.ErrWrongKind):
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Pool is not a waitlist", nil, err.Error())
	case errors.Is(err, pools.ErrUnavailable):
		response.RespondJSON(ctx, "error", http.StatusServiceUnavailable, "Allocation engine unavailable", nil, err.Error())
	default:
		response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Internal server error", nil, err.Error())
	}
}
