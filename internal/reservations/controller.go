package reservations

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

// Allocator is the mutation entry point for reservations. Satisfied by the
// allocation gateway, which serializes mutations per owning pool.
type Allocator interface {
	ClaimReservation(ctx context.Context, topicID uuid.UUID, participantID int64) (*ReservationResponse, error)
	ConfirmReservation(ctx context.Context, topicID uuid.UUID, participantID, confirmerID int64) (*ReservationResponse, error)
	ReleaseReservation(ctx context.Context, topicID uuid.UUID, participantID int64) error
	ListTopicReservations(ctx context.Context, topicID uuid.UUID) (*TopicReservationsResponse, error)
	ListPoolReservations(ctx context.Context, poolID uuid.UUID) (*PoolReservationsResponse, error)
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

// Claim handles POST /api/v1/topics/:topic_id/reservations
func (c *Controller) Claim(ctx *gin.Context) {
	topicID, ok := parseUUIDParam(ctx, "topic_id", "Invalid topic ID")
	if !ok {
		return
	}

	var req ClaimRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}
	if err := c.validator.Struct(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Validation failed", nil, response.FormatValidationErrors(err))
		return
	}

	reservation, err := c.allocator.ClaimReservation(ctx.Request.Context(), topicID, req.ParticipantID)
	if err != nil {
		c.respondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusCreated, "Reservation claimed", reservation, nil)
}

// Confirm handles POST /api/v1/topics/:topic_id/reservations/:participant_id/confirm
func (c *Controller) Confirm(ctx *gin.Context) {
	topicID, ok := parseUUIDParam(ctx, "topic_id", "Invalid topic ID")
	if !ok {
		return
	}
	participantID, ok := parseParticipantParam(ctx)
	if !ok {
		return
	}

	var req ConfirmRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}
	if err := c.validator.Struct(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Validation failed", nil, response.FormatValidationErrors(err))
		return
	}

	reservation, err := c.allocator.ConfirmReservation(ctx.Request.Context(), topicID, participantID, req.ConfirmerID)
	if err != nil {
		c.respondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Reservation confirmed", reservation, nil)
}

// Release handles DELETE /api/v1/topics/:topic_id/reservations/:participant_id
func (c *Controller) Release(ctx *gin.Context) {
	topicID, ok := parseUUIDParam(ctx, "topic_id", "Invalid topic ID")
	if !ok {
		return
	}
	participantID, ok := parseParticipantParam(ctx)
	if !ok {
		return
	}

	if err := c.allocator.ReleaseReservation(ctx.Request.Context(), topicID, participantID); err != nil {
		c.respondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Reservation released", nil, nil)
}

// ListByTopic handles GET /api/v1/topics/:topic_id/reservations
func (c *Controller) ListByTopic(ctx *gin.Context) {
	topicID, ok := parseUUIDParam(ctx, "topic_id", "Invalid topic ID")
	if !ok {
		return
	}

	view, err := c.allocator.ListTopicReservations(ctx.Request.Context(), topicID)
	if err != nil {
		c.respondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Reservations retrieved", view, nil)
}

// ListByPool handles GET /api/v1/pools/:pool_id/reservations
func (c *Controller) ListByPool(ctx *gin.Context) {
	poolID, ok := parseUUIDParam(ctx, "pool_id", "Invalid pool ID")
	if !ok {
		return
	}

	view, err := c.allocator.ListPoolReservations(ctx.Request.Context(), poolID)
	if err != nil {
		c.respondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Pool availability retrieved", view, nil)
}

func parseUUIDParam(ctx *gin.Context, name, message string) (uuid.UUID, bool) {
	id, err := uuid.Parse(ctx.Param(name))
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, message, nil, nil)
		return uuid.Nil, false
	}
	return id, true
}

func parseParticipantParam(ctx *gin.Context) (int64, bool) {
	participantID, err := strconv.ParseInt(ctx.Param("participant_id"), 10, 64)
	if err != nil || participantID <= 0 {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid participant ID", nil, nil)
		return 0, false
	}
	return participantID, true
}

func (c *Controller) respondError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrAlreadyReserved):
		response.RespondJSON(ctx, "error", http.StatusConflict, "Participant already reserved this topic", nil, err.Error())
	case errors.Is(err, ErrTopicFull):
		response.RespondJSON(ctx, "error", http.StatusConflict, "Topic has no remaining capacity", nil, err.Error())
	case errors.Is(err, ErrReservationNotFound):
		response.RespondJSON(ctx, "error", http.StatusNotFound, "Reservation not found", nil, err.Error())
	case errors.Is(err, pools.ErrTopicNotFound):
		response.RespondJSON(ctx, "error", http.StatusNotFound, "Topic not found", nil, err.Error())
	case errors.Is(err, pools.ErrPoolNotFound):
		response.RespondJSON(ctx, "error", http.StatusNotFound, "Pool not found", nil, err.Error())
	case errors.Is(err, pools.ErrWrongKind):
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Pool is not a reservation set", nil, err.Error())
	case errors.Is(err, pools.ErrUnavailable):
		response.RespondJSON(ctx, "error", http.StatusServiceUnavailable, "Allocation engine unavailable", nil, err.Error())
	default:
		response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Internal server error", nil, err.Error())
	}
}
