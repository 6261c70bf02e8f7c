package pools

import (
	"context"
	"errors"
	"net/http"

	"slotly/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Allocator is the pool lifecycle entry point. Satisfied by the allocation
// gateway, which serializes teardown with in-flight allocations.
type Allocator interface {
	CreatePool(ctx context.Context, request *CreatePoolRequest) (*PoolResponse, error)
	GetPool(ctx context.Context, id uuid.UUID) (*PoolResponse, error)
	DeletePool(ctx context.Context, id uuid.UUID) error
	AddTopic(ctx context.Context, poolID uuid.UUID, request *AddTopicRequest) (*TopicResponse, error)
	ListTopics(ctx context.Context, poolID uuid.UUID) ([]TopicResponse, error)
	DeleteTopic(ctx context.Context, poolID, topicID uuid.UUID) error
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

// CreatePool handles POST /api/v1/pools
func (c *Controller) CreatePool(ctx *gin.Context) {
	var req CreatePoolRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}
	if err := c.validator.Struct(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Validation failed", nil, response.FormatValidationErrors(err))
		return
	}

	pool, err := c.allocator.CreatePool(ctx.Request.Context(), &req)
	if err != nil {
		c.respondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusCreated, "Pool created", pool, nil)
}

// GetPool handles GET /api/v1/pools/:pool_id
func (c *Controller) GetPool(ctx *gin.Context) {
	poolID, ok := c.parsePoolID(ctx)
	if !ok {
		return
	}

	pool, err := c.allocator.GetPool(ctx.Request.Context(), poolID)
	if err != nil {
		c.respondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Pool retrieved", pool, nil)
}

// DeletePool handles DELETE /api/v1/pools/:pool_id
func (c *Controller) DeletePool(ctx *gin.Context) {
	poolID, ok := c.parsePoolID(ctx)
	if !ok {
		return
	}

	if err := c.allocator.DeletePool(ctx.Request.Context(), poolID); err != nil {
		c.respondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Pool deleted", nil, nil)
}

// AddTopic handles POST /api/v1/pools/:pool_id/topics
func (c *Controller) AddTopic(ctx *gin.Context) {
	poolID, ok := c.parsePoolID(ctx)
	if !ok {
		return
	}

	var req AddTopicRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}
	if err := c.validator.Struct(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Validation failed", nil, response.FormatValidationErrors(err))
		return
	}

	topic, err := c.allocator.AddTopic(ctx.Request.Context(), poolID, &req)
	if err != nil {
		c.respondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusCreated, "Topic added", topic, nil)
}

// ListTopics handles GET /api/v1/pools/:pool_id/topics
func (c *Controller) ListTopics(ctx *gin.Context) {
	poolID, ok := c.parsePoolID(ctx)
	if !ok {
		return
	}

	topics, err := c.allocator.ListTopics(ctx.Request.Context(), poolID)
	if err != nil {
		c.respondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Topics retrieved", topics, nil)
}

// DeleteTopic handles DELETE /api/v1/pools/:pool_id/topics/:topic_id
func (c *Controller) DeleteTopic(ctx *gin.Context) {
	poolID, ok := c.parsePoolID(ctx)
	if !ok {
		return
	}
	topicID, err := uuid.Parse(ctx.Param("topic_id"))
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid topic ID", nil, nil)
		return
	}

	if err := c.allocator.DeleteTopic(ctx.Request.Context(), poolID, topicID); err != nil {
		c.respondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Topic deleted", nil, nil)
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
	case errors.Is(err, ErrPoolNotFound):
		response.RespondJSON(ctx, "error", http.StatusNotFound, "Pool not found", nil, err.Error())
	case errors.Is(err, ErrTopicNotFound):
		response.RespondJSON(ctx, "error", http.StatusNotFound, "Topic not found", nil, err.Error())
	case errors.Is(err, ErrWrongKind):
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Operation does not match pool kind", nil, err.Error())
	case errors.Is(err, ErrInvalidPool):
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid pool configuration", nil, err.Error())
	case errors.Is(err, ErrUnavailable):
		response.RespondJSON(ctx, "error", http.StatusServiceUnavailable, "Allocation engine unavailable", nil, err.Error())
	default:
		response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Internal server error", nil, err.Error())
	}
}
