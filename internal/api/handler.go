package api

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/quotedesk/rfq-client/pkg/model"
)

// RFQService defines the lifecycle operations the handler needs.
type RFQService interface {
	Create(ctx context.Context, input model.CreateRFQInput) (*model.RFQ, error)
	Get(ctx context.Context, id string) (*model.RFQ, error)
	Update(ctx context.Context, id string, input model.UpdateRFQInput) (*model.RFQ, error)
	Cancel(ctx context.Context, id string) (*model.RFQ, error)
	Delete(ctx context.Context, id string) error
	Query(ctx context.Context, filters model.QueryFilters, sort *model.SortOptions, pagination *model.PaginationOptions) (*model.QueryResult, error)
}

// RFQHandler handles HTTP API requests for RFQ operations.
type RFQHandler struct {
	logger  *zap.Logger
	service RFQService
}

// NewRFQHandler creates a new RFQHandler.
func NewRFQHandler(logger *zap.Logger, service RFQService) *RFQHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RFQHandler{logger: logger, service: service}
}

// CreateRFQ handles RFQ creation requests.
func (h *RFQHandler) CreateRFQ(c *fiber.Ctx) error {
	var req RFQCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if err := req.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	rfq, err := h.service.Create(c.Context(), model.CreateRFQInput{
		BaseToken:                model.TokenInfo{Address: req.BaseToken.Address, ChainID: req.BaseToken.ChainID},
		QuoteToken:               model.TokenInfo{Address: req.QuoteToken.Address, ChainID: req.QuoteToken.ChainID},
		BaseAmount:               req.BaseAmount,
		QuoteAmount:              req.QuoteAmount,
		ExpiresIn:                req.ExpiresIn,
		MinFillAmount:            req.MinFillAmount,
		CounterpartyRestrictions: req.CounterpartyRestrictions,
	})
	if err != nil {
		h.logger.Error("api.create_rfq_failed", zap.Error(err))
		return errorJSON(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(rfq)
}

// GetRFQ returns a single RFQ by id.
func (h *RFQHandler) GetRFQ(c *fiber.Ctx) error {
	id := c.Params("id")

	rfq, err := h.service.Get(c.Context(), id)
	if err != nil {
		h.logger.Error("api.get_rfq_failed", zap.String("id", id), zap.Error(err))
		return errorJSON(c, err)
	}
	if rfq == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "rfq not found"})
	}

	return c.JSON(rfq)
}

// UpdateRFQ applies a partial update to an open RFQ.
func (h *RFQHandler) UpdateRFQ(c *fiber.Ctx) error {
	id := c.Params("id")

	var req RFQUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if err := req.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	rfq, err := h.service.Update(c.Context(), id, model.UpdateRFQInput{
		BaseAmount:               req.BaseAmount,
		QuoteAmount:              req.QuoteAmount,
		ExpiresIn:                req.ExpiresIn,
		MinFillAmount:            req.MinFillAmount,
		CounterpartyRestrictions: req.CounterpartyRestrictions,
	})
	if err != nil {
		h.logger.Error("api.update_rfq_failed", zap.String("id", id), zap.Error(err))
		return errorJSON(c, err)
	}

	return c.JSON(rfq)
}

// CancelRFQ moves an open RFQ to CANCELLED.
func (h *RFQHandler) CancelRFQ(c *fiber.Ctx) error {
	id := c.Params("id")

	rfq, err := h.service.Cancel(c.Context(), id)
	if err != nil {
		h.logger.Error("api.cancel_rfq_failed", zap.String("id", id), zap.Error(err))
		return errorJSON(c, err)
	}

	return c.JSON(rfq)
}

// DeleteRFQ removes an RFQ record entirely.
func (h *RFQHandler) DeleteRFQ(c *fiber.Ctx) error {
	id := c.Params("id")

	if err := h.service.Delete(c.Context(), id); err != nil {
		h.logger.Error("api.delete_rfq_failed", zap.String("id", id), zap.Error(err))
		return errorJSON(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// QueryRFQs lists RFQs matching query-string filters.
func (h *RFQHandler) QueryRFQs(c *fiber.Ctx) error {
	var req RFQQueryRequest
	if err := c.QueryParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if err := req.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	filters, sort, pagination := toQueryArgs(req)

	result, err := h.service.Query(c.Context(), filters, sort, pagination)
	if err != nil {
		h.logger.Error("api.query_rfqs_failed", zap.Error(err))
		return errorJSON(c, err)
	}

	return c.JSON(result)
}

// toQueryArgs converts query-string values to canonical query arguments.
func toQueryArgs(req RFQQueryRequest) (model.QueryFilters, *model.SortOptions, *model.PaginationOptions) {
	filters := model.QueryFilters{
		ChainID: req.ChainID,
		Creator: req.Creator,
		Status:  model.Status(strings.ToUpper(req.Status)),
	}

	if req.BaseToken != "" && req.QuoteToken != "" {
		filters.TokenPair = &model.TokenPairFilter{
			BaseToken:  model.TokenInfo{Address: req.BaseToken, ChainID: req.BaseChainID},
			QuoteToken: model.TokenInfo{Address: req.QuoteToken, ChainID: req.QuoteChainID},
		}
	}
	if req.ExpiresAfter != 0 || req.ExpiresBefore != 0 {
		filters.Expiration = &model.TimeRangeFilter{MinTime: req.ExpiresAfter, MaxTime: req.ExpiresBefore}
	}

	var sort *model.SortOptions
	if req.SortBy != "" {
		sort = &model.SortOptions{
			SortBy:    model.SortField(strings.ToUpper(req.SortBy)),
			Ascending: req.SortAsc,
		}
	}

	var pagination *model.PaginationOptions
	if req.Limit > 0 || req.Cursor != "" {
		pagination = &model.PaginationOptions{Limit: req.Limit, Cursor: req.Cursor}
	}

	return filters, sort, pagination
}
