package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cafe/backend/internal/domain/shared"
	"github.com/cafe/backend/internal/infrastructure/logger"
	"github.com/cafe/backend/internal/interfaces/http/dto"
	"github.com/cafe/backend/internal/interfaces/http/middleware"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// Success sends a 200 response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// Created sends a 201 response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// BadRequest sends a 400 with the given code
func (h *BaseHandler) BadRequest(c *gin.Context, code, message string) {
	c.JSON(http.StatusBadRequest, dto.NewErrorResponse(code, message, middleware.GetRequestID(c)))
}

// HandleError maps err onto the response envelope. Server-side failures are
// logged with the request logger; client errors are recorded on the context only.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	status, resp := dto.FromError(err, middleware.GetRequestID(c))
	_ = c.Error(err)
	if status >= http.StatusInternalServerError {
		logger.GetGinLogger(c).Error("Request failed", zap.Error(err))
	}
	c.JSON(status, resp)
}

// BindJSON binds and validates the body, writing the 400 itself on failure.
func (h *BaseHandler) BindJSON(c *gin.Context, req any) bool {
	err := c.ShouldBindJSON(req)
	if err == nil {
		return true
	}
	requestID := middleware.GetRequestID(c)
	if details := middleware.ValidationDetails(err); details != nil {
		c.JSON(http.StatusBadRequest, dto.NewValidationErrorResponse("Request validation failed", requestID, details))
		return false
	}
	var maxBytesErr *http.MaxBytesError
	switch {
	case errors.As(err, &maxBytesErr):
		c.JSON(http.StatusRequestEntityTooLarge, dto.NewErrorResponse(dto.ErrCodeTooLarge, "Request body exceeds maximum allowed size", requestID))
	case errors.Is(err, io.EOF):
		h.BadRequest(c, dto.ErrCodeInvalidJSON, "Request body is required")
	default:
		h.BadRequest(c, dto.ErrCodeInvalidJSON, "Malformed JSON body")
	}
	return false
}

// BindQuery binds and validates query parameters, writing the 400 itself on failure.
func (h *BaseHandler) BindQuery(c *gin.Context, req any) bool {
	err := c.ShouldBindQuery(req)
	if err == nil {
		return true
	}
	if details := middleware.ValidationDetails(err); details != nil {
		c.JSON(http.StatusBadRequest, dto.NewValidationErrorResponse("Query validation failed", middleware.GetRequestID(c), details))
		return false
	}
	h.BadRequest(c, dto.ErrCodeBadRequest, "Malformed query parameters")
	return false
}

// PathUUID parses a UUID path parameter, writing a 400 on failure.
func (h *BaseHandler) PathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		h.HandleError(c, shared.NewValidationError(name, "invalid "+name+" format"))
		return uuid.Nil, false
	}
	return id, true
}
