package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/likeIcare2022/shortn/internal/models"
	"github.com/likeIcare2022/shortn/internal/service"
	"go.uber.org/zap"
)

type LinkHandler struct {
	shortenService service.ShortenService
	resolveService service.ResolveService
	baseURL        string
	logger         *zap.Logger
}

func NewLinkHandler(
	shortenService service.ShortenService,
	resolveService service.ResolveService,
	baseURL string,
	logger *zap.Logger,
) *LinkHandler {
	return &LinkHandler{
		shortenService: shortenService,
		resolveService: resolveService,
		baseURL:        strings.TrimSuffix(baseURL, "/"),
		logger:         logger,
	}
}

type LinkResponse struct {
	ShortCode   string    `json:"short_code"`
	ShortURL    string    `json:"short_url"`
	OriginalURL string    `json:"original_url"`
	ClickCount  int64     `json:"click_count"`
	CreatedAt   time.Time `json:"created_at"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// CreateLink godoc
// @Summary Create a short link
// @Description Create a new shortened URL, optionally under a custom code
// @Tags links
// @Accept json
// @Produce json
// @Param request body models.CreateMappingInput true "Link creation request"
// @Success 201 {object} LinkResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /api/v1/links [post]
func (h *LinkHandler) CreateLink(c *gin.Context) {
	var input models.CreateMappingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.logger.Warn("Invalid request body", zap.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: err.Error(),
		})
		return
	}

	mapping, err := h.shortenService.Shorten(c.Request.Context(), input.OriginalURL, input.CustomCode)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, h.linkResponse(mapping))
}

// Redirect godoc
// @Summary Redirect to original URL
// @Description Redirect to the original URL by short code and count the visit
// @Tags links
// @Param code path string true "Short code"
// @Success 302
// @Failure 404 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /{code} [get]
func (h *LinkHandler) Redirect(c *gin.Context) {
	code := c.Param("code")

	originalURL, err := h.resolveService.Resolve(c.Request.Context(), code)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.Redirect(http.StatusFound, originalURL)
}

// GetStats godoc
// @Summary Get a short link
// @Description Get the stored mapping and its click count without counting a visit
// @Tags links
// @Produce json
// @Param code path string true "Short code"
// @Success 200 {object} LinkResponse
// @Failure 404 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /api/v1/links/{code} [get]
func (h *LinkHandler) GetStats(c *gin.Context) {
	code := c.Param("code")

	mapping, err := h.resolveService.Stats(c.Request.Context(), code)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, h.linkResponse(mapping))
}

func (h *LinkHandler) shortURL(code string) string {
	return h.baseURL + "/" + code
}

func (h *LinkHandler) linkResponse(mapping *models.Mapping) LinkResponse {
	return LinkResponse{
		ShortCode:   mapping.ShortCode,
		ShortURL:    h.shortURL(mapping.ShortCode),
		OriginalURL: mapping.OriginalURL,
		ClickCount:  mapping.ClickCount,
		CreatedAt:   mapping.CreatedAt,
	}
}

func (h *LinkHandler) respondError(c *gin.Context, err error) {
	status, response := errorResponse(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("Request failed",
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
	} else {
		h.logger.Debug("Request rejected",
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
	}
	c.JSON(status, response)
}

// errorResponse сопоставляет ошибку сервиса HTTP-статусу и телу ответа
func errorResponse(err error) (int, ErrorResponse) {
	switch {
	case errors.Is(err, service.ErrInvalidURL):
		return http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_url",
			Message: "Invalid URL format",
		}
	case errors.Is(err, service.ErrInvalidCustomCode):
		return http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_custom_code",
			Message: "Custom code must contain only letters and digits",
		}
	case errors.Is(err, service.ErrCodeTaken):
		return http.StatusConflict, ErrorResponse{
			Error:   "code_taken",
			Message: "Custom code already exists",
		}
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, ErrorResponse{
			Error:   "not_found",
			Message: "Link not found",
		}
	case errors.Is(err, service.ErrAllocationExhausted):
		return http.StatusServiceUnavailable, ErrorResponse{
			Error:   "allocation_exhausted",
			Message: "Could not allocate a short code, try again later",
		}
	case errors.Is(err, service.ErrStoreUnavailable):
		return http.StatusServiceUnavailable, ErrorResponse{
			Error:   "store_unavailable",
			Message: "Storage is temporarily unavailable",
		}
	default:
		return http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Internal server error",
		}
	}
}
