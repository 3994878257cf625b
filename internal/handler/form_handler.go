package handler

import (
	"errors"
	"html/template"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/likeIcare2022/shortn/internal/models"
	"github.com/likeIcare2022/shortn/internal/service"
	"go.uber.org/zap"
)

var indexTemplate = template.Must(template.New("index").Parse(`<html>
<head><title>URL Shortener</title></head>
<body>
	<h1>URL Shortener</h1>
	<form method="POST" action="/">
		<label for="url">Enter your URL:</label><br>
		<input type="text" id="url" name="url" required><br><br>
		<label for="custom_short_code">Custom Short Code (optional):</label><br>
		<input type="text" id="custom_short_code" name="custom_short_code"><br><br>
		<input type="submit" value="Shorten URL">
	</form>
</body>
</html>
`))

var resultTemplate = template.Must(template.New("result").Parse(
	`Shortened URL: <a href="{{.}}">{{.}}</a>`,
))

// FormHandler обслуживает HTML-форму на корневом пути
type FormHandler struct {
	shortenService service.ShortenService
	baseURL        string
	logger         *zap.Logger
}

func NewFormHandler(shortenService service.ShortenService, baseURL string, logger *zap.Logger) *FormHandler {
	return &FormHandler{
		shortenService: shortenService,
		baseURL:        strings.TrimSuffix(baseURL, "/"),
		logger:         logger,
	}
}

func (h *FormHandler) Index(c *gin.Context) {
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(http.StatusOK)
	if err := indexTemplate.Execute(c.Writer, nil); err != nil {
		h.logger.Error("Failed to render form", zap.Error(err))
	}
}

func (h *FormHandler) Shorten(c *gin.Context) {
	var input models.CreateMappingInput
	if err := c.ShouldBind(&input); err != nil {
		c.String(http.StatusBadRequest, "Invalid URL")
		return
	}

	mapping, err := h.shortenService.Shorten(c.Request.Context(), input.OriginalURL, input.CustomCode)
	if err != nil {
		status, message := formError(err)
		if status >= http.StatusInternalServerError {
			h.logger.Error("Failed to shorten URL from form", zap.Error(err))
		}
		c.String(status, message)
		return
	}

	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(http.StatusOK)
	if err := resultTemplate.Execute(c.Writer, h.baseURL+"/"+mapping.ShortCode); err != nil {
		h.logger.Error("Failed to render result", zap.Error(err))
	}
}

func formError(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrInvalidURL):
		return http.StatusBadRequest, "Invalid URL"
	case errors.Is(err, service.ErrInvalidCustomCode):
		return http.StatusBadRequest, "Invalid custom short code. Use letters and digits only."
	case errors.Is(err, service.ErrCodeTaken):
		return http.StatusConflict, "Custom short code already exists. Please choose another one."
	case errors.Is(err, service.ErrAllocationExhausted), errors.Is(err, service.ErrStoreUnavailable):
		return http.StatusServiceUnavailable, "Service temporarily unavailable. Please try again later."
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}
