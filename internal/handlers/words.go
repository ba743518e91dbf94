package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/bible-concord-api/internal/models"
	"github.com/bible-concord-api/internal/services"
)

// WordHandler handles word query and text context endpoints
type WordHandler struct {
	words *services.WordService
}

// NewWordHandler creates a new word handler
func NewWordHandler(words *services.WordService) *WordHandler {
	return &WordHandler{words: words}
}

// FilterWords handles POST /words/ - paginated distinct word listing
func (h *WordHandler) FilterWords(c echo.Context) error {
	var req models.WordQueryRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	page, err := h.words.FilteredWords(c.Request().Context(), req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, page)
}

// WordOccurrences handles POST /word/:word - paginated occurrence
// coordinates of one word
func (h *WordHandler) WordOccurrences(c echo.Context) error {
	var req models.WordQueryRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	page, err := h.words.Occurrences(c.Request().Context(), pathParam(c, "word"), req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, page)
}

// VerseContext handles GET /text_context/book/:book/chapter/:chapter/verse/:verse
func (h *WordHandler) VerseContext(c echo.Context) error {
	chapter, err := strconv.Atoi(c.Param("chapter"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "chapter must be an integer")
	}
	verse, err := strconv.Atoi(c.Param("verse"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "verse must be an integer")
	}
	text, err := h.words.VerseContext(c.Request().Context(), pathParam(c, "book"), chapter, verse)
	if err != nil {
		return httpError(err)
	}
	return c.String(http.StatusOK, text)
}

// LineContext handles GET /line_context/book/:book/line/:line
func (h *WordHandler) LineContext(c echo.Context) error {
	line, err := strconv.Atoi(c.Param("line"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "line must be an integer")
	}
	text, err := h.words.LineContext(c.Request().Context(), pathParam(c, "book"), line)
	if err != nil {
		return httpError(err)
	}
	return c.String(http.StatusOK, text)
}

// RegisterRoutes registers word routes
func (h *WordHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/words/", h.FilterWords)
	g.POST("/word/:word", h.WordOccurrences)
	g.GET("/text_context/book/:book/chapter/:chapter/verse/:verse", h.VerseContext)
	g.GET("/line_context/book/:book/line/:line", h.LineContext)
}
