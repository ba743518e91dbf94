package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/bible-concord-api/internal/services"
)

// PhraseHandler handles phrase endpoints
type PhraseHandler struct {
	phrases *services.PhraseService
}

// NewPhraseHandler creates a new phrase handler
func NewPhraseHandler(phrases *services.PhraseService) *PhraseHandler {
	return &PhraseHandler{phrases: phrases}
}

// AddPhraseRequest is the request body for phrase creation
type AddPhraseRequest struct {
	PhraseText string `json:"phraseText"`
}

// AddPhrase handles POST /add_phrase - locates the phrase in the
// corpus and stores it with its references when found
func (h *PhraseHandler) AddPhrase(c echo.Context) error {
	var req AddPhraseRequest
	if err := c.Bind(&req); err != nil || req.PhraseText == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Request should contain 'phraseText'")
	}
	msg, err := h.phrases.Add(c.Request().Context(), req.PhraseText)
	if err != nil {
		return httpError(err)
	}
	return c.String(http.StatusOK, msg)
}

// ListPhrases handles GET /phrases
func (h *PhraseHandler) ListPhrases(c echo.Context) error {
	texts, err := h.phrases.List(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	if texts == nil {
		texts = []string{}
	}
	return c.JSON(http.StatusOK, map[string][]string{"phrases": texts})
}

// PhraseReferences handles GET /phrase/:phrase_text/reference
func (h *PhraseHandler) PhraseReferences(c echo.Context) error {
	refs, err := h.phrases.References(c.Request().Context(), pathParam(c, "phrase_text"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"references": refs})
}

// DeletePhrase handles DELETE /phrase-to-delete/:phrase_text
func (h *PhraseHandler) DeletePhrase(c echo.Context) error {
	if err := h.phrases.Delete(c.Request().Context(), pathParam(c, "phrase_text")); err != nil {
		return httpError(err)
	}
	return c.String(http.StatusOK, "ok")
}

// RegisterRoutes registers phrase routes
func (h *PhraseHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/add_phrase", h.AddPhrase)
	g.GET("/phrases", h.ListPhrases)
	g.GET("/phrase/:phrase_text/reference", h.PhraseReferences)
	g.DELETE("/phrase-to-delete/:phrase_text", h.DeletePhrase)
}
