package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/bible-concord-api/internal/services"
)

// GroupHandler handles word group endpoints
type GroupHandler struct {
	groups *services.GroupService
}

// NewGroupHandler creates a new group handler
func NewGroupHandler(groups *services.GroupService) *GroupHandler {
	return &GroupHandler{groups: groups}
}

// AddGroupRequest is the request body for group creation
type AddGroupRequest struct {
	GroupName string `json:"groupName"`
}

// AddWordRequest is the request body for adding a word to a group
type AddWordRequest struct {
	GroupName string `json:"groupName"`
	Word      string `json:"word"`
}

// AddGroup handles POST /add_group
func (h *GroupHandler) AddGroup(c echo.Context) error {
	var req AddGroupRequest
	if err := c.Bind(&req); err != nil || req.GroupName == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Request should contain 'groupName'")
	}
	msg, err := h.groups.Create(c.Request().Context(), req.GroupName)
	if err != nil {
		return httpError(err)
	}
	return c.String(http.StatusOK, msg)
}

// ListGroups handles GET /groups
func (h *GroupHandler) ListGroups(c echo.Context) error {
	names, err := h.groups.List(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	if names == nil {
		names = []string{}
	}
	return c.JSON(http.StatusOK, map[string][]string{"groups": names})
}

// GroupWords handles GET /group/:group_name/words
func (h *GroupHandler) GroupWords(c echo.Context) error {
	words, err := h.groups.Words(c.Request().Context(), pathParam(c, "group_name"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string][]string{"words": words})
}

// AddWordToGroup handles POST /groups/add_word
func (h *GroupHandler) AddWordToGroup(c echo.Context) error {
	var req AddWordRequest
	if err := c.Bind(&req); err != nil || req.GroupName == "" || req.Word == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Request should contain 'groupName' and 'word'")
	}
	msg, err := h.groups.AddWord(c.Request().Context(), req.GroupName, req.Word)
	if err != nil {
		return httpError(err)
	}
	return c.String(http.StatusOK, msg)
}

// OccurrenceIndex handles GET /group/:group_name/word_appearances_index
func (h *GroupHandler) OccurrenceIndex(c echo.Context) error {
	index, err := h.groups.OccurrenceIndex(c.Request().Context(), pathParam(c, "group_name"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, index)
}

// DeleteGroup handles DELETE /group-to-delete/:group_name
func (h *GroupHandler) DeleteGroup(c echo.Context) error {
	if err := h.groups.Delete(c.Request().Context(), pathParam(c, "group_name")); err != nil {
		return httpError(err)
	}
	return c.String(http.StatusOK, "ok")
}

// RegisterRoutes registers group routes
func (h *GroupHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/add_group", h.AddGroup)
	g.GET("/groups", h.ListGroups)
	g.GET("/group/:group_name/words", h.GroupWords)
	g.POST("/groups/add_word", h.AddWordToGroup)
	g.GET("/group/:group_name/word_appearances_index", h.OccurrenceIndex)
	g.DELETE("/group-to-delete/:group_name", h.DeleteGroup)
}
