package handlers

import (
	"io"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/bible-concord-api/internal/services"
)

// BookHandler handles book endpoints
type BookHandler struct {
	books *services.BookService
}

// NewBookHandler creates a new book handler
func NewBookHandler(books *services.BookService) *BookHandler {
	return &BookHandler{books: books}
}

// AddBook handles POST /add_book - multipart form with bookName,
// division and the raw text file under textFile
func (h *BookHandler) AddBook(c echo.Context) error {
	ctx := c.Request().Context()

	title := c.FormValue("bookName")
	division := c.FormValue("division")
	if title == "" || division == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Request form should contain 'bookName' and 'division'")
	}

	fileHeader, err := c.FormFile("textFile")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "No file part")
	}
	file, err := fileHeader.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Could not open uploaded file")
	}
	defer file.Close()
	rawText, err := io.ReadAll(file)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Could not read uploaded file")
	}

	result, err := h.books.Ingest(ctx, title, division, string(rawText))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, result)
}

// ListBooks handles GET /books
func (h *BookHandler) ListBooks(c echo.Context) error {
	books, err := h.books.List(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"books": books})
}

// BookNames handles GET /book_names
func (h *BookHandler) BookNames(c echo.Context) error {
	names, err := h.books.Names(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	if names == nil {
		names = []string{}
	}
	return c.JSON(http.StatusOK, names)
}

// BookContent handles GET /book_content/:book_name
func (h *BookHandler) BookContent(c echo.Context) error {
	text, err := h.books.Content(c.Request().Context(), pathParam(c, "book_name"))
	if err != nil {
		return httpError(err)
	}
	return c.String(http.StatusOK, text)
}

// NumChapters handles GET /book/:book_name/num_chapters/
func (h *BookHandler) NumChapters(c echo.Context) error {
	n, err := h.books.NumChapters(c.Request().Context(), pathParam(c, "book_name"))
	if err != nil {
		return httpError(err)
	}
	return c.String(http.StatusOK, strconv.Itoa(n))
}

// NumVerses handles GET /book/:book_name/chapter/:chapter_num/num_verses
func (h *BookHandler) NumVerses(c echo.Context) error {
	chapter, err := strconv.Atoi(c.Param("chapter_num"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "chapter_num must be an integer")
	}
	n, err := h.books.NumVerses(c.Request().Context(), pathParam(c, "book_name"), chapter)
	if err != nil {
		return httpError(err)
	}
	return c.String(http.StatusOK, strconv.Itoa(n))
}

// NumWordsInVerse handles GET /book/:book_name/chapter/:chapter_num/verse/:verse_num/num_words
func (h *BookHandler) NumWordsInVerse(c echo.Context) error {
	chapter, err := strconv.Atoi(c.Param("chapter_num"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "chapter_num must be an integer")
	}
	verse, err := strconv.Atoi(c.Param("verse_num"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "verse_num must be an integer")
	}
	n, err := h.books.NumWordsInVerse(c.Request().Context(), pathParam(c, "book_name"), chapter, verse)
	if err != nil {
		return httpError(err)
	}
	return c.String(http.StatusOK, strconv.Itoa(n))
}

// BookStats handles GET /books/stats and GET /books/:book_name/stats
func (h *BookHandler) BookStats(c echo.Context) error {
	stats, err := h.books.Statistics(c.Request().Context(), pathParam(c, "book_name"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, stats)
}

// GeneralStats handles GET /general_stats
func (h *BookHandler) GeneralStats(c echo.Context) error {
	stats, err := h.books.GeneralStats(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, stats)
}

// DeleteBook handles DELETE /book-to-delete/:book_name
func (h *BookHandler) DeleteBook(c echo.Context) error {
	if err := h.books.Delete(c.Request().Context(), pathParam(c, "book_name")); err != nil {
		return httpError(err)
	}
	return c.String(http.StatusOK, "ok")
}

// RegisterRoutes registers book routes
func (h *BookHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/add_book", h.AddBook)
	g.GET("/books", h.ListBooks)
	g.GET("/book_names", h.BookNames)
	g.GET("/book_content/:book_name", h.BookContent)
	g.GET("/book/:book_name/num_chapters/", h.NumChapters)
	g.GET("/book/:book_name/chapter/:chapter_num/num_verses", h.NumVerses)
	g.GET("/book/:book_name/chapter/:chapter_num/verse/:verse_num/num_words", h.NumWordsInVerse)
	g.GET("/books/stats", h.BookStats)
	g.GET("/books/:book_name/stats", h.BookStats)
	g.GET("/general_stats", h.GeneralStats)
	g.DELETE("/book-to-delete/:book_name", h.DeleteBook)
}
