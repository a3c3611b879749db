package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/zizouhuweidi/trivia/internal/domain"
	"github.com/zizouhuweidi/trivia/internal/service"
)

// CatalogHandler handles question and category HTTP requests
type CatalogHandler struct {
	catalog domain.CatalogService
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(catalog domain.CatalogService) *CatalogHandler {
	return &CatalogHandler{
		catalog: catalog,
	}
}

// Register registers the catalog routes
func (h *CatalogHandler) Register(g *echo.Group) {
	g.GET("/categories", h.ListCategories)
	g.GET("/categories/:id/questions", h.ListQuestionsByCategory)
	g.GET("/questions", h.ListQuestions)
	g.POST("/questions", h.CreateOrSearchQuestions)
	g.DELETE("/questions/:id", h.DeleteQuestion)
	g.POST("/quizzes", h.NextQuizQuestion)
	g.POST("/quizzes/answers", h.CheckAnswer)
}

// ListCategories returns every category
func (h *CatalogHandler) ListCategories(c echo.Context) error {
	categories, err := h.catalog.ListCategories(c.Request().Context())
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]any{
		"success":    true,
		"categories": categories,
	})
}

// ListQuestions returns one page of questions
func (h *CatalogHandler) ListQuestions(c echo.Context) error {
	page, err := pageParam(c)
	if err != nil {
		return err
	}

	result, err := h.catalog.ListQuestions(c.Request().Context(), page)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]any{
		"success":          true,
		"questions":        result.Questions,
		"total_questions":  result.TotalQuestions,
		"categories":       result.Categories,
		"current_category": nil,
	})
}

// CreateOrSearchQuestions creates a question, or searches when a search term is given
func (h *CatalogHandler) CreateOrSearchQuestions(c echo.Context) error {
	var req QuestionRequest
	if err := c.Bind(&req); err != nil {
		return err
	}

	if req.SearchTerm != nil && *req.SearchTerm != "" {
		return h.searchQuestions(c, *req.SearchTerm)
	}

	question, err := h.catalog.AddQuestion(c.Request().Context(), domain.NewQuestion{
		Question:   req.Question,
		Answer:     req.Answer,
		Difficulty: req.Difficulty,
		Category:   req.Category,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, question)
}

func (h *CatalogHandler) searchQuestions(c echo.Context, term string) error {
	page, err := pageParam(c)
	if err != nil {
		return err
	}

	result, err := h.catalog.SearchQuestions(c.Request().Context(), term, page)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]any{
		"success":          true,
		"questions":        result.Questions,
		"total_questions":  result.TotalQuestions,
		"current_category": nil,
	})
}

// DeleteQuestion deletes a question and returns the removed record
func (h *CatalogHandler) DeleteQuestion(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return service.NewNotFound("")
	}

	question, err := h.catalog.DeleteQuestion(c.Request().Context(), id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, question)
}

// ListQuestionsByCategory returns one page of the questions in a category
func (h *CatalogHandler) ListQuestionsByCategory(c echo.Context) error {
	categoryID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return service.NewNotFound("")
	}

	page, err := pageParam(c)
	if err != nil {
		return err
	}

	result, err := h.catalog.ListQuestionsByCategory(c.Request().Context(), categoryID, page)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]any{
		"success":          true,
		"questions":        result.Questions,
		"total_questions":  result.TotalQuestions,
		"current_category": result.CurrentCategory,
	})
}

// NextQuizQuestion returns a random question not asked yet, or null when the round is over
func (h *CatalogHandler) NextQuizQuestion(c echo.Context) error {
	var req QuizRequest
	if err := c.Bind(&req); err != nil {
		return err
	}

	question, err := h.catalog.NextQuizQuestion(c.Request().Context(), req.QuizCategory.Ptr(), req.PreviousQuestions)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, question)
}

// CheckAnswer tells the player whether their answer is correct
func (h *CatalogHandler) CheckAnswer(c echo.Context) error {
	var req CheckAnswerRequest
	if err := c.Bind(&req); err != nil {
		return err
	}

	if err := c.Validate(&req); err != nil {
		return err
	}

	result, err := h.catalog.CheckAnswer(c.Request().Context(), req.QuestionID, req.Answer)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"correct": result.Correct,
		"answer":  result.Answer,
	})
}

// pageParam reads the 1-indexed page query parameter, defaulting to 1
func pageParam(c echo.Context) (int, error) {
	page := 1
	if err := echo.QueryParamsBinder(c).Int("page", &page).BindError(); err != nil {
		return 0, service.NewInvalidInput("page", "The page must be a positive number.")
	}
	return page, nil
}
