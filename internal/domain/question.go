package domain

import (
	"context"
	"errors"
)

// Common errors
var (
	ErrQuestionNotFound = errors.New("question not found")
	ErrCategoryNotFound = errors.New("category not found")
)

// Question represents a trivia question
type Question struct {
	ID         int64  `json:"id"`
	Question   string `json:"question"`
	Answer     string `json:"answer"`
	Category   int64  `json:"category"`
	Difficulty int    `json:"difficulty"`
}

// Category groups questions under a display label
type Category struct {
	ID   int64  `json:"id"`
	Type string `json:"type"`
}

// QuestionFilter narrows a question listing. A zero Limit means no limit.
type QuestionFilter struct {
	Category *int64
	Search   string
	Limit    int
	Offset   int
}

// QuestionRepository defines the interface for question persistence
type QuestionRepository interface {
	// ListQuestions returns the questions matching filter, ordered by ascending id
	ListQuestions(ctx context.Context, filter QuestionFilter) ([]Question, error)

	// CountQuestions returns the total number of stored questions
	CountQuestions(ctx context.Context) (int, error)

	// GetQuestion retrieves a question by its ID
	GetQuestion(ctx context.Context, id int64) (*Question, error)

	// CreateQuestion stores a question and fills in its assigned ID
	CreateQuestion(ctx context.Context, question *Question) error

	// DeleteQuestion removes a question
	DeleteQuestion(ctx context.Context, id int64) error
}

// CategoryRepository defines the interface for category lookups
type CategoryRepository interface {
	// ListCategories returns every category, ordered by ascending id
	ListCategories(ctx context.Context) ([]Category, error)

	// GetCategory retrieves a category by its ID
	GetCategory(ctx context.Context, id int64) (*Category, error)
}
