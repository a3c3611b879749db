package domain

import "context"

// QuestionPage is one page window of a question listing
type QuestionPage struct {
	Questions       []Question
	TotalQuestions  int
	Categories      []Category
	CurrentCategory *int64
}

// NewQuestion carries the fields submitted for a new question.
// Difficulty and Category are pointers so that absence can be told apart from zero.
type NewQuestion struct {
	Question   string `validate:"required"`
	Answer     string `validate:"required"`
	Difficulty *int   `validate:"required"`
	Category   *int64 `validate:"required"`
}

// AnswerResult is the verdict on a quiz answer
type AnswerResult struct {
	Correct bool   `json:"correct"`
	Answer  string `json:"answer"`
}

// CatalogService defines the operations of the question catalog
type CatalogService interface {
	ListCategories(ctx context.Context) ([]Category, error)
	ListQuestions(ctx context.Context, page int) (*QuestionPage, error)
	AddQuestion(ctx context.Context, req NewQuestion) (*Question, error)
	SearchQuestions(ctx context.Context, term string, page int) (*QuestionPage, error)
	DeleteQuestion(ctx context.Context, id int64) (*Question, error)
	ListQuestionsByCategory(ctx context.Context, categoryID int64, page int) (*QuestionPage, error)
	NextQuizQuestion(ctx context.Context, category *int64, previous []int64) (*Question, error)
	CheckAnswer(ctx context.Context, questionID int64, answer string) (*AnswerResult, error)
}
