package service

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"math/rand"

	"github.com/go-playground/validator/v10"
	"github.com/zizouhuweidi/trivia/internal/domain"
	"github.com/zizouhuweidi/trivia/internal/validation"
)

// QuestionsPerPage is the size of a page window
const QuestionsPerPage = 10

// Messages reported for a missing field of a new question, keyed by struct field
var missingFieldMessages = map[string]string{
	"Question":   "The question cannot be empty.",
	"Answer":     "The answer cannot be empty.",
	"Difficulty": "The difficulty cannot be empty.",
	"Category":   "The category cannot be empty.",
}

var fieldNames = map[string]string{
	"Question":   "question",
	"Answer":     "answer",
	"Difficulty": "difficulty",
	"Category":   "category",
}

const noSearchMatchMessage = "Sorry, no question contains what you have searched for."

// Broadcaster fans catalog events out to subscribers of a category
type Broadcaster interface {
	BroadcastToCategory(categoryID int64, messageType string, payload []byte)
}

// CatalogService implements the domain.CatalogService interface
type CatalogService struct {
	questionRepo domain.QuestionRepository
	categoryRepo domain.CategoryRepository
	broadcaster  Broadcaster
	validate     *validator.Validate

	// intn returns a uniform int in [0, n)
	intn func(n int) int
}

var _ domain.CatalogService = (*CatalogService)(nil)

// NewCatalogService creates a new catalog service. broadcaster may be nil.
func NewCatalogService(questionRepo domain.QuestionRepository, categoryRepo domain.CategoryRepository, broadcaster Broadcaster) *CatalogService {
	return &CatalogService{
		questionRepo: questionRepo,
		categoryRepo: categoryRepo,
		broadcaster:  broadcaster,
		validate:     validator.New(),
		intn:         rand.Intn,
	}
}

// ListCategories returns every category ordered by id
func (s *CatalogService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	categories, err := s.categoryRepo.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	if categories == nil {
		categories = []domain.Category{}
	}
	return categories, nil
}

// ListQuestions returns one page of all questions together with the category list
func (s *CatalogService) ListQuestions(ctx context.Context, page int) (*domain.QuestionPage, error) {
	if page < 1 {
		return nil, NewInvalidInput("page", "The page must be a positive number.")
	}

	limit, offset := window(page)
	questions, err := s.questionRepo.ListQuestions(ctx, domain.QuestionFilter{Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return nil, NewNotFound("")
	}

	total, err := s.questionRepo.CountQuestions(ctx)
	if err != nil {
		return nil, err
	}

	categories, err := s.ListCategories(ctx)
	if err != nil {
		return nil, err
	}

	return &domain.QuestionPage{
		Questions:      questions,
		TotalQuestions: total,
		Categories:     categories,
	}, nil
}

// AddQuestion validates and stores a new question
func (s *CatalogService) AddQuestion(ctx context.Context, req domain.NewQuestion) (*domain.Question, error) {
	if err := s.validateNewQuestion(req); err != nil {
		return nil, err
	}

	if _, err := s.categoryRepo.GetCategory(ctx, *req.Category); err != nil {
		if errors.Is(err, domain.ErrCategoryNotFound) {
			return nil, NewInvalidInput("category", "The category does not exist.")
		}
		return nil, err
	}

	question := &domain.Question{
		Question:   req.Question,
		Answer:     req.Answer,
		Category:   *req.Category,
		Difficulty: *req.Difficulty,
	}
	if err := s.questionRepo.CreateQuestion(ctx, question); err != nil {
		return nil, NewPersistence(err)
	}

	s.publish(question.Category, "question_created", question)

	return question, nil
}

// validateNewQuestion reports the first missing field in declaration order
func (s *CatalogService) validateNewQuestion(req domain.NewQuestion) error {
	err := s.validate.Struct(req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return NewInvalidInput("", DefaultMessage(KindInvalidInput))
	}

	field := verrs[0].StructField()
	return NewInvalidInput(fieldNames[field], missingFieldMessages[field])
}

// SearchQuestions returns one page of the questions whose text contains term
func (s *CatalogService) SearchQuestions(ctx context.Context, term string, page int) (*domain.QuestionPage, error) {
	if term == "" {
		return nil, NewInvalidInput("search term", "The search term cannot be empty.")
	}
	if page < 1 {
		return nil, NewInvalidInput("page", "The page must be a positive number.")
	}

	limit, offset := window(page)
	questions, err := s.questionRepo.ListQuestions(ctx, domain.QuestionFilter{
		Search: term,
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return nil, NewNotFound(noSearchMatchMessage)
	}

	total, err := s.questionRepo.CountQuestions(ctx)
	if err != nil {
		return nil, err
	}

	return &domain.QuestionPage{
		Questions:      questions,
		TotalQuestions: total,
	}, nil
}

// DeleteQuestion removes a question and returns it as it was before removal
func (s *CatalogService) DeleteQuestion(ctx context.Context, id int64) (*domain.Question, error) {
	question, err := s.questionRepo.GetQuestion(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrQuestionNotFound) {
			return nil, NewNotFound("")
		}
		return nil, err
	}

	if err := s.questionRepo.DeleteQuestion(ctx, id); err != nil {
		// Removed by a concurrent request between the lookup and the delete
		if errors.Is(err, domain.ErrQuestionNotFound) {
			return nil, NewNotFound("")
		}
		return nil, NewPersistence(err)
	}

	s.publish(question.Category, "question_deleted", question)

	return question, nil
}

// ListQuestionsByCategory returns one page of the questions in a category
func (s *CatalogService) ListQuestionsByCategory(ctx context.Context, categoryID int64, page int) (*domain.QuestionPage, error) {
	if page < 1 {
		return nil, NewInvalidInput("page", "The page must be a positive number.")
	}

	limit, offset := window(page)
	questions, err := s.questionRepo.ListQuestions(ctx, domain.QuestionFilter{
		Category: &categoryID,
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return nil, NewNotFound("")
	}

	total, err := s.questionRepo.CountQuestions(ctx)
	if err != nil {
		return nil, err
	}

	return &domain.QuestionPage{
		Questions:       questions,
		TotalQuestions:  total,
		CurrentCategory: &categoryID,
	}, nil
}

// NextQuizQuestion picks a random question that has not been asked yet.
// A nil result with a nil error means the round has run out of questions.
func (s *CatalogService) NextQuizQuestion(ctx context.Context, category *int64, previous []int64) (*domain.Question, error) {
	var filter domain.QuestionFilter
	if category != nil && *category > 0 {
		filter.Category = category
	}

	questions, err := s.questionRepo.ListQuestions(ctx, filter)
	if err != nil {
		return nil, err
	}

	asked := make(map[int64]struct{}, len(previous))
	for _, id := range previous {
		asked[id] = struct{}{}
	}

	eligible := make([]domain.Question, 0, len(questions))
	for _, q := range questions {
		if _, seen := asked[q.ID]; !seen {
			eligible = append(eligible, q)
		}
	}
	if len(eligible) == 0 {
		return nil, nil
	}

	picked := eligible[s.intn(len(eligible))]
	return &picked, nil
}

// CheckAnswer tells whether answer is an acceptable answer to a question
func (s *CatalogService) CheckAnswer(ctx context.Context, questionID int64, answer string) (*domain.AnswerResult, error) {
	if validation.NormalizeAnswer(answer) == "" {
		return nil, NewInvalidInput("answer", "The answer cannot be empty.")
	}

	question, err := s.questionRepo.GetQuestion(ctx, questionID)
	if err != nil {
		if errors.Is(err, domain.ErrQuestionNotFound) {
			return nil, NewNotFound("")
		}
		return nil, err
	}

	return &domain.AnswerResult{
		Correct: validation.MatchAnswer(question.Answer, answer),
		Answer:  question.Answer,
	}, nil
}

func (s *CatalogService) publish(categoryID int64, messageType string, question *domain.Question) {
	if s.broadcaster == nil {
		return
	}

	payload, err := json.Marshal(question)
	if err != nil {
		log.Printf("Error marshaling %s event: %v", messageType, err)
		return
	}

	s.broadcaster.BroadcastToCategory(categoryID, messageType, payload)
}

// window returns the limit and offset covering a 1-indexed page
func window(page int) (limit, offset int) {
	return QuestionsPerPage, (page - 1) * QuestionsPerPage
}
