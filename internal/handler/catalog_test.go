package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/zizouhuweidi/trivia/internal/domain"
	"github.com/zizouhuweidi/trivia/internal/repository/sqlite"
	"github.com/zizouhuweidi/trivia/internal/service"
)

type listResponse struct {
	Success         bool              `json:"success"`
	Questions       []domain.Question `json:"questions"`
	TotalQuestions  int               `json:"total_questions"`
	Categories      []domain.Category `json:"categories"`
	CurrentCategory *int64            `json:"current_category"`
}

type testServer struct {
	echo  *echo.Echo
	store *sqlite.Store
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	store, err := sqlite.Open(filepath.Join(t.TempDir(), "trivia.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	e := echo.New()
	e.Validator = NewValidator()
	e.HTTPErrorHandler = ErrorHandler

	h := NewCatalogHandler(service.NewCatalogService(store, store, nil))
	h.Register(e.Group(""))
	h.Register(e.Group("/api"))

	return &testServer{echo: e, store: store}
}

func (s *testServer) seed(t *testing.T, questions ...domain.Question) []domain.Question {
	t.Helper()
	for i := range questions {
		if err := s.store.CreateQuestion(context.Background(), &questions[i]); err != nil {
			t.Fatalf("seed question: %v", err)
		}
	}
	return questions
}

func (s *testServer) seedN(t *testing.T, n int, category int64) {
	t.Helper()
	for i := 0; i < n; i++ {
		s.seed(t, domain.Question{
			Question:   fmt.Sprintf("Question %d?", i+1),
			Answer:     "Answer",
			Category:   category,
			Difficulty: 1,
		})
	}
}

func (s *testServer) do(method, target, contentType, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set(echo.HeaderContentType, contentType)
	}
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) doJSON(method, target, body string) *httptest.ResponseRecorder {
	return s.do(method, target, echo.MIMEApplicationJSON, body)
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

func assertError(t *testing.T, rec *httptest.ResponseRecorder, status int, message string) {
	t.Helper()
	if rec.Code != status {
		t.Fatalf("status = %d, want %d (body %s)", rec.Code, status, rec.Body.String())
	}
	got := decode[ErrorResponse](t, rec)
	want := ErrorResponse{Success: false, Error: status, Message: message}
	if got != want {
		t.Fatalf("error body = %+v, want %+v", got, want)
	}
}

func TestListCategories(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)
	rec := srv.do(http.MethodGet, "/categories", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	body := decode[struct {
		Success    bool              `json:"success"`
		Categories []domain.Category `json:"categories"`
	}](t, rec)
	if !body.Success {
		t.Fatal("success = false, want true")
	}
	if len(body.Categories) != 6 {
		t.Fatalf("categories = %d, want 6", len(body.Categories))
	}
	if body.Categories[0] != (domain.Category{ID: 1, Type: "Science"}) {
		t.Fatalf("first category = %+v", body.Categories[0])
	}
}

func TestListQuestionsPages(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)
	srv.seedN(t, 11, 1)

	for _, prefix := range []string{"", "/api"} {
		rec := srv.do(http.MethodGet, prefix+"/questions", "", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("%s page 1 status = %d, want %d", prefix, rec.Code, http.StatusOK)
		}
		body := decode[listResponse](t, rec)
		if len(body.Questions) != 10 || body.TotalQuestions != 11 {
			t.Fatalf("page 1 = %d questions of %d, want 10 of 11", len(body.Questions), body.TotalQuestions)
		}
		if len(body.Categories) != 6 {
			t.Fatalf("categories = %d, want 6", len(body.Categories))
		}
		if body.CurrentCategory != nil {
			t.Fatalf("current_category = %d, want null", *body.CurrentCategory)
		}
	}

	rec := srv.do(http.MethodGet, "/questions?page=2", "", "")
	body := decode[listResponse](t, rec)
	if len(body.Questions) != 1 || body.Questions[0].ID != 11 {
		t.Fatalf("page 2 = %+v, want only question 11", body.Questions)
	}

	assertError(t, srv.do(http.MethodGet, "/questions?page=3", "", ""), http.StatusNotFound, "resource not found")
	assertError(t, srv.do(http.MethodGet, "/questions?page=abc", "", ""), http.StatusBadRequest, "The page must be a positive number.")
	assertError(t, srv.do(http.MethodGet, "/questions?page=0", "", ""), http.StatusBadRequest, "The page must be a positive number.")
}

func TestListQuestionsEmptyCatalog(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)
	assertError(t, srv.do(http.MethodGet, "/questions", "", ""), http.StatusNotFound, "resource not found")
}

func TestCreateQuestion(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)
	rec := srv.doJSON(http.MethodPost, "/questions",
		`{"question":"What is H2O?","answer":"Water","difficulty":1,"category":1}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d (body %s)", rec.Code, http.StatusOK, rec.Body.String())
	}

	got := decode[domain.Question](t, rec)
	want := domain.Question{ID: got.ID, Question: "What is H2O?", Answer: "Water", Category: 1, Difficulty: 1}
	if got.ID == 0 || got != want {
		t.Fatalf("created = %+v, want %+v", got, want)
	}

	stored, err := srv.store.GetQuestion(context.Background(), got.ID)
	if err != nil {
		t.Fatalf("get stored question: %v", err)
	}
	if *stored != got {
		t.Fatalf("stored = %+v, want %+v", *stored, got)
	}
}

func TestCreateQuestionFromForm(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)
	form := url.Values{
		"question":   {"Who painted the Mona Lisa?"},
		"answer":     {"Leonardo da Vinci"},
		"difficulty": {"3"},
		"category":   {"2"},
	}
	rec := srv.do(http.MethodPost, "/questions", echo.MIMEApplicationForm, form.Encode())
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d (body %s)", rec.Code, http.StatusOK, rec.Body.String())
	}
	got := decode[domain.Question](t, rec)
	if got.Category != 2 || got.Difficulty != 3 {
		t.Fatalf("created = %+v, want category 2 difficulty 3", got)
	}
}

func TestCreateQuestionValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
		want string
	}{
		{name: "empty body", body: `{}`, want: "The question cannot be empty."},
		{name: "missing answer", body: `{"question":"Q","difficulty":1,"category":1}`, want: "The answer cannot be empty."},
		{name: "missing difficulty", body: `{"question":"Q","answer":"A","category":1}`, want: "The difficulty cannot be empty."},
		{name: "missing category", body: `{"question":"Q","answer":"A","difficulty":1}`, want: "The category cannot be empty."},
		{name: "unknown category", body: `{"question":"Q","answer":"A","difficulty":1,"category":99}`, want: "The category does not exist."},
		{name: "empty search term creates", body: `{"searchTerm":"","answer":"A"}`, want: "The question cannot be empty."},
		{name: "malformed json", body: `{"question":`, want: "bad request"},
		{name: "wrong type", body: `{"question":"Q","answer":"A","difficulty":"hard","category":1}`, want: "bad request"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			srv := newTestServer(t)
			assertError(t, srv.doJSON(http.MethodPost, "/questions", tt.body), http.StatusBadRequest, tt.want)

			n, err := srv.store.CountQuestions(context.Background())
			if err != nil {
				t.Fatalf("count questions: %v", err)
			}
			if n != 0 {
				t.Fatalf("stored questions = %d, want 0", n)
			}
		})
	}
}

func TestSearchQuestions(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)
	srv.seed(t,
		domain.Question{Question: "What is the title of the 1990 film?", Answer: "Edward Scissorhands", Category: 5, Difficulty: 3},
		domain.Question{Question: "Title of the first Harry Potter book?", Answer: "Philosopher's Stone", Category: 5, Difficulty: 2},
		domain.Question{Question: "What is H2O?", Answer: "Water", Category: 1, Difficulty: 1},
	)

	rec := srv.doJSON(http.MethodPost, "/questions", `{"searchTerm":"title"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d (body %s)", rec.Code, http.StatusOK, rec.Body.String())
	}
	body := decode[listResponse](t, rec)
	if len(body.Questions) != 1 || body.Questions[0].ID != 1 {
		t.Fatalf("questions = %+v, want only question 1", body.Questions)
	}
	if body.TotalQuestions != 3 {
		t.Fatalf("total_questions = %d, want 3", body.TotalQuestions)
	}
	if body.CurrentCategory != nil {
		t.Fatalf("current_category = %d, want null", *body.CurrentCategory)
	}

	assertError(t, srv.doJSON(http.MethodPost, "/questions", `{"searchTerm":"zebra"}`),
		http.StatusNotFound, "Sorry, no question contains what you have searched for.")
}

func TestDeleteQuestion(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)
	seeded := srv.seed(t, domain.Question{Question: "Q", Answer: "A", Category: 4, Difficulty: 2})

	rec := srv.do(http.MethodDelete, fmt.Sprintf("/questions/%d", seeded[0].ID), "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d (body %s)", rec.Code, http.StatusOK, rec.Body.String())
	}
	if got := decode[domain.Question](t, rec); got != seeded[0] {
		t.Fatalf("deleted = %+v, want %+v", got, seeded[0])
	}

	assertError(t, srv.do(http.MethodDelete, fmt.Sprintf("/questions/%d", seeded[0].ID), "", ""),
		http.StatusNotFound, "resource not found")
	assertError(t, srv.do(http.MethodDelete, "/questions/9999", "", ""), http.StatusNotFound, "resource not found")
	assertError(t, srv.do(http.MethodDelete, "/questions/abc", "", ""), http.StatusNotFound, "resource not found")
}

func TestMethodNotAllowed(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)
	assertError(t, srv.do(http.MethodDelete, "/questions", "", ""), http.StatusMethodNotAllowed, "method not allowed")
	assertError(t, srv.do(http.MethodPatch, "/questions/1", "", ""), http.StatusMethodNotAllowed, "method not allowed")
	assertError(t, srv.do(http.MethodGet, "/quizzes", "", ""), http.StatusMethodNotAllowed, "method not allowed")
}

func TestUnknownRoute(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)
	assertError(t, srv.do(http.MethodGet, "/nope", "", ""), http.StatusNotFound, "resource not found")
}

func TestListQuestionsByCategory(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)
	srv.seedN(t, 2, 5)
	srv.seedN(t, 1, 1)

	rec := srv.do(http.MethodGet, "/categories/5/questions", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d (body %s)", rec.Code, http.StatusOK, rec.Body.String())
	}
	body := decode[listResponse](t, rec)
	if len(body.Questions) != 2 {
		t.Fatalf("questions = %d, want 2", len(body.Questions))
	}
	if body.TotalQuestions != 3 {
		t.Fatalf("total_questions = %d, want 3", body.TotalQuestions)
	}
	if body.CurrentCategory == nil || *body.CurrentCategory != 5 {
		t.Fatalf("current_category = %v, want 5", body.CurrentCategory)
	}

	assertError(t, srv.do(http.MethodGet, "/categories/6/questions", "", ""), http.StatusNotFound, "resource not found")
	assertError(t, srv.do(http.MethodGet, "/categories/sports/questions", "", ""), http.StatusNotFound, "resource not found")
}

func TestNextQuizQuestionCategoryShapes(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)
	srv.seedN(t, 1, 1)
	srv.seedN(t, 1, 2)

	tests := []struct {
		name         string
		body         string
		wantCategory int64
	}{
		{name: "object", body: `{"previous_questions":[],"quiz_category":{"type":"Art","id":2}}`, wantCategory: 2},
		{name: "string id object", body: `{"previous_questions":[],"quiz_category":{"id":"2"}}`, wantCategory: 2},
		{name: "bare number", body: `{"previous_questions":[],"quiz_category":2}`, wantCategory: 2},
		{name: "numeric string", body: `{"previous_questions":[],"quiz_category":"2"}`, wantCategory: 2},
		{name: "all categories by zero", body: `{"previous_questions":[1],"quiz_category":{"id":0}}`, wantCategory: 2},
		{name: "all categories by null", body: `{"previous_questions":[2],"quiz_category":null}`, wantCategory: 1},
		{name: "all categories when absent", body: `{"previous_questions":[2]}`, wantCategory: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := srv.doJSON(http.MethodPost, "/quizzes", tt.body)
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, http.StatusOK, rec.Body.String())
			}
			got := decode[*domain.Question](t, rec)
			if got == nil {
				t.Fatal("question = null, want a question")
			}
			if got.Category != tt.wantCategory {
				t.Fatalf("category = %d, want %d", got.Category, tt.wantCategory)
			}
		})
	}
}

func TestNextQuizQuestionFromForm(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)
	srv.seedN(t, 3, 1)

	form := url.Values{
		"previous_questions": {"1", "2"},
		"quiz_category":      {"1"},
	}
	rec := srv.do(http.MethodPost, "/quizzes", echo.MIMEApplicationForm, form.Encode())
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d (body %s)", rec.Code, http.StatusOK, rec.Body.String())
	}
	got := decode[*domain.Question](t, rec)
	if got == nil || got.ID != 3 {
		t.Fatalf("question = %+v, want question 3", got)
	}
}

func TestNextQuizQuestionExhausted(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)
	srv.seedN(t, 2, 3)

	rec := srv.doJSON(http.MethodPost, "/quizzes", `{"previous_questions":[1,2],"quiz_category":{"id":3}}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d (body %s)", rec.Code, http.StatusOK, rec.Body.String())
	}
	if got := strings.TrimSpace(rec.Body.String()); got != "null" {
		t.Fatalf("body = %q, want null", got)
	}
}

func TestNextQuizQuestionBadCategory(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)
	assertError(t, srv.doJSON(http.MethodPost, "/quizzes", `{"quiz_category":true}`), http.StatusBadRequest, "bad request")
}

func TestCheckAnswer(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)
	seeded := srv.seed(t, domain.Question{Question: "Largest planet?", Answer: "Jupiter", Category: 1, Difficulty: 1})

	tests := []struct {
		answer string
		want   bool
	}{
		{answer: "jupiter", want: true},
		{answer: "Jupitor", want: true},
		{answer: "Saturn", want: false},
	}
	for _, tt := range tests {
		body := fmt.Sprintf(`{"question_id":%d,"answer":%q}`, seeded[0].ID, tt.answer)
		rec := srv.doJSON(http.MethodPost, "/quizzes/answers", body)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d (body %s)", rec.Code, http.StatusOK, rec.Body.String())
		}
		got := decode[struct {
			Success bool   `json:"success"`
			Correct bool   `json:"correct"`
			Answer  string `json:"answer"`
		}](t, rec)
		if got.Correct != tt.want || got.Answer != "Jupiter" {
			t.Fatalf("answer %q = %+v, want correct=%v", tt.answer, got, tt.want)
		}
	}

	assertError(t, srv.doJSON(http.MethodPost, "/quizzes/answers", `{"question_id":1}`),
		http.StatusBadRequest, "The answer cannot be empty.")
	assertError(t, srv.doJSON(http.MethodPost, "/quizzes/answers", `{"answer":"x"}`),
		http.StatusBadRequest, "The question_id cannot be empty.")
	assertError(t, srv.doJSON(http.MethodPost, "/quizzes/answers", `{"question_id":404,"answer":"x"}`),
		http.StatusNotFound, "resource not found")
}
