package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/zizouhuweidi/trivia/internal/service"
)

// Validator adapts go-playground/validator to echo.Validator
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a new request validator
func NewValidator() *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return &Validator{validate: v}
}

// Validate validates a bound request struct. Failures are reported as
// InvalidInput errors naming the first offending field.
func (v *Validator) Validate(i any) error {
	err := v.validate.Struct(i)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return service.NewInvalidInput("", service.DefaultMessage(service.KindInvalidInput))
	}

	fe := verrs[0]
	if fe.Tag() == "required" {
		return service.NewInvalidInput(fe.Field(), fmt.Sprintf("The %s cannot be empty.", fe.Field()))
	}
	return service.NewInvalidInput(fe.Field(), fmt.Sprintf("The %s is invalid.", fe.Field()))
}

// QuestionRequest is the body of POST /questions. A non-empty SearchTerm
// turns the request into a search; otherwise it creates a question.
type QuestionRequest struct {
	Question   string  `json:"question" form:"question"`
	Answer     string  `json:"answer" form:"answer"`
	Difficulty *int    `json:"difficulty" form:"difficulty"`
	Category   *int64  `json:"category" form:"category"`
	SearchTerm *string `json:"searchTerm" form:"searchTerm"`
}

// QuizRequest is the body of POST /quizzes
type QuizRequest struct {
	PreviousQuestions []int64     `json:"previous_questions" form:"previous_questions"`
	QuizCategory      CategoryRef `json:"quiz_category" form:"quiz_category"`
}

// CheckAnswerRequest is the body of POST /quizzes/answers
type CheckAnswerRequest struct {
	QuestionID int64  `json:"question_id" form:"question_id" validate:"required,gt=0"`
	Answer     string `json:"answer" form:"answer" validate:"required"`
}

// CategoryRef identifies a quiz category. It accepts a bare id, a numeric
// string, or an object carrying an "id" field. Zero means all categories.
type CategoryRef struct {
	ID  int64
	Set bool
}

// Ptr returns the referenced id, or nil when no category was given
func (r CategoryRef) Ptr() *int64 {
	if !r.Set {
		return nil
	}
	id := r.ID
	return &id
}

// UnmarshalJSON implements json.Unmarshaler
func (r *CategoryRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*r = CategoryRef{}
		return nil
	}

	if len(data) > 0 && data[0] == '{' {
		var obj struct {
			ID json.RawMessage `json:"id"`
		}
		if err := json.Unmarshal(data, &obj); err != nil {
			return err
		}
		if len(obj.ID) == 0 {
			*r = CategoryRef{}
			return nil
		}
		return r.UnmarshalJSON(obj.ID)
	}

	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case float64:
		*r = CategoryRef{ID: int64(v), Set: true}
		return nil
	case string:
		return r.UnmarshalParam(v)
	default:
		return fmt.Errorf("invalid quiz category %s", data)
	}
}

// UnmarshalParam implements echo.BindUnmarshaler for form and query values
func (r *CategoryRef) UnmarshalParam(param string) error {
	param = strings.TrimSpace(param)
	if param == "" {
		*r = CategoryRef{}
		return nil
	}
	id, err := strconv.ParseInt(param, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid quiz category %q: %w", param, err)
	}
	*r = CategoryRef{ID: id, Set: true}
	return nil
}
