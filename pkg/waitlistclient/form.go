package waitlistclient

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// FormState models the lifecycle of the signup form: Editing until a request
// is in flight, then either Success (terminal) or back to Editing with a
// transient notice.
type FormState int

const (
	StateEditing FormState = iota
	StateSubmitting
	StateSuccess
)

func (s FormState) String() string {
	switch s {
	case StateEditing:
		return "editing"
	case StateSubmitting:
		return "submitting"
	case StateSuccess:
		return "success"
	default:
		return "unknown"
	}
}

var (
	// ErrSubmissionInFlight is returned while a previous Submit is still
	// running; the UI equivalent is a disabled submit button.
	ErrSubmissionInFlight = errors.New("a submission is already in flight")
	// ErrAlreadyJoined is returned once a submission has been accepted.
	ErrAlreadyJoined = errors.New("the form has already been submitted successfully")
)

// ValidationError reports local (pre-submit) rule violations. No request is
// made when it is returned.
type ValidationError struct {
	Violations []FieldViolation
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		fields = append(fields, v.Field)
	}
	return fmt.Sprintf("invalid submission: %s", strings.Join(fields, ", "))
}

var formValidator = newFormValidator()

func newFormValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate applies the same rules the server enforces and returns one
// violation per invalid field, phrased for end users.
func Validate(sub Submission) []FieldViolation {
	err := formValidator.Struct(sub)
	if err == nil {
		return nil
	}

	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return []FieldViolation{{Field: "form", Message: "Invalid submission"}}
	}

	violations := make([]FieldViolation, 0, len(fieldErrors))
	for _, fe := range fieldErrors {
		violations = append(violations, FieldViolation{
			Field:   fe.Field(),
			Message: messageForField(fe.Field()),
		})
	}

	return violations
}

func messageForField(field string) string {
	switch field {
	case "name":
		return "Name must be at least 2 characters"
	case "email":
		return "Please enter a valid email address"
	case "userType":
		return "Please select a user type"
	default:
		return "Invalid value"
	}
}

// Form drives a single signup: it validates locally, submits at most one
// request at a time, and tracks the resulting state.
type Form struct {
	client *Client

	mu     sync.Mutex
	state  FormState
	notice string
}

func NewForm(client *Client) *Form {
	return &Form{client: client, state: StateEditing}
}

func (f *Form) State() FormState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Notice returns the transient error notification attached to the editing
// state, or "" when there is none.
func (f *Form) Notice() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.notice
}

// Submit validates locally, then submits. A rejection or failure returns the
// form to the editing state with a notice; each retry is a fresh Submit call.
func (f *Form) Submit(ctx context.Context, sub Submission) (*JoinResult, error) {
	if violations := Validate(sub); len(violations) > 0 {
		return nil, &ValidationError{Violations: violations}
	}

	f.mu.Lock()
	switch f.state {
	case StateSubmitting:
		f.mu.Unlock()
		return nil, ErrSubmissionInFlight
	case StateSuccess:
		f.mu.Unlock()
		return nil, ErrAlreadyJoined
	}
	f.state = StateSubmitting
	f.notice = ""
	f.mu.Unlock()

	result, err := f.client.Join(ctx, sub)

	f.mu.Lock()
	defer f.mu.Unlock()

	if err != nil {
		f.state = StateEditing
		f.notice = noticeForError(err)
		return nil, err
	}

	f.state = StateSuccess
	return result, nil
}

func noticeForError(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && len(apiErr.Violations) == 0 {
		return apiErr.Message
	}
	return "Something went wrong. Please try again."
}
