package client

import (
	"context"
	"sync"

	"algoritmia_backend/pkg/validation"

	"github.com/pkg/errors"
)

type FormState int

const (
	FormIdle FormState = iota
	FormValidating
	FormValid
	FormInvalid
	FormSubmitting
	FormSuccess
	FormFailure
)

func (s FormState) String() string {
	switch s {
	case FormIdle:
		return "idle"
	case FormValidating:
		return "validating"
	case FormValid:
		return "valid"
	case FormInvalid:
		return "invalid"
	case FormSubmitting:
		return "submitting"
	case FormSuccess:
		return "success"
	case FormFailure:
		return "failure"
	}
	return "unknown"
}

var (
	ErrFormInvalid = errors.New("form has invalid fields")
	ErrFormBusy    = errors.New("form is busy")
)

// SubmitFunc sends the validated values.
type SubmitFunc[T any] func(ctx context.Context, values T) error

// Form drives one create or edit form. Values are checked with the rules
// declared in their binding tags; submit only runs on valid values and the
// form always settles back to idle, keeping the field errors or the failure
// of the last attempt.
type Form[T any] struct {
	submit       SubmitFunc[T]
	onTransition func(from, to FormState)

	mu          sync.Mutex
	state       FormState
	values      T
	fieldErrors []validation.FieldError
	err         error
}

func NewForm[T any](initial T, submit SubmitFunc[T]) *Form[T] {
	return &Form[T]{submit: submit, values: initial}
}

// OnTransition registers an observer of state changes. It is called with
// the form lock released.
func (f *Form[T]) OnTransition(fn func(from, to FormState)) {
	f.mu.Lock()
	f.onTransition = fn
	f.mu.Unlock()
}

// Set replaces the values. It is ignored while a check or submit is running.
func (f *Form[T]) Set(values T) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != FormIdle {
		return false
	}
	f.values = values
	return true
}

func (f *Form[T]) Values() T {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.values
}

func (f *Form[T]) State() FormState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *Form[T]) FieldErrors() []validation.FieldError {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]validation.FieldError(nil), f.fieldErrors...)
}

// Err is the failure of the last submit, if any.
func (f *Form[T]) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

// Validate checks the values without submitting and returns the field
// errors, nil when valid or when the form is busy.
func (f *Form[T]) Validate() []validation.FieldError {
	values, ok := f.begin()
	if !ok {
		return nil
	}
	fields := validation.Struct(values)

	f.mu.Lock()
	f.fieldErrors = fields
	f.mu.Unlock()
	if len(fields) > 0 {
		f.transition(FormInvalid)
	} else {
		f.transition(FormValid)
	}
	f.transition(FormIdle)
	return fields
}

// Submit validates and, when the values are valid, sends them. Server side
// validation failures are reported as field errors like local ones.
func (f *Form[T]) Submit(ctx context.Context) error {
	values, ok := f.begin()
	if !ok {
		return ErrFormBusy
	}
	f.mu.Lock()
	f.err = nil
	f.mu.Unlock()

	if fields := validation.Struct(values); len(fields) > 0 {
		f.mu.Lock()
		f.fieldErrors = fields
		f.mu.Unlock()
		f.transition(FormInvalid)
		f.transition(FormIdle)
		return ErrFormInvalid
	}
	f.mu.Lock()
	f.fieldErrors = nil
	f.mu.Unlock()
	f.transition(FormValid)

	f.transition(FormSubmitting)
	err := f.submit(ctx, values)

	f.mu.Lock()
	f.err = err
	var apiErr *APIError
	if errors.As(err, &apiErr) && len(apiErr.Fields) > 0 {
		f.fieldErrors = apiErr.Fields
	}
	f.mu.Unlock()

	if err != nil {
		f.transition(FormFailure)
	} else {
		f.transition(FormSuccess)
	}
	f.transition(FormIdle)
	return err
}

// begin moves an idle form to validating and returns the values to check.
func (f *Form[T]) begin() (T, bool) {
	f.mu.Lock()
	if f.state != FormIdle {
		var zero T
		f.mu.Unlock()
		return zero, false
	}
	values := f.values
	f.state = FormValidating
	observer := f.onTransition
	f.mu.Unlock()

	if observer != nil {
		observer(FormIdle, FormValidating)
	}
	return values, true
}

func (f *Form[T]) transition(to FormState) {
	f.mu.Lock()
	from := f.state
	f.state = to
	observer := f.onTransition
	f.mu.Unlock()

	if observer != nil {
		observer(from, to)
	}
}
