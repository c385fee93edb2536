package client

import (
	"context"
	"net/http"
	"sync"
	"testing"

	"algoritmia_backend/pkg/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type studentForm struct {
	Name string `json:"name" binding:"required"`
	DNI  string `json:"dni" binding:"required,dni"`
}

type transitions struct {
	mu    sync.Mutex
	steps []FormState
}

func (tr *transitions) observe(_, to FormState) {
	tr.mu.Lock()
	tr.steps = append(tr.steps, to)
	tr.mu.Unlock()
}

func (tr *transitions) all() []FormState {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	return append([]FormState(nil), tr.steps...)
}

func TestFormInvalidNeverSubmits(t *testing.T) {
	called := false
	f := NewForm(studentForm{Name: "Ana", DNI: "12ab"}, func(ctx context.Context, v studentForm) error {
		called = true
		return nil
	})
	tr := &transitions{}
	f.OnTransition(tr.observe)

	err := f.Submit(context.Background())
	assert.ErrorIs(t, err, ErrFormInvalid)
	assert.False(t, called)
	assert.Equal(t, []FormState{FormValidating, FormInvalid, FormIdle}, tr.all())
	assert.Equal(t, FormIdle, f.State())

	fields := f.FieldErrors()
	require.Len(t, fields, 1)
	assert.Equal(t, "dni", fields[0].Field)
}

func TestFormSubmitSuccess(t *testing.T) {
	var sent studentForm
	f := NewForm(studentForm{}, func(ctx context.Context, v studentForm) error {
		sent = v
		return nil
	})
	tr := &transitions{}
	f.OnTransition(tr.observe)

	assert.NotEmpty(t, f.Validate())
	require.True(t, f.Set(studentForm{Name: "Ana", DNI: "12345678"}))
	assert.Empty(t, f.Validate())

	require.NoError(t, f.Submit(context.Background()))
	assert.Equal(t, "12345678", sent.DNI)
	assert.Empty(t, f.FieldErrors())
	assert.NoError(t, f.Err())
	assert.Equal(t, []FormState{
		FormValidating, FormInvalid, FormIdle,
		FormValidating, FormValid, FormIdle,
		FormValidating, FormValid, FormSubmitting, FormSuccess, FormIdle,
	}, tr.all())
}

func TestFormFailureKeepsServerFieldErrors(t *testing.T) {
	f := NewForm(studentForm{Name: "Ana", DNI: "12345678"}, func(ctx context.Context, v studentForm) error {
		return &APIError{
			Status:  http.StatusConflict,
			Message: "dni already registered",
			Fields:  []validation.FieldError{{Field: "dni", Error: "dni already registered"}},
		}
	})
	tr := &transitions{}
	f.OnTransition(tr.observe)

	err := f.Submit(context.Background())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, err, f.Err())
	assert.Equal(t, FormIdle, f.State())
	assert.Equal(t, []FormState{FormValidating, FormValid, FormSubmitting, FormFailure, FormIdle}, tr.all())
	require.Len(t, f.FieldErrors(), 1)
	assert.Equal(t, "dni", f.FieldErrors()[0].Field)
}

func TestFormRejectsConcurrentSubmit(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	f := NewForm(studentForm{Name: "Ana", DNI: "12345678"}, func(ctx context.Context, v studentForm) error {
		close(entered)
		<-release
		return nil
	})

	done := make(chan error, 1)
	go func() { done <- f.Submit(context.Background()) }()
	<-entered

	assert.Equal(t, FormSubmitting, f.State())
	assert.ErrorIs(t, f.Submit(context.Background()), ErrFormBusy)
	assert.False(t, f.Set(studentForm{}))

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, FormIdle, f.State())
	assert.Equal(t, "Ana", f.Values().Name)
}
