package waitlistclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_MirrorsServerRules(t *testing.T) {
	violations := Validate(Submission{Name: "A", Email: "bad-email", UserType: "other"})

	require.Len(t, violations, 3)

	byField := make(map[string]string, len(violations))
	for _, v := range violations {
		byField[v.Field] = v.Message
	}

	assert.Equal(t, "Name must be at least 2 characters", byField["name"])
	assert.Equal(t, "Please enter a valid email address", byField["email"])
	assert.Equal(t, "Please select a user type", byField["userType"])
}

func TestValidate_AcceptsBothUserTypes(t *testing.T) {
	assert.Empty(t, Validate(Submission{Name: "Al", Email: "al@x.com", UserType: "renter"}))
	assert.Empty(t, Validate(Submission{Name: "Bea", Email: "bea@x.com", UserType: "landlord"}))
}

func TestFormSubmit_LocalValidationShortCircuits(t *testing.T) {
	var requests int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
	}))
	defer server.Close()

	form := NewForm(NewClient(server.URL, nil))

	result, err := form.Submit(context.Background(), Submission{Name: "A", Email: "bad", UserType: "renter"})

	require.Error(t, err)
	assert.Nil(t, result)

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.NotEmpty(t, validationErr.Violations)

	assert.Equal(t, StateEditing, form.State())
	assert.Equal(t, int32(0), atomic.LoadInt32(&requests), "no request should be made for locally invalid input")
}

func TestFormSubmit_SuccessIsTerminal(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]string{"message": "Successfully joined the waitlist", "id": "id-1"})
	}))
	defer server.Close()

	form := NewForm(NewClient(server.URL, nil))
	sub := Submission{Name: "Al", Email: "al@x.com", UserType: "renter"}

	result, err := form.Submit(context.Background(), sub)
	require.NoError(t, err)
	assert.Equal(t, "id-1", result.ID)
	assert.Equal(t, StateSuccess, form.State())
	assert.Empty(t, form.Notice())

	_, err = form.Submit(context.Background(), sub)
	assert.ErrorIs(t, err, ErrAlreadyJoined)
}

func TestFormSubmit_RejectionReturnsToEditingWithNotice(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "This email is already on the waitlist"})
	}))
	defer server.Close()

	form := NewForm(NewClient(server.URL, nil))

	_, err := form.Submit(context.Background(), Submission{Name: "Al", Email: "al@x.com", UserType: "renter"})

	require.Error(t, err)
	assert.Equal(t, StateEditing, form.State())
	assert.Equal(t, "This email is already on the waitlist", form.Notice())
}

func TestFormSubmit_ServerFailureNotice(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"error": "Failed to join waitlist. Please try again."})
	}))
	defer server.Close()

	form := NewForm(NewClient(server.URL, nil))

	_, err := form.Submit(context.Background(), Submission{Name: "Al", Email: "al@x.com", UserType: "renter"})

	require.Error(t, err)
	assert.Equal(t, StateEditing, form.State())
	assert.Equal(t, "Failed to join waitlist. Please try again.", form.Notice())
}

func TestFormSubmit_SecondConcurrentSubmitIsRejected(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]string{"message": "Successfully joined the waitlist", "id": "id-1"})
	}))
	defer server.Close()

	form := NewForm(NewClient(server.URL, nil))
	sub := Submission{Name: "Al", Email: "al@x.com", UserType: "renter"}

	firstDone := make(chan error, 1)
	go func() {
		_, err := form.Submit(context.Background(), sub)
		firstDone <- err
	}()

	// Wait for the first submission to be in flight.
	require.Eventually(t, func() bool {
		return form.State() == StateSubmitting
	}, 2*time.Second, 5*time.Millisecond)

	_, err := form.Submit(context.Background(), sub)
	assert.ErrorIs(t, err, ErrSubmissionInFlight)

	close(release)
	require.NoError(t, <-firstDone)
	assert.Equal(t, StateSuccess, form.State())
}
