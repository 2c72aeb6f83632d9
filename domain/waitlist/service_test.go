package waitlist

import (
	"context"
	"testing"
	"time"

	"github.com/hutmuts/hutmuts-api/internal/log"
	"github.com/hutmuts/hutmuts-api/internal/models"
	apperrors "github.com/hutmuts/hutmuts-api/pkg/errors"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

func newTestService(t *testing.T) (*MockWaitlistRepository, WaitlistService) {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)
	mockRepo := NewMockWaitlistRepository(ctrl)
	logger := log.NewLoggerWithJSONOutput()
	service := NewWaitlistService(logger, mockRepo, nil)
	return mockRepo, service
}

func TestJoinWaitlist_Success(t *testing.T) {
	mockRepo, service := newTestService(t)

	req := &JoinWaitlistRequest{Name: "Al", Email: "al@x.com", UserType: models.UserTypeRenter}

	mockRepo.EXPECT().FindEntryByEmail(gomock.Any(), "al@x.com").Return(nil, nil)
	mockRepo.EXPECT().CreateEntry(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, entry *models.WaitlistEntry) (*models.WaitlistEntry, error) {
			assert.Equal(t, "Al", entry.Name)
			assert.Equal(t, models.UserTypeRenter, entry.UserType)
			entry.ID = "e0b5f3a2-0000-0000-0000-000000000001"
			entry.CreatedAt = time.Now()
			return entry, nil
		},
	)

	result, err := service.JoinWaitlist(context.Background(), req)

	assert.NoError(t, err)
	assert.NotNil(t, result)
	assert.Equal(t, MsgJoined, result.Message)
	assert.Equal(t, "e0b5f3a2-0000-0000-0000-000000000001", result.ID)
}

func TestJoinWaitlist_NilRequest(t *testing.T) {
	_, service := newTestService(t)

	result, err := service.JoinWaitlist(context.Background(), nil)

	assert.Error(t, err)
	assert.Nil(t, result)
	assert.Equal(t, apperrors.ErrorTypeInvalidRequest, apperrors.GetErrorType(err))
}

func TestJoinWaitlist_DuplicateEmailPreCheck(t *testing.T) {
	mockRepo, service := newTestService(t)

	req := &JoinWaitlistRequest{Name: "Al", Email: "al@x.com", UserType: models.UserTypeRenter}
	existing := &models.WaitlistEntry{ID: "existing", Email: "al@x.com"}

	// No CreateEntry expectation: the pre-check must stop the flow.
	mockRepo.EXPECT().FindEntryByEmail(gomock.Any(), "al@x.com").Return(existing, nil)

	result, err := service.JoinWaitlist(context.Background(), req)

	assert.Error(t, err)
	assert.Nil(t, result)
	assert.Equal(t, apperrors.ErrorTypeInvalidRequest, apperrors.GetErrorType(err))
	assert.Equal(t, MsgEmailAlreadyOnList, apperrors.GetHumanReadableMessage(err))
}

func TestJoinWaitlist_DuplicateEmailRaceBackstop(t *testing.T) {
	mockRepo, service := newTestService(t)

	req := &JoinWaitlistRequest{Name: "Al", Email: "al@x.com", UserType: models.UserTypeRenter}

	// Another submission won the race between the check and the insert; the
	// repository surfaces the unique-index violation as the same outcome.
	mockRepo.EXPECT().FindEntryByEmail(gomock.Any(), "al@x.com").Return(nil, nil)
	mockRepo.EXPECT().CreateEntry(gomock.Any(), gomock.Any()).Return(nil, NewEmailAlreadyOnListError(nil))

	result, err := service.JoinWaitlist(context.Background(), req)

	assert.Error(t, err)
	assert.Nil(t, result)
	assert.Equal(t, MsgEmailAlreadyOnList, apperrors.GetHumanReadableMessage(err))
}

func TestJoinWaitlist_LookupError(t *testing.T) {
	mockRepo, service := newTestService(t)

	req := &JoinWaitlistRequest{Name: "Al", Email: "al@x.com", UserType: models.UserTypeRenter}

	mockRepo.EXPECT().FindEntryByEmail(gomock.Any(), "al@x.com").
		Return(nil, apperrors.NewDatabaseError("connection refused", nil))

	result, err := service.JoinWaitlist(context.Background(), req)

	assert.Error(t, err)
	assert.Nil(t, result)
	assert.Equal(t, apperrors.ErrorTypeDatabaseError, apperrors.GetErrorType(err))
}

func TestGetAllEntries_Success(t *testing.T) {
	mockRepo, service := newTestService(t)

	created := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
	entries := []*models.WaitlistEntry{
		{ID: "id-1", Name: "Al", Email: "al@x.com", UserType: models.UserTypeRenter, CreatedAt: created},
		{ID: "id-2", Name: "Bea", Email: "bea@x.com", UserType: models.UserTypeLandlord, CreatedAt: created},
	}

	mockRepo.EXPECT().GetAllEntries(gomock.Any()).Return(entries, nil)

	result, err := service.GetAllEntries(context.Background())

	assert.NoError(t, err)
	assert.Len(t, result, 2)
	assert.Equal(t, "id-1", result[0].ID)
	assert.Equal(t, models.UserTypeLandlord, result[1].UserType)
	assert.Equal(t, "2025-03-14T09:26:53Z", result[0].CreatedAt)
}

func TestGetAllEntries_RepositoryError(t *testing.T) {
	mockRepo, service := newTestService(t)

	mockRepo.EXPECT().GetAllEntries(gomock.Any()).
		Return(nil, apperrors.NewDatabaseError("db error", nil))

	result, err := service.GetAllEntries(context.Background())

	assert.Error(t, err)
	assert.Nil(t, result)
}

// fakeCache is an in-memory Cache for exercising the listing cache paths.
type fakeCache struct {
	values map[string]string
	sets   int
	hits   int
}

func newFakeCache() *fakeCache {
	return &fakeCache{values: make(map[string]string)}
}

func (f *fakeCache) Get(ctx context.Context, key string) (string, error) {
	v := f.values[key]
	if v != "" {
		f.hits++
	}
	return v, nil
}

func (f *fakeCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	f.sets++
	f.values[key] = value
	return nil
}

func (f *fakeCache) Delete(ctx context.Context, key string) error {
	delete(f.values, key)
	return nil
}

func TestGetAllEntries_ServesSecondReadFromCache(t *testing.T) {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)
	mockRepo := NewMockWaitlistRepository(ctrl)
	cache := newFakeCache()
	service := NewWaitlistService(log.NewLoggerWithJSONOutput(), mockRepo, cache)

	entries := []*models.WaitlistEntry{
		{ID: "id-1", Name: "Al", Email: "al@x.com", UserType: models.UserTypeRenter, CreatedAt: time.Now()},
	}

	// Exactly one repository read for two service reads.
	mockRepo.EXPECT().GetAllEntries(gomock.Any()).Return(entries, nil).Times(1)

	first, err := service.GetAllEntries(context.Background())
	assert.NoError(t, err)
	second, err := service.GetAllEntries(context.Background())
	assert.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, cache.sets)
	assert.Equal(t, 1, cache.hits)
}

func TestJoinWaitlist_InvalidatesListingCache(t *testing.T) {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)
	mockRepo := NewMockWaitlistRepository(ctrl)
	cache := newFakeCache()
	cache.values[listingCacheKey] = `[]`
	service := NewWaitlistService(log.NewLoggerWithJSONOutput(), mockRepo, cache)

	mockRepo.EXPECT().FindEntryByEmail(gomock.Any(), gomock.Any()).Return(nil, nil)
	mockRepo.EXPECT().CreateEntry(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, entry *models.WaitlistEntry) (*models.WaitlistEntry, error) {
			entry.ID = "id-1"
			return entry, nil
		},
	)

	_, err := service.JoinWaitlist(context.Background(), &JoinWaitlistRequest{
		Name: "Al", Email: "al@x.com", UserType: models.UserTypeRenter,
	})

	assert.NoError(t, err)
	assert.NotContains(t, cache.values, listingCacheKey)
}
