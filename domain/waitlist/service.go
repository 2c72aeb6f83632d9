package waitlist

import (
	"context"
	"encoding/json"
	"time"

	"github.com/hutmuts/hutmuts-api/internal/log"
	"github.com/hutmuts/hutmuts-api/pkg/circuitbreaker"
	apperrors "github.com/hutmuts/hutmuts-api/pkg/errors"
)

// Cache is the optional listing cache. A nil Cache disables caching entirely.
type Cache interface {
	// Get returns ("", nil) when a key is not found.
	Get(ctx context.Context, key string) (string, error)
	// Set uses ttl=0 for no expiry.
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

const (
	listingCacheKey = "waitlist:entries"
	listingCacheTTL = 30 * time.Second
)

type WaitlistService interface {
	// JoinWaitlist validates-checks-inserts a submission. The email existence
	// check and the insert are not atomic; the unique index on email is the
	// backstop for submissions racing between the two.
	JoinWaitlist(ctx context.Context, req *JoinWaitlistRequest) (*JoinWaitlistResponse, error)

	// GetAllEntries returns every waitlist entry in storage-native order.
	GetAllEntries(ctx context.Context) ([]WaitlistEntryResponse, error)
}

type waitlistService struct {
	logger     *log.Logger
	repository WaitlistRepository
	cache      Cache
	breaker    circuitbreaker.CircuitBreaker
}

func NewWaitlistService(logger *log.Logger, repository WaitlistRepository, cache Cache) WaitlistService {
	return &waitlistService{
		logger:     logger,
		repository: repository,
		cache:      cache,
		breaker:    circuitbreaker.NewCircuitBreaker(nil),
	}
}

func (s *waitlistService) JoinWaitlist(ctx context.Context, req *JoinWaitlistRequest) (*JoinWaitlistResponse, error) {
	logger := log.GetLoggerInstanceFromContext(ctx, s.logger)

	if req == nil {
		logger.Error("JoinWaitlist received empty request")
		return nil, apperrors.NewInvalidRequestError("request cannot be nil", nil)
	}

	existing, err := s.repository.FindEntryByEmail(ctx, req.Email)
	if err != nil {
		logger.Error("Failed to check waitlist for existing email", "error", err)
		return nil, err
	}
	if existing != nil {
		logger.Info("Rejected duplicate waitlist submission", "email", req.Email)
		return nil, NewEmailAlreadyOnListError(nil)
	}

	// A concurrent submission with the same email can still pass the check
	// above; the unique index surfaces it here as the same duplicate outcome.
	entry, err := s.repository.CreateEntry(ctx, ToWaitlistEntryModel(req))
	if err != nil {
		logger.Error("Failed to create waitlist entry", "error", err)
		return nil, err
	}

	s.invalidateListingCache(ctx, logger)

	return &JoinWaitlistResponse{Message: MsgJoined, ID: entry.ID}, nil
}

func (s *waitlistService) GetAllEntries(ctx context.Context) ([]WaitlistEntryResponse, error) {
	logger := log.GetLoggerInstanceFromContext(ctx, s.logger)

	if cached, ok := s.readListingCache(ctx, logger); ok {
		return cached, nil
	}

	entries, err := s.repository.GetAllEntries(ctx)
	if err != nil {
		logger.Error("Failed to get all waitlist entries", "error", err)
		return nil, err
	}

	responses := make([]WaitlistEntryResponse, 0, len(entries))
	for _, entry := range entries {
		responses = append(responses, ToWaitlistEntryResponse(entry))
	}

	s.writeListingCache(ctx, logger, responses)

	return responses, nil
}

// Cache access is best-effort and guarded by a circuit breaker: when Redis is
// unhealthy the breaker opens and reads fall straight through to the database.

func (s *waitlistService) readListingCache(ctx context.Context, logger *log.Logger) ([]WaitlistEntryResponse, bool) {
	if s.cache == nil {
		return nil, false
	}

	var raw string
	err := s.breaker.Call(func() error {
		var cacheErr error
		raw, cacheErr = s.cache.Get(ctx, listingCacheKey)
		return cacheErr
	})
	if err != nil || raw == "" {
		if err != nil {
			logger.Warn("Listing cache read failed", "error", err)
		}
		return nil, false
	}

	var responses []WaitlistEntryResponse
	if err := json.Unmarshal([]byte(raw), &responses); err != nil {
		logger.Warn("Listing cache held malformed payload", "error", err)
		return nil, false
	}

	return responses, true
}

func (s *waitlistService) writeListingCache(ctx context.Context, logger *log.Logger, responses []WaitlistEntryResponse) {
	if s.cache == nil {
		return
	}

	raw, err := json.Marshal(responses)
	if err != nil {
		return
	}

	if err := s.breaker.Call(func() error {
		return s.cache.Set(ctx, listingCacheKey, string(raw), listingCacheTTL)
	}); err != nil {
		logger.Warn("Listing cache write failed", "error", err)
	}
}

func (s *waitlistService) invalidateListingCache(ctx context.Context, logger *log.Logger) {
	if s.cache == nil {
		return
	}

	if err := s.breaker.Call(func() error {
		return s.cache.Delete(ctx, listingCacheKey)
	}); err != nil {
		logger.Warn("Listing cache invalidation failed", "error", err)
	}
}
