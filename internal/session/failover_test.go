package session

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"darbot/internal/booking"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) Get(ctx context.Context, userID int64) (*booking.Session, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.Session), args.Error(1)
}

func (m *mockStore) Set(ctx context.Context, session *booking.Session) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *mockStore) Delete(ctx context.Context, userID int64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func TestFailoverStore(t *testing.T) {
	primary := new(mockStore)
	fallback := new(mockStore)
	logger := zerolog.New(io.Discard)
	store := NewFailoverStore(primary, fallback, &logger)
	ctx := context.Background()

	t.Run("PrimarySuccess", func(t *testing.T) {
		s := booking.NewSession(1, 1)
		primary.On("Get", ctx, int64(1)).Return(s, nil).Once()

		got, err := store.Get(ctx, 1)
		assert.NoError(t, err)
		assert.Equal(t, s, got)
		primary.AssertExpectations(t)
	})

	t.Run("PrimaryFailFallbackSuccess", func(t *testing.T) {
		s := booking.NewSession(2, 2)
		primary.On("Get", ctx, int64(2)).Return(nil, errors.New("fail")).Once()
		fallback.On("Get", ctx, int64(2)).Return(s, nil).Once()

		got, err := store.Get(ctx, 2)
		assert.NoError(t, err)
		assert.Equal(t, s, got)
		assert.True(t, store.isDown.Load())
		primary.AssertExpectations(t)
		fallback.AssertExpectations(t)
	})

	t.Run("DownSkipsPrimary", func(t *testing.T) {
		store.isDown.Store(true)
		store.lastCheck = time.Now()

		s := booking.NewSession(3, 3)
		fallback.On("Get", ctx, int64(3)).Return(s, nil).Once()

		got, err := store.Get(ctx, 3)
		assert.NoError(t, err)
		assert.Equal(t, s, got)
		fallback.AssertExpectations(t)
	})

	t.Run("RecoveryAttempt", func(t *testing.T) {
		store.isDown.Store(true)
		store.lastCheck = time.Now().Add(-2 * time.Minute)

		s := booking.NewSession(4, 4)
		primary.On("Get", ctx, int64(4)).Return(s, nil).Once()

		got, err := store.Get(ctx, 4)
		assert.NoError(t, err)
		assert.Equal(t, s, got)
		assert.False(t, store.isDown.Load())
		primary.AssertExpectations(t)
	})

	t.Run("SetWritesBothStores", func(t *testing.T) {
		store.isDown.Store(false)
		s := booking.NewSession(5, 5)
		fallback.On("Set", ctx, s).Return(nil).Once()
		primary.On("Set", ctx, s).Return(nil).Once()

		assert.NoError(t, store.Set(ctx, s))
		primary.AssertExpectations(t)
		fallback.AssertExpectations(t)
	})

	t.Run("SetSurvivesPrimaryFailure", func(t *testing.T) {
		store.isDown.Store(false)
		s := booking.NewSession(6, 6)
		fallback.On("Set", ctx, s).Return(nil).Once()
		primary.On("Set", ctx, s).Return(errors.New("fail")).Once()

		assert.NoError(t, store.Set(ctx, s))
		assert.True(t, store.isDown.Load())
	})
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore(time.Hour)
	ctx := context.Background()

	got, err := store.Get(ctx, 1)
	assert.NoError(t, err)
	assert.Nil(t, got)

	s := booking.NewSession(1, 1)
	assert.NoError(t, store.Set(ctx, s))

	got, err = store.Get(ctx, 1)
	assert.NoError(t, err)
	assert.Same(t, s, got)

	assert.NoError(t, store.Delete(ctx, 1))
	got, err = store.Get(ctx, 1)
	assert.NoError(t, err)
	assert.Nil(t, got)
}
