package tasks_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/Ilyes4CODE/Market-place-live/internal/config"
	"github.com/Ilyes4CODE/Market-place-live/internal/tasks"
)

// MockAuctionSweeper
type MockAuctionSweeper struct {
	mock.Mock
}

func (m *MockAuctionSweeper) SweepExpired(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockAuctionSweeper) ArchiveExpiredHistory(ctx context.Context, retention time.Duration) (int64, error) {
	args := m.Called(ctx, retention)
	return args.Get(0).(int64), args.Error(1)
}

func TestHandleAuctionSweepTask_Success(t *testing.T) {
	sweeper := new(MockAuctionSweeper)
	sweeper.On("SweepExpired", mock.Anything).Return(3, nil)

	p := tasks.NewTaskProcessor(&config.Config{}, sweeper)
	err := p.HandleAuctionSweepTask(context.Background(), asynq.NewTask(tasks.TypeAuctionSweep, nil))

	assert.NoError(t, err)
	sweeper.AssertExpectations(t)
}

func TestHandleAuctionSweepTask_ErrorPropagatesForRetry(t *testing.T) {
	sweeper := new(MockAuctionSweeper)
	sweeper.On("SweepExpired", mock.Anything).Return(0, errors.New("store unavailable"))

	p := tasks.NewTaskProcessor(&config.Config{}, sweeper)
	err := p.HandleAuctionSweepTask(context.Background(), asynq.NewTask(tasks.TypeAuctionSweep, nil))

	assert.Error(t, err)
	sweeper.AssertExpectations(t)
}

func TestHandleAuctionArchiveTask_UsesConfiguredRetention(t *testing.T) {
	cfg := &config.Config{ArchiveRetention: 24 * time.Hour}
	sweeper := new(MockAuctionSweeper)
	sweeper.On("ArchiveExpiredHistory", mock.Anything, 24*time.Hour).Return(int64(2), nil)

	p := tasks.NewTaskProcessor(cfg, sweeper)
	err := p.HandleAuctionArchiveTask(context.Background(), asynq.NewTask(tasks.TypeAuctionArchive, nil))

	assert.NoError(t, err)
	sweeper.AssertExpectations(t)
}
