package polling

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestFixedIntervalStrategy(t *testing.T) {
	s := NewFixedIntervalStrategy(30 * time.Second)

	assert.Equal(t, 30*time.Second, s.NextInterval(true))
	assert.Equal(t, 30*time.Second, s.NextInterval(false))
	s.Reset()
	assert.Equal(t, 30*time.Second, s.NextInterval(false))
}

func TestExponentialBackoffStrategy(t *testing.T) {
	s := NewExponentialBackoffStrategy(10*time.Second, 60*time.Second, 2.0, testLogger())

	t.Run("성공하면 기본 간격", func(t *testing.T) {
		assert.Equal(t, 10*time.Second, s.NextInterval(true))
	})

	t.Run("연속 실패 시 간격이 지수적으로 증가", func(t *testing.T) {
		assert.Equal(t, 10*time.Second, s.NextInterval(false))
		assert.Equal(t, 20*time.Second, s.NextInterval(false))
		assert.Equal(t, 40*time.Second, s.NextInterval(false))
	})

	t.Run("최대 간격을 넘지 않음", func(t *testing.T) {
		assert.Equal(t, 60*time.Second, s.NextInterval(false))
		assert.Equal(t, 60*time.Second, s.NextInterval(false))
	})

	t.Run("성공하면 백오프 리셋", func(t *testing.T) {
		assert.Equal(t, 10*time.Second, s.NextInterval(true))
		assert.Equal(t, 10*time.Second, s.NextInterval(false))
	})
}

func TestExponentialBackoffStrategy_Reset(t *testing.T) {
	s := NewExponentialBackoffStrategy(10*time.Second, 60*time.Second, 2.0, testLogger())

	s.NextInterval(false)
	s.NextInterval(false)
	s.Reset()

	assert.Equal(t, 10*time.Second, s.NextInterval(false))
}

func TestExponentialBackoffStrategy_InvalidMultiplier(t *testing.T) {
	// 1 이하의 계수는 기본값으로 대체
	s := NewExponentialBackoffStrategy(10*time.Second, 60*time.Second, 0.5, testLogger())

	s.NextInterval(false)
	assert.Equal(t, 20*time.Second, s.NextInterval(false))
}

func TestPollingController_RunsTaskUntilCancelled(t *testing.T) {
	controller := NewPollingController(NewFixedIntervalStrategy(5*time.Millisecond), testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	var runs atomic.Int32

	done := make(chan error, 1)
	go func() {
		done <- controller.Start(ctx, func(ctx context.Context) error {
			if runs.Add(1) >= 3 {
				cancel()
			}
			return nil
		})
	}()

	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("polling controller did not stop")
	}
	assert.GreaterOrEqual(t, runs.Load(), int32(3))
}

func TestPollingController_ContinuesAfterTaskError(t *testing.T) {
	controller := NewPollingController(NewFixedIntervalStrategy(5*time.Millisecond), testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	var runs atomic.Int32

	done := make(chan error, 1)
	go func() {
		done <- controller.Start(ctx, func(ctx context.Context) error {
			if runs.Add(1) >= 2 {
				cancel()
			}
			return errors.New("작업 실패")
		})
	}()

	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("polling controller did not stop")
	}
	assert.GreaterOrEqual(t, runs.Load(), int32(2))
}
