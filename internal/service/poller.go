package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"channelguard/internal/metrics"
	"channelguard/internal/models"
	"channelguard/internal/retry"
	"channelguard/pkg/telegram/types"

	"github.com/sirupsen/logrus"
)

// UpdatePoller drives the bot in long-polling mode: it fetches update
// batches from the Bot API and feeds them to the router one at a time, in
// order. Transport failures are retried with exponential backoff.
type UpdatePoller struct {
	bot            types.BotClient
	router         *Router
	retryConfig    models.RetryConfig
	pollTimeoutSec int
	logger         *logrus.Logger

	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running bool
	offset  int64
	mu      sync.RWMutex
}

func NewUpdatePoller(bot types.BotClient, router *Router, retryConfig models.RetryConfig, pollTimeoutSec int, logger *logrus.Logger) *UpdatePoller {
	return &UpdatePoller{
		bot:            bot,
		router:         router,
		retryConfig:    retryConfig,
		pollTimeoutSec: pollTimeoutSec,
		logger:         logger,
	}
}

// Start begins the background polling process
func (up *UpdatePoller) Start(ctx context.Context) error {
	up.mu.Lock()
	defer up.mu.Unlock()

	if up.running {
		return fmt.Errorf("update poller is already running")
	}

	// Verify credentials before starting.
	if _, err := up.bot.GetMe(ctx); err != nil {
		return fmt.Errorf("failed to reach the Bot API before starting poller: %w", err)
	}

	up.ctx, up.cancel = context.WithCancel(ctx)
	up.running = true

	up.wg.Add(1)
	go up.pollLoop()

	up.logger.WithFields(logrus.Fields{
		"timeout_sec": up.pollTimeoutSec,
	}).Info("Update poller started")

	return nil
}

// Stop gracefully stops the polling process
func (up *UpdatePoller) Stop() {
	up.mu.Lock()
	defer up.mu.Unlock()

	if !up.running {
		return
	}

	up.logger.Info("Stopping update poller...")
	up.cancel()
	up.wg.Wait()
	up.running = false
	up.logger.Info("Update poller stopped")
}

// IsRunning returns whether the poller is currently active
func (up *UpdatePoller) IsRunning() bool {
	up.mu.RLock()
	defer up.mu.RUnlock()
	return up.running
}

func (up *UpdatePoller) pollLoop() {
	defer up.wg.Done()

	backoff := retry.NewBackoff(retry.BackoffConfig{
		InitialDelay: time.Duration(up.retryConfig.InitialBackoffMs) * time.Millisecond,
		MaxDelay:     time.Duration(up.retryConfig.MaxBackoffMs) * time.Millisecond,
		Multiplier:   2.0,
		MaxAttempts:  up.retryConfig.MaxAttempts,
		Jitter:       true,
	})

	for {
		select {
		case <-up.ctx.Done():
			return
		default:
		}

		var updates []types.Update
		err := backoff.Retry(up.ctx, func() error {
			var pollErr error
			updates, pollErr = up.bot.GetUpdates(up.ctx, up.offset, up.pollTimeoutSec)
			return pollErr
		})
		if err != nil {
			if up.ctx.Err() != nil {
				return
			}
			up.logger.WithError(err).Error("Polling failed after retries, continuing")
			continue
		}

		for _, update := range updates {
			up.router.Dispatch(up.ctx, update)
			up.offset = update.UpdateID + 1
			metrics.IncrementCounter("updates_processed", nil, "Updates dispatched to handlers")
		}
	}
}
