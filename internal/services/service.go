package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Gopher0727/GroupChat/internal/models"
	"github.com/Gopher0727/GroupChat/internal/repositories"
	logger "github.com/Gopher0727/GroupChat/middleware/log"
)

// Option configures the shared parts of a service.
type Option func(*base)

// WithClock replaces time.Now as the source of server-set timestamps.
func WithClock(now func() time.Time) Option {
	return func(b *base) { b.now = now }
}

func WithLogger(l *logger.Logger) Option {
	return func(b *base) {
		if l != nil {
			b.log = l
		}
	}
}

// base 各服务共用的依赖
type base struct {
	store repositories.Store
	log   *logger.Logger
	now   func() time.Time
}

func newBase(store repositories.Store, opts []Option) base {
	b := base{store: store, log: logger.NewNop(), now: time.Now}
	for _, opt := range opts {
		opt(&b)
	}
	return b
}

// timestamp returns the current time in UTC at the precision every backend
// can store.
func (b *base) timestamp() time.Time {
	return b.now().UTC().Truncate(time.Microsecond)
}

// removeOrphans deletes the groups among ids that lost their last member.
// It must run inside the transaction that removed the memberships.
func (b *base) removeOrphans(ctx context.Context, r repositories.Repos, ids []uint) error {
	deleted, err := r.Groups.DeleteOrphans(ctx, ids)
	if err != nil {
		return err
	}
	for _, id := range deleted {
		b.log.InfoContext(ctx, "empty group deleted", logger.GroupID(id))
	}
	return nil
}

// logFailure records unexpected storage failures. Model errors are expected
// outcomes and are not logged here.
func (b *base) logFailure(ctx context.Context, op string, err error) error {
	if err != nil && !models.IsKnown(err) {
		b.log.ErrorContext(ctx, op+" failed", zap.Error(err))
	}
	return err
}

func requireUser(ctx context.Context, r repositories.Repos, username string) error {
	ok, err := r.Users.Exists(ctx, username)
	if err != nil {
		return err
	}
	if !ok {
		return models.NotFoundf("user %q not found", username)
	}
	return nil
}

func requireGroup(ctx context.Context, r repositories.Repos, groupID uint) error {
	ok, err := r.Groups.Exists(ctx, groupID)
	if err != nil {
		return err
	}
	if !ok {
		return models.NotFoundf("group %d not found", groupID)
	}
	return nil
}
