package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/testutil"
	"github.com/Skotchmaster/storefront/pkg/httperr"
)

func newRepo(t *testing.T) *repo.GormRepo {
	t.Helper()
	return repo.New(testutil.NewDB(t))
}

func requireStatus(t *testing.T, err error, status int) *httperr.Error {
	t.Helper()
	require.Error(t, err)
	var he *httperr.Error
	require.True(t, errors.As(err, &he), "expected *httperr.Error, got %T", err)
	assert.Equal(t, status, he.Status, he.Message)
	return he
}

type recordedEvent struct {
	topic string
	key   string
	event any
}

type fakePublisher struct {
	events []recordedEvent
	err    error
}

func (f *fakePublisher) PublishEvent(_ context.Context, topic, key string, event any) error {
	f.events = append(f.events, recordedEvent{topic: topic, key: key, event: event})
	return f.err
}

func (f *fakePublisher) Close() error { return nil }
