package pubsub

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qs3c/blog_go_server/internal/model"
	"github.com/qs3c/blog_go_server/internal/model/dto"
)

func setupRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return client, mr
}

func waitForSubscriber(t *testing.T, mr *miniredis.Miniredis) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if mr.PubSubNumSub(ChannelCommentEvents)[ChannelCommentEvents] > 0 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("subscriber never attached")
}

func TestPublisherSubscriber(t *testing.T) {
	client, mr := setupRedis(t)

	publisher := NewPublisher(client)
	subscriber := NewSubscriber(client)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	received := make(chan *dto.CommentEvent, 1)
	go func() {
		subscriber.Subscribe(ctx, func(event *dto.CommentEvent) {
			received <- event
		})
	}()
	waitForSubscriber(t, mr)

	event := &dto.CommentEvent{
		Type:   dto.EventCommentCreated,
		PostID: "p1",
		Comment: &dto.CommentItem{
			ID:      "c1",
			Content: "Nice post",
			PostID:  "p1",
			Status:  model.StatusApproved,
		},
	}
	require.NoError(t, publisher.PublishCommentEvent(ctx, event))

	select {
	case got := <-received:
		assert.Equal(t, dto.EventCommentCreated, got.Type)
		assert.Equal(t, "p1", got.PostID)
		require.NotNil(t, got.Comment)
		assert.Equal(t, "c1", got.Comment.ID)
		assert.Equal(t, model.StatusApproved, got.Comment.Status)
	case <-ctx.Done():
		t.Fatal("Timeout waiting for event")
	}
}

func TestSubscriber_IgnoresMalformedPayload(t *testing.T) {
	client, mr := setupRedis(t)
	subscriber := NewSubscriber(client)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	received := make(chan *dto.CommentEvent, 2)
	go func() {
		subscriber.Subscribe(ctx, func(event *dto.CommentEvent) {
			received <- event
		})
	}()
	waitForSubscriber(t, mr)

	mr.Publish(ChannelCommentEvents, "{broken")
	require.NoError(t, NewPublisher(client).PublishCommentEvent(ctx, &dto.CommentEvent{Type: dto.EventCommentDeleted, PostID: "p2"}))

	select {
	case got := <-received:
		assert.Equal(t, dto.EventCommentDeleted, got.Type)
	case <-ctx.Done():
		t.Fatal("Timeout waiting for event")
	}
}

func TestSubscriber_StopsOnCancel(t *testing.T) {
	client, mr := setupRedis(t)
	subscriber := NewSubscriber(client)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- subscriber.Subscribe(ctx, func(*dto.CommentEvent) {})
	}()
	waitForSubscriber(t, mr)

	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("subscriber did not stop")
	}
}

func TestPublisher_NilClient(t *testing.T) {
	var p *Publisher
	assert.NoError(t, p.PublishCommentEvent(context.Background(), &dto.CommentEvent{}))
	assert.NoError(t, NewPublisher(nil).PublishCommentEvent(context.Background(), &dto.CommentEvent{}))
}
