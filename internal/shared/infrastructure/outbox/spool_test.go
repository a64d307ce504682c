package outbox_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kolabsys/phlesk/internal/shared/infrastructure/eventbus"
	"github.com/kolabsys/phlesk/internal/shared/infrastructure/outbox"
)

func TestNewMessage(t *testing.T) {
	env, err := eventbus.NewEnvelope("ext_kolab_enable", map[string]string{"domain": "example.com"})
	require.NoError(t, err)
	body, err := json.Marshal(env)
	require.NoError(t, err)

	tests := []struct {
		name    string
		payload []byte
		eventID uuid.UUID
	}{
		{name: "envelope keeps its event id", payload: body, eventID: env.EventID},
		{name: "raw payload gets a new id", payload: []byte("not json")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := outbox.NewMessage("ext_kolab_enable", tt.payload)
			assert.Equal(t, "ext_kolab_enable", msg.RoutingKey)
			assert.Equal(t, tt.payload, msg.Payload)
			assert.NotEqual(t, uuid.Nil, msg.EventID)
			if tt.eventID != uuid.Nil {
				assert.Equal(t, tt.eventID, msg.EventID)
			}
			assert.False(t, msg.IsDead())
		})
	}
}

func TestSpoolingPublisher(t *testing.T) {
	ctx := context.Background()

	t.Run("delivered events are not spooled", func(t *testing.T) {
		repo := &mockRepository{}
		pub := &mockPublisher{}
		sp := outbox.NewSpoolingPublisher(pub, repo, nil)

		require.NoError(t, sp.Publish(ctx, "ext_kolab_enable", []byte(`{}`)))
		assert.Equal(t, []string{"ext_kolab_enable"}, pub.keys)
		assert.Empty(t, repo.messages)
	})

	t.Run("refused events are spooled", func(t *testing.T) {
		repo := &mockRepository{}
		pub := &mockPublisher{err: errors.New("channel closed")}
		sp := outbox.NewSpoolingPublisher(pub, repo, nil)

		require.NoError(t, sp.Publish(ctx, "ext_kolab_disable", []byte(`{}`)))
		require.Len(t, repo.messages, 1)
		assert.Equal(t, "ext_kolab_disable", repo.messages[0].RoutingKey)
	})

	t.Run("close closes the broker", func(t *testing.T) {
		pub := &mockPublisher{}
		sp := outbox.NewSpoolingPublisher(pub, &mockRepository{}, nil)
		require.NoError(t, sp.Close())
		assert.True(t, pub.closed)
	})
}
