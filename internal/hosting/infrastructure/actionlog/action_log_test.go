package actionlog

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kolabsys/phlesk/internal/hosting/domain"
	"github.com/kolabsys/phlesk/internal/shared/infrastructure/eventbus"
	"github.com/kolabsys/phlesk/pkg/observability"
)

type capturePublisher struct {
	keys     []string
	payloads [][]byte
	err      error
}

func (c *capturePublisher) Publish(ctx context.Context, routingKey string, payload []byte) error {
	c.keys = append(c.keys, routingKey)
	c.payloads = append(c.payloads, payload)
	return c.err
}

func (c *capturePublisher) Close() error { return nil }

func TestPublisher_Submit(t *testing.T) {
	pub := &capturePublisher{}
	ctx := observability.WithCorrelationID(context.Background(), "corr-1")

	err := NewPublisher(pub, nil).Submit(ctx, domain.EnableDomainEntry("kolab", 10))

	require.NoError(t, err)
	require.Equal(t, []string{"ext_kolab_enable_domain"}, pub.keys)

	var env eventbus.Envelope
	require.NoError(t, json.Unmarshal(pub.payloads[0], &env))
	assert.Equal(t, "corr-1", env.CorrelationID)
	assert.JSONEq(t, `{"action":"enable_domain","module":"kolab","object_id":10,"old_values":[],"new_values":["kolab"]}`, string(env.Payload))
}

func TestPublisher_SubmitError(t *testing.T) {
	pub := &capturePublisher{err: errors.New("broker down")}

	err := NewPublisher(pub, nil).Submit(context.Background(), domain.DisableDomainEntry("kolab", 10))

	assert.ErrorContains(t, err, "broker down")
}

func TestRecorder_OnInProcessBus(t *testing.T) {
	bus := eventbus.NewInProcessBus(nil)
	recorder := NewRecorder(2, nil)
	bus.Subscribe(recorder)
	actionLog := NewPublisher(bus, nil)
	ctx := context.Background()

	require.NoError(t, actionLog.Submit(ctx, domain.EnableDomainEntry("kolab", 1)))
	require.NoError(t, actionLog.Submit(ctx, domain.DisableDomainEntry("kolab", 1)))
	require.NoError(t, actionLog.Submit(ctx, domain.EnableDomainEntry("kolab", 2)))

	entries := recorder.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, domain.ActionDisableDomain, entries[0].Action)
	assert.Equal(t, int64(2), entries[1].ObjectID)
}
