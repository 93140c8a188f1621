package realtime

import (
	"testing"

	"cropwise/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBrokerDeliversToTopicOnly(t *testing.T) {
	b := NewMessageBroker(nil)
	a := b.Subscribe("a")
	other := b.Subscribe("b")

	b.Publish("a", &models.SoilCondition{DeviceID: "a", SoilPH: 6.5})

	got := <-a
	require.NotNil(t, got)
	assert.Equal(t, 6.5, got.SoilPH)
	assert.Empty(t, other)
}

func TestBrokerKeepsOnlyLatest(t *testing.T) {
	b := NewMessageBroker(nil)
	ch := b.Subscribe("dev")

	for i := 1; i <= 5; i++ {
		b.Publish("dev", &models.SoilCondition{SoilMoisture: float64(i)})
	}

	require.Len(t, ch, 1)
	assert.Equal(t, 5.0, (<-ch).SoilMoisture)
}

func TestBrokerPublishesCopies(t *testing.T) {
	b := NewMessageBroker(nil)
	ch := b.Subscribe("dev")

	snap := &models.SoilCondition{Temperature: 20}
	b.Publish("dev", snap)
	snap.Temperature = 99

	assert.Equal(t, 20.0, (<-ch).Temperature)
}

func TestBrokerPublishNil(t *testing.T) {
	b := NewMessageBroker(nil)
	ch := b.Subscribe("dev")

	b.Publish("dev", nil)

	got, ok := <-ch
	assert.True(t, ok)
	assert.Nil(t, got)
}

func TestBrokerUnsubscribeClosesChannel(t *testing.T) {
	b := NewMessageBroker(nil)
	ch := b.Subscribe("dev")
	keep := b.Subscribe("dev")
	assert.Equal(t, 2, b.Subscribers("dev"))

	b.Unsubscribe("dev", ch)
	_, ok := <-ch
	assert.False(t, ok)
	assert.Equal(t, 1, b.Subscribers("dev"))

	// unknown channels are ignored
	b.Unsubscribe("dev", make(Subscriber, 1))
	assert.Equal(t, 1, b.Subscribers("dev"))

	b.Unsubscribe("dev", keep)
	assert.Zero(t, b.Subscribers("dev"))

	// publishing without listeners is a no-op
	b.Publish("dev", &models.SoilCondition{})
}
