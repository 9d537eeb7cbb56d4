package kafka

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseBrokers(t *testing.T) {
	assert.Equal(t, []string{"a:9092", "b:9092"}, ParseBrokers(" a:9092, ,b:9092 "))
	assert.Empty(t, ParseBrokers(""))
}

func TestWaitForBroker_NoBrokers(t *testing.T) {
	assert.Error(t, WaitForBroker(context.Background(), nil))
	assert.Error(t, EnsureTopic(context.Background(), nil, DefaultVerdictTopic))
}

func TestNewWriter(t *testing.T) {
	w := NewWriter([]string{"localhost:9092"}, "topic-x")
	defer w.Close()

	assert.Equal(t, "topic-x", w.Topic)
	assert.Equal(t, "localhost:9092", w.Addr.String())
}
