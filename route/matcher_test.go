package route

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchFilter(t *testing.T) {
	tests := []struct {
		name   string
		filter string
		topic  string
		want   bool
	}{
		{"exact match", "home/room/temperature", "home/room/temperature", true},
		{"no match", "home/room/temperature", "home/room/humidity", false},
		{"single level wildcard", "home/+/temperature", "home/room/temperature", true},
		{"single level wildcard too deep", "home/+/temperature", "home/room/kitchen/temperature", false},
		{"multi level wildcard", "home/#", "home/room/temperature", true},
		{"multi level wildcard matches parent level", "home/#", "home", true},
		{"dollar topic excluded from wildcard filter", "#", "$SYS/broker/uptime", false},
		{"dollar topic exact match allowed", "$SYS/broker/uptime", "$SYS/broker/uptime", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MatchFilter(tt.filter, tt.topic))
		})
	}
}

func TestValidateTopicFilter(t *testing.T) {
	assert.NoError(t, ValidateTopicFilter("a/b/c"))
	assert.NoError(t, ValidateTopicFilter("a/+/c"))
	assert.NoError(t, ValidateTopicFilter("a/#"))
	assert.NoError(t, ValidateTopicFilter("#"))

	assert.Error(t, ValidateTopicFilter(""))
	assert.Error(t, ValidateTopicFilter("a/#/c"))
	assert.Error(t, ValidateTopicFilter("a/b#"))
	assert.Error(t, ValidateTopicFilter("a/b+"))
}

func TestValidateTopicName(t *testing.T) {
	assert.NoError(t, ValidateTopicName("a/b/c"))
	assert.Error(t, ValidateTopicName(""))
	assert.Error(t, ValidateTopicName("a/+/c"))
	assert.Error(t, ValidateTopicName("a/#"))
}

func TestRouterDispatch(t *testing.T) {
	r := NewRouter()
	var got []string
	track := func(topic string, payload []byte) { got = append(got, topic) }
	_ = r.Subscribe("home/+/temperature", track)

	matched := r.Dispatch("home/kitchen/temperature", []byte("21.5"))
	assert.True(t, matched)
	assert.Equal(t, []string{"home/kitchen/temperature"}, got)

	assert.False(t, r.Dispatch("home/kitchen/humidity", nil))
}

func TestRouterUnsubscribe(t *testing.T) {
	r := NewRouter()
	called := false
	_ = r.Subscribe("a/b", func(topic string, payload []byte) { called = true })
	assert.True(t, r.Unsubscribe("a/b"))
	assert.False(t, r.Dispatch("a/b", nil))
	assert.False(t, called)
}
