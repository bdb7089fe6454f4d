package kafka

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/brazil-fires-dashboard/internal/config"
	"github.com/couchcryptid/brazil-fires-dashboard/internal/domain"
)

func TestSerializeToMessage(t *testing.T) {
	now := time.Date(2024, 4, 26, 15, 10, 0, 0, time.UTC)
	row := domain.AggregateRecord{Year: 2003, State: "Acre", StateCode: "AC", Number: 17}

	msg, err := serializeToMessage(row, now)
	require.NoError(t, err)

	assert.Equal(t, []byte("2003|AC"), msg.Key)
	assert.JSONEq(t, `{"year":2003,"state":"Acre","state_code":"AC","number":17}`, string(msg.Value))
	require.Len(t, msg.Headers, 3)
	assert.Equal(t, "year", msg.Headers[0].Key)
	assert.Equal(t, []byte("2003"), msg.Headers[0].Value)
	assert.Equal(t, "state_code", msg.Headers[1].Key)
	assert.Equal(t, []byte("AC"), msg.Headers[1].Value)
	assert.Equal(t, "published_at", msg.Headers[2].Key)
	assert.Equal(t, []byte(now.Format(time.RFC3339)), msg.Headers[2].Value)
}

func TestSerializeToMessage_MissingCode(t *testing.T) {
	row := domain.AggregateRecord{Year: 2010, State: "São Paulo", Number: 0}

	msg, err := serializeToMessage(row, time.Now())
	require.NoError(t, err)

	assert.Equal(t, "2010|São Paulo", string(msg.Key))
	assert.Contains(t, string(msg.Value), `"state_code":null`)
}

func TestMessageKey(t *testing.T) {
	tests := []struct {
		row  domain.AggregateRecord
		want string
	}{
		{domain.AggregateRecord{Year: 1998, State: "Bahia", StateCode: "BA"}, "1998|BA"},
		{domain.AggregateRecord{Year: 2017, State: "Goiás"}, "2017|Goiás"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, messageKey(tt.row))
		})
	}
}

func TestPublishAggregates_Empty(t *testing.T) {
	cfg := &config.Config{KafkaBrokers: []string{"localhost:1"}, KafkaTopic: "unused"}
	w := NewWriter(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	w.clock = clockwork.NewFakeClock()
	defer w.Close()

	require.NoError(t, w.PublishAggregates(context.Background(), nil))
}
