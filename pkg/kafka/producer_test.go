package kafka

import (
	"context"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *recordingWriter) Close() error {
	w.closed = true
	return nil
}

func TestNewProducerRequiresBrokers(t *testing.T) {
	_, err := NewProducer()
	assert.Error(t, err)
}

func TestPublishBatchEncodesValues(t *testing.T) {
	w := &recordingWriter{}
	p := newProducer(w, "gzip")

	err := p.PublishBatch(context.Background(), "sentiment.rows", []Message{
		{Key: []byte("$TSLA"), Value: map[string]int{"mentions": 3}},
		{Key: []byte("$GME"), Value: "raw"},
		{Key: []byte("$AMC"), Value: []byte("bytes")},
	})
	require.NoError(t, err)
	require.Len(t, w.msgs, 3)
	assert.Equal(t, "sentiment.rows", w.msgs[0].Topic)
	assert.JSONEq(t, `{"mentions":3}`, string(w.msgs[0].Value))
	assert.Equal(t, "raw", string(w.msgs[1].Value))
	assert.Equal(t, "$AMC", string(w.msgs[2].Key))

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestPublishWrapsWriterError(t *testing.T) {
	boom := errors.New("leader not available")
	p := newProducer(&recordingWriter{err: boom}, "gzip")
	err := p.Publish(context.Background(), "t", nil, "x")
	assert.ErrorIs(t, err, boom)
}

func TestPublishRejectsUnencodableValue(t *testing.T) {
	p := newProducer(&recordingWriter{}, "gzip")
	err := p.Publish(context.Background(), "t", nil, make(chan int))
	assert.Error(t, err)
}
