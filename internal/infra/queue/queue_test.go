package queue

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAcknowledger struct {
	acked   int
	nacked  int
	requeue bool
}

func (a *fakeAcknowledger) Ack(uint64, bool) error { a.acked++; return nil }
func (a *fakeAcknowledger) Nack(_ uint64, _ bool, requeue bool) error {
	a.nacked++
	a.requeue = requeue
	return nil
}
func (a *fakeAcknowledger) Reject(uint64, bool) error { return nil }

type fakeHandler struct {
	events []LeadEvent
	err    error
}

func (h *fakeHandler) HandleLeadEvent(_ context.Context, e LeadEvent) error {
	h.events = append(h.events, e)
	return h.err
}

func delivery(t *testing.T, ack amqp.Acknowledger, event any, redelivered bool) amqp.Delivery {
	t.Helper()
	body, err := json.Marshal(event)
	require.NoError(t, err)
	return amqp.Delivery{Acknowledger: ack, Body: body, Redelivered: redelivered}
}

var sampleEvent = LeadEvent{
	Type:       EventStatusChange,
	LeadID:     "l1",
	LeadName:   "Priya",
	EventID:    "e2",
	NewStatus:  "Hot",
	ActorID:    "u-admin",
	OccurredAt: time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC),
}

func TestWorkerAcksHandledEvent(t *testing.T) {
	handler := &fakeHandler{}
	ack := &fakeAcknowledger{}
	w := NewWorker(nil, handler)

	w.handleDelivery(context.Background(), delivery(t, ack, sampleEvent, false))

	assert.Equal(t, 1, ack.acked)
	assert.Zero(t, ack.nacked)
	require.Len(t, handler.events, 1)
	assert.Equal(t, sampleEvent, handler.events[0])
}

// TestWorkerRequeuesOnceThenDeadLetters - a failing event is retried a single time
func TestWorkerRequeuesOnceThenDeadLetters(t *testing.T) {
	handler := &fakeHandler{err: errors.New("redis down")}
	w := NewWorker(nil, handler)

	first := &fakeAcknowledger{}
	w.handleDelivery(context.Background(), delivery(t, first, sampleEvent, false))
	assert.Equal(t, 1, first.nacked)
	assert.True(t, first.requeue)

	second := &fakeAcknowledger{}
	w.handleDelivery(context.Background(), delivery(t, second, sampleEvent, true))
	assert.Equal(t, 1, second.nacked)
	assert.False(t, second.requeue)
	assert.Zero(t, second.acked)
}

func TestWorkerDeadLettersMalformedBody(t *testing.T) {
	handler := &fakeHandler{}
	ack := &fakeAcknowledger{}
	w := NewWorker(nil, handler)

	w.handleDelivery(context.Background(), amqp.Delivery{Acknowledger: ack, Body: []byte("{not json")})

	assert.Equal(t, 1, ack.nacked)
	assert.False(t, ack.requeue)
	assert.Empty(t, handler.events)
}

type fakeConsumer struct {
	msgs chan amqp.Delivery
	err  error
}

func (c *fakeConsumer) Consume(string, string, bool, bool, bool, bool, amqp.Table) (<-chan amqp.Delivery, error) {
	return c.msgs, c.err
}

func TestWorkerStartDrainsUntilClosed(t *testing.T) {
	handler := &fakeHandler{}
	consumer := &fakeConsumer{msgs: make(chan amqp.Delivery, 2)}
	ack := &fakeAcknowledger{}
	consumer.msgs <- delivery(t, ack, sampleEvent, false)
	consumer.msgs <- delivery(t, ack, LeadEvent{Type: EventNewLead, LeadID: "l2"}, false)
	close(consumer.msgs)

	err := NewWorker(consumer, handler).Start(context.Background(), QueueName)
	require.NoError(t, err)
	assert.Len(t, handler.events, 2)
	assert.Equal(t, 2, ack.acked)
}

func TestWorkerStartStopsOnCancel(t *testing.T) {
	consumer := &fakeConsumer{msgs: make(chan amqp.Delivery)}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.NoError(t, NewWorker(consumer, &fakeHandler{}).Start(ctx, QueueName))
}

func TestWorkerStartConsumeError(t *testing.T) {
	consumer := &fakeConsumer{err: errors.New("channel closed")}
	err := NewWorker(consumer, &fakeHandler{}).Start(context.Background(), QueueName)
	assert.ErrorContains(t, err, "failed to register RabbitMQ consumer")
}

type fakeChannel struct {
	exchange string
	key      string
	msg      amqp.Publishing
	err      error
}

func (c *fakeChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	c.exchange, c.key, c.msg = exchange, key, msg
	return c.err
}

func TestProducerPublishesPersistentJSON(t *testing.T) {
	ch := &fakeChannel{}
	require.NoError(t, NewProducer(ch).PublishLeadEvent(context.Background(), sampleEvent))

	assert.Equal(t, ExchangeName, ch.exchange)
	assert.Equal(t, RoutingKey, ch.key)
	assert.Equal(t, "application/json", ch.msg.ContentType)
	assert.Equal(t, amqp.Persistent, ch.msg.DeliveryMode)
	assert.Equal(t, EventStatusChange, ch.msg.Type)
	assert.Equal(t, sampleEvent.OccurredAt, ch.msg.Timestamp)

	var got LeadEvent
	require.NoError(t, json.Unmarshal(ch.msg.Body, &got))
	assert.Equal(t, sampleEvent, got)
}

func TestProducerWrapsPublishError(t *testing.T) {
	ch := &fakeChannel{err: amqp.ErrClosed}
	err := NewProducer(ch).PublishLeadEvent(context.Background(), sampleEvent)
	assert.ErrorIs(t, err, amqp.ErrClosed)
}

type recordingTopology struct {
	declared []string
	args     map[string]amqp.Table
}

func (r *recordingTopology) ExchangeDeclare(name, _ string, _, _, _, _ bool, _ amqp.Table) error {
	r.declared = append(r.declared, "exchange:"+name)
	return nil
}

func (r *recordingTopology) QueueDeclare(name string, _, _, _, _ bool, args amqp.Table) (amqp.Queue, error) {
	r.declared = append(r.declared, "queue:"+name)
	r.args[name] = args
	return amqp.Queue{Name: name}, nil
}

func (r *recordingTopology) QueueBind(name, _, exchange string, _ bool, _ amqp.Table) error {
	r.declared = append(r.declared, "bind:"+name+"->"+exchange)
	return nil
}

func TestSetupTopologyDeclaresDeadLetterFirst(t *testing.T) {
	topo := &recordingTopology{args: map[string]amqp.Table{}}
	require.NoError(t, setupTopology(topo))

	assert.Equal(t, []string{
		"exchange:" + DLXName,
		"queue:" + DLQName,
		"bind:" + DLQName + "->" + DLXName,
		"exchange:" + ExchangeName,
		"queue:" + QueueName,
		"bind:" + QueueName + "->" + ExchangeName,
	}, topo.declared)
	assert.Equal(t, DLXName, topo.args[QueueName]["x-dead-letter-exchange"])
}
