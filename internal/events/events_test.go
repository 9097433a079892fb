package events

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestBusDeliversEvents(t *testing.T) {
	bus := NewBus(8, quietLogger())
	got := make(chan Event, 8)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go bus.Run(ctx, func(_ context.Context, e Event) {
		got <- e
	})

	id := primitive.NewObjectID()
	bus.Publish(Event{Kind: CourseChanged, Bootcamp: id})

	select {
	case e := <-got:
		if e.Kind != CourseChanged || e.Bootcamp != id {
			t.Errorf("event = %+v", e)
		}
	case <-time.After(time.Second):
		t.Fatal("event not delivered")
	}
}

func TestBusFullBufferDoesNotBlock(t *testing.T) {
	bus := NewBus(1, quietLogger())

	done := make(chan struct{})
	go func() {
		// no consumer running; second publish must drop, not block
		bus.Publish(Event{Kind: ReviewChanged})
		bus.Publish(Event{Kind: ReviewChanged})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a full buffer")
	}
}

func TestBusStopsOnCancel(t *testing.T) {
	bus := NewBus(1, quietLogger())
	ctx, cancel := context.WithCancel(context.Background())

	stopped := make(chan struct{})
	go func() {
		bus.Run(ctx, func(context.Context, Event) {})
		close(stopped)
	}()

	cancel()
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
