// Package events carries domain events emitted after committed
// mutations. Aggregate maintenance consumes them in the background so
// derived fields never get recomputed inside the persistence path.
package events

import (
	"context"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Kind int

const (
	CourseChanged Kind = iota
	ReviewChanged
)

type Event struct {
	Kind     Kind
	Bootcamp primitive.ObjectID
}

// Bus is a buffered fan-in of domain events with a single consumer
// goroutine. Publishing never blocks a request; when the buffer is
// full the event is dropped and logged, the next mutation will emit a
// fresh one.
type Bus struct {
	ch  chan Event
	log *logrus.Logger
}

func NewBus(buffer int, log *logrus.Logger) *Bus {
	return &Bus{
		ch:  make(chan Event, buffer),
		log: log,
	}
}

func (b *Bus) Publish(e Event) {
	select {
	case b.ch <- e:
	default:
		b.log.WithField("bootcamp", e.Bootcamp.Hex()).Warn("event buffer full, dropping event")
	}
}

// Run consumes events until ctx is cancelled, passing each to handle.
// Handler failures are the handler's problem; Run never stops on them.
func (b *Bus) Run(ctx context.Context, handle func(context.Context, Event)) {
	for {
		select {
		case <-ctx.Done():
			return
		case e := <-b.ch:
			handle(ctx, e)
		}
	}
}
