// Package events emits typed service events through frame's queue manager.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pitabwire/frame/queue"
	"github.com/pitabwire/util"
	"github.com/rs/xid"
)

// Publisher wraps frame's queue manager to emit typed events. A nil
// *Publisher is valid and drops everything, so callers never need to guard
// the optional event surface.
type Publisher struct {
	queueMgr queue.Manager
	source   string
	queueRef string
}

// NewPublisher creates a publisher that emits events to the given queue
// reference.
func NewPublisher(queueMgr queue.Manager, source string, queueRef string) *Publisher {
	return &Publisher{
		queueMgr: queueMgr,
		source:   source,
		queueRef: queueRef,
	}
}

// Emit publishes a typed event to the event bus. Publish failures are
// logged, not surfaced: events are advisory and must never fail a request.
func (p *Publisher) Emit(ctx context.Context, eventType EventType, requestID string, data any) {
	if p == nil || p.queueMgr == nil {
		return
	}

	raw, err := json.Marshal(data)
	if err != nil {
		util.Log(ctx).WithError(err).Error("events: marshal payload")
		return
	}

	envelope := Envelope{
		ID:        xid.New().String(),
		Type:      eventType,
		Source:    p.source,
		RequestID: requestID,
		Timestamp: time.Now().UTC(),
		Data:      raw,
	}

	if err := p.queueMgr.Publish(ctx, p.queueRef, envelope); err != nil {
		util.Log(ctx).WithError(err).Error("events: publish")
	}
}
