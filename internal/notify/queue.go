package notify

import (
	"context"
	"sync"

	"equiplend-backend/internal/domain"
	"equiplend-backend/internal/logger"
	"equiplend-backend/internal/repository"
)

// Queue is a bounded in-process queue with a fixed worker pool. When the
// buffer is full, Publish drops the event and logs: the side channel is
// best-effort and must never block a settlement.
type Queue struct {
	events   chan Event
	history  chan domain.ItemHistoryEntry
	sinks    []Sink
	histRepo repository.ItemHistoryRepository
	workers  int

	wg     sync.WaitGroup
	cancel context.CancelFunc
}

func NewQueue(queueSize, workers int, sinks []Sink, histRepo repository.ItemHistoryRepository) *Queue {
	if queueSize <= 0 {
		queueSize = 256
	}
	if workers <= 0 {
		workers = 2
	}
	return &Queue{
		events:   make(chan Event, queueSize),
		history:  make(chan domain.ItemHistoryEntry, queueSize),
		sinks:    sinks,
		histRepo: histRepo,
		workers:  workers,
	}
}

// Start launches the worker pool. Workers run until Stop is called.
func (q *Queue) Start(ctx context.Context) {
	ctx, q.cancel = context.WithCancel(ctx)
	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.worker(ctx, i)
	}
}

// Stop signals workers and waits for in-flight deliveries to finish.
// Queued but undelivered events are dropped.
func (q *Queue) Stop() {
	if q.cancel != nil {
		q.cancel()
	}
	q.wg.Wait()
}

func (q *Queue) worker(ctx context.Context, id int) {
	defer q.wg.Done()
	logger.Debug("notify worker started", "worker", id)
	for {
		select {
		case <-ctx.Done():
			logger.Debug("notify worker stopping", "worker", id)
			return
		case ev := <-q.events:
			q.deliver(ctx, ev)
		case h := <-q.history:
			if err := q.histRepo.Append(ctx, &h); err != nil {
				logger.Warn("item history write failed", "item_id", h.ItemID, "action", h.Action, "error", err)
			}
		}
	}
}

func (q *Queue) deliver(ctx context.Context, ev Event) {
	for _, sink := range q.sinks {
		if err := sink.Deliver(ctx, ev); err != nil {
			logger.Warn("notification delivery failed", "event", ev.Type, "error", err)
		}
	}
}

func (q *Queue) Publish(ev Event) {
	select {
	case q.events <- ev:
	default:
		logger.Warn("notification queue full, dropping event", "event", ev.Type)
	}
}

func (q *Queue) PublishHistory(h domain.ItemHistoryEntry) {
	select {
	case q.history <- h:
	default:
		logger.Warn("history queue full, dropping entry", "item_id", h.ItemID, "action", h.Action)
	}
}
