package queue

import (
	"context"
	"sync"
	"sync/atomic"
)

// Job — одна задача (один вызов команды)

type Job func(ctx context.Context)

// Queue — запуск задач в отдельных горутинах
// limit <= 0 — без ограничения; иначе не больше limit задач одновременно

type Queue struct {
	slots    chan struct{}
	wg       sync.WaitGroup
	inFlight atomic.Int64
}

func NewQueue(limit int) *Queue {
	q := &Queue{}
	if limit > 0 { q.slots = make(chan struct{}, limit) }
	return q
}

// Submit — не блокирует вызывающего; задача ждёт свободный слот в своей горутине
func (q *Queue) Submit(ctx context.Context, job Job) {
	q.wg.Add(1)
	q.inFlight.Add(1)
	go func() {
		defer q.wg.Done()
		defer q.inFlight.Add(-1)
		if q.slots != nil {
			select {
			case q.slots <- struct{}{}:
				defer func() { <-q.slots }()
			case <-ctx.Done():
				return
			}
		}
		job(ctx)
	}()
}

// InFlight — сколько задач принято и ещё не завершено
func (q *Queue) InFlight() int { return int(q.inFlight.Load()) }

// Wait — дождаться всех принятых задач
func (q *Queue) Wait() { q.wg.Wait() }
