package pairing

import "github.com/zeeshanhshaheen/sewing-prototype/internal/assembler/models"

// ============================================================
// Subscriptions
// ============================================================

type EventKind string

const (
	EventPending     EventKind = "pending"
	EventPairAdded   EventKind = "pair-added"
	EventPairRemoved EventKind = "pair-removed"
	EventCleared     EventKind = "cleared"
)

// Event: снимок состояния после изменения.
type Event struct {
	Kind    EventKind
	Pairs   []models.SewingPair
	Pending *models.SewingPoint
}

// Subscription отвязывает слушателя при Close. Повторный Close безопасен.
type Subscription struct {
	recorder *Recorder
	id       int
}

// Subscribe регистрирует слушателя изменений.
func (r *Recorder) Subscribe(fn func(Event)) *Subscription {
	id := r.nextSub
	r.nextSub++
	r.subs[id] = fn
	return &Subscription{recorder: r, id: id}
}

func (s *Subscription) Close() {
	if s == nil || s.recorder == nil {
		return
	}
	delete(s.recorder.subs, s.id)
	s.recorder = nil
}

// Subscribers возвращает число активных слушателей.
func (r *Recorder) Subscribers() int {
	return len(r.subs)
}

func (r *Recorder) notify(kind EventKind) {
	if len(r.subs) == 0 {
		return
	}
	ev := Event{Kind: kind, Pairs: r.Pairs()}
	if p, ok := r.Pending(); ok {
		ev.Pending = &p
	}
	for _, fn := range r.subs {
		fn(ev)
	}
}
