package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/zeeshanhshaheen/sewing-prototype/internal/assembler/models"
	"github.com/zeeshanhshaheen/sewing-prototype/internal/assembler/scene"

	"github.com/google/uuid"
)

// ============================================================
// Session Manager
// ============================================================

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrTooManySessions = errors.New("too many open sessions")
)

// ManagerOption настраивает ограничения SessionManager.
type ManagerOption func(*SessionManager)

// WithMaxSessions ограничивает число одновременных сессий; 0 снимает предел.
func WithMaxSessions(n int) ManagerOption {
	return func(m *SessionManager) { m.maxSessions = n }
}

// WithIdleTTL закрывает сессии, к которым не обращались дольше ttl.
func WithIdleTTL(ttl time.Duration) ManagerOption {
	return func(m *SessionManager) { m.idleTTL = ttl }
}

func WithManagerClock(clock func() time.Time) ManagerOption {
	return func(m *SessionManager) { m.now = clock }
}

type SessionManager struct {
	mu       sync.Mutex
	opts     scene.Options
	sessions map[string]*Workspace
	lastUsed map[string]time.Time

	maxSessions int
	idleTTL     time.Duration
	now         func() time.Time
}

func NewSessionManager(opts scene.Options, options ...ManagerOption) *SessionManager {
	m := &SessionManager{
		opts:     opts,
		sessions: make(map[string]*Workspace),
		lastUsed: make(map[string]time.Time),
		now:      time.Now,
	}
	for _, o := range options {
		o(m)
	}
	return m
}

// Create открывает рабочую область. Нулевой container берётся из настроек.
// При достижении предела сначала вычищаются простаивающие сессии.
func (m *SessionManager) Create(container models.ContainerGeometry) (*Workspace, error) {
	opts := m.opts
	if container != (models.ContainerGeometry{}) {
		opts.Container = container
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	if m.maxSessions > 0 && m.Len() >= m.maxSessions {
		m.Sweep()
	}

	m.mu.Lock()
	if m.maxSessions > 0 && len(m.sessions) >= m.maxSessions {
		m.mu.Unlock()
		return nil, fmt.Errorf("%w: limit %d", ErrTooManySessions, m.maxSessions)
	}
	id := uuid.NewString()
	w := newWorkspace(id, opts)
	m.sessions[id] = w
	m.lastUsed[id] = m.now()
	m.mu.Unlock()

	log.Printf("[SESSION] created %s (container %gx%g)", id, opts.Container.Width, opts.Container.Height)
	return w, nil
}

// Len возвращает число открытых сессий.
func (m *SessionManager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Sweep закрывает сессии, простаивающие дольше idleTTL, и возвращает их число.
func (m *SessionManager) Sweep() int {
	if m.idleTTL <= 0 {
		return 0
	}

	m.mu.Lock()
	cutoff := m.now().Add(-m.idleTTL)
	var idle []*Workspace
	for id, used := range m.lastUsed {
		if used.Before(cutoff) {
			idle = append(idle, m.sessions[id])
			delete(m.sessions, id)
			delete(m.lastUsed, id)
		}
	}
	m.mu.Unlock()

	for _, w := range idle {
		w.Close()
		log.Printf("[SESSION] expired %s", w.ID)
	}
	return len(idle)
}

// RunSweeper периодически вызывает Sweep до отмены ctx.
func (m *SessionManager) RunSweeper(ctx context.Context, interval time.Duration) {
	if m.idleTTL <= 0 || interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Sweep()
		}
	}
}

func (m *SessionManager) Get(id string) (*Workspace, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	w, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	m.lastUsed[id] = m.now()
	return w, nil
}

// Delete останавливает цикл сессии и забывает её.
func (m *SessionManager) Delete(id string) error {
	m.mu.Lock()
	w, ok := m.sessions[id]
	delete(m.sessions, id)
	delete(m.lastUsed, id)
	m.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	w.Close()
	log.Printf("[SESSION] deleted %s", id)
	return nil
}

// IDs возвращает идентификаторы активных сессий по порядку создания.
func (m *SessionManager) IDs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	list := make([]*Workspace, 0, len(m.sessions))
	for _, w := range m.sessions {
		list = append(list, w)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.Before(list[j].CreatedAt) })

	ids := make([]string, len(list))
	for i, w := range list {
		ids[i] = w.ID
	}
	return ids
}

// Shutdown закрывает все сессии.
func (m *SessionManager) Shutdown() {
	m.mu.Lock()
	all := m.sessions
	m.sessions = make(map[string]*Workspace)
	m.lastUsed = make(map[string]time.Time)
	m.mu.Unlock()

	for _, w := range all {
		w.Close()
	}
}
