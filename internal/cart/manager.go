package cart

import (
	"context"
	"sync"
	"time"

	"github.com/arkfood/ordering-backend/internal/catalog"
	"github.com/arkfood/ordering-backend/internal/hours"
	"github.com/arkfood/ordering-backend/internal/notify"
	pkgerrors "github.com/arkfood/ordering-backend/pkg/errors"
	"github.com/arkfood/ordering-backend/pkg/kv"
	"github.com/arkfood/ordering-backend/pkg/logger"
	"github.com/arkfood/ordering-backend/pkg/metrics"
)

// KeyFunc maps a session id to its storage key.
type KeyFunc func(sessionID string) string

// ManagerParams groups the dependencies shared by every session's store.
type ManagerParams struct {
	Origin string

	Catalog   catalog.Lookup
	KV        kv.Store
	Notifier  notify.Notifier
	Confirmer Confirmer
	Schedule  hours.Schedule
	Metrics   *metrics.CartMetrics
	Logger    *logger.Logger

	Config Config
	Key    KeyFunc
	Now    func() time.Time
}

// Manager hands out one Store per cart session, creating and hydrating it
// on first use. Each store gets a background watcher on its KV key that
// lives until the manager closes.
type Manager struct {
	params ManagerParams

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu        sync.Mutex
	stores    map[string]*Store
	listeners []Listener
}

func NewManager(params ManagerParams) (*Manager, error) {
	if params.Catalog == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "catalog lookup is required")
	}
	if params.KV == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "kv store is required")
	}
	if params.Notifier == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "notifier is required")
	}
	if params.Key == nil {
		params.Key = func(sessionID string) string {
			return "cart:" + sessionID
		}
	}
	if params.Now == nil {
		params.Now = time.Now
	}
	applyConfigDefaults(&params.Config)

	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		params: params,
		ctx:    ctx,
		cancel: cancel,
		stores: make(map[string]*Store),
	}, nil
}

// Store returns the session's store, creating it on first use.
func (m *Manager) Store(ctx context.Context, sessionID string) (*Store, error) {
	if sessionID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if store, ok := m.stores[sessionID]; ok {
		return store, nil
	}

	store, err := NewStore(ctx, StoreParams{
		SessionID: sessionID,
		Key:       m.params.Key(sessionID),
		Origin:    m.params.Origin,
		Catalog:   m.params.Catalog,
		KV:        m.params.KV,
		Notifier:  m.params.Notifier,
		Confirmer: m.params.Confirmer,
		Emitter:   NewEmitter(),
		Schedule:  m.params.Schedule,
		Metrics:   m.params.Metrics,
		Logger:    m.params.Logger,
		Config:    m.params.Config,
		Now:       m.params.Now,
	})
	if err != nil {
		return nil, err
	}

	m.stores[sessionID] = store
	m.watch(store)
	return store, nil
}

// Subscribe registers a listener on every current and future store.
func (m *Manager) Subscribe(fn Listener) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, fn)
	for _, store := range m.stores {
		store.Events().Subscribe(fn)
	}
}

func (m *Manager) watch(store *Store) {
	for _, fn := range m.listeners {
		store.Events().Subscribe(fn)
	}

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		if err := store.Watch(m.ctx); err != nil && m.ctx.Err() == nil && m.params.Logger != nil {
			ctx := m.params.Logger.WithSessionID(m.ctx, store.SessionID())
			m.params.Logger.Error(ctx, "cart watcher stopped", err)
		}
	}()
}

// Close stops all watchers and waits for them to exit.
func (m *Manager) Close() {
	m.cancel()
	m.wg.Wait()
}
