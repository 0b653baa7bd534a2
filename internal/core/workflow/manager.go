package workflow

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ovibet/cashier/internal/core/domain"
)

// MethodCatalog lists the currently offered payment methods.
type MethodCatalog interface {
	List(ctx context.Context) ([]domain.PaymentMethod, error)
}

// LimitsFetcher reads the account-level ceilings snapshot. Called once per
// session, never per keystroke.
type LimitsFetcher interface {
	Fetch(ctx context.Context, userID string) (domain.AccountLimits, error)
}

// Manager owns the open cashier sessions. Each draft belongs to exactly one
// session; the method catalog is shared read-only across all of them.
type Manager struct {
	catalog   MethodCatalog
	limits    LimitsFetcher
	submitter Submitter
	logger    *slog.Logger
	ttl       time.Duration
	onSettled func(userID string, result domain.TransactionResult)

	mu       sync.Mutex
	sessions map[string]*Session
}

type ManagerConfig struct {
	Catalog    MethodCatalog
	Limits     LimitsFetcher
	Submitter  Submitter
	Logger     *slog.Logger
	SessionTTL time.Duration

	// OnSettled runs once per settled transaction, on the Succeeded -> Closed
	// transition. Used to tell the surrounding app to refresh balances.
	OnSettled func(userID string, result domain.TransactionResult)
}

func NewManager(cfg ManagerConfig) *Manager {
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 30 * time.Minute
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Manager{
		catalog:   cfg.Catalog,
		limits:    cfg.Limits,
		submitter: cfg.Submitter,
		logger:    cfg.Logger,
		ttl:       cfg.SessionTTL,
		onSettled: cfg.OnSettled,
		sessions:  make(map[string]*Session),
	}
}

// Open creates a session in SelectingMethod. The limits snapshot and the
// method catalog are independent read-only fetches, so they run
// concurrently. A failed limits fetch never blocks the session: validation
// degrades to method-level bounds and the backend keeps final authority.
func (m *Manager) Open(ctx context.Context, userID string, kind domain.TransactionKind, balance decimal.Decimal) (*Session, error) {
	var (
		wg         sync.WaitGroup
		limits     domain.AccountLimits
		limitsErr  error
		methods    []domain.PaymentMethod
		methodsErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		limits, limitsErr = m.limits.Fetch(ctx, userID)
	}()
	go func() {
		defer wg.Done()
		methods, methodsErr = m.catalog.List(ctx)
	}()
	wg.Wait()

	if methodsErr != nil {
		// Degrade rather than block: the session opens with an empty
		// catalog and the UI shows methods as unavailable.
		m.logger.Error("method catalog fetch failed", "error", methodsErr, "user_id", userID)
		methods = nil
	}

	session := &Session{
		ID:         uuid.NewString(),
		UserID:     userID,
		Kind:       kind,
		submitter:  m.submitter,
		logger:     m.logger,
		onSettled:  m.onSettled,
		step:       StepSelectingMethod,
		methods:    methods,
		balance:    balance,
		fields:     map[string]string{},
		lastActive: time.Now(),
	}
	if limitsErr != nil {
		m.logger.Warn("⚠️ limits unavailable, falling back to method bounds",
			"error", limitsErr, "user_id", userID)
	} else {
		session.limits = &limits
	}

	m.mu.Lock()
	m.sessions[session.ID] = session
	m.mu.Unlock()

	m.logger.Info("🎰 cashier session opened",
		"session_id", session.ID, "user_id", userID, "kind", kind, "methods", len(methods))
	return session, nil
}

// Get resolves an open session by id.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	session, ok := m.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}

// Close closes a session and forgets it once the close actually lands.
// A deferred close (submission in flight) keeps the session registered so
// the resolution can still be observed.
func (m *Manager) Close(id string) (CloseOutcome, error) {
	session, err := m.Get(id)
	if err != nil {
		return "", err
	}
	outcome := session.Close()
	if outcome == CloseDone {
		m.mu.Lock()
		delete(m.sessions, id)
		m.mu.Unlock()
	}
	return outcome, nil
}

// StartSweeper drops abandoned sessions in the background. Sessions with a
// submission in flight are never swept.
func (m *Manager) StartSweeper(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.sweep()
			}
		}
	}()
}

func (m *Manager) sweep() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, session := range m.sessions {
		if session.idle(m.ttl) {
			delete(m.sessions, id)
			m.logger.Info("swept idle cashier session", "session_id", id, "user_id", session.UserID)
		}
	}
}
