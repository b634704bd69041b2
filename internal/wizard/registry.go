package wizard

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prefeitura-rio/app-fomento/internal/models"
	"github.com/prefeitura-rio/app-fomento/internal/observability"
	"go.uber.org/zap"
)

// ErrDraftNotFound is returned for unknown or expired drafts.
var ErrDraftNotFound = errors.New("draft not found")

// Draft is a wizard held server-side between requests.
type Draft struct {
	ID       string
	OwnerUID string
	Wizard   *Wizard
	Inbox    *Inbox

	touched time.Time
}

// AccessibleBy reports whether session may act on the draft. Drafts started
// anonymously are open to whoever holds the id.
func (d *Draft) AccessibleBy(session *models.Session) bool {
	if d.OwnerUID == "" {
		return true
	}
	return session != nil && session.UID == d.OwnerUID
}

// Registry stores drafts by id and evicts the idle ones.
type Registry struct {
	mu     sync.Mutex
	drafts map[string]*Draft
	ttl    time.Duration
	now    func() time.Time
	logger *zap.Logger

	startOnce sync.Once
	stopOnce  sync.Once
	started   bool
	stop      chan struct{}
	done      chan struct{}
}

// NewRegistry creates a registry whose drafts expire after ttl without use.
func NewRegistry(ttl time.Duration, logger *zap.Logger) *Registry {
	return &Registry{
		drafts: map[string]*Draft{},
		ttl:    ttl,
		now:    time.Now,
		logger: logger.Named("drafts"),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// Start runs the janitor every period until Stop is called.
func (r *Registry) Start(period time.Duration) {
	r.startOnce.Do(func() {
		r.mu.Lock()
		r.started = true
		r.mu.Unlock()
		go r.janitor(period)
	})
}

func (r *Registry) janitor(period time.Duration) {
	defer close(r.done)
	ticker := time.NewTicker(period)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if n := r.Sweep(); n > 0 {
				r.logger.Info("evicted idle drafts", zap.Int("count", n))
			}
		case <-r.stop:
			return
		}
	}
}

// Stop halts the janitor started by Start, closes every stored draft and
// waits for their pending address lookups.
func (r *Registry) Stop() {
	r.mu.Lock()
	started := r.started
	open := make([]*Draft, 0, len(r.drafts))
	for _, d := range r.drafts {
		open = append(open, d)
	}
	r.mu.Unlock()

	r.stopOnce.Do(func() {
		close(r.stop)
	})
	if started {
		<-r.done
	}

	for _, d := range open {
		d.Wizard.Close()
		d.Wizard.Wait()
	}
}

func (r *Registry) gaugeLocked() {
	observability.ActiveDrafts.Set(float64(len(r.drafts)))
}

// Add stores w and returns the new draft. inbox should be the notifier w
// was built with.
func (r *Registry) Add(w *Wizard, inbox *Inbox, session *models.Session) *Draft {
	d := &Draft{
		ID:      uuid.NewString(),
		Wizard:  w,
		Inbox:   inbox,
		touched: r.now(),
	}
	if session != nil {
		d.OwnerUID = session.UID
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.drafts[d.ID] = d
	r.gaugeLocked()
	return d
}

// Get returns the draft with id and marks it as used.
func (r *Registry) Get(id string) (*Draft, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.drafts[id]
	if !ok {
		return nil, ErrDraftNotFound
	}
	d.touched = r.now()
	return d, nil
}

// Remove closes and forgets the draft with id.
func (r *Registry) Remove(id string) error {
	r.mu.Lock()
	d, ok := r.drafts[id]
	if ok {
		delete(r.drafts, id)
		r.gaugeLocked()
	}
	r.mu.Unlock()

	if !ok {
		return ErrDraftNotFound
	}
	d.Wizard.Close()
	return nil
}

// Sweep closes and removes drafts idle for longer than the ttl. It returns
// how many were removed.
func (r *Registry) Sweep() int {
	cutoff := r.now().Add(-r.ttl)

	r.mu.Lock()
	var expired []*Draft
	for id, d := range r.drafts {
		if d.touched.Before(cutoff) {
			expired = append(expired, d)
			delete(r.drafts, id)
		}
	}
	r.gaugeLocked()
	r.mu.Unlock()

	for _, d := range expired {
		d.Wizard.Close()
	}
	return len(expired)
}

// Len returns the number of stored drafts.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.drafts)
}
