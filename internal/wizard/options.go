package wizard

import (
	"context"
	"time"

	"github.com/prefeitura-rio/app-fomento/internal/models"
	"go.uber.org/zap"
)

// AddressLookup resolves a CEP. *services.CEPService implements it.
type AddressLookup interface {
	Lookup(ctx context.Context, cep string) (*models.Address, error)
}

// Option configures a Wizard.
type Option func(*Wizard)

// WithStepValidation makes Next refuse to leave a step with missing
// required fields.
func WithStepValidation() Option {
	return func(w *Wizard) { w.validateSteps = true }
}

// WithAddressLookup enables address autofill when a cep field is answered.
func WithAddressLookup(lookup AddressLookup) Option {
	return func(w *Wizard) { w.address = lookup }
}

// WithLookupTimeout bounds each address lookup.
func WithLookupTimeout(d time.Duration) Option {
	return func(w *Wizard) {
		if d > 0 {
			w.lookupTimeout = d
		}
	}
}

// WithNotifier routes notifications to n.
func WithNotifier(n Notifier) Option {
	return func(w *Wizard) { w.notifier = n }
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(w *Wizard) {
		if logger != nil {
			w.logger = logger
		}
	}
}
