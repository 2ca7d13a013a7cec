package availability

import (
	"context"
	"time"

	"github.com/NguyenZak/longhai-ticket-sub001/pkg/logger"
)

// Reconciler periodically audits availability against the ledger.
type Reconciler struct {
	service  Service
	interval time.Duration
	log      *logger.Logger
}

func NewReconciler(service Service, interval time.Duration, log *logger.Logger) *Reconciler {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	if log == nil {
		log = logger.GetDefault()
	}
	return &Reconciler{
		service:  service,
		interval: interval,
		log:      log.WithComponent("reconciler"),
	}
}

// Run reconciles once at start and then on every tick until ctx is done.
// A failed run is logged and retried on the next tick.
func (r *Reconciler) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.log.InfoContext(ctx, "availability reconciler started", "interval", r.interval.String())
	r.runOnce(ctx)

	for {
		select {
		case <-ticker.C:
			r.runOnce(ctx)
		case <-ctx.Done():
			r.log.InfoContext(ctx, "availability reconciler stopped")
			return nil
		}
	}
}

func (r *Reconciler) runOnce(ctx context.Context) {
	if _, err := r.service.Reconcile(ctx); err != nil && ctx.Err() == nil {
		r.log.ErrorContext(ctx, "availability reconcile failed", "error", err.Error())
	}
}
