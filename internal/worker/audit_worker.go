package worker

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/tcg-catalog/internal/models"
)

// Auditor produces an integrity report for the whole catalog
type Auditor interface {
	Audit(ctx context.Context) (*models.IntegrityReport, error)
}

// AuditWorker runs the dangling-reference audit on a cron schedule and logs
// what it finds
type AuditWorker struct {
	auditor  Auditor
	schedule string
	timeout  time.Duration
	cron     *cron.Cron
}

// NewAuditWorker creates a new audit worker. schedule accepts standard cron
// expressions and descriptors such as "@every 1h".
func NewAuditWorker(auditor Auditor, schedule string, timeout time.Duration) (*AuditWorker, error) {
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	w := &AuditWorker{
		auditor:  auditor,
		schedule: schedule,
		timeout:  timeout,
		cron:     cron.New(),
	}

	if _, err := w.cron.AddFunc(schedule, w.run); err != nil {
		return nil, fmt.Errorf("invalid audit schedule %q: %w", schedule, err)
	}
	return w, nil
}

// Start begins running audits in the background
func (w *AuditWorker) Start() {
	log.Printf("[AuditWorker] Started with schedule: %s", w.schedule)
	w.cron.Start()
}

// Stop stops scheduling audits and waits for a running one to finish
func (w *AuditWorker) Stop() {
	<-w.cron.Stop().Done()
	log.Println("[AuditWorker] Stopped")
}

func (w *AuditWorker) run() {
	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()

	if _, err := w.RunOnce(ctx); err != nil {
		log.Printf("[AuditWorker] Audit failed: %v", err)
	}
}

// RunOnce performs a single audit and logs every dangling reference
func (w *AuditWorker) RunOnce(ctx context.Context) (*models.IntegrityReport, error) {
	report, err := w.auditor.Audit(ctx)
	if err != nil {
		return nil, err
	}

	for _, ref := range report.DecksWithoutOwner {
		log.Printf("[AuditWorker] Deck %s (%s) has missing owner %s", ref.EntityID, ref.EntityName, ref.MissingID)
	}
	for _, ref := range report.DecksWithMissingCards {
		log.Printf("[AuditWorker] Deck %s (%s) holds missing card %s", ref.EntityID, ref.EntityName, ref.MissingID)
	}
	for _, ref := range report.CardsWithoutCollection {
		log.Printf("[AuditWorker] Card %s (%s) has missing collection %s", ref.EntityID, ref.EntityName, ref.MissingID)
	}
	log.Printf("[AuditWorker] Scanned %d decks and %d cards, %d dangling references",
		report.DecksScanned, report.CardsScanned, report.Total())
	return report, nil
}
