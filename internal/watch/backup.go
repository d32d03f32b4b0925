package watch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/udevstartup/sitecms/internal/content"
	"github.com/udevstartup/sitecms/internal/drive"
	"go.uber.org/zap"
)

// DocumentSource provides the document to back up.
type DocumentSource interface {
	Document(ctx context.Context) (*content.Document, error)
}

// ContentSaver writes a document to Drive. *drive.Syncer implements it.
type ContentSaver interface {
	SaveContent(ctx context.Context, doc *content.Document, fileID string) (string, error)
}

// Backup copies the stored document to Drive.
type Backup struct {
	Source  DocumentSource
	Saver   ContentSaver
	Timeout time.Duration
	Logger  *zap.Logger
}

// Run performs one backup. Without a Drive token it logs and returns
// drive.ErrUnauthenticated.
func (b *Backup) Run(ctx context.Context) error {
	logger := b.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := b.Timeout
	if timeout <= 0 {
		timeout = time.Minute
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	doc, err := b.Source.Document(ctx)
	if err != nil {
		return fmt.Errorf("reading content for backup: %w", err)
	}
	if !doc.HasPublicContent() {
		logger.Info("skipping drive backup, content not publishable")
		return nil
	}

	id, err := b.Saver.SaveContent(ctx, doc, "")
	if errors.Is(err, drive.ErrUnauthenticated) {
		logger.Warn("drive backup skipped, google account not connected")
		return err
	}
	if err != nil {
		return fmt.Errorf("drive backup: %w", err)
	}
	logger.Info("drive backup complete", zap.String("file_id", id))
	return nil
}

// Scheduler runs jobs on cron expressions.
type Scheduler struct {
	cron   *cron.Cron
	logger *zap.Logger
}

// NewScheduler creates a stopped Scheduler.
func NewScheduler(logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{cron: cron.New(), logger: logger}
}

// Add schedules job on expr, a standard five-field cron expression or a
// descriptor such as "@daily".
func (s *Scheduler) Add(ctx context.Context, name, expr string, job func(context.Context) error) error {
	_, err := s.cron.AddFunc(expr, func() {
		s.logger.Info("running scheduled job", zap.String("job", name))
		if err := job(ctx); err != nil {
			s.logger.Error("scheduled job failed", zap.String("job", name), zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("invalid schedule %q for %s: %w", expr, name, err)
	}
	return nil
}

// Len returns the number of scheduled jobs.
func (s *Scheduler) Len() int {
	return len(s.cron.Entries())
}

// Start begins running jobs in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts the scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}
