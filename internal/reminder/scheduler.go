package reminder

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/neighborhood-library/api-service/internal/config"
	"github.com/neighborhood-library/api-service/internal/database/borrowings"
	"github.com/neighborhood-library/api-service/internal/entities"
)

// Scheduler sends due-date reminder emails on a cron schedule. A run is
// skipped when the previous one is still in flight.
type Scheduler struct {
	borrowings *borrowings.Repository
	mailer     Mailer
	cfg        config.Reminder

	cron       *cron.Cron
	entryID    cron.EntryID
	mu         sync.RWMutex
	isRunning  bool
	isSending  bool
	cancelFunc context.CancelFunc
}

func NewScheduler(borrowingsRepo *borrowings.Repository, mailer Mailer, cfg config.Reminder) *Scheduler {
	return &Scheduler{
		borrowings: borrowingsRepo,
		mailer:     mailer,
		cfg:        cfg,
		cron:       cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow))),
	}
}

// Start begins the scheduler if reminders are enabled.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	if !s.cfg.Enabled {
		log.Printf("Reminder scheduler: disabled")
		return nil
	}

	entryID, err := s.cron.AddFunc(s.cfg.Schedule, func() {
		s.runReminders()
	})
	if err != nil {
		return fmt.Errorf("invalid reminder schedule '%s': %w", s.cfg.Schedule, err)
	}
	s.entryID = entryID

	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)

	s.cron.Start()
	s.isRunning = true

	log.Printf("Reminder scheduler: started with schedule '%s'", s.cfg.Schedule)

	go func() {
		<-cancelCtx.Done()
		s.Stop()
	}()

	return nil
}

// Stop gracefully stops the scheduler, waiting for a run in progress.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()

	s.isRunning = false
	s.cancelFunc = nil

	log.Printf("Reminder scheduler: stopped")
}

// RunNow triggers an immediate reminder pass.
func (s *Scheduler) RunNow() {
	go s.runReminders()
}

// IsRunning reports whether the scheduler is active.
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// IsSending reports whether a reminder pass is currently in progress.
func (s *Scheduler) IsSending() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isSending
}

// NextRunTime returns when the next reminder pass will occur.
func (s *Scheduler) NextRunTime() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}
	for _, entry := range s.cron.Entries() {
		if entry.ID == s.entryID {
			t := entry.Next
			return &t
		}
	}
	return nil
}

// runReminders performs one reminder pass: a "due soon" mail for loans due
// within the configured window and an "overdue" mail for loans past due.
// Delivery is best effort; a failed send is logged and does not stop the
// pass, so a member may be mailed again on the next run.
func (s *Scheduler) runReminders() {
	s.mu.Lock()
	if s.isSending {
		s.mu.Unlock()
		log.Printf("Reminder run: skipped (already sending)")
		return
	}
	s.isSending = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.isSending = false
		s.mu.Unlock()
	}()

	log.Printf("Reminder run: starting")
	startTime := time.Now()

	dueSoon, err := s.borrowings.DueSoon(s.cfg.DueSoonDays)
	if err != nil {
		log.Printf("Reminder run: failed to load due-soon loans: %v", err)
		return
	}
	overdue, err := s.borrowings.Overdue()
	if err != nil {
		log.Printf("Reminder run: failed to load overdue loans: %v", err)
		return
	}

	var sent, failed int
	for i := range dueSoon {
		if s.sendDueSoon(&dueSoon[i]) {
			sent++
		} else {
			failed++
		}
	}
	for i := range overdue {
		if s.sendOverdue(&overdue[i]) {
			sent++
		} else {
			failed++
		}
	}

	log.Printf("Reminder run: sent %d mails (%d failed) in %v",
		sent, failed, time.Since(startTime).Round(time.Millisecond))
}

func (s *Scheduler) sendDueSoon(b *entities.Borrowing) bool {
	email := memberEmail(b)
	if email == "" {
		return false
	}
	subject := fmt.Sprintf("Reminder: %q is due on %s", b.Book.Title, b.DueDate.Format("January 2, 2006"))
	body := fmt.Sprintf(
		"<p>Hello %s,</p>"+
			"<p>This is a friendly reminder that <strong>%s</strong> by %s is due back on <strong>%s</strong>.</p>"+
			"<p>Please return or renew it to avoid late fees.</p>",
		b.Member.Name, b.Book.Title, b.Book.Author, b.DueDate.Format("January 2, 2006"))
	return s.deliver(email, subject, body)
}

func (s *Scheduler) sendOverdue(b *entities.Borrowing) bool {
	email := memberEmail(b)
	if email == "" {
		return false
	}
	subject := fmt.Sprintf("Overdue: %q was due on %s", b.Book.Title, b.DueDate.Format("January 2, 2006"))
	body := fmt.Sprintf(
		"<p>Hello %s,</p>"+
			"<p><strong>%s</strong> by %s was due back on <strong>%s</strong> and is now overdue.</p>"+
			"<p>Please return it as soon as possible. Late fees accrue daily.</p>",
		b.Member.Name, b.Book.Title, b.Book.Author, b.DueDate.Format("January 2, 2006"))
	return s.deliver(email, subject, body)
}

func (s *Scheduler) deliver(to, subject, body string) bool {
	if err := s.mailer.Send(to, subject, body); err != nil {
		log.Printf("Reminder run: failed to mail %s: %v", to, err)
		return false
	}
	return true
}

func memberEmail(b *entities.Borrowing) string {
	if b.Member == nil {
		return ""
	}
	return b.Member.Email
}
