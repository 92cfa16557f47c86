package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/brewline-api/internal/domain/enum"
	"github.com/sangkips/brewline-api/internal/domain/repository"
	"github.com/sangkips/brewline-api/internal/infrastructure/queue"
	"github.com/sangkips/brewline-api/pkg/apperror"
	"github.com/sirupsen/logrus"
)

// ExpiryOptions tunes the expiry worker.
type ExpiryOptions struct {
	Window        time.Duration
	PollInterval  time.Duration
	SweepInterval time.Duration
	BatchSize     int
	MaxRetries    int
}

// ExpiryService expires gateway payments that were never settled. Jobs armed
// on the delay queue handle the common case; the periodic sweep catches
// payments whose job was lost.
type ExpiryService struct {
	tx       repository.Transactor
	payments repository.PaymentRepository
	orders   repository.OrderRepository
	queue    DelayQueue
	opts     ExpiryOptions
	now      func() time.Time
	log      logrus.FieldLogger
}

// NewExpiryService creates a new expiry service
func NewExpiryService(
	tx repository.Transactor,
	payments repository.PaymentRepository,
	orders repository.OrderRepository,
	q DelayQueue,
	opts ExpiryOptions,
	log logrus.FieldLogger,
) *ExpiryService {
	if opts.BatchSize <= 0 {
		opts.BatchSize = 100
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = 5
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = time.Second
	}
	if opts.SweepInterval <= 0 {
		opts.SweepInterval = 5 * time.Minute
	}
	return &ExpiryService{
		tx:       tx,
		payments: payments,
		orders:   orders,
		queue:    q,
		opts:     opts,
		now:      time.Now,
		log:      log,
	}
}

// Arm schedules the expiry of an order's payment at the given time.
func (s *ExpiryService) Arm(ctx context.Context, orderID uuid.UUID, at time.Time) error {
	return s.queue.Schedule(ctx, at, queue.Job{Kind: queue.JobExpirePayment, OrderID: orderID})
}

// ExpireIfStillPending moves a pending payment to EXPIRED and cancels its
// order. It reports false when the payment had already left PENDING.
func (s *ExpiryService) ExpireIfStillPending(ctx context.Context, orderID uuid.UUID) (bool, error) {
	payment, err := s.payments.GetByOrderID(ctx, orderID)
	if err != nil {
		return false, apperror.NewInternalError("Failed to load payment", err)
	}
	if payment == nil || payment.Status != enum.PaymentStatusPending {
		return false, nil
	}

	expired := false
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		err := s.payments.Transition(ctx, payment, repository.PaymentTransition{
			Status: enum.PaymentStatusExpired,
		})
		if errors.Is(err, repository.ErrStaleTransition) {
			return nil
		}
		if err != nil {
			return apperror.NewInternalError("Failed to expire payment", err)
		}

		if _, err := s.orders.TransitionStatus(ctx, orderID, []enum.OrderStatus{enum.OrderStatusPending}, enum.OrderStatusCancelled); err != nil {
			return apperror.NewInternalError("Failed to cancel order", err)
		}
		expired = true
		return nil
	})
	if err != nil {
		return false, err
	}

	if expired {
		s.log.WithFields(logrus.Fields{
			"order_id":   orderID,
			"payment_id": payment.ID,
		}).Info("Payment expired, order cancelled")
	}
	return expired, nil
}

// Sweep expires every overdue pending payment and returns how many it expired.
func (s *ExpiryService) Sweep(ctx context.Context) (int, error) {
	now := s.now()
	expired := 0
	for {
		overdue, err := s.payments.ListExpiredPending(ctx, now, now.Add(-s.opts.Window), s.opts.BatchSize)
		if err != nil {
			return expired, apperror.NewInternalError("Failed to list overdue payments", err)
		}

		progressed := false
		for _, p := range overdue {
			ok, err := s.ExpireIfStillPending(ctx, p.OrderID)
			if err != nil {
				s.log.WithError(err).WithField("order_id", p.OrderID).Error("Sweep failed to expire payment")
				continue
			}
			if ok {
				expired++
				progressed = true
			}
		}

		if len(overdue) < s.opts.BatchSize || !progressed {
			break
		}
	}

	if expired > 0 {
		s.log.WithField("expired", expired).Info("Expiry sweep finished")
	}
	return expired, nil
}

// ProcessDue runs the jobs whose time has come. Failed jobs are
// rescheduled with exponential backoff until MaxRetries attempts.
func (s *ExpiryService) ProcessDue(ctx context.Context) (int, error) {
	now := s.now()
	jobs, err := s.queue.Due(ctx, now, s.opts.BatchSize)
	if err != nil {
		return 0, err
	}

	for _, job := range jobs {
		log := s.log.WithFields(logrus.Fields{"job": job.Kind, "order_id": job.OrderID, "attempt": job.Attempt})
		if job.Kind != queue.JobExpirePayment {
			log.Warn("Dropping job of unknown kind")
			continue
		}

		if _, err := s.ExpireIfStillPending(ctx, job.OrderID); err != nil {
			s.retry(ctx, job, now, err, log)
		}
	}
	return len(jobs), nil
}

func (s *ExpiryService) retry(ctx context.Context, job queue.Job, now time.Time, cause error, log logrus.FieldLogger) {
	job.Attempt++
	if job.Attempt >= s.opts.MaxRetries {
		log.WithError(cause).Error("Expiry job exhausted retries, sweep will pick it up")
		return
	}

	at := now.Add(backoff(job.Attempt))
	if err := s.queue.Schedule(ctx, at, job); err != nil {
		log.WithError(err).Error("Failed to reschedule expiry job")
		return
	}
	log.WithError(cause).WithField("retry_at", at).Warn("Expiry job failed, rescheduled")
}

// backoff doubles from one second and caps at five minutes.
func backoff(attempt int) time.Duration {
	d := time.Second << uint(attempt-1)
	if d <= 0 || d > 5*time.Minute {
		return 5 * time.Minute
	}
	return d
}

// Run polls the delay queue and sweeps periodically until ctx is cancelled.
func (s *ExpiryService) Run(ctx context.Context) {
	s.log.WithFields(logrus.Fields{
		"poll_interval":  s.opts.PollInterval,
		"sweep_interval": s.opts.SweepInterval,
	}).Info("Expiry worker started")

	if _, err := s.Sweep(ctx); err != nil {
		s.log.WithError(err).Error("Initial expiry sweep failed")
	}

	poll := time.NewTicker(s.opts.PollInterval)
	defer poll.Stop()
	sweep := time.NewTicker(s.opts.SweepInterval)
	defer sweep.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("Expiry worker stopped")
			return
		case <-poll.C:
			if _, err := s.ProcessDue(ctx); err != nil {
				s.log.WithError(err).Error("Failed to poll delay queue")
			}
		case <-sweep.C:
			if _, err := s.Sweep(ctx); err != nil {
				s.log.WithError(err).Error("Expiry sweep failed")
			}
		}
	}
}
