package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"classroom-ledger/internal/aggregate"
	"classroom-ledger/internal/domain"
	"classroom-ledger/internal/repository"
)

const (
	remindersDeliveredKey = "reminders:delivered"
	remindersFailedKey    = "reminders:failed"
)

type ReminderService struct {
	repo   PaymentRepository
	cache  Cache
	sender ReminderSender
	now    Clock
}

func NewReminderService(repo PaymentRepository, cache Cache, sender ReminderSender, now Clock) *ReminderService {
	if now == nil {
		now = SystemClock
	}
	return &ReminderService{repo: repo, cache: cache, sender: sender, now: now}
}

// Reminders derives the reminder schedule for a class's overdue payments.
// Reminders whose last delivery attempt failed are reported as failed.
func (s *ReminderService) Reminders(ctx context.Context, classID string) ([]domain.PaymentReminder, error) {
	now := s.now()
	payments, err := s.repo.List(ctx, repository.PaymentsFilter{ClassID: &classID, DueTo: &now})
	if err != nil {
		return nil, err
	}
	reminders := aggregate.DeriveReminders(payments, now)
	if s.cache == nil || len(reminders) == 0 {
		return reminders, nil
	}

	failed, err := s.cache.SMembers(ctx, remindersFailedKey)
	if err != nil {
		log.Printf("[REMINDER] read failed set: %v", err)
		return reminders, nil
	}
	failedSet := make(map[string]struct{}, len(failed))
	for _, id := range failed {
		failedSet[id] = struct{}{}
	}
	for i := range reminders {
		if _, ok := failedSet[reminders[i].ID]; ok {
			reminders[i].Status = domain.ReminderFailed
		}
	}
	return reminders, nil
}

// SendDue delivers every reminder whose date has passed and that was not
// delivered before. It returns the reminders it attempted.
func (s *ReminderService) SendDue(ctx context.Context) ([]domain.PaymentReminder, error) {
	if s.cache == nil || s.sender == nil {
		return nil, errors.New("reminder delivery requires a cache and a sender")
	}
	now := s.now()
	payments, err := s.repo.List(ctx, repository.PaymentsFilter{DueTo: &now})
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}

	var attempted []domain.PaymentReminder
	for _, r := range aggregate.DeriveReminders(payments, now) {
		if r.Status != domain.ReminderSent {
			continue
		}
		done, err := s.cache.SIsMember(ctx, remindersDeliveredKey, r.ID)
		if err != nil {
			return attempted, fmt.Errorf("check reminder %s: %w", r.ID, err)
		}
		if done {
			continue
		}

		if err := s.sender.SendReminder(ctx, r); err != nil {
			log.Printf("[REMINDER] deliver %s for payment %s: %v", r.ID, r.PaymentID, err)
			r.Status = domain.ReminderFailed
			if err := s.cache.SAdd(ctx, remindersFailedKey, r.ID); err != nil {
				log.Printf("[REMINDER] mark %s failed: %v", r.ID, err)
			}
		} else {
			// a lost delivered mark means the reminder goes out again on the next run
			if err := s.cache.SAdd(ctx, remindersDeliveredKey, r.ID); err != nil {
				log.Printf("[REMINDER] mark %s delivered: %v", r.ID, err)
			}
			if err := s.cache.SRem(ctx, remindersFailedKey, r.ID); err != nil {
				log.Printf("[REMINDER] clear failed mark of %s: %v", r.ID, err)
			}
		}
		attempted = append(attempted, r)
	}
	return attempted, nil
}
