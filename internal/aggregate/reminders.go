package aggregate

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"classroom-ledger/internal/domain"
)

const (
	reminderInterval = 7 // days
	maxReminders     = 3
)

var reminderNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("classroom-ledger/reminders"))

var reminderChannels = [maxReminders]domain.ReminderChannel{
	domain.ChannelEmail, domain.ChannelSMS, domain.ChannelCall,
}

// DeriveReminders computes the reminder schedule for overdue payments.
//
// Each payment gets min(3, daysPastDue/7+1) reminders, the k-th scheduled 7k
// days after the due date. A reminder is sent once its date is before now.
// Records that are not overdue at now produce nothing.
func DeriveReminders(overdue []domain.Payment, now time.Time) []domain.PaymentReminder {
	var out []domain.PaymentReminder
	for _, p := range overdue {
		p = RefreshStatus(p, now)
		if p.Status != domain.StatusOverdue || p.DueDate.IsZero() {
			continue
		}

		daysPastDue := int(math.Floor(now.Sub(p.DueDate).Hours() / 24))
		if daysPastDue < 0 {
			continue
		}
		n := min(maxReminders, daysPastDue/reminderInterval+1)

		for k := 1; k <= n; k++ {
			at := p.DueDate.AddDate(0, 0, reminderInterval*k)
			status := domain.ReminderPending
			if at.Before(now) {
				status = domain.ReminderSent
			}
			out = append(out, domain.PaymentReminder{
				ID:           ReminderID(p.ID, k),
				PaymentID:    p.ID,
				StudentID:    p.StudentID,
				ParentID:     p.ParentID,
				Sequence:     k,
				Channel:      reminderChannels[k-1],
				ReminderDate: at,
				DaysPastDue:  daysPastDue,
				Amount:       p.Remaining(),
				Currency:     p.Currency,
				Status:       status,
			})
		}
	}
	return out
}

// ReminderID is stable for a given payment and sequence number.
func ReminderID(paymentID string, seq int) string {
	return uuid.NewSHA1(reminderNamespace, []byte(fmt.Sprintf("%s#%d", paymentID, seq))).String()
}
