package job

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/wastewise/binreminder/internal/model"
	"github.com/wastewise/binreminder/internal/notify"
	"github.com/wastewise/binreminder/internal/pkg/timeutil"
)

// evaluationTolerance widens the 06:00/18:00 decision points into small
// windows so a coarse trigger cadence still lands inside them.
const evaluationTolerance = 5 * time.Minute

type binStore interface {
	ListDueForReminder(ctx context.Context, date string) ([]*model.Bin, error)
	SetLastNotificationTime(ctx context.Context, binID string, ts int64) error
}

type userStore interface {
	GetByID(ctx context.Context, userID string) (*model.User, error)
	Update(ctx context.Context, userID string, update map[string]interface{}) error
}

// CollectionReminderJob sends the day-before push reminders: an evening
// heads-up around 18:00 and a morning final reminder around 06:00 on
// collection day eve and day respectively. The cron trigger fires far
// more often than that; everything outside the two windows is a no-op.
type CollectionReminderJob struct {
	bins     binStore
	users    userStore
	notifier notify.Notifier
	loc      *time.Location
	now      func() time.Time
}

func NewCollectionReminderJob(bins binStore, users userStore, notifier notify.Notifier, loc *time.Location) *CollectionReminderJob {
	if loc == nil {
		loc = time.Local
	}
	return &CollectionReminderJob{bins: bins, users: users, notifier: notifier, loc: loc, now: time.Now}
}

func (j *CollectionReminderJob) Name() string {
	return "collection_reminder"
}

// IsEvaluationWindow reports whether now falls within the tolerance
// band around 06:00 or 18:00.
func IsEvaluationWindow(now time.Time) bool {
	sixAM := time.Date(now.Year(), now.Month(), now.Day(), 6, 0, 0, 0, now.Location())
	sixPM := time.Date(now.Year(), now.Month(), now.Day(), 18, 0, 0, 0, now.Location())
	return absDuration(now.Sub(sixAM)) <= evaluationTolerance ||
		absDuration(now.Sub(sixPM)) <= evaluationTolerance
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}

// ShouldNotify decides whether a bin gets a reminder right now. A bin
// that was never notified this cycle gets the evening heads-up the day
// before collection; one notified in an evening window gets the morning
// final reminder on collection day; after that, nothing until the
// schedule rolls over.
func ShouldNotify(bin *model.Bin, now time.Time) bool {
	if !IsEvaluationWindow(now) {
		return false
	}
	if bin.LastNotificationTime == 0 {
		return now.Hour() >= 12 && bin.NextCollectionDate == timeutil.FormatDate(now.AddDate(0, 0, 1))
	}
	lastSent := time.Unix(bin.LastNotificationTime, 0).In(now.Location())
	if lastSent.Hour() >= 18 {
		return now.Hour() < 12 && bin.NextCollectionDate == timeutil.FormatDate(now)
	}
	return false
}

func (j *CollectionReminderJob) Run(ctx context.Context) error {
	now := j.now().In(j.loc)
	if !IsEvaluationWindow(now) {
		return nil
	}
	// Evening windows look at tomorrow's collections, morning windows
	// at today's.
	target := timeutil.FormatDate(now.AddDate(0, 0, 1))
	if now.Hour() < 12 {
		target = timeutil.FormatDate(now)
	}
	bins, err := j.bins.ListDueForReminder(ctx, target)
	if err != nil {
		return err
	}
	logger := logutil.GetLogger(ctx).With(zap.String("date", target))
	for _, bin := range bins {
		if !ShouldNotify(bin, now) {
			continue
		}
		// One bin's failure never aborts the rest of the batch.
		if err := j.notifyBin(ctx, bin, now); err != nil {
			logger.Error("reminder failed",
				zap.String("bin_id", bin.ID),
				zap.String("category", bin.Category),
				zap.Error(err),
			)
		}
	}
	return nil
}

func (j *CollectionReminderJob) notifyBin(ctx context.Context, bin *model.Bin, now time.Time) error {
	user, err := j.users.GetByID(ctx, bin.UserID)
	if err != nil {
		return err
	}
	if user.DeviceToken == "" {
		return nil
	}

	morning := now.Hour() < 12
	body := fmt.Sprintf("Your %s bin will be collected tomorrow.", bin.Category)
	if morning {
		body = fmt.Sprintf("Final reminder: your %s bin will be collected today!", bin.Category)
	}
	payload := notify.Payload{
		DeviceToken:    user.DeviceToken,
		Title:          "Bin collection reminder",
		Body:           body,
		Category:       bin.Category,
		BodyColor:      bin.BodyColor,
		HeadColor:      bin.HeadColor,
		CollectionDate: bin.NextCollectionDate,
	}
	if err := j.notifier.Send(ctx, payload); err != nil {
		if errors.Is(err, notify.ErrInvalidRecipient) {
			// Dead token: drop it so future passes skip this user.
			if clearErr := j.users.Update(ctx, user.ID, map[string]interface{}{"device_token": ""}); clearErr != nil {
				return clearErr
			}
			return nil
		}
		// Transient failure; the next evaluation window retries.
		return err
	}
	return j.bins.SetLastNotificationTime(ctx, bin.ID, now.Unix())
}
