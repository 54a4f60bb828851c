package job

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/wastewise/binreminder/internal/model"
	"github.com/wastewise/binreminder/internal/notify"
	appErr "github.com/wastewise/binreminder/internal/pkg/errors"
)

func at(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse("2006-01-02 15:04", value)
	require.NoError(t, err)
	return parsed
}

func TestIsEvaluationWindow(t *testing.T) {
	tests := []struct {
		now  string
		want bool
	}{
		{"2024-06-17 18:00", true},
		{"2024-06-17 18:02", true},
		{"2024-06-17 17:55", true},
		{"2024-06-17 18:05", true},
		{"2024-06-17 18:06", false},
		{"2024-06-17 06:00", true},
		{"2024-06-17 06:04", true},
		{"2024-06-17 05:54", false},
		{"2024-06-17 12:00", false},
		{"2024-06-17 00:00", false},
	}
	for _, tt := range tests {
		t.Run(tt.now, func(t *testing.T) {
			require.Equal(t, tt.want, IsEvaluationWindow(at(t, tt.now)))
		})
	}
}

func TestShouldNotify(t *testing.T) {
	eveningSent := at(t, "2024-06-17 18:02").Unix()
	morningSent := at(t, "2024-06-18 06:01").Unix()

	tests := []struct {
		name     string
		next     string
		lastSent int64
		now      string
		want     bool
	}{
		{name: "evening heads-up", next: "2024-06-18", now: "2024-06-17 18:02", want: true},
		{name: "fresh bin in morning window stays quiet", next: "2024-06-18", now: "2024-06-17 06:02", want: false},
		{name: "already sent this evening", next: "2024-06-18", lastSent: eveningSent, now: "2024-06-17 18:04", want: false},
		{name: "morning final reminder", next: "2024-06-18", lastSent: eveningSent, now: "2024-06-18 06:00", want: true},
		{name: "after second send never again", next: "2024-06-18", lastSent: morningSent, now: "2024-06-18 06:04", want: false},
		{name: "collection too far out", next: "2024-06-20", now: "2024-06-17 18:02", want: false},
		{name: "outside window", next: "2024-06-18", now: "2024-06-17 15:00", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bin := &model.Bin{NextCollectionDate: tt.next, LastNotificationTime: tt.lastSent}
			require.Equal(t, tt.want, ShouldNotify(bin, at(t, tt.now)))
		})
	}
}

type fakeJobBinStore struct {
	bins []*model.Bin
}

func (f *fakeJobBinStore) ListDueForReminder(_ context.Context, date string) ([]*model.Bin, error) {
	var out []*model.Bin
	for _, bin := range f.bins {
		if bin.NotificationEnabled && bin.NextCollectionDate == date {
			out = append(out, bin)
		}
	}
	return out, nil
}

func (f *fakeJobBinStore) SetLastNotificationTime(_ context.Context, binID string, ts int64) error {
	for _, bin := range f.bins {
		if bin.ID == binID {
			bin.LastNotificationTime = ts
			return nil
		}
	}
	return appErr.ErrNotFound
}

type fakeJobUserStore struct {
	users map[string]*model.User
}

func (f *fakeJobUserStore) GetByID(_ context.Context, userID string) (*model.User, error) {
	user, ok := f.users[userID]
	if !ok {
		return nil, appErr.ErrNotFound
	}
	return user, nil
}

func (f *fakeJobUserStore) Update(_ context.Context, userID string, update map[string]interface{}) error {
	user, ok := f.users[userID]
	if !ok {
		return appErr.ErrNotFound
	}
	if token, ok := update["device_token"]; ok {
		user.DeviceToken = token.(string)
	}
	return nil
}

type fakeNotifier struct {
	sent []notify.Payload
	err  error
}

func (f *fakeNotifier) Send(_ context.Context, payload notify.Payload) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, payload)
	return nil
}

func newTestJob(bins *fakeJobBinStore, users *fakeJobUserStore, notifier *fakeNotifier, now time.Time) *CollectionReminderJob {
	j := NewCollectionReminderJob(bins, users, notifier, time.UTC)
	j.now = func() time.Time { return now }
	return j
}

func TestRunSendsEveningReminder(t *testing.T) {
	bins := &fakeJobBinStore{bins: []*model.Bin{
		{ID: "bin-1", UserID: "user-1", Category: model.BinCategoryRecycle, NextCollectionDate: "2024-06-18", NotificationEnabled: true},
		{ID: "bin-2", UserID: "user-1", Category: model.BinCategoryGarden, NextCollectionDate: "2024-06-25", NotificationEnabled: true},
	}}
	users := &fakeJobUserStore{users: map[string]*model.User{
		"user-1": {ID: "user-1", DeviceToken: "token-1"},
	}}
	notifier := &fakeNotifier{}
	now := at(t, "2024-06-17 18:02")

	require.NoError(t, newTestJob(bins, users, notifier, now).Run(context.Background()))
	require.Len(t, notifier.sent, 1)
	require.Equal(t, model.BinCategoryRecycle, notifier.sent[0].Category)
	require.Contains(t, notifier.sent[0].Body, "tomorrow")
	require.Equal(t, now.Unix(), bins.bins[0].LastNotificationTime)
}

func TestRunSendsMorningFinalReminder(t *testing.T) {
	eveningSent := at(t, "2024-06-17 18:02").Unix()
	bins := &fakeJobBinStore{bins: []*model.Bin{
		{ID: "bin-1", UserID: "user-1", Category: model.BinCategoryGeneral, NextCollectionDate: "2024-06-18", NotificationEnabled: true, LastNotificationTime: eveningSent},
	}}
	users := &fakeJobUserStore{users: map[string]*model.User{
		"user-1": {ID: "user-1", DeviceToken: "token-1"},
	}}
	notifier := &fakeNotifier{}
	now := at(t, "2024-06-18 06:01")

	require.NoError(t, newTestJob(bins, users, notifier, now).Run(context.Background()))
	require.Len(t, notifier.sent, 1)
	require.Contains(t, notifier.sent[0].Body, "today")
}

func TestRunOutsideWindowIsNoop(t *testing.T) {
	bins := &fakeJobBinStore{bins: []*model.Bin{
		{ID: "bin-1", UserID: "user-1", Category: model.BinCategoryRecycle, NextCollectionDate: "2024-06-18", NotificationEnabled: true},
	}}
	users := &fakeJobUserStore{users: map[string]*model.User{
		"user-1": {ID: "user-1", DeviceToken: "token-1"},
	}}
	notifier := &fakeNotifier{}

	require.NoError(t, newTestJob(bins, users, notifier, at(t, "2024-06-17 14:00")).Run(context.Background()))
	require.Empty(t, notifier.sent)
}

func TestRunSkipsUserWithoutDeviceToken(t *testing.T) {
	bins := &fakeJobBinStore{bins: []*model.Bin{
		{ID: "bin-1", UserID: "user-1", Category: model.BinCategoryRecycle, NextCollectionDate: "2024-06-18", NotificationEnabled: true},
	}}
	users := &fakeJobUserStore{users: map[string]*model.User{
		"user-1": {ID: "user-1"},
	}}
	notifier := &fakeNotifier{}

	require.NoError(t, newTestJob(bins, users, notifier, at(t, "2024-06-17 18:02")).Run(context.Background()))
	require.Empty(t, notifier.sent)
	require.EqualValues(t, 0, bins.bins[0].LastNotificationTime)
}

func TestRunClearsInvalidDeviceToken(t *testing.T) {
	bins := &fakeJobBinStore{bins: []*model.Bin{
		{ID: "bin-1", UserID: "user-1", Category: model.BinCategoryRecycle, NextCollectionDate: "2024-06-18", NotificationEnabled: true},
	}}
	users := &fakeJobUserStore{users: map[string]*model.User{
		"user-1": {ID: "user-1", DeviceToken: "dead-token"},
	}}
	notifier := &fakeNotifier{err: notify.ErrInvalidRecipient}

	require.NoError(t, newTestJob(bins, users, notifier, at(t, "2024-06-17 18:02")).Run(context.Background()))
	require.Empty(t, users.users["user-1"].DeviceToken)
	// Not marked as sent: the user re-registers and the cycle restarts.
	require.EqualValues(t, 0, bins.bins[0].LastNotificationTime)
}

// One failing delivery must not stop the rest of the batch.
func TestRunIsolatesPerBinFailures(t *testing.T) {
	bins := &fakeJobBinStore{bins: []*model.Bin{
		{ID: "bin-1", UserID: "missing-user", Category: model.BinCategoryRecycle, NextCollectionDate: "2024-06-18", NotificationEnabled: true},
		{ID: "bin-2", UserID: "user-1", Category: model.BinCategoryGarden, NextCollectionDate: "2024-06-18", NotificationEnabled: true},
	}}
	users := &fakeJobUserStore{users: map[string]*model.User{
		"user-1": {ID: "user-1", DeviceToken: "token-1"},
	}}
	notifier := &fakeNotifier{}

	require.NoError(t, newTestJob(bins, users, notifier, at(t, "2024-06-17 18:02")).Run(context.Background()))
	require.Len(t, notifier.sent, 1)
	require.Equal(t, model.BinCategoryGarden, notifier.sent[0].Category)
}
