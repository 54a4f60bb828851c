package service

import (
	"context"
	"errors"
	"regexp"
	"time"

	"github.com/wastewise/binreminder/internal/model"
	appErr "github.com/wastewise/binreminder/internal/pkg/errors"
	"github.com/wastewise/binreminder/internal/pkg/timeutil"
	"github.com/wastewise/binreminder/internal/schedule"
)

var hexColorRegex = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

type binStore interface {
	Create(ctx context.Context, bin *model.Bin) error
	GetByIDAndUser(ctx context.Context, binID, userID string) (*model.Bin, error)
	GetByUserAndCategory(ctx context.Context, userID, category string) (*model.Bin, error)
	ListByUser(ctx context.Context, userID string) ([]*model.Bin, error)
	ListUpcoming(ctx context.Context, userID, from, to string) ([]*model.Bin, error)
	Update(ctx context.Context, binID string, update map[string]interface{}) error
}

// BinService manages each user's bins and their collection schedules.
// Holiday adjustment uses the owner's country as jurisdiction.
type BinService struct {
	bins     binStore
	holidays schedule.HolidayLookup
	now      func() time.Time
}

func NewBinService(bins binStore, holidays schedule.HolidayLookup) *BinService {
	return &BinService{bins: bins, holidays: holidays, now: time.Now}
}

type AddBinInput struct {
	Category           string `json:"category"`
	BodyColor          string `json:"body_color"`
	HeadColor          string `json:"head_color"`
	LastCollectionDate string `json:"last_collection_date"`
	CollectionInterval int    `json:"collection_interval"`
	NotifyDaysBefore   *int   `json:"notify_days_before,omitempty"`
}

func validColors(bodyColor, headColor string) bool {
	return hexColorRegex.MatchString(bodyColor) && hexColorRegex.MatchString(headColor)
}

// AddBin creates the user's bin for a category. A user holds at most
// one bin per category.
func (s *BinService) AddBin(ctx context.Context, owner *model.User, input AddBinInput) (*model.Bin, error) {
	if !model.ValidBinCategory(input.Category) {
		return nil, appErr.ErrInvalid
	}
	if !validColors(input.BodyColor, input.HeadColor) {
		return nil, appErr.ErrInvalid
	}
	notifyDaysBefore := 1
	if input.NotifyDaysBefore != nil {
		if *input.NotifyDaysBefore < 0 {
			return nil, appErr.ErrInvalid
		}
		notifyDaysBefore = *input.NotifyDaysBefore
	}
	if _, err := s.bins.GetByUserAndCategory(ctx, owner.ID, input.Category); err == nil {
		return nil, appErr.ErrConflict
	} else if !errors.Is(err, appErr.ErrNotFound) {
		return nil, err
	}

	lastCollection, err := timeutil.ParseDate(input.LastCollectionDate)
	if err != nil {
		return nil, appErr.ErrInvalid
	}
	now := s.now()
	if err := schedule.ValidateNewSchedule(lastCollection, input.CollectionInterval, now); err != nil {
		return nil, err
	}
	next, err := schedule.NextCollectionDate(ctx, s.holidays, lastCollection, input.CollectionInterval, owner.Country)
	if err != nil {
		return nil, err
	}

	nowUnix := now.Unix()
	bin := &model.Bin{
		ID:                  newID(),
		UserID:              owner.ID,
		Category:            input.Category,
		BodyColor:           input.BodyColor,
		HeadColor:           input.HeadColor,
		LastCollectionDate:  timeutil.FormatDate(lastCollection),
		CollectionInterval:  input.CollectionInterval,
		NextCollectionDate:  timeutil.FormatDate(next),
		NotificationEnabled: true,
		NotifyDaysBefore:    notifyDaysBefore,
		Ctime:               nowUnix,
		Mtime:               nowUnix,
	}
	if err := s.bins.Create(ctx, bin); err != nil {
		return nil, err
	}
	return bin, nil
}

// UpdateSchedule revalidates against the bin's latest persisted next
// collection date, so a concurrent update cannot sneak a regression
// past a stale read. The reminder state resets with the new cycle.
func (s *BinService) UpdateSchedule(ctx context.Context, owner *model.User, binID, lastCollectionDate string, intervalDays int) (*model.Bin, error) {
	bin, err := s.bins.GetByIDAndUser(ctx, binID, owner.ID)
	if err != nil {
		return nil, err
	}
	newLast, err := timeutil.ParseDate(lastCollectionDate)
	if err != nil {
		return nil, appErr.ErrInvalid
	}
	currentNext, err := timeutil.ParseDate(bin.NextCollectionDate)
	if err != nil {
		return nil, appErr.ErrHolidayData
	}
	now := s.now()
	if err := schedule.ValidateScheduleUpdate(newLast, intervalDays, currentNext, now); err != nil {
		return nil, err
	}
	next, err := schedule.NextCollectionDate(ctx, s.holidays, newLast, intervalDays, owner.Country)
	if err != nil {
		return nil, err
	}
	update := map[string]interface{}{
		"last_collection_date":   timeutil.FormatDate(newLast),
		"collection_interval":    intervalDays,
		"next_collection_date":   timeutil.FormatDate(next),
		"last_notification_time": 0,
		"mtime":                  now.Unix(),
	}
	if err := s.bins.Update(ctx, bin.ID, update); err != nil {
		return nil, err
	}
	return s.bins.GetByIDAndUser(ctx, binID, owner.ID)
}

func (s *BinService) UpdateAppearance(ctx context.Context, userID, binID, bodyColor, headColor string) (*model.Bin, error) {
	bin, err := s.bins.GetByIDAndUser(ctx, binID, userID)
	if err != nil {
		return nil, err
	}
	if !validColors(bodyColor, headColor) {
		return nil, appErr.ErrInvalid
	}
	update := map[string]interface{}{
		"body_color": bodyColor,
		"head_color": headColor,
		"mtime":      s.now().Unix(),
	}
	if err := s.bins.Update(ctx, bin.ID, update); err != nil {
		return nil, err
	}
	return s.bins.GetByIDAndUser(ctx, binID, userID)
}

func (s *BinService) SetNotificationsEnabled(ctx context.Context, userID, binID string, enabled bool) error {
	bin, err := s.bins.GetByIDAndUser(ctx, binID, userID)
	if err != nil {
		return err
	}
	return s.bins.Update(ctx, bin.ID, map[string]interface{}{
		"notification_enabled": enabled,
		"mtime":                s.now().Unix(),
	})
}

func (s *BinService) List(ctx context.Context, userID string) ([]*model.Bin, error) {
	return s.bins.ListByUser(ctx, userID)
}

type UpcomingCollection struct {
	Category           string `json:"category"`
	NextCollectionDate string `json:"next_collection_date"`
	DaysUntil          int    `json:"days_until"`
	BodyColor          string `json:"body_color"`
	HeadColor          string `json:"head_color"`
}

// Upcoming lists collections within the next withinDays days, each
// annotated with the whole-day countdown.
func (s *BinService) Upcoming(ctx context.Context, userID string, withinDays int) ([]UpcomingCollection, error) {
	if withinDays <= 0 {
		withinDays = 7
	}
	today := timeutil.Noon(s.now())
	from := timeutil.FormatDate(today)
	to := timeutil.FormatDate(today.AddDate(0, 0, withinDays))
	bins, err := s.bins.ListUpcoming(ctx, userID, from, to)
	if err != nil {
		return nil, err
	}
	upcoming := make([]UpcomingCollection, 0, len(bins))
	for _, bin := range bins {
		next, err := timeutil.ParseDate(bin.NextCollectionDate)
		if err != nil {
			continue
		}
		upcoming = append(upcoming, UpcomingCollection{
			Category:           bin.Category,
			NextCollectionDate: bin.NextCollectionDate,
			DaysUntil:          timeutil.DaysBetween(today, next),
			BodyColor:          bin.BodyColor,
			HeadColor:          bin.HeadColor,
		})
	}
	return upcoming, nil
}
