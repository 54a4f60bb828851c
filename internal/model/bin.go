package model

const (
	BinCategoryRecycle = "recycle"
	BinCategoryGarden  = "garden"
	BinCategoryGeneral = "general"
)

func ValidBinCategory(category string) bool {
	switch category {
	case BinCategoryRecycle, BinCategoryGarden, BinCategoryGeneral:
		return true
	}
	return false
}

// Bin holds one waste bin's appearance and collection schedule. Dates
// are stored as YYYY-MM-DD; LastNotificationTime is a unix timestamp,
// zero when no reminder has been sent for the current cycle.
type Bin struct {
	ID                   string `json:"id"`
	UserID               string `json:"user_id"`
	Category             string `json:"category"`
	BodyColor            string `json:"body_color"`
	HeadColor            string `json:"head_color"`
	LastCollectionDate   string `json:"last_collection_date"`
	CollectionInterval   int    `json:"collection_interval"`
	NextCollectionDate   string `json:"next_collection_date"`
	NotificationEnabled  bool   `json:"notification_enabled"`
	NotifyDaysBefore     int    `json:"notify_days_before"`
	LastNotificationTime int64  `json:"last_notification_time,omitempty"`
	Ctime                int64  `json:"ctime"`
	Mtime                int64  `json:"mtime"`
}
