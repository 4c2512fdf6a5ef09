package schedule

import "time"

// School runs are modeled as a specialized event kind with a driver
// assignment rather than a separate module.
const (
	KindGeneral   = "general"
	KindSchoolRun = "school_run"
)

func ValidKind(kind string) bool {
	return kind == KindGeneral || kind == KindSchoolRun
}

type Event struct {
	ID        string    `gorm:"type:uuid;primaryKey"`
	FamilyID  string    `gorm:"type:uuid;index;not null"`
	Title     string    `gorm:"not null"`
	Kind      string    `gorm:"type:varchar(16);not null;default:general"`
	StartsAt  time.Time `gorm:"not null;index"`
	EndsAt    time.Time `gorm:"not null"`
	AllDay    bool      `gorm:"not null;default:false"`
	Location  *string   `gorm:"type:text"`
	DriverID  *string   `gorm:"type:uuid;column:driver_id"`
	CreatedBy string    `gorm:"not null;column:created_by"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

type CreateEventInput struct {
	FamilyID  string
	Title     string
	Kind      string
	StartsAt  time.Time
	EndsAt    time.Time
	AllDay    bool
	Location  *string
	DriverID  *string
	CreatedBy string
}

type UpdateEventInput struct {
	ID       string
	FamilyID string
	Title    *string
	StartsAt *time.Time
	EndsAt   *time.Time
	AllDay   *bool
	Location *string
	DriverID *string
}
