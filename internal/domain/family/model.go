package family

import "time"

// Exactly one member per family holds RoleParentAdmin.
const (
	RoleParentAdmin = "parent_admin"
	RoleParent      = "parent"
	RoleChild       = "child"
)

func ValidRole(role string) bool {
	switch role {
	case RoleParentAdmin, RoleParent, RoleChild:
		return true
	}
	return false
}

type Family struct {
	ID        string    `gorm:"type:uuid;primaryKey"`
	Name      string    `gorm:"not null"`
	Code      string    `gorm:"size:8;not null;uniqueIndex"`
	CreatedBy string    `gorm:"not null;index;column:created_by"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

type Member struct {
	FamilyID string    `gorm:"type:uuid;primaryKey"`
	UserID   string    `gorm:"primaryKey;uniqueIndex"`
	Role     string    `gorm:"type:varchar(16);not null"`
	JoinedAt time.Time `gorm:"autoCreateTime"`

	Family Family `gorm:"foreignKey:FamilyID;references:ID;constraint:OnDelete:CASCADE"`
}

func (Member) TableName() string {
	return "family_members"
}

type MemberProfile struct {
	UserID    string
	Role      string
	JoinedAt  time.Time
	Name      *string
	Email     *string
	AvatarURL *string
}

// CreateResult carries the new family plus the degraded-mode signal from
// code generation: SyncPending is true when uniqueness was confirmed
// locally only because the sync backend was unreachable.
type CreateResult struct {
	Family      Family
	SyncPending bool
}
