package messaging

import "time"

// MaxBodyLength bounds a single message body.
const MaxBodyLength = 2000

type Message struct {
	ID        string    `gorm:"type:uuid;primaryKey"`
	FamilyID  string    `gorm:"type:uuid;index;not null"`
	AuthorID  string    `gorm:"type:uuid;not null;column:author_id"`
	Body      string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime;index"`
}

type ListFilter struct {
	Limit  int
	Before *time.Time
}
