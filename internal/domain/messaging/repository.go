package messaging

import "context"

type Repository interface {
	ListMessages(ctx context.Context, familyID string, filter ListFilter) ([]Message, error)
	GetMessage(ctx context.Context, familyID, messageID string) (*Message, error)
	CreateMessage(ctx context.Context, message *Message) error
	DeleteMessage(ctx context.Context, messageID string) error
}
