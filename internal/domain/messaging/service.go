package messaging

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

const defaultListLimit = 50

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) ListMessages(ctx context.Context, familyID string, filter ListFilter) ([]Message, error) {
	if filter.Limit <= 0 || filter.Limit > 200 {
		filter.Limit = defaultListLimit
	}
	return s.repo.ListMessages(ctx, familyID, filter)
}

func (s *Service) PostMessage(ctx context.Context, familyID, authorID, body string) (*Message, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, fmt.Errorf("body is required")
	}
	if len(body) > MaxBodyLength {
		return nil, ErrBodyTooLong
	}

	message := Message{
		ID:       uuid.NewString(),
		FamilyID: familyID,
		AuthorID: authorID,
		Body:     body,
	}
	if err := s.repo.CreateMessage(ctx, &message); err != nil {
		return nil, err
	}
	return &message, nil
}

// DeleteMessage removes a message. The author may delete their own;
// the parent admin may delete any.
func (s *Service) DeleteMessage(ctx context.Context, familyID, messageID, actorID string, actorIsAdmin bool) error {
	message, err := s.repo.GetMessage(ctx, familyID, messageID)
	if err != nil {
		return err
	}
	if message.AuthorID != actorID && !actorIsAdmin {
		return ErrNotAuthor
	}
	return s.repo.DeleteMessage(ctx, message.ID)
}
