package family

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"tribeboard/internal/domain/familycode"
	"tribeboard/pkg/logger"
)

const cacheTTL = time.Minute

// CodeGenerator produces a unique family code. Satisfied by
// *familycode.Service.
type CodeGenerator interface {
	Generate(ctx context.Context) (familycode.Result, error)
}

type Service struct {
	repo  Repository
	codes CodeGenerator
	cache Cache
	log   logger.Logger
}

func NewService(repo Repository, codes CodeGenerator, cache Cache, log logger.Logger) *Service {
	if cache == nil {
		cache = noopCache{}
	}
	return &Service{repo: repo, codes: codes, cache: cache, log: log}
}

func (s *Service) GetFamilyByUser(ctx context.Context, userID string) (*Family, error) {
	if cached, ok := s.cache.GetByUserID(userID); ok {
		return cached, nil
	}

	result, err := s.repo.GetFamilyByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	s.cache.SetByUserID(userID, result, cacheTTL)
	return result, nil
}

func (s *Service) GetMembership(ctx context.Context, userID string) (*Member, error) {
	return s.repo.GetMemberByUser(ctx, userID)
}

// CreateFamily creates a family with a freshly generated unique code and
// makes the creator its parent admin. The code is generated before the
// transaction; a write-time code collision surfaces as ErrCodeTaken
// through the repository.
func (s *Service) CreateFamily(ctx context.Context, userID, name string) (*CreateResult, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("name is required")
	}

	inFamily, err := s.repo.IsUserInFamily(ctx, userID)
	if err != nil {
		return nil, err
	}
	if inFamily {
		return nil, ErrAlreadyInFamily
	}

	code, err := s.codes.Generate(ctx)
	if err != nil {
		return nil, err
	}
	if code.Degraded {
		s.log.Warn("family: code uniqueness confirmed locally only", "user_id", userID)
	}

	result := CreateResult{SyncPending: code.Degraded}
	err = s.repo.Transaction(ctx, func(tx Repository) error {
		inFamily, err := tx.IsUserInFamily(ctx, userID)
		if err != nil {
			return err
		}
		if inFamily {
			return ErrAlreadyInFamily
		}

		created := Family{
			ID:        uuid.NewString(),
			Name:      name,
			Code:      code.Code,
			CreatedBy: userID,
		}
		if err := tx.CreateFamily(ctx, &created); err != nil {
			return err
		}

		member := Member{
			FamilyID: created.ID,
			UserID:   userID,
			Role:     RoleParentAdmin,
		}
		if err := tx.AddMember(ctx, &member); err != nil {
			return err
		}

		result.Family = created
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.cache.DeleteByUserID(userID)
	return &result, nil
}

// JoinFamily adds the user to the family identified by code. The code is
// normalized and format-checked before any lookup; the role hint may be
// RoleParent (default) or RoleChild.
func (s *Service) JoinFamily(ctx context.Context, userID, code, role string) (*Family, error) {
	code = familycode.Normalize(code)
	if !familycode.ValidateFormat(code) {
		return nil, ErrInvalidCode
	}

	if role == "" {
		role = RoleParent
	}
	if role != RoleParent && role != RoleChild {
		return nil, ErrInvalidRole
	}

	var result Family
	err := s.repo.Transaction(ctx, func(tx Repository) error {
		inFamily, err := tx.IsUserInFamily(ctx, userID)
		if err != nil {
			return err
		}
		if inFamily {
			return ErrAlreadyInFamily
		}

		found, err := tx.GetFamilyByCode(ctx, code)
		if err != nil {
			return err
		}

		member := Member{
			FamilyID: found.ID,
			UserID:   userID,
			Role:     role,
		}
		if err := tx.AddMember(ctx, &member); err != nil {
			return err
		}

		result = *found
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.cache.DeleteByUserID(userID)
	return &result, nil
}

// LeaveFamily removes the user from their family. A sole remaining
// member deletes the family. A parent admin with other members hands the
// role to the longest-tenured parent; if only children remain the leave
// is refused with ErrAdminMustTransfer.
func (s *Service) LeaveFamily(ctx context.Context, userID string) error {
	err := s.repo.Transaction(ctx, func(tx Repository) error {
		member, err := tx.GetMemberByUser(ctx, userID)
		if err != nil {
			return err
		}

		count, err := tx.CountMembers(ctx, member.FamilyID)
		if err != nil {
			return err
		}
		if count <= 1 {
			if err := tx.DeleteMembersByFamily(ctx, member.FamilyID); err != nil {
				return err
			}
			return tx.DeleteFamily(ctx, member.FamilyID)
		}

		if member.Role == RoleParentAdmin {
			successor, err := s.findSuccessor(ctx, tx, member.FamilyID, userID)
			if err != nil {
				return err
			}
			if err := tx.UpdateMemberRole(ctx, member.FamilyID, successor, RoleParentAdmin); err != nil {
				return err
			}
		}

		return tx.DeleteMember(ctx, member.FamilyID, userID)
	})
	if err != nil {
		return err
	}

	s.cache.Clear()
	return nil
}

// findSuccessor returns the longest-tenured parent other than leavingID.
func (s *Service) findSuccessor(ctx context.Context, tx Repository, familyID, leavingID string) (string, error) {
	members, err := tx.ListMembers(ctx, familyID)
	if err != nil {
		return "", err
	}

	successor := ""
	var joined time.Time
	for _, m := range members {
		if m.UserID == leavingID || m.Role != RoleParent {
			continue
		}
		if successor == "" || m.JoinedAt.Before(joined) {
			successor = m.UserID
			joined = m.JoinedAt
		}
	}
	if successor == "" {
		return "", ErrAdminMustTransfer
	}
	return successor, nil
}

func (s *Service) UpdateFamily(ctx context.Context, userID, name string) (*Family, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("name is required")
	}

	found, err := s.repo.GetFamilyByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdateFamilyName(ctx, found.ID, name); err != nil {
		return nil, err
	}

	s.cache.Clear()
	found.Name = name
	return found, nil
}

func (s *Service) ListMembers(ctx context.Context, userID string) ([]MemberProfile, error) {
	found, err := s.repo.GetFamilyByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	return s.repo.ListMembersWithProfiles(ctx, found.ID)
}

// RemoveMember removes a non-admin member. Only the parent admin may
// remove, and the admin cannot be removed (hand off first).
func (s *Service) RemoveMember(ctx context.Context, actorID, memberID string) error {
	err := s.repo.Transaction(ctx, func(tx Repository) error {
		actor, err := tx.GetMemberByUser(ctx, actorID)
		if err != nil {
			return err
		}
		if actor.Role != RoleParentAdmin {
			return ErrNotAdmin
		}

		target, err := tx.GetMember(ctx, actor.FamilyID, memberID)
		if err != nil {
			return err
		}
		if target.Role == RoleParentAdmin {
			return ErrCannotRemoveAdmin
		}

		return tx.DeleteMember(ctx, actor.FamilyID, memberID)
	})
	if err != nil {
		return err
	}

	s.cache.DeleteByUserID(memberID)
	return nil
}

// SetMemberRole changes a member's role. Only the parent admin may call
// it. Assigning RoleParentAdmin transfers the role: the current admin is
// demoted to parent in the same transaction, preserving the single-admin
// invariant. The admin cannot demote themself except via that transfer.
func (s *Service) SetMemberRole(ctx context.Context, actorID, memberID, role string) error {
	if !ValidRole(role) {
		return ErrInvalidRole
	}

	return s.repo.Transaction(ctx, func(tx Repository) error {
		actor, err := tx.GetMemberByUser(ctx, actorID)
		if err != nil {
			return err
		}
		if actor.Role != RoleParentAdmin {
			return ErrNotAdmin
		}

		target, err := tx.GetMember(ctx, actor.FamilyID, memberID)
		if err != nil {
			return err
		}

		if role == RoleParentAdmin {
			if target.UserID == actorID {
				return nil
			}
			if err := tx.UpdateMemberRole(ctx, actor.FamilyID, target.UserID, RoleParentAdmin); err != nil {
				return err
			}
			return tx.UpdateMemberRole(ctx, actor.FamilyID, actorID, RoleParent)
		}

		if target.UserID == actorID {
			return ErrAdminMustTransfer
		}
		return tx.UpdateMemberRole(ctx, actor.FamilyID, target.UserID, role)
	})
}
