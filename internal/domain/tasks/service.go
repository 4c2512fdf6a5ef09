package tasks

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) ListTaskLists(ctx context.Context, familyID string) ([]ListWithCounts, error) {
	lists, err := s.repo.ListTaskLists(ctx, familyID)
	if err != nil {
		return nil, err
	}
	if len(lists) == 0 {
		return []ListWithCounts{}, nil
	}

	listIDs := make([]string, 0, len(lists))
	for _, list := range lists {
		listIDs = append(listIDs, list.ID)
	}

	counts, err := s.repo.CountTasksByListIDs(ctx, listIDs)
	if err != nil {
		return nil, err
	}

	result := make([]ListWithCounts, 0, len(lists))
	for _, list := range lists {
		result = append(result, ListWithCounts{List: list, Counts: counts[list.ID]})
	}
	return result, nil
}

func (s *Service) CreateTaskList(ctx context.Context, familyID, title string) (*TaskList, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("title is required")
	}

	list := TaskList{
		ID:       uuid.NewString(),
		FamilyID: familyID,
		Title:    title,
	}
	if err := s.repo.CreateTaskList(ctx, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

func (s *Service) UpdateTaskList(ctx context.Context, familyID, listID, title string) (*TaskList, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("title is required")
	}

	list, err := s.repo.GetTaskList(ctx, familyID, listID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdateTaskListTitle(ctx, list.ID, title); err != nil {
		return nil, err
	}

	list.Title = title
	return list, nil
}

func (s *Service) DeleteTaskList(ctx context.Context, familyID, listID string) error {
	list, err := s.repo.GetTaskList(ctx, familyID, listID)
	if err != nil {
		return err
	}
	return s.repo.DeleteTaskList(ctx, list.ID)
}

func (s *Service) ListTasks(ctx context.Context, familyID, listID string) ([]Task, error) {
	list, err := s.repo.GetTaskList(ctx, familyID, listID)
	if err != nil {
		return nil, err
	}
	return s.repo.ListTasks(ctx, list.ID)
}

func (s *Service) CreateTask(ctx context.Context, familyID string, input CreateTaskInput) (*Task, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, fmt.Errorf("title is required")
	}

	list, err := s.repo.GetTaskList(ctx, familyID, input.ListID)
	if err != nil {
		return nil, err
	}

	task := Task{
		ID:         uuid.NewString(),
		ListID:     list.ID,
		Title:      title,
		AssigneeID: input.AssigneeID,
	}
	if err := s.repo.CreateTask(ctx, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (s *Service) UpdateTask(ctx context.Context, input UpdateTaskInput) (*Task, error) {
	if input.Title == nil && input.AssigneeID == nil && input.Done == nil {
		return nil, fmt.Errorf("no fields to update")
	}

	task, err := s.repo.GetTask(ctx, input.FamilyID, input.ID)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, fmt.Errorf("title is required")
		}
		task.Title = title
	}
	if input.AssigneeID != nil {
		if *input.AssigneeID == "" {
			task.AssigneeID = nil
		} else {
			task.AssigneeID = input.AssigneeID
		}
	}
	if input.Done != nil && *input.Done != task.Done {
		task.Done = *input.Done
		if task.Done {
			now := time.Now().UTC()
			task.DoneAt = &now
			if input.DoneBy != "" {
				doneBy := input.DoneBy
				task.DoneByID = &doneBy
			}
		} else {
			task.DoneAt = nil
			task.DoneByID = nil
		}
	}

	if err := s.repo.UpdateTask(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *Service) DeleteTask(ctx context.Context, familyID, taskID string) error {
	task, err := s.repo.GetTask(ctx, familyID, taskID)
	if err != nil {
		return err
	}
	return s.repo.DeleteTask(ctx, task.ID)
}
