package tasks

import "context"

type Repository interface {
	ListTaskLists(ctx context.Context, familyID string) ([]TaskList, error)
	CountTasksByListIDs(ctx context.Context, listIDs []string) (map[string]ListCounts, error)
	GetTaskList(ctx context.Context, familyID, listID string) (*TaskList, error)
	CreateTaskList(ctx context.Context, list *TaskList) error
	UpdateTaskListTitle(ctx context.Context, listID, title string) error
	DeleteTaskList(ctx context.Context, listID string) error

	ListTasks(ctx context.Context, listID string) ([]Task, error)
	GetTask(ctx context.Context, familyID, taskID string) (*Task, error)
	CreateTask(ctx context.Context, task *Task) error
	UpdateTask(ctx context.Context, task *Task) error
	DeleteTask(ctx context.Context, taskID string) error
}
