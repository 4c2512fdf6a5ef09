package tasks

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeTasksRepo struct {
	lists map[string]*TaskList
	tasks map[string]*Task
}

func newFakeTasksRepo() *fakeTasksRepo {
	return &fakeTasksRepo{
		lists: make(map[string]*TaskList),
		tasks: make(map[string]*Task),
	}
}

func (r *fakeTasksRepo) ListTaskLists(ctx context.Context, familyID string) ([]TaskList, error) {
	result := make([]TaskList, 0)
	for _, list := range r.lists {
		if list.FamilyID == familyID {
			result = append(result, *list)
		}
	}
	return result, nil
}

func (r *fakeTasksRepo) CountTasksByListIDs(ctx context.Context, listIDs []string) (map[string]ListCounts, error) {
	counts := make(map[string]ListCounts)
	for _, task := range r.tasks {
		entry := counts[task.ListID]
		entry.Total++
		if task.Done {
			entry.Done++
		}
		counts[task.ListID] = entry
	}
	return counts, nil
}

func (r *fakeTasksRepo) GetTaskList(ctx context.Context, familyID, listID string) (*TaskList, error) {
	list, ok := r.lists[listID]
	if !ok || list.FamilyID != familyID {
		return nil, ErrListNotFound
	}
	copied := *list
	return &copied, nil
}

func (r *fakeTasksRepo) CreateTaskList(ctx context.Context, list *TaskList) error {
	copied := *list
	r.lists[list.ID] = &copied
	return nil
}

func (r *fakeTasksRepo) UpdateTaskListTitle(ctx context.Context, listID, title string) error {
	list, ok := r.lists[listID]
	if !ok {
		return ErrListNotFound
	}
	list.Title = title
	return nil
}

func (r *fakeTasksRepo) DeleteTaskList(ctx context.Context, listID string) error {
	delete(r.lists, listID)
	for id, task := range r.tasks {
		if task.ListID == listID {
			delete(r.tasks, id)
		}
	}
	return nil
}

func (r *fakeTasksRepo) ListTasks(ctx context.Context, listID string) ([]Task, error) {
	result := make([]Task, 0)
	for _, task := range r.tasks {
		if task.ListID == listID {
			result = append(result, *task)
		}
	}
	return result, nil
}

func (r *fakeTasksRepo) GetTask(ctx context.Context, familyID, taskID string) (*Task, error) {
	task, ok := r.tasks[taskID]
	if !ok {
		return nil, ErrTaskNotFound
	}
	list, ok := r.lists[task.ListID]
	if !ok || list.FamilyID != familyID {
		return nil, ErrTaskNotFound
	}
	copied := *task
	return &copied, nil
}

func (r *fakeTasksRepo) CreateTask(ctx context.Context, task *Task) error {
	copied := *task
	r.tasks[task.ID] = &copied
	return nil
}

func (r *fakeTasksRepo) UpdateTask(ctx context.Context, task *Task) error {
	if _, ok := r.tasks[task.ID]; !ok {
		return ErrTaskNotFound
	}
	copied := *task
	r.tasks[task.ID] = &copied
	return nil
}

func (r *fakeTasksRepo) DeleteTask(ctx context.Context, taskID string) error {
	delete(r.tasks, taskID)
	return nil
}

func TestCreateTaskListAndTask(t *testing.T) {
	repo := newFakeTasksRepo()
	svc := NewService(repo)

	list, err := svc.CreateTaskList(context.Background(), "fam-1", "  Groceries ")
	require.NoError(t, err)
	require.Equal(t, "Groceries", list.Title)

	task, err := svc.CreateTask(context.Background(), "fam-1", CreateTaskInput{ListID: list.ID, Title: "Milk"})
	require.NoError(t, err)
	require.Equal(t, "Milk", task.Title)
	require.False(t, task.Done)
}

func TestCreateTaskListScopedByFamily(t *testing.T) {
	repo := newFakeTasksRepo()
	svc := NewService(repo)

	list, err := svc.CreateTaskList(context.Background(), "fam-1", "Chores")
	require.NoError(t, err)

	_, err = svc.CreateTask(context.Background(), "fam-2", CreateTaskInput{ListID: list.ID, Title: "Sweep"})
	require.ErrorIs(t, err, ErrListNotFound)
}

func TestUpdateTaskCompletionAttribution(t *testing.T) {
	repo := newFakeTasksRepo()
	svc := NewService(repo)

	list, err := svc.CreateTaskList(context.Background(), "fam-1", "Chores")
	require.NoError(t, err)
	task, err := svc.CreateTask(context.Background(), "fam-1", CreateTaskInput{ListID: list.ID, Title: "Dishes"})
	require.NoError(t, err)

	done := true
	updated, err := svc.UpdateTask(context.Background(), UpdateTaskInput{
		ID:       task.ID,
		FamilyID: "fam-1",
		Done:     &done,
		DoneBy:   "user-1",
	})
	require.NoError(t, err)
	require.True(t, updated.Done)
	require.NotNil(t, updated.DoneAt)
	require.NotNil(t, updated.DoneByID)
	require.Equal(t, "user-1", *updated.DoneByID)

	undone := false
	updated, err = svc.UpdateTask(context.Background(), UpdateTaskInput{
		ID:       task.ID,
		FamilyID: "fam-1",
		Done:     &undone,
	})
	require.NoError(t, err)
	require.False(t, updated.Done)
	require.Nil(t, updated.DoneAt)
	require.Nil(t, updated.DoneByID)
}

func TestUpdateTaskNoFields(t *testing.T) {
	svc := NewService(newFakeTasksRepo())
	_, err := svc.UpdateTask(context.Background(), UpdateTaskInput{ID: "t-1", FamilyID: "fam-1"})
	require.Error(t, err)
}

func TestListTaskListsWithCounts(t *testing.T) {
	repo := newFakeTasksRepo()
	svc := NewService(repo)

	list, err := svc.CreateTaskList(context.Background(), "fam-1", "Chores")
	require.NoError(t, err)
	for _, title := range []string{"Dishes", "Sweep", "Laundry"} {
		_, err := svc.CreateTask(context.Background(), "fam-1", CreateTaskInput{ListID: list.ID, Title: title})
		require.NoError(t, err)
	}

	lists, err := svc.ListTaskLists(context.Background(), "fam-1")
	require.NoError(t, err)
	require.Len(t, lists, 1)
	require.Equal(t, int64(3), lists[0].Counts.Total)
	require.Equal(t, int64(0), lists[0].Counts.Done)
}
