package tasks

import (
	"context"
	"errors"

	"gorm.io/gorm"

	tasksdomain "tribeboard/internal/domain/tasks"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) ListTaskLists(ctx context.Context, familyID string) ([]tasksdomain.TaskList, error) {
	var lists []tasksdomain.TaskList
	if err := r.db.WithContext(ctx).
		Where("family_id = ?", familyID).
		Order("created_at asc").
		Find(&lists).Error; err != nil {
		return nil, err
	}
	return lists, nil
}

func (r *PostgresRepository) CountTasksByListIDs(ctx context.Context, listIDs []string) (map[string]tasksdomain.ListCounts, error) {
	counts := make(map[string]tasksdomain.ListCounts, len(listIDs))
	if len(listIDs) == 0 {
		return counts, nil
	}

	type countRow struct {
		ListID string `gorm:"column:list_id"`
		Total  int64  `gorm:"column:total"`
		Done   int64  `gorm:"column:done"`
	}

	var rows []countRow
	if err := r.db.WithContext(ctx).
		Table("tasks").
		Select("list_id, count(*) as total, count(*) filter (where done) as done").
		Where("list_id IN ? AND deleted_at IS NULL", listIDs).
		Group("list_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	for _, row := range rows {
		counts[row.ListID] = tasksdomain.ListCounts{Total: row.Total, Done: row.Done}
	}
	return counts, nil
}

func (r *PostgresRepository) GetTaskList(ctx context.Context, familyID, listID string) (*tasksdomain.TaskList, error) {
	var list tasksdomain.TaskList
	if err := r.db.WithContext(ctx).Where("id = ? AND family_id = ?", listID, familyID).First(&list).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, tasksdomain.ErrListNotFound
		}
		return nil, err
	}
	return &list, nil
}

func (r *PostgresRepository) CreateTaskList(ctx context.Context, list *tasksdomain.TaskList) error {
	return r.db.WithContext(ctx).Create(list).Error
}

func (r *PostgresRepository) UpdateTaskListTitle(ctx context.Context, listID, title string) error {
	return r.db.WithContext(ctx).Model(&tasksdomain.TaskList{}).Where("id = ?", listID).Update("title", title).Error
}

func (r *PostgresRepository) DeleteTaskList(ctx context.Context, listID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("list_id = ?", listID).Delete(&tasksdomain.Task{}).Error; err != nil {
			return err
		}
		return tx.Delete(&tasksdomain.TaskList{}, "id = ?", listID).Error
	})
}

func (r *PostgresRepository) ListTasks(ctx context.Context, listID string) ([]tasksdomain.Task, error) {
	var tasks []tasksdomain.Task
	if err := r.db.WithContext(ctx).
		Where("list_id = ?", listID).
		Order("created_at asc").
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *PostgresRepository) GetTask(ctx context.Context, familyID, taskID string) (*tasksdomain.Task, error) {
	var task tasksdomain.Task
	err := r.db.WithContext(ctx).
		Joins("join task_lists on task_lists.id = tasks.list_id").
		Where("tasks.id = ? AND task_lists.family_id = ?", taskID, familyID).
		First(&task).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, tasksdomain.ErrTaskNotFound
	}
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *PostgresRepository) CreateTask(ctx context.Context, task *tasksdomain.Task) error {
	return r.db.WithContext(ctx).Create(task).Error
}

func (r *PostgresRepository) UpdateTask(ctx context.Context, task *tasksdomain.Task) error {
	return r.db.WithContext(ctx).
		Model(&tasksdomain.Task{}).
		Where("id = ?", task.ID).
		Updates(map[string]interface{}{
			"title":       task.Title,
			"assignee_id": task.AssigneeID,
			"done":        task.Done,
			"done_at":     task.DoneAt,
			"done_by_id":  task.DoneByID,
		}).Error
}

func (r *PostgresRepository) DeleteTask(ctx context.Context, taskID string) error {
	return r.db.WithContext(ctx).Delete(&tasksdomain.Task{}, "id = ?", taskID).Error
}
