package postgres

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"taskmanager-api/domain/models"
	"taskmanager-api/domain/repositories"
)

type TaskRepositoryImpl struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) repositories.TaskRepository {
	return &TaskRepositoryImpl{db: db}
}

func (r *TaskRepositoryImpl) Create(ctx context.Context, task *models.Task) error {
	return r.db.WithContext(ctx).Create(task).Error
}

func (r *TaskRepositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	var task models.Task
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&task).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &task, nil
}

func (r *TaskRepositoryImpl) Update(ctx context.Context, task *models.Task, fields []repositories.TaskField) error {
	if len(fields) == 0 {
		return nil
	}

	now := time.Now()
	values := map[string]interface{}{"updated_at": now}
	for _, f := range fields {
		switch f {
		case repositories.TaskFieldTitle:
			values["title"] = task.Title
		case repositories.TaskFieldDescription:
			values["description"] = task.Description
		case repositories.TaskFieldStatus:
			values["status"] = task.Status
		}
	}

	res := r.db.WithContext(ctx).Model(&models.Task{}).Where("id = ?", task.ID).Updates(values)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repositories.ErrRecordNotFound
	}
	task.UpdatedAt = now
	return nil
}

func (r *TaskRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Task{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repositories.ErrRecordNotFound
	}
	return nil
}

// MarkCompleted is a single conditional UPDATE, so of two racing callers
// exactly one sees a changed row.
func (r *TaskRepositoryImpl) MarkCompleted(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Task{}).
		Where("id = ? AND status <> ?", id, models.TaskStatusCompleted).
		Updates(map[string]interface{}{
			"status":     models.TaskStatusCompleted,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *TaskRepositoryImpl) Page(ctx context.Context, filter repositories.TaskFilter, offset, limit int) ([]*models.Task, int64, error) {
	var (
		tasks []*models.Task
		total int64
	)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Task{}).Scopes(applyTaskFilter(filter)).Count(&total).Error; err != nil {
			return err
		}
		if total == 0 || int64(offset) >= total {
			return nil
		}
		return tx.Scopes(applyTaskFilter(filter)).
			Order("created_at DESC").
			Order("id DESC").
			Offset(offset).
			Limit(limit).
			Find(&tasks).Error
	})
	if err != nil {
		return nil, 0, err
	}
	return tasks, total, nil
}

func applyTaskFilter(filter repositories.TaskFilter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if filter.OwnerID != nil {
			db = db.Where("user_id = ?", *filter.OwnerID)
		}
		if filter.StatusContains != "" {
			pattern := "%" + escapeLike(strings.ToLower(filter.StatusContains)) + "%"
			db = db.Where(`LOWER(status) LIKE ? ESCAPE '\'`, pattern)
		}
		return db
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
