package service

import (
	"context"

	"github.com/spec-kit/nexus-console/internal/authz"
	"github.com/spec-kit/nexus-console/internal/domain"
	"github.com/spec-kit/nexus-console/internal/events"
	"github.com/spec-kit/nexus-console/internal/repository"
	apperrors "github.com/spec-kit/nexus-console/pkg/util"
)

// TaskService serves the kanban board.
type TaskService struct {
	tasks      repository.TaskRepository
	dispatcher events.Dispatcher
}

// TaskDependencies bundles repositories.
type TaskDependencies struct {
	TaskRepo   repository.TaskRepository
	Dispatcher events.Dispatcher
}

// NewTaskService creates the service.
func NewTaskService(deps TaskDependencies) *TaskService {
	return &TaskService{tasks: deps.TaskRepo, dispatcher: deps.Dispatcher}
}

// MyTasks lists the tasks assigned to actor. Roles that hand out tasks see
// the whole board.
func (s *TaskService) MyTasks(ctx context.Context, actor domain.Identity) ([]domain.Task, error) {
	filter := repository.TaskFilter{}
	if !authz.CanPerform(authz.CreateTask, actor.Role) {
		filter.AssignedTo = &actor.Name
	}
	tasks, err := s.tasks.List(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if tasks == nil {
		tasks = []domain.Task{}
	}
	return tasks, nil
}

// UpdateStatus moves a task to another column.
func (s *TaskService) UpdateStatus(ctx context.Context, actor domain.Identity, id string, status domain.TaskStatus) (*domain.Task, error) {
	if !status.Known() {
		return nil, apperrors.NewValidationError("unknown task status", map[string]any{"status": status})
	}
	task, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewNotFound("task", map[string]any{"task_id": id})
		}
		return nil, apperrors.MapError(err)
	}
	if task.AssignedTo != actor.Name && !authz.CanPerform(authz.CreateTask, actor.Role) {
		return nil, apperrors.NewForbidden("task is assigned to someone else")
	}

	if err := s.tasks.UpdateStatus(ctx, id, status); err != nil {
		return nil, apperrors.MapError(err)
	}
	publish(ctx, s.dispatcher, events.New(events.EventTaskStatusChanged, id, actor.ID, events.TaskStatusChangedPayload{
		OldStatus: task.Status,
		NewStatus: status,
	}))
	task.Status = status
	return task, nil
}
