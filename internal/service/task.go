package service

import (
	"context"
	"errors"

	"github.com/tasktrack/tasktrack-go/internal/model"
	"github.com/tasktrack/tasktrack-go/internal/repository"
)

// ErrTaskNotFound is returned both for missing tasks and for tasks owned by
// another user, so callers cannot probe for foreign task ids.
var ErrTaskNotFound = errors.New("task not found")

// TaskService handles task business logic for an authenticated user.
type TaskService struct {
	tasks TaskStore
}

// NewTaskService creates a new TaskService.
func NewTaskService(tasks TaskStore) *TaskService {
	return &TaskService{tasks: tasks}
}

// List returns every task owned by the user.
func (s *TaskService) List(ctx context.Context, owner model.Identity) ([]model.Task, error) {
	tasks, err := s.tasks.ListByUser(ctx, owner.UserID)
	if err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []model.Task{}
	}
	return tasks, nil
}

// Create adds a pending task for the user.
func (s *TaskService) Create(ctx context.Context, owner model.Identity, req model.CreateTaskRequest) (model.Task, error) {
	if err := validateTitle(req.Title); err != nil {
		return model.Task{}, err
	}
	if err := validateDescription(req.Description); err != nil {
		return model.Task{}, err
	}

	task := model.Task{
		UserID:      owner.UserID,
		Title:       req.Title,
		Description: req.Description,
		Status:      model.TaskPending,
	}

	if err := s.tasks.Create(ctx, &task); err != nil {
		return model.Task{}, err
	}

	return task, nil
}

// Get returns a task if the user owns it.
func (s *TaskService) Get(ctx context.Context, owner model.Identity, id string) (model.Task, error) {
	task, err := s.owned(ctx, owner, id)
	if err != nil {
		return model.Task{}, err
	}
	return *task, nil
}

// Update applies a partial update to a task the user owns.
func (s *TaskService) Update(ctx context.Context, owner model.Identity, id string, req model.UpdateTaskRequest) (model.Task, error) {
	task, err := s.owned(ctx, owner, id)
	if err != nil {
		return model.Task{}, err
	}

	if err := validateUpdate(req); err != nil {
		return model.Task{}, err
	}

	if req.Title != nil {
		task.Title = *req.Title
	}
	if req.Description != nil {
		task.Description = *req.Description
	}
	if req.Status != nil {
		task.Status = *req.Status
	}

	if err := s.tasks.Update(ctx, task); err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			return model.Task{}, ErrTaskNotFound
		}
		return model.Task{}, err
	}

	return *task, nil
}

// Delete removes a task the user owns.
func (s *TaskService) Delete(ctx context.Context, owner model.Identity, id string) error {
	if _, err := s.owned(ctx, owner, id); err != nil {
		return err
	}

	err := s.tasks.Delete(ctx, id)
	if errors.Is(err, repository.ErrTaskNotFound) {
		return ErrTaskNotFound
	}
	return err
}

// owned loads a task and checks it belongs to owner.
func (s *TaskService) owned(ctx context.Context, owner model.Identity, id string) (*model.Task, error) {
	task, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}

	if owner.UserID == "" || task.UserID != owner.UserID {
		return nil, ErrTaskNotFound
	}

	return task, nil
}
