package service

import (
	"context"

	"github.com/tasktrack/tasktrack-go/internal/model"
)

// UserStore is the user persistence the services need.
// *repository.UserRepository satisfies it.
type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
}

// TaskStore is the task persistence the services need.
// *repository.TaskRepository satisfies it.
type TaskStore interface {
	Create(ctx context.Context, task *model.Task) error
	GetByID(ctx context.Context, id string) (*model.Task, error)
	ListByUser(ctx context.Context, userID string) ([]model.Task, error)
	Update(ctx context.Context, task *model.Task) error
	Delete(ctx context.Context, id string) error
}

// TokenIssuer creates credentials for a signed-in user.
type TokenIssuer interface {
	Issue(userID, email string) (string, error)
}
