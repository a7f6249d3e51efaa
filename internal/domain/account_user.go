package domain

import (
	"context"
	"time"
)

// AccountUser is the owner of accounts. Users are provisioned outside this
// service and are only read here.
type AccountUser struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type AccountUserRepository interface {
	GetByID(ctx context.Context, id int64) (*AccountUser, error)
}
