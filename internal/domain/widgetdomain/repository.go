package widgetdomain

import (
	"context"

	vo "github.com/embedgate/embedgate/internal/domain/widgetdomain/value_objects"
)

// Repository is the persistence contract for domain authorization records.
type Repository interface {
	Create(ctx context.Context, r *Record) error
	GetByName(ctx context.Context, name vo.DomainName) (*Record, error)
	GetByID(ctx context.Context, id uint) (*Record, error)
	ListByUser(ctx context.Context, userID uint) ([]*Record, error)
	Update(ctx context.Context, r *Record) error
	Delete(ctx context.Context, id uint) error
}
