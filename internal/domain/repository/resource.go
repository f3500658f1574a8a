package repository

import (
	"context"
	"io"
	"net/url"
	"time"

	"github.com/oksasatya/course-admin/internal/domain/entity"
)

// Upload is a binary part sent alongside a record (an image or a video file).
type Upload struct {
	Field       string
	FileName    string
	ContentType string
	Content     io.Reader
}

// Resource defines the CRUD operations the remote API offers for one entity.
type Resource[T entity.Record] interface {
	List(ctx context.Context, query url.Values) ([]T, error)
	Get(ctx context.Context, id string) (T, error)
	Create(ctx context.Context, rec T, files ...Upload) (T, error)
	Update(ctx context.Context, id string, patch any, files ...Upload) (T, error)
	Delete(ctx context.Context, id string) error
}

// AuthGateway signs staff in against the remote API.
type AuthGateway interface {
	SignIn(ctx context.Context, email, password string) (token string, user entity.User, err error)
}

// RevenueSource reports payment amounts between two instants.
type RevenueSource interface {
	Revenue(ctx context.Context, from, to time.Time) ([]entity.RevenuePoint, error)
}

// TokenStore persists the bearer token between restarts.
type TokenStore interface {
	Load() (string, error)
	Save(token string) error
	Clear() error
}
