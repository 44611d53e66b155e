package ports

import (
	"context"
	"time"

	"github.com/wadjakorntonsri/deeplinker/pkg/core/domain"
)

// LinkRepository defines storage operations for links and their click history.
// Lookups return nil, nil when nothing matches.
type LinkRepository interface {
	Create(ctx context.Context, link *domain.Link) error
	GetBySlug(ctx context.Context, slug string) (*domain.Link, error)
	// GetWithClicks loads the link together with its full click history
	GetWithClicks(ctx context.Context, slug string) (*domain.Link, error)
	List(ctx context.Context) ([]domain.Link, error)
	DeleteBySlug(ctx context.Context, slug string) error

	// RecordClick increments the counter and appends the event in one transaction.
	// A slug that no longer exists is a no-op.
	RecordClick(ctx context.Context, slug string, event domain.ClickEvent) error
	// ClickTimestamps returns every link with its tag and click instants only
	ClickTimestamps(ctx context.Context) ([]domain.Link, error)

	// Migration
	Dump(ctx context.Context) ([]domain.Link, error)
	Import(ctx context.Context, link *domain.Link) error

	Ping(ctx context.Context) error
	Close() error
} // LinkRepository ends here

// UserRepository defines storage operations for dashboard accounts
type UserRepository interface {
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	CreateUser(ctx context.Context, user *domain.User) error
	UpdateLastLogin(ctx context.Context, id int64, at time.Time) error
}

// LinkCache is a read-through cache of slug to link data
type LinkCache interface {
	Get(ctx context.Context, slug string) (*domain.Link, bool)
	Set(ctx context.Context, link *domain.Link) error
	Delete(ctx context.Context, slug string) error
	Close() error
}

// GeoLocator resolves an IP address to its network origin
type GeoLocator interface {
	Lookup(ctx context.Context, ip string) (domain.Location, error)
}

// LinkService defines the business logic operations on links
type LinkService interface {
	Shorten(ctx context.Context, rawURL, slug, tag string) (*domain.Link, error)
	Resolve(ctx context.Context, slug string) (*domain.Link, error)
	GetLink(ctx context.Context, slug string) (*domain.Link, error)
	ListLinks(ctx context.Context) ([]domain.Link, error)
	DeleteLink(ctx context.Context, slug string) error
}

// AnalyticsService builds dashboard views from recorded clicks
type AnalyticsService interface {
	LinkStats(ctx context.Context, slug, rangeToken string) (*domain.LinkStats, error)
	TagActivity(ctx context.Context, rangeToken string) ([]domain.TagCount, error)
}

// AuthService verifies dashboard credentials
type AuthService interface {
	Login(ctx context.Context, email, password string) (*domain.User, error)
}
