package news

import (
	"context"
	"time"

	"github.com/kat-co/vala"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/agenda/core"
	"github.com/trezcool/agenda/core/center"
	"github.com/trezcool/agenda/core/user"
)

var (
	ErrNotFound      = errors.New("news not found")
	ErrUnknownCenter = errors.New("center does not exist")
)

type (
	Repository interface {
		CreateNews(ctx context.Context, n News, exec ...core.DBExecutor) (News, error)
		QueryNews(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]News, error)
		GetNews(ctx context.Context, id string, exec ...core.DBExecutor) (News, error)
		UpdateNews(ctx context.Context, n News, exec ...core.DBExecutor) (News, error)
		DeleteNews(ctx context.Context, ids []string, exec ...core.DBExecutor) error
	}

	Service struct {
		repo       Repository
		centerRepo center.Repository
	}
)

func NewService(repo Repository, centerRepo center.Repository) *Service {
	vala.BeginValidation().Validate(
		vala.IsNotNil(repo, "repo"),
		vala.IsNotNil(centerRepo, "centerRepo"),
	).CheckAndPanic()

	return &Service{repo: repo, centerRepo: centerRepo}
}

func (svc *Service) checkCenter(ctx context.Context, centerID null.String) error {
	if !centerID.Valid {
		return nil
	}
	if _, err := svc.centerRepo.GetCenter(ctx, centerID.String); err != nil {
		if errors.Cause(err) == center.ErrNotFound {
			return core.NewFieldValidationError("center_id", ErrUnknownCenter)
		}
		return errors.Wrap(err, "finding center")
	}
	return nil
}

func (svc *Service) Create(ctx context.Context, author user.User, nn NewNews) (News, error) {
	now := time.Now().UTC()
	published := nn.PublishDate.UTC()
	if nn.PublishDate.IsZero() {
		published = now
	}
	return svc.repo.CreateNews(ctx, News{
		Title:       nn.Title,
		Content:     nn.Content,
		PublishDate: published,
		AuthorID:    author.ID,
		CenterID:    nn.CenterID,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
}

// Query lists news, latest publications first unless ordering says otherwise.
func (svc *Service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]News, error) {
	if filter != nil {
		filter.Search = core.CleanString(filter.Search)
	}
	if len(ordering) == 0 {
		ordering = []core.DBOrdering{{Field: "publish_date", Ascending: false}}
	}
	return svc.repo.QueryNews(ctx, filter, ordering)
}

func (svc *Service) GetByID(ctx context.Context, id string) (News, error) {
	return svc.repo.GetNews(ctx, id)
}

func (svc *Service) Update(ctx context.Context, n News, un UpdateNews) (News, error) {
	n.CenterID = un.center(n)
	if un.Title != "" {
		n.Title = un.Title
	}
	if un.Content != "" {
		n.Content = un.Content
	}
	if !un.PublishDate.IsZero() {
		n.PublishDate = un.PublishDate.UTC()
	}
	n.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateNews(ctx, n)
}

func (svc *Service) Delete(ctx context.Context, ids ...string) error {
	return svc.repo.DeleteNews(ctx, ids)
}
