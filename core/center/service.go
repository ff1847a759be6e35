package center

import (
	"context"
	"time"

	"github.com/kat-co/vala"
	"github.com/pkg/errors"

	"github.com/trezcool/agenda/core"
)

var ErrNotFound = errors.New("center not found")

type (
	Repository interface {
		CreateCenter(ctx context.Context, c Center, exec ...core.DBExecutor) (Center, error)
		QueryCenters(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]Center, error)
		GetCenter(ctx context.Context, id string, exec ...core.DBExecutor) (Center, error)
		CountCenters(ctx context.Context, exec ...core.DBExecutor) (int, error)
		UpdateCenter(ctx context.Context, c Center, exec ...core.DBExecutor) (Center, error)
		// DeleteCenters also deletes the centers' classrooms and students; their news become general.
		DeleteCenters(ctx context.Context, ids []string, exec ...core.DBExecutor) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	vala.BeginValidation().Validate(
		vala.IsNotNil(repo, "repo"),
	).CheckAndPanic()

	return &Service{repo: repo}
}

func (svc *Service) Create(ctx context.Context, nc NewCenter) (Center, error) {
	now := time.Now().UTC()
	return svc.repo.CreateCenter(ctx, Center{
		Name:        nc.Name,
		Phone:       nc.Phone,
		Location:    nc.Location,
		Description: nc.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
}

func (svc *Service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Center, error) {
	if filter != nil {
		filter.Search = core.CleanString(filter.Search)
	}
	if len(ordering) == 0 {
		ordering = []core.DBOrdering{{Field: "name", Ascending: true}}
	}
	return svc.repo.QueryCenters(ctx, filter, ordering)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Center, error) {
	return svc.repo.GetCenter(ctx, id)
}

func (svc *Service) Count(ctx context.Context) (int, error) {
	return svc.repo.CountCenters(ctx)
}

func (svc *Service) Update(ctx context.Context, c Center, uc UpdateCenter) (Center, error) {
	c.Name = uc.Name
	c.Phone = uc.Phone
	c.Location = uc.Location
	c.Description = uc.Description
	c.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateCenter(ctx, c)
}

func (svc *Service) Delete(ctx context.Context, ids ...string) error {
	return svc.repo.DeleteCenters(ctx, ids)
}
