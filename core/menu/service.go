package menu

import (
	"context"
	"time"

	"github.com/kat-co/vala"
	"github.com/pkg/errors"

	"github.com/trezcool/agenda/core"
)

var (
	ErrNotFound   = errors.New("menu not found")
	ErrDateExists = errors.New("a menu already exists for this date")
)

type (
	Repository interface {
		// CreateMenu fails with ErrDateExists when the day already has a menu.
		CreateMenu(ctx context.Context, m Menu, exec ...core.DBExecutor) (Menu, error)
		QueryMenus(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]Menu, error)
		GetMenu(ctx context.Context, id string, exec ...core.DBExecutor) (Menu, error)
		GetMenuByDate(ctx context.Context, day time.Time, exec ...core.DBExecutor) (Menu, error)
		UpdateMenu(ctx context.Context, m Menu, exec ...core.DBExecutor) (Menu, error)
		DeleteMenus(ctx context.Context, ids []string, exec ...core.DBExecutor) error
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

func dateTaken(err error) error {
	if errors.Cause(err) == ErrDateExists {
		return core.NewFieldValidationError("date", ErrDateExists)
	}
	return err
}

func (svc *Service) Create(ctx context.Context, nm NewMenu) (Menu, error) {
	now := time.Now().UTC()
	m, err := svc.repo.CreateMenu(ctx, Menu{
		Date:         core.Day(nm.Date),
		Breakfast:    nm.Breakfast,
		Snack:        nm.Snack,
		FirstCourse:  nm.FirstCourse,
		SecondCourse: nm.SecondCourse,
		Dessert:      nm.Dessert,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	return m, dateTaken(err)
}

func (svc *Service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Menu, error) {
	if filter != nil {
		if !filter.DateFrom.IsZero() {
			filter.DateFrom = core.Day(filter.DateFrom)
		}
		if !filter.DateTo.IsZero() {
			filter.DateTo = core.Day(filter.DateTo)
		}
	}
	if len(ordering) == 0 {
		ordering = []core.DBOrdering{{Field: "date", Ascending: true}}
	}
	return svc.repo.QueryMenus(ctx, filter, ordering)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Menu, error) {
	return svc.repo.GetMenu(ctx, id)
}

// GetByDate returns the menu of t's calendar day.
func (svc *Service) GetByDate(ctx context.Context, t time.Time) (Menu, error) {
	return svc.repo.GetMenuByDate(ctx, core.Day(t))
}

func (svc *Service) Update(ctx context.Context, m Menu, um UpdateMenu) (Menu, error) {
	if !um.Date.IsZero() {
		m.Date = core.Day(um.Date)
	}
	m.Breakfast = um.Breakfast
	m.Snack = um.Snack
	m.FirstCourse = um.FirstCourse
	m.SecondCourse = um.SecondCourse
	m.Dessert = um.Dessert
	m.UpdatedAt = time.Now().UTC()
	m, err := svc.repo.UpdateMenu(ctx, m)
	return m, dateTaken(err)
}

func (svc *Service) Delete(ctx context.Context, ids ...string) error {
	return svc.repo.DeleteMenus(ctx, ids)
}
