package classroom

import (
	"context"
	"time"

	"github.com/kat-co/vala"
	"github.com/pkg/errors"

	"github.com/trezcool/agenda/core"
	"github.com/trezcool/agenda/core/center"
	"github.com/trezcool/agenda/core/user"
)

var (
	ErrNotFound      = errors.New("classroom not found")
	ErrAgeRange      = errors.New("max_age must be greater than or equal to min_age")
	ErrNotStaff      = errors.New("teachers must be admin or teacher users")
	ErrUnknownCenter = errors.New("center does not exist")
)

type (
	Repository interface {
		CreateClassroom(ctx context.Context, c Classroom, exec ...core.DBExecutor) (Classroom, error)
		// QueryClassrooms returns classrooms with their Enrollment filled.
		QueryClassrooms(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]Classroom, error)
		GetClassroom(ctx context.Context, id string, exec ...core.DBExecutor) (Classroom, error)
		UpdateClassroom(ctx context.Context, c Classroom, exec ...core.DBExecutor) (Classroom, error)
		// DeleteClassrooms unassigns the classrooms' students.
		DeleteClassrooms(ctx context.Context, ids []string, exec ...core.DBExecutor) error
	}

	Service struct {
		repo       Repository
		centerRepo center.Repository
		userRepo   user.Repository
	}
)

func NewService(repo Repository, centerRepo center.Repository, userRepo user.Repository) *Service {
	vala.BeginValidation().Validate(
		vala.IsNotNil(repo, "repo"),
		vala.IsNotNil(centerRepo, "centerRepo"),
		vala.IsNotNil(userRepo, "userRepo"),
	).CheckAndPanic()

	return &Service{repo: repo, centerRepo: centerRepo, userRepo: userRepo}
}

func (svc *Service) checkReferences(ctx context.Context, centerID string, teacherIDs []string) error {
	if _, err := svc.centerRepo.GetCenter(ctx, centerID); err != nil {
		if errors.Cause(err) == center.ErrNotFound {
			return core.NewFieldValidationError("center_id", ErrUnknownCenter)
		}
		return errors.Wrap(err, "finding center")
	}
	if len(teacherIDs) == 0 {
		return nil
	}

	staff, err := svc.userRepo.QueryUsers(ctx, &user.QueryFilter{IDs: teacherIDs, Roles: user.StaffRoles}, nil)
	if err != nil {
		return errors.Wrap(err, "querying teachers")
	}
	found := make(map[string]bool, len(staff))
	for _, usr := range staff {
		found[usr.ID] = true
	}
	for _, id := range teacherIDs {
		if !found[id] {
			return core.NewFieldValidationError("teacher_ids", ErrNotStaff)
		}
	}
	return nil
}

func (svc *Service) Create(ctx context.Context, nc NewClassroom) (Classroom, error) {
	now := time.Now().UTC()
	return svc.repo.CreateClassroom(ctx, Classroom{
		CenterID:    nc.CenterID,
		Name:        nc.Name,
		Course:      nc.Course,
		MinAge:      nc.MinAge,
		MaxAge:      nc.MaxAge,
		MaxCapacity: nc.MaxCapacity,
		Image:       nc.Image,
		TeacherIDs:  dedupe(nc.TeacherIDs),
		CreatedAt:   now,
		UpdatedAt:   now,
	})
}

func (svc *Service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Classroom, error) {
	if filter != nil {
		filter.Search = core.CleanString(filter.Search)
	}
	if len(ordering) == 0 {
		ordering = []core.DBOrdering{{Field: "min_age", Ascending: true}, {Field: "name", Ascending: true}}
	}
	return svc.repo.QueryClassrooms(ctx, filter, ordering)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Classroom, error) {
	return svc.repo.GetClassroom(ctx, id)
}

func (svc *Service) Update(ctx context.Context, c Classroom, uc UpdateClassroom) (Classroom, error) {
	c.Name = uc.Name
	c.Course = uc.Course
	c.MinAge = *uc.MinAge
	c.MaxAge = *uc.MaxAge
	c.MaxCapacity = *uc.MaxCapacity
	c.Image = uc.Image
	c.TeacherIDs = dedupe(uc.TeacherIDs)
	c.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateClassroom(ctx, c)
}

func (svc *Service) Delete(ctx context.Context, ids ...string) error {
	return svc.repo.DeleteClassrooms(ctx, ids)
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
