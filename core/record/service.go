package record

import (
	"context"
	"time"

	"github.com/kat-co/vala"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/agenda/core"
	"github.com/trezcool/agenda/core/student"
)

var (
	ErrNotFound       = errors.New("daily record not found")
	ErrUnknownStudent = errors.New("student does not exist")
)

type (
	Repository interface {
		CreateRecord(ctx context.Context, r DailyRecord, exec ...core.DBExecutor) (DailyRecord, error)
		CreateRecords(ctx context.Context, rs []DailyRecord, exec ...core.DBExecutor) error
		QueryRecords(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]DailyRecord, error)
		GetRecord(ctx context.Context, id string, exec ...core.DBExecutor) (DailyRecord, error)
		UpdateRecord(ctx context.Context, r DailyRecord, exec ...core.DBExecutor) (DailyRecord, error)
		DeleteRecords(ctx context.Context, ids []string, exec ...core.DBExecutor) error
	}

	Service struct {
		repo        Repository
		studentRepo student.Repository
	}
)

func NewService(repo Repository, studentRepo student.Repository) *Service {
	vala.BeginValidation().Validate(
		vala.IsNotNil(repo, "repo"),
		vala.IsNotNil(studentRepo, "studentRepo"),
	).CheckAndPanic()

	return &Service{repo: repo, studentRepo: studentRepo}
}

func (svc *Service) checkStudent(ctx context.Context, id string) error {
	if _, err := svc.studentRepo.GetStudent(ctx, id); err != nil {
		if errors.Cause(err) == student.ErrNotFound {
			return core.NewFieldValidationError("student_id", ErrUnknownStudent)
		}
		return errors.Wrap(err, "finding student")
	}
	return nil
}

func (svc *Service) Create(ctx context.Context, nr NewRecord) (DailyRecord, error) {
	now := time.Now().UTC()
	return svc.repo.CreateRecord(ctx, DailyRecord{
		StudentID:        nr.StudentID,
		Date:             nr.Date.UTC(),
		Breakfast:        nr.Breakfast,
		Snack:            nr.Snack,
		FirstCourse:      nr.FirstCourse,
		SecondCourse:     nr.SecondCourse,
		Dessert:          nr.Dessert,
		WipesRemaining:   nr.WipesRemaining,
		DiapersRemaining: nr.DiapersRemaining,
		Napped:           nr.Napped,
		NapStart:         nr.NapStart,
		NapEnd:           nr.NapEnd,
		Comments:         nr.Comments,
		CreatedAt:        now,
		UpdatedAt:        now,
	})
}

// Query lists records, most recent first unless ordering says otherwise.
func (svc *Service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]DailyRecord, error) {
	if len(ordering) == 0 {
		ordering = []core.DBOrdering{{Field: "date", Ascending: false}}
	}
	return svc.repo.QueryRecords(ctx, filter, ordering)
}

func (svc *Service) GetByID(ctx context.Context, id string) (DailyRecord, error) {
	return svc.repo.GetRecord(ctx, id)
}

func (svc *Service) Update(ctx context.Context, r DailyRecord, ur UpdateRecord) (DailyRecord, error) {
	setBool := func(dst *bool, src *bool) {
		if src != nil {
			*dst = *src
		}
	}
	if ur.Date != nil {
		r.Date = ur.Date.UTC()
	}
	setBool(&r.Breakfast, ur.Breakfast)
	setBool(&r.Snack, ur.Snack)
	setBool(&r.FirstCourse, ur.FirstCourse)
	setBool(&r.SecondCourse, ur.SecondCourse)
	setBool(&r.Dessert, ur.Dessert)
	setBool(&r.Napped, ur.Napped)
	if ur.WipesRemaining != nil {
		r.WipesRemaining = *ur.WipesRemaining
	}
	if ur.DiapersRemaining != nil {
		r.DiapersRemaining = *ur.DiapersRemaining
	}
	if ur.Comments != nil {
		r.Comments = *ur.Comments
	}
	if ur.NapStart.Valid {
		r.NapStart = ur.NapStart
	}
	if ur.NapEnd.Valid {
		r.NapEnd = ur.NapEnd
	}
	if !r.Napped {
		r.NapStart, r.NapEnd = null.Time{}, null.Time{}
	}
	r.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateRecord(ctx, r)
}

func (svc *Service) Delete(ctx context.Context, ids ...string) error {
	return svc.repo.DeleteRecords(ctx, ids)
}
