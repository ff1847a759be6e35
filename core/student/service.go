package student

import (
	"context"
	"fmt"
	"time"

	"github.com/kat-co/vala"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/agenda/core"
	"github.com/trezcool/agenda/core/center"
	"github.com/trezcool/agenda/core/classroom"
	"github.com/trezcool/agenda/core/user"
)

var (
	ErrNotFound            = errors.New("student not found")
	ErrUnknownCenter       = errors.New("center does not exist")
	ErrUnknownClassroom    = errors.New("classroom does not exist in this center")
	ErrNotATutor           = errors.New("tutor must be a user with the tutor role")
	ErrNoBirthDate         = errors.New("student has no birth date")
	ErrNoEligibleClassroom = errors.New("no classroom matches the student's age with a free seat")
)

type (
	Repository interface {
		CreateStudent(ctx context.Context, s Student, exec ...core.DBExecutor) (Student, error)
		QueryStudents(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]Student, error)
		GetStudent(ctx context.Context, id string, exec ...core.DBExecutor) (Student, error)
		UpdateStudent(ctx context.Context, s Student, exec ...core.DBExecutor) (Student, error)
		// DeleteStudents also deletes the students' daily records.
		DeleteStudents(ctx context.Context, ids []string, exec ...core.DBExecutor) error
	}

	Service struct {
		tx            core.Transactor
		repo          Repository
		centerRepo    center.Repository
		classroomRepo classroom.Repository
		userRepo      user.Repository
		logger        core.Logger
		nowFunc       func() time.Time
	}
)

func NewService(
	tx core.Transactor,
	repo Repository,
	centerRepo center.Repository,
	classroomRepo classroom.Repository,
	userRepo user.Repository,
	logger core.Logger,
) *Service {
	vala.BeginValidation().Validate(
		vala.IsNotNil(tx, "tx"),
		vala.IsNotNil(repo, "repo"),
		vala.IsNotNil(centerRepo, "centerRepo"),
		vala.IsNotNil(classroomRepo, "classroomRepo"),
		vala.IsNotNil(userRepo, "userRepo"),
		vala.IsNotNil(logger, "logger"),
	).CheckAndPanic()

	return &Service{
		tx:            tx,
		repo:          repo,
		centerRepo:    centerRepo,
		classroomRepo: classroomRepo,
		userRepo:      userRepo,
		logger:        logger,
		nowFunc:       func() time.Time { return time.Now().UTC() },
	}
}

func (svc *Service) checkReferences(ctx context.Context, centerID string, classroomID null.String, tutorID string) error {
	if _, err := svc.centerRepo.GetCenter(ctx, centerID); err != nil {
		if errors.Cause(err) == center.ErrNotFound {
			return core.NewFieldValidationError("center_id", ErrUnknownCenter)
		}
		return errors.Wrap(err, "finding center")
	}

	if classroomID.Valid {
		c, err := svc.classroomRepo.GetClassroom(ctx, classroomID.String)
		if err != nil && errors.Cause(err) != classroom.ErrNotFound {
			return errors.Wrap(err, "finding classroom")
		}
		if err != nil || c.CenterID != centerID {
			return core.NewFieldValidationError("classroom_id", ErrUnknownClassroom)
		}
	}

	tutor, err := svc.userRepo.GetUser(ctx, user.GetFilter{ID: tutorID})
	if err != nil && errors.Cause(err) != user.ErrNotFound {
		return errors.Wrap(err, "finding tutor")
	}
	if err != nil || !tutor.IsTutor() {
		return core.NewFieldValidationError("tutor_id", ErrNotATutor)
	}
	return nil
}

// assign looks for a classroom in the student's center, see classroom.Assign.
// The center's classrooms stay locked until exec's transaction ends, so concurrent assignments cannot overfill one.
func (svc *Service) assign(ctx context.Context, s Student, exec core.DBExecutor) (classroom.Classroom, error) {
	if !s.BirthDate.Valid {
		return classroom.Classroom{}, ErrNoBirthDate
	}
	candidates, err := svc.classroomRepo.QueryClassrooms(ctx, &classroom.QueryFilter{CenterID: s.CenterID, ForUpdate: true}, nil, exec)
	if err != nil {
		return classroom.Classroom{}, errors.Wrap(err, "querying classrooms")
	}
	c, ok := classroom.Assign(classroom.AgeInYears(s.BirthDate.Time, svc.nowFunc()), candidates)
	if !ok {
		return classroom.Classroom{}, ErrNoEligibleClassroom
	}
	return c, nil
}

func (svc *Service) Create(ctx context.Context, ns NewStudent) (Student, error) {
	now := time.Now().UTC()
	s := Student{
		Name:        ns.Name,
		BirthDate:   calendarDay(ns.BirthDate),
		Image:       ns.Image,
		CenterID:    ns.CenterID,
		ClassroomID: ns.ClassroomID,
		TutorID:     ns.TutorID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err := svc.tx.InTx(ctx, func(exec core.DBExecutor) error {
		if !s.ClassroomID.Valid && s.BirthDate.Valid {
			c, err := svc.assign(ctx, s, exec)
			switch errors.Cause(err) {
			case nil:
				s.ClassroomID = null.StringFrom(c.ID)
			case ErrNoEligibleClassroom:
				svc.logger.Info(fmt.Sprintf("no classroom available for student %q", s.Name))
			default:
				return err
			}
		}

		var err error
		s, err = svc.repo.CreateStudent(ctx, s, exec)
		return errors.Wrap(err, "creating student")
	})
	if err != nil {
		return Student{}, err
	}
	return s, nil
}

// AssignClassroom assigns a classroom to a student that has none. Assigned students are returned unchanged.
func (svc *Service) AssignClassroom(ctx context.Context, id string) (Student, error) {
	var s Student
	err := svc.tx.InTx(ctx, func(exec core.DBExecutor) error {
		var err error
		if s, err = svc.repo.GetStudent(ctx, id, exec); err != nil {
			return err
		}
		if s.ClassroomID.Valid {
			return nil
		}

		c, err := svc.assign(ctx, s, exec)
		if err != nil {
			return err
		}
		s.ClassroomID = null.StringFrom(c.ID)
		s.UpdatedAt = time.Now().UTC()
		s, err = svc.repo.UpdateStudent(ctx, s, exec)
		return errors.Wrap(err, "updating student")
	})
	switch errors.Cause(err) {
	case nil:
		return s, nil
	case ErrNoBirthDate, ErrNoEligibleClassroom:
		return Student{}, core.NewValidationError(errors.Cause(err))
	default:
		return Student{}, err
	}
}

func (svc *Service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Student, error) {
	if filter != nil {
		filter.Search = core.CleanString(filter.Search)
	}
	if len(ordering) == 0 {
		ordering = []core.DBOrdering{{Field: "name", Ascending: true}}
	}
	return svc.repo.QueryStudents(ctx, filter, ordering)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Student, error) {
	return svc.repo.GetStudent(ctx, id)
}

func (svc *Service) Update(ctx context.Context, s Student, us UpdateStudent) (Student, error) {
	s.ClassroomID = us.classroom(s)
	s.Name = us.Name
	s.BirthDate = calendarDay(us.BirthDate)
	s.Image = us.Image
	s.CenterID = us.CenterID
	s.TutorID = us.TutorID
	s.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateStudent(ctx, s)
}

func (svc *Service) Delete(ctx context.Context, ids ...string) error {
	return svc.repo.DeleteStudents(ctx, ids)
}
