package sample

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/agenda/core"
	"github.com/trezcool/agenda/core/classroom"
	"github.com/trezcool/agenda/core/student"
	"github.com/trezcool/agenda/core/user"
	dummydb "github.com/trezcool/agenda/storage/database/dummy"
	"github.com/trezcool/agenda/testutil"
)

func newTestPopulator(t *testing.T) (*Populator, *dummydb.DB) {
	db, err := dummydb.Open()
	require.NoError(t, err)
	p := NewPopulator(db, Repositories{
		Centers:    dummydb.NewCenterRepository(db),
		Users:      dummydb.NewUserRepository(db),
		Classrooms: dummydb.NewClassroomRepository(db),
		Students:   dummydb.NewStudentRepository(db),
		Records:    dummydb.NewRecordRepository(db),
		Menus:      dummydb.NewMenuRepository(db),
		News:       dummydb.NewNewsRepository(db),
		Photos:     dummydb.NewPhotoRepository(db),
	}, testutil.NewLogger(core.NewTestConfig()))
	p.rnd = rand.New(rand.NewSource(1))
	p.now = func() time.Time { return time.Date(2024, time.February, 10, 8, 30, 0, 0, time.UTC) }
	return p, db
}

func TestPopulator_Populate(t *testing.T) {
	ctx := context.Background()
	p, _ := newTestPopulator(t)

	summary, err := p.Populate(ctx)
	require.NoError(t, err)
	assert.Equal(t, Summary{
		Centers:    2,
		Users:      8,
		Classrooms: 10,
		Students:   243,
		Records:    243 * recordsPerChild,
		Menus:      29, // leap year
		News:       1,
		Photos:     4,
	}, summary)

	t.Run("accounts can log in", func(t *testing.T) {
		svc := user.NewService(p.repos.Users)
		usr, err := svc.Authenticate(ctx, "tutora@edai.com", "tutora123")
		require.NoError(t, err)
		assert.Equal(t, user.RoleTutor, usr.Role)
	})

	t.Run("classrooms within capacity", func(t *testing.T) {
		rooms, err := p.repos.Classrooms.QueryClassrooms(ctx, nil, nil)
		require.NoError(t, err)
		require.Len(t, rooms, 10)
		for _, c := range rooms {
			assert.LessOrEqual(t, c.Enrollment, c.MaxCapacity, c.Name)
			assert.GreaterOrEqual(t, c.Enrollment, fillersPerRoom, c.Name)
		}
	})

	t.Run("filler ages match their classroom", func(t *testing.T) {
		rooms, err := p.repos.Classrooms.QueryClassrooms(ctx, nil, nil)
		require.NoError(t, err)
		byID := make(map[string]classroom.Classroom, len(rooms))
		for _, c := range rooms {
			byID[c.ID] = c
		}

		students, err := p.repos.Students.QueryStudents(ctx, nil, nil)
		require.NoError(t, err)
		for _, s := range students {
			require.True(t, s.ClassroomID.Valid)
			if s.Image != "" {
				continue // named children
			}
			c := byID[s.ClassroomID.String]
			age := classroom.AgeInYears(s.BirthDate.Time, p.now())
			assert.True(t, c.MinAge <= age && age <= c.MaxAge, "%s is %d", s.Name, age)
		}
	})

	t.Run("named children belong to the same tutor", func(t *testing.T) {
		tutor, err := p.repos.Users.GetUser(ctx, user.GetFilter{Email: "jasanchez@edai.com"})
		require.NoError(t, err)
		kids, err := p.repos.Students.QueryStudents(ctx, &student.QueryFilter{TutorID: tutor.ID}, nil)
		require.NoError(t, err)
		assert.Len(t, kids, len(childSeeds))
	})
}

func TestPopulator_StoreNotEmpty(t *testing.T) {
	ctx := context.Background()
	p, _ := newTestPopulator(t)
	testutil.CreateCenter(t, p.repos.Centers, "Existing")

	_, err := p.Populate(ctx)
	assert.Equal(t, ErrStoreNotEmpty, errors.Cause(err))

	users, err := p.repos.Users.QueryUsers(ctx, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, users)
}
