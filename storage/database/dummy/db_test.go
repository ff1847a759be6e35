package dummydb_test

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/agenda/core"
	"github.com/trezcool/agenda/core/center"
	"github.com/trezcool/agenda/core/menu"
	"github.com/trezcool/agenda/core/message"
	"github.com/trezcool/agenda/core/news"
	"github.com/trezcool/agenda/core/record"
	"github.com/trezcool/agenda/core/student"
	"github.com/trezcool/agenda/core/user"
	dummydb "github.com/trezcool/agenda/storage/database/dummy"
	"github.com/trezcool/agenda/testutil"
)

func TestDB_InTx(t *testing.T) {
	ctx := context.Background()
	db, err := dummydb.Open()
	require.NoError(t, err)
	centers := dummydb.NewCenterRepository(db)
	testutil.CreateCenter(t, centers, "Kept")

	errBoom := errors.New("boom")
	err = db.InTx(ctx, func(exec core.DBExecutor) error {
		if _, err := centers.CreateCenter(ctx, center.Center{Name: "Dropped"}, exec); err != nil {
			return err
		}
		return errBoom
	})
	assert.Equal(t, errBoom, err)

	n, err := centers.CountCenters(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	err = db.InTx(ctx, func(exec core.DBExecutor) error {
		_, err := centers.CreateCenter(ctx, center.Center{Name: "Committed"}, exec)
		return err
	})
	require.NoError(t, err)
	n, err = centers.CountCenters(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	assert.Error(t, db.InTx(canceled, func(core.DBExecutor) error { return nil }))
}

func TestDB_InTx_RollbackKeepsOtherWrites(t *testing.T) {
	ctx := context.Background()
	db, err := dummydb.Open()
	require.NoError(t, err)
	centers := dummydb.NewCenterRepository(db)
	messages := dummydb.NewMessageRepository(db)

	errBoom := errors.New("boom")
	written := make(chan error, 1)
	err = db.InTx(ctx, func(exec core.DBExecutor) error {
		if _, err := centers.CreateCenter(ctx, center.Center{Name: "Dropped"}, exec); err != nil {
			return err
		}
		// another request writes while the transaction is still open
		go func() {
			_, err := messages.CreateMessage(ctx, message.Message{Content: "hi", SenderID: "a", RecipientID: "b"})
			written <- err
		}()
		time.Sleep(50 * time.Millisecond)
		return errBoom
	})
	assert.Equal(t, errBoom, err)
	require.NoError(t, <-written)

	msgs, err := messages.QueryMessages(ctx, nil, nil)
	require.NoError(t, err)
	assert.Len(t, msgs, 1)

	n, err := centers.CountCenters(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestDeleteCascades(t *testing.T) {
	ctx := context.Background()
	db, err := dummydb.Open()
	require.NoError(t, err)

	centers := dummydb.NewCenterRepository(db)
	classrooms := dummydb.NewClassroomRepository(db)
	students := dummydb.NewStudentRepository(db)
	records := dummydb.NewRecordRepository(db)
	newsRepo := dummydb.NewNewsRepository(db)
	users := dummydb.NewUserRepository(db)

	tutor := testutil.CreateUser(t, users, "Tina", "tina@example.com", "", user.RoleTutor)
	teacher := testutil.CreateUser(t, users, "Teo", "teo@example.com", "", user.RoleTeacher)
	ctr := testutil.CreateCenter(t, centers, "Sunny")
	other := testutil.CreateCenter(t, centers, "Rainy")
	room := testutil.CreateClassroom(t, classrooms, ctr.ID, "Babies", 0, 1, 2, teacher.ID)
	otherRoom := testutil.CreateClassroom(t, classrooms, other.ID, "Babies", 0, 1, 2)
	kid := testutil.CreateStudent(t, students, "Kid", ctr.ID, room.ID, tutor.ID, time.Time{})
	otherKid := testutil.CreateStudent(t, students, "Other", other.ID, otherRoom.ID, tutor.ID, time.Time{})

	_, err = records.CreateRecord(ctx, record.DailyRecord{StudentID: kid.ID, Date: core.Day(time.Now())})
	require.NoError(t, err)
	local, err := newsRepo.CreateNews(ctx, news.News{Title: "Local", AuthorID: teacher.ID, CenterID: null.StringFrom(ctr.ID)})
	require.NoError(t, err)

	t.Run("enrollment", func(t *testing.T) {
		got, err := classrooms.GetClassroom(ctx, room.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, got.Enrollment)
		assert.Equal(t, []string{teacher.ID}, got.TeacherIDs)
	})

	t.Run("classroom deletion unassigns students", func(t *testing.T) {
		require.NoError(t, classrooms.DeleteClassrooms(ctx, []string{otherRoom.ID}))
		got, err := students.GetStudent(ctx, otherKid.ID)
		require.NoError(t, err)
		assert.False(t, got.ClassroomID.Valid)
	})

	t.Run("news of a center include general news", func(t *testing.T) {
		_, err := newsRepo.CreateNews(ctx, news.News{Title: "General", AuthorID: teacher.ID})
		require.NoError(t, err)
		got, err := newsRepo.QueryNews(ctx, &news.QueryFilter{CenterID: other.ID}, nil)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "General", got[0].Title)
	})

	t.Run("center deletion", func(t *testing.T) {
		require.NoError(t, centers.DeleteCenters(ctx, []string{ctr.ID}))

		_, err := classrooms.GetClassroom(ctx, room.ID)
		assert.Error(t, err)
		_, err = students.GetStudent(ctx, kid.ID)
		assert.Equal(t, student.ErrNotFound, err)
		recs, err := records.QueryRecords(ctx, &record.QueryFilter{StudentID: kid.ID}, nil)
		require.NoError(t, err)
		assert.Empty(t, recs)

		n, err := newsRepo.GetNews(ctx, local.ID)
		require.NoError(t, err)
		assert.False(t, n.CenterID.Valid)
	})

	t.Run("tutors can't be deleted", func(t *testing.T) {
		assert.Equal(t, user.ErrIsTutor, users.DeleteUsers(ctx, []string{tutor.ID}))
		require.NoError(t, students.DeleteStudents(ctx, []string{otherKid.ID}))
		assert.NoError(t, users.DeleteUsers(ctx, []string{tutor.ID}))
	})
}

func TestMenuRepository_DateUniqueness(t *testing.T) {
	ctx := context.Background()
	db, err := dummydb.Open()
	require.NoError(t, err)
	repo := dummydb.NewMenuRepository(db)

	day := time.Date(2026, 5, 4, 0, 0, 0, 0, time.UTC)
	first, err := repo.CreateMenu(ctx, menu.Menu{Date: day.Add(9 * time.Hour), Breakfast: "Fruta"})
	require.NoError(t, err)
	assert.Equal(t, day, first.Date)

	_, err = repo.CreateMenu(ctx, menu.Menu{Date: day})
	assert.Equal(t, menu.ErrDateExists, err)

	second, err := repo.CreateMenu(ctx, menu.Menu{Date: day.AddDate(0, 0, 1)})
	require.NoError(t, err)
	second.Date = day
	_, err = repo.UpdateMenu(ctx, second)
	assert.Equal(t, menu.ErrDateExists, err)

	got, err := repo.GetMenuByDate(ctx, day.Add(15*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID)
}
