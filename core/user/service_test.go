package user_test

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/agenda/core"
	"github.com/trezcool/agenda/core/user"
	dummydb "github.com/trezcool/agenda/storage/database/dummy"
	"github.com/trezcool/agenda/testutil"
)

func TestService_Authenticate(t *testing.T) {
	ctx := context.Background()
	db, err := dummydb.Open()
	require.NoError(t, err)
	repo := dummydb.NewUserRepository(db)
	svc := user.NewService(repo)

	pwd := "Xk9#mQ2!vz"
	usr := testutil.CreateUser(t, repo, "Tom", "tom@example.com", pwd, user.RoleTeacher)
	require.False(t, usr.LastLogin.Valid)

	tests := []struct {
		name    string
		email   string
		pwd     string
		wantErr error
	}{
		{name: "unknown email", email: "nobody@example.com", pwd: pwd, wantErr: user.ErrInvalidCredentials},
		{name: "wrong password", email: "tom@example.com", pwd: "nope", wantErr: user.ErrInvalidCredentials},
		{name: "email is case insensitive", email: " TOM@example.com ", pwd: pwd},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.Authenticate(ctx, tt.email, tt.pwd)
			if tt.wantErr != nil {
				assert.Equal(t, tt.wantErr, errors.Cause(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, usr.ID, got.ID)
			assert.True(t, got.LastLogin.Valid)
		})
	}
}

func TestService_Query(t *testing.T) {
	ctx := context.Background()
	db, err := dummydb.Open()
	require.NoError(t, err)
	repo := dummydb.NewUserRepository(db)
	svc := user.NewService(repo)

	now := time.Now()
	testutil.CreateUser(t, repo, "Zoe", "zoe@example.com", "", user.RoleTutor, now)
	testutil.CreateUser(t, repo, "Ana", "ana@example.com", "", user.RoleTeacher, now.Add(time.Minute))
	testutil.CreateUser(t, repo, "Max", "max@example.com", "", user.RoleAdmin, now.Add(2*time.Minute))

	names := func(users []user.User) []string {
		list := make([]string, 0, len(users))
		for _, u := range users {
			list = append(list, u.Name)
		}
		return list
	}

	tests := []struct {
		name     string
		filter   *user.QueryFilter
		ordering []core.DBOrdering
		want     []string
	}{
		{name: "default ordering", want: []string{"Ana", "Max", "Zoe"}},
		{name: "newest first", ordering: []core.DBOrdering{{Field: "created_at"}}, want: []string{"Max", "Ana", "Zoe"}},
		{name: "staff", filter: &user.QueryFilter{Roles: user.StaffRoles}, want: []string{"Ana", "Max"}},
		{name: "search", filter: &user.QueryFilter{Search: "  ZOE "}, want: []string{"Zoe"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.Query(ctx, tt.filter, tt.ordering)
			require.NoError(t, err)
			assert.Equal(t, tt.want, names(got))
		})
	}
}

func TestService_Delete(t *testing.T) {
	ctx := context.Background()
	db, err := dummydb.Open()
	require.NoError(t, err)
	repo := dummydb.NewUserRepository(db)
	svc := user.NewService(repo)

	tutor := testutil.CreateUser(t, repo, "Tina", "tina@example.com", "", user.RoleTutor)
	teacher := testutil.CreateUser(t, repo, "Teo", "teo@example.com", "", user.RoleTeacher)
	ctr := testutil.CreateCenter(t, dummydb.NewCenterRepository(db), "Sunny")
	testutil.CreateStudent(t, dummydb.NewStudentRepository(db), "Kid", ctr.ID, "", tutor.ID, time.Time{})

	err = svc.Delete(ctx, tutor.ID, teacher.ID)
	var vErr *core.ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, user.ErrIsTutor, vErr.Err)

	// nothing was deleted
	_, err = svc.GetByID(ctx, teacher.ID)
	assert.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, teacher.ID))
	_, err = svc.GetByID(ctx, teacher.ID)
	assert.Equal(t, user.ErrNotFound, errors.Cause(err))
}
