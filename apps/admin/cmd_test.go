package main

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/agenda/core"
	"github.com/trezcool/agenda/core/sample"
	"github.com/trezcool/agenda/core/user"
	"github.com/trezcool/agenda/storage"
	dummydb "github.com/trezcool/agenda/storage/database/dummy"
	"github.com/trezcool/agenda/testutil"
)

func setup(t *testing.T) *commandLine {
	db, err := dummydb.Open()
	require.NoError(t, err)
	return newCommandLine(storage.NewMemoryStore(db), testutil.NewLogger(core.NewTestConfig()))
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
	extra      interface{}
}

func (tt cliTest) check(t *testing.T, err error) {
	t.Helper()
	switch {
	case tt.wantErr != nil:
		assert.Equal(t, tt.wantErr, err)
	case tt.wantErrStr != "":
		if assert.Error(t, err) {
			assert.Equal(t, tt.wantErrStr, err.Error())
		}
	default:
		assert.NoError(t, err)
	}
}

func Test_commandLine_migrate(t *testing.T) {
	cli := setup(t)

	t.Run("memory engine", func(t *testing.T) {
		err := cli.run([]string{"admin", "migrate", "up"})
		assert.Equal(t, errNoSQLEngine, err)
	})

	cli.store.DB = sqlx.NewDb(new(sql.DB), "postgres")

	origRun := gooseRunFunc
	t.Cleanup(func() { gooseRunFunc = origRun })
	gooseRunFunc = func(command string, db *sql.DB, args ...string) error {
		switch command {
		case "up", "up-by-one", "down", "fix", "redo", "reset", "status", "version": // pass
		case "up-to":
			if len(args) == 0 {
				return fmt.Errorf("up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION")
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		case "create":
			if len(args) == 0 {
				return fmt.Errorf("create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]")
			}
		case "down-to":
			if len(args) == 0 {
				return fmt.Errorf("down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION")
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}

	tests := []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "create: no args", args: []string{"migrate", "create"}, wantErrStr: "create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]"},
		{name: "down-to: no args", args: []string{"migrate", "down-to"}, wantErrStr: "down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION"},
		{name: "down-to: non-int arg", args: []string{"migrate", "down-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-by-one", args: []string{"migrate", "up-by-one"}},
		{name: "up-to", args: []string{"migrate", "up-to", "2"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "down-to", args: []string{"migrate", "down-to", "1"}},
		{name: "redo", args: []string{"migrate", "redo"}},
		{name: "reset", args: []string{"migrate", "reset"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "version", args: []string{"migrate", "version"}},
		{name: "create", args: []string{"migrate", "create", "attendance", "sql"}},
		{name: "fix", args: []string{"migrate", "fix"}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, cli.run(append([]string{"admin"}, tt.args...)))
		})
	}
}

func mockPassword(t *testing.T, pwd string) {
	origRead := readPasswordFunc
	t.Cleanup(func() { readPasswordFunc = origRead })
	readPasswordFunc = func(fd int) ([]byte, error) {
		return []byte(pwd), nil
	}
}

func Test_commandLine_resetPassword(t *testing.T) {
	cli := setup(t)
	ctx := context.Background()

	usr := testutil.CreateUser(t, cli.store.Users, "Ana", "ana@test.es", "orig-Pwd-99", user.RoleTeacher)

	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "no args", args: []string{"resetpassword"}, wantErr: errHelp},
		{name: "email but no password", args: []string{"resetpassword", "-email", "ana@test.es"}, wantErr: errHelp},
		{name: "user not found", args: []string{"resetpassword", "-email", "lol@test.es"}, extra: "lol", wantErr: user.ErrNotFound},
		{name: "reset", args: []string{"resetpassword", "-email", "ana@test.es"}, extra: "new-Pwd-42"},
		{name: "reset, email is case insensitive", args: []string{"resetpassword", "-email", " ANA@test.es"}, extra: "newer-Pwd-42"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			pwd, _ := tt.extra.(string)
			mockPassword(t, pwd)

			err := cli.run(append([]string{"admin"}, tt.args...))
			tt.check(t, err)
			if err != nil {
				return
			}

			refreshed, err := cli.usrSvc.GetByID(ctx, usr.ID)
			require.NoError(t, err)
			assert.False(t, bytes.Equal(refreshed.PasswordHash, usr.PasswordHash), "password not updated")
			assert.NoError(t, refreshed.CheckPassword(pwd))
		})
	}
}

func Test_commandLine_addUser(t *testing.T) {
	cli := setup(t)
	ctx := context.Background()

	existing := testutil.CreateUser(t, cli.store.Users, "Old Name", "old@test.es", "orig-Pwd-99", user.RoleTutor)

	tests := []cliTest{
		{name: "no args", args: []string{"adduser"}, wantErr: errHelp},
		{name: "name missing", args: []string{"adduser", "-email", "x@test.es"}, extra: "pwd", wantErr: errHelp},
		{name: "bad role", args: []string{"adduser", "-email", "x@test.es", "-name", "X", "-role", "parent"}, extra: "pwd", wantErr: user.ErrUnknownRole},
		{name: "no password", args: []string{"adduser", "-email", "x@test.es", "-name", "X"}, wantErr: errHelp},
		{name: "create admin by default", args: []string{"adduser", "-email", "Boss@Test.es", "-name", " The Boss "}, extra: "boss-Pwd-1"},
		{name: "create teacher", args: []string{"adduser", "-email", "teach@test.es", "-name", "Teach", "-role", "teacher"}, extra: "teach-Pwd-1"},
		{name: "update existing", args: []string{"adduser", "-email", "old@test.es", "-name", "New Name", "-role", "teacher"}, extra: "upd-Pwd-1"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			pwd, _ := tt.extra.(string)
			mockPassword(t, pwd)
			tt.check(t, cli.run(append([]string{"admin"}, tt.args...)))
		})
	}

	boss, err := cli.usrSvc.GetByEmail(ctx, "boss@test.es")
	require.NoError(t, err)
	assert.Equal(t, "The Boss", boss.Name)
	assert.Equal(t, user.RoleAdmin, boss.Role)
	assert.NoError(t, boss.CheckPassword("boss-Pwd-1"))

	teach, err := cli.usrSvc.GetByEmail(ctx, "teach@test.es")
	require.NoError(t, err)
	assert.Equal(t, user.RoleTeacher, teach.Role)

	updated, err := cli.usrSvc.GetByID(ctx, existing.ID)
	require.NoError(t, err)
	assert.Equal(t, "New Name", updated.Name)
	assert.Equal(t, user.RoleTeacher, updated.Role)
	assert.NoError(t, updated.CheckPassword("upd-Pwd-1"))

	_, err = cli.usrSvc.GetByEmail(ctx, "x@test.es")
	assert.Equal(t, user.ErrNotFound, err)
}

func Test_commandLine_seed(t *testing.T) {
	cli := setup(t)
	ctx := context.Background()

	require.NoError(t, cli.run([]string{"admin", "seed"}))

	n, err := cli.store.Centers.CountCenters(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = cli.usrSvc.Authenticate(ctx, "admin@edai.com", "admin123")
	assert.NoError(t, err)

	assert.Equal(t, sample.ErrStoreNotEmpty, cli.run([]string{"admin", "seed"}))
}
