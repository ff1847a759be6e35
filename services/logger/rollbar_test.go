package logsvc

import (
	"bytes"
	"errors"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trezcool/agenda/core"
	"github.com/trezcool/agenda/core/user"
)

func TestRollbarLogger(t *testing.T) {
	buf := new(bytes.Buffer)
	logger := NewRollbarLogger(log.New(buf, "", 0), core.NewTestConfig())

	usr := user.User{ID: "42", Name: "Tutora", Email: "tutora@edai.com", Role: user.RoleTutor}
	logger.Error("sending email", errors.New("boom"), usr)

	out := buf.String()
	assert.Contains(t, out, "sending email\n")
	assert.Contains(t, out, "boom\n")
	assert.Contains(t, out, "tutora@edai.com")
}

func TestRollbarLogger_prepare(t *testing.T) {
	logger := NewRollbarLogger(log.New(new(bytes.Buffer), "", 0), core.NewTestConfig())
	usr := user.User{ID: "42", Name: "Tutora", Role: user.RoleTutor}
	other := user.User{ID: "7", Name: "Admin", Role: user.RoleAdmin}
	errBoom := errors.New("boom")

	tests := []struct {
		name string
		args []interface{}
		want []interface{}
	}{
		{name: "message only", want: []interface{}{"msg"}},
		{
			name: "first user tagged with its role",
			args: []interface{}{usr, map[string]interface{}{"path": "/v1/me"}, other},
			want: []interface{}{"msg", map[string]interface{}{"path": "/v1/me", "user_role": "tutor"}},
		},
		{
			name: "maps merged, other args kept by position",
			args: []interface{}{errBoom, map[string]interface{}{"a": 1}, 7, map[string]interface{}{"b": 2}},
			want: []interface{}{"msg", errBoom, map[string]interface{}{"a": 1, "arg2": 7, "b": 2}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, logger.prepare("msg", tt.args))
		})
	}
}

func TestRollbarLogger_printHidesUserDetails(t *testing.T) {
	buf := new(bytes.Buffer)
	logger := NewRollbarLogger(log.New(buf, "", 0), core.NewTestConfig())

	usr := user.User{ID: "42", Email: "tutora@edai.com", Role: user.RoleTutor, PasswordHash: []byte("secret-hash")}
	logger.Info("login", usr)

	assert.Equal(t, "login\nuser: 42 <tutora@edai.com> (tutor)\n", buf.String())
}
