package user

import (
	"testing"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/locales/en"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/agenda/core"
)

func TestCheckPassword(t *testing.T) {
	commonPasswordsMu.Lock()
	orig := commonPasswords
	commonPasswords = []string{"p@ssw0rd1"}
	commonPasswordsMu.Unlock()
	defer func() {
		commonPasswordsMu.Lock()
		commonPasswords = orig
		commonPasswordsMu.Unlock()
	}()

	tests := []struct {
		name  string
		pwd   string
		attrs []string
		want  string
	}{
		{name: "too short", pwd: "Ab1!", want: pwdMinLenTag},
		{name: "whitespace", pwd: "Abc 12!xyz", want: pwdNoSpaceTag},
		{name: "all numeric", pwd: "12345678", want: pwdNotAllNumTag},
		{name: "no special char", pwd: "Abcdefgh1", want: pwdComplexityTag},
		{name: "no upper case", pwd: "abcdefg1!", want: pwdComplexityTag},
		{name: "similar to name", pwd: "Bob.Smith1", attrs: []string{"Bob Smith"}, want: pwdAttrSimTag},
		{name: "common", pwd: "P@ssw0rd1", want: pwdNoCommonTag},
		{name: "valid", pwd: "Xk9#mQ2!vz", attrs: []string{"Tom", "tom@example.com"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, checkPassword(tt.pwd, tt.attrs...))
		})
	}
}

func TestNewUser_Validate(t *testing.T) {
	validate := validator.New()
	english := en.New()
	translator, _ := ut.New(english, english).GetTranslator("en")
	core.InitValidators(validate, translator)
	InitValidators(validate, translator)

	tests := []struct {
		name      string
		nu        NewUser
		wantField string
	}{
		{
			name:      "unknown role",
			nu:        NewUser{Name: "Tom", Email: "tom@example.com", Role: "janitor", Password: "Xk9#mQ2!vz", PasswordConfirm: "Xk9#mQ2!vz"},
			wantField: "role",
		},
		{
			name:      "password mismatch",
			nu:        NewUser{Name: "Tom", Email: "tom@example.com", Role: RoleTutor, Password: "Xk9#mQ2!vz", PasswordConfirm: "nope"},
			wantField: "password_confirm",
		},
		{
			name:      "weak password",
			nu:        NewUser{Name: "Tom", Email: "tom@example.com", Role: RoleTutor, Password: "12345678", PasswordConfirm: "12345678"},
			wantField: "password",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validate.Struct(tt.nu)
			require.Error(t, err)
			var fields []string
			for _, fe := range err.(validator.ValidationErrors) {
				fields = append(fields, fe.Field())
			}
			assert.Contains(t, fields, tt.wantField)
		})
	}
}

func TestDispatch(t *testing.T) {
	var called Role
	handlers := RoleHandlers{
		Admin:   func() error { called = RoleAdmin; return nil },
		Teacher: func() error { called = RoleTeacher; return nil },
		Tutor:   func() error { called = RoleTutor; return nil },
	}

	for _, r := range AllRoles {
		require.NoError(t, Dispatch(r, handlers))
		assert.Equal(t, r, called)
	}

	err := Dispatch("janitor", handlers)
	assert.Error(t, err)

	err = Dispatch(RoleTutor, RoleHandlers{Admin: handlers.Admin})
	assert.Error(t, err)
}

func TestParseRole(t *testing.T) {
	r, err := ParseRole("teacher")
	require.NoError(t, err)
	assert.Equal(t, RoleTeacher, r)
	assert.True(t, r.IsStaff())

	_, err = ParseRole("Teacher")
	assert.Error(t, err)
}
