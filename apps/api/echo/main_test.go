package echoapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/agenda/core"
	"github.com/trezcool/agenda/core/center"
	"github.com/trezcool/agenda/core/classroom"
	"github.com/trezcool/agenda/core/menu"
	"github.com/trezcool/agenda/core/message"
	"github.com/trezcool/agenda/core/news"
	"github.com/trezcool/agenda/core/photo"
	"github.com/trezcool/agenda/core/record"
	"github.com/trezcool/agenda/core/student"
	"github.com/trezcool/agenda/core/user"
	assetsvc "github.com/trezcool/agenda/services/assets"
	emailsvc "github.com/trezcool/agenda/services/email"
	"github.com/trezcool/agenda/storage"
	dummydb "github.com/trezcool/agenda/storage/database/dummy"
	"github.com/trezcool/agenda/testutil"
)

var (
	errMissingToken = httpErr{Error: "missing or malformed jwt"}
	errForbidden    = httpErr{Error: "permission denied"}
	errNotFound     = httpErr{Error: "not found"}
)

type repos struct {
	users      user.Repository
	centers    center.Repository
	classrooms classroom.Repository
	students   student.Repository
	records    record.Repository
	menus      menu.Repository
	news       news.Repository
	messages   message.Repository
	photos     photo.Repository
}

type testApp struct {
	srv     *Server
	repos   repos
	mailSvc *emailsvc.ConsoleServiceMock
}

func setup(t *testing.T) testApp {
	t.Helper()

	conf := core.NewTestConfig()
	conf.DocumentsDir = t.TempDir()
	logger := testutil.NewLogger(conf)
	core.ParseEmailTemplates(conf, logger)

	db, err := dummydb.Open()
	require.NoError(t, err)
	store := storage.NewMemoryStore(db)
	r := repos{
		users:      store.Users,
		centers:    store.Centers,
		classrooms: store.Classrooms,
		students:   store.Students,
		records:    store.Records,
		menus:      store.Menus,
		news:       store.News,
		messages:   store.Messages,
		photos:     store.Photos,
	}

	validate := validator.New()
	_en := en.New()
	translator, _ := ut.New(_en, _en).GetTranslator("en")
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	record.InitValidators(validate, translator)

	mailSvc := emailsvc.NewConsoleServiceMock(conf, logger)
	assets := assetsvc.NewLocalStore(conf)

	srv := NewServer(ServerDeps{
		Conf:           conf,
		Logger:         logger,
		Validate:       validate,
		Translator:     translator,
		DisableReqLogs: true,
		UserSvc:        user.NewService(r.users),
		CenterSvc:      center.NewService(r.centers),
		ClassroomSvc:   classroom.NewService(r.classrooms, r.centers, r.users),
		StudentSvc:     student.NewService(store.Tx, r.students, r.centers, r.classrooms, r.users, logger),
		RecordSvc:      record.NewService(r.records, r.students),
		MenuSvc:        menu.NewService(r.menus),
		NewsSvc:        news.NewService(r.news, r.centers),
		MessageSvc:     message.NewService(r.messages, r.users, mailSvc),
		PhotoSvc:       photo.NewService(r.photos, assets),
		Assets:         assets,
	})
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })

	return testApp{srv: srv, repos: r, mailSvc: mailSvc}
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

func (app testApp) do(method, path, token string, data ...[]byte) *httptest.ResponseRecorder {
	req, rec := newAuthRequest(method, path, token, data...)
	app.srv.ServeHTTP(rec, req)
	return rec
}

func (app testApp) run(t *testing.T, tests []httpTest) {
	t.Helper()
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			method := tt.method
			if method == "" {
				method = http.MethodGet
			}
			checkCodeAndData(t, tt, app.do(method, tt.path, tt.token, tt.body))
		})
	}
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func (app testApp) getToken(t *testing.T, usr user.User) string {
	t.Helper()
	token, err := app.srv.auth.generateToken(app.srv.auth.userClaims(usr))
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

func marchallList(t *testing.T, objs ...interface{}) []byte {
	if objs == nil {
		objs = []interface{}{}
	}
	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marchallList() failed: %v", err)
	}
	return data
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	l1, ok1 := j1.([]interface{})
	l2, ok2 := j2.([]interface{})
	if !(ok1 && ok2) {
		return false, nil
	}
	return assert.ElementsMatch(t, l1, l2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
