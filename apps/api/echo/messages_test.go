package echoapi

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/agenda/core/message"
	"github.com/trezcool/agenda/core/user"
	"github.com/trezcool/agenda/testutil"
)

func Test_messageApi(t *testing.T) {
	app := setup(t)
	teacher := testutil.CreateUser(t, app.repos.users, "Teo", "teo@example.com", "", user.RoleTeacher)
	tutor := testutil.CreateUser(t, app.repos.users, "Tina", "tina@example.com", "", user.RoleTutor)
	tutor2 := testutil.CreateUser(t, app.repos.users, "Toni", "toni@example.com", "", user.RoleTutor)

	t0 := time.Date(2024, time.February, 5, 9, 0, 0, 0, time.UTC)
	m1 := testutil.CreateMessage(t, app.repos.messages, tutor.ID, teacher.ID, "Hello", t0, true)
	m2 := testutil.CreateMessage(t, app.repos.messages, teacher.ID, tutor.ID, "Hi!", t0.Add(time.Minute), false)
	m3 := testutil.CreateMessage(t, app.repos.messages, tutor2.ID, teacher.ID, "Question", t0.Add(time.Hour), false)

	teacherToken := app.getToken(t, teacher)
	tutorToken := app.getToken(t, tutor)

	app.run(t, []httpTest{
		{name: "auth required", path: "/v1/messages", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "teacher conversations", path: "/v1/messages", token: teacherToken, wantCode: http.StatusOK,
			wantData: marchallList(t,
				message.Conversation{Counterpart: tutor2, Latest: m3, Unread: true},
				message.Conversation{Counterpart: tutor, Latest: m2, Unread: false},
			),
		},
		{
			name: "search conversations", path: "/v1/messages?search=ton", token: teacherToken, wantCode: http.StatusOK,
			wantData: marchallList(t, message.Conversation{Counterpart: tutor2, Latest: m3, Unread: true}),
		},
		{name: "tutor unread", path: "/v1/messages/unread", token: tutorToken, wantCode: http.StatusOK, wantData: marchallObj(t, CountResponse{Count: 1})},
		{
			name: "tutor cannot write to a tutor", method: http.MethodPost, path: "/v1/messages", token: tutorToken,
			body:     marchallObj(t, message.NewMessage{RecipientID: tutor2.ID, Content: "hey"}),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"recipient_id": message.ErrRecipientForbidden.Error()}),
		},
		{
			name: "content required", method: http.MethodPost, path: "/v1/messages", token: tutorToken,
			body:     marchallObj(t, message.NewMessage{RecipientID: teacher.ID, Content: "  "}),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"content": "this field is required"}),
		},
		{name: "unknown thread", path: "/v1/messages/threads/nobody", token: tutorToken, wantCode: http.StatusNotFound, wantData: marchallObj(t, errNotFound)},
		{
			name: "delete a received message", method: http.MethodDelete, path: "/v1/messages/" + m2.ID, token: tutorToken,
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
		},
		{
			name: "delete a message of others", method: http.MethodDelete, path: "/v1/messages/" + m3.ID, token: tutorToken,
			wantCode: http.StatusNotFound, wantData: marchallObj(t, errNotFound),
		},
	})

	t.Run("reading a thread marks it read", func(t *testing.T) {
		rec := app.do(http.MethodGet, "/v1/messages/threads/"+teacher.ID, tutorToken)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var msgs []message.Message
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &msgs))
		require.Len(t, msgs, 2)
		assert.Equal(t, m1.ID, msgs[0].ID)
		assert.Equal(t, m2.ID, msgs[1].ID)
		assert.True(t, msgs[1].Read)

		rec = app.do(http.MethodGet, "/v1/messages/unread", tutorToken)
		assert.JSONEq(t, `{"count":0}`, rec.Body.String())
		// the teacher's unread message from tutor2 is untouched
		rec = app.do(http.MethodGet, "/v1/messages/unread", teacherToken)
		assert.JSONEq(t, `{"count":1}`, rec.Body.String())
	})

	t.Run("send", func(t *testing.T) {
		app.mailSvc.Reset()
		rec := app.do(http.MethodPost, "/v1/messages", tutorToken, marchallObj(t, message.NewMessage{RecipientID: teacher.ID, Content: " See you "}))
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		var got message.Message
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, "See you", got.Content)
		assert.Equal(t, tutor.ID, got.SenderID)
		assert.False(t, got.Read)
		assert.Len(t, app.mailSvc.SentMessages(), 1)

		rec = app.do(http.MethodDelete, "/v1/messages/"+got.ID, tutorToken)
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})
}
