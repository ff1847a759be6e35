package message_test

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/agenda/core"
	"github.com/trezcool/agenda/core/message"
	"github.com/trezcool/agenda/core/user"
	emailsvc "github.com/trezcool/agenda/services/email"
	dummydb "github.com/trezcool/agenda/storage/database/dummy"
	"github.com/trezcool/agenda/testutil"
)

type fixture struct {
	svc     *message.Service
	repo    message.Repository
	mailSvc *emailsvc.ConsoleServiceMock
	admin   user.User
	teacher user.User
	tutor   user.User
	tutor2  user.User
}

func setup(t *testing.T) fixture {
	db, err := dummydb.Open()
	require.NoError(t, err)
	conf := core.NewTestConfig()
	logger := testutil.NewLogger(conf)
	core.ParseEmailTemplates(conf, logger)

	users := dummydb.NewUserRepository(db)
	repo := dummydb.NewMessageRepository(db)
	mailSvc := emailsvc.NewConsoleServiceMock(conf, logger)
	return fixture{
		svc:     message.NewService(repo, users, mailSvc),
		repo:    repo,
		mailSvc: mailSvc,
		admin:   testutil.CreateUser(t, users, "Ada", "ada@example.com", "", user.RoleAdmin),
		teacher: testutil.CreateUser(t, users, "Teo", "teo@example.com", "", user.RoleTeacher),
		tutor:   testutil.CreateUser(t, users, "Tina", "tina@example.com", "", user.RoleTutor),
		tutor2:  testutil.CreateUser(t, users, "Toni", "toni@example.com", "", user.RoleTutor),
	}
}

func fieldErr(t *testing.T, err error) string {
	t.Helper()
	var vErr *core.ValidationError
	require.True(t, errors.As(err, &vErr), "expected a validation error, got %v", err)
	require.Len(t, vErr.Fields, 1)
	return vErr.Fields[0].Field
}

func TestService_Send(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	t.Run("tutor to teacher", func(t *testing.T) {
		f.mailSvc.Reset()
		m, err := f.svc.Send(ctx, f.tutor, message.NewMessage{RecipientID: f.teacher.ID, Content: "Hola"})
		require.NoError(t, err)
		assert.Equal(t, f.tutor.ID, m.SenderID)
		assert.Equal(t, f.teacher.ID, m.RecipientID)
		assert.True(t, m.Date.Valid)
		assert.False(t, m.Read)

		sent := f.mailSvc.SentMessages()
		require.Len(t, sent, 1)
		assert.Equal(t, f.teacher.Email, sent[0].To[0].Address)
		assert.Contains(t, sent[0].TextContent, "Hola")
	})

	t.Run("teacher to tutor", func(t *testing.T) {
		_, err := f.svc.Send(ctx, f.teacher, message.NewMessage{RecipientID: f.tutor.ID, Content: "Hi"})
		assert.NoError(t, err)
	})

	t.Run("tutor to tutor", func(t *testing.T) {
		f.mailSvc.Reset()
		_, err := f.svc.Send(ctx, f.tutor, message.NewMessage{RecipientID: f.tutor2.ID, Content: "Hi"})
		assert.Equal(t, "recipient_id", fieldErr(t, err))
		assert.Empty(t, f.mailSvc.SentMessages())
	})

	t.Run("to self", func(t *testing.T) {
		_, err := f.svc.Send(ctx, f.admin, message.NewMessage{RecipientID: f.admin.ID, Content: "Hi"})
		assert.Equal(t, "recipient_id", fieldErr(t, err))
	})

	t.Run("unknown recipient", func(t *testing.T) {
		_, err := f.svc.Send(ctx, f.admin, message.NewMessage{RecipientID: "nope", Content: "Hi"})
		assert.Equal(t, "recipient_id", fieldErr(t, err))
	})
}

func TestService_ThreadAndConversations(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	day := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	testutil.CreateMessage(t, f.repo, f.tutor.ID, f.teacher.ID, "first", day, false)
	testutil.CreateMessage(t, f.repo, f.teacher.ID, f.tutor.ID, "reply", day.Add(time.Hour), false)
	testutil.CreateMessage(t, f.repo, f.tutor.ID, f.teacher.ID, "thanks", day.Add(2*time.Hour), false)
	testutil.CreateMessage(t, f.repo, f.admin.ID, f.teacher.ID, "meeting", day.Add(-time.Hour), false)

	unread, err := f.svc.UnreadCount(ctx, f.teacher)
	require.NoError(t, err)
	assert.Equal(t, 3, unread)

	convs, err := f.svc.Conversations(ctx, f.teacher, "")
	require.NoError(t, err)
	require.Len(t, convs, 2)
	assert.Equal(t, f.tutor.ID, convs[0].Counterpart.ID)
	assert.Equal(t, "thanks", convs[0].Latest.Content)
	assert.True(t, convs[0].Unread)
	assert.Equal(t, f.admin.ID, convs[1].Counterpart.ID)

	convs, err = f.svc.Conversations(ctx, f.teacher, "ad")
	require.NoError(t, err)
	require.Len(t, convs, 1)
	assert.Equal(t, f.admin.ID, convs[0].Counterpart.ID)

	thread, err := f.svc.Thread(ctx, f.teacher, f.tutor.ID)
	require.NoError(t, err)
	contents := make([]string, 0, len(thread))
	for _, m := range thread {
		contents = append(contents, m.Content)
		assert.True(t, m.Read || m.SenderID == f.teacher.ID)
	}
	assert.Equal(t, []string{"first", "reply", "thanks"}, contents)

	unread, err = f.svc.UnreadCount(ctx, f.teacher)
	require.NoError(t, err)
	assert.Equal(t, 1, unread)

	// the teacher's own reply stays unread for the tutor
	unread, err = f.svc.UnreadCount(ctx, f.tutor)
	require.NoError(t, err)
	assert.Equal(t, 1, unread)

	_, err = f.svc.Thread(ctx, f.teacher, "nope")
	assert.Equal(t, user.ErrNotFound, errors.Cause(err))
}

func TestService_Contacts(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	names := func(users []user.User) []string {
		list := make([]string, 0, len(users))
		for _, u := range users {
			list = append(list, u.Name)
		}
		return list
	}

	got, err := f.svc.Contacts(ctx, f.tutor)
	require.NoError(t, err)
	assert.Equal(t, []string{"Ada", "Teo"}, names(got))

	got, err = f.svc.Contacts(ctx, f.teacher)
	require.NoError(t, err)
	assert.Equal(t, []string{"Ada", "Tina", "Toni"}, names(got))
}
