package message

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"github.com/kat-co/vala"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/agenda/core"
	"github.com/trezcool/agenda/core/user"
)

var (
	ErrNotFound           = errors.New("message not found")
	ErrUnknownRecipient   = errors.New("recipient does not exist")
	ErrSelfMessage        = errors.New("cannot send a message to yourself")
	ErrRecipientForbidden = errors.New("tutors can only message teachers and administrators")
)

type (
	Repository interface {
		CreateMessage(ctx context.Context, m Message, exec ...core.DBExecutor) (Message, error)
		QueryMessages(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]Message, error)
		GetMessage(ctx context.Context, id string, exec ...core.DBExecutor) (Message, error)
		MarkRead(ctx context.Context, ids []string, exec ...core.DBExecutor) error
		DeleteMessages(ctx context.Context, ids []string, exec ...core.DBExecutor) error
	}

	Service struct {
		repo     Repository
		userRepo user.Repository
		mailSvc  core.EmailService
	}
)

func NewService(repo Repository, userRepo user.Repository, mailSvc core.EmailService) *Service {
	vala.BeginValidation().Validate(
		vala.IsNotNil(repo, "repo"),
		vala.IsNotNil(userRepo, "userRepo"),
		vala.IsNotNil(mailSvc, "mailSvc"),
	).CheckAndPanic()

	return &Service{repo: repo, userRepo: userRepo, mailSvc: mailSvc}
}

// contactRoles returns the roles usr may write to.
func contactRoles(usr user.User) ([]user.Role, error) {
	var roles []user.Role
	err := user.Dispatch(usr.Role, user.RoleHandlers{
		Admin:   func() error { roles = user.AllRoles; return nil },
		Teacher: func() error { roles = user.AllRoles; return nil },
		Tutor:   func() error { roles = user.StaffRoles; return nil },
	})
	return roles, err
}

func canWrite(sender, recipient user.User) (bool, error) {
	roles, err := contactRoles(sender)
	if err != nil {
		return false, err
	}
	for _, r := range roles {
		if r == recipient.Role {
			return true, nil
		}
	}
	return false, nil
}

// Send stores a message from sender and notifies the recipient by email.
func (svc *Service) Send(ctx context.Context, sender user.User, nm NewMessage) (Message, error) {
	recipient, err := svc.userRepo.GetUser(ctx, user.GetFilter{ID: nm.RecipientID})
	if err != nil {
		if errors.Cause(err) == user.ErrNotFound {
			return Message{}, core.NewFieldValidationError("recipient_id", ErrUnknownRecipient)
		}
		return Message{}, errors.Wrap(err, "finding recipient")
	}
	if recipient.ID == sender.ID {
		return Message{}, core.NewFieldValidationError("recipient_id", ErrSelfMessage)
	}
	ok, err := canWrite(sender, recipient)
	if err != nil {
		return Message{}, errors.Wrap(err, "checking recipient")
	}
	if !ok {
		return Message{}, core.NewFieldValidationError("recipient_id", ErrRecipientForbidden)
	}

	m, err := svc.repo.CreateMessage(ctx, Message{
		Content:     nm.Content,
		Date:        null.TimeFrom(time.Now().UTC()),
		SenderID:    sender.ID,
		RecipientID: recipient.ID,
	})
	if err != nil {
		return Message{}, errors.Wrap(err, "creating message")
	}

	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: recipient.Name, Address: recipient.Email}},
		Subject:      fmt.Sprintf("New message from %s", sender.Name),
		TemplateName: "new_message",
		TemplateData: map[string]interface{}{
			"RecipientName": recipient.Name,
			"SenderName":    sender.Name,
			"SenderID":      sender.ID,
			"Content":       m.Content,
		},
	})
	return m, nil
}

// Conversations lists the latest message exchanged with each counterpart of usr, most recent first.
// search, when set, keeps counterparts whose name contains it.
func (svc *Service) Conversations(ctx context.Context, usr user.User, search string) ([]Conversation, error) {
	msgs, err := svc.repo.QueryMessages(ctx, &QueryFilter{UserID: usr.ID}, nil)
	if err != nil {
		return nil, errors.Wrap(err, "querying messages")
	}
	latest := LatestByCounterpart(msgs, usr.ID)
	ids := SortedCounterparts(latest)
	if len(ids) == 0 {
		return []Conversation{}, nil
	}

	users, err := svc.userRepo.QueryUsers(ctx, &user.QueryFilter{IDs: ids}, nil)
	if err != nil {
		return nil, errors.Wrap(err, "querying counterparts")
	}
	byID := make(map[string]user.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	search = core.CleanString(search)
	convs := make([]Conversation, 0, len(ids))
	for _, id := range ids {
		cp, ok := byID[id]
		if !ok || (search != "" && !core.ContainsFold(cp.Name, search)) {
			continue
		}
		m := latest[id]
		convs = append(convs, Conversation{Counterpart: cp, Latest: m, Unread: IsUnread(m, usr.ID)})
	}
	return convs, nil
}

// Thread returns the messages exchanged between usr and counterpartID, oldest first,
// and marks the ones addressed to usr as read.
func (svc *Service) Thread(ctx context.Context, usr user.User, counterpartID string) ([]Message, error) {
	if _, err := svc.userRepo.GetUser(ctx, user.GetFilter{ID: counterpartID}); err != nil {
		return nil, err
	}

	msgs, err := svc.repo.QueryMessages(
		ctx,
		&QueryFilter{UserID: usr.ID, CounterpartID: counterpartID},
		[]core.DBOrdering{{Field: "date", Ascending: true}},
	)
	if err != nil {
		return nil, errors.Wrap(err, "querying messages")
	}

	var unread []string
	for i := range msgs {
		if IsUnread(msgs[i], usr.ID) {
			unread = append(unread, msgs[i].ID)
			msgs[i].Read = true
		}
	}
	if len(unread) > 0 {
		if err = svc.repo.MarkRead(ctx, unread); err != nil {
			return nil, errors.Wrap(err, "marking messages read")
		}
	}
	return msgs, nil
}

// UnreadCount counts the messages addressed to usr that were not read yet.
func (svc *Service) UnreadCount(ctx context.Context, usr user.User) (int, error) {
	msgs, err := svc.repo.QueryMessages(ctx, &QueryFilter{RecipientID: usr.ID, UnreadOnly: true}, nil)
	if err != nil {
		return 0, errors.Wrap(err, "querying unread messages")
	}
	return len(msgs), nil
}

// Contacts lists, by name, the users usr may write to.
func (svc *Service) Contacts(ctx context.Context, usr user.User) ([]user.User, error) {
	roles, err := contactRoles(usr)
	if err != nil {
		return nil, err
	}
	users, err := svc.userRepo.QueryUsers(
		ctx,
		&user.QueryFilter{Roles: roles},
		[]core.DBOrdering{{Field: "name", Ascending: true}},
	)
	if err != nil {
		return nil, errors.Wrap(err, "querying contacts")
	}

	contacts := make([]user.User, 0, len(users))
	for _, u := range users {
		if u.ID != usr.ID {
			contacts = append(contacts, u)
		}
	}
	return contacts, nil
}

func (svc *Service) GetByID(ctx context.Context, id string) (Message, error) {
	return svc.repo.GetMessage(ctx, id)
}

func (svc *Service) Delete(ctx context.Context, ids ...string) error {
	return svc.repo.DeleteMessages(ctx, ids)
}
