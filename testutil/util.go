package testutil

import (
	"context"
	"io/ioutil"
	"log"
	"testing"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/agenda/core"
	"github.com/trezcool/agenda/core/center"
	"github.com/trezcool/agenda/core/classroom"
	"github.com/trezcool/agenda/core/message"
	"github.com/trezcool/agenda/core/student"
	"github.com/trezcool/agenda/core/user"
	logsvc "github.com/trezcool/agenda/services/logger"
)

// NewLogger returns a logger that discards its output and never reports to rollbar.
func NewLogger(conf *core.Config) core.Logger {
	return logsvc.NewRollbarLogger(log.New(ioutil.Discard, "", 0), conf)
}

func tstamp(createdAt []time.Time) time.Time {
	if len(createdAt) > 0 {
		return createdAt[0].UTC()
	}
	return time.Now().UTC()
}

func CreateUser(
	t *testing.T,
	repo user.Repository,
	name, email, pwd string,
	role user.Role,
	createdAt ...time.Time,
) user.User {
	t.Helper()
	ts := tstamp(createdAt)
	usr := user.User{
		Name:      name,
		Email:     email,
		Role:      role,
		CreatedAt: ts,
		UpdatedAt: ts,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("createUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("createUser() failed: %v", err)
	}
	return usr
}

func CreateCenter(t *testing.T, repo center.Repository, name string, createdAt ...time.Time) center.Center {
	t.Helper()
	ts := tstamp(createdAt)
	c, err := repo.CreateCenter(context.Background(), center.Center{
		Name:      name,
		Location:  name + " street",
		CreatedAt: ts,
		UpdatedAt: ts,
	})
	if err != nil {
		t.Fatalf("createCenter() failed: %v", err)
	}
	return c
}

func CreateClassroom(
	t *testing.T,
	repo classroom.Repository,
	centerID, name string,
	minAge, maxAge, capacity int,
	teacherIDs ...string,
) classroom.Classroom {
	t.Helper()
	ts := time.Now().UTC()
	c, err := repo.CreateClassroom(context.Background(), classroom.Classroom{
		CenterID:    centerID,
		Name:        name,
		MinAge:      minAge,
		MaxAge:      maxAge,
		MaxCapacity: capacity,
		TeacherIDs:  teacherIDs,
		CreatedAt:   ts,
		UpdatedAt:   ts,
	})
	if err != nil {
		t.Fatalf("createClassroom() failed: %v", err)
	}
	return c
}

// CreateStudent stores a student; an empty classroomID leaves it unassigned and a zero birth leaves the birth date unknown.
func CreateStudent(
	t *testing.T,
	repo student.Repository,
	name, centerID, classroomID, tutorID string,
	birth time.Time,
) student.Student {
	t.Helper()
	ts := time.Now().UTC()
	s := student.Student{
		Name:      name,
		CenterID:  centerID,
		TutorID:   tutorID,
		CreatedAt: ts,
		UpdatedAt: ts,
	}
	if classroomID != "" {
		s.ClassroomID = null.StringFrom(classroomID)
	}
	if !birth.IsZero() {
		s.BirthDate = null.TimeFrom(birth.UTC())
	}
	s, err := repo.CreateStudent(context.Background(), s)
	if err != nil {
		t.Fatalf("createStudent() failed: %v", err)
	}
	return s
}

func CreateMessage(t *testing.T, repo message.Repository, senderID, recipientID, content string, date time.Time, read bool) message.Message {
	t.Helper()
	m := message.Message{
		Content:     content,
		SenderID:    senderID,
		RecipientID: recipientID,
		Read:        read,
	}
	if !date.IsZero() {
		m.Date = null.TimeFrom(date.UTC())
	}
	m, err := repo.CreateMessage(context.Background(), m)
	if err != nil {
		t.Fatalf("createMessage() failed: %v", err)
	}
	return m
}
