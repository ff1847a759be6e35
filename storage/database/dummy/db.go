package dummydb

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/volatiletech/null/v8"

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
)

type (
	// DB keeps every table in memory. mu guards the tables; txMu serializes transactions and the writes made outside them.
	DB struct {
		mu   sync.RWMutex
		txMu sync.Mutex
		t    tables
	}

	tables struct {
		users      map[string]user.User
		centers    map[string]center.Center
		classrooms map[string]classroom.Classroom
		students   map[string]student.Student
		records    map[string]record.DailyRecord
		menus      map[string]menu.Menu
		news       map[string]news.News
		messages   map[string]message.Message
		photos     map[string]photo.Photo
	}
)

var _ core.Transactor = (*DB)(nil) // interface compliance check

func newTables() tables {
	return tables{
		users:      make(map[string]user.User),
		centers:    make(map[string]center.Center),
		classrooms: make(map[string]classroom.Classroom),
		students:   make(map[string]student.Student),
		records:    make(map[string]record.DailyRecord),
		menus:      make(map[string]menu.Menu),
		news:       make(map[string]news.News),
		messages:   make(map[string]message.Message),
		photos:     make(map[string]photo.Photo),
	}
}

func (t tables) clone() tables {
	c := newTables()
	for k, v := range t.users {
		c.users[k] = v
	}
	for k, v := range t.centers {
		c.centers[k] = v
	}
	for k, v := range t.classrooms {
		v.TeacherIDs = append([]string(nil), v.TeacherIDs...)
		c.classrooms[k] = v
	}
	for k, v := range t.students {
		c.students[k] = v
	}
	for k, v := range t.records {
		c.records[k] = v
	}
	for k, v := range t.menus {
		c.menus[k] = v
	}
	for k, v := range t.news {
		c.news[k] = v
	}
	for k, v := range t.messages {
		c.messages[k] = v
	}
	for k, v := range t.photos {
		c.photos[k] = v
	}
	return c
}

func Open() (*DB, error) {
	return &DB{t: newTables()}, nil
}

// txExecutor marks the repository calls made inside InTx. The memory repositories never run SQL through it.
type txExecutor struct {
	sqlx.ExtContext
}

func inTx(exec []core.DBExecutor) bool {
	if len(exec) == 0 {
		return false
	}
	_, ok := exec[0].(txExecutor)
	return ok
}

// lock takes the tables for writing. Outside a transaction, the writer first waits for the running
// transaction to end so that a rollback only ever undoes the transaction's own writes.
func (db *DB) lock(exec []core.DBExecutor) (unlock func()) {
	tx := inTx(exec)
	if !tx {
		db.txMu.Lock()
	}
	db.mu.Lock()
	return func() {
		db.mu.Unlock()
		if !tx {
			db.txMu.Unlock()
		}
	}
}

// InTx runs fn with an executor the repositories recognize as transactional.
// When fn fails, the tables are restored to their state before the transaction.
func (db *DB) InTx(ctx context.Context, fn func(exec core.DBExecutor) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	db.txMu.Lock()
	defer db.txMu.Unlock()

	db.mu.RLock()
	backup := db.t.clone()
	db.mu.RUnlock()

	if err := fn(txExecutor{}); err != nil {
		db.mu.Lock()
		db.t = backup
		db.mu.Unlock()
		return err
	}
	return nil
}

func newID() string {
	return uuid.New().String()
}

// ordering helpers

// comparer compares the items at i and j on field. ok is false for unknown fields, which are ignored.
type comparer func(i, j int, field string) (c int, ok bool)

func orderBy(slice interface{}, ordering []core.DBOrdering, cmp comparer) {
	if len(ordering) == 0 {
		return
	}
	sort.SliceStable(slice, func(i, j int) bool {
		for _, ord := range ordering {
			c, ok := cmp(i, j, ord.Field)
			if !ok || c == 0 {
				continue
			}
			if ord.Ascending {
				return c < 0
			}
			return c > 0
		}
		return false
	})
}

func cmpStrings(a, b string) int {
	return strings.Compare(a, b)
}

func cmpInts(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func cmpBools(a, b bool) int {
	switch {
	case a == b:
		return 0
	case b:
		return -1
	}
	return 1
}

func cmpTimes(a, b time.Time) int {
	switch {
	case a.Before(b):
		return -1
	case a.After(b):
		return 1
	}
	return 0
}

// cmpNullTimes sorts missing times before any set time.
func cmpNullTimes(a, b null.Time) int {
	switch {
	case !a.Valid && !b.Valid:
		return 0
	case !a.Valid:
		return -1
	case !b.Valid:
		return 1
	}
	return cmpTimes(a.Time, b.Time)
}

func inRange(t, from, to time.Time) bool {
	if !from.IsZero() && t.Before(from) {
		return false
	}
	if !to.IsZero() && t.After(to) {
		return false
	}
	return true
}

func idSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
