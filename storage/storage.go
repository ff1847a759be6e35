package storage

import (
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/agenda/core"
	"github.com/trezcool/agenda/core/center"
	"github.com/trezcool/agenda/core/classroom"
	"github.com/trezcool/agenda/core/menu"
	"github.com/trezcool/agenda/core/message"
	"github.com/trezcool/agenda/core/news"
	"github.com/trezcool/agenda/core/photo"
	"github.com/trezcool/agenda/core/record"
	"github.com/trezcool/agenda/core/sample"
	"github.com/trezcool/agenda/core/student"
	"github.com/trezcool/agenda/core/user"
	"github.com/trezcool/agenda/storage/database"
	dummydb "github.com/trezcool/agenda/storage/database/dummy"
	sqlxrepos "github.com/trezcool/agenda/storage/database/sqlx"
)

// Store groups the repositories of one engine around a single handle.
type Store struct {
	Tx         core.Transactor
	Centers    center.Repository
	Classrooms classroom.Repository
	Students   student.Repository
	Users      user.Repository
	Records    record.Repository
	Menus      menu.Repository
	News       news.Repository
	Messages   message.Repository
	Photos     photo.Repository

	// DB is nil for the memory engine.
	DB *sqlx.DB
}

// Open builds the store selected by conf.Database.Engine.
// With postgres, the database is created when missing and migrated up when migrate is true.
func Open(conf *core.Config, migrate bool) (*Store, error) {
	switch conf.Database.Engine {
	case "memory":
		db, err := dummydb.Open()
		if err != nil {
			return nil, errors.Wrap(err, "opening memory store")
		}
		return NewMemoryStore(db), nil

	case "postgres":
		if err := database.CreateIfNotExist(conf); err != nil {
			return nil, err
		}
		db, err := database.Open(conf)
		if err != nil {
			return nil, err
		}
		if migrate {
			if err = database.Migrate(db.DB); err != nil {
				_ = db.Close()
				return nil, err
			}
		}
		return NewSQLStore(db), nil

	default:
		return nil, errors.Errorf("unknown database engine %q", conf.Database.Engine)
	}
}

func NewMemoryStore(db *dummydb.DB) *Store {
	return &Store{
		Tx:         db,
		Centers:    dummydb.NewCenterRepository(db),
		Classrooms: dummydb.NewClassroomRepository(db),
		Students:   dummydb.NewStudentRepository(db),
		Users:      dummydb.NewUserRepository(db),
		Records:    dummydb.NewRecordRepository(db),
		Menus:      dummydb.NewMenuRepository(db),
		News:       dummydb.NewNewsRepository(db),
		Messages:   dummydb.NewMessageRepository(db),
		Photos:     dummydb.NewPhotoRepository(db),
	}
}

func NewSQLStore(db *sqlx.DB) *Store {
	return &Store{
		Tx:         sqlxrepos.NewTransactor(db),
		Centers:    sqlxrepos.NewCenterRepository(db),
		Classrooms: sqlxrepos.NewClassroomRepository(db),
		Students:   sqlxrepos.NewStudentRepository(db),
		Users:      sqlxrepos.NewUserRepository(db),
		Records:    sqlxrepos.NewRecordRepository(db),
		Menus:      sqlxrepos.NewMenuRepository(db),
		News:       sqlxrepos.NewNewsRepository(db),
		Messages:   sqlxrepos.NewMessageRepository(db),
		Photos:     sqlxrepos.NewPhotoRepository(db),
		DB:         db,
	}
}

// SampleRepositories returns the subset of repositories the sample populator writes to.
func (s *Store) SampleRepositories() sample.Repositories {
	return sample.Repositories{
		Centers:    s.Centers,
		Users:      s.Users,
		Classrooms: s.Classrooms,
		Students:   s.Students,
		Records:    s.Records,
		Menus:      s.Menus,
		News:       s.News,
		Photos:     s.Photos,
	}
}

func (s *Store) Close() error {
	if s.DB == nil {
		return nil
	}
	return s.DB.Close()
}
