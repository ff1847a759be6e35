// Package sample fills an empty store with a demo nursery network.
package sample

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/kat-co/vala"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/agenda/core"
	"github.com/trezcool/agenda/core/center"
	"github.com/trezcool/agenda/core/classroom"
	"github.com/trezcool/agenda/core/menu"
	"github.com/trezcool/agenda/core/news"
	"github.com/trezcool/agenda/core/photo"
	"github.com/trezcool/agenda/core/record"
	"github.com/trezcool/agenda/core/student"
	"github.com/trezcool/agenda/core/user"
)

const (
	course          = "2023/2024"
	capacity        = 25
	fillersPerRoom  = 24
	recordsPerChild = 20
)

var ErrStoreNotEmpty = errors.New("the store already contains data")

type (
	Repositories struct {
		Centers    center.Repository
		Users      user.Repository
		Classrooms classroom.Repository
		Students   student.Repository
		Records    record.Repository
		Menus      menu.Repository
		News       news.Repository
		Photos     photo.Repository
	}

	// Summary counts what Populate created.
	Summary struct {
		Centers    int
		Users      int
		Classrooms int
		Students   int
		Records    int
		Menus      int
		News       int
		Photos     int
	}

	Populator struct {
		tx     core.Transactor
		repos  Repositories
		logger core.Logger
		rnd    *rand.Rand
		now    func() time.Time
	}

	// populate holds the state of one Populate run.
	populate struct {
		*Populator
		ctx     context.Context
		exec    core.DBExecutor
		now     time.Time
		summary Summary
	}

	userSeed struct {
		key, name, email, password string
		role                       user.Role
	}

	roomSeed struct {
		center   int
		name     string
		minAge   int
		maxAge   int
		image    string
		teachers []string // userSeed keys
	}

	childSeed struct {
		name, birth, image, room string
	}
)

var (
	centerSeeds = []center.Center{
		{
			Name:        "EDAI RIO DO POZO",
			Phone:       "881 934 028",
			Location:    "Avda. Gonzalo Navarro, 1 - Narón 15570 (A Coruña)",
			Description: "Centro de primer ciclo de Educación Infantil.",
		},
		{
			Name:        "EDAI O ALTO",
			Phone:       "881 936 079",
			Location:    "Garda, 2 P-6 Bajo - 15570 Narón (A Coruña)",
			Description: "Centro de primer ciclo de Educación Infantil.",
		},
	}

	userSeeds = []userSeed{
		{key: "admin", name: "Administradora General", email: "admin@edai.com", password: "admin123", role: user.RoleAdmin},
		{key: "general", name: "Profesora General", email: "profesora.general@edai.com", password: "profesora123", role: user.RoleTeacher},
		{key: "tartarugas", name: "Profesora Tartarugas", email: "profesora.tartarugas@edai.com", password: "profesora123", role: user.RoleTeacher},
		{key: "leons", name: "Profesora Leons", email: "profesora.leons@edai.com", password: "profesora123", role: user.RoleTeacher},
		{key: "osos", name: "Profesora Osos", email: "profesora.osos@edai.com", password: "profesora123", role: user.RoleTeacher},
		{key: "xirafas", name: "Profesora Xirafas", email: "profesora.xirafas@edai.com", password: "profesora123", role: user.RoleTeacher},
		{key: "tutor", name: "Tutora General", email: "tutora@edai.com", password: "tutora123", role: user.RoleTutor},
		{key: "tutor1", name: "Juan Antonio Sánchez Carrillo", email: "jasanchez@edai.com", password: "jasanchez123", role: user.RoleTutor},
	}

	roomSeeds = []roomSeed{
		{center: 0, name: "As Tartarugas", minAge: 0, maxAge: 1, image: "aula-tartarugas.png", teachers: []string{"tartarugas", "general", "admin"}},
		{center: 0, name: "Os Leóns", minAge: 1, maxAge: 2, image: "aula-leons.png", teachers: []string{"leons", "general", "admin"}},
		{center: 0, name: "Os Osos", minAge: 2, maxAge: 3, image: "aula-osos.png", teachers: []string{"osos", "general", "admin"}},
		{center: 0, name: "As Xirafas", minAge: 2, maxAge: 3, image: "aula-xirafas.png", teachers: []string{"xirafas", "general", "admin"}},
		{center: 1, name: "As Tartarugas", minAge: 0, maxAge: 1, image: "aula-tartarugas-2.png", teachers: []string{"admin"}},
		{center: 1, name: "Os Leóns", minAge: 1, maxAge: 2, image: "aula-leons-2.png", teachers: []string{"admin"}},
		{center: 1, name: "As Bolboretas", minAge: 1, maxAge: 2, image: "aula-bolboretas.png", teachers: []string{"admin"}},
		{center: 1, name: "As Xoaniñas", minAge: 1, maxAge: 2, image: "aula-xoaninas.png", teachers: []string{"admin"}},
		{center: 1, name: "As Xirafas", minAge: 2, maxAge: 3, image: "aula-xirafas-2.png", teachers: []string{"admin"}},
		{center: 1, name: "Os Ourizos", minAge: 2, maxAge: 3, image: "aula-ourizos.png", teachers: []string{"admin"}},
	}

	// named children of tutor1, all in the first center; room is the index key "<center>/<name>"
	childSeeds = []childSeed{
		{name: "Emma Sánchez Nuñez", birth: "2021-08-27", image: "emma.png", room: "0/As Xirafas"},
		{name: "Abraham Sánchez Nuñez", birth: "2022-08-27", image: "abraham.png", room: "0/Os Leóns"},
		{name: "Daniela Sánchez Nuñez", birth: "2024-08-27", image: "daniela.png", room: "0/As Tartarugas"},
	}

	photoSeeds = []string{"foto1.png", "foto2.png", "foto3.png", "foto4.png"}
)

func NewPopulator(tx core.Transactor, repos Repositories, logger core.Logger) *Populator {
	vala.BeginValidation().Validate(
		vala.IsNotNil(tx, "tx"),
		vala.IsNotNil(repos.Centers, "repos.Centers"),
		vala.IsNotNil(repos.Users, "repos.Users"),
		vala.IsNotNil(repos.Classrooms, "repos.Classrooms"),
		vala.IsNotNil(repos.Students, "repos.Students"),
		vala.IsNotNil(repos.Records, "repos.Records"),
		vala.IsNotNil(repos.Menus, "repos.Menus"),
		vala.IsNotNil(repos.News, "repos.News"),
		vala.IsNotNil(repos.Photos, "repos.Photos"),
		vala.IsNotNil(logger, "logger"),
	).CheckAndPanic()

	return &Populator{
		tx:     tx,
		repos:  repos,
		logger: logger,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		now:    time.Now,
	}
}

// Populate seeds the store in a single transaction. It fails with ErrStoreNotEmpty when a center already exists.
func (p *Populator) Populate(ctx context.Context) (Summary, error) {
	run := &populate{Populator: p, ctx: ctx, now: p.now().UTC()}

	err := p.tx.InTx(ctx, func(exec core.DBExecutor) error {
		run.exec = exec

		n, err := p.repos.Centers.CountCenters(ctx, exec)
		if err != nil {
			return errors.Wrap(err, "counting centers")
		}
		if n > 0 {
			return ErrStoreNotEmpty
		}
		return run.all()
	})
	if err != nil {
		return Summary{}, err
	}

	p.logger.Info(fmt.Sprintf("sample data created: %+v", run.summary))
	return run.summary, nil
}

func (r *populate) all() error {
	centers, err := r.centers()
	if err != nil {
		return err
	}
	users, err := r.users()
	if err != nil {
		return err
	}
	rooms, err := r.classrooms(centers, users)
	if err != nil {
		return err
	}
	students, err := r.students(centers, users, rooms)
	if err != nil {
		return err
	}
	if err = r.news(centers[0], users["admin"]); err != nil {
		return err
	}
	if err = r.menus(); err != nil {
		return err
	}
	if err = r.records(students); err != nil {
		return err
	}
	return r.photos(users["general"])
}

func (r *populate) centers() ([]center.Center, error) {
	centers := make([]center.Center, 0, len(centerSeeds))
	for _, c := range centerSeeds {
		c.CreatedAt, c.UpdatedAt = r.now, r.now
		c, err := r.repos.Centers.CreateCenter(r.ctx, c, r.exec)
		if err != nil {
			return nil, errors.Wrap(err, "creating center")
		}
		centers = append(centers, c)
	}
	r.summary.Centers = len(centers)
	return centers, nil
}

func (r *populate) users() (map[string]user.User, error) {
	users := make(map[string]user.User, len(userSeeds))
	for _, s := range userSeeds {
		usr := user.User{Name: s.name, Email: s.email, Role: s.role, CreatedAt: r.now, UpdatedAt: r.now}
		if err := usr.SetPassword(s.password); err != nil {
			return nil, errors.Wrap(err, "setting password")
		}
		usr, err := r.repos.Users.CreateUser(r.ctx, usr, r.exec)
		if err != nil {
			return nil, errors.Wrapf(err, "creating user %s", s.email)
		}
		users[s.key] = usr
	}
	r.summary.Users = len(users)
	return users, nil
}

func roomKey(centerIdx int, name string) string {
	return fmt.Sprintf("%d/%s", centerIdx, name)
}

func (r *populate) classrooms(centers []center.Center, users map[string]user.User) (map[string]classroom.Classroom, error) {
	rooms := make(map[string]classroom.Classroom, len(roomSeeds))
	for _, s := range roomSeeds {
		teacherIDs := make([]string, 0, len(s.teachers))
		for _, key := range s.teachers {
			teacherIDs = append(teacherIDs, users[key].ID)
		}
		c, err := r.repos.Classrooms.CreateClassroom(r.ctx, classroom.Classroom{
			CenterID:    centers[s.center].ID,
			Name:        s.name,
			Course:      course,
			MinAge:      s.minAge,
			MaxAge:      s.maxAge,
			MaxCapacity: capacity,
			Image:       s.image,
			TeacherIDs:  teacherIDs,
			CreatedAt:   r.now,
			UpdatedAt:   r.now,
		}, r.exec)
		if err != nil {
			return nil, errors.Wrap(err, "creating classroom")
		}
		rooms[roomKey(s.center, s.name)] = c
	}
	r.summary.Classrooms = len(rooms)
	return rooms, nil
}

func (r *populate) students(centers []center.Center, users map[string]user.User, rooms map[string]classroom.Classroom) ([]student.Student, error) {
	var students []student.Student
	create := func(s student.Student) error {
		s.CreatedAt, s.UpdatedAt = r.now, r.now
		s, err := r.repos.Students.CreateStudent(r.ctx, s, r.exec)
		if err != nil {
			return errors.Wrap(err, "creating student")
		}
		students = append(students, s)
		return nil
	}

	for _, s := range childSeeds {
		birth, err := time.Parse("2006-01-02", s.birth)
		if err != nil {
			return nil, errors.Wrap(err, "parsing birth date")
		}
		err = create(student.Student{
			Name:        s.name,
			BirthDate:   null.TimeFrom(birth),
			Image:       s.image,
			CenterID:    centers[0].ID,
			ClassroomID: null.StringFrom(rooms[s.room].ID),
			TutorID:     users["tutor1"].ID,
		})
		if err != nil {
			return nil, err
		}
	}

	for _, s := range roomSeeds {
		room := rooms[roomKey(s.center, s.name)]
		for i := 1; i <= fillersPerRoom; i++ {
			year := r.now.Year() - (s.minAge + r.rnd.Intn(s.maxAge-s.minAge+1))
			birth := time.Date(year, time.January, 1+r.rnd.Intn(28), 0, 0, 0, 0, time.UTC)
			err := create(student.Student{
				Name:        fmt.Sprintf("Alumno %d de %s", i, s.name),
				BirthDate:   null.TimeFrom(birth),
				CenterID:    room.CenterID,
				ClassroomID: null.StringFrom(room.ID),
				TutorID:     users["tutor"].ID,
			})
			if err != nil {
				return nil, err
			}
		}
	}

	r.summary.Students = len(students)
	return students, nil
}

func (r *populate) news(c center.Center, author user.User) error {
	_, err := r.repos.News.CreateNews(r.ctx, news.News{
		Title:       "Nueva Actividad Escolar",
		Content:     "Se realizará una excursión al parque el próximo viernes.",
		PublishDate: r.now,
		AuthorID:    author.ID,
		CenterID:    null.StringFrom(c.ID),
		CreatedAt:   r.now,
		UpdatedAt:   r.now,
	}, r.exec)
	if err != nil {
		return errors.Wrap(err, "creating news")
	}
	r.summary.News = 1
	return nil
}

func (r *populate) pick(list []string) string {
	return list[r.rnd.Intn(len(list))]
}

// menus creates one menu per day of the current month.
func (r *populate) menus() error {
	year, month, _ := r.now.Date()
	days := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
	for d := 1; d <= days; d++ {
		_, err := r.repos.Menus.CreateMenu(r.ctx, menu.Menu{
			Date:         time.Date(year, month, d, 0, 0, 0, 0, time.UTC),
			Breakfast:    r.pick(breakfasts),
			Snack:        r.pick(snacks),
			FirstCourse:  r.pick(firstCourses),
			SecondCourse: r.pick(secondCourses),
			Dessert:      r.pick(desserts),
			CreatedAt:    r.now,
			UpdatedAt:    r.now,
		}, r.exec)
		if err != nil {
			return errors.Wrap(err, "creating menu")
		}
	}
	r.summary.Menus = days
	return nil
}

// records creates a daily record per student for today and the previous days.
func (r *populate) records(students []student.Student) error {
	rs := make([]record.DailyRecord, 0, len(students)*recordsPerChild)
	for _, s := range students {
		for i := 0; i < recordsPerChild; i++ {
			rs = append(rs, record.DailyRecord{
				StudentID:        s.ID,
				Date:             core.Day(r.now.AddDate(0, 0, -i)),
				Breakfast:        r.rnd.Intn(2) == 0,
				Snack:            r.rnd.Intn(2) == 0,
				FirstCourse:      r.rnd.Intn(2) == 0,
				SecondCourse:     r.rnd.Intn(2) == 0,
				Dessert:          r.rnd.Intn(2) == 0,
				WipesRemaining:   r.rnd.Intn(101),
				DiapersRemaining: r.rnd.Intn(101),
				CreatedAt:        r.now,
				UpdatedAt:        r.now,
			})
		}
	}
	if err := r.repos.Records.CreateRecords(r.ctx, rs, r.exec); err != nil {
		return errors.Wrap(err, "creating records")
	}
	r.summary.Records = len(rs)
	return nil
}

func (r *populate) photos(teacher user.User) error {
	for _, img := range photoSeeds {
		_, err := r.repos.Photos.CreatePhoto(r.ctx, photo.Photo{
			Date:      r.now,
			Image:     img,
			TeacherID: teacher.ID,
			CreatedAt: r.now,
		}, r.exec)
		if err != nil {
			return errors.Wrap(err, "creating photo")
		}
	}
	r.summary.Photos = len(photoSeeds)
	return nil
}
