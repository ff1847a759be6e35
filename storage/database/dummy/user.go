package dummydb

import (
	"context"
	"sort"

	"github.com/trezcool/agenda/core"
	"github.com/trezcool/agenda/core/user"
)

type userRepository struct {
	db *DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *DB) user.Repository {
	return &userRepository{db: db}
}

func (repo *userRepository) query() []user.User {
	users := make([]user.User, 0, len(repo.db.t.users))
	for _, u := range repo.db.t.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users
}

func (repo *userRepository) emailTaken(email string, excludedIDs map[string]bool) bool {
	for _, u := range repo.db.t.users {
		if u.Email == email && !excludedIDs[u.ID] {
			return true
		}
	}
	return false
}

func (repo *userRepository) CheckEmailUniqueness(_ context.Context, email string, excludedUsers []user.User, _ ...core.DBExecutor) error {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	excl := make(map[string]bool, len(excludedUsers))
	for _, u := range excludedUsers {
		excl[u.ID] = true
	}
	if repo.emailTaken(email, excl) {
		return user.ErrEmailExists
	}
	return nil
}

func (repo *userRepository) CreateUser(_ context.Context, usr user.User, exec ...core.DBExecutor) (user.User, error) {
	defer repo.db.lock(exec)()

	if repo.emailTaken(usr.Email, nil) {
		return user.User{}, user.ErrEmailExists
	}
	usr.ID = newID()
	repo.db.t.users[usr.ID] = usr
	return usr, nil
}

func (repo *userRepository) QueryUsers(_ context.Context, filter *user.QueryFilter, ordering []core.DBOrdering, _ ...core.DBExecutor) ([]user.User, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	users := repo.query()
	if filter != nil {
		var ids map[string]bool
		if len(filter.IDs) > 0 {
			ids = idSet(filter.IDs)
		}
		filtered := make([]user.User, 0, len(users))
		for _, u := range users {
			// users with search keyword matching Name or Email ?
			if filter.Search != "" && !core.ContainsFold(u.Name, filter.Search) && !core.ContainsFold(u.Email, filter.Search) {
				continue
			}
			// users with any of the specified roles
			if len(filter.Roles) > 0 && !hasRole(filter.Roles, u.Role) {
				continue
			}
			if ids != nil && !ids[u.ID] {
				continue
			}
			filtered = append(filtered, u)
		}
		users = filtered
	}

	orderBy(users, ordering, func(i, j int, field string) (int, bool) {
		a, b := users[i], users[j]
		switch field {
		case "name":
			return cmpStrings(a.Name, b.Name), true
		case "email":
			return cmpStrings(a.Email, b.Email), true
		case "role":
			return cmpStrings(string(a.Role), string(b.Role)), true
		case "created_at":
			return cmpTimes(a.CreatedAt, b.CreatedAt), true
		case "updated_at":
			return cmpTimes(a.UpdatedAt, b.UpdatedAt), true
		case "last_login":
			return cmpNullTimes(a.LastLogin, b.LastLogin), true
		}
		return 0, false
	})
	return users, nil
}

func hasRole(roles []user.Role, role user.Role) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

func (repo *userRepository) GetUser(_ context.Context, filter user.GetFilter, _ ...core.DBExecutor) (user.User, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	switch {
	case filter.ID != "":
		if usr, ok := repo.db.t.users[filter.ID]; ok {
			return usr, nil
		}
	case filter.Email != "":
		for _, usr := range repo.db.t.users {
			if usr.Email == filter.Email {
				return usr, nil
			}
		}
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) UpdateUser(_ context.Context, usr user.User, exec ...core.DBExecutor) (user.User, error) {
	defer repo.db.lock(exec)()

	orig, ok := repo.db.t.users[usr.ID]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	if repo.emailTaken(usr.Email, map[string]bool{usr.ID: true}) {
		return user.User{}, user.ErrEmailExists
	}
	usr.CreatedAt = orig.CreatedAt
	if usr.PasswordHash == nil {
		usr.PasswordHash = orig.PasswordHash
	}
	repo.db.t.users[usr.ID] = usr
	return usr, nil
}

func (repo *userRepository) DeleteUsers(_ context.Context, ids []string, exec ...core.DBExecutor) error {
	defer repo.db.lock(exec)()

	t := repo.db.t
	del := idSet(ids)
	for _, s := range t.students {
		if del[s.TutorID] {
			return user.ErrIsTutor
		}
	}

	for id, c := range t.classrooms {
		teachers := make([]string, 0, len(c.TeacherIDs))
		for _, tid := range c.TeacherIDs {
			if !del[tid] {
				teachers = append(teachers, tid)
			}
		}
		c.TeacherIDs = teachers
		t.classrooms[id] = c
	}
	for id, m := range t.messages {
		if del[m.SenderID] || del[m.RecipientID] {
			delete(t.messages, id)
		}
	}
	for id, p := range t.photos {
		if del[p.TeacherID] {
			delete(t.photos, id)
		}
	}
	for id, n := range t.news {
		if del[n.AuthorID] {
			delete(t.news, id)
		}
	}
	for id := range del {
		delete(t.users, id)
	}
	return nil
}
