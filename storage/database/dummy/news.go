package dummydb

import (
	"context"
	"sort"

	"github.com/trezcool/agenda/core"
	"github.com/trezcool/agenda/core/news"
)

type newsRepository struct {
	db *DB
}

var _ news.Repository = (*newsRepository)(nil) // interface compliance check

func NewNewsRepository(db *DB) news.Repository {
	return &newsRepository{db: db}
}

func (repo *newsRepository) CreateNews(_ context.Context, n news.News, exec ...core.DBExecutor) (news.News, error) {
	defer repo.db.lock(exec)()

	n.ID = newID()
	repo.db.t.news[n.ID] = n
	return n, nil
}

func (repo *newsRepository) QueryNews(_ context.Context, filter *news.QueryFilter, ordering []core.DBOrdering, _ ...core.DBExecutor) ([]news.News, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	items := make([]news.News, 0)
	for _, n := range repo.db.t.news {
		if filter != nil {
			// news of the center, or general news
			if filter.CenterID != "" && n.CenterID.Valid && n.CenterID.String != filter.CenterID {
				continue
			}
			if filter.AuthorID != "" && n.AuthorID != filter.AuthorID {
				continue
			}
			if filter.Search != "" && !core.ContainsFold(n.Title, filter.Search) && !core.ContainsFold(n.Content, filter.Search) {
				continue
			}
		}
		items = append(items, n)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })

	orderBy(items, ordering, func(i, j int, field string) (int, bool) {
		a, b := items[i], items[j]
		switch field {
		case "title":
			return cmpStrings(a.Title, b.Title), true
		case "publish_date":
			return cmpTimes(a.PublishDate, b.PublishDate), true
		case "created_at":
			return cmpTimes(a.CreatedAt, b.CreatedAt), true
		case "updated_at":
			return cmpTimes(a.UpdatedAt, b.UpdatedAt), true
		}
		return 0, false
	})
	return items, nil
}

func (repo *newsRepository) GetNews(_ context.Context, id string, _ ...core.DBExecutor) (news.News, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if n, ok := repo.db.t.news[id]; ok {
		return n, nil
	}
	return news.News{}, news.ErrNotFound
}

func (repo *newsRepository) UpdateNews(_ context.Context, n news.News, exec ...core.DBExecutor) (news.News, error) {
	defer repo.db.lock(exec)()

	orig, ok := repo.db.t.news[n.ID]
	if !ok {
		return news.News{}, news.ErrNotFound
	}
	n.CreatedAt = orig.CreatedAt
	n.AuthorID = orig.AuthorID
	repo.db.t.news[n.ID] = n
	return n, nil
}

func (repo *newsRepository) DeleteNews(_ context.Context, ids []string, exec ...core.DBExecutor) error {
	defer repo.db.lock(exec)()

	for _, id := range ids {
		delete(repo.db.t.news, id)
	}
	return nil
}
