package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/agenda/core"
	"github.com/trezcool/agenda/core/news"
)

const newsColumns = `id, title, content, publish_date, author_id, center_id, created_at, updated_at`

var newsOrderColumns = map[string]string{
	"title":        "title",
	"publish_date": "publish_date",
	"created_at":   "created_at",
	"updated_at":   "updated_at",
}

type newsRow struct {
	ID          string      `db:"id"`
	Title       string      `db:"title"`
	Content     string      `db:"content"`
	PublishDate time.Time   `db:"publish_date"`
	AuthorID    string      `db:"author_id"`
	CenterID    null.String `db:"center_id"`
	CreatedAt   time.Time   `db:"created_at"`
	UpdatedAt   time.Time   `db:"updated_at"`
}

func toNewsRow(n news.News) newsRow {
	return newsRow{
		ID:          n.ID,
		Title:       n.Title,
		Content:     n.Content,
		PublishDate: n.PublishDate.UTC(),
		AuthorID:    n.AuthorID,
		CenterID:    n.CenterID,
		CreatedAt:   n.CreatedAt.UTC(),
		UpdatedAt:   n.UpdatedAt.UTC(),
	}
}

func (r newsRow) news() news.News {
	return news.News{
		ID:          r.ID,
		Title:       r.Title,
		Content:     r.Content,
		PublishDate: r.PublishDate.UTC(),
		AuthorID:    r.AuthorID,
		CenterID:    r.CenterID,
		CreatedAt:   r.CreatedAt.UTC(),
		UpdatedAt:   r.UpdatedAt.UTC(),
	}
}

type newsRepository struct {
	repository
}

var _ news.Repository = (*newsRepository)(nil) // interface compliance check

func NewNewsRepository(exec core.DBExecutor) *newsRepository {
	return &newsRepository{repository{exec: exec}}
}

func (repo newsRepository) CreateNews(ctx context.Context, n news.News, exec ...core.DBExecutor) (news.News, error) {
	n.ID = newID()
	q := `INSERT INTO news (` + newsColumns + `)
		VALUES (:id, :title, :content, :publish_date, :author_id, :center_id, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, repo.getExec(exec), q, toNewsRow(n)); err != nil {
		return news.News{}, errors.Wrap(err, "inserting news")
	}
	return n, nil
}

func (repo newsRepository) QueryNews(ctx context.Context, filter *news.QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]news.News, error) {
	c := new(conditions)
	if filter != nil {
		if !validRefs(filter.AuthorID) {
			return []news.News{}, nil
		}
		if filter.CenterID != "" {
			if validID(filter.CenterID) {
				c.add("center_id = ?::uuid OR center_id IS NULL", filter.CenterID)
			} else {
				c.add("center_id IS NULL")
			}
		}
		if filter.AuthorID != "" {
			c.add("author_id = ?::uuid", filter.AuthorID)
		}
		if filter.Search != "" {
			val := likePattern(filter.Search)
			c.add("title ILIKE ? OR content ILIKE ?", val, val)
		}
	}

	var rows []newsRow
	q := `SELECT ` + newsColumns + ` FROM news`
	if err := selectRows(ctx, repo.getExec(exec), &rows, q, c, orderBy(ordering, newsOrderColumns)); err != nil {
		return nil, errors.Wrap(err, "querying news")
	}

	list := make([]news.News, 0, len(rows))
	for _, r := range rows {
		list = append(list, r.news())
	}
	return list, nil
}

func (repo newsRepository) GetNews(ctx context.Context, id string, exec ...core.DBExecutor) (news.News, error) {
	if !validID(id) {
		return news.News{}, news.ErrNotFound
	}
	var row newsRow
	q := `SELECT ` + newsColumns + ` FROM news WHERE id = $1`
	if err := sqlx.GetContext(ctx, repo.getExec(exec), &row, q, id); err != nil {
		return news.News{}, trapNoRowsErr(err, news.ErrNotFound, "finding news")
	}
	return row.news(), nil
}

func (repo newsRepository) UpdateNews(ctx context.Context, n news.News, exec ...core.DBExecutor) (news.News, error) {
	if !validID(n.ID) {
		return news.News{}, news.ErrNotFound
	}
	q := `UPDATE news SET
		title = :title, content = :content, publish_date = :publish_date, center_id = :center_id, updated_at = :updated_at
		WHERE id = :id`
	res, err := sqlx.NamedExecContext(ctx, repo.getExec(exec), q, toNewsRow(n))
	if err != nil {
		return news.News{}, errors.Wrap(err, "updating news")
	}
	if err = checkAffected(res, news.ErrNotFound); err != nil {
		return news.News{}, err
	}
	return n, nil
}

func (repo newsRepository) DeleteNews(ctx context.Context, ids []string, exec ...core.DBExecutor) error {
	q := `DELETE FROM news WHERE id = ANY($1::uuid[])`
	if _, err := repo.getExec(exec).ExecContext(ctx, q, pq.Array(validIDs(ids))); err != nil {
		return errors.Wrap(err, "deleting news")
	}
	return nil
}
