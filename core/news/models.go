package news

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/agenda/core"
)

// News is an announcement. News without a center is shown in every center.
type News struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Content     string      `json:"content"`
	PublishDate time.Time   `json:"publish_date"`
	AuthorID    string      `json:"author_id"`
	CenterID    null.String `json:"center_id"`
	CreatedAt   time.Time   `json:"created_at"` // UTC
	UpdatedAt   time.Time   `json:"updated_at"` // UTC
}

type NewNews struct {
	Title       string      `json:"title" validate:"required,max=255"`
	Content     string      `json:"content" validate:"required"`
	PublishDate time.Time   `json:"publish_date"` // defaults to now
	CenterID    null.String `json:"center_id"`
}

func (nn *NewNews) Validate(ctx context.Context, validate *validator.Validate, svc *Service) error {
	nn.Title = core.CleanString(nn.Title)
	nn.Content = core.CleanString(nn.Content)
	if nn.CenterID.Valid && core.CleanString(nn.CenterID.String) == "" {
		nn.CenterID = null.String{}
	}

	if err := validate.Struct(nn); err != nil {
		return err
	}
	return svc.checkCenter(ctx, nn.CenterID)
}

// UpdateNews defines what information may be provided to modify existing News.
// Blank fields keep their current value; an empty center_id makes the news general.
type UpdateNews struct {
	Title       string    `json:"title" validate:"required,max=255"`
	Content     string    `json:"content" validate:"required"`
	PublishDate time.Time `json:"publish_date"`
	CenterID    *string   `json:"center_id"`
}

func (un *UpdateNews) Validate(ctx context.Context, orig News, validate *validator.Validate, svc *Service) error {
	if title := core.CleanString(un.Title); title != "" {
		un.Title = title
	} else {
		un.Title = orig.Title
	}
	if content := core.CleanString(un.Content); content != "" {
		un.Content = content
	} else {
		un.Content = orig.Content
	}
	if un.PublishDate.IsZero() {
		un.PublishDate = orig.PublishDate
	}

	if err := validate.Struct(un); err != nil {
		return err
	}
	return svc.checkCenter(ctx, un.center(orig))
}

func (un UpdateNews) center(orig News) null.String {
	switch {
	case un.CenterID == nil:
		return orig.CenterID
	case core.CleanString(*un.CenterID) == "":
		return null.String{}
	default:
		return null.StringFrom(core.CleanString(*un.CenterID))
	}
}

type QueryFilter struct {
	CenterID string // news of the center plus general news
	AuthorID string
	Search   string // case-insensitive match on Title or Content
}
