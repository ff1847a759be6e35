package echoapi

import (
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/agenda/core"
)

var (
	orderingParam = "ordering"
	dateLayout    = "2006-01-02"

	errInvalidDate = errors.New("invalid date, expected YYYY-MM-DD or RFC3339")
)

type Ordering struct {
	Orderings []core.DBOrdering
}

func (ord *Ordering) Bind(ctx echo.Context) {
	data := ctx.QueryParams()
	if len(data) == 0 {
		return
	}
	val, ok := data[orderingParam]
	if !ok || len(val) == 0 || val[0] == "" {
		return
	}

	for _, field := range strings.Split(val[0], ",") {
		field = strings.TrimSpace(field)
		descending := strings.HasPrefix(field, "-")
		if descending {
			field = field[1:] // drop "-"
		}
		if field == "" {
			continue
		}
		ord.Orderings = append(ord.Orderings, core.DBOrdering{Field: field, Ascending: !descending})
	}
}

// DateRange binds the `date_from` & `date_to` query params.
type DateRange struct {
	From time.Time
	To   time.Time
}

func (dr *DateRange) Bind(ctx echo.Context) error {
	var err error
	if dr.From, err = parseDate("date_from", ctx.QueryParam("date_from")); err != nil {
		return err
	}
	dr.To, err = parseDate("date_to", ctx.QueryParam("date_to"))
	return err
}

// parseDate accepts a calendar day or an RFC3339 timestamp. An empty value gives the zero time.
func parseDate(field, val string) (time.Time, error) {
	val = strings.TrimSpace(val)
	if val == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(dateLayout, val); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, val)
	if err != nil {
		return time.Time{}, core.NewFieldValidationError(field, errInvalidDate)
	}
	return t.UTC(), nil
}

type (
	LoginRequest struct {
		Email    string `json:"email" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	TokenResponse struct {
		Token string `json:"token"`
	}

	DestroyMultipleRequest struct {
		IDs []string `query:"id"`
	}

	CountResponse struct {
		Count int `json:"count"`
	}
)
