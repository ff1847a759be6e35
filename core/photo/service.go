package photo

import (
	"context"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/kat-co/vala"
	"github.com/pkg/errors"

	"github.com/trezcool/agenda/core"
	"github.com/trezcool/agenda/core/user"
)

var (
	ErrNotFound         = errors.New("photo not found")
	ErrNotStaff         = errors.New("only teachers and administrators can upload photos")
	ErrUnsupportedImage = errors.New("only .jpg, .jpeg and .png images are supported")
)

var imageExts = []string{".jpg", ".jpeg", ".png"}

type (
	Repository interface {
		CreatePhoto(ctx context.Context, p Photo, exec ...core.DBExecutor) (Photo, error)
		QueryPhotos(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]Photo, error)
		GetPhoto(ctx context.Context, id string, exec ...core.DBExecutor) (Photo, error)
		DeletePhotos(ctx context.Context, ids []string, exec ...core.DBExecutor) error
	}

	Service struct {
		repo   Repository
		assets core.AssetStore
	}
)

func NewService(repo Repository, assets core.AssetStore) *Service {
	vala.BeginValidation().Validate(
		vala.IsNotNil(repo, "repo"),
		vala.IsNotNil(assets, "assets"),
	).CheckAndPanic()

	return &Service{repo: repo, assets: assets}
}

// Upload stores the image read from r and records it as a photo taken by teacher.
// filename is only used for its extension.
func (svc *Service) Upload(ctx context.Context, teacher user.User, filename string, r io.Reader) (Photo, error) {
	if !teacher.IsStaff() {
		return Photo{}, ErrNotStaff
	}
	ext := strings.ToLower(filepath.Ext(filename))
	if !core.ContainsString(imageExts, ext) {
		return Photo{}, core.NewFieldValidationError("image", ErrUnsupportedImage)
	}

	name, err := svc.assets.Save(ext, r)
	if err != nil {
		return Photo{}, errors.Wrap(err, "saving image")
	}
	return svc.Create(ctx, teacher, NewPhoto{Image: name})
}

// Create records a photo for an image that already exists in the asset store.
func (svc *Service) Create(ctx context.Context, teacher user.User, np NewPhoto) (Photo, error) {
	if !teacher.IsStaff() {
		return Photo{}, ErrNotStaff
	}
	now := time.Now().UTC()
	date := np.Date.UTC()
	if np.Date.IsZero() {
		date = now
	}

	p, err := svc.repo.CreatePhoto(ctx, Photo{
		Date:      date,
		Image:     np.Image,
		TeacherID: teacher.ID,
		CreatedAt: now,
	})
	if err != nil {
		return Photo{}, errors.Wrap(err, "creating photo")
	}
	return p, nil
}

func (svc *Service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Photo, error) {
	if len(ordering) == 0 {
		ordering = []core.DBOrdering{{Field: "date"}} // newest first
	}
	return svc.repo.QueryPhotos(ctx, filter, ordering)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Photo, error) {
	return svc.repo.GetPhoto(ctx, id)
}

func (svc *Service) Delete(ctx context.Context, ids ...string) error {
	return svc.repo.DeletePhotos(ctx, ids)
}
