package post

import (
	"context"
	"fmt"
	"math"
	"path"
	"strings"

	"gamingrealm-backend/src/clients"
	"gamingrealm-backend/src/internal/cache"
	"gamingrealm-backend/src/internal/config"
	"gamingrealm-backend/src/internal/models"
	"gamingrealm-backend/src/internal/pagination"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var allowedMimeTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
}

// AuthorResolver resolves a user id to a username at post/comment creation
// time. The user repository satisfies it.
type AuthorResolver interface {
	GetUsernameByID(ctx context.Context, id string) (string, error)
}

// Upload is one in-memory image file received from a multipart form.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

type PostDetails struct {
	Post      Post                      `json:"post"`
	Media     []Media                   `json:"media"`
	Comments  *pagination.Page[Comment] `json:"comments"`
	AvgRating int                       `json:"avg_rating"`
}

type Service interface {
	Create(ctx context.Context, authorID, title, textContent string, tags []string, images []Upload) (*CreatePostResponse, error)
	GetPosts(ctx context.Context, take int, cursor, authorID, tag string) (*pagination.Page[Post], error)
	Search(ctx context.Context, query string) ([]Post, error)
	GetDetails(ctx context.Context, id string) (*PostDetails, error)
	Delete(ctx context.Context, id, authorID string) error

	CreateComment(ctx context.Context, postID, authorID, content string) (*Comment, error)
	GetComments(ctx context.Context, postID string, take int, cursor string) (*pagination.Page[Comment], error)
	DeleteComment(ctx context.Context, commentID, authorID string) error

	RatePost(ctx context.Context, postID, userID string, value int) error
	ListTags(ctx context.Context) ([]Tag, error)
}

type postService struct {
	repo    Repository
	authors AuthorResolver
	storage *clients.StorageClient
	cache   cache.Service
	cfg     *config.Configuration
}

func NewPostService(
	repo Repository,
	authors AuthorResolver,
	storage *clients.StorageClient,
	cacheService cache.Service,
	cfg *config.Configuration,
) Service {
	return &postService{
		repo:    repo,
		authors: authors,
		storage: storage,
		cache:   cacheService,
		cfg:     cfg,
	}
}

func (s *postService) validateUpload(u Upload) error {
	maxBytes := s.cfg.Storage.MaxUploadMB * 1 << 20
	if len(u.Data) > maxBytes {
		return fmt.Errorf("%w: '%s'", models.ErrFileTooLarge, u.Filename)
	}
	if !allowedMimeTypes[u.ContentType] {
		return fmt.Errorf("%w: '%s'", models.ErrInvalidFileType, u.Filename)
	}
	return nil
}

func (s *postService) Create(ctx context.Context, authorID, title, textContent string, tags []string, images []Upload) (*CreatePostResponse, error) {
	if strings.TrimSpace(title) == "" {
		return nil, fmt.Errorf("title must not be empty")
	}
	for _, img := range images {
		if err := s.validateUpload(img); err != nil {
			return nil, err
		}
	}

	username, err := s.authors.GetUsernameByID(ctx, authorID)
	if err != nil {
		return nil, err
	}

	inserted, err := s.repo.Insert(ctx, &Post{
		AuthorID:       authorID,
		AuthorUsername: username,
		Title:          title,
		TextContent:    textContent,
		Tags:           tags,
	})
	if err != nil {
		return nil, err
	}

	response := &CreatePostResponse{Post: *inserted}

	if len(images) > 0 {
		urls, err := s.uploadImages(ctx, authorID, inserted.ID.Hex(), images)
		if err != nil {
			return nil, err
		}

		media := make([]Media, len(urls))
		for i, url := range urls {
			media[i] = Media{PostID: inserted.ID.Hex(), ObjectURL: url}
		}
		if err := s.repo.InsertMedia(ctx, media); err != nil {
			return nil, err
		}
		response.URLs = urls
	}

	logrus.WithFields(logrus.Fields{
		"post_id":   inserted.ID.Hex(),
		"author_id": authorID,
		"images":    len(images),
	}).Info("Post created")

	return response, nil
}

func (s *postService) uploadImages(ctx context.Context, authorID, postID string, images []Upload) ([]string, error) {
	urls := make([]string, 0, len(images))
	seen := make(map[string]bool)

	for _, img := range images {
		filename := img.Filename
		if seen[filename] {
			// de-duplicate within one upload batch
			ext := path.Ext(filename)
			root := strings.TrimSuffix(filename, ext)
			filename = fmt.Sprintf("%s-%s%s", root, uuid.NewString(), ext)
		}
		seen[filename] = true

		objectPath := path.Join(authorID, postID, filename)
		url, err := s.storage.Upload(ctx, objectPath, img.ContentType, img.Data)
		if err != nil {
			logrus.WithError(err).WithField("file", filename).Error("Media upload failed")
			return nil, err
		}
		urls = append(urls, url)
	}

	return urls, nil
}

func (s *postService) GetPosts(ctx context.Context, take int, cursor, authorID, tag string) (*pagination.Page[Post], error) {
	if take <= 0 {
		take = s.cfg.Page.DefaultTake
	}
	if take > s.cfg.Page.MaxTake {
		take = s.cfg.Page.MaxTake
	}
	return s.repo.ListPage(ctx, take, cursor, authorID, tag)
}

func (s *postService) Search(ctx context.Context, query string) ([]Post, error) {
	return s.repo.Search(ctx, query, 20)
}

func (s *postService) GetDetails(ctx context.Context, id string) (*PostDetails, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, models.ErrRecordNotFound
	}

	media, err := s.repo.ListMedia(ctx, id)
	if err != nil {
		return nil, err
	}

	comments, err := s.repo.CommentsPage(ctx, id, 20, "")
	if err != nil {
		return nil, err
	}

	avg, err := s.avgRating(ctx, id)
	if err != nil {
		return nil, err
	}

	return &PostDetails{
		Post:      *p,
		Media:     media,
		Comments:  comments,
		AvgRating: int(math.Round(avg)),
	}, nil
}

func (s *postService) avgRating(ctx context.Context, postID string) (float64, error) {
	if avg, found, err := s.cache.GetAvgRating(ctx, postID); err == nil && found {
		return avg, nil
	}

	avg, err := s.repo.AverageRating(ctx, postID)
	if err != nil {
		return 0, err
	}

	if err := s.cache.SaveAvgRating(ctx, postID, avg); err != nil {
		logrus.WithError(err).Debug("Could not cache average rating")
	}
	return avg, nil
}

func (s *postService) Delete(ctx context.Context, id, authorID string) error {
	return s.repo.SoftDelete(ctx, id, authorID)
}

func (s *postService) CreateComment(ctx context.Context, postID, authorID, content string) (*Comment, error) {
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("comment must not be empty")
	}

	p, err := s.repo.FindByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, models.ErrRecordNotFound
	}

	username, err := s.authors.GetUsernameByID(ctx, authorID)
	if err != nil {
		return nil, err
	}

	return s.repo.InsertComment(ctx, &Comment{
		PostID:         postID,
		AuthorID:       authorID,
		AuthorUsername: username,
		Content:        content,
	})
}

func (s *postService) GetComments(ctx context.Context, postID string, take int, cursor string) (*pagination.Page[Comment], error) {
	if take <= 0 {
		take = s.cfg.Page.DefaultTake
	}
	if take > s.cfg.Page.MaxTake {
		take = s.cfg.Page.MaxTake
	}
	return s.repo.CommentsPage(ctx, postID, take, cursor)
}

func (s *postService) DeleteComment(ctx context.Context, commentID, authorID string) error {
	return s.repo.DeleteComment(ctx, commentID, authorID)
}

func (s *postService) RatePost(ctx context.Context, postID, userID string, value int) error {
	if value < 1 || value > 5 {
		return fmt.Errorf("rating value must be between 1 and 5")
	}

	p, err := s.repo.FindByID(ctx, postID)
	if err != nil {
		return err
	}
	if p == nil {
		return models.ErrRecordNotFound
	}

	if err := s.repo.UpsertRating(ctx, &Rating{PostID: postID, UserID: userID, Value: value}); err != nil {
		return err
	}

	// the cached average is now stale
	if err := s.cache.InvalidateAvgRating(ctx, postID); err != nil {
		logrus.WithError(err).Debug("Could not invalidate cached rating")
	}
	return nil
}

func (s *postService) ListTags(ctx context.Context) ([]Tag, error) {
	return s.repo.ListTags(ctx)
}
