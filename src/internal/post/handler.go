package post

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"gamingrealm-backend/src/internal/config"
	"gamingrealm-backend/src/internal/middleware"
	"gamingrealm-backend/src/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ActivityPublisher pushes activity events to the message broker.
type ActivityPublisher interface {
	PublishActivity(userID, sessionID, serviceName, action string) error
}

type Handler interface {
	GetPosts(c *gin.Context)
	CreatePost(c *gin.Context)
	SearchPosts(c *gin.Context)
	GetPost(c *gin.Context)
	DeletePost(c *gin.Context)
	CreateComment(c *gin.Context)
	GetComments(c *gin.Context)
	DeleteComment(c *gin.Context)
	RatePost(c *gin.Context)
	GetTags(c *gin.Context)
}

type handler struct {
	config   *config.Configuration
	service  Service
	activity ActivityPublisher
}

func NewHandler(cfg *config.Configuration, service Service, activity ActivityPublisher) Handler {
	return &handler{
		config:   cfg,
		service:  service,
		activity: activity,
	}
}

func (h *handler) requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), time.Duration(h.config.App.Timeout)*time.Second)
}

// GetPosts paginates posts filtered by author and tag. Pagination uses the
// take and cursor headers.
func (h *handler) GetPosts(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	take := parseIntHeader(c, "take", h.config.Page.DefaultTake)
	cursor := c.GetHeader("cursor")

	page, err := h.service.GetPosts(ctx, take, cursor, c.Query("uid"), c.Query("tag"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not retrieve posts"})
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *handler) CreatePost(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	userID := c.GetString(middleware.ContextUserID)
	title := c.PostForm("title")
	textContent := c.PostForm("text_content")
	tags := c.PostFormArray("tags")

	var images []Upload
	if form, err := c.MultipartForm(); err == nil && form != nil {
		for _, fh := range form.File["images"] {
			upload, err := readUpload(fh)
			if err != nil {
				c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "could not read uploaded file"})
				return
			}
			images = append(images, upload)
		}
	}

	response, err := h.service.Create(ctx, userID, title, textContent, tags, images)
	if err != nil {
		h.writeCreateError(c, err)
		return
	}

	if err := h.activity.PublishActivity(userID, c.GetString(middleware.ContextSessionID),
		models.ServicePostHandler, models.ActionPostCreated); err != nil {
		logrus.WithError(err).Warn("Could not publish post activity")
	}

	c.JSON(http.StatusOK, response)
}

func (h *handler) writeCreateError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, models.ErrFileTooLarge):
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrInvalidFileType):
		c.JSON(http.StatusUnsupportedMediaType, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrDatabaseInsert), errors.Is(err, models.ErrStorageUpload):
		logrus.WithError(err).Warn("Could not create post")
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "could not create the post due to an internal error"})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	}
}

func (h *handler) SearchPosts(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	q := c.Query("q")
	if q == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter q is required"})
		return
	}

	posts, err := h.service.Search(ctx, q)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "search failed"})
		return
	}

	if posts == nil {
		posts = []Post{}
	}
	c.JSON(http.StatusOK, gin.H{"data": posts, "count": len(posts), "cursor_id": nil})
}

func (h *handler) GetPost(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	details, err := h.service.GetDetails(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, models.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "post not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not retrieve post"})
		return
	}
	c.JSON(http.StatusOK, details)
}

func (h *handler) DeletePost(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	userID := c.GetString(middleware.ContextUserID)
	err := h.service.Delete(ctx, c.Param("id"), userID)
	if err != nil {
		if errors.Is(err, models.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "post not found"})
			return
		}
		logrus.WithError(err).Warn("Could not delete post")
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not delete the post due to an internal error"})
		return
	}

	if err := h.activity.PublishActivity(userID, c.GetString(middleware.ContextSessionID),
		models.ServicePostHandler, models.ActionPostDeleted); err != nil {
		logrus.WithError(err).Warn("Could not publish post activity")
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "Post deleted."})
}

func (h *handler) CreateComment(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	body, err := io.ReadAll(c.Request.Body)
	if err != nil || len(body) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "comment text is required"})
		return
	}

	comment, err := h.service.CreateComment(ctx, c.Param("id"),
		c.GetString(middleware.ContextUserID), string(body))
	if err != nil {
		if errors.Is(err, models.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "post not found"})
			return
		}
		logrus.WithError(err).Warn("Could not create comment")
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not create the comment due to an internal error"})
		return
	}
	c.JSON(http.StatusOK, comment)
}

func (h *handler) GetComments(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	take := parseIntHeader(c, "take", h.config.Page.DefaultTake)
	page, err := h.service.GetComments(ctx, c.Param("id"), take, c.GetHeader("cursor"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not retrieve comments"})
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *handler) DeleteComment(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	err := h.service.DeleteComment(ctx, c.Param("commentID"), c.GetString(middleware.ContextUserID))
	if err != nil {
		if errors.Is(err, models.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "the current user has not created a comment with the provided ID",
			})
			return
		}
		logrus.WithError(err).Warn("Could not delete comment")
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not delete the comment due to an internal error"})
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "Comment deleted."})
}

func (h *handler) RatePost(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	var req struct {
		Value int `json:"value" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "rating value is required"})
		return
	}

	err := h.service.RatePost(ctx, c.Param("id"), c.GetString(middleware.ContextUserID), req.Value)
	if err != nil {
		if errors.Is(err, models.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "post not found"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "Rating saved."})
}

func (h *handler) GetTags(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	tags, err := h.service.ListTags(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not retrieve tags"})
		return
	}
	if tags == nil {
		tags = []Tag{}
	}
	c.JSON(http.StatusOK, tags)
}

func readUpload(fh *multipart.FileHeader) (Upload, error) {
	f, err := fh.Open()
	if err != nil {
		return Upload{}, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return Upload{}, err
	}

	return Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

func parseIntHeader(c *gin.Context, name string, fallback int) int {
	raw := c.GetHeader(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}
