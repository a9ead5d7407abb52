package forum

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
	"github.com/sahabattani/backend/internal/apperror"
	"github.com/sahabattani/backend/internal/models"
	"gorm.io/gorm"
)

const (
	maxTitleLength   = 200
	maxContentLength = 10000
)

var (
	titlePolicy   = bluemonday.StrictPolicy()
	contentPolicy = bluemonday.UGCPolicy()
)

type AuthorSummary struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type PostView struct {
	ID        uint           `json:"id"`
	Title     string         `json:"title"`
	Content   string         `json:"content"`
	AuthorID  uint           `json:"authorId"`
	Author    *AuthorSummary `json:"author"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

func toView(p *models.Post) PostView {
	v := PostView{
		ID:        p.ID,
		Title:     p.Title,
		Content:   p.Content,
		AuthorID:  p.AuthorID,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
	if p.Author != nil {
		v.Author = &AuthorSummary{ID: p.Author.ID, Name: p.Author.Name, Email: p.Author.Email}
	}
	return v
}

type PostInput struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// sanitize strips markup from the title and unsafe markup from the content.
func (in PostInput) sanitize() PostInput {
	return PostInput{
		Title:   strings.TrimSpace(titlePolicy.Sanitize(in.Title)),
		Content: strings.TrimSpace(contentPolicy.Sanitize(in.Content)),
	}
}

func validatePost(in PostInput) []string {
	var errs []string
	switch {
	case in.Title == "":
		errs = append(errs, "title is required")
	case utf8.RuneCountInString(in.Title) > maxTitleLength:
		errs = append(errs, "title must be at most 200 characters")
	}
	switch {
	case in.Content == "":
		errs = append(errs, "content is required")
	case utf8.RuneCountInString(in.Content) > maxContentLength:
		errs = append(errs, "content must be at most 10000 characters")
	}
	return errs
}

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

func (s *Service) find(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	err := s.db.WithContext(ctx).Preload("Author").First(&post, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.NotFound("Post tidak ditemukan")
	}
	if err != nil {
		return nil, apperror.Internal("Gagal mengambil data post", err)
	}
	return &post, nil
}

func (s *Service) Get(ctx context.Context, id uint) (*PostView, error) {
	post, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	v := toView(post)
	return &v, nil
}

// List returns posts newest first. search matches title or content.
func (s *Service) List(ctx context.Context, search string, page, limit int) ([]PostView, int64, error) {
	q := applySearch(s.db.WithContext(ctx).Model(&models.Post{}), search)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, apperror.Internal("Gagal mengambil data posts", err)
	}

	var posts []models.Post
	err := q.Preload("Author").
		Order("created_at DESC, id DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&posts).Error
	if err != nil {
		return nil, 0, apperror.Internal("Gagal mengambil data posts", err)
	}

	views := make([]PostView, 0, len(posts))
	for i := range posts {
		views = append(views, toView(&posts[i]))
	}
	return views, total, nil
}

func (s *Service) Create(ctx context.Context, authorID uint, in PostInput) (*PostView, error) {
	in = in.sanitize()
	if errs := validatePost(in); len(errs) > 0 {
		return nil, apperror.Validation("Title dan content wajib diisi", errs...)
	}

	post := models.Post{Title: in.Title, Content: in.Content, AuthorID: authorID}
	if err := s.db.WithContext(ctx).Create(&post).Error; err != nil {
		return nil, apperror.Internal("Gagal membuat post baru", err)
	}
	return s.Get(ctx, post.ID)
}

// Update keeps the stored title or content when the input leaves it empty.
func (s *Service) Update(ctx context.Context, id, authorID uint, in PostInput) (*PostView, error) {
	post, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if post.AuthorID != authorID {
		return nil, apperror.Authorization("Tidak diizinkan mengedit post orang lain", "only the author may edit this post")
	}

	in = in.sanitize()
	if in.Title == "" {
		in.Title = post.Title
	}
	if in.Content == "" {
		in.Content = post.Content
	}
	if errs := validatePost(in); len(errs) > 0 {
		return nil, apperror.Validation("Data post tidak valid", errs...)
	}

	err = s.db.WithContext(ctx).Model(post).Updates(map[string]interface{}{
		"title":   in.Title,
		"content": in.Content,
	}).Error
	if err != nil {
		return nil, apperror.Internal("Gagal mengupdate post", err)
	}
	return s.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id, authorID uint) error {
	post, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if post.AuthorID != authorID {
		return apperror.Authorization("Tidak diizinkan menghapus post orang lain", "only the author may delete this post")
	}

	if err := s.db.WithContext(ctx).Delete(&models.Post{}, id).Error; err != nil {
		return apperror.Internal("Gagal menghapus post", err)
	}
	return nil
}
