package service

import (
	"context"
	"errors"
	"strings"

	"storefront/internal/auth"
	"storefront/internal/models"
	"storefront/internal/store"
	"storefront/internal/util"

	"go.uber.org/zap"
)

// NewsService serves public announcements and their staff management
type NewsService struct {
	store  NewsStore
	logger *zap.Logger
}

func NewNewsService(store NewsStore) *NewsService {
	return &NewsService{store: store, logger: util.GetLogger()}
}

func (s *NewsService) List(ctx context.Context) ([]models.News, error) {
	ctx, span := util.StartSpan(ctx, "NewsService.List")
	defer span.End()

	return s.store.ListNews(ctx)
}

func (s *NewsService) Get(ctx context.Context, id int64) (*models.News, error) {
	n, err := s.store.GetNews(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNotFound
	}
	return n, err
}

func (s *NewsService) ListTypes(ctx context.Context) ([]models.NewsType, error) {
	return s.store.ListNewsTypes(ctx)
}

// NewsInput is the staff news form. Author defaults to the acting user.
type NewsInput struct {
	Title       string `json:"title"`
	Content     string `json:"content"`
	PublishedOn string `json:"published_on"`
	NewsTypeID  *int64 `json:"news_type_id"`
	AuthorID    *int64 `json:"author_id"`
}

func parseNewsInput(actor *auth.Principal, in NewsInput) (*models.News, error) {
	if blank(in.Title, in.Content, in.PublishedOn) {
		return nil, invalid("news", "Preenche título, conteúdo e data de publicação.")
	}
	published, err := ParseDate("published_on", in.PublishedOn)
	if err != nil {
		return nil, invalid("published_on", "Data de publicação inválida.")
	}

	author := in.AuthorID
	if author == nil && actor != nil {
		id := actor.UserID
		author = &id
	}

	return &models.News{
		Title:       strings.TrimSpace(in.Title),
		Content:     strings.TrimSpace(in.Content),
		PublishedOn: published,
		NewsTypeID:  in.NewsTypeID,
		AuthorID:    author,
	}, nil
}

func (s *NewsService) Create(ctx context.Context, actor *auth.Principal, in NewsInput) (*models.News, error) {
	ctx, span := util.StartSpan(ctx, "NewsService.Create")
	defer span.End()

	n, err := parseNewsInput(actor, in)
	if err != nil {
		return nil, err
	}
	if err := s.store.CreateNews(ctx, n); err != nil {
		return nil, mapReferenceError(err, "Tipo de notícia ou autor inexistente.")
	}

	s.logger.Info("News created", zap.Int64("news_id", n.ID))
	return n, nil
}

func (s *NewsService) Update(ctx context.Context, actor *auth.Principal, id int64, in NewsInput) (*models.News, error) {
	ctx, span := util.StartSpan(ctx, "NewsService.Update")
	defer span.End()

	n, err := parseNewsInput(actor, in)
	if err != nil {
		return nil, err
	}
	n.ID = id

	err = s.store.UpdateNews(ctx, n)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, mapReferenceError(err, "Tipo de notícia ou autor inexistente.")
	}
	return n, nil
}

func (s *NewsService) Delete(ctx context.Context, id int64) error {
	err := s.store.DeleteNews(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
