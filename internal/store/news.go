package store

import (
	"context"

	"storefront/internal/models"
)

const newsSelect = `
	SELECT n.id, n.title, n.content, n.published_on,
		n.news_type_id, nt.name AS news_type, n.author_id, u.name AS author_name
	FROM news n
	LEFT JOIN news_types nt ON nt.id = n.news_type_id
	LEFT JOIN users u ON u.id = n.author_id`

// ListNews returns news entries, most recently published first
func (s *Store) ListNews(ctx context.Context) ([]models.News, error) {
	news := []models.News{}
	err := s.db.SelectContext(ctx, &news, newsSelect+" ORDER BY n.published_on DESC, n.id DESC")
	return news, err
}

func (s *Store) GetNews(ctx context.Context, id int64) (*models.News, error) {
	var n models.News
	if err := s.db.GetContext(ctx, &n, newsSelect+" WHERE n.id = $1", id); err != nil {
		return nil, mapError(err)
	}
	return &n, nil
}

func (s *Store) CreateNews(ctx context.Context, n *models.News) error {
	err := s.db.QueryRowxContext(ctx, `
		INSERT INTO news (title, content, published_on, news_type_id, author_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		n.Title, n.Content, n.PublishedOn, n.NewsTypeID, n.AuthorID,
	).Scan(&n.ID)
	return mapError(err)
}

func (s *Store) UpdateNews(ctx context.Context, n *models.News) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE news SET title = $1, content = $2, published_on = $3, news_type_id = $4, author_id = $5 WHERE id = $6",
		n.Title, n.Content, n.PublishedOn, n.NewsTypeID, n.AuthorID, n.ID)
	return expectAffected(res, err)
}

func (s *Store) DeleteNews(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM news WHERE id = $1", id)
	return expectAffected(res, err)
}

// ListNewsTypes returns all news categories
func (s *Store) ListNewsTypes(ctx context.Context) ([]models.NewsType, error) {
	types := []models.NewsType{}
	err := s.db.SelectContext(ctx, &types, "SELECT id, name FROM news_types ORDER BY name")
	return types, err
}
