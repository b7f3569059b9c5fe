package repository

import (
	"context"
	"time"
)

const articleColumns = `id, title, author, source, url, summary, content, hits,
	meta_keywords, meta_description, creation_time, post_time, is_deleted, deleted_at`

func scanArticle(row interface{ Scan(...any) error }) (Article, error) {
	var a Article
	err := row.Scan(
		&a.ID,
		&a.Title,
		&a.Author,
		&a.Source,
		&a.Url,
		&a.Summary,
		&a.Content,
		&a.Hits,
		&a.MetaKeywords,
		&a.MetaDescription,
		&a.CreationTime,
		&a.PostTime,
		&a.IsDeleted,
		&a.DeletedAt,
	)
	return a, err
}

const createArticle = `INSERT INTO articles (
	title, author, source, url, summary, content, hits,
	meta_keywords, meta_description, creation_time, post_time, is_deleted
) VALUES ($1, $2, $3, $4, $5, $6, 0, $7, $8, $9, $10, false)
RETURNING ` + articleColumns

type CreateArticleParams struct {
	Title           string
	Author          string
	Source          string
	Url             string
	Summary         string
	Content         string
	MetaKeywords    string
	MetaDescription string
	CreationTime    time.Time
	PostTime        *time.Time
}

func (q *Queries) CreateArticle(ctx context.Context, arg CreateArticleParams) (Article, error) {
	row := q.db.QueryRow(ctx, createArticle,
		arg.Title,
		arg.Author,
		arg.Source,
		arg.Url,
		arg.Summary,
		arg.Content,
		arg.MetaKeywords,
		arg.MetaDescription,
		arg.CreationTime,
		arg.PostTime,
	)
	return scanArticle(row)
}

const getArticle = `SELECT ` + articleColumns + ` FROM articles WHERE id = $1 AND NOT is_deleted`

func (q *Queries) GetArticle(ctx context.Context, id int64) (Article, error) {
	return scanArticle(q.db.QueryRow(ctx, getArticle, id))
}

const listArticles = `SELECT ` + articleColumns + ` FROM articles
WHERE NOT is_deleted
ORDER BY COALESCE(post_time, creation_time) DESC, id DESC
LIMIT $1 OFFSET $2`

type ListArticlesParams struct {
	Limit  int32
	Offset int32
}

func (q *Queries) ListArticles(ctx context.Context, arg ListArticlesParams) ([]Article, error) {
	rows, err := q.db.Query(ctx, listArticles, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Article
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const updateArticle = `UPDATE articles SET
	title = $2,
	author = $3,
	source = $4,
	url = $5,
	summary = $6,
	content = $7,
	meta_keywords = $8,
	meta_description = $9,
	post_time = $10
WHERE id = $1 AND NOT is_deleted
RETURNING ` + articleColumns

type UpdateArticleParams struct {
	ID              int64
	Title           string
	Author          string
	Source          string
	Url             string
	Summary         string
	Content         string
	MetaKeywords    string
	MetaDescription string
	PostTime        *time.Time
}

func (q *Queries) UpdateArticle(ctx context.Context, arg UpdateArticleParams) (Article, error) {
	row := q.db.QueryRow(ctx, updateArticle,
		arg.ID,
		arg.Title,
		arg.Author,
		arg.Source,
		arg.Url,
		arg.Summary,
		arg.Content,
		arg.MetaKeywords,
		arg.MetaDescription,
		arg.PostTime,
	)
	return scanArticle(row)
}

const softDeleteArticle = `UPDATE articles SET is_deleted = true, deleted_at = NOW()
WHERE id = $1 AND NOT is_deleted`

func (q *Queries) SoftDeleteArticle(ctx context.Context, id int64) (int64, error) {
	result, err := q.db.Exec(ctx, softDeleteArticle, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const purgeDeletedArticles = `DELETE FROM articles WHERE is_deleted AND deleted_at < $1`

func (q *Queries) PurgeDeletedArticles(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := q.db.Exec(ctx, purgeDeletedArticles, cutoff)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}
