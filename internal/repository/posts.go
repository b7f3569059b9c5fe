package repository

import (
	"context"
	"time"
)

const postColumns = `id, title, author, url, content, creation_time`

func scanPost(row interface{ Scan(...any) error }) (Post, error) {
	var p Post
	err := row.Scan(
		&p.ID,
		&p.Title,
		&p.Author,
		&p.Url,
		&p.Content,
		&p.CreationTime,
	)
	return p, err
}

const createPost = `INSERT INTO posts (title, author, url, content, creation_time)
VALUES ($1, $2, $3, $4, $5)
RETURNING ` + postColumns

type CreatePostParams struct {
	Title        string
	Author       string
	Url          string
	Content      string
	CreationTime time.Time
}

func (q *Queries) CreatePost(ctx context.Context, arg CreatePostParams) (Post, error) {
	row := q.db.QueryRow(ctx, createPost,
		arg.Title,
		arg.Author,
		arg.Url,
		arg.Content,
		arg.CreationTime,
	)
	return scanPost(row)
}

const getPostByUrl = `SELECT ` + postColumns + ` FROM posts WHERE url = $1`

func (q *Queries) GetPostByUrl(ctx context.Context, url string) (Post, error) {
	return scanPost(q.db.QueryRow(ctx, getPostByUrl, url))
}

const getPost = `SELECT ` + postColumns + ` FROM posts WHERE id = $1`

func (q *Queries) GetPost(ctx context.Context, id int64) (Post, error) {
	return scanPost(q.db.QueryRow(ctx, getPost, id))
}

const updatePost = `UPDATE posts SET
	title = $2,
	author = $3,
	url = $4,
	content = $5,
	creation_time = $6
WHERE id = $1
RETURNING ` + postColumns

type UpdatePostParams struct {
	ID           int64
	Title        string
	Author       string
	Url          string
	Content      string
	CreationTime time.Time
}

func (q *Queries) UpdatePost(ctx context.Context, arg UpdatePostParams) (Post, error) {
	row := q.db.QueryRow(ctx, updatePost,
		arg.ID,
		arg.Title,
		arg.Author,
		arg.Url,
		arg.Content,
		arg.CreationTime,
	)
	return scanPost(row)
}

const deletePost = `DELETE FROM posts WHERE id = $1`

func (q *Queries) DeletePost(ctx context.Context, id int64) (int64, error) {
	result, err := q.db.Exec(ctx, deletePost, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}
