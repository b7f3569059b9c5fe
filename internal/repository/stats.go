package repository

import "context"

const countArticles = `SELECT COUNT(*) FROM articles WHERE NOT is_deleted`

func (q *Queries) CountArticles(ctx context.Context) (int64, error) {
	row := q.db.QueryRow(ctx, countArticles)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const countDeletedArticles = `SELECT COUNT(*) FROM articles WHERE is_deleted`

func (q *Queries) CountDeletedArticles(ctx context.Context) (int64, error) {
	row := q.db.QueryRow(ctx, countDeletedArticles)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const countPosts = `SELECT COUNT(*) FROM posts`

func (q *Queries) CountPosts(ctx context.Context) (int64, error) {
	row := q.db.QueryRow(ctx, countPosts)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const countUsers = `SELECT COUNT(*) FROM users`

func (q *Queries) CountUsers(ctx context.Context) (int64, error) {
	row := q.db.QueryRow(ctx, countUsers)
	var count int64
	err := row.Scan(&count)
	return count, err
}
