package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStats struct {
	articles, deleted, posts, users int64
	postsErr                        error
}

func (f fakeStats) CountArticles(context.Context) (int64, error)        { return f.articles, nil }
func (f fakeStats) CountDeletedArticles(context.Context) (int64, error) { return f.deleted, nil }
func (f fakeStats) CountPosts(context.Context) (int64, error)           { return f.posts, f.postsErr }
func (f fakeStats) CountUsers(context.Context) (int64, error)           { return f.users, nil }

func TestGetDashboardStats(t *testing.T) {
	svc := NewStatsService(fakeStats{articles: 10, deleted: 2, posts: 4, users: 1}, discardLogger())

	stats, err := svc.GetDashboardStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &DashboardStats{TotalArticles: 10, DeletedArticles: 2, TotalPosts: 4, TotalUsers: 1}, stats)
}

func TestGetDashboardStatsError(t *testing.T) {
	svc := NewStatsService(fakeStats{postsErr: errors.New("timeout")}, discardLogger())

	stats, err := svc.GetDashboardStats(context.Background())
	assert.Nil(t, stats)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "counting posts")
}
