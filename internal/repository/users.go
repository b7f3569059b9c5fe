package repository

import (
	"context"

	"github.com/google/uuid"
)

// upsertOAuthUser is keyed by (provider, external_id); repeating a login with
// the same identity refreshes the profile fields and keeps the row id.
const upsertOAuthUser = `INSERT INTO users (id, provider, external_id, login, name, email, avatar_url)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (provider, external_id) DO UPDATE SET
	login = EXCLUDED.login,
	name = EXCLUDED.name,
	email = EXCLUDED.email,
	avatar_url = EXCLUDED.avatar_url,
	updated_at = NOW()
RETURNING id, provider, external_id, login, name, email, avatar_url, created_at, updated_at`

type UpsertOAuthUserParams struct {
	ID         uuid.UUID
	Provider   string
	ExternalID string
	Login      string
	Name       string
	Email      string
	AvatarUrl  string
}

func (q *Queries) UpsertOAuthUser(ctx context.Context, arg UpsertOAuthUserParams) (User, error) {
	row := q.db.QueryRow(ctx, upsertOAuthUser,
		arg.ID,
		arg.Provider,
		arg.ExternalID,
		arg.Login,
		arg.Name,
		arg.Email,
		arg.AvatarUrl,
	)
	var u User
	err := row.Scan(
		&u.ID,
		&u.Provider,
		&u.ExternalID,
		&u.Login,
		&u.Name,
		&u.Email,
		&u.AvatarUrl,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	return u, err
}
