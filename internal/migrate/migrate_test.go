package migrate

import (
	"testing"
	"testing/fstest"

	"github.com/meowv/blog/migrations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractUp(t *testing.T) {
	content := `-- +goose Up
-- +goose StatementBegin
CREATE TABLE a (id INT);
-- +goose StatementEnd
CREATE INDEX idx_a ON a (id);

-- +goose Down
DROP TABLE a;
`
	got := extractUp(content)
	assert.Equal(t, "CREATE TABLE a (id INT);\nCREATE INDEX idx_a ON a (id);", got)
}

func TestExtractUpWithoutMarkers(t *testing.T) {
	assert.Equal(t, "", extractUp("CREATE TABLE a (id INT);"))
}

func TestMigrationFilesSortedAndFiltered(t *testing.T) {
	fsys := fstest.MapFS{
		"002_second.sql": {Data: []byte("-- +goose Up\nSELECT 2;")},
		"001_first.sql":  {Data: []byte("-- +goose Up\nSELECT 1;")},
		"README.md":      {Data: []byte("docs")},
		"sub/003.sql":    {Data: []byte("SELECT 3;")},
	}

	files, err := migrationFiles(fsys)
	require.NoError(t, err)
	assert.Equal(t, []string{"001_first.sql", "002_second.sql"}, files)
}

func TestPending(t *testing.T) {
	files := []string{"001_a.sql", "002_b.sql", "003_c.sql"}
	applied := map[string]bool{"001_a.sql": true, "003_c.sql": true}

	assert.Equal(t, []string{"002_b.sql"}, pending(files, applied))
	assert.Empty(t, pending(files, map[string]bool{"001_a.sql": true, "002_b.sql": true, "003_c.sql": true}))
}

func TestEmbeddedMigrations(t *testing.T) {
	files, err := migrationFiles(migrations.FS)
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, name := range files {
		data, err := migrations.FS.ReadFile(name)
		require.NoError(t, err)
		up := extractUp(string(data))
		assert.NotEmpty(t, up, name)
		assert.NotContains(t, up, "DROP TABLE", name)
	}
}
