package migrations

import (
	"database/sql"
	"fmt"
	"os"
	"testing"

	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"investorportal/internal/utils"
)

func TestMigrationsAreOrdered(t *testing.T) {
	seen := map[int]bool{}
	for i, m := range Migrations {
		assert.Equal(t, i+1, m.Version, "migration %q", m.Description)
		assert.False(t, seen[m.Version])
		assert.NotNil(t, m.Up)
		assert.NotNil(t, m.Down)
		seen[m.Version] = true
	}
}

func TestFind(t *testing.T) {
	m, ok := find(2)
	assert.True(t, ok)
	assert.Equal(t, "Create account valuations", m.Description)

	_, ok = find(99)
	assert.False(t, ok)
}

type recordingLogger struct {
	lines []string
}

func (l *recordingLogger) Debug(msg string, args ...interface{}) { l.add("DEBUG", msg, args) }
func (l *recordingLogger) Info(msg string, args ...interface{})  { l.add("INFO", msg, args) }
func (l *recordingLogger) Error(msg string, args ...interface{}) { l.add("ERROR", msg, args) }

func (l *recordingLogger) add(level, msg string, args []interface{}) {
	l.lines = append(l.lines, level+" "+fmt.Sprintf(msg, args...))
}

func TestRunMigrationsLogsThroughLogger(t *testing.T) {
	dsn := os.Getenv("PORTAL_TEST_DSN")
	if dsn == "" {
		t.Skip("PORTAL_TEST_DSN not set")
	}
	db, err := sql.Open("postgres", dsn)
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, RunMigrations(db, utils.NewDiscardLogger()))

	logger := &recordingLogger{}
	require.NoError(t, RunMigrations(db, logger))
	assert.Equal(t, []string{fmt.Sprintf("DEBUG Schema up to date at version %d", len(Migrations))}, logger.lines)
}
