package storage

import (
	"context"
	"net/url"
	"os"
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jetgrind/internal/domain"
)

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetLevel(logrus.ErrorLevel)
	return l
}

// setupTestDB creates a temporary BadgerDB instance for testing.
// It returns the repository instance and a cleanup function.
func setupTestDB(t *testing.T) (*BadgerRepository, string, func()) {
	t.Helper()

	tempDir := t.TempDir()
	repo, err := NewBadgerRepository(tempDir, testLogger())
	require.NoError(t, err, "Failed to create test BadgerDB repository")

	cleanup := func() {
		assert.NoError(t, repo.Close(), "Failed to close test BadgerDB repository")
	}
	return repo, tempDir, cleanup
}

func sampleItems(t *testing.T) []domain.Item {
	t.Helper()
	u, err := url.Parse("https://example.com/page")
	require.NoError(t, err)
	link := domain.NewLink(u)
	link.FaviconData = []byte{0x1, 0x2}

	first := domain.NewItem("Read {{link:"+link.ID.String()+"}}", "later", []domain.Link{link})
	second := domain.NewItem("Buy milk", "", nil)
	second.IsCompleted = true
	return []domain.Item{first, second}
}

func TestBadgerRepository_LoadEmpty(t *testing.T) {
	repo, _, cleanup := setupTestDB(t)
	defer cleanup()

	items, err := repo.LoadAll(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestBadgerRepository_SaveAndLoadAll(t *testing.T) {
	repo, _, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	items := sampleItems(t)
	require.NoError(t, repo.SaveAll(ctx, items))

	loaded, err := repo.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, items[0].ID, loaded[0].ID, "order is preserved")
	assert.Equal(t, items[0].Title, loaded[0].Title)
	assert.Equal(t, items[0].Links[0].FaviconData, loaded[0].Links[0].FaviconData)
	assert.True(t, loaded[1].IsCompleted)
	assert.Empty(t, loaded[1].Links)

	// Saving overwrites the whole list.
	require.NoError(t, repo.SaveAll(ctx, items[1:]))
	loaded, err = repo.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, items[1].ID, loaded[0].ID)
}

func TestBadgerRepository_PersistsAcrossReopen(t *testing.T) {
	repo, dir, _ := setupTestDB(t)
	ctx := context.Background()
	items := sampleItems(t)
	require.NoError(t, repo.SaveAll(ctx, items))
	require.NoError(t, repo.Close())

	reopened, err := NewBadgerRepository(dir, testLogger())
	require.NoError(t, err)
	defer func() { assert.NoError(t, reopened.Close()) }()

	loaded, err := reopened.LoadAll(ctx)
	require.NoError(t, err)
	assert.Len(t, loaded, 2)
}

func TestBadgerRepository_LegacyRecordsWithoutLinks(t *testing.T) {
	repo, _, cleanup := setupTestDB(t)
	defer cleanup()

	legacy := `[{"id":"6f1c1c1e-6a5e-4c4b-9a7e-0d1d2f3e4a5b","title":"see https://a.com","isCompleted":false,"createdAt":"2024-05-01T10:00:00Z"}]`
	err := repo.db.Update(func(txn *badger.Txn) error {
		return txn.Set(itemsKey, []byte(legacy))
	})
	require.NoError(t, err)

	loaded, err := repo.LoadAll(context.Background())
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "see https://a.com", loaded[0].Title)
	assert.NotNil(t, loaded[0].Links)
}

func TestBadgerRepository_CorruptValue(t *testing.T) {
	repo, _, cleanup := setupTestDB(t)
	defer cleanup()

	err := repo.db.Update(func(txn *badger.Txn) error {
		return txn.Set(itemsKey, []byte("not json"))
	})
	require.NoError(t, err)

	_, err = repo.LoadAll(context.Background())
	assert.Error(t, err)
}
