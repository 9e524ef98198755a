package bot

import (
	"context"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jetgrind/internal/domain"
	"jetgrind/internal/marker"
	"jetgrind/internal/registry"
	"jetgrind/internal/todo"
)

type memRepo struct {
	mu    sync.Mutex
	items []domain.Item
}

func (r *memRepo) LoadAll(ctx context.Context) ([]domain.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return domain.CloneItems(r.items), nil
}

func (r *memRepo) SaveAll(ctx context.Context, items []domain.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = domain.CloneItems(items)
	return nil
}

func (r *memRepo) Close() error { return nil }

func newCommands(t *testing.T) (*Commands, *todo.Store) {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	store := todo.NewStore(&memRepo{}, nil, registry.New(), logger)
	t.Cleanup(store.Close)
	return NewCommands(store), store
}

func TestCommands_AddAndList(t *testing.T) {
	cmds, _ := newCommands(t)

	assert.Equal(t, "Nothing to add.", cmds.Add("   "))
	assert.Equal(t, "Added: buy milk", cmds.Add("buy milk"))
	assert.Equal(t, "Added: read a.com (https://a.com) later", cmds.Add("read https://a.com later"))

	lines := strings.Split(cmds.List(), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "1. ☐ read a.com (https://a.com) later", lines[0])
	assert.Equal(t, "2. ☐ buy milk", lines[1])
}

func TestCommands_DoneAndDelete(t *testing.T) {
	cmds, store := newCommands(t)
	cmds.Add("first")

	assert.Equal(t, "Done.", cmds.Done("1"))
	assert.True(t, store.Items()[0].IsCompleted)
	assert.Equal(t, "Reopened.", cmds.Done("1"))

	assert.Equal(t, "There is no task 2.", cmds.Delete("2"))
	assert.Equal(t, "Give a task number from /list.", cmds.Delete("x"))
	assert.Equal(t, "Give a task number from /list.", cmds.Done("0"))

	assert.Equal(t, "Deleted.", cmds.Delete("1"))
	assert.Empty(t, store.Items())
}

func TestCommands_EditReusesLinks(t *testing.T) {
	cmds, store := newCommands(t)
	cmds.Add("read https://a.com later")
	original := store.Items()[0].Links[0]

	assert.Equal(t, "Updated.", cmds.Edit("1 see https://a.com and https://b.com\nnotes"))

	item := store.Items()[0]
	require.Len(t, item.Links, 2)
	assert.Equal(t, original.ID, item.Links[0].ID)
	assert.Equal(t, "https://b.com", item.Links[1].URL)
	assert.Equal(t, "see "+marker.Token(original.ID)+" and "+marker.Token(item.Links[1].ID), item.Title)
	assert.Equal(t, "notes", item.Description)
}

func TestCommands_EditDropsUnreferencedLinks(t *testing.T) {
	cmds, store := newCommands(t)
	cmds.Add("read https://a.com later")

	assert.Equal(t, "Updated.", cmds.Edit("1 just text"))
	item := store.Items()[0]
	assert.Equal(t, "just text", item.Title)
	assert.Empty(t, item.Links)

	assert.Equal(t, "Usage: /edit N new title", cmds.Edit("1"))
	assert.Equal(t, "There is no task 5.", cmds.Edit("5 title"))
}

func TestCommands_EditNumberThenNewline(t *testing.T) {
	cmds, store := newCommands(t)
	cmds.Add("old")

	assert.Equal(t, "Updated.", cmds.Edit("1\nNew title\nmore"))
	item := store.Items()[0]
	assert.Equal(t, "New title", item.Title)
	assert.Equal(t, "more", item.Description)
}

func TestCommandArgs(t *testing.T) {
	assert.Equal(t, "3", commandArgs("/done 3", "/done"))
	assert.Equal(t, "3", commandArgs("/done@jetgrind_bot 3", "/done"))
	assert.Equal(t, "", commandArgs("/list@jetgrind_bot", "/list"))
	assert.Equal(t, "2 title\ndesc", commandArgs("/edit 2 title\ndesc", "/edit"))
}

func TestParseIndexArg(t *testing.T) {
	n, ok := parseIndexArg(" 4 ")
	assert.True(t, ok)
	assert.Equal(t, 4, n)

	for _, bad := range []string{"", "-1", "0", "two"} {
		_, ok := parseIndexArg(bad)
		assert.False(t, ok, bad)
	}
}
