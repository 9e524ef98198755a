package bot

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/google/uuid"

	"jetgrind/internal/domain"
	"jetgrind/internal/marker"
	"jetgrind/internal/render"
)

const helpText = `Send me any text to add it as a task. Links become pills.
/list - show tasks
/done N - toggle task N
/delete N - remove task N
/edit N text - replace task N (first line is the title, the rest the description)`

// ItemStore is the part of the item store the bot drives.
type ItemStore interface {
	Items() []domain.Item
	Item(id uuid.UUID) (domain.Item, bool)
	Add(input string) (domain.Item, bool)
	Toggle(id uuid.UUID) bool
	Delete(id uuid.UUID) bool
	UpdateTitleDescriptionAndLinks(id uuid.UUID, title, description string, links []domain.Link) bool
}

// Commands turns chat messages into store operations and reply text.
type Commands struct {
	store ItemStore
}

// NewCommands creates a command set over store.
func NewCommands(store ItemStore) *Commands {
	return &Commands{store: store}
}

// Help returns the usage text.
func (c *Commands) Help() string { return helpText }

// List renders every item as a numbered list.
func (c *Commands) List() string {
	return render.ChatList(c.store.Items())
}

// Add stores text as a new item.
func (c *Commands) Add(text string) string {
	item, ok := c.store.Add(text)
	if !ok {
		return "Nothing to add."
	}
	title, _ := render.ItemRich(item)
	return "Added: " + render.Chat(title)
}

// Done toggles the item numbered by arg.
func (c *Commands) Done(arg string) string {
	item, msg, ok := c.resolve(arg)
	if !ok {
		return msg
	}
	if !c.store.Toggle(item.ID) {
		return "That task is gone."
	}
	if item.IsCompleted {
		return "Reopened."
	}
	return "Done."
}

// Delete removes the item numbered by arg.
func (c *Commands) Delete(arg string) string {
	item, msg, ok := c.resolve(arg)
	if !ok {
		return msg
	}
	if !c.store.Delete(item.ID) {
		return "That task is gone."
	}
	return "Deleted."
}

// Edit replaces the title and description of the item numbered by the
// first word of args.
func (c *Commands) Edit(args string) string {
	num, rest := splitFirstWord(strings.TrimSpace(args))
	item, msg, ok := c.resolve(num)
	if !ok {
		return msg
	}
	title, desc, _ := strings.Cut(strings.TrimSpace(rest), "\n")
	if strings.TrimSpace(title) == "" {
		return "Usage: /edit N new title"
	}

	title, desc, links := marker.EncodeEdit(title, desc, item.Links)
	if !c.store.UpdateTitleDescriptionAndLinks(item.ID, title, desc, links) {
		return "That task is gone."
	}
	return "Updated."
}

// resolve maps a 1-based list number to the item it names. On failure it
// returns the reply to send instead.
func (c *Commands) resolve(arg string) (domain.Item, string, bool) {
	n, ok := parseIndexArg(arg)
	if !ok {
		return domain.Item{}, "Give a task number from /list.", false
	}
	items := c.store.Items()
	if n > len(items) {
		return domain.Item{}, fmt.Sprintf("There is no task %d.", n), false
	}
	return items[n-1], "", true
}

// splitFirstWord splits s at its first whitespace rune of any kind.
func splitFirstWord(s string) (string, string) {
	i := strings.IndexFunc(s, unicode.IsSpace)
	if i < 0 {
		return s, ""
	}
	return s[:i], s[i:]
}

func parseIndexArg(arg string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}
