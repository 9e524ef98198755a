package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"jetgrind/internal/domain"
	"jetgrind/internal/marker"
	"jetgrind/internal/render"
	"jetgrind/internal/storage"
)

func addCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "add TEXT...",
		Short: "Add an item and wait for its link metadata",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(a *app) error {
				item, ok := a.store.Add(strings.Join(args, " "))
				if !ok {
					return errors.New("nothing to add")
				}
				a.store.Wait()
				if fresh, found := a.store.Item(item.ID); found {
					item = fresh
				}
				fmt.Fprintln(cmd.OutOrStdout(), render.TerminalList([]domain.Item{item}))
				return nil
			})
		},
	}
}

func listCommand() *cobra.Command {
	var open, done bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List items, most recent first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if open && done {
				return errors.New("--open and --done are exclusive")
			}
			return withApp(cmd.Context(), func(a *app) error {
				items, err := listItems(cmd, a, open, done)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), render.TerminalList(items))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&open, "open", false, "only items not yet completed")
	cmd.Flags().BoolVar(&done, "done", false, "only completed items")
	return cmd
}

// listItems filters in the database when the backend supports it.
func listItems(cmd *cobra.Command, a *app, open, done bool) ([]domain.Item, error) {
	if !open && !done {
		return a.store.Items(), nil
	}
	if repo, ok := a.repo.(storage.ItemRepository); ok {
		return repo.ListItems(cmd.Context(), storage.ItemListFilter{Completed: &done})
	}
	var out []domain.Item
	for _, item := range a.store.Items() {
		if item.IsCompleted == done {
			out = append(out, item)
		}
	}
	return out, nil
}

func doneCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "done N",
		Short: "Toggle completion of item N",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(a *app) error {
				item, err := itemAt(a, args[0])
				if err != nil {
					return err
				}
				return toggleItem(cmd.Context(), a, item)
			})
		},
	}
}

func removeCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "rm N",
		Aliases: []string{"delete"},
		Short:   "Delete item N",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(a *app) error {
				item, err := itemAt(a, args[0])
				if err != nil {
					return err
				}
				return removeItem(cmd.Context(), a, item)
			})
		},
	}
}

func editCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "edit N TITLE [DESCRIPTION]",
		Short: "Replace the title and description of item N",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(a *app) error {
				item, err := itemAt(a, args[0])
				if err != nil {
					return err
				}
				var desc string
				if len(args) == 3 {
					desc = args[2]
				}
				title, desc, links := marker.EncodeEdit(args[1], desc, item.Links)
				if !a.store.UpdateTitleDescriptionAndLinks(item.ID, title, desc, links) {
					return errors.New("title must not be empty")
				}
				a.store.Wait()
				return nil
			})
		},
	}
}

func migrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Rewrite literal URLs in stored items as link markers",
		Long: `Every run migrates stored items on first load. This command only loads
the list, which applies the migration, and reports the item count.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(a *app) error {
				fmt.Fprintf(cmd.OutOrStdout(), "%d items up to date\n", len(a.store.Items()))
				return nil
			})
		},
	}
}

// toggleItem flips completion with a single-row update when the backend
// addresses items by id, and through the store otherwise.
func toggleItem(ctx context.Context, a *app, item domain.Item) error {
	if repo, ok := a.repo.(storage.ItemRepository); ok {
		stored, err := repo.GetItem(ctx, item.ID)
		if err != nil {
			return fmt.Errorf("loading item %s: %w", item.ID, err)
		}
		stored.IsCompleted = !stored.IsCompleted
		return repo.UpdateItem(ctx, stored)
	}
	if !a.store.Toggle(item.ID) {
		return errItemGone
	}
	return nil
}

// removeItem deletes by id when the backend supports it.
func removeItem(ctx context.Context, a *app, item domain.Item) error {
	if repo, ok := a.repo.(storage.ItemRepository); ok {
		return repo.DeleteItem(ctx, item.ID)
	}
	if !a.store.Delete(item.ID) {
		return errItemGone
	}
	return nil
}

var errItemGone = errors.New("item no longer exists")

// itemAt resolves a 1-based list number.
func itemAt(a *app, arg string) (domain.Item, error) {
	n, err := strconv.Atoi(arg)
	if err != nil {
		return domain.Item{}, fmt.Errorf("item number %q: %w", arg, err)
	}
	items := a.store.Items()
	if n < 1 || n > len(items) {
		return domain.Item{}, fmt.Errorf("no item %d, have %d", n, len(items))
	}
	return items[n-1], nil
}
