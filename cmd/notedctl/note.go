package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"noted/internal/client/coordinator"
	"noted/internal/client/feed"
)

var (
	noteTitle   string
	noteContent string
	notePrivate bool
	notePublic  bool
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a note",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		c := newCoordinator(ctx, feed.Scope{})
		defer c.Close()

		if err := c.Refresh(ctx); err != nil {
			return err
		}
		if err := c.Add(ctx, noteTitle, noteContent, notePrivate); err != nil {
			return err
		}

		if notes := c.Store().Flatten(); len(notes) > 0 {
			fmt.Printf("created %s\n", notes[0].ID)
		}
		return nil
	},
}

var editCmd = &cobra.Command{
	Use:   "edit <note-id>",
	Short: "Edit a note you own",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		patch := feed.Patch{}
		if cmd.Flags().Changed("title") {
			patch.Title = &noteTitle
		}
		if cmd.Flags().Changed("content") {
			patch.Content = &noteContent
		}
		switch {
		case notePrivate:
			value := true
			patch.IsPrivate = &value
		case notePublic:
			value := false
			patch.IsPrivate = &value
		}
		if patch.Title == nil && patch.Content == nil && patch.IsPrivate == nil {
			return fmt.Errorf("nothing to change, pass --title, --content, --private or --public")
		}

		c := newCoordinator(ctx, feed.Scope{})
		defer c.Close()

		if err := c.Refresh(ctx); err != nil {
			return err
		}
		if err := c.Update(ctx, args[0], patch); err != nil {
			return err
		}

		fmt.Printf("updated %s\n", args[0])
		return nil
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <note-id>",
	Short: "Delete a note you own, with an undo window",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		noteID := args[0]

		c := newCoordinator(ctx, feed.Scope{})
		defer c.Close()

		if err := c.Refresh(ctx); err != nil {
			return err
		}

		c.Delete(noteID)
		window := c.UndoWindow()
		fmt.Printf("deleting %s in %s, press u+Enter to undo\n", noteID, window)

		undo := make(chan struct{})
		go func() {
			reader := bufio.NewReader(os.Stdin)
			for {
				line, err := reader.ReadString('\n')
				if err != nil {
					return
				}
				if strings.TrimSpace(line) == "u" {
					close(undo)
					return
				}
			}
		}()

		select {
		case <-undo:
			if c.Undo(noteID) {
				fmt.Println("delete undone")
				return nil
			}
			fmt.Println("too late, the note is gone")
		case <-time.After(window + 250*time.Millisecond):
			fmt.Printf("deleted %s\n", noteID)
		}
		return nil
	},
}

// newCoordinator wires a store, the HTTP client and stderr notifications.
// The current user is resolved when a token is present so optimistic notes
// carry the right author.
func newCoordinator(ctx context.Context, scope feed.Scope) *coordinator.Coordinator {
	client := apiClient()

	var user *feed.Author
	if token != "" {
		if resolved, err := client.CurrentUser(ctx); err == nil {
			user = resolved
		}
	}

	return coordinator.New(feed.NewStore(scope), client, coordinator.Options{
		User: user,
		Notifier: func(message string) {
			fmt.Fprintln(os.Stderr, "! "+message)
		},
	})
}

func init() {
	for _, cmd := range []*cobra.Command{addCmd, editCmd} {
		cmd.Flags().StringVar(&noteTitle, "title", "", "note title (4-40 characters)")
		cmd.Flags().StringVar(&noteContent, "content", "", "note content (max 180 characters)")
	}
	addCmd.Flags().BoolVar(&notePrivate, "private", false, "only you can see the note")
	_ = addCmd.MarkFlagRequired("title")

	editCmd.Flags().BoolVar(&notePrivate, "private", false, "make the note private")
	editCmd.Flags().BoolVar(&notePublic, "public", false, "make the note public")
	editCmd.MarkFlagsMutuallyExclusive("private", "public")

	rootCmd.AddCommand(addCmd, editCmd, deleteCmd)
}
