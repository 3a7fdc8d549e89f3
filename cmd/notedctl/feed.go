package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"noted/internal/client/feed"
)

var (
	feedMine  bool
	feedLimit int
	feedAll   bool
)

var feedCmd = &cobra.Command{
	Use:   "feed",
	Short: "Show the note feed",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		c := newCoordinator(ctx, feed.Scope{Limit: feedLimit, MyNotes: feedMine})
		defer c.Close()

		if err := c.Refresh(ctx); err != nil {
			return err
		}

		if feedAll {
			for {
				fetched, err := c.FetchNext(ctx)
				if err != nil {
					return err
				}
				if !fetched {
					break
				}
			}
		}

		printNotes(c.Store().Flatten())
		if !feedAll && c.Store().NextCursor() != "" {
			fmt.Println("... more notes available, rerun with --all")
		}
		return nil
	},
}

func printNotes(notes []feed.Note) {
	if len(notes) == 0 {
		fmt.Println("no notes")
		return
	}

	for _, note := range notes {
		author := "anonymous"
		if note.Author != nil {
			author = note.Author.Name
		}
		visibility := ""
		if note.IsPrivate {
			visibility = " [private]"
		}
		fmt.Printf("%s  %s%s\n    %s  (by %s, %s)\n",
			note.ID, note.Title, visibility,
			note.Content, author, note.CreatedAt.Format("2006-01-02 15:04"))
	}
}

func init() {
	feedCmd.Flags().BoolVar(&feedMine, "mine", false, "show only your notes")
	feedCmd.Flags().IntVar(&feedLimit, "limit", 10, "page size")
	feedCmd.Flags().BoolVar(&feedAll, "all", false, "walk every page")

	rootCmd.AddCommand(feedCmd)
}
