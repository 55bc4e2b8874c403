package main

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/sifan077/Rinku/internal/app/model"
	"github.com/sifan077/Rinku/internal/client"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Short:   "Print all bookmarks",
	Aliases: []string{"ls", "l"},
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		links, err := newAPI().List(cmd.Context())
		if err != nil {
			return err
		}
		return printBookmarks(cmd.OutOrStdout(), links)
	},
}

var (
	titleFlag       string
	descriptionFlag string
)

var addCmd = &cobra.Command{
	Use:   "add <url>",
	Short: "Add a bookmark",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d := client.Draft{Title: titleFlag, URL: args[0], Description: descriptionFlag}
		if !client.ValidateURL(d.URL) {
			return fmt.Errorf("%s: %q", client.ErrURLInvalid, d.URL)
		}

		b, err := newAPI().Create(cmd.Context(), d)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "added #%d %s\n", b.ID, client.DisplayURL(*b))
		return nil
	},
}

var removeCmd = &cobra.Command{
	Use:     "rm <id>",
	Short:   "Delete a bookmark",
	Aliases: []string{"remove", "del"},
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid id %q", args[0])
		}
		if err := newAPI().Delete(cmd.Context(), id); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "removed #%d\n", id)
		return nil
	},
}

func init() {
	addCmd.Flags().StringVarP(&titleFlag, "title", "t", "", "bookmark title")
	addCmd.Flags().StringVarP(&descriptionFlag, "description", "d", "", "bookmark description")
}

func printBookmarks(w io.Writer, links []model.Bookmark) error {
	if len(links) == 0 {
		_, err := fmt.Fprintln(w, client.EmptyStateMessage)
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tURL\tDESCRIPTION")
	for _, b := range links {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", b.ID, client.DisplayTitle(b), client.DisplayURL(b), client.DisplayDescription(b))
	}
	return tw.Flush()
}
