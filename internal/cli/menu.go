package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"embruns/internal/client/menusync"
	"embruns/internal/models"

	"github.com/spf13/cobra"
)

// NewMenuCommand prints the public menu.
func NewMenuCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "menu",
		Short: "Show the public menu",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			menu, err := app.API.Menu(cmd.Context())
			if err != nil {
				return err
			}
			printMenu(cmd.OutOrStdout(), menu, false)
			return nil
		},
	}
}

// printMenu lists categories in order. With refs set, each item also shows
// how admin commands will address it.
func printMenu(out io.Writer, menu []models.MenuCategory, refs bool) {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, cat := range menu {
		header := cat.Name
		if refs {
			header = fmt.Sprintf("%s [%s]", cat.Name, cat.ID)
			if cat.Hidden {
				header += " (hidden)"
			}
		}
		fmt.Fprintln(tw, header)
		for i, item := range cat.Items {
			if refs {
				fmt.Fprintf(tw, "  %d\t%s\t%s\t%s\n", i, item.Name, item.Price, describeRef(menusync.RefFor(item, i)))
			} else {
				fmt.Fprintf(tw, "  %s\t%s\t%s\n", item.Name, item.Price, item.Description)
			}
		}
	}
	_ = tw.Flush()
}

func describeRef(ref menusync.ItemRef) string {
	switch r := ref.(type) {
	case menusync.Identified:
		return "id " + r.ID
	case menusync.Positional:
		return fmt.Sprintf("position %d", r.Index)
	default:
		return ""
	}
}
