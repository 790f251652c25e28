package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"embruns/internal/client/adminauth"
	"embruns/internal/client/menusync"
	"embruns/internal/models"

	"github.com/spf13/cobra"
)

var errNotLoggedIn = errors.New("not logged in, run: embrunsctl admin login")

// NewAdminCommand groups the administration commands.
func NewAdminCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Args:  cobra.NoArgs,
		Short: "Administration commands",
	}

	cmd.AddCommand(
		newLoginCommand(app),
		newLogoutCommand(app),
		newStatusCommand(app),
		newAdminMenuCommand(app),
		newLockCommand(app),
		newCategoryCommand(app),
		newItemCommand(app),
	)

	return cmd
}

func newLoginCommand(app *App) *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in as administrator",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			auth := adminauth.NewController(app.API, app.Store, app.Logger)
			if auth.Start(cmd.Context()) == adminauth.Authenticated {
				fmt.Fprintln(cmd.OutOrStdout(), "Already logged in")
				return nil
			}

			if password == "" {
				var err error
				if password, err = prompt(cmd, "Admin password: "); err != nil {
					return err
				}
			}
			if err := auth.Login(cmd.Context(), password); err != nil {
				if auth.Error() != "" {
					return errors.New(auth.Error())
				}
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Logged in")
			return nil
		},
	}

	cmd.Flags().StringVarP(&password, "password", "p", "", "admin password")
	return cmd
}

func newLogoutCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Discard the admin session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			auth := adminauth.NewController(app.API, app.Store, app.Logger)
			auth.Start(cmd.Context())
			auth.Logout(cmd.Context())
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}

func newStatusCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show whether the stored admin session is valid",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			auth := adminauth.NewController(app.API, app.Store, app.Logger)
			fmt.Fprintln(cmd.OutOrStdout(), auth.Start(cmd.Context()))
			return nil
		},
	}
}

func newAdminMenuCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "menu",
		Short: "Show the full menu with item references",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, _, err := app.openEngine(cmd.Context(), nil)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Site locked: %t\n", engine.Settings().IsLocked)
			printMenu(out, engine.Categories(), true)
			return nil
		},
	}
}

func newLockCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lock",
		Args:  cobra.NoArgs,
		Short: "Site lock commands",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "toggle",
		Short: "Flip the site lock",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, auth, err := app.openEngine(cmd.Context(), nil)
			if err != nil {
				return err
			}
			if err := engine.ToggleSiteLock(cmd.Context()); err != nil {
				return app.explain(auth, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Site locked: %t\n", engine.Settings().IsLocked)
			return nil
		},
	})

	return cmd
}

func newCategoryCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "category",
		Args:  cobra.NoArgs,
		Short: "Menu category commands",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "rename [category-id] [name]",
		Short: "Rename a category",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, auth, err := app.openEngine(cmd.Context(), nil)
			if err != nil {
				return err
			}
			categoryID, name := args[0], strings.TrimSpace(args[1])
			if name == "" {
				return errors.New("category name is required")
			}

			if err := engine.StartEditCategory(categoryID); err != nil {
				return err
			}
			if err := engine.RenameCategory(categoryID, name); err != nil {
				return err
			}
			if err := engine.SaveCategory(cmd.Context(), categoryID); err != nil {
				return app.explain(auth, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Category %s renamed to %q\n", categoryID, name)
			return nil
		},
	})

	return cmd
}

func newItemCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "item",
		Args:  cobra.NoArgs,
		Short: "Menu item commands",
	}

	cmd.AddCommand(
		newItemAddCommand(app),
		newItemEditCommand(app),
		newItemDeleteCommand(app),
	)

	return cmd
}

func newItemAddCommand(app *App) *cobra.Command {
	var input models.MenuItemInput

	cmd := &cobra.Command{
		Use:   "add [category-id]",
		Short: "Append an item to a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(input.Name) == "" || strings.TrimSpace(input.Description) == "" || strings.TrimSpace(input.Price) == "" {
				return errors.New("name, description and price are all required")
			}
			engine, auth, err := app.openEngine(cmd.Context(), nil)
			if err != nil {
				return err
			}
			if err := engine.ShowAddItem(args[0]); err != nil {
				return err
			}
			_ = engine.SetNewItem(menusync.FieldName, input.Name)
			_ = engine.SetNewItem(menusync.FieldDescription, input.Description)
			_ = engine.SetNewItem(menusync.FieldPrice, input.Price)

			if err := engine.AddPendingItem(cmd.Context()); err != nil {
				return app.explain(auth, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %q to %s\n", input.Name, args[0])
			return nil
		},
	}

	cmd.Flags().StringVarP(&input.Name, "name", "n", "", "item name")
	cmd.Flags().StringVarP(&input.Description, "description", "d", "", "item description")
	cmd.Flags().StringVarP(&input.Price, "price", "p", "", "item price, e.g. 18€")
	return cmd
}

func newItemEditCommand(app *App) *cobra.Command {
	var name, description, price string

	cmd := &cobra.Command{
		Use:   "edit [category-id] [index]",
		Short: "Edit the item at a position",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid index %q", args[1])
			}
			engine, auth, err := app.openEngine(cmd.Context(), nil)
			if err != nil {
				return err
			}
			categoryID := args[0]

			if err := engine.StartEditItem(categoryID, index); err != nil {
				return err
			}
			edits := map[menusync.Field]string{
				menusync.FieldName:        name,
				menusync.FieldDescription: description,
				menusync.FieldPrice:       price,
			}
			for field, value := range edits {
				if !cmd.Flags().Changed(string(field)) {
					continue
				}
				if err := engine.EditItem(categoryID, index, field, value); err != nil {
					return err
				}
			}

			item, err := engine.Item(categoryID, index)
			if err != nil {
				return err
			}
			if err := engine.SaveItem(cmd.Context(), categoryID, index, item); err != nil {
				return app.explain(auth, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %s\n", describeRef(menusync.RefFor(item, index)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "new name")
	cmd.Flags().StringVarP(&description, "description", "d", "", "new description")
	cmd.Flags().StringVarP(&price, "price", "p", "", "new price")
	return cmd
}

func newItemDeleteCommand(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete [category-id] [index]",
		Short: "Delete the item at a position",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid index %q", args[1])
			}

			confirm := menusync.AlwaysConfirm
			if !yes {
				confirm = menusync.ConfirmFunc(func(_ context.Context, question string) bool {
					answer, err := prompt(cmd, question+" [y/N] ")
					if err != nil {
						return false
					}
					answer = strings.ToLower(answer)
					return answer == "y" || answer == "yes"
				})
			}

			engine, auth, err := app.openEngine(cmd.Context(), confirm)
			if err != nil {
				return err
			}
			ref, err := engine.ItemRefAt(args[0], index)
			if err != nil {
				return err
			}

			if err := engine.DeleteItem(cmd.Context(), args[0], index); err != nil {
				if errors.Is(err, menusync.ErrNotConfirmed) {
					fmt.Fprintln(cmd.OutOrStdout(), "Cancelled")
					return nil
				}
				return app.explain(auth, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", describeRef(ref))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

// openEngine restores the admin session and loads the menu.
func (app *App) openEngine(ctx context.Context, confirm menusync.Confirmer) (*menusync.Engine, *adminauth.Controller, error) {
	auth := adminauth.NewController(app.API, app.Store, app.Logger)
	if auth.Start(ctx) != adminauth.Authenticated {
		return nil, nil, errNotLoggedIn
	}

	engine := menusync.NewEngine(app.API, auth, confirm, app.Logger)
	if err := engine.Load(ctx); err != nil {
		return nil, nil, app.explain(auth, err)
	}
	return engine, auth, nil
}

// explain turns a forced logout into an operator-facing message.
func (app *App) explain(auth *adminauth.Controller, err error) error {
	if auth.State() == adminauth.Unauthenticated {
		return fmt.Errorf("admin session expired, log in again: %w", err)
	}
	return err
}
