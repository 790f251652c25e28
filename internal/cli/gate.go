package cli

import (
	"errors"
	"fmt"

	"embruns/internal/client/access"

	"github.com/spf13/cobra"
)

// NewGateCommand runs the visitor gate once, prompting for a code when the
// site is locked and no stored session is accepted.
func NewGateCommand(app *App) *cobra.Command {
	var code string

	cmd := &cobra.Command{
		Use:   "gate",
		Short: "Pass the visitor access gate",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			gate := access.NewController(app.API, app.Store, app.Logger)

			if gate.Start(ctx) == access.PromptingForCode {
				if code == "" {
					var err error
					if code, err = prompt(cmd, "Access code: "); err != nil {
						return err
					}
				}
				if err := gate.Submit(ctx, code); err != nil {
					if gate.Error() != "" {
						return errors.New(gate.Error())
					}
					return err
				}
			}

			if info := gate.Info(); info != nil {
				fmt.Fprintf(out, "Welcome to %s, %s\n", info.Name, info.Tagline)
			}
			fmt.Fprintf(out, "Access %s\n", gate.State())
			return nil
		},
	}

	cmd.Flags().StringVarP(&code, "code", "c", "", "access code")
	return cmd
}
