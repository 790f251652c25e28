package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"embruns/internal/client/api"
	"embruns/internal/client/session"
	"embruns/internal/config"
	"embruns/internal/logger"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// App carries what every command needs. Each invocation is a fresh start:
// controllers are rebuilt and the menu is reloaded per command.
type App struct {
	API    *api.Client
	Store  session.Store
	Logger zerolog.Logger
}

func NewApp(cfg config.ClientConfig) *App {
	log := logger.InitLogger(cfg.LogLevel, "console")
	return &App{
		API:    api.NewClient(cfg.APIURL, nil, log),
		Store:  session.NewFileStore(cfg.SessionFile),
		Logger: log,
	}
}

// NewRootCmd creates the embrunsctl root command
func NewRootCmd(app *App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "embrunsctl",
		Short:         "Visitor gate and menu administration for Les Embruns",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		NewGateCommand(app),
		NewMenuCommand(app),
		NewAdminCommand(app),
	)

	return rootCmd
}

// prompt writes label and reads one trimmed line from the command's input.
func prompt(cmd *cobra.Command, label string) (string, error) {
	fmt.Fprint(cmd.OutOrStdout(), label)
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
