package cli

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/cagandemirsamli/personalassistant/config"
)

// Version is set at build time with -ldflags "-X <module>/internal/cli.Version=...".
var Version = "dev"

// Execute runs the assistant command tree. Interrupts cancel the running
// request.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return newRootCmd(newModel).ExecuteContext(ctx)
}

func newRootCmd(models modelFactory) *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:           "assistant",
		Short:         "Personal assistant for expenses, coursework, projects and email",
		Long:          "assistant routes each request to a specialized agent (expenses, academic, projects, email) and keeps one conversation history across them.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"config file (default ./assistant.yaml or $HOME/.config/personal-assistant/assistant.yaml)")

	load := func() (*config.Config, error) { return config.Load(configPath) }

	rootCmd.AddCommand(
		newVersionCmd(),
		newConfigCmd(load),
		newAskCmd(load, models),
		newChatCmd(load, models),
	)

	return rootCmd
}
