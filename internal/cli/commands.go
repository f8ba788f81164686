package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cagandemirsamli/personalassistant/config"
)

// apologize is printed when a request fails; details go to the log.
const apologize = "Sorry, something went wrong while handling that request. Please try again."

type configLoader func() (*config.Config, error)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), Version)
			return err
		},
	}
}

func newConfigCmd(load configLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			out, err := cfg.YAML()
			if err != nil {
				return fmt.Errorf("render config: %w", err)
			}
			if cfg.File != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "# loaded from %s\n", cfg.File)
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
}

func newAskCmd(load configLoader, models modelFactory) *cobra.Command {
	var sessionName string

	cmd := &cobra.Command{
		Use:   "ask <request>",
		Short: "Send one request and print the reply",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := start(load, models)
			if err != nil {
				return err
			}
			defer a.close() //nolint:errcheck

			reply, err := a.assistant.Process(cmd.Context(), strings.Join(args, " "), a.session(sessionName))
			if err != nil {
				a.logger.Error("cli.ask.failed", "error", err.Error())
				return fmt.Errorf("ask: %w", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), reply)
			return err
		},
	}
	cmd.Flags().StringVar(&sessionName, "session", "", "conversation name (default session.name)")
	return cmd
}

func newChatCmd(load configLoader, models modelFactory) *cobra.Command {
	var sessionName string

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive conversation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := start(load, models)
			if err != nil {
				return err
			}
			defer a.close() //nolint:errcheck

			return a.chat(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), a.session(sessionName))
		},
	}
	cmd.Flags().StringVar(&sessionName, "session", "", "conversation name (default session.name)")
	return cmd
}

func start(load configLoader, models modelFactory) (*app, error) {
	cfg, err := load()
	if err != nil {
		return nil, err
	}
	return wireApp(cfg, models)
}

func (a *app) session(flag string) string {
	if flag != "" {
		return flag
	}
	return a.cfg.Session.Name
}

// chat reads one request per line until EOF or quit/exit/q. A failed
// request is reported and the loop continues.
func (a *app) chat(ctx context.Context, in io.Reader, out io.Writer, sessionID string) error {
	fmt.Fprintf(out, "Personal Assistant (conversation %q). Type 'quit' to exit.\n", sessionID)

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "\nYou: ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		switch strings.ToLower(line) {
		case "":
			continue
		case "quit", "exit", "q":
			fmt.Fprintln(out, "Goodbye!")
			return nil
		}

		reply, err := a.assistant.Process(ctx, line, sessionID)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return err
			}
			a.logger.Error("cli.chat.failed", "session_id", sessionID, "error", err.Error())
			reply = apologize
		}
		fmt.Fprintf(out, "\nAssistant: %s\n", reply)
	}
}
