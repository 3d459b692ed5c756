package main

import (
	"context"
	"os"

	"github.com/aretw0/dramaflow"
	"github.com/aretw0/dramaflow/internal/cli"
	"github.com/aretw0/dramaflow/internal/presentation/tui"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Talk to the agents in the terminal",
	Long: `Starts an interactive session. Replies are rendered as markdown when stdout is a terminal.
Type /help inside the session for commands.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sessionID, _ := cmd.Flags().GetString("session")
		noBanner, _ := cmd.Flags().GetBool("no-banner")
		if sessionID == "" {
			sessionID = uuid.NewString()
		}

		sigCtx := cli.NewSignalContext(context.Background())
		defer sigCtx.Cancel()

		rt, err := cli.Build(sigCtx, cfg, logger, nil)
		if err != nil {
			return err
		}
		defer rt.Close()

		opts := cli.ChatOptions{
			SessionID: sessionID,
			Version:   dramaflow.Version,
		}
		if fd := int(os.Stdout.Fd()); term.IsTerminal(fd) {
			width := 0
			if w, _, err := term.GetSize(fd); err == nil {
				width = w - 4
			}
			opts.Render = tui.NewRenderer(width)
			opts.Banner = !noBanner
		}

		return cli.RunChat(sigCtx, rt.Engine, os.Stdin, os.Stdout, opts)
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
	chatCmd.Flags().String("session", "", "Session id to use (a new one is generated when empty)")
	chatCmd.Flags().Bool("no-banner", false, "Do not print the banner")
}
