package main

import (
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/bwmarrin/discordgo"
	"github.com/spf13/cobra"

	"gerard.app/bot/core/config"
	"gerard.app/bot/internal/command"
	"gerard.app/bot/internal/discord"
)

var (
	logger  *slog.Logger
	guildID string
)

func main() {
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	root := &cobra.Command{
		Use:   "commands",
		Short: "Manage Gérard's slash commands",
		Long:  "Registers and inspects the slash commands Discord shows for this application.",
	}

	root.PersistentFlags().StringVarP(&guildID, "guild", "g", "", "target one guild instead of the global command set")

	root.AddCommand(installCmd())
	root.AddCommand(listCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// The handlers are never invoked here, only the definitions are read.
func definitions() []*discordgo.ApplicationCommand {
	return command.NewRegistry(
		command.NewPing(),
		command.NewAsk(nil, nil),
	).Definitions()
}

func connect() (*discordgo.Session, config.DiscordConfig, error) {
	cfg, err := config.LoadDiscord()
	if err != nil {
		return nil, config.DiscordConfig{}, err
	}
	session, err := discord.NewSession(cfg.BotToken)
	if err != nil {
		return nil, config.DiscordConfig{}, err
	}
	return session, cfg, nil
}

func installCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "install",
		Short: "Overwrite the registered commands with the current definitions",
		RunE: func(cmd *cobra.Command, args []string) error {
			session, cfg, err := connect()
			if err != nil {
				return err
			}

			defs := definitions()
			installed, err := session.ApplicationCommandBulkOverwrite(cfg.AppID, guildID, defs,
				discordgo.WithContext(cmd.Context()))
			if err != nil {
				return fmt.Errorf("installing commands: %w", err)
			}

			for _, c := range installed {
				logger.Info("command installed", "name", c.Name, "id", c.ID, "guild", guildID)
			}
			return nil
		},
	}
}

func listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show the commands currently registered on Discord",
		RunE: func(cmd *cobra.Command, args []string) error {
			session, cfg, err := connect()
			if err != nil {
				return err
			}

			registered, err := session.ApplicationCommands(cfg.AppID, guildID,
				discordgo.WithContext(cmd.Context()))
			if err != nil {
				return fmt.Errorf("listing commands: %w", err)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tID\tDESCRIPTION")
			for _, c := range registered {
				fmt.Fprintf(w, "%s\t%s\t%s\n", c.Name, c.ID, c.Description)
			}
			return w.Flush()
		},
	}
}
