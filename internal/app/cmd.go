package app

import (
	"context"
	"fmt"

	"github.com/hitoshi/siteuser/internal/repository"
	"github.com/spf13/cobra"
)

// Command はサブコマンド名を表す。メトリクスのラベルにも使う。
type Command string

const (
	// CommandSetup はスキーマを初期化する。
	CommandSetup Command = "setup"
	// CommandLoad はサンプルユーザーを投入する。
	CommandLoad Command = "load"
	// CommandReport は稼働期間レポートを出力する。
	CommandReport Command = "report"
	// CommandFind は定義済みの条件でユーザー名を検索する。
	CommandFind Command = "find"
	// CommandAll はsetup、load、reportを順に実行する。
	CommandAll Command = "all"
)

// NewRootCommand はCLIのコマンドツリーを構築する。
func (a *App) NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "siteuser",
		Short:         "Set up, load and report on the site_user table",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" {
				return nil
			}
			return a.Init()
		},
	}
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.PersistentFlags().StringVar(&a.envFile, "env-file", ".env", "dotenv file loaded before reading the environment")

	setupCmd := &cobra.Command{
		Use:   string(CommandSetup),
		Short: "Create the site_user table, its types and columns",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runSetup(cmd.Context())
		},
	}

	loadCmd := &cobra.Command{
		Use:   string(CommandLoad),
		Short: "Insert the sample users that are not present yet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runLoad(cmd.Context())
		},
	}

	reportCmd := &cobra.Command{
		Use:   string(CommandReport),
		Short: "Print how long each user has been active",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runReport(cmd.Context())
		},
	}

	finderNames := make([]string, 0, len(repository.Finders()))
	for _, f := range repository.Finders() {
		finderNames = append(finderNames, string(f))
	}
	findCmd := &cobra.Command{
		Use:       string(CommandFind) + " <finder>",
		Short:     "Print the names of users matching a predefined condition",
		Long:      fmt.Sprintf("Print the names of users matching a predefined condition.\nAvailable finders: %v", finderNames),
		ValidArgs: finderNames,
		Args:      cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			finder, err := repository.ParseFinder(args[0])
			if err != nil {
				return err
			}
			return a.runFind(cmd.Context(), finder)
		},
	}

	allCmd := &cobra.Command{
		Use:   string(CommandAll),
		Short: "Run setup, load and report in order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runAll(cmd.Context())
		},
	}

	rootCmd.AddCommand(setupCmd, loadCmd, reportCmd, findCmd, allCmd)
	return rootCmd
}

// runAll は各処理を個別の接続で順に実行し、最初のエラーで中断する。
func (a *App) runAll(ctx context.Context) error {
	steps := []func(context.Context) error{a.runSetup, a.runLoad, a.runReport}
	for _, step := range steps {
		if err := step(ctx); err != nil {
			return err
		}
	}
	return nil
}
