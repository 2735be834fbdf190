// Package cli はtasukuのコマンドラインインターフェースを提供します。
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stsysd/tasuku/config"
)

// newRootCmd はルートコマンドを生成します。引数なしで実行するとserveと同じ動作になります。
func newRootCmd(version string) *cobra.Command {
	v := config.NewViper()

	rootCmd := &cobra.Command{
		Use:   "tasuku",
		Short: "tasuku - a small task tracker",
		Long: `tasuku is a single-user task tracker served over HTTP.

Tasks live in memory (or an in-memory SQLite database) and are lost on exit.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, v)
		},
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// サブコマンドにも引き継ぐ
	bindServeFlags(rootCmd, v)

	rootCmd.AddCommand(newServeCmd(v))
	rootCmd.AddCommand(newVersionCmd(version))
	return rootCmd
}

// bindServeFlags はサーバー設定のフラグを登録し、viperに紐付けます。
func bindServeFlags(cmd *cobra.Command, v *viper.Viper) {
	flags := cmd.PersistentFlags()
	flags.String("port", v.GetString(config.KeyPort), "HTTP server port")
	flags.String("store", v.GetString(config.KeyStore), "task store (memory or sqlite)")
	flags.Bool("seed", v.GetBool(config.KeySeed), "create sample tasks at startup")
	flags.String("seed-file", v.GetString(config.KeySeedFile), "YAML file with the sample tasks")
	flags.String("log-level", v.GetString(config.KeyLogLevel), "log level (debug, info, warn, error)")
	flags.String("config", v.GetString(config.KeyConfigFile), "config file")

	// フラグ名と設定キーの対応
	for key, name := range map[string]string{
		config.KeyPort:       "port",
		config.KeyStore:      "store",
		config.KeySeed:       "seed",
		config.KeySeedFile:   "seed-file",
		config.KeyLogLevel:   "log-level",
		config.KeyConfigFile: "config",
	} {
		_ = v.BindPFlag(key, flags.Lookup(name))
	}
}

// Execute はルートコマンドを実行します。
func Execute(version string) error {
	if err := newRootCmd(version).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}
