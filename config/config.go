// Package config はアプリケーション設定を管理します。
package config

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// 環境変数のプレフィックス（TASUKU_SERVER_PORT など）
const envPrefix = "TASUKU"

// 設定キー
const (
	KeyConfigFile = "config"
	KeyPort       = "server_port"
	KeyStore      = "store"
	KeySeed       = "seed"
	KeySeedFile   = "seed_file"
	KeyLogLevel   = "log_level"
)

// 利用可能なストア
const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
)

// Config はアプリケーション全体の設定を保持します。
type Config struct {
	// HTTPサーバーのポート
	Port string

	// タスクを保持するストア（memory または sqlite）
	Store string

	// 起動時にサンプルタスクを投入するかどうか
	Seed bool

	// サンプルタスクのYAMLファイル（空なら組み込みのサンプル）
	SeedFile string

	// ログレベル
	LogLevel string
}

// NewViper はデフォルト値と環境変数を設定したviperインスタンスを生成します。
func NewViper() *viper.Viper {
	v := viper.New()

	// デフォルト値の設定
	v.SetDefault(KeyPort, "8080")
	v.SetDefault(KeyStore, StoreMemory)
	v.SetDefault(KeySeed, true)
	v.SetDefault(KeySeedFile, "")
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyConfigFile, "")

	// 環境変数の設定
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	return v
}

// NewConfig は環境変数から設定を読み込み、Configインスタンスを生成します。
func NewConfig() (*Config, error) {
	return Load(NewViper())
}

// Load はviperから設定を読み込み、検証します。
// 設定ファイルが指定されていれば、環境変数・フラグより優先度の低い値として読み込みます。
func Load(v *viper.Viper) (*Config, error) {
	// 設定ファイルの読み込み
	if path := v.GetString(KeyConfigFile); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{
		Port:     v.GetString(KeyPort),
		Store:    strings.ToLower(v.GetString(KeyStore)),
		Seed:     v.GetBool(KeySeed),
		SeedFile: v.GetString(KeySeedFile),
		LogLevel: strings.ToLower(v.GetString(KeyLogLevel)),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate は設定値を検証します。
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("%s is required", KeyPort)
	}

	switch c.Store {
	case StoreMemory, StoreSQLite:
	default:
		return fmt.Errorf("unsupported store: %q (use %q or %q)", c.Store, StoreMemory, StoreSQLite)
	}

	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}

	return nil
}

// Addr はサーバーの待ち受けアドレスを返します。
func (c *Config) Addr() string {
	return ":" + c.Port
}
