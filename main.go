// Package main はアプリケーションのエントリーポイントを提供します。
package main

import (
	"os"

	"github.com/stsysd/tasuku/cli"
)

var version = "dev"

func main() {
	if err := cli.Execute(version); err != nil {
		os.Exit(1)
	}
}
