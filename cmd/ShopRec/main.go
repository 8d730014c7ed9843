package main

import (
	"os"

	"ShopRec/pkg/zlog"

	"go.uber.org/zap"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		zlog.Error("command failed", zap.Error(err))
		zlog.Sync()
		os.Exit(1)
	}
	zlog.Sync()
}
