// Copyright (C) 2024, amxrac. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import (
	"fmt"
	"os"

	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/amxrac/ovwigho/config"
	"github.com/amxrac/ovwigho/vm"
)

type harness struct {
	configPath  string
	logLevel    string
	logDir      string
	databaseDir string
	displayLogs bool
}

func NewRootCmd() *cobra.Command {
	h := &harness{}
	cmd := &cobra.Command{
		Use:   "ovwigho-cli",
		Short: "Size trees and drive ovwigho collections on a local ledger",
		Run: func(cmd *cobra.Command, _ []string) {
			_ = cmd.Help()
		},
	}

	cobra.EnablePrefixMatching = true
	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.DisableAutoGenTag = true
	cmd.SilenceErrors = true
	cmd.SilenceUsage = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})

	cmd.PersistentFlags().StringVar(&h.configPath, "config", "", "path to a JSON config file")
	cmd.PersistentFlags().StringVar(&h.logLevel, "log-level", "", "log level, overrides the config")
	cmd.PersistentFlags().StringVar(&h.logDir, "log-dir", "", "log directory, overrides the config")
	cmd.PersistentFlags().StringVar(&h.databaseDir, "database-dir", "", "ledger directory, overrides the config (empty keeps the ledger in memory)")
	cmd.PersistentFlags().BoolVar(&h.displayLogs, "display-logs", false, "write logs to stderr")

	cmd.AddCommand(
		newSizeCmd(),
		newPairsCmd(),
		newRunCmd(h),
	)
	return cmd
}

func (h *harness) config() (*config.Config, error) {
	var b []byte
	if len(h.configPath) > 0 {
		var err error
		b, err = os.ReadFile(h.configPath)
		if err != nil {
			return nil, err
		}
	}
	cfg, err := config.New(b)
	if err != nil {
		return nil, err
	}
	if len(h.logLevel) > 0 {
		cfg.LogLevel, err = logging.ToLevel(h.logLevel)
		if err != nil {
			return nil, err
		}
	}
	if len(h.logDir) > 0 {
		cfg.LogDir = h.logDir
	}
	if len(h.databaseDir) > 0 {
		cfg.DatabaseDir = h.databaseDir
	}
	return cfg, nil
}

// start opens the ledger. The returned func stops it and flushes logs.
func (h *harness) start() (*vm.VM, func(), error) {
	cfg, err := h.config()
	if err != nil {
		return nil, nil, err
	}
	loggingConfig := logging.Config{}
	loggingConfig.Directory = cfg.GetLogDir()
	loggingConfig.MaxSize = 8
	loggingConfig.MaxFiles = 4
	loggingConfig.MaxAge = 7
	loggingConfig.LogLevel = cfg.GetLogLevel()
	loggingConfig.DisplayLevel = cfg.GetLogLevel()
	loggingConfig.LogFormat = logging.JSON
	loggingConfig.DisableWriterDisplaying = !h.displayLogs

	factory := newLogFactory(loggingConfig)
	log, err := factory.Make(config.Name)
	if err != nil {
		factory.Close()
		return nil, nil, err
	}
	v, err := vm.New(log, cfg)
	if err != nil {
		factory.Close()
		return nil, nil, fmt.Errorf("failed to start ledger: %w", err)
	}
	return v, func() {
		if err := v.Close(); err != nil {
			log.Error("failed to close ledger", zap.Error(err))
		}
		factory.Close()
	}, nil
}
