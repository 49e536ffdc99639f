// Copyright 2024 Google Inc. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cfg

import (
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config is the process-wide configuration of the layer-diff engine.
// Unlike the generated, hundred-plus-field config this is adapted from,
// this surface is small enough to hand-write rather than generate from a
// YAML flag spec.
type Config struct {
	// BlockSize is the size, in bytes, of every wire frame LayerDiff
	// returns (spec §6's BLOCK).
	BlockSize int `yaml:"block-size" mapstructure:"block-size"`

	// SwapLayersForCommit bypasses real diffing in favor of reporting a
	// layer's raw size (spec §4.6 mode 2), mirroring the commit path
	// that swaps layers in place instead of diffing them.
	SwapLayersForCommit bool `yaml:"swap-layers-for-commit" mapstructure:"swap-layers-for-commit"`

	Logging LoggingConfig `yaml:"logging"`
}

type LoggingConfig struct {
	Severity LogSeverity `yaml:"severity"`

	// Format is either "text" or "json".
	Format string `yaml:"format"`

	// FilePath is where logs are written; empty means stderr.
	FilePath string `yaml:"file-path" mapstructure:"file-path"`

	LogRotate LogRotateConfig `yaml:"log-rotate" mapstructure:"log-rotate"`
}

type LogRotateConfig struct {
	MaxFileSizeMB   int  `yaml:"max-file-size-mb" mapstructure:"max-file-size-mb"`
	BackupFileCount int  `yaml:"backup-file-count" mapstructure:"backup-file-count"`
	Compress        bool `yaml:"compress"`
}

// DefaultLogRotateConfig mirrors the teacher's rotation defaults.
func DefaultLogRotateConfig() LogRotateConfig {
	return LogRotateConfig{
		MaxFileSizeMB:   512,
		BackupFileCount: 10,
		Compress:        false,
	}
}

func BindFlags(flagSet *pflag.FlagSet) error {
	var err error

	flagSet.IntP("block-size", "", DefaultBlockSize, "Size in bytes of each layer-diff wire frame.")
	if err = viper.BindPFlag("block-size", flagSet.Lookup("block-size")); err != nil {
		return err
	}

	flagSet.BoolP("swap-layers-for-commit", "", false, "Bypass diffing and report raw layer size instead.")
	if err = viper.BindPFlag("swap-layers-for-commit", flagSet.Lookup("swap-layers-for-commit")); err != nil {
		return err
	}

	flagSet.StringP("log-severity", "", string(InfoLogSeverity), "Logging severity: TRACE, DEBUG, INFO, WARNING, ERROR, or OFF.")
	if err = viper.BindPFlag("logging.severity", flagSet.Lookup("log-severity")); err != nil {
		return err
	}

	flagSet.StringP("log-format", "", "text", "Logging output format: text or json.")
	if err = viper.BindPFlag("logging.format", flagSet.Lookup("log-format")); err != nil {
		return err
	}

	flagSet.StringP("log-file", "", "", "Path to write logs to; empty means stderr.")
	if err = viper.BindPFlag("logging.file-path", flagSet.Lookup("log-file")); err != nil {
		return err
	}

	flagSet.IntP("log-rotate-max-file-size-mb", "", DefaultLogRotateConfig().MaxFileSizeMB, "Maximum size in MB of a log file before it's rotated.")
	if err = viper.BindPFlag("logging.log-rotate.max-file-size-mb", flagSet.Lookup("log-rotate-max-file-size-mb")); err != nil {
		return err
	}

	flagSet.IntP("log-rotate-backup-file-count", "", DefaultLogRotateConfig().BackupFileCount, "Number of rotated log files to retain; 0 retains all.")
	if err = viper.BindPFlag("logging.log-rotate.backup-file-count", flagSet.Lookup("log-rotate-backup-file-count")); err != nil {
		return err
	}

	flagSet.BoolP("log-rotate-compress", "", DefaultLogRotateConfig().Compress, "Compress rotated log files.")
	if err = viper.BindPFlag("logging.log-rotate.compress", flagSet.Lookup("log-rotate-compress")); err != nil {
		return err
	}

	return nil
}
