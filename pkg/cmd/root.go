// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.

// Package cmd implements the tensorgrad command-line driver: compile,
// grad, and dump-ir subcommands over the parser/autodiff/emitter/shapecheck
// pipeline.
package cmd

import (
	"fmt"
	"os"
	"runtime/debug"
	"strconv"
	"sync"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// Version is filled when building with make, but *not* when installing via
// "go install".
var Version string

// config holds the values loaded from an optional tensorgrad.yaml in the
// working directory; subcommands consult it for flag defaults. Loaded once
// by rootCmd's PersistentPreRun, before any subcommand's Run executes.
var config *Config

// debugVerbosity is the integer level set via the DB_DEBUG_CODEGEN
// environment variable, read once at first use; 0 when unset or malformed.
// The --verbose flag layers over it the same way subcommand flags layer
// over tensorgrad.yaml defaults.
var debugVerbosity = sync.OnceValue(func() int {
	n, err := strconv.Atoi(os.Getenv("DB_DEBUG_CODEGEN"))
	if err != nil {
		return 0
	}

	return n
})

var rootCmd = &cobra.Command{
	Use:   "tensorgrad",
	Short: "A compiler for the tensorgrad index-space tensor language.",
	Long:  "A compiler and reverse-mode automatic differentiation toolbox for the tensorgrad index-space tensor language.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		config = cfg

		if debugVerbosity() > 0 {
			log.SetLevel(log.DebugLevel)
		}

		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		if GetFlag(cmd, "version") {
			fmt.Print("tensorgrad ")

			switch {
			case Version != "":
				fmt.Printf("%s", Version)
			case func() bool { _, ok := debug.ReadBuildInfo(); return ok }():
				info, _ := debug.ReadBuildInfo()
				fmt.Printf("%s", info.Main.Version)
			default:
				fmt.Print("(unknown version)")
			}

			fmt.Println()

			return
		}

		_ = cmd.Help()
	},
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main(); it only needs to run once.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().Bool("version", false, "Report version of this executable")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "increase logging verbosity")
}

// GetFlag gets an expected boolean flag, or exits if an error arises.
func GetFlag(cmd *cobra.Command, flag string) bool {
	r, err := cmd.Flags().GetBool(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	return r
}

// GetString gets an expected string flag, or exits if an error arises.
func GetString(cmd *cobra.Command, flag string) string {
	r, err := cmd.Flags().GetString(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	return r
}
