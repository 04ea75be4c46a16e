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
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/tensorgrad/tensorgrad/pkg/ir"
	"github.com/tensorgrad/tensorgrad/pkg/sexp"
)

// defaultDumpWidth is used when stdout is not a terminal (e.g. piped to a
// file) and --width was not given explicitly.
const defaultDumpWidth = 100

var dumpIrCmd = &cobra.Command{
	Use:   "dump-ir [flags] file.tsr",
	Short: "parse a tensorgrad kernel and print its IR as an S-expression.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		kernel := readKernel(args[0])

		width := GetFlagInt(cmd, "width")
		if width <= 0 {
			width = terminalWidth()
		}

		fmt.Println(sexp.Format(ir.LispOfKernel(kernel), width))
	},
}

// terminalWidth reports the current terminal's column count via x/term,
// falling back to defaultDumpWidth when stdout is not a terminal.
func terminalWidth() int {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return defaultDumpWidth
	}

	w, _, err := term.GetSize(fd)
	if err != nil || w <= 0 {
		return defaultDumpWidth
	}

	return w
}

// GetFlagInt gets an expected int flag, or exits if an error arises.
func GetFlagInt(cmd *cobra.Command, flag string) int {
	r, err := cmd.Flags().GetInt(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	return r
}

func init() {
	rootCmd.AddCommand(dumpIrCmd)
	dumpIrCmd.Flags().Int("width", 0, "wrap width in columns (defaults to the terminal width, or 100 when not a terminal).")
}
