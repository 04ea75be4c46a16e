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

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/tensorgrad/tensorgrad/pkg/emitter"
	"github.com/tensorgrad/tensorgrad/pkg/ir"
	"github.com/tensorgrad/tensorgrad/pkg/parser"
	"github.com/tensorgrad/tensorgrad/pkg/shapecheck"
)

var compileCmd = &cobra.Command{
	Use:   "compile [flags] file.tsr",
	Short: "compile a tensorgrad kernel into forward C.",
	Long: `Parse a single tensorgrad source file and emit the C translation of its
forward kernel.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if GetFlag(cmd, "verbose") {
			log.SetLevel(log.DebugLevel)
		}

		kernel := readKernel(args[0])

		if name := GetString(cmd, "kernel"); name != "" {
			kernel.Name = name
		}

		if !GetFlag(cmd, "no-shapecheck") {
			if err := shapecheck.Check(kernel); err != nil {
				fmt.Println(err)
				os.Exit(1)
			}
		}

		target := GetString(cmd, "target")
		if !cmd.Flags().Changed("target") && config.Target != "" {
			target = config.Target
		}

		switch target {
		case "cpu":
			kernel.Target = ir.CPU
		case "gpu":
			fmt.Println("unsupported target \"gpu\": only cpu code generation is implemented")
			os.Exit(1)
		default:
			fmt.Printf("unknown target %q: expected \"cpu\" or \"gpu\"\n", target)
			os.Exit(2)
		}

		writeKernel(kernel, GetString(cmd, "output"))
	},
}

// readKernel parses path into an *ir.Kernel, or exits with a diagnostic.
func readKernel(path string) *ir.Kernel {
	src, err := os.ReadFile(path)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	kernel, err := parser.Parse(string(src))
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	return kernel
}

// writeKernel emits kernel's forward C translation to output, or to stdout
// when output is empty.
func writeKernel(kernel *ir.Kernel, output string) {
	w := os.Stdout

	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		defer f.Close()

		w = f
	}

	if err := emitter.Emit(w, kernel); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

//nolint:errcheck
func init() {
	rootCmd.AddCommand(compileCmd)
	compileCmd.Flags().StringP("output", "o", "", "specify output file (defaults to stdout).")
	compileCmd.Flags().String("kernel", "", "override the emitted kernel's function name.")
	compileCmd.Flags().String("target", "cpu", "code generation target: cpu or gpu.")
	compileCmd.Flags().Bool("no-shapecheck", false, "skip the dimension-compatibility check before emitting.")
}
