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

	"github.com/tensorgrad/tensorgrad/pkg/autodiff"
)

var gradCmd = &cobra.Command{
	Use:   "grad [flags] file.tsr",
	Short: "differentiate a tensorgrad kernel and emit the gradient as C.",
	Long: `Parse a single tensorgrad source file, run reverse-mode automatic
differentiation of --output with respect to --wrt, and emit the resulting
gradient kernel as C.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if GetFlag(cmd, "verbose") {
			log.SetLevel(log.DebugLevel)
		}

		wrt := GetString(cmd, "wrt")
		output := GetString(cmd, "output")

		if wrt == "" || output == "" {
			fmt.Println("both --wrt and --output must be given")
			os.Exit(2)
		}

		kernel := readKernel(args[0])

		gradKernel, err := autodiff.GradKernel(kernel, wrt, output)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		writeKernel(gradKernel, GetString(cmd, "outfile"))
	},
}

//nolint:errcheck
func init() {
	rootCmd.AddCommand(gradCmd)
	gradCmd.Flags().String("wrt", "", "name of the tensor to differentiate with respect to.")
	gradCmd.Flags().String("output", "", "name of the forward output tensor whose adjoint seeds the gradient.")
	gradCmd.Flags().StringP("outfile", "o", "", "specify output file (defaults to stdout).")
	gradCmd.MarkFlagRequired("wrt")
	gradCmd.MarkFlagRequired("output")
}
