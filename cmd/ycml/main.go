// Copyright 2025 The YCloud ML SDK Authors
// SPDX-License-Identifier: Apache-2.0

// Command ycml is a small diagnostic CLI for the SDK.
package main

import (
	"fmt"
	"os"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	ycml "github.com/go-ycloud/ycml-go"
)

var rootCmd = &cobra.Command{
	Use:   "ycml",
	Short: "Diagnostics for the Yandex Cloud ML SDK",
	Long: heredoc.Doc(`
		ycml inspects the SDK's view of its environment: which credential
		source the resolution chain would select, and what kind of
		credential it yields.
	`),
	Version:       ycml.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(whoamiCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "ycml:", err)
		os.Exit(1)
	}
}
