// Copyright 2025 The YCloud ML SDK Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/go-ycloud/ycml-go/auth"
)

var whoamiProfile string

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the credential source the environment resolves to",
	Long: heredoc.Doc(`
		whoami walks the credential resolution chain (YC_API_KEY,
		YC_IAM_TOKEN, YC_OAUTH_TOKEN, the metadata service, YC_TOKEN, the
		yc CLI) and reports which source wins and what it yields. The
		secret value itself is never printed.
	`),
	RunE: runWhoami,
}

func init() {
	whoamiCmd.Flags().StringVar(&whoamiProfile, "profile", "", "yc CLI profile to consult")
}

func runWhoami(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	var opts []auth.ResolveOption
	if whoamiProfile != "" {
		opts = append(opts, auth.WithProfile(whoamiProfile))
	}

	source, err := auth.Resolve(ctx, opts...)
	if err != nil {
		return err
	}

	cred, err := source.Resolve(ctx)
	if err != nil {
		return fmt.Errorf("source %s failed to produce a credential: %w", source.Name(), err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "source:    %s\n", source.Name())
	fmt.Fprintf(out, "kind:      %s\n", cred.Kind())
	fmt.Fprintf(out, "per-call:  %t\n", auth.ResolvesPerCall(source))
	if expiry := cred.ExpiresAt(); !expiry.IsZero() {
		fmt.Fprintf(out, "expires:   %s\n", expiry.Format("2006-01-02T15:04:05Z07:00"))
	} else {
		fmt.Fprintln(out, "expires:   never")
	}
	return nil
}
