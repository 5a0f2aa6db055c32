// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"termsng/internal/models"
	"termsng/internal/prompt"
	"termsng/internal/validation"
)

func newPromptCmd() *cobra.Command {
	var profilePath string

	cmd := &cobra.Command{
		Use:   "prompt",
		Short: "Print the generation prompt for a business profile",
		Long: `Reads a business profile from a YAML file, validates it the same way the
API does, and prints the prompt that would be sent to the AI provider.
Nothing is sent.

Example profile:
  businessName: Acme Ltd
  businessType: E-commerce
  servicesDescription: We sell widgets online.
  contactEmail: hello@acme.ng
  hasRefundPolicy: true
  refundPolicyDescription: Refunds within 7 days of delivery.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(profilePath)
			if err != nil {
				return err
			}
			defer f.Close()

			p, err := readProfile(f)
			if err != nil {
				return err
			}
			return writePrompt(cmd.OutOrStdout(), cmd.ErrOrStderr(), p)
		},
	}

	cmd.Flags().StringVarP(&profilePath, "profile", "p", "", "YAML business profile")
	_ = cmd.MarkFlagRequired("profile")
	return cmd
}

// readProfile decodes a YAML profile over the defaults.
func readProfile(r io.Reader) (models.BusinessProfile, error) {
	p := models.DefaultProfile()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil && !errors.Is(err, io.EOF) {
		return p, fmt.Errorf("parse profile: %w", err)
	}
	return p, nil
}

// writePrompt validates p and prints its prompt to out. Validation
// messages go to errOut.
func writePrompt(out, errOut io.Writer, p models.BusinessProfile) error {
	if err := validation.New().Profile(p); err != nil {
		var fields validation.Errors
		if !errors.As(err, &fields) {
			return err
		}
		keys := make([]string, 0, len(fields))
		for k := range fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(errOut, "%s: %s\n", k, fields[k])
		}
		return fmt.Errorf("profile has %d invalid field(s)", len(fields))
	}

	kind := "basic"
	if prompt.IsPremium(p) {
		kind = "pro"
	}
	fmt.Fprintf(errOut, "# %s document for %s\n", kind, p.BusinessName)
	_, err := io.WriteString(out, prompt.Build(p))
	return err
}
