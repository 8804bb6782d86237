// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"sort"

	"lease-scan/internal/suppressions"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout))
}

func run(args []string, out io.Writer) int {
	fs := flag.NewFlagSet("lease-suppress", flag.ContinueOnError)
	fs.SetOutput(out)
	var (
		suppressionFile = fs.String("suppression-file", "", "Path to suppression file (default: <config dir>/suppressions.yaml)")
		action          = fs.String("action", "", "Action to perform: list, remove, cleanup, enable, disable")
		id              = fs.String("id", "", "Suppression rule ID (for remove and disable)")
		hash            = fs.String("hash", "", "Flag hash (for enable)")
		reason          = fs.String("reason", "", "Reason for suppression (for enable)")
	)
	if err := fs.Parse(args); err != nil {
		return 1
	}

	if *action == "" {
		fmt.Fprintln(out, "Error: --action is required")
		fmt.Fprintln(out, "Usage: lease-suppress --action <list|remove|cleanup|enable|disable> [options]")
		return 1
	}

	manager := suppressions.NewSuppressionManager(*suppressionFile)

	switch *action {
	case "list":
		listSuppressions(out, manager)
		return 0
	case "remove":
		if *id == "" {
			fmt.Fprintln(out, "Error: --id is required for remove action")
			return 1
		}
		if err := manager.RemoveSuppression(*id); err != nil {
			fmt.Fprintf(out, "Error removing suppression: %v\n", err)
			return 1
		}
		fmt.Fprintf(out, "Successfully removed suppression rule: %s\n", *id)
	case "cleanup":
		removed, err := manager.CleanupExpired()
		if err != nil {
			fmt.Fprintf(out, "Error cleaning up suppressions: %v\n", err)
			return 1
		}
		fmt.Fprintf(out, "Cleaned up %d expired suppression rules\n", removed)
	case "enable":
		if *hash == "" {
			fmt.Fprintln(out, "Error: --hash is required for enable action")
			return 1
		}
		if err := manager.EnableSuppressionByHash(*hash, *reason); err != nil {
			fmt.Fprintf(out, "Error enabling suppression: %v\n", err)
			return 1
		}
		fmt.Fprintf(out, "Successfully enabled suppression for hash: %s\n", abbreviate(*hash))
	case "disable":
		if *id == "" {
			fmt.Fprintln(out, "Error: --id is required for disable action")
			return 1
		}
		if err := manager.DisableSuppressionByID(*id); err != nil {
			fmt.Fprintf(out, "Error disabling suppression: %v\n", err)
			return 1
		}
		fmt.Fprintf(out, "Successfully disabled suppression rule: %s\n", *id)
	default:
		fmt.Fprintf(out, "Error: Unknown action '%s'\n", *action)
		fmt.Fprintln(out, "Valid actions: list, remove, cleanup, enable, disable")
		return 1
	}
	return 0
}

func listSuppressions(out io.Writer, manager *suppressions.SuppressionManager) {
	rules := manager.ListSuppressions()
	if len(rules) == 0 {
		fmt.Fprintln(out, "No suppression rules found.")
		return
	}

	fmt.Fprintf(out, "Found %d suppression rules in %s:\n\n", len(rules), manager.GetConfigPath())
	for _, rule := range rules {
		state := "enabled"
		if !rule.Enabled {
			state = "disabled"
		}
		fmt.Fprintf(out, "ID: %s (%s)\n", rule.ID, state)
		fmt.Fprintf(out, "Hash: %s\n", rule.Hash)
		fmt.Fprintf(out, "Reason: %s\n", rule.Reason)
		if rule.CreatedBy != "" {
			fmt.Fprintf(out, "Created By: %s\n", rule.CreatedBy)
		}
		fmt.Fprintf(out, "Created At: %s\n", rule.CreatedAt.Format("2006-01-02 15:04:05"))
		if rule.ExpiresAt != nil {
			fmt.Fprintf(out, "Expires At: %s\n", rule.ExpiresAt.Format("2006-01-02 15:04:05"))
		}
		if len(rule.Metadata) > 0 {
			keys := make([]string, 0, len(rule.Metadata))
			for k := range rule.Metadata {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintln(out, "Metadata:")
			for _, k := range keys {
				fmt.Fprintf(out, "  %s: %s\n", k, rule.Metadata[k])
			}
		}
		fmt.Fprintln(out, "---")
	}
}

func abbreviate(hash string) string {
	if len(hash) > 8 {
		return hash[:8]
	}
	return hash
}
