package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	skipRefresh bool

	curateCmd = &cobra.Command{
		Use:   "curate",
		Short: "Refresh profile embeddings and run one curation pass",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			e, err := newEngine(ctx, envName)
			if err != nil {
				return err
			}
			defer e.Close()

			if !skipRefresh {
				if err := e.refreshProfiles(ctx); err != nil {
					return err
				}
			}

			report, err := e.passes.Run(ctx)
			if err != nil {
				e.logger.Error("curation pass failed", zap.Error(err))
			}

			out, merr := json.MarshalIndent(report, "", "  ")
			if merr != nil {
				return fmt.Errorf("encode report: %w", merr)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return err
		},
	}

	consolidateCmd = &cobra.Command{
		Use:   "consolidate <client-id>",
		Short: "Rebuild one client's slate from the full candidate pool",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			e, err := newEngine(ctx, envName)
			if err != nil {
				return err
			}
			defer e.Close()

			sl, err := e.passes.Reconsolidate(ctx, args[0])
			if err != nil {
				return fmt.Errorf("consolidate %s: %w", args[0], err)
			}
			for i, entry := range sl.Entries() {
				fmt.Fprintf(cmd.OutOrStdout(), "%2d. %s  %3d  %v\n",
					i+1, entry.CandidateID(), entry.Score(), entry.Reasons())
			}
			return nil
		},
	}

	refreshCmd = &cobra.Command{
		Use:   "refresh-profiles",
		Short: "Recompute every client's profile embedding",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			e, err := newEngine(ctx, envName)
			if err != nil {
				return err
			}
			defer e.Close()
			return e.refreshProfiles(ctx)
		},
	}
)

func init() {
	curateCmd.Flags().BoolVar(&skipRefresh, "skip-refresh", false, "do not recompute profile embeddings first")
	rootCmd.AddCommand(curateCmd, consolidateCmd, refreshCmd)
}
