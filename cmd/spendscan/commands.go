package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/pankaj-dahiya-devops/spendscan/internal/engine"
	"github.com/pankaj-dahiya-devops/spendscan/internal/models"
	"github.com/pankaj-dahiya-devops/spendscan/internal/output"
	"github.com/pankaj-dahiya-devops/spendscan/internal/snapshot"
	"github.com/pankaj-dahiya-devops/spendscan/internal/version"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "spendscan",
		Short:         "Find unused and over-provisioned spend across cloud and SaaS accounts",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("config", "", "Config file (default: ~/.config/spendscan/config.yaml)")
	root.PersistentFlags().String("db", "", "Database DSN (overrides config)")

	root.AddCommand(
		newScanCmd(),
		newResultsCmd(),
		newSnapshotCmd(),
		newCommunityStatsCmd(),
		newConnectionsCmd(),
		newDoctorCmd(),
		newVersionCmd(),
	)
	return root
}

type renderFlags struct {
	format          string
	summary         bool
	wasteOnly       bool
	recommendations bool
}

func (f *renderFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.format, "format", "table", "Output format: table or json")
	cmd.Flags().BoolVar(&f.summary, "summary", false, "Print totals, status breakdown and the top 5 findings by savings")
	cmd.Flags().BoolVar(&f.wasteOnly, "waste-only", false, "Hide active findings in the table")
	cmd.Flags().BoolVar(&f.recommendations, "recommendations", false, "Add a recommendation column to the table")
}

func newScanCmd() *cobra.Command {
	var (
		userID string
		force  bool
		rf     renderFlags
	)
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan a user's stale connections and print the current findings",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(a *app) error {
				res, err := a.orchestrator.Trigger(cmd.Context(), userID, force)
				if err != nil {
					return fmt.Errorf("scan failed: %w", err)
				}
				w := cmd.OutOrStdout()
				if rf.format == "json" {
					return output.WriteJSON(w, res)
				}
				printTriggerHeader(w, res)
				renderFindings(w, a, res.Findings, rf)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "User ID to scan")
	cmd.Flags().BoolVar(&force, "force", false, "Rescan every connection regardless of staleness")
	_ = cmd.MarkFlagRequired("user")
	rf.register(cmd)
	return cmd
}

func newResultsCmd() *cobra.Command {
	var (
		userID string
		rf     renderFlags
	)
	cmd := &cobra.Command{
		Use:   "results",
		Short: "Print a user's persisted findings without scanning",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(a *app) error {
				findings, err := a.orchestrator.GetResults(cmd.Context(), userID)
				if err != nil {
					return err
				}
				w := cmd.OutOrStdout()
				if rf.format == "json" {
					return output.WriteJSON(w, findings)
				}
				renderFindings(w, a, findings, rf)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "User ID")
	_ = cmd.MarkFlagRequired("user")
	rf.register(cmd)
	return cmd
}

func newSnapshotCmd() *cobra.Command {
	var (
		userID string
		days   int
		format string
	)
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Write today's savings snapshot for a user and print the history",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(a *app) error {
				if err := a.snapshots.Snapshot(cmd.Context(), userID); err != nil {
					return err
				}
				rows, err := a.store.ListSavingsHistory(cmd.Context(), userID, days)
				if err != nil {
					return err
				}
				if format == "json" {
					return output.WriteJSON(cmd.OutOrStdout(), rows)
				}
				output.RenderHistory(cmd.OutOrStdout(), rows, a.cfg.Pricing.Currency)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "User ID")
	cmd.Flags().IntVar(&days, "limit", 30, "Maximum number of history rows to print")
	cmd.Flags().StringVar(&format, "format", "table", "Output format: table or json")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func newCommunityStatsCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "community-stats",
		Short: "Roll today's user snapshots into the community statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(a *app) error {
				if err := a.snapshots.UpdateCommunityStats(cmd.Context()); err != nil {
					return err
				}
				stats, err := a.store.GetCommunityStats(cmd.Context(), snapshot.Day(time.Now()))
				if err != nil {
					return err
				}
				if format == "json" {
					return output.WriteJSON(cmd.OutOrStdout(), stats)
				}
				output.RenderCommunity(cmd.OutOrStdout(), stats, a.cfg.Pricing.Currency)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&format, "format", "table", "Output format: table or json")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprint(cmd.OutOrStdout(), version.Info())
		},
	}
}

func printTriggerHeader(w io.Writer, res *engine.TriggerResult) {
	fmt.Fprintf(w, "Connections: %d  Scanned: %d  Cached: %v\n",
		res.TotalConnections, res.ScannedConnections, res.Cached)
	for _, c := range res.Connections {
		line := fmt.Sprintf("  %-38s  %-7s  %-8s", c.ConnectionID, c.Provider, c.State)
		switch {
		case c.Error != "":
			line += "  " + c.Error
		case c.Degraded:
			line += fmt.Sprintf("  degraded (%d warnings)", len(c.Warnings))
		case c.Reason != "":
			line += "  " + c.Reason
		}
		fmt.Fprintln(w, line)
	}
	fmt.Fprintln(w)
}

func renderFindings(w io.Writer, a *app, findings []models.Finding, rf renderFlags) {
	if rf.summary {
		output.RenderSummary(w, findings, a.cfg.Pricing.Currency, 5)
		return
	}
	output.RenderTable(w, findings, output.TableOptions{
		Currency:              a.cfg.Pricing.Currency,
		WasteOnly:             rf.wasteOnly,
		IncludeRecommendation: rf.recommendations,
	})
}
