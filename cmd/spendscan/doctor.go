package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/pankaj-dahiya-devops/spendscan/internal/config"
	"github.com/pankaj-dahiya-devops/spendscan/internal/lock"
	"github.com/pankaj-dahiya-devops/spendscan/internal/policy"
	"github.com/pankaj-dahiya-devops/spendscan/internal/rules"
	"github.com/pankaj-dahiya-devops/spendscan/internal/store"
)

// DoctorResult is the structured output of spendscan doctor. It can be
// serialised to JSON via --format=json or rendered as text (default).
type DoctorResult struct {
	Config struct {
		Path  string `json:"path"`
		Valid bool   `json:"valid"`
		Error string `json:"error,omitempty"`
	} `json:"config"`

	Database struct {
		DSN       string `json:"dsn,omitempty"`
		Reachable bool   `json:"reachable"`
		Error     string `json:"error,omitempty"`
	} `json:"database"`

	Redis struct {
		Configured bool   `json:"configured"`
		Reachable  bool   `json:"reachable"`
		Error      string `json:"error,omitempty"`
	} `json:"redis"`

	Policy struct {
		Present bool     `json:"present"`
		Valid   bool     `json:"valid"`
		Errors  []string `json:"errors,omitempty"`
	} `json:"policy"`

	OverallHealthy bool `json:"overall_healthy"`
}

// doctorProbes are the external checks doctor performs.
type doctorProbes struct {
	openDB    func(dsn string) error
	pingRedis func(ctx context.Context, addr string) error
}

func defaultProbes() doctorProbes {
	return doctorProbes{
		openDB: func(dsn string) error {
			st, err := store.OpenSQLite(dsn, nil)
			if err != nil {
				return err
			}
			return st.Close()
		},
		pingRedis: func(ctx context.Context, addr string) error {
			_, rdb, err := lock.DialRedis(ctx, addr)
			if err != nil {
				return err
			}
			return rdb.Close()
		},
	}
}

func newDoctorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check configuration, database, lock backend and policy",
		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := cmd.Flags().GetString("format")
			path, _ := cmd.Flags().GetString("config")
			dsn, _ := cmd.Flags().GetString("db")
			result, err := runDoctor(cmd.Context(), config.NewFileLoader(path), dsn, defaultProbes(), cmd.OutOrStdout(), format)
			if err != nil {
				return err
			}
			if !result.OverallHealthy {
				os.Exit(1)
			}
			return nil
		},
	}
	cmd.Flags().String("format", "table", `Output format: "table" or "json"`)
	return cmd
}

// runDoctor collects the diagnostics and renders them to w. The returned
// error covers rendering failures only; callers inspect OverallHealthy.
func runDoctor(ctx context.Context, loader config.Loader, dsnOverride string, probes doctorProbes, w io.Writer, format string) (DoctorResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	result := collectDoctorResult(ctx, loader, dsnOverride, probes)

	switch format {
	case "json":
		if err := json.NewEncoder(w).Encode(result); err != nil {
			return result, fmt.Errorf("encode doctor result: %w", err)
		}
	default:
		renderDoctorTable(result, w)
	}
	return result, nil
}

func collectDoctorResult(ctx context.Context, loader config.Loader, dsnOverride string, probes doctorProbes) DoctorResult {
	var result DoctorResult
	result.Config.Path = loader.ConfigPath()

	cfg, err := loader.Load()
	if err != nil {
		result.Config.Error = err.Error()
		return result
	}
	result.Config.Valid = true
	if dsnOverride != "" {
		cfg.Database.DSN = dsnOverride
	}

	result.Database.DSN = cfg.Database.DSN
	if err := probes.openDB(cfg.Database.DSN); err != nil {
		result.Database.Error = err.Error()
	} else {
		result.Database.Reachable = true
	}

	if cfg.Redis.Addr != "" {
		result.Redis.Configured = true
		if err := probes.pingRedis(ctx, cfg.Redis.Addr); err != nil {
			result.Redis.Error = err.Error()
		} else {
			result.Redis.Reachable = true
		}
	}

	if cfg.PolicyPath != "" {
		result.Policy.Present = true
		pol, err := policy.LoadPolicy(cfg.PolicyPath)
		if err != nil {
			result.Policy.Errors = []string{err.Error()}
		} else if errs := policy.Validate(pol, rules.AllCheckIDs()); len(errs) > 0 {
			for _, e := range errs {
				result.Policy.Errors = append(result.Policy.Errors, e.Error())
			}
		} else {
			result.Policy.Valid = true
		}
	}

	result.OverallHealthy = result.Config.Valid &&
		result.Database.Reachable &&
		(!result.Redis.Configured || result.Redis.Reachable) &&
		(!result.Policy.Present || result.Policy.Valid)
	return result
}

// renderDoctorTable writes the human-readable diagnostic output to w.
func renderDoctorTable(result DoctorResult, w io.Writer) {
	fmt.Fprintln(w, "Environment Diagnostics")

	fmt.Fprintf(w, "\nConfig (%s):\n", result.Config.Path)
	if !result.Config.Valid {
		doctorPrint(w, "Loaded", "FAIL", result.Config.Error)
		return
	}
	doctorPrint(w, "Loaded", "OK", "")

	fmt.Fprintln(w, "\nDatabase:")
	if result.Database.Reachable {
		doctorPrint(w, "Open + migrate", "OK", result.Database.DSN)
	} else {
		doctorPrint(w, "Open + migrate", "FAIL", result.Database.Error)
	}

	fmt.Fprintln(w, "\nScan lock:")
	switch {
	case !result.Redis.Configured:
		doctorPrint(w, "Backend", "in-process", "")
	case result.Redis.Reachable:
		doctorPrint(w, "Redis", "OK", "")
	default:
		doctorPrint(w, "Redis", "FAIL", result.Redis.Error)
	}

	fmt.Fprintln(w, "\nPolicy:")
	if !result.Policy.Present {
		doctorPrint(w, "Policy file", "Not configured (optional)", "")
		return
	}
	if result.Policy.Valid {
		doctorPrint(w, "Policy valid", "OK", "")
		return
	}
	for _, e := range result.Policy.Errors {
		doctorPrint(w, "Policy valid", "FAIL", e)
	}
}

// doctorPrint writes a single diagnostic check line to w.
// When detail is non-empty it is appended in parentheses.
func doctorPrint(w io.Writer, label, status, detail string) {
	if detail != "" {
		fmt.Fprintf(w, "  %s: %s (%s)\n", label, status, detail)
	} else {
		fmt.Fprintf(w, "  %s: %s\n", label, status)
	}
}
