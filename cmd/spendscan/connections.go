package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/pankaj-dahiya-devops/spendscan/internal/logging"
	"github.com/pankaj-dahiya-devops/spendscan/internal/models"
	"github.com/pankaj-dahiya-devops/spendscan/internal/output"
)

func newConnectionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "connections",
		Short: "Manage provider connections",
	}
	cmd.AddCommand(newConnectionsAddCmd(), newConnectionsListCmd())
	return cmd
}

func newConnectionsAddCmd() *cobra.Command {
	var (
		userID    string
		provider  string
		credPairs []string
		credFile  string
		metaPairs []string
		label     string
		env       string
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Register a provider connection for a user",
		Long: `Register a provider connection for a user.

Credentials are stored as a plaintext JSON object. Required fields:
  aws     access_key_id, secret_access_key (optional: session_token, region)
  github  token
  vercel  token (optional: team_id)
  sentry  token, org_slug`,
		RunE: func(cmd *cobra.Command, args []string) error {
			p := models.Provider(strings.ToLower(provider))
			switch p {
			case models.ProviderAWS, models.ProviderGitHub, models.ProviderVercel, models.ProviderSentry:
			default:
				return fmt.Errorf("unknown provider %q", provider)
			}

			creds, err := parsePairs(credPairs)
			if err != nil {
				return fmt.Errorf("--cred: %w", err)
			}
			if credFile != "" {
				data, err := os.ReadFile(credFile)
				if err != nil {
					return fmt.Errorf("read credentials file: %w", err)
				}
				fromFile := map[string]string{}
				if err := json.Unmarshal(data, &fromFile); err != nil {
					return fmt.Errorf("parse credentials file: %w", err)
				}
				for k, v := range fromFile {
					if _, set := creds[k]; !set {
						creds[k] = v
					}
				}
			}
			meta, err := parsePairs(metaPairs)
			if err != nil {
				return fmt.Errorf("--meta: %w", err)
			}
			blob, err := json.Marshal(creds)
			if err != nil {
				return err
			}

			conn := models.Connection{
				ID:                   uuid.NewString(),
				UserID:               userID,
				Provider:             p,
				EncryptedCredentials: blob,
				Metadata:             meta,
				Status:               models.ConnectionActive,
				AccountLabel:         label,
				Environment:          env,
				CreatedAt:            time.Now().UTC(),
			}
			return withApp(cmd, func(a *app) error {
				if err := a.store.SaveConnection(cmd.Context(), conn); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added %s connection %s for user %s\n", p, conn.ID, userID)
				masked := logging.MaskCredentials(creds)
				keys := make([]string, 0, len(masked))
				for k := range masked {
					keys = append(keys, k)
				}
				sort.Strings(keys)
				for _, k := range keys {
					fmt.Fprintf(cmd.OutOrStdout(), "  %s: %s\n", k, masked[k])
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "Owning user ID")
	cmd.Flags().StringVar(&provider, "provider", "", "Provider: aws, github, vercel or sentry")
	cmd.Flags().StringArrayVar(&credPairs, "cred", nil, "Credential field as key=value (repeatable)")
	cmd.Flags().StringVar(&credFile, "credentials-file", "", "JSON file with credential fields")
	cmd.Flags().StringArrayVar(&metaPairs, "meta", nil, "Metadata as key=value, e.g. region=eu-west-1 or plan=team (repeatable)")
	cmd.Flags().StringVar(&label, "label", "", "Display label")
	cmd.Flags().StringVar(&env, "env", "", "Environment tag, e.g. production")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("provider")
	return cmd
}

func newConnectionsListCmd() *cobra.Command {
	var (
		userID string
		format string
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List a user's connections",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(a *app) error {
				conns, err := a.store.ListConnections(cmd.Context(), userID)
				if err != nil {
					return err
				}
				w := cmd.OutOrStdout()
				if format == "json" {
					return output.WriteJSON(w, conns)
				}
				if len(conns) == 0 {
					fmt.Fprintln(w, "No connections.")
					return nil
				}
				fmt.Fprintf(w, "%-36s  %-7s  %-12s  %-20s  %s\n", "ID", "PROVIDER", "STATUS", "LAST SCANNED", "LABEL")
				for _, c := range conns {
					last := "never"
					if c.LastScannedAt != nil {
						last = c.LastScannedAt.UTC().Format(time.RFC3339)
					}
					status := string(c.Status)
					if c.ErrorMessage != "" {
						status += " (" + output.ShortenMessage(c.ErrorMessage, 40) + ")"
					}
					fmt.Fprintf(w, "%-36s  %-7s  %-12s  %-20s  %s\n", c.ID, c.Provider, status, last, c.AccountLabel)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "User ID")
	cmd.Flags().StringVar(&format, "format", "table", "Output format: table or json")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

// parsePairs turns ["k=v", ...] into a map.
func parsePairs(pairs []string) (map[string]string, error) {
	out := make(map[string]string, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("expected key=value, got %q", p)
		}
		out[k] = v
	}
	return out, nil
}
