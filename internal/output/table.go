// Package output renders findings and snapshots for the terminal.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/pankaj-dahiya-devops/spendscan/internal/models"
)

// ANSI color codes for status output (used when Colored=true).
const (
	ansiReset  = "\033[0m"
	ansiRed    = "\033[0;31m"
	ansiYellow = "\033[0;33m"
	ansiGreen  = "\033[0;32m"
)

// TableOptions controls which columns RenderTable renders.
type TableOptions struct {
	// Colored wraps status labels with ANSI codes. Default false (CI-safe).
	Colored bool

	// Currency labels the savings column. Defaults to "EUR".
	Currency string

	// WasteOnly hides active findings.
	WasteOnly bool

	// IncludeRecommendation adds a RECOMMENDATION column.
	IncludeRecommendation bool
}

// ShortenMessage truncates msg to at most max runes, appending "..." when truncated.
// max is treated as at least 4 to guarantee space for the ellipsis.
func ShortenMessage(msg string, max int) string {
	if max < 4 {
		max = 4
	}
	runes := []rune(msg)
	if len(runes) <= max {
		return msg
	}
	return string(runes[:max-3]) + "..."
}

// statusCell pads the status to width; color codes wrap only the text so
// columns stay aligned.
func statusCell(s models.FindingStatus, width int, colored bool) string {
	text := string(s)
	if !colored {
		return fmt.Sprintf("%-*s", width, text)
	}
	var code string
	switch s {
	case models.StatusZombie, models.StatusUnused:
		code = ansiRed
	case models.StatusDowngradePossible:
		code = ansiYellow
	default:
		code = ansiGreen
	}
	pad := width - len(text)
	if pad < 0 {
		pad = 0
	}
	return code + text + ansiReset + strings.Repeat(" ", pad)
}

// RenderTable writes a findings table to w.
//
// Column order:
//
//	RESOURCE  PROVIDER  REGION  STATUS  TYPE  REASON  SAVINGS/MO  [RECOMMENDATION]
func RenderTable(w io.Writer, findings []models.Finding, opts TableOptions) {
	if opts.Currency == "" {
		opts.Currency = "EUR"
	}
	rows := findings
	if opts.WasteOnly {
		rows = nil
		for _, f := range findings {
			if f.Status.IsWaste() {
				rows = append(rows, f)
			}
		}
	}
	if len(rows) == 0 {
		fmt.Fprintln(w, "No findings.")
		return
	}

	const (
		wResource = 34
		wProvider = 8
		wRegion   = 15
		wStatus   = 18
		wType     = 16
		wReason   = 50
		wSavings  = 12
	)

	var hb strings.Builder
	hb.WriteString(fmt.Sprintf("%-*s", wResource, "RESOURCE"))
	hb.WriteString(fmt.Sprintf("  %-*s", wProvider, "PROVIDER"))
	hb.WriteString(fmt.Sprintf("  %-*s", wRegion, "REGION"))
	hb.WriteString(fmt.Sprintf("  %-*s", wStatus, "STATUS"))
	hb.WriteString(fmt.Sprintf("  %-*s", wType, "TYPE"))
	hb.WriteString(fmt.Sprintf("  %-*s", wReason, "REASON"))
	hb.WriteString(fmt.Sprintf("  %*s", wSavings, "SAVINGS/MO"))
	if opts.IncludeRecommendation {
		hb.WriteString("  RECOMMENDATION")
	}
	header := hb.String()
	fmt.Fprintln(w, header)
	fmt.Fprintln(w, strings.Repeat("-", len(header)))

	for _, f := range rows {
		var rb strings.Builder
		rb.WriteString(fmt.Sprintf("%-*s", wResource, ShortenMessage(f.ResourceName, wResource)))
		rb.WriteString(fmt.Sprintf("  %-*s", wProvider, f.Provider))
		rb.WriteString(fmt.Sprintf("  %-*s", wRegion, ShortenMessage(f.Region, wRegion)))
		rb.WriteString("  " + statusCell(f.Status, wStatus, opts.Colored))
		rb.WriteString(fmt.Sprintf("  %-*s", wType, ShortenMessage(string(f.ResourceType), wType)))
		rb.WriteString(fmt.Sprintf("  %-*s", wReason, ShortenMessage(f.Reason, wReason)))
		rb.WriteString(fmt.Sprintf("  %*s", wSavings, fmt.Sprintf("%.2f %s", f.PotentialSavings, opts.Currency)))
		if opts.IncludeRecommendation {
			rb.WriteString("  " + f.Recommendation)
		}
		fmt.Fprintln(w, strings.TrimRight(rb.String(), " "))
	}
}

// Summary is the per-status rollup of a finding set.
type Summary struct {
	Total        int
	Waste        int
	TotalSavings float64
	ByStatus     map[models.FindingStatus]int
}

// Summarize counts findings by status and sums savings.
func Summarize(findings []models.Finding) Summary {
	s := Summary{Total: len(findings), ByStatus: make(map[models.FindingStatus]int)}
	for _, f := range findings {
		s.ByStatus[f.Status]++
		if f.Status.IsWaste() {
			s.Waste++
			s.TotalSavings += f.PotentialSavings
		}
	}
	return s
}

// RenderSummary writes totals and the top n findings by savings.
func RenderSummary(w io.Writer, findings []models.Finding, currency string, n int) {
	s := Summarize(findings)
	fmt.Fprintf(w, "Total Findings:          %d\n", s.Total)
	fmt.Fprintf(w, "Waste Findings:          %d\n", s.Waste)
	fmt.Fprintf(w, "Potential Savings/Month: %.2f %s\n", s.TotalSavings, currency)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Status Breakdown")
	for _, st := range []models.FindingStatus{
		models.StatusZombie, models.StatusUnused, models.StatusDowngradePossible, models.StatusActive,
	} {
		fmt.Fprintf(w, "  %-20s  %d\n", st, s.ByStatus[st])
	}

	top := topBySavings(findings, n)
	if len(top) == 0 {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Top Findings by Savings")
	for _, f := range top {
		fmt.Fprintf(w, "  %-40s  %-18s  %.2f %s\n", f.ResourceName, f.Status, f.PotentialSavings, currency)
	}
}

// topBySavings returns up to n waste findings ordered by savings
// descending. The input is not modified.
func topBySavings(findings []models.Finding, n int) []models.Finding {
	var waste []models.Finding
	for _, f := range findings {
		if f.Status.IsWaste() {
			waste = append(waste, f)
		}
	}
	sort.SliceStable(waste, func(i, j int) bool {
		return waste[i].PotentialSavings > waste[j].PotentialSavings
	})
	if n < len(waste) {
		waste = waste[:n]
	}
	return waste
}

// RenderHistory writes savings snapshots, one per line.
func RenderHistory(w io.Writer, rows []models.SavingsHistorySnapshot, currency string) {
	if len(rows) == 0 {
		fmt.Fprintln(w, "No snapshots.")
		return
	}
	fmt.Fprintf(w, "%-10s  %-38s  %12s  %7s  %7s\n", "DAY", "CONNECTION", "SAVINGS/MO", "ZOMBIES", "ACTIVE")
	fmt.Fprintln(w, strings.Repeat("-", 82))
	for _, r := range rows {
		conn := r.ConnectionID
		if r.IsAggregate() {
			conn = "(all)"
		}
		fmt.Fprintf(w, "%-10s  %-38s  %12s  %7d  %7d\n",
			r.Day, conn, fmt.Sprintf("%.2f %s", r.TotalSavings, currency), r.ZombieCount, r.ActiveCount)
	}
}

// RenderCommunity writes one community rollup.
func RenderCommunity(w io.Writer, s models.CommunityStatsSnapshot, currency string) {
	fmt.Fprintf(w, "Day:             %s\n", s.Day)
	fmt.Fprintf(w, "Users:           %d\n", s.TotalUsers)
	fmt.Fprintf(w, "Scans:           %d\n", s.TotalScans)
	fmt.Fprintf(w, "Zombies Killed:  %d\n", s.TotalZombiesKilled)
	fmt.Fprintf(w, "Total Savings:   %.2f %s\n", s.TotalSavings, currency)
	if len(s.TopResourceTypes) == 0 {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Top Resource Types")
	for _, t := range s.TopResourceTypes {
		fmt.Fprintf(w, "  %-18s  %.2f %s\n", t.ResourceType, t.Savings, currency)
	}
}

// WriteJSON writes v as indented JSON.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
