package commands

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/Paulpandian-ai/factor-impact-intelligence/internal/domain/models"
	"github.com/Paulpandian-ai/factor-impact-intelligence/internal/usecase"
	"github.com/Paulpandian-ai/factor-impact-intelligence/pkg/util"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7C3AED"))

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#3B82F6")).
			Padding(0, 1)

	cellStyle = lipgloss.NewStyle().Padding(0, 1)

	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))

	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))

	buyStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981")).Bold(true)
	holdStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B")).Bold(true)
	sellStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444")).Bold(true)
)

func signalStyle(s models.Signal) lipgloss.Style {
	switch s {
	case models.SignalStrongBuy, models.SignalBuy:
		return buyStyle
	case models.SignalSell, models.SignalStrongSell:
		return sellStyle
	default:
		return holdStyle
	}
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers(headers...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
}

func yesNo(b bool) string {
	if b {
		return "cached"
	}
	return "fetched"
}

// RenderResult formats one analysis as a summary line, a factor table and the rationale.
func RenderResult(r *models.CompositeResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s  as of %s, %d-day lookback\n",
		titleStyle.Render(r.Ticker), r.AsOf.Format(util.DateLayout), r.LookbackDays)
	fmt.Fprintf(&b, "Composite %.2f/10  %s  confidence %s\n",
		r.CompositeScore, signalStyle(r.Signal).Render(string(r.Signal)), r.Confidence)
	fmt.Fprintf(&b, "Beta %.2f vs %s (%s sensitivity)\n\n", r.Beta, r.MarketIndex, r.BetaClass)

	cached := map[models.Factor]bool{
		models.FactorFedFunds:      r.Cache.FedFunds,
		models.FactorInflation:     r.Cache.Inflation,
		models.FactorTreasuryYield: r.Cache.TreasuryYield,
	}
	t := newTable("Factor", "Series", "Latest", "Change", "Trend", "Raw", "Adjusted", "Weight", "Data")
	for _, fs := range r.FactorScores {
		t.Row(
			fs.Factor.Title(),
			fs.SeriesID,
			fmt.Sprintf("%.2f", fs.Latest),
			fmt.Sprintf("%+.2f", fs.Change),
			fs.Trend,
			fmt.Sprintf("%+.2f", fs.RawScore),
			fmt.Sprintf("%+.2f", fs.AdjustedScore),
			fmt.Sprintf("%.0f%%", fs.Weight*100),
			yesNo(cached[fs.Factor]),
		)
	}
	b.WriteString(t.String())
	b.WriteString("\n\n")
	b.WriteString(r.Rationale)
	fmt.Fprintf(&b, "\n%s", mutedStyle.Render("beta "+yesNo(r.Cache.Beta)))
	return b.String()
}

// RenderBatch formats batch items one row per ticker, errors inline.
func RenderBatch(items []models.BatchItem) string {
	t := newTable("Ticker", "Composite", "Signal", "Confidence", "Beta", "Error")
	failed := 0
	for _, it := range items {
		if it.Result == nil {
			failed++
			t.Row(it.Ticker, "-", "-", "-", "-", fmt.Sprintf("%s: %s", it.Kind, it.Error))
			continue
		}
		r := it.Result
		t.Row(
			it.Ticker,
			fmt.Sprintf("%.2f", r.CompositeScore),
			signalStyle(r.Signal).Render(string(r.Signal)),
			string(r.Confidence),
			fmt.Sprintf("%.2f", r.Beta),
			"",
		)
	}
	return fmt.Sprintf("%s\n%s", t.String(),
		mutedStyle.Render(fmt.Sprintf("%d analyzed, %d failed", len(items)-failed, failed)))
}

// RenderCacheStats formats per-kind counters.
func RenderCacheStats(backend string, stats []models.CacheStats) string {
	t := newTable("Kind", "Hits", "Misses", "Hit rate")
	for _, s := range stats {
		t.Row(s.Kind, fmt.Sprintf("%d", s.Hits), fmt.Sprintf("%d", s.Misses), fmt.Sprintf("%.1f%%", s.HitRate*100))
	}
	return fmt.Sprintf("%s\n%s", titleStyle.Render("Cache: "+backend), t.String())
}

// RenderSync formats a sync report with series first, then tickers alphabetically.
func RenderSync(rep *usecase.SyncReport) string {
	t := newTable("Kind", "ID", "Rows")
	for _, id := range sortedKeys(rep.Series) {
		t.Row("series", id, fmt.Sprintf("%d", rep.Series[id]))
	}
	for _, tk := range sortedKeys(rep.Prices) {
		t.Row("prices", tk, fmt.Sprintf("%d", rep.Prices[tk]))
	}
	return fmt.Sprintf("%s\n%s\n%s",
		titleStyle.Render(fmt.Sprintf("Synced %s to %s", rep.Start.Format(util.DateLayout), rep.End.Format(util.DateLayout))),
		t.String(),
		mutedStyle.Render(fmt.Sprintf("took %.1fs", rep.DurationSecs)))
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
