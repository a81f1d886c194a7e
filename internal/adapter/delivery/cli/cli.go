// Package cli renders analyses and statistics snapshots for terminal output.
package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"
	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/vadimbarashkov/phishing-detector/internal/entity"
)

var (
	phishingColor   = color.New(color.FgRed, color.Bold)
	suspiciousColor = color.New(color.FgYellow)
	legitimateColor = color.New(color.FgGreen)
)

// AnalyzedURL pairs a submitted URL with its analysis.
type AnalyzedURL struct {
	URL    string                `json:"url"`
	Result entity.AnalysisResult `json:"analysis_result"`
}

// Printer writes human readable or JSON output to w.
type Printer struct {
	w         io.Writer
	useColors bool
}

func NewPrinter(w io.Writer, useColors bool) *Printer {
	return &Printer{
		w:         w,
		useColors: useColors,
	}
}

func (p *Printer) label(pred entity.Prediction) string {
	text := string(pred)
	if !p.useColors {
		return text
	}

	switch pred {
	case entity.PredictionPhishing:
		return phishingColor.Sprint(text)
	case entity.PredictionSuspicious:
		return suspiciousColor.Sprint(text)
	default:
		return legitimateColor.Sprint(text)
	}
}

// WriteAnalyses renders one table row per analyzed URL.
func (p *Printer) WriteAnalyses(items []AnalyzedURL) error {
	const op = "cli.Printer.WriteAnalyses"

	table := tablewriter.NewWriter(p.w)
	defer func() { _ = table.Close() }()

	table.Header([]string{"URL", "Prediction", "Risk", "Probability", "Confidence", "Keywords", "Entropy"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignLeft
	})

	data := make([][]string, 0, len(items))
	for _, item := range items {
		res := item.Result
		data = append(data, []string{
			item.URL,
			p.label(res.Prediction),
			string(res.RiskLevel),
			strconv.FormatFloat(res.Probability, 'f', 4, 64),
			string(res.Confidence),
			strconv.Itoa(res.FeatureSummary.SuspiciousKeywords),
			strconv.FormatFloat(res.FeatureSummary.EntropyScore, 'f', 2, 64),
		})
	}

	if err := table.Bulk(data); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// WriteAnalysesJSON writes items as an indented JSON array.
func (p *Printer) WriteAnalysesJSON(items []AnalyzedURL) error {
	const op = "cli.Printer.WriteAnalysesJSON"

	if items == nil {
		items = []AnalyzedURL{}
	}

	if err := json.MarshalWrite(p.w, items, jsontext.WithIndent("  ")); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if _, err := fmt.Fprintln(p.w); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// WriteSnapshot renders the distribution tables of snap followed by its
// recent activity.
func (p *Printer) WriteSnapshot(snap *entity.StatisticsSnapshot) error {
	const op = "cli.Printer.WriteSnapshot"

	if _, err := fmt.Fprintf(p.w, "Total analyzed: %d (last %d days requested)\n", snap.TotalAnalyzed, snap.Days); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	dist := tablewriter.NewWriter(p.w)
	defer func() { _ = dist.Close() }()

	dist.Header([]string{"Bucket", "Value", "Count"})
	dist.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignLeft
	})

	data := make([][]string, 0, len(entity.Predictions)+len(entity.RiskLevels))
	for _, pred := range entity.Predictions {
		data = append(data, []string{"prediction", p.label(pred), strconv.FormatInt(snap.PredictionCounts[pred], 10)})
	}
	for _, lvl := range entity.RiskLevels {
		data = append(data, []string{"risk", string(lvl), strconv.FormatInt(snap.RiskDistribution[lvl], 10)})
	}

	if err := dist.Bulk(data); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := dist.Render(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if len(snap.RecentActivity) == 0 {
		if _, err := fmt.Fprintln(p.w, "No recent activity"); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		return nil
	}

	recent := tablewriter.NewWriter(p.w)
	defer func() { _ = recent.Close() }()

	recent.Header([]string{"Created", "URL", "Prediction", "Probability", "Created By"})
	recent.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignLeft
	})

	rows := make([][]string, 0, len(snap.RecentActivity))
	for _, rec := range snap.RecentActivity {
		rows = append(rows, []string{
			rec.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
			rec.URL,
			p.label(rec.Prediction),
			strconv.FormatFloat(rec.Probability, 'f', 4, 64),
			rec.CreatedBy,
		})
	}

	if err := recent.Bulk(rows); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := recent.Render(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
