package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/AngelCh415/ngram-report/internal/config"
	"github.com/AngelCh415/ngram-report/internal/export"
	"github.com/AngelCh415/ngram-report/internal/filter"
	"github.com/AngelCh415/ngram-report/internal/ingest"
	"github.com/AngelCh415/ngram-report/internal/models"
	"github.com/AngelCh415/ngram-report/internal/ngram"
	"github.com/AngelCh415/ngram-report/internal/report"
	"github.com/AngelCh415/ngram-report/internal/textnorm"
)

type analyzeOptions struct {
	input         string
	asins         []string
	asinsFile     string
	brands        []string
	brandsFile    string
	campaignIDs   bool
	productSource string
	sheet         string
	lemmatizer    string
	stopWords     []string
	out           string
	asJSON        bool
	top           int
}

func newAnalyzeCmd() *cobra.Command {
	o := &analyzeOptions{}
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Run the n-gram analysis on a search term report",
		Long: "Run the n-gram analysis on a search term report (.xlsx or .csv, local path or http(s) URL)\n" +
			"and write a workbook with Monograms, Bigrams, Trigrams and Report sheets.",
		RunE: func(cmd *cobra.Command, args []string) error { return runAnalyze(cmd, o) },
	}
	f := cmd.Flags()
	f.StringVarP(&o.input, "input", "i", "", "search term report (.xlsx/.csv path or URL)")
	f.StringSliceVar(&o.asins, "asin", nil, "ASIN to aggregate (repeatable)")
	f.StringVar(&o.asinsFile, "asins-file", "", "file with one ASIN per line")
	f.StringSliceVar(&o.brands, "brand", nil, "branded term to exclude (repeatable)")
	f.StringVar(&o.brandsFile, "brands-file", "", "file with one branded term per line")
	f.BoolVar(&o.campaignIDs, "campaign-ids", false, "add the contributing Campaign IDs to every n-gram")
	f.StringVar(&o.productSource, "product-source", "auto", "where the ASIN comes from: auto, campaign_name or asin_column")
	f.StringVar(&o.sheet, "sheet", "", "workbook sheet to read (default from REPORT_SHEET)")
	f.StringVar(&o.lemmatizer, "lemmatizer", "", "dict, noun or snowball (default from LEMMATIZER)")
	f.StringSliceVar(&o.stopWords, "stop-word", nil, "additional stop word (repeatable)")
	f.StringVarP(&o.out, "out", "o", "", "output workbook (default ngram_analysis_output_with_report_<timestamp>.xlsx)")
	f.BoolVar(&o.asJSON, "json", false, "print the report as JSON instead of writing a workbook")
	f.IntVar(&o.top, "top", 5, "n-grams per order to show in the summary")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

// promptFilter asks for ASINs and brand terms the way the upload form did.
var promptFilter = func(asins, brands *string) error {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewText().
				Title("ASIN(s)").
				Description("ASINs for which to aggregate the data (one per line)").
				Value(asins),
			huh.NewText().
				Title("Branded terms").
				Description("Optionally enter the branded terms to exclude from the n-gram analysis (one per line)").
				Value(brands),
		),
	).Run()
}

func runAnalyze(cmd *cobra.Command, o *analyzeOptions) error {
	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}
	log := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: cfg.LogLevel}))
	if o.sheet != "" {
		cfg.Sheet = o.sheet
	}
	if o.lemmatizer != "" {
		cfg.Lemmatizer = o.lemmatizer
	}

	asinText, err := joinWithFile(o.asins, o.asinsFile)
	if err != nil {
		return err
	}
	brandText, err := joinWithFile(o.brands, o.brandsFile)
	if err != nil {
		return err
	}
	if strings.TrimSpace(asinText) == "" && isTerminal(os.Stdin) {
		if err := promptFilter(&asinText, &brandText); err != nil {
			return fmt.Errorf("interactive prompt failed: %w", err)
		}
	}
	pf, err := filter.ParseProductFilter(asinText, brandText)
	if err != nil {
		return fmt.Errorf("%w: %v", report.ErrInputMissing, err)
	}
	ps, err := ingest.ParseProductSource(o.productSource)
	if err != nil {
		return err
	}

	name, data, err := readInput(cmd, cfg, o.input)
	if err != nil {
		return err
	}
	rows, err := ingest.Read(name, bytes.NewReader(data), ingest.ReadOptions{
		Sheet:             cfg.Sheet,
		ProductSource:     ps,
		RequireCampaignID: o.campaignIDs,
	})
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}

	norm, err := textnorm.Configure(cfg.Lemmatizer, append(cfg.ExtraStopWords, o.stopWords...))
	if err != nil {
		return err
	}
	p := report.NewPipeline(norm, report.WithLogger(log), report.WithCampaignIDs(o.campaignIDs))
	rep, st, err := p.Run(cmd.Context(), report.Input{Rows: rows, Filter: pf, Dataset: true})
	if err != nil {
		return err
	}

	if o.asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", " ")
		return enc.Encode(rep)
	}

	out := o.out
	if out == "" {
		out = export.Filename(time.Now())
	}
	var buf bytes.Buffer
	if err := export.WriteXLSX(&buf, rep); err != nil {
		return err
	}
	if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	printSummary(cmd.OutOrStdout(), rep, st, o.top)
	fmt.Fprintf(cmd.OutOrStdout(), "%s Report written to %s\n", successStyle.Render("✓"), out)
	return nil
}

func readInput(cmd *cobra.Command, cfg config.Config, input string) (string, []byte, error) {
	if strings.HasPrefix(input, "http://") || strings.HasPrefix(input, "https://") {
		f := ingest.NewFetcher(ingest.NewHTTPClient(cfg.HTTPTimeout), cfg.MaxUploadBytes)
		b, name, err := f.Fetch(cmd.Context(), input)
		return name, b, err
	}
	b, err := os.ReadFile(input)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", report.ErrInputMissing, err)
	}
	return input, b, nil
}

func joinWithFile(vals []string, path string) (string, error) {
	text := strings.Join(vals, "\n")
	if path == "" {
		return text, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return text + "\n" + string(b), nil
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func printSummary(w io.Writer, rep models.Report, st filter.Stats, top int) {
	fmt.Fprintf(w, "%s %d rows read, %d kept (%d without ASIN, %d other ASIN, %d branded)\n",
		infoStyle.Render("→"), st.In, st.Kept, st.NoProductID, st.OtherProduct, st.Branded)
	if rep.EmptyReason != "" {
		fmt.Fprintf(w, "%s Empty report: %s\n", warnStyle.Render("!"), rep.EmptyReason)
		return
	}
	for i, rows := range rep.Slices() {
		fmt.Fprintf(w, "%s (%d)\n", headStyle.Render(ngram.Orders[i].Label()), len(rows))
		for j, m := range rows {
			if j >= top {
				break
			}
			fmt.Fprintf(w, "  %-40s spend %10.2f  sales %10.2f  acos %s\n", m.Term, m.Spend, m.Sales, pct(m.ACOS))
		}
	}
}

func pct(r models.Ratio) string {
	if !r.Defined() {
		return "n/a"
	}
	return fmt.Sprintf("%.1f%%", float64(r)*100)
}
