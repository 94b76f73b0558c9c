package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/AngelCh415/ngram-report/internal/models"
	"github.com/AngelCh415/ngram-report/internal/report"
)

const csvReport = "Campaign Name (Informational only),Campaign ID,Customer Search Term,Impressions,Clicks,Spend,Sales,Units\n" +
	"SP B0ABCDEFGH exact,111,blue shoe,100,10,5,50,2\n" +
	"SP B0ABCDEFGH auto,222,blue shoe sale,50,5,2,20,1\n" +
	"SP B0ABCDEFGH auto,333,Acme shoe,70,1,1,0,0\n"

func clearEnv(t *testing.T) {
	prev := promptFilter
	promptFilter = func(asins, brands *string) error { return nil }
	t.Cleanup(func() { promptFilter = prev })
	for _, k := range []string{"CONFIG_FILE", "EXTRA_STOP_WORDS", "LEMMATIZER", "REPORT_SHEET", "LOG_LEVEL"} {
		t.Setenv(k, "")
	}
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeInput(t *testing.T) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "st.csv")
	if err := os.WriteFile(p, []byte(csvReport), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestAnalyzeWritesWorkbook(t *testing.T) {
	clearEnv(t)
	in := writeInput(t)
	out := filepath.Join(t.TempDir(), "out.xlsx")

	stdout, err := run(t, "analyze", "-i", in, "--asin", "b0abcdefgh", "--brand", "ACME", "-o", out, "--campaign-ids")
	if err != nil {
		t.Fatalf("analyze failed: %v", err)
	}
	if !strings.Contains(stdout, "3 rows read, 2 kept") || !strings.Contains(stdout, "Report written to") {
		t.Fatalf("unexpected summary:\n%s", stdout)
	}

	f, err := excelize.OpenFile(out)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	rows, err := f.GetRows("Report")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 7 || rows[0][0] != "N-Gram Type" || rows[1][1] != "blue" || rows[1][12] != "111,222" {
		t.Fatalf("report sheet = %q", rows)
	}
}

func TestAnalyzeJSON(t *testing.T) {
	clearEnv(t)
	in := writeInput(t)
	stdout, err := run(t, "analyze", "-i", in, "--asin", "B0ABCDEFGH", "--json", "--stop-word", "sale")
	if err != nil {
		t.Fatal(err)
	}
	var rep models.Report
	if err := json.Unmarshal([]byte(stdout), &rep); err != nil {
		t.Fatalf("decode: %v\n%s", err, stdout)
	}
	for _, m := range rep.Monograms {
		if m.Term == "sale" {
			t.Fatal("extra stop word was not applied")
		}
	}
	if len(rep.Trigrams) != 0 {
		t.Fatalf("trigrams = %+v", rep.Trigrams)
	}
}

func TestAnalyzeAsinsFile(t *testing.T) {
	clearEnv(t)
	in := writeInput(t)
	asins := filepath.Join(t.TempDir(), "asins.txt")
	os.WriteFile(asins, []byte("B0ZZZZZZZZ\nb0abcdefgh\n"), 0o644)
	stdout, err := run(t, "analyze", "-i", in, "--asins-file", asins, "--json")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(stdout, `"blue shoe sale"`) {
		t.Fatalf("expected trigram in output:\n%s", stdout)
	}
}

func TestAnalyzeErrors(t *testing.T) {
	clearEnv(t)
	in := writeInput(t)
	if _, err := run(t, "analyze", "-i", in, "--json"); !errors.Is(err, report.ErrInputMissing) {
		t.Fatalf("expected ErrInputMissing without ASINs, got %v", err)
	}
	if _, err := run(t, "analyze", "-i", filepath.Join(t.TempDir(), "nope.csv"), "--asin", "B0ABCDEFGH"); !errors.Is(err, report.ErrInputMissing) {
		t.Fatalf("expected ErrInputMissing for missing file, got %v", err)
	}
	if _, err := run(t, "analyze", "-i", in, "--asin", "B0ABCDEFGH", "--product-source", "sku"); err == nil {
		t.Fatal("expected error for bad product source")
	}
}

func TestAnalyzeErrorLeftToCaller(t *testing.T) {
	clearEnv(t)
	cmd := NewRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs([]string{"analyze", "-i", filepath.Join(t.TempDir(), "nope.csv"), "--asin", "B0ABCDEFGH"})
	if err := cmd.Execute(); err == nil {
		t.Fatal("expected error")
	}
	if strings.Contains(errOut.String(), "Error:") {
		t.Fatalf("cobra printed the error, main prints it again:\n%s", errOut.String())
	}
}

func TestAnalyzeEmptyReport(t *testing.T) {
	clearEnv(t)
	in := writeInput(t)
	out := filepath.Join(t.TempDir(), "out.xlsx")
	stdout, err := run(t, "analyze", "-i", in, "--asin", "B0NOTHERE1", "-o", out)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(stdout, report.ReasonNoRows) {
		t.Fatalf("expected empty reason in summary:\n%s", stdout)
	}
	if _, err := os.Stat(out); err != nil {
		t.Fatalf("empty report should still be written: %v", err)
	}
}

func TestStopWordsCmd(t *testing.T) {
	clearEnv(t)
	stdout, err := run(t, "stopwords", "--stop-word", "acme")
	if err != nil {
		t.Fatal(err)
	}
	words := strings.Fields(stdout)
	found := map[string]bool{}
	for _, w := range words {
		found[w] = true
	}
	for _, w := range []string{"acme", "para", "the"} {
		if !found[w] {
			t.Errorf("missing %q", w)
		}
	}
}
