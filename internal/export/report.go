package export

import (
	"bytes"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"sleeplog/internal/aggregate"
	"sleeplog/internal/logparse"
	"sleeplog/internal/record"
)

var md = goldmark.New(goldmark.WithExtensions(extension.Table))

// WriteReport renders an HTML digest of the weekly and overall statistics
// plus the annotation notes. The page is built as Markdown first and then
// converted.
func WriteReport(path string, weekly map[string]aggregate.Row, overall aggregate.Row, notes []logparse.WeekNotes, schema *record.Schema) error {
	source := buildReportMarkdown(weekly, overall, notes, schema)

	var body bytes.Buffer
	if err := md.Convert([]byte(source), &body); err != nil {
		return fmt.Errorf("rendering report: %w", err)
	}

	var page bytes.Buffer
	page.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>Sleep report</title>\n</head>\n<body>\n")
	page.Write(body.Bytes())
	page.WriteString("</body>\n</html>\n")

	if err := os.WriteFile(path, page.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func buildReportMarkdown(weekly map[string]aggregate.Row, overall aggregate.Row, notes []logparse.WeekNotes, schema *record.Schema) string {
	var b bytes.Buffer
	fmt.Fprintf(&b, "# Sleep report\n\nGenerated %s.\n\n", time.Now().Format("2006-01-02"))

	keys := overallKeyOrder(overall, schema)
	if len(keys) > 0 {
		b.WriteString("## Overall\n\n")
		b.WriteString("| stat | value |\n|---|---|\n")
		for _, e := range aggregate.Long("overall", overall, keys) {
			fmt.Fprintf(&b, "| %s | %s |\n", e.Stat, e.Value)
		}
		b.WriteString("\n")
	}

	labels := make([]string, 0, len(weekly))
	for label := range weekly {
		if len(weekly[label]) > 0 {
			labels = append(labels, label)
		}
	}
	sort.Strings(labels)
	if len(labels) > 0 {
		weeklyKeys := presentKeys(weekly, schema)
		b.WriteString("## By week\n\n|week|")
		for _, key := range weeklyKeys {
			b.WriteString(key + "|")
		}
		b.WriteString("\n|---|")
		for range weeklyKeys {
			b.WriteString("---|")
		}
		b.WriteString("\n")
		for _, label := range labels {
			fmt.Fprintf(&b, "|%s|", label)
			for _, cell := range aggregate.Wide(weekly[label], weeklyKeys) {
				b.WriteString(cell + "|")
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	for _, wn := range notes {
		if len(wn.Notes) == 0 {
			continue
		}
		fmt.Fprintf(&b, "## Notes %s - %s\n\n",
			wn.Start.Format("2006-01-02"), wn.End.Format("2006-01-02"))
		for _, line := range wn.Notes {
			fmt.Fprintf(&b, "- %s\n", line)
		}
		b.WriteString("\n")
	}
	return b.String()
}
