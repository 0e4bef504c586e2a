package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/desertthunder/floody/internal/models"
)

// Format selects an output encoding.
type Format string

const (
	FormatText     Format = "text"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "md"
)

// ParseFormat accepts text, csv, md or markdown. The empty string is text.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "text", "txt":
		return FormatText, nil
	case "csv":
		return FormatCSV, nil
	case "md", "markdown":
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("unknown format %q (want text, csv or md)", s)
	}
}

func writeCSV(header []string, rows [][]string) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(header); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}
	for _, row := range rows {
		if err := writer.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}
	return buf.Bytes(), nil
}

func mdEscape(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

func writeMarkdownTable(buf *bytes.Buffer, header []string, rows [][]string) {
	fmt.Fprintf(buf, "| %s |\n", strings.Join(header, " | "))
	sep := make([]string, len(header))
	for i := range sep {
		sep[i] = "---"
	}
	fmt.Fprintf(buf, "| %s |\n", strings.Join(sep, " | "))
	for _, row := range rows {
		cells := make([]string, len(row))
		for i, c := range row {
			cells[i] = mdEscape(c)
		}
		fmt.Fprintf(buf, "| %s |\n", strings.Join(cells, " | "))
	}
}

// RecentFiles renders recent sheets with their relative recency.
func RecentFiles(files []models.RecentFile, format Format) ([]byte, error) {
	header := []string{"ID", "Name", "Modified", "Link"}
	rows := make([][]string, len(files))
	for i, f := range files {
		rows[i] = []string{f.ID, f.Name, f.Recency, f.Link}
	}

	switch format {
	case FormatCSV:
		return writeCSV(header, rows)
	case FormatMarkdown:
		var buf bytes.Buffer
		buf.WriteString("# Recent Floody sheets\n\n")
		if len(files) == 0 {
			buf.WriteString("_No recent sheets._\n")
			return buf.Bytes(), nil
		}
		writeMarkdownTable(&buf, header, rows)
		return buf.Bytes(), nil
	default:
		var buf bytes.Buffer
		if len(files) == 0 {
			buf.WriteString("No recent sheets.\n")
		}
		for i, f := range files {
			fmt.Fprintf(&buf, "%d. %s (%s)\n   id: %s\n", i+1, f.Name, f.Recency, f.ID)
			if f.Link != "" {
				fmt.Fprintf(&buf, "   %s\n", f.Link)
			}
		}
		return buf.Bytes(), nil
	}
}

// DcmObjects renders a profile, account or floodlight configuration listing.
func DcmObjects(title string, items []models.DcmObject, format Format) ([]byte, error) {
	header := []string{"ID", "Name"}
	rows := make([][]string, len(items))
	for i, o := range items {
		rows[i] = []string{o.ID.String(), o.Name}
	}

	switch format {
	case FormatCSV:
		return writeCSV(header, rows)
	case FormatMarkdown:
		var buf bytes.Buffer
		fmt.Fprintf(&buf, "# %s\n\n", title)
		writeMarkdownTable(&buf, header, rows)
		return buf.Bytes(), nil
	default:
		var buf bytes.Buffer
		fmt.Fprintf(&buf, "%s (%d)\n", title, len(items))
		for _, o := range items {
			fmt.Fprintf(&buf, "  %-20s %s\n", o.ID, o.Name)
		}
		return buf.Bytes(), nil
	}
}

// GtmRequest renders a stored GTM request with its activities, decision and per-tag results.
func GtmRequest(req *models.GtmExport, format Format) ([]byte, error) {
	activityHeader := []string{"Activity", "Type", "Cat", "Counting method"}
	activityRows := make([][]string, len(req.FloodlightActivities))
	for i, a := range req.FloodlightActivities {
		activityRows[i] = []string{a.Name, a.Type, a.Cat, Humanize(a.CountingMethod)}
	}

	switch format {
	case FormatCSV:
		return writeCSV(activityHeader, activityRows)
	case FormatMarkdown:
		var buf bytes.Buffer
		fmt.Fprintf(&buf, "# GTM request %s\n\n", req.ID)
		fmt.Fprintf(&buf, "**Container**: %s\n\n", req.GtmContainerID)
		fmt.Fprintf(&buf, "**Requester**: %s\n\n", req.RequesterEmail)
		if req.RequesterMessage != "" {
			fmt.Fprintf(&buf, "**Message**: %s\n\n", req.RequesterMessage)
		}
		fmt.Fprintf(&buf, "**Status**: %s\n\n", gtmStatus(req))
		buf.WriteString("## Activities\n\n")
		writeMarkdownTable(&buf, activityHeader, activityRows)
		if len(req.GtmTagOperationResults) > 0 {
			buf.WriteString("\n## Results\n\n")
			writeMarkdownTable(&buf, []string{"Activity", "Success", "Message"}, resultRows(req.GtmTagOperationResults))
		}
		return buf.Bytes(), nil
	default:
		var buf bytes.Buffer
		fmt.Fprintf(&buf, "GTM request: %s\n", req.ID)
		fmt.Fprintf(&buf, "Container: %s\n", req.GtmContainerID)
		fmt.Fprintf(&buf, "Requester: %s\n", req.RequesterEmail)
		if req.RequesterMessage != "" {
			fmt.Fprintf(&buf, "Message: %s\n", req.RequesterMessage)
		}
		fmt.Fprintf(&buf, "Approvers: %s\n", strings.Join(req.ApproverEmails, ", "))
		fmt.Fprintf(&buf, "Status: %s\n", gtmStatus(req))
		if info := req.ActionInformation; info != nil && info.Comment != "" {
			fmt.Fprintf(&buf, "Comment: %s\n", info.Comment)
		}
		fmt.Fprintf(&buf, "Activities: %d\n\n", len(req.FloodlightActivities))
		for i, a := range req.FloodlightActivities {
			fmt.Fprintf(&buf, "%d. %s\n", i+1, a.Name)
		}
		if len(req.GtmTagOperationResults) > 0 {
			buf.WriteString("\nResults:\n")
			writeResultLines(&buf, req.GtmTagOperationResults)
		}
		return buf.Bytes(), nil
	}
}

// GtmResults renders the outcome of an approve or reject action.
func GtmResults(res *models.GtmTagOperationResults) []byte {
	var buf bytes.Buffer
	outcome := "succeeded"
	if !res.Success {
		outcome = "failed"
	}
	fmt.Fprintf(&buf, "%s %s\n", Humanize(res.Action), outcome)
	writeResultLines(&buf, res.GtmTagOperationResult)
	return buf.Bytes()
}

func gtmStatus(req *models.GtmExport) string {
	if req.Pending() {
		return "Pending"
	}
	info := req.ActionInformation
	status := Humanize(info.Action)
	if info.Authorizer != "" {
		status += " by " + info.Authorizer
	}
	return status
}

func resultRows(results []models.TagOperationResult) [][]string {
	rows := make([][]string, len(results))
	for i, r := range results {
		rows[i] = []string{r.FloodlightActivityName, fmt.Sprint(r.Success), r.Message}
	}
	return rows
}

func writeResultLines(buf *bytes.Buffer, results []models.TagOperationResult) {
	for _, r := range results {
		mark := "ok"
		if !r.Success {
			mark = "FAILED"
		}
		fmt.Fprintf(buf, "  [%s] %s", mark, r.FloodlightActivityName)
		if r.Message != "" {
			fmt.Fprintf(buf, ": %s", r.Message)
		}
		buf.WriteString("\n")
	}
}

// WriteExport writes data to path, creating parent directories, and returns the path written.
func WriteExport(data []byte, path string) (string, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("failed to create directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write export file: %w", err)
	}
	return path, nil
}
