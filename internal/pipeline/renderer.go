package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ppiankov/argmap/internal/model"
)

const rule = "═══════════════════════════════════════════════════════════"

// Renderer writes reports as JSON, Markdown, or a terminal summary
type Renderer struct {
	includeFooter bool
	out           io.Writer
}

// NewRenderer creates a renderer that prints summaries to stdout
func NewRenderer(includeFooter bool) *Renderer {
	return &Renderer{includeFooter: includeFooter, out: os.Stdout}
}

// SetOutput redirects RenderSummary
func (r *Renderer) SetOutput(w io.Writer) {
	r.out = w
}

// RenderJSON writes the report as indented JSON to path
func (r *Renderer) RenderJSON(report *model.Report, path string) error {
	var b strings.Builder
	if err := r.WriteJSON(&b, report); err != nil {
		return err
	}
	return writeFileAtomic(path, []byte(b.String()))
}

// WriteJSON encodes the report to w
func (r *Renderer) WriteJSON(w io.Writer, report *model.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

// RenderMarkdown writes the report as Markdown to path
func (r *Renderer) RenderMarkdown(report *model.Report, path string) error {
	var b strings.Builder
	if err := r.WriteMarkdown(&b, report); err != nil {
		return err
	}
	return writeFileAtomic(path, []byte(b.String()))
}

// WriteMarkdown renders the report as Markdown to w
func (r *Renderer) WriteMarkdown(w io.Writer, report *model.Report) error {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", report.Subject)
	if report.SourcePath != "" {
		fmt.Fprintf(&b, "Source: `%s`  \n", report.SourcePath)
	}
	fmt.Fprintf(&b, "Evaluated: %s (revision %d)\n\n", report.EvaluatedAt.Format("2006-01-02 15:04:05 MST"), report.Revision)

	s := report.Summary
	b.WriteString("## Summary\n\n")
	b.WriteString("| Claims | Implications | Certain | Unsupported | Errors | Warnings | Cycles |\n")
	b.WriteString("|---|---|---|---|---|---|---|\n")
	fmt.Fprintf(&b, "| %d | %d | %d | %d | %d | %d | %d |\n\n",
		s.Claims, s.Implications, s.Certain, s.Unsupported, s.Errors, s.Warnings, s.Cycles)

	if len(report.Goals) > 0 {
		b.WriteString("## Goals\n\n")
		for _, id := range report.Goals {
			if c, ok := findClaim(report, id); ok {
				fmt.Fprintf(&b, "- **%s**: %s\n", id, c.Display)
			} else {
				fmt.Fprintf(&b, "- **%s**: not a claim\n", id)
			}
		}
		b.WriteString("\n")
	}

	b.WriteString("## Claims\n\n")
	b.WriteString("| ID | Claim | Score | Cost | Source |\n")
	b.WriteString("|---|---|---|---|---|\n")
	for _, c := range report.Claims {
		source := c.Source
		if source == "" {
			source = "-"
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n",
			escapeCell(c.ID), escapeCell(c.Text), model.FormatScore(c.Score), c.Display, escapeCell(source))
	}
	b.WriteString("\n")

	b.WriteString("## Validation\n\n")
	if len(report.Validation.Errors) == 0 && len(report.Validation.Warnings) == 0 {
		b.WriteString("No structural problems found.\n\n")
	}
	writeIssues(&b, "Errors", report.Validation.Errors)
	writeIssues(&b, "Warnings", report.Validation.Warnings)

	if r.includeFooter {
		b.WriteString("---\n\n")
		b.WriteString("_Costs are -log2 P with premises treated as independent. ")
		b.WriteString("They measure how well each claim is supported inside this graph, not whether it is true._\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// RenderSummary prints a short overview for the terminal
func (r *Renderer) RenderSummary(report *model.Report) {
	w := r.out
	s := report.Summary

	fmt.Fprintln(w)
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "  %s\n", report.Subject)
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  Claims:        %d (%d certain, %d unsupported)\n", s.Claims, s.Certain, s.Unsupported)
	fmt.Fprintf(w, "  Implications:  %d\n", s.Implications)
	fmt.Fprintf(w, "  Errors:        %d\n", s.Errors)
	fmt.Fprintf(w, "  Warnings:      %d\n", s.Warnings)

	if len(report.Goals) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "  Goals:")
		for _, id := range report.Goals {
			if c, ok := findClaim(report, id); ok {
				fmt.Fprintf(w, "    %-20s %s\n", id, c.Display)
			} else {
				fmt.Fprintf(w, "    %-20s not a claim\n", id)
			}
		}
	}

	issues := append(append([]model.Issue(nil), report.Validation.Errors...), report.Validation.Warnings...)
	if len(issues) > 0 {
		fmt.Fprintln(w)
		for _, is := range issues {
			mark := "⚠"
			if is.Severity == model.SeverityError {
				mark = "✗"
			}
			fmt.Fprintf(w, "  %s %s\n", mark, is.Message)
		}
	}
	fmt.Fprintln(w)
}

func writeIssues(b *strings.Builder, title string, issues []model.Issue) {
	if len(issues) == 0 {
		return
	}
	fmt.Fprintf(b, "### %s\n\n", title)
	for _, is := range issues {
		fmt.Fprintf(b, "- `%s` %s\n", is.Kind, is.Message)
	}
	b.WriteString("\n")
}

func findClaim(report *model.Report, id string) (model.ClaimCost, bool) {
	for _, c := range report.Claims {
		if c.ID == id {
			return c, true
		}
	}
	return model.ClaimCost{}, false
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	return strings.ReplaceAll(s, "\n", " ")
}
