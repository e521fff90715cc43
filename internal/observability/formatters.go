// Package observability provides formatted output utilities for the CLI.
package observability

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/applicant-tracker/internal/db"
	"github.com/jonathan/applicant-tracker/internal/fixtures"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 20
)

// Printer handles formatted output for CLI commands
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(title))
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(strings.TrimRight(content, "\n"), "\n")
	for _, line := range lines {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

func truncate(line string) string {
	if utf8.RuneCountInString(line) <= boxWidth-4 {
		return line
	}
	r := []rune(line)
	return string(r[:boxWidth-7]) + "..."
}

// PrintJobStats outputs per-job application counts.
func (p *Printer) PrintJobStats(stats []db.JobStats) {
	var sb strings.Builder

	if len(stats) == 0 {
		sb.WriteString("No jobs yet.\n")
		p.printBox("APPLICATION STATISTICS", sb.String())
		return
	}

	var total, approved, rejected int
	count := min(len(stats), maxItemsToShow)
	for i := 0; i < count; i++ {
		s := stats[i]
		sb.WriteString(fmt.Sprintf("%s [%s]\n", s.Title, s.Status))
		if s.Location != "" {
			sb.WriteString(fmt.Sprintf("  %s, %s\n", s.Location, s.WorkModel))
		}
		sb.WriteString(fmt.Sprintf("  total %d · approved %d · rejected %d · pending %d\n",
			s.TotalApplications, s.ApprovedApplications, s.RejectedApplications, s.Pending()))
	}
	if len(stats) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("... and %d more\n", len(stats)-maxItemsToShow))
	}
	for _, s := range stats {
		total += s.TotalApplications
		approved += s.ApprovedApplications
		rejected += s.RejectedApplications
	}
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Jobs: %d  Applications: %d (approved %d, rejected %d)\n",
		len(stats), total, approved, rejected))

	p.printBox("APPLICATION STATISTICS", sb.String())
}

// PrintSeedResult outputs what a fixture run created or reused.
func (p *Printer) PrintSeedResult(res *fixtures.Result) {
	if res == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Users:       %d created, %d existing\n", res.UsersCreated, res.UsersReused))
	sb.WriteString(fmt.Sprintf("Applicants:  %d created, %d existing\n", res.ApplicantsCreated, res.ApplicantsReused))
	sb.WriteString(fmt.Sprintf("Jobs:        %d created, %d existing\n", res.JobsCreated, res.JobsReused))

	if len(res.Users) > 0 {
		sb.WriteString("\n")
		for _, u := range res.Users {
			sb.WriteString(fmt.Sprintf("  • %s (id %d)\n", u.Username, u.ID))
		}
	}

	p.printBox("SEED DATA", sb.String())
}

// PrintUser outputs an account and the capabilities it holds.
func (p *Printer) PrintUser(u *db.User) {
	if u == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("ID:        %d\n", u.ID))
	sb.WriteString(fmt.Sprintf("Username:  %s\n", u.Username))
	if name := strings.TrimSpace(u.FirstName + " " + u.LastName); name != "" {
		sb.WriteString(fmt.Sprintf("Name:      %s\n", name))
	}
	if u.Email != "" {
		sb.WriteString(fmt.Sprintf("Email:     %s\n", u.Email))
	}
	if len(u.Capabilities) > 0 {
		sb.WriteString(fmt.Sprintf("Can:       %s\n", strings.Join(u.Capabilities, ", ")))
	} else {
		sb.WriteString("Can:       (nothing)\n")
	}

	p.printBox("USER", sb.String())
}

// PrintJob outputs a single job posting.
func (p *Printer) PrintJob(j *db.Job) {
	if j == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("ID:        %d\n", j.ID))
	sb.WriteString(fmt.Sprintf("Title:     %s\n", j.Title))
	if j.Location != "" {
		sb.WriteString(fmt.Sprintf("Location:  %s\n", j.Location))
	}
	sb.WriteString(fmt.Sprintf("Model:     %s\n", j.WorkModel))
	sb.WriteString(fmt.Sprintf("Status:    %s\n", j.Status))

	p.printBox("JOB", sb.String())
}
