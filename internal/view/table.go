package view

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/Lllllllleong/achievementflow/internal/models"
)

const (
	// EmptyMessage fills the sentinel row shown instead of an empty table.
	EmptyMessage = "No achievements found."
	// LinkLabel is the text of each row's file link.
	LinkLabel = "View Achievement ↗"

	displayDateLayout = "1/2/2006"
)

// Columns are the table headers, in display order.
var Columns = []string{"Title", "Student Name", "Issued Date", "Description", "View File"}

// BuildTable renders list as table rows. An empty list yields exactly one
// sentinel row rather than no rows at all.
func BuildTable(list []models.Achievement) models.Table {
	t := models.Table{Columns: Columns, Rows: make([]models.TableRow, 0, max(len(list), 1))}
	if len(list) == 0 {
		t.Rows = append(t.Rows, models.TableRow{Sentinel: true, Message: EmptyMessage})
		return t
	}
	for _, a := range list {
		desc := a.Description
		if strings.TrimSpace(desc) == "" {
			desc = "-"
		}
		t.Rows = append(t.Rows, models.TableRow{
			ID:          a.ID,
			Title:       a.Title,
			StudentName: a.StudentName,
			IssuedDate:  DisplayDate(a.Date),
			Description: desc,
			FileURL:     a.FileURL,
			LinkLabel:   LinkLabel,
		})
	}
	return t
}

// DisplayDate formats an ISO date as a short month/day/year date. Values that
// do not parse are shown unchanged.
func DisplayDate(iso string) string {
	d, err := time.Parse(models.DateLayout, strings.TrimSpace(iso))
	if err != nil {
		return iso
	}
	return d.Format(displayDateLayout)
}

// WriteText prints t as aligned plain-text columns.
func WriteText(w io.Writer, t models.Table) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(t.Columns, "\t"))
	for _, r := range t.Rows {
		if r.Sentinel {
			fmt.Fprintln(tw, r.Message)
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", r.Title, r.StudentName, r.IssuedDate, r.Description, r.FileURL)
	}
	return tw.Flush()
}
