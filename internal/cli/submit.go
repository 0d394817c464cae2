package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Lllllllleong/achievementflow/internal/assets"
	"github.com/Lllllllleong/achievementflow/internal/view"
)

type submitFlags struct {
	title       string
	student     string
	description string
	date        string
	file        string
}

func newSubmitCmd(a *app) *cobra.Command {
	var f submitFlags
	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Upload a file and record a new achievement",
		Example: "  achievementctl submit --title \"Science Fair\" --student Ravi \\\n" +
			"    --date 2024-03-01 --file ./cert.pdf",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runSubmit(cmd, f)
		},
	}
	cmd.Flags().StringVar(&f.title, "title", "", "achievement title (required)")
	cmd.Flags().StringVar(&f.student, "student", "", "student name (required)")
	cmd.Flags().StringVar(&f.description, "description", "", "optional description")
	cmd.Flags().StringVar(&f.date, "date", "", "issue date, YYYY-MM-DD (required)")
	cmd.Flags().StringVar(&f.file, "file", "", "certificate file: "+strings.Join(assets.AcceptedExtensions, ", ")+" (required)")
	return cmd
}

func (a *app) runSubmit(cmd *cobra.Command, f submitFlags) error {
	if f.title == "" || f.student == "" || f.date == "" || f.file == "" {
		return fmt.Errorf("please fill all fields: --title, --student, --date and --file are required")
	}
	if !assets.IsAcceptedExtension(f.file) {
		return fmt.Errorf("%s: accepted file types are %s", f.file, strings.Join(assets.AcceptedExtensions, ", "))
	}

	file, err := os.Open(f.file)
	if err != nil {
		return fmt.Errorf("open file: %w", err)
	}
	defer file.Close()

	b, closeFn, err := a.board(cmd)
	if err != nil {
		return err
	}
	defer closeFn()

	b.OnChange(func(s view.Snapshot) {
		if s.State == view.Submitting {
			fmt.Fprintln(cmd.ErrOrStderr(), s.SubmitLabel)
		}
	})
	b.SetForm(view.Form{
		Title:       f.title,
		StudentName: f.student,
		Description: f.description,
		Date:        f.date,
		FileName:    filepath.Base(f.file),
		File:        file,
	})

	res, err := b.Submit(cmd.Context())
	if err != nil {
		return fmt.Errorf("submission failed: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Recorded %s (%s)\n", res.RecordID, res.Asset.URL)
	if res.RefreshErr != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v; list not refreshed\n", res.RefreshErr)
		return nil
	}
	return view.WriteText(out, b.Snapshot().Table)
}
