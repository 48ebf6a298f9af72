package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/foyerapp/calsync/internal/model"
)

const dayFormat = "2006-01-02"

func newExportCmd() *cobra.Command {
	var user, from, to, output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Render a time window of the household planning as iCal",
		Long: `Render every meal, family activity and event of the user inside the
window as an iCal document, on stdout or into a file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.close()

			window, err := parseWindow(from, to)
			if err != nil {
				return err
			}
			text, err := a.engine.ExportWindowToICalText(ctx, user, window)
			if err != nil {
				return err
			}

			if output == "" {
				fmt.Print(text)
				return nil
			}
			if err := os.WriteFile(output, []byte(text), 0o644); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			fmt.Printf("wrote %s\n", output)
			return nil
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "user id (required)")
	cmd.Flags().StringVar(&from, "from", "", "window start, YYYY-MM-DD (default: today)")
	cmd.Flags().StringVar(&to, "to", "", "window end, YYYY-MM-DD exclusive (default: 30 days ahead)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the document to a file instead of stdout")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func parseWindow(from, to string) (model.Window, error) {
	now := time.Now()
	y, m, d := now.Date()
	window := model.Window{
		From: time.Date(y, m, d, 0, 0, 0, 0, time.Local),
		To:   now.Add(30 * 24 * time.Hour),
	}
	if from != "" {
		t, err := time.ParseInLocation(dayFormat, from, time.Local)
		if err != nil {
			return model.Window{}, fmt.Errorf("invalid --from date %q: %w", from, err)
		}
		window.From = t
	}
	if to != "" {
		t, err := time.ParseInLocation(dayFormat, to, time.Local)
		if err != nil {
			return model.Window{}, fmt.Errorf("invalid --to date %q: %w", to, err)
		}
		window.To = t
	}
	if !window.To.After(window.From) {
		return model.Window{}, fmt.Errorf("--to must be after --from")
	}
	return window, nil
}
