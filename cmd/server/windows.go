package main

import (
	"fmt"
	"io"
	"time"

	"github.com/dennisdiepolder/availability/internal/config"
	"github.com/dennisdiepolder/availability/internal/region"
	"github.com/spf13/cobra"
)

func newWindowsCmd(rosterFile *string) *cobra.Command {
	var at string

	cmd := &cobra.Command{
		Use:   "windows",
		Short: "Print the city shift windows at a UTC time",
		Example: `  availability windows --at 14:30
  availability windows --roster team.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			static, err := loadStatic(*rosterFile)
			if err != nil {
				return err
			}

			now := region.UTCHour(time.Now())
			if at != "" {
				t, err := time.Parse("15:04", at)
				if err != nil {
					return fmt.Errorf("invalid --at %q, want HH:MM: %w", at, err)
				}
				now = region.UTCHour(t)
			}

			printWindows(cmd.OutOrStdout(), static, now)
			return nil
		},
	}
	cmd.Flags().StringVar(&at, "at", "", "UTC time as HH:MM (default now)")
	return cmd
}

func printWindows(w io.Writer, static config.Static, now float64) {
	fmt.Fprintf(w, "UTC %s  cursor %.1f%%\n", formatHour(now), region.Cursor(now))

	if c, ok := region.CurrentCity(static.Cities, now); ok {
		fmt.Fprintf(w, "current:  %s\n", c.Name)
	}
	if c, ok := region.IncomingCity(static.Cities, now); ok {
		fmt.Fprintf(w, "incoming: %s\n", c.Name)
	}

	fmt.Fprintln(w, "\ncities:")
	for _, c := range static.Cities {
		mark := " "
		if region.Active(c, now) {
			mark = "*"
		}
		fmt.Fprintf(w, "  %s %-4s %-16s %s-%s\n", mark, c.Code, c.Name, formatHour(c.StartHourUTC), formatHour(c.EndHourUTC))
	}

	bands := region.Handoffs(static.Cities)
	if len(bands) == 0 {
		return
	}
	fmt.Fprintln(w, "\nhandoffs:")
	for _, b := range bands {
		fmt.Fprintf(w, "  %s -> %s  %s-%s\n", b.From, b.To, formatHour(b.StartHourUTC), formatHour(b.EndHourUTC))
	}
}

// formatHour renders a fractional hour on the 24h clock as HH:MM
func formatHour(h float64) string {
	total := int(h*60+0.5) % (24 * 60)
	if total < 0 {
		total += 24 * 60
	}
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}
