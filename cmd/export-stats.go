package cmd

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/usama-1998/telegram-group-chat-exporter/model"
	"github.com/usama-1998/telegram-group-chat-exporter/stats"
)

// NewExportStatsCmd analyses a finished JSON export: message counts per
// sender and per calendar date, with optional CSV reports.
func NewExportStatsCmd() *cobra.Command {
	var (
		reportDir string
		topN      int
	)

	c := &cobra.Command{
		Use:   "export-stats [export.json]",
		Short: "Analyse a JSON export and show statistics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			exportPath := args[0]

			fmt.Println("Analyzing export file:", exportPath)

			data, err := os.ReadFile(exportPath)
			if err != nil {
				return fmt.Errorf("read export file: %w", err)
			}

			var messages []model.Message
			if err := json.Unmarshal(data, &messages); err != nil {
				return fmt.Errorf("parse export file: %w", err)
			}

			senders := make(map[string]int)
			dates := make(map[string]int)
			for _, m := range messages {
				senders[m.Sender]++
				if d := calendarPart(m.Date); d != "" {
					dates[d]++
				}
			}

			fmt.Printf("Total messages: %d\n\n", len(messages))

			fmt.Printf("Top %d senders:\n", topN)
			stats.PrettyPrintTop(senders, topN)
			fmt.Println()

			fmt.Printf("Top %d days:\n", topN)
			stats.PrettyPrintTop(dates, topN)
			fmt.Println()

			if reportDir != "" {
				counters := map[string]map[string]int{
					"senders": senders,
					"dates":   dates,
				}
				if err := saveCSVReports(counters, reportDir, 1000); err != nil {
					return fmt.Errorf("save CSV reports: %w", err)
				}
				fmt.Printf("Reports saved to directory: %s\n", reportDir)
			}

			return nil
		},
	}

	c.Flags().StringVarP(&reportDir, "output", "o", "", "Output directory for CSV reports (empty disables reports)")
	c.Flags().IntVarP(&topN, "top", "t", 10, "Number of top items to display in statistics")

	return c
}

var timeSuffixRe = regexp.MustCompile(`^\d{1,2}:\d{2}`)

// calendarPart strips the time-of-day from a composite date field.
// "December 1, 2025, 07:30 AM" becomes "December 1, 2025". Dates whose last
// comma does not precede a time, like "Dec 1, 2025", pass through unchanged.
func calendarPart(date string) string {
	if idx := strings.LastIndex(date, ", "); idx > 0 && timeSuffixRe.MatchString(date[idx+2:]) {
		return date[:idx]
	}
	return date
}

func saveCSVReports(counters map[string]map[string]int, dir string, limit int) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	for name, counts := range counters {
		filePath := filepath.Join(dir, fmt.Sprintf("report_%s.csv", name))

		file, err := os.Create(filePath)
		if err != nil {
			return err
		}

		writer := csv.NewWriter(file)

		if err := writer.Write([]string{"Value", "Count"}); err != nil {
			file.Close()
			return err
		}

		type pair struct {
			Key   string
			Value int
		}
		var pairs []pair
		for k, v := range counts {
			pairs = append(pairs, pair{k, v})
		}
		sort.Slice(pairs, func(i, j int) bool {
			return pairs[i].Value > pairs[j].Value
		})

		for i := 0; i < limit && i < len(pairs); i++ {
			record := []string{
				pairs[i].Key,
				strconv.Itoa(pairs[i].Value),
			}
			if err := writer.Write(record); err != nil {
				file.Close()
				return err
			}
		}

		writer.Flush()
		file.Close()

		if err := writer.Error(); err != nil {
			return err
		}
	}

	return nil
}
