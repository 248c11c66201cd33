package market

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"
)

// WriteJSON writes the report as indented JSON
func WriteJSON(w io.Writer, report *Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return nil
}

// WriteCSV writes the enriched rows as CSV. Identifier-only reports (channel
// and playlist scans) emit one identifier per line.
func WriteCSV(w io.Writer, report *Report) error {
	cw := csv.NewWriter(w)

	if report.Kind != KindVideo {
		if err := cw.Write([]string{"id"}); err != nil {
			return err
		}
		for _, id := range report.IDs {
			if err := cw.Write([]string{id}); err != nil {
				return err
			}
		}
		cw.Flush()
		return cw.Error()
	}

	header := []string{
		"rank", "region", "class", "title", "views", "likes", "comments",
		"subscribers", "published_at", "age", "like_rate", "comment_rate",
		"viral", "video_url", "channel_url",
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, row := range report.Rows {
		published := ""
		if !row.PublishedAt.IsZero() {
			published = row.PublishedAt.Format(time.RFC3339)
		}
		record := []string{
			strconv.Itoa(row.Rank),
			row.OriginRegion,
			string(row.Class),
			row.Title,
			strconv.FormatInt(row.Views, 10),
			strconv.FormatInt(row.Likes, 10),
			strconv.FormatInt(row.Comments, 10),
			strconv.FormatInt(row.Subscribers, 10),
			published,
			row.AgeDisplay,
			strconv.FormatFloat(row.LikeRate, 'f', 2, 64),
			strconv.FormatFloat(row.CommentRate, 'f', 2, 64),
			strconv.FormatBool(row.Viral),
			row.VideoURL,
			row.ChannelURL,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// Export writes the report to path in the given format ("json" or "csv")
func Export(path, format string, report *Report) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	defer file.Close()

	switch format {
	case "csv":
		return WriteCSV(file, report)
	case "json", "":
		return WriteJSON(file, report)
	default:
		return fmt.Errorf("unsupported export format: %s", format)
	}
}
