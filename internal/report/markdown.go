package report

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hoanghai1803/cyberdigest/internal/models"
)

// TimestampLayout formats the run timestamp in the header and file name.
const TimestampLayout = "2006-01-02_15-04-05"

const (
	filePrefix = "cyber_news_"
	fileExt    = ".md"
)

// FileName returns the report file name for a run timestamp.
func FileName(timestamp string) string {
	return filePrefix + timestamp + fileExt
}

// Render produces the full markdown report: a header line followed by one
// section per story in order.
func Render(timestamp string, stories []models.Story) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# Cybersecurity News Summary — %s\n\n", timestamp)
	for _, s := range stories {
		writeSection(&sb, s)
	}
	return sb.String()
}

func writeSection(sb *strings.Builder, s models.Story) {
	author := s.Author
	if author == "" {
		author = models.DefaultAuthor
	}
	score := "N/A"
	if s.Score != nil {
		score = strconv.Itoa(*s.Score)
	}

	fmt.Fprintf(sb, "### [%s](%s)\n", s.Title, s.URL)
	fmt.Fprintf(sb, "- **Author**: %s\n", author)
	fmt.Fprintf(sb, "- **Score**: %s\n", score)
	fmt.Fprintf(sb, "- **Time**: %s\n", s.Timestamp)
	if s.ReadingTime > 0 {
		fmt.Fprintf(sb, "- **Reading time**: %d min\n", s.ReadingTime)
	}
	fmt.Fprintf(sb, "\n**Summary:**\n%s\n\n---\n\n", s.Summary)
}
