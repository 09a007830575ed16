// Package export writes saved boards out as PBN files, either to a local
// directory or to an S3-compatible bucket.
package export

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gosimple/slug"
)

// Exporter stores a set of PBN boards under a file name and returns where
// they were written.
type Exporter interface {
	Export(ctx context.Context, room, name string, boards []string) (string, error)
}

// FileName derives a safe object name for a room's export.
func FileName(room, name string) string {
	base := slug.Make(name)
	if base == "" {
		base = "boards"
	}
	if r := slug.Make(room); r != "" {
		return r + "/" + base + ".pbn"
	}
	return base + ".pbn"
}

// Document renders boards as a PBN file with a header.
func Document(room string, boards []string, now time.Time) string {
	var sb strings.Builder
	sb.WriteString("% PBN 2.1\n% EXPORT\n")
	fmt.Fprintf(&sb, "%% Room %s, exported %s\n\n", room, now.Format("2006-01-02 15:04:05"))
	for _, b := range boards {
		sb.WriteString(strings.TrimSpace(b))
		sb.WriteString("\n\n")
	}
	return sb.String()
}
