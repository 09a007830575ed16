package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Dir appends exports to PBN files below a local directory.
type Dir struct {
	Root string
}

func (d Dir) Export(_ context.Context, room, name string, boards []string) (string, error) {
	path := filepath.Join(d.Root, filepath.FromSlash(FileName(room, name)))

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	// A new file gets the PBN header, an existing one only more boards.
	exists := false
	if _, err := os.Stat(path); err == nil {
		exists = true
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	var text string
	if exists {
		var sb strings.Builder
		for _, b := range boards {
			sb.WriteString(strings.TrimSpace(b))
			sb.WriteString("\n\n")
		}
		text = sb.String()
	} else {
		text = Document(room, boards, time.Now())
	}

	if _, err := file.WriteString(text); err != nil {
		return "", fmt.Errorf("failed to write to file: %w", err)
	}
	return path, nil
}
