package export

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
)

func TestFileName(t *testing.T) {
	if got := FileName("Club Night", "Week 3 / Slams"); got != "club-night/week-3-slams.pbn" {
		t.Fatalf("FileName = %q", got)
	}
	if got := FileName("", ""); got != "boards.pbn" {
		t.Fatalf("FileName = %q", got)
	}
}

func TestDocument(t *testing.T) {
	doc := Document("r", []string{"[Board \"1\"]\n", "[Board \"2\"]"}, time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC))
	if !strings.HasPrefix(doc, "% PBN 2.1\n") {
		t.Fatalf("missing header: %q", doc)
	}
	if !strings.Contains(doc, "2026-01-02 03:04:05") {
		t.Fatalf("missing timestamp: %q", doc)
	}
	if !strings.Contains(doc, "[Board \"1\"]\n\n[Board \"2\"]\n\n") {
		t.Fatalf("boards not separated by blank lines: %q", doc)
	}
}

func TestDirAppends(t *testing.T) {
	root := t.TempDir()
	d := Dir{Root: root}
	path, err := d.Export(context.Background(), "room", "saved", []string{"[Board \"1\"]"})
	if err != nil {
		t.Fatalf("first export: %v", err)
	}
	if path != filepath.Join(root, "room", "saved.pbn") {
		t.Fatalf("path = %s", path)
	}
	if _, err := d.Export(context.Background(), "room", "saved", []string{"[Board \"2\"]"}); err != nil {
		t.Fatalf("second export: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	text := string(data)
	if strings.Count(text, "% PBN 2.1") != 1 {
		t.Fatalf("header should be written once: %q", text)
	}
	if !strings.Contains(text, "[Board \"1\"]") || !strings.Contains(text, "[Board \"2\"]") {
		t.Fatalf("boards missing: %q", text)
	}
}

type fakePut struct {
	key, bucket, body string
}

func (f *fakePut) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.key, f.bucket = *in.Key, *in.Bucket
	data, _ := io.ReadAll(in.Body)
	f.body = string(data)
	return &s3.PutObjectOutput{}, nil
}

func TestBucketExport(t *testing.T) {
	f := &fakePut{}
	b := &Bucket{client: f, bucket: "boards", base: "https://cdn.example.com"}
	url, err := b.Export(context.Background(), "Room 1", "Set A", []string{"[Board \"1\"]"})
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if url != "https://cdn.example.com/room-1/set-a.pbn" {
		t.Fatalf("url = %s", url)
	}
	if f.bucket != "boards" || f.key != "room-1/set-a.pbn" {
		t.Fatalf("put %s/%s", f.bucket, f.key)
	}
	if !strings.Contains(f.body, "[Board \"1\"]") {
		t.Fatalf("body = %q", f.body)
	}
}
