package timeutil

import (
	"testing"
	"time"
)

func TestFileStamp(t *testing.T) {
	value := time.Date(2026, 3, 5, 7, 8, 9, 0, time.Local)
	if got := FileStamp(value); got != "20260305_070809" {
		t.Fatalf("unexpected stamp: %q", got)
	}
}
