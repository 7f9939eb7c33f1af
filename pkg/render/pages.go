package render

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Pages rasterizes every page of a PDF into JPEGs under outDir using the
// external pdftoppm tool. Returns the number of pages written. Rendering is a
// best-effort substage; callers log failures and continue.
func Pages(ctx context.Context, exe, pdfPath, outDir string, dpi int) (int, error) {
	if dpi <= 0 {
		dpi = 150
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return 0, fmt.Errorf("create pages dir: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	prefix := filepath.Join(outDir, "page")
	cmd := exec.CommandContext(ctx, exe, "-jpeg", "-r", strconv.Itoa(dpi), pdfPath, prefix)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return 0, fmt.Errorf("pdftoppm: %s: %w", strings.TrimSpace(stderr.String()), err)
	}

	entries, err := os.ReadDir(outDir)
	if err != nil {
		return 0, fmt.Errorf("read pages dir: %w", err)
	}
	pages := 0
	for _, e := range entries {
		if !e.IsDir() && strings.HasPrefix(e.Name(), "page") && strings.HasSuffix(e.Name(), ".jpg") {
			pages++
		}
	}
	return pages, nil
}
