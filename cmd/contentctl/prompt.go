package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/heartmarshall/khmer-content/internal/lessonfile"
)

var errNoSelection = errors.New("no lesson file selected")

// lessonFiles lists the decodable lesson files directly inside dir.
func lessonFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read content dir: %w", err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if _, err := lessonfile.FormatOf(e.Name()); err == nil {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

// pickFile prints the lesson files of dir, numbered from 1, and reads the
// chosen number from r.
func pickFile(r io.Reader, w io.Writer, dir string) (string, error) {
	files, err := lessonFiles(dir)
	if err != nil {
		return "", err
	}
	if len(files) == 0 {
		return "", fmt.Errorf("no lesson files in %s", dir)
	}

	fmt.Fprintf(w, "Lesson files in %s:\n", dir)
	for i, f := range files {
		fmt.Fprintf(w, "  %d) %s\n", i+1, filepath.Base(f))
	}
	fmt.Fprint(w, "Select a file: ")

	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read selection: %w", err)
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return "", errNoSelection
	}
	n, err := strconv.Atoi(line)
	if err != nil || n < 1 || n > len(files) {
		return "", fmt.Errorf("invalid selection %q: pick 1..%d", line, len(files))
	}
	return files[n-1], nil
}
