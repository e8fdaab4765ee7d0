package main

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/heartmarshall/khmer-content/internal/app/seeder"
	"github.com/heartmarshall/khmer-content/internal/app/validator"
	"github.com/heartmarshall/khmer-content/internal/lessonfile"
)

func loadFiles(paths []string, meta lessonfile.Meta) ([]lessonfile.File, error) {
	files := make([]lessonfile.File, 0, len(paths))
	for _, p := range paths {
		f, err := lessonfile.Load(p, meta)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, nil
}

func printReport(w io.Writer, r validator.Report) {
	for _, e := range r.Errors {
		fmt.Fprintf(w, "ERROR   %s\n", e)
	}
	for _, warn := range r.Warnings {
		fmt.Fprintf(w, "WARNING %s\n", warn)
	}
}

func lessonResultsTable(w io.Writer, results []seeder.LessonResult) string {
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		status := "ok"
		if r.Err != nil {
			status = r.Err.Error()
		} else if r.Failed > 0 {
			status = "partial"
		}
		rows = append(rows, []string{
			strconv.Itoa(r.LessonID),
			strconv.Itoa(r.Inserted),
			strconv.Itoa(r.Failed),
			strconv.Itoa(r.DictionaryUpserts),
			strconv.Itoa(r.Audio.Generated),
			strconv.Itoa(r.Audio.Existing),
			strconv.Itoa(r.Audio.Failed + r.Audio.Pending),
			r.Duration.Round(time.Millisecond).String(),
			status,
		})
	}
	return renderTable(w,
		[]string{"Lesson", "Items", "Failed", "Dictionary", "Audio new", "Audio kept", "Audio missing", "Duration", "Status"},
		rows,
		[]columnAlignment{alignRight, alignRight, alignRight, alignRight, alignRight, alignRight, alignRight, alignRight, alignLeft},
	)
}
