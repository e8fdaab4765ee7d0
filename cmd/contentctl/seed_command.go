package main

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/heartmarshall/khmer-content/internal/app/seeder"
	"github.com/heartmarshall/khmer-content/internal/domain"
	"github.com/heartmarshall/khmer-content/internal/lessonfile"
)

var errSeedIncomplete = errors.New("seeding finished with errors")

type lessonFlags struct {
	lessonID   int
	title      string
	desc       string
	moduleID   int
	orderIndex int
}

func (f *lessonFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.lessonID, "lesson-id", 0, "Lesson id (required for a bare item list, overrides the file)")
	cmd.Flags().StringVar(&f.title, "title", "", "Lesson title (required for a bare item list, overrides the file)")
	cmd.Flags().StringVar(&f.desc, "desc", "", "Lesson description")
	cmd.Flags().IntVar(&f.moduleID, "module-id", 0, "Module (chapter) id")
	cmd.Flags().IntVar(&f.orderIndex, "order-index", 0, "Lesson position inside the module")
}

// meta returns only the flags the user actually set.
func (f *lessonFlags) meta(cmd *cobra.Command) lessonfile.Meta {
	m := lessonfile.Meta{LessonID: f.lessonID, Title: f.title, Description: f.desc}
	if cmd.Flags().Changed("module-id") {
		id := f.moduleID
		m.ModuleID = &id
	}
	if cmd.Flags().Changed("order-index") {
		idx := f.orderIndex
		m.OrderIndex = &idx
	}
	return m
}

func newSeedCommand(ctx *commandContext) *cobra.Command {
	var (
		lesson     lessonFlags
		summary    bool
		reference  bool
		contentDir string
	)

	cmd := &cobra.Command{
		Use:   "seed [files...]",
		Short: "Validate lesson files and replace their lessons in the store",
		Long: "Validate lesson files and replace their lessons in the store.\n\n" +
			"Without a file argument and on a terminal, a lesson file is picked\n" +
			"interactively from --content-dir.",
		RunE: func(cmd *cobra.Command, args []string) error {
			paths := args
			if len(paths) == 0 {
				if !ctx.interactive() {
					return errors.New("no lesson file given: pass a path or run on a terminal to pick one")
				}
				path, err := pickFile(ctx.stdin, cmd.OutOrStdout(), contentDir)
				if err != nil {
					return err
				}
				paths = []string{path}
			}

			files, err := loadFiles(paths, lesson.meta(cmd))
			if err != nil {
				return err
			}

			return ctx.withSession(cmd, sessionOptions{store: true, lock: true, synth: true}, func(s *session) error {
				return runSeed(s, files, summary || reference, reference)
			})
		},
	}

	lesson.register(cmd)
	cmd.Flags().BoolVar(&summary, "summary", false, "Rebuild the chapter summary of every module touched")
	cmd.Flags().BoolVar(&reference, "reference", false, "Also reseed the chapter guidebook lesson (implies --summary)")
	cmd.Flags().StringVar(&contentDir, "content-dir", "content", "Directory listed by the interactive picker")

	return cmd
}

// runSeed validates every file before the first write, so one bad file
// leaves the store untouched.
func runSeed(s *session, files []lessonfile.File, summary, reference bool) error {
	batches := make([]seeder.Batch, 0, len(files))
	var seeded []domain.LessonDefinition
	for _, f := range files {
		batches = append(batches, seeder.Batch{Source: filepath.Base(f.Path), Lessons: f.Lessons})
		seeded = append(seeded, f.Lessons...)
	}

	res, err := s.app.Lessons.RunBatches(s.ctx, batches...)
	printReport(s.stdout, res.Report)
	if err != nil {
		return err
	}
	fmt.Fprintln(s.stdout, lessonResultsTable(s.stdout, res.Lessons))

	if summary {
		if err := publishChapters(s, seeded, reference); err != nil {
			return err
		}
	}

	if res.HasErrors() {
		return errSeedIncomplete
	}
	return nil
}

// publishChapters rebuilds the summary of every module the lessons belong
// to. Lessons that resolve to no module are skipped.
func publishChapters(s *session, lessons []domain.LessonDefinition, reference bool) error {
	byModule := make(map[int]map[int]domain.LessonDefinition)
	for _, def := range lessons {
		mid := def.ChapterID()
		if mid <= 0 {
			s.log.WarnContext(s.ctx, "lesson has no module, summary skipped", slog.Int("lesson_id", def.ID))
			continue
		}
		if byModule[mid] == nil {
			byModule[mid] = make(map[int]domain.LessonDefinition)
		}
		byModule[mid][def.ID] = def
	}

	modules := make([]int, 0, len(byModule))
	for mid := range byModule {
		modules = append(modules, mid)
	}
	sort.Ints(modules)

	for _, mid := range modules {
		if err := publishChapter(s, mid, byModule[mid], reference); err != nil {
			return err
		}
	}
	return nil
}

func publishChapter(s *session, moduleID int, lessons map[int]domain.LessonDefinition, reference bool) error {
	res, err := s.app.Chapters.Publish(s.ctx, moduleID, lessons, reference)
	if err != nil {
		return fmt.Errorf("publish chapter %d: %w", moduleID, err)
	}
	fmt.Fprintf(s.stdout, "Chapter %d summary: %d lessons, %d words\n", res.ModuleID, res.Lessons, res.Words)
	if res.Reference != nil {
		fmt.Fprintf(s.stdout, "Chapter %d guidebook: lesson %d, %d items\n", res.ModuleID, res.Reference.LessonID, res.Reference.Inserted)
	}
	return nil
}
