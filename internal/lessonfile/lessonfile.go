// Package lessonfile decodes authored lesson definitions from JSON, YAML
// or TOML files.
//
// Three shapes are accepted at the top level:
//   - a single lesson object with a "content" list
//   - a chapter object mapping lesson id to lesson object
//   - a bare list of items, with the lesson metadata supplied by the caller
package lessonfile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/heartmarshall/khmer-content/internal/domain"
)

// Format is a supported file encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// Shape is the top-level layout of a decoded file.
type Shape string

const (
	ShapeLesson  Shape = "lesson"
	ShapeChapter Shape = "chapter"
	ShapeItems   Shape = "items"
)

// Meta overrides lesson metadata. It is required for a bare item list and
// takes precedence over values in a single lesson object.
type Meta struct {
	LessonID    int
	Title       string
	Description string
	ModuleID    *int
	OrderIndex  *int
}

// File is a decoded lesson file.
type File struct {
	Path    string
	Shape   Shape
	Lessons []domain.LessonDefinition
}

// ByID returns the lessons keyed by id.
func (f File) ByID() map[int]domain.LessonDefinition {
	out := make(map[int]domain.LessonDefinition, len(f.Lessons))
	for _, l := range f.Lessons {
		out[l.ID] = l
	}
	return out
}

// FormatOf picks the format from the file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	}
	return "", domain.NewValidationError("path", fmt.Sprintf("unsupported extension %q", filepath.Ext(path)))
}

// Load reads and decodes the file at path.
func Load(path string, meta Meta) (File, error) {
	format, err := FormatOf(path)
	if err != nil {
		return File{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("read %s: %w", path, err)
	}
	f, err := Decode(data, format, meta)
	if err != nil {
		return File{}, fmt.Errorf("%s: %w", path, err)
	}
	f.Path = path
	return f, nil
}

// Decode parses data in format.
func Decode(data []byte, format Format, meta Meta) (File, error) {
	var root any
	var err error
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		err = dec.Decode(&root)
	case FormatYAML:
		err = yaml.Unmarshal(data, &root)
	case FormatTOML:
		err = toml.Unmarshal(data, &root)
	default:
		return File{}, domain.NewValidationError("format", fmt.Sprintf("unsupported format %q", format))
	}
	if err != nil {
		return File{}, fmt.Errorf("decode %s: %w", format, err)
	}
	return fromTree(normalize(root), meta)
}

func fromTree(root any, meta Meta) (File, error) {
	switch v := root.(type) {
	case []any:
		if meta.LessonID == 0 || meta.Title == "" {
			return File{}, domain.NewValidationError("lesson_id", "a bare item list needs lesson id and title")
		}
		items, err := parseItems(v)
		if err != nil {
			return File{}, err
		}
		def := domain.LessonDefinition{
			ID:          meta.LessonID,
			Title:       meta.Title,
			Description: meta.Description,
			ModuleID:    meta.ModuleID,
			OrderIndex:  meta.OrderIndex,
			Content:     items,
		}
		return File{Shape: ShapeItems, Lessons: []domain.LessonDefinition{def}}, nil

	case map[string]any:
		if _, ok := v["content"]; ok {
			def, err := parseLesson(v, 0)
			if err != nil {
				return File{}, err
			}
			applyMeta(&def, meta)
			if def.ID == 0 {
				return File{}, domain.NewValidationError("lesson_id", "missing lesson id")
			}
			return File{Shape: ShapeLesson, Lessons: []domain.LessonDefinition{def}}, nil
		}
		return parseChapter(v)
	}
	return File{}, domain.NewValidationError("root", fmt.Sprintf("unexpected top-level %T", root))
}

func parseChapter(m map[string]any) (File, error) {
	if len(m) == 0 {
		return File{}, domain.NewValidationError("root", "empty document")
	}
	ids := make([]int, 0, len(m))
	byID := make(map[int]map[string]any, len(m))
	for key, raw := range m {
		id, err := strconv.Atoi(strings.TrimSpace(key))
		if err != nil {
			return File{}, domain.NewValidationError(key, "chapter keys must be lesson ids")
		}
		obj, ok := raw.(map[string]any)
		if !ok {
			return File{}, domain.NewValidationError(key, "lesson must be an object")
		}
		ids = append(ids, id)
		byID[id] = obj
	}
	sort.Ints(ids)

	f := File{Shape: ShapeChapter}
	for _, id := range ids {
		def, err := parseLesson(byID[id], id)
		if err != nil {
			return File{}, fmt.Errorf("lesson %d: %w", id, err)
		}
		f.Lessons = append(f.Lessons, def)
	}
	return f, nil
}

func parseLesson(m map[string]any, id int) (domain.LessonDefinition, error) {
	p := domain.Payload(m)
	def := domain.LessonDefinition{
		ID:          id,
		Title:       p.String("title"),
		Description: firstString(p, "description", "desc"),
	}
	if def.ID == 0 {
		for _, key := range []string{"lesson_id", "id"} {
			if n, ok := toInt(m[key]); ok {
				def.ID = n
				break
			}
		}
	}
	if n, ok := toInt(m["module_id"]); ok {
		def.ModuleID = &n
	}
	if n, ok := toInt(m["order_index"]); ok {
		def.OrderIndex = &n
	}

	list, ok := m["content"].([]any)
	if !ok && m["content"] != nil {
		return def, domain.NewValidationError("content", "content must be a list of items")
	}
	items, err := parseItems(list)
	if err != nil {
		return def, err
	}
	def.Content = items
	return def, nil
}

func parseItems(list []any) ([]domain.LessonItem, error) {
	items := make([]domain.LessonItem, 0, len(list))
	for i, raw := range list {
		obj, ok := raw.(map[string]any)
		if !ok {
			return nil, domain.NewValidationError(fmt.Sprintf("content[%d]", i), "item must be an object")
		}
		data, _ := obj["data"].(map[string]any)
		items = append(items, domain.LessonItem{
			Type: domain.NormalizeItemType(domain.Payload(obj).String("type")),
			Data: domain.Payload(data),
		})
	}
	return items, nil
}

func applyMeta(def *domain.LessonDefinition, meta Meta) {
	if meta.LessonID != 0 {
		def.ID = meta.LessonID
	}
	if meta.Title != "" {
		def.Title = meta.Title
	}
	if meta.Description != "" {
		def.Description = meta.Description
	}
	if meta.ModuleID != nil {
		def.ModuleID = meta.ModuleID
	}
	if meta.OrderIndex != nil {
		def.OrderIndex = meta.OrderIndex
	}
}

func firstString(p domain.Payload, keys ...string) string {
	for _, k := range keys {
		if v := p.String(k); v != "" {
			return v
		}
	}
	return ""
}

// normalize converts decoder-specific shapes to plain JSON-like values:
// string-keyed maps, []any lists and json.Number resolved to int or float64.
func normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, inner := range t {
			out[k] = normalize(inner)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, inner := range t {
			out[fmt.Sprint(k)] = normalize(inner)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, inner := range t {
			out[i] = normalize(inner)
		}
		return out
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return int(n)
		}
		f, _ := t.Float64()
		return f
	case int64:
		return int(t)
	}
	return v
}

func toInt(v any) (int, bool) {
	switch t := v.(type) {
	case int:
		return t, true
	case int64:
		return int(t), true
	case float64:
		if t == float64(int(t)) {
			return int(t), true
		}
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		if err == nil {
			return n, true
		}
	}
	return 0, false
}
