// Package corpus reads the teaching material that ingest turns into
// documents: markdown theory notes and semicolon-separated exercise sheets.
package corpus

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cloo-solutions/aula/internal/domain"
)

const (
	TheoryDir   = "temas"
	ExerciseDir = "ejercicios"
)

// Read loads theory notes followed by exercises from dataDir. Missing
// subdirectories yield no documents.
func Read(dataDir string) ([]domain.Document, error) {
	theory, err := ReadTheory(filepath.Join(dataDir, TheoryDir))
	if err != nil {
		return nil, err
	}
	exercises, err := ReadExercises(filepath.Join(dataDir, ExerciseDir))
	if err != nil {
		return nil, err
	}
	return append(theory, exercises...), nil
}

// ReadTheory reads every *.md file in dir, sorted by name. The file stem
// splits on "_" into topic (first part) and grade (last part, when there
// are at least two).
func ReadTheory(dir string) ([]domain.Document, error) {
	files, err := listFiles(dir, ".md")
	if err != nil {
		return nil, err
	}

	docs := make([]domain.Document, 0, len(files))
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		if strings.TrimSpace(string(data)) == "" {
			log.Printf("corpus: %s is empty, skipping", path)
			continue
		}

		title := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		parts := strings.Split(title, "_")
		grade := ""
		if len(parts) > 1 {
			grade = parts[len(parts)-1]
		}

		docs = append(docs, *domain.NewDocument(0, domain.DocumentKindTheory, title, parts[0], grade, string(data)))
	}
	log.Printf("corpus: read %d theory notes from %s", len(docs), dir)
	return docs, nil
}

// ReadExercises reads every *.csv file in dir, sorted by name. Sheets are
// ";"-separated with a header row; header names are trimmed and lower-cased.
func ReadExercises(dir string) ([]domain.Document, error) {
	files, err := listFiles(dir, ".csv")
	if err != nil {
		return nil, err
	}

	var docs []domain.Document
	for _, path := range files {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", path, err)
		}
		sheet, err := ParseExercises(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		docs = append(docs, sheet...)
	}
	log.Printf("corpus: read %d exercises from %s", len(docs), dir)
	return docs, nil
}

// ParseExercises parses one exercise sheet. Columns enunciado, solucion,
// topic and grade are used; any may be missing.
func ParseExercises(r io.Reader) ([]domain.Document, error) {
	cr := csv.NewReader(r)
	cr.Comma = ';'
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if _, dup := columns[name]; !dup {
			columns[name] = i
		}
	}
	field := func(rec []string, name string) string {
		i, ok := columns[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	var docs []domain.Document
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if blank(rec) {
			continue
		}

		t := field(rec, "topic")
		text := fmt.Sprintf("Enunciado: %s\nSolucion: %s", field(rec, "enunciado"), field(rec, "solucion"))
		title := strings.TrimSpace("Ejercicio: " + t)
		docs = append(docs, *domain.NewDocument(0, domain.DocumentKindExercise, title, t, field(rec, "grade"), text))
	}
	return docs, nil
}

func listFiles(dir, ext string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.Printf("corpus: %s not found, skipping", dir)
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}

	var out []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ext) {
			continue
		}
		out = append(out, filepath.Join(dir, e.Name()))
	}
	sort.Strings(out)
	return out, nil
}

func blank(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
