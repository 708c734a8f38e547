// Package media picks the companion video for an answer from a local
// directory of media files.
package media

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/cloo-solutions/aula/internal/topic"
)

// Extensions lists the accepted media file extensions (lower-case).
var Extensions = []string{".mp4", ".webm", ".mov", ".m4v"}

const (
	topicScore   = 5
	keywordScore = 1
	carryBonus   = 2
)

var (
	carryMarkers   = []string{"llevando", "acarreo"}
	separatorsRuns = regexp.MustCompile(`[\s_.\-]+`)
)

// Candidate is a scored media file.
type Candidate struct {
	Path    string
	Name    string
	ModTime time.Time
	Score   int
}

// Matcher selects media files from Dir.
type Matcher struct {
	Dir string
}

// NewMatcher creates a Matcher over dir
func NewMatcher(dir string) *Matcher {
	return &Matcher{Dir: dir}
}

// Select returns the file name of the best scoring asset for the topic and
// question. It returns false when the topic is empty, the directory cannot
// be listed or no file scores above zero; none of those are errors.
func (m *Matcher) Select(ctx context.Context, t topic.Topic, question string) (string, bool) {
	if t == topic.None {
		return "", false
	}

	candidates, err := m.Candidates(ctx, t, question)
	if err != nil {
		log.Printf("media: cannot list %s: %v", m.Dir, err)
		return "", false
	}
	if len(candidates) == 0 || candidates[0].Score <= 0 {
		return "", false
	}

	return candidates[0].Name, true
}

// Candidates lists and scores every media file in the directory, best
// first: score descending, then newest first, then by name.
func (m *Matcher) Candidates(ctx context.Context, t topic.Topic, question string) ([]Candidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(m.Dir)
	if err != nil {
		return nil, err
	}

	normTopic := NormalizeName(string(t))
	keywords := topic.Keywords(question)

	var out []Candidate
	for _, e := range entries {
		ext := filepath.Ext(e.Name())
		if !isMediaExt(ext) {
			continue
		}
		// Stat follows symlinks; the target decides file type and mtime.
		path := filepath.Join(m.Dir, e.Name())
		info, err := os.Stat(path)
		if err != nil {
			log.Printf("media: skipping %s: %v", e.Name(), err)
			continue
		}
		if !info.Mode().IsRegular() {
			continue
		}

		name := NormalizeName(strings.TrimSuffix(e.Name(), ext))
		out = append(out, Candidate{
			Path:    path,
			Name:    e.Name(),
			ModTime: info.ModTime(),
			Score:   Score(name, normTopic, keywords),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		if !out[i].ModTime.Equal(out[j].ModTime) {
			return out[i].ModTime.After(out[j].ModTime)
		}
		return out[i].Name < out[j].Name
	})

	return out, nil
}

// NormalizeName folds a file stem and turns separator runs into a single
// space, so "Suma_Llevando-2" reads as "suma llevando 2".
func NormalizeName(stem string) string {
	return strings.TrimSpace(separatorsRuns.ReplaceAllString(topic.Fold(stem), " "))
}

// Score rates a normalized file name against a topic normalized the same
// way and the question keywords.
func Score(name, normTopic string, keywords []string) int {
	score := 0
	if normTopic != "" && strings.Contains(name, normTopic) {
		score += topicScore
	}
	for _, kw := range keywords {
		if kw != "" && strings.Contains(name, kw) {
			score += keywordScore
		}
	}
	if topic.Topic(normTopic).IsAddition() {
		for _, marker := range carryMarkers {
			if strings.Contains(name, marker) {
				score += carryBonus
				break
			}
		}
	}
	return score
}

func isMediaExt(ext string) bool {
	ext = strings.ToLower(ext)
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}
