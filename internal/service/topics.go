package service

import "strings"

// DefaultTopics lead the topic catalogue.
var DefaultTopics = []string{"Sumas", "Restas", "Multiplicaciones", "Divisiones", "Problemas verbales"}

// TopicService lists the topics a student can pick from.
type TopicService struct {
	index SnapshotProvider
}

func NewTopicService(idx SnapshotProvider) *TopicService {
	return &TopicService{index: idx}
}

// List returns the default topics followed by the corpus topics, without
// case-insensitive duplicates.
func (s *TopicService) List() ([]string, error) {
	snap, err := s.index.Snapshot()
	if err != nil {
		return nil, err
	}
	return MergeTopics(DefaultTopics, snap.Topics()), nil
}

// MergeTopics concatenates lists, keeping the first spelling of each topic.
func MergeTopics(lists ...[]string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, list := range lists {
		for _, t := range list {
			t = strings.TrimSpace(t)
			if t == "" {
				continue
			}
			key := strings.ToLower(t)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, t)
		}
	}
	return out
}
