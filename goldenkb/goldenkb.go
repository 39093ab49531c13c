package goldenkb

import (
	"fmt"
	"os"
	"strings"

	"github.com/agnivade/levenshtein"
	"gopkg.in/yaml.v3"

	"github.com/loansight/loansight/common/logger"
	"github.com/loansight/loansight/schema"
)

// DefaultThreshold is the minimum confidence for a match to be surfaced.
// Below it the entry is discarded entirely, never returned with low
// confidence.
const DefaultThreshold = 0.65

// substringBoost is the floor applied when one string contains the other;
// paraphrases of a curated question should clear the threshold even when
// edit distance alone would not.
const substringBoost = 0.8

// KB holds the curated question/answer set. Immutable after construction.
type KB struct {
	entries []schema.KnowledgeEntry
}

type kbFile struct {
	Entries []schema.KnowledgeEntry `json:"entries" yaml:"entries"`
}

// Load reads the curated set from a YAML (or JSON, which YAML subsumes)
// file. An unreadable or malformed source yields an empty KB so every query
// falls through to the pipeline; it is not an error.
func Load(path string) *KB {
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Warnf("goldenkb: cannot read %s: %v (continuing with empty set)", path, err)
		return &KB{}
	}
	var f kbFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		logger.Warnf("goldenkb: cannot parse %s: %v (continuing with empty set)", path, err)
		return &KB{}
	}
	logger.Infof("goldenkb: loaded %d curated entries", len(f.Entries))
	return &KB{entries: f.Entries}
}

// New builds a KB directly from entries; used by tests and embedded sets.
func New(entries []schema.KnowledgeEntry) *KB {
	return &KB{entries: entries}
}

// Len returns the number of curated entries.
func (kb *KB) Len() int { return len(kb.entries) }

// Similarity is a case-insensitive normalized edit-distance ratio in [0,1].
func Similarity(a, b string) float64 {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == "" && b == "" {
		return 1
	}
	maxLen := len([]rune(a))
	if l := len([]rune(b)); l > maxLen {
		maxLen = l
	}
	if maxLen == 0 {
		return 0
	}
	dist := levenshtein.ComputeDistance(a, b)
	return 1 - float64(dist)/float64(maxLen)
}

// FindBestMatch scans every question variant of every entry and returns the
// single best-scoring entry when its score meets threshold, else nil. When
// either string contains the other (case-insensitive) the variant's score is
// raised to at least the substring boost. Ties keep the first entry
// encountered, so results are stable for a fixed entry order.
func (kb *KB) FindBestMatch(query string, threshold float64) *schema.MatchResult {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	queryLower := strings.ToLower(strings.TrimSpace(query))

	var best *schema.KnowledgeEntry
	bestScore := 0.0
	for i := range kb.entries {
		entry := &kb.entries[i]
		for _, question := range entry.Questions {
			score := Similarity(queryLower, question)
			qLower := strings.ToLower(question)
			if strings.Contains(queryLower, qLower) || strings.Contains(qLower, queryLower) {
				if score < substringBoost {
					score = substringBoost
				}
			}
			if score > bestScore {
				bestScore = score
				best = entry
			}
		}
	}

	if best == nil || bestScore < threshold {
		logger.Debugf("goldenkb: no match for %q (best %.2f)", query, bestScore)
		return nil
	}
	logger.Infof("goldenkb: matched entry %s with score %.2f", best.ID, bestScore)
	return &schema.MatchResult{Entry: best, Confidence: bestScore}
}

// Answer returns the curated answer for query at the default threshold, or
// "" when nothing matches.
func (kb *KB) Answer(query string) (string, bool) {
	m := kb.FindBestMatch(query, DefaultThreshold)
	if m == nil {
		return "", false
	}
	return m.Entry.Answer, true
}

// String implements fmt.Stringer for debug logging.
func (kb *KB) String() string {
	return fmt.Sprintf("goldenkb.KB(%d entries)", len(kb.entries))
}
