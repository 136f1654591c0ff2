// Package similarity derives weighted links between notes that share
// vocabulary or tags.
package similarity

import (
	"strings"
	"unicode/utf8"

	"github.com/emirpasic/gods/sets/treeset"

	"github.com/starford/notegraph/internal/models"
)

// DefaultMinTokenLength drops short words: only tokens strictly longer than
// this many characters count as shared vocabulary.
const DefaultMinTokenLength = 4

// Options controls how notes are compared.
type Options struct {
	// MinTokenLength is the exclusive lower bound on token length in runes.
	MinTokenLength int
	// TagsOnly ignores content entirely, as if MinTokenLength were unbounded.
	TagsOnly bool
}

// DefaultOptions returns the token+tag rule.
func DefaultOptions() Options {
	return Options{MinTokenLength: DefaultMinTokenLength}
}

// Builder turns a note set into similarity links. It holds no state between
// calls and is safe for concurrent use.
type Builder struct {
	opts Options
}

// NewBuilder creates a Builder with the given options.
func NewBuilder(opts Options) *Builder {
	if opts.MinTokenLength < 0 {
		opts.MinTokenLength = 0
	}
	return &Builder{opts: opts}
}

// Build compares every unordered pair (i, j), i < j, in input order and
// returns one link per pair with a positive weight. Output order follows the
// pair iteration order.
func Build(notes []models.Note) []models.SimilarityLink {
	return NewBuilder(DefaultOptions()).Build(notes)
}

// Build is the configured variant of the package-level Build.
func (b *Builder) Build(notes []models.Note) []models.SimilarityLink {
	vocab := make([]*treeset.Set, len(notes))
	tags := make([]*treeset.Set, len(notes))
	for i, n := range notes {
		vocab[i] = b.tokens(n.Content)
		tags[i] = tagSet(n.Tags)
	}

	links := make([]models.SimilarityLink, 0)
	for i := 0; i < len(notes); i++ {
		for j := i + 1; j < len(notes); j++ {
			sharedTokens := intersect(vocab[i], vocab[j])
			sharedTags := intersect(tags[i], tags[j])
			weight := len(sharedTokens) + len(sharedTags)
			if weight == 0 {
				continue
			}
			links = append(links, models.SimilarityLink{
				SourceID:     notes[i].ID,
				TargetID:     notes[j].ID,
				Weight:       weight,
				SharedTokens: sharedTokens,
				SharedTags:   sharedTags,
			})
		}
	}
	return links
}

// Tokens returns the distinct lower-cased whitespace-separated words of
// content that are long enough to count under opts.
func (b *Builder) Tokens(content string) []string {
	return toStrings(b.tokens(content))
}

func (b *Builder) tokens(content string) *treeset.Set {
	set := treeset.NewWithStringComparator()
	if b.opts.TagsOnly {
		return set
	}
	for _, word := range strings.Fields(strings.ToLower(content)) {
		if utf8.RuneCountInString(word) > b.opts.MinTokenLength {
			set.Add(word)
		}
	}
	return set
}

func tagSet(tags []string) *treeset.Set {
	set := treeset.NewWithStringComparator()
	for _, t := range tags {
		if t != "" {
			set.Add(t)
		}
	}
	return set
}

// intersect walks the smaller set so the result comes out sorted.
func intersect(a, b *treeset.Set) []string {
	if a.Size() > b.Size() {
		a, b = b, a
	}
	var out []string
	it := a.Iterator()
	for it.Next() {
		if b.Contains(it.Value()) {
			out = append(out, it.Value().(string))
		}
	}
	return out
}

func toStrings(set *treeset.Set) []string {
	out := make([]string, 0, set.Size())
	for _, v := range set.Values() {
		out = append(out, v.(string))
	}
	return out
}
