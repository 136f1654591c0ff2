package similarity

import (
	"reflect"
	"testing"

	"github.com/starford/notegraph/internal/models"
)

func note(id, content string, tags ...string) models.Note {
	return models.Note{ID: id, Content: content, Tags: tags}
}

func TestBuild_SharedTokenAndTag(t *testing.T) {
	a := note("A", "hiking trail water", "outdoors")
	b := note("B", "water supply valve", "plumbing")

	links := Build([]models.Note{a, b})
	if len(links) != 1 {
		t.Fatalf("len(links) = %d, want 1", len(links))
	}
	l := links[0]
	if l.SourceID != "A" || l.TargetID != "B" || l.Weight != 1 {
		t.Errorf("link = %+v, want A-B weight 1", l)
	}
	if !reflect.DeepEqual(l.SharedTokens, []string{"water"}) {
		t.Errorf("shared tokens = %v", l.SharedTokens)
	}

	c := note("C", "unrelated", "outdoors")
	links = Build([]models.Note{a, b, c})
	if len(links) != 2 {
		t.Fatalf("len(links) = %d, want 2", len(links))
	}
	if links[1].SourceID != "A" || links[1].TargetID != "C" || links[1].Weight != 1 {
		t.Errorf("second link = %+v, want A-C weight 1", links[1])
	}
	if !reflect.DeepEqual(links[1].SharedTags, []string{"outdoors"}) {
		t.Errorf("shared tags = %v", links[1].SharedTags)
	}
	for _, l := range links {
		if l.Touches("B") && l.Touches("C") {
			t.Errorf("unexpected B-C link %+v", l)
		}
	}
}

func TestBuild_ShortWordsIgnored(t *testing.T) {
	links := Build([]models.Note{
		note("1", "the cat sat on mat"),
		note("2", "the cat ran off"),
	})
	if len(links) != 0 {
		t.Errorf("short words produced links: %+v", links)
	}
}

func TestBuild_CaseInsensitiveAndDeduplicated(t *testing.T) {
	links := Build([]models.Note{
		note("1", "Water WATER water river"),
		note("2", "clean water\tflows to the RIVER"),
	})
	if len(links) != 1 {
		t.Fatalf("len(links) = %d, want 1", len(links))
	}
	if links[0].Weight != 2 {
		t.Errorf("weight = %d, want 2", links[0].Weight)
	}
	if !reflect.DeepEqual(links[0].SharedTokens, []string{"river", "water"}) {
		t.Errorf("shared tokens = %v, want sorted [river water]", links[0].SharedTokens)
	}
}

func TestBuild_WeightCountsTokensAndTags(t *testing.T) {
	links := Build([]models.Note{
		note("1", "garden tomato", "food", "summer", "food"),
		note("2", "tomato garden", "summer", "food"),
	})
	if len(links) != 1 {
		t.Fatalf("len(links) = %d, want 1", len(links))
	}
	l := links[0]
	if l.Weight != len(l.SharedTokens)+len(l.SharedTags) {
		t.Errorf("weight %d != tokens %d + tags %d", l.Weight, len(l.SharedTokens), len(l.SharedTags))
	}
	if l.Weight != 4 {
		t.Errorf("weight = %d, want 4", l.Weight)
	}
}

func TestBuild_TagsOnly(t *testing.T) {
	b := NewBuilder(Options{TagsOnly: true})
	links := b.Build([]models.Note{
		note("1", "shared vocabulary here", "x"),
		note("2", "shared vocabulary there", "y"),
		note("3", "nothing", "x"),
	})
	if len(links) != 1 {
		t.Fatalf("len(links) = %d, want 1", len(links))
	}
	if links[0].SourceID != "1" || links[0].TargetID != "3" {
		t.Errorf("link = %+v, want 1-3", links[0])
	}
	if len(links[0].SharedTokens) != 0 {
		t.Errorf("tags-only produced tokens %v", links[0].SharedTokens)
	}
}

func TestBuild_EmptyAndIsolated(t *testing.T) {
	if links := Build(nil); len(links) != 0 {
		t.Errorf("nil notes produced %d links", len(links))
	}
	links := Build([]models.Note{
		note("1", ""),
		note("2", "standalone thought"),
	})
	if len(links) != 0 {
		t.Errorf("isolated notes produced links: %+v", links)
	}
}

func TestBuild_PairOrder(t *testing.T) {
	links := Build([]models.Note{
		note("a", "", "t"),
		note("b", "", "t"),
		note("c", "", "t"),
	})
	want := [][2]string{{"a", "b"}, {"a", "c"}, {"b", "c"}}
	if len(links) != len(want) {
		t.Fatalf("len(links) = %d, want %d", len(links), len(want))
	}
	for i, w := range want {
		if links[i].SourceID != w[0] || links[i].TargetID != w[1] {
			t.Errorf("links[%d] = %s-%s, want %s-%s", i, links[i].SourceID, links[i].TargetID, w[0], w[1])
		}
	}
}

func TestTokens(t *testing.T) {
	b := NewBuilder(Options{MinTokenLength: 2})
	got := b.Tokens("Go is  FUN fun ok")
	want := []string{"fun"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tokens = %v, want %v", got, want)
	}
}
