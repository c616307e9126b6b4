package intelligence

import (
	"context"
	"strings"

	"github.com/momo-run/momo/internal/embeddings"
	"github.com/momo-run/momo/internal/models"
	"github.com/momo-run/momo/internal/store"
	"go.uber.org/zap"
)

var negationTokens = []string{
	"not", "no", "doesn't", "does not", "didn't", "did not",
	"won't", "will not", "isn't", "is not", "wasn't", "was not",
	"can't", "cannot", "disabled", "inactive", "unavailable",
}

var antonymPairs = [][2]string{
	{"loves", "hates"},
	{"love", "hate"},
	{"hot", "cold"},
	{"happy", "sad"},
	{"light", "dark"},
	{"enabled", "disabled"},
	{"likes", "dislikes"},
	{"like", "dislike"},
	{"awake", "asleep"},
	{"fast", "slow"},
}

// ContradictionDetector flags candidates whose content plausibly
// contradicts an existing nearby memory, without ever blocking
// creation — detection only tags, the caller decides what to do.
type ContradictionDetector struct {
	store    store.Store
	embedder embeddings.Embedder
	log      *zap.Logger
}

func NewContradictionDetector(st store.Store, embedder embeddings.Embedder, log *zap.Logger) *ContradictionDetector {
	return &ContradictionDetector{store: st, embedder: embedder, log: log}
}

// Check runs the heuristic contradiction pass over candidates in
// place, setting PotentialContradiction on any candidate that
// plausibly conflicts with an existing memory in containerTag.
// Per-candidate embedding or search failures are logged and skipped
// rather than aborting the batch.
func (d *ContradictionDetector) Check(ctx context.Context, candidates []models.ExtractedMemoryCandidate, containerTag string) []models.ExtractedMemoryCandidate {
	for i := range candidates {
		vec, err := d.embedder.EmbedPassage(ctx, candidates[i].Content)
		if err != nil {
			d.log.Warn("contradiction check: embed failed, skipping candidate", zap.Error(err))
			continue
		}
		tag := containerTag
		hits, err := d.store.SearchSimilarMemories(ctx, vec, 5, 0.6, &tag, false)
		if err != nil {
			d.log.Warn("contradiction check: search failed, skipping candidate", zap.Error(err))
			continue
		}
		for _, hit := range hits {
			if likelyContradiction(candidates[i].Content, hit.Content) {
				candidates[i].PotentialContradiction = true
				break
			}
		}
	}
	return candidates
}

func likelyContradiction(a, b string) bool {
	aTokens := tokenize(a)
	bTokens := tokenize(b)

	aNeg := containsNegation(aTokens)
	bNeg := containsNegation(bTokens)
	if aNeg != bNeg && wordOverlap(aTokens, bTokens) >= 0.5 {
		return true
	}

	for _, pair := range antonymPairs {
		aHas := containsToken(aTokens, pair[0]) || containsToken(aTokens, pair[1])
		if !aHas {
			continue
		}
		if (containsToken(aTokens, pair[0]) && containsToken(bTokens, pair[1])) ||
			(containsToken(aTokens, pair[1]) && containsToken(bTokens, pair[0])) {
			return true
		}
	}
	return false
}

func tokenize(s string) []string {
	s = strings.ToLower(s)
	return strings.FieldsFunc(s, func(r rune) bool {
		return !(r >= 'a' && r <= 'z') && !(r >= '0' && r <= '9')
	})
}

func containsNegation(tokens []string) bool {
	for _, neg := range negationTokens {
		negTokens := tokenize(neg)
		if containsSubsequence(tokens, negTokens) {
			return true
		}
	}
	return false
}

func containsSubsequence(tokens, sub []string) bool {
	if len(sub) == 0 || len(sub) > len(tokens) {
		return false
	}
	for i := 0; i+len(sub) <= len(tokens); i++ {
		match := true
		for j, t := range sub {
			if tokens[i+j] != t {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

func containsToken(tokens []string, want string) bool {
	for _, t := range tokens {
		if t == want {
			return true
		}
	}
	return false
}

func wordOverlap(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	set := map[string]bool{}
	for _, t := range a {
		set[t] = true
	}
	common := 0
	for _, t := range b {
		if set[t] {
			common++
		}
	}
	denom := len(a)
	if len(b) > denom {
		denom = len(b)
	}
	return float64(common) / float64(denom)
}
