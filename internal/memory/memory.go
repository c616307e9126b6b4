// Package memory implements the Memory service: creation, versioned
// update, forgetting, and profile assembly. Version-chain invariants
// (is_latest flip, parent/root linkage, relation edges) are this
// package's responsibility — the Store offers only atomic mutation
// primitives.
package memory

import (
	"context"
	"strings"

	"github.com/momo-run/momo/internal/apperr"
	"github.com/momo-run/momo/internal/embeddings"
	"github.com/momo-run/momo/internal/idgen"
	"github.com/momo-run/momo/internal/intelligence"
	"github.com/momo-run/momo/internal/llm"
	"github.com/momo-run/momo/internal/models"
	"github.com/momo-run/momo/internal/profile"
	"github.com/momo-run/momo/internal/store"
	"go.uber.org/zap"
)

type Service struct {
	store        store.Store
	embedder     embeddings.Embedder
	generator    *profile.Generator
	model        llm.LLM
	extractor    *intelligence.Extractor
	contradictor *intelligence.ContradictionDetector
	dedup        *intelligence.Deduplicator
	log          *zap.Logger
}

func NewService(st store.Store, embedder embeddings.Embedder, model llm.LLM, log *zap.Logger) *Service {
	return &Service{
		store:        st,
		embedder:     embedder,
		generator:    profile.NewGenerator(model),
		model:        model,
		extractor:    intelligence.NewExtractor(model),
		contradictor: intelligence.NewContradictionDetector(st, embedder, log),
		dedup:        intelligence.NewDeduplicator(st, embedder, log),
		log:          log,
	}
}

// Get reads a single memory by id.
func (s *Service) Get(ctx context.Context, id string) (*models.Memory, error) {
	return s.store.GetMemory(ctx, id)
}

// Create mints a new root memory, embeds its content with the
// passage prefix, and persists it.
func (s *Service) Create(ctx context.Context, content, containerTagValue string, memType models.MemoryType, metadata models.Metadata) (*models.Memory, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperr.Validation("content must not be empty")
	}

	var containerTag *string
	if containerTagValue != "" {
		containerTag = &containerTagValue
	}

	vec, err := s.embedder.EmbedPassage(ctx, content)
	if err != nil {
		return nil, err
	}

	m := models.NewMemory(idgen.New(), content, "", containerTag, memType)
	if metadata != nil {
		m.Metadata = metadata
	}
	m.Embedding = vec

	if err := s.store.CreateMemory(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// Update resolves the target memory by id (or, if id is nil or empty,
// by exact content match of contentMatch within containerTag), then
// rejects a forgotten target and otherwise runs the
// three-step versioning procedure: flip old to non-latest, mint a
// new latest row linked via parent/root, record the implicit
// `updates` edge.
func (s *Service) Update(ctx context.Context, id *string, contentMatch *string, containerTag string, newContent string, metadata models.Metadata, isStatic *bool) (*models.Memory, error) {
	newContent = strings.TrimSpace(newContent)
	if newContent == "" {
		return nil, apperr.Validation("content must not be empty")
	}

	old, err := s.resolve(ctx, id, contentMatch, containerTag)
	if err != nil {
		return nil, err
	}
	if old.IsForgotten {
		return nil, apperr.Validation("cannot update a forgotten memory")
	}

	old.IsLatest = false
	root := old.RootMemoryID
	if root == "" {
		root = old.ID
	}
	if old.MemoryRelations == nil {
		old.MemoryRelations = map[string]models.MemoryRelationType{}
	}

	vec, err := s.embedder.EmbedPassage(ctx, newContent)
	if err != nil {
		return nil, err
	}

	newID := idgen.New()
	old.MemoryRelations[newID] = models.MemoryRelationUpdates
	old.UpdatedAt = models.Now()

	parentID := old.ID
	next := &models.Memory{
		ID:             newID,
		Content:        newContent,
		SpaceID:        old.SpaceID,
		ContainerTag:   old.ContainerTag,
		MemoryType:     old.MemoryType,
		Version:        old.Version + 1,
		IsLatest:       true,
		ParentMemoryID: &parentID,
		RootMemoryID:   root,
		SourceCount:    old.SourceCount,
		IsInference:    old.IsInference,
		IsStatic:       old.IsStatic,
		Confidence:     old.Confidence,
		Metadata:       old.Metadata,
		Embedding:      vec,
		CreatedAt:      models.Now(),
		UpdatedAt:      models.Now(),
	}
	if metadata != nil {
		next.Metadata = metadata
	}
	if isStatic != nil {
		next.IsStatic = *isStatic
	}

	if err := s.store.UpdateMemory(ctx, old); err != nil {
		return nil, err
	}
	if err := s.store.CreateMemory(ctx, next); err != nil {
		return nil, err
	}
	return next, nil
}

// Forget marks a memory forgotten. Static memories reject the
// request per §4.4 rather than silently no-oping — the Store's
// is_static guard on ForgetMemory is a defense in depth, not the
// source of this validation.
func (s *Service) Forget(ctx context.Context, id *string, contentMatch *string, containerTag string, reason *string) (string, error) {
	m, err := s.resolve(ctx, id, contentMatch, containerTag)
	if err != nil {
		return "", err
	}
	if m.IsStatic {
		return "", apperr.Validation("cannot forget static memory")
	}

	ok, err := s.store.ForgetMemory(ctx, m.ID, reason)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", apperr.NotFound("memory %s not found", m.ID)
	}
	return m.ID, nil
}

func (s *Service) resolve(ctx context.Context, id *string, contentMatch *string, containerTag string) (*models.Memory, error) {
	if id != nil && *id != "" {
		return s.store.GetMemory(ctx, *id)
	}
	if contentMatch != nil && *contentMatch != "" {
		return s.store.GetLatestMemoryByContent(ctx, *contentMatch, containerTag)
	}
	return nil, apperr.Validation("either id or content must be provided")
}

// GetProfile assembles a UserProfile: static facts (pinned facts and
// preferences), optional dynamic facts (episodes, optionally
// filtered by semantic similarity to a query), and an optional
// best-effort narrative. Narrative failure is logged and dropped,
// never surfaced as a request error.
func (s *Service) GetProfile(ctx context.Context, req models.GetProfileRequest) (*models.UserProfile, error) {
	if req.ContainerTag == "" {
		return nil, apperr.Validation("containerTag must not be empty")
	}
	limit := req.Limit
	if limit <= 0 {
		limit = 50
	}

	staticMemories, err := s.store.ListMemoriesByTag(ctx, req.ContainerTag,
		[]models.MemoryType{models.MemoryTypeFact, models.MemoryTypePreference}, true, limit)
	if err != nil {
		return nil, err
	}
	staticFacts := toProfileFacts(staticMemories)

	var dynamicFacts []models.ProfileFact
	if req.IncludeDynamic {
		dynamicFacts, err = s.dynamicFacts(ctx, req, limit)
		if err != nil {
			return nil, err
		}
	}

	profile := &models.UserProfile{
		ContainerTag:  req.ContainerTag,
		StaticFacts:   staticFacts,
		DynamicFacts:  dynamicFacts,
		TotalMemories: len(staticFacts) + len(dynamicFacts),
	}
	if maxUpdated, err := s.store.GetMaxMemoryUpdatedAt(ctx, req.ContainerTag); err == nil {
		profile.LastUpdated = maxUpdated
	}

	if req.GenerateNarrative {
		all := append(append([]models.ProfileFact{}, staticFacts...), dynamicFacts...)
		narrative, err := s.generator.Narrative(ctx, all)
		if err != nil {
			s.log.Warn("profile narrative generation failed", zap.Error(err))
		} else if narrative != "" {
			profile.Narrative = &narrative
		}
	}

	return profile, nil
}

func (s *Service) dynamicFacts(ctx context.Context, req models.GetProfileRequest, limit int) ([]models.ProfileFact, error) {
	if req.Query == nil || strings.TrimSpace(*req.Query) == "" {
		memories, err := s.store.ListMemoriesByTag(ctx, req.ContainerTag, []models.MemoryType{models.MemoryTypeEpisode}, false, limit)
		if err != nil {
			return nil, err
		}
		return toProfileFacts(memories), nil
	}

	threshold := 0.5
	if req.Threshold != nil {
		threshold = *req.Threshold
	}
	vec, err := s.embedder.EmbedQuery(ctx, *req.Query)
	if err != nil {
		return nil, err
	}
	tag := req.ContainerTag
	matches, err := s.store.SearchSimilarMemories(ctx, vec, limit, threshold, &tag, false)
	if err != nil {
		return nil, err
	}
	facts := make([]models.ProfileFact, 0, len(matches))
	for _, m := range matches {
		if m.MemoryType != models.MemoryTypeEpisode {
			continue
		}
		facts = append(facts, models.ProfileFact{
			ID: m.ID, Content: m.Content, MemoryType: m.MemoryType,
			Confidence: m.Confidence, UpdatedAt: m.UpdatedAt,
		})
	}
	return facts, nil
}

// IngestConversation runs extraction, contradiction tagging, dedup
// and persistence over a conversation transcript, in that order —
// dedup's source_count write is persistent, so it must come after
// contradiction tagging has already decided which candidates carry
// the flag.
func (s *Service) IngestConversation(ctx context.Context, messages []models.ConversationMessage, containerTag string) (models.ConversationIngestResponse, error) {
	result := s.extractor.ExtractFromConversation(ctx, messages)
	if len(result.Memories) == 0 {
		return models.ConversationIngestResponse{}, nil
	}

	candidates := s.contradictor.Check(ctx, result.Memories, containerTag)
	survivors := s.dedup.Deduplicate(ctx, candidates, containerTag)

	ids := make([]string, 0, len(survivors))
	for _, c := range survivors {
		memType, ok := models.ParseMemoryType(c.MemoryType)
		if !ok {
			memType = models.MemoryTypeFact
		}
		meta := models.Metadata{}
		if c.PotentialContradiction {
			meta["potentialContradiction"] = true
		}
		if c.Context != nil {
			meta["context"] = *c.Context
		}
		if c.Confidence > 0 {
			meta["confidence"] = c.Confidence
		}

		m, err := s.Create(ctx, c.Content, containerTag, memType, meta)
		if err != nil {
			s.log.Warn("conversation ingest: create failed, skipping candidate", zap.Error(err))
			continue
		}
		ids = append(ids, m.ID)
	}

	return models.ConversationIngestResponse{
		MemoriesExtracted: len(ids),
		MemoryIDs:         ids,
	}, nil
}

func toProfileFacts(memories []models.Memory) []models.ProfileFact {
	out := make([]models.ProfileFact, 0, len(memories))
	for _, m := range memories {
		out = append(out, models.ProfileFact{
			ID: m.ID, Content: m.Content, MemoryType: m.MemoryType,
			Confidence: m.Confidence, UpdatedAt: m.UpdatedAt,
		})
	}
	return out
}
