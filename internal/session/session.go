// Package session owns the in-memory campaign state machine: the player
// configuration, the current quest and its coherence verdict, the bounded
// generation history, and the campaign timeline. All mutation goes through
// the transition methods; the other packages stay effect-free or
// effect-isolated.
package session

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"quest-forge/internal/ai"
	"quest-forge/internal/model"
	"quest-forge/internal/prompt"
	"quest-forge/internal/world"
)

// historyCap bounds the generation history; the oldest entry is silently
// evicted.
const historyCap = 10

// levelUpCadence is the number of accepted quests per level-up.
const levelUpCadence = 3

// ModelClient is the transport the session drives. *ai.Client implements it.
type ModelClient interface {
	GenerateQuest(ctx context.Context, req ai.GenerateRequest) (*ai.GenerateResult, error)
	CheckCoherence(ctx context.Context, systemPrompt, userMessage string) (*model.CoherenceReport, error)
}

// Session is the single per-process game session. Safe for concurrent use.
type Session struct {
	mu     sync.Mutex
	log    *zap.Logger
	world  *world.Data
	client ModelClient

	cfg       model.PlayerConfig
	quest     *model.Quest
	meta      *model.CallMeta
	coherence *model.CoherenceReport
	lastError string

	generating bool
	checking   bool

	history  []model.HistoryEntry
	campaign []model.AcceptedQuest

	// seq increments on every transition that invalidates an in-flight
	// coherence check; a check result is applied only if its sequence still
	// matches, so a stale verdict can never overwrite newer state.
	seq uint64
}

// New creates a session with the default player configuration.
func New(w *world.Data, client ModelClient, log *zap.Logger) *Session {
	return &Session{
		log:    log,
		world:  w,
		client: client,
		cfg:    model.DefaultPlayerConfig(),
	}
}

// Snapshot is the read-only view handed to the display layer.
type Snapshot struct {
	Config            model.PlayerConfig     `json:"config"`
	Quest             *model.Quest           `json:"quest"`
	Meta              *model.CallMeta        `json:"meta"`
	Coherence         *model.CoherenceReport `json:"coherence"`
	Error             string                 `json:"error,omitempty"`
	Generating        bool                   `json:"generating"`
	CheckingCoherence bool                   `json:"checking_coherence"`
	History           []model.HistoryEntry   `json:"history"`
	Campaign          []model.AcceptedQuest  `json:"campaign"`
}

// Snapshot returns the current session state. Quest objects are shared but
// never mutated in place, so the copy is safe to serialize concurrently.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	history := make([]model.HistoryEntry, len(s.history))
	copy(history, s.history)
	campaign := make([]model.AcceptedQuest, len(s.campaign))
	copy(campaign, s.campaign)

	return Snapshot{
		Config:            s.cfg.Clone(),
		Quest:             s.quest,
		Meta:              s.meta,
		Coherence:         s.coherence,
		Error:             s.lastError,
		Generating:        s.generating,
		CheckingCoherence: s.checking,
		History:           history,
		Campaign:          campaign,
	}
}

// Generate runs one generation attempt. Only one may be in flight per
// session: a concurrent call gets ErrGenerationInProgress. Transport and
// parse failures are terminal for the attempt and land in the snapshot's
// error field, not in the returned error. On success the coherence check is
// started in the background and never blocks the quest.
func (s *Session) Generate(ctx context.Context) error {
	s.mu.Lock()
	if s.generating {
		s.mu.Unlock()
		return model.ErrGenerationInProgress
	}
	s.generating = true
	s.lastError = ""
	s.coherence = nil
	// Bumping the sequence makes any in-flight coherence check stale, so the
	// loading flag must drop with it; a successful generation raises it again
	// for its own check.
	s.checking = false
	s.seq++
	cfg := s.cfg.Clone()
	completed := prompt.ResolveCompletedQuests(cfg.CompletedQuests, s.campaign)
	s.mu.Unlock()

	classLabel := s.world.ClassLabel(cfg.PlayerClass)
	systemPrompt := prompt.BuildQuestPrompt(s.world, prompt.QuestPromptInput{
		QuestType:         cfg.QuestType,
		ClassLabel:        classLabel,
		PlayerLevel:       cfg.PlayerLevel,
		CompletedQuests:   completed,
		FactionAffinities: cfg.FactionAffinities,
	})
	userMessage := prompt.UserMessage(cfg.QuestType, classLabel, cfg.PlayerLevel)

	result, err := s.client.GenerateQuest(ctx, ai.GenerateRequest{
		Model:        cfg.Model,
		Temperature:  cfg.Temperature,
		SystemPrompt: systemPrompt,
		UserMessage:  userMessage,
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	s.generating = false

	if err != nil {
		s.lastError = err.Error()
		s.quest = nil
		s.meta = nil
		s.log.Warn("Quest generation failed", zap.Error(err))
		return nil
	}
	if result.ParseError != "" {
		s.lastError = "La réponse n'est pas un JSON valide. " + result.ParseError
		s.quest = nil
		s.meta = nil
		return nil
	}

	s.quest = result.Quest
	s.meta = &result.Meta
	s.pushHistoryLocked(result.Quest, &result.Meta)

	s.seq++
	seq := s.seq
	s.checking = true
	go s.runCoherenceCheck(seq, result.Quest, completed)

	s.log.Info("Quest generated",
		zap.String("title", result.Quest.Title),
		zap.String("model", result.Meta.Model),
		zap.Int64("latencyMs", result.Meta.LatencyMS),
	)
	return nil
}

func (s *Session) pushHistoryLocked(q *model.Quest, meta *model.CallMeta) {
	entry := model.HistoryEntry{Quest: q, Meta: meta, Timestamp: time.Now()}
	s.history = append([]model.HistoryEntry{entry}, s.history...)
	if len(s.history) > historyCap {
		s.history = s.history[:historyCap]
	}
}

// runCoherenceCheck is the best-effort advisory pass. Every failure is
// converted into a degraded report; nothing here can invalidate the primary
// quest. A fresh context is used: the check outlives the HTTP request that
// triggered the generation.
func (s *Session) runCoherenceCheck(seq uint64, q *model.Quest, completed []string) {
	systemPrompt := prompt.BuildCoherencePrompt(s.world, completed)
	userMessage := prompt.CoherenceUserMessage(q)

	report, err := s.client.CheckCoherence(context.Background(), systemPrompt, userMessage)
	if err != nil {
		report = model.DegradedCoherenceReport(err.Error(), nil)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seq != seq {
		s.log.Debug("Dropping stale coherence verdict", zap.Uint64("seq", seq))
		return
	}
	s.coherence = report
	s.checking = false
}

// AcceptQuest moves the current quest into the campaign, applies its
// reputation rewards to the faction affinities, and levels the player up
// every third accepted quest. The quest object itself is read, never
// altered.
func (s *Session) AcceptQuest() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.generating {
		return model.ErrGenerationInProgress
	}
	if s.quest == nil {
		return model.ErrNoActiveQuest
	}

	s.campaign = append(s.campaign, model.AcceptedQuest{
		Quest:      *s.quest,
		AcceptedAt: time.Now(),
	})

	if s.quest.Rewards != nil {
		for factionID, delta := range s.quest.Rewards.Reputation {
			s.applyAffinityLocked(factionID, delta)
		}
	}

	if len(s.campaign)%levelUpCadence == 0 && s.cfg.PlayerLevel < model.LevelMax {
		s.cfg.PlayerLevel++
		s.log.Info("Player leveled up", zap.Int("level", s.cfg.PlayerLevel))
	}

	s.quest = nil
	s.meta = nil
	s.coherence = nil
	s.lastError = ""
	s.checking = false
	s.seq++
	return nil
}

// applyAffinityLocked shifts one faction affinity by delta, clamping to the
// affinity bounds and dropping the entry when it lands on neutral.
func (s *Session) applyAffinityLocked(factionID string, delta int) {
	level := model.ClampAffinity(s.cfg.FactionAffinities[factionID] + delta)
	if level == 0 {
		delete(s.cfg.FactionAffinities, factionID)
		return
	}
	s.cfg.FactionAffinities[factionID] = level
}

// ResetCampaign clears the campaign and all per-quest state and restores the
// default player configuration. Allowed from any state. The generation
// history is informational and survives the reset.
func (s *Session) ResetCampaign() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.campaign = nil
	s.quest = nil
	s.meta = nil
	s.coherence = nil
	s.lastError = ""
	s.checking = false
	s.cfg = model.DefaultPlayerConfig()
	s.seq++
	s.log.Info("Campaign reset")
}

// CurrentQuest returns the quest on display, if any.
func (s *Session) CurrentQuest() (*model.Quest, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.quest, s.quest != nil
}

// Campaign returns a copy of the campaign timeline.
func (s *Session) Campaign() []model.AcceptedQuest {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.AcceptedQuest, len(s.campaign))
	copy(out, s.campaign)
	return out
}
