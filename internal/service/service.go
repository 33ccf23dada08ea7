// SPDX-License-Identifier: MIT
/*
Package service wires the pure haptic components to persistence. It owns no
global state: the store, clock and defaults are injected, and every exported
method takes a context for the store round trip.
*/
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"haptic/internal/analysis"
	"haptic/internal/codec"
	"haptic/internal/haptic"
	applog "haptic/internal/log"
	"haptic/internal/preset"
	"haptic/internal/store"
	"haptic/internal/synth"
)

var log = applog.With("service")

// Service orchestrates analysis storage, pattern generation and embedding.
type Service struct {
	store    store.Store
	synth    *synth.Synthesizer
	defaults haptic.Options
	now      func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the time source used for ids and metadata timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithDefaults sets the processing options used when a caller supplies none.
func WithDefaults(opts haptic.Options) Option {
	return func(s *Service) { s.defaults = opts }
}

// WithSynthesizer replaces the default synthesizer.
func WithSynthesizer(sy *synth.Synthesizer) Option {
	return func(s *Service) { s.synth = sy }
}

// New returns a service backed by st.
func New(st store.Store, opts ...Option) *Service {
	s := &Service{
		store:    st,
		synth:    &synth.Synthesizer{},
		defaults: haptic.DefaultOptions(),
		now:      time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Defaults returns the processing options applied when none are given.
func (s *Service) Defaults() haptic.Options {
	return s.defaults
}

// Record is a stored analysis.
type Record struct {
	ID        string            `json:"id"`
	FileID    string            `json:"fileId,omitempty"`
	Analysis  analysis.Analysis `json:"analysis"`
	CreatedAt int64             `json:"createdAt"` // Unix milliseconds.
}

// NewFileID allocates an id for an uploaded file.
func (s *Service) NewFileID() string {
	return store.NewFileID(s.now())
}

// SaveAnalysis validates and stores a, returning the new record.
func (s *Service) SaveAnalysis(ctx context.Context, fileID string, a analysis.Analysis) (Record, error) {
	if err := a.Validate(); err != nil {
		return Record{}, err
	}
	now := s.now()
	rec := Record{
		ID:        store.NewAnalysisID(now),
		FileID:    fileID,
		Analysis:  a,
		CreatedAt: now.UnixMilli(),
	}
	if err := s.put(ctx, rec.ID, rec); err != nil {
		return Record{}, err
	}
	log.Infof("Stored analysis %s (%d samples)", rec.ID, a.Len())
	return rec, nil
}

// LoadAnalysis returns the stored analysis record with the given id.
func (s *Service) LoadAnalysis(ctx context.Context, id string) (Record, error) {
	var rec Record
	if err := s.get(ctx, id, &rec); err != nil {
		return Record{}, err
	}
	if err := rec.Analysis.Validate(); err != nil {
		return Record{}, fmt.Errorf("stored analysis %s: %w", id, err)
	}
	return rec, nil
}

// Generate synthesizes patterns for a stored analysis and stores them under
// the analysis' patterns key. A non-empty presetID lays that preset's patterns
// alongside the synthesized events, ordered by timestamp. The prompt shapes
// only the synthesized events; preset patterns are kept verbatim.
func (s *Service) Generate(ctx context.Context, analysisID, prompt, presetID string) ([]haptic.Event, error) {
	var layer []haptic.Event
	if presetID != "" {
		p, err := preset.Apply(presetID)
		if err != nil {
			return nil, err
		}
		layer = p
	}

	rec, err := s.LoadAnalysis(ctx, analysisID)
	if err != nil {
		return nil, err
	}
	events := s.synth.Synthesize(rec.Analysis, prompt)
	log.Debugf("Synthesized %d events for %s (prompt rules: %s)", len(events), analysisID, synth.ParsePrompt(prompt))
	if layer != nil {
		events = synth.Merge(events, layer)
		log.Debugf("Merged %d events from preset %s", len(layer), presetID)
	}

	if err := s.SavePatterns(ctx, analysisID, events); err != nil {
		return nil, err
	}
	return events, nil
}

// SavePatterns stores events as the patterns of analysisID.
func (s *Service) SavePatterns(ctx context.Context, analysisID string, events []haptic.Event) error {
	if err := haptic.ValidateEvents(events); err != nil {
		return err
	}
	if events == nil {
		events = []haptic.Event{}
	}
	return s.put(ctx, store.PatternsKey(analysisID), events)
}

// Patterns returns the stored patterns of analysisID.
func (s *Service) Patterns(ctx context.Context, analysisID string) ([]haptic.Event, error) {
	var events []haptic.Event
	if err := s.get(ctx, store.PatternsKey(analysisID), &events); err != nil {
		return nil, err
	}
	return events, nil
}

// UserPatterns concatenates every stored pattern set in key order. Entries
// that fail to decode or validate are skipped with a warning.
func (s *Service) UserPatterns(ctx context.Context) ([]haptic.Event, error) {
	keys, err := s.store.List(ctx, store.PatternsPrefix)
	if err != nil {
		return nil, err
	}

	all := []haptic.Event{}
	for _, key := range keys {
		raw, err := s.store.Get(ctx, key)
		if errors.Is(err, store.ErrNotFound) {
			continue // deleted since List
		}
		if err != nil {
			return nil, err
		}
		var events []haptic.Event
		if err := json.Unmarshal(raw, &events); err != nil {
			log.Warnf("Skipping malformed pattern entry %s: %v", key, err)
			continue
		}
		if err := haptic.ValidateEvents(events); err != nil {
			log.Warnf("Skipping invalid pattern entry %s: %v", key, err)
			continue
		}
		all = append(all, events...)
	}
	return all, nil
}

// Presets returns the preset catalog.
func (s *Service) Presets() []haptic.Preset {
	return preset.List()
}

// Preset returns a single preset.
func (s *Service) Preset(id string) (haptic.Preset, error) {
	return preset.Get(id)
}

// ResolveOptions fills in options for payload. A nil opts starts from the
// service defaults with the container format taken from the payload when it
// can be recognised.
func (s *Service) ResolveOptions(payload []byte, opts *haptic.Options) (haptic.Options, codec.PayloadInfo) {
	info := codec.Probe(payload)
	if opts != nil {
		return *opts, info
	}
	resolved := s.defaults
	if f, ok := info.Format(); ok {
		resolved.ContainerFormat = f
	}
	return resolved, info
}

// BuildBlock assembles the metadata block for patterns carried by payload.
func (s *Service) BuildBlock(payload []byte, patterns []haptic.Event, opts *haptic.Options) (haptic.Block, error) {
	resolved, info := s.ResolveOptions(payload, opts)
	block := codec.NewBlock(patterns, resolved, s.now())
	if err := block.Validate(); err != nil {
		return haptic.Block{}, err
	}
	if span := haptic.Span(patterns); info.Duration > 0 && span > info.Duration {
		log.Warnf("Patterns run %s past the end of the %s video", span-info.Duration, info.Duration)
	}
	return block, nil
}

// Embed appends a metadata block carrying patterns to payload.
func (s *Service) Embed(payload []byte, patterns []haptic.Event, opts *haptic.Options) ([]byte, haptic.Block, error) {
	block, err := s.BuildBlock(payload, patterns, opts)
	if err != nil {
		return nil, haptic.Block{}, err
	}
	out, err := codec.Embed(payload, block)
	if err != nil {
		return nil, haptic.Block{}, err
	}
	return out, block, nil
}

// EmbedFile tags the file at src and writes it to dst (or the default output
// name when dst is empty). Returns the output path.
func (s *Service) EmbedFile(src, dst string, patterns []haptic.Event, opts *haptic.Options) (string, haptic.Block, error) {
	payload, err := os.ReadFile(src)
	if err != nil {
		return "", haptic.Block{}, fmt.Errorf("failed to read payload: %w", err)
	}
	block, err := s.BuildBlock(payload, patterns, opts)
	if err != nil {
		return "", haptic.Block{}, err
	}
	out, err := codec.EmbedFile(src, dst, block)
	if err != nil {
		return "", haptic.Block{}, err
	}
	return out, block, nil
}

// Extract returns the metadata block carried by payload. Absence is reported
// as haptic.ErrNotFound.
func (s *Service) Extract(payload []byte) (*haptic.Block, error) {
	return codec.Extract(payload)
}

func (s *Service) put(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	return s.store.Put(ctx, key, raw)
}

func (s *Service) get(ctx context.Context, key string, v any) error {
	raw, err := s.store.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: stored value %s: %v", haptic.ErrCorruptMetadata, key, err)
	}
	return nil
}
