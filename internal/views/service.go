// Package views is the read-through surface of mailcorpus. Every view goes
// through the cache controller: a hit decodes the stored payload, a miss runs
// the builder against the store and fills the cache before returning.
package views

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/agentic-research/mailcorpus/api"
	"github.com/agentic-research/mailcorpus/internal/cache"
	"github.com/agentic-research/mailcorpus/internal/network"
	"github.com/agentic-research/mailcorpus/internal/store"
	"github.com/agentic-research/mailcorpus/internal/threads"
)

// ErrThreadNotFound reports a thread id with no messages. Not-found results
// are never written to the cache, so a thread that appears after a later
// ingest run is visible immediately.
var ErrThreadNotFound = errors.New("thread not found")

// Options bound the computed views.
type Options struct {
	TTL        time.Duration
	TreeLimit  int // full reply trees are only built up to this thread size
	PageSize   int
	GraphNodes int // default node budget for the global graph
}

// Service computes the derived views.
type Service struct {
	cache  *cache.Controller
	store  *store.Store
	graphs *network.Builder
	pages  *threads.PageBuilder

	opts Options
}

// NewService wires the builders to a store and cache controller.
func NewService(ctrl *cache.Controller, st *store.Store, pages *threads.PageBuilder, opts Options) *Service {
	if opts.TTL <= 0 {
		opts.TTL = 5 * time.Minute
	}
	if opts.TreeLimit <= 0 {
		opts.TreeLimit = 1000
	}
	if opts.PageSize <= 0 {
		opts.PageSize = 50
	}
	if opts.GraphNodes <= 0 {
		opts.GraphNodes = 150
	}
	return &Service{
		cache:  ctrl,
		store:  st,
		graphs: network.NewBuilder(st),
		pages:  pages,
		opts:   opts,
	}
}

var graphCodec = cache.Codec[*api.GraphView]{
	Encode: api.EncodeGraphView,
	Decode: api.DecodeGraphView,
}

var treeCodec = cache.Codec[*api.ThreadTreeView]{
	Encode: api.EncodeThreadTreeView,
	Decode: api.DecodeThreadTreeView,
}

var pageCodec = cache.Codec[*api.MessagePage]{
	Encode: api.EncodeMessagePage,
	Decode: api.DecodeMessagePage,
}

var statsCodec = cache.Codec[*api.CorpusStats]{
	Encode: api.EncodeCorpusStats,
	Decode: api.DecodeCorpusStats,
}

// GlobalGraph returns the corpus-wide social graph. limit <= 0 uses the
// configured node budget.
func (s *Service) GlobalGraph(ctx context.Context, minEmails, limit int) (*api.GraphView, error) {
	if limit <= 0 {
		limit = s.opts.GraphNodes
	}
	return cache.GetOrCompute(ctx, s.cache, api.GraphKey(minEmails, limit), s.opts.TTL, graphCodec,
		func(ctx context.Context) (*api.GraphView, error) {
			return s.graphs.BuildGlobalGraph(ctx, minEmails, limit)
		})
}

// EgoGraph returns one person's communication neighborhood.
func (s *Service) EgoGraph(ctx context.Context, personID int64, depth, minEmails int) (*api.GraphView, error) {
	return cache.GetOrCompute(ctx, s.cache, api.EgoKey(personID, depth, minEmails), s.opts.TTL, graphCodec,
		func(ctx context.Context) (*api.GraphView, error) {
			return s.graphs.BuildEgoGraph(ctx, personID, depth, minEmails)
		})
}

// ThreadTree returns the reply tree for a thread, or a truncation notice when
// the thread exceeds the tree limit.
func (s *Service) ThreadTree(ctx context.Context, threadID int64) (*api.ThreadTreeView, error) {
	return cache.GetOrCompute(ctx, s.cache, api.TreeKey(threadID, s.opts.TreeLimit), s.opts.TTL, treeCodec,
		func(ctx context.Context) (*api.ThreadTreeView, error) {
			msgs, err := s.store.ThreadMessages(ctx, threadID)
			if err != nil {
				return nil, err
			}
			if len(msgs) == 0 {
				return nil, fmt.Errorf("thread %d: %w", threadID, ErrThreadNotFound)
			}
			return threads.BuildTree(msgs, s.opts.TreeLimit), nil
		})
}

// ThreadMessages returns one deduplicated, enriched page of a thread.
// page is 1-based; a page past the end returns an empty message list with
// pagination metadata intact.
func (s *Service) ThreadMessages(ctx context.Context, threadID int64, page int) (*api.MessagePage, error) {
	if page < 1 {
		page = 1
	}
	return cache.GetOrCompute(ctx, s.cache, api.MessagesKey(threadID, page, s.opts.PageSize), s.opts.TTL, pageCodec,
		func(ctx context.Context) (*api.MessagePage, error) {
			msgs, total, err := s.store.DedupedThreadPage(ctx, threadID, page, s.opts.PageSize)
			if err != nil {
				return nil, err
			}
			if total == 0 {
				return nil, fmt.Errorf("thread %d: %w", threadID, ErrThreadNotFound)
			}
			return s.pages.BuildDedupedPage(ctx, msgs, threads.PageRequest{
				Total: total,
				Page:  page,
				Limit: s.opts.PageSize,
			})
		})
}

// Stats returns corpus-wide counts.
func (s *Service) Stats(ctx context.Context) (*api.CorpusStats, error) {
	return cache.GetOrCompute(ctx, s.cache, api.StatsKey(), s.opts.TTL, statsCodec,
		func(ctx context.Context) (*api.CorpusStats, error) {
			return s.store.Stats(ctx)
		})
}
