// Package knowledge queries the managed knowledge base and memoizes answers.
// Ranking and retrieval are delegated entirely to the managed service; this
// layer filters by confidence, orders results and caches them.
package knowledge

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockagentruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockagentruntime/types"
	"go.uber.org/zap"

	"github.com/spec-kit/itsm-agent-bridge/internal/cache"
	"github.com/spec-kit/itsm-agent-bridge/internal/config"
	"github.com/spec-kit/itsm-agent-bridge/internal/observability"
	apperrors "github.com/spec-kit/itsm-agent-bridge/pkg/util"
)

// QueryResult is one scored passage from the knowledge base.
type QueryResult struct {
	Content         string  `json:"content"`
	ConfidenceScore float64 `json:"confidenceScore"`
}

// retrieveAPI is the subset of the agent runtime client the retriever needs.
type retrieveAPI interface {
	Retrieve(ctx context.Context, params *bedrockagentruntime.RetrieveInput, optFns ...func(*bedrockagentruntime.Options)) (*bedrockagentruntime.RetrieveOutput, error)
}

// Retriever performs knowledge-base queries with optional memoization.
type Retriever struct {
	client     retrieveAPI
	kbID       string
	maxResults int
	threshold  float64
	timeout    time.Duration
	store      cache.Store
	logger     *zap.Logger
	metrics    *observability.Metrics
}

// NewRetriever constructs the retriever. store may be nil to disable caching;
// tool outputs are identical either way.
func NewRetriever(cfg config.KnowledgeConfig, awsCfg aws.Config, timeout time.Duration, store cache.Store, logger *zap.Logger, metrics *observability.Metrics) *Retriever {
	return &Retriever{
		client:     bedrockagentruntime.NewFromConfig(awsCfg),
		kbID:       cfg.KnowledgeBaseID,
		maxResults: cfg.MaxResults,
		threshold:  cfg.ConfidenceThreshold,
		timeout:    timeout,
		store:      store,
		logger:     logger,
		metrics:    metrics,
	}
}

// Query returns confidence-filtered passages ordered by descending score.
func (r *Retriever) Query(ctx context.Context, query string) ([]QueryResult, error) {
	normalized := strings.ToLower(strings.TrimSpace(query))
	if normalized == "" {
		return nil, apperrors.NewMissingField("query")
	}

	key := CacheKey(normalized, r.maxResults, r.kbID)
	if r.store != nil {
		if cached, ok := r.lookupCache(ctx, key); ok {
			r.metrics.RecordCacheHit()
			return cached, nil
		}
		r.metrics.RecordCacheMiss()
	}

	results, err := r.retrieve(ctx, query)
	if err != nil {
		return nil, err
	}

	if r.store != nil {
		r.storeCache(ctx, key, results)
	}
	return results, nil
}

func (r *Retriever) retrieve(ctx context.Context, query string) ([]QueryResult, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	resp, err := r.client.Retrieve(ctx, &bedrockagentruntime.RetrieveInput{
		KnowledgeBaseId: aws.String(r.kbID),
		RetrievalQuery:  &types.KnowledgeBaseQuery{Text: aws.String(query)},
		RetrievalConfiguration: &types.KnowledgeBaseRetrievalConfiguration{
			VectorSearchConfiguration: &types.KnowledgeBaseVectorSearchConfiguration{
				NumberOfResults:    aws.Int32(int32(r.maxResults)),
				OverrideSearchType: types.SearchTypeHybrid,
			},
		},
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, apperrors.NewTimeout(err)
		}
		return nil, apperrors.NewInternalError(err)
	}

	results := make([]QueryResult, 0, len(resp.RetrievalResults))
	for _, item := range resp.RetrievalResults {
		if item.Content == nil || item.Content.Text == nil || *item.Content.Text == "" {
			continue
		}
		score := 0.0
		if item.Score != nil {
			score = *item.Score
		}
		if score < r.threshold {
			continue
		}
		results = append(results, QueryResult{
			Content:         *item.Content.Text,
			ConfidenceScore: score,
		})
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].ConfidenceScore > results[j].ConfidenceScore
	})

	r.logger.Info("knowledge base queried", zap.Int("results", len(results)))
	return results, nil
}

func (r *Retriever) lookupCache(ctx context.Context, key string) ([]QueryResult, bool) {
	raw, ok, err := r.store.Get(ctx, key)
	if err != nil {
		r.logger.Warn("cache read failed", zap.Error(err))
		return nil, false
	}
	if !ok {
		return nil, false
	}
	var results []QueryResult
	if err := json.Unmarshal(raw, &results); err != nil {
		r.logger.Warn("cache entry corrupt", zap.Error(err))
		return nil, false
	}
	return results, true
}

func (r *Retriever) storeCache(ctx context.Context, key string, results []QueryResult) {
	raw, err := json.Marshal(results)
	if err != nil {
		return
	}
	if err := r.store.Put(ctx, key, raw); err != nil {
		r.logger.Warn("cache write failed", zap.Error(err))
	}
}

// CacheKey builds a stable digest over the normalized query, result count
// limit and knowledge-base id.
func CacheKey(normalizedQuery string, maxResults int, kbID string) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%d|%s", normalizedQuery, maxResults, kbID)))
	return hex.EncodeToString(sum[:])
}
