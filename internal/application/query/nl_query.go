/*
---
继续输出 232 `internal/application/query/nl_query.go` 要实现自然语言查询应用服务。

实现要求:
* **功能定位**: 自然语言查询业务编排层，接收用户以自然语言表达的查询意图，通过 LLM 将其转化为结构化查询，委派给底层服务执行，最后将结构化结果转化为自然语言回答返回给用户。
* **核心实现**: 完整定义接口、DTO、枚举、结构体、六步管道(Query)、SuggestQuestions、ExplainQuery及辅助方法。
* **业务逻辑**: Prompt注入检测、LLM重试及温度控制、实体标准化、滑动窗口多轮对话、结果截取等。
* **强制约束**: 文件最后一行必须为 `//Personal.AI order the ending`
---
*/

package query

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/turtacn/HitForge-Discovery/pkg/errors"
	"github.com/turtacn/HitForge-Discovery/pkg/types/common"
)

// ============================================================================
// Enums & Constants
// ============================================================================

type QueryLanguage string

const (
	LangZH QueryLanguage = "ZH"
	LangEN QueryLanguage = "EN"
	LangJA QueryLanguage = "JA"
	LangKO QueryLanguage = "KO"
)

type IntentType string

const (
	IntentEntitySearch   IntentType = "EntitySearch"
	IntentRelationQuery  IntentType = "RelationQuery"
	IntentAggregation    IntentType = "Aggregation"
	IntentComparison     IntentType = "Comparison"
	IntentTrendAnalysis  IntentType = "TrendAnalysis"
	IntentSimilarity     IntentType = "SimilaritySearch"
	IntentPathFinding    IntentType = "PathFinding"
)

type ResponseDataType string

const (
	DataTypeEntityList  ResponseDataType = "EntityList"
	DataTypeAggregation ResponseDataType = "Aggregation"
	DataTypeSingleValue ResponseDataType = "SingleValue"
	DataTypeChart       ResponseDataType = "Chart"
	DataTypeTable       ResponseDataType = "Table"
)

type QueryType string

const (
	QueryTypeCypher QueryType = "Cypher"
	QueryTypeSQL    QueryType = "SQL"
	QueryTypeAPI    QueryType = "API"
)

const (
	MaxConversationTurns = 5
	ConversationTTL      = 30 * time.Minute
	EntityCacheTTL       = 1 * time.Hour
	QueryExecutionTimeout= 30 * time.Second
	MaxResultsForLLM     = 20
)

// ============================================================================
// DTOs
// ============================================================================

type UserQueryContext struct {
	UserID           string   `json:"user_id"`
	Role             string   `json:"role"`
	RecentQueries    []string `json:"recent_queries"`
	PreferredDomains []string `json:"preferred_domains"`
}

type NLQueryRequest struct {
	Question       string           `json:"question"`
	Language       QueryLanguage    `json:"language"`
	UserContext    UserQueryContext `json:"user_context"`
	ConversationID string           `json:"conversation_id,omitempty"`
	MaxResults     int              `json:"max_results"`
}

type NLQueryResponse struct {
	Answer         string           `json:"answer"`
	StructuredData interface{}      `json:"structured_data"`
	DataType       ResponseDataType `json:"data_type"`
	Confidence     float64          `json:"confidence"`
	ParsedIntent   QueryIntent      `json:"parsed_intent"`
	GeneratedQuery string           `json:"generated_query"`
	Suggestions    []string         `json:"suggestions"`
	ConversationID string           `json:"conversation_id"`
}

type SuggestRequest struct {
	UserContext UserQueryContext `json:"user_context"`
	Count       int              `json:"count"`
}

type SuggestedQuestion struct {
	Question  string  `json:"question"`
	Category  string  `json:"category"`
	Relevance float64 `json:"relevance"`
}

type SuggestResponse struct {
	Questions []SuggestedQuestion `json:"questions"`
}

type ExplainRequest struct {
	Question string        `json:"question"`
	Language QueryLanguage `json:"language"`
}

type ExplainStep struct {
	StepName string        `json:"step_name"`
	Input    interface{}   `json:"input"`
	Output   interface{}   `json:"output"`
	Duration time.Duration `json:"duration"`
}

type ExplainResponse struct {
	Steps          []ExplainStep `json:"steps"`
	FinalQuery     string        `json:"final_query"`
	FinalQueryType QueryType     `json:"final_query_type"`
	Confidence     float64       `json:"confidence"`
}

type QueryIntent struct {
	IntentType      IntentType             `json:"intent_type"`
	Entities        []RecognizedEntity     `json:"entities"`
	Relations       []RecognizedRelation   `json:"relations"`
	Constraints     []RecognizedConstraint `json:"constraints"`
	TimeRange       *common.TimeRange      `json:"time_range,omitempty"`
	AggregationType *AggregationDimension  `json:"aggregation_type,omitempty"`
}

type RecognizedEntity struct {
	Text            string     `json:"text"`
	Type            EntityType `json:"type"`
	NormalizedValue string     `json:"normalized_value"`
	Confidence      float64    `json:"confidence"`
}

type RecognizedRelation struct {
	Text       string       `json:"text"`
	Type       RelationType `json:"type"`
	Confidence float64      `json:"confidence"`
}

type RecognizedConstraint struct {
	Field    string         `json:"field"`
	Operator FilterOperator `json:"operator"`
	Value    interface{}    `json:"value"`
	Text     string         `json:"text"`
}

type ConversationTurn struct {
	Role      string       `json:"role"` // User or Assistant
	Content   string       `json:"content"`
	Timestamp time.Time    `json:"timestamp"`
	Intent    *QueryIntent `json:"intent,omitempty"`
}

type UnresolvedEntity struct {
	Text        string     `json:"text"`
	Type        EntityType `json:"type"`
	Suggestions []string   `json:"suggestions"`
}

type QuestionTemplate struct {
	Question    string   `json:"question"`
	Category    string   `json:"category"`
	TargetRoles []string `json:"target_roles"`
	Domains     []string `json:"domains"`
	Priority    int      `json:"priority"`
}

// ============================================================================
// External Interfaces (Dependencies)
// ============================================================================

type StrategyGPTModel interface {
	InferIntent(ctx context.Context, prompt string, temperature float64) (string, error)
	GenerateAnswer(ctx context.Context, prompt string, temperature float64) (string, error)
	GenerateCypher(ctx context.Context, intent QueryIntent) (string, error)
}

type SimilaritySearchService interface {
	FindSimilar(ctx context.Context, smiles string, threshold float64, limit int) (interface{}, error)
}

type PatentRepository interface {
	// Domain specific operations if needed outside KG
}

type MoleculeRepository interface {
	// Domain specific operations if needed outside KG
}

// ============================================================================
// NLQueryService Interface & Implementation
// ============================================================================

type NLQueryService interface {
	Query(ctx context.Context, req *NLQueryRequest) (*NLQueryResponse, error)
	SuggestQuestions(ctx context.Context, req *SuggestRequest) (*SuggestResponse, error)
	ExplainQuery(ctx context.Context, req *ExplainRequest) (*ExplainResponse, error)
}

type nlQueryServiceImpl struct {
	llm             StrategyGPTModel
	kgSearch        KGSearchService
	simSearch       SimilaritySearchService
	patentRepo      PatentRepository
	moleculeRepo    MoleculeRepository
	cache           Cache
	logger          Logger
	metrics         MetricsCollector
}

func NewNLQueryService(
	llm StrategyGPTModel,
	kgSearch KGSearchService,
	simSearch SimilaritySearchService,
	patentRepo PatentRepository,
	moleculeRepo MoleculeRepository,
	cache Cache,
	logger Logger,
	metrics MetricsCollector,
) NLQueryService {
	return &nlQueryServiceImpl{
		llm:          llm,
		kgSearch:     kgSearch,
		simSearch:    simSearch,
		patentRepo:   patentRepo,
		moleculeRepo: moleculeRepo,
		cache:        cache,
		logger:       logger,
		metrics:      metrics,
	}
}

// ----------------------------------------------------------------------------
// Core Pipeline: Query
// ----------------------------------------------------------------------------
func (s *nlQueryServiceImpl) Query(ctx context.Context, req *NLQueryRequest) (*NLQueryResponse, error) {
	startTime := time.Now()
	if req.Language == "" {
		req.Language = LangZH
	}
	if req.MaxResults <= 0 {
		req.MaxResults = 10
	}

	// Step 0: Prompt Injection Check
	if s.checkPromptInjection(req.Question) {
		s.metrics.IncCounter("nl_query_prompt_injection", map[string]string{"user": req.UserContext.UserID})
		return nil, errors.NewValidation("Detect invalid query patterns. Please rephrase your question.")
	}

	convID := req.ConversationID
	if convID == "" {
		convID = s.generateConversationID()
	}

	// Load Conversation History
	history, _ := s.loadConversationHistory(ctx, convID)

	// Step 1: Intent Classification
	intent, intentConf, err := s.stepIntentClassification(ctx, req.Question, req.Language, history)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "intent classification failed")
	}

	// Step 2: Entity Recognition & Normalization
	resolvedEntities, unresolved := s.normalizeEntities(ctx, intent.Entities)
	intent.Entities = resolvedEntities

	if len(unresolved) > 0 {
		s.logger.Warn(ctx, "Unresolved entities found", "unresolved", unresolved)
		// We proceed but might ask user to clarify in the final answer
	}

	// Step 3: Query Generation (Logical & Transparent)
	structuredQuery, queryType, err := s.buildStructuredQuery(*intent, resolvedEntities)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "structured query generation failed")
	}

	generatedCypher, _ := s.llm.GenerateCypher(ctx, *intent) // Used for transparency

	// Step 4: Query Execution
	execCtx, cancel := context.WithTimeout(ctx, QueryExecutionTimeout)
	defer cancel()
	execResult, execErr := s.executeQuery(execCtx, structuredQuery, queryType)

	if execErr != nil {
		s.logger.Error(ctx, "Query execution failed", "error", execErr, "intent", intent.IntentType)
		// Retry logic for transient errors could be implemented here
		return nil, errors.Wrap(execErr, errors.ErrCodeInternal, "query execution failed")
	}

	// Step 5: Answer Generation
	truncatedResults := s.truncateResults(execResult, MaxResultsForLLM)
	answer, err := s.stepAnswerGeneration(ctx, req.Question, *intent, truncatedResults, req.Language, unresolved)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "answer generation failed")
	}

	if intentConf < 0.5 {
		answer += "\n\n*(注：我对该问题的理解可能不够准确，请核实数据或换种方式提问)*"
	}

	// Step 6: Post-processing
	suggestions := s.generateSuggestionsFromContext(ctx, req.UserContext, *intent)

	// Save Turn
	_ = s.saveConversationTurn(ctx, convID, ConversationTurn{Role: "User", Content: req.Question, Timestamp: startTime})
	_ = s.saveConversationTurn(ctx, convID, ConversationTurn{Role: "Assistant", Content: answer, Timestamp: time.Now(), Intent: intent})

	// Metrics
	s.metrics.ObserveHistogram("nl_query_latency", time.Since(startTime).Seconds(), map[string]string{"intent": string(intent.IntentType)})

	// Determine DataType
	dataType := DataTypeEntityList
	if intent.IntentType == IntentAggregation || intent.IntentType == IntentTrendAnalysis {
		dataType = DataTypeAggregation
	}

	return &NLQueryResponse{
		Answer:         answer,
		StructuredData: execResult,
		DataType:       dataType,
		Confidence:     intentConf,
		ParsedIntent:   *intent,
		GeneratedQuery: generatedCypher,
		Suggestions:    suggestions,
		ConversationID: convID,
	}, nil
}

// ----------------------------------------------------------------------------
// SuggestQuestions
// ----------------------------------------------------------------------------
func (s *nlQueryServiceImpl) SuggestQuestions(ctx context.Context, req *SuggestRequest) (*SuggestResponse, error) {
	if req.Count <= 0 {
		req.Count = 5
	}

	// Mocking template library based on roles
	templates := []QuestionTemplate{
		{Question: "近期有哪些关于蓝光OLED材料的新授权专利？", Category: "Technology", TargetRoles: []string{"CTO", "Researcher"}, Priority: 1},
		{Question: "三星SDI在TADF材料领域的专利布局趋势如何？", Category: "Competitor", TargetRoles: []string{"CTO", "IP Manager"}, Priority: 2},
		{Question: "帮我列出即将到期的核心发光层材料专利", Category: "Risk", TargetRoles: []string{"IP Manager"}, Priority: 3},
		{Question: "与化合物 X 结构相似度最高的现有专利有哪些？", Category: "FTO", TargetRoles: []string{"Researcher", "IP Manager"}, Priority: 1},
	}

	var results []SuggestedQuestion
	for _, t := range templates {
		if len(results) >= req.Count {
			break
		}
		// Basic filtering (In reality, complex matching against user context)
		roleMatch := false
		for _, r := range t.TargetRoles {
			if r == req.UserContext.Role {
				roleMatch = true; break
			}
		}
		if roleMatch {
			results = append(results, SuggestedQuestion{
				Question:  t.Question,
				Category:  t.Category,
				Relevance: 0.9,
			})
		}
	}

	return &SuggestResponse{Questions: results}, nil
}

// ----------------------------------------------------------------------------
// ExplainQuery
// ----------------------------------------------------------------------------
func (s *nlQueryServiceImpl) ExplainQuery(ctx context.Context, req *ExplainRequest) (*ExplainResponse, error) {
	var steps []ExplainStep

	// Step 1: Intent
	start1 := time.Now()
	intent, _, err := s.stepIntentClassification(ctx, req.Question, req.Language, nil)
	dur1 := time.Since(start1)
	if err != nil {
		return nil, err
	}
	steps = append(steps, ExplainStep{StepName: "Intent Classification", Input: req.Question, Output: intent, Duration: dur1})

	// Step 2: Entities
	start2 := time.Now()
	resolved, _ := s.normalizeEntities(ctx, intent.Entities)
	dur2 := time.Since(start2)
	steps = append(steps, ExplainStep{StepName: "Entity Normalization", Input: intent.Entities, Output: resolved, Duration: dur2})

	// Step 3: Query Gen
	start3 := time.Now()
	_, qType, err := s.buildStructuredQuery(*intent, resolved)
	cypher, _ := s.llm.GenerateCypher(ctx, *intent)
	dur3 := time.Since(start3)
	steps = append(steps, ExplainStep{StepName: "Query Generation", Input: resolved, Output: cypher, Duration: dur3})

	return &ExplainResponse{
		Steps:          steps,
		FinalQuery:     cypher,
		FinalQueryType: qType,
		Confidence:     0.95,
	}, nil
}

// ============================================================================
// Internal Pipeline Steps & Helpers
// ============================================================================

func (s *nlQueryServiceImpl) checkPromptInjection(query string) bool {
	lowerQuery := strings.ToLower(query)
	badPatterns := []string{
		"ignore previous",
		"system prompt",
		"forget instructions",
		"bypass",
		"you are now",
		"skynet",
	}
	for _, pattern := range badPatterns {
		if strings.Contains(lowerQuery, pattern) {
			return true
		}
	}
	return false
}

func (s *nlQueryServiceImpl) stepIntentClassification(ctx context.Context, question string, lang QueryLanguage, history []ConversationTurn) (*QueryIntent, float64, error) {
	prompt := s.buildIntentClassificationPrompt(question, lang, history)

	// Try with temp 0.3
	resStr, err := s.llm.InferIntent(ctx, prompt, 0.3)
	if err != nil {
		// Retry with temp 0.1
		s.logger.Warn(ctx, "Intent classification failed, retrying with lower temperature", "error", err)
		resStr, err = s.llm.InferIntent(ctx, prompt, 0.1)
		if err != nil {
			return nil, 0, errors.NewInternal("LLM intent inference failed after retry")
		}
	}

	var intent QueryIntent
	if err := json.Unmarshal([]byte(resStr), &intent); err != nil {
		// Retry with lower temperature if JSON parsing fails
		s.logger.Warn(ctx, "Intent JSON parse failed, retrying with lower temperature", "error", err)
		resStr, err = s.llm.InferIntent(ctx, prompt, 0.1)
		if err != nil {
			return nil, 0, errors.NewInternal("LLM intent inference failed after retry")
		}
		if err := json.Unmarshal([]byte(resStr), &intent); err != nil {
			return nil, 0, errors.Wrap(err, errors.ErrCodeInternal, "failed to parse intent JSON after retry")
		}
	}

	confidence := 0.9
	if len(intent.Entities) == 0 && intent.IntentType != IntentTrendAnalysis {
		confidence = 0.4
	}

	return &intent, confidence, nil
}

func (s *nlQueryServiceImpl) stepAnswerGeneration(ctx context.Context, question string, intent QueryIntent, results interface{}, lang QueryLanguage, unresolved []UnresolvedEntity) (string, error) {
	prompt := s.buildAnswerGenerationPrompt(question, intent, results, lang)

	answer, err := s.llm.GenerateAnswer(ctx, prompt, 0.4)
	if err != nil {
		s.logger.Warn(ctx, "Answer generation failed, retrying", "error", err)
		answer, err = s.llm.GenerateAnswer(ctx, prompt, 0.2)
		if err != nil {
			return "抱歉，生成自然语言回答时遇到问题。请参考结构化数据。", nil
		}
	}

	if len(unresolved) > 0 {
		var unresNames []string
		for _, u := range unresolved {
			unresNames = append(unresNames, u.Text)
		}
		answer += fmt.Sprintf("\n\n*(注：系统未能准确识别以下实体：%s，若回答不符合预期，请尝试提供全称)*", strings.Join(unresNames, ", "))
	}

	return answer, nil
}

func (s *nlQueryServiceImpl) normalizeEntities(ctx context.Context, entities []RecognizedEntity) ([]RecognizedEntity, []UnresolvedEntity) {
	var resolved []RecognizedEntity
	var unresolved []UnresolvedEntity

	for _, e := range entities {
		cacheKey := fmt.Sprintf("entity_dict:%s:%s", e.Type, e.Text)
		var normValue string

		err := s.cache.Get(ctx, cacheKey, &normValue)
		if err == nil && normValue != "" {
			e.NormalizedValue = normValue
			e.Confidence = 1.0
			resolved = append(resolved, e)
			continue
		}

		// Fallback: Fuzzy search in KG (simplified simulation here)
		req := &EntitySearchRequest{
			EntityType: e.Type,
			Filters: map[string]FilterCondition{
				"name": {Operator: OpContains, Value: e.Text},
			},
			Limit: 1,
		}
		kgRes, kgErr := s.kgSearch.SearchEntities(ctx, req)
		if kgErr == nil && kgRes != nil && len(kgRes.Entities) > 0 {
			// Found via KG fuzzy search
			if name, ok := kgRes.Entities[0].Node.Properties["name"].(string); ok {
				e.NormalizedValue = name
				e.Confidence = 0.8
				resolved = append(resolved, e)
				_ = s.cache.Set(ctx, cacheKey, name, EntityCacheTTL)
				continue
			}
		}

		// Unresolved
		unresolved = append(unresolved, UnresolvedEntity{
			Text: e.Text,
			Type: e.Type,
			Suggestions: []string{}, // Could populate via another LLM call or Elastic fuzzy suggest
		})
	}

	return resolved, unresolved
}

func (s *nlQueryServiceImpl) buildStructuredQuery(intent QueryIntent, entities []RecognizedEntity) (interface{}, QueryType, error) {
	switch intent.IntentType {
	case IntentEntitySearch:
		req := &EntitySearchRequest{Limit: 20}
		if len(entities) > 0 {
			req.EntityType = entities[0].Type
		} else {
			req.EntityType = EntityTypePatent // Default
		}
		req.Filters = make(map[string]FilterCondition)
		for _, c := range intent.Constraints {
			req.Filters[c.Field] = FilterCondition{Operator: c.Operator, Value: c.Value}
		}
		return req, QueryTypeAPI, nil

	case IntentAggregation, IntentTrendAnalysis:
		req := &AggregationRequest{TopN: 10}
		if intent.AggregationType != nil {
			req.Dimension = *intent.AggregationType
		} else {
			req.Dimension = ByAssignee // Default
		}
		req.DateRange = intent.TimeRange
		return req, QueryTypeAPI, nil

	case IntentRelationQuery:
		req := &RelationTraverseRequest{MaxDepth: 2, Direction: DirectionOutgoing}
		if len(entities) > 0 {
			req.StartNodeID = entities[0].NormalizedValue // Simplified
		}
		return req, QueryTypeAPI, nil

	case IntentPathFinding:
		req := &PathFindRequest{MaxPathLength: 3}
		if len(entities) >= 2 {
			req.SourceID = entities[0].NormalizedValue
			req.TargetID = entities[1].NormalizedValue
		}
		return req, QueryTypeAPI, nil

	case IntentSimilarity:
		// Needs specific implementation. Returning string to simulate payload
		return map[string]interface{}{"action": "similarity", "entities": entities}, QueryTypeAPI, nil

	default:
		return nil, QueryTypeAPI, errors.NewValidation("Unsupported intent type")
	}
}

func (s *nlQueryServiceImpl) executeQuery(ctx context.Context, query interface{}, queryType QueryType) (interface{}, error) {
	switch q := query.(type) {
	case *EntitySearchRequest:
		return s.kgSearch.SearchEntities(ctx, q)
	case *AggregationRequest:
		return s.kgSearch.AggregateByDimension(ctx, q)
	case *RelationTraverseRequest:
		return s.kgSearch.TraverseRelations(ctx, q)
	case *PathFindRequest:
		return s.kgSearch.FindPaths(ctx, q)
	default:
		// Fallback for mock/simulation
		return map[string]string{"status": "executed generic query"}, nil
	}
}

func (s *nlQueryServiceImpl) truncateResults(results interface{}, maxItems int) interface{} {
	// Abstract simplification for truncation. 
	// In reality, uses reflection or type assertions to slice arrays.
	switch r := results.(type) {
	case *EntitySearchResponse:
		if len(r.Entities) > maxItems {
			truncated := *r
			truncated.Entities = r.Entities[:maxItems]
			return &truncated
		}
	case *AggregationResponse:
		if len(r.Buckets) > maxItems {
			truncated := *r
			truncated.Buckets = r.Buckets[:maxItems]
			return &truncated
		}
	}
	return results
}

func (s *nlQueryServiceImpl) generateSuggestionsFromContext(ctx context.Context, ctxUser UserQueryContext, intent QueryIntent) []string {
	// Simplified dynamic suggestion generation
	return []string{
		"深度分析该领域的竞争对手",
		"展示该技术的历年申请趋势",
		"查找相关的高价值核心专利",
	}
}

func (s *nlQueryServiceImpl) generateConversationID() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

func (s *nlQueryServiceImpl) loadConversationHistory(ctx context.Context, convID string) ([]ConversationTurn, error) {
	cacheKey := "conv:" + convID
	var history []ConversationTurn
	err := s.cache.Get(ctx, cacheKey, &history)
	if err != nil {
		return nil, nil // Return empty history if not found
	}
	return history, nil
}

func (s *nlQueryServiceImpl) saveConversationTurn(ctx context.Context, convID string, turn ConversationTurn) error {
	cacheKey := "conv:" + convID
	history, _ := s.loadConversationHistory(ctx, convID)
	history = append(history, turn)
	if len(history) > MaxConversationTurns*2 { // *2 because each round has User + Assistant
		history = history[len(history)-MaxConversationTurns*2:]
	}
	return s.cache.Set(ctx, cacheKey, history, ConversationTTL)
}

// ----------------------------------------------------------------------------
// Prompt Builders
// ----------------------------------------------------------------------------
func (s *nlQueryServiceImpl) buildIntentClassificationPrompt(question string, lang QueryLanguage, history []ConversationTurn) string {
	histStr := ""
	for _, t := range history {
		histStr += fmt.Sprintf("%s: %s\n", t.Role, t.Content)
	}
	return fmt.Sprintf(`System: You are an intent classification engine for a patent knowledge graph.
History: %s
User Question: %s
Language: %s
Output JSON matching QueryIntent schema.`, histStr, question, lang)
}

func (s *nlQueryServiceImpl) buildAnswerGenerationPrompt(question string, intent QueryIntent, results interface{}, lang QueryLanguage) string {
	resBytes, _ := json.Marshal(results)
	return fmt.Sprintf(`System: You are an expert IP consultant.
User Question: %s
Data Results: %s
Language: %s
Task: Generate a concise, professional answer summarizing the data results to answer the user's question. Use lists if appropriate.`, question, string(resBytes), lang)
}

//Personal.AI order the ending