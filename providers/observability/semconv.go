package observability

// Attribute keys, span names and metric names shared by every component.

// --- Graph ---

const (
	AttrGraphName      = "graph.name"
	AttrGraphRunID     = "graph.run.id"
	AttrGraphNode      = "graph.node"
	AttrGraphStep      = "graph.step"
	AttrGraphNodeCount = "graph.node_count"
	AttrGraphOutcome   = "graph.route.outcome"
	AttrGraphNext      = "graph.route.next"
	AttrGraphVisits    = "graph.node.visits"
	AttrGraphPath      = "graph.path"
	AttrGraphStateKeys = "graph.state.keys"
)

// --- Model client ---

const (
	AttrLLMProvider     = "llm.provider"
	AttrLLMModel        = "llm.model"
	AttrLLMEndpoint     = "llm.endpoint"
	AttrLLMFinishReason = "llm.finish_reason"
	AttrLLMToolCalls    = "llm.tool_calls"

	AttrLLMTokensPrompt     = "llm.tokens.prompt"     // #nosec G101 -- LLM tokens, not credentials
	AttrLLMTokensCompletion = "llm.tokens.completion" // #nosec G101 -- LLM tokens, not credentials
	AttrLLMTokensTotal      = "llm.tokens.total"      // #nosec G101 -- LLM tokens, not credentials

	AttrRequestMessagesCount = "request.messages_count"
	AttrRequestToolsCount    = "request.tools_count"
)

// --- Tools ---

const (
	AttrToolName   = "tool.name"
	AttrToolCallID = "tool.call_id"
	AttrToolInput  = "tool.input"
	AttrToolOutput = "tool.output"
)

// --- HTTP ---

const (
	AttrHTTPMethod     = "http.method"
	AttrHTTPStatusCode = "http.status_code"
	AttrHTTPURL        = "http.url"
)

// --- General ---

const (
	AttrError             = "error"
	AttrDuration          = "duration"
	AttrStatus            = "status"
	AttrStatusDescription = "status_description"
)

// --- Span names ---

const (
	SpanGraphInvoke  = "graph.invoke"
	SpanGraphNode    = "graph.node.execute"
	SpanLLMRequest   = "llm.request"
	SpanToolDispatch = "tool.dispatch"
)

// --- Metric names ---

const (
	MetricGraphNodeCount    = "stategraph.graph.node.count"
	MetricGraphNodeDuration = "stategraph.graph.node.duration"
	MetricGraphRunDuration  = "stategraph.graph.run.duration"
	MetricToolCallCount     = "stategraph.tool.call.count"
	MetricLLMRequestCount   = "stategraph.llm.request.count"
)
