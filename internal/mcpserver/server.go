package mcpserver

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"
	"github.com/snappy-loop/veritas/internal/agents"
)

const protocolVersion = "2024-11-05"

// JSON-RPC 2.0 request
type jsonRPCRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params"`
}

// JSON-RPC 2.0 response
type jsonRPCResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *rpcError   `json:"error,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// MCP initialize result
type initializeResult struct {
	ProtocolVersion string                 `json:"protocolVersion"`
	Capabilities    map[string]interface{} `json:"capabilities"`
	ServerInfo      serverInfo             `json:"serverInfo"`
}

type serverInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// MCP tools/list result
type toolsListResult struct {
	Tools      []mcpTool `json:"tools"`
	NextCursor *string   `json:"nextCursor,omitempty"`
}

type mcpTool struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	InputSchema inputSchema `json:"inputSchema"`
}

type inputSchema struct {
	Type       string                `json:"type"`
	Properties map[string]schemaProp `json:"properties"`
	Required   []string              `json:"required,omitempty"`
}

type schemaProp struct {
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
}

// MCP tools/call result
type toolsCallResult struct {
	Content []contentItem `json:"content"`
	IsError bool          `json:"isError"`
}

type contentItem struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// Server implements MCP JSON-RPC 2.0 over HTTP (initialize, tools/list and tools/call).
// Tools whose agent is nil are not listed.
type Server struct {
	version     string
	factCheck   agents.FactCheckAgent
	summary     agents.SummaryAgent
	imageDetect agents.ImageDetectAgent
}

// NewServer returns a new MCP server that uses the given agents.
func NewServer(version string, factCheck agents.FactCheckAgent, summary agents.SummaryAgent, imageDetect agents.ImageDetectAgent) *Server {
	return &Server{
		version:     version,
		factCheck:   factCheck,
		summary:     summary,
		imageDetect: imageDetect,
	}
}

// Handler returns the HTTP handler for JSON-RPC requests.
func (s *Server) Handler() http.Handler {
	return http.HandlerFunc(s.serveJSONRPC)
}

func (s *Server) serveJSONRPC(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req jsonRPCRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeRPCError(w, req.ID, -32700, "Parse error")
		return
	}
	if req.JSONRPC != "2.0" {
		writeRPCError(w, req.ID, -32600, "Invalid Request")
		return
	}

	var result interface{}
	var rpcErr *rpcError
	switch req.Method {
	case "initialize":
		result = &initializeResult{
			ProtocolVersion: protocolVersion,
			Capabilities:    map[string]interface{}{"tools": map[string]interface{}{}},
			ServerInfo:      serverInfo{Name: "veritas", Version: s.version},
		}
	case "notifications/initialized":
		w.WriteHeader(http.StatusAccepted)
		return
	case "tools/list":
		result = s.handleToolsList()
	case "tools/call":
		result, rpcErr = s.handleToolsCall(r.Context(), req.Params)
	default:
		writeRPCError(w, req.ID, -32601, "Method not found")
		return
	}

	if rpcErr != nil {
		writeRPCError(w, req.ID, rpcErr.Code, rpcErr.Message)
		return
	}
	writeRPCResult(w, req.ID, result)
}

func (s *Server) handleToolsList() *toolsListResult {
	tools := []mcpTool{}
	if s.factCheck != nil {
		tools = append(tools, mcpTool{
			Name:        "fact_check",
			Description: "Extract factual claims from text, search the web for each and judge whether the sources support it",
			InputSchema: inputSchema{
				Type: "object",
				Properties: map[string]schemaProp{
					"text": {Type: "string", Description: "Text containing claims to check"},
				},
				Required: []string{"text"},
			},
		})
	}
	if s.summary != nil {
		tools = append(tools,
			mcpTool{
				Name:        "summarize",
				Description: "Summarize content as bullet points",
				InputSchema: inputSchema{
					Type: "object",
					Properties: map[string]schemaProp{
						"content": {Type: "string", Description: "Content to summarize"},
					},
					Required: []string{"content"},
				},
			},
			mcpTool{
				Name:        "answer_question",
				Description: "Answer a question using only the given content",
				InputSchema: inputSchema{
					Type: "object",
					Properties: map[string]schemaProp{
						"question": {Type: "string", Description: "Question to answer"},
						"content":  {Type: "string", Description: "Content the answer must be based on"},
					},
					Required: []string{"question", "content"},
				},
			},
		)
	}
	if s.imageDetect != nil {
		tools = append(tools, mcpTool{
			Name:        "detect_ai_image",
			Description: "Estimate the likelihood (0-100) that the image at a URL is AI-generated",
			InputSchema: inputSchema{
				Type: "object",
				Properties: map[string]schemaProp{
					"url": {Type: "string", Description: "http(s) or s3:// image URL"},
				},
				Required: []string{"url"},
			},
		})
	}
	return &toolsListResult{Tools: tools}
}

type toolsCallParams struct {
	Name      string                 `json:"name"`
	Arguments map[string]interface{} `json:"arguments"`
}

func (s *Server) handleToolsCall(ctx context.Context, paramsRaw json.RawMessage) (interface{}, *rpcError) {
	var params toolsCallParams
	if err := json.Unmarshal(paramsRaw, &params); err != nil {
		return nil, &rpcError{Code: -32602, Message: "Invalid params"}
	}
	switch {
	case params.Name == "fact_check" && s.factCheck != nil:
		return s.callFactCheck(ctx, params.Arguments)
	case params.Name == "summarize" && s.summary != nil:
		return s.callSummarize(ctx, params.Arguments)
	case params.Name == "answer_question" && s.summary != nil:
		return s.callAnswerQuestion(ctx, params.Arguments)
	case params.Name == "detect_ai_image" && s.imageDetect != nil:
		return s.callDetectAIImage(ctx, params.Arguments)
	default:
		return nil, &rpcError{Code: -32602, Message: "Unknown tool: " + params.Name}
	}
}

func getStr(m map[string]interface{}, key string) string {
	if v, ok := m[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func (s *Server) callFactCheck(ctx context.Context, args map[string]interface{}) (interface{}, *rpcError) {
	text := getStr(args, "text")
	if text == "" {
		return toolError("Text is required"), nil
	}
	resp, err := s.factCheck.FactCheck(ctx, text, nil)
	if err != nil {
		log.Warn().Err(err).Msg("mcp fact_check failed")
		return toolError("Fact-checking failed: " + err.Error()), nil
	}
	return toolJSON(resp), nil
}

func (s *Server) callSummarize(ctx context.Context, args map[string]interface{}) (interface{}, *rpcError) {
	content := getStr(args, "content")
	if content == "" {
		return toolError("Content is required"), nil
	}
	resp, err := s.summary.Summarize(ctx, content)
	if err != nil {
		return toolError("Failed to summarize content: " + err.Error()), nil
	}
	return toolText(resp.Summary), nil
}

func (s *Server) callAnswerQuestion(ctx context.Context, args map[string]interface{}) (interface{}, *rpcError) {
	question := getStr(args, "question")
	content := getStr(args, "content")
	if question == "" || content == "" {
		return toolError("Both question and content are required"), nil
	}
	resp, err := s.summary.Answer(ctx, question, content)
	if err != nil {
		return toolError("Failed to answer question: " + err.Error()), nil
	}
	return toolText(resp.Answer), nil
}

func (s *Server) callDetectAIImage(ctx context.Context, args map[string]interface{}) (interface{}, *rpcError) {
	url := getStr(args, "url")
	if url == "" {
		return toolError("Image URL is required"), nil
	}
	resp, err := s.imageDetect.DetectAI(ctx, url)
	if err != nil {
		return toolError("Image detection failed: " + err.Error()), nil
	}
	return toolJSON(resp), nil
}

func toolText(text string) *toolsCallResult {
	return &toolsCallResult{Content: []contentItem{{Type: "text", Text: text}}}
}

func toolJSON(v interface{}) *toolsCallResult {
	raw, err := json.Marshal(v)
	if err != nil {
		return toolError(err.Error())
	}
	return toolText(string(raw))
}

func toolError(message string) *toolsCallResult {
	return &toolsCallResult{Content: []contentItem{{Type: "text", Text: message}}, IsError: true}
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

func writeRPCResult(w http.ResponseWriter, id interface{}, result interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(jsonRPCResponse{JSONRPC: "2.0", ID: id, Result: result})
}

func writeRPCError(w http.ResponseWriter, id interface{}, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(jsonRPCResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error:   &rpcError{Code: code, Message: message},
	})
}
