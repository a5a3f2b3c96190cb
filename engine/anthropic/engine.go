package anthropic

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"agentgate"
	"agentgate/engine"
	"agentgate/mcp"
	"agentgate/tool"
)

const (
	defaultMaxTokens = 4096
	defaultMaxSteps  = 25
)

// Engine runs agent executions against the Anthropic API.
type Engine struct {
	client    *anthropic.Client
	model     ChatModel
	system    string
	maxTokens int64
	maxSteps  int
	timeout   time.Duration
	tools     *tool.Registry
	sessions  *engine.Store
	logger    *slog.Logger
}

// New creates an Engine with the given API key.
func New(apiKey string, opts ...Option) *Engine {
	client := anthropic.NewClient(option.WithAPIKey(apiKey))
	e := &Engine{
		client:    &client,
		model:     DefaultChatModel,
		maxTokens: defaultMaxTokens,
		maxSteps:  defaultMaxSteps,
		tools:     tool.NewRegistry(),
		sessions:  engine.NewStore(),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Option configures the Engine.
type Option func(*Engine)

// WithModel sets the model for executions.
func WithModel(model ChatModel) Option {
	return func(e *Engine) { e.model = model }
}

// WithSystemPrompt sets the system prompt prepended to every execution.
func WithSystemPrompt(prompt string) Option {
	return func(e *Engine) { e.system = prompt }
}

// WithMaxTokens sets the per-turn output token limit.
func WithMaxTokens(n int64) Option {
	return func(e *Engine) { e.maxTokens = n }
}

// WithMaxSteps bounds the number of model turns per execution.
// Zero means unbounded.
func WithMaxSteps(n int) Option {
	return func(e *Engine) { e.maxSteps = n }
}

// WithTimeout bounds the wall-clock duration of one execution.
// Zero means no limit.
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) { e.timeout = d }
}

// WithRegistry sets the local tool registry.
func WithRegistry(r *tool.Registry) Option {
	return func(e *Engine) { e.tools = r }
}

// WithSessionStore sets the continuation session store.
func WithSessionStore(s *engine.Store) Option {
	return func(e *Engine) { e.sessions = s }
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// Sessions returns the engine's session store.
func (e *Engine) Sessions() *engine.Store {
	return e.sessions
}

// Execute starts one execution. A non-empty continuation token that the
// session store does not recognize fails synchronously; nothing is started.
func (e *Engine) Execute(ctx context.Context, req engine.Request) (<-chan agentgate.StreamEvent, error) {
	token := req.ContinuationToken
	var history []agentgate.Message
	if token != "" {
		h, ok := e.sessions.Resume(token)
		if !ok {
			return nil, agentgate.NewError(agentgate.ErrorEngine, fmt.Sprintf("unknown continuation token %q", token), nil)
		}
		history = h
	} else {
		token = e.sessions.Create()
	}

	ch := engine.NewChannel()
	go e.run(ctx, req, token, history, ch)
	return ch, nil
}

func (e *Engine) run(ctx context.Context, req engine.Request, token string, history []agentgate.Message, ch chan agentgate.StreamEvent) {
	defer close(ch)

	// The execution deadline applies to model and tool calls only; events
	// are emitted on the caller's ctx so a timeout can still be reported
	// in-band.
	execCtx := ctx
	if e.timeout > 0 {
		var cancel context.CancelFunc
		execCtx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	start := time.Now()
	if !engine.Emit(ctx, ch, token, agentgate.StreamEvent{Kind: agentgate.EventLifecycleStart}) {
		return
	}

	conns := e.connect(execCtx, req)
	defer func() {
		for _, c := range conns {
			c.Close()
		}
	}()

	defs := e.toolDefinitions(req, conns)
	history = append(history, agentgate.Message{Role: agentgate.RoleUser, Content: req.Prompt})

	var usage agentgate.Usage
	turns := 0
	for {
		if e.maxSteps > 0 && turns >= e.maxSteps {
			e.sessions.Save(token, history)
			e.fail(ctx, ch, token, fmt.Sprintf("execution exceeded %d turns", e.maxSteps), start, turns, usage)
			return
		}
		turns++

		resp, err := e.step(ctx, execCtx, ch, token, history, defs)
		if err != nil {
			e.sessions.Save(token, history)
			if ctx.Err() != nil {
				return
			}
			msg := "model turn failed: " + err.Error()
			if errors.Is(err, context.DeadlineExceeded) {
				msg = fmt.Sprintf("execution exceeded the %s time limit", e.timeout)
			}
			e.logger.Error("model turn failed", "turn", turns, "error", err)
			e.fail(ctx, ch, token, msg, start, turns, usage)
			return
		}
		usage.InputTokens += resp.usage.InputTokens
		usage.OutputTokens += resp.usage.OutputTokens

		if len(resp.toolCalls) == 0 {
			history = append(history, agentgate.Message{Role: agentgate.RoleAssistant, Content: resp.content})
			e.sessions.Save(token, history)
			engine.Emit(ctx, ch, token, agentgate.StreamEvent{
				Kind: agentgate.EventTerminalResult,
				Result: &agentgate.Result{
					Subtype:    agentgate.ResultSuccess,
					Content:    resp.content,
					DurationMS: time.Since(start).Milliseconds(),
					Turns:      turns,
					Usage:      usage,
				},
			})
			return
		}

		history = append(history, agentgate.Message{
			Role:      agentgate.RoleAssistant,
			Content:   resp.content,
			ToolCalls: resp.toolCalls,
		})

		var results []agentgate.ToolResult
		for _, tc := range resp.toolCalls {
			if !engine.Emit(ctx, ch, token, agentgate.StreamEvent{Kind: agentgate.EventToolInvocation, ToolCall: &tc}) {
				e.sessions.Save(token, history)
				return
			}
			res := e.dispatch(execCtx, tc, req, conns)
			results = append(results, res)
			if !engine.Emit(ctx, ch, token, agentgate.StreamEvent{Kind: agentgate.EventToolResult, ToolCall: &tc, ToolResult: &res}) {
				e.sessions.Save(token, history)
				return
			}
		}
		history = append(history, agentgate.NewToolResultMessage(results...))
	}
}

func (e *Engine) fail(ctx context.Context, ch chan agentgate.StreamEvent, token, msg string, start time.Time, turns int, usage agentgate.Usage) {
	engine.Emit(ctx, ch, token, agentgate.StreamEvent{
		Kind:         agentgate.EventLifecycleError,
		ErrorMessage: msg,
		Result: &agentgate.Result{
			Subtype:    agentgate.ResultError,
			Errors:     []string{msg},
			DurationMS: time.Since(start).Milliseconds(),
			Turns:      turns,
			Usage:      usage,
		},
	})
}

// connect dials every auxiliary server in the request's set. A server that
// cannot be reached is logged and skipped; its tools are simply absent for
// this execution.
func (e *Engine) connect(ctx context.Context, req engine.Request) map[string]*mcp.Conn {
	names := make([]string, 0, len(req.Servers))
	for name := range req.Servers {
		names = append(names, name)
	}
	sort.Strings(names)

	conns := make(map[string]*mcp.Conn, len(names))
	for _, name := range names {
		conn, err := mcp.Connect(ctx, name, req.Servers[name])
		if err != nil {
			e.logger.Warn("auxiliary server unavailable", "server", name, "error", err)
			continue
		}
		conns[name] = conn
	}
	return conns
}

// toolDefinitions gathers the local and auxiliary tool definitions the
// request's capability list permits.
func (e *Engine) toolDefinitions(req engine.Request, conns map[string]*mcp.Conn) []agentgate.Tool {
	var defs []agentgate.Tool
	for _, t := range e.tools.Definitions() {
		if agentgate.CapabilityAllows(req.Capabilities, t.Name) {
			defs = append(defs, t)
		}
	}
	names := make([]string, 0, len(conns))
	for name := range conns {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		for _, t := range conns[name].Tools() {
			if agentgate.CapabilityAllows(req.Capabilities, t.Name) {
				defs = append(defs, t)
			}
		}
	}
	return defs
}

func (e *Engine) dispatch(ctx context.Context, call agentgate.ToolCall, req engine.Request, conns map[string]*mcp.Conn) agentgate.ToolResult {
	if !agentgate.CapabilityAllows(req.Capabilities, call.Name) {
		return agentgate.ToolResult{
			ToolCallID: call.ID,
			Content:    fmt.Sprintf("tool %q is not permitted", call.Name),
			IsError:    true,
		}
	}

	if server, name, ok := agentgate.ParseServerTool(call.Name); ok {
		conn, found := conns[server]
		if !found {
			return agentgate.ToolResult{
				ToolCallID: call.ID,
				Content:    fmt.Sprintf("server %q is not connected", server),
				IsError:    true,
			}
		}
		res, err := conn.Call(ctx, call, name)
		if err != nil {
			return agentgate.ToolResult{
				ToolCallID: call.ID,
				Content:    "tool call failed: " + err.Error(),
				IsError:    true,
			}
		}
		return res
	}

	res, err := e.tools.Execute(ctx, call)
	if err != nil {
		return agentgate.ToolResult{
			ToolCallID: call.ID,
			Content:    err.Error(),
			IsError:    true,
		}
	}
	return res
}

type stepResult struct {
	content   string
	toolCalls []agentgate.ToolCall
	usage     agentgate.Usage
}

// step runs one streamed model turn, emitting partial content as it
// arrives, and returns the accumulated turn. The model call runs under
// execCtx; emits run under ctx.
func (e *Engine) step(ctx, execCtx context.Context, ch chan agentgate.StreamEvent, token string, history []agentgate.Message, defs []agentgate.Tool) (*stepResult, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(e.model.String()),
		MaxTokens: e.maxTokens,
		Messages:  convertMessages(history),
	}
	if e.system != "" {
		params.System = []anthropic.TextBlockParam{{Text: e.system}}
	}
	if len(defs) > 0 {
		params.Tools = convertTools(defs)
	}

	stream := e.client.Messages.NewStreaming(execCtx, params)
	var acc anthropic.Message

	for stream.Next() {
		event := stream.Current()
		acc.Accumulate(event)

		if event.Type == "content_block_delta" {
			delta := event.AsContentBlockDelta()
			if textDelta := delta.Delta.AsTextDelta(); textDelta.Type == "text_delta" {
				if !engine.Emit(ctx, ch, token, agentgate.StreamEvent{
					Kind:  agentgate.EventPartialContent,
					Delta: textDelta.Text,
				}) {
					return nil, ctx.Err()
				}
			}
		}
	}
	if err := stream.Err(); err != nil {
		return nil, err
	}

	result := &stepResult{
		usage: agentgate.Usage{
			InputTokens:  int(acc.Usage.InputTokens),
			OutputTokens: int(acc.Usage.OutputTokens),
		},
	}
	for _, block := range acc.Content {
		if block.Type == "text" {
			result.content += block.Text
		} else if block.Type == "tool_use" {
			result.toolCalls = append(result.toolCalls, agentgate.ToolCall{
				ID:        block.ID,
				Name:      block.Name,
				Arguments: string(block.Input),
			})
		}
	}
	return result, nil
}

var _ engine.Engine = (*Engine)(nil)
