// Package chat implements the dealership assistant endpoint: a cache-aside
// conversation history keyed by conversation id, a circuit breaker around
// the outbound LLM call, and the anthropic-sdk-go client behind it.
//
// A cache miss creates and caches an empty thread before the LLM call; the
// thread, with the user's message appended, stays cached even when that
// call fails.
package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sony/gobreaker"

	"github.com/webitel/floorqueue/config"
)

// Turn is one message (user or assistant) kept in a conversation's history.
type Turn struct {
	Role    string
	Content string
}

type thread struct {
	mu      sync.Mutex
	history []Turn
}

type Service struct {
	client  anthropic.Client
	model   anthropic.Model
	cache   *lru.Cache[string, *thread]
	breaker *gobreaker.CircuitBreaker[*anthropic.Message]
}

func New(cfg *config.Config) *Service {
	cache, _ := lru.New[string, *thread](cfg.ChatThreadCacheSize())

	breaker := gobreaker.NewCircuitBreaker[*anthropic.Message](gobreaker.Settings{
		Name:        "anthropic-chat",
		MaxRequests: cfg.ChatBreakerMaxRequests(),
		Timeout:     cfg.ChatBreakerOpenTimeout(),
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
	})

	return &Service{
		client:  anthropic.NewClient(option.WithAPIKey(cfg.ChatAnthropicAPIKey())),
		model:   anthropic.Model(cfg.ChatModel()),
		cache:   cache,
		breaker: breaker,
	}
}

// AskRequest is one turn of the chat relay. ConversationID is empty on the
// very first message of a thread; CurrentFilters and GuidedMode are opaque
// shopper-side state forwarded to the model as context.
type AskRequest struct {
	ConversationID string
	Message        string
	CurrentFilters json.RawMessage
	GuidedMode     bool
}

// AskResult carries the assistant's reply alongside the thread id the
// caller should reuse on the next request.
type AskResult struct {
	ConversationID string
	Response       string
	UpdatedFilters json.RawMessage
	GuidedMode     bool
}

// Ask appends the message to the conversation's history, calls the LLM
// through the circuit breaker, and returns the assistant's reply. A blank
// req.ConversationID mints a new thread id; callers must echo the
// returned id on every subsequent request for the same conversation.
func (s *Service) Ask(ctx context.Context, req AskRequest) (AskResult, error) {
	conversationID := req.ConversationID
	if conversationID == "" {
		conversationID = uuid.NewString()
	}

	t := s.threadFor(conversationID)

	t.mu.Lock()
	t.history = append(t.history, Turn{Role: "user", Content: req.Message})
	params := s.buildParams(t.history, req.CurrentFilters, req.GuidedMode)
	t.mu.Unlock()

	msg, err := s.breaker.Execute(func() (*anthropic.Message, error) {
		return s.client.Messages.New(ctx, params)
	})
	if err != nil {
		return AskResult{}, fmt.Errorf("chat completion: %w", err)
	}

	reply := flattenText(msg)

	t.mu.Lock()
	t.history = append(t.history, Turn{Role: "assistant", Content: reply})
	t.mu.Unlock()

	return AskResult{
		ConversationID: conversationID,
		Response:       reply,
		UpdatedFilters: req.CurrentFilters,
		GuidedMode:     req.GuidedMode,
	}, nil
}

// threadFor is the cache-aside lookup: fetch the cached thread or seed a
// new one, without holding any lock across the cache itself.
func (s *Service) threadFor(conversationID string) *thread {
	if cached, ok := s.cache.Get(conversationID); ok {
		return cached
	}
	t := &thread{}
	s.cache.Add(conversationID, t)
	return t
}

func (s *Service) buildParams(history []Turn, currentFilters json.RawMessage, guidedMode bool) anthropic.MessageNewParams {
	messages := make([]anthropic.MessageParam, 0, len(history))
	for _, turn := range history {
		switch turn.Role {
		case "assistant":
			messages = append(messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(turn.Content)))
		default:
			messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(turn.Content)))
		}
	}

	system := "You are a dealership assistant helping a shopper while they wait for a sales representative."
	if guidedMode {
		system += " The shopper is in guided mode: ask short, specific questions to narrow down what they want."
	}
	if len(currentFilters) > 0 {
		system += fmt.Sprintf(" The shopper's current inventory filters are: %s.", string(currentFilters))
	}

	return anthropic.MessageNewParams{
		Model:     s.model,
		MaxTokens: 1024,
		System: []anthropic.TextBlockParam{
			{Text: system},
		},
		Messages: messages,
	}
}

func flattenText(msg *anthropic.Message) string {
	var out string
	for _, block := range msg.Content {
		if block.Type == "text" {
			out += block.Text
		}
	}
	return out
}
