package gateway

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf16"
)

// Chat request limits. Lengths are counted in UTF-16 code units, as browsers count
// them.
const (
	MaxMessages         = 50
	MaxMessageLength    = 5000
	MaxContextLength    = 2000
	maxModuleNameLength = 100
	maxPredictionLength = 500
)

// RequestError is a chat request rejected before it reaches the gateway. Its message
// is safe to show to the caller.
type RequestError struct {
	Reason string
}

func (e *RequestError) Error() string { return e.Reason }

func reject(format string, args ...any) error {
	return &RequestError{Reason: fmt.Sprintf(format, args...)}
}

// ChatRequest is a conversation plus optional information about what the user is
// looking at.
type ChatRequest struct {
	Messages []Message    `json:"messages"`
	Context  *ChatContext `json:"context,omitempty"`
}

// ChatContext describes the page the user is on.
type ChatContext struct {
	CurrentModule  string          `json:"currentModule,omitempty"`
	LastPrediction *LastPrediction `json:"lastPrediction,omitempty"`

	size int // serialised size as received, 0 when built in code
}

// LastPrediction summarises the most recent prediction shown to the user. Confidence
// is a percentage.
type LastPrediction struct {
	ModuleType string   `json:"moduleType,omitempty"`
	Prediction string   `json:"prediction,omitempty"`
	Confidence *float64 `json:"confidence,omitempty"`
}

var allowedRoles = map[string]bool{"user": true, "assistant": true, "system": true}

// DecodeChatRequest parses and validates a chat request body, reporting the first
// problem in the order a client would want to fix them.
func DecodeChatRequest(data []byte) (ChatRequest, error) {
	var req ChatRequest
	if !json.Valid(data) {
		return req, reject("Invalid JSON body")
	}
	var body map[string]json.RawMessage
	if err := json.Unmarshal(data, &body); err != nil || body == nil {
		return req, reject("Request body must be an object")
	}

	var items []json.RawMessage
	if raw, ok := body["messages"]; !ok || json.Unmarshal(raw, &items) != nil || items == nil {
		return req, reject("Messages must be an array")
	}
	if err := checkCount(len(items)); err != nil {
		return req, err
	}
	for i, item := range items {
		var fields map[string]any
		if err := json.Unmarshal(item, &fields); err != nil || fields == nil {
			return req, reject("Invalid message at index %d", i)
		}
		role, ok := fields["role"].(string)
		if !ok || role == "" {
			return req, reject("Invalid role at message %d", i)
		}
		content, _ := fields["content"].(string)
		msg := Message{Role: role, Content: content}
		if err := checkMessage(i, msg); err != nil {
			return req, err
		}
		req.Messages = append(req.Messages, msg)
	}

	raw, ok := body["context"]
	if !ok || string(bytes.TrimSpace(raw)) == "null" {
		return req, nil
	}
	cc, err := decodeContext(raw)
	if err != nil {
		return req, err
	}
	req.Context = cc
	return req, req.Validate()
}

func decodeContext(raw json.RawMessage) (*ChatContext, error) {
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, reject("Context must be an object")
	}
	cc := &ChatContext{}
	if v, ok := fields["currentModule"]; ok {
		s, isString := v.(string)
		if !isString || textLen(s) > maxModuleNameLength {
			return nil, reject("Invalid currentModule in context")
		}
		cc.CurrentModule = s
	}
	if v, ok := fields["lastPrediction"]; ok {
		pred, isObject := v.(map[string]any)
		if !isObject {
			return nil, reject("Invalid lastPrediction in context")
		}
		lp := &LastPrediction{}
		if v, ok := pred["moduleType"]; ok {
			s, isString := v.(string)
			if !isString || textLen(s) > maxModuleNameLength {
				return nil, reject("Invalid moduleType in lastPrediction")
			}
			lp.ModuleType = s
		}
		if v, ok := pred["prediction"]; ok {
			s, isString := v.(string)
			if !isString || textLen(s) > maxPredictionLength {
				return nil, reject("Invalid prediction in lastPrediction")
			}
			lp.Prediction = s
		}
		if v, ok := pred["confidence"]; ok {
			f, isNumber := v.(float64)
			if !isNumber || f < 0 || f > 100 {
				return nil, reject("Invalid confidence in lastPrediction")
			}
			lp.Confidence = &f
		}
		cc.LastPrediction = lp
	}

	var compact bytes.Buffer
	if err := json.Compact(&compact, raw); err == nil {
		cc.size = textLen(compact.String())
	}
	return cc, nil
}

// Validate checks the limits on an already decoded request.
func (r ChatRequest) Validate() error {
	if err := checkCount(len(r.Messages)); err != nil {
		return err
	}
	for i, msg := range r.Messages {
		if msg.Role == "" {
			return reject("Invalid role at message %d", i)
		}
		if err := checkMessage(i, msg); err != nil {
			return err
		}
	}
	if r.Context == nil {
		return nil
	}

	c := r.Context
	if textLen(c.CurrentModule) > maxModuleNameLength {
		return reject("Invalid currentModule in context")
	}
	if lp := c.LastPrediction; lp != nil {
		if textLen(lp.ModuleType) > maxModuleNameLength {
			return reject("Invalid moduleType in lastPrediction")
		}
		if textLen(lp.Prediction) > maxPredictionLength {
			return reject("Invalid prediction in lastPrediction")
		}
		if lp.Confidence != nil && (*lp.Confidence < 0 || *lp.Confidence > 100) {
			return reject("Invalid confidence in lastPrediction")
		}
	}
	size := c.size
	if size == 0 {
		encoded, err := json.Marshal(c)
		if err != nil {
			return fmt.Errorf("encode chat context: %w", err)
		}
		size = textLen(string(encoded))
	}
	if size > MaxContextLength {
		return reject("Context exceeds maximum size of %d characters", MaxContextLength)
	}
	return nil
}

func checkCount(n int) error {
	switch {
	case n == 0:
		return reject("Messages array cannot be empty")
	case n > MaxMessages:
		return reject("Too many messages. Maximum allowed: %d", MaxMessages)
	}
	return nil
}

func checkMessage(i int, msg Message) error {
	if !allowedRoles[msg.Role] {
		return reject("Invalid role value at message %d", i)
	}
	if msg.Content == "" {
		return reject("Invalid content at message %d", i)
	}
	if textLen(msg.Content) > MaxMessageLength {
		return reject("Message %d exceeds maximum length of %d characters", i, MaxMessageLength)
	}
	return nil
}

// SystemPrompt is the platform context extended with what the user is looking at.
func (r ChatRequest) SystemPrompt() string {
	var b strings.Builder
	b.WriteString(platformContext)
	if r.Context == nil {
		return b.String()
	}
	if r.Context.CurrentModule != "" {
		b.WriteString("\n\n## Current Context\nUser is currently on: ")
		b.WriteString(r.Context.CurrentModule)
	}
	if lp := r.Context.LastPrediction; lp != nil {
		confidence := "unknown"
		if lp.Confidence != nil {
			confidence = strconv.FormatFloat(*lp.Confidence, 'f', -1, 64)
		}
		fmt.Fprintf(&b, "\n\nLast prediction made:\n- Module: %s\n- Result: %s\n- Confidence: %s%%",
			orUnknown(lp.ModuleType), orUnknown(lp.Prediction), confidence)
	}
	return b.String()
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}

func textLen(s string) int {
	return len(utf16.Encode([]rune(s)))
}
