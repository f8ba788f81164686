package core

import (
	"encoding/json"
	"fmt"
)

// Part represents a polymorphic segment of role-based content. Concrete part
// types implement the unexported isPart marker enabling a closed set.
type Part interface{ isPart() }

// TextPart is a plain text content segment.
type TextPart struct {
	Text     string         `json:"text"`               // Plain UTF-8 text
	Metadata map[string]any `json:"metadata,omitempty"` // Optional producer-provided metadata
}

// isPart implements the Part interface for TextPart.
func (TextPart) isPart() {}

// FunctionCall describes a tool/function invocation request.
type FunctionCall struct {
	ID        string `json:"id,omitempty"`        // Optional stable id (can be supplied later)
	Name      string `json:"name"`                // Tool / function name
	Arguments string `json:"arguments,omitempty"` // Serialized argument payload (e.g. JSON)
}

// FunctionCallPart wraps a FunctionCall as a content part.
type FunctionCallPart struct {
	FunctionCall FunctionCall   `json:"function_call"`
	Metadata     map[string]any `json:"metadata,omitempty"`
}

// isPart implements the Part interface for FunctionCallPart.
func (FunctionCallPart) isPart() {}

// FunctionResponse describes the outcome of a function call.
type FunctionResponse struct {
	ID       string `json:"id,omitempty"`       // Matches originating FunctionCall ID
	Name     string `json:"name"`               // Function name
	Response any    `json:"response,omitempty"` // Successful result (any shape)
	Error    string `json:"error,omitempty"`    // Populated on failure
}

// FunctionResponsePart wraps a FunctionResponse as a content part.
type FunctionResponsePart struct {
	FunctionResponse FunctionResponse `json:"function_response"`
	Metadata         map[string]any   `json:"metadata,omitempty"`
}

// isPart implements the Part interface for FunctionResponsePart.
func (FunctionResponsePart) isPart() {}

// Content holds role + ordered parts.
type Content struct {
	Role  string `json:"role,omitempty"` // Conversation role (user, assistant, tool, system,...)
	Parts []Part `json:"parts"`          // Ordered heterogeneous parts
}

// Text concatenates all text parts of the content.
func (c *Content) Text() string {
	if c == nil {
		return ""
	}
	var out string
	for _, p := range c.Parts {
		if tp, ok := p.(TextPart); ok {
			out += tp.Text
		}
	}
	return out
}

const (
	partTypeText             = "text"
	partTypeFunctionCall     = "function_call"
	partTypeFunctionResponse = "function_response"
)

// wirePart is the tagged JSON envelope for one Part.
type wirePart struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type wireContent struct {
	Role  string     `json:"role,omitempty"`
	Parts []wirePart `json:"parts"`
}

// MarshalJSON encodes parts with an explicit type tag so that the closed Part
// union survives a round trip through a durable session store.
func (c Content) MarshalJSON() ([]byte, error) {
	wc := wireContent{Role: c.Role, Parts: make([]wirePart, 0, len(c.Parts))}
	for _, p := range c.Parts {
		var typ string
		switch p.(type) {
		case TextPart:
			typ = partTypeText
		case FunctionCallPart:
			typ = partTypeFunctionCall
		case FunctionResponsePart:
			typ = partTypeFunctionResponse
		default:
			return nil, fmt.Errorf("unsupported part type %T", p)
		}
		data, err := json.Marshal(p)
		if err != nil {
			return nil, err
		}
		wc.Parts = append(wc.Parts, wirePart{Type: typ, Data: data})
	}
	return json.Marshal(wc)
}

// UnmarshalJSON decodes the tagged representation written by MarshalJSON.
func (c *Content) UnmarshalJSON(b []byte) error {
	var wc wireContent
	if err := json.Unmarshal(b, &wc); err != nil {
		return err
	}
	c.Role = wc.Role
	c.Parts = make([]Part, 0, len(wc.Parts))
	for _, wp := range wc.Parts {
		switch wp.Type {
		case partTypeText:
			var p TextPart
			if err := json.Unmarshal(wp.Data, &p); err != nil {
				return err
			}
			c.Parts = append(c.Parts, p)
		case partTypeFunctionCall:
			var p FunctionCallPart
			if err := json.Unmarshal(wp.Data, &p); err != nil {
				return err
			}
			c.Parts = append(c.Parts, p)
		case partTypeFunctionResponse:
			var p FunctionResponsePart
			if err := json.Unmarshal(wp.Data, &p); err != nil {
				return err
			}
			c.Parts = append(c.Parts, p)
		default:
			return fmt.Errorf("unknown part type %q", wp.Type)
		}
	}
	return nil
}
