package model

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cagandemirsamli/personalassistant/core"
)

// ToolResultText renders a function response as the plain text handed back
// to a provider. Errors win over results; non-string results are JSON encoded.
func ToolResultText(fr core.FunctionResponse) string {
	if fr.Error != "" {
		return "Error: " + fr.Error
	}
	switch v := fr.Response.(type) {
	case nil:
		return ""
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	}
	b, err := json.Marshal(fr.Response)
	if err != nil {
		return fmt.Sprintf("%v", fr.Response)
	}
	return string(b)
}

// TextOf concatenates the text parts of c.
func TextOf(c core.Content) string {
	var sb strings.Builder
	for _, p := range c.Parts {
		if tp, ok := p.(core.TextPart); ok {
			sb.WriteString(tp.Text)
		}
	}
	return sb.String()
}

// CallIDs returns the IDs of every function call in c, in order.
func CallIDs(c core.Content) []string {
	var ids []string
	for _, p := range c.Parts {
		if fc, ok := p.(core.FunctionCallPart); ok && fc.FunctionCall.ID != "" {
			ids = append(ids, fc.FunctionCall.ID)
		}
	}
	return ids
}
