package agent

import (
	"fmt"
	"time"

	"github.com/cagandemirsamli/personalassistant/core"
)

// DateLayout is the layout used when stamping the current date into prompts.
const DateLayout = "Monday, January 02, 2006"

// Provider supplies dynamic instruction text at runtime.
type Provider interface {
	Instruction(*core.RunContext) (string, error)
}

// Func is a functional adapter to allow ordinary functions to be used as Providers.
type Func func(*core.RunContext) (string, error)

// Instruction implements Provider.
func (f Func) Instruction(rc *core.RunContext) (string, error) { return f(rc) }

// Instruction represents either a static instruction string or a dynamic provider.
type Instruction struct {
	text     string
	provider Provider
}

// NewInstructionFromText creates an Instruction from a static string.
func NewInstructionFromText(text string) Instruction { return Instruction{text: text} }

// NewInstructionFromProvider creates an Instruction from a dynamic provider.
func NewInstructionFromProvider(p Provider) Instruction { return Instruction{provider: p} }

// NewInstructionFromFunc creates an Instruction from a function.
func NewInstructionFromFunc(f func(*core.RunContext) (string, error)) Instruction {
	return Instruction{provider: Func(f)}
}

// NewDatedInstruction prefixes text with a CURRENT DATE line for now, so
// relative dates in user requests resolve against the date the agent was built.
func NewDatedInstruction(text string, now time.Time) Instruction {
	return NewInstructionFromText(fmt.Sprintf("CURRENT DATE: %s\n\n%s", now.Format(DateLayout), text))
}

// IsStatic returns true if the instruction is backed by a static string.
func (i Instruction) IsStatic() bool { return i.provider == nil }

// Resolve returns the instruction text, invoking the provider if needed.
func (i Instruction) Resolve(rc *core.RunContext) (string, error) {
	if i.provider != nil {
		return i.provider.Instruction(rc)
	}
	return i.text, nil
}
