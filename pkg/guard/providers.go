package guard

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

// LengthProvider rejects prompts beyond a maximum length.
type LengthProvider struct {
	Max int
}

func (p *LengthProvider) Name() string { return "length" }

func (p *LengthProvider) Check(prompt string) Verdict {
	if len([]rune(prompt)) > p.Max {
		return Verdict{
			Rejected: true,
			Warning:  fmt.Sprintf("prompt too long: %d runes exceeds limit %d", len([]rune(prompt)), p.Max),
		}
	}
	return Verdict{Sanitized: prompt}
}

// ControlCharProvider strips NUL, C0/C1 control characters and DEL. It never
// rejects; newlines and tabs become spaces so multi-line pastes stay usable.
type ControlCharProvider struct{}

func (p *ControlCharProvider) Name() string { return "control_chars" }

func (p *ControlCharProvider) Check(prompt string) Verdict {
	var b strings.Builder
	b.Grow(len(prompt))
	for _, r := range prompt {
		switch {
		case r == '\n' || r == '\t' || r == '\r':
			b.WriteRune(' ')
		case unicode.IsControl(r) || r == 0x7f:
			// dropped
		default:
			b.WriteRune(r)
		}
	}
	return Verdict{Sanitized: b.String()}
}

// injectionPatterns cover the known injection families: instruction
// override, system-prompt leakage, role manipulation, jailbreak modes, chat
// template markers, and SQL injection markers.
var injectionPatterns = []*regexp.Regexp{
	// Instruction override
	regexp.MustCompile(`(?i)\b(ignore|disregard|forget)\b.{0,40}\b(previous|above|all|everything|prior)\b.{0,40}\b(instruction|rule|prompt)?`),
	// System prompt leakage
	regexp.MustCompile(`(?i)\b(show|print|repeat|reveal|what are)\b.{0,30}\b(system prompt|your (instructions|prompt|rules))`),
	// Role manipulation
	regexp.MustCompile(`(?i)\b(you are now|act as|pretend (you are|to be))\b`),
	// Jailbreak modes
	regexp.MustCompile(`(?i)\b(enable|activate|switch to)\b.{0,20}\b(dan|developer|god|jailbreak)\s*mode\b`),
	// Chat template / direct injection markers
	regexp.MustCompile(`(?i)(<\|im_start\|>|\[INST\]|\[/INST\]|###\s*system\s*:)`),
	// SQL injection markers
	regexp.MustCompile(`(?i)('\s*;\s*drop\s+table|union\s+select|;\s*--)`),
}

// InjectionProvider flags prompts matching known injection patterns. It does
// not mutate or reject; the suspicious flag rides the audit record and the
// caller decides whether to act.
type InjectionProvider struct{}

func (p *InjectionProvider) Name() string { return "injection" }

func (p *InjectionProvider) Check(prompt string) Verdict {
	for _, re := range injectionPatterns {
		if re.MatchString(prompt) {
			return Verdict{
				Sanitized:  prompt,
				Suspicious: true,
				Warning:    fmt.Sprintf("possible prompt injection (pattern %q)", re.String()),
			}
		}
	}
	return Verdict{Sanitized: prompt}
}

// DefaultChain builds the standard guard chain: length gate, control
// character stripping, injection detection.
func DefaultChain(maxPromptLength int) *Chain {
	return NewChain(
		&LengthProvider{Max: maxPromptLength},
		&ControlCharProvider{},
		&InjectionProvider{},
	)
}
