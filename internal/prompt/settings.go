// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package prompt

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"dario.cat/mergo"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// =============================================================================
// ENUMS
// =============================================================================

// Personality selects the opening sentence of the system prompt.
type Personality string

const (
	PersonalityAssistant  Personality = "assistant"
	PersonalityExpert     Personality = "expert"
	PersonalityCreative   Personality = "creative"
	PersonalityCasual     Personality = "casual"
	PersonalityAnalytical Personality = "analytical"
	PersonalityMentor     Personality = "mentor"
)

// ResponseLength controls how long answers should be.
type ResponseLength string

const (
	LengthShort  ResponseLength = "short"
	LengthMedium ResponseLength = "medium"
	LengthLong   ResponseLength = "long"
)

// Formality controls the form of address.
type Formality string

const (
	FormalityFormal Formality = "formal"
	FormalityCasual Formality = "casual"
	FormalityMixed  Formality = "mixed"
)

// Depth controls the explanation level.
type Depth string

const (
	DepthBasic        Depth = "basic"
	DepthIntermediate Depth = "intermediate"
	DepthAdvanced     Depth = "advanced"
)

// Personalities lists every personality in display order.
var Personalities = []Personality{
	PersonalityAssistant, PersonalityExpert, PersonalityCreative,
	PersonalityCasual, PersonalityAnalytical, PersonalityMentor,
}

// ResponseLengths lists every length option.
var ResponseLengths = []ResponseLength{LengthShort, LengthMedium, LengthLong}

// Formalities lists every formality option.
var Formalities = []Formality{FormalityFormal, FormalityCasual, FormalityMixed}

// Depths lists every explanation depth.
var Depths = []Depth{DepthBasic, DepthIntermediate, DepthAdvanced}

// =============================================================================
// BOT SETTINGS
// =============================================================================

// BotSettings are the user's reply preferences. The JSON keys match the
// stored chatbot.bot-settings.v1 object.
type BotSettings struct {
	Personality       Personality    `json:"personality"`
	ResponseLength    ResponseLength `json:"responseLength"`
	Formality         Formality      `json:"formality"`
	ExplanationDepth  Depth          `json:"explanationDepth"`
	CodeFocus         bool           `json:"codeFocus"`
	ExamplesFocus     bool           `json:"examplesFocus"`
	StepByStep        bool           `json:"stepByStep"`
	AskClarifications bool           `json:"askClarifications"`
}

// Defaults returns the settings used when nothing is stored.
func Defaults() BotSettings {
	return BotSettings{
		Personality:      PersonalityAssistant,
		ResponseLength:   LengthMedium,
		Formality:        FormalityCasual,
		ExplanationDepth: DepthIntermediate,
	}
}

// Merge fills every unset field of partial with its default. Set fields win.
func Merge(partial BotSettings) BotSettings {
	out := partial
	if err := mergo.Merge(&out, Defaults()); err != nil {
		return Defaults()
	}
	return out
}

// Validate rejects enum values outside the known tables. Empty values are
// allowed; Merge turns them into defaults.
func (s BotSettings) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Personality, validation.In(toAny(Personalities)...)),
		validation.Field(&s.ResponseLength, validation.In(toAny(ResponseLengths)...)),
		validation.Field(&s.Formality, validation.In(toAny(Formalities)...)),
		validation.Field(&s.ExplanationDepth, validation.In(toAny(Depths)...)),
	)
}

func toAny[T any](values []T) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

// =============================================================================
// FIELD ACCESS
// =============================================================================

// ErrUnknownField is returned by Set for a key not in Fields.
var ErrUnknownField = errors.New("unknown setting")

// Fields lists the setting keys accepted by Set, in display order.
var Fields = []string{
	"personality", "responseLength", "formality", "explanationDepth",
	"codeFocus", "examplesFocus", "stepByStep", "askClarifications",
}

// Set assigns a single setting by its JSON key. The result is validated.
func (s *BotSettings) Set(key, value string) error {
	next := *s
	value = strings.TrimSpace(value)

	switch key {
	case "personality":
		next.Personality = Personality(value)
	case "responseLength":
		next.ResponseLength = ResponseLength(value)
	case "formality":
		next.Formality = Formality(value)
	case "explanationDepth":
		next.ExplanationDepth = Depth(value)
	case "codeFocus", "examplesFocus", "stepByStep", "askClarifications":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%s: %q is not a boolean", key, value)
		}
		*next.flag(key) = b
	default:
		return fmt.Errorf("%w %q", ErrUnknownField, key)
	}

	if err := next.Validate(); err != nil {
		return err
	}
	*s = next
	return nil
}

// Get returns a single setting as text.
func (s BotSettings) Get(key string) (string, bool) {
	switch key {
	case "personality":
		return string(s.Personality), true
	case "responseLength":
		return string(s.ResponseLength), true
	case "formality":
		return string(s.Formality), true
	case "explanationDepth":
		return string(s.ExplanationDepth), true
	case "codeFocus", "examplesFocus", "stepByStep", "askClarifications":
		return strconv.FormatBool(*s.flag(key)), true
	}
	return "", false
}

func (s *BotSettings) flag(key string) *bool {
	switch key {
	case "codeFocus":
		return &s.CodeFocus
	case "examplesFocus":
		return &s.ExamplesFocus
	case "stepByStep":
		return &s.StepByStep
	default:
		return &s.AskClarifications
	}
}
