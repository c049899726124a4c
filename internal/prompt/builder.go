// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package prompt

import "strings"

// =============================================================================
// DIRECTIVE TABLES
// =============================================================================

func personalitySentence(p Personality) string {
	switch p {
	case PersonalityExpert:
		return "Du bist ein Experte in deinem Fachgebiet. Antworte detailliert, technisch präzise und mit fundierten Informationen."
	case PersonalityCreative:
		return "Du bist ein kreativer AI-Assistent. Sei inspirierend, innovativ und bringe fantasievolle Ideen ein."
	case PersonalityCasual:
		return "Du bist ein entspannter AI-Assistent. Sei locker, humorvoll und nahbar in deinen Antworten."
	case PersonalityAnalytical:
		return "Du bist ein analytischer AI-Assistent. Sei logisch, strukturiert und datenorientiert in deinen Antworten."
	case PersonalityMentor:
		return "Du bist ein Mentor-AI. Sei lehrend, geduldig und fördernd. Hilf beim Lernen und der Entwicklung."
	default:
		return "Du bist ein hilfreicher AI-Assistent. Sei freundlich, professionell und unterstützend."
	}
}

func lengthClause(l ResponseLength) string {
	switch l {
	case LengthShort:
		return " Halte deine Antworten kurz und prägnant."
	case LengthLong:
		return " Antworte ausführlich und detailliert."
	default:
		return " Gib ausgewogene, mittellange Antworten."
	}
}

func formalityClause(f Formality) string {
	switch f {
	case FormalityFormal:
		return " Verwende eine formelle Anrede (Sie) und professionelle Sprache."
	case FormalityMixed:
		return " Passe die Formalität an den Kontext der Frage an."
	default:
		return " Verwende eine lockere Anrede (Du) und entspannte Sprache."
	}
}

func depthClause(d Depth) string {
	switch d {
	case DepthBasic:
		return " Erkläre Konzepte auf einem grundlegenden Niveau für Einsteiger."
	case DepthAdvanced:
		return " Erkläre Konzepte auf einem fortgeschrittenen Niveau mit technischen Details."
	default:
		return " Erkläre Konzepte auf einem mittleren Niveau mit angemessenen Details."
	}
}

const (
	codeClause          = " Bevorzuge technische Lösungen und Code-Beispiele wo angebracht."
	examplesClause      = " Gib viele praktische Beispiele zur Veranschaulichung."
	stepByStepClause    = " Teile komplexe Prozesse in klare Schritte auf."
	clarificationClause = " Frage bei unklaren oder mehrdeutigen Anfragen nach Präzisierungen."
	languageClause      = " Antworte auf Deutsch."
)

// =============================================================================
// BUILDER
// =============================================================================

// Build turns settings into the German system directive. Unknown enum values
// fall back to the default clause. Build never fails.
func Build(s BotSettings) string {
	var sb strings.Builder
	sb.WriteString(personalitySentence(s.Personality))
	sb.WriteString(lengthClause(s.ResponseLength))
	sb.WriteString(formalityClause(s.Formality))
	sb.WriteString(depthClause(s.ExplanationDepth))

	if s.CodeFocus {
		sb.WriteString(codeClause)
	}
	if s.ExamplesFocus {
		sb.WriteString(examplesClause)
	}
	if s.StepByStep {
		sb.WriteString(stepByStepClause)
	}
	if s.AskClarifications {
		sb.WriteString(clarificationClause)
	}

	sb.WriteString(languageClause)
	return sb.String()
}
