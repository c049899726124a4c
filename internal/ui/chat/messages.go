// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/jeranaias/sessionchat/internal/reply"
)

// =============================================================================
// PIPELINE MESSAGES
// =============================================================================

// ReplyEventMsg carries one pipeline progress event.
type ReplyEventMsg struct {
	Event reply.Event
}

// ReplyDoneMsg signals that a submission finished.
type ReplyDoneMsg struct {
	Result *reply.Result
	Err    error
}

// =============================================================================
// DOCUMENT MESSAGES
// =============================================================================

// DocumentReloadedMsg signals that a session document changed on disk and
// was re-read.
type DocumentReloadedMsg struct {
	Name string
}
