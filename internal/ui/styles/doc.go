// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the visual styling for the sessionchat terminal views.

Colors use Lip Gloss AdaptiveColor for automatic light/dark terminal detection:

  - Cyan - headings and the user label
  - Purple - the assistant label and the focused input
  - Emerald / Amber - remote and offline mode
  - Rose - errors

Theme bundles the styles of the chat view; NewTheme detects the terminal
profile once at startup.
*/
package styles
