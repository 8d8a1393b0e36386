// Package key defines key events as delivered by the terminal front-end.
//
//   - Key: a special key, or KeyRune for characters
//   - Modifier: Ctrl, Alt and Shift
//   - Event: one key press with its modifiers and timestamp
//
// Keys can be written in vi notation ("<Esc>", "<C-r>", "<Space>") and
// whole sequences parsed with ParseSequence, which the input tests rely on.
package key
