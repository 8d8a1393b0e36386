// Package mode implements the modal input state machine.
//
// A Machine owns one document's modal state: the current Mode (Normal,
// Insert, Visual, VisualLine, Command), the vim.Parser holding a pending
// count, register and operator, the register store, the last repeatable
// change and the Insert-mode completion list.
//
// HandleKey feeds one key event through the current mode. Edits are applied
// to the engine.Document directly; anything that needs the outside world
// (saving, quitting, running tools, asking for completions) comes back as
// an ordered list of Effects for the application to carry out. HandleKey
// never blocks and never fails: keys that do not form a command are
// discarded.
//
// # Mode Lifecycle
//
// When switching modes:
//  1. Current mode's Exit() is called
//  2. New mode's Enter() is called
//  3. Mode change callbacks are notified
//
// Insert mode opens an undo group on Enter and closes it on Exit, so one
// Insert session undoes as a single step. Commands that edit before
// entering Insert mode (c, o, O) open the group first.
//
// # Prefix commands
//
// In Normal mode Space arms a prefix; the next key, if it arrives within
// the prefix timeout measured between event timestamps, selects a command:
//
//	Space format      q quit       s save        a save as
//	y     copy all    t test       T test (optimized)
//	l     start LSP   c compile    k cancel job
//
// # Search
//
// '/' opens the command line under a search prompt. Enter jumps to the
// next literal match after the cursor; n and N repeat the last pattern
// forward and backward, wrapping around the document.
package mode
