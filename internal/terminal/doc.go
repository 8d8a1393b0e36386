// Package terminal is the tcell front-end of the editor.
//
// A Screen draws app.View values and turns terminal key presses into
// key.Event values:
//
//	scr, err := terminal.New()
//	if err != nil {
//		return err
//	}
//	if err := scr.Init(); err != nil {
//		return err
//	}
//	defer scr.Close()
//
//	a, _ := app.New(cfg, path, app.WithRenderer(scr))
//	return a.Run(ctx, scr.Keys(ctx))
//
// The screen layout, top to bottom, is the text area with a line-number
// gutter, an optional output panel, the status line and the message line.
// Completion candidates are drawn in a popup below the cursor.
package terminal
