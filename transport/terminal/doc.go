// Package terminal is a keyboard front end for playing a level locally.
//
// The grid is drawn with tcell using the same glyphs as the text view, with
// the letter labels dimmed. Commands go straight to an in-process engine;
// no server is involved.
//
// Keys:
//
//	W A S D, arrows   up, left, down, right
//	Q E Z C           up-left, up-right, down-left, down-right
//	X                 plant a bomb
//	F, space, Enter   detonate
//	R                 reset the level
//	Esc, Ctrl-C       quit
package terminal
