// Package interact implements the three human-in-the-loop protocols of a
// calibration run: mask selection, fit-order review and output-name
// conflict resolution. Prompter talks to a terminal and renders plots to
// PNG files; Scripted replays fixed answers for headless runs and tests.
package interact
