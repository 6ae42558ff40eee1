package repository

import "iter"

// splitLines yields the lines of text, splitting on "\n", "\r\n" and "\r".
// Terminators are dropped and a trailing terminator does not produce an empty last line.
func splitLines(text string) iter.Seq[string] {
	return func(yield func(string) bool) {
		start := 0
		for i := 0; i < len(text); i++ {
			switch text[i] {
			case '\n':
				if !yield(text[start:i]) {
					return
				}
				start = i + 1
			case '\r':
				if !yield(text[start:i]) {
					return
				}
				if i+1 < len(text) && text[i+1] == '\n' {
					i++
				}
				start = i + 1
			}
		}
		if start < len(text) {
			yield(text[start:])
		}
	}
}
