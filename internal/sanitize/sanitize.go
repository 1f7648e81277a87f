// Package sanitize strips control bytes from captured process output that
// would corrupt downstream JSON/text handling, while preserving the
// control sequences that carry visual meaning: newline, carriage return,
// tab, and (in PTY mode) ANSI CSI escape sequences.
package sanitize

// Bytes removes non-printable control bytes from data. When ptyMode is
// true, ANSI CSI sequences (ESC '[' ... final-byte) are passed through
// unmolested so terminal coloring/cursor control survives; in pipe mode
// they are not expected to appear but are tolerated the same way, since a
// program may still emit color codes even without a PTY attached.
func Bytes(data []byte, ptyMode bool) []byte {
	out := make([]byte, 0, len(data))
	i := 0
	for i < len(data) {
		b := data[i]

		if b == 0x1b && i+1 < len(data) && data[i+1] == '[' {
			seq, n := scanCSI(data[i:])
			out = append(out, seq...)
			i += n
			continue
		}

		switch {
		case b == '\n' || b == '\r' || b == '\t':
			out = append(out, b)
		case b < 0x20 || b == 0x7f:
			// drop: non-printable control byte with no visual meaning
		default:
			out = append(out, b)
		}
		i++
	}
	return out
}

// scanCSI scans an ANSI CSI sequence starting at data[0]==ESC, data[1]=='['.
// It returns the sequence bytes (ESC '[' params... final-byte) and its
// length. If the sequence is unterminated (truncated mid-stream), it is
// returned as-is up to the end of the slice.
func scanCSI(data []byte) ([]byte, int) {
	i := 2 // past ESC '['
	for i < len(data) {
		b := data[i]
		// final bytes of a CSI sequence are in 0x40-0x7E
		if b >= 0x40 && b <= 0x7e {
			return data[:i+1], i + 1
		}
		i++
	}
	return data, len(data)
}
