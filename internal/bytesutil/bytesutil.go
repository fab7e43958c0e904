package bytesutil

// Package bytesutil provides byte-sequence search and split primitives for
// parsers that must never round-trip binary content through text decoding.

// Index returns the index of the first occurrence of pattern in buf at or
// after from, or -1 if pattern is not present. An empty pattern matches at
// from (clamped to len(buf)).
func Index(buf, pattern []byte, from int) int {
	if from < 0 {
		from = 0
	}
	if from > len(buf) {
		return -1
	}
	if len(pattern) == 0 {
		return from
	}
	// Naive scan is fine here: patterns are short boundary/CRLF tokens and
	// bodies are size-capped upstream.
	last := len(buf) - len(pattern)
	for i := from; i <= last; i++ {
		if buf[i] != pattern[0] {
			continue
		}
		if matchAt(buf, pattern, i) {
			return i
		}
	}
	return -1
}

func matchAt(buf, pattern []byte, at int) bool {
	for j := 1; j < len(pattern); j++ {
		if buf[at+j] != pattern[j] {
			return false
		}
	}
	return true
}

// Split slices buf around each occurrence of delim, operating purely on byte
// sequences. The returned sub-slices alias buf; callers must copy if they
// outlive it. An empty delim returns the whole buffer as a single segment.
func Split(buf, delim []byte) [][]byte {
	if len(delim) == 0 {
		return [][]byte{buf}
	}
	var out [][]byte
	start := 0
	for {
		i := Index(buf, delim, start)
		if i < 0 {
			out = append(out, buf[start:])
			return out
		}
		out = append(out, buf[start:i])
		start = i + len(delim)
	}
}

// HasPrefix reports whether buf begins with prefix.
func HasPrefix(buf, prefix []byte) bool {
	return len(buf) >= len(prefix) && matchFull(buf[:len(prefix)], prefix)
}

func matchFull(a, b []byte) bool {
	for i := range b {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// TrimSuffix returns buf without the trailing suffix if present.
func TrimSuffix(buf, suffix []byte) []byte {
	n := len(buf) - len(suffix)
	if n >= 0 && matchFull(buf[n:], suffix) {
		return buf[:n]
	}
	return buf
}
