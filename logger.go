/* Copyright (c) 2017 Jeffrey Massung
 *
 * This software is provided 'as-is', without any express or implied
 * warranty.  In no event will the authors be held liable for any damages
 * arising from the use of this software.
 *
 * Permission is granted to anyone to use this software for any purpose,
 * including commercial applications, and to alter it and redistribute it
 * freely, subject to the following restrictions:
 *
 * 1. The origin of this software must not be misrepresented; you must not
 *    claim that you wrote the original software. If you use this software
 *    in a product, an acknowledgment in the product documentation would be
 *    appreciated but is not required.
 *
 * 2. Altered source versions must be plainly marked as such, and must not be
 *    misrepresented as being the original software.
 *
 * 3. This notice may not be removed or altered from any source distribution.
 */

package main

import (
	"bufio"
	"io"
	"strings"
	"sync"
)

// maxLines is the most lines a Logger keeps; older lines are dropped.
const maxLines = 1000

// Logger is an output log that can be viewed and scrolled.
type Logger struct {
	mu sync.Mutex

	// buf contains each line of logged text.
	buf []string

	// pos is the current user read position within the log.
	pos int
}

// NewLog creates a new Logger.
func NewLog() *Logger {
	return &Logger{
		buf: make([]string, 0, 100),
	}
}

// Log outputs a new line to the log.
func (l *Logger) Log(s ...string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.append(strings.Join(s, " "))
}

// Logln outputs a new line to the log, with an empty line prefixed.
func (l *Logger) Logln(s ...string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.append("", strings.Join(s, " "))
}

// append must be called with the lock held.
func (l *Logger) append(lines ...string) {
	scroll := l.pos == len(l.buf)

	l.buf = append(l.buf, lines...)

	// drop the oldest lines, keeping the read position on the same line
	if n := len(l.buf) - maxLines; n > 0 {
		l.buf = append(l.buf[:0], l.buf[n:]...)
		l.pos = max(l.pos-n, 0)
	}

	if scroll {
		l.pos = len(l.buf)
	}
}

// Capture logs every line read from r until it's exhausted.
func (l *Logger) Capture(r io.Reader) {
	scanner := bufio.NewScanner(r)

	for scanner.Scan() {
		l.Log(scanner.Text())
	}
}

// Window returns up to n lines ending at the read position.
func (l *Logger) Window(n int) []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	start := max(l.pos-n, 0)
	end := min(start+n, len(l.buf))

	// copy so the caller can't race later appends
	return append([]string(nil), l.buf[start:end]...)
}

// Home scrolls the log to the beginning.
func (l *Logger) Home() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.pos = 0
}

// End scrolls the log to the end.
func (l *Logger) End() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.pos = len(l.buf)
}

// ScrollUp scrolls the log back one line.
func (l *Logger) ScrollUp() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.pos = max(l.pos-1, 0)
}

// ScrollDown scrolls the log forward one line. A full window is always
// shown when there are enough lines.
func (l *Logger) ScrollDown(windowSize int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.pos++

	if l.pos <= windowSize {
		l.pos = windowSize + 1
	}
	if l.pos >= len(l.buf) {
		l.pos = len(l.buf)
	}
}
