package ui

import (
	"fmt"
	"io"
	"strings"
	"sync"
)

// ProgressBar shows how many found releases have been reported. The total
// may change between updates.
type ProgressBar struct {
	mu     sync.Mutex
	w      io.Writer
	label  string
	width  int
	done   int
	total  int
	closed bool
}

// NewProgressBar creates a progress bar writing to w
func NewProgressBar(w io.Writer, label string) *ProgressBar {
	return &ProgressBar{w: w, label: label, width: 30}
}

// Update sets progress to done out of total and redraws.
func (p *ProgressBar) Update(done, total int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed || total <= 0 {
		return
	}
	if done > total {
		done = total
	}
	p.done, p.total = done, total
	p.render()
}

// Finish ends the line.
func (p *ProgressBar) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}
	p.closed = true
	if p.total > 0 {
		fmt.Fprintln(p.w)
	}
}

func (p *ProgressBar) render() {
	percent := float64(p.done) / float64(p.total) * 100
	if !IsTerminal() {
		fmt.Fprintf(p.w, "\r%s: %d/%d (%.0f%%)", p.label, p.done, p.total, percent)
		return
	}

	filled := p.width * p.done / p.total
	bar := strings.Repeat("█", filled) + strings.Repeat("░", p.width-filled)
	fmt.Fprintf(p.w, "\r%s [%s] %d/%d (%.0f%%)", p.label, bar, p.done, p.total, percent)
}
