package client

import "time"

const noticeLifetime = 5 * time.Second

type notice struct {
	text  string
	until time.Duration
}

// Notices is the short-lived join/leave log shown in the corner.
type Notices struct {
	items []notice
}

func (n *Notices) Add(now time.Duration, text string) {
	n.items = append(n.items, notice{text: text, until: now + noticeLifetime})
}

func (n *Notices) Expire(now time.Duration) {
	kept := n.items[:0]
	for _, item := range n.items {
		if item.until > now {
			kept = append(kept, item)
		}
	}
	n.items = kept
}

// Lines returns the live notices, oldest first.
func (n *Notices) Lines() []string {
	lines := make([]string, len(n.items))
	for i, item := range n.items {
		lines[i] = item.text
	}
	return lines
}
