package search

import "github.com/poiesic/usecasegen/core"

// SearchMonitor provides hooks to observe the search process.
type SearchMonitor interface {
	Start(collection, query string, words []string)
	AfterPage(examined int)
	Hit(item core.Item, fields []string)
	Finish(results []Result)
}

// noopMonitor is a no-op implementation of SearchMonitor
type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_, _ string, _ []string)   {}
func (n *noopMonitor) AfterPage(_ int)                 {}
func (n *noopMonitor) Hit(_ core.Item, _ []string)     {}
func (n *noopMonitor) Finish(_ []Result)               {}
