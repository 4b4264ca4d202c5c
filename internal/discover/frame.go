package discover

// FilterFunc is the per-URL recursion filter contract of spec.md §6:
// given a candidate child URL, the recursion level it would enter, and
// the current ancestor set, return whether to keep it. Errors are not
// part of the contract; a panicking callback propagates to the caller
// unmodified (spec.md §7, "user callback error").
type FilterFunc func(rawURL string, level int, ancestors map[string]struct{}) bool

// ListFilterFunc is the list-level recursion filter contract of spec.md
// §6: given an index's full declared child list, return a (possibly
// re-ordered) subset. Applied before FilterFunc.
type ListFilterFunc func(urls []string, level int, ancestors map[string]struct{}) []string

// MaxDepth bounds recursion depth (spec.md §4.8). The depth counter
// increments when entering any index-type child, including robots.txt.
const MaxDepth = 10

// Frame is the recursion state threaded through spec.md §4.8: the depth
// at which a candidate child would be entered, the final URLs of every
// enclosing sitemap, and the two filter callbacks.
type Frame struct {
	Depth      int
	Ancestors  map[string]struct{}
	URLFilter  FilterFunc
	ListFilter ListFilterFunc
}

// RootFrame builds the frame for a fresh sitemap_tree_for_homepage call:
// depth 0, an empty ancestor set.
func RootFrame(urlFilter FilterFunc, listFilter ListFilterFunc) Frame {
	return Frame{
		Depth:      0,
		Ancestors:  map[string]struct{}{},
		URLFilter:  urlFilter,
		ListFilter: listFilter,
	}
}

// descend returns the frame a child entered via finalURL would carry
// forward to its own children: depth+1, ancestors plus finalURL.
func (f Frame) descend(finalURL string) Frame {
	ancestors := make(map[string]struct{}, len(f.Ancestors)+1)
	for a := range f.Ancestors {
		ancestors[a] = struct{}{}
	}
	ancestors[finalURL] = struct{}{}
	return Frame{
		Depth:      f.Depth + 1,
		Ancestors:  ancestors,
		URLFilter:  f.URLFilter,
		ListFilter: f.ListFilter,
	}
}

func (f Frame) isAncestor(u string) bool {
	_, ok := f.Ancestors[u]
	return ok
}
