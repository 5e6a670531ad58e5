package markdown

import "go.abhg.dev/goldmark/wikilink"

// pageResolver links [[Target#frag]] to "Target#frag" as written. Entries
// are served as directories, so no extension is appended.
type pageResolver struct{}

func (pageResolver) ResolveWikilink(n *wikilink.Node) ([]byte, error) {
	dest := make([]byte, 0, len(n.Target)+1+len(n.Fragment))
	dest = append(dest, n.Target...)
	if len(n.Fragment) > 0 {
		dest = append(dest, '#')
		dest = append(dest, n.Fragment...)
	}
	return dest, nil
}
