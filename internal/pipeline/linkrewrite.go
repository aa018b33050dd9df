package pipeline

import (
	"net/url"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// DefaultLinkBase is where relative links in JUSTEL exports point.
const DefaultLinkBase = "https://www.ejustice.just.fgov.be/cgi_loi/"

// RewriteRelativeLinks makes the links of a preview page usable outside
// the site they were scraped from.
//
// With a URL base (http or https), a[href] and img[src] values that are
// relative or root-relative are resolved against it. With a directory
// base, relative paths become file:// URLs under that directory; paths
// escaping it are left alone. An empty base returns the content unchanged.
// Anchors, data: URIs and absolute URLs are never touched.
func RewriteRelativeLinks(htmlContent, base string) (string, error) {
	if base == "" {
		return htmlContent, nil
	}

	resolve, err := resolverFor(base)
	if err != nil {
		return "", err
	}

	doc, isFragment, err := parseHTML(htmlContent)
	if err != nil {
		return "", err
	}
	rewriteLinks(doc, resolve)
	return renderHTML(doc, isFragment)
}

// resolverFor returns a function mapping a link to its rewritten form,
// reporting false when the link must stay as is.
func resolverFor(base string) (func(string) (string, bool), error) {
	if u, err := url.Parse(base); err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		return func(link string) (string, bool) {
			if !isRewritable(link, true) {
				return "", false
			}
			ref, err := url.Parse(link)
			if err != nil {
				return "", false
			}
			return u.ResolveReference(ref).String(), true
		}, nil
	}

	dir, err := filepath.Abs(base)
	if err != nil {
		return nil, err
	}
	return func(link string) (string, bool) {
		if !isRewritable(link, false) {
			return "", false
		}
		abs := filepath.Join(dir, link)
		if !isPathUnderDir(abs, dir) {
			return "", false
		}
		return pathToFileURL(abs), true
	}, nil
}

// parseHTML parses a full document or a body fragment. Fragments are
// returned under a synthetic document node.
func parseHTML(content string) (*html.Node, bool, error) {
	lower := strings.ToLower(strings.TrimSpace(content))
	if strings.HasPrefix(lower, "<!doctype") || strings.HasPrefix(lower, "<html") {
		doc, err := html.Parse(strings.NewReader(content))
		return doc, false, err
	}

	body := &html.Node{Type: html.ElementNode, DataAtom: atom.Body, Data: "body"}
	nodes, err := html.ParseFragment(strings.NewReader(content), body)
	if err != nil {
		return nil, true, err
	}
	container := &html.Node{Type: html.DocumentNode}
	for _, n := range nodes {
		container.AppendChild(n)
	}
	return container, true, nil
}

// renderHTML serializes doc; a fragment renders its children only.
func renderHTML(doc *html.Node, isFragment bool) (string, error) {
	var buf strings.Builder
	if !isFragment {
		if err := html.Render(&buf, doc); err != nil {
			return "", err
		}
		return buf.String(), nil
	}
	for c := doc.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}

func rewriteLinks(n *html.Node, resolve func(string) (string, bool)) {
	if n.Type == html.ElementNode {
		switch n.DataAtom {
		case atom.A:
			rewriteAttr(n, "href", resolve)
		case atom.Img:
			rewriteAttr(n, "src", resolve)
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		rewriteLinks(c, resolve)
	}
}

func rewriteAttr(n *html.Node, key string, resolve func(string) (string, bool)) {
	for i, a := range n.Attr {
		if a.Key != key {
			continue
		}
		if v, ok := resolve(strings.TrimSpace(a.Val)); ok {
			n.Attr[i].Val = v
		}
	}
}

// isRewritable reports whether link is relative. Root-relative paths
// ("/cgi_loi/...") count only when resolving against a site.
func isRewritable(link string, rootRelative bool) bool {
	if link == "" || strings.HasPrefix(link, "#") || strings.HasPrefix(link, "//") {
		return false
	}
	lower := strings.ToLower(link)
	for _, scheme := range []string{"http:", "https:", "file:", "data:", "mailto:", "javascript:"} {
		if strings.HasPrefix(lower, scheme) {
			return false
		}
	}
	if strings.HasPrefix(link, "/") || filepath.IsAbs(link) {
		return rootRelative
	}
	return true
}

// isPathUnderDir reports whether absPath is dir or lies below it.
func isPathUnderDir(absPath, dir string) bool {
	cleanDir := filepath.Clean(dir)
	if !strings.HasSuffix(cleanDir, string(filepath.Separator)) {
		cleanDir += string(filepath.Separator)
	}
	return strings.HasPrefix(filepath.Clean(absPath)+string(filepath.Separator), cleanDir)
}

func pathToFileURL(absPath string) string {
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(absPath)}
	return u.String()
}
