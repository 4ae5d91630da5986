package htmlmd

import "github.com/PuerkitoBio/goquery"

// flattenLinks replaces every <a> element with its children, discarding the
// link target. Nested anchors are handled in document order. It returns the
// number of anchors removed.
func flattenLinks(doc *goquery.Document) int {
	links := doc.Find("a")
	links.Each(func(_ int, a *goquery.Selection) {
		if contents := a.Contents(); contents.Length() > 0 {
			contents.Unwrap()
			return
		}
		a.Remove()
	})
	return links.Length()
}
