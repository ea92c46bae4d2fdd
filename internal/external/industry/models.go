package industry

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/draeangela/industry-data-visualizer/internal/contracts"
)

var modelHrefRe = regexp.MustCompile(`/model/series/(\d+)`)

// parseModelMenu extracts models from the menu fragment.
// The fragment is a list of <li> groups; each group has a .dropdown-toggle caption
// and a nested <ul> of a.dropdown-item links to /model/series/{id}.
func parseModelMenu(html string) ([]contracts.IndustryModel, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	models := make([]contracts.IndustryModel, 0)
	seen := make(map[string]bool)

	doc.Find("a.dropdown-item").Each(func(i int, link *goquery.Selection) {
		href, _ := link.Attr("href")
		match := modelHrefRe.FindStringSubmatch(href)
		if match == nil {
			return
		}

		id := match[1]
		name := strings.TrimSpace(link.Text())
		if name == "" || seen[id] {
			return
		}
		seen[id] = true

		models = append(models, contracts.IndustryModel{
			ID:    id,
			Name:  name,
			Group: groupCaption(link),
		})
	})

	return models, nil
}

// groupCaption returns the caption of the outermost menu entry containing link
func groupCaption(link *goquery.Selection) string {
	top := link.ParentsFiltered("li").Last()
	if top.Length() == 0 {
		return ""
	}
	caption := top.ChildrenFiltered(".dropdown-toggle").First()
	return strings.TrimSpace(caption.Text())
}
