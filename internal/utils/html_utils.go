package utils

import (
	"html/template"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// EnhanceHTMLContent adds lazy loading and a fallback to images and numbers
// the steps of ordered lists so the detail page can link to them.
func EnhanceHTMLContent(htmlStr string) template.HTML {
	if htmlStr == "" {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlStr))
	if err != nil {
		return template.HTML(htmlStr)
	}

	doc.Find("img").Each(func(i int, s *goquery.Selection) {
		s.SetAttr("referrerpolicy", "no-referrer")
		s.SetAttr("loading", "lazy")
		s.SetAttr("onerror", "this.onerror=null; this.src='/static/img/recipe-placeholder.svg'")
	})

	step := 0
	doc.Find("ol > li").Each(func(i int, s *goquery.Selection) {
		step++
		s.SetAttr("id", "step-"+strconv.Itoa(step))
		s.AddClass("recipe-step")
	})

	// goquery wraps fragments in html/body, keep only the body content
	html, _ := doc.Find("body").Html()
	if html == "" {
		html, _ = doc.Html()
	}

	return template.HTML(html)
}

// PlainText strips markup, for meta descriptions and card excerpts.
func PlainText(htmlStr string, limit int) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlStr))
	if err != nil {
		return ""
	}
	text := strings.Join(strings.Fields(doc.Text()), " ")
	if limit > 0 && len([]rune(text)) > limit {
		text = string([]rune(text)[:limit]) + "…"
	}
	return text
}
