package handlers

import (
	"encoding/xml"
	"fmt"
	"net/http"
	"strings"
	"time"

	"recipebox/internal/models"
	"recipebox/internal/store"
	"recipebox/internal/utils"

	"github.com/gin-gonic/gin"
)

const (
	sitemapRecipeLimit = 500
	sitemapUserLimit   = 500
	feedItemLimit      = 20
)

type SEOHandler struct {
	*Deps
}

func NewSEOHandler(d *Deps) *SEOHandler {
	return &SEOHandler{Deps: d}
}

func (h *SEOHandler) siteURL() string {
	return strings.TrimRight(h.Config.SiteURL, "/")
}

// RobotsTxt - /robots.txt
func (h *SEOHandler) RobotsTxt(c *gin.Context) {
	content := fmt.Sprintf(`User-agent: *
Allow: /

Disallow: /dashboard
Disallow: /profile
Disallow: /recipes/new
Disallow: /recipes/saved
Disallow: /recipes/mine
Disallow: /login
Disallow: /signup
Disallow: /api/

Sitemap: %s/sitemap.xml
`, h.siteURL())

	c.Header("Content-Type", "text/plain; charset=utf-8")
	c.String(http.StatusOK, content)
}

type sitemapURL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq,omitempty"`
	Priority   string `xml:"priority,omitempty"`
}

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	Xmlns   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

// SitemapXML - /sitemap.xml
func (h *SEOHandler) SitemapXML(c *gin.Context) {
	ctx := c.Request.Context()
	site := h.siteURL()
	today := time.Now().Format("2006-01-02")

	set := urlSet{Xmlns: "http://www.sitemaps.org/schemas/sitemap/0.9"}
	add := func(path, lastmod, freq, priority string) {
		set.URLs = append(set.URLs, sitemapURL{Loc: site + path, LastMod: lastmod, ChangeFreq: freq, Priority: priority})
	}
	add("/", today, "daily", "1.0")
	add("/recipes/browse", today, "hourly", "0.9")
	add("/categories", today, "weekly", "0.8")
	add("/users", today, "daily", "0.6")

	recipes, err := h.Store.ListRecipes(ctx, store.RecipeFilter{Order: store.OrderNewest, Limit: sitemapRecipeLimit})
	if err != nil {
		h.jsonError(c, err)
		return
	}
	for _, r := range recipes {
		// newer recipes change more often
		freq, priority := "weekly", "0.6"
		if utils.DaysSince(r.CreatedAt) < 7 {
			freq, priority = "daily", "0.8"
		}
		add(recipeURL(r.ID), r.UpdatedAt.Format("2006-01-02"), freq, priority)
	}

	users, err := h.Store.ListUsers(ctx, store.UserFilter{Limit: sitemapUserLimit})
	if err != nil {
		h.jsonError(c, err)
		return
	}
	for _, u := range users {
		add("/users/"+u.Username, u.UpdatedAt.Format("2006-01-02"), "weekly", "0.5")
	}

	c.Header("Content-Type", "application/xml; charset=utf-8")
	c.String(http.StatusOK, xml.Header+mustXML(set))
}

type rssItem struct {
	Title       string   `xml:"title"`
	Link        string   `xml:"link"`
	Description string   `xml:"description"`
	Author      string   `xml:"author,omitempty"`
	Categories  []string `xml:"category"`
	PubDate     string   `xml:"pubDate"`
	GUID        string   `xml:"guid"`
}

type rssChannel struct {
	Title         string    `xml:"title"`
	Link          string    `xml:"link"`
	Description   string    `xml:"description"`
	Language      string    `xml:"language"`
	LastBuildDate string    `xml:"lastBuildDate"`
	Items         []rssItem `xml:"item"`
}

type rssFeed struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

// RSSFeed - /feed.xml, the newest recipes as RSS 2.0.
func (h *SEOHandler) RSSFeed(c *gin.Context) {
	site := h.siteURL()
	recipes, err := h.Store.ListRecipes(c.Request.Context(), store.RecipeFilter{Order: store.OrderNewest, Limit: feedItemLimit})
	if err != nil {
		h.jsonError(c, err)
		return
	}

	feed := rssFeed{Version: "2.0", Channel: rssChannel{
		Title:         "RecipeBox",
		Link:          site,
		Description:   "The newest recipes shared on RecipeBox",
		Language:      "en",
		LastBuildDate: time.Now().Format(time.RFC1123Z),
	}}
	for i := range recipes {
		feed.Channel.Items = append(feed.Channel.Items, recipeItem(site, &recipes[i]))
	}

	c.Header("Content-Type", "application/rss+xml; charset=utf-8")
	c.String(http.StatusOK, xml.Header+mustXML(feed))
}

func recipeItem(site string, r *models.Recipe) rssItem {
	link := site + recipeURL(r.ID)
	categories := make([]string, 0, len(r.Categories))
	for _, cat := range r.Categories {
		categories = append(categories, cat.Name)
	}
	return rssItem{
		Title:       r.Title,
		Link:        link,
		Description: utils.PlainText(string(utils.RenderMarkdown(r.Description)), 300),
		Author:      r.User.Username,
		Categories:  categories,
		PubDate:     r.CreatedAt.Format(time.RFC1123Z),
		GUID:        link,
	}
}

// mustXML marshals values built from the types above, which cannot fail.
func mustXML(v any) string {
	out, err := xml.MarshalIndent(v, "", "  ")
	if err != nil {
		panic(err)
	}
	return string(out)
}
