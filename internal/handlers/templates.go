package handlers

import (
	"fmt"
	"html/template"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"recipebox/internal/utils"

	"github.com/gin-contrib/multitemplate"
)

// Views are the page templates handlers render, relative to views/.
var Views = []string{
	"home.html",
	"error.html",
	"auth/login.html",
	"auth/signup.html",
	"auth/forgot_password.html",
	"auth/reset_password.html",
	"recipe/browse.html",
	"recipe/detail.html",
	"recipe/form.html",
	"category/list.html",
	"user/list.html",
	"user/profile.html",
	"user/edit.html",
}

// FuncMap is available in every template.
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"dict": func(values ...any) (map[string]any, error) {
			if len(values)%2 != 0 {
				return nil, fmt.Errorf("invalid dict call")
			}
			dict := make(map[string]any, len(values)/2)
			for i := 0; i < len(values); i += 2 {
				key, ok := values[i].(string)
				if !ok {
					return nil, fmt.Errorf("dict keys must be strings")
				}
				dict[key] = values[i+1]
			}
			return dict, nil
		},
		"add": func(a, b int) int { return a + b },
		"sub": func(a, b int) int { return a - b },
		"timeAgo": func(t time.Time) string {
			return utils.TimeAgo(t)
		},
		"minutes":  utils.FormatMinutes,
		"markdown": utils.RenderMarkdown,
		"excerpt": func(s string, limit int) string {
			return utils.PlainText(string(utils.RenderMarkdown(s)), limit)
		},
		"join": strings.Join,
		"capitalize": func(s string) string {
			if s == "" {
				return s
			}
			return strings.ToUpper(s[:1]) + s[1:]
		},
		"pageURL": pageURL,
	}
}

// pageURL links to page of path, keeping the other query parameters.
func pageURL(path string, query url.Values, page int) string {
	q := url.Values{}
	for k, v := range query {
		q[k] = v
	}
	q.Set("page", strconv.Itoa(page))
	return path + "?" + q.Encode()
}

// LoadTemplates builds one template set per view: every layout and partial
// plus the view itself.
func LoadTemplates(templatesDir string) (multitemplate.Renderer, error) {
	r := multitemplate.NewRenderer()

	layouts, err := filepath.Glob(filepath.Join(templatesDir, "layouts", "*.html"))
	if err != nil {
		return nil, err
	}
	partials, err := filepath.Glob(filepath.Join(templatesDir, "partials", "*.html"))
	if err != nil {
		return nil, err
	}
	if len(layouts) == 0 {
		return nil, fmt.Errorf("no layouts found in %s", templatesDir)
	}

	funcMap := FuncMap()
	for _, view := range Views {
		files := make([]string, 0, len(layouts)+len(partials)+1)
		files = append(files, layouts...)
		files = append(files, partials...)
		files = append(files, filepath.Join(templatesDir, "views", view))
		r.AddFromFilesFuncs(view, funcMap, files...)
	}
	return r, nil
}
