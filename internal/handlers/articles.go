// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"encoding/xml"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"inkwell/internal/cache"
	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/render"
	"inkwell/internal/session"
	"inkwell/internal/store"
)

// Articles groups the handlers for article listings, detail pages and
// authoring. Sidebar data shared by every listing is held in the
// fragment cache between rebuilds.
type Articles struct {
	renderer   *render.Renderer
	sessions   *session.Store
	articles   *store.ArticleStore
	categories *store.CategoryStore
	tags       *store.TagStore
	comments   *store.CommentStore
	ratings    *store.RatingStore
	viewers    *store.ViewerStore
	profiles   *store.ProfileStore
	fragments  *cache.FragmentCache
	siteURL    string
}

// NewArticles creates the article handler group.
func NewArticles(
	renderer *render.Renderer,
	sessions *session.Store,
	articles *store.ArticleStore,
	categories *store.CategoryStore,
	tags *store.TagStore,
	comments *store.CommentStore,
	ratings *store.RatingStore,
	viewers *store.ViewerStore,
	profiles *store.ProfileStore,
	fragments *cache.FragmentCache,
	siteURL string,
) *Articles {
	return &Articles{
		renderer:   renderer,
		sessions:   sessions,
		articles:   articles,
		categories: categories,
		tags:       tags,
		comments:   comments,
		ratings:    ratings,
		viewers:    viewers,
		profiles:   profiles,
		fragments:  fragments,
		siteURL:    siteURL,
	}
}

// sidebarData is the shared sidebar fragment, cached as one JSON blob.
type sidebarData struct {
	Categories     []models.Category `json:"categories"`
	PopularTags    []models.Tag      `json:"popular_tags"`
	LatestComments []models.Comment  `json:"latest_comments"`
}

const sidebarFragmentKey = "sidebar"

// sidebar returns the sidebar data, rebuilding it on cache miss. A
// database error on rebuild is logged and leaves the section empty
// rather than failing the page.
func (h *Articles) sidebar(ctx context.Context) sidebarData {
	var sb sidebarData
	if h.fragments.Get(ctx, sidebarFragmentKey, &sb) {
		return sb
	}

	var err error
	if sb.Categories, err = h.categories.FlatTree(ctx); err != nil {
		slog.Error("sidebar categories failed", "error", err)
	}
	if sb.PopularTags, err = h.tags.Popular(ctx, 10); err != nil {
		slog.Error("sidebar popular tags failed", "error", err)
	}
	if sb.LatestComments, err = h.comments.Latest(ctx, 5); err != nil {
		slog.Error("sidebar latest comments failed", "error", err)
	}

	h.fragments.Set(ctx, sidebarFragmentKey, sb)
	return sb
}

// listing renders the shared article listing template with the sidebar
// attached.
func (h *Articles) listing(w http.ResponseWriter, r *http.Request, title, heading string, articles []models.Article, page, pages int) {
	sb := h.sidebar(r.Context())
	h.renderer.Page(w, r, "home", &render.PageData{
		Title:   title,
		Flashes: flashes(h.sessions, r),
		Data: map[string]any{
			"Heading":        heading,
			"Articles":       articles,
			"Page":           page,
			"Pages":          pages,
			"Categories":     sb.Categories,
			"PopularTags":    sb.PopularTags,
			"LatestComments": sb.LatestComments,
		},
	})
}

// morePages turns an over-fetched result slice (pageSize+1 rows) into
// the visible slice and a page count for filtered listings, where a
// full COUNT per filter is not worth a second query.
func morePages(articles []models.Article, page int) ([]models.Article, int) {
	if len(articles) > pageSize {
		return articles[:pageSize], page + 1
	}
	return articles, page
}

// Home renders the front page: pinned articles first, then newest.
func (h *Articles) Home(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	page := parsePage(r)

	articles, err := h.articles.ListPublished(ctx, pageSize, (page-1)*pageSize)
	if err != nil {
		slog.Error("list published failed", "error", err)
		serverError(h.renderer, w, r)
		return
	}
	total, err := h.articles.CountPublished(ctx)
	if err != nil {
		slog.Error("count published failed", "error", err)
		serverError(h.renderer, w, r)
		return
	}

	h.listing(w, r, "", "", articles, page, pageCount(total))
}

// Detail renders a single article with its tags, rating, view count,
// comment tree and similar articles. Drafts are only visible to their
// author and to staff.
func (h *Articles) Detail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	article, err := h.articles.FindBySlug(ctx, chi.URLParam(r, "slug"))
	if err != nil {
		slog.Error("find article failed", "error", err)
		serverError(h.renderer, w, r)
		return
	}
	if article == nil {
		notFound(h.renderer, w, r)
		return
	}

	sess := middleware.SessionFromCtx(ctx)
	canEdit := sess != nil && (sess.UserID == article.AuthorID || sess.IsStaff)
	if !article.IsPublished() && !canEdit {
		notFound(h.renderer, w, r)
		return
	}

	if article.IsPublished() {
		if err := h.viewers.Track(ctx, article.ID, visitorUserID(r), middleware.ClientIP(r)); err != nil {
			slog.Error("track view failed", "error", err, "article_id", article.ID)
		}
	}

	article.ViewCount, err = h.viewers.CountForArticle(ctx, article.ID)
	if err != nil {
		slog.Error("count views failed", "error", err)
	}
	ratingSum, err := h.ratings.Sum(ctx, article.ID)
	if err != nil {
		slog.Error("rating sum failed", "error", err)
	}
	articleTags, err := h.tags.ForArticle(ctx, article.ID)
	if err != nil {
		slog.Error("article tags failed", "error", err)
	}
	comments, err := h.comments.TreeForArticle(ctx, article.ID)
	if err != nil {
		slog.Error("comment tree failed", "error", err)
	}
	commentCount, err := h.comments.CountForArticle(ctx, article.ID)
	if err != nil {
		slog.Error("comment count failed", "error", err)
	}
	similar, err := h.articles.Similar(ctx, article.ID, 5)
	if err != nil {
		slog.Error("similar articles failed", "error", err)
	}

	authorSlug := ""
	if p, err := h.profiles.FindByUserID(ctx, article.AuthorID); err == nil && p != nil {
		authorSlug = p.Slug
	}

	h.renderer.Page(w, r, "article", &render.PageData{
		Title:   article.Title,
		Flashes: flashes(h.sessions, r),
		Data: map[string]any{
			"Article":      article,
			"AuthorSlug":   authorSlug,
			"CanEdit":      canEdit,
			"Tags":         articleTags,
			"RatingSum":    ratingSum,
			"Comments":     comments,
			"CommentCount": commentCount,
			"Similar":      similar,
		},
	})
}

// Category renders the listing filtered to a category and all of its
// descendants.
func (h *Articles) Category(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	category, err := h.categories.FindBySlug(ctx, chi.URLParam(r, "slug"))
	if err != nil {
		slog.Error("find category failed", "error", err)
		serverError(h.renderer, w, r)
		return
	}
	if category == nil {
		notFound(h.renderer, w, r)
		return
	}

	ids, err := h.categories.Subtree(ctx, category.ID)
	if err != nil {
		slog.Error("category subtree failed", "error", err)
		serverError(h.renderer, w, r)
		return
	}

	page := parsePage(r)
	articles, err := h.articles.ListByCategories(ctx, ids, pageSize+1, (page-1)*pageSize)
	if err != nil {
		slog.Error("list by categories failed", "error", err)
		serverError(h.renderer, w, r)
		return
	}

	articles, pages := morePages(articles, page)
	h.listing(w, r, category.Title, category.Title, articles, page, pages)
}

// Tag renders the listing filtered to one tag.
func (h *Articles) Tag(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	tag, err := h.tags.FindBySlug(ctx, chi.URLParam(r, "tag"))
	if err != nil {
		slog.Error("find tag failed", "error", err)
		serverError(h.renderer, w, r)
		return
	}
	if tag == nil {
		notFound(h.renderer, w, r)
		return
	}

	page := parsePage(r)
	articles, err := h.articles.ListByTag(ctx, tag.Slug, pageSize+1, (page-1)*pageSize)
	if err != nil {
		slog.Error("list by tag failed", "error", err)
		serverError(h.renderer, w, r)
		return
	}

	articles, pages := morePages(articles, page)
	h.listing(w, r, "#"+tag.Name, "Tagged #"+tag.Name, articles, page, pages)
}

// Search renders full-text search results, best match first.
func (h *Articles) Search(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	// Empty queries go to the engine too; an empty tsquery matches
	// nothing, so the page comes back with no results.
	query := strings.TrimSpace(r.URL.Query().Get("do"))

	page := parsePage(r)
	articles, err := h.articles.Search(ctx, query, pageSize+1, (page-1)*pageSize)
	if err != nil {
		slog.Error("search failed", "error", err, "query", query)
		serverError(h.renderer, w, r)
		return
	}

	articles, pages := morePages(articles, page)
	h.listing(w, r, "Search", fmt.Sprintf("Results for %q", query), articles, page, pages)
}

// Feed renders articles by the authors the logged-in user follows.
func (h *Articles) Feed(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess := middleware.SessionFromCtx(ctx)

	profile, err := h.profiles.FindByUserID(ctx, sess.UserID)
	if err != nil || profile == nil {
		slog.Error("find own profile failed", "error", err, "user_id", sess.UserID)
		serverError(h.renderer, w, r)
		return
	}

	authorIDs, err := h.profiles.FollowingUserIDs(ctx, profile.ID)
	if err != nil {
		slog.Error("following ids failed", "error", err)
		serverError(h.renderer, w, r)
		return
	}

	var articles []models.Article
	page := parsePage(r)
	pages := page
	if len(authorIDs) > 0 {
		articles, err = h.articles.ListByAuthors(ctx, authorIDs, pageSize+1, (page-1)*pageSize)
		if err != nil {
			slog.Error("list by authors failed", "error", err)
			serverError(h.renderer, w, r)
			return
		}
		articles, pages = morePages(articles, page)
	}

	h.listing(w, r, "My feed", "From people you follow", articles, page, pages)
}

// CreatePage renders the empty article form.
func (h *Articles) CreatePage(w http.ResponseWriter, r *http.Request) {
	h.renderArticleForm(w, r, "New article", "/articles/create/", map[string]any{
		"Status": "published",
	})
}

// CreateSubmit creates an article from the form and redirects to it.
func (h *Articles) CreateSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess := middleware.SessionFromCtx(ctx)
	form := readArticleForm(r, sess.IsStaff)

	if msg := validateArticle(form.Title, form.ShortDescription, form.FullDescription); msg != "" {
		form.Error = msg
		h.renderArticleForm(w, r, "New article", "/articles/create/", form.data())
		return
	}

	article := form.model()
	article.AuthorID = sess.UserID

	created, err := h.articles.Create(ctx, article)
	if err != nil {
		slog.Error("create article failed", "error", err)
		serverError(h.renderer, w, r)
		return
	}
	if err := h.tags.SetForArticle(ctx, created.ID, form.TagNames); err != nil {
		slog.Error("set tags failed", "error", err, "article_id", created.ID)
	}
	h.fragments.Invalidate(ctx, sidebarFragmentKey)

	h.sessions.AddFlash(ctx, w, r, "Article created.")
	http.Redirect(w, r, created.URL(), http.StatusSeeOther)
}

// EditPage renders the article form pre-filled. Editing somebody
// else's article bounces back to it with a message instead of a 403,
// staff excepted.
func (h *Articles) EditPage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	article, ok := h.editable(w, r)
	if !ok {
		return
	}

	articleTags, err := h.tags.ForArticle(ctx, article.ID)
	if err != nil {
		slog.Error("article tags failed", "error", err)
	}
	names := make([]string, 0, len(articleTags))
	for _, t := range articleTags {
		names = append(names, t.Name)
	}

	thumbnail := ""
	if article.Thumbnail != nil {
		thumbnail = *article.Thumbnail
	}

	h.renderArticleForm(w, r, "Edit article", "/articles/"+article.Slug+"/update/", map[string]any{
		"Title":            article.Title,
		"CategoryID":       article.CategoryID,
		"ShortDescription": article.ShortDescription,
		"FullDescription":  article.FullDescription,
		"Thumbnail":        thumbnail,
		"TagList":          strings.Join(names, ", "),
		"Status":           string(article.Status),
		"Pinned":           article.Pinned,
	})
}

// EditSubmit applies the form to an existing article.
func (h *Articles) EditSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess := middleware.SessionFromCtx(ctx)

	article, ok := h.editable(w, r)
	if !ok {
		return
	}

	form := readArticleForm(r, sess.IsStaff)
	if msg := validateArticle(form.Title, form.ShortDescription, form.FullDescription); msg != "" {
		form.Error = msg
		h.renderArticleForm(w, r, "Edit article", "/articles/"+article.Slug+"/update/", form.data())
		return
	}

	updated := form.model()
	updated.ID = article.ID
	updated.Slug = article.Slug
	if !sess.IsStaff {
		updated.Pinned = article.Pinned
	}

	if err := h.articles.Update(ctx, updated, sess.UserID); err != nil {
		slog.Error("update article failed", "error", err, "article_id", article.ID)
		serverError(h.renderer, w, r)
		return
	}
	if err := h.tags.SetForArticle(ctx, article.ID, form.TagNames); err != nil {
		slog.Error("set tags failed", "error", err, "article_id", article.ID)
	}
	h.fragments.Invalidate(ctx, sidebarFragmentKey)

	h.sessions.AddFlash(ctx, w, r, "Article updated.")
	http.Redirect(w, r, article.URL(), http.StatusSeeOther)
}

// DeletePage renders the deletion confirmation.
func (h *Articles) DeletePage(w http.ResponseWriter, r *http.Request) {
	article, ok := h.editable(w, r)
	if !ok {
		return
	}
	h.renderer.Page(w, r, "article_delete", &render.PageData{
		Title: "Delete " + article.Title,
		Data:  map[string]any{"Article": article},
	})
}

// Delete removes an article and everything hanging off it.
func (h *Articles) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	article, ok := h.editable(w, r)
	if !ok {
		return
	}

	if err := h.articles.Delete(ctx, article.ID); err != nil {
		slog.Error("delete article failed", "error", err, "article_id", article.ID)
		serverError(h.renderer, w, r)
		return
	}
	h.fragments.Invalidate(ctx, sidebarFragmentKey)

	h.sessions.AddFlash(ctx, w, r, "Article deleted.")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// editable loads the article in the URL and checks it belongs to the
// current user (or that the user is staff). On a mismatch the visitor
// is sent back to the article with a message.
func (h *Articles) editable(w http.ResponseWriter, r *http.Request) (*models.Article, bool) {
	ctx := r.Context()
	sess := middleware.SessionFromCtx(ctx)

	article, err := h.articles.FindBySlug(ctx, chi.URLParam(r, "slug"))
	if err != nil {
		slog.Error("find article failed", "error", err)
		serverError(h.renderer, w, r)
		return nil, false
	}
	if article == nil {
		notFound(h.renderer, w, r)
		return nil, false
	}
	if article.AuthorID != sess.UserID && !sess.IsStaff {
		h.sessions.AddFlash(ctx, w, r, "You can only change your own articles.")
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return nil, false
	}
	return article, true
}

// renderArticleForm renders the shared article form with the category
// dropdown attached.
func (h *Articles) renderArticleForm(w http.ResponseWriter, r *http.Request, heading, action string, data map[string]any) {
	sess := middleware.SessionFromCtx(r.Context())

	categories, err := h.categories.FlatTree(r.Context())
	if err != nil {
		slog.Error("category tree failed", "error", err)
		serverError(h.renderer, w, r)
		return
	}

	base := map[string]any{
		"Heading":          heading,
		"Action":           action,
		"Categories":       categories,
		"ShowPinned":       sess != nil && sess.IsStaff,
		"Title":            "",
		"CategoryID":       int64(0),
		"ShortDescription": "",
		"FullDescription":  "",
		"Thumbnail":        "",
		"TagList":          "",
		"Status":           "published",
		"Pinned":           false,
		"Error":            "",
	}
	for k, v := range data {
		base[k] = v
	}

	h.renderer.Page(w, r, "article_form", &render.PageData{
		Title: heading,
		Data:  base,
	})
}

// articleForm carries the parsed article form fields.
type articleForm struct {
	Title            string
	CategoryID       int64
	ShortDescription string
	FullDescription  string
	Thumbnail        string
	TagList          string
	TagNames         []string
	Status           string
	Pinned           bool
	Error            string
}

// readArticleForm parses the create/edit form. Pinned is honored only
// for staff.
func readArticleForm(r *http.Request, isStaff bool) *articleForm {
	f := &articleForm{
		Title:            strings.TrimSpace(r.FormValue("title")),
		ShortDescription: strings.TrimSpace(r.FormValue("short_description")),
		FullDescription:  r.FormValue("full_description"),
		Thumbnail:        strings.TrimSpace(r.FormValue("thumbnail")),
		TagList:          r.FormValue("tags"),
		Status:           r.FormValue("status"),
		Pinned:           isStaff && r.FormValue("pinned") != "",
	}
	f.CategoryID, _ = strconv.ParseInt(r.FormValue("category_id"), 10, 64)
	if f.Status != string(models.ArticleStatusDraft) {
		f.Status = string(models.ArticleStatusPublished)
	}
	for _, name := range strings.Split(f.TagList, ",") {
		if name = strings.TrimSpace(name); name != "" {
			f.TagNames = append(f.TagNames, name)
		}
	}
	return f
}

// model converts the form into a store-ready article.
func (f *articleForm) model() *models.Article {
	a := &models.Article{
		Title:            f.Title,
		CategoryID:       f.CategoryID,
		ShortDescription: f.ShortDescription,
		FullDescription:  f.FullDescription,
		Status:           models.ArticleStatus(f.Status),
		Pinned:           f.Pinned,
	}
	if f.Thumbnail != "" {
		a.Thumbnail = &f.Thumbnail
	}
	return a
}

// data converts the form back into template data for re-rendering with
// an error.
func (f *articleForm) data() map[string]any {
	return map[string]any{
		"Title":            f.Title,
		"CategoryID":       f.CategoryID,
		"ShortDescription": f.ShortDescription,
		"FullDescription":  f.FullDescription,
		"Thumbnail":        f.Thumbnail,
		"TagList":          f.TagList,
		"Status":           f.Status,
		"Pinned":           f.Pinned,
		"Error":            f.Error,
	}
}

// sitemapURL is one <url> entry in the sitemap.
type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

// sitemapSet is the <urlset> root element.
type sitemapSet struct {
	XMLName xml.Name     `xml:"urlset"`
	Xmlns   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

// Sitemap serves sitemap.xml listing the front page, every published
// article and every category.
func (h *Articles) Sitemap(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	set := sitemapSet{
		Xmlns: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  []sitemapURL{{Loc: h.siteURL + "/"}},
	}

	articles, err := h.articles.ListAllPublished(ctx)
	if err != nil {
		slog.Error("sitemap articles failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	for _, a := range articles {
		set.URLs = append(set.URLs, sitemapURL{
			Loc:     h.siteURL + a.URL(),
			LastMod: a.UpdatedAt.Format("2006-01-02"),
		})
	}

	categories, err := h.categories.List(ctx)
	if err != nil {
		slog.Error("sitemap categories failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	for _, c := range categories {
		set.URLs = append(set.URLs, sitemapURL{Loc: h.siteURL + c.URL()})
	}

	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.Write([]byte(xml.Header))
	if err := xml.NewEncoder(w).Encode(set); err != nil {
		slog.Error("encode sitemap failed", "error", err)
	}
}
