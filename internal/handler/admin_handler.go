package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"mangaden/internal/models"
	"mangaden/internal/repository"
	"mangaden/internal/service"
	"mangaden/internal/session"
)

// AdminHandler serves the admin area: catalog CRUD and chapter uploads.
// The whole group is mounted behind the admin guard.
type AdminHandler struct {
	base
	catalog  service.CatalogService
	chapters service.ChapterService
	maxSize  int64
}

func NewAdminHandler(catalog service.CatalogService, chapters service.ChapterService, maxUploadSize int64, flashes session.FlashStore) *AdminHandler {
	return &AdminHandler{
		base:     base{flashes: flashes},
		catalog:  catalog,
		chapters: chapters,
		maxSize:  maxUploadSize,
	}
}

func (h *AdminHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.Dashboard)

	rg.GET("/manga", h.ListManga)
	rg.GET("/manga/new", h.NewManga)
	rg.POST("/manga", h.CreateManga)
	rg.GET("/manga/:manga_id/edit", h.EditManga)
	rg.POST("/manga/:manga_id", h.UpdateManga)
	rg.GET("/manga/:manga_id/delete", h.ConfirmDeleteManga)
	rg.POST("/manga/:manga_id/delete", h.DeleteManga)

	rg.GET("/manga/:manga_id/chapters", h.ListChapters)
	rg.POST("/manga/:manga_id/chapters", h.CreateChapter)
	rg.GET("/chapter/:chapter_id/edit", h.EditChapter)
	rg.POST("/chapter/:chapter_id", h.UpdateChapter)
	rg.POST("/chapter/:chapter_id/pages", h.UploadPages)
	rg.GET("/chapter/:chapter_id/delete", h.ConfirmDeleteChapter)
	rg.POST("/chapter/:chapter_id/delete", h.DeleteChapter)

	rg.GET("/categories", h.ListCategories)
	rg.POST("/categories", h.CreateCategory)
	rg.GET("/category/:category_id/edit", h.EditCategory)
	rg.POST("/category/:category_id", h.UpdateCategory)
	rg.GET("/category/:category_id/delete", h.ConfirmDeleteCategory)
	rg.POST("/category/:category_id/delete", h.DeleteCategory)

	rg.GET("/authors", h.ListAuthors)
	rg.POST("/authors", h.CreateAuthor)
	rg.GET("/author/:author_id/edit", h.EditAuthor)
	rg.POST("/author/:author_id", h.UpdateAuthor)
	rg.GET("/author/:author_id/delete", h.ConfirmDeleteAuthor)
	rg.POST("/author/:author_id/delete", h.DeleteAuthor)
}

func (h *AdminHandler) Dashboard(c *gin.Context) {
	c.Redirect(http.StatusSeeOther, "/admin/manga")
}

// --- manga ---

func (h *AdminHandler) ListManga(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	list, err := h.catalog.ListManga(ctx)
	if err != nil {
		h.serverError(c)
		return
	}
	c.HTML(http.StatusOK, "admin_manga_list.html", h.view(c, gin.H{"Manga": list}))
}

func (h *AdminHandler) NewManga(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	authors, categories, err := h.formChoices(ctx)
	if err != nil {
		h.serverError(c)
		return
	}
	c.HTML(http.StatusOK, "admin_manga_form.html", h.view(c, gin.H{
		"Authors":    authors,
		"Categories": categories,
	}))
}

func (h *AdminHandler) CreateManga(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	input, err := h.mangaInput(c)
	if err != nil {
		h.flash(c, session.FlashError, "The form could not be read.")
		c.Redirect(http.StatusSeeOther, "/admin/manga/new")
		return
	}

	manga, err := h.catalog.CreateManga(ctx, input)
	if err != nil {
		h.flash(c, session.FlashError, mangaErrorMessage(err))
		c.Redirect(http.StatusSeeOther, "/admin/manga/new")
		return
	}

	h.flash(c, session.FlashSuccess, "Manga created.")
	c.Redirect(http.StatusSeeOther, "/admin/manga/"+strconv.FormatInt(manga.ID, 10)+"/chapters")
}

func (h *AdminHandler) EditManga(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	id, ok := h.idParam(c, "manga_id")
	if !ok {
		return
	}
	manga, err := h.catalog.GetManga(ctx, id)
	if err != nil {
		h.notFound(c)
		return
	}
	authors, categories, err := h.formChoices(ctx)
	if err != nil {
		h.serverError(c)
		return
	}
	c.HTML(http.StatusOK, "admin_manga_form.html", h.view(c, gin.H{
		"Manga":      manga,
		"Authors":    authors,
		"Categories": categories,
	}))
}

func (h *AdminHandler) UpdateManga(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	id, ok := h.idParam(c, "manga_id")
	if !ok {
		return
	}
	input, err := h.mangaInput(c)
	if err != nil {
		h.flash(c, session.FlashError, "The form could not be read.")
		c.Redirect(http.StatusSeeOther, "/admin/manga")
		return
	}

	if _, err := h.catalog.UpdateManga(ctx, id, input); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			h.notFound(c)
			return
		}
		h.flash(c, session.FlashError, mangaErrorMessage(err))
		c.Redirect(http.StatusSeeOther, "/admin/manga/"+c.Param("manga_id")+"/edit")
		return
	}

	h.flash(c, session.FlashSuccess, "Manga updated.")
	c.Redirect(http.StatusSeeOther, "/admin/manga")
}

func (h *AdminHandler) ConfirmDeleteManga(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	id, ok := h.idParam(c, "manga_id")
	if !ok {
		return
	}
	manga, err := h.catalog.GetManga(ctx, id)
	if err != nil {
		h.notFound(c)
		return
	}
	c.HTML(http.StatusOK, "admin_confirm_delete.html", h.view(c, gin.H{
		"What":   "manga",
		"Name":   manga.Title,
		"Action": "/admin/manga/" + strconv.FormatInt(manga.ID, 10) + "/delete",
		"Back":   "/admin/manga",
	}))
}

func (h *AdminHandler) DeleteManga(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	id, ok := h.idParam(c, "manga_id")
	if !ok {
		return
	}
	if err := h.catalog.DeleteManga(ctx, id); err != nil {
		h.flash(c, session.FlashError, "Deleting the manga failed, please try again.")
	} else {
		h.flash(c, session.FlashSuccess, "Manga deleted.")
	}
	c.Redirect(http.StatusSeeOther, "/admin/manga")
}

// --- chapters ---

func (h *AdminHandler) ListChapters(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	id, ok := h.idParam(c, "manga_id")
	if !ok {
		return
	}
	manga, err := h.catalog.GetManga(ctx, id)
	if err != nil {
		h.notFound(c)
		return
	}
	chapters, err := h.chapters.ListByManga(ctx, id)
	if err != nil {
		h.serverError(c)
		return
	}
	c.HTML(http.StatusOK, "admin_chapter_list.html", h.view(c, gin.H{
		"Manga":    manga,
		"Chapters": chapters,
	}))
}

func (h *AdminHandler) CreateChapter(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	id, ok := h.idParam(c, "manga_id")
	if !ok {
		return
	}
	back := "/admin/manga/" + c.Param("manga_id") + "/chapters"

	number, err := strconv.ParseFloat(c.PostForm("number"), 64)
	if err != nil {
		h.flash(c, session.FlashError, "The chapter number must be a number.")
		c.Redirect(http.StatusSeeOther, back)
		return
	}

	arc, pages, err := h.pageUploads(c)
	if err != nil {
		h.flash(c, session.FlashError, "The upload could not be read.")
		c.Redirect(http.StatusSeeOther, back)
		return
	}

	_, n, err := h.chapters.Create(ctx, service.ChapterInput{
		MangaID: id,
		Number:  number,
		Title:   c.PostForm("title"),
		Archive: arc,
		Pages:   pages,
	})
	if err != nil {
		h.flash(c, session.FlashError, chapterErrorMessage(err))
		c.Redirect(http.StatusSeeOther, back)
		return
	}

	if n == 0 {
		h.flash(c, session.FlashSuccess, "Chapter created without pages.")
	} else {
		h.flash(c, session.FlashSuccess, "Chapter created with "+strconv.Itoa(n)+" pages.")
	}
	c.Redirect(http.StatusSeeOther, back)
}

func (h *AdminHandler) EditChapter(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	id, ok := h.idParam(c, "chapter_id")
	if !ok {
		return
	}
	chapter, err := h.chapters.Get(ctx, id)
	if err != nil {
		h.notFound(c)
		return
	}
	c.HTML(http.StatusOK, "admin_chapter_form.html", h.view(c, gin.H{"Chapter": chapter}))
}

func (h *AdminHandler) UpdateChapter(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	id, ok := h.idParam(c, "chapter_id")
	if !ok {
		return
	}
	number, err := strconv.ParseFloat(c.PostForm("number"), 64)
	if err != nil {
		h.flash(c, session.FlashError, "The chapter number must be a number.")
		c.Redirect(http.StatusSeeOther, "/admin/chapter/"+c.Param("chapter_id")+"/edit")
		return
	}

	chapter, err := h.chapters.Update(ctx, id, number, c.PostForm("title"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			h.notFound(c)
			return
		}
		h.flash(c, session.FlashError, chapterErrorMessage(err))
		c.Redirect(http.StatusSeeOther, "/admin/chapter/"+c.Param("chapter_id")+"/edit")
		return
	}

	h.flash(c, session.FlashSuccess, "Chapter updated.")
	c.Redirect(http.StatusSeeOther, "/admin/manga/"+strconv.FormatInt(chapter.MangaID, 10)+"/chapters")
}

func (h *AdminHandler) UploadPages(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	id, ok := h.idParam(c, "chapter_id")
	if !ok {
		return
	}
	back := "/admin/chapter/" + c.Param("chapter_id") + "/edit"

	arc, pages, err := h.pageUploads(c)
	if err != nil {
		h.flash(c, session.FlashError, "The upload could not be read.")
		c.Redirect(http.StatusSeeOther, back)
		return
	}
	replace := c.PostForm("replace") == "on"

	n, err := h.chapters.AddPages(ctx, id, arc, pages, replace)
	if err != nil {
		h.flash(c, session.FlashError, chapterErrorMessage(err))
		c.Redirect(http.StatusSeeOther, back)
		return
	}

	h.flash(c, session.FlashSuccess, strconv.Itoa(n)+" pages saved.")
	c.Redirect(http.StatusSeeOther, back)
}

func (h *AdminHandler) ConfirmDeleteChapter(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	id, ok := h.idParam(c, "chapter_id")
	if !ok {
		return
	}
	chapter, err := h.chapters.Get(ctx, id)
	if err != nil {
		h.notFound(c)
		return
	}
	c.HTML(http.StatusOK, "admin_confirm_delete.html", h.view(c, gin.H{
		"What":   "chapter",
		"Name":   "Chapter " + chapter.NumberString(),
		"Action": "/admin/chapter/" + strconv.FormatInt(chapter.ID, 10) + "/delete",
		"Back":   "/admin/manga/" + strconv.FormatInt(chapter.MangaID, 10) + "/chapters",
	}))
}

func (h *AdminHandler) DeleteChapter(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	id, ok := h.idParam(c, "chapter_id")
	if !ok {
		return
	}
	chapter, err := h.chapters.Get(ctx, id)
	if err != nil {
		h.notFound(c)
		return
	}
	if err := h.chapters.Delete(ctx, id); err != nil {
		h.flash(c, session.FlashError, "Deleting the chapter failed, please try again.")
	} else {
		h.flash(c, session.FlashSuccess, "Chapter deleted.")
	}
	c.Redirect(http.StatusSeeOther, "/admin/manga/"+strconv.FormatInt(chapter.MangaID, 10)+"/chapters")
}

// --- categories ---

func (h *AdminHandler) ListCategories(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	list, err := h.catalog.ListCategories(ctx)
	if err != nil {
		h.serverError(c)
		return
	}
	c.HTML(http.StatusOK, "admin_category_list.html", h.view(c, gin.H{"Categories": list}))
}

func (h *AdminHandler) CreateCategory(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	if _, err := h.catalog.CreateCategory(ctx, c.PostForm("name"), c.PostForm("description")); err != nil {
		h.flash(c, session.FlashError, catalogErrorMessage(err, "category"))
	} else {
		h.flash(c, session.FlashSuccess, "Category created.")
	}
	c.Redirect(http.StatusSeeOther, "/admin/categories")
}

func (h *AdminHandler) EditCategory(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	id, ok := h.idParam(c, "category_id")
	if !ok {
		return
	}
	category, err := h.catalog.GetCategory(ctx, id)
	if err != nil {
		h.notFound(c)
		return
	}
	c.HTML(http.StatusOK, "admin_category_form.html", h.view(c, gin.H{"Category": category}))
}

func (h *AdminHandler) UpdateCategory(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	id, ok := h.idParam(c, "category_id")
	if !ok {
		return
	}
	if _, err := h.catalog.UpdateCategory(ctx, id, c.PostForm("name"), c.PostForm("description")); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			h.notFound(c)
			return
		}
		h.flash(c, session.FlashError, catalogErrorMessage(err, "category"))
	} else {
		h.flash(c, session.FlashSuccess, "Category updated.")
	}
	c.Redirect(http.StatusSeeOther, "/admin/categories")
}

func (h *AdminHandler) ConfirmDeleteCategory(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	id, ok := h.idParam(c, "category_id")
	if !ok {
		return
	}
	category, err := h.catalog.GetCategory(ctx, id)
	if err != nil {
		h.notFound(c)
		return
	}
	c.HTML(http.StatusOK, "admin_confirm_delete.html", h.view(c, gin.H{
		"What":   "category",
		"Name":   category.Name,
		"Action": "/admin/category/" + strconv.FormatInt(category.ID, 10) + "/delete",
		"Back":   "/admin/categories",
	}))
}

func (h *AdminHandler) DeleteCategory(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	id, ok := h.idParam(c, "category_id")
	if !ok {
		return
	}
	if err := h.catalog.DeleteCategory(ctx, id); err != nil {
		h.flash(c, session.FlashError, "Deleting the category failed, please try again.")
	} else {
		h.flash(c, session.FlashSuccess, "Category deleted.")
	}
	c.Redirect(http.StatusSeeOther, "/admin/categories")
}

// --- authors ---

func (h *AdminHandler) ListAuthors(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	list, err := h.catalog.ListAuthors(ctx)
	if err != nil {
		h.serverError(c)
		return
	}
	c.HTML(http.StatusOK, "admin_author_list.html", h.view(c, gin.H{"Authors": list}))
}

func (h *AdminHandler) CreateAuthor(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	if _, err := h.catalog.CreateAuthor(ctx, c.PostForm("name"), c.PostForm("bio")); err != nil {
		h.flash(c, session.FlashError, catalogErrorMessage(err, "author"))
	} else {
		h.flash(c, session.FlashSuccess, "Author created.")
	}
	c.Redirect(http.StatusSeeOther, "/admin/authors")
}

func (h *AdminHandler) EditAuthor(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	id, ok := h.idParam(c, "author_id")
	if !ok {
		return
	}
	author, err := h.catalog.GetAuthor(ctx, id)
	if err != nil {
		h.notFound(c)
		return
	}
	c.HTML(http.StatusOK, "admin_author_form.html", h.view(c, gin.H{"Author": author}))
}

func (h *AdminHandler) UpdateAuthor(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	id, ok := h.idParam(c, "author_id")
	if !ok {
		return
	}
	if _, err := h.catalog.UpdateAuthor(ctx, id, c.PostForm("name"), c.PostForm("bio")); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			h.notFound(c)
			return
		}
		h.flash(c, session.FlashError, catalogErrorMessage(err, "author"))
	} else {
		h.flash(c, session.FlashSuccess, "Author updated.")
	}
	c.Redirect(http.StatusSeeOther, "/admin/authors")
}

func (h *AdminHandler) ConfirmDeleteAuthor(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	id, ok := h.idParam(c, "author_id")
	if !ok {
		return
	}
	author, err := h.catalog.GetAuthor(ctx, id)
	if err != nil {
		h.notFound(c)
		return
	}
	c.HTML(http.StatusOK, "admin_confirm_delete.html", h.view(c, gin.H{
		"What":   "author",
		"Name":   author.Name,
		"Action": "/admin/author/" + strconv.FormatInt(author.ID, 10) + "/delete",
		"Back":   "/admin/authors",
	}))
}

func (h *AdminHandler) DeleteAuthor(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	id, ok := h.idParam(c, "author_id")
	if !ok {
		return
	}
	if err := h.catalog.DeleteAuthor(ctx, id); err != nil {
		h.flash(c, session.FlashError, "Deleting the author failed, please try again.")
	} else {
		h.flash(c, session.FlashSuccess, "Author deleted.")
	}
	c.Redirect(http.StatusSeeOther, "/admin/authors")
}

// --- helpers ---

func (h *AdminHandler) idParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		h.notFound(c)
		return 0, false
	}
	return id, true
}

func (h *AdminHandler) formChoices(ctx context.Context) ([]models.Author, []models.Category, error) {
	authors, err := h.catalog.ListAuthors(ctx)
	if err != nil {
		return nil, nil, err
	}
	categories, err := h.catalog.ListCategories(ctx)
	if err != nil {
		return nil, nil, err
	}
	return authors, categories, nil
}

// mangaInput reads the manga form, including the optional cover upload
// and the multi-select category list.
func (h *AdminHandler) mangaInput(c *gin.Context) (service.MangaInput, error) {
	input := service.MangaInput{
		Title:            c.PostForm("title"),
		AlternativeTitle: c.PostForm("alternative_title"),
		Description:      c.PostForm("description"),
		Status:           c.PostForm("status"),
	}

	if v := c.PostForm("author_id"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			input.AuthorID = &id
		}
	}
	for _, v := range c.PostFormArray("category_ids") {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			input.CategoryIDs = append(input.CategoryIDs, id)
		}
	}

	header, err := c.FormFile("cover")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return input, nil
		}
		return input, err
	}
	cover, err := readUpload(header, h.maxSize)
	if err != nil {
		return input, err
	}
	input.Cover = cover
	return input, nil
}

// pageUploads reads the chapter page upload: a single zip archive or a
// list of loose image files.
func (h *AdminHandler) pageUploads(c *gin.Context) (*service.Upload, []service.Upload, error) {
	form, err := c.MultipartForm()
	if err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			return nil, nil, nil
		}
		return nil, nil, err
	}

	var arc *service.Upload
	if files := form.File["archive"]; len(files) > 0 {
		arc, err = readUpload(files[0], h.maxSize)
		if err != nil {
			return nil, nil, err
		}
	}

	var pages []service.Upload
	for _, header := range form.File["pages"] {
		upload, err := readUpload(header, h.maxSize)
		if err != nil {
			return nil, nil, err
		}
		pages = append(pages, *upload)
	}
	return arc, pages, nil
}

func mangaErrorMessage(err error) string {
	switch {
	case errors.Is(err, service.ErrMissingField):
		return "The title is required."
	case errors.Is(err, service.ErrInvalidStatus):
		return "Pick a valid publication status."
	default:
		return "Saving the manga failed, please try again."
	}
}

func chapterErrorMessage(err error) string {
	switch {
	case errors.Is(err, service.ErrDuplicateChapter):
		return "A chapter with that number already exists."
	case errors.Is(err, service.ErrBadArchive):
		return "The upload is not a valid zip archive."
	case errors.Is(err, service.ErrPagesExist):
		return "The chapter already has pages. Tick replace to swap them."
	case errors.Is(err, service.ErrConflictingUpload):
		return "Upload either a zip archive or loose images, not both."
	case errors.Is(err, repository.ErrNotFound):
		return "That manga does not exist."
	default:
		return "Saving the chapter failed, please try again."
	}
}

func catalogErrorMessage(err error, what string) string {
	switch {
	case errors.Is(err, service.ErrMissingField):
		return "The name is required."
	case errors.Is(err, repository.ErrDuplicate):
		return "A " + what + " with that name already exists."
	default:
		return "Saving the " + what + " failed, please try again."
	}
}
