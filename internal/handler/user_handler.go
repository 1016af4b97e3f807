package handler

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"mangaden/internal/middleware"
	"mangaden/internal/service"
	"mangaden/internal/session"
)

// UserHandler serves the logged-in user's pages and the follow, comment
// and rate form actions.
type UserHandler struct {
	base
	profiles service.ProfileService
	social   service.SocialService
	maxSize  int64
}

func NewUserHandler(profiles service.ProfileService, social service.SocialService, maxUploadSize int64, flashes session.FlashStore) *UserHandler {
	return &UserHandler{
		base:     base{flashes: flashes},
		profiles: profiles,
		social:   social,
		maxSize:  maxUploadSize,
	}
}

// RegisterRoutes wires the user pages under rg (mounted with a login
// guard) and the social actions under actions.
func (h *UserHandler) RegisterRoutes(rg, actions *gin.RouterGroup) {
	rg.GET("/profile", h.ShowProfile)
	rg.POST("/profile", h.UpdateProfile)
	rg.GET("/history", h.History)
	rg.GET("/following", h.Following)

	actions.POST("/follow/:manga_id", h.Follow)
	actions.POST("/comment/:manga_id", h.Comment)
	actions.POST("/rate/:manga_id", h.Rate)
}

func (h *UserHandler) ShowProfile(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	profile, err := h.profiles.Get(ctx, middleware.CurrentUserID(c))
	if err != nil {
		h.serverError(c)
		return
	}
	c.HTML(http.StatusOK, "profile.html", h.view(c, gin.H{"Profile": profile}))
}

func (h *UserHandler) UpdateProfile(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	avatar, err := h.formFile(c, "avatar")
	if err != nil {
		h.flash(c, session.FlashError, "The avatar upload could not be read.")
		c.Redirect(http.StatusSeeOther, "/user/profile")
		return
	}

	if _, err := h.profiles.Update(ctx, middleware.CurrentUserID(c), c.PostForm("bio"), avatar); err != nil {
		h.flash(c, session.FlashError, "Saving the profile failed, please try again.")
		c.Redirect(http.StatusSeeOther, "/user/profile")
		return
	}

	h.flash(c, session.FlashSuccess, "Profile saved.")
	c.Redirect(http.StatusSeeOther, "/user/profile")
}

func (h *UserHandler) History(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	entries, err := h.profiles.History(ctx, middleware.CurrentUserID(c))
	if err != nil {
		h.serverError(c)
		return
	}
	c.HTML(http.StatusOK, "history.html", h.view(c, gin.H{"Entries": entries}))
}

func (h *UserHandler) Following(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	follows, err := h.social.ListFollowed(ctx, middleware.CurrentUserID(c))
	if err != nil {
		h.serverError(c)
		return
	}
	c.HTML(http.StatusOK, "following.html", h.view(c, gin.H{"Follows": follows}))
}

func (h *UserHandler) Follow(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	mangaID, err := strconv.ParseInt(c.Param("manga_id"), 10, 64)
	if err != nil {
		h.notFound(c)
		return
	}

	following, err := h.social.ToggleFollow(ctx, middleware.CurrentUserID(c), mangaID)
	if err != nil {
		h.flash(c, session.FlashError, "Could not update the follow, please try again.")
	} else if following {
		h.flash(c, session.FlashSuccess, "Added to your follows.")
	} else {
		h.flash(c, session.FlashSuccess, "Removed from your follows.")
	}
	h.redirectBack(c)
}

func (h *UserHandler) Comment(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	mangaID, err := strconv.ParseInt(c.Param("manga_id"), 10, 64)
	if err != nil {
		h.notFound(c)
		return
	}

	var chapterID, parentID *int64
	if v := c.PostForm("chapter_id"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			chapterID = &id
		}
	}
	if v := c.PostForm("parent_id"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			parentID = &id
		}
	}

	_, err = h.social.AddComment(ctx, middleware.CurrentUserID(c), mangaID, chapterID, parentID, c.PostForm("content"))
	switch {
	case err == nil:
		h.flash(c, session.FlashSuccess, "Comment posted.")
	case errors.Is(err, service.ErrEmptyComment):
		h.flash(c, session.FlashError, "A comment cannot be empty.")
	case errors.Is(err, service.ErrBadParent):
		h.flash(c, session.FlashError, "That comment cannot be replied to.")
	default:
		h.flash(c, session.FlashError, "Posting the comment failed, please try again.")
	}
	h.redirectBack(c)
}

func (h *UserHandler) Rate(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	mangaID, err := strconv.ParseInt(c.Param("manga_id"), 10, 64)
	if err != nil {
		h.notFound(c)
		return
	}
	score, err := strconv.Atoi(c.PostForm("score"))
	if err != nil {
		h.flash(c, session.FlashError, "Pick a score between 1 and 10.")
		h.redirectBack(c)
		return
	}

	switch err := h.social.RateManga(ctx, middleware.CurrentUserID(c), mangaID, score); {
	case err == nil:
		h.flash(c, session.FlashSuccess, "Rating saved.")
	case errors.Is(err, service.ErrBadScore):
		h.flash(c, session.FlashError, "Pick a score between 1 and 10.")
	default:
		h.flash(c, session.FlashError, "Saving the rating failed, please try again.")
	}
	h.redirectBack(c)
}

// redirectBack returns the user to the page they posted from.
func (h *UserHandler) redirectBack(c *gin.Context) {
	target := c.Request.Referer()
	if target == "" {
		target = "/"
	}
	c.Redirect(http.StatusSeeOther, target)
}

// formFile reads an optional multipart upload into memory, enforcing
// the configured size cap. A missing file is not an error.
func (h *UserHandler) formFile(c *gin.Context, field string) (*service.Upload, error) {
	header, err := c.FormFile(field)
	if err != nil {
		// Plain form posts without a file picker are fine too.
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		return nil, err
	}
	return readUpload(header, h.maxSize)
}

func readUpload(header *multipart.FileHeader, maxSize int64) (*service.Upload, error) {
	if header.Size > maxSize {
		return nil, errors.New("upload too large")
	}
	f, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxSize))
	if err != nil {
		return nil, err
	}
	return &service.Upload{Name: header.Filename, Data: data}, nil
}
