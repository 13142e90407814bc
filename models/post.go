package models

import (
	"time"

	"github.com/pocketbase/pocketbase/core"
)

type Post struct {
	ID          string     `json:"id"`
	Title       string     `json:"title" validate:"required,max=200"`
	Slug        string     `json:"slug" validate:"required,max=200"`
	Excerpt     string     `json:"excerpt" validate:"max=500"`
	Content     string     `json:"content"`
	CoverURL    string     `json:"cover_url" validate:"omitempty,url"`
	Author      string     `json:"author" validate:"max=100"`
	Published   bool       `json:"published"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	Version     string     `json:"-"`
}

func (p Post) Validate() error {
	if err := validateStruct(p); err != nil {
		return err
	}
	if p.Published && p.PublishedAt == nil {
		return Invalid("published_at", "é obrigatório para publicações publicadas")
	}
	return nil
}

func PostFromRecord(r *core.Record) Post {
	return Post{
		ID:          r.Id,
		Title:       r.GetString("title"),
		Slug:        r.GetString("slug"),
		Excerpt:     r.GetString("excerpt"),
		Content:     r.GetString("content"),
		CoverURL:    r.GetString("cover_url"),
		Author:      r.GetString("author"),
		Published:   r.GetBool("published"),
		PublishedAt: optionalTime(r, "published_at"),
		Version:     version(r),
	}
}

func (p Post) Fields() map[string]any {
	return map[string]any{
		"title":        p.Title,
		"slug":         p.Slug,
		"excerpt":      p.Excerpt,
		"content":      p.Content,
		"cover_url":    p.CoverURL,
		"author":       p.Author,
		"published":    p.Published,
		"published_at": timeValue(p.PublishedAt),
	}
}
