package api

import "github.com/brainlyapp/brainly-server/internal/service"

// Services groups the domain services the handlers call.
// Search is nil when the content index is disabled.
type Services struct {
	Auth    *service.AuthService
	Content *service.ContentService
	Sharing *service.SharingService
	Tag     *service.TagService
	Search  *service.SearchService
}
