package api

import (
	"github.com/inkwellapp/inkwell-server/internal/media/covers"
	"github.com/inkwellapp/inkwell-server/internal/media/images"
	"github.com/inkwellapp/inkwell-server/internal/service"
)

// Services groups all business logic services used by the API server.
// This reduces the parameter count for NewServer and improves testability.
type Services struct {
	Auth    *service.AuthService
	Session *service.SessionService
	User    *service.UserService
	Post    *service.PostService
	Tag     *service.TagService
	Comment *service.CommentService
	Social  *service.SocialService
	Search  *service.SearchService
}

// MediaServices groups image handling used by the API server.
// Nil processor disables the upload endpoints.
type MediaServices struct {
	Processor  *images.Processor  // Avatar and cover processing
	Downloader *covers.Downloader // Cover fetch by URL
}
