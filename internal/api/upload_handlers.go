package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"
	"github.com/inkwellapp/inkwell-server/internal/media/images"
	"github.com/inkwellapp/inkwell-server/internal/service"
)

func (s *Server) registerUploadRoutes() {
	// Media endpoints are optional; the server runs without a data
	// directory in some test setups.
	if s.media == nil || s.media.Processor == nil {
		return
	}

	huma.Register(s.api, huma.Operation{
		OperationID:  "uploadAvatar",
		Method:       http.MethodPost,
		Path:         "/api/v1/users/me/avatar",
		Summary:      "Upload avatar",
		Description:  "Uploads and processes the user's avatar image",
		Tags:         []string{"Media"},
		Security:     []map[string][]string{{"bearer": {}}},
		MaxBodyBytes: MaxUploadSize,
	}, s.handleUploadAvatar)

	huma.Register(s.api, huma.Operation{
		OperationID:  "uploadPostCover",
		Method:       http.MethodPost,
		Path:         "/api/v1/posts/{id}/cover",
		Summary:      "Upload post cover",
		Description:  "Uploads and processes a cover image for a post",
		Tags:         []string{"Media"},
		Security:     []map[string][]string{{"bearer": {}}},
		MaxBodyBytes: MaxUploadSize,
	}, s.handleUploadPostCover)

	huma.Register(s.api, huma.Operation{
		OperationID: "setPostCoverFromURL",
		Method:      http.MethodPost,
		Path:        "/api/v1/posts/{id}/cover/url",
		Summary:     "Set post cover from URL",
		Description: "Downloads a remote image and stores it as the post cover",
		Tags:        []string{"Media"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleSetPostCoverFromURL)

	// Raw chi routes for image serving; huma would buffer the bytes
	// through its response pipeline for no benefit. Images are public
	// and unauthenticated, so they get their own IP limiter.
	s.router.Group(func(r chi.Router) {
		r.Use(RateLimitMiddleware(s.mediaRateLimiter, s.logger))
		r.Get("/media/avatars/{id}", s.serveImage(images.KindAvatar))
		r.Get("/media/covers/{id}", s.serveImage(images.KindCover))
	})
}

// === DTOs ===

// ImageResponse describes a stored image.
type ImageResponse struct {
	URL      string `json:"url" doc:"Public URL of the stored image"`
	Width    int    `json:"width" doc:"Image width in pixels"`
	Height   int    `json:"height" doc:"Image height in pixels"`
	Size     int64  `json:"size" doc:"Stored size in bytes"`
	BlurHash string `json:"blur_hash,omitempty" doc:"Compact placeholder hash"`
}

// ImageOutput wraps the image response for Huma.
type ImageOutput struct {
	Body ImageResponse
}

// UploadAvatarInput carries the raw avatar bytes.
type UploadAvatarInput struct {
	Authorization string `header:"Authorization"`
	ContentType   string `header:"Content-Type"`
	RawBody       []byte
}

// UploadPostCoverInput carries the raw cover bytes.
type UploadPostCoverInput struct {
	Authorization string `header:"Authorization"`
	ContentType   string `header:"Content-Type"`
	PostID        string `path:"id" doc:"Post ID"`
	RawBody       []byte
}

// SetCoverFromURLRequest is the request body for cover-by-URL.
type SetCoverFromURLRequest struct {
	URL string `json:"url" validate:"required,url,max=2000" doc:"Remote image URL"`
}

// SetCoverFromURLInput wraps the cover-by-URL request for Huma.
type SetCoverFromURLInput struct {
	Authorization string `header:"Authorization"`
	PostID        string `path:"id" doc:"Post ID"`
	Body          SetCoverFromURLRequest
}

// === Handlers ===

func (s *Server) handleUploadAvatar(ctx context.Context, input *UploadAvatarInput) (*ImageOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	result, err := s.media.Processor.Process(images.KindAvatar, userID, input.RawBody)
	if err != nil {
		return nil, huma.Error400BadRequest(err.Error())
	}

	url := "/media/avatars/" + result.ID
	if _, err := s.services.User.UpdateProfile(ctx, userID, service.UpdateProfileRequest{AvatarURL: &url}); err != nil {
		return nil, err
	}

	return &ImageOutput{Body: mapImageResponse(url, result)}, nil
}

func (s *Server) handleUploadPostCover(ctx context.Context, input *UploadPostCoverInput) (*ImageOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	post, err := s.services.Post.GetPost(ctx, input.PostID, userID)
	if err != nil {
		return nil, err
	}

	result, err := s.media.Processor.Process(images.KindCover, post.ID, input.RawBody)
	if err != nil {
		return nil, huma.Error400BadRequest(err.Error())
	}

	url := "/media/covers/" + result.ID
	if err := s.setPostCover(ctx, userID, post.ID, url); err != nil {
		return nil, err
	}

	return &ImageOutput{Body: mapImageResponse(url, result)}, nil
}

func (s *Server) handleSetPostCoverFromURL(ctx context.Context, input *SetCoverFromURLInput) (*ImageOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	post, err := s.services.Post.GetPost(ctx, input.PostID, userID)
	if err != nil {
		return nil, err
	}

	result := s.media.Downloader.Download(ctx, post.ID, input.Body.URL)
	if !result.Success {
		return nil, huma.Error400BadRequest("cover download failed: " + result.Error.Error())
	}

	url := "/media/covers/" + post.ID
	if err := s.setPostCover(ctx, userID, post.ID, url); err != nil {
		return nil, err
	}

	return &ImageOutput{
		Body: ImageResponse{
			URL:      url,
			Width:    result.Width,
			Height:   result.Height,
			Size:     result.Size,
			BlurHash: result.BlurHash,
		},
	}, nil
}

// serveImage streams a stored image with long-lived caching. Processed
// images are immutable per ID, new uploads overwrite in place and the
// hash-based ETag changes.
func (s *Server) serveImage(kind images.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		data, err := s.media.Processor.Get(kind, id)
		if err != nil {
			http.NotFound(w, r)
			return
		}

		w.Header().Set("Content-Type", "image/jpeg")
		w.Header().Set("Cache-Control", CacheOneDay)
		_, _ = w.Write(data)
	}
}

// === Helpers ===

func (s *Server) setPostCover(ctx context.Context, userID, postID, url string) error {
	_, err := s.services.Post.UpdatePost(ctx, userID, postID, service.UpdatePostRequest{CoverImage: &url})
	return err
}

func mapImageResponse(url string, result *images.Result) ImageResponse {
	return ImageResponse{
		URL:      url,
		Width:    result.Width,
		Height:   result.Height,
		Size:     result.Size,
		BlurHash: result.BlurHash,
	}
}
