package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (s *Server) registerTagRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listTags",
		Method:      http.MethodGet,
		Path:        "/api/v1/tags",
		Summary:     "List tags",
		Description: "Returns the sorted titles of tags used by the caller's content.",
		Tags:        []string{"Tags"},
		Security:    bearerSecurity,
	}, s.handleListTags)
}

// TagListResponse contains the caller's tag titles.
type TagListResponse struct {
	Tags []string `json:"tags" doc:"Tag titles"`
}

// TagListOutput wraps the tag list for Huma.
type TagListOutput struct {
	Body TagListResponse
}

func (s *Server) handleListTags(ctx context.Context, _ *struct{}) (*TagListOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	tags, err := s.services.Tag.ListForOwner(ctx, userID)
	if err != nil {
		return nil, s.fail(ctx, err, nil)
	}
	if tags == nil {
		tags = []string{}
	}

	return &TagListOutput{Body: TagListResponse{Tags: tags}}, nil
}
