package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"reflect"

	"github.com/danielgtaylor/huma/v2"

	"github.com/brainlyapp/brainly-server/internal/dto"
	domainerrors "github.com/brainlyapp/brainly-server/internal/errors"
	"github.com/brainlyapp/brainly-server/internal/service"
)

func (s *Server) registerContentRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "createContent",
		Method:        http.MethodPost,
		Path:          "/api/v1/content",
		Summary:       "Save content",
		Description:   "Saves a link with its type, title and tags. Unknown tags are created.",
		Tags:          []string{"Content"},
		DefaultStatus: http.StatusOK,
		Security:      bearerSecurity,
	}, s.handleCreateContent)

	huma.Register(s.api, huma.Operation{
		OperationID: "listContent",
		Method:      http.MethodGet,
		Path:        "/api/v1/content",
		Summary:     "List content",
		Description: "Returns every item the caller saved, with tag titles and username.",
		Tags:        []string{"Content"},
		Security:    bearerSecurity,
	}, s.handleListContent)

	huma.Register(s.api, huma.Operation{
		OperationID: "searchContent",
		Method:      http.MethodGet,
		Path:        "/api/v1/content/search",
		Summary:     "Search content",
		Description: "Searches the caller's content by text and filters by type and tag.",
		Tags:        []string{"Content"},
		Security:    bearerSecurity,
	}, s.handleSearchContent)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateContent",
		Method:      http.MethodPatch,
		Path:        "/api/v1/content/{id}",
		Summary:     "Update content",
		Description: "Changes only the fields present. Present tags replace the whole set.",
		Tags:        []string{"Content"},
		Security:    bearerSecurity,
		RequestBody: &huma.RequestBody{
			Content: map[string]*huma.MediaType{
				"application/json": {
					Schema: s.api.OpenAPI().Components.Schemas.Schema(reflect.TypeOf(service.UpdateContentRequest{}), true, "UpdateContentRequest"),
				},
			},
		},
		SkipValidateBody: true,
	}, s.handleUpdateContent)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteContent",
		Method:      http.MethodDelete,
		Path:        "/api/v1/content/{id}",
		Summary:     "Delete content",
		Description: "Deletes an item the caller owns. Tags are kept.",
		Tags:        []string{"Content"},
		Security:    bearerSecurity,
	}, s.handleDeleteContent)
}

// CreateContentInput wraps the create request for Huma.
type CreateContentInput struct {
	Body service.CreateContentRequest
}

// ContentIDResponse returns the id of the affected item.
type ContentIDResponse struct {
	ID string `json:"id" doc:"Content ID"`
}

// ContentIDOutput wraps ContentIDResponse for Huma.
type ContentIDOutput struct {
	Body ContentIDResponse
}

// ContentListResponse is the caller's content.
type ContentListResponse struct {
	Content []dto.Content `json:"content" doc:"Saved items"`
}

// ContentListOutput wraps the list response for Huma.
type ContentListOutput struct {
	Body ContentListResponse
}

// ContentPathInput identifies one item.
type ContentPathInput struct {
	ID string `path:"id" doc:"Content ID"`
}

// UpdateContentInput carries the raw update body so ownership is checked
// before the payload is decoded.
type UpdateContentInput struct {
	ID      string `path:"id" doc:"Content ID"`
	RawBody []byte
}

// SearchContentInput holds the search query parameters.
type SearchContentInput struct {
	Query  string   `query:"q" doc:"Free text matched against title, link and tags"`
	Types  []string `query:"type,explode" doc:"Only these content types"`
	Tags   []string `query:"tag,explode" doc:"Only items carrying one of these tags"`
	Limit  int      `query:"limit" doc:"Page size (default 20, max 100)"`
	Offset int      `query:"offset" doc:"Items to skip"`
	Sort   string   `query:"sort" doc:"relevance, recent or title"`
}

// SearchContentOutput wraps the search result for Huma.
type SearchContentOutput struct {
	Body *dto.SearchResult
}

func (s *Server) handleCreateContent(ctx context.Context, input *CreateContentInput) (*ContentIDOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	id, err := s.services.Content.Create(ctx, userID, input.Body)
	if err != nil {
		return nil, s.fail(ctx, err, nil)
	}

	return &ContentIDOutput{Body: ContentIDResponse{ID: id}}, nil
}

func (s *Server) handleListContent(ctx context.Context, _ *struct{}) (*ContentListOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	items, err := s.services.Content.List(ctx, userID)
	if err != nil {
		return nil, s.fail(ctx, err, nil)
	}

	return &ContentListOutput{Body: ContentListResponse{Content: items}}, nil
}

func (s *Server) handleSearchContent(ctx context.Context, input *SearchContentInput) (*SearchContentOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	result, err := s.services.Content.Search(ctx, userID, service.SearchRequest{
		Query:  input.Query,
		Types:  input.Types,
		Tags:   input.Tags,
		Limit:  input.Limit,
		Offset: input.Offset,
		Sort:   input.Sort,
	})
	if err != nil {
		return nil, s.fail(ctx, err, nil)
	}

	return &SearchContentOutput{Body: result}, nil
}

func (s *Server) handleUpdateContent(ctx context.Context, input *UpdateContentInput) (*ContentIDOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	var req service.UpdateContentRequest
	if len(bytes.TrimSpace(input.RawBody)) > 0 {
		if err := json.Unmarshal(input.RawBody, &req); err != nil {
			if authErr := s.services.Content.Authorize(ctx, userID, input.ID); authErr != nil {
				return nil, s.fail(ctx, authErr, nil)
			}
			return nil, s.fail(ctx, domainerrors.Validation("invalid request body").WithCause(err), nil)
		}
	}

	if err := s.services.Content.Update(ctx, userID, input.ID, req); err != nil {
		return nil, s.fail(ctx, err, nil)
	}

	return &ContentIDOutput{Body: ContentIDResponse{ID: input.ID}}, nil
}

func (s *Server) handleDeleteContent(ctx context.Context, input *ContentPathInput) (*ContentIDOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.services.Content.Delete(ctx, userID, input.ID); err != nil {
		return nil, s.fail(ctx, err, nil)
	}

	return &ContentIDOutput{Body: ContentIDResponse{ID: input.ID}}, nil
}
