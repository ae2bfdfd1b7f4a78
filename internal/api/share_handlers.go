package api

import (
	"context"
	"encoding/json"
	"net/http"
	"reflect"

	"github.com/danielgtaylor/huma/v2"

	"github.com/brainlyapp/brainly-server/internal/dto"
	domainerrors "github.com/brainlyapp/brainly-server/internal/errors"
)

// An unknown share token is reported as 403.
var resolveShareStatus = statusOverride{
	domainerrors.CodeNotFound: http.StatusForbidden,
}

func (s *Server) registerShareRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "shareBrain",
		Method:        http.MethodPost,
		Path:          "/api/v1/brain/share",
		Summary:       "Share brain",
		Description:   "Returns the caller's share token, creating it on first use. Sharing cannot be revoked.",
		Tags:          []string{"Sharing"},
		DefaultStatus: http.StatusOK,
		Security:      bearerSecurity,
		RequestBody: &huma.RequestBody{
			Content: map[string]*huma.MediaType{
				"application/json": {
					Schema: s.api.OpenAPI().Components.Schemas.Schema(reflect.TypeOf(ShareBrainRequest{}), true, "ShareBrainRequest"),
				},
			},
		},
		SkipValidateBody: true,
	}, s.handleShareBrain)

	huma.Register(s.api, huma.Operation{
		OperationID: "getSharedBrain",
		Method:      http.MethodGet,
		Path:        "/api/v1/brain/{token}",
		Summary:     "View shared brain",
		Description: "Public read-only view of everything the token's owner saved.",
		Tags:        []string{"Sharing"},
	}, s.handleGetSharedBrain)
}

// ShareBrainRequest asks for the caller's share token.
type ShareBrainRequest struct {
	Share any `json:"share" required:"false" doc:"Must be \"true\""`
}

// ShareBrainInput carries the raw share request. Every malformed or missing
// opt-in is answered with 401, so the body is decoded by the handler.
type ShareBrainInput struct {
	RawBody []byte
}

// ShareBrainResponse carries the share token.
type ShareBrainResponse struct {
	Token string `json:"token" doc:"Share token for /brain/{token}"`
}

// ShareBrainOutput wraps the share response for Huma.
type ShareBrainOutput struct {
	Body ShareBrainResponse
}

// SharedBrainInput identifies a shared brain.
type SharedBrainInput struct {
	Token string `path:"token" doc:"Share token"`
}

// SharedBrainOutput wraps the public snapshot for Huma.
type SharedBrainOutput struct {
	Body *dto.SharedBrain
}

func (s *Server) handleShareBrain(ctx context.Context, input *ShareBrainInput) (*ShareBrainOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	// Only the literal opt-in creates a link; anything else is refused as 401.
	var req ShareBrainRequest
	if len(input.RawBody) > 0 {
		_ = json.Unmarshal(input.RawBody, &req)
	}
	if !shareRequested(req.Share) {
		return nil, s.fail(ctx, domainerrors.Validation(`share must be "true"`), statusOverride{
			domainerrors.CodeValidation: http.StatusUnauthorized,
		})
	}

	token, err := s.services.Sharing.EnsureShareToken(ctx, userID)
	if err != nil {
		return nil, s.fail(ctx, err, nil)
	}

	return &ShareBrainOutput{Body: ShareBrainResponse{Token: token}}, nil
}

func (s *Server) handleGetSharedBrain(ctx context.Context, input *SharedBrainInput) (*SharedBrainOutput, error) {
	brain, err := s.services.Sharing.Resolve(ctx, input.Token)
	if err != nil {
		return nil, s.fail(ctx, err, resolveShareStatus)
	}

	return &SharedBrainOutput{Body: brain}, nil
}

// shareRequested accepts the string "true" and the JSON boolean true.
func shareRequested(v any) bool {
	switch share := v.(type) {
	case string:
		return share == "true"
	case bool:
		return share
	default:
		return false
	}
}
