package api

import (
	"context"
	"encoding/json"
	"net/http"
	"reflect"

	"github.com/danielgtaylor/huma/v2"

	domainerrors "github.com/brainlyapp/brainly-server/internal/errors"
	"github.com/brainlyapp/brainly-server/internal/service"
)

// Signup and signin report validation failures as 411 Length Required and
// decode their own bodies so malformed JSON gets the same status.
var (
	signupStatus = statusOverride{
		domainerrors.CodeValidation:    http.StatusLengthRequired,
		domainerrors.CodeAlreadyExists: http.StatusForbidden,
	}
	signinStatus = statusOverride{
		domainerrors.CodeValidation:         http.StatusLengthRequired,
		domainerrors.CodeInvalidCredentials: http.StatusNotFound,
	}
)

// CredentialsRequest documents the signup and signin body.
type CredentialsRequest struct {
	Username string `json:"username" doc:"Username, 3 to 32 characters on signup" example:"alice"`
	Password string `json:"password" doc:"Password, 8 to 20 characters with upper, lower, digit and one of !@#$%^&*" example:"Passw0rd!"`
}

// CredentialsInput carries the raw credentials body.
type CredentialsInput struct {
	RawBody []byte
}

// SignupResponse is returned after creating an account.
type SignupResponse struct {
	ID       string `json:"id" doc:"New user ID"`
	Username string `json:"username" doc:"Username"`
}

// SignupOutput wraps the signup response for Huma.
type SignupOutput struct {
	Body SignupResponse
}

// SigninResponse carries the bearer token.
type SigninResponse struct {
	JWT string `json:"jwt" doc:"Bearer token for the Authorization header"`
}

// SigninOutput wraps the signin response for Huma.
type SigninOutput struct {
	Body SigninResponse
}

func (s *Server) registerAuthRoutes() {
	credentials := &huma.RequestBody{
		Description: "Username and password",
		Content: map[string]*huma.MediaType{
			"application/json": {
				Schema: s.api.OpenAPI().Components.Schemas.Schema(reflect.TypeOf(CredentialsRequest{}), true, "Credentials"),
			},
		},
	}

	huma.Register(s.api, huma.Operation{
		OperationID:      "signup",
		Method:           http.MethodPost,
		Path:             "/api/v1/signup",
		Summary:          "Sign up",
		Description:      "Creates an account. Usernames are unique and case-sensitive.",
		Tags:             []string{"Auth"},
		DefaultStatus:    http.StatusOK,
		RequestBody:      credentials,
		SkipValidateBody: true,
	}, s.handleSignup)

	huma.Register(s.api, huma.Operation{
		OperationID:      "signin",
		Method:           http.MethodPost,
		Path:             "/api/v1/signin",
		Summary:          "Sign in",
		Description:      "Exchanges credentials for a bearer token. Rate limited per client IP.",
		Tags:             []string{"Auth"},
		DefaultStatus:    http.StatusOK,
		RequestBody:      credentials,
		SkipValidateBody: true,
		Middlewares:      huma.Middlewares{s.signinRateLimit},
	}, s.handleSignin)
}

func (s *Server) handleSignup(ctx context.Context, input *CredentialsInput) (*SignupOutput, error) {
	var req service.SignupRequest
	if err := decodeCredentials(input.RawBody, &req); err != nil {
		return nil, s.fail(ctx, err, signupStatus)
	}

	user, err := s.services.Auth.Signup(ctx, req)
	if err != nil {
		return nil, s.fail(ctx, err, signupStatus)
	}

	return &SignupOutput{Body: SignupResponse{ID: user.ID, Username: user.Username}}, nil
}

func (s *Server) handleSignin(ctx context.Context, input *CredentialsInput) (*SigninOutput, error) {
	var req service.SigninRequest
	if err := decodeCredentials(input.RawBody, &req); err != nil {
		return nil, s.fail(ctx, err, signinStatus)
	}

	token, _, err := s.services.Auth.Signin(ctx, req)
	if err != nil {
		return nil, s.fail(ctx, err, signinStatus)
	}

	return &SigninOutput{Body: SigninResponse{JWT: token}}, nil
}

// decodeCredentials parses a credentials body into dst.
func decodeCredentials(raw []byte, dst any) error {
	if len(raw) == 0 {
		return domainerrors.Validation("request body is required")
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return domainerrors.Validation("invalid request body").WithCause(err)
	}
	return nil
}
