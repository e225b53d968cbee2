package identity

import (
	"context"
	"fmt"

	"github.com/neuralarc-ai/salak/internal/supabase"
)

// userGetter is the slice of the provider client the verifier needs.
type userGetter interface {
	GetUser(ctx context.Context, accessToken string) (*supabase.AuthUser, error)
}

// SupabaseVerifier validates tokens against the hosted identity provider's
// introspection endpoint.
type SupabaseVerifier struct {
	client userGetter
}

// NewSupabaseVerifier creates a verifier backed by the given provider client.
func NewSupabaseVerifier(client *supabase.Client) *SupabaseVerifier {
	return &SupabaseVerifier{client: client}
}

// Name implements Verifier.
func (v *SupabaseVerifier) Name() string { return "supabase-session" }

// Verify implements Verifier.
func (v *SupabaseVerifier) Verify(ctx context.Context, token string) (*Identity, error) {
	user, err := v.client.GetUser(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("hosted session: %w", err)
	}

	return &Identity{
		SubjectID: user.ID,
		Email:     user.Email,
		Name:      metadataName(user.UserMetadata),
		Role:      metadataString(user.UserMetadata, "role"),
	}, nil
}

// metadataName prefers the provider's full_name over the short name.
func metadataName(metadata map[string]any) string {
	if name := metadataString(metadata, "full_name"); name != "" {
		return name
	}
	return metadataString(metadata, "name")
}

func metadataString(metadata map[string]any, key string) string {
	if metadata == nil {
		return ""
	}
	if v, ok := metadata[key].(string); ok {
		return v
	}
	return ""
}
