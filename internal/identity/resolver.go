package identity

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/neuralarc-ai/salak/internal/logging"
	"github.com/neuralarc-ai/salak/internal/metrics"
)

// Resolver turns an inbound request into an AuthenticatedUser. It holds no
// per-request state and is safe for concurrent use; the only side effect it
// performs is the profile lookup/insert during reconciliation.
type Resolver struct {
	verifiers []Verifier
	profiles  ProfileStore
}

// NewResolver creates a resolver that tries the given verifiers in order.
// Adding an authentication mechanism means appending a verifier here, not
// branching inside the resolver.
func NewResolver(profiles ProfileStore, verifiers ...Verifier) *Resolver {
	return &Resolver{
		verifiers: verifiers,
		profiles:  profiles,
	}
}

// Resolve determines the identity of the caller. It returns
// ErrUnauthenticated when no token is present or no verifier accepts it, and
// ErrReconciliationFailed when a token was valid but the profile row could
// not be confirmed or created.
func (r *Resolver) Resolve(req *http.Request) (*AuthenticatedUser, error) {
	ctx := req.Context()
	log := logging.Logger(ctx)

	token := TokenFromRequest(req)
	if len(token) < MinTokenLength {
		// Cheap rejection of obviously malformed input: no network calls.
		metrics.AuthResolutions.WithLabelValues("unauthenticated", "none").Inc()
		return nil, ErrUnauthenticated
	}

	for _, v := range r.verifiers {
		ident, err := v.Verify(ctx, token)
		if err != nil {
			log.Debug("token_verification_failed", "verifier", v.Name(), "error", err)
			continue
		}
		if ident == nil || ident.SubjectID == "" {
			log.Debug("token_verification_empty_subject", "verifier", v.Name())
			continue
		}

		user, err := r.reconcile(ctx, ident)
		if err != nil {
			log.Error("profile_reconciliation_failed",
				"verifier", v.Name(),
				"subject_id", ident.SubjectID,
				"error", err,
			)
			metrics.AuthResolutions.WithLabelValues("reconciliation_failed", v.Name()).Inc()
			return nil, err
		}
		metrics.AuthResolutions.WithLabelValues("success", v.Name()).Inc()
		return user, nil
	}

	metrics.AuthResolutions.WithLabelValues("unauthenticated", "none").Inc()
	return nil, ErrUnauthenticated
}

// reconcile looks up the profile row by subject id and lazily creates it when
// genuinely absent. A uniqueness conflict on insert means another request won
// the creation race; the loser re-reads and succeeds with the same row.
func (r *Resolver) reconcile(ctx context.Context, ident *Identity) (*AuthenticatedUser, error) {
	log := logging.Logger(ctx)

	user, err := r.profiles.FindByID(ctx, ident.SubjectID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, ErrProfileNotFound) {
		// Creating on top of an unknown lookup failure risks duplicate or
		// corrupt state; surface the failure instead.
		return nil, fmt.Errorf("%w: lookup: %v", ErrReconciliationFailed, err)
	}

	created, err := r.profiles.Insert(ctx, &AuthenticatedUser{
		ID:    ident.SubjectID,
		Email: ident.Email,
		Name:  deriveName(ident),
		Role:  deriveRole(ident),
	})
	if err == nil {
		log.Info("profile_created", "subject_id", ident.SubjectID)
		return created, nil
	}

	if errors.Is(err, ErrProfileExists) {
		// Lost the insert race; the row now exists.
		log.Debug("profile_created_concurrently", "subject_id", ident.SubjectID)
		existing, fetchErr := r.profiles.FindByID(ctx, ident.SubjectID)
		if fetchErr != nil {
			return nil, fmt.Errorf("%w: refetch after conflict: %v", ErrReconciliationFailed, fetchErr)
		}
		return existing, nil
	}

	return nil, fmt.Errorf("%w: insert: %v", ErrReconciliationFailed, err)
}
