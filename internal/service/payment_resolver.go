package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mishasvintus/delivery_team_backend/internal/domain"
	"github.com/mishasvintus/delivery_team_backend/internal/payment"
)

// PaymentResolver finds the card a user's charges are billed to:
// the user's own, then the team owner's, then the first teammate's.
// Only accepted members draw on the team, and only accepted members' cards
// are drawn on.
type PaymentResolver struct {
	directory  PaymentDirectory
	provider   payment.Provider
	log        *slog.Logger
	timeout    time.Duration
	strategies []paymentStrategy
}

// NewPaymentResolver creates a resolver. timeout bounds each provider call.
func NewPaymentResolver(directory PaymentDirectory, provider payment.Provider, log *slog.Logger, timeout time.Duration) *PaymentResolver {
	return &PaymentResolver{
		directory:  directory,
		provider:   provider,
		log:        log,
		timeout:    timeout,
		strategies: []paymentStrategy{selfStrategy{}, ownerStrategy{}, teammateStrategy{}},
	}
}

type paymentCandidate struct {
	userID      string
	customerRef *string
}

// paymentStrategy yields candidates in the order they should be tried.
type paymentStrategy interface {
	source() domain.PaymentSource
	candidates(ctx context.Context, rs *resolution) ([]paymentCandidate, error)
}

// resolution is the state shared by the strategies of one resolve call.
type resolution struct {
	r    *PaymentResolver
	user *domain.User

	team       *domain.Team
	teamLoaded bool

	tried       map[string]bool
	providerErr error
}

func (rs *resolution) loadTeam(ctx context.Context) (*domain.Team, error) {
	if rs.teamLoaded {
		return rs.team, nil
	}
	rs.teamLoaded = true

	if !rs.user.HasTeam() {
		return nil, nil
	}
	t, err := rs.r.directory.GetTeam(ctx, *rs.user.TeamID)
	if err != nil {
		if isNoRows(err) {
			rs.r.log.Warn("user points at a missing team", "user_id", rs.user.UserID, "team_id", *rs.user.TeamID)
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get team: %w", err)
	}
	if m, ok := t.Member(rs.user.UserID); !ok || m.InvitationStatus != domain.InvitationAccepted {
		return nil, nil
	}
	rs.team = t
	return t, nil
}

type selfStrategy struct{}

func (selfStrategy) source() domain.PaymentSource { return domain.SourceSelf }

func (selfStrategy) candidates(_ context.Context, rs *resolution) ([]paymentCandidate, error) {
	return []paymentCandidate{{userID: rs.user.UserID, customerRef: rs.user.PaymentProfileRef}}, nil
}

type ownerStrategy struct{}

func (ownerStrategy) source() domain.PaymentSource { return domain.SourceOwner }

func (ownerStrategy) candidates(ctx context.Context, rs *resolution) ([]paymentCandidate, error) {
	t, err := rs.loadTeam(ctx)
	if err != nil || t == nil {
		return nil, err
	}
	owner, ok := t.Owner()
	if !ok {
		return nil, nil
	}
	return []paymentCandidate{{userID: owner.UserID, customerRef: owner.PaymentProfileRef}}, nil
}

type teammateStrategy struct{}

func (teammateStrategy) source() domain.PaymentSource { return domain.SourceTeammate }

func (teammateStrategy) candidates(ctx context.Context, rs *resolution) ([]paymentCandidate, error) {
	t, err := rs.loadTeam(ctx)
	if err != nil || t == nil {
		return nil, err
	}
	out := make([]paymentCandidate, 0, len(t.Members))
	for _, m := range t.Members {
		if m.InvitationStatus != domain.InvitationAccepted {
			continue
		}
		out = append(out, paymentCandidate{userID: m.UserID, customerRef: m.PaymentProfileRef})
	}
	return out, nil
}

// ResolvePaymentMethod returns the first usable card for userID.
// It fails with ErrNoPaymentMethod when no candidate has a card, or with a
// PaymentFailedError when none resolved and the provider failed for some.
func (r *PaymentResolver) ResolvePaymentMethod(ctx context.Context, userID string) (*domain.ResolvedPayment, error) {
	u, err := r.directory.GetUser(ctx, userID)
	if err != nil {
		if isNoRows(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	rs := &resolution{r: r, user: u, tried: make(map[string]bool)}

	for _, s := range r.strategies {
		candidates, err := s.candidates(ctx, rs)
		if err != nil {
			return nil, err
		}
		for _, c := range candidates {
			resolved, ok := r.try(ctx, rs, c)
			if ok {
				resolved.Source = s.source()
				r.log.Debug("payment method resolved",
					"user_id", userID,
					"payer_id", resolved.PayerUserID,
					"source", string(resolved.Source),
				)
				return resolved, nil
			}
		}
	}

	if rs.providerErr != nil {
		return nil, &PaymentFailedError{Message: payment.Message(rs.providerErr), Err: rs.providerErr}
	}
	return nil, ErrNoPaymentMethod
}

// try checks one candidate. Each user is asked about at most once per resolution.
func (r *PaymentResolver) try(ctx context.Context, rs *resolution, c paymentCandidate) (*domain.ResolvedPayment, bool) {
	if rs.tried[c.userID] {
		return nil, false
	}
	rs.tried[c.userID] = true

	if c.customerRef == nil || *c.customerRef == "" {
		return nil, false
	}

	methods, err := r.listCardMethods(ctx, *c.customerRef)
	if err != nil {
		r.log.Warn("failed to list payment methods, skipping candidate",
			"candidate_id", c.userID,
			"error", err,
		)
		rs.providerErr = err
		return nil, false
	}
	if len(methods) == 0 {
		return nil, false
	}

	return &domain.ResolvedPayment{
		CustomerRef: *c.customerRef,
		MethodID:    methods[0].ID,
		PayerUserID: c.userID,
	}, true
}

func (r *PaymentResolver) listCardMethods(ctx context.Context, customerRef string) ([]domain.PaymentMethod, error) {
	ctx, cancel := withProviderTimeout(ctx, r.timeout)
	defer cancel()
	return r.provider.ListCardMethods(ctx, customerRef)
}

func withProviderTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
