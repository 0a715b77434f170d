// Package auth implements the sign-in, sign-up, federated sign-in, sign-out
// and password-reset flows. Outcomes are reported through alerts; the header
// itself only changes when the session store is notified by the provider.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/pkordes/travel-guide/internal/domain"
	"github.com/pkordes/travel-guide/internal/retry"
)

// syncTimeout bounds the wait for a published session change.
const syncTimeout = 2 * time.Second

// Provider is the hosted identity service.
type Provider interface {
	SignIn(ctx context.Context, email, password string) (domain.Session, error)
	SignUp(ctx context.Context, email, password string) (domain.Session, error)
	UpdateDisplayName(ctx context.Context, name string) error
	SignInWithProvider(ctx context.Context) (domain.FederatedSignIn, error)
	SignOut(ctx context.Context) error
	SendPasswordReset(ctx context.Context, email string) error
}

// Profiles is the profile record store.
type Profiles interface {
	Create(ctx context.Context, p domain.UserProfile) error
	TouchLastLogin(ctx context.Context, id string) error
	TouchLastLogout(ctx context.Context, id string) error
}

// Sessions exposes the signed-in identity. Sync returns once every change
// the provider has published so far has reached subscribers.
type Sessions interface {
	Current() *domain.Session
	Sync(ctx context.Context) error
}

// Modals closes the auth modal after a successful flow.
type Modals interface {
	CloseAuthModal()
}

// Alerts surfaces outcomes to the user.
type Alerts interface {
	Show(message string, severity domain.Severity) string
	Success(message string) string
	Warning(message string) string
	Danger(message string) string
	Info(message string) string
}

type credentials struct {
	Email    string `validate:"required"`
	Password string `validate:"required"`
}

type registration struct {
	Name     string `validate:"required"`
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=6"`
}

type resetRequest struct {
	Email string `validate:"required"`
}

// Controller runs the authentication flows.
type Controller struct {
	provider Provider
	profiles Profiles
	sessions Sessions
	modals   Modals
	alerts   Alerts
	log      *slog.Logger
	policy   retry.Policy
	validate *validator.Validate
}

// Option customises a Controller.
type Option func(*Controller)

// WithRetryPolicy replaces the policy used for profile creation.
func WithRetryPolicy(p retry.Policy) Option {
	return func(c *Controller) { c.policy = p }
}

// NewController constructs a Controller.
func NewController(provider Provider, profiles Profiles, sessions Sessions, modals Modals, alerts Alerts, log *slog.Logger, opts ...Option) *Controller {
	c := &Controller{
		provider: provider,
		profiles: profiles,
		sessions: sessions,
		modals:   modals,
		alerts:   alerts,
		log:      log,
		policy:   retry.Default(),
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SignIn signs in with email and password.
func (c *Controller) SignIn(ctx context.Context, email, password string) error {
	if err := c.validate.Struct(credentials{Email: email, Password: password}); err != nil {
		c.alerts.Warning(msgMissingCredentials)
		return fmt.Errorf("auth.Controller.SignIn: %w: %v", domain.ErrValidation, err)
	}

	sess, err := c.provider.SignIn(ctx, email, password)
	if err != nil {
		kind, raw := classify(err)
		switch kind {
		case domain.AuthUserNotFound:
			c.alerts.Warning(MsgUserNotFound)
		case domain.AuthWrongCredential:
			c.alerts.Warning(MsgWrongPassword)
		default:
			c.alerts.Danger(msgLoginFailed + raw)
		}
		return fmt.Errorf("auth.Controller.SignIn: %w", err)
	}
	defer c.awaitSession(ctx)

	if err := c.profiles.TouchLastLogin(ctx, sess.ID); err != nil {
		c.log.Warn("update last login", "user_id", sess.ID, "error", err)
	}
	c.modals.CloseAuthModal()
	c.alerts.Success(MsgLoggedIn)
	return nil
}

// SignUp creates an identity, names it, and writes its profile record.
// A profile write that fails for good leaves the identity in place.
func (c *Controller) SignUp(ctx context.Context, name, email, password string) error {
	if err := c.validate.Struct(registration{Name: name, Email: email, Password: password}); err != nil {
		c.alerts.Warning(registrationMessage(err))
		return fmt.Errorf("auth.Controller.SignUp: %w: %v", domain.ErrValidation, err)
	}

	sess, err := c.provider.SignUp(ctx, email, password)
	if err != nil {
		kind, raw := classify(err)
		switch kind {
		case domain.AuthEmailInUse:
			c.alerts.Warning(MsgEmailInUse)
		case domain.AuthWeakPassword:
			c.alerts.Warning(MsgWeakPassword)
		default:
			c.alerts.Danger(msgSignupFailed + raw)
		}
		return fmt.Errorf("auth.Controller.SignUp: %w", err)
	}
	defer c.awaitSession(ctx)

	if err := c.provider.UpdateDisplayName(ctx, name); err != nil {
		c.log.Error("orphaned identity: set display name", "user_id", sess.ID, "error", err)
		_, raw := classify(err)
		c.alerts.Danger(msgSignupFailed + raw)
		return fmt.Errorf("auth.Controller.SignUp: %w", err)
	}

	if err := c.createProfile(ctx, domain.NewUserProfile(sess.ID, name, email)); err != nil {
		c.log.Error("orphaned identity: create profile", "user_id", sess.ID, "error", err)
		c.alerts.Danger(msgSignupFailed + err.Error())
		return fmt.Errorf("auth.Controller.SignUp: %w", err)
	}

	c.modals.CloseAuthModal()
	c.alerts.Success(MsgAccountCreated)
	return nil
}

// SignInWithProvider runs the Google consent flow. A first-time identity
// gets a profile record; a returning one only has its lastLogin updated.
func (c *Controller) SignInWithProvider(ctx context.Context) error {
	res, err := c.provider.SignInWithProvider(ctx)
	if err != nil {
		kind, _ := classify(err)
		msg, severity := federatedAlert(kind)
		c.alerts.Show(msg, severity)
		return fmt.Errorf("auth.Controller.SignInWithProvider: %w", err)
	}
	defer c.awaitSession(ctx)

	sess := res.Session
	if res.IsNewUser {
		name := sess.DisplayName
		if name == "" {
			name = sess.Email
		}
		if err := c.createProfile(ctx, domain.NewUserProfile(sess.ID, name, sess.Email)); err != nil {
			c.log.Error("orphaned identity: create profile", "user_id", sess.ID, "error", err)
			c.alerts.Danger(MsgGoogleFailed)
			return fmt.Errorf("auth.Controller.SignInWithProvider: %w", err)
		}
	} else if err := c.profiles.TouchLastLogin(ctx, sess.ID); err != nil {
		c.log.Warn("update last login", "user_id", sess.ID, "error", err)
	}

	c.modals.CloseAuthModal()
	c.alerts.Success(MsgGoogleLoggedIn)
	return nil
}

// SignOut records the logout time, if anyone is signed in, and ends the
// session.
func (c *Controller) SignOut(ctx context.Context) error {
	if cur := c.sessions.Current(); cur != nil {
		if err := c.profiles.TouchLastLogout(ctx, cur.ID); err != nil {
			c.log.Warn("update last logout", "user_id", cur.ID, "error", err)
		}
	}

	if err := c.provider.SignOut(ctx); err != nil {
		_, raw := classify(err)
		c.alerts.Danger(msgLogoutFailed + raw)
		return fmt.Errorf("auth.Controller.SignOut: %w", err)
	}
	c.awaitSession(ctx)
	c.alerts.Success(MsgLoggedOut)
	return nil
}

// RequestPasswordReset sends a password reset email.
func (c *Controller) RequestPasswordReset(ctx context.Context, email string) error {
	if err := c.validate.Struct(resetRequest{Email: email}); err != nil {
		c.alerts.Warning(msgResetMissingEmail)
		return fmt.Errorf("auth.Controller.RequestPasswordReset: %w: %v", domain.ErrValidation, err)
	}

	if err := c.provider.SendPasswordReset(ctx, email); err != nil {
		kind, raw := classify(err)
		if kind == domain.AuthUserNotFound {
			c.alerts.Warning(MsgResetNotFound)
		} else {
			c.alerts.Danger(msgResetFailed + raw)
		}
		return fmt.Errorf("auth.Controller.RequestPasswordReset: %w", err)
	}
	c.alerts.Info(MsgResetSent)
	return nil
}

// awaitSession waits until the session change the provider just published
// is visible to subscribers, so callers observe the signed-in or
// signed-out view on return.
func (c *Controller) awaitSession(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, syncTimeout)
	defer cancel()
	if err := c.sessions.Sync(ctx); err != nil {
		c.log.Warn("wait for session delivery", "error", err)
	}
}

func (c *Controller) createProfile(ctx context.Context, p domain.UserProfile) error {
	attempt := 0
	return c.policy.Do(ctx, func(ctx context.Context) error {
		attempt++
		err := c.profiles.Create(ctx, p)
		if err != nil && c.policy.Retryable != nil && c.policy.Retryable(err) {
			c.log.Warn("create profile: transient failure", "user_id", p.ID, "attempt", attempt, "error", err)
		}
		return err
	})
}

// classify returns the kind and the provider's raw message for err.
// Errors that did not come from the provider are AuthUnknown.
func classify(err error) (domain.AuthErrorKind, string) {
	var ae *domain.AuthError
	if errors.As(err, &ae) {
		return ae.Kind, ae.Error()
	}
	return domain.AuthUnknown, err.Error()
}

// registrationMessage picks the warning for the first failed sign-up field.
func registrationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return msgMissingCredentials
	}
	fe := verrs[0]
	switch {
	case fe.Field() == "Name":
		return msgMissingName
	case fe.Field() == "Email" && fe.Tag() == "email":
		return msgInvalidEmail
	case fe.Field() == "Password" && fe.Tag() == "min":
		return MsgWeakPassword
	default:
		return msgMissingCredentials
	}
}
