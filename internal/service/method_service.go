package service

import (
	"context"

	"authcore/internal/domain"
	"authcore/internal/dto"
)

// MethodService owns the per-user catalog of authentication methods.
type MethodService interface {
	Register(ctx context.Context, req dto.RegisterMethodRequest) (*dto.MethodView, error)
	List(ctx context.Context, userID domain.UserID) ([]dto.MethodView, error)
	SetEnabled(ctx context.Context, userID domain.UserID, methodID domain.MethodID, enabled bool) error
	// RecordUse stamps lastUsedAt on a method after a successful
	// verification. Only the challenge managers call it.
	RecordUse(ctx context.Context, userID domain.UserID, methodID domain.MethodID) error
	// RecordUseByIdentifier resolves the user's method of the given type by
	// its identifier (phone/email) and stamps it, marking it verified on
	// first successful use.
	RecordUseByIdentifier(ctx context.Context, userID domain.UserID, t domain.MethodType, identifier string) error
	// RecordUseByCredential resolves a passkey method by WebAuthn
	// credential ID and stamps it.
	RecordUseByCredential(ctx context.Context, userID domain.UserID, credentialID string) error
}

type TotpService interface {
	Provision(ctx context.Context, userID domain.UserID, accountName string) (*dto.TotpProvisionResponse, error)
	Verify(ctx context.Context, userID domain.UserID, code string) error
}
