package impl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"authcore/internal/domain"
	"authcore/internal/dto"
	"authcore/internal/service"
	"authcore/internal/store"
)

var _ service.MethodService = (*MethodServiceImpl)(nil)

type methodStore interface {
	Create(ctx context.Context, m *domain.AuthenticationMethod) error
	Get(ctx context.Context, userID domain.UserID, id domain.MethodID) (*domain.AuthenticationMethod, error)
	ListByUser(ctx context.Context, userID domain.UserID) ([]domain.AuthenticationMethod, error)
	ListByUserAndType(ctx context.Context, userID domain.UserID, t domain.MethodType) ([]domain.AuthenticationMethod, error)
	MarkUsed(ctx context.Context, id domain.MethodID, at time.Time) error
	SetEnabled(ctx context.Context, userID domain.UserID, id domain.MethodID, enabled bool, at time.Time) error
	UpdateMetadata(ctx context.Context, id domain.MethodID, metadata []byte, at time.Time) error
}

type MethodServiceImpl struct {
	methods methodStore
	now     func() time.Time
}

func NewMethodService(st *store.Store) *MethodServiceImpl {
	return &MethodServiceImpl{
		methods: st.Methods(),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (s *MethodServiceImpl) Register(ctx context.Context, req dto.RegisterMethodRequest) (*dto.MethodView, error) {
	userID, err := uuid.Parse(strings.TrimSpace(req.UserID))
	if err != nil {
		return nil, ErrInvalidUserID
	}
	t := domain.MethodType(req.Type)
	if !t.Valid() {
		return nil, fmt.Errorf("%w: unknown method type %q", domain.ErrInvalidMetadata, req.Type)
	}

	meta, err := metadataFromPayload(t, req.Metadata)
	if err != nil {
		return nil, err
	}
	raw, err := domain.EncodeMetadata(meta)
	if err != nil {
		return nil, err
	}

	displayName := strings.TrimSpace(req.DisplayName)
	if displayName == "" {
		displayName = methodLabel(t)
	}

	now := s.now()
	m := &domain.AuthenticationMethod{
		ID:          uuid.New(),
		UserID:      userID,
		Type:        t,
		DisplayName: displayName,
		Enabled:     true,
		Metadata:    raw,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.methods.Create(ctx, m); err != nil {
		return nil, err
	}

	slog.Info("authentication method registered",
		"method_id", m.ID,
		"user_id", userID,
		"type", t,
	)
	return methodView(m), nil
}

// metadataFromPayload builds the typed variant for the method type; the
// variant constructors reject missing required fields.
func metadataFromPayload(t domain.MethodType, p dto.MethodMetadataPayload) (domain.MethodMetadata, error) {
	switch {
	case t == domain.MethodPasskey:
		return domain.NewPasskeyMetadata(p.CredentialID, p.PublicKey)
	case t == domain.MethodTOTP:
		return domain.NewTotpMetadata(p.SecretKey)
	case t == domain.MethodSMSOTP, t == domain.MethodEmailOTP:
		return domain.NewOtpMetadata(t, p.Identifier, p.CountryCode)
	case t.IsOAuth():
		return domain.NewOAuthMetadata(p.Provider, p.ProviderUserID)
	}
	return nil, fmt.Errorf("%w: unknown method type %s", domain.ErrInvalidMetadata, t)
}

func (s *MethodServiceImpl) List(ctx context.Context, userID domain.UserID) ([]dto.MethodView, error) {
	methods, err := s.methods.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	views := make([]dto.MethodView, 0, len(methods))
	for i := range methods {
		views = append(views, *methodView(&methods[i]))
	}
	return views, nil
}

func (s *MethodServiceImpl) SetEnabled(ctx context.Context, userID domain.UserID, methodID domain.MethodID, enabled bool) error {
	err := s.methods.SetEnabled(ctx, userID, methodID, enabled, s.now())
	if errors.Is(err, store.ErrRecordNotFound) {
		return domain.ErrNotFound
	}
	return err
}

func (s *MethodServiceImpl) RecordUse(ctx context.Context, userID domain.UserID, methodID domain.MethodID) error {
	m, err := s.methods.Get(ctx, userID, methodID)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return domain.ErrNotFound
		}
		return err
	}
	return s.markUsed(ctx, m)
}

func (s *MethodServiceImpl) RecordUseByIdentifier(ctx context.Context, userID domain.UserID, t domain.MethodType, identifier string) error {
	methods, err := s.methods.ListByUserAndType(ctx, userID, t)
	if err != nil {
		return err
	}
	for i := range methods {
		meta, err := methods[i].Meta()
		if err != nil {
			continue
		}
		otp, ok := meta.(*domain.OtpMetadata)
		if !ok || otp.Identifier != identifier {
			continue
		}
		if !otp.Verified {
			// First successful challenge verifies the enrollment.
			otp.Verified = true
			raw, err := domain.EncodeMetadata(otp)
			if err != nil {
				return err
			}
			if err := s.methods.UpdateMetadata(ctx, methods[i].ID, raw, s.now()); err != nil {
				return err
			}
		}
		return s.markUsed(ctx, &methods[i])
	}
	return domain.ErrNotFound
}

func (s *MethodServiceImpl) RecordUseByCredential(ctx context.Context, userID domain.UserID, credentialID string) error {
	methods, err := s.methods.ListByUserAndType(ctx, userID, domain.MethodPasskey)
	if err != nil {
		return err
	}
	for i := range methods {
		meta, err := methods[i].Meta()
		if err != nil {
			continue
		}
		pk, ok := meta.(*domain.PasskeyMetadata)
		if !ok || pk.CredentialID != credentialID {
			continue
		}
		return s.markUsed(ctx, &methods[i])
	}
	return domain.ErrNotFound
}

func (s *MethodServiceImpl) markUsed(ctx context.Context, m *domain.AuthenticationMethod) error {
	if err := s.methods.MarkUsed(ctx, m.ID, s.now()); err != nil {
		return err
	}
	slog.Debug("authentication method used",
		"method_id", m.ID,
		"user_id", m.UserID,
		"type", m.Type,
	)
	return nil
}

func methodView(m *domain.AuthenticationMethod) *dto.MethodView {
	configured := false
	if meta, err := m.Meta(); err == nil {
		configured = meta.Configured()
	}
	return &dto.MethodView{
		ID:               m.ID.String(),
		Type:             string(m.Type),
		DisplayName:      m.DisplayName,
		MaskedIdentifier: MaskedIdentifier(m),
		SecurityLevel:    string(SecurityLevelFor(m.Type)),
		Configured:       configured,
		Enabled:          m.Enabled,
		LastUsedAt:       m.LastUsedAt,
		CreatedAt:        m.CreatedAt,
	}
}
