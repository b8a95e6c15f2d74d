package impl

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pquerna/otp/totp"

	"authcore/internal/domain"
	"authcore/internal/dto"
	"authcore/internal/service"
	"authcore/internal/store"
)

var _ service.TotpService = (*TotpServiceImpl)(nil)

type TotpConfig struct {
	Issuer string
}

func DefaultTotpConfig() TotpConfig {
	return TotpConfig{Issuer: "authcore"}
}

type TotpServiceImpl struct {
	cfg     TotpConfig
	methods methodStore
	now     func() time.Time
}

func NewTotpService(cfg TotpConfig, st *store.Store) *TotpServiceImpl {
	return &TotpServiceImpl{
		cfg:     cfg,
		methods: st.Methods(),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Provision generates a fresh shared secret and registers an unverified
// authenticator-app method. The method stays unconfigured until the user
// proves possession with Verify.
func (s *TotpServiceImpl) Provision(ctx context.Context, userID domain.UserID, accountName string) (*dto.TotpProvisionResponse, error) {
	accountName = strings.TrimSpace(accountName)
	if accountName == "" {
		return nil, ErrEmptyIdentifier
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      s.cfg.Issuer,
		AccountName: accountName,
	})
	if err != nil {
		return nil, err
	}

	meta, err := domain.NewTotpMetadata(key.Secret())
	if err != nil {
		return nil, err
	}
	raw, err := domain.EncodeMetadata(meta)
	if err != nil {
		return nil, err
	}

	now := s.now()
	m := &domain.AuthenticationMethod{
		ID:          uuid.New(),
		UserID:      userID,
		Type:        domain.MethodTOTP,
		DisplayName: methodLabel(domain.MethodTOTP),
		Enabled:     true,
		Metadata:    raw,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.methods.Create(ctx, m); err != nil {
		return nil, err
	}

	slog.Info("totp method provisioned", "method_id", m.ID, "user_id", userID)
	return &dto.TotpProvisionResponse{
		MethodID:   m.ID.String(),
		SecretKey:  key.Secret(),
		OtpauthURL: key.URL(),
	}, nil
}

// Verify checks the code against every authenticator-app method the user
// has enrolled. The first match is stamped as used and, on its first
// successful check, marked verified.
func (s *TotpServiceImpl) Verify(ctx context.Context, userID domain.UserID, code string) error {
	code = strings.TrimSpace(code)
	if code == "" {
		return ErrEmptyCode
	}

	methods, err := s.methods.ListByUserAndType(ctx, userID, domain.MethodTOTP)
	if err != nil {
		return err
	}
	if len(methods) == 0 {
		return domain.ErrNotFound
	}

	for i := range methods {
		if !methods[i].Enabled {
			continue
		}
		meta, err := methods[i].Meta()
		if err != nil {
			continue
		}
		tm, ok := meta.(*domain.TotpMetadata)
		if !ok || !totp.Validate(code, tm.SecretKey) {
			continue
		}
		if !tm.Verified {
			tm.Verified = true
			raw, err := domain.EncodeMetadata(tm)
			if err != nil {
				return err
			}
			if err := s.methods.UpdateMetadata(ctx, methods[i].ID, raw, s.now()); err != nil {
				return err
			}
		}
		if err := s.methods.MarkUsed(ctx, methods[i].ID, s.now()); err != nil {
			return err
		}
		slog.Info("totp code verified", "method_id", methods[i].ID, "user_id", userID)
		return nil
	}
	return domain.ErrInvalidCode
}
