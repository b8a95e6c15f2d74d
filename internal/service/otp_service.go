package service

import (
	"context"

	"authcore/internal/dto"
)

type OtpService interface {
	Issue(ctx context.Context, req dto.OtpIssueRequest) (*dto.OtpIssueResponse, error)
	Verify(ctx context.Context, req dto.OtpVerifyRequest) (*dto.OtpVerifyResponse, error)
}
