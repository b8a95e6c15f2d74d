package service

import (
	"context"

	"authcore/internal/dto"
)

type PasskeyService interface {
	Issue(ctx context.Context, req dto.PasskeyChallengeRequest) (*dto.PasskeyChallengeResponse, error)
	Consume(ctx context.Context, req dto.PasskeyConsumeRequest) error
}
