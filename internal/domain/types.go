package domain

import "github.com/google/uuid"

type UserID = uuid.UUID
type MethodID = uuid.UUID
type SessionID = uuid.UUID
type ChallengeID = uuid.UUID
type RequestID = uuid.UUID
