package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"authcore/internal/domain"
	"authcore/internal/dto"
	"authcore/internal/netutil"
	"authcore/internal/service"
)

type handlers struct {
	otp     service.OtpService
	passkey service.PasskeyService
	push    service.PushService
	methods service.MethodService
	totp    service.TotpService
}

func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		// XFF can be a list: client, proxy1, proxy2...
		ip := strings.TrimSpace(strings.Split(xff, ",")[0])
		if normalized, ok := netutil.NormalizeIP(ip); ok {
			return normalized
		}
	}
	if xr := r.Header.Get("X-Real-IP"); xr != "" {
		if normalized, ok := netutil.NormalizeIP(xr); ok {
			return normalized
		}
	}
	if normalized, ok := netutil.NormalizeIP(r.RemoteAddr); ok {
		return normalized
	}
	return r.RemoteAddr
}

func (h *handlers) otpIssue(w http.ResponseWriter, r *http.Request) {
	var req dto.OtpIssueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	res, err := h.otp.Issue(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *handlers) otpVerify(w http.ResponseWriter, r *http.Request) {
	var req dto.OtpVerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	res, err := h.otp.Verify(r.Context(), req)
	if err != nil {
		var invalid *domain.InvalidCodeError
		if errors.As(err, &invalid) {
			writeJSON(w, http.StatusUnauthorized, dto.OtpVerifyResponse{
				Verified:          false,
				RemainingAttempts: invalid.Remaining,
			})
			return
		}
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *handlers) passkeyChallenge(w http.ResponseWriter, r *http.Request) {
	var req dto.PasskeyChallengeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	res, err := h.passkey.Issue(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *handlers) passkeyConsume(w http.ResponseWriter, r *http.Request) {
	var req dto.PasskeyConsumeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	if err := h.passkey.Consume(r.Context(), req); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) pushCreate(w http.ResponseWriter, r *http.Request) {
	var req dto.PushCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	req.IP = clientIP(r)
	req.UserAgent = r.UserAgent()
	res, err := h.push.Create(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *handlers) pushRespond(w http.ResponseWriter, r *http.Request) {
	var req dto.PushRespondRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	res, err := h.push.Respond(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *handlers) pushPoll(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid request id", http.StatusBadRequest)
		return
	}
	res, err := h.push.Poll(r.Context(), domain.RequestID(id))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *handlers) pushCancel(w http.ResponseWriter, r *http.Request) {
	var body struct {
		UserID string `json:"userId"`
		Actor  string `json:"actor"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	userID, err := uuid.Parse(strings.TrimSpace(body.UserID))
	if err != nil {
		http.Error(w, "invalid userId", http.StatusBadRequest)
		return
	}
	n, err := h.push.CancelPendingForUser(r.Context(), domain.UserID(userID), body.Actor)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Cancelled int64 `json:"cancelled"`
	}{Cancelled: n})
}

func (h *handlers) methodRegister(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterMethodRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	res, err := h.methods.Register(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (h *handlers) methodList(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(strings.TrimSpace(r.URL.Query().Get("userId")))
	if err != nil {
		http.Error(w, "invalid userId", http.StatusBadRequest)
		return
	}
	res, err := h.methods.List(r.Context(), domain.UserID(userID))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *handlers) methodSetEnabled(w http.ResponseWriter, r *http.Request) {
	methodID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid method id", http.StatusBadRequest)
		return
	}
	var body struct {
		UserID  string `json:"userId"`
		Enabled bool   `json:"enabled"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	userID, err := uuid.Parse(strings.TrimSpace(body.UserID))
	if err != nil {
		http.Error(w, "invalid userId", http.StatusBadRequest)
		return
	}
	if err := h.methods.SetEnabled(r.Context(), domain.UserID(userID), domain.MethodID(methodID), body.Enabled); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) totpProvision(w http.ResponseWriter, r *http.Request) {
	var body struct {
		UserID      string `json:"userId"`
		AccountName string `json:"accountName"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	userID, err := uuid.Parse(strings.TrimSpace(body.UserID))
	if err != nil {
		http.Error(w, "invalid userId", http.StatusBadRequest)
		return
	}
	res, err := h.totp.Provision(r.Context(), domain.UserID(userID), body.AccountName)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *handlers) totpVerify(w http.ResponseWriter, r *http.Request) {
	var body struct {
		UserID string `json:"userId"`
		Code   string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	userID, err := uuid.Parse(strings.TrimSpace(body.UserID))
	if err != nil {
		http.Error(w, "invalid userId", http.StatusBadRequest)
		return
	}
	if err := h.totp.Verify(r.Context(), domain.UserID(userID), body.Code); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Verified bool `json:"verified"`
	}{Verified: true})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusBadRequest
	switch {
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrExpired):
		status = http.StatusGone
	case errors.Is(err, domain.ErrExhausted):
		status = http.StatusGone
	case errors.Is(err, domain.ErrRateLimited):
		status = http.StatusTooManyRequests
	case errors.Is(err, domain.ErrAlreadyConsumed),
		errors.Is(err, domain.ErrAlreadyUsed),
		errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrCredentialMismatch):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrInvalidCode):
		status = http.StatusUnauthorized
	case errors.Is(err, domain.ErrInvalidMetadata):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrStorageUnavailable):
		status = http.StatusServiceUnavailable
	}
	http.Error(w, err.Error(), status)
}
