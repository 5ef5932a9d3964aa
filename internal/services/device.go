package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"time"

	"github.com/go-authgate/pairgate/internal/config"
	"github.com/go-authgate/pairgate/internal/core"
	"github.com/go-authgate/pairgate/internal/models"
	"github.com/go-authgate/pairgate/internal/store"
	"github.com/go-authgate/pairgate/internal/token"
	"github.com/go-authgate/pairgate/internal/util"
)

const (
	minDeviceCodeLifetime = 60 * time.Second
	minPollingInterval    = 1
)

// Poll outcomes
const (
	PollStatusPending  = "pending"
	PollStatusApproved = "approved"
	PollStatusExpired  = "expired"
	PollStatusConsumed = "consumed"
)

// StartResult is returned to the device that begins pairing.
type StartResult struct {
	DeviceCode              string
	UserCode                string
	VerificationURI         string
	VerificationURIComplete string
	Interval                int
	ExpiresIn               int
}

// PollResult is the state of a pairing as seen by the polling device.
// Token and UserID are set only when Status is approved.
type PollResult struct {
	Status string
	Token  *token.Result
	UserID string
}

type DeviceService struct {
	store   *store.Store
	config  *config.Config
	tokens  *token.AppTokenProvider
	audit   *AuditService
	metrics core.Recorder
	now     func() time.Time
}

func NewDeviceService(
	s *store.Store,
	cfg *config.Config,
	tokens *token.AppTokenProvider,
	audit *AuditService,
	m core.Recorder,
) *DeviceService {
	return &DeviceService{
		store:   s,
		config:  cfg,
		tokens:  tokens,
		audit:   audit,
		metrics: m,
		now:     time.Now,
	}
}

// Start issues a fresh device code and user code. Nil arguments take the
// configured defaults; out-of-range values are clamped.
func (s *DeviceService) Start(ctx context.Context, interval, expiresIn *int) (*StartResult, error) {
	lifetime := s.config.DeviceCodeExpiration
	if expiresIn != nil {
		lifetime = time.Duration(*expiresIn) * time.Second
	}
	lifetime = max(lifetime, minDeviceCodeLifetime)
	if s.config.DeviceCodeMaxExpiration > 0 {
		lifetime = min(lifetime, s.config.DeviceCodeMaxExpiration)
	}

	poll := s.config.PollingInterval
	if interval != nil {
		poll = *interval
	}
	poll = max(poll, minPollingInterval)

	deviceCode, err := util.GenerateDeviceCode()
	if err != nil {
		s.metrics.RecordDeviceCodeIssued(false)
		return nil, fmt.Errorf("%w: %v", ErrServer, err)
	}
	userCode, err := util.GenerateUserCode()
	if err != nil {
		s.metrics.RecordDeviceCodeIssued(false)
		return nil, fmt.Errorf("%w: %v", ErrServer, err)
	}
	salt, err := util.CryptoRandomString(20)
	if err != nil {
		s.metrics.RecordDeviceCodeIssued(false)
		return nil, fmt.Errorf("%w: %v", ErrServer, err)
	}

	dc := &models.DeviceCode{
		DeviceCode:     deviceCode,
		DeviceCodeHash: util.HashToken(deviceCode, salt),
		DeviceCodeSalt: salt,
		DeviceCodeID:   util.DeviceCodeID(deviceCode),
		UserCode:       userCode,
		Status:         models.DeviceCodeStatusPending,
		Interval:       poll,
		ExpiresAt:      s.now().Add(lifetime),
	}
	if err := s.store.CreateDeviceCode(ctx, dc); err != nil {
		s.metrics.RecordDeviceCodeIssued(false)
		return nil, fmt.Errorf("%w: %v", ErrDatabase, err)
	}
	s.metrics.RecordDeviceCodeIssued(true)

	s.audit.Log(ctx, AuditLogEntry{
		EventType:    models.EventDeviceCodeIssued,
		ResourceType: models.ResourceDeviceCode,
		ResourceID:   dc.DeviceCodeID,
		Action:       "Device code issued",
		Details:      models.JSONMap{"user_code": userCode, "expires_in": int(lifetime.Seconds())},
		Success:      true,
	})

	verificationURI := s.config.VerificationURI()
	return &StartResult{
		DeviceCode:              deviceCode,
		UserCode:                userCode,
		VerificationURI:         verificationURI,
		VerificationURIComplete: verificationURI + "?user_code=" + url.QueryEscape(userCode),
		Interval:                poll,
		ExpiresIn:               int(lifetime.Seconds()),
	}, nil
}

// findByDeviceCode verifies the hash of every record sharing the lookup
// suffix. Newest matching record wins.
func (s *DeviceService) findByDeviceCode(
	ctx context.Context,
	deviceCode string,
) (*models.DeviceCode, error) {
	if !util.IsDeviceCodeFormat(deviceCode) {
		return nil, ErrDeviceCodeNotFound
	}

	candidates, err := s.store.GetDeviceCodesByID(ctx, util.DeviceCodeID(deviceCode))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabase, err)
	}
	for _, dc := range candidates {
		if util.VerifyTokenHash(deviceCode, dc.DeviceCodeSalt, dc.DeviceCodeHash) {
			dc.DeviceCode = deviceCode
			return dc, nil
		}
	}
	return nil, ErrDeviceCodeNotFound
}

func (s *DeviceService) findByUserCode(ctx context.Context, userCode string) (*models.DeviceCode, error) {
	code := util.NormalizeUserCode(userCode)
	if !util.IsUserCodeFormat(code) {
		return nil, ErrDeviceCodeNotFound
	}

	dc, err := s.store.GetDeviceCodeByUserCode(ctx, code)
	if errors.Is(err, store.ErrRecordNotFound) {
		// nothing pending; report the latest record so a used code conflicts
		dc, err = s.store.GetLatestDeviceCodeByUserCode(ctx, code)
	}
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, ErrDeviceCodeNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrDatabase, err)
	}
	return dc, nil
}

func (s *DeviceService) expired(dc *models.DeviceCode) bool {
	return dc.IsExpired(s.now())
}

// Approve binds userID to the pairing identified by deviceCode or, when that
// is empty, by userCode. Exactly one of concurrent approvals succeeds.
func (s *DeviceService) Approve(
	ctx context.Context,
	userID, deviceCode, userCode string,
) (*models.DeviceCode, error) {
	if userID == "" {
		return nil, ErrUnauthorized
	}

	var (
		dc  *models.DeviceCode
		err error
	)
	switch {
	case deviceCode != "":
		dc, err = s.findByDeviceCode(ctx, deviceCode)
	case userCode != "":
		dc, err = s.findByUserCode(ctx, userCode)
	default:
		return nil, fmt.Errorf("%w: device_code or user_code is required", ErrInvalidRequest)
	}
	if err != nil {
		return nil, err
	}

	if s.expired(dc) {
		return nil, ErrDeviceCodeExpired
	}
	if !dc.IsPending() {
		s.logConflict(ctx, userID, dc)
		return nil, ErrDeviceCodeUsed
	}

	now := s.now()
	if err := s.store.ApproveDeviceCode(ctx, dc.ID, userID, now); err != nil {
		if errors.Is(err, store.ErrStaleState) {
			s.logConflict(ctx, userID, dc)
			return nil, ErrDeviceCodeUsed
		}
		return nil, fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	dc.Status = models.DeviceCodeStatusApproved
	dc.ApprovedByUserID = userID
	dc.ApprovedAt = &now
	s.metrics.RecordDeviceCodeApproved(now.Sub(dc.CreatedAt))

	s.audit.Log(ctx, AuditLogEntry{
		EventType:    models.EventDeviceCodeApproved,
		ActorUserID:  userID,
		ResourceType: models.ResourceDeviceCode,
		ResourceID:   dc.DeviceCodeID,
		Action:       "Device code approved",
		Details:      models.JSONMap{"user_code": dc.UserCode},
		Success:      true,
	})

	return dc, nil
}

func (s *DeviceService) logConflict(ctx context.Context, userID string, dc *models.DeviceCode) {
	s.audit.Log(ctx, AuditLogEntry{
		EventType:    models.EventPairingConflict,
		Severity:     models.SeverityWarning,
		ActorUserID:  userID,
		ResourceType: models.ResourceDeviceCode,
		ResourceID:   dc.DeviceCodeID,
		Action:       "Approval of a device code that is no longer pending",
		Success:      false,
	})
}

// Poll reports the pairing state to the device and, once approved, hands
// it an app token for the approving user.
func (s *DeviceService) Poll(ctx context.Context, deviceCode string) (*PollResult, error) {
	dc, err := s.findByDeviceCode(ctx, deviceCode)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			s.metrics.RecordDeviceCodePoll("not_found")
		}
		return nil, err
	}

	result, err := s.poll(ctx, dc)
	if err != nil {
		return nil, err
	}
	s.metrics.RecordDeviceCodePoll(result.Status)
	return result, nil
}

func (s *DeviceService) poll(ctx context.Context, dc *models.DeviceCode) (*PollResult, error) {
	if s.expired(dc) {
		return &PollResult{Status: PollStatusExpired}, nil
	}

	switch dc.Status {
	case models.DeviceCodeStatusPending:
		return &PollResult{Status: PollStatusPending}, nil
	case models.DeviceCodeStatusConsumed:
		return &PollResult{Status: PollStatusConsumed}, nil
	case models.DeviceCodeStatusApproved:
	default:
		return nil, fmt.Errorf("%w: unknown device code status %q", ErrServer, dc.Status)
	}

	if s.config.DeviceSingleUse {
		if err := s.store.ConsumeDeviceCode(ctx, dc.ID, s.now()); err != nil {
			if !errors.Is(err, store.ErrStaleState) {
				return nil, fmt.Errorf("%w: %v", ErrDatabase, err)
			}
			// Another poll consumed it first, or it just expired
			fresh, err := s.store.GetDeviceCode(ctx, dc.ID)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrDatabase, err)
			}
			if s.expired(fresh) {
				return &PollResult{Status: PollStatusExpired}, nil
			}
			return &PollResult{Status: PollStatusConsumed}, nil
		}
		s.audit.Log(ctx, AuditLogEntry{
			EventType:    models.EventDeviceCodeConsumed,
			ActorUserID:  dc.ApprovedByUserID,
			ResourceType: models.ResourceDeviceCode,
			ResourceID:   dc.DeviceCodeID,
			Action:       "Device code consumed",
			Success:      true,
		})
	}

	start := time.Now()
	tok, err := s.tokens.Issue(dc.ApprovedByUserID)
	if err != nil {
		log.Printf("[Device] failed to issue app token for %s: %v", dc.DeviceCodeID, err)
		return nil, fmt.Errorf("%w: %v", ErrServer, err)
	}
	s.metrics.RecordAppTokenIssued(time.Since(start))

	s.audit.Log(ctx, AuditLogEntry{
		EventType:    models.EventAppTokenIssued,
		ActorUserID:  dc.ApprovedByUserID,
		ResourceType: models.ResourceAppToken,
		ResourceID:   tok.ID,
		Action:       "App token issued to paired device",
		Details:      models.JSONMap{"device_code_id": dc.DeviceCodeID},
		Success:      true,
	})

	return &PollResult{
		Status: PollStatusApproved,
		Token:  tok,
		UserID: dc.ApprovedByUserID,
	}, nil
}
