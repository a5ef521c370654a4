package service

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/popspot-calendar/internal/dto"
	appErrors "github.com/noah-isme/popspot-calendar/pkg/errors"
	"github.com/noah-isme/popspot-calendar/pkg/sharelink"
)

// ShareService issues signed links to canonical calendar queries.
type ShareService struct {
	calendar  *CalendarService
	signer    *sharelink.Signer
	baseURL   string
	validator *validator.Validate
	logger    *zap.Logger
}

// NewShareService constructs the service. baseURL is the page share links open.
func NewShareService(calendar *CalendarService, signer *sharelink.Signer, baseURL string, logger *zap.Logger) *ShareService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ShareService{
		calendar:  calendar,
		signer:    signer,
		baseURL:   strings.TrimRight(baseURL, "/"),
		validator: validator.New(),
		logger:    logger,
	}
}

// Create signs the canonical form of req.Query.
func (s *ShareService) Create(ctx context.Context, req dto.ShareRequest) (*dto.ShareResponse, error) {
	if err := s.validator.StructCtx(ctx, req); err != nil {
		return nil, appErrors.Validation(err, "invalid share payload")
	}
	canonical := s.calendar.Canonical(ParseRawQuery(req.Query)).Encode()
	token, expiresAt, err := s.signer.Sign(canonical)
	if err != nil {
		if errors.Is(err, sharelink.ErrNoSecret) {
			return nil, appErrors.Clone(appErrors.ErrUnsupported, "share links are not configured")
		}
		return nil, appErrors.WrapAs(err, appErrors.ErrInternal, "failed to sign share link")
	}
	return &dto.ShareResponse{
		Token:     token,
		URL:       s.baseURL + "/share/" + url.PathEscape(token),
		Query:     canonical,
		ExpiresAt: expiresAt,
	}, nil
}

// Resolve opens a share token. A bad or expired token opens the default
// state instead of failing.
func (s *ShareService) Resolve(token string) dto.ShareResolveResponse {
	raw, _, err := s.signer.Verify(strings.TrimSpace(token))
	valid := err == nil
	if !valid {
		s.logger.Info("share token rejected", zap.Error(err))
		raw = ""
	}
	values := s.calendar.Canonical(ParseRawQuery(raw))
	codec := s.calendar.Codec()
	return dto.ShareResolveResponse{
		Valid:    valid,
		Query:    values.Encode(),
		State:    codec.Parse(values),
		Location: codec.ParseLocationFilter(values),
	}
}
