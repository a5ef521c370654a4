package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/noah-isme/popspot-calendar/internal/models"
	"github.com/noah-isme/popspot-calendar/internal/source"
	appErrors "github.com/noah-isme/popspot-calendar/pkg/errors"
)

type likeReader interface {
	LikedEventIDs(ctx context.Context, userID string) ([]string, error)
}

// ViewerService turns an optional bearer token into the viewer capability.
// Calendar views never fail because of authentication: any problem yields
// the anonymous viewer.
type ViewerService struct {
	secret []byte
	likes  likeReader
	logger *zap.Logger
}

// NewViewerService constructs the service. likes may be nil when no store of
// liked events is configured.
func NewViewerService(secret string, likes likeReader, logger *zap.Logger) *ViewerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ViewerService{secret: []byte(secret), likes: likes, logger: logger}
}

// ValidateToken parses and validates an HS256 viewer token.
func (s *ViewerService) ValidateToken(tokenString string) (*models.ViewerClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.ViewerClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, appErrors.WrapAs(err, appErrors.ErrUnauthorized, "invalid token")
	}
	claims, ok := token.Claims.(*models.ViewerClaims)
	if !ok || !token.Valid || strings.TrimSpace(claims.UserID) == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}
	return claims, nil
}

// IssueToken signs a viewer token; used by tooling and tests.
func (s *ViewerService) IssueToken(userID string, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := &models.ViewerClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Resolve returns the viewer for the Authorization header value.
func (s *ViewerService) Resolve(ctx context.Context, authorization string) source.Viewer {
	scheme, token, found := strings.Cut(strings.TrimSpace(authorization), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || len(s.secret) == 0 {
		return source.Anonymous()
	}
	claims, err := s.ValidateToken(strings.TrimSpace(token))
	if err != nil {
		s.logger.Debug("ignoring invalid viewer token", zap.Error(err))
		return source.Anonymous()
	}

	viewer := source.StaticViewer{UserID: claims.UserID}
	if s.likes == nil {
		return viewer
	}
	liked, err := s.likes.LikedEventIDs(ctx, claims.UserID)
	if err != nil {
		s.logger.Warn("liked events unavailable", zap.String("user_id", claims.UserID), zap.Error(err))
		return viewer
	}
	viewer.Liked = liked
	return viewer
}
