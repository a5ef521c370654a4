package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/popspot-calendar/internal/dto"
	"github.com/noah-isme/popspot-calendar/internal/models"
	appErrors "github.com/noah-isme/popspot-calendar/pkg/errors"
	"github.com/noah-isme/popspot-calendar/pkg/sharelink"
)

func TestShareServiceRoundTrip(t *testing.T) {
	svc := NewShareService(newCalendarService(&stubSource{}), sharelink.NewSigner("secret", time.Hour), "https://popspot.example/", nil)

	link, err := svc.Create(context.Background(), dto.ShareRequest{Query: "?region=seoul&categories=popup&sort=views&utm=x"})
	require.NoError(t, err)
	assert.Equal(t, "categories=popup&month=10&regionId=seoul&sort=views&utm=x&year=2026", link.Query)
	assert.True(t, strings.HasPrefix(link.URL, "https://popspot.example/share/"))

	resolved := svc.Resolve(link.Token)
	assert.True(t, resolved.Valid)
	assert.Equal(t, link.Query, resolved.Query)
	assert.Equal(t, "seoul", resolved.State.RegionID)
	assert.Equal(t, "views", string(resolved.Location.SortBy))
}

func TestShareServiceInvalidTokenOpensDefault(t *testing.T) {
	svc := NewShareService(newCalendarService(&stubSource{}), sharelink.NewSigner("secret", time.Hour), "", nil)

	resolved := svc.Resolve("forged.123.abc")

	assert.False(t, resolved.Valid)
	assert.Equal(t, "month=10&year=2026", resolved.Query)
	assert.True(t, resolved.State.ActiveCategories.AllActive())
	assert.Equal(t, models.RegionAll, resolved.State.RegionID)
}

func TestShareServiceWithoutSecret(t *testing.T) {
	svc := NewShareService(newCalendarService(&stubSource{}), sharelink.NewSigner("", time.Hour), "", nil)

	_, err := svc.Create(context.Background(), dto.ShareRequest{Query: "year=2026"})
	assert.ErrorIs(t, err, appErrors.ErrUnsupported)
}
