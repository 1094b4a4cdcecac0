package job

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/contentwell/contentwell/internal/models"
	"github.com/contentwell/contentwell/internal/repository"
	"github.com/contentwell/contentwell/internal/service"
)

type TokenRefreshJob struct {
	cr repository.CredentialRepository
	tw service.TwitterService
	fb service.FacebookService
	ig service.InstagramService
	dr service.DriveService
}

func NewTokenRefreshJob(
	cr repository.CredentialRepository,
	tw service.TwitterService,
	fb service.FacebookService,
	ig service.InstagramService,
	dr service.DriveService) *TokenRefreshJob {
	return &TokenRefreshJob{
		cr: cr,
		tw: tw,
		fb: fb,
		ig: ig,
		dr: dr,
	}
}

// RefreshTokens renews credentials expiring within the next half hour.
// Credentials without a refresh token are flagged for re-authorization
// instead; LinkedIn always lands there once its token runs out.
func (c *TokenRefreshJob) RefreshTokens() {
	ctx := context.Background()

	deadline := time.Now().Add(30 * time.Minute)

	credentials, err := c.cr.ListExpiringBefore(ctx, deadline)
	if err != nil {
		slog.Info(err.Error())
		return
	}

	var wg sync.WaitGroup

	concurrencyLimit := 10
	semaphore := make(chan struct{}, concurrencyLimit)

	for _, cred := range credentials {

		wg.Add(1)
		semaphore <- struct{}{}

		go func(cred *models.Credential) {
			defer wg.Done()
			defer func() { <-semaphore }()

			if !cred.HasRefreshToken() && cred.Platform != models.PlatformFacebook {
				if err := c.cr.SetStatus(ctx, cred.ID, models.CredentialStatusReauthNeeded); err != nil {
					slog.Info(err.Error())
				}
				return
			}

			var err error
			switch cred.Platform {
			case models.PlatformTwitter:
				err = c.tw.Refresh(ctx, cred)
			case models.PlatformFacebook:
				err = c.fb.Refresh(ctx, cred)
			case models.PlatformInstagram:
				err = c.ig.Refresh(ctx, cred)
			case models.PlatformGDrive:
				err = c.dr.Refresh(ctx, cred)
			default:
				return
			}

			if err != nil {
				slog.Info(fmt.Sprintf("Unable to refresh token for %s credential %d: %v", cred.Platform, cred.ID, err))
				if serr := c.cr.SetStatus(ctx, cred.ID, models.CredentialStatusReauthNeeded); serr != nil {
					slog.Info(serr.Error())
				}
			}
		}(cred)
	}

	wg.Wait()
}
