package handlers

import (
	"fmt"
	"log"
	"log/slog"
	"net/url"
	"strconv"

	config "github.com/contentwell/contentwell/configs"
	"github.com/contentwell/contentwell/internal/models"
	"github.com/contentwell/contentwell/internal/service"
	"github.com/contentwell/contentwell/pkg/utils"
	"github.com/gofiber/fiber/v2"
)

type PlatformHandler struct {
	cs  service.ConnectService
	li  service.LinkedinService
	tw  service.TwitterService
	fb  service.FacebookService
	ig  service.InstagramService
	dr  service.DriveService
	cfg config.Config
}

func NewPlatformHandler(
	cs service.ConnectService,
	li service.LinkedinService,
	tw service.TwitterService,
	fb service.FacebookService,
	ig service.InstagramService,
	dr service.DriveService,
	cfg config.Config) *PlatformHandler {
	return &PlatformHandler{
		cs:  cs,
		li:  li,
		tw:  tw,
		fb:  fb,
		ig:  ig,
		dr:  dr,
		cfg: cfg,
	}
}

// Connect starts the authorization round-trip. The state query parameter is
// the caller's session token since the provider redirect carries no cookies.
func (h *PlatformHandler) Connect(c *fiber.Ctx) error {
	platform := c.Params("platform")

	claims, err := utils.ValidateToken(h.cfg.SecretKey, c.Query("state"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to validate user",
		})
	}

	userID, err := strconv.ParseInt(claims.UserID, 10, 64)
	if err != nil {
		slog.Info(err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to validate user",
		})
	}

	authURL, err := h.cs.AuthorizeURL(c.Context(), userID, platform)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Redirect(authURL)
}

// CallbackHandler finishes the round-trip: the state parameter is decoded
// and claimed exactly once, then the platform service exchanges the code.
// The browser always ends up back on the frontend accounts page.
func (h *PlatformHandler) CallbackHandler(c *fiber.Ctx) error {
	platform := c.Params("platform")

	state, err := service.DecodeOAuthState(c.Query("state"))
	if err != nil {
		slog.Info(err.Error())
		return h.redirectResult(c, platform, "invalid state")
	}

	if state.Platform != platform {
		return h.redirectResult(c, platform, "state platform mismatch")
	}

	codeVerifier, err := h.cs.ClaimPending(state)
	if err != nil {
		slog.Info(err.Error())
		return h.redirectResult(c, platform, err.Error())
	}

	if denied := c.Query("error"); denied != "" {
		h.cs.Complete(state.UserID, platform, service.ConnectResult{
			Platform: platform,
			Status:   "error",
			Message:  denied,
		})
		return h.redirectResult(c, platform, denied)
	}

	code := c.Query("code")

	switch platform {
	case models.PlatformLinkedin:
		err = h.li.Callback(c.Context(), code, state.UserID)
	case models.PlatformTwitter:
		err = h.tw.Callback(c.Context(), code, codeVerifier, state.UserID)
	case models.PlatformFacebook:
		err = h.fb.Callback(c.Context(), code, state.UserID)
	case models.PlatformInstagram:
		err = h.ig.Callback(c.Context(), code, state.UserID)
	case models.PlatformGDrive:
		err = h.dr.Callback(c.Context(), code, state.UserID)
	default:
		err = fmt.Errorf("unknown platform %q", platform)
	}

	if err != nil {
		h.cs.Complete(state.UserID, platform, service.ConnectResult{
			Platform: platform,
			Status:   "error",
			Message:  err.Error(),
		})
		return h.redirectResult(c, platform, "something went wrong")
	}

	h.cs.Complete(state.UserID, platform, service.ConnectResult{
		Platform: platform,
		Status:   "connected",
	})

	return h.redirectResult(c, platform, "")
}

func (h *PlatformHandler) redirectResult(c *fiber.Ctx, platform, errMsg string) error {
	redirectURL := fmt.Sprintf("%s/dashboard/accounts?connected=%s", h.cfg.FrontendURL, platform)
	if errMsg != "" {
		redirectURL = fmt.Sprintf("%s/dashboard/accounts?error=%s", h.cfg.FrontendURL, url.QueryEscape(errMsg))
	}
	return c.Redirect(redirectURL, fiber.StatusTemporaryRedirect)
}

// AwaitConnection long-polls until the in-flight authorization for this
// user and platform resolves.
func (h *PlatformHandler) AwaitConnection(c *fiber.Ctx) error {
	userID := GetUserID(c)
	platform := c.Params("platform")

	result := h.cs.Await(c.Context(), userID, platform)
	return c.Status(fiber.StatusOK).JSON(result)
}

func (h *PlatformHandler) ListConnectedAccounts(c *fiber.Ctx) error {
	userID := GetUserID(c)

	accountList, err := h.cs.List(c.Context(), userID)
	if err != nil {
		log.Println(err.Error())
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch connected accounts",
		})
	}

	return c.Status(fiber.StatusOK).JSON(accountList)
}

func (h *PlatformHandler) DisconnectAccount(c *fiber.Ctx) error {
	userID := GetUserID(c)
	credentialID := c.QueryInt("id", 0)

	err := h.cs.Disconnect(c.Context(), userID, int64(credentialID))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to disconnect account",
		})
	}

	return c.SendStatus(fiber.StatusOK)
}
