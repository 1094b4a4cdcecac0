package service

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/contentwell/contentwell/internal/transfer"
)

func GetExpiresAt(expiresIn int) time.Time {
	return time.Now().Add(time.Duration(expiresIn) * time.Second)
}

func GetUserInfo(client *http.Client) (*transfer.GoogleUserInfo, error) {
	resp, err := client.Get("https://www.googleapis.com/oauth2/v2/userinfo")
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer resp.Body.Close()

	var userInfo transfer.GoogleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&userInfo); err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	return &userInfo, nil
}

func RevokeGoogleAccess(accessToken string) error {
	resp, err := http.PostForm("https://oauth2.googleapis.com/revoke", map[string][]string{
		"token": {accessToken},
	})
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	defer resp.Body.Close()
	return nil
}
