package auth

import (
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// UserInfoURL returns the Google profile of the signed-in account.
const UserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// InitGoogleOAuthConfig собирает конфиг Google OAuth для входа.
func InitGoogleOAuthConfig(clientID, clientSecret, redirectURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Scopes: []string{
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
		},
		Endpoint: google.Endpoint,
	}
}
