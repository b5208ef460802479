package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	firebase "firebase.google.com/go/v4"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"

	"github.com/briangreenhill/coachprompt/internal/config"
)

var firebaseScopes = []string{
	"https://www.googleapis.com/auth/cloud-platform",
	"https://www.googleapis.com/auth/datastore",
	"https://www.googleapis.com/auth/firebase",
	"https://www.googleapis.com/auth/identitytoolkit",
	"https://www.googleapis.com/auth/userinfo.email",
}

// ErrNoCredentials is returned when neither inline service-account fields
// nor a credentials file are available.
var ErrNoCredentials = errors.New("no firebase credentials configured")

// serviceAccountJSON renders the inline fields in the key-file format the
// Google credential loader expects. Private keys copied from a key file
// usually arrive with literal "\n" sequences.
func serviceAccountJSON(cfg config.FirebaseConfig) ([]byte, error) {
	return json.Marshal(map[string]string{
		"type":                        "service_account",
		"project_id":                  cfg.ProjectID,
		"private_key_id":              cfg.PrivateKeyID,
		"private_key":                 strings.ReplaceAll(cfg.PrivateKey, `\n`, "\n"),
		"client_email":                cfg.ClientEmail,
		"client_id":                   cfg.ClientID,
		"auth_uri":                    "https://accounts.google.com/o/oauth2/auth",
		"token_uri":                   "https://oauth2.googleapis.com/token",
		"auth_provider_x509_cert_url": "https://www.googleapis.com/oauth2/v1/certs",
		"client_x509_cert_url":        cfg.ClientX509CertURL,
	})
}

// credentialOption picks inline service-account fields first and falls back
// to the credentials file.
func credentialOption(ctx context.Context, cfg config.FirebaseConfig) (option.ClientOption, error) {
	if cfg.HasServiceAccount() {
		raw, err := serviceAccountJSON(cfg)
		if err != nil {
			return nil, fmt.Errorf("encode service account: %w", err)
		}
		creds, err := google.CredentialsFromJSON(ctx, raw, firebaseScopes...)
		if err != nil {
			return nil, fmt.Errorf("parse service account: %w", err)
		}
		return option.WithCredentials(creds), nil
	}

	if cfg.CredentialsFile != "" {
		if _, err := os.Stat(cfg.CredentialsFile); err == nil {
			return option.WithCredentialsFile(cfg.CredentialsFile), nil
		}
	}
	return nil, ErrNoCredentials
}

// NewFirebaseApp initializes the Admin SDK app shared by the Firestore
// backend and the Firebase identity provider.
func NewFirebaseApp(ctx context.Context, cfg config.FirebaseConfig) (*firebase.App, error) {
	opt, err := credentialOption(ctx, cfg)
	if err != nil {
		return nil, err
	}

	var fbCfg *firebase.Config
	if cfg.ProjectID != "" {
		fbCfg = &firebase.Config{ProjectID: cfg.ProjectID}
	}
	app, err := firebase.NewApp(ctx, fbCfg, opt)
	if err != nil {
		return nil, fmt.Errorf("init firebase app: %w", err)
	}
	return app, nil
}
