package firebase

import (
	"context"
	"os"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"google.golang.org/api/option"
)

// ErrNotConfigured is returned when no credentials path is set. Callers
// run without Firebase login in that case.
var ErrNotConfigured = errors.New("firebase credentials path not provided")

// App holds the initialized Firebase app and auth client
type App struct {
	FirebaseApp *firebase.App
	AuthClient  *auth.Client
}

// InitFirebase initializes the Firebase application and authentication client
func InitFirebase(ctx context.Context, credentialsPath string) (*App, error) {
	if credentialsPath == "" {
		return nil, ErrNotConfigured
	}
	if _, err := os.Stat(credentialsPath); err != nil {
		return nil, errors.Wrapf(err, "firebase credentials file not readable at %s", credentialsPath)
	}

	firebaseApp, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsPath))
	if err != nil {
		return nil, errors.Wrap(err, "error initializing firebase app")
	}

	authClient, err := firebaseApp.Auth(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "error getting firebase auth client")
	}

	log.Info("Firebase app and auth client initialized")
	return &App{FirebaseApp: firebaseApp, AuthClient: authClient}, nil
}
