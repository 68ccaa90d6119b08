package google

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	"github.com/custodia-labs/receiptsync/internal/core/domain"
)

// DriveScope is the OAuth2 scope requested for service accounts.
// Full drive access is required to write into shared folders.
const DriveScope = drive.DriveScope

// NewDriveService creates a Google Drive API service using the provided TokenSource.
// Extra options are appended, which lets tests point the client at a fake server.
func NewDriveService(ctx context.Context, ts oauth2.TokenSource, opts ...option.ClientOption) (*drive.Service, error) {
	all := append([]option.ClientOption{option.WithTokenSource(ts)}, opts...)
	svc, err := drive.NewService(ctx, all...)
	if err != nil {
		return nil, fmt.Errorf("create drive service: %w", err)
	}
	return svc, nil
}

// NewDriveServiceFromFile creates a Drive service authenticated with a
// service account key file.
func NewDriveServiceFromFile(ctx context.Context, credentialsPath string) (*drive.Service, error) {
	ts, err := TokenSourceFromFile(ctx, credentialsPath)
	if err != nil {
		return nil, err
	}
	return NewDriveService(ctx, ts)
}

// TokenSourceFromFile reads service account credentials and returns a
// token source scoped for Drive.
func TokenSourceFromFile(ctx context.Context, credentialsPath string) (oauth2.TokenSource, error) {
	if credentialsPath == "" {
		return nil, fmt.Errorf("%w: google credentials path not set", domain.ErrCredentialsMissing)
	}
	data, err := os.ReadFile(credentialsPath)
	if err != nil {
		return nil, fmt.Errorf("%w: read google credentials: %w", domain.ErrCredentialsMissing, err)
	}
	creds, err := google.CredentialsFromJSON(ctx, data, DriveScope)
	if err != nil {
		return nil, fmt.Errorf("%w: parse google credentials: %w", domain.ErrCredentialsMissing, err)
	}
	return creds.TokenSource, nil
}
