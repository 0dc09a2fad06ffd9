package export

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"privacydesk/internal/domain/request"
)

// ErrTokenMismatch is returned when a valid token covers a different case.
var ErrTokenMismatch = errors.New("token does not cover this case")

// Service ties artifact files and download tokens together for the
// transport layer.
type Service struct {
	Dir    string
	Secret []byte
	TTL    time.Duration

	now func() time.Time
}

func NewService(dir string, secret []byte, ttl time.Duration) *Service {
	return &Service{Dir: dir, Secret: secret, TTL: ttl, now: time.Now}
}

// CreateArtifact writes the canonical JSON artifact for rec and mints a
// download token valid until expiresAt.
func (s *Service) CreateArtifact(rec request.PrivacyRequest) (string, time.Time, error) {
	if _, err := WriteCaseArtifact(s.Dir, rec); err != nil {
		return "", time.Time{}, err
	}
	now := s.now().UTC()
	token, err := NewDownloadToken(s.Secret, rec.ID, s.TTL, now)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, now.Add(s.TTL), nil
}

// OpenArtifact validates the token against requestID and returns the
// artifact's file path; the file must have been created earlier via
// CreateArtifact.
func (s *Service) OpenArtifact(token, requestID string) (string, error) {
	id, err := ParseDownloadToken(s.Secret, token)
	if err != nil {
		return "", err
	}
	if id != requestID {
		return "", ErrTokenMismatch
	}
	path := filepath.Join(s.Dir, requestID+".json")
	if _, err := os.Stat(path); err != nil {
		return "", err
	}
	return path, nil
}
