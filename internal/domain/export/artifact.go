package export

import (
	"fmt"
	"os"
	"path/filepath"

	"privacydesk/internal/domain/request"
)

// WriteCaseArtifact writes the canonical JSON document for a case under
// dir and returns the file path.
func WriteCaseArtifact(dir string, rec request.PrivacyRequest) (string, error) {
	doc, err := MarshalCanonical(rec)
	if err != nil {
		return "", fmt.Errorf("serialize case %s: %w", rec.ID, err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}
	path := filepath.Join(dir, rec.ID+".json")
	if err := os.WriteFile(path, doc, 0o600); err != nil {
		return "", fmt.Errorf("write case artifact: %w", err)
	}
	return path, nil
}
