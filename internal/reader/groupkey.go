package reader

import (
	"path/filepath"
	"strings"

	apperrors "fluxcli/internal/errors"
)

// DeriveGroupKey decomposes an instrument file path into its
// treatment/replicate group key. The input tree must follow the
// convention <input_dir>/<treatment>/<replicate>/<file>; any other
// depth is a configuration error rather than a silently wrong key.
func DeriveGroupKey(inputDir, path string) (treatment, replicate string, err error) {
	rel, relErr := filepath.Rel(inputDir, path)
	if relErr != nil {
		return "", "", apperrors.Wrap(apperrors.CodeConfig, relErr, "file %s is not under input dir %s", path, inputDir)
	}
	if strings.HasPrefix(rel, "..") {
		return "", "", apperrors.ConfigError("file %s is not under input dir %s", path, inputDir)
	}

	parts := strings.Split(rel, string(filepath.Separator))
	if len(parts) != 3 {
		return "", "", apperrors.ConfigError(
			"file %s is %d levels below input dir, expected treatment/replicate/file layout", path, len(parts)-1)
	}

	return parts[0], parts[1], nil
}
