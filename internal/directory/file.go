package directory

import (
	"context"
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"

	"github.com/harborview-living/directory-cli/internal/model"
)

// FileProvider reads the community roster from a JSON export on disk, the
// middle rung of the fallback chain.
type FileProvider struct {
	path string
}

// NewFileProvider creates a FileProvider for the given JSON file.
func NewFileProvider(path string) *FileProvider {
	return &FileProvider{path: path}
}

// Name implements Provider.
func (p *FileProvider) Name() string { return "file" }

// Load implements Provider. A missing or unconfigured file is ErrNoData so
// the chain falls through; malformed JSON is a real error.
func (p *FileProvider) Load(_ context.Context) ([]model.Community, error) {
	if p.path == "" {
		return nil, ErrNoData
	}

	data, err := os.ReadFile(p.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoData
		}
		return nil, eris.Wrapf(err, "directory: read %s", p.path)
	}

	var raws []RawCommunity
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, eris.Wrapf(err, "directory: parse %s", p.path)
	}

	communities := NormalizeAll(raws)
	if len(communities) == 0 {
		return nil, ErrNoData
	}
	return communities, nil
}
