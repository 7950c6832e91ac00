package provenance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/corbettht/ZZCeti-pipeline/fluxcal"
)

// Disposition is the user's answer to an output-name conflict.
type Disposition int

const (
	Overwrite Disposition = iota + 1
	Rename
	Skip
)

func (d Disposition) String() string {
	switch d {
	case Overwrite:
		return "overwrite"
	case Rename:
		return "rename"
	case Skip:
		return "skip"
	default:
		return "none"
	}
}

// Resolution is a Disposition plus, for Rename, the new file name.
type Resolution struct {
	Disposition Disposition
	Name        string
}

// ConflictResolver asks what to do about an existing output file.
type ConflictResolver interface {
	ResolveConflict(ctx context.Context, path string) (Resolution, error)
}

// Exister reports whether an output path is already taken.
type Exister interface {
	Exists(path string) (bool, error)
}

// Target is where, and whether, an output may be written.
type Target struct {
	Path    string
	Clobber bool
	Skip    bool
	// Disposition is how a conflict was resolved, zero when there was none.
	Disposition Disposition
}

// Guard resolves output-name conflicts before anything is written.
type Guard struct {
	files    Exister
	resolver ConflictResolver
	log      *slog.Logger
}

// NewGuard returns a Guard. A nil resolver turns every conflict into
// ErrOutputConflict; a nil logger means slog.Default().
func NewGuard(files Exister, resolver ConflictResolver, log *slog.Logger) *Guard {
	if log == nil {
		log = slog.Default()
	}
	return &Guard{files: files, resolver: resolver, log: log}
}

// Check returns the target for path. An existing file is only replaced
// after an explicit Overwrite; a Rename is checked again in turn.
func (g *Guard) Check(ctx context.Context, path string) (Target, error) {
	var renamed Disposition
	for {
		exists, err := g.files.Exists(path)
		if err != nil {
			return Target{}, err
		}
		if !exists {
			return Target{Path: path, Disposition: renamed}, nil
		}
		if g.resolver == nil {
			return Target{}, fmt.Errorf("%w: %s", fluxcal.ErrOutputConflict, path)
		}
		res, err := g.resolver.ResolveConflict(ctx, path)
		if err != nil {
			return Target{}, fmt.Errorf("%w: %s: %w", fluxcal.ErrOutputConflict, path, err)
		}
		g.log.Info("output exists", "path", path, "disposition", res.Disposition.String())

		switch res.Disposition {
		case Overwrite:
			return Target{Path: path, Clobber: true, Disposition: Overwrite}, nil
		case Skip:
			return Target{Path: path, Skip: true, Disposition: Skip}, nil
		case Rename:
			if res.Name == "" {
				return Target{}, fmt.Errorf("%w: %s: empty new name", fluxcal.ErrOutputConflict, path)
			}
			next := res.Name
			if filepath.Base(next) == next {
				next = filepath.Join(filepath.Dir(path), next)
			}
			renamed = Rename
			path = next
		default:
			return Target{}, fmt.Errorf("%w: %s: %w", fluxcal.ErrOutputConflict, path, errUnknownDisposition)
		}
	}
}

var errUnknownDisposition = errors.New("unknown disposition")
