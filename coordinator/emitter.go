package coordinator

import (
	"path"

	"github.com/openifc/idlgen/emitter"
	"github.com/openifc/idlgen/errors"
	"github.com/openifc/idlgen/fqname"
	"github.com/openifc/idlgen/logger"
)

// Location says where a generated file lands relative to the output path
// and the package layout.
type Location uint8

const (
	// LocationDirect writes filename straight under the output path.
	LocationDirect Location = iota
	// LocationPackageRoot writes into the package's source directory,
	// ignoring the output path. Build descriptors live with the sources.
	LocationPackageRoot
	// LocationGenOutput writes under outputPath/<full package path>/,
	// the layout C++ include paths assume.
	LocationGenOutput
	// LocationGenSanitized writes under the identifier-safe package path
	// (V1_2 version directory), the layout Java packages require.
	LocationGenSanitized
)

// Filepath resolves where a file for fqn belongs under loc.
func (c *Coordinator) Filepath(outputPath string, fqn fqname.FQName, loc Location, filename string) (string, error) {
	switch loc {
	case LocationDirect:
		return path.Join(outputPath, filename), nil

	case LocationPackageRoot:
		dir, err := c.PackageDir(fqn)
		if err != nil {
			return "", err
		}
		return path.Join(dir, filename), nil

	case LocationGenOutput, LocationGenSanitized:
		pkgPath := fqn.PackagePath(loc == LocationGenSanitized)
		return path.Join(outputPath, pkgPath, filename), nil

	default:
		return "", errors.AssertionFailedf("unknown output location %d", loc)
	}
}

// Emitter creates (or truncates) the file for fqn at loc and returns an
// emitter owning it. Failures to prepare the sink are generation-class
// errors.
func (c *Coordinator) Emitter(outputPath string, fqn fqname.FQName, loc Location, filename string) (*emitter.Emitter, error) {
	target, err := c.Filepath(outputPath, fqn, loc, filename)
	if err != nil {
		return nil, err
	}

	if dir := path.Dir(target); dir != "." && dir != "/" {
		if err := c.fs.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.Mark(
				errors.Wrapf(err, "creating output directory for %s", target),
				errors.ErrGeneration)
		}
	}

	file, err := c.fs.Create(target)
	if err != nil {
		return nil, errors.Mark(
			errors.Wrapf(err, "opening output file %s", target),
			errors.ErrGeneration)
	}

	logger.Infow("writing", "path", target)
	return emitter.New(file), nil
}
