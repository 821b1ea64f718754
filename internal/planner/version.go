package planner

import (
	"bytes"
	"context"
	"fmt"
	"regexp"

	"github.com/Masterminds/semver/v3"
)

var versionToken = regexp.MustCompile(`v?\d+\.\d+\.\d+(?:-[0-9A-Za-z.-]+)?(?:\+[0-9A-Za-z.-]+)?`)

// Version runs `<command> version` and parses the first semantic version in
// its output.
func (k *Kusion) Version(ctx context.Context) (*semver.Version, error) {
	var stdout, stderr bytes.Buffer
	err := k.runner.Run(ctx, Command{
		Name:   k.command,
		Args:   []string{"version"},
		Env:    k.env,
		Stdout: &stdout,
		Stderr: &stderr,
	})
	if err != nil {
		return nil, &ProcessError{
			Op:       "version",
			Command:  k.command,
			ExitCode: exitCode(err),
			Stderr:   stderr.String(),
			Err:      err,
		}
	}
	return ParseVersion(stdout.String())
}

// ParseVersion extracts the first semantic version token from planner output.
func ParseVersion(out string) (*semver.Version, error) {
	token := versionToken.FindString(out)
	if token == "" {
		return nil, fmt.Errorf("no version found in %q", firstLine(out))
	}
	v, err := semver.NewVersion(token)
	if err != nil {
		return nil, fmt.Errorf("parsing version %q: %w", token, err)
	}
	return v, nil
}

// CheckVersion verifies that the installed planner satisfies constraint,
// e.g. ">= 0.9.0". An empty constraint accepts any version.
func (k *Kusion) CheckVersion(ctx context.Context, constraint string) (*semver.Version, error) {
	v, err := k.Version(ctx)
	if err != nil {
		return nil, err
	}
	if constraint == "" {
		return v, nil
	}
	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return v, fmt.Errorf("invalid version constraint %q: %w", constraint, err)
	}
	if ok, errs := c.Validate(v); !ok {
		if len(errs) > 0 {
			return v, fmt.Errorf("%s %s does not satisfy %q: %w", k.command, v, constraint, errs[0])
		}
		return v, fmt.Errorf("%s %s does not satisfy %q", k.command, v, constraint)
	}
	return v, nil
}
