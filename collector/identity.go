package collector

import (
	"context"
	"errors"
	"fmt"

	"github.com/jaypipes/ghw"

	"github.com/ftahirops/lapaudit/model"
)

// IdentityProbe reads the service tag and model name from DMI, through
// ghw's sysfs reader first and dmidecode second.
type IdentityProbe struct {
	Env Env
}

func (p *IdentityProbe) Name() model.Subsystem { return model.SubsystemIdentity }

func (p *IdentityProbe) Collect(ctx context.Context, raw *model.RawFacts) error {
	var errs []error

	info, err := ghw.Product(ghw.WithChroot(p.Env.Root), ghw.WithDisableWarnings())
	if err == nil {
		raw.ServiceTag = cleanField(info.SerialNumber)
		raw.ProductName = cleanField(info.Name)
	} else {
		errs = append(errs, fmt.Errorf("ghw product: %w", err))
	}

	// product_serial is root-only in sysfs; dmidecode reads the raw table.
	if raw.ServiceTag == "" {
		out, err := capture(ctx, p.Env.Runner, "dmidecode", "-s", "system-serial-number")
		if err != nil {
			errs = append(errs, err)
		}
		raw.ServiceTag = cleanField(firstLine(out))
	}
	if raw.ProductName == "" {
		out, err := capture(ctx, p.Env.Runner, "dmidecode", "-s", "system-product-name")
		if err != nil {
			errs = append(errs, err)
		}
		raw.ProductName = cleanField(firstLine(out))
	}

	if raw.ServiceTag == "" {
		if err := errors.Join(errs...); err != nil {
			return fmt.Errorf("%w: no service tag: %v", ErrUnavailable, err)
		}
		return fmt.Errorf("%w: no service tag", ErrUnavailable)
	}
	return nil
}

// firstLine skips dmidecode's "# ..." comment lines.
func firstLine(s string) string {
	for _, line := range splitLines(s) {
		if line != "" && line[0] != '#' {
			return line
		}
	}
	return ""
}
