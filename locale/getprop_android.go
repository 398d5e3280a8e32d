//go:build android

package locale

import (
	"os/exec"
	"strings"

	"golang.org/x/text/language"
)

// System reads the device locale via getprop. When the property is unset
// or unparsable it falls back to the environment.
type System struct{}

// Default implements Source.
func (System) Default() string {
	for _, prop := range []string{"persist.sys.locale", "ro.product.locale"} {
		out, err := exec.Command("/system/bin/getprop", prop).Output()
		if err != nil {
			continue
		}
		tag, err := language.Parse(strings.TrimSpace(string(out)))
		if err != nil || tag == language.Und {
			continue
		}
		return toIdentifier(tag)
	}
	return Env{}.Default()
}

// toIdentifier renders a BCP 47 tag in underscore form (pt-BR → pt_BR).
func toIdentifier(tag language.Tag) string {
	base, _ := tag.Base()
	region, conf := tag.Region()
	if conf != language.Exact {
		return base.String()
	}
	return base.String() + "_" + region.String()
}
