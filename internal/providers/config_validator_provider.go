package providers

import (
	"fmt"

	"github.com/gookit/validate"

	"gxd/internal/structures"
)

type CnfValidator struct {
	conf *structures.Config
}

func NewCnfValidator(conf *structures.Config) *CnfValidator {
	return &CnfValidator{conf: conf}
}

// Validate checks the tag-annotated config sections and the catalog
// overrides. An empty catalog list is fine, the built-in set is used.
func (cv *CnfValidator) Validate() error {
	v := validate.Struct(cv.conf)
	if !v.Validate() {
		return v.Errors
	}

	seen := make(map[string]struct{}, len(cv.conf.Exchange.Catalog))
	for i, item := range cv.conf.Exchange.Catalog {
		if item.ID == "" {
			return fmt.Errorf("catalog item %d: id is required", i)
		}
		if item.Name == "" {
			return fmt.Errorf("catalog item %q: name is required", item.ID)
		}
		if item.Cost < 0 {
			return fmt.Errorf("catalog item %q: cost must not be negative", item.ID)
		}
		if _, dup := seen[item.ID]; dup {
			return fmt.Errorf("catalog item %q: duplicate id", item.ID)
		}
		seen[item.ID] = struct{}{}
	}
	return nil
}
