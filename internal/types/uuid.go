package types

import (
	"fmt"
	"strings"
	"sync"

	"github.com/oklog/ulid/v2"
	"github.com/teris-io/shortid"
)

// GenerateUUID returns a k-sortable unique identifier
func GenerateUUID() string {
	return ulid.Make().String()
}

// GenerateUUIDWithPrefix returns a k-sortable unique identifier
// with a prefix ex enr_0ujsswThIGTUYm2K8FjOOfXtY1K
func GenerateUUIDWithPrefix(prefix string) string {
	if prefix == "" {
		return GenerateUUID()
	}
	return fmt.Sprintf("%s_%s", prefix, GenerateUUID())
}

var (
	sidGenerator *shortid.Shortid
	once         sync.Once
)

func initializeSID() {
	var err error
	sidGenerator, err = shortid.New(1, shortid.DefaultABC, 2342)
	if err != nil {
		panic("failed to initialize shortid generator: " + err.Error())
	}
}

// GenerateShortCode returns a short upper-cased code suitable for
// customer-facing promo codes, e.g. `GC-XYZ12A8Q`. Total length is capped
// at 12 characters including the prefix.
func GenerateShortCode(prefix string) string {
	once.Do(initializeSID)

	id, err := sidGenerator.Generate()
	if err != nil {
		return ""
	}
	id = strings.ReplaceAll(id, "-", "")

	availableLen := 12 - len(prefix)
	if availableLen <= 0 {
		return ""
	}

	if len(id) > availableLen {
		id = id[:availableLen]
	}

	return strings.ToUpper(fmt.Sprintf("%s%s", prefix, id))
}

const (
	// Prefixes for all domains and entities

	UUID_PREFIX_ACCOUNT      = "acc"
	UUID_PREFIX_PROGRAM      = "prog"
	UUID_PREFIX_REWARD_TIER  = "tier"
	UUID_PREFIX_ENROLLMENT   = "enr"
	UUID_PREFIX_LEDGER_ENTRY = "led"
	UUID_PREFIX_PROMO_CODE   = "promo"
	UUID_PREFIX_WEBHOOK      = "webhook"
)

const (
	SHORT_CODE_PREFIX_PROMO = "GC-"
)
