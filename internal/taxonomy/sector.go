package taxonomy

import (
	"fmt"
	"strings"
)

// Sector identifies an industry sector used for program classification and
// cross-industry relevance lookups.
type Sector string

const (
	SectorCultural      Sector = "CULTURAL"
	SectorICT           Sector = "ICT"
	SectorBioHealth     Sector = "BIO_HEALTH"
	SectorEnergy        Sector = "ENERGY"
	SectorContent       Sector = "CONTENT"
	SectorManufacturing Sector = "MANUFACTURING"
	SectorEnvironment   Sector = "ENVIRONMENT"
)

// Sectors lists every known sector code.
var Sectors = []Sector{
	SectorCultural,
	SectorICT,
	SectorBioHealth,
	SectorEnergy,
	SectorContent,
	SectorManufacturing,
	SectorEnvironment,
}

// ParseSector converts a raw code into a Sector, rejecting unknown values.
func ParseSector(raw string) (Sector, error) {
	code := Sector(strings.ToUpper(strings.TrimSpace(raw)))
	for _, s := range Sectors {
		if s == code {
			return s, nil
		}
	}
	return "", fmt.Errorf("unknown sector code: %q", raw)
}

func (s Sector) String() string { return string(s) }
