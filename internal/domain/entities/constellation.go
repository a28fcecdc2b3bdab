package entities

import "fmt"

// Constellation identifies a GNSS satellite system or augmentation system.
type Constellation uint8

// Known constellations.
const (
	GPS     Constellation = iota // US GPS
	Glonass                      // Russian GLONASS
	BeiDou                       // Chinese BDS
	QZSS                         // Japanese QZSS
	Galileo                      // European Galileo
	IRNSS                        // Indian IRNSS / NavIC
	WAAS                         // US SBAS
	EGNOS                        // European SBAS
	MSAS                         // Japanese SBAS
	GAGAN                        // Indian SBAS
	BDSBAS                       // Chinese SBAS
	KASS                         // South Korean SBAS
	SDCM                         // Russian SBAS
	SPAN                         // Australia / New Zealand SBAS
	NSAS                         // Nigerian SBAS
	ASAL                         // Algerian SBAS
	SBAS                         // unspecified SBAS
	Mixed                        // several systems at once

	numConstellations
)

type constellationInfo struct {
	name      string
	short     string
	country   string
	letter    byte
	timeScale TimeScale
}

// constellationTable is sized by numConstellations, so every constellation has a row.
var constellationTable = [numConstellations]constellationInfo{
	GPS:     {name: "GPS", short: "GPS", country: "US", letter: 'G', timeScale: GPST},
	Glonass: {name: "Glonass", short: "GLO", country: "RU", letter: 'R', timeScale: GLONASST},
	BeiDou:  {name: "BeiDou", short: "BDS", country: "CH", letter: 'C', timeScale: BDT},
	QZSS:    {name: "QZSS", short: "QZSS", country: "JP", letter: 'J', timeScale: QZSST},
	Galileo: {name: "Galileo", short: "GAL", country: "EU", letter: 'E', timeScale: GST},
	IRNSS:   {name: "IRNSS", short: "IRNSS", country: "IN", letter: 'I', timeScale: IRNSST},
	WAAS:    {name: "WAAS", short: "WAAS", country: "US", letter: 'S', timeScale: GPST},
	EGNOS:   {name: "EGNOS", short: "EGNOS", country: "EU", letter: 'S', timeScale: GPST},
	MSAS:    {name: "MSAS", short: "MSAS", country: "JP", letter: 'S', timeScale: GPST},
	GAGAN:   {name: "GAGAN", short: "GAGAN", country: "IN", letter: 'S', timeScale: GPST},
	BDSBAS:  {name: "BDSBAS", short: "BDSBAS", country: "CH", letter: 'S', timeScale: GPST},
	KASS:    {name: "KASS", short: "KASS", country: "KR", letter: 'S', timeScale: GPST},
	SDCM:    {name: "SDCM", short: "SDCM", country: "RU", letter: 'S', timeScale: GPST},
	SPAN:    {name: "SPAN", short: "SPAN", country: "AU", letter: 'S', timeScale: GPST},
	NSAS:    {name: "NSAS", short: "NSAS", country: "NG", letter: 'S', timeScale: GPST},
	ASAL:    {name: "ASAL", short: "ASAL", country: "DZ", letter: 'S', timeScale: GPST},
	SBAS:    {name: "SBAS", short: "SBAS", letter: 'S', timeScale: GPST},
	Mixed:   {name: "Mixed", short: "MIXED", letter: 'M', timeScale: GPST},
}

// canonicalByCountry picks one constellation per country code. Augmentation systems
// share codes with their core constellation, which wins.
var canonicalByCountry = map[string]Constellation{
	"US": GPS,
	"RU": Glonass,
	"CH": BeiDou,
	"JP": QZSS,
	"EU": Galileo,
	"IN": IRNSS,
	"KR": KASS,
	"AU": SPAN,
	"NG": NSAS,
	"DZ": ASAL,
}

// AllConstellations lists every constellation in declaration order.
func AllConstellations() []Constellation {
	all := make([]Constellation, numConstellations)
	for i := range all {
		all[i] = Constellation(i)
	}
	return all
}

// FromCountryCode returns the canonical constellation owned by a two-letter country
// or agency code. Matching is exact and case-sensitive.
func FromCountryCode(code string) (Constellation, error) {
	c, ok := canonicalByCountry[code]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownCountryCode, code)
	}
	return c, nil
}

// ParseConstellation accepts a short code ("BDS"), a name ("BeiDou") or, for the
// core systems, a RINEX system letter ("C"). A bare "S" yields SBAS.
func ParseConstellation(s string) (Constellation, error) {
	for i := range constellationTable {
		info := &constellationTable[i]
		if s == info.short || s == info.name {
			return Constellation(i), nil
		}
	}
	if len(s) == 1 {
		if c, ok := fromLetter(s[0]); ok {
			return c, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown constellation %q", ErrParse, s)
}

func fromLetter(letter byte) (Constellation, bool) {
	switch letter {
	case 'S':
		return SBAS, true
	case 'M':
		return Mixed, true
	}
	for c := GPS; c <= IRNSS; c++ {
		if constellationTable[c].letter == letter {
			return c, true
		}
	}
	return 0, false
}

func (c Constellation) info() *constellationInfo {
	if c >= numConstellations {
		panic(fmt.Sprintf("entities: invalid constellation %d", uint8(c)))
	}
	return &constellationTable[c]
}

// TimeScale returns the native time scale of the constellation.
func (c Constellation) TimeScale() TimeScale {
	return c.info().timeScale
}

// Name returns the display name, e.g. "BeiDou".
func (c Constellation) Name() string {
	return c.info().name
}

// CountryCode returns the owning country or agency code, empty for SBAS and Mixed.
func (c Constellation) CountryCode() string {
	return c.info().country
}

// Letter returns the RINEX system letter.
func (c Constellation) Letter() byte {
	return c.info().letter
}

// IsSBAS reports whether c is an augmentation system.
func (c Constellation) IsSBAS() bool {
	return c.info().letter == 'S'
}

// LongString renders the name with its country code, e.g. "GPS (US)".
func (c Constellation) LongString() string {
	info := c.info()
	if info.country == "" {
		return info.name
	}
	return info.name + " (" + info.country + ")"
}

// ShortString renders the short code alone, e.g. "BDS".
func (c Constellation) ShortString() string {
	return c.info().short
}

// String implements fmt.Stringer with the short form.
func (c Constellation) String() string {
	if c >= numConstellations {
		return fmt.Sprintf("Constellation(%d)", uint8(c))
	}
	return c.ShortString()
}
