// Package catalog validates the registration forms for companies, gyms, colours and
// locations and turns them into write payloads.
package catalog

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"climbing/logbook/internal/domain"
)

var ErrInvalidForm = errors.New("invalid form")

var hexCode = regexp.MustCompile(`^#(?:[0-9A-Fa-f]{3}|[0-9A-Fa-f]{6})$`)

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidForm, fmt.Sprintf(format, args...))
}

type CompanyForm struct {
	Name               string
	PrimaryCountry     string
	BoulderGradeSystem string
	SportGradeSystem   string
}

func (f CompanyForm) Validate() error {
	if strings.TrimSpace(f.Name) == "" || f.BoulderGradeSystem == "" || f.SportGradeSystem == "" {
		return invalid("company name, boulder grade system and sport grade system are required")
	}
	return nil
}

func (f CompanyForm) Payload() (domain.NewCompany, error) {
	if err := f.Validate(); err != nil {
		return domain.NewCompany{}, err
	}
	return domain.NewCompany{
		CompanyName:        strings.TrimSpace(f.Name),
		BoulderGradeSystem: f.BoulderGradeSystem,
		SportGradeSystem:   f.SportGradeSystem,
		PrimaryCountry:     strings.TrimSpace(f.PrimaryCountry),
	}, nil
}

type GymForm struct {
	Company string
	Suburb  string
	City    string
	Country string
}

func (f GymForm) Validate() error {
	if f.Company == "" {
		return invalid("please select a company")
	}
	if strings.TrimSpace(f.Suburb) == "" {
		return invalid("suburb is required for a new gym")
	}
	return nil
}

func (f GymForm) Payload() (domain.NewGym, error) {
	if err := f.Validate(); err != nil {
		return domain.NewGym{}, err
	}
	return domain.NewGym{
		CompanyName: f.Company,
		Suburb:      strings.TrimSpace(f.Suburb),
		City:        strings.TrimSpace(f.City),
		Country:     strings.TrimSpace(f.Country),
	}, nil
}

type ColourForm struct {
	Company string
	Name    string
	HexCode string // optional, #RGB or #RRGGBB
}

func (f ColourForm) Validate() error {
	if f.Company == "" {
		return invalid("please select a company")
	}
	if strings.TrimSpace(f.Name) == "" {
		return invalid("colour name is required")
	}
	if hex := strings.TrimSpace(f.HexCode); hex != "" && !hexCode.MatchString(hex) {
		return invalid("invalid hex code %q, use #RGB or #RRGGBB", hex)
	}
	return nil
}

func (f ColourForm) Payload() (domain.NewColour, error) {
	if err := f.Validate(); err != nil {
		return domain.NewColour{}, err
	}
	return domain.NewColour{
		CompanyName: f.Company,
		Colour:      strings.TrimSpace(f.Name),
		HexCode:     strings.ToUpper(strings.TrimSpace(f.HexCode)),
	}, nil
}

type Method string

// MaxLocations caps how many locations one form may add.
const MaxLocations = 500

const (
	MethodRange      Method = "range"
	MethodIndividual Method = "individual"
)

// LocationForm describes a batch of locations for one gym and climb type. With MethodRange
// the names are RangeStart..RangeEnd; with MethodIndividual they come from a comma list.
type LocationForm struct {
	Company   string
	Gym       string
	ClimbType string
	Prefix    string
	Method    Method

	RangeStart string
	RangeEnd   string
	Names      string
}

func (f LocationForm) Validate() error {
	_, err := f.Locations()
	return err
}

// Locations returns the generated location names, prefixed when a prefix is set.
func (f LocationForm) Locations() ([]string, error) {
	if f.Company == "" || f.Gym == "" || f.ClimbType == "" {
		return nil, invalid("company, gym and climb type are required")
	}
	return LocationNames(f.Prefix, f.Method, f.RangeStart, f.RangeEnd, f.Names)
}

func (f LocationForm) Payload() ([]domain.NewLocation, error) {
	names, err := f.Locations()
	if err != nil {
		return nil, err
	}

	payload := make([]domain.NewLocation, 0, len(names))
	for _, name := range names {
		payload = append(payload, domain.NewLocation{Location: name, Type: f.ClimbType})
	}
	return payload, nil
}

// LocationNames generates names from either a numeric range or a comma separated list.
func LocationNames(prefix string, method Method, start, end, list string) ([]string, error) {
	prefix = strings.TrimSpace(prefix)

	var raw []string
	switch method {
	case MethodRange:
		from, errFrom := strconv.Atoi(strings.TrimSpace(start))
		to, errTo := strconv.Atoi(strings.TrimSpace(end))
		if errFrom != nil || errTo != nil || from <= 0 || to < from {
			return nil, invalid("invalid range, start must be > 0 and end must be >= start")
		}
		if to-from >= MaxLocations {
			return nil, invalid("range covers %d locations, at most %d can be added at once", to-from+1, MaxLocations)
		}
		for i := from; i <= to; i++ {
			raw = append(raw, strconv.Itoa(i))
		}

	case MethodIndividual:
		for _, name := range strings.Split(list, ",") {
			if name = strings.TrimSpace(name); name != "" {
				raw = append(raw, name)
			}
		}
		if len(raw) == 0 {
			return nil, invalid("please provide at least one location name")
		}
		if len(raw) > MaxLocations {
			return nil, invalid("%d location names given, at most %d can be added at once", len(raw), MaxLocations)
		}

	default:
		return nil, invalid("unknown location input method %q", method)
	}

	if prefix == "" {
		return raw, nil
	}
	names := make([]string, 0, len(raw))
	for _, name := range raw {
		names = append(names, prefix+" "+name)
	}
	return names, nil
}
